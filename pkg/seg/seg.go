// Package seg implements the body-part segmentation engine: it assigns
// every vertex of a human body mesh to a named anatomical region.
//
// Three independent strategies are provided. Geometric uses normalized
// height bands plus lateral-position rules, Cluster uses k-means over
// standardized position+normal features, and Transfer copies labels
// from an already-segmented reference mesh via nearest-vertex lookup.
// Each call takes an immutable mesh and returns a freshly built
// Segmentation; no state is carried between calls.
package seg

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Label names an anatomical region.
type Label string

// The six canonical body part labels.
const (
	Body         Label = "body"
	LeftArm      Label = "left_arm"
	RightArm     Label = "right_arm"
	LeftLeg      Label = "left_leg"
	RightLeg     Label = "right_leg"
	FaceInternal Label = "face_internal"
)

// Segmentation maps a label to the set of vertex indices it owns.
// Indices are 0-based into the owning mesh's vertex order. Order within
// a slice is not significant and no index appears twice under one label.
type Segmentation map[Label][]int

// New returns an empty segmentation.
func New() Segmentation {
	return make(Segmentation)
}

// Assign adds a vertex index to a label's set.
func (s Segmentation) Assign(l Label, idx int) {
	s[l] = append(s[l], idx)
}

// Labels returns all labels in sorted order. Sorting makes every scan
// over the segmentation deterministic regardless of map iteration.
func (s Segmentation) Labels() []Label {
	labels := make([]Label, 0, len(s))
	for l := range s {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	return labels
}

// Assigned returns the total number of vertex indices across all labels.
func (s Segmentation) Assigned() int {
	n := 0
	for _, idx := range s {
		n += len(idx)
	}
	return n
}

// Save writes the segmentation as JSON in the interchange format:
// an object mapping label name to an array of 0-based vertex indices.
func Save(path string, s Segmentation) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("save segmentation: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save segmentation: %w", err)
	}
	return nil
}

// Load reads a segmentation from the JSON interchange format.
func Load(path string) (Segmentation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load segmentation: %w", err)
	}
	var s Segmentation
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("load segmentation: %w", err)
	}
	return s, nil
}
