package seg_test

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/garmentsim/bodyseg/pkg/seg"
)

func TestSegmentationLabelsSorted(t *testing.T) {
	s := seg.New()
	s.Assign(seg.RightLeg, 0)
	s.Assign(seg.Body, 1)
	s.Assign(seg.FaceInternal, 2)

	want := []seg.Label{seg.Body, seg.FaceInternal, seg.RightLeg}
	if got := s.Labels(); !reflect.DeepEqual(got, want) {
		t.Errorf("Labels() = %v, want %v", got, want)
	}
	if got := s.Assigned(); got != 3 {
		t.Errorf("Assigned() = %d, want 3", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := seg.Segmentation{
		seg.Body:     {0, 1, 2},
		seg.LeftArm:  {3, 4},
		seg.RightLeg: {},
	}

	path := filepath.Join(t.TempDir(), "seg.json")
	if err := seg.Save(path, s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := seg.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(got, s) {
		t.Errorf("round trip mismatch:\ngot  %v\nwant %v", got, s)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := seg.Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Load on a missing file succeeded, want error")
	}
}

func TestStats(t *testing.T) {
	s := seg.Segmentation{
		seg.Body:     {0, 1, 2, 3, 4},
		seg.LeftArm:  {5, 6},
		seg.RightArm: {7, 8},
	}
	sum := seg.Stats(s, 10)

	if sum.TotalAssigned != 9 {
		t.Errorf("TotalAssigned = %d, want 9", sum.TotalAssigned)
	}
	if sum.VertexCount != 10 {
		t.Errorf("VertexCount = %d, want 10", sum.VertexCount)
	}
	// Descending count, label ascending on ties.
	wantOrder := []seg.Label{seg.Body, seg.LeftArm, seg.RightArm}
	for i, st := range sum.Stats {
		if st.Label != wantOrder[i] {
			t.Fatalf("Stats order %v, want %v", sum.Stats, wantOrder)
		}
	}
	if sum.Stats[0].Percent != 50 {
		t.Errorf("body percent = %g, want 50", sum.Stats[0].Percent)
	}
	// Percentages divide by mesh vertex count: one vertex of ten is
	// unassigned here, so label shares total 90, not 100.
	total := 0.0
	for _, st := range sum.Stats {
		total += st.Percent
	}
	if total != 90 {
		t.Errorf("percent total = %g, want 90", total)
	}
}

func TestStatsEmpty(t *testing.T) {
	sum := seg.Stats(seg.New(), 0)
	if sum.TotalAssigned != 0 || len(sum.Stats) != 0 {
		t.Errorf("empty stats = %+v, want zero", sum)
	}
}
