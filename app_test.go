package main

import (
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/garmentsim/bodyseg/pkg/mesh"
	"github.com/garmentsim/bodyseg/pkg/seg"
)

// figureOBJ writes a synthetic body-shaped mesh as an OBJ file and
// returns its path. The figure spans normalized heights [0,1] with
// populated leg, arm, torso and head regions; X is symmetric so
// centering keeps lateral signs.
func figureOBJ(t *testing.T, dir string) string {
	t.Helper()
	m := &mesh.Mesh{}
	add := func(x, y float64) {
		m.Positions = append(m.Positions,
			v3.Vec{X: -x, Y: y},
			v3.Vec{X: x, Y: y},
		)
	}
	for i := 0; i < 12; i++ {
		add(0.1, 0.04*float64(i))       // legs
		add(1.0, 0.46+0.03*float64(i))  // arms
		add(0.05, 0.50+0.02*float64(i)) // torso
		add(0.05, 0.86+0.01*float64(i)) // head
	}
	add(0.1, 0.0)
	add(0.05, 1.0)
	// A few faces so normal computation has something to chew on.
	for i := 0; i+2 < 12; i++ {
		m.Faces = append(m.Faces, [3]int{i, i + 1, i + 2})
	}

	path := filepath.Join(dir, "figure.obj")
	if err := mesh.WriteOBJ(path, m); err != nil {
		t.Fatalf("write figure: %v", err)
	}
	return path
}

// assertPartition loads a saved segmentation and checks it covers
// exactly [0, n) with no overlaps.
func assertPartition(t *testing.T, path string, n int) seg.Segmentation {
	t.Helper()
	s, err := seg.Load(path)
	if err != nil {
		t.Fatalf("load result: %v", err)
	}
	owners := make([]int, n)
	for _, l := range s.Labels() {
		for _, i := range s[l] {
			if i < 0 || i >= n {
				t.Fatalf("label %s has out-of-range index %d", l, i)
			}
			owners[i]++
		}
	}
	for i, c := range owners {
		if c != 1 {
			t.Fatalf("vertex %d owned by %d labels", i, c)
		}
	}
	return s
}

func TestRunGeometricEndToEnd(t *testing.T) {
	dir := t.TempDir()
	input := figureOBJ(t, dir)
	output := filepath.Join(dir, "seg.json")
	colored := filepath.Join(dir, "colored.obj")

	app := NewApp(Options{
		Input:         input,
		Output:        output,
		Method:        "geometric",
		ColoredOutput: colored,
	})
	if err := app.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	m, err := mesh.ReadOBJ(input)
	if err != nil {
		t.Fatalf("reread input: %v", err)
	}
	assertPartition(t, output, m.VertexCount())

	if _, err := os.Stat(colored); err != nil {
		t.Errorf("colored output missing: %v", err)
	}
}

func TestRunTransferIdentityEndToEnd(t *testing.T) {
	dir := t.TempDir()
	input := figureOBJ(t, dir)
	refSegPath := filepath.Join(dir, "ref.json")
	output := filepath.Join(dir, "out.json")

	// Build the reference segmentation with the geometric method.
	if err := NewApp(Options{Input: input, Output: refSegPath, Method: "geometric"}).Run(); err != nil {
		t.Fatalf("reference run failed: %v", err)
	}
	// Transfer it back onto the same mesh.
	err := NewApp(Options{
		Input:         input,
		Output:        output,
		Method:        "transfer",
		ReferenceMesh: input,
		ReferenceSeg:  refSegPath,
	}).Run()
	if err != nil {
		t.Fatalf("transfer run failed: %v", err)
	}

	want, _ := seg.Load(refSegPath)
	got, _ := seg.Load(output)
	for _, l := range want.Labels() {
		w := append([]int(nil), want[l]...)
		g := append([]int(nil), got[l]...)
		sort.Ints(w)
		sort.Ints(g)
		if !reflect.DeepEqual(w, g) {
			t.Errorf("label %s: transfer onto the same mesh changed the set", l)
		}
	}
}

func TestRunClusteringWithComputedNormals(t *testing.T) {
	dir := t.TempDir()
	input := figureOBJ(t, dir)
	output := filepath.Join(dir, "seg.json")

	app := NewApp(Options{
		Input:          input,
		Output:         output,
		Method:         "clustering",
		Clusters:       4,
		ComputeNormals: true,
	})
	if err := app.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	m, _ := mesh.ReadOBJ(input)
	assertPartition(t, output, m.VertexCount())
}

func TestRunGeometricWithRulesScript(t *testing.T) {
	dir := t.TempDir()
	input := figureOBJ(t, dir)
	output := filepath.Join(dir, "seg.json")
	rules := filepath.Join(dir, "rules.lisp")

	script := `
(band "body" 0.4 1.0)
(band "left_leg" 0.0 0.4 :side :left)
(band "right_leg" 0.0 0.4 :side :right)
`
	if err := os.WriteFile(rules, []byte(script), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	app := NewApp(Options{Input: input, Output: output, Method: "geometric", Rules: rules})
	if err := app.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	m, _ := mesh.ReadOBJ(input)
	s := assertPartition(t, output, m.VertexCount())
	for _, l := range s.Labels() {
		switch l {
		case seg.Body, seg.LeftLeg, seg.RightLeg:
		default:
			t.Errorf("unexpected label %q from custom rules", l)
		}
	}
}

func TestRunRejectsUnknownMethod(t *testing.T) {
	dir := t.TempDir()
	input := figureOBJ(t, dir)

	app := NewApp(Options{Input: input, Output: filepath.Join(dir, "x.json"), Method: "voronoi"})
	if err := app.Run(); err == nil {
		t.Error("unknown method accepted, want error")
	}
}

func TestRunTransferRequiresReferenceFlags(t *testing.T) {
	dir := t.TempDir()
	input := figureOBJ(t, dir)

	app := NewApp(Options{Input: input, Output: filepath.Join(dir, "x.json"), Method: "transfer"})
	if err := app.Run(); err == nil {
		t.Error("transfer without reference inputs accepted, want error")
	}
}
