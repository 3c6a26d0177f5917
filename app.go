package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/garmentsim/bodyseg/pkg/engine"
	"github.com/garmentsim/bodyseg/pkg/mesh"
	"github.com/garmentsim/bodyseg/pkg/seg"
	"github.com/garmentsim/bodyseg/pkg/vis"
)

// Options is the parsed command-line configuration.
type Options struct {
	Input          string
	Output         string
	Method         string
	ReferenceMesh  string
	ReferenceSeg   string
	Rules          string
	Clusters       int
	ColoredOutput  string
	ComputeNormals bool
}

// App runs one segmentation pipeline: load, segment, report, save.
type App struct {
	opts   Options
	engine *engine.Engine
}

// NewApp creates an App for the given options.
func NewApp(opts Options) *App {
	return &App{
		opts:   opts,
		engine: engine.NewEngine(),
	}
}

// Run executes the pipeline. Structural errors (bad mesh, bad
// parameters, unreadable files) are returned; data-quality findings
// from the transfer method are logged and the run still completes.
func (a *App) Run() error {
	m, err := mesh.ReadOBJ(a.opts.Input)
	if err != nil {
		return err
	}
	log.Printf("loaded mesh %s: %d vertices, %d faces", a.opts.Input, m.VertexCount(), m.FaceCount())

	var result seg.Segmentation
	switch a.opts.Method {
	case "geometric":
		result, err = a.runGeometric(m)
	case "clustering":
		result, err = a.runClustering(m)
	case "transfer":
		result, err = a.runTransfer(m)
	default:
		return fmt.Errorf("unknown method %q (want geometric, clustering or transfer)", a.opts.Method)
	}
	if err != nil {
		return err
	}

	printStats(result, m.VertexCount())

	if err := seg.Save(a.opts.Output, result); err != nil {
		return err
	}
	log.Printf("segmentation saved to %s", a.opts.Output)

	if a.opts.ColoredOutput != "" {
		colors := vis.VertexColors(result, m.VertexCount())
		if err := mesh.WriteColoredOBJ(a.opts.ColoredOutput, m, colors); err != nil {
			return err
		}
		log.Printf("colored mesh saved to %s", a.opts.ColoredOutput)
	}
	return nil
}

// runGeometric runs the height-band method, with bands from the rules
// script when one is given.
func (a *App) runGeometric(m *mesh.Mesh) (seg.Segmentation, error) {
	if a.opts.Rules == "" {
		return seg.Geometric(m)
	}
	source, err := os.ReadFile(a.opts.Rules)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	bands, evalErrs, err := a.engine.Evaluate(string(source))
	if err != nil {
		return nil, fmt.Errorf("rules %s: %w", a.opts.Rules, err)
	}
	if len(evalErrs) > 0 {
		msgs := make([]string, len(evalErrs))
		for i, e := range evalErrs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("rules %s: %s", a.opts.Rules, strings.Join(msgs, "; "))
	}
	log.Printf("using %d bands from %s", len(bands), a.opts.Rules)
	return seg.GeometricWithBands(m, bands)
}

// runClustering runs the k-means method. Normals are required; with
// -compute-normals they are derived from the faces first.
func (a *App) runClustering(m *mesh.Mesh) (seg.Segmentation, error) {
	if a.opts.ComputeNormals && !m.HasNormals() {
		m.ComputeNormals()
		log.Printf("computed %d vertex normals from faces", m.VertexCount())
	}
	return seg.Cluster(m, a.opts.Clusters)
}

// runTransfer runs the nearest-vertex transfer method.
func (a *App) runTransfer(m *mesh.Mesh) (seg.Segmentation, error) {
	if a.opts.ReferenceMesh == "" || a.opts.ReferenceSeg == "" {
		return nil, fmt.Errorf("transfer method requires -reference-mesh and -reference-seg")
	}
	ref, err := mesh.ReadOBJ(a.opts.ReferenceMesh)
	if err != nil {
		return nil, err
	}
	refSeg, err := seg.Load(a.opts.ReferenceSeg)
	if err != nil {
		return nil, err
	}
	log.Printf("reference mesh %s: %d vertices, %d labels", a.opts.ReferenceMesh, ref.VertexCount(), len(refSeg))

	res, err := seg.Transfer(m, ref, refSeg)
	if err != nil {
		return nil, err
	}
	if res.DroppedRefIndices > 0 {
		log.Printf("warning: ignored %d reference indices outside [0, %d)", res.DroppedRefIndices, ref.VertexCount())
	}
	if len(res.Unassigned) > 0 {
		log.Printf("warning: %d target vertices matched unlabeled reference vertices and remain unassigned", len(res.Unassigned))
	}
	return res.Segmentation, nil
}

// printStats logs the per-label share of the segmentation.
func printStats(s seg.Segmentation, vertexCount int) {
	sum := seg.Stats(s, vertexCount)
	log.Printf("segmentation statistics (%d of %d vertices assigned):", sum.TotalAssigned, sum.VertexCount)
	for _, st := range sum.Stats {
		log.Printf("  %s: %d vertices (%.1f%%)", st.Label, st.Count, st.Percent)
	}
}
