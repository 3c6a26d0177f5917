// Package vis assigns display colors to segmentation labels for
// colored-mesh export.
package vis

import (
	"image/color"

	"github.com/garmentsim/bodyseg/pkg/seg"
)

// canonicalColors is the fixed palette for the six built-in labels,
// matching the colors the reference visualizations use.
var canonicalColors = map[seg.Label]color.NRGBA{
	seg.Body:         {R: 255, A: 255},         // red
	seg.LeftArm:      {G: 255, A: 255},         // green
	seg.RightArm:     {B: 255, A: 255},         // blue
	seg.LeftLeg:      {R: 255, G: 255, A: 255}, // yellow
	seg.RightLeg:     {R: 255, B: 255, A: 255}, // magenta
	seg.FaceInternal: {G: 255, B: 255, A: 255}, // cyan
}

// extraPalette colors labels outside the canonical six (e.g. from a
// reference segmentation with its own naming). Assigned in sorted label
// order so the mapping is stable across runs.
var extraPalette = []color.NRGBA{
	{R: 0x4A, G: 0x90, B: 0xD9, A: 255},
	{R: 0xE6, G: 0x7E, B: 0x22, A: 255},
	{R: 0x2E, G: 0xCC, B: 0x71, A: 255},
	{R: 0x9B, G: 0x59, B: 0xB6, A: 255},
	{R: 0xE7, G: 0x4C, B: 0x3C, A: 255},
	{R: 0x1A, G: 0xBC, B: 0x9C, A: 255},
	{R: 0xF3, G: 0x9C, B: 0x12, A: 255},
	{R: 0x34, G: 0x98, B: 0xDB, A: 255},
}

// Unassigned is the color for vertices no label owns. Gray keeps
// uncovered transfer output visibly distinct from every part color.
var Unassigned = color.NRGBA{R: 128, G: 128, B: 128, A: 255}

// ColorTable maps every label in the segmentation to a color: canonical
// labels get their fixed color, anything else cycles extraPalette in
// sorted label order.
func ColorTable(s seg.Segmentation) map[seg.Label]color.NRGBA {
	table := make(map[seg.Label]color.NRGBA, len(s))
	extra := 0
	for _, l := range s.Labels() {
		if c, ok := canonicalColors[l]; ok {
			table[l] = c
			continue
		}
		table[l] = extraPalette[extra%len(extraPalette)]
		extra++
	}
	return table
}

// VertexColors returns one color per vertex for colored-mesh export.
// Vertices not claimed by any label keep the Unassigned gray.
func VertexColors(s seg.Segmentation, vertexCount int) []color.NRGBA {
	colors := make([]color.NRGBA, vertexCount)
	for i := range colors {
		colors[i] = Unassigned
	}
	table := ColorTable(s)
	for _, l := range s.Labels() {
		c := table[l]
		for _, i := range s[l] {
			if i >= 0 && i < vertexCount {
				colors[i] = c
			}
		}
	}
	return colors
}
