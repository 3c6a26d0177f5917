// Command bodyseg assigns every vertex of a 3D human body mesh to a
// named anatomical region and writes the result as JSON, optionally
// alongside a vertex-colored OBJ for inspection.
//
// Usage:
//
//	bodyseg -input body.obj -output seg.json -method geometric
//	bodyseg -input body.obj -output seg.json -method clustering -clusters 8
//	bodyseg -input body.obj -output seg.json -method transfer \
//	    -reference-mesh ref.obj -reference-seg ref.json
package main

import (
	"flag"
	"log"
	"os"

	"github.com/garmentsim/bodyseg/pkg/seg"
)

func main() {
	var opts Options
	flag.StringVar(&opts.Input, "input", "", "input OBJ mesh (required)")
	flag.StringVar(&opts.Output, "output", "", "output segmentation JSON (required)")
	flag.StringVar(&opts.Method, "method", "geometric", "segmentation method: geometric, clustering or transfer")
	flag.StringVar(&opts.ReferenceMesh, "reference-mesh", "", "reference OBJ mesh for the transfer method")
	flag.StringVar(&opts.ReferenceSeg, "reference-seg", "", "reference segmentation JSON for the transfer method")
	flag.StringVar(&opts.Rules, "rules", "", "band rule script for the geometric method (default: built-in six bands)")
	flag.IntVar(&opts.Clusters, "clusters", seg.DefaultClusters, "cluster count for the clustering method")
	flag.StringVar(&opts.ColoredOutput, "colored-output", "", "also write a vertex-colored OBJ here")
	flag.BoolVar(&opts.ComputeNormals, "compute-normals", false, "derive vertex normals from faces when the input has none (clustering)")
	flag.Parse()

	if opts.Input == "" || opts.Output == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := NewApp(opts).Run(); err != nil {
		log.Fatalf("bodyseg: %v", err)
	}
}
