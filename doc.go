/*
Package jfda is a cascaded face detector. A fully convolutional first network scans
an image pyramid for face candidates, then up to two refinement networks rescore
the candidates, adjust their boxes and, in the last stage, locate five facial
landmarks (eyes, nose and mouth corners).

The networks are plugged in through the Scorer interface, so the cascade itself has
no dependency on an inference runtime. The onnx subpackage provides scorers backed
by ONNX Runtime.

The package provides a command line interface, supporting various flags for the
detection thresholds, the pyramid and the output format. To check the supported
commands type:

	$ jfda --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"fmt"
		"os"

		"github.com/esimov/jfda"
		"github.com/esimov/jfda/onnx"
	)

	func main() {
		if err := onnx.Initialize("libonnxruntime.so"); err != nil {
			panic(err)
		}
		defer onnx.Shutdown()

		det, err := jfda.NewFromNets([]string{
			"pnet.onnx", "", "rnet.onnx", "", "onet.onnx", "",
		}, onnx.Load)
		if err != nil {
			panic(err)
		}
		defer det.Close()

		img, err := jfda.Decode(os.Stdin)
		if err != nil {
			panic(err)
		}
		faces, err := det.Detect(img, jfda.DefaultParams())
		if err != nil {
			panic(err)
		}
		for _, f := range faces {
			fmt.Println(f.X1, f.Y1, f.X2, f.Y2, f.Score, f.Points())
		}
	}
*/
package jfda
