package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/esimov/jfda"
	"github.com/esimov/jfda/onnx"
	"github.com/esimov/jfda/utils"
)

const HelpBanner = `
   ┬┌─┐┌┬┐┌─┐
   │├┤  ││├─┤
  └┘└  ─┴┘┴ ┴

Cascaded face detection.
    Version: %s

`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

var (
	// Flags
	source      = flag.String("in", pipeName, "Source image, directory or URL")
	destination = flag.String("out", pipeName, "Destination file or directory (.json, .jpg, .png, .bmp)")
	nets        = flag.String("nets", "", "Comma separated definition,weights pairs, one per stage (repeat the .onnx file when the weights are embedded)")
	thresholds  = flag.String("th", "", "Comma separated stage thresholds (default 0.6,0.7,0.8)")
	minSize     = flag.Float64("min", 24, "Minimum face size in pixels")
	factor      = flag.Float64("factor", 0.709, "Pyramid scale factor")
	workers     = flag.Int("conc", runtime.NumCPU(), "Number of files to process concurrently")
	rgb         = flag.Bool("rgb", false, "Feed the networks with RGB instead of BGR ordered channels")
	resize      = flag.String("resize", "linear", "Resampling method (linear, lanczos, nearest, bilinear, catmullrom)")
	boxColor    = flag.String("color", "#ff3c3c", "Face box color")
	ext         = flag.String("ext", "", "Output extension used when processing a directory")
	indent      = flag.Bool("indent", false, "Indent the JSON output")
	debug       = flag.Bool("debug", false, "Log the cascade stages")
	ortLib      = flag.String("ort", "", "Path to the onnxruntime shared library")
	logFile     = flag.String("log-file", "", "Rotated log file")
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *nets == "" {
		flag.Usage()
		log.Fatal(utils.DecorateText("\nPlease provide the stage networks with the -nets flag!", utils.ErrorMessage))
	}
	os.Exit(run())
}

// run executes the detection and returns the process exit code, so the deferred
// network and runtime cleanup always happens.
func run() int {
	level := "info"
	if *debug {
		level = "debug"
	}
	logger, err := utils.NewLogger(utils.LogConfig{Level: level, File: *logFile})
	if err != nil {
		log.Print(utils.DecorateText(err.Error(), utils.ErrorMessage))
		return 1
	}

	params := jfda.Params{MinFaceSize: *minSize, Factor: *factor}
	params.Thresholds, err = jfda.ParseThresholds(*thresholds, jfda.DefaultParams().Thresholds)
	if err != nil {
		logger.Error(err)
		return 1
	}

	resizer, ok := jfda.ResizerByName(*resize)
	if !ok {
		logger.Errorf("unknown resampling method %q", *resize)
		return 1
	}
	col, err := utils.HexToRGBA(*boxColor)
	if err != nil {
		logger.Error(err)
		return 1
	}
	order := jfda.BGR
	if *rgb {
		order = jfda.RGB
	}

	if err := onnx.Initialize(*ortLib); err != nil {
		logger.Error(err)
		return 1
	}
	defer onnx.Shutdown()

	det, err := jfda.NewFromNets(splitList(*nets), onnx.Load,
		jfda.WithResizer(resizer),
		jfda.WithChannelOrder(order),
		jfda.WithLogger(logger),
	)
	if err != nil {
		logger.Error(err)
		return 1
	}
	defer det.Close()

	proc := &jfda.Processor{
		Detector: det,
		Params:   params,
		Color:    col,
		Indent:   *indent,
	}

	op := &jfda.Ops{
		Src:      *source,
		Dst:      *destination,
		PipeName: pipeName,
		Ext:      *ext,
		Workers:  *workers,
		Log:      logger,
	}
	if !*debug && *destination != pipeName {
		spinnerText := fmt.Sprintf("%s %s",
			utils.DecorateText("⚡ JFDA", utils.StatusMessage),
			utils.DecorateText("is detecting faces...", utils.DefaultMessage))
		op.Spinner = utils.NewSpinner(spinnerText, time.Millisecond*200, true)
	}

	now := time.Now()
	if err := proc.Execute(op); err != nil {
		logger.Error(err)
		fmt.Fprintf(os.Stderr, "%s\n", utils.DecorateText("\nFace detection failed", utils.ErrorMessage))
		return 1
	}
	fmt.Fprintf(os.Stderr, "\nExecution time: %s\n", utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
	return 0
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
