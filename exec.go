package jfda

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/esimov/jfda/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

// Supported source and destination files.
var (
	srcExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif"}
	dstExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".json"}
)

// Ops describes a detection run over a single file, a pipe, an URL or a directory.
type Ops struct {
	Src, Dst, PipeName string
	// Ext replaces the extension of the files generated from a directory.
	// It is ".json" or one of the supported image extensions; empty keeps the source extension.
	Ext     string
	Workers int
	Spinner *utils.Spinner
	Log     logrus.FieldLogger
}

// result holds the outcome of processing one file.
type result struct {
	path string
	err  error
}

// Execute runs the processor over the source described by op.
func (p *Processor) Execute(op *Ops) error {
	if op.Log == nil {
		op.Log = logrus.StandardLogger()
	}
	if op.Spinner != nil {
		// Capture CTRL-C signal and restores back the cursor visibility.
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sig)
		go func() {
			if _, ok := <-sig; ok {
				op.Spinner.RestoreCursor()
				os.Exit(1)
			}
		}()
	}

	src := op.Src
	// Check if source path is a local image or URL.
	if utils.IsValidUrl(src) {
		f, err := utils.DownloadImage(src)
		if f != nil {
			defer os.Remove(f.Name())
			defer f.Close()
		}
		if err != nil {
			return fmt.Errorf("failed to load the source image: %w", err)
		}
		src = f.Name()
	}

	var (
		fs  os.FileInfo
		err error
	)
	// Check if the source is a pipe name or a regular file.
	if src == op.PipeName {
		fs, err = os.Stdin.Stat()
	} else {
		fs, err = os.Stat(src)
	}
	if err != nil {
		return fmt.Errorf("failed to load the source image: %w", err)
	}

	now := time.Now()
	switch mode := fs.Mode(); {
	case mode.IsDir():
		if op.Dst == op.PipeName {
			return errors.New("a directory source needs a destination directory")
		}
		if _, err := os.Stat(op.Dst); err != nil {
			if err := os.MkdirAll(op.Dst, 0755); err != nil {
				return fmt.Errorf("unable to create the destination directory: %w", err)
			}
		}
		if op.Ext != "" && !isValidExtension(op.Ext, dstExtensions) {
			return fmt.Errorf("%v file type not supported", op.Ext)
		}
		err = op.runDir(p, src)
	case mode.IsRegular() || mode&os.ModeNamedPipe != 0 || src == op.PipeName:
		ext := strings.ToLower(filepath.Ext(op.Dst))
		if op.Dst != op.PipeName && !isValidExtension(ext, dstExtensions) {
			return fmt.Errorf("%v file type not supported", ext)
		}
		op.startSpinner()
		err = op.process(p, src, op.Dst)
		op.stopSpinner(err)
		op.printOpStatus(op.Dst, err)
	default:
		return fmt.Errorf("unsupported source %q", op.Src)
	}
	if err != nil {
		return err
	}

	op.Log.WithField("elapsed", utils.FormatTime(time.Since(now))).Info("execution finished")
	return nil
}

// runDir processes recursively the image files of dir with a pool of workers.
func (op *Ops) runDir(p *Processor, dir string) error {
	// Limit the concurrently running workers to maxWorkers.
	workers := op.Workers
	if workers <= 0 || workers > maxWorkers {
		workers = runtime.NumCPU()
	}

	ch := make(chan result)
	done := make(chan struct{})
	defer close(done)

	paths, errc := walkDir(done, dir, srcExtensions)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			op.consumer(p, dir, ch, done, paths)
		}()
	}

	// Close the channel after the values are consumed.
	go func() {
		defer close(ch)
		wg.Wait()
	}()

	op.startSpinner()
	var processed, failed int
	for res := range ch {
		processed++
		if res.err != nil {
			failed++
		}
		op.printOpStatus(res.path, res.err)
		if op.Spinner != nil {
			op.Spinner.SetMessage(fmt.Sprintf("%s %s",
				utils.DecorateText("⚡ JFDA", utils.StatusMessage),
				utils.DecorateText(fmt.Sprintf("%d image(s) processed...", processed), utils.DefaultMessage),
			))
		}
	}
	op.stopSpinner(nil)

	if err := <-errc; err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d file(s) could not be processed", failed)
	}
	return nil
}

// consumer reads the path names from the paths channel and runs the processor over each file.
func (op *Ops) consumer(
	p *Processor,
	root string,
	res chan<- result,
	done <-chan struct{},
	paths <-chan string,
) {
	for src := range paths {
		err := op.process(p, src, op.outputPath(root, src))

		select {
		case <-done:
			return
		case res <- result{
			path: src,
			err:  err,
		}:
		}
	}
}

// outputPath maps a file found under root to its destination file.
func (op *Ops) outputPath(root, src string) string {
	rel, err := filepath.Rel(root, src)
	if err != nil {
		rel = filepath.Base(src)
	}
	rel = strings.ReplaceAll(rel, string(filepath.Separator), "_")

	ext := strings.ToLower(filepath.Ext(rel))
	switch {
	case op.Ext != "":
		rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + op.Ext
	case !isValidExtension(ext, dstExtensions):
		rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + ".png"
	}
	return filepath.Join(op.Dst, rel)
}

// process runs the processor over a single source and destination pair.
func (op *Ops) process(p *Processor, in, out string) error {
	src, dst, err := op.pathToFile(in, out)
	if err != nil {
		return err
	}

	defer func() {
		if f, ok := src.(*os.File); ok && f != os.Stdin {
			if err := f.Close(); err != nil {
				op.Log.WithError(err).Warn("could not close the source file")
			}
		}
	}()

	err = p.Process(src, dst)

	if f, ok := dst.(*os.File); ok && f != os.Stdout {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			// remove the generated file in case of an error
			os.Remove(f.Name())
		}
	}
	if err != nil {
		return fmt.Errorf("processing %s: %w", in, err)
	}
	return nil
}

// pathToFile converts the source and destination paths to readable and writable files.
func (op *Ops) pathToFile(in, out string) (io.Reader, io.Writer, error) {
	var (
		src io.Reader
		dst io.Writer
		err error
	)
	// Check if the source is a pipe name or a regular file.
	if in == op.PipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, nil, errors.New("`-` should be used with a pipe for stdin")
		}
		src = os.Stdin
	} else {
		src, err = os.Open(in)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to open the source file: %w", err)
		}
	}

	// Check if the destination is a pipe name or a regular file.
	if out == op.PipeName {
		dst = os.Stdout
	} else {
		dst, err = os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			if f, ok := src.(*os.File); ok && f != os.Stdin {
				f.Close()
			}
			return nil, nil, fmt.Errorf("unable to create the destination file: %w", err)
		}
	}
	return src, dst, nil
}

func (op *Ops) startSpinner() {
	if op.Spinner != nil {
		op.Spinner.Start()
	}
}

func (op *Ops) stopSpinner(err error) {
	if op.Spinner == nil {
		return
	}
	if err != nil {
		op.Spinner.StopMsg = fmt.Sprintf("%s %s %s\n",
			utils.DecorateText("⚡ JFDA", utils.StatusMessage),
			utils.DecorateText("face detection failed...", utils.DefaultMessage),
			utils.DecorateText("✘", utils.ErrorMessage),
		)
	} else {
		op.Spinner.StopMsg = fmt.Sprintf("%s %s %s\n",
			utils.DecorateText("⚡ JFDA", utils.StatusMessage),
			utils.DecorateText("⇢", utils.DefaultMessage),
			utils.DecorateText("face detection finished ✔", utils.SuccessMessage),
		)
	}
	op.Spinner.Stop()
}

// printOpStatus logs the outcome of processing fname.
func (op *Ops) printOpStatus(fname string, err error) {
	if err != nil {
		op.Log.WithError(err).WithField("file", fname).Error("face detection failed")
		return
	}
	if fname != op.PipeName {
		op.Log.WithField("file", fname).Info("processed")
	}
}

// walkDir starts a new goroutine to walk the specified directory tree
// in recursive manner and sends the path of each regular file to a new channel.
// It finishes in case the done channel is getting closed.
func walkDir(
	done <-chan struct{},
	src string,
	srcExts []string,
) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.Walk(src, func(path string, f os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !f.Mode().IsRegular() {
				return nil
			}
			if !isValidExtension(strings.ToLower(filepath.Ext(f.Name())), srcExts) {
				return nil
			}

			select {
			case <-done:
				return errors.New("directory walk cancelled")
			case pathChan <- path:
			}
			return nil
		})
	}()
	return pathChan, errChan
}

// isValidExtension checks for the supported extensions.
func isValidExtension(ext string, extensions []string) bool {
	for _, ex := range extensions {
		if ex == ext {
			return true
		}
	}
	return false
}
