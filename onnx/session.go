// Package onnx runs the cascade stage networks with the ONNX Runtime.
package onnx

import (
	"errors"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	initialized bool
	initMu      sync.Mutex
)

// ErrNotInitialized is returned when a network is loaded before Initialize.
var ErrNotInitialized = errors.New("onnx runtime not initialized")

// Initialize sets up the ONNX Runtime environment using the shared library found at
// libPath. An empty path leaves the library lookup to the platform loader.
// It must be called once before any network is loaded.
func Initialize(libPath string) error {
	initMu.Lock()
	defer initMu.Unlock()

	if initialized {
		return nil
	}
	if libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialize ONNX Runtime: %w", err)
	}

	initialized = true
	return nil
}

// Shutdown cleans up the ONNX Runtime environment.
func Shutdown() error {
	initMu.Lock()
	defer initMu.Unlock()

	if !initialized {
		return nil
	}
	if err := ort.DestroyEnvironment(); err != nil {
		return err
	}

	initialized = false
	return nil
}

// Initialized reports whether Initialize succeeded and Shutdown was not called since.
func Initialized() bool {
	initMu.Lock()
	defer initMu.Unlock()

	return initialized
}
