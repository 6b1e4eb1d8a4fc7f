package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_InvalidConfigReturnsExitCode(t *testing.T) {
	t.Setenv("JFDA_NETS", "")
	assert.Equal(t, 1, run())

	t.Setenv("JFDA_NETS", "p.onnx,p.onnx")
	t.Setenv("LOG_LEVEL", "loud")
	assert.Equal(t, 1, run())
}
