package jfda

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestImage(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, imaging.Save(testImage(24, 24), path))
}

func testProcessor(t *testing.T) *Processor {
	t.Helper()
	det, err := New([]Scorer{cellScorer(3, 2, 0.95, nil)})
	require.NoError(t, err)
	return &Processor{Detector: det, Params: testParams()}
}

func TestExecute_File(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "face.png")
	writeTestImage(t, src)

	logger, hook := test.NewNullLogger()
	p := testProcessor(t)

	dst := filepath.Join(dir, "face.json")
	require.NoError(t, p.Execute(&Ops{Src: src, Dst: dst, PipeName: "-", Log: logger}))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	var res Result
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Len(t, res.Faces, 1)
	assert.Equal(t, "execution finished", hook.LastEntry().Message)

	err = p.Execute(&Ops{Src: src, Dst: filepath.Join(dir, "face.txt"), PipeName: "-", Log: logger})
	assert.ErrorContains(t, err, "not supported")

	err = p.Execute(&Ops{Src: filepath.Join(dir, "missing.png"), Dst: dst, PipeName: "-", Log: logger})
	assert.Error(t, err)
}

func TestExecute_FailedFileIsRemoved(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "broken.png")
	require.NoError(t, os.WriteFile(src, []byte("not a png"), 0644))

	logger, _ := test.NewNullLogger()
	dst := filepath.Join(dir, "broken.json")
	err := testProcessor(t).Execute(&Ops{Src: src, Dst: dst, PipeName: "-", Log: logger})
	assert.ErrorIs(t, err, ErrDecode)
	assert.NoFileExists(t, dst)
}

func TestExecute_Directory(t *testing.T) {
	src := t.TempDir()
	writeTestImage(t, filepath.Join(src, "a.png"))
	writeTestImage(t, filepath.Join(src, "b.jpg"))
	writeTestImage(t, filepath.Join(src, "nested", "c.png"))
	require.NoError(t, os.WriteFile(filepath.Join(src, "notes.txt"), []byte("skip"), 0644))

	dst := filepath.Join(t.TempDir(), "out")
	logger, _ := test.NewNullLogger()
	p := testProcessor(t)

	require.NoError(t, p.Execute(&Ops{Src: src, Dst: dst, PipeName: "-", Ext: ".json", Workers: 2, Log: logger}))

	entries, err := os.ReadDir(dst)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	assert.Equal(t, []string{"a.json", "b.json", "nested_c.json"}, names)

	err = p.Execute(&Ops{Src: src, Dst: "-", PipeName: "-", Log: logger})
	assert.Error(t, err)
	err = p.Execute(&Ops{Src: src, Dst: dst, PipeName: "-", Ext: ".tiff", Log: logger})
	assert.ErrorContains(t, err, "not supported")
}

func TestExecute_DirectoryFailures(t *testing.T) {
	src := t.TempDir()
	writeTestImage(t, filepath.Join(src, "good.png"))
	require.NoError(t, os.WriteFile(filepath.Join(src, "bad.png"), []byte("garbage"), 0644))

	dst := t.TempDir()
	logger, hook := test.NewNullLogger()
	err := testProcessor(t).Execute(&Ops{Src: src, Dst: dst, PipeName: "-", Log: logger})
	assert.ErrorContains(t, err, "1 file(s)")

	assert.FileExists(t, filepath.Join(dst, "good.png"))
	assert.NoFileExists(t, filepath.Join(dst, "bad.png"))

	var failed int
	for _, e := range hook.AllEntries() {
		if e.Message == "face detection failed" {
			failed++
		}
	}
	assert.Equal(t, 1, failed)
}

func TestOps_OutputPath(t *testing.T) {
	root := filepath.Join("in", "photos")
	tests := []struct {
		ext, src, want string
	}{
		{"", filepath.Join(root, "a.jpg"), filepath.Join("out", "a.jpg")},
		{"", filepath.Join(root, "x", "y", "a.png"), filepath.Join("out", "x_y_a.png")},
		{"", filepath.Join(root, "a.gif"), filepath.Join("out", "a.png")},
		{".json", filepath.Join(root, "a.JPG"), filepath.Join("out", "a.json")},
	}
	for _, tt := range tests {
		op := &Ops{Dst: "out", Ext: tt.ext}
		assert.Equal(t, tt.want, op.outputPath(root, tt.src))
	}
}
