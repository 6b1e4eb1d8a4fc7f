package utils

import (
	"bytes"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUtils_ShouldDownloadImage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 4, 4))))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	f, err := DownloadImage(srv.URL + "/sample.png")
	require.NoError(t, err)
	defer os.Remove(f.Name())
	defer f.Close()

	stat, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), stat.Size())
}

func TestUtils_ShouldRejectNonImageDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("plain text"))
	}))
	defer srv.Close()

	f, err := DownloadImage(srv.URL)
	if f != nil {
		f.Close()
		os.Remove(f.Name())
	}
	assert.Error(t, err)
}

func TestUtils_ShouldRejectFailedDownload(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := DownloadImage(srv.URL)
	assert.Error(t, err)
}

func TestUtils_ShouldBeValidUrl(t *testing.T) {
	assert := assert.New(t)

	assert.True(IsValidUrl("https://github.com/esimov/jfda/"))
	assert.False(IsValidUrl("testdata/sample.jpg"))
	assert.False(IsValidUrl("-"))
}

func TestUtils_ShouldDetectValidFileType(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "sample*.png")
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewNRGBA(image.Rect(0, 0, 2, 2))))
	require.NoError(t, f.Close())

	ftype, err := DetectContentType(f.Name())
	require.NoError(t, err)
	assert.Equal(t, "image/png", ftype)
}
