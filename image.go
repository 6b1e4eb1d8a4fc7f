package jfda

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Decode decodes the source image, applying the EXIF orientation if present.
// Failures wrap ErrDecode.
func Decode(r io.Reader) (*image.NRGBA, error) {
	src, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return imgToNRGBA(src), nil
}

// imageFormat returns the encoding format for the destination, if it is an image file.
func imageFormat(w io.Writer) (imaging.Format, bool) {
	f, ok := w.(*os.File)
	if !ok {
		return 0, false
	}
	switch strings.ToLower(filepath.Ext(f.Name())) {
	case ".jpg", ".jpeg":
		return imaging.JPEG, true
	case ".png":
		return imaging.PNG, true
	case ".bmp":
		return imaging.BMP, true
	}
	return 0, false
}

// encodeImg encodes img into w using the given format.
func encodeImg(w io.Writer, img image.Image, format imaging.Format) error {
	switch format {
	case imaging.JPEG:
		return imaging.Encode(w, img, format, imaging.JPEGQuality(100))
	case imaging.PNG, imaging.BMP:
		return imaging.Encode(w, img, format)
	}
	return errors.New("unsupported image format")
}

// cropBox cuts the region covered by box out of img. Parts of the box lying outside
// the image are filled with black, so the crop always has the size of the box.
func cropBox(img *image.NRGBA, box BoundingBox) *image.NRGBA {
	rect := box.Rect()
	dst := imaging.New(rect.Dx(), rect.Dy(), color.NRGBA{A: 0xff})

	inside := rect.Intersect(img.Bounds())
	if inside.Empty() {
		return dst
	}
	return imaging.Paste(dst, imaging.Crop(img, inside), inside.Min.Sub(rect.Min))
}

// imgToNRGBA converts any image type to *image.NRGBA with min-point at (0, 0).
func imgToNRGBA(img image.Image) *image.NRGBA {
	srcBounds := img.Bounds()
	if srcBounds.Min.X == 0 && srcBounds.Min.Y == 0 {
		if src0, ok := img.(*image.NRGBA); ok {
			return src0
		}
	}
	srcMinX := srcBounds.Min.X
	srcMinY := srcBounds.Min.Y

	dstBounds := srcBounds.Sub(srcBounds.Min)
	dstW := dstBounds.Dx()
	dstH := dstBounds.Dy()
	dst := image.NewNRGBA(dstBounds)

	switch src := img.(type) {
	case *image.NRGBA:
		rowSize := dstW * 4
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			si := src.PixOffset(srcMinX, srcMinY+dstY)
			copy(dst.Pix[di:di+rowSize], src.Pix[si:si+rowSize])
		}
	case *image.YCbCr:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				srcX := srcMinX + dstX
				srcY := srcMinY + dstY
				siy := src.YOffset(srcX, srcY)
				sic := src.COffset(srcX, srcY)
				r, g, b := color.YCbCrToRGB(src.Y[siy], src.Cb[sic], src.Cr[sic])
				dst.Pix[di+0] = r
				dst.Pix[di+1] = g
				dst.Pix[di+2] = b
				dst.Pix[di+3] = 0xff
				di += 4
			}
		}
	default:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				c := color.NRGBAModel.Convert(img.At(srcMinX+dstX, srcMinY+dstY)).(color.NRGBA)
				dst.Pix[di+0] = c.R
				dst.Pix[di+1] = c.G
				dst.Pix[di+2] = c.B
				dst.Pix[di+3] = c.A
				di += 4
			}
		}
	}

	return dst
}
