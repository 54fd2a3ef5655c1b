package texture

import (
	"errors"
	"fmt"
	"image"
)

const (
	tgaHeaderSize   = 18
	tgaUncompressed = 2
	tgaRLE          = 10
)

var errTGATruncated = errors.New("tga: pixel data truncated")

// DecodeTGA decodes uncompressed (type 2) and RLE (type 10) true-color
// TGA data with 24 or 32 bits per pixel.
func DecodeTGA(data []byte) (*image.NRGBA, error) {
	if len(data) < tgaHeaderSize {
		return nil, errors.New("tga: header too short")
	}

	idLength := int(data[0])
	if data[1] != 0 {
		return nil, errors.New("tga: color-mapped images not supported")
	}
	kind := data[2]
	if kind != tgaUncompressed && kind != tgaRLE {
		return nil, fmt.Errorf("tga: unsupported image type %d", kind)
	}
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("tga: unsupported bit depth %d", bpp)
	}
	topDown := data[17]&0x20 != 0

	src := data[min(tgaHeaderSize+idLength, len(data)):]
	stride := bpp / 8
	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	put := func(n int, px []byte) {
		x, y := n%width, n/width
		if !topDown {
			y = height - 1 - y
		}
		i := img.PixOffset(x, y)
		img.Pix[i+0] = px[2]
		img.Pix[i+1] = px[1]
		img.Pix[i+2] = px[0]
		img.Pix[i+3] = 255
		if stride == 4 {
			img.Pix[i+3] = px[3]
		}
	}

	total := width * height
	if kind == tgaUncompressed {
		if len(src) < total*stride {
			return nil, errTGATruncated
		}
		for n := 0; n < total; n++ {
			put(n, src[n*stride:])
		}
		return img, nil
	}

	n, off := 0, 0
	for n < total {
		if off >= len(src) {
			return nil, errTGATruncated
		}
		header := src[off]
		off++
		count := int(header&0x7F) + 1

		if header&0x80 != 0 {
			if off+stride > len(src) {
				return nil, errTGATruncated
			}
			for i := 0; i < count && n < total; i++ {
				put(n, src[off:])
				n++
			}
			off += stride
			continue
		}
		for i := 0; i < count && n < total; i++ {
			if off+stride > len(src) {
				return nil, errTGATruncated
			}
			put(n, src[off:])
			off += stride
			n++
		}
	}
	return img, nil
}
