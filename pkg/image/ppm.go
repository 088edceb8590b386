// Package image writes rendered frames to the Netpbm PPM format: the
// simplest possible sink for the path tracer, with no compression or
// metadata to get in the way of inspecting raw output.
package image

import (
	"bufio"
	"fmt"
	"io"
	"log"
)

// Frame is a dense row-major RGBA image, one byte per channel.
type Frame struct {
	Width, Height int
	Pixels        []byte // len == Width*Height*4
}

// NewFrame allocates a zeroed frame of the given dimensions.
func NewFrame(width, height int) *Frame {
	return &Frame{Width: width, Height: height, Pixels: make([]byte, width*height*4)}
}

// At returns the RGBA bytes of the pixel at (x,y).
func (f *Frame) At(x, y int) (r, g, b, a byte) {
	i := (y*f.Width + x) * 4
	return f.Pixels[i], f.Pixels[i+1], f.Pixels[i+2], f.Pixels[i+3]
}

// Set writes the RGBA bytes of the pixel at (x,y).
func (f *Frame) Set(x, y int, r, g, b, a byte) {
	i := (y*f.Width + x) * 4
	f.Pixels[i], f.Pixels[i+1], f.Pixels[i+2], f.Pixels[i+3] = r, g, b, a
}

// WritePPM writes frame as a binary (P6) PPM. PPM has no alpha channel;
// the alpha byte of every pixel is dropped and its RGB bytes are written
// unchanged. If any pixel has alpha != 255, a single warning is logged for
// the whole frame rather than once per pixel.
func WritePPM(w io.Writer, f *Frame) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, "P6\n%d %d\n255\n", f.Width, f.Height); err != nil {
		return err
	}

	droppedAlpha := false
	row := make([]byte, f.Width*3)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			r, g, b, a := f.At(x, y)
			if a != 255 {
				droppedAlpha = true
			}
			row[x*3+0] = r
			row[x*3+1] = g
			row[x*3+2] = b
		}
		if _, err := bw.Write(row); err != nil {
			return err
		}
	}

	if droppedAlpha {
		log.Printf("image: frame had non-opaque pixels, alpha channel dropped writing PPM")
	}

	return bw.Flush()
}
