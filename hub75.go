package hub75

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Color is an 8-bit-per-channel RGB color.
type Color struct {
	R, G, B uint8
}

// Common colors.
var (
	Black = Color{0, 0, 0}
	White = Color{255, 255, 255}
	Red   = Color{255, 0, 0}
	Green = Color{0, 255, 0}
	Blue  = Color{0, 0, 255}
)

// RGBA implements color.Color. Channels are scaled from 8-bit to 16-bit.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * 0x101
	g = uint32(c.G) * 0x101
	b = uint32(c.B) * 0x101
	return r, g, b, 0xFFFF
}

// toColor converts any color.Color to Color.
func toColor(c color.Color) color.Color {
	if cc, ok := c.(Color); ok {
		return cc
	}
	r, g, b, _ := c.RGBA()
	return Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
}

// ColorModel converts colors to Color.
var ColorModel = color.ModelFunc(toColor)

// Pixel is one item of a batch draw: a point on the canvas and its color.
type Pixel struct {
	Point image.Point
	Color Color
}

// WordSize is the hardware word width of a framebuffer's memory image. The
// transport layer uses it to configure its transfer unit size.
type WordSize int

const (
	// WordSize8 is used by the latched variant: one byte per word.
	WordSize8 WordSize = 8
	// WordSize16 is used by the plain variant: two bytes per word.
	WordSize16 WordSize = 16
)

// ByteOrder selects the column/word index permutation applied when words are
// written, compensating for peripherals that emit bytes out of logical order.
type ByteOrder int

const (
	// ByteOrderNatural leaves words in logical left-to-right order.
	ByteOrderNatural ByteOrder = iota
	// ByteOrderESP32 matches the original ESP32's I2S peripheral, which
	// emits each aligned group of four bytes in the order 2, 3, 0, 1 (and
	// each pair of 16-bit words swapped).
	ByteOrderESP32
)

// ComputeRows returns the number of scan lines for a panel with the given
// total row count. Two rows are driven simultaneously via paired sub-pixel
// signals, so a panel with ROWS rows has ROWS/2 addressable scan steps.
func ComputeRows(rows int) int {
	return rows / 2
}

// ComputeFrameCount returns the number of BCM bit-plane frames needed for
// the given color depth: 2^bits - 1.
func ComputeFrameCount(bits int) int {
	return 1<<uint(bits) - 1
}

// FramesOn returns how many of the leading BCM frames carry a channel's bit
// set for an 8-bit channel value v: frame n is lit iff v >= (n+1) * step
// where step = 1 << (8 - bits).
func FramesOn(v uint8, bits int) int {
	return int(v) >> uint(8-bits)
}

// Config describes a panel's geometry and the build-time behavioral
// switches shared by both framebuffer variants.
type Config struct {
	// Rows is the total number of rows in the panel. Must be even; at most
	// 64 (the row address is 5 bits wide and addresses row pairs).
	Rows int
	// Cols is the number of columns, including all chained panels.
	Cols int
	// Bits is the color depth per channel, 1 to 8. Memory grows with
	// 2^Bits - 1 frames.
	Bits int
	// ByteOrder is the word index permutation for the target peripheral.
	ByteOrder ByteOrder
	// SkipBlackPixels makes SetPixel with pure black return without
	// touching any frame. This trades "overwrite a lit pixel with black"
	// for speed: black then means "leave unchanged", not "set to off".
	// Off by default.
	SkipBlackPixels bool
}

// NRows returns the number of scan lines (Rows / 2).
func (c Config) NRows() int {
	return ComputeRows(c.Rows)
}

// FrameCount returns the number of BCM frames (2^Bits - 1).
func (c Config) FrameCount() int {
	return ComputeFrameCount(c.Bits)
}

// Validate panics if the configuration is degenerate. Misconfiguration is a
// programmer error, not a runtime error path.
func (c Config) Validate() {
	if c.Rows <= 0 || c.Rows%2 != 0 {
		panic(fmt.Sprintf("hub75: rows must be even and positive, got %d", c.Rows))
	}
	if c.Rows > 64 {
		panic(fmt.Sprintf("hub75: rows must be at most 64 (5-bit row address), got %d", c.Rows))
	}
	if c.Cols <= 0 {
		panic(fmt.Sprintf("hub75: cols must be positive, got %d", c.Cols))
	}
	if c.Bits < 1 || c.Bits > 8 {
		panic(fmt.Sprintf("hub75: bits must be 1..8, got %d", c.Bits))
	}
}

// FrameBuffer is the surface shared by both framebuffer variants and the
// tiling wrapper.
//
// The embedded draw.Image is the generic drawing contract: renderers address
// the panel in natural left-to-right, top-to-bottom coordinates and never
// see the hardware word layout. Drawing never fails; out-of-range
// coordinates are silently ignored.
type FrameBuffer interface {
	draw.Image

	// SetPixel sets one pixel. Out-of-range coordinates are a no-op.
	SetPixel(p image.Point, c Color)
	// DrawPixels applies SetPixel to each item in order; later writes at
	// the same coordinate win.
	DrawPixels(pixels []Pixel)
	// Erase clears all color bits while preserving control and address
	// bits. This is the routine way to blank the canvas.
	Erase()
	// Format re-stamps every control and address bit and clears all
	// colors. Buffers are formatted on construction; Format only needs to
	// be called again if the raw bytes were clobbered.
	Format()
	// WordSize is the hardware word width of the memory image.
	WordSize() WordSize
	// Bytes exposes the finished memory image for the transport layer,
	// zero-copy. The caller must not draw while a transfer is reading it.
	Bytes() []byte
}
