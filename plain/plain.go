// Package plain implements the 16-bit HUB75 framebuffer variant for
// controller boards without external latch hardware.
//
// Every word carries color, row address, and control together, so the
// output stream alone drives all panel signals. While a scan line shifts
// in, its words carry the address of the previously latched line (the one
// still being displayed); the final word of the line carries the new
// address with latch high and output-enable low, blanking the panel for one
// clock while the fresh data latches.
//
// The memory image is little-endian 16-bit words, twice the size of the
// latched variant for the same panel.
package plain

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"

	hub75 "github.com/liebman/hub75-framebuffer"
)

// Entry is the 16-bit word carrying two sub-pixels' color bits, the row
// address, and the control signals.
//
// Bit layout:
//
//	bits 12-8 row address
//	bit  7    output enable
//	bit  6    latch
//	bit  5    blue, sub-pixel 1 (lower row half)
//	bit  4    green, sub-pixel 1
//	bit  3    red, sub-pixel 1
//	bit  2    blue, sub-pixel 0 (upper row half)
//	bit  1    green, sub-pixel 0
//	bit  0    red, sub-pixel 0
//
// The latch and output-enable positions match the latched variant's words.
type Entry uint16

const (
	entryRed1 Entry = 1 << iota
	entryGrn1
	entryBlu1
	entryRed2
	entryGrn2
	entryBlu2
	entryLatch
	entryOutputEnable

	entryColorMask = entryRed1 | entryGrn1 | entryBlu1 | entryRed2 | entryGrn2 | entryBlu2

	entryAddrShift = 8
	entryAddrMask  = Entry(0x1F) << entryAddrShift
)

func (e *Entry) setBit(mask Entry, on bool) {
	if on {
		*e |= mask
	} else {
		*e &^= mask
	}
}

// RowAddress returns the 5-bit row address.
func (e Entry) RowAddress() uint8 {
	return uint8(e >> entryAddrShift & 0x1F)
}

// SetRowAddress stores a row address, truncated to 5 bits.
func (e *Entry) SetRowAddress(addr uint8) {
	*e = *e&^entryAddrMask | Entry(addr&0x1F)<<entryAddrShift
}

// OutputEnable reports whether the output-enable bit is set.
func (e Entry) OutputEnable() bool { return e&entryOutputEnable != 0 }

// SetOutputEnable sets the output-enable bit.
func (e *Entry) SetOutputEnable(on bool) { e.setBit(entryOutputEnable, on) }

// Latch reports whether the latch bit is set.
func (e Entry) Latch() bool { return e&entryLatch != 0 }

// SetLatch sets the latch bit.
func (e *Entry) SetLatch(on bool) { e.setBit(entryLatch, on) }

// Red1 reports the red bit of sub-pixel 0.
func (e Entry) Red1() bool { return e&entryRed1 != 0 }

// Grn1 reports the green bit of sub-pixel 0.
func (e Entry) Grn1() bool { return e&entryGrn1 != 0 }

// Blu1 reports the blue bit of sub-pixel 0.
func (e Entry) Blu1() bool { return e&entryBlu1 != 0 }

// Red2 reports the red bit of sub-pixel 1.
func (e Entry) Red2() bool { return e&entryRed2 != 0 }

// Grn2 reports the green bit of sub-pixel 1.
func (e Entry) Grn2() bool { return e&entryGrn2 != 0 }

// Blu2 reports the blue bit of sub-pixel 1.
func (e Entry) Blu2() bool { return e&entryBlu2 != 0 }

// SetColor0 sets the three color bits of sub-pixel 0 (upper row half).
func (e *Entry) SetColor0(r, g, b bool) {
	e.setBit(entryRed1, r)
	e.setBit(entryGrn1, g)
	e.setBit(entryBlu1, b)
}

// SetColor1 sets the three color bits of sub-pixel 1 (lower row half).
func (e *Entry) SetColor1(r, g, b bool) {
	e.setBit(entryRed2, r)
	e.setBit(entryGrn2, g)
	e.setBit(entryBlu2, b)
}

// ClearColors zeroes all six color bits, leaving address and control bits
// untouched.
func (e *Entry) ClearColors() {
	*e &^= entryColorMask
}

// mapIndex applies the byte-order permutation to a word index. In 16-bit
// mode the ESP32's I2S peripheral emits each aligned pair of words swapped.
func mapIndex(order hub75.ByteOrder, i int) int {
	if order == hub75.ByteOrderESP32 {
		return i ^ 1
	}
	return i
}

// Row is a view over one scan line's words.
type Row struct {
	words []byte // 2 bytes per word, little-endian
	cols  int
	order hub75.ByteOrder
}

func (r Row) word(i int) Entry {
	return Entry(binary.LittleEndian.Uint16(r.words[2*i:]))
}

func (r Row) setWord(i int, e Entry) {
	binary.LittleEndian.PutUint16(r.words[2*i:], uint16(e))
}

// Format resets the line to "enabled, no color". Leading words carry
// prevAddr, the address still latched while this line shifts in; the final
// word carries addr with latch high and output-enable low.
func (r Row) Format(addr, prevAddr uint8) {
	var e Entry
	e.SetOutputEnable(true)
	e.SetRowAddress(prevAddr)
	for i := 0; i < r.cols; i++ {
		if i == r.cols-1 {
			e.SetOutputEnable(false)
			e.SetLatch(true)
			e.SetRowAddress(addr)
		}
		r.setWord(mapIndex(r.order, i), e)
	}
}

// ClearColors zeroes only the color bits of every word. Fast path for
// blanking the line.
func (r Row) ClearColors() {
	// Colors live in the low byte of every little-endian word.
	for i := 0; i < len(r.words); i += 2 {
		r.words[i] &^= byte(entryColorMask)
	}
}

// SetColor0 sets sub-pixel 0 (upper row half) at the given logical column.
func (r Row) SetColor0(col int, red, grn, blu bool) {
	i := mapIndex(r.order, col)
	e := r.word(i)
	e.SetColor0(red, grn, blu)
	r.setWord(i, e)
}

// SetColor1 sets sub-pixel 1 (lower row half) at the given logical column.
func (r Row) SetColor1(col int, red, grn, blu bool) {
	i := mapIndex(r.order, col)
	e := r.word(i)
	e.SetColor1(red, grn, blu)
	r.setWord(i, e)
}

// Entry returns the word at the given logical column, undoing the
// byte-order permutation.
func (r Row) Entry(col int) Entry {
	return r.word(mapIndex(r.order, col))
}

// Cols returns the number of words in the row.
func (r Row) Cols() int {
	return r.cols
}

// Frame is a view over one full-panel BCM bit-plane: NROWS scan lines.
type Frame struct {
	buf   []byte
	cols  int
	nrows int
	order hub75.ByteOrder
}

// Row returns a view of scan line n.
func (f Frame) Row(n int) Row {
	rowBytes := 2 * f.cols
	base := n * rowBytes
	return Row{words: f.buf[base : base+rowBytes], cols: f.cols, order: f.order}
}

// Format formats every scan line, chaining each line's previous address.
func (f Frame) Format() {
	for n := 0; n < f.nrows; n++ {
		prev := (n + f.nrows - 1) % f.nrows
		f.Row(n).Format(uint8(n), uint8(prev))
	}
}

// SetPixel sets one sub-pixel's color bits. y selects the scan line
// (y mod NROWS) and the sub-pixel half.
func (f Frame) SetPixel(y, x int, red, grn, blu bool) {
	if y < f.nrows {
		f.Row(y).SetColor0(x, red, grn, blu)
	} else {
		f.Row(y - f.nrows).SetColor1(x, red, grn, blu)
	}
}

// DmaFrameBuffer is the complete pre-rendered memory image for one panel
// chain in the 16-bit single-word format. It implements draw.Image and
// hub75.FrameBuffer. A new buffer is formatted and immediately display-safe.
type DmaFrameBuffer struct {
	cfg        hub75.Config
	nrows      int
	frameCount int
	rowBytes   int
	frameBytes int
	rect       image.Rectangle
	buf        []byte
}

var _ hub75.FrameBuffer = &DmaFrameBuffer{}

// New creates a formatted framebuffer for the given panel configuration.
// It panics on degenerate geometry. No further memory is allocated after
// construction.
func New(cfg hub75.Config) *DmaFrameBuffer {
	cfg.Validate()
	if cfg.ByteOrder == hub75.ByteOrderESP32 && cfg.Cols%2 != 0 {
		panic(fmt.Sprintf("plain: ESP32 byte order needs cols divisible by 2, got %d", cfg.Cols))
	}

	fb := &DmaFrameBuffer{
		cfg:        cfg,
		nrows:      cfg.NRows(),
		frameCount: cfg.FrameCount(),
		rowBytes:   2 * cfg.Cols,
		rect:       image.Rect(0, 0, cfg.Cols, cfg.Rows),
	}
	fb.frameBytes = fb.nrows * fb.rowBytes
	fb.buf = make([]byte, fb.frameCount*fb.frameBytes)
	fb.Format()
	return fb
}

// Frame returns a view of bit-plane n.
func (fb *DmaFrameBuffer) Frame(n int) Frame {
	base := n * fb.frameBytes
	return Frame{
		buf:   fb.buf[base : base+fb.frameBytes],
		cols:  fb.cfg.Cols,
		nrows: fb.nrows,
		order: fb.cfg.ByteOrder,
	}
}

// FrameCount returns the number of BCM bit-plane frames.
func (fb *DmaFrameBuffer) FrameCount() int {
	return fb.frameCount
}

// Format re-stamps every frame's address and control bits and clears all
// color bits.
func (fb *DmaFrameBuffer) Format() {
	for f := 0; f < fb.frameCount; f++ {
		fb.Frame(f).Format()
	}
}

// Erase clears the color bits of every word while preserving address and
// control bits.
func (fb *DmaFrameBuffer) Erase() {
	// Colors live in the low byte of every little-endian word.
	for i := 0; i < len(fb.buf); i += 2 {
		fb.buf[i] &^= byte(entryColorMask)
	}
}

// SetPixel sets one pixel. Out-of-range coordinates are a silent no-op.
func (fb *DmaFrameBuffer) SetPixel(p image.Point, c hub75.Color) {
	if p.X < 0 || p.Y < 0 {
		return
	}
	fb.setPixel(p.X, p.Y, c)
}

func (fb *DmaFrameBuffer) setPixel(x, y int, c hub75.Color) {
	if x >= fb.cfg.Cols || y >= fb.cfg.Rows {
		return
	}
	if fb.cfg.SkipBlackPixels && c == hub75.Black {
		return
	}

	rOn := hub75.FramesOn(c.R, fb.cfg.Bits)
	gOn := hub75.FramesOn(c.G, fb.cfg.Bits)
	bOn := hub75.FramesOn(c.B, fb.cfg.Bits)

	col := mapIndex(fb.cfg.ByteOrder, x)
	offset := (y%fb.nrows)*fb.rowBytes + 2*col
	lower := y >= fb.nrows

	for f := 0; f < fb.frameCount; f++ {
		i := f*fb.frameBytes + offset
		e := Entry(binary.LittleEndian.Uint16(fb.buf[i:]))
		if lower {
			e.SetColor1(f < rOn, f < gOn, f < bOn)
		} else {
			e.SetColor0(f < rOn, f < gOn, f < bOn)
		}
		binary.LittleEndian.PutUint16(fb.buf[i:], uint16(e))
	}
}

// DrawPixels applies SetPixel's logic to each item in order. Later items
// override earlier ones at the same coordinate. It cannot fail.
func (fb *DmaFrameBuffer) DrawPixels(pixels []hub75.Pixel) {
	for _, p := range pixels {
		fb.SetPixel(p.Point, p.Color)
	}
}

// ColorModel implements image.Image.
func (fb *DmaFrameBuffer) ColorModel() color.Model {
	return hub75.ColorModel
}

// Bounds implements image.Image.
func (fb *DmaFrameBuffer) Bounds() image.Rectangle {
	return fb.rect
}

// At implements image.Image. See PixelAt.
func (fb *DmaFrameBuffer) At(x, y int) color.Color {
	return fb.PixelAt(x, y)
}

// PixelAt reads a pixel back from the bit-planes, quantized to the
// configured depth. Out-of-range coordinates read as black.
func (fb *DmaFrameBuffer) PixelAt(x, y int) hub75.Color {
	if !(image.Point{X: x, Y: y}.In(fb.rect)) {
		return hub75.Color{}
	}

	col := mapIndex(fb.cfg.ByteOrder, x)
	offset := (y%fb.nrows)*fb.rowBytes + 2*col
	lower := y >= fb.nrows

	var r, g, b int
	for f := 0; f < fb.frameCount; f++ {
		e := Entry(binary.LittleEndian.Uint16(fb.buf[f*fb.frameBytes+offset:]))
		if lower {
			if e.Red2() {
				r++
			}
			if e.Grn2() {
				g++
			}
			if e.Blu2() {
				b++
			}
		} else {
			if e.Red1() {
				r++
			}
			if e.Grn1() {
				g++
			}
			if e.Blu1() {
				b++
			}
		}
	}

	shift := uint(8 - fb.cfg.Bits)
	return hub75.Color{R: uint8(r) << shift, G: uint8(g) << shift, B: uint8(b) << shift}
}

// Set implements draw.Image.
func (fb *DmaFrameBuffer) Set(x, y int, c color.Color) {
	if x < 0 || y < 0 {
		return
	}
	fb.setPixel(x, y, hub75.ColorModel.Convert(c).(hub75.Color))
}

// WordSize returns the hardware word width: 16 bits.
func (fb *DmaFrameBuffer) WordSize() hub75.WordSize {
	return hub75.WordSize16
}

// Bytes exposes the DMA image zero-copy: FRAME_COUNT x NROWS x COLS
// little-endian 16-bit words. The caller must not draw while a transfer is
// reading the slice.
func (fb *DmaFrameBuffer) Bytes() []byte {
	return fb.buf
}

// String returns a short description of the buffer geometry.
func (fb *DmaFrameBuffer) String() string {
	return fmt.Sprintf("plain.DmaFrameBuffer{%dx%d bits:%d frames:%d size:%d}",
		fb.cfg.Cols, fb.cfg.Rows, fb.cfg.Bits, fb.frameCount, len(fb.buf))
}
