// Package latched implements the 8-bit HUB75 framebuffer variant for
// controller boards with an external hardware latch on the address lines.
//
// Each scan line is stored as COLS data words followed by 4 address words.
// The address words drive the controller's latch: the first three
// transmitted carry latch-high with the new row address (the controller
// gates the pixel clock while latch is high, giving the address lines time
// to settle), and the final one drops latch to signal "address stable, do
// not re-latch". The last data word of every line carries output-enable low,
// blanking the panel for exactly one hardware clock at the row boundary.
//
// Memory per buffer is FRAME_COUNT x NROWS x (COLS + 4) bytes where
// FRAME_COUNT = 2^BITS - 1, half of what the 16-bit plain variant needs.
package latched

import (
	"fmt"
	"image"
	"image/color"

	hub75 "github.com/liebman/hub75-framebuffer"
)

// addressWordsPerRow is fixed by the controller board's settle-time budget:
// the number of latch-high words must match the gated clock cycles.
const addressWordsPerRow = 4

// mapIndex applies the byte-order permutation to a word index. The ESP32's
// I2S peripheral emits each aligned group of four bytes in the order
// 2, 3, 0, 1, so words are stored pre-swapped.
func mapIndex(order hub75.ByteOrder, i int) int {
	if order == hub75.ByteOrderESP32 {
		return i ^ 2
	}
	return i
}

// addrTables holds the formatted, permuted address words for every possible
// row index and byte order. Read-only after init.
var addrTables [2][32][addressWordsPerRow]byte

func init() {
	for order := range addrTables {
		for addr := range addrTables[order] {
			for i := 0; i < addressWordsPerRow; i++ {
				var w AddressWord
				w.SetLatch(i != addressWordsPerRow-1)
				w.SetPwmEnable(false) // inert, kept for layout compatibility
				w.SetRowAddress(uint8(addr))
				addrTables[order][addr][mapIndex(hub75.ByteOrder(order), i)] = byte(w)
			}
		}
	}
}

// Row is a view over one scan line's words: COLS data words followed by 4
// address words. It holds no data of its own; mutations write through to the
// framebuffer it was taken from.
type Row struct {
	words []byte
	cols  int
	order hub75.ByteOrder
}

// Format stamps the control bits and the row index into the address words
// and resets every data word to "enabled, no color".
func (r Row) Format(addr uint8) {
	copy(r.words[r.cols:], addrTables[r.order][addr&addrRowMask][:])

	var w DataWord
	w.SetLatch(false)
	w.SetOutputEnable(true)
	for i := 0; i < r.cols; i++ {
		if i == r.cols-1 {
			w.SetOutputEnable(false)
		}
		r.words[mapIndex(r.order, i)] = byte(w)
	}
}

// ClearColors zeroes only the color bits of every data word, leaving latch,
// output-enable, and the address words untouched. This is the fast path for
// redrawing from a blank canvas: about half the work of Format.
func (r Row) ClearColors() {
	for i := 0; i < r.cols; i++ {
		r.words[i] &^= byte(dataColorMask)
	}
}

// SetColor0 sets sub-pixel 0 (upper row half) at the given logical column.
func (r Row) SetColor0(col int, red, grn, blu bool) {
	i := mapIndex(r.order, col)
	w := DataWord(r.words[i])
	w.SetColor0(red, grn, blu)
	r.words[i] = byte(w)
}

// SetColor1 sets sub-pixel 1 (lower row half) at the given logical column.
func (r Row) SetColor1(col int, red, grn, blu bool) {
	i := mapIndex(r.order, col)
	w := DataWord(r.words[i])
	w.SetColor1(red, grn, blu)
	r.words[i] = byte(w)
}

// DataWord returns the data word at the given logical column, undoing the
// byte-order permutation.
func (r Row) DataWord(col int) DataWord {
	return DataWord(r.words[mapIndex(r.order, col)])
}

// AddressWord returns the address word at the given physical position 0-3.
func (r Row) AddressWord(i int) AddressWord {
	return AddressWord(r.words[r.cols+i])
}

// Cols returns the number of data words in the row.
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
	rowSize := f.cols + addressWordsPerRow
	base := n * rowSize
	return Row{words: f.buf[base : base+rowSize], cols: f.cols, order: f.order}
}

// Format formats every scan line with its row index.
func (f Frame) Format() {
	for n := 0; n < f.nrows; n++ {
		f.Row(n).Format(uint8(n))
	}
}

// SetPixel sets one sub-pixel's color bits. y selects the scan line
// (y mod NROWS) and the sub-pixel half (0 for y < NROWS, 1 otherwise).
// Coordinates are not validated here; the framebuffer clamps before calling
// and raw out-of-range access fails on slice bounds.
func (f Frame) SetPixel(y, x int, red, grn, blu bool) {
	if y < f.nrows {
		f.Row(y).SetColor0(x, red, grn, blu)
	} else {
		f.Row(y - f.nrows).SetColor1(x, red, grn, blu)
	}
}

// DmaFrameBuffer is the complete pre-rendered memory image for one panel
// chain: FRAME_COUNT bit-plane frames in a single contiguous allocation,
// ready to be streamed to the hardware unmodified.
//
// It implements draw.Image and hub75.FrameBuffer. A new buffer is formatted
// and immediately display-safe.
type DmaFrameBuffer struct {
	cfg        hub75.Config
	nrows      int
	frameCount int
	rowSize    int
	frameSize  int
	rect       image.Rectangle

	// buf is the DMA image: frames x rows x (data words + address words).
	buf []byte
	// template is one formatted, permuted scan line's data words; Format
	// copies it instead of recomputing bit-by-bit.
	template []byte
}

var _ hub75.FrameBuffer = &DmaFrameBuffer{}

// New creates a formatted framebuffer for the given panel configuration.
// It panics on degenerate geometry; misconfiguration is a programmer error.
// No further memory is allocated after construction.
func New(cfg hub75.Config) *DmaFrameBuffer {
	cfg.Validate()
	if cfg.ByteOrder == hub75.ByteOrderESP32 && cfg.Cols%4 != 0 {
		panic(fmt.Sprintf("latched: ESP32 byte order needs cols divisible by 4, got %d", cfg.Cols))
	}

	fb := &DmaFrameBuffer{
		cfg:        cfg,
		nrows:      cfg.NRows(),
		frameCount: cfg.FrameCount(),
		rowSize:    cfg.Cols + addressWordsPerRow,
		rect:       image.Rect(0, 0, cfg.Cols, cfg.Rows),
	}
	fb.frameSize = fb.nrows * fb.rowSize
	fb.buf = make([]byte, fb.frameCount*fb.frameSize)

	// Build the data word template once: enabled, no color, with the
	// trailing blank guard, permuted for the byte order.
	fb.template = make([]byte, cfg.Cols)
	var w DataWord
	w.SetOutputEnable(true)
	for i := 0; i < cfg.Cols; i++ {
		if i == cfg.Cols-1 {
			w.SetOutputEnable(false)
		}
		fb.template[mapIndex(cfg.ByteOrder, i)] = byte(w)
	}

	fb.Format()
	return fb
}

// Frame returns a view of bit-plane n.
func (fb *DmaFrameBuffer) Frame(n int) Frame {
	base := n * fb.frameSize
	return Frame{
		buf:   fb.buf[base : base+fb.frameSize],
		cols:  fb.cfg.Cols,
		nrows: fb.nrows,
		order: fb.cfg.ByteOrder,
	}
}

// FrameCount returns the number of BCM bit-plane frames.
func (fb *DmaFrameBuffer) FrameCount() int {
	return fb.frameCount
}

// Format re-stamps every frame's control and address bits and clears all
// color bits. Required only after the raw bytes were clobbered; Erase is the
// routine way to blank the canvas.
func (fb *DmaFrameBuffer) Format() {
	for f := 0; f < fb.frameCount; f++ {
		for n := 0; n < fb.nrows; n++ {
			base := f*fb.frameSize + n*fb.rowSize
			copy(fb.buf[base:base+fb.cfg.Cols], fb.template)
			copy(fb.buf[base+fb.cfg.Cols:base+fb.rowSize], addrTables[fb.cfg.ByteOrder][n][:])
		}
	}
}

// Erase clears the color bits of every data word while preserving control
// and address bits. Cheaper per word than Format.
func (fb *DmaFrameBuffer) Erase() {
	for f := 0; f < fb.frameCount; f++ {
		for n := 0; n < fb.nrows; n++ {
			base := f*fb.frameSize + n*fb.rowSize
			data := fb.buf[base : base+fb.cfg.Cols]
			for i := range data {
				data[i] &^= byte(dataColorMask)
			}
		}
	}
}

// SetPixel sets one pixel. Out-of-range coordinates are a silent no-op:
// shape rasterization routinely produces partially off-panel coordinates
// and that is not an error.
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

	// Frame n carries a channel's bit iff value >= (n+1) << (8-BITS),
	// i.e. the first FramesOn(value) frames are lit.
	rOn := hub75.FramesOn(c.R, fb.cfg.Bits)
	gOn := hub75.FramesOn(c.G, fb.cfg.Bits)
	bOn := hub75.FramesOn(c.B, fb.cfg.Bits)

	col := mapIndex(fb.cfg.ByteOrder, x)
	n := y % fb.nrows
	offset := n*fb.rowSize + col
	lower := y >= fb.nrows

	for f := 0; f < fb.frameCount; f++ {
		w := DataWord(fb.buf[f*fb.frameSize+offset])
		if lower {
			w.SetColor1(f < rOn, f < gOn, f < bOn)
		} else {
			w.SetColor0(f < rOn, f < gOn, f < bOn)
		}
		fb.buf[f*fb.frameSize+offset] = byte(w)
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

// PixelAt reads a pixel back from the bit-planes. Values are quantized to
// the configured depth: a channel written as v reads back as
// FramesOn(v) << (8-BITS). Out-of-range coordinates read as black.
func (fb *DmaFrameBuffer) PixelAt(x, y int) hub75.Color {
	if !(image.Point{X: x, Y: y}.In(fb.rect)) {
		return hub75.Color{}
	}

	col := mapIndex(fb.cfg.ByteOrder, x)
	offset := (y%fb.nrows)*fb.rowSize + col
	lower := y >= fb.nrows

	var r, g, b int
	for f := 0; f < fb.frameCount; f++ {
		w := DataWord(fb.buf[f*fb.frameSize+offset])
		if lower {
			if w.Red2() {
				r++
			}
			if w.Grn2() {
				g++
			}
			if w.Blu2() {
				b++
			}
		} else {
			if w.Red1() {
				r++
			}
			if w.Grn1() {
				g++
			}
			if w.Blu1() {
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

// WordSize returns the hardware word width: 8 bits.
func (fb *DmaFrameBuffer) WordSize() hub75.WordSize {
	return hub75.WordSize8
}

// Bytes exposes the DMA image zero-copy: exactly the FRAME_COUNT-frame
// array, FRAME_COUNT x NROWS x (COLS+4) bytes. The contents are only
// meaningful between construction (or Format) and the next mutation, and
// the caller must not draw while a transfer is reading the slice.
func (fb *DmaFrameBuffer) Bytes() []byte {
	return fb.buf
}

// String returns a short description of the buffer geometry.
func (fb *DmaFrameBuffer) String() string {
	return fmt.Sprintf("latched.DmaFrameBuffer{%dx%d bits:%d frames:%d size:%d}",
		fb.cfg.Cols, fb.cfg.Rows, fb.cfg.Bits, fb.frameCount, len(fb.buf))
}
