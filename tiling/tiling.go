// Package tiling chains several HUB75 panels into one seamless logical
// canvas.
//
// Physically, chained panels form one long shift register: the transport
// layer sees a single framebuffer whose column count is multiplied by the
// number of panels. A PixelRemapper translates virtual-canvas coordinates
// into that physical buffer, and TiledFrameBuffer wraps a backing
// framebuffer so drawing code can address the whole wall as one display.
package tiling

import (
	"fmt"
	"image"
	"image/color"

	hub75 "github.com/liebman/hub75-framebuffer"
)

// ComputeTiledCols returns the column count the backing framebuffer needs
// for a grid of panels chained end-to-end.
func ComputeTiledCols(cols, panelsWide, panelsHigh int) int {
	return cols * panelsWide * panelsHigh
}

// PixelRemapper is a pure transform from virtual-canvas coordinates to
// physical-buffer coordinates. Implementations hold no drawing state.
type PixelRemapper interface {
	// Remap translates a virtual point to its physical buffer location.
	// Negative coordinates pass through unmapped so off-canvas draws stay
	// off-canvas.
	Remap(p image.Point) image.Point
	// VirtualSize returns the logical canvas dimensions.
	VirtualSize() (rows, cols int)
	// BufferSize returns the physical backing buffer dimensions.
	BufferSize() (rows, cols int)
}

// ChainTopRightDown is the serpentine chaining strategy: looking at the
// front, panels are chained starting at the top right, leftwards to the end
// of the row, then wrapping down to the next row which is chained left to
// right. Every second row of panels is mounted upside-down, which minimizes
// cabling between rows.
type ChainTopRightDown struct {
	PanelRows, PanelCols int
	TileRows, TileCols   int
}

// NewChainTopRightDown creates the strategy for a grid of
// tileRows x tileCols panels of panelRows x panelCols pixels each.
func NewChainTopRightDown(panelRows, panelCols, tileRows, tileCols int) ChainTopRightDown {
	return ChainTopRightDown{
		PanelRows: panelRows,
		PanelCols: panelCols,
		TileRows:  tileRows,
		TileCols:  tileCols,
	}
}

// VirtualSize returns the logical canvas dimensions.
func (c ChainTopRightDown) VirtualSize() (rows, cols int) {
	return c.PanelRows * c.TileRows, c.PanelCols * c.TileCols
}

// BufferSize returns the physical buffer dimensions: one panel tall, all
// panels wide.
func (c ChainTopRightDown) BufferSize() (rows, cols int) {
	return c.PanelRows, c.PanelCols * c.TileCols * c.TileRows
}

// Remap translates a virtual point to its physical buffer location.
//
// Panel bands are numbered from the bottom. Even bands map straight
// through; odd bands are mounted upside-down and mirror in both axes.
func (c ChainTopRightDown) Remap(p image.Point) image.Point {
	if p.X < 0 || p.Y < 0 {
		return p
	}
	virtCols := c.PanelCols * c.TileCols
	fbCols := virtCols * c.TileRows
	row := c.TileRows - p.Y/c.PanelRows - 1
	if row%2 == 1 {
		return image.Point{
			X: fbCols - p.X - row*virtCols - 1,
			Y: c.PanelRows - 1 - p.Y%c.PanelRows,
		}
	}
	return image.Point{
		X: row*virtCols + p.X,
		Y: p.Y % c.PanelRows,
	}
}

// TiledFrameBuffer presents several chained panels as one canvas. It holds
// no pixel data of its own: every draw is remapped and forwarded to the
// backing framebuffer, whose memory image the transport layer streams
// unchanged.
type TiledFrameBuffer struct {
	fb    hub75.FrameBuffer
	remap PixelRemapper
	rect  image.Rectangle
}

var _ hub75.FrameBuffer = &TiledFrameBuffer{}

// New wraps a backing framebuffer with a remapping strategy. It panics if
// the backing buffer's dimensions do not match the strategy's BufferSize;
// that mismatch is a programmer error.
func New(fb hub75.FrameBuffer, remap PixelRemapper) *TiledFrameBuffer {
	fbRows, fbCols := remap.BufferSize()
	if b := fb.Bounds(); b.Dx() != fbCols || b.Dy() != fbRows {
		panic(fmt.Sprintf("tiling: backing buffer is %dx%d, remapper needs %dx%d",
			b.Dx(), b.Dy(), fbCols, fbRows))
	}
	virtRows, virtCols := remap.VirtualSize()
	return &TiledFrameBuffer{
		fb:    fb,
		remap: remap,
		rect:  image.Rect(0, 0, virtCols, virtRows),
	}
}

// SetPixel sets one pixel on the virtual canvas. Coordinates outside the
// canvas are a silent no-op, consistent with the single-panel policy.
func (t *TiledFrameBuffer) SetPixel(p image.Point, c hub75.Color) {
	if !p.In(t.rect) {
		return
	}
	t.fb.SetPixel(t.remap.Remap(p), c)
}

// DrawPixels remaps each item and forwards it in order. It cannot fail.
func (t *TiledFrameBuffer) DrawPixels(pixels []hub75.Pixel) {
	for _, p := range pixels {
		t.SetPixel(p.Point, p.Color)
	}
}

// Erase clears the backing buffer's color bits.
func (t *TiledFrameBuffer) Erase() {
	t.fb.Erase()
}

// Format re-stamps the backing buffer's control and address bits.
func (t *TiledFrameBuffer) Format() {
	t.fb.Format()
}

// ColorModel implements image.Image.
func (t *TiledFrameBuffer) ColorModel() color.Model {
	return t.fb.ColorModel()
}

// Bounds implements image.Image: the virtual canvas dimensions.
func (t *TiledFrameBuffer) Bounds() image.Rectangle {
	return t.rect
}

// At implements image.Image, reading through the remap.
func (t *TiledFrameBuffer) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}.In(t.rect)) {
		return hub75.Color{}
	}
	p := t.remap.Remap(image.Point{X: x, Y: y})
	return t.fb.At(p.X, p.Y)
}

// Set implements draw.Image.
func (t *TiledFrameBuffer) Set(x, y int, c color.Color) {
	t.SetPixel(image.Point{X: x, Y: y}, hub75.ColorModel.Convert(c).(hub75.Color))
}

// WordSize returns the backing buffer's hardware word width.
func (t *TiledFrameBuffer) WordSize() hub75.WordSize {
	return t.fb.WordSize()
}

// Bytes exposes the backing buffer's memory image zero-copy.
func (t *TiledFrameBuffer) Bytes() []byte {
	return t.fb.Bytes()
}
