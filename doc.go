// Package hub75 builds the in-memory DMA image for scanned HUB75 RGB LED
// matrix panels.
//
// A HUB75 panel is not a random-access framebuffer: it behaves like a long
// daisy-chained shift register. Software must pre-render, for every scan
// line, the exact sequence of hardware words that a continuous output stream
// (DMA-fed I2S, PIO, parallel GPIO, SPI) pushes to the panel at high
// frequency. Brightness is reproduced through time-sliced bit-planes known
// as Binary Code Modulation (BCM): one full-panel image per bit-plane, each
// displayed for a period proportional to its binary weight.
//
// # Panel signals
//
//   - R1 G1 B1 / R2 G2 B2 — serial color data for the upper and lower halves
//     of the active scan line (a panel with ROWS rows has ROWS/2 scan steps)
//   - CLK — shift-register clock
//   - LAT/STB — latch; copies the shifted data to the LED drivers for the
//     row selected by the address lines
//   - OE — output enable (active low); LEDs are lit while OE is low
//   - A B C D (E) — row-address select lines
//
// # Packages
//
// The bit-exact word layouts live in two sibling packages, selected by the
// controller board wiring:
//
//   - latched: 8-bit words for boards with an external hardware latch on the
//     address lines. Each scan line carries 4 dedicated address words ahead
//     of the color data, halving memory use.
//   - plain: 16-bit words carrying color, address, and control in every
//     word. No external latch hardware required.
//
// Package tiling chains several panels into one logical canvas with a
// serpentine pixel-remapping strategy.
//
// Both framebuffer flavours implement draw.Image, so anything that renders
// into a standard library image can render straight into the DMA image, and
// both expose the finished buffer as a raw byte slice for the transport
// layer. Dev wraps a framebuffer behind a periph.io spi.Port and implements
// the display.Drawer interface.
//
// # Basic usage
//
//	cfg := hub75.Config{Rows: 32, Cols: 64, Bits: 3}
//	fb := latched.New(cfg)
//
//	// Draw with anything that understands draw.Image.
//	draw.Draw(fb, image.Rect(10, 10, 30, 30), &image.Uniform{hub75.Red}, image.Point{}, draw.Src)
//
//	// Or set pixels directly.
//	fb.SetPixel(image.Pt(40, 20), hub75.Color{R: 0, G: 0, B: 255})
//
//	// Hand the finished image to the transport layer.
//	stream(fb.Bytes()) // one byte per word for latched, two for plain
//
// # Concurrency
//
// All operations are synchronous and complete deterministically; the
// framebuffer performs no locking and allocates no memory after
// construction. A transport engine reading Bytes() while the application
// mutates pixels is the caller's hazard to manage, typically by double
// buffering or by quiescing the transfer before drawing.
package hub75
