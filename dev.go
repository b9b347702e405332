package hub75

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Opts is the configuration for a Dev transport front-end.
type Opts struct {
	// Freq is the SPI clock frequency (default: 10MHz).
	Freq physic.Frequency

	// OE is an optional output-enable (blanking) pin. When provided it is
	// driven high (blanked) while a refresh streams and low afterwards.
	OE gpio.PinOut
}

// Dev streams a framebuffer's memory image to a HUB75 chain through a SPI
// port. It implements the display.Drawer interface from periph.io.
//
// The panel has no command channel: the only thing ever sent on the wire is
// the finished DMA image. Production drivers keep re-streaming the buffer
// continuously; Dev sends one full image per Refresh, which is enough for
// bring-up and tests.
type Dev struct {
	// Communication
	c  conn.Conn   // SPI connection
	oe gpio.PinOut // Blanking pin (optional)

	// Backing image
	fb   FrameBuffer
	rect image.Rectangle

	// State
	halted bool
}

// NewSPI creates a Dev streaming fb through the given SPI port.
//
// The port is configured for Mode0 with the transfer unit width taken from
// fb.WordSize(): 8-bit transfers for the latched variant, 16-bit for the
// plain variant. opts can be nil to use defaults.
func NewSPI(p spi.Port, fb FrameBuffer, opts *Opts) (*Dev, error) {
	if fb == nil {
		return nil, errors.New("hub75: framebuffer is required")
	}
	if opts == nil {
		opts = &Opts{}
	}

	freq := opts.Freq
	if freq == 0 {
		freq = 10 * physic.MegaHertz
	}

	c, err := p.Connect(freq, spi.Mode0, int(fb.WordSize()))
	if err != nil {
		return nil, fmt.Errorf("hub75: failed to connect: %w", err)
	}

	d := &Dev{
		c:    c,
		oe:   opts.OE,
		fb:   fb,
		rect: fb.Bounds(),
	}
	return d, nil
}

// FrameBuffer returns the backing framebuffer for direct drawing. Call
// Refresh after mutating it.
func (d *Dev) FrameBuffer() FrameBuffer {
	return d.fb
}

// ColorModel returns the color model of the display.
func (d *Dev) ColorModel() color.Model {
	return ColorModel
}

// Bounds returns the image bounds of the display.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Draw draws an image onto the display and streams the result.
// The dst rectangle specifies the destination region on the display.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if d.halted {
		return errors.New("hub75: halted")
	}

	dst = dst.Intersect(d.rect)
	if dst.Empty() {
		return nil
	}

	draw.Draw(d.fb, dst, src, sp, draw.Src)
	return d.Refresh()
}

// Refresh streams the entire memory image to the chain in a single
// transaction, blanking around it when an OE pin was provided.
func (d *Dev) Refresh() error {
	if d.halted {
		return errors.New("hub75: halted")
	}

	if d.oe != nil {
		if err := d.oe.Out(gpio.High); err != nil {
			return fmt.Errorf("hub75: failed to blank: %w", err)
		}
	}
	if err := d.c.Tx(d.fb.Bytes(), nil); err != nil {
		return fmt.Errorf("hub75: failed to stream frame: %w", err)
	}
	if d.oe != nil {
		if err := d.oe.Out(gpio.Low); err != nil {
			return fmt.Errorf("hub75: failed to unblank: %w", err)
		}
	}
	return nil
}

// Halt blanks the display and stops accepting draws until a new Dev is
// created.
func (d *Dev) Halt() error {
	if d.halted {
		return nil
	}
	d.fb.Erase()
	err := d.Refresh()
	d.halted = true
	if d.oe != nil {
		if oeErr := d.oe.Out(gpio.High); err == nil {
			err = oeErr
		}
	}
	return err
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("hub75.Dev{%dx%d}", d.rect.Dx(), d.rect.Dy())
}

var _ display.Drawer = &Dev{}
