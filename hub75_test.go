package hub75

import (
	"image/color"
	"testing"
)

func TestComputeRows(t *testing.T) {
	tests := []struct {
		rows int
		want int
	}{
		{32, 16},
		{64, 32},
		{16, 8},
		{128, 64},
		{2, 1},
	}

	for _, tt := range tests {
		if got := ComputeRows(tt.rows); got != tt.want {
			t.Errorf("ComputeRows(%d) = %d, want %d", tt.rows, got, tt.want)
		}
	}
}

func TestComputeFrameCount(t *testing.T) {
	tests := []struct {
		bits int
		want int
	}{
		{1, 1},
		{2, 3},
		{3, 7},
		{4, 15},
		{5, 31},
		{6, 63},
		{7, 127},
		{8, 255},
	}

	for _, tt := range tests {
		if got := ComputeFrameCount(tt.bits); got != tt.want {
			t.Errorf("ComputeFrameCount(%d) = %d, want %d", tt.bits, got, tt.want)
		}
	}

	// Each additional bit roughly doubles the frame count.
	for bits := 1; bits < 8; bits++ {
		if ComputeFrameCount(bits+1) != 2*ComputeFrameCount(bits)+1 {
			t.Errorf("ComputeFrameCount(%d) should be 2*ComputeFrameCount(%d)+1", bits+1, bits)
		}
	}
}

func TestFramesOn(t *testing.T) {
	tests := []struct {
		name string
		v    uint8
		bits int
		want int
	}{
		{"zero", 0, 3, 0},
		{"below first threshold", 31, 3, 0},
		{"first threshold", 32, 3, 1},
		{"mid gray", 128, 3, 4},
		{"full scale 3 bits", 255, 3, 7},
		{"full scale 8 bits", 255, 8, 255},
		{"full scale 1 bit", 255, 1, 1},
		{"just below half", 127, 1, 0},
		{"half", 128, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FramesOn(tt.v, tt.bits); got != tt.want {
				t.Errorf("FramesOn(%d, %d) = %d, want %d", tt.v, tt.bits, got, tt.want)
			}
		})
	}
}

func TestFramesOnMonotonic(t *testing.T) {
	for bits := 1; bits <= 8; bits++ {
		prev := 0
		for v := 0; v <= 255; v++ {
			got := FramesOn(uint8(v), bits)
			if got < prev {
				t.Fatalf("FramesOn(%d, %d) = %d decreased from %d", v, bits, got, prev)
			}
			if got > ComputeFrameCount(bits) {
				t.Fatalf("FramesOn(%d, %d) = %d exceeds frame count %d", v, bits, got, ComputeFrameCount(bits))
			}
			prev = got
		}
		if FramesOn(255, bits) != ComputeFrameCount(bits) {
			t.Errorf("FramesOn(255, %d) = %d, want %d", bits, FramesOn(255, bits), ComputeFrameCount(bits))
		}
	}
}

func TestColorRGBA(t *testing.T) {
	tests := []struct {
		name    string
		c       Color
		r, g, b uint32
	}{
		{"black", Black, 0, 0, 0},
		{"white", White, 0xFFFF, 0xFFFF, 0xFFFF},
		{"red", Red, 0xFFFF, 0, 0},
		{"mid", Color{128, 64, 192}, 128 * 0x101, 64 * 0x101, 192 * 0x101},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b, a := tt.c.RGBA()
			if r != tt.r || g != tt.g || b != tt.b || a != 0xFFFF {
				t.Errorf("RGBA() = (%x, %x, %x, %x), want (%x, %x, %x, ffff)",
					r, g, b, a, tt.r, tt.g, tt.b)
			}
		})
	}
}

func TestColorModelConvert(t *testing.T) {
	tests := []struct {
		name  string
		input color.Color
		want  Color
	}{
		{"passthrough", Color{1, 2, 3}, Color{1, 2, 3}},
		{"black", color.Black, Black},
		{"white", color.White, White},
		{"rgba", color.RGBA{R: 0x88, G: 0x44, B: 0x22, A: 0xFF}, Color{0x88, 0x44, 0x22}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ColorModel.Convert(tt.input).(Color)
			if got != tt.want {
				t.Errorf("Convert(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestConfigDerived(t *testing.T) {
	cfg := Config{Rows: 32, Cols: 64, Bits: 3}
	if got := cfg.NRows(); got != 16 {
		t.Errorf("NRows() = %d, want 16", got)
	}
	if got := cfg.FrameCount(); got != 7 {
		t.Errorf("FrameCount() = %d, want 7", got)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantPanic bool
	}{
		{"valid 32x64x3", Config{Rows: 32, Cols: 64, Bits: 3}, false},
		{"valid 64x64x8", Config{Rows: 64, Cols: 64, Bits: 8}, false},
		{"valid 2x1x1", Config{Rows: 2, Cols: 1, Bits: 1}, false},
		{"zero rows", Config{Rows: 0, Cols: 64, Bits: 3}, true},
		{"odd rows", Config{Rows: 31, Cols: 64, Bits: 3}, true},
		{"rows over 64", Config{Rows: 128, Cols: 64, Bits: 3}, true},
		{"zero cols", Config{Rows: 32, Cols: 0, Bits: 3}, true},
		{"zero bits", Config{Rows: 32, Cols: 64, Bits: 0}, true},
		{"bits over 8", Config{Rows: 32, Cols: 64, Bits: 9}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				if (r != nil) != tt.wantPanic {
					t.Errorf("panic = %v, want panic = %v", r != nil, tt.wantPanic)
				}
			}()
			tt.cfg.Validate()
		})
	}
}

func TestWordSizeValues(t *testing.T) {
	if WordSize8 != 8 || WordSize16 != 16 {
		t.Errorf("WordSize values = %d, %d, want 8, 16", WordSize8, WordSize16)
	}
}
