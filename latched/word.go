package latched

// AddressWord is the 8-bit word carrying the row-address and timing control
// signals for a scan line.
//
// Bit layout:
//
//	bit 6    latch
//	bit 5    pwm enable
//	bits 4-0 row address
//
// The latch and output-enable positions match DataWord so both word kinds
// can share one physical bus without runtime translation.
type AddressWord uint8

const (
	addrRowMask   = 0x1F
	addrPwmEnable = 1 << 5
	addrLatch     = 1 << 6
)

// RowAddress returns the 5-bit row address.
func (w AddressWord) RowAddress() uint8 {
	return uint8(w) & addrRowMask
}

// SetRowAddress stores a row address, truncated to 5 bits. Addresses above
// 31 are a caller error; range checking happens at the frame level.
func (w *AddressWord) SetRowAddress(addr uint8) {
	*w = AddressWord(uint8(*w)&^addrRowMask | addr&addrRowMask)
}

// Latch reports whether the latch signal is asserted.
func (w AddressWord) Latch() bool {
	return uint8(w)&addrLatch != 0
}

// SetLatch sets the latch signal.
func (w *AddressWord) SetLatch(on bool) {
	if on {
		*w |= addrLatch
	} else {
		*w &^= addrLatch
	}
}

// PwmEnable reports whether the PWM enable bit is set.
//
// The bit is kept for hardware bit-layout compatibility but is known to be
// functionally inert on the supported controller boards; integrators should
// not rely on it having any effect.
func (w AddressWord) PwmEnable() bool {
	return uint8(w)&addrPwmEnable != 0
}

// SetPwmEnable sets the PWM enable bit. See PwmEnable for its status.
func (w *AddressWord) SetPwmEnable(on bool) {
	if on {
		*w |= addrPwmEnable
	} else {
		*w &^= addrPwmEnable
	}
}

// DataWord is the 8-bit word carrying two sub-pixels' color bits plus the
// control signals shadowed from AddressWord.
//
// Bit layout:
//
//	bit 7 output enable
//	bit 6 latch
//	bit 5 blue, sub-pixel 1 (lower row half)
//	bit 4 green, sub-pixel 1
//	bit 3 red, sub-pixel 1
//	bit 2 blue, sub-pixel 0 (upper row half)
//	bit 1 green, sub-pixel 0
//	bit 0 red, sub-pixel 0
type DataWord uint8

const (
	dataRed1 DataWord = 1 << iota
	dataGrn1
	dataBlu1
	dataRed2
	dataGrn2
	dataBlu2
	dataLatch
	dataOutputEnable

	dataColorMask = dataRed1 | dataGrn1 | dataBlu1 | dataRed2 | dataGrn2 | dataBlu2
)

func (w *DataWord) setBit(mask DataWord, on bool) {
	if on {
		*w |= mask
	} else {
		*w &^= mask
	}
}

// OutputEnable reports whether the output-enable bit is set.
func (w DataWord) OutputEnable() bool { return w&dataOutputEnable != 0 }

// SetOutputEnable sets the output-enable bit.
func (w *DataWord) SetOutputEnable(on bool) { w.setBit(dataOutputEnable, on) }

// Latch reports whether the latch bit is set.
func (w DataWord) Latch() bool { return w&dataLatch != 0 }

// SetLatch sets the latch bit.
func (w *DataWord) SetLatch(on bool) { w.setBit(dataLatch, on) }

// Red1 reports the red bit of sub-pixel 0.
func (w DataWord) Red1() bool { return w&dataRed1 != 0 }

// Grn1 reports the green bit of sub-pixel 0.
func (w DataWord) Grn1() bool { return w&dataGrn1 != 0 }

// Blu1 reports the blue bit of sub-pixel 0.
func (w DataWord) Blu1() bool { return w&dataBlu1 != 0 }

// Red2 reports the red bit of sub-pixel 1.
func (w DataWord) Red2() bool { return w&dataRed2 != 0 }

// Grn2 reports the green bit of sub-pixel 1.
func (w DataWord) Grn2() bool { return w&dataGrn2 != 0 }

// Blu2 reports the blue bit of sub-pixel 1.
func (w DataWord) Blu2() bool { return w&dataBlu2 != 0 }

// SetColor0 sets the three color bits of sub-pixel 0 (upper row half).
func (w *DataWord) SetColor0(r, g, b bool) {
	w.setBit(dataRed1, r)
	w.setBit(dataGrn1, g)
	w.setBit(dataBlu1, b)
}

// SetColor1 sets the three color bits of sub-pixel 1 (lower row half).
func (w *DataWord) SetColor1(r, g, b bool) {
	w.setBit(dataRed2, r)
	w.setBit(dataGrn2, g)
	w.setBit(dataBlu2, b)
}

// ClearColors zeroes all six color bits, leaving the control bits untouched.
func (w *DataWord) ClearColors() {
	*w &^= dataColorMask
}
