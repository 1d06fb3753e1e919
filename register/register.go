// Package register defines the 8080 architectural register file: the
// seven general 8-bit registers, the flag register F, the stack
// pointer and program counter, and the pair aliasing (BC/DE/HL/AF)
// the instruction set addresses them through.
package register

import "github.com/jmchacon/i8080/bits"

// Flag bit positions within F. Bits 1, 3 and 5 are not independently
// addressable flags: bit 1 is pinned to 1 and bits 3/5 are pinned to
// 0 (see File.SetFlag / the AF invariant applied by SetPair).
const (
	FlagS Flag = 7 // Sign
	FlagZ Flag = 6 // Zero
	FlagA Flag = 4 // Auxiliary carry
	FlagP Flag = 2 // Parity
	FlagC Flag = 0 // Carry

	// reservedSet is bit 1, always 1.
	reservedSet uint8 = 0x02
	// reservedMask keeps only the addressable flag bits {7,6,4,2,0}.
	reservedMask uint8 = 0xD5
)

// Flag identifies one of the five addressable condition flags.
type Flag uint

// Pair identifies a 16-bit register pair.
type Pair int

const (
	AF Pair = iota
	BC
	DE
	HL
)

// File holds the 8080 register file. The zero value is not a valid
// power-on state; use PowerOn or New.
type File struct {
	A, B, C, D, E, H, L uint8
	F                   uint8
	SP                  uint16
	PC                  uint16
}

// New returns a register file in its power-up state: all registers
// zero except F, which has only the reserved bit set.
func New() *File {
	f := &File{}
	f.PowerOn()
	return f
}

// PowerOn resets the register file to the architectural power-up
// state (spec §3): every register zero, F = 0b0000_0010, SP = PC = 0.
func (r *File) PowerOn() {
	*r = File{F: reservedSet}
}

// GetPair returns the 16-bit value of the given register pair. For AF
// the high byte is A and the low byte is F exactly as stored (no
// masking on read; the invariant is enforced on write).
func (r *File) GetPair(p Pair) uint16 {
	switch p {
	case AF:
		return uint16(r.A)<<8 | uint16(r.F)
	case BC:
		return uint16(r.B)<<8 | uint16(r.C)
	case DE:
		return uint16(r.D)<<8 | uint16(r.E)
	case HL:
		return uint16(r.H)<<8 | uint16(r.L)
	}
	panic("register: invalid pair")
}

// SetPair writes a 16-bit value into the given register pair. Writing
// AF enforces the F-register invariant: the incoming low byte is
// masked to retain only bits {7,6,4,2,0} and then OR-ed with the
// pinned reserved bit.
func (r *File) SetPair(p Pair, v uint16) {
	hi, lo := uint8(v>>8), uint8(v&0xFF)
	switch p {
	case AF:
		r.A = hi
		r.F = (lo & reservedMask) | reservedSet
	case BC:
		r.B, r.C = hi, lo
	case DE:
		r.D, r.E = hi, lo
	case HL:
		r.H, r.L = hi, lo
	default:
		panic("register: invalid pair")
	}
}

// GetFlag reports whether the given condition flag is set.
func (r *File) GetFlag(f Flag) bool {
	return bits.Get(r.F, uint(f))
}

// SetFlag sets or clears the given condition flag, preserving the
// reserved bit pattern.
func (r *File) SetFlag(f Flag, v bool) {
	r.F = bits.Put(r.F, uint(f), v)
	r.F = (r.F & reservedMask) | reservedSet
}
