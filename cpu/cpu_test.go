package cpu

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/jmchacon/i8080/memory"
	"github.com/jmchacon/i8080/register"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newChip wires a fresh RAM-backed Chip for a single test. Programs are
// poked directly into mem starting at PC so each test can be a short,
// self-contained snippet instead of a full .COM image.
func newChip(t *testing.T) (*Chip, *memory.RAM) {
	t.Helper()
	mem := memory.NewRAM()
	c, err := New(ChipDef{Mem: mem})
	require.NoError(t, err)
	c.PowerOn()
	return c, mem
}

// assertFlagInvariant checks the universal F-register shape: bit 1 is
// always 1, bits 3 and 5 are always 0, regardless of what instruction ran.
func assertFlagInvariant(t *testing.T, c *Chip) {
	t.Helper()
	if c.Reg.F&0x02 == 0 {
		t.Fatalf("F bit 1 not set after Step: %s", spew.Sdump(c.Reg))
	}
	if c.Reg.F&0x28 != 0 {
		t.Fatalf("F reserved-clear bits 3/5 set after Step: %s", spew.Sdump(c.Reg))
	}
}

func TestINR_C(t *testing.T) {
	c, mem := newChip(t)
	c.Reg.C = 0x0F
	mem.Write(0x0000, 0x0C) // INR C
	c.Reg.PC = 0x0000

	cycles, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, 5, cycles)
	assert.Equal(t, uint8(0x10), c.Reg.C)
	assert.True(t, c.Reg.GetFlag(register.FlagA), "half-carry should be set crossing 0x0F->0x10")
	assert.False(t, c.Reg.GetFlag(register.FlagZ))
	assertFlagInvariant(t, c)
}

func TestDCR_M(t *testing.T) {
	c, mem := newChip(t)
	c.Reg.SetPair(register.HL, 0x2000)
	mem.Write(0x2000, 0x01)
	mem.Write(0x0000, 0x35) // DCR M
	c.Reg.PC = 0x0000

	cycles, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, 10, cycles)
	assert.Equal(t, uint8(0x00), mem.Read(0x2000))
	assert.True(t, c.Reg.GetFlag(register.FlagZ))
	assertFlagInvariant(t, c)
}

func TestDAA(t *testing.T) {
	c, mem := newChip(t)
	c.Reg.A = 0x9B
	c.Reg.SetFlag(register.FlagC, false)
	c.Reg.SetFlag(register.FlagA, false)
	mem.Write(0x0000, 0x27) // DAA
	c.Reg.PC = 0x0000

	_, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x01), c.Reg.A)
	assert.True(t, c.Reg.GetFlag(register.FlagC))
	assert.True(t, c.Reg.GetFlag(register.FlagA))
	assertFlagInvariant(t, c)
}

func TestDAA_CarryStaysSetOnStep2False(t *testing.T) {
	// Step 2's else-branch must never clear an already-set carry.
	c, mem := newChip(t)
	c.Reg.A = 0x05
	c.Reg.SetFlag(register.FlagC, true)
	mem.Write(0x0000, 0x27)
	c.Reg.PC = 0x0000

	_, err := c.Step()
	require.NoError(t, err)
	assert.True(t, c.Reg.GetFlag(register.FlagC), "carry must remain set")
	assert.Equal(t, uint8(0x65), c.Reg.A)
}

func TestADD_D(t *testing.T) {
	c, mem := newChip(t)
	c.Reg.A = 0x14
	c.Reg.D = 0x22
	mem.Write(0x0000, 0x82) // ADD D
	c.Reg.PC = 0x0000

	cycles, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, 4, cycles)
	assert.Equal(t, uint8(0x36), c.Reg.A)
	assert.False(t, c.Reg.GetFlag(register.FlagC))
	assertFlagInvariant(t, c)
}

func TestADC_C(t *testing.T) {
	c, mem := newChip(t)
	c.Reg.A = 0xFF
	c.Reg.C = 0x01
	c.Reg.SetFlag(register.FlagC, true)
	mem.Write(0x0000, 0x89) // ADC C
	c.Reg.PC = 0x0000

	_, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x01), c.Reg.A) // 0xFF + 0x01 + carry(1) wraps to 0x01
	assert.True(t, c.Reg.GetFlag(register.FlagC))
	assertFlagInvariant(t, c)
}

func TestPushPopPSW(t *testing.T) {
	c, _ := newChip(t)
	c.Reg.SP = 0x2400
	c.Reg.A = 0x42
	c.Reg.F = 0xC3
	mem0 := uint8(0xF5) // PUSH PSW
	mem1 := uint8(0xD1) // POP DE, to read the pushed PSW back into D/E
	mem2 := uint8(0xF1) // POP PSW

	m := c.mem
	m.Write(0x0000, mem0)
	m.Write(0x0001, mem1)
	m.Write(0x0002, mem2)
	c.Reg.PC = 0x0000

	cycles, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, 11, cycles)
	assert.Equal(t, uint16(0x23FE), c.Reg.SP)

	_, err = c.Step() // POP DE (consumes the pushed PSW into D/E)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x42), c.Reg.D)
	assert.Equal(t, uint8(0xC3), c.Reg.E)

	// Push DE back and pop it as PSW; 0xC3 already has the reserved-bit
	// pattern, so A and F come back unchanged.
	c.Reg.PC = 0x0000
	m.Write(0x0000, 0xD5) // PUSH DE
	_, err = c.Step()
	require.NoError(t, err)
	c.Reg.PC = 0x0001
	m.Write(0x0001, 0xF1) // POP PSW
	_, err = c.Step()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x42), c.Reg.A)
	assert.Equal(t, uint8(0xC3), c.Reg.F)
	assertFlagInvariant(t, c)
}

func TestDAD_B(t *testing.T) {
	c, mem := newChip(t)
	c.Reg.SetPair(register.HL, 0xFFFF)
	c.Reg.SetPair(register.BC, 0x0001)
	mem.Write(0x0000, 0x09) // DAD B
	c.Reg.PC = 0x0000

	cycles, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, 10, cycles)
	assert.Equal(t, uint16(0x0000), c.Reg.GetPair(register.HL))
	assert.True(t, c.Reg.GetFlag(register.FlagC))
}

func TestXTHL(t *testing.T) {
	c, mem := newChip(t)
	c.Reg.SP = 0x2000
	mem.Write(0x2000, 0xAA)
	mem.Write(0x2001, 0xBB)
	c.Reg.SetPair(register.HL, 0x1234)
	mem.Write(0x0000, 0xE3) // XTHL
	c.Reg.PC = 0x0000

	cycles, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, 18, cycles)
	assert.Equal(t, uint16(0xBBAA), c.Reg.GetPair(register.HL))
	assert.Equal(t, uint8(0x34), mem.Read(0x2000))
	assert.Equal(t, uint8(0x12), mem.Read(0x2001))
}

func TestXCHGTwiceIsNoop(t *testing.T) {
	c, mem := newChip(t)
	c.Reg.SetPair(register.HL, 0xBEEF)
	c.Reg.SetPair(register.DE, 0xCAFE)
	mem.Write(0x0000, 0xEB)
	mem.Write(0x0001, 0xEB)
	c.Reg.PC = 0x0000

	_, err := c.StepN(2)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), c.Reg.GetPair(register.HL))
	assert.Equal(t, uint16(0xCAFE), c.Reg.GetPair(register.DE))
}

func TestCMPLeavesOperandsUnchanged(t *testing.T) {
	c, mem := newChip(t)
	c.Reg.A = 0x10
	c.Reg.B = 0x10
	mem.Write(0x0000, 0xB8) // CMP B
	c.Reg.PC = 0x0000

	_, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x10), c.Reg.A)
	assert.Equal(t, uint8(0x10), c.Reg.B)
	assert.True(t, c.Reg.GetFlag(register.FlagZ))
}

func TestRLCEightTimesIsIdentity(t *testing.T) {
	c, mem := newChip(t)
	c.Reg.A = 0x5A
	for i := 0; i < 8; i++ {
		mem.Write(uint16(i), 0x07) // RLC
	}
	c.Reg.PC = 0x0000

	_, err := c.StepN(8)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x5A), c.Reg.A)
}

func TestXRAAClearsAAndSetsParity(t *testing.T) {
	c, mem := newChip(t)
	c.Reg.A = 0x73
	mem.Write(0x0000, 0xAF) // XRA A
	c.Reg.PC = 0x0000

	_, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x00), c.Reg.A)
	assert.True(t, c.Reg.GetFlag(register.FlagZ))
	assert.True(t, c.Reg.GetFlag(register.FlagP))
	assert.False(t, c.Reg.GetFlag(register.FlagC))
	assert.False(t, c.Reg.GetFlag(register.FlagA))
}

func TestConditionalCallTakenAddsSixCycles(t *testing.T) {
	c, mem := newChip(t)
	c.Reg.SetFlag(register.FlagZ, true)
	mem.Write(0x0000, 0xCC) // CZ a16
	mem.Write(0x0001, 0x00)
	mem.Write(0x0002, 0x30)
	c.Reg.PC = 0x0000
	c.Reg.SP = 0x2400

	cycles, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, 17, cycles)
	assert.Equal(t, uint16(0x3000), c.Reg.PC)
}

func TestConditionalCallNotTakenCostsEleven(t *testing.T) {
	c, mem := newChip(t)
	c.Reg.SetFlag(register.FlagZ, false)
	mem.Write(0x0000, 0xCC) // CZ a16
	mem.Write(0x0001, 0x00)
	mem.Write(0x0002, 0x30)
	c.Reg.PC = 0x0000

	cycles, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, 11, cycles)
	assert.Equal(t, uint16(0x0003), c.Reg.PC)
}

func TestHaltedStepIsNOP(t *testing.T) {
	c, mem := newChip(t)
	mem.Write(0x0000, 0x76) // HLT
	c.Reg.PC = 0x0000

	_, err := c.Step()
	require.NoError(t, err)
	assert.True(t, c.Halted())

	pc := c.Reg.PC
	cycles, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, baseCycles[0x00], cycles)
	assert.Equal(t, pc, c.Reg.PC, "PC must not advance while halted")
}

func TestInterruptResumesFromHalt(t *testing.T) {
	c, mem := newChip(t)
	mem.Write(0x0000, 0x76) // HLT
	c.Reg.PC = 0x0000
	c.Reg.SP = 0x2400
	c.ei = true

	_, err := c.Step()
	require.NoError(t, err)
	require.True(t, c.Halted())

	c.Interrupt(0xD7) // RST 2 (vector 0x10)
	assert.False(t, c.Halted())
	assert.Equal(t, uint16(0x0010), c.Reg.PC)
}

func TestNormalizeAliases(t *testing.T) {
	cases := map[uint8]uint8{
		0x08: 0x00, 0x10: 0x00, 0x38: 0x00,
		0xCB: 0xC3,
		0xD9: 0xC9,
		0xDD: 0xCD, 0xED: 0xCD, 0xFD: 0xCD,
	}
	for op, want := range cases {
		assert.Equal(t, want, normalize(op), "normalize(0x%.2X)", op)
	}
}
