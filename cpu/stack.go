package cpu

import (
	"github.com/jmchacon/i8080/memory"
	"github.com/jmchacon/i8080/register"
)

// pushWord decrements SP by 2 and writes v at the new SP, little-endian.
func (p *Chip) pushWord(v uint16) {
	p.Reg.SP -= 2
	memory.WriteWord(p.mem, p.Reg.SP, v)
}

// popWord reads the little-endian word at SP and increments SP by 2.
func (p *Chip) popWord() uint16 {
	v := memory.ReadWord(p.mem, p.Reg.SP)
	p.Reg.SP += 2
	return v
}

// execPush pushes the 16-bit pair named by pair. PUSH PSW pushes F exactly
// as stored (GetPair does no masking on read), so no special case is
// needed here.
func (p *Chip) execPush(pair register.Pair) {
	p.pushWord(p.Reg.GetPair(pair))
}

// execPop pops into the 16-bit pair named by pair. POP PSW's reserved-bit
// masking happens inside SetPair, so no special case is needed here either.
func (p *Chip) execPop(pair register.Pair) {
	p.Reg.SetPair(pair, p.popWord())
}

// execXTHL exchanges HL with the word on top of the stack.
func (p *Chip) execXTHL() {
	top := memory.ReadWord(p.mem, p.Reg.SP)
	memory.WriteWord(p.mem, p.Reg.SP, p.Reg.GetPair(register.HL))
	p.Reg.SetPair(register.HL, top)
}

// execCall pushes PC and jumps to addr if taken. An untaken conditional
// call still consumed the displacement bytes (already fetched by the
// caller) but costs no extra cycles; a taken one costs 6 more than its
// base entry in baseCycles, which this reports via the return value.
func (p *Chip) execCall(addr uint16, taken bool) (int, error) {
	if !taken {
		return 0, nil
	}
	p.pushWord(p.Reg.PC)
	p.Reg.PC = addr
	return 6, nil
}

// execRST pushes PC and jumps to the fixed vector encoded in bits 5..3
// of op (op & 0x38), exactly as an externally delivered interrupt would.
func (p *Chip) execRST(op uint8) (int, error) {
	p.pushWord(p.Reg.PC)
	p.Reg.PC = uint16(op & 0x38)
	return 0, nil
}
