package cpu

import "github.com/jmchacon/i8080/register"

// setSZP sets the S, Z and P flags from a result byte. Every ALU and
// INR/DCR path ends by calling this; each caller sets the A flag
// itself, and every one except INR/DCR also sets C.
func (p *Chip) setSZP(result uint8) {
	p.Reg.SetFlag(register.FlagS, result&0x80 != 0)
	p.Reg.SetFlag(register.FlagZ, result == 0)
	p.Reg.SetFlag(register.FlagP, parityEven(result))
}

func parityEven(v uint8) bool {
	v ^= v >> 4
	v ^= v >> 2
	v ^= v >> 1
	return v&1 == 0
}

// execALU dispatches one of the eight accumulator ALU ops encoded in
// bits 5..3 of op (ADD,ADC,SUB,SBB,ANA,XRA,ORA,CMP) against operand n.
func (p *Chip) execALU(op uint8, n uint8) {
	a := p.Reg.A
	c := uint8(0)
	if p.Reg.GetFlag(register.FlagC) {
		c = 1
	}
	switch (op >> 3) & 0x7 {
	case 0: // ADD
		p.add(a, n, 0)
	case 1: // ADC
		p.add(a, n, c)
	case 2: // SUB
		p.sub(a, n, 0)
	case 3: // SBB
		p.sub(a, n, c)
	case 4: // ANA
		r := a & n
		p.Reg.SetFlag(register.FlagA, (a|n)&0x08 != 0)
		p.Reg.SetFlag(register.FlagC, false)
		p.setSZP(r)
		p.Reg.A = r
	case 5: // XRA
		r := a ^ n
		p.Reg.SetFlag(register.FlagA, false)
		p.Reg.SetFlag(register.FlagC, false)
		p.setSZP(r)
		p.Reg.A = r
	case 6: // ORA
		r := a | n
		p.Reg.SetFlag(register.FlagA, false)
		p.Reg.SetFlag(register.FlagC, false)
		p.setSZP(r)
		p.Reg.A = r
	case 7: // CMP: same as SUB but the result is discarded
		saved := p.Reg.A
		p.sub(a, n, 0)
		p.Reg.A = saved
	}
}

// add computes a+n+c, sets S/Z/A/P/C from the result and commits it to A.
func (p *Chip) add(a, n, c uint8) {
	sum16 := uint16(a) + uint16(n) + uint16(c)
	result := uint8(sum16)
	p.Reg.SetFlag(register.FlagA, (a&0xF)+(n&0xF)+c > 0xF)
	p.Reg.SetFlag(register.FlagC, sum16 > 0xFF)
	p.setSZP(result)
	p.Reg.A = result
}

// sub computes a-n-c, sets S/Z/A/P/C from the result and commits it to A.
func (p *Chip) sub(a, n, c uint8) {
	result := a - n - c
	p.Reg.SetFlag(register.FlagA, (a&0xF) >= (n&0xF)+c)
	p.Reg.SetFlag(register.FlagC, uint16(a) < uint16(n)+uint16(c))
	p.setSZP(result)
	p.Reg.A = result
}

// execINR increments v, sets S/Z/A/P (C untouched) and returns the
// new value for the caller to store back.
func (p *Chip) execINR(v uint8) uint8 {
	r := v + 1
	p.Reg.SetFlag(register.FlagA, (v&0xF)+1 > 0xF)
	p.setSZP(r)
	return r
}

// execDCR decrements v, sets S/Z/A/P (C untouched) and returns the
// new value for the caller to store back.
func (p *Chip) execDCR(v uint8) uint8 {
	r := v - 1
	p.Reg.SetFlag(register.FlagA, v&0xF != 0)
	p.setSZP(r)
	return r
}

// execDAA performs the two-step BCD adjustment of A described in the
// spec. Note step 2 only ever sets the carry flag, never clears it --
// that asymmetry is deliberate and verified against 8080EXM.
func (p *Chip) execDAA() {
	a := p.Reg.A
	carry := p.Reg.GetFlag(register.FlagC)

	if a&0x0F > 9 || p.Reg.GetFlag(register.FlagA) {
		a += 6
		p.Reg.SetFlag(register.FlagA, true)
	} else {
		p.Reg.SetFlag(register.FlagA, false)
	}

	if a > 0x9F || carry {
		a += 0x60
		p.Reg.SetFlag(register.FlagC, true)
	}

	p.setSZP(a)
	p.Reg.A = a
}

// execRLC rotates A left circularly: bit 7 goes to both bit 0 and C.
func (p *Chip) execRLC() {
	bit7 := p.Reg.A&0x80 != 0
	p.Reg.A = p.Reg.A<<1 | p.Reg.A>>7
	p.Reg.SetFlag(register.FlagC, bit7)
}

// execRRC rotates A right circularly: bit 0 goes to both bit 7 and C.
func (p *Chip) execRRC() {
	bit0 := p.Reg.A&0x01 != 0
	p.Reg.A = p.Reg.A>>1 | p.Reg.A<<7
	p.Reg.SetFlag(register.FlagC, bit0)
}

// execRAL rotates A left through carry: C feeds bit 0, bit 7 feeds C.
func (p *Chip) execRAL() {
	var oldC uint8
	if p.Reg.GetFlag(register.FlagC) {
		oldC = 1
	}
	bit7 := p.Reg.A&0x80 != 0
	p.Reg.A = p.Reg.A<<1 | oldC
	p.Reg.SetFlag(register.FlagC, bit7)
}

// execRAR rotates A right through carry: C feeds bit 7, bit 0 feeds C.
func (p *Chip) execRAR() {
	var oldC uint8
	if p.Reg.GetFlag(register.FlagC) {
		oldC = 1
	}
	bit0 := p.Reg.A&0x01 != 0
	p.Reg.A = p.Reg.A>>1 | oldC<<7
	p.Reg.SetFlag(register.FlagC, bit0)
}

// execDAD adds the 16-bit pair selected by op's rp field into HL,
// setting C on overflow past 0xFFFF. No other flag is touched.
func (p *Chip) execDAD(op uint8) {
	hl := p.Reg.GetPair(register.HL)
	rp := p.getRP16(op)
	sum := uint32(hl) + uint32(rp)
	p.Reg.SetPair(register.HL, uint16(sum))
	p.Reg.SetFlag(register.FlagC, sum > 0xFFFF)
}
