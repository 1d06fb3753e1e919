package cpu

import (
	"fmt"

	"github.com/jmchacon/i8080/memory"
	"github.com/jmchacon/i8080/register"
)

// regPtr returns a pointer to the 8-bit register selected by the 3-bit
// field r (B,C,D,E,H,L,M,A). M isn't a register; reading/writing it
// goes through memory at HL, so that index is handled by the
// get8/set8 wrappers below rather than this table.
func (p *Chip) regPtr(r uint8) *uint8 {
	switch r & 0x7 {
	case 0:
		return &p.Reg.B
	case 1:
		return &p.Reg.C
	case 2:
		return &p.Reg.D
	case 3:
		return &p.Reg.E
	case 4:
		return &p.Reg.H
	case 5:
		return &p.Reg.L
	case 7:
		return &p.Reg.A
	}
	panic("cpu: regPtr called with M (index 6)")
}

// get8 reads operand r, where r==6 means the byte at (HL).
func (p *Chip) get8(r uint8) uint8 {
	if r&0x7 == 6 {
		return p.mem.Read(p.Reg.GetPair(register.HL))
	}
	return *p.regPtr(r)
}

// set8 writes operand r, where r==6 means the byte at (HL).
func (p *Chip) set8(r uint8, v uint8) {
	if r&0x7 == 6 {
		p.mem.Write(p.Reg.GetPair(register.HL), v)
		return
	}
	*p.regPtr(r) = v
}

// getRP16/setRP16 read/write the 16-bit pair selected by bits 5..4,
// where 3 means SP (not a register.Pair, since SP has no flag
// invariant to enforce).
func (p *Chip) getRP16(op uint8) uint16 {
	switch (op >> 4) & 0x3 {
	case 0:
		return p.Reg.GetPair(register.BC)
	case 1:
		return p.Reg.GetPair(register.DE)
	case 2:
		return p.Reg.GetPair(register.HL)
	default:
		return p.Reg.SP
	}
}

func (p *Chip) setRP16(op uint8, v uint16) {
	switch (op >> 4) & 0x3 {
	case 0:
		p.Reg.SetPair(register.BC, v)
	case 1:
		p.Reg.SetPair(register.DE, v)
	case 2:
		p.Reg.SetPair(register.HL, v)
	default:
		p.Reg.SP = v
	}
}

// pushPopPair returns the register.Pair PUSH/POP operate on for bits
// 5..4, where 3 means AF (the PSW) rather than SP.
func pushPopPair(op uint8) register.Pair {
	switch (op >> 4) & 0x3 {
	case 0:
		return register.BC
	case 1:
		return register.DE
	case 2:
		return register.HL
	default:
		return register.AF
	}
}

// cond tests the condition code encoded in bits 5..3 of a Jcc/Ccc/Rcc
// opcode against the current flags.
func (p *Chip) cond(op uint8) bool {
	switch (op >> 3) & 0x7 {
	case 0: // NZ
		return !p.Reg.GetFlag(register.FlagZ)
	case 1: // Z
		return p.Reg.GetFlag(register.FlagZ)
	case 2: // NC
		return !p.Reg.GetFlag(register.FlagC)
	case 3: // C
		return p.Reg.GetFlag(register.FlagC)
	case 4: // PO
		return !p.Reg.GetFlag(register.FlagP)
	case 5: // PE
		return p.Reg.GetFlag(register.FlagP)
	case 6: // P (sign clear)
		return !p.Reg.GetFlag(register.FlagS)
	default: // M (sign set)
		return p.Reg.GetFlag(register.FlagS)
	}
}

// execute runs the (already normalized) opcode and returns the extra
// cycles owed beyond baseCycles[op] -- only nonzero for a taken CALL:
// always 6 for CALL, 6 for a conditional CALL whose condition holds.
func (p *Chip) execute(op uint8) (int, error) {
	switch {
	case op == 0x00:
		return 0, nil // NOP
	case op == 0x76:
		p.halted = true
		return 0, nil // HLT
	case op == 0x07:
		p.execRLC()
		return 0, nil
	case op == 0x0F:
		p.execRRC()
		return 0, nil
	case op == 0x17:
		p.execRAL()
		return 0, nil
	case op == 0x1F:
		p.execRAR()
		return 0, nil
	case op == 0x27:
		p.execDAA()
		return 0, nil
	case op == 0x2F:
		p.Reg.A = ^p.Reg.A // CMA
		return 0, nil
	case op == 0x37:
		p.Reg.SetFlag(register.FlagC, true) // STC
		return 0, nil
	case op == 0x3F:
		p.Reg.SetFlag(register.FlagC, !p.Reg.GetFlag(register.FlagC)) // CMC
		return 0, nil
	case op == 0x02:
		p.mem.Write(p.Reg.GetPair(register.BC), p.Reg.A) // STAX B
		return 0, nil
	case op == 0x12:
		p.mem.Write(p.Reg.GetPair(register.DE), p.Reg.A) // STAX D
		return 0, nil
	case op == 0x0A:
		p.Reg.A = p.mem.Read(p.Reg.GetPair(register.BC)) // LDAX B
		return 0, nil
	case op == 0x1A:
		p.Reg.A = p.mem.Read(p.Reg.GetPair(register.DE)) // LDAX D
		return 0, nil
	case op&0xCF == 0x01:
		p.setRP16(op, p.fetch16()) // LXI rp,d16
		return 0, nil
	case op&0xCF == 0x03:
		p.setRP16(op, p.getRP16(op)+1) // INX rp
		return 0, nil
	case op&0xCF == 0x0B:
		p.setRP16(op, p.getRP16(op)-1) // DCX rp
		return 0, nil
	case op&0xCF == 0x09:
		p.execDAD(op) // DAD rp
		return 0, nil
	case op&0xC7 == 0x06:
		p.set8((op>>3)&0x7, p.fetch8()) // MVI r,d8
		return 0, nil
	case op&0xC7 == 0x04:
		p.set8((op>>3)&0x7, p.execINR(p.get8((op>>3)&0x7))) // INR r
		return 0, nil
	case op&0xC7 == 0x05:
		p.set8((op>>3)&0x7, p.execDCR(p.get8((op>>3)&0x7))) // DCR r
		return 0, nil
	case op == 0x22:
		memory.WriteWord(p.mem, p.fetch16(), p.Reg.GetPair(register.HL)) // SHLD
		return 0, nil
	case op == 0x2A:
		p.Reg.SetPair(register.HL, memory.ReadWord(p.mem, p.fetch16())) // LHLD
		return 0, nil
	case op == 0x32:
		p.mem.Write(p.fetch16(), p.Reg.A) // STA a16
		return 0, nil
	case op == 0x3A:
		p.Reg.A = p.mem.Read(p.fetch16()) // LDA a16
		return 0, nil
	case op >= 0x40 && op <= 0x7F: // MOV r1,r2 (0x76 handled above)
		p.set8((op>>3)&0x7, p.get8(op&0x7))
		return 0, nil
	case op >= 0x80 && op <= 0xBF:
		p.execALU(op, p.get8(op&0x7))
		return 0, nil
	case op == 0xC6:
		p.execALU(0x80, p.fetch8()) // ADI
		return 0, nil
	case op == 0xCE:
		p.execALU(0x88, p.fetch8()) // ACI
		return 0, nil
	case op == 0xD6:
		p.execALU(0x90, p.fetch8()) // SUI
		return 0, nil
	case op == 0xDE:
		p.execALU(0x98, p.fetch8()) // SBI
		return 0, nil
	case op == 0xE6:
		p.execALU(0xA0, p.fetch8()) // ANI
		return 0, nil
	case op == 0xEE:
		p.execALU(0xA8, p.fetch8()) // XRI
		return 0, nil
	case op == 0xF6:
		p.execALU(0xB0, p.fetch8()) // ORI
		return 0, nil
	case op == 0xFE:
		p.execALU(0xB8, p.fetch8()) // CPI
		return 0, nil
	case op&0xCF == 0xC5:
		p.execPush(pushPopPair(op)) // PUSH rp
		return 0, nil
	case op&0xCF == 0xC1:
		p.execPop(pushPopPair(op)) // POP rp
		return 0, nil
	case op == 0xEB:
		p.Reg.D, p.Reg.H = p.Reg.H, p.Reg.D // XCHG
		p.Reg.E, p.Reg.L = p.Reg.L, p.Reg.E
		return 0, nil
	case op == 0xE3:
		p.execXTHL()
		return 0, nil
	case op == 0xF9:
		p.Reg.SP = p.Reg.GetPair(register.HL) // SPHL
		return 0, nil
	case op == 0xE9:
		p.Reg.PC = p.Reg.GetPair(register.HL) // PCHL
		return 0, nil
	case op == 0xC3:
		p.Reg.PC = p.fetch16() // JMP
		return 0, nil
	case op == 0xC9:
		p.Reg.PC = p.popWord() // RET
		return 0, nil
	case op == 0xCD:
		return p.execCall(p.fetch16(), true) // CALL
	case op&0xC7 == 0xC2:
		a := p.fetch16()
		if p.cond(op) {
			p.Reg.PC = a
		}
		return 0, nil // Jcc
	case op&0xC7 == 0xC4:
		return p.execCall(p.fetch16(), p.cond(op)) // Ccc
	case op&0xC7 == 0xC0:
		if p.cond(op) {
			p.Reg.PC = p.popWord()
		}
		return 0, nil // Rcc
	case op&0xC7 == 0xC7:
		return p.execRST(op)
	case op == 0xD3:
		p.out.Output(p.fetch8(), p.Reg.A) // OUT
		return 0, nil
	case op == 0xDB:
		p.Reg.A = p.in.Input(p.fetch8()) // IN
		return 0, nil
	case op == 0xF3:
		p.ei = false // DI
		return 0, nil
	case op == 0xFB:
		p.ei = true // EI
		return 0, nil
	}
	return 0, InvalidCPUState{fmt.Sprintf("unreachable opcode 0x%.2X after normalization", op)}
}
