// Package cpu implements the Intel 8080 fetch-decode-execute loop: a
// single public Step method that runs one instruction to completion
// and returns the machine-cycle cost, updating the register file and
// flags bit-for-bit against the reference part.
package cpu

import (
	"fmt"

	"github.com/jmchacon/i8080/io"
	"github.com/jmchacon/i8080/irq"
	"github.com/jmchacon/i8080/memory"
	"github.com/jmchacon/i8080/register"
)

// InvalidCPUState represents a precondition violation in the
// emulator itself (a constructor given unusable collaborators). The
// instruction set has no undefined opcodes after alias normalization,
// so this is never returned by Step.
type InvalidCPUState struct {
	Reason string
}

// Error implements error.
func (e InvalidCPUState) Error() string {
	return fmt.Sprintf("invalid CPU state: %s", e.Reason)
}

// Chip is an 8080 core bound to a memory collaborator. The zero value
// is not usable; construct with New.
type Chip struct {
	Reg *register.File

	mem memory.Memory
	in  io.InputPort
	out io.OutputPort

	halted bool
	ei     bool
}

// ChipDef configures a new Chip. Mem is required; In/Out are optional
// and default to ports that read as 0xFF and discard writes.
type ChipDef struct {
	Mem memory.Memory
	In  io.InputPort
	Out io.OutputPort
}

// New constructs a powered-on Chip bound to def.Mem. Returns
// InvalidCPUState if def.Mem is nil.
func New(def ChipDef) (*Chip, error) {
	if def.Mem == nil {
		return nil, InvalidCPUState{"Mem is nil"}
	}
	p := &Chip{
		Reg: register.New(),
		mem: def.Mem,
		in:  def.In,
		out: def.Out,
	}
	if p.in == nil {
		p.in = io.InputFunc(func(uint8) uint8 { return 0xFF })
	}
	if p.out == nil {
		p.out = io.OutputFunc(func(uint8, uint8) {})
	}
	return p, nil
}

// PowerOn resets the Chip to its architectural power-up state: all
// registers zero except F (only the reserved bit set), halted and ei
// both false. It does not touch memory; a loader is expected to place
// a program and set PC afterward.
func (p *Chip) PowerOn() {
	p.Reg.PowerOn()
	p.halted = false
	p.ei = false
}

// Halted reports whether HLT has executed since the last PowerOn or
// Interrupt.
func (p *Chip) Halted() bool {
	return p.halted
}

// EI reports the interrupt-enable latch set by the EI instruction and
// cleared by DI. The core never inspects this itself; it's purely
// observable state for a host deciding whether to call Interrupt.
func (p *Chip) EI() bool {
	return p.ei
}

// Interrupt pushes PC and jumps to the RST vector (vector & 0x38),
// exactly as the RST instruction would. It clears the halted latch,
// modeling interrupt injection as the mechanism that resumes a halted
// core. Delivery policy (whether ei is true, which vector to use) is
// entirely the host's decision; the core performs no implicit polling
// of an irq.Sender.
func (p *Chip) Interrupt(vector uint8) {
	p.halted = false
	p.pushWord(p.Reg.PC)
	p.Reg.PC = uint16(vector) & 0x38
}

// InterruptFrom is a convenience wrapper that injects an interrupt
// from src if src reports itself raised and the ei latch is set, using
// src's requested vector. Returns whether an interrupt was delivered.
func (p *Chip) InterruptFrom(src irq.Sender) bool {
	if src == nil || !src.Raised() || !p.ei {
		return false
	}
	p.Interrupt(src.Vector())
	return true
}

// fetch8 reads the byte at PC and advances PC by one.
func (p *Chip) fetch8() uint8 {
	v := p.mem.Read(p.Reg.PC)
	p.Reg.PC++
	return v
}

// fetch16 reads the little-endian word at PC and advances PC by two.
func (p *Chip) fetch16() uint16 {
	v := memory.ReadWord(p.mem, p.Reg.PC)
	p.Reg.PC += 2
	return v
}

// normalize maps an undocumented opcode to the documented opcode it
// must be executed as, per the alias table. Done before dispatch so
// the decoder and the cycle table only ever see documented opcodes.
func normalize(op uint8) uint8 {
	switch op {
	case 0x08, 0x10, 0x18, 0x20, 0x28, 0x30, 0x38:
		return 0x00 // NOP
	case 0xCB:
		return 0xC3 // JMP
	case 0xD9:
		return 0xC9 // RET
	case 0xDD, 0xED, 0xFD:
		return 0xCD // CALL
	}
	return op
}

// Step fetches, decodes and executes one instruction and returns the
// number of machine cycles it consumed.
//
// If the core is halted, Step behaves exactly like a NOP: PC does not
// advance and the 4 cycles of NOP are consumed. Resuming from halt is
// the host's job, via Interrupt.
func (p *Chip) Step() (int, error) {
	if p.halted {
		return baseCycles[0x00], nil
	}

	op := normalize(p.fetch8())
	extra, err := p.execute(op)
	if err != nil {
		return 0, err
	}
	return baseCycles[op] + extra, nil
}

// StepN runs Step n times and returns the accumulated cycle count. It
// stops early, returning whatever was accumulated, the moment the
// core halts or Step returns an error. It's a convenience for tests
// and small harnesses; not part of the core's invariant surface.
func (p *Chip) StepN(n int) (int, error) {
	total := 0
	for i := 0; i < n; i++ {
		if p.halted {
			break
		}
		c, err := p.Step()
		if err != nil {
			return total, err
		}
		total += c
	}
	return total, nil
}
