// Package cpm implements the minimal CP/M BDOS trap used by the
// classic 8080 instruction-exerciser diagnostic ROMs: a program is
// loaded at 0x0100 as a flat .COM image, a RET is installed at the
// BDOS entry point 0x0005, and function calls 2 (console output) and
// 9 ($-terminated string output) are serviced by trapping PC==0x0005
// rather than emulating the full BDOS.
package cpm

import (
	"fmt"
	"io"
	"os"

	"github.com/jmchacon/i8080/cpu"
	"github.com/jmchacon/i8080/memory"
)

// loadAddr is where CP/M places a .COM program's first byte.
const loadAddr = 0x0100

// bdosEntry is the fixed address of the BDOS entry point. Programs
// written for CP/M call here with the function number in C.
const bdosEntry = 0x0005

// failureVector is the address some diagnostic ROMs jump to (or halt
// at) to signal a failed self-test, distinct from the normal exit at
// 0x0000.
const failureVector = 0x0076

const (
	bdosWriteChar   = 2
	bdosWriteString = 9
)

// FailureSentinel is returned by Run when the guest program reaches
// its failure vector (0x0076) instead of exiting normally.
type FailureSentinel struct {
	PC uint16
}

func (e FailureSentinel) Error() string {
	return fmt.Sprintf("program signaled failure at PC 0x%04X", e.PC)
}

// Load reads the file at path and writes it into mem starting at
// 0x0100, the fixed CP/M TPA load address. It fails if the image
// doesn't fit in the space between 0x0100 and the top of the address
// space.
func Load(mem memory.Memory, path string) error {
	img, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(img) > 0x10000-loadAddr {
		return memory.ErrShortImage{Addr: loadAddr, Size: len(img)}
	}
	for i, b := range img {
		mem.Write(uint16(loadAddr+i), b)
	}
	return nil
}

// Harness drives a Chip through a loaded CP/M program, servicing the
// two BDOS calls the classic diagnostic ROMs actually use.
type Harness struct {
	mem  memory.Memory
	chip *cpu.Chip
}

// NewHarness installs the BDOS trap (a RET at 0x0005) and sets PC to
// the CP/M program entry point, then returns a Harness ready to Run.
func NewHarness(mem memory.Memory, chip *cpu.Chip) *Harness {
	mem.Write(bdosEntry, 0xC9) // RET
	chip.Reg.PC = loadAddr
	return &Harness{mem: mem, chip: chip}
}

// Run steps the chip until the program exits (PC reaches 0x0000),
// signals failure (PC reaches 0x0076, returning FailureSentinel), or
// Step itself returns an error. BDOS calls 2 and 9 are serviced
// in-line by writing to out each time PC lands on the trap.
func (h *Harness) Run(out io.Writer) error {
	c := h.chip
	for {
		if c.Reg.PC == 0x0000 {
			return nil
		}
		if c.Reg.PC == failureVector {
			return FailureSentinel{PC: c.Reg.PC}
		}
		if c.Reg.PC == bdosEntry {
			h.serviceBDOS(out)
		}
		if _, err := c.Step(); err != nil {
			return err
		}
	}
}

// serviceBDOS handles the two BDOS functions the diagnostic ROMs call:
// C==2 prints the single character in E, C==9 prints the $-terminated
// string at (DE).
func (h *Harness) serviceBDOS(out io.Writer) {
	switch h.chip.Reg.C {
	case bdosWriteChar:
		fmt.Fprintf(out, "%c", h.chip.Reg.E)
	case bdosWriteString:
		addr := uint16(h.chip.Reg.D)<<8 | uint16(h.chip.Reg.E)
		for {
			b := h.mem.Read(addr)
			if b == '$' {
				break
			}
			fmt.Fprintf(out, "%c", b)
			addr++
		}
	}
}
