// Command i8080run loads a CP/M-style .COM image and runs it to
// completion under the BDOS trap harness, printing whatever the
// program writes through BDOS functions 2 and 9 to stdout.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/jmchacon/i8080/cpm"
	"github.com/jmchacon/i8080/cpu"
	"github.com/jmchacon/i8080/memory"
	"github.com/spf13/cobra"
)

var verbose bool

func main() {
	root := &cobra.Command{
		Use:   "i8080run <file.com>",
		Short: "Run an 8080 CP/M .COM image under the BDOS trap harness",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "log the final register state after the program exits")

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func run(_ *cobra.Command, args []string) error {
	path := args[0]

	mem := memory.NewRAM()
	if err := cpm.Load(mem, path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	chip, err := cpu.New(cpu.ChipDef{Mem: mem})
	if err != nil {
		return fmt.Errorf("initializing CPU: %w", err)
	}
	chip.PowerOn()

	h := cpm.NewHarness(mem, chip)
	runErr := h.Run(os.Stdout)

	if verbose {
		log.Printf("final state: PC=0x%04X SP=0x%04X A=0x%02X F=0x%02X", chip.Reg.PC, chip.Reg.SP, chip.Reg.A, chip.Reg.F)
	}
	if runErr != nil {
		return runErr
	}
	return nil
}
