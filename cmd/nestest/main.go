// Command nestest is the CPU conformance harness: it replays nestest.nes
// starting at the automation entry point ($C000) and prints one
// nestest.log-format line per instruction boundary, so the output can be
// byte-compared against the reference log.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"nespipe/internal/cartridge"
	"nespipe/internal/nes"
	"nespipe/internal/trace"
)

// cycleOffset accounts for the 7 cycles real hardware spends on its
// reset sequence before the first instruction at the automation entry
// point, which nestest.log's CYC column includes.
const cycleOffset = 7

func main() {
	count := flag.Int("n", 10000, "instructions to trace before stopping")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: nestest [-n count] <rom-path>")
		os.Exit(1)
	}

	if err := run(flag.Arg(0), *count); err != nil {
		fmt.Fprintf(os.Stderr, "nestest: %v\n", err)
		os.Exit(2)
	}
}

func run(romPath string, count int) error {
	cart, err := cartridge.LoadFromFile(romPath)
	if err != nil {
		return fmt.Errorf("loading rom: %w", err)
	}

	sys := nes.New()
	sys.LoadCartridge(cart)
	if err := sys.Reset(); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	sys.Cpu.Reg.PC = 0xC000

	formatter := trace.New(sys)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	printed := 0
	for printed < count {
		if sys.JustDecoded() {
			st := sys.Cpu.State()
			reg := sys.Cpu.Reg
			snap := trace.Snapshot{
				PC:          st.StartPC,
				A:           reg.A,
				X:           reg.X,
				Y:           reg.Y,
				SP:          reg.SP,
				P:           reg.P,
				Cycle:       st.StartCycle + cycleOffset,
				PPUScanline: sys.Ppu.Scanline(),
				PPUCycle:    sys.Ppu.Cycle(),
			}
			fmt.Fprintln(out, formatter.Line(snap))
			printed++
		}
		if err := sys.Step(); err != nil {
			return fmt.Errorf("at pc=$%04X: %w", sys.Cpu.PC(), err)
		}
	}
	return nil
}
