// Command pipesim is the outer presentation layer over facade.Session,
// explicitly outside the core per spec.md §1: an assemble/run/debug CLI,
// grounded on the teacher's own Cpu.Debug entry point.
package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v2"

	"pipeline16/facade"
)

func main() {
	app := &cli.App{
		Name:    "pipesim",
		Usage:   "assemble and run pipeline16 programs",
		Version: "v0.1.0",
		Commands: []*cli.Command{
			{
				Name:      "assemble",
				Usage:     "assemble a source file and print the machine-code listing",
				ArgsUsage: "<file>",
				Action:    assembleAction,
			},
			{
				Name:      "run",
				Usage:     "run a program headlessly to halt and print final state",
				ArgsUsage: "<file>",
				Action:    runAction,
			},
			{
				Name:      "debug",
				Usage:     "step a program interactively in a terminal UI",
				ArgsUsage: "<file>",
				Action:    debugAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "pipesim:", err)
		os.Exit(1)
	}
}

func readSource(c *cli.Context) (string, error) {
	path := c.Args().First()
	if path == "" {
		return "", cli.Exit("missing <file> argument", 86)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func assembleAction(c *cli.Context) error {
	source, err := readSource(c)
	if err != nil {
		return err
	}

	s := facade.NewSession()
	listing, _, err := s.Assemble(source)
	if err != nil {
		return fmt.Errorf("assemble: %w", err)
	}

	for _, entry := range listing {
		fmt.Printf("%04x  %s  %-20s  %s\n", entry.Address, entry.Hex, entry.Source, entry.Disasm)
	}
	return nil
}

func runAction(c *cli.Context) error {
	source, err := readSource(c)
	if err != nil {
		return err
	}

	s := facade.NewSession()
	if _, _, err := s.Assemble(source); err != nil {
		return fmt.Errorf("assemble: %w", err)
	}

	var view facade.CPUState
	running := true
	for running {
		running, view, err = s.Step()
		if err != nil {
			return fmt.Errorf("step: %w", err)
		}
	}

	fmt.Println("halted")
	for i, v := range view.Registers {
		fmt.Printf("  r%d = %d\n", i, v)
	}
	p := view.Performance
	fmt.Printf("cycles=%d instructions=%d cpi=%.3f stalls=%.3f forwards=%.3f flushes=%d\n",
		p.Cycles, p.Instructions, p.CPI, p.StallRate, p.ForwardRate, p.FlushCount)
	return nil
}

func debugAction(c *cli.Context) error {
	source, err := readSource(c)
	if err != nil {
		return err
	}
	return runDebugger(source)
}
