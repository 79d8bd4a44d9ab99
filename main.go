// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/beevik/asm6502/asm"
	"github.com/beevik/asm6502/host"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	debug       bool
	binary      bool
	output      string
	mapFile     string
	origin      string
	verbose     bool
	interactive bool
)

var rootCmd = &cobra.Command{
	Use:   "asm6502 [flags] <input>",
	Short: "A 6502 assembler",
	Long: `asm6502 assembles a 6502 source file into a hex listing, an annotated
debug listing or a binary ROM image.

By default the hex listing is written to standard output. Use --debug for
the annotated listing or --binary for a ROM image starting with the
6502ROM... header. With --interactive, a shell is started after the input
file, if any, has been assembled.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	f := rootCmd.Flags()
	f.BoolVarP(&debug, "debug", "d", false, "write the annotated debug listing")
	f.BoolVarP(&binary, "binary", "b", false, "write a binary ROM image")
	f.StringVarP(&output, "output", "o", "", "output file (default stdout)")
	f.StringVarP(&mapFile, "map", "m", "", "write a source map file")
	f.StringVar(&origin, "origin", "0", "initial program counter")
	f.BoolVarP(&verbose, "verbose", "v", false, "trace the assembler to stderr")
	f.BoolVarP(&interactive, "interactive", "i", false, "start the interactive shell")
	rootCmd.MarkFlagsMutuallyExclusive("debug", "binary")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		exitOnError(err)
	}
}

func run(c *cobra.Command, args []string) error {
	org, err := host.ParseNumber(origin)
	if err != nil {
		return errors.Wrap(err, "--origin")
	}

	if interactive {
		h := host.New()
		h.SetOrigin(org)
		h.SetVerbose(verbose)
		if len(args) > 0 {
			if err := h.AssembleFile(args[0]); err != nil {
				return err
			}
		}
		return h.RunTerminal(os.Stdin, os.Stdout)
	}

	if len(args) == 0 {
		return errors.New("no input file")
	}

	var options asm.Option
	trace := io.Discard
	if verbose {
		options |= asm.Verbose
		trace = os.Stderr
	}

	assembly, sourceMap, err := asm.AssembleFile(args[0], org, trace, options)
	if err != nil {
		return err
	}

	format := asm.FormatHex
	switch {
	case debug:
		format = asm.FormatDebug
	case binary:
		format = asm.FormatBinary
	}

	b, err := assembly.Render(format)
	if err != nil {
		return err
	}

	if output == "" {
		os.Stdout.Write(b)
		if format == asm.FormatHex {
			fmt.Println()
		}
	} else if err := os.WriteFile(output, b, 0644); err != nil {
		return errors.Wrapf(err, "write %s", output)
	}

	if mapFile != "" {
		return writeSourceMap(mapFile, sourceMap)
	}
	return nil
}

func writeSourceMap(filename string, m *asm.SourceMap) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "create %s", filename)
	}
	defer file.Close()

	if _, err := m.WriteTo(file); err != nil {
		return errors.Wrapf(err, "write %s", filename)
	}
	return nil
}

func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	os.Exit(1)
}
