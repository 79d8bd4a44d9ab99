// Copyright 2018 Brett Vickers.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host implements an interactive shell around the 6502
// assembler.
//
// Within the host it is possible to assemble a source file, view its hex
// and annotated listings, inspect its labels and constants, disassemble
// the generated machine code and save it as a binary ROM image.
package host

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/beevik/asm6502/asm"
	"github.com/beevik/asm6502/disasm"
	"github.com/beevik/cmd"
	"github.com/beevik/term"
	"github.com/pkg/errors"
	xterm "golang.org/x/term"
)

var errQuit = errors.New("quit")

// A lineReader supplies one command line at a time.
type lineReader interface {
	ReadLine() (string, error)
}

type scanReader struct {
	*bufio.Scanner
}

func (s scanReader) ReadLine() (string, error) {
	if s.Scan() {
		return s.Text(), nil
	}
	if s.Err() != nil {
		return "", s.Err()
	}
	return "", io.EOF
}

// A Host is an assembler shell. It keeps the result of the last
// successful assembly.
type Host struct {
	input       lineReader
	output      *bufio.Writer
	interactive bool
	lastCmd     *cmd.Selection
	settings    *settings
	filename    string
	assembly    *asm.Assembly
	sourceMap   *asm.SourceMap
}

// New creates a new assembler shell.
func New() *Host {
	return &Host{
		settings: newSettings(),
	}
}

// RunCommands accepts host commands from a reader and outputs the results
// to a writer. If the commands are interactive, a prompt is displayed while
// the host waits for the the next command to be entered.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) {
	h.run(scanReader{bufio.NewScanner(r)}, w, interactive)
}

// RunTerminal runs commands interactively on a terminal with line editing
// and history. If 'f' isn't a terminal, commands are read from it
// line by line instead.
func (h *Host) RunTerminal(f *os.File, w io.Writer) error {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		h.RunCommands(f, w, true)
		return nil
	}

	state, err := xterm.MakeRaw(fd)
	if err != nil {
		return errors.Wrap(err, "raw terminal")
	}
	defer xterm.Restore(fd, state)

	t := xterm.NewTerminal(struct {
		io.Reader
		io.Writer
	}{f, w}, "* ")
	h.run(t, t, false)
	return nil
}

func (h *Host) run(r lineReader, w io.Writer, interactive bool) {
	h.input = r
	h.output = bufio.NewWriter(w)
	h.interactive = interactive
	defer h.flush()

	for {
		h.prompt()

		line, err := h.input.ReadLine()
		if err != nil {
			break
		}

		var c cmd.Selection
		if line = strings.TrimSpace(line); line != "" {
			c, err = cmds.Lookup(line)
			switch {
			case err == cmd.ErrNotFound:
				h.println("Command not found.")
				continue
			case err == cmd.ErrAmbiguous:
				h.println("Command is ambiguous.")
				continue
			case err != nil:
				h.printf("ERROR: %v.\n", err)
				continue
			}
		} else if h.lastCmd != nil {
			c = *h.lastCmd
		}

		if c.Command == nil {
			continue
		}
		h.lastCmd = &c

		handler := c.Command.Data.(func(*Host, cmd.Selection) error)
		err = handler(h, c)
		h.flush()
		if err != nil {
			break
		}
	}
}

// AssembleFile assembles a source file and keeps the result.
func (h *Host) AssembleFile(filename string) error {
	var options asm.Option
	if h.settings.Verbose {
		options |= asm.Verbose
	}
	return h.assemble(filename, options)
}

// SetOrigin sets the initial program counter used by later assemblies.
func (h *Host) SetOrigin(origin uint16) {
	h.settings.Origin = origin
}

// SetVerbose enables or disables the assembler trace.
func (h *Host) SetVerbose(verbose bool) {
	h.settings.Verbose = verbose
}

func (h *Host) assemble(filename string, options asm.Option) error {
	out := io.Writer(os.Stdout)
	if h.output != nil {
		out = h.output
	}

	assembly, sourceMap, err := asm.AssembleFile(filename, h.settings.Origin, out, options)
	if err != nil {
		return err
	}

	h.filename = filename
	h.assembly = assembly
	h.sourceMap = sourceMap
	h.settings.NextDisasmAddr = assembly.Program.Start()
	return nil
}

func (h *Host) print(args ...any) {
	fmt.Fprint(h.output, args...)
}

func (h *Host) printf(format string, args ...any) {
	fmt.Fprintf(h.output, format, args...)
}

func (h *Host) println(args ...any) {
	fmt.Fprintln(h.output, args...)
}

func (h *Host) flush() {
	h.output.Flush()
}

func (h *Host) prompt() {
	if h.interactive {
		h.print("* ")
		h.flush()
	}
}

// Report whether an assembly is loaded, complaining if not.
func (h *Host) loaded() bool {
	if h.assembly == nil {
		h.println("No file has been assembled.")
		return false
	}
	return true
}

func (h *Host) cmdAssemble(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c.Command)
		return nil
	}

	filename := c.Args[0]
	if filepath.Ext(filename) == "" {
		filename += ".asm"
	}

	options := asm.Option(0)
	verbose := h.settings.Verbose
	if len(c.Args) > 1 {
		v, err := stringToBool(c.Args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		verbose = v
	}
	if verbose {
		options |= asm.Verbose
	}

	if err := h.assemble(filename, options); err != nil {
		h.printf("Failed to assemble '%s'.\n", filepath.Base(filename))
		h.printf("%v\n", err)
		return nil
	}

	h.printf("Assembled '%s': %d bytes at $%04X.\n",
		filepath.Base(filename), len(h.assembly.Code), h.assembly.Program.Start())
	return nil
}

func (h *Host) cmdDefines(c cmd.Selection) error {
	if !h.loaded() {
		return nil
	}
	if len(h.assembly.Program.Defines) == 0 {
		h.println("No constants.")
		return nil
	}
	for _, d := range h.assembly.Program.Defines {
		h.printf("%-16s $%04X (%s)\n", d.Name, d.Value.Word(), d.Width)
	}
	return nil
}

func (h *Host) cmdDisassemble(c cmd.Selection) error {
	if !h.loaded() {
		return nil
	}
	if len(c.Args) == 0 {
		c.Args = []string{"$"}
	}

	var addr uint16
	switch c.Args[0] {
	case "$":
		addr = h.settings.NextDisasmAddr
	default:
		a, err := ParseNumber(c.Args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		addr = a
	}

	lines := h.settings.DisasmLines
	if len(c.Args) > 1 {
		l, err := ParseNumber(c.Args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		lines = int(l)
	}

	start := h.assembly.Program.Start()
	if addr < start || int(addr) >= int(start)+len(h.assembly.Code) {
		h.printf("Address $%04X is outside the assembled code.\n", addr)
		return nil
	}

	next, err := disasm.Write(h.output, h.assembly.Code, start, addr, lines)
	if err != nil {
		return err
	}

	h.settings.NextDisasmAddr = next
	h.lastCmd.Args = []string{"$", fmt.Sprintf("%d", lines)}
	return nil
}

func (h *Host) cmdHelp(c cmd.Selection) error {
	if len(c.Args) == 0 {
		h.displayCommands()
		return nil
	}

	s, err := cmds.Lookup(strings.Join(c.Args, " "))
	switch {
	case err != nil:
		h.printf("%v\n", err)
	case s.Command == nil:
		h.displayCommands()
	default:
		if s.Command.Usage != "" {
			h.printf("Syntax: %s\n\n", s.Command.Usage)
		}
		switch {
		case s.Command.Description != "":
			h.printf("Description:\n%s\n\n", indentWrap(3, s.Command.Description))
		case s.Command.Brief != "":
			h.printf("Description:\n%s.\n\n", indentWrap(3, s.Command.Brief))
		}
	}
	return nil
}

func (h *Host) cmdHex(c cmd.Selection) error {
	return h.render(asm.FormatHex)
}

func (h *Host) cmdLabels(c cmd.Selection) error {
	if !h.loaded() {
		return nil
	}
	if len(h.assembly.Program.Labels) == 0 {
		h.println("No labels.")
		return nil
	}
	for _, l := range h.assembly.Program.Labels {
		h.printf("%-16s $%04X  line %d\n", l.Name, l.Address, l.Row)
	}
	return nil
}

func (h *Host) cmdList(c cmd.Selection) error {
	return h.render(asm.FormatDebug)
}

func (h *Host) cmdQuit(c cmd.Selection) error {
	return errQuit
}

func (h *Host) cmdSave(c cmd.Selection) error {
	if !h.loaded() {
		return nil
	}

	var filename string
	if len(c.Args) > 0 {
		filename = c.Args[0]
		if filepath.Ext(filename) == "" {
			filename += ".bin"
		}
	} else {
		ext := filepath.Ext(h.filename)
		filename = h.filename[:len(h.filename)-len(ext)] + ".bin"
	}
	ext := filepath.Ext(filename)
	mapFilename := filename[:len(filename)-len(ext)] + ".map"

	if err := writeFile(filename, h.assembly); err != nil {
		h.printf("%v\n", err)
		return nil
	}
	if err := writeFile(mapFilename, h.sourceMap); err != nil {
		h.printf("%v\n", err)
		return nil
	}

	h.printf("Saved '%s' and '%s'.\n", filepath.Base(filename), filepath.Base(mapFilename))
	return nil
}

func (h *Host) cmdSet(c cmd.Selection) error {
	switch len(c.Args) {
	case 0:
		h.println("Variables:")
		h.settings.Display(h.output)

	case 1:
		h.displayHelpText(c.Command)

	default:
		key, value := strings.ToLower(c.Args[0]), strings.Join(c.Args[1:], " ")

		var err error
		switch h.settings.Kind(key) {
		case reflect.Invalid:
			err = errors.Errorf("Setting '%s' not found", key)
		case reflect.Bool:
			var v bool
			v, err = stringToBool(value)
			if err == nil {
				err = h.settings.Set(key, v)
			}
		default:
			var v uint16
			v, err = ParseNumber(value)
			if err == nil {
				err = h.settings.Set(key, v)
			}
		}

		if err == nil {
			h.println("Setting updated.")
		} else {
			h.printf("%v\n", err)
		}
	}
	return nil
}

func (h *Host) render(f asm.Format) error {
	if !h.loaded() {
		return nil
	}
	b, err := h.assembly.Render(f)
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	h.output.Write(b)
	if f != asm.FormatDebug {
		h.println()
	}
	return nil
}

func (h *Host) displayHelpText(c *cmd.Command) {
	if c.Usage != "" {
		h.printf("Syntax: %s\n", c.Usage)
	} else {
		h.println("<no help text>")
	}
}

func (h *Host) displayCommands() {
	h.println("asm6502 commands:")
	for _, c := range cmdIndex {
		if c.Brief != "" {
			h.printf("    %-15s  %s\n", c.Name, c.Brief)
		}
	}
}

func writeFile(filename string, w io.WriterTo) error {
	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrapf(err, "create '%s'", filepath.Base(filename))
	}
	defer file.Close()

	if _, err := w.WriteTo(file); err != nil {
		return errors.Wrapf(err, "write '%s'", filepath.Base(filename))
	}
	return nil
}
