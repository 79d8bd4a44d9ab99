// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import "github.com/beevik/cmd"

var (
	cmds     *cmd.Tree
	cmdIndex []cmd.CommandDescriptor // commands in help order
)

func init() {
	root := cmd.NewTree(cmd.TreeDescriptor{Name: "asm6502"})
	add := func(c cmd.CommandDescriptor) {
		root.AddCommand(c)
		cmdIndex = append(cmdIndex, c)
	}

	add(cmd.CommandDescriptor{
		Name:        "help",
		Brief:       "Display help for a command",
		Description: "Display help for a command.",
		Usage:       "help [<command>]",
		Data:        (*Host).cmdHelp,
	})
	add(cmd.CommandDescriptor{
		Name:  "assemble",
		Brief: "Assemble a file",
		Description: "Run the assembler on the specified file, starting at" +
			" the Origin setting. The result is kept for the list, hex, save" +
			" and disassemble commands. If you want verbose output, specify" +
			" true as a second parameter.",
		Usage: "assemble <filename> [<verbose>]",
		Data:  (*Host).cmdAssemble,
	})
	add(cmd.CommandDescriptor{
		Name:  "defines",
		Brief: "List constants",
		Description: "Display every constant declared by the last assembled" +
			" file, in declaration order.",
		Usage: "defines",
		Data:  (*Host).cmdDefines,
	})
	add(cmd.CommandDescriptor{
		Name:  "disassemble",
		Brief: "Disassemble code",
		Description: "Disassemble the last assembled machine code starting at" +
			" the requested address. The number of instruction lines to" +
			" disassemble may be specified as an option. If no address is" +
			" specified, the disassembly continues from where the last" +
			" disassembly left off.",
		Usage: "disassemble [<address>] [<lines>]",
		Data:  (*Host).cmdDisassemble,
	})
	add(cmd.CommandDescriptor{
		Name:        "hex",
		Brief:       "Display the hex listing",
		Description: "Display the machine code of the last assembly as hex bytes.",
		Usage:       "hex",
		Data:        (*Host).cmdHex,
	})
	add(cmd.CommandDescriptor{
		Name:  "labels",
		Brief: "List labels",
		Description: "Display every label of the last assembled file with its" +
			" final address and the source line declaring it.",
		Usage: "labels",
		Data:  (*Host).cmdLabels,
	})
	add(cmd.CommandDescriptor{
		Name:  "list",
		Brief: "Display the debug listing",
		Description: "Display the annotated listing of the last assembly, one" +
			" statement per line.",
		Usage: "list",
		Data:  (*Host).cmdList,
	})
	add(cmd.CommandDescriptor{
		Name:        "quit",
		Brief:       "Quit the program",
		Description: "Quit the program.",
		Usage:       "quit",
		Data:        (*Host).cmdQuit,
	})
	add(cmd.CommandDescriptor{
		Name:  "save",
		Brief: "Save the binary image",
		Description: "Write the last assembly to disk as a binary ROM image," +
			" along with a source map file. By default the image is named" +
			" after the source file.",
		Usage: "save [<filename>]",
		Data:  (*Host).cmdSave,
	})
	add(cmd.CommandDescriptor{
		Name:  "set",
		Brief: "Set a configuration variable",
		Description: "Set the value of a configuration variable. To see the" +
			" current values of all configuration variables, type set" +
			" without any arguments.",
		Usage: "set [<var> <value>]",
		Data:  (*Host).cmdSet,
	})

	// Add command shortcuts.
	root.AddShortcut("a", "assemble")
	root.AddShortcut("d", "disassemble")
	root.AddShortcut("l", "list")
	root.AddShortcut("?", "help")

	cmds = root
}
