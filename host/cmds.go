// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"strings"

	"github.com/beevik/cmd"
)

// A hostCommand is the data stored with each command in the tree.
type hostCommand struct {
	path        string
	brief       string
	description string
	usage       string
	run         func(*Host, selection) error
}

// A selection is a command chosen from the command tree, along with the
// arguments that followed it.
type selection struct {
	command *hostCommand
	args    []string
}

var (
	cmds     *cmd.Tree
	commands []*hostCommand
)

func addCommand(t *cmd.Tree, c *hostCommand) {
	name := c.path[strings.LastIndexByte(c.path, ' ')+1:]
	t.AddCommand(cmd.CommandDescriptor{
		Name:        name,
		Brief:       c.brief,
		Description: c.description,
		Usage:       c.usage,
		Data:        c,
	})
	commands = append(commands, c)
}

func init() {
	root := cmd.NewTree(cmd.TreeDescriptor{Name: "asm6502"})
	addCommand(root, &hostCommand{
		path:        "help",
		description: "Display help for a command.",
		usage:       "help [<command>]",
		run:         (*Host).cmdHelp,
	})

	// Assemble commands
	as := root.AddSubtree(cmd.TreeDescriptor{Name: "assemble", Brief: "Assemble commands"})
	addCommand(as, &hostCommand{
		path:  "assemble file",
		brief: "Assemble a file from disk and save the binary to disk",
		description: "Run the assembler on the specified file," +
			" producing a binary file and source map file if successful." +
			" The code is also loaded into the host's memory image.",
		usage: "assemble file <filename>",
		run:   (*Host).cmdAssembleFile,
	})
	addCommand(as, &hostCommand{
		path:  "assemble interactive",
		brief: "Start interactive assembly mode",
		description: "Start interactive assembler mode. Each line you type" +
			" is added to the program. Once you type END, the lines are" +
			" assembled and stored in memory at the specified address." +
			" Symbols from earlier assemblies may be referenced.",
		usage: "assemble interactive [<address>]",
		run:   (*Host).cmdAssembleInteractive,
	})

	addCommand(root, &hostCommand{
		path:  "disassemble",
		brief: "Disassemble code",
		description: "Disassemble machine code starting at the requested" +
			" address. The number of instruction lines to disassemble may be" +
			" specified as an option. If no address is specified, the" +
			" disassembly continues from where the last disassembly left off.",
		usage: "disassemble [<address>] [<lines>]",
		run:   (*Host).cmdDisassemble,
	})
	addCommand(root, &hostCommand{
		path:  "dump",
		brief: "Dump memory at address",
		description: "Dump the contents of memory starting from the" +
			" specified address. The number of bytes to dump may be" +
			" specified as an option. If no address is specified, the" +
			" memory dump continues from where the last dump left off.",
		usage: "dump [<address>] [<bytes>]",
		run:   (*Host).cmdDump,
	})
	addCommand(root, &hostCommand{
		path:  "evaluate",
		brief: "Evaluate an expression",
		description: "Evaluate an assembler expression. Symbols defined by" +
			" earlier assemblies may be used.",
		usage: "evaluate <expression>",
		run:   (*Host).cmdEvaluate,
	})
	addCommand(root, &hostCommand{
		path:  "list",
		brief: "List source code lines",
		description: "List the source code corresponding to the machine code" +
			" at the specified address. The source must have been assembled" +
			" by the assemble file command.",
		usage: "list <address> [<lines>]",
		run:   (*Host).cmdList,
	})
	addCommand(root, &hostCommand{
		path:  "load",
		brief: "Load a binary file into memory",
		description: "Load the contents of a binary file into memory. If" +
			" the source map saved by the assemble file command is found" +
			" next to it, the code is placed where it was assembled and" +
			" its symbols and source become available. Otherwise the" +
			" code is loaded at the specified address.",
		usage: "load <filename> [<address>]",
		run:   (*Host).cmdLoad,
	})
	addCommand(root, &hostCommand{
		path:  "locate",
		brief: "Find the address of a source line",
		description: "Display the address of the first byte generated by" +
			" a source line of the most recent assembly. The next" +
			" disassembly starts there.",
		usage: "locate <line>",
		run:   (*Host).cmdLocate,
	})
	addCommand(root, &hostCommand{
		path:  "opcodes",
		brief: "List the encodings of an instruction",
		description: "Display every addressing mode supported by one or" +
			" more instruction mnemonics, along with the opcode byte and" +
			" instruction length of each. Undocumented opcodes are marked.",
		usage: "opcodes <mnemonic> [<mnemonic> ...]",
		run:   (*Host).cmdOpcodes,
	})
	addCommand(root, &hostCommand{
		path:        "quit",
		brief:       "Quit the program",
		description: "Quit the program.",
		usage:       "quit",
		run:         (*Host).cmdQuit,
	})
	addCommand(root, &hostCommand{
		path:  "set",
		brief: "Set a configuration variable",
		description: "Set the value of a configuration variable. To see the" +
			" current values of all configuration variables, type set" +
			" without any arguments.",
		usage: "set [<var> <value>]",
		run:   (*Host).cmdSet,
	})
	addCommand(root, &hostCommand{
		path:  "symbols",
		brief: "List assembled symbols",
		description: "Display the symbols defined by the most recent" +
			" assembly. If a prefix is given, only symbols starting with" +
			" the prefix are listed.",
		usage: "symbols [<prefix>]",
		run:   (*Host).cmdSymbols,
	})

	// Add command shortcuts.
	root.AddShortcut("a", "assemble file")
	root.AddShortcut("ai", "assemble interactive")
	root.AddShortcut("d", "disassemble")
	root.AddShortcut("e", "evaluate")
	root.AddShortcut("l", "list")
	root.AddShortcut("m", "dump")
	root.AddShortcut("sy", "symbols")
	root.AddShortcut("?", "help")

	cmds = root
}

// Return the commands under a subtree path such as "assemble".
func subtreeCommands(path string) []*hostCommand {
	var list []*hostCommand
	for _, c := range commands {
		if strings.HasPrefix(c.path, path+" ") {
			list = append(list, c)
		}
	}
	return list
}
