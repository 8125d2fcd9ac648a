// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command asm6502 assembles 6502 source files into object code.
//
// Usage:
//
//	asm6502 [flags] <file>...
//	asm6502 shell [<script>...]
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	root := newRootCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	o := &options{stdin: stdin, stdout: stdout, log: logrus.New()}
	o.log.SetOutput(stderr)
	o.log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	root := &cobra.Command{
		Use:   "asm6502 [flags] <file>...",
		Short: "Assemble 6502 source files",
		Long: "Assemble one or more 6502 source files. With a single source" +
			" file the object code is written to the output file (a.out by" +
			" default, \"-\" for standard output). With several source files" +
			" each one is written next to its source with a .bin extension.",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.configure(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.assembleFiles(args)
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&o.configPath, "config", "c", "", "TOML configuration file")
	flags.StringVar(&o.logLevel, "log-level", "", "logging level (debug, info, warn, error)")
	flags.IntVar(&o.maxPasses, "max-passes", 0, "resolution passes attempted before giving up")
	flags.IntVar(&o.origin, "origin", 0, "initial location counter")

	flags = root.Flags()
	flags.StringVarP(&o.output, "output", "o", "", "object code file (\"-\" for standard output)")
	flags.StringVar(&o.symbolsFormat, "symbols-format", "", "symbol table format (text, json, yaml)")
	flags.BoolVarP(&o.printSymbols, "print-symbols", "s", false, "print the symbol table")
	flags.BoolVar(&o.printAST, "print-ast", false, "print the parsed statements")
	flags.BoolVarP(&o.listing, "listing", "l", false, "print an assembly listing")
	flags.BoolVarP(&o.disassemble, "disassemble", "d", false, "print a disassembly of the object code")
	flags.BoolVar(&o.sourceMap, "source-map", false, "write a .map source map next to each object file")
	flags.IntVarP(&o.jobs, "jobs", "j", 0, "source files assembled concurrently")

	root.AddCommand(newShellCommand(o))

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w\n%s", err, cmd.UsageString())
	})
	return root
}
