// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/beevik/asm6502/host"
)

func newShellCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "shell [<script>...]",
		Short: "Run the interactive assembler shell",
		Long: "Run the interactive assembler shell. Each script file is run" +
			" first, then commands are read from standard input.",
		RunE: func(cmd *cobra.Command, args []string) error {
			h := host.New()
			h.Configure(o.cfg.MaxPasses, o.cfg.Origin)

			for _, filename := range args {
				file, err := os.Open(filename)
				if err != nil {
					return errors.Wrapf(err, "failed to open script")
				}
				h.RunCommands(file, o.stdout, false)
				file.Close()
			}

			interactive := false
			if f, ok := o.stdin.(*os.File); ok {
				interactive = host.IsTerminal(f)
			}
			h.RunCommands(o.stdin, o.stdout, interactive)
			return nil
		},
	}
}
