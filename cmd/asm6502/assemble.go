// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/beevik/asm6502/asm"
	"github.com/beevik/asm6502/config"
	"github.com/beevik/asm6502/disasm"
	"github.com/beevik/asm6502/parser"
)

type options struct {
	stdin  io.Reader
	stdout io.Writer
	log    *logrus.Logger
	cfg    *config.Config

	configPath    string
	logLevel      string
	maxPasses     int
	origin        int
	output        string
	symbolsFormat string
	printSymbols  bool
	printAST      bool
	listing       bool
	disassemble   bool
	sourceMap     bool
	jobs          int
}

// configure builds the effective configuration: defaults, then the
// configuration file, then any flags given on the command line.
func (o *options) configure(cmd *cobra.Command) error {
	flags := cmd.Flags()
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return err
		}
	}

	if changed(flags, "log-level") {
		cfg.LogLevel = o.logLevel
	}
	if changed(flags, "max-passes") {
		cfg.MaxPasses = o.maxPasses
	}
	if changed(flags, "origin") {
		cfg.Origin = o.origin
	}
	if changed(flags, "output") {
		cfg.Output = o.output
	}
	if changed(flags, "symbols-format") {
		cfg.SymbolsFormat = o.symbolsFormat
	}
	if changed(flags, "source-map") {
		cfg.SourceMap = o.sourceMap
	}
	if changed(flags, "jobs") {
		cfg.Jobs = o.jobs
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	level, _ := cfg.Level()
	o.log.SetLevel(level)
	o.cfg = cfg

	o.log.WithFields(logrus.Fields{
		"max_passes": cfg.MaxPasses,
		"origin":     fmt.Sprintf("$%04X", cfg.Origin),
		"jobs":       cfg.Jobs,
	}).Debug("configured")
	return nil
}

func changed(flags *pflag.FlagSet, name string) bool {
	f := flags.Lookup(name)
	return f != nil && f.Changed
}

type job struct {
	filename string
	output   string
	result   *asm.Result
	err      error
}

func (o *options) assembleFiles(filenames []string) error {
	jobs := make([]*job, len(filenames))
	for i, filename := range filenames {
		jobs[i] = &job{filename: filename, output: o.cfg.Output}
		if len(filenames) > 1 {
			ext := filepath.Ext(filename)
			jobs[i].output = filename[:len(filename)-len(ext)] + ".bin"
		}
	}

	if len(jobs) == 1 && jobs[0].output == "-" {
		if f, ok := o.stdout.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return errors.New("refusing to write object code to a terminal")
		}
	}

	var g errgroup.Group
	g.SetLimit(o.cfg.Jobs)
	for _, j := range jobs {
		g.Go(func() error {
			j.err = o.assemble(j)
			return nil
		})
	}
	g.Wait()

	var errs *multierror.Error
	var done []*job
	for _, j := range jobs {
		if j.err != nil {
			errs = multierror.Append(errs, fileErrors(j.filename, j.err)...)
			continue
		}
		done = append(done, j)
	}

	if err := o.report(done, len(jobs) > 1); err != nil {
		errs = multierror.Append(errs, err)
	}
	if errs != nil {
		errs.ErrorFormat = listErrors
	}
	return errs.ErrorOrNil()
}

// assemble parses and assembles a single source file and writes its
// object code.
func (o *options) assemble(j *job) error {
	log := o.log.WithField("file", j.filename)

	src, err := os.ReadFile(j.filename)
	if err != nil {
		return errors.Wrap(err, "failed to read source")
	}

	stmts, err := parser.ParseString(string(src))
	if err != nil {
		return err
	}

	r, err := asm.Assemble(stmts, asm.Options{
		Filename:  j.filename,
		MaxPasses: o.cfg.MaxPasses,
		Origin:    o.cfg.Origin,
		Logger:    log,
	})
	if err != nil {
		return err
	}
	j.result = r

	if j.output == "-" {
		_, err = o.stdout.Write(r.Code)
		return errors.Wrap(err, "failed to write object code")
	}
	if err := os.WriteFile(j.output, r.Code, 0644); err != nil {
		return errors.Wrapf(err, "failed to save '%s'", j.output)
	}

	if o.cfg.SourceMap {
		ext := filepath.Ext(j.output)
		mapFilename := j.output[:len(j.output)-len(ext)] + ".map"
		if err := writeSourceMap(mapFilename, r.SourceMap); err != nil {
			return err
		}
	}

	log.WithFields(logrus.Fields{
		"output": j.output,
		"bytes":  len(r.Code),
		"passes": r.Passes,
	}).Info("assembled")
	return nil
}

func writeSourceMap(filename string, sm *asm.SourceMap) error {
	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrapf(err, "failed to create '%s'", filename)
	}
	defer file.Close()
	if _, err := sm.WriteTo(file); err != nil {
		return errors.Wrapf(err, "failed to write '%s'", filename)
	}
	return nil
}

// report prints the requested statement, listing, disassembly and symbol
// output for each assembled file, in command line order.
func (o *options) report(jobs []*job, headers bool) error {
	if !o.printAST && !o.listing && !o.disassemble && !o.printSymbols {
		return nil
	}
	if o.printSymbols && o.cfg.SymbolsFormat != config.SymbolsText {
		// Structured output only carries the symbol tables.
		return o.writeSymbolTables(jobs, headers)
	}

	for _, j := range jobs {
		if headers {
			fmt.Fprintf(o.stdout, "; %s\n", j.filename)
		}
		if o.printAST {
			for _, st := range j.result.Statements {
				fmt.Fprintf(o.stdout, "%4d  %s\n", st.Line(), st)
			}
		}
		if o.listing {
			if err := j.result.WriteListing(o.stdout); err != nil {
				return err
			}
		}
		if o.disassemble {
			for _, seg := range j.result.Segments() {
				if err := disasm.Write(o.stdout, seg.Code, seg.Address); err != nil {
					return err
				}
			}
		}
		if o.printSymbols {
			if err := j.result.WriteSymbols(o.stdout); err != nil {
				return err
			}
		}
	}
	return nil
}

type symbolTable struct {
	Symbols map[string]int    `json:"symbols" yaml:"symbols"`
	Strings map[string]string `json:"strings,omitempty" yaml:"strings,omitempty"`
}

func (o *options) writeSymbolTables(jobs []*job, byFile bool) error {
	var v any
	if byFile {
		tables := make(map[string]symbolTable, len(jobs))
		for _, j := range jobs {
			tables[j.filename] = symbolTable{j.result.Symbols, j.result.Text}
		}
		v = tables
	} else if len(jobs) == 1 {
		v = symbolTable{jobs[0].result.Symbols, jobs[0].result.Text}
	} else {
		return nil
	}

	switch o.cfg.SymbolsFormat {
	case config.SymbolsJSON:
		enc := json.NewEncoder(o.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		enc := yaml.NewEncoder(o.stdout)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
}

// fileErrors prefixes every error reported for a file with its name.
func fileErrors(filename string, err error) []error {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		list := make([]error, len(merr.Errors))
		for i, e := range merr.Errors {
			list[i] = errors.Wrap(e, filename)
		}
		return list
	}
	return []error{errors.Wrap(err, filename)}
}

func listErrors(errs []error) string {
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = err.Error()
	}
	return strings.Join(lines, "\n")
}
