// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host implements an interactive assembler shell with a 64K memory
// image.
//
// Within the host it is possible to assemble source files or lines typed
// at the prompt into memory, list the symbols they define, disassemble and
// dump memory, map addresses back to source lines, and evaluate arbitrary
// expressions against the assembled symbols.
package host

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/cmd"
	"github.com/beevik/term"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/beevik/asm6502/asm"
	"github.com/beevik/asm6502/disasm"
	"github.com/beevik/asm6502/opcode"
	"github.com/beevik/asm6502/parser"
)

var errQuit = errors.New("quit")

// A Host is an assembler shell holding a 64K memory image, the result of
// the most recent assembly and the symbols accumulated by every assembly.
type Host struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool
	log         *logrus.Logger
	lastCmd     *selection
	settings    *settings
	mem         []byte
	result      *asm.Result
	sourceMap   *asm.SourceMap
	source      []string
	symbols     asm.Symbols
}

// New creates a new assembler shell.
func New() *Host {
	h := &Host{
		settings: newSettings(),
		mem:      make([]byte, 0x10000),
		symbols:  make(asm.Symbols),
		log:      logrus.New(),
	}
	h.log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})
	h.log.SetOutput(io.Discard)
	return h
}

// IsTerminal reports whether f is connected to a terminal. Commands read
// from anything else are run without prompts.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// RunCommands accepts host commands from a reader and outputs the results
// to a writer. If the commands are interactive, a prompt is displayed while
// the host waits for the the next command to be entered.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) {
	h.input = bufio.NewScanner(r)
	h.output = bufio.NewWriter(w)
	h.interactive = interactive
	h.onSettingsUpdate()

	if interactive {
		h.println()
	}

	for {
		h.prompt()

		line, err := h.getLine()
		if err != nil {
			break
		}

		var c selection
		if line != "" {
			n, args, err := cmds.Lookup(line)
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

			switch n := n.(type) {
			case *cmd.Tree:
				h.displayCommands(n.Name, subtreeCommands(n.Name))
				continue
			case *cmd.Command:
				hc, ok := n.Data.(*hostCommand)
				if !ok {
					continue
				}
				c = selection{command: hc, args: args}
			}
		} else if h.lastCmd != nil {
			c = *h.lastCmd
		}

		if c.command == nil {
			continue
		}
		h.lastCmd = &c

		err = c.command.run(h, c)
		h.flush()
		if err != nil {
			break
		}
	}
	h.flush()
}

// AssembleFile assembles a source file, loads the object code into memory
// and writes the ".bin" object file and ".map" source map next to it.
func (h *Host) AssembleFile(filename string) error {
	src, err := os.ReadFile(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to read '%s'", filename)
	}

	r, err := h.assemble(string(src), asm.Options{Filename: filename})
	if err != nil {
		return err
	}
	h.source = strings.Split(string(src), "\n")

	ext := filepath.Ext(filename)
	prefix := filename[:len(filename)-len(ext)]
	binFilename, mapFilename := prefix+".bin", prefix+".map"

	if err := os.WriteFile(binFilename, r.Code, 0644); err != nil {
		return errors.Wrapf(err, "failed to save '%s'", binFilename)
	}

	file, err := os.OpenFile(mapFilename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrapf(err, "failed to create '%s'", mapFilename)
	}
	defer file.Close()
	if _, err := r.SourceMap.WriteTo(file); err != nil {
		return errors.Wrapf(err, "failed to write '%s'", mapFilename)
	}

	h.printf("Assembled '%s' to '%s'.\n", filepath.Base(filename), filepath.Base(binFilename))
	return nil
}

// Assemble source text, load the object code into memory and record the
// symbols it defines.
func (h *Host) assemble(src string, opts asm.Options) (*asm.Result, error) {
	stmts, err := parser.ParseString(src)
	if err != nil {
		return nil, err
	}

	opts.MaxPasses = h.settings.MaxPasses
	opts.Logger = h.log
	r, err := asm.Assemble(stmts, opts)
	if err != nil {
		return nil, err
	}

	segs := r.Segments()
	for _, s := range segs {
		if s.Address < 0 || s.Address+len(s.Code) > len(h.mem) {
			return nil, errors.Errorf("%d bytes at $%04X do not fit in memory", len(s.Code), s.Address)
		}
	}
	for _, s := range segs {
		copy(h.mem[s.Address:], s.Code)
	}

	for k, v := range r.Symbols {
		h.symbols[k] = asm.NumValue(v)
	}
	for k, v := range r.Text {
		h.symbols[k] = asm.TextValue(v)
	}
	h.result = r
	h.sourceMap = r.SourceMap
	if len(segs) > 0 {
		h.settings.NextDisasmAddr = uint16(segs[0].Address)
		h.settings.NextMemDumpAddr = uint16(segs[0].Address)
	}
	return r, nil
}

// Load reads an object file into memory and returns the address of its
// first byte. When the source map written by AssembleFile sits next to it,
// the code is placed at the addresses the map records and its symbols and
// source lines become available. Otherwise the code is loaded at addr.
func (h *Host) Load(filename string, addr int) (origin int, err error) {
	code, err := os.ReadFile(filename)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read '%s'", filename)
	}

	ext := filepath.Ext(filename)
	sm, err := readSourceMap(filename[:len(filename)-len(ext)] + ".map")
	if err != nil {
		return 0, err
	}

	segs := []asm.Segment{{Address: addr, Code: code}}
	if sm != nil {
		if segs, err = sm.Segments(code); err != nil {
			return 0, errors.Wrapf(err, "failed to load '%s'", filename)
		}
	}
	for _, s := range segs {
		if s.Address < 0 || s.Address+len(s.Code) > len(h.mem) {
			return 0, errors.Errorf("%d bytes at $%04X do not fit in memory", len(s.Code), s.Address)
		}
	}
	for _, s := range segs {
		copy(h.mem[s.Address:], s.Code)
	}

	h.result, h.sourceMap, h.source = nil, sm, nil
	origin = addr
	if sm != nil {
		for k, v := range sm.Symbols {
			h.symbols[k] = asm.NumValue(v)
		}
		if src, err := os.ReadFile(sm.File); err == nil {
			h.source = strings.Split(string(src), "\n")
		} else {
			h.log.WithError(err).Debug("source unavailable")
		}
	}
	if len(segs) > 0 {
		origin = segs[0].Address
		h.settings.NextDisasmAddr = uint16(origin)
		h.settings.NextMemDumpAddr = uint16(origin)
	}
	return origin, nil
}

// Read a source map file. A missing file is not an error.
func readSourceMap(filename string) (*asm.SourceMap, error) {
	file, err := os.Open(filename)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open '%s'", filename)
	}
	defer file.Close()

	sm := &asm.SourceMap{}
	if _, err := sm.ReadFrom(file); err != nil {
		return nil, errors.Wrapf(err, "failed to read '%s'", filename)
	}
	return sm, nil
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

func (h *Host) getLine() (string, error) {
	if h.input.Scan() {
		return strings.TrimSpace(h.input.Text()), nil
	}
	if h.input.Err() != nil {
		return "", h.input.Err()
	}
	return "", io.EOF
}

func (h *Host) prompt() {
	if h.interactive {
		h.print("* ")
		h.flush()
	}
}

// Print every error in an assembly failure, one per line.
func (h *Host) printErrors(err error) {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		for _, e := range merr.Errors {
			h.println(e)
		}
		return
	}
	h.println(err)
}

func (h *Host) cmdAssembleFile(c selection) error {
	if len(c.args) < 1 {
		h.displayHelpText(c)
		return nil
	}

	filename := c.args[0]
	if filepath.Ext(filename) == "" {
		filename += ".asm"
	}

	if err := h.AssembleFile(filename); err != nil {
		h.printf("Failed to assemble: %s\n", filepath.Base(filename))
		h.printErrors(err)
	}
	return nil
}

func (h *Host) cmdAssembleInteractive(c selection) error {
	origin := h.settings.Origin
	if len(c.args) > 0 {
		a, err := h.parseAddr(c.args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		origin = a
	}

	if h.interactive {
		h.printf("Assembling at $%04X. Type END to finish.\n", origin)
	}

	var lines []string
	for {
		if h.interactive {
			h.print("asm> ")
			h.flush()
		}
		line, err := h.getLine()
		if err != nil || strings.EqualFold(line, "end") {
			break
		}
		lines = append(lines, line)
	}

	r, err := h.assemble(strings.Join(lines, "\n"), asm.Options{
		Origin:  int(origin),
		Symbols: h.symbols.Clone(),
	})
	if err != nil {
		h.println("Failed to assemble.")
		h.printErrors(err)
		return nil
	}

	h.source = nil
	h.printf("Assembled %d bytes.\n", len(r.Code))
	return nil
}

func (h *Host) cmdDisassemble(c selection) error {
	addr := h.settings.NextDisasmAddr
	if len(c.args) > 0 && c.args[0] != "$" {
		a, err := h.parseAddr(c.args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		addr = a
	}

	lines := h.settings.DisasmLines
	if len(c.args) > 1 {
		n, err := h.parseExpr(c.args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		lines = n
	}

	next := int(addr)
	for i := 0; i < lines && next < len(h.mem); i++ {
		var line string
		a := next
		line, next = disasm.Disassemble(h.mem, 0, a)
		h.printf("%04X-   %-8s    %s\n", a, codeString(h.mem[a:next]), line)
	}

	h.settings.NextDisasmAddr = uint16(next)
	h.lastCmd.args = []string{"$", strconv.Itoa(lines)}
	return nil
}

func (h *Host) cmdDump(c selection) error {
	addr := h.settings.NextMemDumpAddr
	if len(c.args) > 0 && c.args[0] != "$" {
		a, err := h.parseAddr(c.args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		addr = a
	}

	bytes := h.settings.MemDumpBytes
	if len(c.args) > 1 {
		n, err := h.parseExpr(c.args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		bytes = n
	}
	if bytes < 1 {
		return nil
	}
	if rem := len(h.mem) - int(addr); bytes > rem {
		bytes = rem
	}

	h.dumpMemory(addr, bytes)

	h.settings.NextMemDumpAddr = uint16(int(addr) + bytes)
	h.lastCmd.args = []string{"$", strconv.Itoa(bytes)}
	return nil
}

func (h *Host) cmdEvaluate(c selection) error {
	if len(c.args) < 1 {
		h.displayHelpText(c)
		return nil
	}

	v, err := h.evaluate(strings.Join(c.args, " "))
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	switch {
	case v.Kind == asm.Text:
		h.printf("%q\n", v.Text)
	case v.Num < 0:
		h.printf("%d\n", v.Num)
	default:
		h.printf("$%04X (%d)\n", v.Num, v.Num)
	}
	return nil
}

func (h *Host) cmdHelp(c selection) error {
	if len(c.args) == 0 {
		h.displayCommands("", commands)
		return nil
	}

	path := strings.Join(c.args, " ")
	if list := subtreeCommands(path); len(list) > 0 {
		h.displayCommands(path, list)
		return nil
	}

	n, _, err := cmds.Lookup(path)
	if err != nil {
		h.printf("%v.\n", err)
		return nil
	}
	var hc *hostCommand
	switch n := n.(type) {
	case *cmd.Tree:
		h.displayCommands(n.Name, subtreeCommands(n.Name))
		return nil
	case *cmd.Command:
		hc, _ = n.Data.(*hostCommand)
	}
	if hc == nil {
		return nil
	}

	if hc.usage != "" {
		h.printf("Syntax: %s\n\n", hc.usage)
	}
	switch {
	case hc.description != "":
		h.printf("Description:\n%s\n\n", indentWrap(3, hc.description))
	case hc.brief != "":
		h.printf("Description:\n%s.\n\n", indentWrap(3, hc.brief))
	}
	return nil
}

func (h *Host) cmdList(c selection) error {
	if len(c.args) < 1 {
		h.displayHelpText(c)
		return nil
	}
	if h.sourceMap == nil || h.source == nil {
		h.println("No source file has been assembled.")
		return nil
	}

	addr, err := h.parseAddr(c.args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	lines := h.settings.SourceLines
	if len(c.args) > 1 {
		if lines, err = h.parseExpr(c.args[1]); err != nil {
			h.printf("%v\n", err)
			return nil
		}
	}

	line, ok := h.sourceMap.Search(int(addr))
	if !ok {
		h.printf("No source code found for address $%04X.\n", addr)
		return nil
	}

	for i := line; i < line+lines && i <= len(h.source); i++ {
		h.printf("%-5d %s\n", i, h.source[i-1])
	}
	return nil
}

func (h *Host) cmdLoad(c selection) error {
	if len(c.args) < 1 {
		h.displayHelpText(c)
		return nil
	}

	filename := c.args[0]
	if filepath.Ext(filename) == "" {
		filename += ".bin"
	}

	addr := h.settings.Origin
	if len(c.args) > 1 {
		a, err := h.parseAddr(c.args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		addr = a
	}

	origin, err := h.Load(filename, int(addr))
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	h.printf("Loaded '%s' at $%04X.\n", filepath.Base(filename), origin)
	return nil
}

func (h *Host) cmdLocate(c selection) error {
	if len(c.args) < 1 {
		h.displayHelpText(c)
		return nil
	}
	if h.sourceMap == nil {
		h.println("No source file has been assembled.")
		return nil
	}

	line, err := strconv.Atoi(c.args[0])
	if err != nil {
		h.printf("Invalid line number '%s'.\n", c.args[0])
		return nil
	}

	addr, ok := h.sourceMap.Lookup(line)
	if !ok {
		h.printf("No code generated by line %d.\n", line)
		return nil
	}
	h.printf("Line %d starts at $%04X.\n", line, addr)
	h.settings.NextDisasmAddr = uint16(addr)
	return nil
}

func (h *Host) cmdOpcodes(c selection) error {
	if len(c.args) < 1 {
		h.displayHelpText(c)
		return nil
	}

	for _, name := range c.args {
		variants := opcode.Set().Variants(name)
		if len(variants) == 0 {
			h.printf("Unknown mnemonic '%s'.\n", name)
			continue
		}
		h.printf("%s:\n", strings.ToUpper(name))
		for _, inst := range variants {
			note := ""
			if inst.Undocumented {
				note = "  (undocumented)"
			}
			h.printf("    %-4s  $%02X  length %d%s\n", strings.ToUpper(inst.Mode.String()), inst.Opcode, inst.Length, note)
		}
	}
	return nil
}

func (h *Host) cmdQuit(c selection) error {
	return errQuit
}

func (h *Host) cmdSet(c selection) error {
	switch len(c.args) {
	case 0:
		h.println("Variables:")
		h.settings.Display(h.output)

	case 1:
		h.displayHelpText(c)

	default:
		key, value := strings.ToLower(c.args[0]), strings.Join(c.args[1:], " ")

		var err error
		switch h.settings.Kind(key) {
		case reflect.Invalid:
			err = errors.Errorf("setting '%s' not found", key)
		case reflect.Bool:
			var v bool
			if v, err = stringToBool(value); err == nil {
				err = h.settings.Set(key, v)
			}
		default:
			var v int
			if v, err = h.parseExpr(value); err == nil {
				err = h.settings.Set(key, v)
			}
		}

		if err == nil {
			h.println("Setting updated.")
		} else {
			h.printf("%v\n", err)
		}

		h.onSettingsUpdate()
	}

	return nil
}

func (h *Host) cmdSymbols(c selection) error {
	prefix := ""
	if len(c.args) > 0 {
		prefix = c.args[0]
	}

	names := make([]string, 0, len(h.symbols))
	for k := range h.symbols {
		if strings.HasPrefix(k, prefix) {
			names = append(names, k)
		}
	}
	if len(names) == 0 {
		h.println("No symbols found.")
		return nil
	}
	sort.Strings(names)

	for _, k := range names {
		v := h.symbols[k]
		switch {
		case v.Kind == asm.Text:
			h.printf("%-16s %q\n", k, v.Text)
		case v.Num < 0:
			h.printf("%-16s %d\n", k, v.Num)
		default:
			h.printf("%-16s $%04X\n", k, v.Num)
		}
	}
	return nil
}

// Configure sets the pass budget and the origin used by interactive
// assembly.
func (h *Host) Configure(maxPasses, origin int) {
	h.settings.MaxPasses = maxPasses
	h.settings.Origin = uint16(origin)
}

func (h *Host) onSettingsUpdate() {
	if h.output != nil {
		h.log.SetOutput(h.output)
	}
	if h.settings.Verbose {
		h.log.SetLevel(logrus.DebugLevel)
	} else {
		h.log.SetLevel(logrus.WarnLevel)
	}
}

// Evaluate an expression against the accumulated symbols. In hex mode a
// bare run of hexadecimal digits is a hexadecimal number.
func (h *Host) evaluate(expr string) (asm.Value, error) {
	if h.settings.HexMode && hexDigits(expr) {
		expr = "$" + expr
	}

	e, err := parser.ParseExpr(expr)
	if err != nil {
		return asm.Value{}, err
	}

	var lc asm.Value
	if h.result != nil {
		lc = asm.NumValue(h.result.Origin)
	}
	_, v, err := asm.Evaluate(e, h.symbols, lc)
	if err != nil {
		return asm.Value{}, err
	}
	if !v.Resolved() {
		return asm.Value{}, errors.Errorf("unable to resolve '%s'", expr)
	}
	return v, nil
}

func (h *Host) parseExpr(expr string) (int, error) {
	v, err := h.evaluate(expr)
	if err != nil {
		return 0, err
	}
	switch {
	case v.Kind == asm.Num:
		return v.Num, nil
	case len(v.Text) == 1:
		return int(v.Text[0]), nil
	default:
		return 0, errors.Errorf("'%s' is not a number", expr)
	}
}

func (h *Host) parseAddr(expr string) (uint16, error) {
	v, err := h.parseExpr(expr)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		v = 0x10000 + v
	}
	return uint16(v), nil
}

func (h *Host) dumpMemory(addr0 uint16, bytes int) {
	first := int(addr0)
	last := min(first+bytes-1, len(h.mem)-1)

	buf := []byte("    -" + strings.Repeat(" ", 35))

	// Don't align display for short dumps.
	if last-first < 8 {
		addrToBuf(addr0, buf[0:4])
		for a, c1, c2 := first, 6, 32; a <= last; a, c1, c2 = a+1, c1+3, c2+1 {
			m := h.mem[a]
			byteToBuf(m, buf[c1:c1+2])
			buf[c2] = toPrintableChar(m)
		}
		h.println(string(buf))
		return
	}

	// Align first and last to 8-byte boundaries.
	start := first &^ 7
	stop := min((last+8)&^7, len(h.mem))

	a := start
	for r := start; r < stop; r += 8 {
		addrToBuf(uint16(a), buf[0:4])
		for c1, c2 := 6, 32; c1 < 29; c1, c2, a = c1+3, c2+1, a+1 {
			if a >= first && a <= last {
				m := h.mem[a]
				byteToBuf(m, buf[c1:c1+2])
				buf[c2] = toPrintableChar(m)
			} else {
				buf[c1] = ' '
				buf[c1+1] = ' '
				buf[c2] = ' '
			}
		}
		h.println(string(buf))
	}
}

func (h *Host) displayHelpText(c selection) {
	if c.command != nil && c.command.usage != "" {
		h.printf("Syntax: %s\n", c.command.usage)
	} else {
		h.println("<no help text>")
	}
}

func (h *Host) displayCommands(title string, list []*hostCommand) {
	if title == "" {
		h.println("Commands:")
	} else {
		h.printf("%s commands:\n", strings.ToUpper(title[:1])+title[1:])
	}
	for _, c := range list {
		if c.brief != "" {
			h.printf("    %-22s  %s\n", c.path, c.brief)
		}
	}
}
