// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// A SourceMap describes the mapping between source code line numbers and
// object code addresses.
type SourceMap struct {
	File    string
	Origin  int
	Size    int
	Lines   []SourceLine
	Symbols map[string]int
}

// A SourceLine represents a mapping between an object code address and the
// source line used to generate it.
type SourceLine struct {
	Address int // Address of the first byte emitted for the line
	Offset  int // Offset of that byte within the object code
	Line    int // Source code line number
}

func newSourceMap(file string, origin int, code []byte, lines []SourceLine, symbols map[string]int) *SourceMap {
	sm := &SourceMap{
		File:    file,
		Origin:  origin,
		Size:    len(code),
		Symbols: symbols,
	}

	sm.Lines = append(sm.Lines, lines...)
	sort.SliceStable(sm.Lines, func(i, j int) bool {
		return sm.Lines[i].Address < sm.Lines[j].Address
	})
	return sm
}

// Search searches the source map for a mapping with the requested address.
func (s *SourceMap) Search(addr int) (line int, ok bool) {
	i := sort.Search(len(s.Lines), func(i int) bool {
		return s.Lines[i].Address >= addr
	})
	if i < len(s.Lines) && s.Lines[i].Address == addr {
		return s.Lines[i].Line, true
	}
	return -1, false
}

// Lookup returns the address of the first byte generated by a source line.
func (s *SourceMap) Lookup(line int) (addr int, ok bool) {
	for _, l := range s.Lines {
		if l.Line == line {
			return l.Address, true
		}
	}
	return 0, false
}

// Segments places object code saved alongside the source map back at the
// addresses it was assembled for.
func (s *SourceMap) Segments(code []byte) ([]Segment, error) {
	if len(code) != s.Size {
		return nil, fmt.Errorf("object code is %d bytes, source map expects %d", len(code), s.Size)
	}

	lines := append([]SourceLine(nil), s.Lines...)
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Offset < lines[j].Offset
	})

	var segs []Segment
	for i, l := range lines {
		end := len(code)
		if i+1 < len(lines) {
			end = lines[i+1].Offset
		}
		if l.Offset < 0 || l.Offset > end {
			return nil, fmt.Errorf("source map offset %d out of range", l.Offset)
		}
		b := code[l.Offset:end]
		if n := len(segs); n > 0 && segs[n-1].Address+len(segs[n-1].Code) == l.Address {
			segs[n-1].Code = append(segs[n-1].Code, b...)
			continue
		}
		segs = append(segs, Segment{Address: l.Address, Code: append([]byte(nil), b...)})
	}
	return segs, nil
}

// ReadFrom reads the contents of an exported source map file.
func (s *SourceMap) ReadFrom(r io.Reader) (n int64, err error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}

	err = json.Unmarshal(b, s)
	if err != nil {
		return 0, err
	}
	return int64(len(b)), nil
}

// WriteTo writes the contents of the source map to an output stream.
func (s *SourceMap) WriteTo(w io.Writer) (n int64, err error) {
	b, err := json.MarshalIndent(*s, "", "  ")
	if err != nil {
		return 0, err
	}

	nn, err := w.Write(b)
	return int64(nn), err
}
