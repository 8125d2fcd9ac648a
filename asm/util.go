// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bufio"
	"fmt"
	"io"
	"sort"
)

var hex = "0123456789ABCDEF"

// Return a hexadecimal string representation of a byte slice.
func byteString(b []byte) string {
	if len(b) < 1 {
		return ""
	}

	s := make([]byte, len(b)*3-1)
	i, j := 0, 0
	for n := len(b) - 1; i < n; i, j = i+1, j+3 {
		s[j+0] = hex[(b[i] >> 4)]
		s[j+1] = hex[(b[i] & 0x0f)]
		s[j+2] = ' '
	}
	s[j+0] = hex[(b[i] >> 4)]
	s[j+1] = hex[(b[i] & 0x0f)]
	return string(s)
}

// HexString returns the object code as an unbroken upper-case hexadecimal
// string.
func HexString(code []byte) string {
	b := make([]byte, len(code)*2)
	for i, j := 0, 0; i < len(code); i, j = i+1, j+2 {
		v := code[i]
		b[j+0] = hex[v>>4]
		b[j+1] = hex[v&0x0f]
	}
	return string(b)
}

// WriteListing writes an assembly listing: the address and bytes generated
// by each statement followed by its source text. Data longer than three
// bytes continues on following lines.
func (r *Result) WriteListing(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, sp := range r.listing {
		b := r.Code[sp.offset : sp.offset+sp.size]
		n := min(len(b), 3)
		fmt.Fprintf(bw, "%04X-   %-8s    %s\n", sp.addr, byteString(b[:n]), sp.stmt)
		for i := n; i < len(b); i += 3 {
			j := min(i+3, len(b))
			fmt.Fprintf(bw, "%04X-*  %s\n", sp.addr+i, byteString(b[i:j]))
		}
	}
	return bw.Flush()
}

// A Segment is a run of object code emitted at consecutive addresses.
type Segment struct {
	Address int
	Code    []byte
}

// Segments splits the object code into runs of consecutive addresses. Code
// that follows a location counter assignment starts a new segment.
func (r *Result) Segments() []Segment {
	var segs []Segment
	for _, sp := range r.listing {
		b := r.Code[sp.offset : sp.offset+sp.size]
		if n := len(segs); n > 0 && segs[n-1].Address+len(segs[n-1].Code) == sp.addr {
			segs[n-1].Code = append(segs[n-1].Code, b...)
			continue
		}
		segs = append(segs, Segment{Address: sp.addr, Code: append([]byte(nil), b...)})
	}
	return segs
}

// WriteSymbols writes the symbol table as "$XXXX: name" lines in name
// order. String symbols are written with their quoted value.
func (r *Result) WriteSymbols(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, name := range sortedKeys(r.Symbols) {
		v := r.Symbols[name]
		if v < 0 {
			fmt.Fprintf(bw, "%d: %s\n", v, name)
		} else {
			fmt.Fprintf(bw, "$%04X: %s\n", v, name)
		}
	}
	for _, name := range sortedKeys(r.Text) {
		fmt.Fprintf(bw, "%q: %s\n", r.Text[name], name)
	}
	return bw.Flush()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
