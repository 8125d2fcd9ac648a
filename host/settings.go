// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/beevik/prefixtree/v2"
	"github.com/pkg/errors"

	"github.com/beevik/asm6502/asm"
)

// Shell variables, changed with the set command. Integer settings may
// carry a min tag.
type settings struct {
	HexMode         bool   `doc:"hexadecimal input mode"`
	Verbose         bool   `doc:"log assembler passes"`
	MaxPasses       int    `doc:"assembler pass budget" min:"1"`
	Origin          uint16 `doc:"origin of interactive assembly"`
	MemDumpBytes    int    `doc:"default number of memory bytes to dump" min:"1"`
	DisasmLines     int    `doc:"default number of lines to disassemble" min:"1"`
	SourceLines     int    `doc:"default number of source lines to display" min:"1"`
	NextDisasmAddr  uint16 `doc:"address of next disassembly"`
	NextMemDumpAddr uint16 `doc:"address of next memory dump"`
}

func newSettings() *settings {
	return &settings{
		MaxPasses:    asm.DefaultMaxPasses,
		Origin:       0x0600,
		MemDumpBytes: 64,
		DisasmLines:  10,
		SourceLines:  10,
	}
}

type settingsField struct {
	name     string
	index    int
	kind     reflect.Kind
	doc      string
	min, max int64
}

var (
	settingsTree   = prefixtree.New[*settingsField]()
	settingsFields []*settingsField
)

func init() {
	t := reflect.TypeOf(settings{})
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		f := &settingsField{
			name:  sf.Name,
			index: i,
			kind:  sf.Type.Kind(),
			doc:   sf.Tag.Get("doc"),
			min:   math.MinInt32,
			max:   math.MaxInt32,
		}
		if f.kind == reflect.Uint16 {
			f.min, f.max = 0, 0xffff
		}
		if s, ok := sf.Tag.Lookup("min"); ok {
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				panic("host: bad min tag on setting " + sf.Name)
			}
			f.min = n
		}
		settingsFields = append(settingsFields, f)
		settingsTree.Add(strings.ToLower(sf.Name), f)
	}
}

func (s *settings) Display(w io.Writer) {
	v := reflect.ValueOf(s).Elem()
	for _, f := range settingsFields {
		fv := v.Field(f.index)
		var val string
		switch f.kind {
		case reflect.Uint16:
			val = fmt.Sprintf("$%04X", fv.Uint())
		case reflect.Bool:
			val = strconv.FormatBool(fv.Bool())
		default:
			val = strconv.FormatInt(fv.Int(), 10)
		}
		fmt.Fprintf(w, "%-28s (%s)\n", fmt.Sprintf("    %-16s %s", f.name, val), f.doc)
	}
}

// Kind returns the kind of the setting whose name starts with key, or
// reflect.Invalid if no single setting matches.
func (s *settings) Kind(key string) reflect.Kind {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return reflect.Invalid
	}
	return f.kind
}

// Set assigns a bool or int value to the setting whose name starts with
// key. Integers outside the setting's range are rejected.
func (s *settings) Set(key string, value any) error {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return errors.Wrapf(err, "setting '%s'", key)
	}

	fv := reflect.ValueOf(s).Elem().Field(f.index)
	switch v := value.(type) {
	case bool:
		if f.kind != reflect.Bool {
			return errors.Errorf("setting '%s' requires a number", f.name)
		}
		fv.SetBool(v)

	case int:
		if f.kind == reflect.Bool {
			return errors.Errorf("setting '%s' requires true or false", f.name)
		}
		if int64(v) < f.min || int64(v) > f.max {
			return errors.Errorf("value %d out of range for setting '%s'", v, f.name)
		}
		if f.kind == reflect.Uint16 {
			fv.SetUint(uint64(v))
		} else {
			fv.SetInt(int64(v))
		}

	default:
		return errors.Errorf("invalid value for setting '%s'", f.name)
	}
	return nil
}
