// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/beevik/prefixtree/v2"
	"github.com/pkg/errors"
)

// Shell configuration variables, changed with the set command.
type settings struct {
	Origin         uint16 `doc:"initial program counter for assembly"`
	Verbose        bool   `doc:"trace the assembler's passes"`
	DisasmLines    int    `doc:"default number of lines to disassemble"`
	NextDisasmAddr uint16 `doc:"address of next disassembly"`
}

func newSettings() *settings {
	return &settings{DisasmLines: 10}
}

// A setting describes one field of the settings struct.
type setting struct {
	name  string
	field int
	typ   reflect.Type
	doc   string
}

// Settings indexed by lowercase name, so any unique prefix selects one.
var settingsIndex = prefixtree.New[*setting]()

var settingsList []*setting

func init() {
	t := reflect.TypeOf(settings{})
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		s := &setting{name: f.Name, field: i, typ: f.Type, doc: f.Tag.Get("doc")}
		settingsList = append(settingsList, s)
		settingsIndex.Add(strings.ToLower(f.Name), s)
	}
}

func (s *settings) lookup(key string) (*setting, error) {
	f, err := settingsIndex.FindValue(strings.ToLower(key))
	if err != nil {
		return nil, errors.Wrapf(err, "setting '%s'", key)
	}
	return f, nil
}

// Display writes every setting with its current value.
func (s *settings) Display(w io.Writer) {
	v := reflect.ValueOf(s).Elem()
	for _, f := range settingsList {
		var value string
		switch x := v.Field(f.field).Interface().(type) {
		case uint16:
			value = fmt.Sprintf("$%04X", x)
		default:
			value = fmt.Sprint(x)
		}
		fmt.Fprintf(w, "%-28s (%s)\n", fmt.Sprintf("    %-16s %s", f.name, value), f.doc)
	}
}

// Kind returns the kind of the named setting, or reflect.Invalid.
func (s *settings) Kind(key string) reflect.Kind {
	f, err := s.lookup(key)
	if err != nil {
		return reflect.Invalid
	}
	return f.typ.Kind()
}

// Set assigns a value to the named setting. Numeric values convert to
// the setting's type; bools only assign to bools.
func (s *settings) Set(key string, value any) error {
	f, err := s.lookup(key)
	if err != nil {
		return err
	}

	v := reflect.ValueOf(value)
	isBool := f.typ.Kind() == reflect.Bool
	if isBool != (v.Kind() == reflect.Bool) || !v.Type().ConvertibleTo(f.typ) {
		return errors.Errorf("invalid value for setting '%s'", f.name)
	}

	reflect.ValueOf(s).Elem().Field(f.field).Set(v.Convert(f.typ))
	return nil
}
