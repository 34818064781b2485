package asm

import (
	"errors"
	"fmt"
	"io"

	"masm/pkg/export"
	"masm/pkg/objfile"
	"masm/pkg/symtab"
)

type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "Warn"
	}
	return "Error"
}

// Diagnostic is one problem reported against a source file. Line is zero
// for problems that concern the whole file.
type Diagnostic struct {
	Line     int
	Severity Severity
	Message  string
}

func (d Diagnostic) String() string {
	if d.Line == 0 {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s on line %d: %s", d.Severity, d.Line, d.Message)
}

// SymbolInfo describes one user symbol after a successful assembly.
// Externals have no address.
type SymbolInfo struct {
	Name      string
	Attribute symtab.Attribute
	Address   int
}

// Result is the outcome of assembling one file. Object, Entries, Externals
// and Symbols are only set when the file assembled without errors.
type Result struct {
	Diagnostics []Diagnostic
	Object      *objfile.Object
	Entries     []export.Record
	Externals   []export.Record
	Symbols     []SymbolInfo

	failed bool
	perRow int
}

func (r *Result) add(d Diagnostic, w io.Writer) {
	r.Diagnostics = append(r.Diagnostics, d)
	if d.Severity == SeverityError {
		r.failed = true
	}
	fmt.Fprintln(w, d)
}

// OK reports whether the file produced an object.
func (r *Result) OK() bool {
	return !r.failed && r.Object != nil
}

// Errors returns the error diagnostics.
func (r *Result) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

// WriteObject writes the object in the textual object format.
func (r *Result) WriteObject(w io.Writer) error {
	if !r.OK() {
		return errors.New("no object to write")
	}
	return objfile.Write(w, r.Object, r.perRow)
}

// OutputCreator opens the output file with the given suffix, for example
// ".ob", next to the source being assembled.
type OutputCreator interface {
	Create(suffix string) (io.WriteCloser, error)
}

// Flush writes the outputs of a successful result: the externals listing
// and the entries listing when they are not empty, then the object.
func (a *Assembler) Flush(res *Result, out OutputCreator) error {
	if !res.OK() {
		return errors.New("assembly failed, nothing to flush")
	}
	listings := []struct {
		suffix  string
		records []export.Record
	}{
		{a.cfg.ExternSuffix, res.Externals},
		{a.cfg.EntrySuffix, res.Entries},
	}
	for _, l := range listings {
		if len(l.records) == 0 {
			continue
		}
		err := create(out, l.suffix, func(w io.Writer) error {
			return export.WriteListing(w, l.records)
		})
		if err != nil {
			return err
		}
	}
	return create(out, a.cfg.ObjectSuffix, res.WriteObject)
}

func create(out OutputCreator, suffix string, write func(io.Writer) error) error {
	w, err := out.Create(suffix)
	if err != nil {
		return err
	}
	if err := write(w); err != nil {
		w.Close()
		return fmt.Errorf("writing %s output: %w", suffix, err)
	}
	return w.Close()
}
