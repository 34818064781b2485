package asm

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"masm/pkg/config"
	"masm/pkg/export"
	"masm/pkg/image"
	"masm/pkg/isa"
	"masm/pkg/objfile"
	"masm/pkg/symtab"
)

// ErrFatal marks errors that abandon the whole run rather than one file.
var ErrFatal = errors.New("fatal")

// Assembler translates source files one at a time. Keywords live as long as
// the Assembler; symbols, segments and export records are reset after every
// file.
type Assembler struct {
	cfg      config.Config
	report   io.Writer
	keywords *symtab.Table
	symbols  *symtab.Table
	img      *image.Image
	exports  *export.Buffer
}

// NewAssembler reserves the instruction and directive names and returns an
// assembler that writes diagnostics to report.
func NewAssembler(cfg config.Config, report io.Writer) (*Assembler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if report == nil {
		report = io.Discard
	}
	a := &Assembler{
		cfg:      cfg,
		report:   report,
		keywords: symtab.NewTable(0),
		symbols:  symtab.NewTable(cfg.MaxSymbols),
		img:      image.New(cfg.MaxImageBytes),
		exports:  export.NewBuffer(),
	}
	for i, d := range isa.Instructions {
		if _, err := a.keywords.Install(d.Mnemonic, i, symtab.InstructionKeyword); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFatal, err)
		}
	}
	for _, name := range isa.Directives {
		if _, err := a.keywords.Install(name, 0, symtab.DirectiveKeyword); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFatal, err)
		}
	}
	return a, nil
}

// Assemble assembles code with the default configuration. Diagnostics are
// only available on the result.
func Assemble(code string) (*Result, error) {
	a, err := NewAssembler(config.Default(), nil)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	return a.AssembleFile(strings.NewReader(code))
}

// Config returns the settings the assembler was built with.
func (a *Assembler) Config() config.Config {
	return a.cfg
}

// Close drops the reserved keywords.
func (a *Assembler) Close() {
	a.keywords.Clear(symtab.KeywordAttributes)
}

// AssembleFile runs discovery over src, commits the image, rewinds src and
// runs emission. Problems in the source are reported as diagnostics on the
// result; the returned error is reserved for I/O failures and errors
// wrapping ErrFatal.
func (a *Assembler) AssembleFile(src io.ReadSeeker) (*Result, error) {
	defer a.reset()

	res := &Result{perRow: a.cfg.BytesPerRow}
	p := &pass{Assembler: a, mode: discovery, res: res}
	if err := p.run(src); err != nil {
		return nil, err
	}
	slog.Debug("discovery finished",
		"code", a.img.Size(image.Code), "data", a.img.Size(image.Data),
		"symbols", a.symbols.Len(), "failed", res.failed)
	if res.failed {
		return res, nil
	}

	if err := a.img.Commit(); err != nil {
		slog.Debug("commit failed", "err", err)
		res.add(Diagnostic{Severity: SeverityError, Message: "Could not allocate required memory"}, a.report)
		return res, nil
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding source: %w", err)
	}
	p.mode = emission
	if err := p.run(src); err != nil {
		return nil, err
	}
	slog.Debug("emission finished",
		"records", a.exports.Len(), "failed", res.failed)
	if res.failed {
		return res, nil
	}
	if !a.img.Full() {
		panic(fmt.Sprintf("asm: emission wrote %d+%d bytes, discovery declared %d+%d",
			a.img.Offset(image.Code), a.img.Offset(image.Data),
			a.img.Size(image.Code), a.img.Size(image.Data)))
	}

	res.Object = &objfile.Object{
		Base: a.cfg.LoadBase,
		Code: clone(a.img.Bytes(image.Code)),
		Data: clone(a.img.Bytes(image.Data)),
	}
	res.Entries = append([]export.Record(nil), a.exports.Entries()...)
	res.Externals = append([]export.Record(nil), a.exports.Externals()...)
	for _, s := range a.symbols.Symbols(symtab.UserAttributes) {
		info := SymbolInfo{Name: s.Name, Attribute: s.Attribute}
		if !symtab.HasAttribute(&s, symtab.External) {
			info.Address = a.address(&s)
		}
		res.Symbols = append(res.Symbols, info)
	}
	return res, nil
}

// AssemblePath opens path and assembles it.
func (a *Assembler) AssemblePath(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return a.AssembleFile(f)
}

// address returns the absolute address of a symbol defined in this file.
func (a *Assembler) address(s *symtab.Symbol) int {
	addr := s.Value + a.cfg.LoadBase
	if !symtab.HasAttribute(s, symtab.Code) {
		addr += a.img.Size(image.Code)
	}
	return addr
}

func (a *Assembler) reset() {
	a.symbols.Clear(symtab.UserAttributes)
	a.img.Reset()
	a.exports.Reset()
}

func clone(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return append([]byte(nil), b...)
}
