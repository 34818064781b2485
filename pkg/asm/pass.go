package asm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"masm/pkg/grammar"
	"masm/pkg/image"
	"masm/pkg/isa"
	"masm/pkg/scan"
	"masm/pkg/symtab"
)

type mode int

const (
	// discovery defines symbols and sizes the segments.
	discovery mode = iota
	// emission encodes instructions and data into the committed image.
	emission
)

func (m mode) String() string {
	if m == discovery {
		return "discovery"
	}
	return "emission"
}

// pass drives the grammar over every line of a file and implements its
// semantic actions for one mode.
type pass struct {
	*Assembler
	mode mode
	line int
	res  *Result
}

// lineReader yields physical lines without their terminator and flags the
// ones longer than max.
type lineReader struct {
	r   *bufio.Reader
	max int
}

func (lr *lineReader) next() (string, bool, error) {
	s, err := lr.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, err
	}
	if errors.Is(err, io.EOF) && s == "" {
		return "", false, io.EOF
	}
	s = strings.TrimSuffix(s, "\n")
	return s, len(s) > lr.max, nil
}

func (p *pass) run(src io.Reader) error {
	lr := &lineReader{r: bufio.NewReader(src), max: p.cfg.MaxLine}
	for p.line = 1; ; p.line++ {
		line, tooLong, err := lr.next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading line %d: %w", p.line, err)
		}
		if tooLong {
			if p.mode == discovery {
				p.errorf("Exceeds maximum length of %d characters", p.cfg.MaxLine)
			}
			p.res.failed = true
			continue
		}
		err = grammar.Run(line, p)
		Trace("line", "pass", p.mode, "line", p.line, "err", err)
		if err == nil {
			continue
		}
		if errors.Is(err, ErrFatal) {
			return err
		}
		p.errorf("%s", err)
	}
}

func (p *pass) errorf(format string, args ...any) {
	p.res.add(Diagnostic{Line: p.line, Severity: SeverityError, Message: fmt.Sprintf(format, args...)}, p.report)
}

func (p *pass) install(name string, value int, attr symtab.Attribute) (*symtab.Symbol, error) {
	s, err := p.symbols.Install(name, value, attr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFatal, err)
	}
	return s, nil
}

// defined returns the keyword or user symbol called name.
func (p *pass) defined(name string) *symtab.Symbol {
	if s := p.keywords.Lookup(name); s != nil {
		return s
	}
	return p.symbols.Lookup(name)
}

// Warn implements grammar.Handler. Warnings are only reported once, during
// discovery.
func (p *pass) Warn(msg string) {
	if p.mode == discovery {
		p.res.add(Diagnostic{Line: p.line, Severity: SeverityWarning, Message: msg}, p.report)
	}
}

// Label implements grammar.Handler.
func (p *pass) Label(name string, seg image.Segment) error {
	if p.mode != discovery {
		return nil
	}
	if p.defined(name) != nil {
		return errors.New("Symbol already defined")
	}
	if len(name) > p.cfg.MaxLabel {
		return fmt.Errorf("Maximum label length of %d characters is exceeded", p.cfg.MaxLabel)
	}
	attr := symtab.Code
	if seg == image.Data {
		attr = symtab.Data
	}
	_, err := p.install(name, p.img.Size(seg), attr)
	return err
}

// Instruction implements grammar.Handler. Discovery only reserves a word
// and skips the operands.
func (p *pass) Instruction(mnemonic string, c scan.Cursor) (scan.Cursor, error) {
	kw := p.keywords.Lookup(mnemonic)
	if !symtab.HasAttribute(kw, symtab.InstructionKeyword) {
		return c, fmt.Errorf("Unknown instruction '%s'", mnemonic)
	}
	if p.mode == discovery {
		p.img.Extend(image.Code, image.Word)
		return c.SkipEnd(), nil
	}
	word, next, err := isa.Encode(kw.Value, c, p)
	if err != nil {
		return c, err
	}
	p.img.Write(image.Code, int64(word), image.Word)
	return next, nil
}

// Entry implements grammar.Handler. The first .entry of a symbol queues its
// address.
func (p *pass) Entry(name string) error {
	if p.mode != emission {
		return nil
	}
	if p.keywords.Lookup(name) != nil {
		return fmt.Errorf("Symbol '%s' is a defined keyword", name)
	}
	s := p.symbols.Lookup(name)
	if s == nil {
		return errors.New("Symbol used in entry not defined")
	}
	if symtab.HasAttribute(s, symtab.External) {
		return fmt.Errorf("Symbol '%s' can't be both external and entry", name)
	}
	if !symtab.HasAttribute(s, symtab.Entry) {
		p.exports.AddEntry(name, p.address(s))
	}
	symtab.SetAttribute(s, symtab.Entry)
	return nil
}

// Extern implements grammar.Handler. It runs in both modes so that a later
// definition of the name is caught during discovery.
func (p *pass) Extern(name string) error {
	if s := p.defined(name); s != nil && !symtab.HasAttribute(s, symtab.External) {
		return fmt.Errorf("Symbol '%s' is not allowed to also be extern", name)
	}
	_, err := p.install(name, 0, symtab.External)
	return err
}

// Data implements grammar.Handler.
func (p *pass) Data(w image.Width, c scan.Cursor) (scan.Cursor, error) {
	v, next, err := scan.Int(c)
	if err != nil {
		return c, errors.New("Missing number")
	}
	if p.mode == discovery {
		p.img.Extend(image.Data, w)
	} else {
		p.img.Write(image.Data, v, w)
	}
	return next, nil
}

// Char implements grammar.Handler.
func (p *pass) Char(b byte) error {
	if p.mode == discovery {
		p.img.Extend(image.Data, image.Byte)
	} else {
		p.img.Write(image.Data, int64(b), image.Byte)
	}
	return nil
}

// ResolveLabel implements isa.Resolver. Internal labels resolve to the
// byte distance from the current instruction. Any other label resolves to
// its absolute address, except externals, which resolve to zero and record
// the reference site.
func (p *pass) ResolveLabel(name string, internal bool) (int64, error) {
	s := p.symbols.Lookup(name)
	if s == nil {
		return 0, fmt.Errorf("No such label '%s'", name)
	}
	here := p.img.Offset(image.Code)
	if !symtab.HasAttribute(s, symtab.External) {
		if internal {
			v := s.Value
			if !symtab.HasAttribute(s, symtab.Code) {
				v += p.img.Size(image.Code)
			}
			return int64(v - here), nil
		}
		return int64(p.address(s)), nil
	}
	if internal {
		return 0, fmt.Errorf("Label '%s' is external", name)
	}
	p.exports.AddExternal(name, here+p.cfg.LoadBase)
	return 0, nil
}
