// Package isa describes the instruction set and packs operands into
// 32-bit instruction words.
package isa

import (
	"errors"
	"fmt"

	"masm/pkg/scan"
)

const (
	OpcodeShift  = 26
	OpcodeWidth  = 6
	WordBits     = 32
	NumRegisters = 32
	// AddressWidth is the payload width of absolute addresses. The bit just
	// above it marks a register operand in a jmp.
	AddressWidth = 25
)

// Resolver turns a label operand into its encoded value. With internal set
// the label must be defined in this file and the result is a displacement
// from the instruction being assembled.
type Resolver interface {
	ResolveLabel(name string, internal bool) (int64, error)
}

// Evaluator reads one operand at c and returns its value and the cursor
// past it.
type Evaluator func(c scan.Cursor, r Resolver) (int64, scan.Cursor, error)

// Slot is one field of an instruction word. A slot without an evaluator
// always holds Fixed.
type Slot struct {
	Name   string
	Offset uint
	Width  uint
	Fixed  uint32
	Eval   Evaluator
}

// Descriptor is the encoding recipe for one mnemonic.
type Descriptor struct {
	Mnemonic string
	Opcode   uint32
	Slots    []Slot
}

func reg(name string, offset uint) Slot {
	return Slot{Name: name, Offset: offset, Width: 5, Eval: Register}
}

func funct(v uint32) Slot {
	return Slot{Name: "funct", Offset: 6, Width: 5, Fixed: v}
}

func immed(eval Evaluator) Slot {
	return Slot{Name: "immed", Offset: 0, Width: 16, Eval: eval}
}

func rType(mnemonic string, f uint32) Descriptor {
	return Descriptor{mnemonic, 0, []Slot{reg("rs", 21), reg("rt", 16), reg("rd", 11), funct(f)}}
}

func move(mnemonic string, f uint32) Descriptor {
	return Descriptor{mnemonic, 1, []Slot{reg("rs", 21), reg("rd", 11), funct(f)}}
}

func iType(mnemonic string, opcode uint32) Descriptor {
	return Descriptor{mnemonic, opcode, []Slot{reg("rs", 21), immed(Constant), reg("rt", 16)}}
}

func branch(mnemonic string, opcode uint32) Descriptor {
	return Descriptor{mnemonic, opcode, []Slot{reg("rs", 21), reg("rt", 16), immed(InternalLabel)}}
}

// Instructions is the instruction table. A mnemonic's index is stable and
// is the value its keyword symbol carries.
var Instructions = []Descriptor{
	rType("add", 1),
	rType("sub", 2),
	rType("and", 3),
	rType("or", 4),
	rType("nor", 5),
	move("move", 1),
	move("mvhi", 2),
	move("mvlo", 3),
	iType("addi", 10),
	iType("subi", 11),
	iType("andi", 12),
	iType("ori", 13),
	iType("nori", 14),
	branch("bne", 15),
	branch("beq", 16),
	branch("blt", 17),
	branch("bgt", 18),
	iType("lb", 19),
	iType("sb", 20),
	iType("lw", 21),
	iType("sw", 22),
	iType("lh", 23),
	iType("sh", 24),
	{"jmp", 30, []Slot{{Name: "target", Offset: 0, Width: AddressWidth + 1, Eval: LabelOrRegister}}},
	{"la", 31, []Slot{{Name: "address", Offset: 0, Width: AddressWidth, Eval: AnyLabel}}},
	{"call", 32, []Slot{{Name: "address", Offset: 0, Width: AddressWidth, Eval: AnyLabel}}},
	{"stop", 63, nil},
}

// Directives are the names reserved for assembler directives.
var Directives = []string{"db", "dh", "dw", "asciz", "entry", "extern"}

var index = func() map[string]int {
	m := make(map[string]int, len(Instructions))
	for i, d := range Instructions {
		m[d.Mnemonic] = i
	}
	return m
}()

// Lookup returns the table index of mnemonic.
func Lookup(mnemonic string) (int, bool) {
	i, ok := index[mnemonic]
	return i, ok
}

// Pack ORs value, truncated to width bits, into word at offset.
func Pack(word uint32, offset, width uint, value int64) uint32 {
	mask := uint64(1)<<width - 1
	return word | uint32((uint64(value)&mask)<<offset)
}

var errComma = errors.New("Expected comma after parameter")

// Encode assembles the operands at c for instruction i. Every operand after
// the first must be preceded by a comma; blanks around operands are skipped.
func Encode(i int, c scan.Cursor, r Resolver) (uint32, scan.Cursor, error) {
	d := &Instructions[i]
	var word uint32
	for n, s := range d.Slots {
		if s.Eval == nil {
			word = Pack(word, s.Offset, s.Width, int64(s.Fixed))
			continue
		}
		if n != 0 {
			if c.Peek() != ',' {
				return 0, c, errComma
			}
			c = scan.SkipSpacing(c.Advance(1))
		}
		v, next, err := s.Eval(c, r)
		if err != nil {
			return 0, c, err
		}
		word = Pack(word, s.Offset, s.Width, v)
		c = scan.SkipSpacing(next)
	}
	word = Pack(word, OpcodeShift, OpcodeWidth, int64(d.Opcode))
	return word, c, nil
}

// Register reads "$n" with n in [0, NumRegisters).
func Register(c scan.Cursor, _ Resolver) (int64, scan.Cursor, error) {
	if c.Peek() != '$' {
		return 0, c, errors.New("Expected register sign '$'")
	}
	c = c.Advance(1)
	if !scan.IsDigit(c.Peek()) {
		return 0, c, errors.New("Register number should be directly prefixed with '$'")
	}
	v, next, err := scan.Int(c)
	if err != nil {
		return 0, c, errors.New("Register number invalid")
	}
	if v < 0 || v >= NumRegisters {
		return 0, c, fmt.Errorf("There are only %d registers (starting from 0)", NumRegisters)
	}
	return v, next, nil
}

// Constant reads a decimal integer.
func Constant(c scan.Cursor, _ Resolver) (int64, scan.Cursor, error) {
	v, next, err := scan.Int(c)
	if err != nil {
		return 0, c, errors.New("Numeric constant is invalid")
	}
	return v, next, nil
}

func label(c scan.Cursor, r Resolver, internal bool) (int64, scan.Cursor, error) {
	if !scan.IsAlpha(c.Peek()) {
		return 0, c, errors.New("Expected label starting with letter")
	}
	start := c.Pos()
	c = scan.SkipAlnum(c)
	v, err := r.ResolveLabel(c.Since(start), internal)
	if err != nil {
		return 0, c, err
	}
	return v, c, nil
}

// InternalLabel reads a branch target defined in this file.
func InternalLabel(c scan.Cursor, r Resolver) (int64, scan.Cursor, error) {
	return label(c, r, true)
}

// AnyLabel reads an absolute label, which may be external.
func AnyLabel(c scan.Cursor, r Resolver) (int64, scan.Cursor, error) {
	return label(c, r, false)
}

// LabelOrRegister reads a jump target. Register targets set the flag bit
// just above the address payload.
func LabelOrRegister(c scan.Cursor, r Resolver) (int64, scan.Cursor, error) {
	if c.Peek() == '$' {
		v, next, err := Register(c, r)
		if err != nil {
			return 0, c, err
		}
		return v | 1<<AddressWidth, next, nil
	}
	v, next, err := AnyLabel(c, r)
	if err != nil {
		return 0, c, err
	}
	return v &^ (1 << AddressWidth), next, nil
}

// Field extracts width bits of word at offset.
func Field(word uint32, offset, width uint) uint32 {
	return word >> offset & (1<<width - 1)
}

// Decode finds the instruction that encodes word and returns the raw value
// of each operand slot in order. Fixed slots must hold their value.
func Decode(word uint32) (int, []uint32, bool) {
	op := Field(word, OpcodeShift, OpcodeWidth)
next:
	for i, d := range Instructions {
		if d.Opcode != op {
			continue
		}
		var operands []uint32
		for _, s := range d.Slots {
			v := Field(word, s.Offset, s.Width)
			if s.Eval == nil {
				if v != s.Fixed {
					continue next
				}
				continue
			}
			operands = append(operands, v)
		}
		return i, operands, true
	}
	return 0, nil, false
}
