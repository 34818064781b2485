// Package grammar recognizes one source line with a table-driven automaton
// and reports what the line means to a Handler.
//
// Each state runs its entry action on arrival, then tries its transitions in
// order. The first predicate that matches consumes its input and selects the
// next state. When none matches, the line is rejected with the state's
// message.
package grammar

import (
	"errors"

	"masm/pkg/image"
	"masm/pkg/scan"
)

// Handler receives the semantic actions of a line.
type Handler interface {
	// Warn reports a non-fatal problem with the line.
	Warn(msg string)
	// Label defines name at the current end of seg.
	Label(name string, seg image.Segment) error
	// Instruction assembles mnemonic with operands starting at c and
	// returns the cursor past the operands.
	Instruction(mnemonic string, c scan.Cursor) (scan.Cursor, error)
	// Entry marks name as visible to other files.
	Entry(name string) error
	// Extern declares name as defined in another file.
	Extern(name string) error
	// Data reads one number at c and stores it in w bytes.
	Data(w image.Width, c scan.Cursor) (scan.Cursor, error)
	// Char stores one byte of a string.
	Char(b byte) error
}

// State identifies a node of the automaton.
type State int

const (
	Accept State = -1
	Reject State = -2
)

const (
	Statement State = iota
	Directive
	LabelOrInstructionStart
	LabelOrInstructionTail
	LabelEnd
	LabeledInstructionOrDirective
	LabeledDirective
	LabeledEntry
	LabeledExtern
	LabeledData
	LabeledInstruction
	EntryKeyword
	ExternKeyword
	InstructionStart
	InstructionTail
	InstructionEnd
	Instruction
	Data
	EntryParameterStart
	EntryParameterTail
	EntryParameterEnd
	ExternParameterStart
	ExternParameterTail
	ExternParameterEnd
	TrailingSpace
	Bytes
	Halves
	Words
	Ascii
	Byte
	ByteSep
	Half
	HalfSep
	Word
	WordSep
	StringStart
	StringMid
	Quotation
	Char
	StringEnd
)

// Action is the side effect a state performs on arrival.
type Action int

const (
	None Action = iota
	SavePosition
	TerminateName
	Warn
	AddCodeSymbol
	AddDataSymbol
	ParseInstruction
	SetEntry
	SetExtern
	ReadComma
	WriteByte
	WriteHalf
	WriteWord
	WriteChar
	WriteTerminator
)

type transition struct {
	match scan.Predicate
	next  State
}

type stateDef struct {
	name        string
	action      Action
	transitions []transition
	message     string
}

func on(p scan.Predicate, next State) transition {
	return transition{match: p, next: next}
}

var (
	comment   = scan.Char(';')
	dot       = scan.Char('.')
	colon     = scan.Char(':')
	quote     = scan.Char('"')
	isEntry   = scan.Keyword("entry")
	isExtern  = scan.Keyword("extern")
	isBytes   = scan.Keyword("db")
	isHalves  = scan.Keyword("dh")
	isWords   = scan.Keyword("dw")
	isAsciz   = scan.Keyword("asciz")
	expectSep = "Expected space after directive"
)

var states = [...]stateDef{
	Statement: {"Statement", None, []transition{
		on(scan.Spacing, Statement), on(scan.End, Accept), on(comment, Accept), on(dot, Directive), on(scan.Always, LabelOrInstructionStart)}, ""},
	Directive: {"Directive", None, []transition{
		on(isEntry, EntryKeyword), on(isExtern, ExternKeyword), on(scan.Always, Data)}, ""},
	LabelOrInstructionStart: {"LabelOrInstructionStart", SavePosition, []transition{
		on(scan.Alpha, LabelOrInstructionTail)}, "Labels and instructions must start with a letter"},
	LabelOrInstructionTail: {"LabelOrInstructionTail", None, []transition{
		on(scan.Alnum, LabelOrInstructionTail), on(colon, LabelEnd), on(scan.Always, InstructionEnd)}, ""},
	LabelEnd: {"LabelEnd", TerminateName, []transition{
		on(scan.Spacing, LabeledInstructionOrDirective)}, "Expected space after label's ':'"},
	LabeledInstructionOrDirective: {"LabeledInstructionOrDirective", None, []transition{
		on(scan.Spacing, LabeledInstructionOrDirective), on(dot, LabeledDirective), on(scan.Always, LabeledInstruction)}, ""},
	LabeledDirective: {"LabeledDirective", None, []transition{
		on(isEntry, LabeledEntry), on(isExtern, LabeledExtern), on(scan.Always, LabeledData)}, ""},
	LabeledEntry: {"LabeledEntry", Warn, []transition{
		on(scan.Always, EntryKeyword)}, "Label on entry directive is meaningless and is ignored"},
	LabeledExtern: {"LabeledExtern", Warn, []transition{
		on(scan.Always, ExternKeyword)}, "Label on extern directive is meaningless and is ignored"},
	LabeledData: {"LabeledData", AddDataSymbol, []transition{
		on(scan.Always, Data)}, ""},
	LabeledInstruction: {"LabeledInstruction", AddCodeSymbol, []transition{
		on(scan.Always, InstructionStart)}, ""},
	EntryKeyword: {"Entry", None, []transition{
		on(scan.Spacing, EntryParameterStart)}, "Expected space after 'entry'"},
	ExternKeyword: {"Extern", None, []transition{
		on(scan.Spacing, ExternParameterStart)}, "Expected space after 'extern'"},
	InstructionStart: {"InstructionStart", SavePosition, []transition{
		on(scan.Alpha, InstructionTail)}, "Expected instruction"},
	InstructionTail: {"InstructionTail", None, []transition{
		on(scan.Alnum, InstructionTail), on(scan.Always, InstructionEnd)}, ""},
	InstructionEnd: {"InstructionEnd", None, []transition{
		on(scan.Spacing, Instruction), on(scan.End, Instruction)}, "Invalid character in label or instruction"},
	Instruction: {"Instruction", ParseInstruction, []transition{
		on(scan.End, Accept)}, "Extraneous text after parameters"},
	Data: {"Data", None, []transition{
		on(isBytes, Bytes), on(isHalves, Halves), on(isWords, Words), on(isAsciz, Ascii)}, "Unrecognized directive"},
	EntryParameterStart: {"EntryParameterStart", SavePosition, []transition{
		on(scan.Alpha, EntryParameterTail)}, "Label must start with a letter"},
	EntryParameterTail: {"EntryParameterTail", None, []transition{
		on(scan.Alnum, EntryParameterTail), on(scan.Always, EntryParameterEnd)}, ""},
	EntryParameterEnd: {"EntryParameterEnd", SetEntry, []transition{
		on(scan.Always, TrailingSpace)}, ""},
	ExternParameterStart: {"ExternParameterStart", SavePosition, []transition{
		on(scan.Alpha, ExternParameterTail)}, "Label did not start with letter"},
	ExternParameterTail: {"ExternParameterTail", None, []transition{
		on(scan.Alnum, ExternParameterTail), on(scan.Always, ExternParameterEnd)}, ""},
	ExternParameterEnd: {"ExternParameterEnd", SetExtern, []transition{
		on(scan.Always, TrailingSpace)}, ""},
	TrailingSpace: {"TrailingSpace", None, []transition{
		on(scan.Spacing, TrailingSpace), on(scan.End, Accept)}, "Extraneous text after parameter"},
	Bytes:  {"Bytes", None, []transition{on(scan.Spacing, Byte)}, expectSep},
	Halves: {"Halves", None, []transition{on(scan.Spacing, Half)}, expectSep},
	Words:  {"Words", None, []transition{on(scan.Spacing, Word)}, expectSep},
	Ascii:  {"Ascii", None, []transition{on(scan.Spacing, StringStart)}, expectSep},
	Byte: {"Byte", WriteByte, []transition{
		on(scan.Spacing, ByteSep), on(scan.End, Accept), on(scan.Always, ByteSep)}, ""},
	ByteSep: {"ByteSep", ReadComma, []transition{
		on(scan.Spacing, Byte), on(scan.Always, Byte)}, ""},
	Half: {"Half", WriteHalf, []transition{
		on(scan.Spacing, HalfSep), on(scan.End, Accept), on(scan.Always, HalfSep)}, ""},
	HalfSep: {"HalfSep", ReadComma, []transition{
		on(scan.Spacing, Half), on(scan.Always, Half)}, ""},
	Word: {"Word", WriteWord, []transition{
		on(scan.Spacing, WordSep), on(scan.End, Accept), on(scan.Always, WordSep)}, ""},
	WordSep: {"WordSep", ReadComma, []transition{
		on(scan.Spacing, Word), on(scan.Always, Word)}, ""},
	StringStart: {"StringStart", None, []transition{
		on(quote, StringMid)}, "String must begin with quotation marks"},
	StringMid: {"StringMid", None, []transition{
		on(quote, Quotation), on(scan.Print, Char)},
		"String can't contain non-printable characters and must be closed with quotation marks"},
	Quotation: {"Quotation", None, []transition{
		on(scan.End, StringEnd), on(scan.Always, Char)}, ""},
	Char:      {"Char", WriteChar, []transition{on(scan.Always, StringMid)}, ""},
	StringEnd: {"StringEnd", WriteTerminator, []transition{on(scan.Always, Accept)}, ""},
}

func (s State) String() string {
	switch s {
	case Accept:
		return "Accept"
	case Reject:
		return "Reject"
	}
	if s < 0 || int(s) >= len(states) {
		return "State(?)"
	}
	return states[s].name
}

// Message returns the diagnostic reported when s matches nothing.
func (s State) Message() string {
	if s < 0 || int(s) >= len(states) {
		return ""
	}
	return states[s].message
}

// SyntaxError is returned when no transition of a state matches.
type SyntaxError struct {
	State   State
	Message string
}

func (e *SyntaxError) Error() string {
	return e.Message
}

var errComma = errors.New("Expected comma after parameter")

var widths = map[Action]image.Width{
	WriteByte: image.Byte,
	WriteHalf: image.Half,
	WriteWord: image.Word,
}

// next returns the state following s, or Reject.
func next(s State, c scan.Cursor) (State, scan.Cursor) {
	for _, t := range states[s].transitions {
		if nc, ok := t.match(c); ok {
			return t.next, nc
		}
	}
	return Reject, c
}

// Run feeds line through the automaton from the start state. It returns
// nil when the line is accepted, a *SyntaxError when it is malformed, or
// the first error returned by h.
func Run(line string, h Handler) error {
	var (
		c    = scan.New(line)
		mark int
		name string
		err  error
	)
	for state := Statement; state != Accept; {
		def := &states[state]
		switch def.action {
		case SavePosition:
			mark = c.Pos()
		case TerminateName:
			name = c.Since(mark)
			name = name[:len(name)-1]
		case Warn:
			h.Warn(def.message)
		case AddCodeSymbol:
			err = h.Label(name, image.Code)
		case AddDataSymbol:
			err = h.Label(name, image.Data)
		case ParseInstruction:
			end := scan.SkipAlnum(c.Seek(mark))
			c, err = h.Instruction(end.Since(mark), c)
		case SetEntry:
			err = h.Entry(c.Since(mark))
		case SetExtern:
			err = h.Extern(c.Since(mark))
		case ReadComma:
			if c.Peek() != ',' {
				err = errComma
			} else {
				c = c.Advance(1)
			}
		case WriteByte, WriteHalf, WriteWord:
			c, err = h.Data(widths[def.action], c)
		case WriteChar:
			err = h.Char(c.Prev())
		case WriteTerminator:
			err = h.Char(0)
		}
		if err != nil {
			return err
		}

		var nextState State
		nextState, c = next(state, c)
		if nextState == Reject {
			return &SyntaxError{State: state, Message: def.message}
		}
		state = nextState
	}
	return nil
}
