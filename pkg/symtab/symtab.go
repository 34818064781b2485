package symtab

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Attribute is a bit-set describing what a name means to the assembler.
type Attribute uint8

const (
	Code Attribute = 1 << iota
	Data
	External
	Entry
	InstructionKeyword
	DirectiveKeyword
)

const (
	// UserAttributes covers every attribute a source file can give a name.
	UserAttributes = Code | Data | External | Entry
	// KeywordAttributes covers the reserved names installed before any file.
	KeywordAttributes = InstructionKeyword | DirectiveKeyword
)

var attributeNames = []struct {
	attr Attribute
	name string
}{
	{Code, "code"},
	{Data, "data"},
	{External, "external"},
	{Entry, "entry"},
	{InstructionKeyword, "instruction"},
	{DirectiveKeyword, "directive"},
}

func (a Attribute) String() string {
	if a == 0 {
		return "none"
	}
	var parts []string
	for _, n := range attributeNames {
		if a&n.attr != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// ErrTableFull is returned by Install when a new name would exceed the
// table's capacity.
var ErrTableFull = errors.New("symbol table full")

// Symbol is a table entry. The table owns it; callers may refine its
// attributes but must not keep it past the table's Clear.
type Symbol struct {
	Name      string
	Value     int
	Attribute Attribute
}

// HasAttribute reports whether s carries any bit of a. A nil symbol has none.
func HasAttribute(s *Symbol, a Attribute) bool {
	return s != nil && s.Attribute&a != 0
}

// SetAttribute adds a to s.
func SetAttribute(s *Symbol, a Attribute) {
	if s != nil {
		s.Attribute |= a
	}
}

// Table maps names to symbols.
type Table struct {
	symbols  map[string]*Symbol
	capacity int
}

// NewTable creates an empty table. A capacity of zero means unlimited.
func NewTable(capacity int) *Table {
	return &Table{
		symbols:  make(map[string]*Symbol),
		capacity: capacity,
	}
}

// Lookup returns the symbol called name, or nil.
func (t *Table) Lookup(name string) *Symbol {
	return t.symbols[name]
}

// Install defines name. An existing entry is reused and its value and
// attributes are overwritten.
func (t *Table) Install(name string, value int, attr Attribute) (*Symbol, error) {
	s, ok := t.symbols[name]
	if !ok {
		if t.capacity > 0 && len(t.symbols) >= t.capacity {
			return nil, fmt.Errorf("installing %q: %w", name, ErrTableFull)
		}
		s = &Symbol{Name: name}
		t.symbols[name] = s
	}
	s.Value = value
	s.Attribute = attr
	return s, nil
}

// Clear removes every symbol sharing at least one bit with mask.
func (t *Table) Clear(mask Attribute) {
	for name, s := range t.symbols {
		if s.Attribute&mask != 0 {
			delete(t.symbols, name)
		}
	}
}

// Len returns the number of symbols in the table.
func (t *Table) Len() int {
	return len(t.symbols)
}

// Symbols returns the symbols sharing a bit with mask, ordered by name.
func (t *Table) Symbols(mask Attribute) []Symbol {
	out := make([]Symbol, 0, len(t.symbols))
	for _, s := range t.symbols {
		if s.Attribute&mask != 0 {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// String returns a deterministically ordered dump of the table.
func (t *Table) String() string {
	if len(t.symbols) == 0 {
		return "Symbols: (empty)\n"
	}
	var sb strings.Builder
	sb.WriteString("Symbols:\n")
	for _, s := range t.Symbols(^Attribute(0)) {
		fmt.Fprintf(&sb, "  %-31s  Value: %d (%s)\n", s.Name, s.Value, s.Attribute)
	}
	return sb.String()
}
