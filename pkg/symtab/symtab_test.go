package symtab

import (
	"errors"
	"strings"
	"testing"
)

func TestTable(t *testing.T) {
	t.Run("InstallAndLookup", func(t *testing.T) {
		tab := NewTable(0)
		s, err := tab.Install("LOOP", 8, Code)
		if err != nil {
			t.Fatalf("Install: %v", err)
		}
		if got := tab.Lookup("LOOP"); got != s {
			t.Errorf("Lookup(LOOP) = %p, want %p", got, s)
		}
		if got := tab.Lookup("loop"); got != nil {
			t.Errorf("names are case-sensitive, Lookup(loop) = %+v", got)
		}
	})

	t.Run("InstallOverwrites", func(t *testing.T) {
		tab := NewTable(0)
		first, _ := tab.Install("X", 4, Code)
		second, _ := tab.Install("X", 0, External)
		if first != second {
			t.Fatalf("reinstall created a new entry")
		}
		if second.Value != 0 || second.Attribute != External {
			t.Errorf("got value %d attr %v, want 0 external", second.Value, second.Attribute)
		}
		if tab.Len() != 1 {
			t.Errorf("Len = %d, want 1", tab.Len())
		}
	})

	t.Run("Capacity", func(t *testing.T) {
		tab := NewTable(2)
		if _, err := tab.Install("A", 0, Code); err != nil {
			t.Fatal(err)
		}
		if _, err := tab.Install("B", 0, Code); err != nil {
			t.Fatal(err)
		}
		if _, err := tab.Install("A", 4, Data); err != nil {
			t.Errorf("reinstalling an existing name must not count against capacity: %v", err)
		}
		_, err := tab.Install("C", 0, Code)
		if !errors.Is(err, ErrTableFull) {
			t.Errorf("Install past capacity: err = %v, want ErrTableFull", err)
		}
	})

	t.Run("ClearByMask", func(t *testing.T) {
		tab := NewTable(0)
		tab.Install("add", 0, InstructionKeyword)
		tab.Install("db", 0, DirectiveKeyword)
		tab.Install("MAIN", 0, Code|Entry)
		tab.Install("STR", 0, Data)
		tab.Install("EXT", 0, External)

		tab.Clear(UserAttributes)
		if tab.Len() != 2 {
			t.Fatalf("after clearing user symbols Len = %d, want 2", tab.Len())
		}
		if tab.Lookup("add") == nil || tab.Lookup("db") == nil {
			t.Errorf("keywords were removed")
		}

		tab.Clear(KeywordAttributes)
		if tab.Len() != 0 {
			t.Errorf("after clearing keywords Len = %d, want 0", tab.Len())
		}
	})
}

func TestAttributes(t *testing.T) {
	var nilSym *Symbol
	if HasAttribute(nilSym, Code) {
		t.Errorf("nil symbol reported an attribute")
	}
	SetAttribute(nilSym, Code)

	s := &Symbol{Name: "A", Attribute: Code}
	SetAttribute(s, Entry)
	tests := []struct {
		attr Attribute
		want bool
	}{
		{Code, true},
		{Entry, true},
		{Data, false},
		{External, false},
		{Code | External, true},
	}
	for _, tc := range tests {
		if got := HasAttribute(s, tc.attr); got != tc.want {
			t.Errorf("HasAttribute(%v) = %v, want %v", tc.attr, got, tc.want)
		}
	}
	if got := s.Attribute.String(); got != "code|entry" {
		t.Errorf("String() = %q, want %q", got, "code|entry")
	}
}

func TestTableString(t *testing.T) {
	tab := NewTable(0)
	if got := tab.String(); got != "Symbols: (empty)\n" {
		t.Errorf("empty dump = %q", got)
	}
	tab.Install("b", 4, Data)
	tab.Install("a", 0, Code)
	dump := tab.String()
	if strings.Index(dump, "a ") > strings.Index(dump, "b ") {
		t.Errorf("dump is not ordered by name:\n%s", dump)
	}
	if !strings.Contains(dump, "Value: 4 (data)") {
		t.Errorf("dump missing data symbol:\n%s", dump)
	}
}
