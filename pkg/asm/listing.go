package asm

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"masm/pkg/isa"
	"masm/pkg/symtab"
)

// RenderSymbols writes the user symbols of res as a table.
func RenderSymbols(w io.Writer, res *Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Symbols")
	t.AppendHeader(table.Row{"Name", "Kind", "Address"})
	for _, s := range res.Symbols {
		addr := "-"
		if s.Attribute&symtab.External == 0 {
			addr = fmt.Sprintf("%04d", s.Address)
		}
		t.AppendRow(table.Row{s.Name, s.Attribute, addr})
	}
	t.AppendFooter(table.Row{"", "Total", len(res.Symbols)})
	t.Render()
}

// RenderInstructions writes the instruction table with the bit range of
// every slot.
func RenderInstructions(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Instruction set")
	t.AppendHeader(table.Row{"Mnemonic", "Opcode", "Slots"})
	for _, d := range isa.Instructions {
		slots := make([]string, 0, len(d.Slots))
		for _, s := range d.Slots {
			desc := fmt.Sprintf("%s[%d:%d]", s.Name, s.Offset+s.Width-1, s.Offset)
			if s.Eval == nil {
				desc += fmt.Sprintf("=%d", s.Fixed)
			}
			slots = append(slots, desc)
		}
		t.AppendRow(table.Row{d.Mnemonic, d.Opcode, strings.Join(slots, " ")})
	}
	t.Render()
}
