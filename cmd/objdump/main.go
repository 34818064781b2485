package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"masm/pkg/isa"
	"masm/pkg/objfile"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		atexit.Fatalf("objdump: %v", err)
	}
	atexit.Exit(0)
}

func newRootCmd() *cobra.Command {
	var (
		raw  bool
		base int
	)
	cmd := &cobra.Command{
		Use:   "objdump [file.ob]",
		Short: "Disassemble an object file, reading stdin without an argument",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			obj, err := objfile.Read(r)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("base") {
				obj.Base = base
			}
			out := cmd.OutOrStdout()
			if raw {
				p := pp.New()
				p.SetOutput(out)
				p.SetColoringEnabled(false)
				p.Println(obj)
				return nil
			}
			dump(out, obj)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the decoded object structure")
	cmd.Flags().IntVar(&base, "base", 0, "load address used for an object without rows")
	return cmd
}

// dump writes one row per code word and one per data byte.
func dump(w io.Writer, obj *objfile.Object) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("%d code bytes, %d data bytes", len(obj.Code), len(obj.Data)))
	t.AppendHeader(table.Row{"Address", "Bytes", "Contents"})
	for i := 0; i+4 <= len(obj.Code); i += 4 {
		b := obj.Code[i : i+4]
		t.AppendRow(table.Row{fmt.Sprintf("%04d", obj.Base+i), hexBytes(b), disassemble(binary.LittleEndian.Uint32(b))})
	}
	if len(obj.Code)%4 != 0 {
		tail := obj.Code[len(obj.Code)&^3:]
		t.AppendRow(table.Row{fmt.Sprintf("%04d", obj.Base+len(obj.Code)&^3), hexBytes(tail), "truncated word"})
	}
	if len(obj.Data) > 0 {
		t.AppendSeparator()
	}
	for i, b := range obj.Data {
		contents := fmt.Sprintf("%d", int8(b))
		if b >= 0x20 && b < 0x7F {
			contents += fmt.Sprintf(" %q", rune(b))
		}
		t.AppendRow(table.Row{fmt.Sprintf("%04d", obj.Base+len(obj.Code)+i), fmt.Sprintf("%02X", b), contents})
	}
	t.Render()
}

func hexBytes(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%02X", v)
	}
	return strings.Join(parts, " ")
}

func disassemble(word uint32) string {
	i, operands, ok := isa.Decode(word)
	if !ok {
		return fmt.Sprintf(".dw %d", int32(word))
	}
	d := isa.Instructions[i]
	var args []string
	n := 0
	for _, s := range d.Slots {
		if s.Eval == nil {
			continue
		}
		args = append(args, operand(s, operands[n]))
		n++
	}
	if len(args) == 0 {
		return d.Mnemonic
	}
	return d.Mnemonic + " " + strings.Join(args, ",")
}

func operand(s isa.Slot, v uint32) string {
	switch s.Name {
	case "rs", "rt", "rd":
		return fmt.Sprintf("$%d", v)
	case "immed":
		return fmt.Sprintf("%d", int16(v))
	case "target":
		if v&(1<<isa.AddressWidth) != 0 {
			return fmt.Sprintf("$%d", isa.Field(v, 0, 5))
		}
	}
	return fmt.Sprintf("%d", isa.Field(v, 0, isa.AddressWidth))
}
