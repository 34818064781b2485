// Package export queues the entry and external symbol records that are
// published next to an assembled object.
package export

import (
	"fmt"
	"io"
)

// Record is one line of an entry or external listing. Address is already
// absolute.
type Record struct {
	Name    string
	Address int
}

func (r Record) String() string {
	return fmt.Sprintf("%s %04d", r.Name, r.Address)
}

// Buffer holds the records produced by one emission pass, in the order
// they were queued.
type Buffer struct {
	entries   []Record
	externals []Record
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

// AddEntry queues the definition of an entry symbol.
func (b *Buffer) AddEntry(name string, address int) {
	b.entries = append(b.entries, Record{Name: name, Address: address})
}

// AddExternal queues one reference site of an external symbol.
func (b *Buffer) AddExternal(name string, site int) {
	b.externals = append(b.externals, Record{Name: name, Address: site})
}

func (b *Buffer) Entries() []Record   { return b.entries }
func (b *Buffer) Externals() []Record { return b.externals }

// Len returns the number of queued records of both kinds.
func (b *Buffer) Len() int { return len(b.entries) + len(b.externals) }

// Reset discards every queued record.
func (b *Buffer) Reset() {
	b.entries = nil
	b.externals = nil
}

// WriteListing writes one "name address" line per record.
func WriteListing(w io.Writer, records []Record) error {
	for _, r := range records {
		if _, err := fmt.Fprintln(w, r); err != nil {
			return err
		}
	}
	return nil
}
