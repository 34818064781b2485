// Package objfile reads and writes the textual object format.
//
// The first line holds the code and data sizes in bytes. Every following
// line is a row: the four-digit decimal address of its first byte, then up
// to a row's worth of bytes as two-digit uppercase hex. Code bytes come
// first and data follows in the same address space.
package objfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Object is an assembled image loaded at Base.
type Object struct {
	Base int
	Code []byte
	Data []byte
}

// Len returns the total number of bytes in the object.
func (o *Object) Len() int {
	return len(o.Code) + len(o.Data)
}

// At returns the byte at offset i, counting code then data.
func (o *Object) At(i int) byte {
	if i < len(o.Code) {
		return o.Code[i]
	}
	return o.Data[i-len(o.Code)]
}

// Write encodes o with perRow bytes per row.
func Write(w io.Writer, o *Object, perRow int) error {
	if perRow <= 0 {
		return fmt.Errorf("invalid row width %d", perRow)
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d\n", len(o.Code), len(o.Data))
	for i := 0; i < o.Len(); i++ {
		if i%perRow == 0 {
			if i > 0 {
				bw.WriteByte('\n')
			}
			fmt.Fprintf(bw, "%04d", o.Base+i)
		}
		fmt.Fprintf(bw, " %02X", o.At(i))
	}
	if o.Len() > 0 {
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Read decodes an object. The base is taken from the first row; an object
// without rows has base zero.
func Read(r io.Reader) (*Object, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("missing size header")
	}
	var codeSize, dataSize int
	if _, err := fmt.Sscanf(sc.Text(), "%d %d", &codeSize, &dataSize); err != nil {
		return nil, fmt.Errorf("invalid size header %q: %w", sc.Text(), err)
	}
	if codeSize < 0 || dataSize < 0 {
		return nil, fmt.Errorf("invalid size header %q", sc.Text())
	}

	obj := &Object{}
	all := make([]byte, 0, codeSize+dataSize)
	lineNo := 1
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		addr, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("invalid address %q on line %d", fields[0], lineNo)
		}
		if len(all) == 0 {
			obj.Base = addr
		} else if addr != obj.Base+len(all) {
			return nil, fmt.Errorf("address %d on line %d, want %d", addr, lineNo, obj.Base+len(all))
		}
		for _, f := range fields[1:] {
			b, err := strconv.ParseUint(f, 16, 8)
			if err != nil {
				return nil, fmt.Errorf("invalid byte %q on line %d", f, lineNo)
			}
			all = append(all, byte(b))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(all) != codeSize+dataSize {
		return nil, fmt.Errorf("object holds %d bytes, header declares %d", len(all), codeSize+dataSize)
	}
	obj.Code = all[:codeSize:codeSize]
	obj.Data = all[codeSize:]
	return obj, nil
}
