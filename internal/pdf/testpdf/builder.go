// Package testpdf writes small, fully valid PDF documents for tests. The same
// object set can be laid out with a classic cross-reference table or packed
// into a compressed object stream indexed by a cross-reference stream.
package testpdf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"sort"
	"strings"
)

// Layout selects how objects are stored in the written file
type Layout int

const (
	// Plain writes every object at top level with an xref table (PDF 1.3).
	Plain Layout = iota
	// ObjectStreams packs every object into one compressed object stream
	// indexed by an xref stream (PDF 1.7).
	ObjectStreams
)

// String names the layout for subtests
func (l Layout) String() string {
	if l == ObjectStreams {
		return "object_streams"
	}
	return "plain"
}

// Layouts lists every supported layout
var Layouts = []Layout{Plain, ObjectStreams}

// Builder collects numbered objects. Numbers must be contiguous from 1.
type Builder struct {
	root    int
	objects map[int]string
}

// NewBuilder creates a builder whose trailer Root points at object root
func NewBuilder(root int) *Builder {
	return &Builder{root: root, objects: map[int]string{}}
}

// Add registers the body of object num, without the obj/endobj wrapper
func (b *Builder) Add(num int, body string) *Builder {
	b.objects[num] = body
	return b
}

func (b *Builder) numbers() []int {
	nums := make([]int, 0, len(b.objects))
	for n := range b.objects {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	for i, n := range nums {
		if n != i+1 {
			panic(fmt.Sprintf("testpdf: object numbers must be contiguous from 1, missing %d", i+1))
		}
	}
	return nums
}

// Build writes the document in the given layout
func (b *Builder) Build(layout Layout) []byte {
	if layout == ObjectStreams {
		return b.buildObjectStreams()
	}
	return b.buildPlain()
}

func (b *Builder) buildPlain() []byte {
	nums := b.numbers()

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.3\n%\xe2\xe3\xcf\xd3\n")

	offsets := make(map[int]int, len(nums))
	for _, n := range nums {
		offsets[n] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", n, b.objects[n])
	}

	xrefOffset := buf.Len()
	size := len(nums) + 1
	fmt.Fprintf(&buf, "xref\n0 %d\n", size)
	buf.WriteString("0000000000 65535 f \n")
	for _, n := range nums {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[n])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", size, b.root, xrefOffset)
	return buf.Bytes()
}

func (b *Builder) buildObjectStreams() []byte {
	nums := b.numbers()
	objStmNr := len(nums) + 1
	xrefStmNr := len(nums) + 2
	size := len(nums) + 3

	var header, body strings.Builder
	for _, n := range nums {
		fmt.Fprintf(&header, "%d %d ", n, body.Len())
		body.WriteString(b.objects[n])
		body.WriteString("\n")
	}
	first := header.Len()
	objStm := deflate([]byte(header.String() + body.String()))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

	objStmOffset := buf.Len()
	fmt.Fprintf(&buf, "%d 0 obj\n<< /Type /ObjStm /N %d /First %d /Filter /FlateDecode /Length %d >>\nstream\n",
		objStmNr, len(nums), first, len(objStm))
	buf.Write(objStm)
	buf.WriteString("\nendstream\nendobj\n")

	xrefOffset := buf.Len()

	// W [1 4 2]: type, field 2, field 3
	var xref bytes.Buffer
	writeXRefEntry(&xref, 0, 0, 0xFFFF)
	for i := range nums {
		writeXRefEntry(&xref, 2, uint32(objStmNr), uint16(i))
	}
	writeXRefEntry(&xref, 1, uint32(objStmOffset), 0)
	writeXRefEntry(&xref, 1, uint32(xrefOffset), 0)
	xrefData := deflate(xref.Bytes())

	fmt.Fprintf(&buf, "%d 0 obj\n<< /Type /XRef /Size %d /W [1 4 2] /Root %d 0 R /Filter /FlateDecode /Length %d >>\nstream\n",
		xrefStmNr, size, b.root, len(xrefData))
	buf.Write(xrefData)
	buf.WriteString("\nendstream\nendobj\n")
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefOffset)
	return buf.Bytes()
}

func writeXRefEntry(buf *bytes.Buffer, typ byte, field2 uint32, field3 uint16) {
	buf.WriteByte(typ)
	_ = binary.Write(buf, binary.BigEndian, field2)
	_ = binary.Write(buf, binary.BigEndian, field3)
}

func deflate(data []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, _ = w.Write(data)
	_ = w.Close()
	return buf.Bytes()
}
