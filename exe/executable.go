// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package exe reads and writes the executable container produced by the
// assembler and loaded by the processor.
//
// The container is a text segment followed by an optional data segment,
// each a 5 byte marker, a little endian int32 byte length, a little endian
// int32 load address, and the segment bytes.
package exe

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"os"

	"github.com/ezrec/mipsim/isa"
)

const (
	MARKER_TEXT = ".text"
	MARKER_DATA = ".data"
)

var endian = binary.LittleEndian

// Executable is a program image: instruction words and initialized data,
// each with the address it is loaded at.
type Executable struct {
	TextStart uint32            // Load address of the text segment.
	Text      []isa.Instruction // Instruction words.
	DataStart uint32            // Load address of the data segment, if any.
	Data      []byte            // Initialized data. Empty means no data segment.
}

// segmentHeader is the fixed part of each serialized segment.
type segmentHeader struct {
	Marker [5]byte
	Length int32
	Start  int32
}

// TextBytes returns the text segment as little endian bytes.
func (exe *Executable) TextBytes() (text []byte) {
	text = make([]byte, 0, 4*len(exe.Text))
	for _, word := range exe.Text {
		text = endian.AppendUint32(text, uint32(word))
	}
	return
}

// WriteTo serializes the executable.
func (exe *Executable) WriteTo(w io.Writer) (n int64, err error) {
	if len(exe.Text) == 0 {
		err = ErrTextEmpty
		return
	}

	cw := &countWriter{Writer: w}
	defer func() { n = cw.count }()

	text := exe.TextBytes()
	err = writeSegment(cw, MARKER_TEXT, exe.TextStart, text)
	if err != nil {
		return
	}

	if len(exe.Data) > 0 {
		err = writeSegment(cw, MARKER_DATA, exe.DataStart, exe.Data)
		if err != nil {
			return
		}
	}

	return
}

func writeSegment(w io.Writer, marker string, start uint32, body []byte) (err error) {
	hdr := segmentHeader{
		Length: int32(len(body)),
		Start:  int32(start),
	}
	copy(hdr.Marker[:], marker)

	err = binary.Write(w, endian, &hdr)
	if err != nil {
		return
	}

	_, err = w.Write(body)
	return
}

// Read deserializes an executable.
func Read(r io.Reader) (exe *Executable, err error) {
	br := bufio.NewReader(r)

	var hdr segmentHeader
	err = binary.Read(br, endian, &hdr)
	if err != nil {
		err = truncated(MARKER_TEXT, err)
		return
	}
	if string(hdr.Marker[:]) != MARKER_TEXT {
		err = &ErrSegment{Segment: MARKER_TEXT, Err: ErrFormat}
		return
	}
	if hdr.Length < 0 || hdr.Length%4 != 0 {
		err = &ErrSegment{Segment: MARKER_TEXT, Err: ErrFormat}
		return
	}

	text := make([]byte, hdr.Length)
	_, err = io.ReadFull(br, text)
	if err != nil {
		err = truncated(MARKER_TEXT, err)
		return
	}

	exe = &Executable{
		TextStart: uint32(hdr.Start),
		Text:      make([]isa.Instruction, 0, len(text)/4),
	}
	for n := 0; n < len(text); n += 4 {
		exe.Text = append(exe.Text, isa.Instruction(endian.Uint32(text[n:])))
	}

	// No data segment.
	_, err = br.Peek(1)
	if errors.Is(err, io.EOF) {
		err = nil
		return
	}

	err = binary.Read(br, endian, &hdr)
	if err != nil {
		exe = nil
		err = truncated(MARKER_DATA, err)
		return
	}
	if string(hdr.Marker[:]) != MARKER_DATA || hdr.Length < 0 {
		exe = nil
		err = &ErrSegment{Segment: MARKER_DATA, Err: ErrFormat}
		return
	}

	exe.DataStart = uint32(hdr.Start)
	exe.Data = make([]byte, hdr.Length)
	_, err = io.ReadFull(br, exe.Data)
	if err != nil {
		exe = nil
		err = truncated(MARKER_DATA, err)
		return
	}

	return
}

func truncated(segment string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		err = errors.Join(ErrTruncated, err)
	}
	return &ErrSegment{Segment: segment, Err: err}
}

// Load reads an executable from a file.
func Load(path string) (exe *Executable, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	return Read(inf)
}

// Save writes the executable to a file.
func (exe *Executable) Save(path string) (err error) {
	if len(exe.Text) == 0 {
		err = ErrTextEmpty
		return
	}

	ouf, err := os.Create(path)
	if err != nil {
		return
	}

	_, err = exe.WriteTo(ouf)
	if err != nil {
		ouf.Close()
		return
	}

	return ouf.Close()
}

type countWriter struct {
	io.Writer
	count int64
}

func (cw *countWriter) Write(buf []byte) (n int, err error) {
	n, err = cw.Writer.Write(buf)
	cw.count += int64(n)
	return
}
