package fasta

import (
	"bufio"
	"io"
	"strconv"

	"github.com/grailbio/mars/circular"
)

// Writer writes rotated records. Each record takes two lines: the header
// ">ID (rotated N bases)" and the whole rotated sequence.
type Writer struct {
	w   *bufio.Writer
	buf []byte
	err error
}

// NewWriter creates a Writer on w. Flush must be called once all records are
// written.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write emits rec rotated left by rot.
func (w *Writer) Write(rec Record, rot int) error {
	if w.err != nil {
		return w.err
	}
	if len(rec.Seq) > 0 {
		rot = circular.Mod(rot, len(rec.Seq))
	} else {
		rot = 0
	}
	w.buf = append(w.buf[:0], '>')
	w.buf = append(w.buf, rec.ID...)
	w.buf = append(w.buf, " (rotated "...)
	w.buf = strconv.AppendInt(w.buf, int64(rot), 10)
	w.buf = append(w.buf, " bases)\n"...)
	w.buf = append(w.buf, rec.Seq[rot:]...)
	w.buf = append(w.buf, rec.Seq[:rot]...)
	w.buf = append(w.buf, '\n')
	_, w.err = w.w.Write(w.buf)
	return w.err
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.w.Flush()
	return w.err
}
