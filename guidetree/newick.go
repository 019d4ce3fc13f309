package guidetree

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
)

// WriteNewick writes t in Newick format, with branch lengths. names[i] labels
// sequence i; names containing Newick delimiters are single-quoted.
func (t *Tree) WriteNewick(w io.Writer, names []string) error {
	if len(names) != t.NumLeaves() {
		return errors.E(errors.Invalid, "guidetree: got", len(names), "names for", t.NumLeaves(), "leaves")
	}
	bw := bufio.NewWriter(w)
	if t.Root >= 0 {
		t.writeNode(bw, t.Root, names)
	}
	bw.WriteString(";\n")
	return bw.Flush()
}

func (t *Tree) writeNode(w *bufio.Writer, i int, names []string) {
	n := &t.Nodes[i]
	if n.IsLeaf() {
		w.WriteString(quoteName(names[n.Leaf]))
		return
	}
	w.WriteByte('(')
	t.writeNode(w, n.Left, names)
	w.WriteByte(':')
	w.WriteString(strconv.FormatFloat(n.LeftLen, 'g', -1, 64))
	w.WriteByte(',')
	t.writeNode(w, n.Right, names)
	w.WriteByte(':')
	w.WriteString(strconv.FormatFloat(n.RightLen, 'g', -1, 64))
	w.WriteByte(')')
}

func quoteName(name string) string {
	if !strings.ContainsAny(name, " \t()[]':;,") {
		return name
	}
	return "'" + strings.Replace(name, "'", "''", -1) + "'"
}
