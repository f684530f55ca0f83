package codegen

import (
	"bytes"
	"strings"

	"github.com/kakitgogogo/mcc/internal/ctypes"
)

// newTestGen returns a Generator writing into the returned buffer,
// along with the type arena it was built against.
func newTestGen() (*Generator, *bytes.Buffer, *ctypes.Arena) {
	var buf bytes.Buffer
	types := ctypes.NewArena()
	e := NewEmitter(&buf)
	return New(e, types), &buf, types
}

func (g *Generator) flush(buf *bytes.Buffer) string {
	g.e.Flush()
	return buf.String()
}

func countOccurrences(s, sub string) int {
	return strings.Count(s, sub)
}
