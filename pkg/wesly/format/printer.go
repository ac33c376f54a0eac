package format

import (
	"strings"
)

// Printer accumulates formatted source. The embedded builder supplies String.
type Printer struct {
	strings.Builder
	depth int // nesting level of the block being printed
	col   int // display column on the current line
}

func NewPrinter() *Printer {
	return &Printer{}
}

// Reset empties the output and returns to column zero at the outermost level
func (p *Printer) Reset() {
	p.Builder.Reset()
	p.depth, p.col = 0, 0
}

func (p *Printer) write(s string) {
	p.WriteString(s)
	nl := strings.LastIndexByte(s, '\n')
	if nl < 0 {
		p.col += len(s)
		return
	}
	p.col = len(s) - nl - 1
}

func (p *Printer) newline() {
	p.WriteByte('\n')
	p.col = 0
}

func (p *Printer) writeIndent() {
	for range p.depth {
		p.WriteString(IndentString)
	}
	p.col += p.depth * IndentWidth
}

func (p *Printer) indentInc() { p.depth++ }

func (p *Printer) indentDec() {
	p.depth = max(p.depth-1, 0)
}

// writeComments puts each comment on its own line at the current depth
func (p *Printer) writeComments(comments []string) {
	for _, c := range comments {
		p.writeIndent()
		p.write(c)
		p.newline()
	}
}
