// Package format provides canonical pretty-printing for wesly source code.
package format

// Indentation - gofmt style: tabs for indentation
const (
	TabWidth     = 4
	IndentWidth  = TabWidth
	IndentString = "\t"
)

// Structure
const (
	BlankLinesBetweenDefs = 1 // blank lines around top-level func and object declarations
)
