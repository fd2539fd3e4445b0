package response

import (
	"iter"
	"strings"
)

// Field is one header line as received.
type Field struct {
	Name  string
	Value string
}

// Header holds response header fields in wire order. Lookups are
// case-insensitive.
type Header []Field

// Get returns the first value for name, or "".
func (h Header) Get(name string) string {
	for _, f := range h {
		if strings.EqualFold(f.Name, name) {
			return f.Value
		}
	}

	return ""
}

// Values returns every value for name in wire order.
func (h Header) Values(name string) []string {
	var out []string
	for _, f := range h {
		if strings.EqualFold(f.Name, name) {
			out = append(out, f.Value)
		}
	}

	return out
}

// Has reports whether any field is called name.
func (h Header) Has(name string) bool {
	for _, f := range h {
		if strings.EqualFold(f.Name, name) {
			return true
		}
	}

	return false
}

// All yields each field in wire order.
func (h Header) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, f := range h {
			if !yield(f.Name, f.Value) {
				return
			}
		}
	}
}
