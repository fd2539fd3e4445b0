package request

import (
	"iter"
	"slices"
	"strings"
	"unicode/utf8"
)

// Header is an ordered multimap of request header fields.
// Names match case-insensitively and keep the case of their first
// insertion. Entries serialize in first-insertion order.
// The zero value is an empty Header ready to use.
type Header struct {
	entries []headerEntry
	index   map[string]int
}

type headerEntry struct {
	name   string
	values []string
}

// Add appends value to the values of name, creating the entry if needed.
// Bytes that are not token characters are removed from name and control
// characters other than tab are removed from value, so neither can end
// the header line early. A name left empty is ignored.
func (h *Header) Add(name, value string) {
	name, value = cleanName(name), cleanValue(value)
	if name == "" {
		return
	}

	if i, ok := h.lookup(name); ok {
		h.entries[i].values = append(h.entries[i].values, value)
		return
	}

	if h.index == nil {
		h.index = make(map[string]int)
	}
	h.index[strings.ToLower(name)] = len(h.entries)
	h.entries = append(h.entries, headerEntry{name: name, values: []string{value}})
}

// Set replaces every value of name with value. An existing entry keeps
// its position and the case of its name.
func (h *Header) Set(name, value string) {
	name, value = cleanName(name), cleanValue(value)
	if name == "" {
		return
	}

	if i, ok := h.lookup(name); ok {
		h.entries[i].values = []string{value}
		return
	}

	h.Add(name, value)
}

// Get returns the first value of name, or "" if there is none.
func (h *Header) Get(name string) string {
	if i, ok := h.lookup(name); ok {
		return h.entries[i].values[0]
	}

	return ""
}

// Values returns a copy of every value of name in insertion order.
func (h *Header) Values(name string) []string {
	if i, ok := h.lookup(name); ok {
		return slices.Clone(h.entries[i].values)
	}

	return nil
}

// Has reports whether name is present.
func (h *Header) Has(name string) bool {
	_, ok := h.lookup(name)
	return ok
}

// Len returns the number of distinct names.
func (h *Header) Len() int {
	return len(h.entries)
}

// Names returns the header names in serialization order.
func (h *Header) Names() []string {
	names := make([]string, 0, len(h.entries))
	for _, e := range h.entries {
		names = append(names, e.name)
	}

	return names
}

// All yields every name with its values in serialization order.
func (h *Header) All() iter.Seq2[string, []string] {
	return func(yield func(string, []string) bool) {
		for _, e := range h.entries {
			if !yield(e.name, slices.Clone(e.values)) {
				return
			}
		}
	}
}

// Clone returns a deep copy of h.
func (h *Header) Clone() Header {
	out := Header{entries: make([]headerEntry, len(h.entries))}
	for i, e := range h.entries {
		out.entries[i] = headerEntry{name: e.name, values: slices.Clone(e.values)}
	}
	if h.index != nil {
		out.index = make(map[string]int, len(h.index))
		for k, v := range h.index {
			out.index[k] = v
		}
	}

	return out
}

func (h *Header) lookup(name string) (int, bool) {
	if h.index == nil {
		return 0, false
	}
	i, ok := h.index[strings.ToLower(name)]

	return i, ok
}

// writeTo appends one "Name: v1,v2\r\n" line per entry.
func (h *Header) writeTo(b *strings.Builder) {
	for _, e := range h.entries {
		b.WriteString(e.name)
		b.WriteString(": ")
		b.WriteString(strings.Join(e.values, ","))
		b.WriteString("\r\n")
	}
}

func cleanName(name string) string {
	return strings.Map(func(r rune) rune {
		if r < utf8.RuneSelf && isTokenByte(byte(r)) {
			return r
		}
		return -1
	}, name)
}

func cleanValue(value string) string {
	return strings.Map(func(r rune) rune {
		if (r < ' ' && r != '\t') || r == 0x7f {
			return -1
		}
		return r
	}, value)
}

func isTokenByte(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}

	return strings.IndexByte("!#$%&'*+-.^_`|~", c) >= 0
}
