package envfile

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LineKind distinguishes the three things a .env file is made of.
type LineKind int

const (
	LineBlank LineKind = iota
	LineComment
	LineEntry
)

// Line is one physical line of an env file. Entries carry Key and Value;
// comments carry Raw (including the leading '#'); blanks carry nothing.
type Line struct {
	Kind  LineKind
	Key   string
	Value string
	Raw   string
}

// File is an ordered env file. Order and comments are preserved across a
// Load/Render round trip, which godotenv's own writer does not do.
type File struct {
	lines []Line
}

// New returns an empty file.
func New() *File {
	return &File{}
}

// Load reads and parses path. A missing file is reported as os.ErrNotExist
// so callers can distinguish "no file yet" from a broken one.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	f, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return f, nil
}

// Parse builds a File from raw contents. Value semantics (quoting, escapes)
// are delegated to godotenv; this function only keeps track of the physical
// layout godotenv throws away.
func Parse(content string) (*File, error) {
	values, err := godotenv.Unmarshal(content)
	if err != nil {
		return nil, err
	}

	rawLines := strings.Split(content, "\n")
	if n := len(rawLines); n > 0 && rawLines[n-1] == "" {
		// A trailing newline is not an extra blank line.
		rawLines = rawLines[:n-1]
	}

	f := &File{}
	for _, raw := range rawLines {
		trimmed := strings.TrimSpace(raw)
		switch {
		case trimmed == "":
			f.lines = append(f.lines, Line{Kind: LineBlank})
		case strings.HasPrefix(trimmed, "#"):
			f.lines = append(f.lines, Line{Kind: LineComment, Raw: trimmed})
		default:
			key, _, ok := strings.Cut(trimmed, "=")
			if !ok {
				// godotenv accepted the file, so treat a stray line as a comment
				// rather than failing after the fact.
				f.lines = append(f.lines, Line{Kind: LineComment, Raw: "# " + trimmed})
				continue
			}
			key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
			val, known := values[key]
			if !known {
				continue
			}
			// Duplicated keys keep each occurrence's own value; reparsing the
			// single line recovers it where the map only holds the winner.
			if lineVals, lerr := godotenv.Unmarshal(trimmed); lerr == nil {
				if v, ok := lineVals[key]; ok {
					val = v
				}
			}
			f.lines = append(f.lines, Line{Kind: LineEntry, Key: key, Value: val})
		}
	}
	return f, nil
}

// Get returns the value for key and whether it exists.
func (f *File) Get(key string) (string, bool) {
	for i := len(f.lines) - 1; i >= 0; i-- {
		l := f.lines[i]
		if l.Kind == LineEntry && l.Key == key {
			return l.Value, true
		}
	}
	return "", false
}

// Set updates key in place, or appends it at the end of the file. On a
// duplicated key the last occurrence is updated, since that is the one Get
// and godotenv read back.
func (f *File) Set(key, value string) {
	for i := len(f.lines) - 1; i >= 0; i-- {
		if f.lines[i].Kind == LineEntry && f.lines[i].Key == key {
			f.lines[i].Value = value
			return
		}
	}
	f.lines = append(f.lines, Line{Kind: LineEntry, Key: key, Value: value})
}

// Unset removes every occurrence of key. It reports whether anything was
// removed.
func (f *File) Unset(key string) bool {
	kept := f.lines[:0]
	removed := false
	for _, l := range f.lines {
		if l.Kind == LineEntry && l.Key == key {
			removed = true
			continue
		}
		kept = append(kept, l)
	}
	f.lines = kept
	return removed
}

// Keys returns entry keys in file order, first occurrence only.
func (f *File) Keys() []string {
	seen := make(map[string]bool)
	var keys []string
	for _, l := range f.lines {
		if l.Kind != LineEntry || seen[l.Key] {
			continue
		}
		seen[l.Key] = true
		keys = append(keys, l.Key)
	}
	return keys
}

// DuplicateKeys returns keys that appear more than once.
func (f *File) DuplicateKeys() []string {
	count := make(map[string]int)
	for _, l := range f.lines {
		if l.Kind == LineEntry {
			count[l.Key]++
		}
	}
	var dups []string
	for _, l := range f.lines {
		if l.Kind == LineEntry && count[l.Key] > 1 {
			dups = append(dups, l.Key)
			count[l.Key] = 0 // report once
		}
	}
	return dups
}

// Values flattens the file to a map, later duplicates winning.
func (f *File) Values() map[string]string {
	m := make(map[string]string)
	for _, l := range f.lines {
		if l.Kind == LineEntry {
			m[l.Key] = l.Value
		}
	}
	return m
}

// Len returns the number of entries, duplicates included.
func (f *File) Len() int {
	n := 0
	for _, l := range f.lines {
		if l.Kind == LineEntry {
			n++
		}
	}
	return n
}

// AppendComment adds a comment line. Text should not include the '#'.
func (f *File) AppendComment(text string) {
	f.lines = append(f.lines, Line{Kind: LineComment, Raw: "# " + text})
}

// AppendBlank adds an empty line.
func (f *File) AppendBlank() {
	f.lines = append(f.lines, Line{Kind: LineBlank})
}

// Render serializes the file in its stored order. Values containing spaces,
// quotes or '#' are double-quoted so godotenv reads them back unchanged.
func (f *File) Render() string {
	var b strings.Builder
	for _, l := range f.lines {
		switch l.Kind {
		case LineBlank:
			b.WriteString("\n")
		case LineComment:
			b.WriteString(l.Raw)
			b.WriteString("\n")
		case LineEntry:
			b.WriteString(l.Key)
			b.WriteString("=")
			b.WriteString(quoteIfNeeded(l.Value))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// WriteFile renders to path with 0600 permissions; env files hold secrets.
func (f *File) WriteFile(path string) error {
	if err := os.WriteFile(path, []byte(f.Render()), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func quoteIfNeeded(v string) string {
	if v == "" {
		return v
	}
	if strings.ContainsAny(v, " \t\"#'\n") {
		return fmt.Sprintf("%q", v)
	}
	return v
}
