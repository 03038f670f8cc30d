package fs

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Singularize collapses every run of c in s into a single c.
func Singularize(s string, c rune) string {
	var b strings.Builder
	b.Grow(len(s))
	prev := false
	for _, r := range s {
		if r == c {
			if prev {
				continue
			}
			prev = true
		} else {
			prev = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// MakePolicyCompliant normalizes text lines for tabular parsing. Embedded
// newlines split a line, empty lines are dropped, trailing blanks are
// trimmed and leading indentation is kept. Interior runs of spaces become
// one space, or runs of tabs one tab when tabbed is set.
func MakePolicyCompliant(lines []string, tabbed bool) []string {
	sep := " "
	if tabbed {
		sep = "\t"
	}

	var out []string
	for _, l := range lines {
		for _, line := range strings.Split(l, "\n") {
			line = strings.TrimRight(line, " \t\r")
			if line == "" {
				continue
			}
			body := strings.TrimLeft(line, " \t")
			indent := line[:len(line)-len(body)]
			fields := strings.FieldsFunc(body, func(r rune) bool {
				if tabbed {
					return r == '\t'
				}
				return r == ' '
			})
			out = append(out, indent+strings.Join(fields, sep))
		}
	}
	return out
}

// DictionariesFromCSV parses text whose first line names the columns and
// returns one map per following row. Columns are separated by commas, or
// by tabs when tabbed is set.
func DictionariesFromCSV(text string, tabbed bool) ([]map[string]string, error) {
	r := csv.NewReader(strings.NewReader(strings.Join(MakePolicyCompliant([]string{text}, tabbed), "\n")))
	if tabbed {
		r.Comma = '\t'
	}
	r.TrimLeadingSpace = !tabbed
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var out []map[string]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(out)+1, err)
		}
		dict := make(map[string]string, len(header))
		for i, h := range header {
			dict[h] = row[i]
		}
		out = append(out, dict)
	}
}
