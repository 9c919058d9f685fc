package inventory

import (
	"fmt"
	"strings"
)

// entry is one host line.
type entry struct {
	line int
	host string
	vars map[string]string
}

// section is one bracketed group plus the host lines under it. The
// synthetic section with headerLine -1 collects hosts declared above the
// first header. Sections named "group:vars" or "group:children" are
// engine metadata, not host lists, and are flagged meta.
type section struct {
	name       string
	headerLine int
	meta       bool
	entries    []entry
}

func (s *section) displayName() string {
	if s.name == "" {
		return "ungrouped"
	}
	return s.name
}

type document struct {
	sections []*section
}

func (d *document) section(name string) *section {
	for _, s := range d.sections {
		if !s.meta && s.name == name {
			return s
		}
	}
	return nil
}

func (d *document) hasHost(host string) bool {
	for _, s := range d.sections {
		if s.meta {
			continue
		}
		for _, e := range s.entries {
			if e.host == host {
				return true
			}
		}
	}
	return false
}

// parse builds the section/entry view of the file. It is deliberately
// lenient about anything the engine accepts, and rejects only what is
// structurally broken (an unterminated or empty section header).
func parse(lines []string) (*document, error) {
	doc := &document{}
	current := &section{name: "", headerLine: -1}
	doc.sections = append(doc.sections, current)

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
			continue
		}
		if strings.HasPrefix(trimmed, "[") {
			if !strings.HasSuffix(trimmed, "]") || len(trimmed) < 3 {
				return nil, fmt.Errorf("line %d: unterminated section header: %w", i+1, ErrParse)
			}
			name := trimmed[1 : len(trimmed)-1]
			current = &section{
				name:       name,
				headerLine: i,
				meta:       strings.Contains(name, ":"),
			}
			doc.sections = append(doc.sections, current)
			continue
		}
		if current.meta {
			continue
		}
		fields := strings.Fields(trimmed)
		e := entry{line: i, host: fields[0], vars: map[string]string{}}
		for _, tok := range fields[1:] {
			if k, v, ok := strings.Cut(tok, "="); ok {
				e.vars[k] = v
			}
		}
		current.entries = append(current.entries, e)
	}
	return doc, nil
}

// pruneEmptySections removes the headers of the given sections when
// nothing at all remains between the header and the next header or end
// of file, along with the single blank line that separated the section
// from what precedes it. A group that was already empty before the edit
// keeps its separating blank line under the header and is left alone;
// only a section whose sole content was the removed host collapses to
// nothing. Headers are passed as indices into lines.
func pruneEmptySections(lines []string, headers map[int]int) []string {
	// Work highest-first so earlier indices stay valid.
	var idxs []int
	for _, at := range headers {
		idxs = append(idxs, at)
	}
	for i := 0; i < len(idxs); i++ {
		for j := i + 1; j < len(idxs); j++ {
			if idxs[j] > idxs[i] {
				idxs[i], idxs[j] = idxs[j], idxs[i]
			}
		}
	}

	for _, at := range idxs {
		if at >= len(lines) || !strings.HasPrefix(strings.TrimSpace(lines[at]), "[") {
			continue
		}
		if next := at + 1; next < len(lines) && !strings.HasPrefix(strings.TrimSpace(lines[next]), "[") {
			continue
		}
		cut := at
		if at > 0 && strings.TrimSpace(lines[at-1]) == "" {
			cut = at - 1
		}
		lines = append(lines[:cut], lines[at+1:]...)
	}
	return lines
}
