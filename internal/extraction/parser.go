// Package extraction turns raw AI-assistant output into validated candidate
// records. The input is untrusted: it may be a clean JSON array, a single
// object, JSON buried in prose or markdown fences, or garbage.
package extraction

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Candidate is an unvalidated, pre-enrichment guess at a recording's
// metadata. It is transient: consumed by enrichment and persistence, never
// stored as-is.
type Candidate struct {
	Composer      string     `json:"composer"`
	Work          string     `json:"work"`
	Performers    Performers `json:"performers,omitempty"`
	Label         string     `json:"label,omitempty"`
	CatalogNumber string     `json:"catalog_number,omitempty"`
	ReleaseYear   Year       `json:"release_year,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

// Performers tolerates both a JSON array of strings and a single string.
type Performers []string

// UnmarshalJSON implements json.Unmarshaler
func (p *Performers) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*p = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*p = nil
		} else {
			*p = Performers{single}
		}
		return nil
	}
	return fmt.Errorf("performers must be a string or an array of strings")
}

// Year tolerates both a JSON number and a numeric string; zero means unknown.
type Year int

// UnmarshalJSON implements json.Unmarshaler
func (y *Year) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*y = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid year %q", s)
	}
	*y = Year(n)
	return nil
}

// Status classifies the overall outcome of a parse.
type Status string

const (
	// StatusOK means every element parsed and validated.
	StatusOK Status = "ok"
	// StatusEmpty means valid input describing zero recordings.
	StatusEmpty Status = "empty"
	// StatusPartial means some elements were dropped during validation.
	StatusPartial Status = "partial"
	// StatusFailed means no recoverable JSON was found.
	StatusFailed Status = "failed"
)

// Outcome reports how a parse went, so callers can give distinct feedback
// for "no recordings found" versus "could not read the response at all".
type Outcome struct {
	Status  Status `json:"status"`
	Dropped int    `json:"dropped,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// Failed reports whether the parse recovered nothing usable.
func (o Outcome) Failed() bool { return o.Status == StatusFailed }

// Parse extracts candidate records from raw text. It never returns an error
// and never panics; a hard failure is reported through the outcome. The
// strategy is: parse the whole text as JSON, then fall back to the first
// balanced [...] span, then wrap a single object into a one-element list.
// Elements missing a composer or work are dropped, not fatal.
func Parse(raw string) ([]Candidate, Outcome) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, Outcome{Status: StatusFailed, Reason: "empty input"}
	}

	elements, ok := parseElements(text)
	if !ok {
		if span := firstBalancedArray(text); span != "" {
			elements, ok = parseElements(span)
		}
	}
	if !ok {
		return nil, Outcome{
			Status: StatusFailed,
			Reason: fmt.Sprintf("no JSON array found in input (sha256 %s): %s", digest(raw), truncate(raw, 120)),
		}
	}

	if len(elements) == 0 {
		return []Candidate{}, Outcome{Status: StatusEmpty}
	}

	candidates := make([]Candidate, 0, len(elements))
	dropped := 0
	for _, el := range elements {
		var c Candidate
		if err := json.Unmarshal(el, &c); err != nil {
			dropped++
			continue
		}
		c.Composer = strings.TrimSpace(c.Composer)
		c.Work = strings.TrimSpace(c.Work)
		if c.Composer == "" || c.Work == "" {
			dropped++
			continue
		}
		candidates = append(candidates, c)
	}

	switch {
	case dropped > 0:
		return candidates, Outcome{Status: StatusPartial, Dropped: dropped}
	case len(candidates) == 0:
		return candidates, Outcome{Status: StatusEmpty}
	default:
		return candidates, Outcome{Status: StatusOK}
	}
}

// parseElements decodes text as either a JSON array or a single JSON object
// (wrapped into a one-element list). Elements stay raw so that one malformed
// entry drops only itself.
func parseElements(text string) ([]json.RawMessage, bool) {
	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(text), &elements); err == nil {
		return elements, true
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err == nil {
		return []json.RawMessage{json.RawMessage(text)}, true
	}
	return nil, false
}

// firstBalancedArray returns the first [...] span with balanced brackets,
// ignoring brackets inside JSON string literals. Returns "" if none exists.
func firstBalancedArray(text string) string {
	start := strings.IndexByte(text, '[')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", sum[:8])
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
