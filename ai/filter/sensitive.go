// Package filter masks personal data in student queries before they are logged.
package filter

import (
	"regexp"
	"sort"
	"strings"
)

// FilterType identifies a kind of personal data.
type FilterType int

const (
	Email FilterType = iota
	Phone
	CardNumber
	IP
)

var patterns = map[FilterType]*regexp.Regexp{
	Email:      regexp.MustCompile(`\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`),
	Phone:      regexp.MustCompile(`\+?\d[\d -]{8,}\d`),
	CardNumber: regexp.MustCompile(`\b\d{12,19}\b`),
	IP:         regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4]\d|1?\d\d?)\.){3}(?:25[0-5]|2[0-4]\d|1?\d\d?)\b`),
}

// FilterConfig configures a Filter.
type FilterConfig struct {
	Enabled  []FilterType
	MaskChar rune
	// KeepFirstN and KeepLastN leave that many characters of a match visible.
	KeepFirstN int
	KeepLastN  int
}

func DefaultConfig() FilterConfig {
	return FilterConfig{
		Enabled:    []FilterType{Email, Phone, CardNumber, IP},
		MaskChar:   '*',
		KeepFirstN: 2,
		KeepLastN:  2,
	}
}

// Match is one masked span of the input.
type Match struct {
	Type       FilterType
	Start, End int
}

type Filter struct {
	config FilterConfig
}

func NewFilter(cfg FilterConfig) *Filter {
	if cfg.MaskChar == 0 {
		cfg.MaskChar = '*'
	}
	return &Filter{config: cfg}
}

// Find returns non-overlapping matches ordered by position. Earlier enabled types win overlaps.
func (f *Filter) Find(text string) []Match {
	var matches []Match
	for _, ft := range f.config.Enabled {
		re, ok := patterns[ft]
		if !ok {
			continue
		}
		for _, loc := range re.FindAllStringIndex(text, -1) {
			m := Match{Type: ft, Start: loc[0], End: loc[1]}
			if !overlaps(matches, m) {
				matches = append(matches, m)
			}
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Start < matches[j].Start })
	return matches
}

func overlaps(existing []Match, m Match) bool {
	for _, e := range existing {
		if m.Start < e.End && e.Start < m.End {
			return true
		}
	}
	return false
}

// Filter returns text with every match masked.
func (f *Filter) Filter(text string) string {
	matches := f.Find(text)
	if len(matches) == 0 {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text))
	last := 0
	for _, m := range matches {
		sb.WriteString(text[last:m.Start])
		sb.WriteString(f.mask(text[m.Start:m.End]))
		last = m.End
	}
	sb.WriteString(text[last:])
	return sb.String()
}

func (f *Filter) mask(s string) string {
	runes := []rune(s)
	keepFirst, keepLast := f.config.KeepFirstN, f.config.KeepLastN
	if keepFirst+keepLast >= len(runes) {
		keepFirst, keepLast = 0, 0
	}
	for i := keepFirst; i < len(runes)-keepLast; i++ {
		runes[i] = f.config.MaskChar
	}
	return string(runes)
}

// Truncate cuts s to maxLen runes, appending "..." when shortened.
// Returns empty string if maxLen <= 0.
func Truncate(s string, maxLen int) string {
	if s == "" || maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}

var defaultFilter = NewFilter(DefaultConfig())

// MaxLoggedQuery bounds query text written to logs.
const MaxLoggedQuery = 200

// ForLog masks personal data in a query and truncates it for logging.
func ForLog(query string) string {
	return Truncate(defaultFilter.Filter(query), MaxLoggedQuery)
}
