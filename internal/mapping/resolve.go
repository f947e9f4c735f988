package mapping

import (
	"regexp"
	"strconv"
	"strings"
)

// Source identifies which lookup produced an Outcome.
type Source int

const (
	SourceNone Source = iota
	SourceStandard
	SourcePattern
)

func (s Source) String() string {
	switch s {
	case SourceStandard:
		return "standard"
	case SourcePattern:
		return "pattern"
	default:
		return "none"
	}
}

// Outcome is the result of resolving a request path. Via is SourceNone when
// nothing matched, in which case URL is empty.
type Outcome struct {
	URL string
	Via Source
}

// Found reports whether resolution produced a redirect target.
func (o Outcome) Found() bool {
	return o.Via != SourceNone
}

// Resolve maps a request path to a redirect target. A single leading slash
// is stripped so handler paths line up with the mapping keys. Standard
// mappings always win over patterns; patterns are tried in declaration order
// and the first match is taken. Resolve is a pure function of the path and
// the table.
func (t *Table) Resolve(path string) Outcome {
	key := strings.TrimPrefix(path, "/")

	if url, ok := t.standard[key]; ok {
		return Outcome{URL: url, Via: SourceStandard}
	}

	for _, rule := range t.rules {
		groups := rule.regex.FindStringSubmatch(key)
		if groups == nil {
			continue
		}
		// Anchoring is the pattern author's responsibility: the regex is
		// matched against the full path exactly once, unanchored.
		return Outcome{URL: substitute(rule.regex, rule.template, groups), Via: SourcePattern}
	}

	return Outcome{}
}

// substitute expands $name and $N placeholders in the template using the
// submatch slice of a successful match. A token that names no capture group
// passes through literally, so stray dollar signs in query strings survive.
// A named group that did not participate in the match expands to the empty
// string. $0 expands to the whole match.
func substitute(regex *regexp.Regexp, template string, groups []string) string {
	var b strings.Builder
	names := regex.SubexpNames()

	for i := 0; i < len(template); {
		if template[i] != '$' {
			b.WriteByte(template[i])
			i++
			continue
		}

		i++
		start := i
		for i < len(template) && isWordByte(template[i]) {
			i++
		}
		token := template[start:i]

		if token == "" {
			b.WriteByte('$')
			continue
		}

		if isDigits(token) {
			index, err := strconv.Atoi(token)
			if err == nil && index < len(groups) {
				b.WriteString(groups[index])
				continue
			}
			b.WriteByte('$')
			b.WriteString(token)
			continue
		}

		if index := groupIndex(names, token); index >= 0 {
			b.WriteString(groups[index])
			continue
		}

		b.WriteByte('$')
		b.WriteString(token)
	}

	return b.String()
}

func groupIndex(names []string, name string) int {
	for i, candidate := range names {
		if candidate != "" && candidate == name {
			return i
		}
	}
	return -1
}

func isWordByte(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
