package planner

import (
	"strings"
	"unicode"
)

// question holds the forms of the input text that rules match against.
type question struct {
	raw    string
	lower  string
	norm   string
	words  []string
	wordOf map[string]bool
	depots []string
}

// Normalize lower-cases q, replaces every non-alphanumeric rune with a space
// and collapses whitespace.
func Normalize(q string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, q)
	return strings.Join(strings.Fields(mapped), " ")
}

var (
	depotWords     = map[string]bool{"depot": true, "depots": true, "store": true, "stores": true}
	depotConnector = map[string]bool{",": true, "and": true, "or": true, "vs": true, "versus": true}
	dateUnitWords  = map[string]bool{
		"day": true, "days": true, "week": true, "weeks": true,
		"month": true, "months": true, "year": true, "years": true,
	}
)

// depotTokens splits raw like Normalize but keeps commas as their own token.
func depotTokens(raw string) []string {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case r == ',':
			b.WriteString(" , ")
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Fields(b.String())
}

func isNumber(w string) bool {
	if w == "" {
		return false
	}
	for _, r := range w {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// depotIDAt returns the id at toks[i] unless it is a count of days, weeks
// or months.
func depotIDAt(toks []string, i int) (string, bool) {
	if i >= len(toks) || !isNumber(toks[i]) {
		return "", false
	}
	if i+1 < len(toks) && dateUnitWords[toks[i+1]] {
		return "", false
	}
	return toks[i], true
}

// parseDepots reads "depot N" mentions. Further ids are taken only after a
// connector or a repeated depot keyword.
func parseDepots(raw string) []string {
	toks := depotTokens(raw)
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	for i := 0; i < len(toks); i++ {
		if !depotWords[toks[i]] {
			continue
		}
		id, ok := depotIDAt(toks, i+1)
		if !ok {
			continue
		}
		add(id)
		j := i + 2
		for j < len(toks) && depotConnector[toks[j]] {
			k := j + 1
			if k < len(toks) && depotWords[toks[k]] {
				k++
			}
			next, ok := depotIDAt(toks, k)
			if !ok {
				break
			}
			add(next)
			j = k + 1
		}
		i = j - 1
	}
	return ids
}

func parseQuestion(raw string) question {
	q := question{
		raw:    raw,
		lower:  strings.ToLower(raw),
		norm:   Normalize(raw),
		wordOf: make(map[string]bool),
	}
	q.words = strings.Fields(q.norm)
	for _, w := range q.words {
		q.wordOf[w] = true
	}

	q.depots = parseDepots(raw)
	return q
}

// has reports whether any of the words occurs as a whole word.
func (q question) has(words ...string) bool {
	for _, w := range words {
		if q.wordOf[w] {
			return true
		}
	}
	return false
}

// hasPrefix reports whether any word starts with one of the stems.
func (q question) hasPrefix(stems ...string) bool {
	for _, w := range q.words {
		for _, s := range stems {
			if strings.HasPrefix(w, s) {
				return true
			}
		}
	}
	return false
}

// hasPhrase reports whether any phrase occurs on word boundaries of the
// normalized text.
func (q question) hasPhrase(phrases ...string) bool {
	padded := " " + q.norm + " "
	for _, p := range phrases {
		if strings.Contains(padded, " "+p+" ") {
			return true
		}
	}
	return false
}
