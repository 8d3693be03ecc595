package prompt

import (
	"strings"
	"unicode/utf8"
)

// Priority ranks a prompt fragment for truncation.
type Priority int

const (
	Essential Priority = iota
	Important
	Optional
)

func (p Priority) String() string {
	switch p {
	case Essential:
		return "essential"
	case Important:
		return "important"
	default:
		return "optional"
	}
}

// Fragment is one sentence of a prompt with its truncation priority.
type Fragment struct {
	Text     string
	Priority Priority
}

const (
	sentenceSep = ". "
	ellipsis    = "..."
	// minEllipsisRoom is the least budget worth spending on a shortened
	// essential sentence.
	minEllipsisRoom = 20
)

// Classify assigns a priority to a sentence using the vocabulary keywords.
func (v *Vocabulary) Classify(sentence string) Priority {
	lower := strings.ToLower(sentence)
	if containsAny(lower, v.EssentialKeywords) {
		return Essential
	}
	if containsAny(lower, v.ImportantKeywords) {
		return Important
	}
	return Optional
}

// Split breaks a period-delimited prompt into classified fragments, in order.
func (v *Vocabulary) Split(prompt string) []Fragment {
	var out []Fragment
	for _, sentence := range strings.Split(prompt, sentenceSep) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		out = append(out, Fragment{Text: sentence, Priority: v.Classify(sentence)})
	}
	return out
}

// Truncate shortens prompt to at most max bytes. Essential sentences go in
// first, then important, then optional ones, each group in original order.
// The last essential sentence that does not fit is cut with an ellipsis when
// at least minEllipsisRoom bytes remain.
func (v *Vocabulary) Truncate(prompt string, max int) string {
	if len(prompt) <= max {
		return prompt
	}
	return Assemble(v.Split(prompt), max)
}

// Assemble joins fragments by priority within a budget of max bytes.
func Assemble(fragments []Fragment, max int) string {
	var (
		parts  []string
		length int
	)
	sep := func() int {
		if len(parts) == 0 {
			return 0
		}
		return len(sentenceSep)
	}
	fits := func(s string) bool {
		if length+sep()+len(s) > max {
			return false
		}
		length += sep() + len(s)
		parts = append(parts, s)
		return true
	}

	for _, f := range byPriority(fragments, Essential) {
		if fits(f.Text) {
			continue
		}
		room := max - length - sep()
		if room >= minEllipsisRoom {
			fits(clip(f.Text, room-len(ellipsis)) + ellipsis)
		}
		break
	}
	for _, f := range byPriority(fragments, Important) {
		if !fits(f.Text) {
			break
		}
	}
	for _, f := range byPriority(fragments, Optional) {
		if !fits(f.Text) {
			break
		}
	}

	result := strings.Join(parts, sentenceSep)
	if result != "" && !strings.HasSuffix(result, ".") && len(result) < max-1 {
		result += "."
	}
	return result
}

func byPriority(fragments []Fragment, p Priority) []Fragment {
	var out []Fragment
	for _, f := range fragments {
		if f.Priority == p {
			out = append(out, f)
		}
	}
	return out
}

// clip cuts s to at most n bytes without splitting a rune.
func clip(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return strings.TrimRight(s[:n], " ,")
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
