// Package moderation censors configured words in user message content
// before it reaches the message log. System messages are rendered from
// fixed templates and bypass it.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Censor masks configured words with a replacement rune. Matching runs on a
// normalized view of the text (lowercased, leet speak folded, punctuation
// and spacing stripped) so "b.a.d" still matches "bad", while masking is
// applied to the original runes.
type Censor struct {
	machine     *goahocorasick.Machine
	replacement rune
}

func NewCensor(words []string, replacement rune) (*Censor, error) {
	if len(words) == 0 {
		// No configured words; Apply becomes a passthrough.
		return &Censor{replacement: replacement}, nil
	}
	patterns := make([][]rune, len(words))
	for i, word := range words {
		patterns[i], _ = fold([]rune(word))
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, err
	}
	return &Censor{machine: machine, replacement: replacement}, nil
}

// Apply returns the content with every matched span masked. Content with no
// matches is returned unchanged.
func (c *Censor) Apply(content string) string {
	if c.machine == nil {
		return content
	}
	original := []rune(content)
	folded, positions := fold(original)
	if len(folded) == 0 {
		return content
	}

	spans := c.machine.MultiPatternSearch(folded, false)
	if len(spans) == 0 {
		return content
	}

	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(positions) {
			continue
		}
		// Mask from the first to the last original rune of the span,
		// covering any stripped separators in between.
		for i := positions[start]; i <= positions[end-1]; i++ {
			original[i] = c.replacement
		}
	}
	return string(original)
}

// fold lowercases, maps leet speak digits back to letters and drops
// punctuation, symbols and spacing. positions[i] is the index of folded
// rune i in the original text.
func fold(input []rune) (folded []rune, positions []int) {
	folded = make([]rune, 0, len(input))
	positions = make([]int, 0, len(input))
	for i, r := range input {
		r = unleet(r)
		if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
			continue
		}
		folded = append(folded, unicode.ToLower(r))
		positions = append(positions, i)
	}
	return folded, positions
}

func unleet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}
