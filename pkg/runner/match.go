package runner

import (
	"strconv"
	"strings"

	"github.com/aretw0/fable/pkg/adventure"
	"github.com/aretw0/fable/pkg/domain"
)

// MatchOption maps reader input to a 0-based option index. The input may be
// the option's 1-based number, its label (compared after
// adventure.Normalize) or its destination as written in the story.
// Failing those, the options' keywords are tried in order: a plain keyword
// matches when it contains the input, an "@name" keyword when the input is
// a word of that list.
func MatchOption(input string, options []domain.Option) (int, bool) {
	input = strings.TrimSpace(input)
	if n, err := strconv.Atoi(input); err == nil {
		if n >= 1 && n <= len(options) {
			return n - 1, true
		}
		return 0, false
	}

	norm := adventure.Normalize(input)
	if norm == "" {
		return 0, false
	}
	for i, opt := range options {
		if adventure.Normalize(opt.Label) == norm || opt.Destination.String() == input {
			return i, true
		}
	}
	for i, opt := range options {
		if matchKeywords(norm, opt.Keywords) {
			return i, true
		}
	}
	return 0, false
}

func matchKeywords(norm string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.HasPrefix(kw, "@") {
			if adventure.InVocabulary(kw, norm) {
				return true
			}
			continue
		}
		if strings.Contains(adventure.Normalize(kw), norm) {
			return true
		}
	}
	return false
}
