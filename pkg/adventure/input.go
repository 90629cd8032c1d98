package adventure

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/fable/pkg/domain"
	"github.com/caarlos0/env/v11"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultMaxInputSize is the longest reader line accepted, in bytes.
const DefaultMaxInputSize = 4096

// EnvMaxInputSize overrides DefaultMaxInputSize.
const EnvMaxInputSize = "FABLE_MAX_INPUT_SIZE"

// InputLimits bounds a single line of reader input.
type InputLimits struct {
	MaxSize int `env:"MAX_INPUT_SIZE"`
}

// CurrentLimits reads InputLimits from the environment. Unset, invalid or
// non-positive values fall back to the defaults.
func CurrentLimits() InputLimits {
	var l InputLimits
	if err := env.ParseWithOptions(&l, env.Options{Prefix: "FABLE_"}); err != nil || l.MaxSize <= 0 {
		l.MaxSize = DefaultMaxInputSize
	}
	return l
}

// Sanitize is the first step every reader line goes through. It rejects
// oversized lines and invalid UTF-8 with a *domain.InputError, drops
// control characters (terminal escapes, NUL, BEL) and trims the result.
// The returned text keeps its case and punctuation; Normalize is the
// second step, used for matching.
func Sanitize(line string) (string, error) {
	if limit := CurrentLimits().MaxSize; len(line) > limit {
		return "", &domain.InputError{Reason: fmt.Sprintf("%d bytes, the limit is %d", len(line), limit)}
	}
	if !utf8.ValidString(line) {
		return "", &domain.InputError{Reason: "not valid UTF-8"}
	}
	return strings.TrimSpace(strings.Map(dropControl, line)), nil
}

// Normalize keeps letters, digits and spaces, trims the result and
// lower-cases it. Two inputs that normalize the same mean the same thing.
func Normalize(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(strings.Map(keepWord, s)))
}

func dropControl(r rune) rune {
	if unicode.IsControl(r) && r != '\t' {
		return -1
	}
	return r
}

func keepWord(r rune) rune {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
		return r
	}
	return -1
}
