package tui

import (
	"github.com/aretw0/fable/pkg/domain"
	"github.com/aretw0/fable/pkg/runner"
	"github.com/muesli/termenv"
)

var ansiColors = map[domain.ColorTag]termenv.ANSIColor{
	domain.ColorRed:    termenv.ANSIRed,
	domain.ColorGreen:  termenv.ANSIGreen,
	domain.ColorYellow: termenv.ANSIYellow,
	domain.ColorBlue:   termenv.ANSIBlue,
	domain.ColorCyan:   termenv.ANSICyan,
	domain.ColorPurple: termenv.ANSIMagenta,
	domain.ColorWhite:  termenv.ANSIWhite,
}

// NewColorFunc styles spans for a terminal with the given profile.
// overrides maps color names to hex values ("#ff8800"); names outside the
// built-in palette need an override to be colored. With the Ascii profile
// text is returned unchanged.
func NewColorFunc(profile termenv.Profile, overrides map[string]string) runner.ColorFunc {
	if profile == termenv.Ascii {
		return func(_ domain.ColorTag, text string) string { return text }
	}

	colors := make(map[domain.ColorTag]termenv.Color, len(ansiColors)+len(overrides))
	for tag, c := range ansiColors {
		colors[tag] = profile.Convert(c)
	}
	for name, hex := range overrides {
		if c := profile.Color(hex); c != nil {
			colors[domain.ColorTag(name)] = c
		}
	}

	return func(tag domain.ColorTag, text string) string {
		c, ok := colors[tag]
		if !ok {
			return text
		}
		return termenv.String(text).Foreground(c).String()
	}
}

// DetectProfile returns the color profile of stdout, honouring NO_COLOR and
// CLICOLOR_FORCE.
func DetectProfile(noColor bool) termenv.Profile {
	if noColor {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}
