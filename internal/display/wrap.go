package display

import (
	"regexp"
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

const DefaultWidth = 55

// colorCode matches the host's two character formatting codes, e.g. "&e".
var colorCode = regexp.MustCompile(`&[0-9a-fk-orA-FK-OR]`)

// Wrap word-wraps text to DefaultWidth. Formatting codes count toward the width.
func Wrap(text string) string {
	return WrapWidth(text, DefaultWidth)
}

// WrapWidth word-wraps every line of text to width, carrying the last formatting code
// onto continuation lines so wrapped text keeps its color.
func WrapWidth(text string, width int) string {
	if width <= 0 {
		return text
	}

	var out []string
	for _, line := range strings.Split(text, "\n") {
		code := ""
		for i, part := range strings.Split(wordwrap.String(line, width), "\n") {
			if i > 0 && code != "" && !strings.HasPrefix(part, "&") {
				part = code + part
			}
			if codes := colorCode.FindAllString(part, -1); len(codes) > 0 {
				code = codes[len(codes)-1]
			}
			out = append(out, part)
		}
	}
	return strings.Join(out, "\n")
}

// StripCodes removes formatting codes, for text written to logs.
func StripCodes(text string) string {
	return colorCode.ReplaceAllString(text, "")
}
