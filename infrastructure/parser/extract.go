package parser

import (
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("(?s)```(?:[a-zA-Z]+)?\\s*(.*?)\\s*```")

// codeIndicators are substrings that suggest a text fragment is source
// code rather than prose.
var codeIndicators = []string{
	"function ", "const ", "let ", "var ",
	"console.log(", "return ",
	"for ", "while ", "if ", "class ",
}

// ExtractCode pulls source code out of a text fragment. Fenced blocks
// win; otherwise the whole fragment is returned when it looks like code.
// Best effort only.
func ExtractCode(text string) (string, bool) {
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		code := strings.TrimSpace(m[1])
		if code != "" {
			return code, true
		}
	}

	trimmed := strings.TrimSpace(text)
	for _, indicator := range codeIndicators {
		if strings.Contains(trimmed, indicator) {
			return trimmed, true
		}
	}
	return "", false
}
