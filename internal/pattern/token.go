package pattern

import (
	"regexp"
	"strings"
	"unicode"
)

// tokenExpr builds a regular expression matching source as a token
// sequence. Word runs and punctuation are matched literally, whitespace in
// the source requires at least one whitespace character, and any amount of
// whitespace is allowed between adjacent tokens. ASCII word characters at
// either end get a \b anchor.
func tokenExpr(source string) string {
	runes := []rune(strings.TrimSpace(source))
	if len(runes) == 0 {
		return ""
	}

	var b strings.Builder
	prevToken := false
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			for i < len(runes) && unicode.IsSpace(runes[i]) {
				i++
			}
			b.WriteString(`\s+`)
			prevToken = false
		case isWordRune(r):
			j := i
			for j < len(runes) && isWordRune(runes[j]) {
				j++
			}
			if prevToken {
				b.WriteString(`\s*`)
			}
			b.WriteString(regexp.QuoteMeta(string(runes[i:j])))
			prevToken = true
			i = j
		default:
			if prevToken {
				b.WriteString(`\s*`)
			}
			b.WriteString(regexp.QuoteMeta(string(r)))
			prevToken = true
			i++
		}
	}

	expr := b.String()
	if isASCIIWord(runes[0]) {
		expr = `\b` + expr
	}
	if isASCIIWord(runes[len(runes)-1]) {
		expr += `\b`
	}
	return expr
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// \b in RE2 only knows ASCII word characters.
func isASCIIWord(r rune) bool {
	return r < unicode.MaxASCII && isWordRune(r)
}
