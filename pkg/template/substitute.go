package template

import "strings"

const (
	tokenOpen  = "{{"
	tokenClose = "}}"
)

// Substitute replaces every {{name}} token in text with vars[name].
//
// The text is scanned once from left to right, so a substituted value is
// never scanned again and the result does not depend on map iteration
// order. A token ends at the first "}}", so names containing braces never
// match. Tokens naming an unknown variable are copied through unchanged.
func Substitute(text string, vars map[string]string) string {
	if len(vars) == 0 || !strings.Contains(text, tokenOpen) {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(text); {
		if strings.HasPrefix(text[i:], tokenOpen) {
			rest := text[i+len(tokenOpen):]
			if end := strings.Index(rest, tokenClose); end >= 0 {
				if value, ok := vars[rest[:end]]; ok {
					b.WriteString(value)
					i += len(tokenOpen) + end + len(tokenClose)
					continue
				}
			}
		}
		b.WriteByte(text[i])
		i++
	}

	return b.String()
}
