// README: Candidate-substring strategies: fences, balanced scan, syntax repair.
package extract

import (
	"regexp"
	"strings"
)

var (
	fencedRe      = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	preambleRe    = regexp.MustCompile(`(?is)(?:here\s+is\s+the\s+json|json)\s*:\s*`)
	quoteReplacer = strings.NewReplacer(
		"“", `"`, "”", `"`, // curly double quotes
		"‘", `'`, "’", `'`, // curly single quotes
	)
	unquotedKeyRe   = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// candidates returns substrings to attempt parsing, in strategy order.
// open/close select the expected outer shape ('{'/'}' or '['/']').
func candidates(raw string, open, close byte) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	// 1. Direct parse of the whole text.
	add(raw)

	// 2. Fenced code blocks and explicit preamble markers.
	for _, m := range fencedRe.FindAllStringSubmatch(raw, -1) {
		add(m[1])
	}
	if loc := preambleRe.FindStringIndex(raw); loc != nil {
		rest := raw[loc[1]:]
		// A blank line ends the preamble region, matching common LLM layout.
		if cut := strings.Index(rest, "\n\n"); cut >= 0 {
			add(rest[:cut])
		}
		add(rest)
	}

	// 3. Balanced scan for the first structure of the expected shape.
	scanned, balanced := balancedScan(raw, open, close)
	if scanned != "" {
		add(scanned)

		// 4. Bounded syntax repair on the best scanned candidate.
		add(repair(scanned, balanced))
	}

	return out
}

// balancedScan finds the first open byte and walks to its matching close,
// respecting quoted strings and escapes. When the structure never closes it
// returns the tail from the opener (balanced=false) so repair can auto-close.
func balancedScan(text string, open, close byte) (sub string, balanced bool) {
	start := strings.IndexByte(text, open)
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return text[start:], false
}

// repair applies a bounded set of textual fixes to a near-JSON candidate:
// quote normalization, unquoted key quoting, trailing-comma stripping and
// auto-closing of unbalanced brackets.
func repair(s string, balanced bool) string {
	s = quoteReplacer.Replace(s)
	s = unquotedKeyRe.ReplaceAllString(s, `$1"$2":`)
	s = trailingCommaRe.ReplaceAllString(s, `$1`)
	if !balanced {
		s = autoClose(s)
	}
	return s
}

// autoClose appends the closers still open at end of input, innermost first.
func autoClose(s string) string {
	var stack []byte
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			stack = append(stack, '}')
		case c == '[':
			stack = append(stack, ']')
		case c == '}' || c == ']':
			if len(stack) > 0 && stack[len(stack)-1] == c {
				stack = stack[:len(stack)-1]
			}
		}
	}

	// Truncation mid-string: terminate the string before closing structures.
	if inString {
		s += `"`
	}
	s = strings.TrimRight(s, " \t\n\r")
	s = strings.TrimSuffix(s, ",")
	for i := len(stack) - 1; i >= 0; i-- {
		s += string(stack[i])
	}
	return s
}

// scanObjects pulls out every individually parseable object-shaped substring,
// attempting repair on each. Used by the array salvage step.
func scanObjects(text string) []map[string]any {
	var objs []map[string]any
	rest := text
	for {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			return objs
		}
		sub, balanced := balancedScan(rest[start:], '{', '}')

		parsed := false
		if obj, ok := parseObject(sub); ok {
			objs = append(objs, obj)
			parsed = true
		} else if obj, ok := parseObject(repair(sub, balanced)); ok {
			objs = append(objs, obj)
			parsed = true
		}

		switch {
		case parsed && balanced:
			rest = rest[start+len(sub):]
		case parsed:
			// Repaired candidate consumed the whole tail.
			return objs
		default:
			// Unparseable opener (stray braces): skip it, keep scanning.
			rest = rest[start+1:]
		}
	}
}
