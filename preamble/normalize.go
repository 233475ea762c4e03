// Package preamble prepares user supplied TeX preamble text for compilation.
package preamble

import (
	"fmt"
	"strings"
)

// Error reports a malformed top-level class declaration in preamble text.
type Error struct {
	msg string
}

func (e *Error) Error() string {
	return e.msg
}

// declaration keywords, legacy \documentstyle is treated exactly as the
// modern one
var classKeywords = []string{`\documentclass`, `\documentstyle`}

// Normalize removes the first top-level \documentclass or \documentstyle
// declaration from text. The declaration may carry optional bracketed options
// and must have a brace delimited argument which is allowed to span multiple
// lines and to contain nested brace groups. Everything before and after the
// removed span is preserved verbatim. Text without a declaration is returned
// unchanged, which also makes the operation idempotent.
func Normalize(text string) (string, error) {
	start, keyword := findClassKeyword(text)
	if start < 0 {
		return text, nil
	}

	pos := start + len(keyword)
	pos = skipSpace(text, pos)

	// optional [options]
	if pos < len(text) && text[pos] == '[' {
		end := strings.IndexByte(text[pos:], ']')
		if end < 0 {
			return "", &Error{msg: fmt.Sprintf("unterminated option group in %s declaration", keyword)}
		}
		pos = skipSpace(text, pos+end+1)
	}

	// mandatory {argument}, not necessarily on the same line
	if pos >= len(text) || text[pos] != '{' {
		// keyword without an argument is not a declaration we recognize
		return text, nil
	}

	depth := 0
	for i := pos; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[:start] + text[i+1:], nil
			}
		}
	}
	return "", &Error{msg: fmt.Sprintf("unbalanced brace group in %s declaration", keyword)}
}

func findClassKeyword(text string) (int, string) {
	start, keyword := -1, ""
	for _, kw := range classKeywords {
		if i := strings.Index(text, kw); i >= 0 && (start < 0 || i < start) {
			start, keyword = i, kw
		}
	}
	return start, keyword
}

func skipSpace(text string, pos int) int {
	for pos < len(text) && (text[pos] == ' ' || text[pos] == '\t' || text[pos] == '\r' || text[pos] == '\n') {
		pos++
	}
	return pos
}

// ContainsClass reports whether text has an effective (not commented out)
// class declaration.
func ContainsClass(text string) bool {
	starts := []string{
		`\documentclass{`, `\documentclass[`,
		`\documentstyle{`, `\documentstyle[`,
	}
	for _, line := range strings.Split(text, "\n") {
		for _, s := range starts {
			before, _, found := strings.Cut(line, s)
			if found && !strings.Contains(before, "%") {
				return true
			}
		}
	}
	return false
}
