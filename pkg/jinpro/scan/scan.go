// Package scan locates component-tag occurrences in template text.
//
// A component tag is an element whose name starts with an uppercase
// letter, in either self-closing form (<Name attrs/>) or paired form
// (<Name attrs>inner</Name>). Matching is case-sensitive; lowercase
// element names are never components. Paired-form matching tracks nested
// tags of the same name, so the inner text of <Card><Card/></Card> is the
// full nested markup rather than text truncated at the first closer.
package scan

import "strings"

// Tag is one located component-tag occurrence. Offsets index into the
// scanned text; End is exclusive, so text[Start:End] is the full
// occurrence including both tags.
type Tag struct {
	Name        string
	Start       int
	End         int
	AttrText    string // Raw attribute string from the opening tag
	Content     string // Raw inner text; empty for self-closing tags
	SelfClosing bool
}

// First returns the earliest component-tag occurrence in text. An opening
// tag with no matching closer is not an occurrence and is skipped, as is
// any '<' that does not begin a well-formed tag.
func First(text string) (Tag, bool) {
	for i := 0; i < len(text); i++ {
		if text[i] != '<' || i+1 >= len(text) || !isUpper(text[i+1]) {
			continue
		}

		name := readName(text[i+1:])
		open, selfClosing, ok := openTagEnd(text[i+1+len(name):])
		if !ok {
			continue
		}
		openEnd := i + 1 + len(name) + open // One past the '>' of the opening tag
		attrEnd := openEnd - 1
		if selfClosing {
			attrEnd-- // Exclude the '/' of '/>'
		}
		attrText := text[i+1+len(name) : attrEnd]

		if selfClosing {
			return Tag{
				Name:        name,
				Start:       i,
				End:         openEnd,
				AttrText:    attrText,
				SelfClosing: true,
			}, true
		}

		closeStart, closeEnd, ok := matchClose(text[openEnd:], name)
		if !ok {
			continue
		}
		return Tag{
			Name:     name,
			Start:    i,
			End:      openEnd + closeEnd,
			AttrText: attrText,
			Content:  text[openEnd : openEnd+closeStart],
		}, true
	}
	return Tag{}, false
}

// readName returns the leading element name of s (first byte is known to
// be an uppercase letter).
func readName(s string) string {
	n := 1
	for n < len(s) && isWord(s[n]) {
		n++
	}
	return s[:n]
}

// openTagEnd scans the attribute region of an opening tag, starting just
// after the element name. It honors double quotes, so '>' inside a quoted
// value does not end the tag. end is one past the closing '>', relative to
// the scan start. ok is false when the tag never closes.
func openTagEnd(s string) (end int, selfClosing bool, ok bool) {
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '"':
			inQuote = !inQuote
		case inQuote:
		case s[i] == '>':
			return i + 1, i > 0 && s[i-1] == '/', true
		case s[i] == '<':
			// A new tag opened before this one closed: malformed.
			return 0, false, false
		}
	}
	return 0, false, false
}

// matchClose finds the closing tag for name in s (which begins just after
// the opening tag), tracking nested same-name tags. start is the offset of
// the closer's '<'; end is one past its '>'.
func matchClose(s, name string) (start, end int, ok bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '<' {
			continue
		}

		// Closing tag for this name?
		if rest, found := strings.CutPrefix(s[i:], "</"+name); found {
			j := 0
			for j < len(rest) && (rest[j] == ' ' || rest[j] == '\t') {
				j++
			}
			if j < len(rest) && rest[j] == '>' {
				if depth == 0 {
					return i, i + len(name) + j + 3, true
				}
				depth--
				i += len(name) + j + 2
				continue
			}
		}

		// Nested opening tag of the same name?
		if rest, found := strings.CutPrefix(s[i:], "<"+name); found {
			if len(rest) > 0 && !isWord(rest[0]) {
				tagEnd, selfClosing, tagOK := openTagEnd(rest)
				if tagOK {
					if !selfClosing {
						depth++
					}
					i += len(name) + tagEnd
					continue
				}
			}
		}
	}
	return 0, 0, false
}

func isUpper(c byte) bool {
	return c >= 'A' && c <= 'Z'
}

func isWord(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
