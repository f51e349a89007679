// Package attr parses component attribute declarations and call-site
// attribute strings.
//
// A component template declares its attributes in a leading Jinja comment:
//
//	{# attributes content, color="blue", size="medium" #}
//
// Bare names are required; names with '=' carry a default expression that
// the template renderer evaluates against the binding context. Call sites
// supply attributes in HTML form, where a bare attribute binds to boolean
// true and hyphens in names normalize to underscores:
//
//	<Button color="green" non-clickable>Click Me</Button>
package attr

import (
	"fmt"
	"strings"

	"github.com/sophloaf2019/jinpro/pkg/jinpro/errors"
)

// declarationMarker is the keyword that opens an attribute-list comment.
const declarationMarker = "attributes"

// ValueKind discriminates the loosely typed attribute values.
type ValueKind int

const (
	String ValueKind = iota // Literal text, bound verbatim
	Bool                    // Bare attribute, bound as boolean
	Expr                    // Raw expression, evaluated by the renderer
)

// Value is one attribute value: a literal string, a boolean flag, or a raw
// expression for the renderer to evaluate.
type Value struct {
	Kind ValueKind
	Text string // Literal text or raw expression source
	Flag bool   // Set for Kind == Bool
}

// StringValue returns a literal string value.
func StringValue(s string) Value { return Value{Kind: String, Text: s} }

// BoolValue returns a boolean flag value.
func BoolValue(b bool) Value { return Value{Kind: Bool, Flag: b} }

// ExprValue returns a raw expression value.
func ExprValue(s string) Value { return Value{Kind: Expr, Text: s} }

// Declaration is one entry in a component's attribute list.
type Declaration struct {
	Name    string
	Default *Value // nil when the attribute is required
}

// Required reports whether a call site must supply this attribute.
func (d Declaration) Required() bool { return d.Default == nil }

// NormalizeName rewrites hyphens to underscores so HTML-style attribute
// names become valid binding identifiers.
func NormalizeName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// ParseDeclaration parses the attribute list of a component's source text.
// The first construct of the source must be a comment whose first token is
// the marker keyword; its absence is a MissingAttributeList error for the
// named component. Malformed entries are syntax errors.
func ParseDeclaration(component, source string) ([]Declaration, error) {
	body, ok := leadingComment(source)
	if !ok {
		return nil, errors.NewMissingAttributeList(component)
	}
	body = strings.TrimSpace(body)
	rest, ok := strings.CutPrefix(body, declarationMarker)
	if !ok || (rest != "" && !isSpace(rest[0])) {
		return nil, errors.NewMissingAttributeList(component)
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return nil, nil
	}

	var decls []Declaration
	seen := make(map[string]bool)
	for _, entry := range splitTopLevel(rest, ',') {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			return nil, errors.NewSyntax(component, "empty entry in attribute list")
		}
		name, def, hasDefault := cutUnquoted(entry, '=')
		name = strings.TrimSpace(name)
		if !isIdentifier(name) {
			return nil, errors.NewSyntax(component, fmt.Sprintf("attribute list entry '%s' is not a valid attribute name", name))
		}
		if seen[name] {
			return nil, errors.NewSyntax(component, fmt.Sprintf("attribute '%s' declared more than once", name))
		}
		seen[name] = true

		d := Declaration{Name: name}
		if hasDefault {
			def = strings.TrimSpace(def)
			if def == "" {
				return nil, errors.NewSyntax(component, fmt.Sprintf("attribute '%s' has an empty default", name))
			}
			v := ExprValue(def)
			d.Default = &v
		}
		decls = append(decls, d)
	}
	return decls, nil
}

// ParseCallAttributes parses the raw attribute string of a component call
// into a name-to-value mapping. Names are normalized (hyphens become
// underscores) before insertion. A bare name binds to boolean true; a
// quoted value binds its literal text; an unquoted value binds as a
// boolean for the tokens 'true' and 'false', otherwise as a literal
// string, or as a raw expression when evalUnquoted is set.
func ParseCallAttributes(component, raw string, evalUnquoted bool) (map[string]Value, error) {
	attrs := make(map[string]Value)
	i := 0
	for i < len(raw) {
		if isSpace(raw[i]) {
			i++
			continue
		}

		start := i
		for i < len(raw) && isNameByte(raw[i]) {
			i++
		}
		name := raw[start:i]
		if name == "" {
			return nil, errors.NewSyntax(component, fmt.Sprintf("unexpected character '%c' in attribute string", raw[i]))
		}
		name = NormalizeName(name)

		// Bare attribute: no '=' follows.
		if i >= len(raw) || raw[i] != '=' {
			attrs[name] = BoolValue(true)
			continue
		}
		i++ // consume '='

		if i < len(raw) && raw[i] == '"' {
			i++
			end := strings.IndexByte(raw[i:], '"')
			if end < 0 {
				return nil, errors.NewSyntax(component, fmt.Sprintf("unterminated quote in value of attribute '%s'", name))
			}
			attrs[name] = StringValue(raw[i : i+end])
			i += end + 1
			continue
		}

		start = i
		for i < len(raw) && !isSpace(raw[i]) {
			i++
		}
		attrs[name] = coerceUnquoted(raw[start:i], evalUnquoted)
	}
	return attrs, nil
}

// coerceUnquoted converts an unquoted value token. 'true' and 'false'
// become booleans so name=true binds the same as the bare name form;
// everything else is opaque literal text, or a raw expression when
// evalUnquoted is set.
func coerceUnquoted(token string, evalUnquoted bool) Value {
	switch {
	case token == "true":
		return BoolValue(true)
	case token == "false":
		return BoolValue(false)
	case evalUnquoted:
		return ExprValue(token)
	default:
		return StringValue(token)
	}
}

// leadingComment returns the body of the comment that opens the source
// text, skipping leading whitespace. ok is false when the first construct
// is not a comment.
func leadingComment(source string) (body string, ok bool) {
	s := strings.TrimLeft(source, " \t\r\n")
	if !strings.HasPrefix(s, "{#") {
		return "", false
	}
	end := strings.Index(s, "#}")
	if end < 0 {
		return "", false
	}
	return s[2:end], true
}

// splitTopLevel splits s on sep, ignoring separators inside double quotes
// or inside bracket pairs so default expressions like [1, 2] survive.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	inQuote := false
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// cutUnquoted splits s at the first occurrence of sep outside double
// quotes.
func cutUnquoted(s string, sep byte) (before, after string, found bool) {
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '"':
			inQuote = !inQuote
		case s[i] == sep && !inQuote:
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func isNameByte(c byte) bool {
	return c == '-' || c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
