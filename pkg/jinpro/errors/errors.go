// Package errors provides structured error types for the jinpro component
// engine.
//
// Every failure during component expansion is reported as a *Error carrying
// an error class, the component involved, and (where relevant) the attribute
// that triggered the failure. Errors are fatal to the render that produced
// them; nothing in the engine retries or recovers.
package errors

import (
	"fmt"
	"strings"
)

// Class categorizes expansion errors for programmatic handling.
type Class string

const (
	ClassMissingComponent     Class = "missing-component"      // No template file for a component tag
	ClassMissingAttributeList Class = "missing-attribute-list" // Component lacks the {# attributes ... #} comment
	ClassMissingAttribute     Class = "missing-attribute"      // Call site omits a required attribute
	ClassReservedAttribute    Class = "reserved-attribute"     // Call site supplies 'content' explicitly
	ClassRecursion            Class = "recursion"              // Self-inclusion or depth limit exceeded
	ClassSyntax               Class = "syntax"                 // Malformed declaration or call attributes
	ClassRender               Class = "render"                 // The underlying template renderer failed
)

// Error represents any failure raised while expanding component tags.
type Error struct {
	Class     Class
	Message   string
	Component string   // Component tag name, if known
	Attribute string   // Attribute name, for attribute-related classes
	Hints     []string // Suggestions for fixing
	Cause     error    // Wrapped underlying error, if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	if e.Component != "" {
		sb.WriteString("component '")
		sb.WriteString(e.Component)
		sb.WriteString("': ")
	}
	sb.WriteString(e.Message)
	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}
	return sb.String()
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewMissingComponent reports a template file that no configured folder
// contains. The message names the file a user would need to create; ext
// is the configured component extension, trimmed from the file name to
// form the Component field. Loaders that resolve plain file names rather
// than component tags pass ext as "".
func NewMissingComponent(file, ext string) *Error {
	component := file
	if ext != "" {
		component = strings.TrimSuffix(file, ext)
	}
	return &Error{
		Class:     ClassMissingComponent,
		Component: component,
		Message:   fmt.Sprintf("'%s' not found in any configured template folder", file),
	}
}

// NewMissingAttributeList reports a component template whose first construct
// is not the required attribute-list comment.
func NewMissingAttributeList(component string) *Error {
	return &Error{
		Class:     ClassMissingAttributeList,
		Component: component,
		Message:   "missing an attribute list in the required format",
		Hints:     []string{"the first construct must be a comment like {# attributes name, color=\"blue\" #}"},
	}
}

// NewMissingAttribute reports a call site that omits a required attribute.
func NewMissingAttribute(component, attribute string) *Error {
	return &Error{
		Class:     ClassMissingAttribute,
		Component: component,
		Attribute: attribute,
		Message:   fmt.Sprintf("requires attribute '%s' when it is called", attribute),
	}
}

// NewReservedAttribute reports a call site that supplies the reserved
// 'content' attribute explicitly.
func NewReservedAttribute(component string) *Error {
	return &Error{
		Class:     ClassReservedAttribute,
		Component: component,
		Attribute: "content",
		Message:   "reserved attribute 'content' supplied in call",
		Hints:     []string{"'content' is bound to the text between the tags; rename the attribute to 'text', 'material', or 'contents'"},
	}
}

// NewRecursion reports a component that directly or transitively includes
// itself. The chain lists the active ancestor components, outermost first.
func NewRecursion(component string, chain []string) *Error {
	return &Error{
		Class:     ClassRecursion,
		Component: component,
		Message:   fmt.Sprintf("includes itself (expansion chain: %s > %s)", strings.Join(chain, " > "), component),
	}
}

// NewDepthExceeded reports an expansion that ran past the configured
// maximum component depth.
func NewDepthExceeded(component string, max int) *Error {
	return &Error{
		Class:     ClassRecursion,
		Component: component,
		Message:   fmt.Sprintf("expansion exceeded the maximum component depth of %d", max),
	}
}

// NewSyntax reports a malformed attribute declaration or call-site
// attribute string.
func NewSyntax(component, message string) *Error {
	return &Error{
		Class:     ClassSyntax,
		Component: component,
		Message:   message,
	}
}

// NewRender wraps a failure from the underlying template renderer.
func NewRender(component string, cause error) *Error {
	return &Error{
		Class:     ClassRender,
		Component: component,
		Message:   fmt.Sprintf("render failed: %v", cause),
		Cause:     cause,
	}
}

// From extracts the *Error from err's chain, if there is one.
func From(err error) (*Error, bool) {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}

// classOf extracts the Class from err, or "" if err is not a *Error.
func classOf(err error) Class {
	if e, ok := From(err); ok {
		return e.Class
	}
	return ""
}

// IsMissingComponent reports whether err is a missing-component error.
func IsMissingComponent(err error) bool { return classOf(err) == ClassMissingComponent }

// IsMissingAttributeList reports whether err is a missing-attribute-list error.
func IsMissingAttributeList(err error) bool { return classOf(err) == ClassMissingAttributeList }

// IsMissingAttribute reports whether err is a missing-required-attribute error.
func IsMissingAttribute(err error) bool { return classOf(err) == ClassMissingAttribute }

// IsReservedAttribute reports whether err is a reserved-attribute error.
func IsReservedAttribute(err error) bool { return classOf(err) == ClassReservedAttribute }

// IsRecursion reports whether err is a recursion or depth error.
func IsRecursion(err error) bool { return classOf(err) == ClassRecursion }

// IsSyntax reports whether err is an attribute-syntax error.
func IsSyntax(err error) bool { return classOf(err) == ClassSyntax }
