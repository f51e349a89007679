package jinpro

import (
	"github.com/sophloaf2019/jinpro/pkg/jinpro/attr"
	"github.com/sophloaf2019/jinpro/pkg/jinpro/errors"
)

// bind builds the context for rendering one component instance. It starts
// from a copy of the page context (sibling components never observe each
// other's bindings), binds every declared attribute from the call site or
// its default, overlays undeclared call attributes so ad hoc attributes
// pass through to the underlying markup, and sets the reserved 'content'
// key to the tag's inner text.
//
// Default expressions are evaluated by the external renderer against the
// context built so far, in declaration order. bind is a pure function of
// its inputs.
func (p *Processor) bind(component string, decls []attr.Declaration, call map[string]attr.Value, innerText string, page Context) (Context, error) {
	if _, ok := call["content"]; ok {
		return nil, errors.NewReservedAttribute(component)
	}

	b := page.clone(len(decls) + len(call) + 1)
	b["content"] = innerText

	bound := map[string]bool{"content": true}
	for _, d := range decls {
		if d.Name == "content" {
			// Declared 'content' is always satisfied by the inner text.
			continue
		}
		bound[d.Name] = true
		if v, ok := call[d.Name]; ok {
			resolved, err := p.resolveValue(component, v, b)
			if err != nil {
				return nil, err
			}
			b[d.Name] = resolved
			continue
		}
		if d.Default != nil {
			resolved, err := p.resolveValue(component, *d.Default, b)
			if err != nil {
				return nil, err
			}
			b[d.Name] = resolved
			continue
		}
		return nil, errors.NewMissingAttribute(component, d.Name)
	}

	for name, v := range call {
		if bound[name] {
			continue
		}
		resolved, err := p.resolveValue(component, v, b)
		if err != nil {
			return nil, err
		}
		b[name] = resolved
	}

	return b, nil
}

// resolveValue converts one attribute value to its bound form. Literal
// strings and boolean flags bind directly; raw expressions are evaluated
// by the external renderer against the context so far.
func (p *Processor) resolveValue(component string, v attr.Value, ctx Context) (any, error) {
	switch v.Kind {
	case attr.Bool:
		return v.Flag, nil
	case attr.Expr:
		out, err := p.renderer.RenderText("{{ "+v.Text+" }}", ctx)
		if err != nil {
			return nil, errors.NewRender(component, err)
		}
		return out, nil
	default:
		return v.Text, nil
	}
}
