package jinpro

// Context is the variable mapping supplied to one render. The engine never
// mutates a Context it is given; bindings for each component instance are
// built on a fresh copy.
type Context map[string]any

// clone returns a shallow copy of ctx with room for extra entries.
func (ctx Context) clone(extra int) Context {
	out := make(Context, len(ctx)+extra)
	for k, v := range ctx {
		out[k] = v
	}
	return out
}

// Renderer is the external template renderer the engine delegates to. It
// evaluates embedded expressions and control flow ({{ }} and {% %}) in a
// text body against a context and returns plain text. The pongo package
// provides the standard implementation.
type Renderer interface {
	RenderText(body string, ctx Context) (string, error)
}
