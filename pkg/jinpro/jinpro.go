// Package jinpro expands custom component tags in HTML-like template text.
//
// A component is a template fragment invoked via a capitalized element:
//
//	<Button color="green" non-clickable>Click Me</Button>
//
// The engine loads Button.jinja, validates the call against the attribute
// list the component declares in its leading comment, binds call-site
// attributes, declared defaults, the inherited page context, and the
// reserved 'content' key (the text between the tags), renders the
// component through the external template renderer, and substitutes the
// result back into the surrounding text. Expansion repeats until no
// component tags remain, then the fully expanded text gets a final pass
// through the renderer for ordinary expression and control-flow
// evaluation.
//
// All configuration lives on a Processor instance; there is no package
// state shared between renders.
package jinpro

import (
	"fmt"
)

// DefaultMaxDepth bounds component nesting when no limit is configured.
const DefaultMaxDepth = 64

// DefaultExtension is the file extension appended to component tag names
// when loading their templates.
const DefaultExtension = ".jinja"

// Options configures a Processor.
type Options struct {
	// Loader resolves template names to source text. Required.
	Loader Loader

	// Renderer evaluates template expressions. Required.
	Renderer Renderer

	// MaxDepth bounds component nesting. Zero means DefaultMaxDepth.
	MaxDepth int

	// Extension is appended to component names when loading. Zero value
	// means DefaultExtension.
	Extension string

	// EvalUnquotedValues treats unquoted call-site attribute values as
	// renderer expressions instead of literal text.
	EvalUnquotedValues bool
}

// Processor is the component expansion engine. One Processor is safe for
// concurrent renders: all per-render state is created fresh inside Render.
type Processor struct {
	loader       Loader
	renderer     Renderer
	maxDepth     int
	ext          string
	evalUnquoted bool
}

// New creates a Processor from opts.
func New(opts Options) (*Processor, error) {
	if opts.Loader == nil {
		return nil, fmt.Errorf("jinpro: Options.Loader is required")
	}
	if opts.Renderer == nil {
		return nil, fmt.Errorf("jinpro: Options.Renderer is required")
	}
	p := &Processor{
		loader:       opts.Loader,
		renderer:     opts.Renderer,
		maxDepth:     opts.MaxDepth,
		ext:          opts.Extension,
		evalUnquoted: opts.EvalUnquotedValues,
	}
	if p.maxDepth <= 0 {
		p.maxDepth = DefaultMaxDepth
	}
	if p.ext == "" {
		p.ext = DefaultExtension
	}
	return p, nil
}

// Render loads the named template, expands every component tag in it, and
// runs the result through the external renderer with ctx. It is a drop-in
// substitute for rendering the named template directly: same template
// lookup, same output contract, with component tags resolved first.
func (p *Processor) Render(name string, ctx Context) (string, error) {
	source, err := p.loader.Load(name)
	if err != nil {
		return "", err
	}
	return p.RenderString(source, ctx)
}

// RenderString expands component tags in source and renders the result
// with ctx, without any template lookup for the top-level text.
func (p *Processor) RenderString(source string, ctx Context) (string, error) {
	if ctx == nil {
		ctx = Context{}
	}
	expanded, err := p.expand(source, ctx, newExpansionState())
	if err != nil {
		return "", err
	}
	return p.renderer.RenderText(expanded, ctx)
}
