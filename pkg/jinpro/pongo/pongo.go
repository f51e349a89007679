// Package pongo adapts the pongo2 template engine as the expression
// renderer behind the jinpro component engine. pongo2 evaluates the same
// {{ }} / {% %} syntax the original Jinja templates use, so component
// bodies, declared defaults, and the final page pass all go through it.
package pongo

import (
	"fmt"

	"github.com/flosch/pongo2/v6"

	"github.com/sophloaf2019/jinpro/pkg/jinpro"
)

// Options configures the renderer.
type Options struct {
	// SearchPaths are the template directories made available to
	// {% include %} and {% extends %}. They should match the component
	// loader's search paths so both lookups agree.
	SearchPaths []string

	// Autoescape turns on HTML autoescaping for {{ }} output. Off by
	// default: component inner text regularly carries markup (including
	// further component tags) that must survive the render verbatim.
	//
	// pongo2 stores this setting in package state, so the last Renderer
	// created wins process-wide. One Renderer per process, or identical
	// Autoescape settings across all of them.
	Autoescape bool
}

// Renderer renders template text through pongo2. It implements
// jinpro.Renderer.
type Renderer struct {
	set *pongo2.TemplateSet
}

// New creates a pongo2-backed renderer.
func New(opts Options) (*Renderer, error) {
	var loaders []pongo2.TemplateLoader
	for _, dir := range opts.SearchPaths {
		l, err := pongo2.NewLocalFileSystemLoader(dir)
		if err != nil {
			return nil, fmt.Errorf("template path %s: %w", dir, err)
		}
		loaders = append(loaders, l)
	}
	if len(loaders) == 0 {
		loaders = append(loaders, pongo2.MustNewLocalFileSystemLoader("."))
	}

	registerFilters()
	pongo2.SetAutoescape(opts.Autoescape)

	return &Renderer{set: pongo2.NewSet("jinpro", loaders...)}, nil
}

// RenderText evaluates the expressions and control flow in body against
// ctx and returns the resulting text.
func (r *Renderer) RenderText(body string, ctx jinpro.Context) (string, error) {
	tpl, err := r.set.FromString(body)
	if err != nil {
		return "", err
	}
	return tpl.Execute(pongo2.Context(ctx))
}
