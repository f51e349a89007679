package pongo

import (
	"bytes"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var filtersOnce sync.Once

// registerFilters installs jinpro's extra filters into pongo2's filter
// registry. pongo2 keeps filters in a package-level table, so this runs
// once per process.
func registerFilters() {
	filtersOnce.Do(func() {
		pongo2.RegisterFilter("markdown", filterMarkdown)
	})
}

var markdownConverter = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()), // Templates are trusted source
)

// filterMarkdown converts markdown text to HTML, so components can render
// markdown content: {{ content | markdown }}.
func filterMarkdown(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	var buf bytes.Buffer
	if err := markdownConverter.Convert([]byte(in.String()), &buf); err != nil {
		return nil, &pongo2.Error{Sender: "filter:markdown", OrigError: err}
	}
	return pongo2.AsSafeValue(buf.String()), nil
}
