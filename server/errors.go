package server

import (
	"fmt"
	"html"
	"net/http"

	"github.com/sophloaf2019/jinpro/pkg/jinpro/errors"
)

// writeRenderError converts an engine error into an HTTP response. A
// missing top-level page is a 404; every other engine failure (including
// a missing component inside an existing page) is a 500. In dev mode the
// response carries the full error detail; in production it stays terse.
func writeRenderError(w http.ResponseWriter, pageName string, err error, dev bool) {
	status := http.StatusInternalServerError
	if e, ok := errors.From(err); ok && e.Class == errors.ClassMissingComponent && e.Component == pageName {
		status = http.StatusNotFound
	}

	if !dev {
		http.Error(w, http.StatusText(status), status)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<!doctype html>
<html><head><title>jinpro: render error</title></head>
<body style="font-family: monospace; padding: 2em">
<h1>Render error</h1>
<pre>%s</pre>
</body></html>
`, html.EscapeString(err.Error()))
}
