package server

import (
	"net/http"
	"path"
	"strings"

	"github.com/sophloaf2019/jinpro/pkg/jinpro"
)

// pageHandler maps request paths to page templates in the site directory
// and renders them through the component engine.
type pageHandler struct {
	srv *Server
}

func newPageHandler(s *Server) *pageHandler {
	return &pageHandler{srv: s}
}

func (h *pageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name, ok := templateName(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if entry := h.srv.pages.Get(r); entry != nil {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(entry.status)
		w.Write(entry.body)
		return
	}

	out, err := h.srv.processor.Render(name, h.pageContext(r))
	if err != nil {
		writeRenderError(w, name, err, h.srv.config.Server.Dev)
		return
	}

	body := []byte(out)
	h.srv.pages.Set(r, http.StatusOK, body)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(body)
}

// pageContext builds the top-level context for one request: query
// parameters under params.*, basic request info, and the configured meta
// values.
func (h *pageHandler) pageContext(r *http.Request) jinpro.Context {
	params := make(map[string]any)
	for key, values := range r.URL.Query() {
		if len(values) == 1 {
			params[key] = values[0]
		} else {
			params[key] = values
		}
	}
	ctx := jinpro.Context{
		"params": params,
		"request": map[string]any{
			"path":   r.URL.Path,
			"method": r.Method,
			"host":   r.Host,
		},
	}
	if h.srv.config.Meta != nil {
		ctx["meta"] = h.srv.config.Meta
	}
	return ctx
}

// templateName converts a URL path to a page template name: "/" becomes
// "index.html", "/about" becomes "about.html", "/docs/setup" becomes
// "docs/setup.html". Paths that try to escape the site directory or name
// dotfiles are rejected.
func templateName(urlPath string) (string, bool) {
	clean := path.Clean(urlPath)
	if strings.Contains(clean, "..") {
		return "", false
	}
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." {
		return "index.html", true
	}
	for _, part := range strings.Split(clean, "/") {
		if part == "" || strings.HasPrefix(part, ".") {
			return "", false
		}
	}
	if path.Ext(clean) == "" {
		clean += ".html"
	}
	return clean, true
}
