package jinpro

import (
	"strings"

	"github.com/sophloaf2019/jinpro/pkg/jinpro/attr"
	"github.com/sophloaf2019/jinpro/pkg/jinpro/errors"
	"github.com/sophloaf2019/jinpro/pkg/jinpro/scan"
)

// expansionState tracks recursion depth and the chain of components
// currently being expanded during one render call. It is created fresh
// per render and never shared.
type expansionState struct {
	active map[string]bool
	chain  []string
}

func newExpansionState() *expansionState {
	return &expansionState{active: make(map[string]bool)}
}

func (st *expansionState) push(name string) {
	st.active[name] = true
	st.chain = append(st.chain, name)
}

func (st *expansionState) pop() {
	name := st.chain[len(st.chain)-1]
	st.chain = st.chain[:len(st.chain)-1]
	delete(st.active, name)
}

// expand resolves component tags in text until none remain. Each pass
// finds the earliest occurrence, renders the component with its binding,
// recursively expands the rendered output (the component may itself
// contain component tags), substitutes it, and rescans the mutated text
// from the start. Lowercase-initial elements are never components and
// pass through untouched.
func (p *Processor) expand(text string, page Context, st *expansionState) (string, error) {
	for {
		tag, ok := scan.First(text)
		if !ok {
			return text, nil
		}

		// Cycle and depth guard. A component on the active ancestor
		// chain is including itself, directly or transitively.
		if st.active[tag.Name] {
			return "", errors.NewRecursion(tag.Name, st.chain)
		}
		if len(st.chain) >= p.maxDepth {
			return "", errors.NewDepthExceeded(tag.Name, p.maxDepth)
		}

		source, err := p.loader.Load(tag.Name + p.ext)
		if err != nil {
			if errors.IsMissingComponent(err) {
				// Rebuild so the Component field carries the tag name
				// with the configured extension trimmed.
				return "", errors.NewMissingComponent(tag.Name+p.ext, p.ext)
			}
			return "", err
		}

		decls, err := attr.ParseDeclaration(tag.Name, source)
		if err != nil {
			return "", err
		}

		call, err := attr.ParseCallAttributes(tag.Name, tag.AttrText, p.evalUnquoted)
		if err != nil {
			return "", err
		}

		// Inner text belongs to the caller's scope: component tags inside
		// it expand before binding, without this component on the active
		// chain, so <Card><Card/></Card> is same-name nesting rather than
		// self-inclusion. Only tags originating in the component's own
		// template body can form a cycle.
		content := strings.TrimSpace(tag.Content)
		if content != "" {
			content, err = p.expand(content, page, st)
			if err != nil {
				return "", err
			}
		}

		binding, err := p.bind(tag.Name, decls, call, content, page)
		if err != nil {
			return "", err
		}

		st.push(tag.Name)
		expanded, err := p.renderComponent(tag.Name, source, binding, page, st)
		st.pop()
		if err != nil {
			return "", err
		}

		text = text[:tag.Start] + expanded + text[tag.End:]
	}
}

// renderComponent renders a component's source with its binding and then
// expands any component tags the rendered output contains, while the
// component stays on the active chain so self-inclusion is caught.
func (p *Processor) renderComponent(name, source string, binding, page Context, st *expansionState) (string, error) {
	rendered, err := p.renderer.RenderText(source, binding)
	if err != nil {
		return "", errors.NewRender(name, err)
	}
	return p.expand(rendered, page, st)
}
