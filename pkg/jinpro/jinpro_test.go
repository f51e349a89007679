package jinpro

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/sophloaf2019/jinpro/pkg/jinpro/errors"
)

// mapLoader serves templates from memory.
type mapLoader map[string]string

func (m mapLoader) Load(name string) (string, error) {
	src, ok := m[name]
	if !ok {
		return "", errors.NewMissingComponent(name, "")
	}
	return src, nil
}

// stubRenderer evaluates just enough template syntax for engine tests:
// {# comments #} render to nothing, {{ "literal" }} yields the literal,
// and {{ name }} looks the name up in the context. Control flow passes
// through untouched.
type stubRenderer struct{}

var (
	commentPattern = regexp.MustCompile(`(?s)\{#.*?#\}`)
	exprPattern    = regexp.MustCompile(`\{\{\s*(.+?)\s*\}\}`)
)

func (stubRenderer) RenderText(body string, ctx Context) (string, error) {
	out := commentPattern.ReplaceAllString(body, "")
	out = exprPattern.ReplaceAllStringFunc(out, func(m string) string {
		expr := strings.TrimSpace(m[2 : len(m)-2])
		if strings.HasPrefix(expr, `"`) && strings.HasSuffix(expr, `"`) && len(expr) >= 2 {
			return expr[1 : len(expr)-1]
		}
		if v, ok := ctx[expr]; ok {
			return fmt.Sprint(v)
		}
		return ""
	})
	return out, nil
}

func newTestProcessor(t *testing.T, components mapLoader, opts ...func(*Options)) *Processor {
	t.Helper()
	o := Options{Loader: components, Renderer: stubRenderer{}}
	for _, f := range opts {
		f(&o)
	}
	p, err := New(o)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestNew_RequiresLoaderAndRenderer(t *testing.T) {
	if _, err := New(Options{Renderer: stubRenderer{}}); err == nil {
		t.Error("expected error without loader")
	}
	if _, err := New(Options{Loader: mapLoader{}}); err == nil {
		t.Error("expected error without renderer")
	}
}

func TestRender_SimpleComponent(t *testing.T) {
	p := newTestProcessor(t, mapLoader{
		"page.html":     `<h1>Page</h1><Greeting name="Ada"/>`,
		"Greeting.jinja": "{# attributes name #}\n<p>Hello {{ name }}!</p>",
	})
	out, err := p.Render("page.html", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "<h1>Page</h1>\n<p>Hello Ada!</p>" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestRender_ContentBinding(t *testing.T) {
	p := newTestProcessor(t, mapLoader{
		"Card.jinja": "{# attributes content #}<div class=\"card\">{{ content }}</div>",
	})
	out, err := p.RenderString(`<Card>  Hello  </Card>`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `<div class="card">Hello</div>` {
		t.Errorf("expected trimmed content binding, got %q", out)
	}
}

func TestRender_MissingComponent(t *testing.T) {
	p := newTestProcessor(t, mapLoader{})
	_, err := p.RenderString(`<Nope/>`, nil)
	if !errors.IsMissingComponent(err) {
		t.Fatalf("expected MissingComponent, got %v", err)
	}
	if !strings.Contains(err.Error(), "Nope.jinja") {
		t.Errorf("error should name the missing file: %v", err)
	}
}

func TestRender_MissingComponentCustomExtension(t *testing.T) {
	p := newTestProcessor(t, mapLoader{}, func(o *Options) { o.Extension = ".tpl" })
	_, err := p.RenderString(`<Nope/>`, nil)
	if !errors.IsMissingComponent(err) {
		t.Fatalf("expected MissingComponent, got %v", err)
	}
	e, ok := errors.From(err)
	if !ok {
		t.Fatalf("expected *errors.Error, got %T", err)
	}
	if e.Component != "Nope" {
		t.Errorf("Component = %q, want extension trimmed", e.Component)
	}
	if !strings.Contains(err.Error(), "Nope.tpl") {
		t.Errorf("error should name the searched file: %v", err)
	}
}

func TestRender_MissingAttributeList(t *testing.T) {
	p := newTestProcessor(t, mapLoader{
		"Bare.jinja": "<p>no declaration</p>",
	})
	_, err := p.RenderString(`<Bare/>`, nil)
	if !errors.IsMissingAttributeList(err) {
		t.Fatalf("expected MissingAttributeList, got %v", err)
	}
}

func TestRender_MissingRequiredAttribute(t *testing.T) {
	p := newTestProcessor(t, mapLoader{
		"Badge.jinja": "{# attributes label, kind #}<span>{{ label }}</span>",
	})
	_, err := p.RenderString(`<Badge label="new"/>`, nil)
	if !errors.IsMissingAttribute(err) {
		t.Fatalf("expected MissingAttributeInCall, got %v", err)
	}
	var e *errors.Error
	if !asEngineError(err, &e) {
		t.Fatalf("expected *errors.Error, got %T", err)
	}
	if e.Component != "Badge" || e.Attribute != "kind" {
		t.Errorf("error should identify component and attribute, got %+v", e)
	}
}

func TestRender_ReservedContentAttribute(t *testing.T) {
	p := newTestProcessor(t, mapLoader{
		"Card.jinja": "{# attributes content #}<div>{{ content }}</div>",
	})
	for _, call := range []string{
		`<Card content="x">y</Card>`,
		`<Card content>y</Card>`,
	} {
		if _, err := p.RenderString(call, nil); !errors.IsReservedAttribute(err) {
			t.Errorf("call %q: expected ReservedAttributeError, got %v", call, err)
		}
	}
}

func TestRender_DefaultsApplied(t *testing.T) {
	p := newTestProcessor(t, mapLoader{
		"Button.jinja": `{# attributes content, color="blue" #}<button class="btn-{{ color }}">{{ content }}</button>`,
	})
	out, err := p.RenderString(`<Button>Go</Button>`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `<button class="btn-blue">Go</button>` {
		t.Errorf("default not applied: %q", out)
	}

	out, err = p.RenderString(`<Button color="red">Go</Button>`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `<button class="btn-red">Go</button>` {
		t.Errorf("call value should win over default: %q", out)
	}
}

func TestRender_ContextInheritance(t *testing.T) {
	p := newTestProcessor(t, mapLoader{
		"Hello.jinja": "{# attributes #}<p>{{ name }}</p>",
	})
	out, err := p.RenderString(`<Hello/>`, Context{"name": "Ada"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "<p>Ada</p>" {
		t.Errorf("page context not inherited: %q", out)
	}
}

func TestRender_CallAttributeShadowsPageContext(t *testing.T) {
	p := newTestProcessor(t, mapLoader{
		"Hello.jinja": "{# attributes name #}<p>{{ name }}</p>",
	})
	out, err := p.RenderString(`<Hello name="Grace"/>`, Context{"name": "Ada"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "<p>Grace</p>" {
		t.Errorf("call attribute should shadow page context: %q", out)
	}
}

func TestRender_UndeclaredAttributesPassThrough(t *testing.T) {
	p := newTestProcessor(t, mapLoader{
		"Input.jinja": `{# attributes name #}<input name="{{ name }}" data-extra="{{ extra }}">`,
	})
	out, err := p.RenderString(`<Input name="q" extra="42"/>`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `<input name="q" data-extra="42">` {
		t.Errorf("undeclared attribute did not pass through: %q", out)
	}
}

func TestRender_HyphenNormalizationEquivalence(t *testing.T) {
	p := newTestProcessor(t, mapLoader{
		"Flag.jinja": "{# attributes #}[{{ non_clickable }}]",
	})
	bare, err := p.RenderString(`<Flag non-clickable/>`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	explicit, err := p.RenderString(`<Flag non_clickable=true/>`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bare != explicit {
		t.Errorf("bindings differ: %q vs %q", bare, explicit)
	}
	if bare != "[true]" {
		t.Errorf("expected boolean true binding, got %q", bare)
	}
}

func TestRender_NestedComponents(t *testing.T) {
	p := newTestProcessor(t, mapLoader{
		"Outer.jinja": "{# attributes content #}<section>{{ content }}</section>",
		"Inner.jinja": "{# attributes #}<i/>",
	})
	out, err := p.RenderString(`<Outer><Inner/><Inner/></Outer>`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "<section><i/><i/></section>" {
		t.Errorf("nested components not expanded: %q", out)
	}
}

func TestRender_SameNameNesting(t *testing.T) {
	p := newTestProcessor(t, mapLoader{
		"Card.jinja": "{# attributes content #}<div>{{ content }}</div>",
	})
	out, err := p.RenderString(`<Card>outer <Card>inner</Card> tail</Card>`, nil)
	if err != nil {
		t.Fatalf("same-name nesting should render, got %v", err)
	}
	if out != `<div>outer <div>inner</div> tail</div>` {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestRender_SameNameNestingThreeDeep(t *testing.T) {
	p := newTestProcessor(t, mapLoader{
		"Box.jinja": "{# attributes content #}[{{ content }}]",
	})
	out, err := p.RenderString(`<Box>a <Box>b <Box>c</Box></Box></Box>`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `[a [b [c]]]` {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestRender_ComponentContainingComponent(t *testing.T) {
	p := newTestProcessor(t, mapLoader{
		"Page.jinja":   "{# attributes #}<Header title=\"Home\"/>",
		"Header.jinja": "{# attributes title #}<h1>{{ title }}</h1>",
	})
	out, err := p.RenderString(`<Page/>`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "<h1>Home</h1>" {
		t.Errorf("component within component not expanded: %q", out)
	}
}

func TestExpand_Idempotence(t *testing.T) {
	p := newTestProcessor(t, mapLoader{
		"Chip.jinja": "{# attributes content #}<span>{{ content }}</span>",
	})
	once, err := p.expand(`a <Chip>x</Chip> b`, Context{}, newExpansionState())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	twice, err := p.expand(once, Context{}, newExpansionState())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if once != twice {
		t.Errorf("expansion is not idempotent: %q vs %q", once, twice)
	}
}

func TestRender_DirectCycle(t *testing.T) {
	p := newTestProcessor(t, mapLoader{
		"Loop.jinja": "{# attributes #}<Loop/>",
	})
	_, err := p.RenderString(`<Loop/>`, nil)
	if !errors.IsRecursion(err) {
		t.Fatalf("expected RecursionError, got %v", err)
	}
	if !strings.Contains(err.Error(), "Loop > Loop") {
		t.Errorf("error should show the expansion chain: %v", err)
	}
}

func TestRender_MutualCycle(t *testing.T) {
	p := newTestProcessor(t, mapLoader{
		"Ping.jinja": "{# attributes #}<Pong/>",
		"Pong.jinja": "{# attributes #}<Ping/>",
	})
	_, err := p.RenderString(`<Ping/>`, nil)
	if !errors.IsRecursion(err) {
		t.Fatalf("expected RecursionError for mutual inclusion, got %v", err)
	}
}

func TestRender_DepthLimit(t *testing.T) {
	p := newTestProcessor(t, mapLoader{
		"A.jinja": "{# attributes #}<B/>",
		"B.jinja": "{# attributes #}<C/>",
		"C.jinja": "{# attributes #}<D/>",
		"D.jinja": "{# attributes #}done",
	}, func(o *Options) { o.MaxDepth = 2 })
	_, err := p.RenderString(`<A/>`, nil)
	if !errors.IsRecursion(err) {
		t.Fatalf("expected depth error, got %v", err)
	}
}

func TestRender_SiblingsDoNotShareBindings(t *testing.T) {
	p := newTestProcessor(t, mapLoader{
		"Tag.jinja": "{# attributes label=\"none\" #}[{{ label }}]",
	})
	out, err := p.RenderString(`<Tag label="a"/><Tag/>`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "[a][none]" {
		t.Errorf("sibling observed another sibling's binding: %q", out)
	}
}

func TestRender_LowercaseTagsUntouched(t *testing.T) {
	p := newTestProcessor(t, mapLoader{})
	out, err := p.RenderString(`<div><span>hi</span></div>`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `<div><span>hi</span></div>` {
		t.Errorf("lowercase markup altered: %q", out)
	}
}

// asEngineError walks the error chain looking for a *errors.Error.
func asEngineError(err error, target **errors.Error) bool {
	for err != nil {
		if e, ok := err.(*errors.Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
