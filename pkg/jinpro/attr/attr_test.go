package attr

import (
	"testing"

	"github.com/sophloaf2019/jinpro/pkg/jinpro/errors"
)

func TestParseDeclaration_RequiredAndDefaults(t *testing.T) {
	source := `{# attributes content, color="blue", size="medium" #}
<button>{{ content }}</button>`

	decls, err := ParseDeclaration("Button", source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(decls) != 3 {
		t.Fatalf("expected 3 declarations, got %d", len(decls))
	}
	if decls[0].Name != "content" || !decls[0].Required() {
		t.Errorf("expected required 'content' first, got %+v", decls[0])
	}
	if decls[1].Name != "color" || decls[1].Required() {
		t.Errorf("expected optional 'color', got %+v", decls[1])
	}
	if decls[1].Default.Kind != Expr || decls[1].Default.Text != `"blue"` {
		t.Errorf("expected default expression '\"blue\"', got %+v", decls[1].Default)
	}
	if decls[2].Name != "size" || decls[2].Default.Text != `"medium"` {
		t.Errorf("expected 'size' with default '\"medium\"', got %+v", decls[2])
	}
}

func TestParseDeclaration_MissingComment(t *testing.T) {
	for _, source := range []string{
		"<button>{{ content }}</button>",
		"{{ content }}",
		"",
		"{# attrs content #}", // wrong marker keyword
		"{# attributesx #}",   // marker must be its own token
	} {
		if _, err := ParseDeclaration("Button", source); !errors.IsMissingAttributeList(err) {
			t.Errorf("source %q: expected MissingAttributeList, got %v", source, err)
		}
	}
}

func TestParseDeclaration_LeadingWhitespace(t *testing.T) {
	source := "\n\t  {# attributes title #}\n<h1>{{ title }}</h1>"
	decls, err := ParseDeclaration("Heading", source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(decls) != 1 || decls[0].Name != "title" {
		t.Errorf("expected single 'title' declaration, got %+v", decls)
	}
}

func TestParseDeclaration_EmptyList(t *testing.T) {
	decls, err := ParseDeclaration("Rule", "{# attributes #}\n<hr>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(decls) != 0 {
		t.Errorf("expected no declarations, got %+v", decls)
	}
}

func TestParseDeclaration_SyntaxErrors(t *testing.T) {
	for _, source := range []string{
		"{# attributes 9lives #}",
		"{# attributes a, a #}",
		"{# attributes a, , b #}",
		"{# attributes not-an-ident #}",
		"{# attributes a= #}",
	} {
		if _, err := ParseDeclaration("C", source); !errors.IsSyntax(err) {
			t.Errorf("source %q: expected syntax error, got %v", source, err)
		}
	}
}

func TestParseDeclaration_DefaultWithComma(t *testing.T) {
	decls, err := ParseDeclaration("List", `{# attributes items=[1, 2], sep=", " #}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(decls) != 2 {
		t.Fatalf("expected 2 declarations, got %d: %+v", len(decls), decls)
	}
	if decls[0].Default.Text != "[1, 2]" {
		t.Errorf("expected default '[1, 2]', got %q", decls[0].Default.Text)
	}
	if decls[1].Default.Text != `", "` {
		t.Errorf("expected default '\", \"', got %q", decls[1].Default.Text)
	}
}

func TestParseCallAttributes_Forms(t *testing.T) {
	attrs, err := ParseCallAttributes("Button", ` color="green" size=large non-clickable `, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %d: %+v", len(attrs), attrs)
	}
	if v := attrs["color"]; v.Kind != String || v.Text != "green" {
		t.Errorf("expected color as literal 'green', got %+v", v)
	}
	if v := attrs["size"]; v.Kind != String || v.Text != "large" {
		t.Errorf("expected unquoted size as literal 'large', got %+v", v)
	}
	if v := attrs["non_clickable"]; v.Kind != Bool || !v.Flag {
		t.Errorf("expected bare non-clickable as true, got %+v", v)
	}
}

func TestParseCallAttributes_HyphenNormalization(t *testing.T) {
	attrs, err := ParseCallAttributes("C", `active-link data-test-id="x"`, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := attrs["active_link"]; !ok {
		t.Error("expected 'active-link' to bind as 'active_link'")
	}
	if v, ok := attrs["data_test_id"]; !ok || v.Text != "x" {
		t.Errorf("expected 'data-test-id' to bind as 'data_test_id', got %+v", attrs)
	}
}

func TestParseCallAttributes_QuotedValueKeepsText(t *testing.T) {
	attrs, err := ParseCallAttributes("C", `label="Save & Close" empty=""`, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attrs["label"].Text != "Save & Close" {
		t.Errorf("expected literal quoted text, got %q", attrs["label"].Text)
	}
	if v := attrs["empty"]; v.Kind != String || v.Text != "" {
		t.Errorf("expected empty string value, got %+v", v)
	}
}

func TestParseCallAttributes_UnterminatedQuote(t *testing.T) {
	if _, err := ParseCallAttributes("C", `label="oops`, false); !errors.IsSyntax(err) {
		t.Errorf("expected syntax error for unterminated quote, got %v", err)
	}
}

func TestParseCallAttributes_EvalUnquoted(t *testing.T) {
	attrs, err := ParseCallAttributes("C", `count=items|length flag quoted="text"`, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v := attrs["count"]; v.Kind != Expr || v.Text != "items|length" {
		t.Errorf("expected unquoted value as expression, got %+v", v)
	}
	if attrs["flag"].Kind != Bool {
		t.Errorf("expected bare attribute unaffected, got %+v", attrs["flag"])
	}
	if attrs["quoted"].Kind != String {
		t.Errorf("expected quoted value to stay literal, got %+v", attrs["quoted"])
	}
}

func TestParseCallAttributes_BooleanTokens(t *testing.T) {
	attrs, err := ParseCallAttributes("C", `non_clickable=true hidden=false`, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v := attrs["non_clickable"]; v.Kind != Bool || !v.Flag {
		t.Errorf("expected non_clickable=true to bind as boolean true, got %+v", v)
	}
	if v := attrs["hidden"]; v.Kind != Bool || v.Flag {
		t.Errorf("expected hidden=false to bind as boolean false, got %+v", v)
	}
}

func TestParseCallAttributes_Empty(t *testing.T) {
	attrs, err := ParseCallAttributes("C", "   ", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(attrs) != 0 {
		t.Errorf("expected no attributes, got %+v", attrs)
	}
}

func TestNormalizeName(t *testing.T) {
	if got := NormalizeName("non-clickable"); got != "non_clickable" {
		t.Errorf("expected non_clickable, got %s", got)
	}
	if got := NormalizeName("plain"); got != "plain" {
		t.Errorf("expected plain, got %s", got)
	}
}
