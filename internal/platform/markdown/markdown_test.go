package markdown

import (
	"strings"
	"testing"
)

func TestParseRenderRoundTrip(t *testing.T) {
	t.Parallel()
	doc := Document{Meta: map[string]any{"id": "s1", "net_worth": 1250}, Body: "# Session\n\nnotes\n"}
	rendered, err := doc.Render()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	parsed, err := Parse(rendered)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Meta["id"] != "s1" || parsed.Meta["net_worth"] != 1250 {
		t.Fatalf("unexpected meta: %#v", parsed.Meta)
	}
	if parsed.Body != "\n# Session\n\nnotes\n" {
		t.Fatalf("unexpected body: %q", parsed.Body)
	}
}

func TestParseWithoutFrontmatter(t *testing.T) {
	t.Parallel()
	doc, err := Parse("just text\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Meta) != 0 || doc.Body != "just text\n" {
		t.Fatalf("unexpected document: %#v", doc)
	}
	if _, err := Parse("---\nid: x\nno close"); err == nil {
		t.Fatalf("expected error for unterminated frontmatter")
	}
}

func TestReplaceManagedBlockKeepsSurroundingText(t *testing.T) {
	t.Parallel()
	body := ReplaceManagedBlock("my notes\n", "summary", "v1")
	if !strings.HasPrefix(body, "my notes\n\n<!-- lootledger:summary:start -->\nv1\n") {
		t.Fatalf("unexpected append: %q", body)
	}
	body += "\nafter\n"
	body = ReplaceManagedBlock(body, "summary", "v2\n")
	if strings.Contains(body, "v1") || !strings.Contains(body, "\nv2\n") {
		t.Fatalf("block not replaced: %q", body)
	}
	if !strings.HasPrefix(body, "my notes\n") || !strings.HasSuffix(body, "\nafter\n") {
		t.Fatalf("surrounding text lost: %q", body)
	}
	if strings.Count(body, "lootledger:summary:start") != 1 {
		t.Fatalf("duplicate block: %q", body)
	}
}
