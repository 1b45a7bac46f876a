package render

import (
	"strings"
	"testing"
)

func TestRender_Heading(t *testing.T) {
	r := New()
	out, err := r.Render("# Hello")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "<h1") || !strings.Contains(out, "Hello") {
		t.Errorf("output = %q, want an h1 with Hello", out)
	}
}

func TestRender_GFMStrikethrough(t *testing.T) {
	r := New()
	out, err := r.Render("~~gone~~")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "<del>") {
		t.Errorf("output = %q, want <del>", out)
	}
}

func TestRender_SanitizesScript(t *testing.T) {
	r := New()
	out, err := r.Render("hello\n\n<script>alert(1)</script>")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(out, "<script") {
		t.Errorf("script tag survived sanitization: %q", out)
	}
	if !strings.Contains(out, "hello") {
		t.Errorf("legitimate content dropped: %q", out)
	}
}

func TestRender_KeepsLinks(t *testing.T) {
	r := New()
	out, err := r.Render("[site](https://example.com)")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, `href="https://example.com"`) {
		t.Errorf("link stripped: %q", out)
	}
}

func TestRender_CodeFence(t *testing.T) {
	r := New()
	out, err := r.Render("```go\nfmt.Println(1)\n```")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "<pre>") || !strings.Contains(out, "fmt.Println(1)") {
		t.Errorf("output = %q, want a pre block", out)
	}
}

func TestRender_MemoStaysCorrectAcrossInputs(t *testing.T) {
	r := New()
	a1, _ := r.Render("# A")
	if _, err := r.Render("# B"); err != nil {
		t.Fatalf("Render B: %v", err)
	}
	a2, err := r.Render("# A")
	if err != nil {
		t.Fatalf("Render A again: %v", err)
	}
	if a1 != a2 {
		t.Errorf("same input gave different output after memo eviction: %q vs %q", a1, a2)
	}
	if !strings.Contains(a2, "A") {
		t.Errorf("output = %q", a2)
	}
}

func TestPreview_EmptyContent(t *testing.T) {
	r := New()
	if out := r.Preview(""); strings.Contains(out, "preview-error") {
		t.Errorf("empty content produced the error placeholder: %q", out)
	}
}
