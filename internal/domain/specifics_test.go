package domain

import "testing"

func TestSphinxSpecifics_Get(t *testing.T) {
	s := SphinxSpecifics{Domain: "py", Role: "function", Priority: "1"}
	for key, want := range map[string]string{"domain": "py", "role": "function", "priority": "1"} {
		got, ok := s.Get(key)
		if !ok || got != want {
			t.Errorf("Get(%q) = %q, %v; want %q, true", key, got, ok, want)
		}
	}
	if _, ok := s.Get("missing"); ok {
		t.Error("Get on an unknown key must report false")
	}
	if keys := s.Keys(); len(keys) != 3 {
		t.Errorf("expected 3 keys, got %v", keys)
	}
}

func TestRustdocSpecifics_Get(t *testing.T) {
	r := RustdocSpecifics{ItemType: "struct"}
	if got, ok := r.Get("item_type"); !ok || got != "struct" {
		t.Errorf("Get(item_type) = %q, %v", got, ok)
	}
	if _, ok := r.Get("kind"); ok {
		t.Error("rustdoc specifics have no kind key")
	}
}

func TestPydoctorSpecifics_Get(t *testing.T) {
	p := PydoctorSpecifics{Kind: "class"}
	if got, ok := p.Get("kind"); !ok || got != "class" {
		t.Errorf("Get(kind) = %q, %v", got, ok)
	}
}

func TestMkDocsSpecifics_Get(t *testing.T) {
	m := MkDocsSpecifics{Category: "section"}
	if got, ok := m.Get("category"); !ok || got != "section" {
		t.Errorf("Get(category) = %q, %v", got, ok)
	}
}

func TestGenericSpecifics_KeysAreSorted(t *testing.T) {
	g := GenericSpecifics{"z": "1", "a": "2", "m": "3"}
	keys := g.Keys()
	want := []string{"a", "m", "z"}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("Keys() = %v, want sorted %v", keys, want)
		}
	}
}

func TestGenericSpecifics_RenderMarkdownIsDeterministic(t *testing.T) {
	g := GenericSpecifics{"z": "1", "a": "2"}
	first := g.RenderMarkdown()
	for i := 0; i < 10; i++ {
		if g.RenderMarkdown() != first {
			t.Fatal("RenderMarkdown must be stable across calls regardless of map iteration order")
		}
	}
}

func TestEmptySpecifics(t *testing.T) {
	var e EmptySpecifics
	if _, ok := e.Get("anything"); ok {
		t.Error("EmptySpecifics.Get must always report false")
	}
	if e.Keys() != nil {
		t.Error("EmptySpecifics.Keys must be empty")
	}
	if e.RenderMarkdown() != "" {
		t.Error("EmptySpecifics.RenderMarkdown must be empty")
	}
}
