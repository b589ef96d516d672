package httpcache

import (
	"testing"

	"github.com/librovore/librovore/internal/domain"
)

func TestBaseMIMEType_StripsParametersAndCase(t *testing.T) {
	cases := map[string]string{
		"text/HTML; charset=utf-8": "text/html",
		"application/json":         "application/json",
		"  text/plain ;boundary=x": "text/plain",
		"":                         "",
	}
	for in, want := range cases {
		if got := baseMIMEType(in); got != want {
			t.Errorf("baseMIMEType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRetrieveResultText_AcceptsAllowListedTypes(t *testing.T) {
	r := RetrieveResult{Bytes: []byte("<html></html>"), ContentType: "text/html; charset=utf-8", URL: "https://example.com/a"}
	text, err := r.Text()
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if text != "<html></html>" {
		t.Errorf("unexpected decoded text: %q", text)
	}
}

func TestRetrieveResultText_RejectsOutOfAllowListType(t *testing.T) {
	r := RetrieveResult{Bytes: []byte{0x89, 'P', 'N', 'G'}, ContentType: "image/png", URL: "https://example.com/logo.png"}
	_, err := r.Text()
	if err == nil {
		t.Fatal("expected ContentTypeInvalidError for a non-text MIME type")
	}
	kindErr, ok := err.(domain.KindedError)
	if !ok {
		t.Fatalf("expected a domain.KindedError, got %T", err)
	}
	if kindErr.Kind() != domain.ErrKindContentTypeInvalid {
		t.Errorf("expected ErrKindContentTypeInvalid, got %v", kindErr.Kind())
	}
}

func TestRetrieveResultText_EmptyContentTypePassesThrough(t *testing.T) {
	r := RetrieveResult{Bytes: []byte("plain body"), ContentType: "", URL: "https://example.com/a"}
	text, err := r.Text()
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if text != "plain body" {
		t.Errorf("unexpected decoded text: %q", text)
	}
}
