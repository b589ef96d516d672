package httpcache

import (
	"bytes"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"golang.org/x/net/html/charset"
)

// textContentTypeAllowList are the MIME base types RetrieveResult.Text
// accepts (spec §4.1, §7). Anything else - images, PDFs, archives - is
// ContentTypeInvalidError rather than being decoded as if it were prose.
var textContentTypeAllowList = map[string]bool{
	"text/html":         true,
	"text/plain":        true,
	"text/markdown":     true,
	"text/x-rst":        true,
	"application/json":  true,
	"application/xml":   true,
	"text/xml":          true,
	"application/xhtml+xml": true,
}

// baseMIMEType strips parameters (e.g. "; charset=utf-8") and casing
// from a Content-Type header value, leaving just the type/subtype pair
// for an allow-list lookup. An empty contentType (no header, no
// extension-based guess) returns "".
func baseMIMEType(contentType string) string {
	base, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(base))
}

// detectContentType guesses a Content-Type for a file-retrieved payload,
// preferring the file extension and falling back to content sniffing.
func detectContentType(path string, data []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	case ".md", ".markdown", ".rst", ".txt":
		return "text/plain; charset=utf-8"
	case ".json":
		return "application/json"
	}
	return http.DetectContentType(data)
}

// decodeText converts raw bytes to a UTF-8 string using the charset
// declared in contentType, falling back to UTF-8 when the declaration is
// absent, unrecognized, or already UTF-8.
func decodeText(data []byte, contentType string) (string, error) {
	reader, err := charset.NewReader(bytes.NewReader(data), contentType)
	if err != nil {
		return string(data), nil
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return string(data), nil
	}
	return string(decoded), nil
}
