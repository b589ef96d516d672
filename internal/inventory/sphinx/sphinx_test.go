package sphinx

import (
	"bytes"
	"compress/zlib"
	"testing"
)

func buildObjectsInv(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("# Sphinx inventory version 2\n")
	buf.WriteString("# Project: demo\n")
	buf.WriteString("# Version: 1.0\n")
	buf.WriteString("# The remainder of this file is compressed using zlib.\n")

	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write([]byte(body)); err != nil {
		t.Fatalf("writing zlib body: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zlib writer: %v", err)
	}
	return buf.Bytes()
}

func TestParseObjectsInv_ParsesEntries(t *testing.T) {
	data := buildObjectsInv(t, "os.path.join py:function 1 api/$ -\nos.path.split py:function 1 api/$ Split a Path\n")
	objs, err := parseObjectsInv(data, "https://example.com")
	if err != nil {
		t.Fatalf("parseObjectsInv: %v", err)
	}
	if len(objs) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(objs))
	}

	first := objs[0]
	if first.Name != "os.path.join" || first.InventoryType != "sphinx_objects_inv" {
		t.Errorf("unexpected first object: %+v", first)
	}
	if first.DisplayName != "" {
		t.Errorf("expected a '-' dispname to produce an empty DisplayName, got %q", first.DisplayName)
	}
	if s := first.Specifics.RenderJSON(); s["domain"] != "py" || s["role"] != "function" || s["priority"] != "1" {
		t.Errorf("unexpected specifics: %+v", first.Specifics)
	}

	second := objs[1]
	if second.DisplayName != "Split a Path" {
		t.Errorf("expected the multi-word dispname to be preserved, got %q", second.DisplayName)
	}
}

func TestParseObjectsInv_RejectsBadHeader(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("not a sphinx header\n")
	buf.WriteString("x\ny\nz\n")
	if _, err := parseObjectsInv(buf.Bytes(), "https://example.com"); err == nil {
		t.Error("expected an error for an unrecognized header")
	}
}

func TestParseObjectsInv_SkipsMalformedLines(t *testing.T) {
	data := buildObjectsInv(t, "too few fields\nos.path.join py:function 1 api/$ -\n")
	objs, err := parseObjectsInv(data, "https://example.com")
	if err != nil {
		t.Fatalf("parseObjectsInv: %v", err)
	}
	if len(objs) != 1 {
		t.Fatalf("expected the malformed line to be skipped, got %d objects", len(objs))
	}
}

func TestParseLine_RequiresDomainRoleColon(t *testing.T) {
	if _, ok := parseLine("name norole 1 uri -", "https://example.com"); ok {
		t.Error("expected a missing domain:role colon to be rejected")
	}
}

func TestJoinURL_HandlesTrailingSlash(t *testing.T) {
	if got := joinURL("https://example.com", "objects.inv"); got != "https://example.com/objects.inv" {
		t.Errorf("joinURL = %q", got)
	}
	if got := joinURL("https://example.com/", "objects.inv"); got != "https://example.com/objects.inv" {
		t.Errorf("joinURL = %q", got)
	}
}
