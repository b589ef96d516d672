package extension

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPackageSpecHash_StableAndDistinct(t *testing.T) {
	a := packageSpecHash("github.com/example/foo@v1.0.0")
	b := packageSpecHash("github.com/example/foo@v1.0.0")
	if a != b {
		t.Error("expected the same spec to hash identically")
	}
	if a == packageSpecHash("github.com/example/bar@v1.0.0") {
		t.Error("expected different specs to hash differently")
	}
}

func TestInstallDir_IncludesPlatformID(t *testing.T) {
	dir := installDir("/cache", "github.com/example/foo@v1.0.0")
	want := filepath.Join("/cache", "extensions", packageSpecHash("github.com/example/foo@v1.0.0"), PlatformID())
	if dir != want {
		t.Errorf("installDir = %q, want %q", dir, want)
	}
}

func TestReadWriteMetadata_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	meta := CacheMetadata{PackageSpec: "pkg", InstalledAt: time.Now().UTC().Format(time.RFC3339), TTLHours: 24, PlatformID: PlatformID()}
	if err := writeMetadata(dir, meta); err != nil {
		t.Fatalf("writeMetadata: %v", err)
	}
	got, ok, err := readMetadata(dir)
	if err != nil {
		t.Fatalf("readMetadata: %v", err)
	}
	if !ok {
		t.Fatal("expected metadata to be found")
	}
	if got.PackageSpec != meta.PackageSpec || got.TTLHours != meta.TTLHours {
		t.Errorf("readMetadata = %+v, want %+v", got, meta)
	}
}

func TestReadMetadata_MissingFileIsNotAnError(t *testing.T) {
	_, ok, err := readMetadata(t.TempDir())
	if err != nil {
		t.Fatalf("readMetadata: %v", err)
	}
	if ok {
		t.Error("expected ok=false for a directory with no metadata file")
	}
}

func TestReadMetadata_CorruptFileErrors(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, metadataFileName), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, _, err := readMetadata(dir); err == nil {
		t.Error("expected an error reading corrupt metadata JSON")
	}
}

func TestCacheMetadata_ValidWithinTTL(t *testing.T) {
	now := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	meta := CacheMetadata{InstalledAt: now.Add(-23 * time.Hour).Format(time.RFC3339), TTLHours: 24}
	if !meta.validWithinTTL(now) {
		t.Error("expected an install 23h old with a 24h TTL to still be valid")
	}
	meta.InstalledAt = now.Add(-25 * time.Hour).Format(time.RFC3339)
	if meta.validWithinTTL(now) {
		t.Error("expected an install 25h old with a 24h TTL to be expired")
	}
}

func TestCacheMetadata_ValidWithinTTL_UnparsableTimestamp(t *testing.T) {
	meta := CacheMetadata{InstalledAt: "not-a-timestamp", TTLHours: 24}
	if meta.validWithinTTL(time.Now()) {
		t.Error("expected an unparsable timestamp to be treated as invalid")
	}
}
