package extension

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/librovore/librovore/internal/domain"
)

// CacheMetadata is the sibling `.cache_metadata.json` persisted next to
// an installed external extension tree (spec §6).
type CacheMetadata struct {
	PackageSpec string `json:"package_spec"`
	InstalledAt string `json:"installed_at"` // ISO-8601
	TTLHours    int    `json:"ttl_hours"`
	PlatformID  string `json:"platform_id"`
}

const metadataFileName = ".cache_metadata.json"

// PlatformID identifies the current build target for the cache-path
// layout (spec §6: "<cache-root>/extensions/<sha256>/<platform-id>/...").
func PlatformID() string {
	return runtime.GOOS + "-" + runtime.GOARCH
}

// packageSpecHash is the sha256 hex digest used as the cache-key
// directory component.
func packageSpecHash(spec string) string {
	sum := sha256.Sum256([]byte(spec))
	return hex.EncodeToString(sum[:])
}

// installDir returns the directory an external package's install tree
// lives under, given cacheRoot (spec §6's layout).
func installDir(cacheRoot, packageSpec string) string {
	return filepath.Join(cacheRoot, "extensions", packageSpecHash(packageSpec), PlatformID())
}

// readMetadata loads and validates the cache metadata sibling file; a
// missing or corrupt file is reported distinctly so the caller can
// decide between ExtensionCacheCorrupt and "no cache yet".
func readMetadata(dir string) (CacheMetadata, bool, error) {
	data, err := os.ReadFile(filepath.Join(dir, metadataFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return CacheMetadata{}, false, nil
		}
		return CacheMetadata{}, false, domain.NewExtensionCacheCorruptError(dir)
	}
	var meta CacheMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return CacheMetadata{}, false, domain.NewExtensionCacheCorruptError(dir)
	}
	return meta, true, nil
}

func writeMetadata(dir string, meta CacheMetadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling extension cache metadata: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, metadataFileName), data, 0o644)
}

// validWithinTTL reports whether meta's install is still fresh given now.
func (m CacheMetadata) validWithinTTL(now time.Time) bool {
	installedAt, err := time.Parse(time.RFC3339, m.InstalledAt)
	if err != nil {
		return false
	}
	return now.Sub(installedAt) <= time.Duration(m.TTLHours)*time.Hour
}
