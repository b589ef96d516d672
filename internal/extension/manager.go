// Package extension implements the processor registry / extension
// manager (spec §4.7): partitions configured entries into intrinsic
// (compiled in) and external (installed plugin packages), resolves
// each external package's cached install tree or invokes an Installer,
// and registers the resulting processors into the inventory/structure
// registries consulted by the detection system.
package extension

import (
	"context"
	"errors"
	"fmt"
	"plugin"
	"strings"
	"sync"
	"time"

	"github.com/librovore/librovore/internal/config"
	"github.com/librovore/librovore/internal/domain"
	"github.com/librovore/librovore/internal/httpcache"
	"github.com/librovore/librovore/internal/inventory"
	"github.com/librovore/librovore/internal/structure"
)

// InventoryRegisterFunc is the symbol an external inventory extension's
// plugin must export, named "Register<Name>Inventory" where <Name> is the
// entry name with its first letter upper-cased (spec §4.7).
type InventoryRegisterFunc func(args map[string]any) (inventory.Processor, error)

// StructureRegisterFunc is the symbol an external structure extension's
// plugin must export, named "Register" (spec §4.7).
type StructureRegisterFunc func(args map[string]any) (structure.Processor, error)

// DefaultInstallTTLHours is used when an installed extension tree has no
// TTL override (spec §6 metadata carries ttl_hours explicitly, but the
// manager needs a default to stamp on first install).
const DefaultInstallTTLHours = 24 * 7

// Manager loads intrinsic and external processors into the genus
// registries on process initialization.
type Manager struct {
	CacheRoot string
	Installer Installer
	Attempts  int
	Backoff   time.Duration

	mu       sync.Mutex
	warnings []string
}

// New constructs a Manager. installer may be nil, in which case external
// entries fail with ExtensionInstallationFailure when encountered.
func New(cacheRoot string, installer Installer) *Manager {
	if installer == nil {
		installer = NoInstaller{}
	}
	return &Manager{CacheRoot: cacheRoot, Installer: installer, Attempts: 3, Backoff: 500 * time.Millisecond}
}

// Warnings returns non-fatal notices accumulated during Load (e.g.
// rejected executable .pth entries).
func (m *Manager) Warnings() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.warnings...)
}

func (m *Manager) warn(msg string) {
	m.mu.Lock()
	m.warnings = append(m.warnings, msg)
	m.mu.Unlock()
}

// Load partitions cfg's extension entries, resolves external installs,
// and registers every enabled processor (spec §4.7 steps 1-5). proxy is
// handed to intrinsic builtins; external plugins construct their own
// collaborators.
func (m *Manager) Load(ctx context.Context, cfg config.Config, proxy *httpcache.Proxy,
	invReg *inventory.Registry, strReg *structure.Registry) error {

	for _, entry := range cfg.InventoryExtensions {
		if !entry.Enabled {
			continue
		}
		proc, err := m.loadInventoryEntry(ctx, entry, proxy)
		if err != nil {
			if entry.External() {
				return err // external entries required by config fail the process (spec §7)
			}
			return domain.NewExtensionRegistrationFailureError(entry.Name, err)
		}
		if err := registerInventory(invReg, entry.Name, proc); err != nil {
			return err
		}
	}

	for _, entry := range cfg.StructureExtensions {
		if !entry.Enabled {
			continue
		}
		proc, err := m.loadStructureEntry(ctx, entry, proxy)
		if err != nil {
			if entry.External() {
				return err
			}
			return domain.NewExtensionRegistrationFailureError(entry.Name, err)
		}
		if err := registerStructure(strReg, entry.Name, proc); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) loadInventoryEntry(ctx context.Context, entry config.ExtensionEntry,
	proxy *httpcache.Proxy) (inventory.Processor, error) {
	if !entry.External() {
		builtin, err := lookupInventoryBuiltin(entry.Name)
		if err != nil {
			return nil, err
		}
		return builtin(proxy, entry.Arguments)
	}

	dirs, err := m.resolveInstall(ctx, entry.Package)
	if err != nil {
		return nil, err
	}
	titled := entry.Name
	if titled != "" {
		titled = strings.ToUpper(titled[:1]) + titled[1:]
	}
	sym := "Register" + titled + "Inventory"
	register, err := loadPluginSymbol[InventoryRegisterFunc](dirs, sym)
	if err != nil {
		return nil, domain.NewExtensionRegistrationFailureError(entry.Name, err)
	}
	return register(entry.Arguments)
}

func (m *Manager) loadStructureEntry(ctx context.Context, entry config.ExtensionEntry,
	proxy *httpcache.Proxy) (structure.Processor, error) {
	if !entry.External() {
		builtin, err := lookupStructureBuiltin(entry.Name)
		if err != nil {
			return nil, err
		}
		return builtin(proxy, entry.Arguments)
	}

	dirs, err := m.resolveInstall(ctx, entry.Package)
	if err != nil {
		return nil, err
	}
	register, err := loadPluginSymbol[StructureRegisterFunc](dirs, "Register")
	if err != nil {
		return nil, domain.NewExtensionRegistrationFailureError(entry.Name, err)
	}
	return register(entry.Arguments)
}

// resolveInstall returns the install tree's directory holding packageSpec,
// followed by any extra search directories its extension.pth lists (spec
// §4.7 step 3, §9 hardening note), reusing a within-TTL cached install or
// invoking m.Installer with bounded retries. Callers look for plugin.so
// in the returned directories in order.
func (m *Manager) resolveInstall(ctx context.Context, packageSpec string) ([]string, error) {
	dir := installDir(m.CacheRoot, packageSpec)
	if meta, ok, err := readMetadata(dir); err != nil {
		return nil, err
	} else if ok && meta.validWithinTTL(time.Now()) {
		return append([]string{dir}, m.extensionSearchPaths(dir)...), nil
	}

	err := installWithRetry(ctx, m.Attempts, m.Backoff, func(ctx context.Context) error {
		return m.Installer.Install(ctx, packageSpec, dir)
	})
	if err != nil {
		return nil, domain.NewExtensionInstallationFailureError(packageSpec, err)
	}

	meta := CacheMetadata{
		PackageSpec: packageSpec,
		InstalledAt: time.Now().Format(time.RFC3339),
		TTLHours:    DefaultInstallTTLHours,
		PlatformID:  PlatformID(),
	}
	if err := writeMetadata(dir, meta); err != nil {
		return nil, domain.NewExtensionInstallationFailureError(packageSpec, err)
	}

	return append([]string{dir}, m.extensionSearchPaths(dir)...), nil
}

// extensionSearchPaths reads dir's extension.pth, if any, recording any
// rejected executable entries as manager warnings, and returns the bare
// directories it lists for loadPluginSymbol to also search.
func (m *Manager) extensionSearchPaths(dir string) []string {
	paths, warnings, err := parsePth(dir + "/extension.pth")
	if err != nil {
		return nil
	}
	for _, w := range warnings {
		m.warn(w)
	}
	return paths
}

// loadPluginSymbol opens the first of dirs to hold a compiled "plugin.so"
// and looks up name within it, asserting it to T. dirs is the install
// tree's own directory followed by any extra directories its
// extension.pth listed (spec §4.7, §9). The stdlib plugin package is the
// only mechanism Go offers for loading out-of-process-compiled code into
// a running binary, and no pack repo does this differently (logged in
// DESIGN.md as a stdlib justification).
func loadPluginSymbol[T any](dirs []string, name string) (T, error) {
	var zero T
	if len(dirs) == 0 {
		return zero, fmt.Errorf("no candidate directories to load plugin.so from")
	}

	var p *plugin.Plugin
	var openErrs []error
	for _, dir := range dirs {
		opened, err := plugin.Open(dir + "/plugin.so")
		if err != nil {
			openErrs = append(openErrs, fmt.Errorf("opening plugin at %s: %w", dir, err))
			continue
		}
		p = opened
		break
	}
	if p == nil {
		return zero, fmt.Errorf("no plugin.so found in %v: %w", dirs, errors.Join(openErrs...))
	}

	sym, err := p.Lookup(name)
	if err != nil {
		return zero, fmt.Errorf("looking up symbol %q: %w", name, err)
	}
	fn, ok := sym.(T)
	if !ok {
		return zero, fmt.Errorf("symbol %q has unexpected type %T", name, sym)
	}
	return fn, nil
}

// registerInventory validates and inserts proc (spec §4.7 "Registries
// are keyed by processor name and validated on insertion").
func registerInventory(reg *inventory.Registry, name string, proc inventory.Processor) error {
	if name == "" {
		return domain.NewExtensionRegistrationFailureError(name, fmt.Errorf("processor name must be non-empty"))
	}
	reg.Register(proc)
	return nil
}

func registerStructure(reg *structure.Registry, name string, proc structure.Processor) error {
	if name == "" {
		return domain.NewExtensionRegistrationFailureError(name, fmt.Errorf("processor name must be non-empty"))
	}
	reg.Register(proc)
	return nil
}
