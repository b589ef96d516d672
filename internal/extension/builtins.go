package extension

import (
	"fmt"

	"github.com/librovore/librovore/internal/httpcache"
	"github.com/librovore/librovore/internal/inventory"
	invmkdocs "github.com/librovore/librovore/internal/inventory/mkdocs"
	invpydoctor "github.com/librovore/librovore/internal/inventory/pydoctor"
	invrustdoc "github.com/librovore/librovore/internal/inventory/rustdoc"
	invsphinx "github.com/librovore/librovore/internal/inventory/sphinx"
	"github.com/librovore/librovore/internal/structure"
	strmkdocs "github.com/librovore/librovore/internal/structure/mkdocs"
	strpydoctor "github.com/librovore/librovore/internal/structure/pydoctor"
	strrustdoc "github.com/librovore/librovore/internal/structure/rustdoc"
	strsphinx "github.com/librovore/librovore/internal/structure/sphinx"
)

// InventoryBuiltin constructs an intrinsic inventory processor by name
// (spec §4.7 step 1: entries with no "package" are intrinsic).
type InventoryBuiltin func(proxy *httpcache.Proxy, args map[string]any) (inventory.Processor, error)

// StructureBuiltin constructs an intrinsic structure processor by name.
type StructureBuiltin func(proxy *httpcache.Proxy, args map[string]any) (structure.Processor, error)

// inventoryBuiltins and structureBuiltins are the compile-time registry
// of intrinsic processors, named exactly like their registration name so
// [[*-extensions]] entries without a "package" resolve directly.
var inventoryBuiltins = map[string]InventoryBuiltin{
	"sphinx":   func(p *httpcache.Proxy, _ map[string]any) (inventory.Processor, error) { return invsphinx.New(p), nil },
	"mkdocs":   func(p *httpcache.Proxy, _ map[string]any) (inventory.Processor, error) { return invmkdocs.New(p), nil },
	"rustdoc":  func(p *httpcache.Proxy, _ map[string]any) (inventory.Processor, error) { return invrustdoc.New(p), nil },
	"pydoctor": func(p *httpcache.Proxy, _ map[string]any) (inventory.Processor, error) { return invpydoctor.New(p), nil },
}

var structureBuiltins = map[string]StructureBuiltin{
	"sphinx":   func(p *httpcache.Proxy, _ map[string]any) (structure.Processor, error) { return strsphinx.New(p), nil },
	"mkdocs":   func(p *httpcache.Proxy, _ map[string]any) (structure.Processor, error) { return strmkdocs.New(p), nil },
	"rustdoc":  func(p *httpcache.Proxy, _ map[string]any) (structure.Processor, error) { return strrustdoc.New(p), nil },
	"pydoctor": func(p *httpcache.Proxy, _ map[string]any) (structure.Processor, error) { return strpydoctor.New(p), nil },
}

func lookupInventoryBuiltin(name string) (InventoryBuiltin, error) {
	b, ok := inventoryBuiltins[name]
	if !ok {
		return nil, fmt.Errorf("no intrinsic inventory processor registered under name %q", name)
	}
	return b, nil
}

func lookupStructureBuiltin(name string) (StructureBuiltin, error) {
	b, ok := structureBuiltins[name]
	if !ok {
		return nil, fmt.Errorf("no intrinsic structure processor registered under name %q", name)
	}
	return b, nil
}
