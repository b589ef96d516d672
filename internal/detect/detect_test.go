package detect

import (
	"context"
	"testing"

	"github.com/librovore/librovore/internal/domain"
	"github.com/librovore/librovore/internal/inventory"
	"github.com/librovore/librovore/internal/structure"
)

type fakeInventoryProcessor struct {
	name       string
	confidence float64
	caps       domain.ProcessorCapabilities
}

func (f *fakeInventoryProcessor) Name() string { return f.name }

func (f *fakeInventoryProcessor) Capabilities() domain.ProcessorCapabilities { return f.caps }

func (f *fakeInventoryProcessor) Detect(_ context.Context, source string) (domain.Detection, error) {
	return domain.Detection{
		ProcessorName: f.name,
		Genus:         domain.GenusInventory,
		Source:        source,
		Confidence:    f.confidence,
		Capabilities:  f.caps,
	}, nil
}

func (f *fakeInventoryProcessor) FilterInventory(context.Context, domain.Detection, string,
	map[string]string, domain.MatchMode, int) ([]domain.InventoryObject, error) {
	return nil, nil
}

type fakeStructureProcessor struct {
	name       string
	confidence float64
	caps       domain.ProcessorCapabilities
}

func (f *fakeStructureProcessor) Name() string { return f.name }

func (f *fakeStructureProcessor) Capabilities() domain.ProcessorCapabilities { return f.caps }

func (f *fakeStructureProcessor) Detect(_ context.Context, source string) (domain.Detection, error) {
	return domain.Detection{
		ProcessorName: f.name,
		Genus:         domain.GenusStructure,
		Source:        source,
		Confidence:    f.confidence,
		Capabilities:  f.caps,
	}, nil
}

func (f *fakeStructureProcessor) ExtractContents(context.Context, domain.Detection,
	[]domain.InventoryObject) ([]domain.ContentDocument, error) {
	return nil, nil
}

func TestDetectInventory_SelectsHighestConfidence(t *testing.T) {
	invReg := inventory.NewRegistry()
	invReg.Register(&fakeInventoryProcessor{name: "sphinx", confidence: 0.6})
	invReg.Register(&fakeInventoryProcessor{name: "mkdocs", confidence: 0.9})

	system := NewSystem(invReg, structure.NewRegistry())
	det, err := system.DetectInventory(context.Background(), "/some/path")
	if err != nil {
		t.Fatalf("DetectInventory: %v", err)
	}
	if det.ProcessorName != "mkdocs" {
		t.Errorf("expected the higher-confidence processor to win, got %q", det.ProcessorName)
	}
}

func TestDetectInventory_RejectsBelowMinimumConfidence(t *testing.T) {
	invReg := inventory.NewRegistry()
	invReg.Register(&fakeInventoryProcessor{name: "sphinx", confidence: 0.1})

	system := NewSystem(invReg, structure.NewRegistry())
	_, err := system.DetectInventory(context.Background(), "/some/path")
	if err == nil {
		t.Fatal("expected an error when every candidate is below the minimum confidence")
	}
}

func TestDetectInventory_TiebreakByRegistrationOrder(t *testing.T) {
	invReg := inventory.NewRegistry()
	invReg.Register(&fakeInventoryProcessor{name: "first", confidence: 0.8})
	invReg.Register(&fakeInventoryProcessor{name: "second", confidence: 0.8})

	system := NewSystem(invReg, structure.NewRegistry())
	det, err := system.DetectInventory(context.Background(), "/some/path")
	if err != nil {
		t.Fatalf("DetectInventory: %v", err)
	}
	if det.ProcessorName != "first" {
		t.Errorf("expected the first-registered processor to win a tie, got %q", det.ProcessorName)
	}
}

func TestDetectInventory_CachesAcrossCalls(t *testing.T) {
	calls := 0
	invReg := inventory.NewRegistry()
	invReg.Register(&countingProcessor{fakeInventoryProcessor: fakeInventoryProcessor{name: "sphinx", confidence: 0.8}, calls: &calls})

	system := NewSystem(invReg, structure.NewRegistry())
	ctx := context.Background()
	if _, err := system.DetectInventory(ctx, "/some/path"); err != nil {
		t.Fatalf("first DetectInventory: %v", err)
	}
	if _, err := system.DetectInventory(ctx, "/some/path"); err != nil {
		t.Fatalf("second DetectInventory: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected the processor to be probed once and the second call served from cache, got %d probes", calls)
	}
}

type countingProcessor struct {
	fakeInventoryProcessor
	calls *int
}

func (c *countingProcessor) Detect(ctx context.Context, source string) (domain.Detection, error) {
	*c.calls = *c.calls + 1
	return c.fakeInventoryProcessor.Detect(ctx, source)
}

func TestDetectStructure_BiasesByInventoryHint(t *testing.T) {
	strReg := structure.NewRegistry()
	strReg.Register(&fakeStructureProcessor{
		name: "generic", confidence: 0.7,
	})
	strReg.Register(&fakeStructureProcessor{
		name:       "sphinx-theme",
		confidence: 0.6,
		caps: domain.ProcessorCapabilities{
			ConfidenceByInventoryType: map[string]float64{"sphinx_objects_inv": 0.95},
		},
	})

	system := NewSystem(inventory.NewRegistry(), strReg)
	det, err := system.DetectStructure(context.Background(), "/some/path", "sphinx_objects_inv")
	if err != nil {
		t.Fatalf("DetectStructure: %v", err)
	}
	if det.ProcessorName != "sphinx-theme" {
		t.Errorf("expected the inventory-type-biased processor to win, got %q", det.ProcessorName)
	}
}

func TestDetectStructure_HintStillSwitchesWinnerOnWarmCache(t *testing.T) {
	strReg := structure.NewRegistry()
	strReg.Register(&fakeStructureProcessor{name: "generic", confidence: 0.7})
	strReg.Register(&fakeStructureProcessor{
		name:       "sphinx-theme",
		confidence: 0.6,
		caps: domain.ProcessorCapabilities{
			ConfidenceByInventoryType: map[string]float64{"sphinx_objects_inv": 0.95},
		},
	})

	system := NewSystem(inventory.NewRegistry(), strReg)
	ctx := context.Background()

	// First call with no hint caches "generic" as the plain winner.
	det, err := system.DetectStructure(ctx, "/some/path", "")
	if err != nil {
		t.Fatalf("DetectStructure (cold, no hint): %v", err)
	}
	if det.ProcessorName != "generic" {
		t.Fatalf("expected generic to win unbiased, got %q", det.ProcessorName)
	}

	// A second call against the now-warm cache, with a hint, must still be
	// able to switch the winner rather than being stuck re-biasing whatever
	// the first call happened to select.
	det, err = system.DetectStructure(ctx, "/some/path", "sphinx_objects_inv")
	if err != nil {
		t.Fatalf("DetectStructure (warm, with hint): %v", err)
	}
	if det.ProcessorName != "sphinx-theme" {
		t.Errorf("expected the hint to switch the warm-cache winner to sphinx-theme, got %q", det.ProcessorName)
	}
}

func TestDetectInventory_WarmCacheTiebreakIsDeterministic(t *testing.T) {
	invReg := inventory.NewRegistry()
	invReg.Register(&fakeInventoryProcessor{name: "sphinx", confidence: 0.9})
	invReg.Register(&fakeInventoryProcessor{name: "mkdocs", confidence: 0.9})

	system := NewSystem(invReg, structure.NewRegistry())
	ctx := context.Background()
	if _, err := system.DetectInventory(ctx, "/some/path"); err != nil {
		t.Fatalf("cold DetectInventory: %v", err)
	}

	for i := 0; i < 10; i++ {
		det, err := system.DetectInventory(ctx, "/some/path")
		if err != nil {
			t.Fatalf("warm DetectInventory: %v", err)
		}
		if det.ProcessorName != "sphinx" {
			t.Fatalf("expected the registration-order winner sphinx on every warm call, got %q on call %d", det.ProcessorName, i)
		}
	}
}

func TestNormalizeSource_StripsTrailingSlashAndLowercasesHost(t *testing.T) {
	got := NormalizeSource("HTTPS://Example.COM/docs/")
	want := "https://example.com/docs"
	if got != want {
		t.Errorf("NormalizeSource = %q, want %q", got, want)
	}
}
