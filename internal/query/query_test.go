package query

import (
	"context"
	"errors"
	"testing"

	"github.com/librovore/librovore/internal/detect"
	"github.com/librovore/librovore/internal/domain"
	"github.com/librovore/librovore/internal/inventory"
	"github.com/librovore/librovore/internal/structure"
)

type fakeInventoryProcessor struct {
	name    string
	caps    domain.ProcessorCapabilities
	objects []domain.InventoryObject
}

func (f *fakeInventoryProcessor) Name() string { return f.name }

func (f *fakeInventoryProcessor) Capabilities() domain.ProcessorCapabilities { return f.caps }

func (f *fakeInventoryProcessor) Detect(_ context.Context, source string) (domain.Detection, error) {
	return domain.Detection{ProcessorName: f.name, Genus: domain.GenusInventory, Source: source, Confidence: 0.9, Capabilities: f.caps}, nil
}

func (f *fakeInventoryProcessor) FilterInventory(_ context.Context, _ domain.Detection, nameTerm string,
	filters map[string]string, mode domain.MatchMode, threshold int) ([]domain.InventoryObject, error) {
	return inventory.FilterByName(append([]domain.InventoryObject{}, f.objects...), nameTerm, mode, threshold)
}

type fakeStructureProcessor struct {
	name string
	caps domain.ProcessorCapabilities
	docs []domain.ContentDocument
	err  error
}

func (f *fakeStructureProcessor) Name() string { return f.name }

func (f *fakeStructureProcessor) Capabilities() domain.ProcessorCapabilities { return f.caps }

func (f *fakeStructureProcessor) Detect(_ context.Context, source string) (domain.Detection, error) {
	return domain.Detection{ProcessorName: f.name, Genus: domain.GenusStructure, Source: source, Confidence: 0.9, Capabilities: f.caps}, nil
}

func (f *fakeStructureProcessor) ExtractContents(_ context.Context, _ domain.Detection,
	objects []domain.InventoryObject) ([]domain.ContentDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(objects) < len(f.docs) {
		return f.docs[:len(objects)], nil
	}
	return f.docs, nil
}

func newTestRuntime(inv *fakeInventoryProcessor, str *fakeStructureProcessor) *Runtime {
	invReg := inventory.NewRegistry()
	invReg.Register(inv)
	strReg := structure.NewRegistry()
	strReg.Register(str)
	return NewRuntime(detect.NewSystem(invReg, strReg), invReg, strReg)
}

func TestQueryInventory_ReturnsMatchingObjects(t *testing.T) {
	inv := &fakeInventoryProcessor{
		name: "sphinx",
		caps: domain.ProcessorCapabilities{SupportedFilters: []string{"domain"}},
		objects: []domain.InventoryObject{
			{Name: "os.path.join", Specifics: domain.GenericSpecifics{"domain": "py"}},
			{Name: "os.path.split", Specifics: domain.GenericSpecifics{"domain": "py"}},
		},
	}
	rt := newTestRuntime(inv, &fakeStructureProcessor{name: "sphinx-theme"})

	res, err := rt.QueryInventory(context.Background(), InventoryParams{Source: "/docs", Term: "join"})
	if err != nil {
		t.Fatalf("QueryInventory: %v", err)
	}
	if len(res.Objects) != 1 || res.Objects[0].Name != "os.path.join" {
		t.Errorf("expected exactly os.path.join to match, got %+v", res.Objects)
	}
}

func TestQueryInventory_RejectsUnsupportedFilter(t *testing.T) {
	inv := &fakeInventoryProcessor{name: "sphinx", caps: domain.ProcessorCapabilities{SupportedFilters: []string{"domain"}}}
	rt := newTestRuntime(inv, &fakeStructureProcessor{name: "sphinx-theme"})

	_, err := rt.QueryInventory(context.Background(), InventoryParams{
		Source: "/docs", Term: "x", Filters: map[string]string{"priority": "1"},
	})
	if err == nil {
		t.Fatal("expected an error for a filter the processor does not declare support for")
	}
	if _, ok := err.(domain.KindedError); !ok {
		t.Errorf("expected a domain.KindedError, got %T", err)
	}
}

func TestQueryInventory_Summarize(t *testing.T) {
	inv := &fakeInventoryProcessor{
		name: "sphinx",
		objects: []domain.InventoryObject{
			{Name: "a.one", Specifics: domain.GenericSpecifics{"domain": "py"}},
			{Name: "a.two", Specifics: domain.GenericSpecifics{"domain": "js"}},
			{Name: "a.three", Specifics: domain.GenericSpecifics{"domain": "py"}},
		},
	}
	rt := newTestRuntime(inv, &fakeStructureProcessor{name: "sphinx-theme"})

	res, err := rt.QueryInventory(context.Background(), InventoryParams{
		Source: "/docs", Term: "a", Summarize: true, GroupBy: []string{"domain"},
	})
	if err != nil {
		t.Fatalf("QueryInventory: %v", err)
	}
	if res.Summary == nil {
		t.Fatal("expected a summary result")
	}
	if res.Summary.Counts["domain"]["py"] != 2 || res.Summary.Counts["domain"]["js"] != 1 {
		t.Errorf("unexpected group-by counts: %+v", res.Summary.Counts)
	}
}

func TestQueryInventory_ExplicitResultsMaxZeroReturnsEmptyObjectsWithTotalSet(t *testing.T) {
	inv := &fakeInventoryProcessor{
		name: "sphinx",
		objects: []domain.InventoryObject{
			{Name: "os.path.join"}, {Name: "os.path.joins"},
		},
	}
	rt := newTestRuntime(inv, &fakeStructureProcessor{name: "sphinx-theme"})

	resultsMax := 0
	res, err := rt.QueryInventory(context.Background(), InventoryParams{Source: "/docs", Term: "join", ResultsMax: &resultsMax})
	if err != nil {
		t.Fatalf("QueryInventory: %v", err)
	}
	if len(res.Objects) != 0 {
		t.Errorf("expected results_max=0 to return no objects, got %+v", res.Objects)
	}
	if res.MatchesTotal != 2 {
		t.Errorf("expected matches_total to still reflect the full match set, got %d", res.MatchesTotal)
	}
}

func TestQueryContent_HappyPath(t *testing.T) {
	inv := &fakeInventoryProcessor{
		name: "sphinx",
		objects: []domain.InventoryObject{
			{Name: "os.path.join", InventoryType: "sphinx_objects_inv"},
		},
	}
	str := &fakeStructureProcessor{
		name: "sphinx-theme",
		caps: domain.ProcessorCapabilities{SupportedInventoryTypes: []string{"sphinx_objects_inv"}},
		docs: []domain.ContentDocument{
			{Name: "os.path.join", Description: "join one or more path components"},
		},
	}
	rt := newTestRuntime(inv, str)

	res, err := rt.QueryContent(context.Background(), ContentParams{Source: "/docs", Term: "join", IncludeSnippets: true})
	if err != nil {
		t.Fatalf("QueryContent: %v", err)
	}
	if len(res.Documents) != 1 {
		t.Fatalf("expected one document, got %d", len(res.Documents))
	}
	if res.Documents[0].ContentSnippet == "" {
		t.Error("expected a non-empty snippet when IncludeSnippets is true")
	}
}

func TestQueryContent_ExplicitResultsMaxZeroSkipsExtractionAndReturnsEmpty(t *testing.T) {
	inv := &fakeInventoryProcessor{
		name: "sphinx",
		objects: []domain.InventoryObject{
			{Name: "os.path.join", InventoryType: "sphinx_objects_inv"},
		},
	}
	str := &fakeStructureProcessor{
		name: "sphinx-theme",
		caps: domain.ProcessorCapabilities{SupportedInventoryTypes: []string{"sphinx_objects_inv"}},
		err:  errors.New("ExtractContents should never be called when results_max=0"),
	}
	rt := newTestRuntime(inv, str)

	resultsMax := 0
	res, err := rt.QueryContent(context.Background(), ContentParams{Source: "/docs", Term: "join", ResultsMax: &resultsMax})
	if err != nil {
		t.Fatalf("expected results_max=0 to succeed without invoking extraction, got %v", err)
	}
	if len(res.Documents) != 0 {
		t.Errorf("expected no documents, got %+v", res.Documents)
	}
}

func TestQueryContent_IncompatibleInventoryType(t *testing.T) {
	inv := &fakeInventoryProcessor{
		name:    "sphinx",
		objects: []domain.InventoryObject{{Name: "os.path.join", InventoryType: "rustdoc"}},
	}
	str := &fakeStructureProcessor{
		name: "sphinx-theme",
		caps: domain.ProcessorCapabilities{SupportedInventoryTypes: []string{"sphinx_objects_inv"}},
		docs: []domain.ContentDocument{{Name: "os.path.join"}},
	}
	rt := newTestRuntime(inv, str)

	_, err := rt.QueryContent(context.Background(), ContentParams{Source: "/docs", Term: "join"})
	if err == nil {
		t.Fatal("expected an error when the structure processor doesn't support the inventory type")
	}
}

func TestQueryContent_BelowSuccessRateFails(t *testing.T) {
	objects := make([]domain.InventoryObject, 11)
	for i := range objects {
		objects[i] = domain.InventoryObject{Name: "os.path.join", InventoryType: "sphinx_objects_inv"}
	}
	inv := &fakeInventoryProcessor{name: "sphinx", objects: objects}
	str := &fakeStructureProcessor{
		name: "sphinx-theme",
		caps: domain.ProcessorCapabilities{SupportedInventoryTypes: []string{"sphinx_objects_inv"}},
		docs: []domain.ContentDocument{{Name: "os.path.join", Description: "x"}},
	}
	rt := newTestRuntime(inv, str)

	// 11 candidates, 1 extracted document: a 1/11 success rate falls just
	// under the 10% floor, unlike the exact-10% boundary which passes.
	resultsMax := 11
	_, err := rt.QueryContent(context.Background(), ContentParams{Source: "/docs", Term: "join", ResultsMax: &resultsMax})
	if err == nil {
		t.Fatal("expected a ContentExtractFailure when under 10% of candidates yield content")
	}
}
