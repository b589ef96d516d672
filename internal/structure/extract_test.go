package structure

import (
	"context"
	"errors"
	"testing"

	"github.com/librovore/librovore/internal/domain"
)

func TestExtractConcurrent_PreservesOrderAndDropsUnmatched(t *testing.T) {
	objects := []domain.InventoryObject{
		{Name: "a"}, {Name: "b"}, {Name: "c"},
	}
	docs, err := ExtractConcurrent(context.Background(), 2, objects,
		func(_ context.Context, obj domain.InventoryObject) (domain.ContentDocument, bool, error) {
			if obj.Name == "b" {
				return domain.ContentDocument{}, false, nil
			}
			return domain.ContentDocument{Name: obj.Name}, true, nil
		})
	if err != nil {
		t.Fatalf("ExtractConcurrent: %v", err)
	}
	if len(docs) != 2 || docs[0].Name != "a" || docs[1].Name != "c" {
		t.Errorf("expected [a c] preserving original order, got %+v", docs)
	}
}

func TestExtractConcurrent_DropsPerCandidateErrorsWithoutAborting(t *testing.T) {
	objects := []domain.InventoryObject{{Name: "a"}, {Name: "b"}}
	docs, err := ExtractConcurrent(context.Background(), 2, objects,
		func(_ context.Context, obj domain.InventoryObject) (domain.ContentDocument, bool, error) {
			if obj.Name == "a" {
				return domain.ContentDocument{}, false, errors.New("extraction failed")
			}
			return domain.ContentDocument{Name: obj.Name}, true, nil
		})
	if err != nil {
		t.Fatalf("expected per-candidate errors to be absorbed, got %v", err)
	}
	if len(docs) != 1 || docs[0].Name != "b" {
		t.Errorf("expected only the successful candidate to survive, got %+v", docs)
	}
}

func TestExtractConcurrent_EmptyInputReturnsEmpty(t *testing.T) {
	docs, err := ExtractConcurrent(context.Background(), 4, nil,
		func(context.Context, domain.InventoryObject) (domain.ContentDocument, bool, error) {
			t.Fatal("fn should never be called for an empty candidate list")
			return domain.ContentDocument{}, false, nil
		})
	if err != nil {
		t.Fatalf("ExtractConcurrent: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected no documents, got %+v", docs)
	}
}

func TestExtractConcurrent_DefaultsPerHostConcurrency(t *testing.T) {
	objects := []domain.InventoryObject{{Name: "a"}}
	docs, err := ExtractConcurrent(context.Background(), 0, objects,
		func(_ context.Context, obj domain.InventoryObject) (domain.ContentDocument, bool, error) {
			return domain.ContentDocument{Name: obj.Name}, true, nil
		})
	if err != nil {
		t.Fatalf("ExtractConcurrent: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("expected one document with perHost<=0 falling back to the default, got %+v", docs)
	}
}
