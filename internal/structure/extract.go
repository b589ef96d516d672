package structure

import (
	"context"

	"github.com/librovore/librovore/internal/domain"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultPerHostConcurrency is the fan-out cap for ExtractConcurrent when
// the caller doesn't override it (spec §5).
const DefaultPerHostConcurrency = 8

// ExtractOne extracts a single ContentDocument for one candidate object.
// ok is false when extraction produced no meaningful content, which the
// caller simply drops rather than treating as an error (spec §3.1).
type ExtractOne func(ctx context.Context, obj domain.InventoryObject) (doc domain.ContentDocument, ok bool, err error)

// ExtractConcurrent fans candidate objects out across a bounded number of
// goroutines (spec §4.3, §5), collecting every meaningful result. A
// per-candidate error does not abort the others; it is simply dropped,
// since partial extraction failure is expected and handled at the query
// layer via the 10%-success-rate threshold (spec §4.5).
func ExtractConcurrent(ctx context.Context, perHost int, objects []domain.InventoryObject,
	fn ExtractOne) ([]domain.ContentDocument, error) {
	if perHost <= 0 {
		perHost = DefaultPerHostConcurrency
	}

	sem := semaphore.NewWeighted(int64(perHost))
	group, gctx := errgroup.WithContext(ctx)
	results := make([]domain.ContentDocument, len(objects))
	ok := make([]bool, len(objects))

	for i, obj := range objects {
		i, obj := i, obj
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		group.Go(func() error {
			defer sem.Release(1)
			doc, matched, err := fn(gctx, obj)
			if err != nil {
				// Extraction failures for one candidate don't abort the
				// batch; the query layer tallies the success rate.
				return nil
			}
			if matched {
				results[i] = doc
				ok[i] = true
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	out := make([]domain.ContentDocument, 0, len(objects))
	for i, kept := range ok {
		if kept {
			out = append(out, results[i])
		}
	}
	return out, nil
}
