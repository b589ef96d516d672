// Package detect implements the detection system (spec §4.4): per-genus
// concurrent processor fan-out, confidence-based selection, and a
// process-wide detections cache.
package detect

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/librovore/librovore/internal/domain"
	"github.com/librovore/librovore/internal/inventory"
	"github.com/librovore/librovore/internal/structure"
	"golang.org/x/sync/errgroup"
)

// DefaultTTL is the detections cache entry lifetime (spec §4.4 step 6).
const DefaultTTL = time.Hour

// System holds the two processor registries and their independent
// detections caches.
type System struct {
	Inventory *inventory.Registry
	Structure *structure.Registry

	ttl time.Duration

	mu             sync.Mutex
	inventoryCache map[string]domain.CacheEntry[[]domain.Detection]
	structureCache map[string]domain.CacheEntry[[]domain.Detection]
	nowFn          func() time.Time
}

// NewSystem constructs a System with the given registries.
func NewSystem(inv *inventory.Registry, str *structure.Registry) *System {
	return &System{
		Inventory:      inv,
		Structure:      str,
		ttl:            DefaultTTL,
		inventoryCache: make(map[string]domain.CacheEntry[[]domain.Detection]),
		structureCache: make(map[string]domain.CacheEntry[[]domain.Detection]),
		nowFn:          time.Now,
	}
}

// NormalizeSource applies spec §4.4 step 1: resolve file paths to
// absolute form, strip trailing slashes, and lowercase scheme/host for
// HTTP sources.
func NormalizeSource(source string) string {
	if u, err := url.Parse(source); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		u.Scheme = strings.ToLower(u.Scheme)
		u.Host = strings.ToLower(u.Host)
		u.Path = strings.TrimRight(u.Path, "/")
		return u.String()
	}
	abs, err := filepath.Abs(source)
	if err != nil {
		return strings.TrimRight(source, "/")
	}
	return strings.TrimRight(abs, "/")
}

// DetectInventory runs inventory-genus detection for source.
func (s *System) DetectInventory(ctx context.Context, source string) (domain.Detection, error) {
	normalized := NormalizeSource(source)
	if detections, ok := s.lookupCache(s.inventoryCache, normalized); ok {
		return selectAmong(detections, "")
	}

	procs := s.Inventory.All()
	detections := make([]domain.Detection, len(procs))
	group, gctx := errgroup.WithContext(ctx)
	for i, p := range procs {
		i, p := i, p
		group.Go(func() error {
			det, err := p.Detect(gctx, normalized)
			if err != nil {
				detections[i] = domain.Detection{
					ProcessorName: p.Name(), Genus: domain.GenusInventory, Source: normalized, Confidence: 0,
				}
				return nil
			}
			detections[i] = det
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return domain.Detection{}, err
	}

	s.storeCache(&s.inventoryCache, normalized, detections)
	return selectAmong(detections, "")
}

// DetectStructure runs structure-genus detection for source. inventoryHint,
// if non-empty, biases ties via ConfidenceByInventoryType (spec §4.4 step
// 5's cross-genus coordination for query_content).
func (s *System) DetectStructure(ctx context.Context, source string, inventoryHint string) (domain.Detection, error) {
	normalized := NormalizeSource(source)
	if detections, ok := s.lookupCache(s.structureCache, normalized); ok {
		return selectAmong(detections, inventoryHint)
	}

	procs := s.Structure.All()
	detections := make([]domain.Detection, len(procs))
	group, gctx := errgroup.WithContext(ctx)
	for i, p := range procs {
		i, p := i, p
		group.Go(func() error {
			det, err := p.Detect(gctx, normalized)
			if err != nil {
				detections[i] = domain.Detection{
					ProcessorName: p.Name(), Genus: domain.GenusStructure, Source: normalized, Confidence: 0,
				}
				return nil
			}
			detections[i] = det
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return domain.Detection{}, err
	}

	s.storeCache(&s.structureCache, normalized, detections)
	return selectAmong(detections, inventoryHint)
}

// lookupCache returns the full set of cached detections for
// normalizedSource, still in registration order, from a non-expired
// cache entry. Callers re-run selectAmong themselves so a per-call
// inventoryHint can still change the winner on a warm cache, and so
// registration-order tiebreaking stays deterministic instead of
// depending on map iteration order (spec §4.4 step 5, §8).
func (s *System) lookupCache(cache map[string]domain.CacheEntry[[]domain.Detection],
	normalizedSource string) ([]domain.Detection, bool) {
	s.mu.Lock()
	entry, ok := cache[normalizedSource]
	s.mu.Unlock()
	if !ok || entry.Expired(s.nowFn()) {
		return nil, false
	}
	return entry.Result.Value, true
}

func (s *System) storeCache(cache *map[string]domain.CacheEntry[[]domain.Detection],
	normalizedSource string, detections []domain.Detection) {
	ordered := make([]domain.Detection, len(detections))
	copy(ordered, detections)
	s.mu.Lock()
	(*cache)[normalizedSource] = domain.CacheEntry[[]domain.Detection]{
		Result:   domain.CacheEntryResult[[]domain.Detection]{Value: ordered},
		StoredAt: s.nowFn(),
		TTL:      s.ttl,
	}
	s.mu.Unlock()
}

// selectAmong implements spec §4.4 steps 4-5: drop rejected detections,
// pick the highest confidence, breaking ties by registration order
// (callers pass detections already in registration order) and
// optionally by confidence_by_inventory_type for inventoryHint.
func selectAmong(detections []domain.Detection, inventoryHint string) (domain.Detection, error) {
	var best *domain.Detection
	bestScore := -1.0
	for i := range detections {
		d := detections[i]
		if d.Rejected() {
			continue
		}
		score := d.Confidence
		if inventoryHint != "" {
			if biased, ok := d.Capabilities.ConfidenceByInventoryType[inventoryHint]; ok && biased > score {
				score = biased
			}
		}
		if score > bestScore {
			bestScore = score
			dCopy := d
			best = &dCopy
		}
	}
	if best == nil {
		if len(detections) > 0 {
			return domain.Detection{}, domain.NewProcessorInavailabilityError(detections[0].Source, detections[0].Genus)
		}
		return domain.Detection{}, domain.NewProcessorInavailabilityError("", domain.GenusInventory)
	}
	return *best, nil
}
