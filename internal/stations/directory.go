// Package stations loads the station reference table and resolves the stop
// identifiers reported by the realtime feed.
package stations

import (
	"context"
	"iter"
	"sync"
	"sync/atomic"

	"trainmap.dev/internal/geo"
	"trainmap.dev/internal/metrics"
	"trainmap.dev/internal/models"
)

// Directory is an in-memory station lookup keyed by stop identifier,
// including the synthetic directional variants.
//
// A Directory is filled once by Load and is read-only afterwards. Readers
// never take a lock; they see either nothing or the complete key set.
type Directory struct {
	mu     sync.Mutex // serializes Load
	loaded atomic.Bool
	index  atomic.Pointer[index]
}

type index struct {
	byID      map[string]models.Station
	bounds    geo.BoundingBox
	hasBounds bool
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{}
}

// Load reads stations from src and publishes the expanded key set.
//
// Once a Load has succeeded every later call returns nil without touching
// src. A failed Load leaves the directory empty and may be retried.
func (d *Directory) Load(ctx context.Context, src Source) error {
	if d.loaded.Load() {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.loaded.Load() {
		return nil
	}

	rows, err := src.Stations(ctx)
	if err != nil {
		metrics.StationDirectoryLoads.WithLabelValues("error").Inc()
		return err
	}

	idx := &index{byID: expandSuffixes(rows)}
	if bbox, err := geo.ComputeBoundingBox(rows); err == nil {
		idx.bounds = bbox
		idx.hasBounds = true
	}

	d.index.Store(idx)
	d.loaded.Store(true)

	metrics.StationDirectoryLoads.WithLabelValues("success").Inc()
	metrics.StationDirectoryEntries.Set(float64(len(idx.byID)))
	return nil
}

// Loaded reports whether a Load has succeeded.
func (d *Directory) Loaded() bool {
	return d.loaded.Load()
}

// Len returns the number of registered keys, directional variants included.
func (d *Directory) Len() int {
	idx := d.index.Load()
	if idx == nil {
		return 0
	}
	return len(idx.byID)
}

// Resolve finds the station for a reported stop identifier.
//
// The lookup tries, in order: the identifier itself; for an identifier
// ending in "N" or "S", its base form; for any other identifier, the "N"
// variant and then the "S" variant. The boolean is false when nothing
// matched, which is an expected outcome.
func (d *Directory) Resolve(stopID string) (models.Station, bool) {
	idx := d.index.Load()
	if idx == nil || stopID == "" {
		return models.Station{}, false
	}

	if s, ok := idx.byID[stopID]; ok {
		return s, true
	}
	if hasDirectionSuffix(stopID) {
		s, ok := idx.byID[stopID[:len(stopID)-1]]
		return s, ok
	}
	for _, suffix := range directionSuffixes {
		if s, ok := idx.byID[stopID+suffix]; ok {
			return s, true
		}
	}
	return models.Station{}, false
}

// All yields every registered station, directional variants included.
// The sequence can be ranged over any number of times; its order is unspecified.
func (d *Directory) All() iter.Seq[models.Station] {
	return func(yield func(models.Station) bool) {
		idx := d.index.Load()
		if idx == nil {
			return
		}
		for _, s := range idx.byID {
			if !yield(s) {
				return
			}
		}
	}
}

// BoundingBox returns the box around every station with known coordinates.
// The boolean is false before a successful Load or when no coordinates are known.
func (d *Directory) BoundingBox() (geo.BoundingBox, bool) {
	idx := d.index.Load()
	if idx == nil || !idx.hasBounds {
		return geo.BoundingBox{}, false
	}
	return idx.bounds, true
}
