package dataprocessing

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"

	"github.com/jgtann/gdp-dashboard/pkg/contracts/domain"
)

// DuplicatePolicy decides what happens when a (measure, group, day) key
// occurs more than once in a source
type DuplicatePolicy string

const (
	// DuplicateReject fails the load
	DuplicateReject DuplicatePolicy = "reject"
	// DuplicateFirst keeps the first row
	DuplicateFirst DuplicatePolicy = "first"
	// DuplicateLast keeps the value of the last row at the position of the first
	DuplicateLast DuplicatePolicy = "last"
)

// ParseDuplicatePolicy validates a policy name. Empty means reject.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(s); p {
	case "":
		return DuplicateReject, nil
	case DuplicateReject, DuplicateFirst, DuplicateLast:
		return p, nil
	default:
		return "", fmt.Errorf("invalid duplicate policy %q: must be reject, first or last", s)
	}
}

// LoadObserver receives store events, typically to record metrics
type LoadObserver interface {
	ObserveLoad(ctx context.Context, source string, rows int, duration time.Duration, err error)
	ObserveCacheHit(ctx context.Context, source string)
}

// Dataset is an immutable, loaded observation table
type Dataset struct {
	source       Source
	observations []domain.Observation
	measures     []string
	groups       []string
	fingerprint  string
	loadedAt     time.Time
}

// NewDataset wraps observations that are already unique per key. The
// slice is retained, not copied.
func NewDataset(src Source, obs []domain.Observation) *Dataset {
	ds := &Dataset{
		source:       src,
		observations: obs,
		loadedAt:     time.Now(),
	}
	seenM := make(map[string]struct{})
	seenG := make(map[string]struct{})
	for _, o := range obs {
		if _, ok := seenM[o.Measure]; !ok {
			seenM[o.Measure] = struct{}{}
			ds.measures = append(ds.measures, o.Measure)
		}
		if _, ok := seenG[o.Group]; !ok {
			seenG[o.Group] = struct{}{}
			ds.groups = append(ds.groups, o.Group)
		}
	}
	ds.fingerprint = fingerprint(obs)
	return ds
}

// Source returns the source the dataset was loaded from
func (d *Dataset) Source() Source { return d.source }

// Len returns the number of observations
func (d *Dataset) Len() int { return len(d.observations) }

// LoadedAt returns the load time
func (d *Dataset) LoadedAt() time.Time { return d.loadedAt }

// Fingerprint is a content hash of the observations, stable across loads of
// identical content
func (d *Dataset) Fingerprint() string { return d.fingerprint }

// Observations returns a copy of the observations in source order
func (d *Dataset) Observations() []domain.Observation {
	return append([]domain.Observation(nil), d.observations...)
}

// DistinctMeasures returns the distinct measures in first-seen order
func (d *Dataset) DistinctMeasures() []string {
	return append([]string(nil), d.measures...)
}

// DistinctGroups returns the distinct groups in first-seen order
func (d *Dataset) DistinctGroups() []string {
	return append([]string(nil), d.groups...)
}

// FullSelection selects every measure and group
func (d *Dataset) FullSelection() domain.Selection {
	return domain.Selection{Measures: d.DistinctMeasures(), Groups: d.DistinctGroups()}
}

// CheckSelection returns an *UnknownSelectionError when the selection names
// a measure or group that does not occur in the dataset
func (d *Dataset) CheckSelection(sel domain.Selection) error {
	if unknown := missingFrom(sel.Measures, d.measures); len(unknown) > 0 {
		return &UnknownSelectionError{Dimension: "measure", Values: unknown}
	}
	if unknown := missingFrom(sel.Groups, d.groups); len(unknown) > 0 {
		return &UnknownSelectionError{Dimension: "group", Values: unknown}
	}
	return nil
}

func missingFrom(values, universe []string) []string {
	set := toSet(universe)
	var out []string
	for _, v := range values {
		if _, ok := set[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}

func fingerprint(obs []domain.Observation) string {
	h, _ := blake2b.New256(nil)
	var buf [8]byte
	for _, o := range obs {
		h.Write([]byte(o.Measure))
		h.Write([]byte{0x1f})
		h.Write([]byte(o.Group))
		h.Write([]byte{0x1f})
		h.Write([]byte(o.Day))
		h.Write([]byte{0x1f})
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(o.Mean))
		h.Write(buf[:])
		h.Write([]byte{0x1e})
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:16])
}

// applyDuplicatePolicy resolves repeated (measure, group, day) keys
func applyDuplicatePolicy(table *Table, policy DuplicatePolicy) ([]domain.Observation, error) {
	first := make(map[domain.ObservationKey]int, len(table.Rows))
	out := make([]domain.Observation, 0, len(table.Rows))
	lines := make([]int, 0, len(table.Rows))

	for _, row := range table.Rows {
		key := row.Observation.Key()
		pos, dup := first[key]
		if !dup {
			first[key] = len(out)
			out = append(out, row.Observation)
			lines = append(lines, row.Line)
			continue
		}

		switch policy {
		case DuplicateFirst:
		case DuplicateLast:
			out[pos] = row.Observation
		default:
			return nil, loadError(table.Source, row.Line, "",
				"duplicate row for measure %q, group %q, day %q (first seen at row %d)",
				key.Measure, key.Group, key.Day, lines[pos])
		}
	}
	return out, nil
}

// StoreConfig configures a RecordStore
type StoreConfig struct {
	DuplicatePolicy DuplicatePolicy
	Observer        LoadObserver
}

// DefaultStoreConfig rejects duplicate keys
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{DuplicatePolicy: DuplicateReject}
}

// StoreStats reports cache usage
type StoreStats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Reads   int64 `json:"reads"`
}

// RecordStore loads sources and memoizes the resulting datasets by source
// identity. Entries are never invalidated. Concurrent first loads of one
// source share a single read.
type RecordStore struct {
	reader   Reader
	policy   DuplicatePolicy
	observer LoadObserver
	logger   *slog.Logger

	mu    sync.RWMutex
	cache map[string]*Dataset
	group singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
	reads  atomic.Int64
}

// NewRecordStore creates a store reading through reader
func NewRecordStore(reader Reader, logger *slog.Logger, cfg StoreConfig) *RecordStore {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DuplicatePolicy == "" {
		cfg.DuplicatePolicy = DuplicateReject
	}
	return &RecordStore{
		reader:   reader,
		policy:   cfg.DuplicatePolicy,
		observer: cfg.Observer,
		logger:   logger.With(slog.String("component", "record_store")),
		cache:    make(map[string]*Dataset),
	}
}

// Policy returns the duplicate policy of the store
func (s *RecordStore) Policy() DuplicatePolicy { return s.policy }

// LoadPath parses raw with ParseSource and loads it
func (s *RecordStore) LoadPath(ctx context.Context, raw string) (*Dataset, error) {
	src, err := ParseSource(raw)
	if err != nil {
		return nil, err
	}
	return s.Load(ctx, src)
}

// Load returns the dataset of src, reading it on first use. Failed loads are
// not cached.
func (s *RecordStore) Load(ctx context.Context, src Source) (*Dataset, error) {
	id := src.Identity()

	if ds := s.cached(id); ds != nil {
		s.hits.Add(1)
		if s.observer != nil {
			s.observer.ObserveCacheHit(ctx, id)
		}
		return ds, nil
	}
	s.misses.Add(1)

	v, err, shared := s.group.Do(id, func() (interface{}, error) {
		if ds := s.cached(id); ds != nil {
			return ds, nil
		}
		return s.read(ctx, src)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.DebugContext(ctx, "joined in-flight load", slog.String("source", id))
	}
	return v.(*Dataset), nil
}

func (s *RecordStore) cached(id string) *Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache[id]
}

func (s *RecordStore) read(ctx context.Context, src Source) (*Dataset, error) {
	id := src.Identity()
	start := time.Now()
	s.reads.Add(1)

	table, err := s.reader.Read(ctx, src)
	var obs []domain.Observation
	if err == nil {
		obs, err = applyDuplicatePolicy(table, s.policy)
	}
	if s.observer != nil {
		s.observer.ObserveLoad(ctx, id, len(obs), time.Since(start), err)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "dataset load failed",
			slog.String("source", id),
			slog.String("error", err.Error()))
		return nil, err
	}

	ds := NewDataset(src, obs)

	s.mu.Lock()
	s.cache[id] = ds
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "dataset loaded",
		slog.String("source", id),
		slog.Int("rows", ds.Len()),
		slog.Int("measures", len(ds.measures)),
		slog.Int("groups", len(ds.groups)),
		slog.String("duplicate_policy", string(s.policy)),
		slog.String("fingerprint", ds.fingerprint))
	if n := otherDays(obs); n > 0 {
		s.logger.WarnContext(ctx, "rows outside Day 1 and Day 2 are charted but not compared",
			slog.String("source", id),
			slog.Int("rows", n))
	}
	return ds, nil
}

func otherDays(obs []domain.Observation) int {
	n := 0
	for _, o := range obs {
		if !o.Day.IsComparable() {
			n++
		}
	}
	return n
}

// Stats returns cache statistics
func (s *RecordStore) Stats() StoreStats {
	s.mu.RLock()
	n := len(s.cache)
	s.mu.RUnlock()
	return StoreStats{
		Entries: n,
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
		Reads:   s.reads.Load(),
	}
}

// Sources returns the identities of cached datasets, sorted
func (s *RecordStore) Sources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.cache))
	for id := range s.cache {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
