package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/gigurra/statement-stats/internal/store"
)

// Session owns the loaded records and the current Config. Every mutating
// operation transitions the Config, recomputes the totals from the full
// record set and persists the settings before returning.
//
// A Session is not safe for concurrent use.
type Session struct {
	store      store.Store
	logger     *slog.Logger
	thresholds Thresholds

	cfg     Config
	records []TransactionRecord
	sources []Source
	headers []string

	// version changes whenever the record set changes
	version uint64
	memo    memoKey
	memoSet bool
	totals  GroupedTotals
}

type memoKey struct {
	version     uint64
	fingerprint uint64
}

// SessionOptions configures NewSession
type SessionOptions struct {
	Store      store.Store // nil keeps everything in memory
	Thresholds Thresholds  // zero fields fall back to DefaultThresholds
	Logger     *slog.Logger
}

// NewSession loads persisted settings (falling back to defaults). Sources
// listed in the settings are not parsed until Restore is called.
func NewSession(ctx context.Context, opts SessionOptions) *Session {
	if opts.Store == nil {
		opts.Store = store.NewMemory()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	opts.Thresholds = opts.Thresholds.WithDefaults()

	s := &Session{
		store:      opts.Store,
		logger:     opts.Logger,
		thresholds: opts.Thresholds,
	}

	settings := LoadSettings(ctx, s.store, s.thresholds.DefaultLargeAmount, s.logger)
	cfg, errs := settings.Config(s.thresholds.DefaultLargeAmount)
	for _, err := range errs {
		s.logger.Warn("ignoring invalid persisted setting", "error", err)
	}
	s.cfg = cfg
	for _, arg := range settings.Sources {
		_, path := ParseFileArg(arg)
		s.sources = append(s.sources, Source{ID: SourceID(path), Path: arg})
	}

	if cached, err := LoadGroupedData(ctx, s.store); err == nil {
		s.logger.Debug("discarding cached totals, recomputing", "buckets", len(cached))
	}

	s.recompute()
	return s
}

// PersistedSources returns the file arguments of all known sources
func (s *Session) PersistedSources() []string {
	args := make([]string, len(s.sources))
	for i, src := range s.sources {
		args[i] = src.Path
	}
	return args
}

// Restore parses the persisted sources again. Unlike Ingest it does not
// auto-exclude anything: these records were already ingested once. Files
// that can no longer be read are dropped with a warning.
func (s *Session) Restore(ctx context.Context) []RowWarning {
	args := s.PersistedSources()
	if len(args) == 0 {
		return nil
	}

	parsed, err := ParseFiles(ctx, args)
	if err != nil {
		// fall back to one file at a time to keep what is still readable
		parsed = nil
		for _, arg := range args {
			one, err := ParseFiles(ctx, []string{arg})
			if err != nil {
				s.logger.Warn("dropping source that can no longer be read", "source", arg, "error", err)
				continue
			}
			parsed = append(parsed, one...)
		}
	}

	s.sources = nil
	s.records = nil
	var warnings []RowWarning
	for _, p := range parsed {
		s.merge(p)
		warnings = append(warnings, p.Warnings...)
	}
	s.logWarnings(warnings)
	s.commit(ctx)
	return warnings
}

// IngestResult summarizes one Ingest call
type IngestResult struct {
	Sources      []Source
	Records      int
	Warnings     []RowWarning
	AutoExcluded []string // item keys newly added to the custom exclusion set
}

// Ingest parses files concurrently and merges them once all are parsed.
// If any file fails nothing is merged. Newly ingested records at or above
// the auto exclusion threshold add their item keys to the custom exclusion
// set. A source whose name is already loaded is replaced; two files with the
// same name in one batch are rejected. Paths are stored absolute.
func (s *Session) Ingest(ctx context.Context, args []string) (IngestResult, error) {
	var res IngestResult
	if len(args) == 0 {
		return res, nil
	}

	args, err := normalizeArgs(args)
	if err != nil {
		return res, err
	}
	parsed, err := ParseFiles(ctx, args)
	if err != nil {
		return res, err
	}

	var added []TransactionRecord
	for _, p := range parsed {
		s.merge(p)
		added = append(added, p.Records...)
		res.Sources = append(res.Sources, p.Source)
		res.Warnings = append(res.Warnings, p.Warnings...)
	}
	res.Records = len(added)

	before := s.cfg
	s.cfg = s.cfg.WithAutoExcluded(AutoExcludedKeys(added, s.thresholds.AutoExclude)...)
	for _, k := range s.cfg.CustomExcludedItems() {
		if !before.IsCustomExcluded(k) {
			res.AutoExcluded = append(res.AutoExcluded, k)
		}
	}

	s.logWarnings(res.Warnings)
	s.logger.Info("ingested statements", "files", len(parsed), "records", res.Records, "auto_excluded", len(res.AutoExcluded))
	s.commit(ctx)
	return res, nil
}

func normalizeArgs(args []string) ([]string, error) {
	out := make([]string, len(args))
	seen := make(map[string]string, len(args))
	for i, arg := range args {
		abs, err := AbsFileArg(arg)
		if err != nil {
			return nil, err
		}
		_, path := ParseFileArg(abs)
		id := SourceID(path)
		if prev, ok := seen[id]; ok {
			return nil, fmt.Errorf("%w: %s and %s are both %s", ErrDuplicateSource, prev, path, id)
		}
		seen[id] = path
		out[i] = abs
	}
	return out, nil
}

// merge replaces or appends one parsed source
func (s *Session) merge(p ParsedSource) {
	s.dropSource(p.Source.ID)
	s.sources = append(s.sources, p.Source)
	s.records = append(slices.Clip(s.records), p.Records...)
	if len(s.headers) == 0 && p.RowCount > 0 {
		s.headers = DisplayHeaders(p.Header)
	}
	s.version++
}

func (s *Session) dropSource(id string) bool {
	idx := slices.IndexFunc(s.sources, func(src Source) bool { return src.ID == id })
	if idx < 0 {
		return false
	}
	s.sources = slices.Delete(slices.Clone(s.sources), idx, idx+1)
	s.records = slices.DeleteFunc(slices.Clone(s.records), func(r TransactionRecord) bool { return r.SourceID == id })
	s.version++
	return true
}

// RemoveSource removes every record of a source. name may be the source
// ID (file base name) or the path it was added with.
func (s *Session) RemoveSource(ctx context.Context, name string) error {
	_, path := ParseFileArg(name)
	if !s.dropSource(SourceID(path)) {
		return fmt.Errorf("%w: %s", ErrUnknownSource, name)
	}
	s.commit(ctx)
	return nil
}

func (s *Session) SetGroupBy(ctx context.Context, mode string) error {
	g, err := ParseGroupBy(mode)
	if err != nil {
		return err
	}
	next, err := s.cfg.WithGroupBy(g)
	if err != nil {
		return err
	}
	s.cfg = next
	s.commit(ctx)
	return nil
}

func (s *Session) SetExcludeLargeAmount(ctx context.Context, enabled bool) {
	s.cfg = s.cfg.WithExcludeLargeAmount(enabled)
	s.commit(ctx)
}

// SetLargeAmountThreshold applies user input. Non-numeric or non-positive
// input is rejected and the current threshold is kept.
func (s *Session) SetLargeAmountThreshold(ctx context.Context, input string) error {
	v, err := ParseThreshold(strings.TrimSpace(input))
	if err != nil {
		return err
	}
	next, err := s.cfg.WithLargeAmountThreshold(v)
	if err != nil {
		return err
	}
	s.cfg = next
	s.commit(ctx)
	return nil
}

// ToggleItem flips the custom exclusion of an item key. It reports false
// when the key is a default exclusion and nothing changed.
func (s *Session) ToggleItem(ctx context.Context, key string) bool {
	if IsDefaultExcluded(key) {
		return false
	}
	s.cfg = s.cfg.ToggleItem(key)
	s.commit(ctx)
	return true
}

// ToggleRow flips the exclusion of one record, given its full ID or an
// unambiguous prefix of it.
func (s *Session) ToggleRow(ctx context.Context, ref string) (RecordID, error) {
	rec, err := s.FindRecord(ref)
	if err != nil {
		return RecordID{}, err
	}
	s.cfg = s.cfg.ToggleRow(rec.ID)
	s.commit(ctx)
	return rec.ID, nil
}

var (
	ErrRecordNotFound  = errors.New("no record with that id")
	ErrAmbiguousRecord = errors.New("record id prefix is ambiguous")
)

// FindRecord looks a record up by full ID or unique ID prefix
func (s *Session) FindRecord(ref string) (TransactionRecord, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" {
		return TransactionRecord{}, fmt.Errorf("%w: empty id", ErrRecordNotFound)
	}
	var found []TransactionRecord
	for _, rec := range s.records {
		if strings.HasPrefix(rec.ID.String(), ref) {
			found = append(found, rec)
		}
	}
	switch len(found) {
	case 0:
		return TransactionRecord{}, fmt.Errorf("%w: %s", ErrRecordNotFound, ref)
	case 1:
		return found[0], nil
	}
	return TransactionRecord{}, fmt.Errorf("%w: %s matches %d records", ErrAmbiguousRecord, ref, len(found))
}

// ResetSettings clears custom exclusions and restores the large amount
// policy defaults
func (s *Session) ResetSettings(ctx context.Context) {
	s.cfg = s.cfg.Reset(s.thresholds.DefaultLargeAmount)
	s.commit(ctx)
}

func (s *Session) commit(ctx context.Context) {
	s.recompute()
	s.persist(ctx)
}

func (s *Session) recompute() {
	key := memoKey{version: s.version, fingerprint: s.cfg.Fingerprint()}
	if s.memoSet && s.memo == key {
		return
	}
	s.totals = Aggregate(s.records, s.cfg)
	s.memo = key
	s.memoSet = true

	if invalid := s.totals.Invalid(); len(invalid) > 0 {
		s.logger.Warn("totals are not a number", "buckets", invalid)
	}
}

// persist never fails the operation: store errors are logged
func (s *Session) persist(ctx context.Context) {
	if err := SaveSettings(ctx, s.store, s.cfg.Settings(s.PersistedSources())); err != nil {
		s.logger.Error("persisting settings failed", "error", err)
	}
	if err := SaveGroupedData(ctx, s.store, s.cfg.GroupBy(), s.totals); err != nil {
		s.logger.Error("persisting grouped data failed", "error", err)
	}
}

func (s *Session) logWarnings(warnings []RowWarning) {
	for _, w := range warnings {
		s.logger.Warn("rejected row", "source", w.Source, "row", w.Row, "field", w.Field, "value", w.Value)
	}
}

func (s *Session) Config() Config { return s.cfg }
func (s *Session) Thresholds() Thresholds { return s.thresholds }
func (s *Session) Totals() GroupedTotals { return s.totals }
func (s *Session) Sources() []Source { return slices.Clone(s.sources) }
func (s *Session) Headers() []string { return slices.Clone(s.headers) }
func (s *Session) Records() []TransactionRecord {
	return slices.Clone(s.records)
}

func (s *Session) Averages(selected []string) Averages {
	return ComputeAverages(s.totals, selected)
}

func (s *Session) ExcludedItems() []ExcludedItem {
	return BuildExcludedItems(s.records, s.cfg, s.thresholds.DisplayLargeAmount)
}

func (s *Session) RawRows(filter RawFilter) []RawRow {
	return FilterRecords(s.records, s.cfg, filter, s.thresholds.RawLargeAmount)
}

func (s *Session) Coverage() Coverage {
	return AnalyzeDataCoverage(s.records)
}
