package survey

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding"

	"sosurvey/internal/config"
	apperrors "sosurvey/internal/errors"
)

// LoaderConfig holds configuration options for the Loader.
type LoaderConfig struct {
	Encoding      string   // charset of the CSV members, latin-1 when empty
	MissingValues []string // cell values treated as unanswered
	BaseDir       string   // relative archive paths are resolved against it
	// CacheTTL keeps parsed datasets in memory for this long. Zero disables
	// the dataset cache.
	CacheTTL time.Duration
}

// LoaderConfigFrom converts the survey section of the application config.
func LoaderConfigFrom(cfg config.SurveyConfig) LoaderConfig {
	return LoaderConfig{
		Encoding:      cfg.Encoding,
		MissingValues: cfg.MissingValues,
		BaseDir:       cfg.BaseDir,
		CacheTTL:      cfg.CacheTTL,
	}
}

// Loader reads yearly survey datasets out of zip archives.
//
// The lookup table is read at most once per Loader; afterwards every call
// shares the same immutable *Lookup, so Load is safe for concurrent use.
type Loader struct {
	logger  *slog.Logger
	cfg     LoaderConfig
	charset encoding.Encoding

	mu     sync.Mutex
	lookup *Lookup
	source func() (*Lookup, error)

	// datasets holds parsed DataFrames by year key when CacheTTL is set.
	datasets *cache.Cache

	openArchive func(path string) (*zip.ReadCloser, error)
}

// NewLoader creates a loader over an already loaded lookup table.
func NewLoader(lookup *Lookup, logger *slog.Logger, cfg LoaderConfig) (*Loader, error) {
	if lookup == nil {
		return nil, apperrors.NewAppValidationError("survey loader needs a lookup table")
	}
	return newLoader(func() (*Lookup, error) { return lookup, nil }, logger, cfg)
}

// NewLazyLoader creates a loader that reads the lookup file at path on first use.
// A failed read is retried by the next call; a successful one is never repeated.
func NewLazyLoader(path string, logger *slog.Logger, cfg LoaderConfig) (*Loader, error) {
	return newLoader(func() (*Lookup, error) { return LoadLookup(path) }, logger, cfg)
}

func newLoader(source func() (*Lookup, error), logger *slog.Logger, cfg LoaderConfig) (*Loader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	charset, err := ResolveEncoding(cfg.Encoding)
	if err != nil {
		return nil, apperrors.NewConfigError("invalid survey encoding", err)
	}
	if len(cfg.MissingValues) == 0 {
		cfg.MissingValues = config.DefaultMissingValues
	}
	l := &Loader{
		logger:      logger.With("component", "survey_loader"),
		cfg:         cfg,
		charset:     charset,
		source:      source,
		openArchive: zip.OpenReader,
	}
	if cfg.CacheTTL > 0 {
		l.datasets = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return l, nil
}

// YearKey converts a year given as int, string or anything printable to a lookup key.
func YearKey(year any) string {
	return fmt.Sprint(year)
}

// Lookup returns the lookup table, reading it if this is the first call.
func (l *Loader) Lookup() (*Lookup, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.lookup != nil {
		return l.lookup, nil
	}
	lookup, err := l.source()
	if err != nil {
		return nil, err
	}
	l.lookup = lookup
	l.logger.Debug("survey lookup loaded", slog.Int("years", lookup.Len()))
	return lookup, nil
}

// Years returns the known survey years in ascending order.
func (l *Loader) Years() ([]string, error) {
	lookup, err := l.Lookup()
	if err != nil {
		return nil, err
	}
	return lookup.Years(), nil
}

// Has reports whether year is in the lookup table.
func (l *Loader) Has(year any) (bool, error) {
	lookup, err := l.Lookup()
	if err != nil {
		return false, err
	}
	_, ok := lookup.Get(YearKey(year))
	return ok, nil
}

// Load returns the survey results for year.
//
// A year missing from the lookup yields an empty DataFrame and a nil error;
// no archive is touched in that case. Missing archives, missing members and
// malformed CSV are returned as errors. With a dataset cache the returned
// DataFrame may be shared with other callers and must be treated as read-only.
func (l *Loader) Load(ctx context.Context, year any) (dataframe.DataFrame, error) {
	lookup, err := l.Lookup()
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	key := YearKey(year)
	entry, ok := lookup.Get(key)
	if !ok {
		l.logger.DebugContext(ctx, "survey year not in lookup", slog.String("year", key))
		return dataframe.DataFrame{}, nil
	}

	if err := ctx.Err(); err != nil {
		return dataframe.DataFrame{}, err
	}

	if l.datasets != nil {
		if cached, found := l.datasets.Get(key); found {
			l.logger.DebugContext(ctx, "survey served from cache", slog.String("year", key))
			return cached.(dataframe.DataFrame), nil
		}
	}

	df, err := l.readEntry(key, entry)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	if l.datasets != nil {
		l.datasets.SetDefault(key, df)
	}

	l.logger.InfoContext(ctx, "survey loaded",
		slog.String("year", key),
		slog.Int("rows", df.Nrow()),
		slog.Int("columns", df.Ncol()))
	return df, nil
}

// LoadMany loads several years concurrently. The result is keyed by year key;
// unknown years map to empty DataFrames. The first failure cancels the rest.
func (l *Loader) LoadMany(ctx context.Context, years ...any) (map[string]dataframe.DataFrame, error) {
	return l.LoadManyFunc(ctx, years, nil)
}

// LoadManyFunc is LoadMany with a callback run after each year has loaded
// successfully. done may be called from several goroutines at once.
func (l *Loader) LoadManyFunc(ctx context.Context, years []any, done func(year string)) (map[string]dataframe.DataFrame, error) {
	// Read the lookup up front so the goroutines only share the immutable table.
	if _, err := l.Lookup(); err != nil {
		return nil, err
	}

	frames := make([]dataframe.DataFrame, len(years))
	g, gctx := errgroup.WithContext(ctx)
	for i, year := range years {
		i, year := i, year
		g.Go(func() error {
			df, err := l.Load(gctx, year)
			if err != nil {
				return fmt.Errorf("load survey %s: %w", YearKey(year), err)
			}
			frames[i] = df
			if done != nil {
				done(YearKey(year))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make(map[string]dataframe.DataFrame, len(years))
	for i, year := range years {
		result[YearKey(year)] = frames[i]
	}
	return result, nil
}

// Forget drops every cached dataset. It is a no-op without a dataset cache.
func (l *Loader) Forget() {
	if l.datasets != nil {
		l.datasets.Flush()
	}
}

func (l *Loader) readEntry(key string, entry Entry) (dataframe.DataFrame, error) {
	archivePath := entry.ArchivePath
	if l.cfg.BaseDir != "" && !filepath.IsAbs(archivePath) {
		archivePath = filepath.Join(l.cfg.BaseDir, archivePath)
	}

	zr, err := l.openArchive(archivePath)
	if err != nil {
		return dataframe.DataFrame{}, apperrors.NewArchiveError("failed to open survey archive", err).
			WithContext("year", key).
			WithContext("path", archivePath)
	}
	defer zr.Close()

	member, err := openMember(&zr.Reader, entry.MemberName)
	if err != nil {
		return dataframe.DataFrame{}, apperrors.NewArchiveError("failed to open survey member", err).
			WithContext("year", key).
			WithContext("path", archivePath).
			WithContext("member", entry.MemberName)
	}
	defer member.Close()

	df, err := ReadCSV(member, l.charset, l.cfg.MissingValues)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("survey %s (%s): %w", key, entry.MemberName, err)
	}
	return df, nil
}

// openMember opens the archive member whose name matches exactly.
func openMember(zr *zip.Reader, name string) (io.ReadCloser, error) {
	for _, f := range zr.File {
		if f.Name == name {
			return f.Open()
		}
	}
	return nil, fmt.Errorf("no member named %q in archive", name)
}

// ReadCSV decodes r from charset and parses it as comma-separated text with
// a header row. Column types are inferred from the data and cells listed in
// missing become missing values.
func ReadCSV(r io.Reader, charset encoding.Encoding, missing []string) (dataframe.DataFrame, error) {
	if charset != nil {
		r = charset.NewDecoder().Reader(r)
	}
	if len(missing) == 0 {
		missing = config.DefaultMissingValues
	}

	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.WithDelimiter(','),
		dataframe.NaNValues(missing),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, apperrors.NewParsingError("failed to parse survey csv", df.Err)
	}
	return df, nil
}
