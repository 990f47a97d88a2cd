package dataloader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"fingenius/internal/models"
	"fingenius/internal/services/metrics"
	"fingenius/internal/services/sample"
	"fingenius/internal/services/storage"
)

// DefaultUserID is served when a request names no profile
const DefaultUserID = "default"

// Options configures optional loader behavior
type Options struct {
	// SeedPath is an engineered dataset served for ids with no stored profile
	SeedPath string
	// UploadsDir keeps a copy of every raw upload when set
	UploadsDir string
}

// DataLoader turns uploaded files into FinancialProfiles and resolves
// profile ids to stored, seeded or sample data
type DataLoader struct {
	profiles storage.ProfileStore
	files    *storage.Storage
	builder  *metrics.Builder
	opts     Options
}

// New creates a DataLoader. files may be nil, in which case seed data is
// read directly from disk and raw uploads are not kept.
func New(profiles storage.ProfileStore, files *storage.Storage, opts Options) *DataLoader {
	return &DataLoader{
		profiles: profiles,
		files:    files,
		builder:  metrics.New(),
		opts:     opts,
	}
}

// Build runs the metrics path for strategy over table
func (dl *DataLoader) Build(table *models.Table, strategy Strategy) (*models.FinancialProfile, error) {
	var (
		p   *models.FinancialProfile
		err error
	)
	switch strategy {
	case StrategyEngineered:
		p, err = dl.builder.Engineered(table)
	case StrategyTransactionLog:
		p, err = dl.builder.TransactionLog(table)
	case StrategyInvestments:
		p, err = dl.builder.InvestmentTable(table, ReturnColumn(table.Columns))
	case StrategyGoals:
		p, err = dl.builder.GoalTable(table)
	default:
		return nil, fmt.Errorf("%w: %v", ErrNoStrategyMatch, table.Columns)
	}
	if err != nil {
		return nil, err
	}
	sample.Fill(p)
	return p, nil
}

// Parse reads an uploaded file and builds its profile. Tables that match
// no known shape yield sample data with StrategyNone rather than an error.
func (dl *DataLoader) Parse(data []byte, filename string) (*models.FinancialProfile, Strategy, error) {
	table, err := ReadTable(data, filename)
	if err != nil {
		return nil, StrategyNone, err
	}

	strategy, err := ResolveStrategy(table.Columns)
	if errors.Is(err, ErrNoStrategyMatch) {
		log.Warn().Str("file", filename).Strs("columns", table.Columns).
			Msg("Unrecognized columns, serving sample data")
		p := sample.Profile("")
		p.Source = "upload:" + filename
		p.GeneratedAt = dl.now()
		return p, StrategyNone, nil
	}

	p, err := dl.Build(table, strategy)
	if err != nil {
		var cellErr *metrics.CellError
		if errors.As(err, &cellErr) {
			return nil, strategy, &ParseError{Filename: filename, Err: err}
		}
		return nil, strategy, err
	}

	p.Source = "upload:" + filename
	p.GeneratedAt = dl.now()

	log.Info().
		Str("file", filename).
		Str("strategy", string(strategy)).
		Int("rows", len(table.Rows)).
		Int("expenses", len(p.Expenses)).
		Msg("Parsed upload")

	return p, strategy, nil
}

// Ingest parses an upload and stores the result under id
func (dl *DataLoader) Ingest(ctx context.Context, id string, data []byte, filename string) (*models.FinancialProfile, Strategy, error) {
	p, strategy, err := dl.Parse(data, filename)
	if err != nil {
		return nil, strategy, err
	}
	p.UserID = id

	dl.keepUpload(id, filename, data)

	if err := dl.profiles.Put(ctx, id, p); err != nil {
		return nil, strategy, fmt.Errorf("store profile: %w", err)
	}
	return p, strategy, nil
}

// keepUpload copies the raw upload into the uploads directory. Failures are
// logged but never fail the upload.
func (dl *DataLoader) keepUpload(id, filename string, data []byte) {
	if dl.files == nil || dl.opts.UploadsDir == "" {
		return
	}
	path := filepath.Join(dl.opts.UploadsDir, id+filepath.Ext(filename))
	if err := dl.files.WriteFile(path, data, 0600); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Could not keep raw upload")
	}
}

// LoadProfile returns the profile stored under id, then the seed dataset,
// then sample data. An empty id means DefaultUserID. An id the store cannot
// hold (spaces, path separators) is never stored, so it is served like an
// unknown one.
func (dl *DataLoader) LoadProfile(ctx context.Context, id string) (*models.FinancialProfile, error) {
	if id == "" {
		id = DefaultUserID
	}

	p, err := dl.profiles.Get(ctx, id)
	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, storage.ErrInvalidID):
		log.Warn().Str("profile_id", id).Msg("Profile id cannot be stored, serving fallback data")
	case !errors.Is(err, storage.ErrNotFound):
		return nil, err
	}

	if dl.opts.SeedPath != "" {
		p, err := dl.loadSeed()
		if err == nil {
			p.UserID = id
			return p, nil
		}
		log.Warn().Err(err).Str("path", dl.opts.SeedPath).Msg("Seed dataset unusable, serving sample data")
	}

	p = sample.Profile(id)
	p.GeneratedAt = dl.now()
	return p, nil
}

func (dl *DataLoader) loadSeed() (*models.FinancialProfile, error) {
	var (
		data []byte
		err  error
	)
	if dl.files != nil {
		data, err = dl.files.ReadFile(dl.opts.SeedPath)
	} else {
		data, err = os.ReadFile(dl.opts.SeedPath)
	}
	if err != nil {
		return nil, fmt.Errorf("read seed dataset: %w", err)
	}

	p, strategy, err := dl.Parse(data, filepath.Base(dl.opts.SeedPath))
	if err != nil {
		return nil, err
	}
	if strategy == StrategyNone {
		return nil, fmt.Errorf("%w in seed dataset", ErrNoStrategyMatch)
	}
	p.Source = "seed:" + dl.opts.SeedPath
	return p, nil
}

func (dl *DataLoader) now() time.Time {
	if dl.builder.Now != nil {
		return dl.builder.Now()
	}
	return time.Now()
}
