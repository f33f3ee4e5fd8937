package registry

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"ddream/internal/models"
)

// blobKey is the single fixed key the whole mapping lives under.
const blobKey = "ddream_games_detailed"

// Store is the local game registry cache: one JSON mapping from ticker to
// CachedGameMeta, persisted as a single row. Writes replace the full
// mapping (read-modify-write, last write wins); entries are never evicted
// and must be assumed stale at every read. Phase, price, and other
// chain-derived fields are never trusted from here.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
	mu     sync.Mutex
}

func New(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// load reads the full mapping. Absent or corrupt payloads come back as an
// empty mapping, never as an error.
func (s *Store) load(ctx context.Context) map[string]models.CachedGameMeta {
	var row models.RegistryBlob
	err := s.db.WithContext(ctx).First(&row, "key = ?", blobKey).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) && s.logger != nil {
			s.logger.Warn("registry read failed", zap.Error(err))
		}
		return map[string]models.CachedGameMeta{}
	}
	games := map[string]models.CachedGameMeta{}
	if err := json.Unmarshal(row.Data, &games); err != nil {
		if s.logger != nil {
			s.logger.Warn("registry payload corrupt, treating as empty", zap.Error(err))
		}
		return map[string]models.CachedGameMeta{}
	}
	return games
}

func (s *Store) save(ctx context.Context, games map[string]models.CachedGameMeta) error {
	data, err := json.Marshal(games)
	if err != nil {
		return err
	}
	row := models.RegistryBlob{
		Key:       blobKey,
		Data:      datatypes.JSON(data),
		UpdatedAt: time.Now().UTC(),
	}
	return s.db.WithContext(ctx).Save(&row).Error
}

// Get returns the cached meta for ticker, or false when absent.
func (s *Store) Get(ctx context.Context, ticker string) (models.CachedGameMeta, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	meta, ok := s.load(ctx)[ticker]
	return meta, ok
}

// Put upserts one entry; the whole value replaces any previous one, no
// sub-field merge.
func (s *Store) Put(ctx context.Context, meta models.CachedGameMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	games := s.load(ctx)
	games[meta.Ticker] = meta
	return s.save(ctx, games)
}

// List returns all known tickers, sorted for deterministic iteration.
func (s *Store) List(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	games := s.load(ctx)
	tickers := make([]string, 0, len(games))
	for t := range games {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}

// All returns the full mapping for render-time merging.
func (s *Store) All(ctx context.Context) map[string]models.CachedGameMeta {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}
