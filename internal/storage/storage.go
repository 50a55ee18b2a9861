// Package storage is the durable client-side cache standing in for browser
// localStorage: the bearer token (under two legacy-compatible keys) and the
// serialized normalized user survive process restarts here.
package storage

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gradsync/portal/internal"
	userDatamodel "github.com/gradsync/portal/internal/core/datamodel/user"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const (
	// KeyToken and KeyAccessToken both hold the same bearer token. Older
	// code paths read either name, so writes always update both.
	KeyToken        = "token"
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// Entry is one key-value row of the cache.
type Entry struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Entry) TableName() string { return "storage_entries" }

// TokenSink receives the credential so it can be attached as the default
// Authorization header. An empty token clears the header.
type TokenSink interface {
	SetAuthToken(token string)
}

type Store struct {
	db     *gorm.DB
	sink   TokenSink
	logger *slog.Logger

	failWarn sync.Once
}

// Open opens (creating if needed) the SQLite cache at path and runs the
// embedded goose migrations. The sink is synchronized on every token write.
func Open(path string, sink TokenSink, logger *slog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return nil, err
	}
	if err := goose.Up(sqlDB, "migrations"); err != nil {
		return nil, err
	}

	return &Store{db: db, sink: sink, logger: logger}, nil
}

// Migrate runs a goose command ("up", "down", "status") against the cache
// at path without opening a full Store.
func Migrate(ctx context.Context, path, command string) error {
	db, err := goose.OpenDBWithDriver("sqlite3", path)
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	return goose.RunContext(ctx, command, db, "migrations")
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping reports whether the underlying database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// warnStorageFailure logs a storage problem once per process. Storage being
// unavailable degrades to "nothing cached", it never takes the app down.
func (s *Store) warnStorageFailure(err error) {
	s.failWarn.Do(func() {
		s.logger.Warn("local storage unavailable, continuing without cache", "error", err)
	})
}

func (s *Store) set(key, value string) error {
	entry := Entry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return internal.NewStorageError("cache write failed", err)
	}
	return nil
}

func (s *Store) get(key string) (string, bool) {
	var entry Entry
	err := s.db.First(&entry, "key = ?", key).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.warnStorageFailure(err)
		}
		return "", false
	}
	return entry.Value, true
}

func (s *Store) delete(key string) error {
	if err := s.db.Delete(&Entry{}, "key = ?", key).Error; err != nil {
		return internal.NewStorageError("cache delete failed", err)
	}
	return nil
}

// PersistToken writes the token under both storage keys and installs it on
// the sink. An empty token removes both keys and clears the sink, which is
// the logout path.
func (s *Store) PersistToken(token string) error {
	if token == "" {
		errToken := s.delete(KeyToken)
		errAccess := s.delete(KeyAccessToken)
		if s.sink != nil {
			s.sink.SetAuthToken("")
		}
		return errors.Join(errToken, errAccess)
	}

	if err := s.set(KeyToken, token); err != nil {
		s.warnStorageFailure(err)
		return err
	}
	if err := s.set(KeyAccessToken, token); err != nil {
		s.warnStorageFailure(err)
		return err
	}
	if s.sink != nil {
		s.sink.SetAuthToken(token)
	}
	return nil
}

// LoadToken reads the cached token, preferring the primary key name.
func (s *Store) LoadToken() string {
	if token, ok := s.get(KeyToken); ok {
		return token
	}
	if token, ok := s.get(KeyAccessToken); ok {
		return token
	}
	return ""
}

// LoadOnStartup restores the cached token into the sink. Must run before
// any component issues a network call so the first request already carries
// the credential.
func (s *Store) LoadOnStartup() string {
	token := s.LoadToken()
	if token != "" && s.sink != nil {
		s.sink.SetAuthToken(token)
	}
	return token
}

// PersistRefreshToken caches the refresh half of the token pair. Empty
// removes it.
func (s *Store) PersistRefreshToken(token string) error {
	if token == "" {
		return s.delete(KeyRefreshToken)
	}
	if err := s.set(KeyRefreshToken, token); err != nil {
		s.warnStorageFailure(err)
		return err
	}
	return nil
}

func (s *Store) LoadRefreshToken() string {
	token, _ := s.get(KeyRefreshToken)
	return token
}

func (s *Store) SaveUser(u *userDatamodel.User) error {
	if u == nil {
		return nil
	}
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if err := s.set(KeyUser, string(data)); err != nil {
		s.warnStorageFailure(err)
		return err
	}
	return nil
}

// LoadUser returns the cached normalized user, or nil when absent. A
// corrupt entry is deleted and reported as absent, never as an error.
func (s *Store) LoadUser() *userDatamodel.User {
	raw, ok := s.get(KeyUser)
	if !ok || raw == "" || raw == "undefined" || raw == "null" {
		return nil
	}

	var u userDatamodel.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.logger.Warn("discarding corrupt cached user", "error", err)
		if delErr := s.delete(KeyUser); delErr != nil {
			s.warnStorageFailure(delErr)
		}
		return nil
	}
	return &u
}

func (s *Store) ClearUser() error {
	return s.delete(KeyUser)
}
