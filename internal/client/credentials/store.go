package credentials

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/client/migrations"
	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/client/models"
	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/dbx"
	"github.com/pressly/goose/v3"
)

// Storage keys. They mirror the three independently readable keys of the
// browser front-end's local storage, so the layout stays familiar.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyUserData     = "user_data"
)

// Store is the credential store: Load never fails (missing or corrupt state
// reads as empty), Save writes all keys in one transaction so a reader never
// observes a half-written record, and Clear unconditionally wipes everything.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens (creating if needed) the local session database at dsn and
// applies schema migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open session db: %w", err)
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate session db: %w", err)
	}
	return NewStore(db), nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// Load reads the persisted credentials. It never fails: a missing or corrupt
// record yields empty fields rather than an error, which forces the session
// back to anonymous instead of wedging startup.
func (s *Store) Load(ctx context.Context) models.Credentials {
	repo := NewSQLiteRepository(s.db)

	var creds models.Credentials
	if v, err := repo.Get(ctx, keyAccessToken); err == nil {
		creds.AccessToken = string(v)
	}
	if v, err := repo.Get(ctx, keyRefreshToken); err == nil {
		creds.RefreshToken = string(v)
	}
	if v, err := repo.Get(ctx, keyUserData); err == nil && len(v) > 0 {
		var user models.UserRecord
		if err := json.Unmarshal(v, &user); err == nil {
			creds.User = &user
		}
	}
	return creds
}

// Save overwrites the persisted credentials atomically.
func (s *Store) Save(ctx context.Context, creds models.Credentials) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)

		if err := repo.Set(ctx, keyAccessToken, []byte(creds.AccessToken)); err != nil {
			return err
		}
		if err := repo.Set(ctx, keyRefreshToken, []byte(creds.RefreshToken)); err != nil {
			return err
		}
		if creds.User == nil {
			return repo.Delete(ctx, keyUserData)
		}
		data, err := json.Marshal(creds.User)
		if err != nil {
			return fmt.Errorf("failed to serialize user record: %w", err)
		}
		return repo.Set(ctx, keyUserData, data)
	})
}

// Clear wipes all persisted session keys.
func (s *Store) Clear(ctx context.Context) error {
	repo := NewSQLiteRepository(s.db)
	return repo.Clear(ctx)
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
