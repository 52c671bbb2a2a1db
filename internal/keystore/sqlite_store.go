package keystore

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// deviceKeysID is the single row holding this device's key pair.
const deviceKeysID = "deviceKeys"

var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS device_keys (
		id          TEXT PRIMARY KEY,
		private_key BLOB NOT NULL,
		public_pem  TEXT NOT NULL,
		created_at  TEXT NOT NULL
	)`,
}

type sqliteStore struct {
	db *sql.DB
}

// SQLiteStore is a Store persisted to a local database file.
type SQLiteStore interface {
	Store
	Close() error
}

// NewSQLiteStore opens (or creates) the key database at path. The file is
// readable by the owner only.
func NewSQLiteStore(path string) (SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create keystore dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create keystore file: %w", err)
	}
	_ = f.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open keystore: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range sqliteMigrations {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate keystore: %w", err)
		}
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Close() error { return s.db.Close() }

func (s *sqliteStore) Generate(ctx context.Context) (string, error) {
	key, err := generateKey(rand.Reader)
	if err != nil {
		return "", err
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrKeyGeneration, err)
	}
	pub, err := EncodePublicKey(&key.PublicKey)
	if err != nil {
		return "", err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO device_keys (id, private_key, public_pem, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET private_key = excluded.private_key,
		   public_pem = excluded.public_pem, created_at = excluded.created_at`,
		deviceKeysID, der, pub, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("store device key: %w", err)
	}
	return pub, nil
}

func (s *sqliteStore) PublicKeyPEM(ctx context.Context) (string, error) {
	var pub string
	err := s.db.QueryRowContext(ctx, `SELECT public_pem FROM device_keys WHERE id = ?`, deviceKeysID).Scan(&pub)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoBoundDevice
	}
	return pub, err
}

func (s *sqliteStore) Sign(ctx context.Context, message string) (string, error) {
	key, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	return signMessage(key, message)
}

func (s *sqliteStore) Exists(ctx context.Context) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM device_keys WHERE id = ?`, deviceKeysID).Scan(&n)
	return n > 0, err
}

func (s *sqliteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM device_keys WHERE id = ?`, deviceKeysID)
	return err
}

func (s *sqliteStore) load(ctx context.Context) (*rsa.PrivateKey, error) {
	var der []byte
	err := s.db.QueryRowContext(ctx, `SELECT private_key FROM device_keys WHERE id = ?`, deviceKeysID).Scan(&der)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoBoundDevice
	}
	if err != nil {
		return nil, err
	}
	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("decode device key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("decode device key: unexpected type %T", parsed)
	}
	return key, nil
}
