package device

import (
	"context"
	"database/sql"
	"time"

	"go-attendance/internal/shared/connection"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByID(ctx context.Context, employeeID string) (*Identity, error)
	// LockByID reads the row with FOR UPDATE; only valid inside WithTx.
	LockByID(ctx context.Context, employeeID string) (*Identity, error)
	// BindKey sets the key only while none is bound and reports whether it did.
	BindKey(ctx context.Context, employeeID, publicKey, fingerprint string, at time.Time) (bool, error)
	ClearKey(ctx context.Context, employeeID string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: connection.BindTx(r.db, tx)}
}

func (r *repository) FindByID(ctx context.Context, employeeID string) (*Identity, error) {
	var id Identity
	if err := r.db.WithContext(ctx).First(&id, "id = ?", employeeID).Error; err != nil {
		return nil, err
	}
	return &id, nil
}

func (r *repository) LockByID(ctx context.Context, employeeID string) (*Identity, error) {
	var id Identity
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&id, "id = ?", employeeID).Error
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (r *repository) BindKey(ctx context.Context, employeeID, publicKey, fingerprint string, at time.Time) (bool, error) {
	var fp *string
	if fingerprint != "" {
		fp = &fingerprint
	}
	res := r.db.WithContext(ctx).
		Model(&Identity{}).
		Where("id = ? AND (public_key IS NULL OR public_key = '')", employeeID).
		Updates(map[string]any{
			"public_key":         publicKey,
			"device_fingerprint": fp,
			"device_bound_at":    at,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *repository) ClearKey(ctx context.Context, employeeID string) error {
	return r.db.WithContext(ctx).
		Model(&Identity{}).
		Where("id = ?", employeeID).
		Updates(map[string]any{
			"public_key":         nil,
			"device_fingerprint": nil,
			"device_bound_at":    nil,
		}).Error
}
