package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/srgjo27/space_booking/internal/core/ports"
)

// AssetDirectory reads the space_assets table owned by the catalogue service.
type AssetDirectory struct {
	db *sql.DB
}

var _ ports.AssetDirectory = (*AssetDirectory)(nil)

func NewAssetDirectory(db *sql.DB) *AssetDirectory {
	return &AssetDirectory{db: db}
}

func (d *AssetDirectory) Exists(ctx context.Context, assetID uuid.UUID) (bool, error) {
	var exists bool
	err := d.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM space_assets WHERE id = $1)`, assetID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
