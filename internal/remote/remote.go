// Package remote replicates catalog records to a per-user remote store.
package remote

import (
	"context"

	"github.com/mos-jef/title-crm/internal/models"
)

// Store is the remote persistence tier. Writes carry a single changed
// record (or its deletion), never the full list; LoadAll is used once
// at session start to rebuild the in-process cache.
type Store interface {
	Save(ctx context.Context, p models.Parcel) error
	Delete(ctx context.Context, id string) error
	LoadAll(ctx context.Context) ([]models.Parcel, error)
}
