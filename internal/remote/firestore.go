package remote

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/mos-jef/title-crm/internal/models"
)

// Firestore implements Store against a per-user parcels collection
// (users/{user}/parcels/{id}).
type Firestore struct {
	client *firestore.Client
	user   string
}

// NewFirestore creates a Firestore-backed store for the given project
// and user.
func NewFirestore(ctx context.Context, projectID, user string) (*Firestore, error) {
	if projectID == "" || user == "" {
		return nil, fmt.Errorf("remote: projectID and user are required")
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("remote: create firestore client: %w", err)
	}
	return &Firestore{client: client, user: user}, nil
}

// Close releases the underlying client.
func (f *Firestore) Close() error {
	return f.client.Close()
}

func (f *Firestore) parcels() *firestore.CollectionRef {
	return f.client.Collection("users").Doc(f.user).Collection("parcels")
}

// Save writes one record keyed by its id, replacing any existing copy.
func (f *Firestore) Save(ctx context.Context, p models.Parcel) error {
	if _, err := f.parcels().Doc(p.ID).Set(ctx, p); err != nil {
		return fmt.Errorf("remote: save parcel %s: %w", p.ID, err)
	}
	return nil
}

// Delete removes one record by id. Deleting an absent record is not an
// error.
func (f *Firestore) Delete(ctx context.Context, id string) error {
	if _, err := f.parcels().Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("remote: delete parcel %s: %w", id, err)
	}
	return nil
}

// LoadAll reads the full parcel collection.
func (f *Firestore) LoadAll(ctx context.Context) ([]models.Parcel, error) {
	iter := f.parcels().Documents(ctx)
	defer iter.Stop()

	var out []models.Parcel
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("remote: load parcels: %w", err)
		}
		var p models.Parcel
		if err := doc.DataTo(&p); err != nil {
			return nil, fmt.Errorf("remote: decode parcel %s: %w", doc.Ref.ID, err)
		}
		if p.ID == "" {
			p.ID = doc.Ref.ID
		}
		out = append(out, p)
	}
	return out, nil
}
