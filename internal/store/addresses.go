package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/rosaarteira/storefront/internal/kvstore"
	"github.com/rosaarteira/storefront/internal/models"
)

// Addresses is the per-user shipping address book. At most one entry
// per user carries the default flag.
type Addresses struct {
	kv *kvstore.Store
}

func (a *Addresses) List(ctx context.Context, userID string) ([]models.Address, error) {
	return kvstore.Get[[]models.Address](ctx, a.kv, kvstore.AddressesKey(userID))
}

// Save appends a new address. The very first address, or one saved
// with the default flag, becomes the single default: the flag is swept
// off every other entry in the same write.
func (a *Addresses) Save(ctx context.Context, userID string, addr models.Address) (*models.Address, error) {
	addr.ID = uuid.NewString()

	_, err := kvstore.Update(ctx, a.kv, kvstore.AddressesKey(userID), func(addresses []models.Address) ([]models.Address, error) {
		if len(addresses) == 0 || addr.IsDefault {
			addr.IsDefault = true
			for i := range addresses {
				addresses[i].IsDefault = false
			}
		}
		return append(addresses, addr), nil
	})
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

// SetDefault moves the default flag onto the given address.
func (a *Addresses) SetDefault(ctx context.Context, userID, addressID string) error {
	_, err := kvstore.Update(ctx, a.kv, kvstore.AddressesKey(userID), func(addresses []models.Address) ([]models.Address, error) {
		for i := range addresses {
			addresses[i].IsDefault = addresses[i].ID == addressID
		}
		return addresses, nil
	})
	return err
}

// Default returns the flagged address, falling back to the first one,
// or nil when the book is empty.
func (a *Addresses) Default(ctx context.Context, userID string) (*models.Address, error) {
	addresses, err := a.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range addresses {
		if addresses[i].IsDefault {
			return &addresses[i], nil
		}
	}
	if len(addresses) > 0 {
		return &addresses[0], nil
	}
	return nil, nil
}
