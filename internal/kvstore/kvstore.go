package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/rosaarteira/storefront/internal/logging"
)

// Fixed keys of the persisted state layout. Carts and address books are
// scoped per user.
const (
	KeyUsers    = "users"
	KeyProducts = "products"
	KeyOrders   = "orders"
	KeySession  = "session"
)

func CartKey(userID string) string      { return "cart:" + userID }
func AddressesKey(userID string) string { return "addresses:" + userID }

const maxCASAttempts = 5

var ErrConflict = errors.New("kvstore: too many concurrent updates")

// Record is one key slot: a JSON-serialized collection plus a version
// counter used for compare-and-swap writes.
type Record struct {
	Key     string `gorm:"primaryKey"`
	Value   []byte `gorm:"not null"`
	Version int64  `gorm:"not null;default:0"`
}

type Store struct {
	db *gorm.DB
}

func Open(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate kv records: %w", err)
	}
	return &Store{db: db}, nil
}

// Txn runs fn with a store bound to a single database transaction, so
// writes against several keys commit or roll back together.
func (s *Store) Txn(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Delete(&Record{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Get reads and decodes the collection stored under key. A missing key
// yields the zero value. A corrupt payload also yields the zero value
// rather than an error, matching the store's safe-parse contract.
func Get[T any](ctx context.Context, s *Store, key string) (T, error) {
	var zero T

	rec, err := s.read(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, nil
		}
		return zero, fmt.Errorf("get %s: %w", key, err)
	}

	var v T
	if err := json.Unmarshal(rec.Value, &v); err != nil {
		logging.FromContext(ctx).Error("corrupt record, falling back to empty", "key", key, "err", err)
		return zero, nil
	}
	return v, nil
}

// Put overwrites the collection stored under key unconditionally,
// retrying when a concurrent first-write or delete races the slot.
func Put[T any](ctx context.Context, s *Store, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		rec, err := s.read(ctx, key)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = s.create(ctx, key, data)
			if errors.Is(err, errRaced) {
				continue
			}
			if err != nil {
				return fmt.Errorf("put %s: %w", key, err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("put %s: %w", key, err)
		}

		err = s.swap(ctx, key, data, rec.Version, true)
		if errors.Is(err, errRaced) {
			continue
		}
		if err != nil {
			return fmt.Errorf("put %s: %w", key, err)
		}
		return nil
	}

	return ErrConflict
}

// Update applies fn to the current collection under key and writes the
// result back with a compare-and-swap on the record version, retrying a
// bounded number of times when another writer got there first.
func Update[T any](ctx context.Context, s *Store, key string, fn func(T) (T, error)) (T, error) {
	var zero T

	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		var (
			cur     T
			version int64
			missing bool
		)

		rec, err := s.read(ctx, key)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			missing = true
		case err != nil:
			return zero, fmt.Errorf("update %s: %w", key, err)
		default:
			version = rec.Version
			if err := json.Unmarshal(rec.Value, &cur); err != nil {
				logging.FromContext(ctx).Error("corrupt record, falling back to empty", "key", key, "err", err)
			}
		}

		next, err := fn(cur)
		if err != nil {
			return zero, err
		}

		data, err := json.Marshal(next)
		if err != nil {
			return zero, fmt.Errorf("marshal %s: %w", key, err)
		}

		if missing {
			err = s.create(ctx, key, data)
		} else {
			err = s.swap(ctx, key, data, version, false)
		}
		if err == nil {
			return next, nil
		}
		if !errors.Is(err, errRaced) {
			return zero, fmt.Errorf("update %s: %w", key, err)
		}
	}

	return zero, ErrConflict
}

var errRaced = errors.New("record changed underneath")

func (s *Store) read(ctx context.Context, key string) (*Record, error) {
	var rec Record
	if err := s.db.WithContext(ctx).First(&rec, "key = ?", key).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) create(ctx context.Context, key string, data []byte) error {
	rec := Record{Key: key, Value: data, Version: 1}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errRaced
		}
		return err
	}
	return nil
}

// swap writes the row, always incrementing the stored version so
// forced writes stay monotonic against concurrent CAS updates.
func (s *Store) swap(ctx context.Context, key string, data []byte, version int64, force bool) error {
	tx := s.db.WithContext(ctx).Model(&Record{}).Where("key = ?", key)
	if !force {
		tx = tx.Where("version = ?", version)
	}
	res := tx.Updates(map[string]any{"value": data, "version": gorm.Expr("version + 1")})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errRaced
	}
	return nil
}
