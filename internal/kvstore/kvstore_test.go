package kvstore

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestKV(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	kv, err := Open(db)
	require.NoError(t, err)
	return kv
}

func TestGetMissingKeyYieldsZeroValue(t *testing.T) {
	kv := newTestKV(t)

	list, err := Get[[]string](context.Background(), kv, "missing")
	require.NoError(t, err)
	require.Nil(t, list)
}

func TestPutGetRoundTrip(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, Put(ctx, kv, "names", []string{"a", "b"}))

	names, err := Get[[]string](ctx, kv, "names")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, names)

	require.NoError(t, Put(ctx, kv, "names", []string{"c"}))
	names, err = Get[[]string](ctx, kv, "names")
	require.NoError(t, err)
	require.Equal(t, []string{"c"}, names)
}

func TestUpdateCreatesAndBumpsVersion(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	got, err := Update(ctx, kv, "counter", func(v int) (int, error) {
		return v + 1, nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, got)

	got, err = Update(ctx, kv, "counter", func(v int) (int, error) {
		return v + 1, nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, got)

	rec, err := kv.read(ctx, "counter")
	require.NoError(t, err)
	require.Equal(t, int64(2), rec.Version)
}

func TestUpdatePropagatesCallbackError(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, Put(ctx, kv, "names", []string{"a"}))

	boom := errors.New("boom")
	_, err := Update(ctx, kv, "names", func(v []string) ([]string, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	// the failed update writes nothing
	names, err := Get[[]string](ctx, kv, "names")
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, names)
}

func TestCorruptRecordFallsBackToEmpty(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.db.Create(&Record{Key: "broken", Value: []byte("{not json"), Version: 1}).Error)

	list, err := Get[[]string](ctx, kv, "broken")
	require.NoError(t, err)
	require.Nil(t, list)

	// Update treats the corrupt payload as empty and repairs the slot
	got, err := Update(ctx, kv, "broken", func(v []string) ([]string, error) {
		return append(v, "fresh"), nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"fresh"}, got)

	list, err = Get[[]string](ctx, kv, "broken")
	require.NoError(t, err)
	require.Equal(t, []string{"fresh"}, list)
}

func TestUpdateRetriesWhenRaced(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, Put(ctx, kv, "names", []string{"a"}))

	// a second writer bumps the version underneath the first attempt,
	// forcing the CAS to fail once and the loop to re-read
	raced := false
	got, err := Update(ctx, kv, "names", func(v []string) ([]string, error) {
		if !raced {
			raced = true
			if err := Put(ctx, kv, "names", []string{"b"}); err != nil {
				return nil, err
			}
		}
		return append(v, "mine"), nil
	})
	require.NoError(t, err)
	require.True(t, raced)

	// the retry converged on the interfering writer's state
	require.Equal(t, []string{"b", "mine"}, got)

	names, err := Get[[]string](ctx, kv, "names")
	require.NoError(t, err)
	require.Equal(t, []string{"b", "mine"}, names)
}

func TestUpdateGivesUpAfterBoundedRetries(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, Put(ctx, kv, "names", []string{"a"}))

	attempts := 0
	_, err := Update(ctx, kv, "names", func(v []string) ([]string, error) {
		attempts++
		// every attempt loses the race
		if err := Put(ctx, kv, "names", []string{"other"}); err != nil {
			return nil, err
		}
		return append(v, "mine"), nil
	})
	require.ErrorIs(t, err, ErrConflict)
	require.Equal(t, maxCASAttempts, attempts)
}

func TestForcedPutKeepsVersionsMonotonic(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, Put(ctx, kv, "names", []string{"a"}))
	_, err := Update(ctx, kv, "names", func(v []string) ([]string, error) {
		return append(v, "b"), nil
	})
	require.NoError(t, err)
	require.NoError(t, Put(ctx, kv, "names", []string{"c"}))

	rec, err := kv.read(ctx, "names")
	require.NoError(t, err)
	require.Equal(t, int64(3), rec.Version)

	// a CAS against the pre-Put version must now miss
	require.ErrorIs(t, kv.swap(ctx, "names", []byte(`["stale"]`), 2, false), errRaced)
}

func TestCreateCollisionIsRetryable(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.create(ctx, "names", []byte(`["first"]`)))
	require.ErrorIs(t, kv.create(ctx, "names", []byte(`["second"]`)), errRaced)

	// Put recovers from the lost create by swapping instead
	require.NoError(t, Put(ctx, kv, "names", []string{"second"}))

	names, err := Get[[]string](ctx, kv, "names")
	require.NoError(t, err)
	require.Equal(t, []string{"second"}, names)
}

func TestDelete(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, Put(ctx, kv, "names", []string{"a"}))
	require.NoError(t, kv.Delete(ctx, "names"))
	require.NoError(t, kv.Delete(ctx, "names"))

	names, err := Get[[]string](ctx, kv, "names")
	require.NoError(t, err)
	require.Nil(t, names)
}

func TestTxnRollsBackOnError(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, Put(ctx, kv, "a", 1))

	boom := errors.New("boom")
	err := kv.Txn(ctx, func(tx *Store) error {
		if err := Put(ctx, tx, "a", 2); err != nil {
			return err
		}
		if err := Put(ctx, tx, "b", 1); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	a, err := Get[int](ctx, kv, "a")
	require.NoError(t, err)
	require.Equal(t, 1, a)

	b, err := Get[int](ctx, kv, "b")
	require.NoError(t, err)
	require.Zero(t, b)
}

func TestTxnCommits(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	err := kv.Txn(ctx, func(tx *Store) error {
		if err := Put(ctx, tx, "a", 1); err != nil {
			return err
		}
		return Put(ctx, tx, "b", 2)
	})
	require.NoError(t, err)

	a, err := Get[int](ctx, kv, "a")
	require.NoError(t, err)
	require.Equal(t, 1, a)

	b, err := Get[int](ctx, kv, "b")
	require.NoError(t, err)
	require.Equal(t, 2, b)
}
