// Package store is the data-access layer of the storefront: users,
// catalog, carts, address books, orders and the purchase-finalization
// transaction, all persisted as JSON collections in the key-value
// store. Every operation takes the acting session explicitly; nothing
// here reads ambient state.
package store

import (
	"github.com/rosaarteira/storefront/internal/kvstore"
)

type Store struct {
	kv        *kvstore.Store
	Users     *Users
	Catalog   *Catalog
	Carts     *Carts
	Addresses *Addresses
	Orders    *Orders
}

func New(kv *kvstore.Store) *Store {
	return &Store{
		kv:        kv,
		Users:     &Users{kv: kv},
		Catalog:   &Catalog{kv: kv},
		Carts:     &Carts{kv: kv},
		Addresses: &Addresses{kv: kv},
		Orders:    &Orders{kv: kv},
	}
}
