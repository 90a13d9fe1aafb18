package core

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"pos-terminal/internal/storage"
)

const persistTimeout = 2 * time.Second

// PersistCart returns a hook that writes the full item list to store under
// storage.KeyCart. Write failures are logged; the in-memory cart stays
// authoritative for the session.
func PersistCart(store storage.Store) CartHook {
	return func(items []CartItem) {
		if items == nil {
			items = []CartItem{}
		}
		data, err := json.Marshal(items)
		if err != nil {
			log.Printf("warning: failed to encode cart: %v", err)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := store.Set(ctx, storage.KeyCart, data); err != nil {
			log.Printf("warning: failed to persist cart: %v", err)
		}
	}
}

// RestoreCart rebuilds the cart saved under storage.KeyCart. Missing or
// malformed data yields an empty cart. The restored cart persists itself to
// the same store; extra hooks run after persistence.
func RestoreCart(ctx context.Context, store storage.Store, hooks ...CartHook) *Cart {
	cart := NewCart(append([]CartHook{PersistCart(store)}, hooks...)...)

	raw, err := store.Get(ctx, storage.KeyCart)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("warning: could not read stored cart, starting empty: %v", err)
		}
		return cart
	}

	var items []CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Printf("warning: stored cart is malformed, starting empty: %v", err)
		return cart
	}
	cart.load(items)
	return cart
}
