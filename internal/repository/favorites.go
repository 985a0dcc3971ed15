package repository

import (
	"context"
	"log/slog"
	"sync"

	"meridian/internal/store"
)

type FavoriteRepository struct {
	mu    sync.Mutex
	store store.Store
}

func NewFavoriteRepository(s store.Store) *FavoriteRepository {
	return &FavoriteRepository{store: s}
}

// Get returns the favorite voyage ids
func (r *FavoriteRepository) Get(ctx context.Context) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return dedupe(loadList[string](ctx, r.store, keyFavorites))
}

// Toggle adds the id if absent and removes it otherwise. The new set is
// returned even when persisting it failed.
func (r *FavoriteRepository) Toggle(ctx context.Context, voyageID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := dedupe(loadList[string](ctx, r.store, keyFavorites))
	next := make([]string, 0, len(current)+1)
	found := false
	for _, id := range current {
		if id == voyageID {
			found = true
			continue
		}
		next = append(next, id)
	}
	if !found {
		next = append(next, voyageID)
	}

	if err := saveList(ctx, r.store, keyFavorites, next); err != nil {
		slog.Error("Failed to save favorites", "voyage_id", voyageID, "error", err)
	}
	return next
}

func (r *FavoriteRepository) Contains(ctx context.Context, voyageID string) bool {
	for _, id := range r.Get(ctx) {
		if id == voyageID {
			return true
		}
	}
	return false
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
