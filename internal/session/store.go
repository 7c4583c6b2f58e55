// Package session keeps the instrument each chat has selected.
package session

import "context"

// Store maps a chat to its last selected asset name. Set is last-write-wins.
type Store interface {
	Get(ctx context.Context, chatID int64) (asset string, ok bool, err error)
	Set(ctx context.Context, chatID int64, asset string) error
	Close() error
}

// Resolve returns the chat's asset or fallback when none is stored.
func Resolve(ctx context.Context, s Store, chatID int64, fallback string) (string, error) {
	asset, ok, err := s.Get(ctx, chatID)
	if err != nil {
		return fallback, err
	}
	if !ok {
		return fallback, nil
	}
	return asset, nil
}
