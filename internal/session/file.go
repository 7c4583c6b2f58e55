package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// fileState is the on-disk layout of a FileStore.
type fileState struct {
	Assets    map[string]string `json:"assets"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// FileStore persists selections to a JSON file, rewritten on every Set.
type FileStore struct {
	mu       sync.Mutex
	assets   map[int64]string
	filePath string
}

// NewFileStore creates a FileStore, loading existing selections from disk.
func NewFileStore(filePath string) (*FileStore, error) {
	assets, err := loadState(filePath)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	return &FileStore{assets: assets, filePath: filePath}, nil
}

// loadState returns an empty map if the file doesn't exist.
func loadState(filePath string) (map[int64]string, error) {
	assets := make(map[int64]string)
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return assets, nil
		}
		return nil, err
	}
	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	for k, v := range state.Assets {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("chat id %q: %w", k, err)
		}
		assets[id] = v
	}
	return assets, nil
}

func (f *FileStore) Get(_ context.Context, chatID int64) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.assets[chatID]
	return a, ok, nil
}

func (f *FileStore) Set(_ context.Context, chatID int64, asset string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, had := f.assets[chatID]
	f.assets[chatID] = asset
	if err := f.save(); err != nil {
		if had {
			f.assets[chatID] = prev
		} else {
			delete(f.assets, chatID)
		}
		return fmt.Errorf("save sessions: %w", err)
	}
	return nil
}

// save must be called with mu held.
func (f *FileStore) save() error {
	state := fileState{Assets: make(map[string]string, len(f.assets)), UpdatedAt: time.Now()}
	for id, a := range f.assets {
		state.Assets[strconv.FormatInt(id, 10)] = a
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, f.filePath)
}

func (f *FileStore) Close() error { return nil }
