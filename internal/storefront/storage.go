// Package storefront is the shopper and back-office client of the REST API:
// session handling, cart and checkout flows, admin list screens and the chat
// widget, with state mirrored to a local key/value store.
package storefront

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"go-cosmetics/internal/models"
)

// Local storage keys.
const (
	KeyAccessToken         = "accessToken"
	KeyCurrentUser         = "currentUser"
	KeyCheckoutCartItems   = "checkoutCartItems"
	KeyLastOrder           = "lastOrder"
	KeyChatHistory         = "chatHistory"
	KeyChatSummary         = "chatSummary"
	KeyLastSummarizedIndex = "lastSummarizedIndex"
)

// Storage is a string key/value store. Writes are last-write-wins.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}

type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStorage) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// FileStorage persists all keys as one JSON object, rewriting the file on
// every change.
type FileStorage struct {
	mu   sync.Mutex
	path string
	data map[string]string
}

func NewFileStorage(path string) (*FileStorage, error) {
	fs := &FileStorage{path: path, data: make(map[string]string)}
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fs, nil
	case err != nil:
		return nil, fmt.Errorf("read storage: %w", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &fs.data); err != nil {
			return nil, fmt.Errorf("decode storage %s: %w", path, err)
		}
	}
	return fs, nil
}

func (f *FileStorage) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok
}

func (f *FileStorage) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return f.flush()
}

func (f *FileStorage) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; !ok {
		return nil
	}
	delete(f.data, key)
	return f.flush()
}

func (f *FileStorage) flush() error {
	raw, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// Store is the typed view over Storage used by every flow in this package.
type Store struct {
	s Storage
}

func NewStore(s Storage) *Store {
	if s == nil {
		s = NewMemoryStorage()
	}
	return &Store{s: s}
}

func (st *Store) Token() string {
	v, _ := st.s.Get(KeyAccessToken)
	return v
}

func (st *Store) SetToken(token string) error { return st.s.Set(KeyAccessToken, token) }

func (st *Store) CurrentUser() (*models.User, bool) {
	var u models.User
	if !st.getJSON(KeyCurrentUser, &u) {
		return nil, false
	}
	return &u, true
}

func (st *Store) SetCurrentUser(u models.User) error { return st.setJSON(KeyCurrentUser, u) }

func (st *Store) CheckoutItems() []models.CartItem {
	var items []models.CartItem
	st.getJSON(KeyCheckoutCartItems, &items)
	return items
}

func (st *Store) SetCheckoutItems(items []models.CartItem) error {
	return st.setJSON(KeyCheckoutCartItems, items)
}

func (st *Store) LastOrder() (*models.Order, bool) {
	var o models.Order
	if !st.getJSON(KeyLastOrder, &o) {
		return nil, false
	}
	return &o, true
}

func (st *Store) SetLastOrder(o models.Order) error { return st.setJSON(KeyLastOrder, o) }

func (st *Store) ChatHistory() []models.ChatMessage {
	var msgs []models.ChatMessage
	st.getJSON(KeyChatHistory, &msgs)
	return msgs
}

func (st *Store) SetChatHistory(msgs []models.ChatMessage) error {
	return st.setJSON(KeyChatHistory, msgs)
}

func (st *Store) ChatSummary() string {
	v, _ := st.s.Get(KeyChatSummary)
	return v
}

func (st *Store) SetChatSummary(summary string) error { return st.s.Set(KeyChatSummary, summary) }

func (st *Store) LastSummarizedIndex() int {
	v, _ := st.s.Get(KeyLastSummarizedIndex)
	n, _ := strconv.Atoi(v)
	return n
}

func (st *Store) SetLastSummarizedIndex(i int) error {
	return st.s.Set(KeyLastSummarizedIndex, strconv.Itoa(i))
}

// ClearSession drops the token and the mirrored user.
func (st *Store) ClearSession() error {
	return errors.Join(st.s.Remove(KeyAccessToken), st.s.Remove(KeyCurrentUser))
}

// getJSON reports false for a missing or unreadable value.
func (st *Store) getJSON(key string, v any) bool {
	raw, ok := st.s.Get(key)
	if !ok || raw == "" {
		return false
	}
	return json.Unmarshal([]byte(raw), v) == nil
}

func (st *Store) setJSON(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return st.s.Set(key, string(raw))
}
