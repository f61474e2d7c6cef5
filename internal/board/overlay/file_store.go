package overlay

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/suiboard/suiboard-backend/internal/board/types"
	"github.com/suiboard/suiboard-backend/pkg/logging"
)

// FileStore is the JSON-file fallback used when redis is not configured.
// The read-modify-write in Add is serialized by the mutex within one
// process only; cross-process concurrency is not protected.
type FileStore struct {
	path   string
	mu     sync.Mutex
	logger logging.Logger
}

var _ Store = (*FileStore)(nil)

func NewFileStore(path string, logger logging.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

func (s *FileStore) load() map[string]types.ReservationOverlay {
	m := make(map[string]types.ReservationOverlay)
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warnf("Overlay file read failed, using zero overlays: %v", err)
		}
		return m
	}
	if err := json.Unmarshal(data, &m); err != nil {
		s.logger.Warnf("Overlay file corrupt, using zero overlays: %v", err)
		return make(map[string]types.ReservationOverlay)
	}
	return m
}

func (s *FileStore) save(m map[string]types.ReservationOverlay) {
	data, err := json.Marshal(m)
	if err != nil {
		s.logger.Warnf("Overlay encode failed, write dropped: %v", err)
		return
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			s.logger.Warnf("Overlay dir create failed, write dropped: %v", err)
			return
		}
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		s.logger.Warnf("Overlay file write dropped: %v", err)
	}
}

func (s *FileStore) Get(ctx context.Context, account types.Account) types.ReservationOverlay {
	if account == "" {
		return types.ReservationOverlay{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()[strings.ToLower(account.String())]
}

func (s *FileStore) Add(ctx context.Context, account types.Account, field Field, amount uint64) {
	if account == "" || amount == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.load()
	key := strings.ToLower(account.String())
	overlay := m[key]
	switch field {
	case FieldStaked:
		overlay.Staked += amount
	case FieldListed:
		overlay.Listed += amount
	case FieldVoted:
		overlay.Voted += amount
	}
	m[key] = overlay
	s.save(m)
}

func (s *FileStore) Set(ctx context.Context, account types.Account, overlay types.ReservationOverlay) {
	if account == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.load()
	m[strings.ToLower(account.String())] = overlay
	s.save(m)
}
