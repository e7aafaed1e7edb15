package model

import "sync"

// SyncStore serialises transitions on a Store for callers outside the TUI
// event loop, such as the headless upload command.
type SyncStore struct {
	mu    sync.Mutex
	store *Store
}

// NewSyncStore wraps store.
func NewSyncStore(store *Store) *SyncStore {
	return &SyncStore{store: store}
}

// Do runs fn with exclusive access to the store.
func (s *SyncStore) Do(fn func(*Store)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.store)
}

// UpdateUploadProgress forwards to Store.UpdateUploadProgress under the lock.
func (s *SyncStore) UpdateUploadProgress(id string, progress float64) {
	s.Do(func(st *Store) { st.UpdateUploadProgress(id, progress) })
}

// SetUploadStatus forwards to Store.SetUploadStatus under the lock.
func (s *SyncStore) SetUploadStatus(id string, status UploadStatus, errText string) {
	s.Do(func(st *Store) { st.SetUploadStatus(id, status, errText) })
}

// Snapshot returns a copy of a record, or false if it does not exist.
func (s *SyncStore) Snapshot(id string) (ImageRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	img := s.store.GetImageByID(id)
	if img == nil {
		return ImageRecord{}, false
	}
	return *img, true
}
