package domain

import (
	"errors"
	"sync"
)

var ErrNotConnected = errors.New("whatsapp not connected")

// ConnectionState хранит пару (ready, pairingImage).
// Пишут только обработчики событий сессии, читают HTTP-хендлеры.
type ConnectionState struct {
	mu           sync.RWMutex
	ready        bool
	pairingImage string
}

func NewConnectionState() *ConnectionState {
	return &ConnectionState{}
}

// SetPairing stores a fresh pairing image; the session is not ready while pairing.
func (s *ConnectionState) SetPairing(image string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = false
	s.pairingImage = image
}

func (s *ConnectionState) SetReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = true
	s.pairingImage = ""
}

func (s *ConnectionState) SetDisconnected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = false
	s.pairingImage = ""
}

// SetAuthFailure drops readiness but keeps whatever pairing image is shown.
func (s *ConnectionState) SetAuthFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = false
}

// SetLoggedOut drops readiness after a local logout. A pairing image stored by
// a newer pairing event is kept.
func (s *ConnectionState) SetLoggedOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = false
}

func (s *ConnectionState) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Snapshot reads both fields under one lock.
func (s *ConnectionState) Snapshot() (ready bool, image string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready, s.pairingImage
}
