// Package auth guards host-only room commands with a passcode and session
// tokens.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	defaultSessionTTL = 12 * time.Hour
	tokenBytes        = 32
)

var (
	ErrInvalidPasscode    = errors.New("invalid passcode")
	ErrRoomRegistered     = errors.New("room already has a host")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// HostManager keeps one bcrypt passcode per room and the host sessions issued
// against it. Everything is in memory; rooms do not outlive the process.
type HostManager struct {
	mu sync.Mutex

	sessionTTL time.Duration
	now        func() time.Time
	passcodes  map[string][]byte        // room -> bcrypt hash
	sessions   map[string]sessionRecord // token -> session
}

type sessionRecord struct {
	RoomID    string
	ExpiresAt time.Time
}

func NewHostManager() *HostManager {
	return &HostManager{
		sessionTTL: defaultSessionTTL,
		now:        time.Now,
		passcodes:  make(map[string][]byte),
		sessions:   make(map[string]sessionRecord),
	}
}

func validatePasscode(passcode string) error {
	if len(passcode) < 4 || len(passcode) > 72 {
		return ErrInvalidPasscode
	}
	return nil
}

// Register sets the host passcode of a new room and returns a host token.
func (m *HostManager) Register(roomID, passcode string) (string, error) {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return "", ErrInvalidCredentials
	}
	if err := validatePasscode(passcode); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.passcodes[roomID]; exists {
		return "", ErrRoomRegistered
	}
	m.passcodes[roomID] = hash
	return m.issueSessionLocked(roomID), nil
}

// Login checks the passcode and issues a fresh host token.
func (m *HostManager) Login(roomID, passcode string) (string, error) {
	m.mu.Lock()
	hash, ok := m.passcodes[strings.TrimSpace(roomID)]
	m.mu.Unlock()
	if !ok || passcode == "" {
		return "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(passcode)) != nil {
		return "", ErrInvalidCredentials
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.issueSessionLocked(strings.TrimSpace(roomID)), nil
}

// Resolve returns the room a token hosts and slides its expiry.
func (m *HostManager) Resolve(token string) (roomID string, ok bool) {
	if token == "" {
		return "", false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, exists := m.sessions[token]
	if !exists {
		return "", false
	}
	now := m.now()
	if !now.Before(rec.ExpiresAt) {
		delete(m.sessions, token)
		return "", false
	}
	rec.ExpiresAt = now.Add(m.sessionTTL)
	m.sessions[token] = rec
	return rec.RoomID, true
}

// IsHost reports whether token is a live host session for roomID.
func (m *HostManager) IsHost(roomID, token string) bool {
	got, ok := m.Resolve(token)
	return ok && got == roomID
}

func (m *HostManager) Logout(token string) {
	if token == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

// Forget drops a room's passcode and every session issued for it.
func (m *HostManager) Forget(roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.passcodes, roomID)
	for token, rec := range m.sessions {
		if rec.RoomID == roomID {
			delete(m.sessions, token)
		}
	}
}

func (m *HostManager) issueSessionLocked(roomID string) string {
	token := mustToken()
	m.sessions[token] = sessionRecord{
		RoomID:    roomID,
		ExpiresAt: m.now().Add(m.sessionTTL),
	}
	return token
}

func mustToken() string {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
