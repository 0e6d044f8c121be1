package session

import (
	"fmt"
	"strings"
	"sync"
)

// Manager tracks all active player sessions and room occupancy.
// All methods are safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	players  map[string]*PlayerSession  // uid → session
	roomSets map[string]map[string]bool // roomID → set of UIDs
}

// NewManager creates an empty session Manager.
func NewManager() *Manager {
	return &Manager{
		players:  make(map[string]*PlayerSession),
		roomSets: make(map[string]map[string]bool),
	}
}

// Add registers a player session under its UID and room.
//
// Precondition: sess.UID and sess.RoomID must be non-empty.
// Postcondition: Returns an error if the UID is already registered.
func (m *Manager) Add(sess *PlayerSession) error {
	if sess == nil || sess.UID == "" {
		return fmt.Errorf("session: UID must not be empty")
	}
	if sess.RoomID == "" {
		return fmt.Errorf("session %q: RoomID must not be empty", sess.UID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.players[sess.UID]; exists {
		return fmt.Errorf("player %q already connected", sess.UID)
	}
	if sess.Ammo == nil {
		sess.Ammo = make(map[string]int)
	}

	m.players[sess.UID] = sess
	if m.roomSets[sess.RoomID] == nil {
		m.roomSets[sess.RoomID] = make(map[string]bool)
	}
	m.roomSets[sess.RoomID][sess.UID] = true
	return nil
}

// Remove removes a player session and cleans up room occupancy.
//
// Postcondition: The player is removed from all tracking. Returns an
// error if not found.
func (m *Manager) Remove(uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, exists := m.players[uid]
	if !exists {
		return fmt.Errorf("player %q not found", uid)
	}

	if rs, ok := m.roomSets[sess.RoomID]; ok {
		delete(rs, uid)
		if len(rs) == 0 {
			delete(m.roomSets, sess.RoomID)
		}
	}
	delete(m.players, uid)
	return nil
}

// MovePlayer moves a player from their current room to a new room.
//
// Precondition: uid and newRoomID must be non-empty.
// Postcondition: Returns the old room ID, or an error if the player is
// not found.
func (m *Manager) MovePlayer(uid, newRoomID string) (string, error) {
	if newRoomID == "" {
		return "", fmt.Errorf("session: newRoomID must not be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sess, exists := m.players[uid]
	if !exists {
		return "", fmt.Errorf("player %q not found", uid)
	}

	oldRoomID := sess.RoomID
	if rs, ok := m.roomSets[oldRoomID]; ok {
		delete(rs, uid)
		if len(rs) == 0 {
			delete(m.roomSets, oldRoomID)
		}
	}

	sess.RoomID = newRoomID
	if m.roomSets[newRoomID] == nil {
		m.roomSets[newRoomID] = make(map[string]bool)
	}
	m.roomSets[newRoomID][uid] = true

	return oldRoomID, nil
}

// PlayersInRoom returns a snapshot of all sessions in the given room.
//
// Postcondition: Returns a non-nil slice (may be empty).
func (m *Manager) PlayersInRoom(roomID string) []*PlayerSession {
	m.mu.RLock()
	defer m.mu.RUnlock()

	uids, ok := m.roomSets[roomID]
	if !ok {
		return []*PlayerSession{}
	}

	out := make([]*PlayerSession, 0, len(uids))
	for uid := range uids {
		if sess, ok := m.players[uid]; ok {
			out = append(out, sess)
		}
	}
	return out
}

// AnyInRoom reports whether any player occupies the given room.
func (m *Manager) AnyInRoom(roomID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.roomSets[roomID]) > 0
}

// PartyMembersInRoom returns the sessions in roomID sharing partyID.
//
// Precondition: partyID must be non-empty for a meaningful result; an
// empty partyID matches nothing.
func (m *Manager) PartyMembersInRoom(partyID, roomID string) []*PlayerSession {
	if partyID == "" {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*PlayerSession
	for uid := range m.roomSets[roomID] {
		if sess, ok := m.players[uid]; ok && sess.PartyID == partyID {
			out = append(out, sess)
		}
	}
	return out
}

// Get returns the session for the given UID.
//
// Postcondition: Returns (session, true) if found, or (nil, false) otherwise.
func (m *Manager) Get(uid string) (*PlayerSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.players[uid]
	return sess, ok
}

// FindInRoom returns the first session in roomID whose CharName has
// target as a case-insensitive prefix. Returns nil if no match is found.
func (m *Manager) FindInRoom(roomID, target string) *PlayerSession {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lower := strings.ToLower(target)
	for uid := range m.roomSets[roomID] {
		sess, ok := m.players[uid]
		if !ok {
			continue
		}
		if strings.HasPrefix(strings.ToLower(sess.CharName), lower) {
			return sess
		}
	}
	return nil
}

// All returns a snapshot of every connected session.
//
// Postcondition: Returns a non-nil slice (may be empty).
func (m *Manager) All() []*PlayerSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*PlayerSession, 0, len(m.players))
	for _, sess := range m.players {
		out = append(out, sess)
	}
	return out
}

// PlayerCount returns the total number of connected players.
func (m *Manager) PlayerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.players)
}
