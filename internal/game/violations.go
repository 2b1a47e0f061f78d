package game

import "sync"

// Violations counts out-of-turn attempts per room per player. The counter is
// anomaly signaling only: every out-of-turn attempt is still rejected with
// the same error regardless of the count. Owned explicitly by whoever wires
// the engine, never a package global.
type Violations struct {
	mu    sync.Mutex
	rooms map[string]map[string]int
}

func NewViolations() *Violations {
	return &Violations{rooms: make(map[string]map[string]int)}
}

// Record increments the counter and returns the new count.
func (v *Violations) Record(roomID, playerID string) int {
	v.mu.Lock()
	defer v.mu.Unlock()

	room := v.rooms[roomID]
	if room == nil {
		room = make(map[string]int)
		v.rooms[roomID] = room
	}
	room[playerID]++
	return room[playerID]
}

// Count returns the current counter without incrementing.
func (v *Violations) Count(roomID, playerID string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rooms[roomID][playerID]
}

// Forget drops all counters for a room (room destroyed or reset).
func (v *Violations) Forget(roomID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.rooms, roomID)
}
