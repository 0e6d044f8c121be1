package world

// NextStepToward returns the first exit on a shortest mob-passable path
// from one room to another. Pursuing mobs use this to chase fleeing
// targets room by room.
//
// Postcondition: Returns (exit, true) if a path exists through exits a
// mob may take, or (Exit{}, false) otherwise. Equal rooms return no step.
func (m *Manager) NextStepToward(fromRoomID, toRoomID string) (Exit, bool) {
	path := m.ShortestPath(fromRoomID, toRoomID)
	if len(path) == 0 {
		return Exit{}, false
	}
	return path[0], true
}

// ShortestPath computes a breadth-first shortest path from one room to
// another using only exits a mob may take. Locked exits, warded exits,
// and sanctuaries are impassable.
//
// Postcondition: Returns the exits to traverse in order, or nil when the
// destination is unreachable or equal to the origin.
func (m *Manager) ShortestPath(fromRoomID, toRoomID string) []Exit {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if fromRoomID == toRoomID {
		return nil
	}
	if _, ok := m.rooms[fromRoomID]; !ok {
		return nil
	}
	if _, ok := m.rooms[toRoomID]; !ok {
		return nil
	}

	type hop struct {
		room string
		via  Exit
	}
	cameFrom := map[string]hop{fromRoomID: {}}
	queue := []string{fromRoomID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, e := range m.rooms[current].Exits {
			if e.Locked || e.MobBarrier {
				continue
			}
			target, ok := m.rooms[e.TargetRoom]
			if !ok || target.Safe {
				continue
			}
			if _, seen := cameFrom[target.ID]; seen {
				continue
			}
			cameFrom[target.ID] = hop{room: current, via: e}
			if target.ID != toRoomID {
				queue = append(queue, target.ID)
				continue
			}

			// Walk the parent links back to the origin and reverse.
			var reversed []Exit
			for at := toRoomID; at != fromRoomID; {
				h := cameFrom[at]
				reversed = append(reversed, h.via)
				at = h.room
			}
			path := make([]Exit, len(reversed))
			for i, ex := range reversed {
				path[len(reversed)-1-i] = ex
			}
			return path
		}
	}
	return nil
}
