package room

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Registry owns the room table of one channel together with the side table
// of connection memberships. Every method is atomic with respect to the
// others.
type Registry struct {
	mu     sync.Mutex
	rooms  map[string]*Room
	conns  map[string]Membership
	policy HostPolicy
	now    func() time.Time
}

func NewRegistry(policy HostPolicy, now func() time.Time) *Registry {
	if policy == "" {
		policy = PolicyExplicitRole
	}
	if now == nil {
		now = time.Now
	}

	return &Registry{
		rooms:  make(map[string]*Room),
		conns:  make(map[string]Membership),
		policy: policy,
		now:    now,
	}
}

func (r *Registry) Policy() HostPolicy {
	return r.policy
}

// Join places connID into the room identified by code. A connection already
// in a different room leaves it first; the returned JoinResult.Left carries
// what that implicit leave produced. A rejected join mutates nothing.
func (r *Registry) Join(connID, code string, role Role) (JoinResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return JoinResult{}, newError(ErrorCodeMissingCode, "Room code is required")
	}
	if connID == "" {
		return JoinResult{}, newError(ErrorCodeNotMember, "connection id is required")
	}
	if role == RoleNone {
		role = RoleClient
	}
	if role != RoleHost && role != RoleClient {
		return JoinResult{}, newError(ErrorCodeInvalidRole, "role must be host or client")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing := r.rooms[code]
	hostTaken := existing != nil && existing.HostID != "" && existing.HostID != connID

	if r.policy == PolicyFirstConnection {
		if hostTaken {
			role = RoleClient
		} else {
			role = RoleHost
		}
	}

	prev, joined := r.conns[connID]
	if joined && existing != nil && prev.Code == code && prev.Role == role {
		return JoinResult{
			Code:         code,
			Role:         role,
			HostID:       existing.HostID,
			PriorClients: without(existing.Clients, connID),
			Noop:         true,
		}, nil
	}

	if role == RoleHost && hostTaken {
		return JoinResult{}, newError(ErrorCodeHostOccupied, "Room already has a host")
	}

	var left *LeaveResult
	if joined {
		res, _ := r.leaveLocked(connID)
		left = &res
	}

	now := r.now()
	rm, ok := r.rooms[code]
	if !ok {
		rm = &Room{
			Code:      code,
			Clients:   make([]string, 0, 1),
			CreatedAt: now,
			Screen:    DefaultScreen,
		}
		r.rooms[code] = rm
	}

	prior := append([]string(nil), rm.Clients...)
	switch role {
	case RoleHost:
		rm.HostID = connID
	default:
		rm.Clients = append(rm.Clients, connID)
	}
	rm.LastActivityAt = now
	r.conns[connID] = Membership{Code: code, Role: role}

	return JoinResult{
		Code:         code,
		Role:         role,
		HostID:       rm.HostID,
		PriorClients: prior,
		Created:      !ok,
		Left:         left,
	}, nil
}

// Leave removes connID from its room. The room is deleted once it has
// neither host nor clients.
func (r *Registry) Leave(connID string) (LeaveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.leaveLocked(connID)
	if !ok {
		return LeaveResult{}, newError(ErrorCodeNotMember, "connection is not in a room")
	}
	return res, nil
}

func (r *Registry) leaveLocked(connID string) (LeaveResult, bool) {
	m, ok := r.conns[connID]
	if !ok {
		return LeaveResult{}, false
	}
	delete(r.conns, connID)

	res := LeaveResult{ConnID: connID, Code: m.Code, Role: m.Role}
	rm, ok := r.rooms[m.Code]
	if !ok {
		return res, true
	}

	if rm.HostID == connID {
		rm.HostID = ""
	} else {
		rm.Clients = without(rm.Clients, connID)
	}

	res.HostID = rm.HostID
	res.Clients = append([]string(nil), rm.Clients...)
	if rm.empty() {
		delete(r.rooms, m.Code)
		res.Deleted = true
	}
	return res, true
}

// Touch refreshes the activity timestamp. Unknown codes are ignored.
func (r *Registry) Touch(code string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[code]
	if !ok {
		return false
	}
	rm.LastActivityAt = r.now()
	return true
}

func (r *Registry) SetScreen(code string, dims Dimensions) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[code]
	if !ok {
		return false
	}
	rm.Screen = dims
	return true
}

func (r *Registry) SetQuality(code string, q Quality) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[code]
	if !ok {
		return false
	}
	rm.Quality = q
	return true
}

func (r *Registry) Get(code string) (Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[code]
	if !ok {
		return Room{}, false
	}
	return rm.clone(), true
}

func (r *Registry) Membership(connID string) (Membership, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.conns[connID]
	return m, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.rooms)
}

// Snapshot returns copies of every room ordered by code.
func (r *Registry) Snapshot() []Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Room, 0, len(r.rooms))
	for _, rm := range r.rooms {
		out = append(out, rm.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Sweep deletes every room idle for longer than threshold and returns the
// members each deleted room had. Running it again for the same rooms yields
// nothing.
func (r *Registry) Sweep(threshold time.Duration) []Expired {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var expired []Expired
	for code, rm := range r.rooms {
		if now.Sub(rm.LastActivityAt) <= threshold {
			continue
		}
		members := rm.Members()
		for _, id := range members {
			if m, ok := r.conns[id]; ok && m.Code == code {
				delete(r.conns, id)
			}
		}
		delete(r.rooms, code)
		expired = append(expired, Expired{Code: code, Members: members})
	}

	sort.Slice(expired, func(i, j int) bool { return expired[i].Code < expired[j].Code })
	return expired
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
