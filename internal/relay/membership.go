package relay

import (
	"remote-support-backend/internal/room"

	"go.uber.org/zap"
)

func (h *Hub) join(connID string, e JoinRoom) {
	if s, ok := h.conns[connID].(scopedSink); ok {
		if allowed := s.AllowedCode(); allowed != "" && allowed != e.Code {
			h.reject(connID, "Not authorized for room "+e.Code)
			return
		}
	}

	role, err := room.ParseRole(e.Role)
	if err != nil {
		h.reject(connID, err.Error())
		return
	}

	res, err := h.registry.Join(connID, e.Code, role)
	if err != nil {
		h.reject(connID, err.Error())
		return
	}

	if res.Left != nil {
		h.notifyLeave(*res.Left)
	}
	if res.Created {
		h.subscribe(res.Code)
	}

	h.notify(connID, KindRoomJoined, notice{Code: res.Code, Room: res.Code, Role: string(res.Role)})
	if res.Noop {
		return
	}

	h.logger.Info("joined room",
		zap.String("conn", connID),
		zap.String("room", res.Code),
		zap.String("role", string(res.Role)),
	)

	switch res.Role {
	case room.RoleClient:
		if res.HostID != "" {
			h.notify(res.HostID, KindClientConnected, notice{Code: res.Code, Room: res.Code, ClientID: connID})
			h.notify(connID, KindHostConnected, notice{Code: res.Code, Room: res.Code, HostID: res.HostID})
		}
	case room.RoleHost:
		for _, id := range res.PriorClients {
			h.notify(id, KindHostConnected, notice{Code: res.Code, Room: res.Code, HostID: connID})
		}
	}
	setRooms(h.channel, h.registry.Len())
}

// leave handles an explicit leave-room. Leaving while not in a room is a no-op.
func (h *Hub) leave(connID string) {
	res, err := h.registry.Leave(connID)
	if err != nil {
		return
	}
	h.notifyLeave(res)
}

func (h *Hub) notifyLeave(res room.LeaveResult) {
	switch res.Role {
	case room.RoleHost:
		for _, id := range res.Clients {
			h.notify(id, KindHostDisconnected, notice{Code: res.Code, Room: res.Code})
		}
	default:
		if res.HostID != "" {
			h.notify(res.HostID, KindClientDisconnected, notice{Code: res.Code, Room: res.Code, ClientID: res.ConnID})
		}
	}

	h.logger.Info("left room",
		zap.String("conn", res.ConnID),
		zap.String("room", res.Code),
		zap.String("role", string(res.Role)),
		zap.Bool("deleted", res.Deleted),
	)

	if res.Deleted {
		h.unsubscribe(res.Code)
	}
	setRooms(h.channel, h.registry.Len())
}
