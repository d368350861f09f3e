package relay

import "remote-support-backend/internal/room"

type Channel string

const (
	ChannelControl Channel = "control"
	ChannelScreen  Channel = "screen"
)

type Target uint8

const (
	// TargetHost selects the room host.
	TargetHost Target = iota + 1
	// TargetOthers selects every member of the room except the sender.
	TargetOthers
)

type DeliveryClass uint8

const (
	// Reliable messages are queued per connection and never dropped by the relay.
	Reliable DeliveryClass = iota + 1
	// Volatile messages are dropped when the connection cannot take them now.
	Volatile
)

func (c DeliveryClass) String() string {
	switch c {
	case Reliable:
		return "reliable"
	case Volatile:
		return "volatile"
	}
	return "unknown"
}

type Route struct {
	Target Target
	Class  DeliveryClass
	// Touch refreshes the room activity timestamp.
	Touch bool
}

var controlRoutes = map[EventKind]Route{
	KindMouseMove:        {Target: TargetHost, Class: Volatile, Touch: true},
	KindMouseScroll:      {Target: TargetHost, Class: Volatile, Touch: true},
	KindMouseClick:       {Target: TargetHost, Class: Reliable, Touch: true},
	KindMouseDoubleClick: {Target: TargetHost, Class: Reliable, Touch: true},
	KindKeyPress:         {Target: TargetHost, Class: Reliable, Touch: true},
	KindScreenData:       {Target: TargetOthers, Class: Volatile, Touch: true},
	KindScreenDataAck:    {Target: TargetHost, Class: Reliable},
	KindCursorPosition:   {Target: TargetOthers, Class: Volatile},
	KindClipboardData:    {Target: TargetOthers, Class: Reliable, Touch: true},
	KindScreenSize:       {Target: TargetOthers, Class: Reliable, Touch: true},
	KindScreenDimensions: {Target: TargetOthers, Class: Reliable, Touch: true},
	KindQualitySettings:  {Target: TargetOthers, Class: Reliable, Touch: true},
}

// The screen channel only carries frames and their acknowledgements.
var screenRoutes = map[EventKind]Route{
	KindScreenData:    controlRoutes[KindScreenData],
	KindScreenDataAck: controlRoutes[KindScreenDataAck],
}

func (c Channel) Routes() map[EventKind]Route {
	if c == ChannelScreen {
		return screenRoutes
	}
	return controlRoutes
}

func (c Channel) Lookup(kind EventKind) (Route, bool) {
	r, ok := c.Routes()[kind]
	return r, ok
}

// targets resolves a route target against a room snapshot.
func targets(rm room.Room, target Target, sender string) []string {
	switch target {
	case TargetHost:
		if rm.HostID == "" || rm.HostID == sender {
			return nil
		}
		return []string{rm.HostID}
	case TargetOthers:
		out := make([]string, 0, len(rm.Clients)+1)
		for _, id := range rm.Members() {
			if id != sender {
				out = append(out, id)
			}
		}
		return out
	}
	return nil
}
