package relay

import (
	"bytes"
	"encoding/json"
	"strings"
)

type EventKind string

// Inbound and forwarded event kinds.
const (
	KindJoinRoom         EventKind = "join-room"
	KindLeaveRoom        EventKind = "leave-room"
	KindScreenSize       EventKind = "screen-size"
	KindScreenDimensions EventKind = "screen-dimensions"
	KindQualitySettings  EventKind = "quality-settings"
	KindScreenData       EventKind = "screen-data"
	KindScreenDataAck    EventKind = "screen-data-received"
	KindMouseMove        EventKind = "mouse-move"
	KindMouseScroll      EventKind = "mouse-scroll"
	KindMouseClick       EventKind = "mouse-click"
	KindMouseDoubleClick EventKind = "mouse-double-click"
	KindKeyPress         EventKind = "key-press"
	KindCursorPosition   EventKind = "cursor-position"
	KindClipboardData    EventKind = "clipboard-data"
)

// Outbound-only kinds.
const (
	KindRoomJoined         EventKind = "room-joined"
	KindError              EventKind = "error"
	KindRoomExpired        EventKind = "room-expired"
	KindHostConnected      EventKind = "host-connected"
	KindClientConnected    EventKind = "client-connected"
	KindHostDisconnected   EventKind = "host-disconnected"
	KindClientDisconnected EventKind = "client-disconnected"
)

// Envelope is the frame exchanged over both websocket channels.
type Envelope struct {
	Type EventKind       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Event is one decoded inbound frame. The set of implementations is closed.
type Event interface {
	Kind() EventKind
	RoomCode() string
}

// routable events are forwarded to other connections.
type routable interface {
	Event
	forward(sender string) any
}

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(message string) *ValidationError {
	return &ValidationError{Message: message}
}

const errMissingCode = "Room code is required"

type JoinRoom struct {
	Code string `json:"code"`
	Role string `json:"role"`
}

func (JoinRoom) Kind() EventKind { return KindJoinRoom }
func (e JoinRoom) RoomCode() string { return e.Code }

type LeaveRoom struct{}

func (LeaveRoom) Kind() EventKind { return KindLeaveRoom }
func (LeaveRoom) RoomCode() string { return "" }

// ScreenSize carries both screen-size and its screen-dimensions alias.
type ScreenSize struct {
	kind   EventKind
	Code   string `json:"code"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (e ScreenSize) Kind() EventKind { return e.kind }
func (e ScreenSize) RoomCode() string { return e.Code }
func (e ScreenSize) forward(string) any {
	return struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}{e.Width, e.Height}
}

type QualitySettings struct {
	Code      string          `json:"code"`
	Quality   json.RawMessage `json:"quality"`
	FrameRate json.RawMessage `json:"frameRate"`

	rate float64
}

func (QualitySettings) Kind() EventKind { return KindQualitySettings }
func (e QualitySettings) RoomCode() string { return e.Code }
func (e QualitySettings) forward(string) any {
	return struct {
		Quality   json.RawMessage `json:"quality,omitempty"`
		FrameRate json.RawMessage `json:"frameRate,omitempty"`
	}{e.Quality, e.FrameRate}
}

// Level renders the quality hint as text whatever its JSON type.
func (e QualitySettings) Level() string {
	var s string
	if err := json.Unmarshal(e.Quality, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(e.Quality))
}

// Rate is the frame rate checked by Decode, zero when none was sent.
func (e QualitySettings) Rate() float64 {
	return e.rate
}

// Passthrough covers events forwarded verbatim: pointer and keyboard input,
// screen frames and frame acknowledgements.
type Passthrough struct {
	kind EventKind
	Code string
	Raw  json.RawMessage
}

func (e Passthrough) Kind() EventKind { return e.kind }
func (e Passthrough) RoomCode() string { return e.Code }
func (e Passthrough) forward(string) any { return e.Raw }

type CursorPosition struct {
	Code string  `json:"code"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

func (CursorPosition) Kind() EventKind { return KindCursorPosition }
func (e CursorPosition) RoomCode() string { return e.Code }
func (e CursorPosition) forward(string) any {
	return struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}{e.X, e.Y}
}

type ClipboardData struct {
	Code string `json:"code"`
	Text string `json:"text"`
}

func (ClipboardData) Kind() EventKind { return KindClipboardData }
func (e ClipboardData) RoomCode() string { return e.Code }
func (e ClipboardData) forward(sender string) any {
	return struct {
		Text   string `json:"text"`
		Sender string `json:"sender"`
	}{e.Text, sender}
}

// Decode parses one websocket frame into an Event, rejecting frames with
// missing or malformed required fields.
func Decode(frame []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, invalid("Malformed message")
	}
	if env.Type == "" {
		return nil, invalid("Message type is required")
	}

	data := env.Data
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		data = json.RawMessage("{}")
	}

	switch env.Type {
	case KindJoinRoom:
		var e JoinRoom
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, invalid("Invalid join-room payload")
		}
		e.Code = strings.TrimSpace(e.Code)
		if e.Code == "" {
			return nil, invalid(errMissingCode)
		}
		return e, nil

	case KindLeaveRoom:
		return LeaveRoom{}, nil

	case KindScreenSize, KindScreenDimensions:
		e := ScreenSize{kind: env.Type}
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, invalid("Invalid screen size data")
		}
		if e.Code == "" {
			return nil, invalid(errMissingCode)
		}
		if e.Width <= 0 || e.Height <= 0 {
			return nil, invalid("Screen width and height must be positive")
		}
		return e, nil

	case KindQualitySettings:
		var e QualitySettings
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, invalid("Invalid quality settings data")
		}
		if e.Code == "" {
			return nil, invalid(errMissingCode)
		}
		if !isEmptyJSON(e.FrameRate) {
			if err := json.Unmarshal(e.FrameRate, &e.rate); err != nil {
				return nil, invalid("Frame rate must be a number")
			}
			if e.rate < 0 {
				return nil, invalid("Frame rate must not be negative")
			}
		}
		return e, nil

	case KindScreenData:
		var fields struct {
			Code  string          `json:"code"`
			Image json.RawMessage `json:"image"`
		}
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, invalid("Invalid screen data")
		}
		if fields.Code == "" {
			return nil, invalid(errMissingCode)
		}
		if isEmptyJSON(fields.Image) {
			return nil, invalid("Screen data requires an image")
		}
		return Passthrough{kind: env.Type, Code: fields.Code, Raw: data}, nil

	case KindScreenDataAck:
		var fields struct {
			Code    string          `json:"code"`
			FrameID json.RawMessage `json:"frameId"`
		}
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, invalid("Invalid screen data acknowledgment")
		}
		if fields.Code == "" {
			return nil, invalid(errMissingCode)
		}
		if isEmptyJSON(fields.FrameID) {
			return nil, invalid("Acknowledgment requires a frameId")
		}
		return Passthrough{kind: env.Type, Code: fields.Code, Raw: data}, nil

	case KindMouseMove, KindMouseScroll, KindMouseClick, KindMouseDoubleClick, KindKeyPress:
		var fields struct {
			Code string `json:"code"`
		}
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, invalid("Invalid " + string(env.Type) + " data")
		}
		if fields.Code == "" {
			return nil, invalid(errMissingCode)
		}
		return Passthrough{kind: env.Type, Code: fields.Code, Raw: data}, nil

	case KindCursorPosition:
		var e CursorPosition
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, invalid("Invalid cursor position data")
		}
		if e.Code == "" {
			return nil, invalid(errMissingCode)
		}
		return e, nil

	case KindClipboardData:
		var e ClipboardData
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, invalid("Invalid clipboard data")
		}
		if e.Code == "" {
			return nil, invalid(errMissingCode)
		}
		if e.Text == "" {
			return nil, invalid("Clipboard text is required")
		}
		return e, nil
	}

	return nil, invalid("Unknown message type " + string(env.Type))
}

func isEmptyJSON(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	return len(v) == 0 || bytes.Equal(v, []byte("null")) || bytes.Equal(v, []byte(`""`))
}

// Encode builds an outbound frame.
func Encode(kind EventKind, data any) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: kind, Data: payload})
}

// notice is the payload of every membership and lifecycle notification.
// Both code and room carry the room code.
type notice struct {
	Code     string `json:"code"`
	Room     string `json:"room"`
	Role     string `json:"role,omitempty"`
	HostID   string `json:"hostId,omitempty"`
	ClientID string `json:"clientId,omitempty"`
}

type errorNotice struct {
	Message string `json:"message"`
}
