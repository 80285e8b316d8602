// Package socketio is a small Socket.IO v5 client (Engine.IO v4, websocket
// transport only) covering what the dashboard needs: namespaces, events
// without acknowledgments, heartbeats and reconnects.
package socketio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Engine.IO packet types.
const (
	engineOpen    byte = '0'
	engineClose   byte = '1'
	enginePing    byte = '2'
	enginePong    byte = '3'
	engineMessage byte = '4'
	engineUpgrade byte = '5'
	engineNoop    byte = '6'
)

// PacketType is a Socket.IO packet type.
type PacketType int

const (
	PacketConnect PacketType = iota
	PacketDisconnect
	PacketEvent
	PacketAck
	PacketConnectError
	PacketBinaryEvent
	PacketBinaryAck
)

func (t PacketType) String() string {
	switch t {
	case PacketConnect:
		return "CONNECT"
	case PacketDisconnect:
		return "DISCONNECT"
	case PacketEvent:
		return "EVENT"
	case PacketAck:
		return "ACK"
	case PacketConnectError:
		return "CONNECT_ERROR"
	case PacketBinaryEvent:
		return "BINARY_EVENT"
	case PacketBinaryAck:
		return "BINARY_ACK"
	default:
		return "UNKNOWN(" + strconv.Itoa(int(t)) + ")"
	}
}

var ErrMalformedPacket = errors.New("malformed packet")

// Packet is one decoded Socket.IO packet.
type Packet struct {
	Type      PacketType
	Namespace string
	// AckID is -1 when the packet carries no acknowledgment id.
	AckID int
	Data  json.RawMessage
}

// handshake is the Engine.IO open payload.
type handshake struct {
	SID          string   `json:"sid"`
	Upgrades     []string `json:"upgrades"`
	PingInterval int      `json:"pingInterval"`
	PingTimeout  int      `json:"pingTimeout"`
	MaxPayload   int      `json:"maxPayload"`
}

// Encode renders p as the text of an Engine.IO message frame.
func (p Packet) Encode() string {
	var b strings.Builder
	b.WriteByte(engineMessage)
	b.WriteString(strconv.Itoa(int(p.Type)))
	if ns := normalizeNamespace(p.Namespace); ns != "/" {
		b.WriteString(ns)
		b.WriteByte(',')
	}
	if p.AckID >= 0 {
		b.WriteString(strconv.Itoa(p.AckID))
	}
	b.Write(p.Data)
	return b.String()
}

// DecodePacket parses the Socket.IO part of an Engine.IO message frame (the
// text after the leading '4').
func DecodePacket(s string) (Packet, error) {
	p := Packet{Namespace: "/", AckID: -1}
	if s == "" || s[0] < '0' || s[0] > '6' {
		return p, fmt.Errorf("%w: bad type in %q", ErrMalformedPacket, s)
	}
	p.Type = PacketType(s[0] - '0')
	rest := s[1:]

	if p.Type == PacketBinaryEvent || p.Type == PacketBinaryAck {
		return p, fmt.Errorf("%w: binary packets are not supported", ErrMalformedPacket)
	}

	if strings.HasPrefix(rest, "/") {
		i := strings.IndexByte(rest, ',')
		if i < 0 {
			// A namespace with no payload, e.g. "1/api".
			p.Namespace = rest
			return p, nil
		}
		p.Namespace = rest[:i]
		rest = rest[i+1:]
	}

	n := 0
	for n < len(rest) && rest[n] >= '0' && rest[n] <= '9' {
		n++
	}
	if n > 0 {
		id, err := strconv.Atoi(rest[:n])
		if err != nil {
			return p, fmt.Errorf("%w: ack id: %v", ErrMalformedPacket, err)
		}
		p.AckID = id
		rest = rest[n:]
	}
	if rest != "" {
		p.Data = json.RawMessage(rest)
	}
	return p, nil
}

// EventPacket builds an EVENT packet carrying name and one payload argument.
func EventPacket(namespace, name string, payload any) (Packet, error) {
	args := []any{name}
	if payload != nil {
		args = append(args, payload)
	}
	data, err := json.Marshal(args)
	if err != nil {
		return Packet{}, fmt.Errorf("encode %s payload: %w", name, err)
	}
	return Packet{Type: PacketEvent, Namespace: namespace, AckID: -1, Data: data}, nil
}

// EventArgs splits an EVENT packet's data into the event name and its first
// argument (nil when the event has no arguments).
func EventArgs(data json.RawMessage) (string, json.RawMessage, error) {
	var args []json.RawMessage
	if err := json.Unmarshal(data, &args); err != nil {
		return "", nil, fmt.Errorf("%w: event data: %v", ErrMalformedPacket, err)
	}
	if len(args) == 0 {
		return "", nil, fmt.Errorf("%w: event without name", ErrMalformedPacket)
	}
	var name string
	if err := json.Unmarshal(args[0], &name); err != nil {
		return "", nil, fmt.Errorf("%w: event name: %v", ErrMalformedPacket, err)
	}
	if len(args) < 2 {
		return name, nil, nil
	}
	return name, bytes.TrimSpace(args[1]), nil
}

// connectErrorMessage extracts the message of a CONNECT_ERROR payload.
func connectErrorMessage(data json.RawMessage) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		return body.Message
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil && s != "" {
		return s
	}
	return "connection refused"
}

func normalizeNamespace(ns string) string {
	ns = strings.TrimSpace(ns)
	if ns == "" {
		return "/"
	}
	if !strings.HasPrefix(ns, "/") {
		ns = "/" + ns
	}
	return ns
}
