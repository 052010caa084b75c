package okx

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spooky-finn/go-okx-orderbook/domain"
)

const booksChannel = "books"

type Arg struct {
	Channel string `json:"channel"`
	InstID  string `json:"instId"`
}

// SubscribeRequest is the one message sent after the handshake.
type SubscribeRequest struct {
	Op   string `json:"op"`
	Args []Arg  `json:"args"`
}

func NewSubscribeRequest(symbol string) SubscribeRequest {
	return SubscribeRequest{
		Op:   "subscribe",
		Args: []Arg{{Channel: booksChannel, InstID: symbol}},
	}
}

type MessageKind int

const (
	MessageUnknown MessageKind = iota
	MessageAck
	MessageError
	MessageBooks
	MessageDelta
)

func (k MessageKind) String() string {
	switch k {
	case MessageAck:
		return "ack"
	case MessageError:
		return "error"
	case MessageBooks:
		return "books"
	case MessageDelta:
		return "delta"
	default:
		return "unknown"
	}
}

// Message is an inbound frame sorted by kind. Items holds the book payloads
// of a books push, or the frame itself for a bare delta.
type Message struct {
	Kind   MessageKind
	Arg    *Arg
	Action string
	Code   string
	Msg    string
	Items  []json.RawMessage
}

type inboundMessage struct {
	Event  string            `json:"event"`
	Code   string            `json:"code"`
	Msg    string            `json:"msg"`
	Arg    *Arg              `json:"arg"`
	Action string            `json:"action"`
	Data   []json.RawMessage `json:"data"`
	Asks   json.RawMessage   `json:"asks"`
	Bids   json.RawMessage   `json:"bids"`
}

// IsSubscribeAck reports whether a raw frame is the subscribe
// acknowledgement.
func IsSubscribeAck(msg string) bool {
	return strings.Contains(msg, `"event":"subscribe"`)
}

func ParseMessage(raw []byte) (*Message, error) {
	var in inboundMessage
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDeserialization, err)
	}

	m := &Message{
		Arg:    in.Arg,
		Action: in.Action,
		Code:   in.Code,
		Msg:    in.Msg,
	}

	switch {
	case in.Event == "subscribe":
		m.Kind = MessageAck
	case in.Event == "error":
		m.Kind = MessageError
	case in.Event != "":
		m.Kind = MessageUnknown
	case in.Data != nil:
		m.Kind = MessageBooks
		m.Items = in.Data
	case in.Asks != nil || in.Bids != nil:
		m.Kind = MessageDelta
		m.Items = []json.RawMessage{raw}
	default:
		m.Kind = MessageUnknown
	}

	return m, nil
}
