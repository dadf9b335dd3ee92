package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/Dicklesworthstone/chess_viewer/pkg/model"
)

// Kind tags a decoded server frame.
type Kind int

const (
	KindFEN Kind = iota + 1
	KindGameTree
	KindValue
	KindError
)

// String returns the wire key of the kind
func (k Kind) String() string {
	switch k {
	case KindFEN:
		return "fen"
	case KindGameTree:
		return "game_tree"
	case KindValue:
		return "value"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Message is one server frame. Exactly one payload field is meaningful,
// selected by Kind.
type Message struct {
	Kind     Kind
	FEN      string
	GameTree []byte // the tree payload, still encoded
	Value    float64
	Error    string
}

var frameKeys = map[string]Kind{
	"fen":       KindFEN,
	"game_tree": KindGameTree,
	"value":     KindValue,
	"error":     KindError,
}

// Decode turns a raw frame into a Message. The frame must be a JSON object
// carrying exactly one of fen, game_tree, value or error with the right type;
// anything else is a ProtocolError. Keys outside those four are ignored.
func Decode(raw []byte) (Message, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Message{}, model.NewError(model.KindProtocolError, "decode frame", err)
	}

	var (
		kind  Kind
		value json.RawMessage
		found []string
	)
	for key, v := range fields {
		if k, ok := frameKeys[key]; ok {
			kind, value = k, v
			found = append(found, key)
		}
	}
	switch len(found) {
	case 0:
		return Message{}, model.Errorf(model.KindProtocolError, "decode frame", "no known message shape")
	case 1:
	default:
		sort.Strings(found)
		return Message{}, model.Errorf(model.KindProtocolError, "decode frame",
			"ambiguous frame carries %s", strings.Join(found, ", "))
	}

	msg := Message{Kind: kind}
	var err error
	switch kind {
	case KindFEN:
		err = decodeString(value, &msg.FEN)
	case KindError:
		err = decodeString(value, &msg.Error)
	case KindValue:
		if isNull(value) {
			err = fmt.Errorf("null")
		} else {
			err = json.Unmarshal(value, &msg.Value)
		}
	case KindGameTree:
		msg.GameTree, err = decodeTreePayload(value)
	}
	if err != nil {
		return Message{}, model.NewError(model.KindProtocolError, "decode "+kind.String(), err)
	}
	return msg, nil
}

func decodeString(raw json.RawMessage, dst *string) error {
	if isNull(raw) {
		return fmt.Errorf("null")
	}
	return json.Unmarshal(raw, dst)
}

// decodeTreePayload accepts the tree as a JSON-encoded string (what the
// server sends) or as an inline object.
func decodeTreePayload(raw json.RawMessage) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	switch {
	case isNull(trimmed):
		return nil, fmt.Errorf("null")
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
		return []byte(s), nil
	case len(trimmed) > 0 && trimmed[0] == '{':
		return append([]byte(nil), trimmed...), nil
	default:
		return nil, fmt.Errorf("game_tree must be a string or an object")
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

type moveFrame struct {
	Move string `json:"move"`
}

// EncodeMove builds the client frame for a move from one square to another
func EncodeMove(from, to string) ([]byte, error) {
	if from == "" || to == "" {
		return nil, fmt.Errorf("encode move: empty square")
	}
	return json.Marshal(moveFrame{Move: from + to})
}
