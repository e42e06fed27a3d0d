// Package wire defines the JSON envelope exchanged between the client and
// the collaboration server. It only knows how to decode and encode
// messages; it has no opinion about what the client does with them.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/driftdoc/client/internal/ot"
)

// ErrUnknownMessageType is returned when an incoming message carries a
// type this client doesn't understand.
var ErrUnknownMessageType = errors.New("unknown message type")

// MessageType identifies the kind of message on the wire.
type MessageType string

const (
	// Server to client.
	MessageTypeDocument   MessageType = "document"   // full snapshot on join
	MessageTypeTransforms MessageType = "transforms" // remote edits to apply
	MessageTypeCorrection MessageType = "correction" // ack/version correction for our own submission
	MessageTypeError      MessageType = "error"      // server rejected something

	// Client to server.
	MessageTypeSubmit MessageType = "submit" // submit a local edit
	MessageTypeJoin   MessageType = "join"   // subscribe to a document
)

// Envelope is the outer shape every message shares.
type Envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// DocumentPayload is the initial snapshot sent when a client joins.
type DocumentPayload struct {
	DocID   string `json:"doc_id"`
	Content string `json:"content"`
	Version int    `json:"version"`
}

// TransformsPayload carries one or more remote edits, all already
// assigned a server version.
type TransformsPayload struct {
	Transforms []ot.Edit `json:"transforms"`
}

// CorrectionPayload tells the client which server version its most
// recent submission landed at.
type CorrectionPayload struct {
	Version int `json:"version"`
}

// ErrorPayload reports a server-side rejection.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Server-reported error codes.
const (
	ErrorCodeAccessDenied    = "access_denied"
	ErrorCodeInvalidMessage  = "invalid_message"
	ErrorCodeInternalError   = "internal_error"
	ErrorCodeDocumentUnknown = "document_unknown"
)

// SubmitPayload carries one local edit the client wants applied.
type SubmitPayload struct {
	Transform ot.Edit `json:"transform"`
}

// JoinPayload requests a document's current state. ClientID identifies
// this connection so the server can tell apart multiple sessions from
// the same user (for presence, or for routing a correction back to the
// connection that submitted it).
type JoinPayload struct {
	DocID    string `json:"doc_id"`
	ClientID string `json:"client_id"`
}

// NewSubmit builds the outgoing envelope for a local edit.
func NewSubmit(edit ot.Edit) (Envelope, error) {
	return encode(MessageTypeSubmit, SubmitPayload{Transform: edit})
}

// NewJoin builds the outgoing envelope requesting a document.
func NewJoin(docID, clientID string) (Envelope, error) {
	return encode(MessageTypeJoin, JoinPayload{DocID: docID, ClientID: clientID})
}

func encode(t MessageType, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", t, err)
	}

	return Envelope{Type: t, Payload: raw}, nil
}

// Decode unpacks an envelope's payload according to its declared type.
// It returns one of the Payload types above as an any, or
// ErrUnknownMessageType if Type isn't recognized.
func Decode(env Envelope) (any, error) {
	switch env.Type {
	case MessageTypeDocument:
		var p DocumentPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode document payload: %w", err)
		}

		return p, nil

	case MessageTypeTransforms:
		var p TransformsPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode transforms payload: %w", err)
		}

		return p, nil

	case MessageTypeCorrection:
		var p CorrectionPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode correction payload: %w", err)
		}

		return p, nil

	case MessageTypeError:
		var p ErrorPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode error payload: %w", err)
		}

		return p, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMessageType, env.Type)
	}
}
