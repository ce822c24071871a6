// SPDX-License-Identifier: MIT

package wire

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/katalvlaran/stakesearch/matrix"
)

var (
	// ErrChannelClosed means the peer closed or reset the stream.
	ErrChannelClosed = errors.New("wire: channel closed")

	// ErrProtocolViolation means a frame could not be decoded into a known
	// message, or the message is not valid for its direction.
	ErrProtocolViolation = errors.New("wire: protocol violation")
)

// envelope is the on-wire frame.
type envelope struct {
	Type Kind            `json:"type"`
	Body json.RawMessage `json:"body,omitempty"`
}

// Marshal encodes m as a single JSON frame without the trailing newline.
func Marshal(m Message) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("marshal nil message: %w", ErrProtocolViolation)
	}
	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", m.Kind(), err)
	}

	return json.Marshal(envelope{Type: m.Kind(), Body: body})
}

// Unmarshal decodes one frame. Unknown tags, malformed bodies and Init
// frames with missing or inconsistent tables yield ErrProtocolViolation.
func Unmarshal(frame []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("%w: frame: %v", ErrProtocolViolation, err)
	}

	var (
		msg Message
		err error
	)
	switch env.Type {
	case KindHello:
		var m Hello
		err = decodeBody(env.Body, &m)
		msg = m
	case KindInit:
		var m Init
		if err = decodeBody(env.Body, &m); err == nil {
			err = m.validate()
		}
		msg = m
	case KindContinue:
		var m Continue
		err = decodeBody(env.Body, &m)
		msg = m
	case KindRequestResult:
		var m RequestResult
		err = decodeBody(env.Body, &m)
		msg = m
	case KindResult:
		var m Result
		err = decodeBody(env.Body, &m)
		msg = m
	case KindStop:
		msg = Stop{}
	case KindWithdraw:
		var m Withdraw
		err = decodeBody(env.Body, &m)
		msg = m
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrProtocolViolation, env.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrProtocolViolation, env.Type, err)
	}

	return msg, nil
}

func decodeBody(body json.RawMessage, v any) error {
	if len(body) == 0 {
		return errors.New("missing body")
	}

	return json.Unmarshal(body, v)
}

// validate checks that every table is present, square and of one size.
func (m Init) validate() error {
	tables := []*matrix.Dense{m.NormDistance, m.NormTime, m.Distance, m.Time, m.Coordinator}
	for i, t := range tables {
		if err := matrix.ValidateSquare(t); err != nil {
			return fmt.Errorf("table %d: %w", i, err)
		}
		if err := matrix.ValidateSameShape(tables[0], t); err != nil {
			return fmt.Errorf("table %d: %w", i, err)
		}
	}

	return nil
}
