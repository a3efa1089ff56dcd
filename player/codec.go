package player

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const statusSuccess = "success"

// Message is an inbound line: either a *Response or an *Event.
type Message interface {
	isMessage()
}

// Response is the player's reply to one command.
type Response struct {
	RequestID int64
	Status    string
	Data      json.RawMessage
}

func (*Response) isMessage() {}

// OK reports whether the player accepted the command.
func (r *Response) OK() bool {
	return r.Status == statusSuccess
}

// Payload decodes the reply data into a generic value. JSON null yields nil.
func (r *Response) Payload() (any, error) {
	if len(r.Data) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(r.Data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Event is an unsolicited notification from the player.
type Event struct {
	Name string

	// ObserverID is set for property-change events; HasObserver tells whether the field was present.
	ObserverID  int64
	HasObserver bool

	// Property is the property name of a property-change event.
	Property string
	Data     json.RawMessage
}

func (*Event) isMessage() {}

// EventPropertyChange is the event name carrying observed property updates.
const EventPropertyChange = "property-change"

type wireCommand struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

type wireInbound struct {
	RequestID *int64          `json:"request_id"`
	Error     *string         `json:"error"`
	Data      json.RawMessage `json:"data"`
	Event     string          `json:"event"`
	ID        *int64          `json:"id"`
	Name      string          `json:"name"`
}

// Encode validates cmd and produces its wire line, without the trailing newline.
func Encode(cmd Command, requestID int64) ([]byte, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(wireCommand{Command: cmd.Wire(), RequestID: requestID})
}

// DecodeCommand parses an outbound command line. It is the inverse of Encode.
func DecodeCommand(line []byte) (Command, int64, error) {
	var w struct {
		Command   []json.RawMessage `json:"command"`
		RequestID *int64            `json:"request_id"`
	}
	if err := json.Unmarshal(line, &w); err != nil {
		return Command{}, 0, &ProtocolError{Line: string(line), Reason: err.Error()}
	}
	if len(w.Command) == 0 || w.RequestID == nil {
		return Command{}, 0, &ProtocolError{Line: string(line), Reason: "missing command or request_id"}
	}

	var cmd Command
	if err := json.Unmarshal(w.Command[0], &cmd.Name); err != nil {
		return Command{}, 0, &ProtocolError{Line: string(line), Reason: "command name is not a string"}
	}

	for i, raw := range w.Command[1:] {
		var arg any
		if cmd.Name == cmdObserveProperty && i == 0 {
			var id int64
			if err := json.Unmarshal(raw, &id); err != nil {
				return Command{}, 0, &ProtocolError{Line: string(line), Reason: "observer id is not an integer"}
			}
			arg = id
		} else if err := json.Unmarshal(raw, &arg); err != nil {
			return Command{}, 0, &ProtocolError{Line: string(line), Reason: err.Error()}
		}
		cmd.Args = append(cmd.Args, arg)
	}

	return cmd, *w.RequestID, nil
}

// Decode classifies an inbound line. Lines that are neither a response nor an
// event yield a *ProtocolError.
func Decode(line []byte) (Message, error) {
	var w wireInbound
	if err := json.Unmarshal(line, &w); err != nil {
		return nil, &ProtocolError{Line: string(line), Reason: err.Error()}
	}

	switch {
	case w.Event != "":
		ev := &Event{Name: w.Event, Property: w.Name, Data: w.Data}
		if w.ID != nil {
			ev.ObserverID, ev.HasObserver = *w.ID, true
		}
		return ev, nil
	case w.RequestID != nil && w.Error != nil:
		return &Response{RequestID: *w.RequestID, Status: *w.Error, Data: w.Data}, nil
	case w.RequestID != nil:
		return nil, &ProtocolError{Line: string(line), Reason: "response without status"}
	default:
		return nil, &ProtocolError{Line: string(line), Reason: "neither response nor event"}
	}
}

// ValueKind is the declared type of an observed property.
type ValueKind int

const (
	KindBool ValueKind = iota + 1
	KindNumber
	KindString
)

func (k ValueKind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// coerce converts a raw property payload to kind. A missing or null payload
// (the property is unavailable) and type mismatches report ok=false.
func coerce(raw json.RawMessage, kind ValueKind) (any, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, false
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}

	switch kind {
	case KindBool:
		switch b := v.(type) {
		case bool:
			return b, true
		case string:
			switch strings.ToLower(b) {
			case "yes", "true":
				return true, true
			case "no", "false":
				return false, true
			}
		}
	case KindNumber:
		switch n := v.(type) {
		case float64:
			return n, true
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
			if err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
				return f, true
			}
		}
	case KindString:
		if s, ok := v.(string); ok {
			return s, true
		}
	}

	return nil, false
}

// zeroOf returns the zero value for kind, used when a caller passes a nil default.
func zeroOf(kind ValueKind) any {
	switch kind {
	case KindBool:
		return false
	case KindNumber:
		return 0.0
	case KindString:
		return ""
	default:
		return nil
	}
}

// checkDefault verifies that def has the Go type kind decodes to.
func checkDefault(kind ValueKind, def any) (any, error) {
	if def == nil {
		return zeroOf(kind), nil
	}

	ok := false
	switch kind {
	case KindBool:
		_, ok = def.(bool)
	case KindNumber:
		switch n := def.(type) {
		case float64:
			ok = true
		case int:
			def, ok = float64(n), true
		}
	case KindString:
		_, ok = def.(string)
	default:
		return nil, fmt.Errorf("unknown value kind %d", kind)
	}

	if !ok {
		return nil, fmt.Errorf("default %v (%T) does not match kind %s", def, def, kind)
	}
	return def, nil
}
