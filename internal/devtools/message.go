package devtools

import "encoding/json"

// MessageKind tags an incoming message after the one-pass transport decode.
type MessageKind int

const (
	// KindReply is a successful response carrying the id of a sent command.
	KindReply MessageKind = iota
	// KindReplyError is a response whose payload is an error object.
	KindReplyError
	// KindEvent is an unsolicited, id-less message pushed by the browser.
	KindEvent
)

// CommandError is the error payload carried by a failed reply.
type CommandError struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

// Message is the decoded form of everything the tab socket can deliver.
// Downstream logic switches on Kind instead of re-probing JSON shapes.
type Message struct {
	Kind   MessageKind
	ID     int64
	Result json.RawMessage
	Err    *CommandError
	Method string
	Params json.RawMessage
}

// IsReplyTo reports whether m answers the command with the given id,
// regardless of success or error payload.
func (m Message) IsReplyTo(id int64) bool {
	return m.Kind != KindEvent && m.ID == id
}

// decodeMessage classifies a raw frame into the reply/reply-error/event union.
// Replies carry an id; events carry a method and no id.
func decodeMessage(data []byte) (Message, error) {
	var raw struct {
		ID     *int64          `json:"id"`
		Result json.RawMessage `json:"result"`
		Error  *CommandError   `json:"error"`
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Message{}, newError(CodeProtocol, "malformed incoming message", err)
	}

	switch {
	case raw.ID != nil && raw.Error != nil:
		return Message{Kind: KindReplyError, ID: *raw.ID, Err: raw.Error}, nil
	case raw.ID != nil:
		return Message{Kind: KindReply, ID: *raw.ID, Result: raw.Result}, nil
	case raw.Method != "":
		return Message{Kind: KindEvent, Method: raw.Method, Params: raw.Params}, nil
	default:
		return Message{}, newError(CodeProtocol, "message has neither id nor method", nil)
	}
}
