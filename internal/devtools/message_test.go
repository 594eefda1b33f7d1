package devtools

import "testing"

func TestDecodeMessage(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Message
	}{
		{
			name: "reply",
			data: `{"id":3,"result":{"ok":true}}`,
			want: Message{Kind: KindReply, ID: 3},
		},
		{
			name: "reply with id zero",
			data: `{"id":0,"result":{}}`,
			want: Message{Kind: KindReply, ID: 0},
		},
		{
			name: "error reply",
			data: `{"id":4,"error":{"code":-32000,"message":"boom"}}`,
			want: Message{Kind: KindReplyError, ID: 4},
		},
		{
			name: "event",
			data: `{"method":"Page.loadEventFired","params":{"timestamp":1}}`,
			want: Message{Kind: KindEvent, Method: "Page.loadEventFired"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeMessage([]byte(tt.data))
			if err != nil {
				t.Fatalf("decodeMessage(%q) = %v", tt.data, err)
			}
			if got.Kind != tt.want.Kind {
				t.Errorf("Kind = %v; want %v", got.Kind, tt.want.Kind)
			}
			if got.ID != tt.want.ID {
				t.Errorf("ID = %d; want %d", got.ID, tt.want.ID)
			}
			if got.Method != tt.want.Method {
				t.Errorf("Method = %q; want %q", got.Method, tt.want.Method)
			}
			if tt.want.Kind == KindReplyError && got.Err == nil {
				t.Error("Err = nil; want error payload")
			}
		})
	}
}

func TestDecodeMessageErrorReplyPayload(t *testing.T) {
	msg, err := decodeMessage([]byte(`{"id":7,"error":{"code":-32601,"message":"method not found"}}`))
	if err != nil {
		t.Fatalf("decodeMessage() = %v", err)
	}
	if msg.Err.Code != -32601 {
		t.Errorf("Err.Code = %d; want -32601", msg.Err.Code)
	}
	if msg.Err.Message != "method not found" {
		t.Errorf("Err.Message = %q; want %q", msg.Err.Message, "method not found")
	}
}

func TestDecodeMessageRejectsUnclassifiable(t *testing.T) {
	for _, data := range []string{
		`{"result":{}}`,
		`{}`,
		`not json`,
	} {
		if _, err := decodeMessage([]byte(data)); err == nil {
			t.Errorf("decodeMessage(%q) = nil error; want protocol error", data)
		} else {
			assertCode(t, err, CodeProtocol)
		}
	}
}

func TestIsReplyTo(t *testing.T) {
	reply := Message{Kind: KindReply, ID: 5}
	errReply := Message{Kind: KindReplyError, ID: 5}
	event := Message{Kind: KindEvent, Method: "Page.loadEventFired"}

	if !reply.IsReplyTo(5) {
		t.Error("reply.IsReplyTo(5) = false; want true")
	}
	if !errReply.IsReplyTo(5) {
		t.Error("errReply.IsReplyTo(5) = false; want true")
	}
	if reply.IsReplyTo(6) {
		t.Error("reply.IsReplyTo(6) = true; want false")
	}
	if event.IsReplyTo(0) {
		t.Error("event.IsReplyTo(0) = true; want false")
	}
}
