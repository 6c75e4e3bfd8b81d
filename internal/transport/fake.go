package transport

import "fmt"

// OutMessage is one composed-and-sent outbound message, captured for
// assertions in tests.
type OutMessage struct {
	Type   MessageType
	Fields []string
}

// InMessage is one inbound message queued for the dispatch loop to
// hand to a handler. Fields are consumed in order by GetCString.
type InMessage struct {
	Type   MessageType
	Fields []string
}

// FakeTransport is an in-memory stand-in for the real packet/crypto
// transport, used by tests and by cmd/sshauthd's demo dispatch loop.
// It is not a protocol implementation: messages are pushed directly
// rather than parsed off a socket.
type FakeTransport struct {
	handlers map[MessageType]Handler
	def      Handler

	inbox []InMessage
	cur   *InMessage
	pos   int

	Sent             []OutMessage
	pending          *OutMessage
	Disconnected     bool
	DisconnectReason string

	waits int
}

func NewFakeTransport() *FakeTransport {
	return &FakeTransport{handlers: make(map[MessageType]Handler)}
}

// Push queues an inbound message for the next Run call to dispatch.
func (f *FakeTransport) Push(t MessageType, fields ...string) {
	f.inbox = append(f.inbox, InMessage{Type: t, Fields: fields})
}

func (f *FakeTransport) Set(t MessageType, h Handler) {
	f.handlers[t] = h
}

func (f *FakeTransport) InitDispatch(def Handler) {
	f.def = def
}

func (f *FakeTransport) Run(blocking bool, until *bool) error {
	for len(f.inbox) > 0 {
		if until != nil && *until {
			return nil
		}
		msg := f.inbox[0]
		f.inbox = f.inbox[1:]
		f.cur = &msg
		f.pos = 0

		h, ok := f.handlers[msg.Type]
		if !ok {
			h = f.def
		}
		if h == nil {
			return fmt.Errorf("transport: no handler for %s", msg.Type)
		}
		if err := h(f); err != nil {
			return err
		}
	}
	return nil
}

func (f *FakeTransport) Start(t MessageType) error {
	f.pending = &OutMessage{Type: t}
	return nil
}

func (f *FakeTransport) PutCString(s string) error {
	if f.pending == nil {
		return fmt.Errorf("transport: PutCString without Start")
	}
	f.pending.Fields = append(f.pending.Fields, s)
	return nil
}

func (f *FakeTransport) PutU8(b byte) error {
	if f.pending == nil {
		return fmt.Errorf("transport: PutU8 without Start")
	}
	if b == 0 {
		f.pending.Fields = append(f.pending.Fields, "0")
	} else {
		f.pending.Fields = append(f.pending.Fields, "1")
	}
	return nil
}

func (f *FakeTransport) Send() error {
	if f.pending == nil {
		return fmt.Errorf("transport: Send without Start")
	}
	f.Sent = append(f.Sent, *f.pending)
	f.pending = nil
	return nil
}

func (f *FakeTransport) GetCString() (string, error) {
	if f.cur == nil || f.pos >= len(f.cur.Fields) {
		return "", fmt.Errorf("transport: no more string fields")
	}
	v := f.cur.Fields[f.pos]
	f.pos++
	return v, nil
}

func (f *FakeTransport) GetEnd() error {
	if f.cur != nil && f.pos < len(f.cur.Fields) {
		return fmt.Errorf("transport: unconsumed fields remain")
	}
	return nil
}

func (f *FakeTransport) WriteWait() error {
	f.waits++
	return nil
}

func (f *FakeTransport) Disconnect(reason string) error {
	f.Disconnected = true
	f.DisconnectReason = reason
	// A disconnect drains any still-queued inbound messages: a real
	// transport would close the socket under them.
	f.inbox = nil
	return nil
}
