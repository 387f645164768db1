package bus_test

import (
	"testing"

	"github.com/focusflow/focusflow/bus"
)

type fakeHandler struct {
	delivered []bus.Message
	reply     bus.TimeReply
}

func (f *fakeHandler) Deliver(msg bus.Message) {
	f.delivered = append(f.delivered, msg)
}

func (f *fakeHandler) Time() bus.TimeReply {
	return f.reply
}

func TestSendReportsDeliveryOutcome(t *testing.T) {
	r := bus.NewRouter()
	h := &fakeHandler{}

	msg := bus.Message{Action: bus.ActionStartTimer, Limit: 300}

	if got := r.Send(1, msg); got != bus.Unreachable {
		t.Errorf("send to unregistered tab = %s, want unreachable", got)
	}

	r.Register(1, h)

	if got := r.Send(1, msg); got != bus.Delivered {
		t.Errorf("send to registered tab = %s, want delivered", got)
	}

	if len(h.delivered) != 1 || h.delivered[0].Limit != 300 {
		t.Errorf("handler received %v", h.delivered)
	}
}

func TestQuery(t *testing.T) {
	r := bus.NewRouter()
	h := &fakeHandler{reply: bus.TimeReply{Elapsed: 12, Limit: 60}}

	r.Register(7, h)

	reply, delivery := r.Query(7)
	if delivery != bus.Delivered {
		t.Fatalf("query delivery = %s", delivery)
	}

	if reply != h.reply {
		t.Errorf("reply = %+v, want %+v", reply, h.reply)
	}

	if _, delivery := r.Query(8); delivery != bus.Unreachable {
		t.Errorf("query for missing tab = %s, want unreachable", delivery)
	}
}

func TestUnregisterIgnoresStaleHandler(t *testing.T) {
	r := bus.NewRouter()

	old := &fakeHandler{}
	replacement := &fakeHandler{}

	r.Register(1, old)
	r.Register(1, replacement)

	// The stale client disconnecting must not tear down its replacement.
	r.Unregister(1, old)

	if got := r.Send(1, bus.Message{Action: bus.ActionStopTimer}); got != bus.Delivered {
		t.Errorf("replacement handler was unregistered by a stale client")
	}

	r.Unregister(1, replacement)

	if got := r.Send(1, bus.Message{Action: bus.ActionStopTimer}); got != bus.Unreachable {
		t.Errorf("handler still registered after unregister")
	}
}
