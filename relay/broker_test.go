package relay

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func TestPublishFansOutToOtherSubscribers(t *testing.T) {
	c := qt.New(t)
	b := NewInMemoryBroker()

	id1, ch1 := b.Join(1)
	id2, ch2 := b.Join(1)

	c.Assert(b.Publish(1, id1, EventDraw, []byte(`{"card":3}`)), qt.IsNil)

	select {
	case evt := <-ch2:
		c.Assert(evt.Type, qt.Equals, EventDraw)
		c.Assert(evt.SessionID, qt.Equals, uint32(1))
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for fan-out event")
	}

	select {
	case <-ch1:
		t.Fatal("sender should not receive its own event")
	default:
	}
}

func TestPublishRejectsOversizedMessage(t *testing.T) {
	c := qt.New(t)
	b := NewInMemoryBroker()
	id, _ := b.Join(1)

	big := make([]byte, MaxMessageBytes+1)
	c.Assert(b.Publish(1, id, EventDraw, big), qt.Equals, ErrMessageTooLarge)
}

func TestPublishEnforcesRateLimit(t *testing.T) {
	c := qt.New(t)
	b := NewInMemoryBroker()
	id, _ := b.Join(1)

	for i := 0; i < MaxMessageRate; i++ {
		c.Assert(b.Publish(1, id, EventNextRound, nil), qt.IsNil)
	}
	c.Assert(b.Publish(1, id, EventNextRound, nil), qt.Equals, ErrRateLimited)
}

func TestHistoryIsBoundedAndOrdered(t *testing.T) {
	c := qt.New(t)
	b := NewInMemoryBroker()
	id, _ := b.Join(1)

	for i := 0; i < MaxEventLog+10; i++ {
		// Publish is rate-limited per client per second and no way to bypass
		// the limiter is exposed, so each event is published by a freshly
		// joined client with its own limiter.
		_ = id
		clientID, _ := b.Join(1)
		c.Assert(b.Publish(1, clientID, EventStateSnapshot, nil), qt.IsNil)
	}

	hist := b.History(1)
	c.Assert(len(hist), qt.Equals, MaxEventLog)
	c.Assert(hist[len(hist)-1].Seq > hist[0].Seq, qt.IsTrue)
}

func TestLeaveClosesChannelAndStopsDelivery(t *testing.T) {
	c := qt.New(t)
	b := NewInMemoryBroker()
	id1, _ := b.Join(1)
	id2, ch2 := b.Join(1)

	b.Leave(1, id2)
	c.Assert(b.Publish(1, id1, EventDraw, nil), qt.IsNil)

	_, ok := <-ch2
	c.Assert(ok, qt.IsFalse)
}

func TestPublishFromUnknownClientFails(t *testing.T) {
	c := qt.New(t)
	b := NewInMemoryBroker()

	b.Join(1) // establish the room
	ghost, _ := b.Join(2)
	c.Assert(b.Publish(1, ghost, EventDraw, nil), qt.Equals, ErrUnknownClient)
}
