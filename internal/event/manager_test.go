package event

import (
	"testing"
	"time"
)

func TestEmitEventDeliversInOrder(t *testing.T) {
	received := make(chan interface{}, 8)
	AddEventListener(AssetMintedEvent, func(msg interface{}) {
		received <- msg
	})

	EmitEvent(AssetMintedEvent, 1)
	EmitEvent(AssetMintedEvent, 2)
	EmitEvent(AssetMintedEvent, 3)

	for want := 1; want <= 3; want++ {
		select {
		case msg := <-received:
			if msg != want {
				t.Errorf("received %v, want %d", msg, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d", want)
		}
	}
}

func TestEmitEventIgnoresOtherTypes(t *testing.T) {
	received := make(chan interface{}, 1)
	AddEventListener(ListingBoughtEvent, func(msg interface{}) {
		received <- msg
	})

	EmitEvent(ListingOfferedEvent, "offered")

	select {
	case msg := <-received:
		t.Errorf("listener for another type received %v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}
