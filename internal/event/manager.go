package event

import (
	"go.uber.org/zap"
)

var listeners = make([]*Listener, 0)

type Listener struct {
	eventType Type
	channel   chan interface{}
}

// AddEventListener registers a callback for an event type. Callbacks run on
// their own goroutine, one at a time per listener, in delivery order.
func AddEventListener(eventType Type, callback func(msg interface{})) {
	zap.L().With(zap.String("type", string(eventType))).Debug("EventManager: AddListener")

	listener := Listener{
		eventType: eventType,
		channel:   make(chan interface{}, 16),
	}

	listeners = append(listeners, &listener)

	go func() {
		for msg := range listener.channel {
			callback(msg)
		}
	}()
}

func EmitEvent(eventType Type, msg interface{}) {
	delivered := 0
	for _, listener := range listeners {
		if listener.eventType == eventType {
			listener.channel <- msg
			delivered++
		}
	}

	if delivered == 0 {
		zap.L().With(zap.String("type", string(eventType))).Debug("EventManager: No listeners for event")
	}
}
