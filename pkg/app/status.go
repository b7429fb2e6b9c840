package app

import (
	"sync"

	"github.com/womat/debug"

	"triggertest/pkg/mqtt"
	"triggertest/pkg/port"
	"triggertest/pkg/trigger"
)

// statusHub receives the state transitions on the loop goroutine, keeps the
// status line for the web api and pushes it to mqtt.
type statusHub struct {
	sync.RWMutex
	text string

	// kind is the port kind label of the metrics
	kind  string
	topic string
	mqtt  *mqtt.Handler
}

func newStatusHub(kind, topic string, m *mqtt.Handler) *statusHub {
	return &statusHub{
		text:  trigger.StatusText(trigger.Event{Type: trigger.Ready}),
		kind:  kind,
		topic: topic,
		mqtt:  m,
	}
}

// Report implements trigger.Reporter.
func (h *statusHub) Report(e trigger.Event) {
	s := trigger.StatusText(e)

	h.Lock()
	h.text = s
	h.Unlock()

	switch {
	case e.Type == trigger.Failed && port.IsDisconnect(e.Err):
		debug.ErrorLog.Printf("status: %s (trigger port disconnected)", s)
	case e.Type == trigger.Failed:
		debug.ErrorLog.Printf("status: %s", s)
	default:
		debug.DebugLog.Printf("status: %s", s)
	}
	observe(e, h.kind)

	if h.mqtt != nil && h.topic != "" {
		h.mqtt.Publish(mqtt.Message{Topic: h.topic, Payload: []byte(s), Retained: true})
	}
}

// Text returns the current status line.
func (h *statusHub) Text() string {
	h.RLock()
	defer h.RUnlock()
	return h.text
}
