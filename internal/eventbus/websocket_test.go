// SPDX-License-Identifier: MIT
package eventbus

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestPublishEventNeverErrors(t *testing.T) {
	b := &WebSocketBus{eventCh: make(chan Event, 1), clients: map[*websocket.Conn]bool{}}
	if err := b.PublishEvent(Event{Kind: "hopped"}); err != nil {
		t.Fatalf("PublishEvent: %v", err)
	}
}

func TestPublishDropsWhenNoSubscribers(t *testing.T) {
	b := &WebSocketBus{eventCh: make(chan Event, 1), clients: map[*websocket.Conn]bool{}}
	// Fill the buffered channel, then publish again: the second publish
	// must drop rather than block since nothing drains the channel here.
	b.eventCh <- Event{Kind: "first"}
	done := make(chan struct{})
	go func() {
		_ = b.PublishEvent(Event{Kind: "second"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("PublishEvent blocked instead of dropping when the event channel is full")
	}
}

func TestPublishSpectrumDropsWhenNoSubscribers(t *testing.T) {
	b := &WebSocketBus{spectrumCh: make(chan Spectrum, 1), clients: map[*websocket.Conn]bool{}}
	b.spectrumCh <- Spectrum{CenterFrequencyHz: 100e6}
	done := make(chan struct{})
	go func() {
		_ = b.PublishSpectrum(Spectrum{CenterFrequencyHz: 200e6})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("PublishSpectrum blocked instead of dropping when the spectrum channel is full")
	}
}

func TestEventJSONFieldNames(t *testing.T) {
	e := Event{Kind: "hopped", Message: "Hopped to 100000000 Hz", FrequencyHz: 100e6}
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for _, field := range []string{`"kind"`, `"message"`, `"frequency_hz"`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("json %s missing field %s", data, field)
		}
	}
}
