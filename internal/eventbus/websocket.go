// SPDX-License-Identifier: MIT
package eventbus

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"sdrwatch/internal/log"
)

// eventEnvelope and spectrumEnvelope tag each message with its kind so a
// client reading a single /ws stream can dispatch on "type" without
// guessing from the payload shape.
type eventEnvelope struct {
	Type string `json:"type"`
	Event
}

type spectrumEnvelope struct {
	Type string `json:"type"`
	Spectrum
}

// WebSocketBus implements Bus over a websocket server: every connected
// client receives every published event and spectrum slice as JSON.
type WebSocketBus struct {
	addr       string
	upgrader   websocket.Upgrader
	clientsMu  sync.Mutex
	clients    map[*websocket.Conn]bool
	eventCh    chan Event
	spectrumCh chan Spectrum
	server     *http.Server
}

// NewWebSocketBus starts an HTTP server on addr serving a /ws upgrade
// endpoint and begins broadcasting published messages to all connected
// clients.
func NewWebSocketBus(addr string) *WebSocketBus {
	b := &WebSocketBus{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients:    make(map[*websocket.Conn]bool),
		eventCh:    make(chan Event, 256),
		spectrumCh: make(chan Spectrum, 256),
	}
	b.start()
	return b
}

func (b *WebSocketBus) start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", b.handleUpgrade)
	b.server = &http.Server{Addr: b.addr, Handler: mux}

	go func() {
		log.Infof("eventbus: listening on %s", b.addr)
		if err := b.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("eventbus: server error: %v", err)
		}
	}()
	go b.drainBroadcasts()
}

func (b *WebSocketBus) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("eventbus: upgrade: %v", err)
		return
	}

	b.clientsMu.Lock()
	b.clients[conn] = true
	b.clientsMu.Unlock()

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				b.clientsMu.Lock()
				delete(b.clients, conn)
				b.clientsMu.Unlock()
				conn.Close()
				return
			}
		}
	}()
}

func (b *WebSocketBus) drainBroadcasts() {
	for {
		select {
		case e, ok := <-b.eventCh:
			if !ok {
				return
			}
			b.writeAll(eventEnvelope{Type: "event", Event: e})
		case s, ok := <-b.spectrumCh:
			if !ok {
				return
			}
			b.writeAll(spectrumEnvelope{Type: "spectrum", Spectrum: s})
		}
	}
}

func (b *WebSocketBus) writeAll(msg any) {
	b.clientsMu.Lock()
	defer b.clientsMu.Unlock()
	for client := range b.clients {
		if err := client.WriteJSON(msg); err != nil {
			client.Close()
			delete(b.clients, client)
		}
	}
}

func (b *WebSocketBus) PublishEvent(e Event) error {
	select {
	case b.eventCh <- e:
	default: // slow/no subscribers; drop rather than block the worker
	}
	return nil
}

func (b *WebSocketBus) PublishSpectrum(s Spectrum) error {
	select {
	case b.spectrumCh <- s:
	default:
	}
	return nil
}

func (b *WebSocketBus) Close() error {
	b.clientsMu.Lock()
	for client := range b.clients {
		client.Close()
	}
	b.clients = make(map[*websocket.Conn]bool)
	b.clientsMu.Unlock()

	if b.server != nil {
		return b.server.Close()
	}
	return nil
}

var _ Bus = (*WebSocketBus)(nil)
