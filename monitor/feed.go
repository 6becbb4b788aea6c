package monitor

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"gocheckout/internal"
)

// Feed broadcasts dispatch events to connected websocket clients, for
// live operator dashboards. It implements internal.EventHandler.
type Feed struct {
	logger   internal.LogHandler
	upgrader websocket.Upgrader
	mutex    sync.Mutex
	clients  map[*websocket.Conn]bool
}

func NewFeed(logger internal.LogHandler) *Feed {
	return &Feed{
		logger:   logger,
		upgrader: websocket.Upgrader{},
		clients:  make(map[*websocket.Conn]bool),
	}
}

// Handle upgrades an HTTP request to a websocket subscription.
func (f *Feed) Handle(w http.ResponseWriter, r *http.Request) {
	f.upgrader.CheckOrigin = func(r *http.Request) bool {
		return true
	}
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Error("monitor upgrade failed", err)
		return
	}
	f.logger.Debug(fmt.Sprintf("monitor client connected from %s", r.RemoteAddr))

	f.mutex.Lock()
	f.clients[conn] = true
	f.mutex.Unlock()

	go f.reader(conn)
}

// reader discards inbound frames and drops the client when the socket
// closes.
func (f *Feed) reader(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			f.mutex.Lock()
			delete(f.clients, conn)
			f.mutex.Unlock()
			_ = conn.Close()
			return
		}
	}
}

func (f *Feed) broadcast(event *internal.EventMessage) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	for conn := range f.clients {
		if err := conn.WriteJSON(event); err != nil {
			f.logger.Warn(fmt.Sprintf("monitor send failed: %s", err))
			delete(f.clients, conn)
			_ = conn.Close()
		}
	}
}

func (f *Feed) OnNotification(event *internal.EventMessage) {
	f.broadcast(event)
}

func (f *Feed) OnRecordedFailure(event *internal.EventMessage) {
	f.broadcast(event)
}

func (f *Feed) OnCommandRejected(event *internal.EventMessage) {
	f.broadcast(event)
}
