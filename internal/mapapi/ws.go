package mapapi

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/terramesa/uplinkmap/internal/hierarchy"
	"github.com/terramesa/uplinkmap/internal/visibility"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientMessage is the incoming WebSocket message format.
type clientMessage struct {
	Type    string `json:"type"`    // "toggle" or "reset"
	Kind    string `json:"kind"`    // toggle: node kind
	ID      string `json:"id"`      // toggle: node id
	Enabled *bool  `json:"enabled"` // toggle: desired flag
}

// visibilityPush is the outgoing state message. Every change, whether
// it arrived over the socket or a POST route, produces one push to all
// connected clients.
type visibilityPush struct {
	Type       string            `json:"type"` // always "visibility"
	Flags      visibility.Flags  `json:"flags"`
	Visibility visibility.Result `json:"visibility"`
}

// errorPush reports a rejected client message.
type errorPush struct {
	Type  string `json:"type"` // always "error"
	Error string `json:"error"`
}

func (a *API) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("mapapi: websocket upgrade: %v", err)
		return
	}
	a.hub.add(conn)
	defer func() {
		a.hub.remove(conn)
		conn.Close()
	}()

	// New clients start from the current state.
	if err := a.hub.send(conn, a.currentPush()); err != nil {
		log.Printf("mapapi: websocket write: %v", err)
		return
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("mapapi: websocket read: %v", err)
			}
			return
		}

		var req clientMessage
		if err := json.Unmarshal(msg, &req); err != nil {
			a.sendError(conn, "invalid message format")
			continue
		}

		switch req.Type {
		case "toggle":
			a.handleToggleMessage(conn, req)
		case "reset":
			a.broadcastState(a.state.Reset())
		default:
			a.sendError(conn, "unknown message type: "+req.Type)
		}
	}
}

func (a *API) handleToggleMessage(conn *websocket.Conn, req clientMessage) {
	kind, ok := hierarchy.ParseKind(req.Kind)
	if !ok {
		a.sendError(conn, "unknown kind: "+req.Kind)
		return
	}
	if req.ID == "" {
		a.sendError(conn, "id is required")
		return
	}
	if req.Enabled == nil {
		a.sendError(conn, "enabled is required")
		return
	}

	res, ok := a.state.SetEnabled(kind, req.ID, *req.Enabled)
	if !ok {
		a.sendError(conn, "unknown node: "+req.Kind+"/"+req.ID)
		return
	}
	a.broadcastState(res)
}

// broadcastState pushes the flag set and the given line visibility to
// every connected client. The state lock is already released by the
// time this runs.
func (a *API) broadcastState(res visibility.Result) {
	a.hub.broadcast(visibilityPush{
		Type:       "visibility",
		Flags:      a.state.Flags(),
		Visibility: res,
	})
}

func (a *API) currentPush() visibilityPush {
	return visibilityPush{
		Type:       "visibility",
		Flags:      a.state.Flags(),
		Visibility: a.state.Visibility(),
	}
}

func (a *API) sendError(conn *websocket.Conn, message string) {
	if err := a.hub.send(conn, errorPush{Type: "error", Error: message}); err != nil {
		log.Printf("mapapi: websocket write error: %v", err)
	}
}

// hub tracks connected map clients. Its lock also serializes every
// write, which gorilla connections require.
type hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

func newHub() *hub {
	return &hub{conns: make(map[*websocket.Conn]bool)}
}

func (h *hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = true
}

func (h *hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
}

// send writes one message to one client.
func (h *hub) send(conn *websocket.Conn, v interface{}) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return conn.WriteJSON(v)
}

// broadcast writes a message to every client, dropping the ones whose
// write fails.
func (h *hub) broadcast(v interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteJSON(v); err != nil {
			log.Printf("mapapi: websocket write: %v", err)
			conn.Close()
			delete(h.conns, conn)
		}
	}
}
