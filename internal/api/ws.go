package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/nikolliervin/code-unc/internal/diff"
	"github.com/nikolliervin/code-unc/internal/model"
	"github.com/nikolliervin/code-unc/internal/review"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024 * 64,
	WriteBufferSize: 1024 * 64,
	CheckOrigin: func(r *http.Request) bool {
		return true // local dev server; restrict before exposing
	},
}

// WebSocket message types from client.
const (
	wsMsgLoadDiff  = "load_diff"
	wsMsgNormalize = "normalize"
	wsMsgFinish    = "finish"
)

// WebSocket message types to client.
const (
	wsMsgParsed = "parsed"
	wsMsgIssues = "issues"
	wsMsgDone   = "done"
	wsMsgError  = "error"
)

// wsMessage is the envelope for WebSocket messages in both directions.
type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type wsLoadDiff struct {
	Diff string `json:"diff"`
}

type wsNormalize struct {
	Content string `json:"content"`
}

type wsIssuesResponse struct {
	Status  string        `json:"status"`
	Issues  []model.Issue `json:"issues"`
	Summary string        `json:"summary,omitempty"`
}

type wsDoneResponse struct {
	Issues   int `json:"issues"`
	Blocking int `json:"blocking"`
}

// wsSession holds per-connection state: the loaded diff and the issues
// normalized against it so far.
type wsSession struct {
	ds     *diff.DiffSet
	issues []model.Issue
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	session := &wsSession{}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read: %v", err)
			}
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			sendWSError(conn, "invalid message format")
			continue
		}

		switch msg.Type {
		case wsMsgLoadDiff:
			handleWSLoadDiff(conn, session, msg.Data)
		case wsMsgNormalize:
			handleWSNormalize(conn, session, msg.Data)
		case wsMsgFinish:
			handleWSFinish(conn, session)
		default:
			sendWSError(conn, "unknown message type: "+msg.Type)
		}
	}
}

func handleWSLoadDiff(conn *websocket.Conn, session *wsSession, data json.RawMessage) {
	var req wsLoadDiff
	if err := json.Unmarshal(data, &req); err != nil {
		sendWSError(conn, "invalid load_diff data")
		return
	}

	ds, err := diff.Parse(req.Diff)
	if err != nil {
		sendWSError(conn, "parsing diff: "+err.Error())
		return
	}

	session.ds = ds
	session.issues = nil

	sendWSMessage(conn, wsMsgParsed, parseResponse{
		Files: fileJSONs(ds),
		Stats: statsJSON(ds),
	})
}

func handleWSNormalize(conn *websocket.Conn, session *wsSession, data json.RawMessage) {
	if session.ds == nil {
		sendWSError(conn, "no diff loaded")
		return
	}

	var req wsNormalize
	if err := json.Unmarshal(data, &req); err != nil {
		sendWSError(conn, "invalid normalize data")
		return
	}

	n := review.Normalize(req.Content)
	review.NewReconciler(session.ds, review.DefaultInferencePolicy()).Reconcile(n.Issues)
	session.issues = append(session.issues, n.Issues...)

	sendWSMessage(conn, wsMsgIssues, wsIssuesResponse{
		Status:  string(n.Status),
		Issues:  n.Issues,
		Summary: n.Summary,
	})
}

func handleWSFinish(conn *websocket.Conn, session *wsSession) {
	if session.ds == nil {
		sendWSError(conn, "no diff loaded")
		return
	}

	blocking := 0
	for _, is := range session.issues {
		if is.Blocking() {
			blocking++
		}
	}

	sendWSMessage(conn, wsMsgDone, wsDoneResponse{
		Issues:   len(session.issues),
		Blocking: blocking,
	})
}

func sendWSMessage(conn *websocket.Conn, msgType string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("websocket marshal: %v", err)
		return
	}
	if err := conn.WriteJSON(wsMessage{Type: msgType, Data: payload}); err != nil {
		log.Printf("websocket write: %v", err)
	}
}

func sendWSError(conn *websocket.Conn, msg string) {
	sendWSMessage(conn, wsMsgError, map[string]string{"error": msg})
}
