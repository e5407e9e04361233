package api

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

func dialWS(t *testing.T) *websocket.Conn {
	t.Helper()
	srv := newTestServer(t, nil)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendWS(t *testing.T, conn *websocket.Conn, msgType string, data any) {
	t.Helper()
	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteJSON(wsMessage{Type: msgType, Data: payload}); err != nil {
		t.Fatalf("writing %s: %v", msgType, err)
	}
}

func readWS(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	var msg wsMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("reading message: %v", err)
	}
	return msg
}

func TestWebSocketSession(t *testing.T) {
	conn := dialWS(t)

	sendWS(t, conn, wsMsgLoadDiff, wsLoadDiff{Diff: testDiff})
	msg := readWS(t, conn)
	if msg.Type != wsMsgParsed {
		t.Fatalf("type = %q, want parsed", msg.Type)
	}
	var parsed parseResponse
	if err := json.Unmarshal(msg.Data, &parsed); err != nil {
		t.Fatal(err)
	}
	if len(parsed.Files) != 1 || parsed.Files[0].Name != "main.go" {
		t.Fatalf("parsed files = %+v", parsed.Files)
	}

	content := `{"issues": [{"title": "Broken build", "severity": "critical", "file": "main.go", "line": 2}]}`
	sendWS(t, conn, wsMsgNormalize, wsNormalize{Content: content})
	msg = readWS(t, conn)
	if msg.Type != wsMsgIssues {
		t.Fatalf("type = %q, want issues", msg.Type)
	}
	var issues wsIssuesResponse
	if err := json.Unmarshal(msg.Data, &issues); err != nil {
		t.Fatal(err)
	}
	if len(issues.Issues) != 1 || issues.Issues[0].Title != "Broken build" {
		t.Fatalf("issues = %+v", issues.Issues)
	}

	sendWS(t, conn, wsMsgFinish, nil)
	msg = readWS(t, conn)
	if msg.Type != wsMsgDone {
		t.Fatalf("type = %q, want done", msg.Type)
	}
	var done wsDoneResponse
	if err := json.Unmarshal(msg.Data, &done); err != nil {
		t.Fatal(err)
	}
	if done.Issues != 1 || done.Blocking != 1 {
		t.Errorf("done = %+v, want 1 issue, 1 blocking", done)
	}
}

func TestWebSocketNormalizeBeforeLoad(t *testing.T) {
	conn := dialWS(t)

	sendWS(t, conn, wsMsgNormalize, wsNormalize{Content: "{}"})
	msg := readWS(t, conn)
	if msg.Type != wsMsgError {
		t.Errorf("type = %q, want error before a diff is loaded", msg.Type)
	}
}

func TestWebSocketUnknownType(t *testing.T) {
	conn := dialWS(t)

	sendWS(t, conn, "bogus", nil)
	msg := readWS(t, conn)
	if msg.Type != wsMsgError {
		t.Errorf("type = %q, want error", msg.Type)
	}
}
