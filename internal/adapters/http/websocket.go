package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/usecases"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/pkg/metrics"
)

// wsMessage is sent from client to drive live search or manage
// commute subscriptions.
type wsMessage struct {
	Action   string `json:"action"`   // "search" | "subscribe" | "unsubscribe"
	Input    string `json:"input"`    // search input as typed (action=search)
	User     string `json:"user"`     // user ID for recording settled searches
	Channel  string `json:"channel"`  // "commutes" | "broadcast" (default: commutes)
	Property string `json:"property"` // property ID filter ("" = all properties)
}

// WebSocketHandler upgrades to WebSocket and serves two live channels:
// debounced search (client streams keystrokes, server streams
// pending/cleared/settled events) and commute snapshot relay from NATS.
// Clients send JSON like {"action":"search","input":"Canary Wh","user":"u1"}
// or {"action":"subscribe","channel":"commutes","property":"<id>"}.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // subject -> subscription

		// Helper: thread-safe write
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		// One debounced search controller per connection. Settled outcomes
		// are recorded to search history when the client supplied a user.
		controller := usecases.NewSearchController(deps.Resolver, deps.Debounce)
		defer controller.Close()

		var searchUser string
		go func() {
			for ev := range controller.Events() {
				_ = writeJSON(map[string]interface{}{
					"type":  "search",
					"event": ev,
				})
				mu.Lock()
				user := searchUser
				mu.Unlock()
				if ev.Kind == usecases.SearchSettled && user != "" && deps.History != nil {
					_, _ = deps.History.Record(context.Background(), user, ev.Outcome)
				}
			}
		}()

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		// Read client messages
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			if m.Action == "search" {
				if m.User != "" {
					mu.Lock()
					searchUser = m.User
					mu.Unlock()
				}
				controller.OnInputChanged(m.Input)
				continue
			}

			// Build NATS subject for subscribe/unsubscribe
			channel := m.Channel
			if channel == "" {
				channel = "commutes"
			}

			var subject string
			switch channel {
			case "commutes":
				if m.Property != "" {
					subject = "ijar.commute." + m.Property
				} else {
					subject = "ijar.commute.>"
				}
			case "broadcast":
				subject = "ijar.updates.broadcast"
			default:
				_ = writeJSON(map[string]string{"error": "unknown channel: " + channel})
				continue
			}

			switch m.Action {
			case "subscribe":
				if deps.NATS == nil {
					_ = writeJSON(map[string]string{"error": "live updates not available"})
					continue
				}
				if _, exists := subs[subject]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				s, err := deps.NATS.Subscribe(subject, func(msg *nats.Msg) {
					_ = writeJSON(json.RawMessage(msg.Data))
				})
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[subject] = s
				_ = writeJSON(map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		// Cleanup
		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}
