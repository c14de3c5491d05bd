package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"civicfix-be/middlewares"
	"civicfix-be/realtime"
	"civicfix-be/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// origin is enforced by the CORS layer; cookies carry the auth token
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamIssues streams issue change events to the caller over a websocket.
// Every event is re-checked against the caller's scope before it is
// written: change-feed delivery is not scope-aware on its own. Delete and
// resync events pass through regardless (an id leaks no scoped content,
// and a resync forces the client back to the scoped list query).
func StreamIssues(hub *realtime.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope := services.ScopeFor(middlewares.RoleFromContext(c))

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Println("Websocket upgrade failed:", err)
			return
		}
		defer conn.Close()

		sub := hub.Subscribe()
		defer sub.Unsubscribe()

		// drain client frames so close/ping handling works, and unsubscribe
		// the moment the peer goes away
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-done:
				return
			case event, ok := <-sub.Events():
				if !ok {
					return
				}
				switch event.Operation {
				case realtime.OpInsert, realtime.OpUpdate:
					if !scope.Allows(event.Issue) {
						continue
					}
				}
				if err := conn.WriteJSON(event); err != nil {
					return
				}
			}
		}
	}
}
