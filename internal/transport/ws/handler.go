package ws

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"nhooyr.io/websocket"

	"github.com/commune-hq/commune/internal/session"
)

// ServeWS returns an HTTP handler that upgrades to WebSocket. Auth uses the
// same session cookie as the REST API.
func ServeWS(hub *Hub, sessions *session.Manager, checker AdminChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(session.CookieName)
		if err != nil {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}

		sess, err := sessions.Get(r.Context(), cookie.Value)
		if err != nil {
			http.Error(w, "something went wrong", http.StatusInternalServerError)
			return
		}
		if sess == nil {
			http.Error(w, "invalid or expired session", http.StatusUnauthorized)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true, // same-origin enforcement is left to the proxy
		})
		if err != nil {
			logrus.WithError(err).Debug("ws: accept error")
			return
		}

		client := NewClient(hub, conn, sess.UserID, checker)
		hub.register <- client

		go client.WritePump()
		go client.ReadPump()
	}
}
