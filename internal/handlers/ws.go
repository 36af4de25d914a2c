package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/promptstack-dev/promptstack/db"
	"github.com/promptstack-dev/promptstack/internal/services"
	"github.com/promptstack-dev/promptstack/internal/types"
	"github.com/promptstack-dev/promptstack/internal/utils"
)

var (
	promptClients   = make(map[uint]map[*websocket.Conn]bool)
	promptClientsMu sync.RWMutex
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// BroadcastActiveVersionChanged notifies every watcher of a prompt that its
// active version changed (activation, deactivation, or deletion of the
// active version).
func BroadcastActiveVersionChanged(promptID uint) {
	promptClientsMu.RLock()
	clients, exists := promptClients[promptID]
	if !exists || len(clients) == 0 {
		promptClientsMu.RUnlock()
		return
	}

	// Copy the connections so the lock is not held while writing
	clientsCopy := make([]*websocket.Conn, 0, len(clients))
	for conn := range clients {
		clientsCopy = append(clientsCopy, conn)
	}
	promptClientsMu.RUnlock()

	for _, conn := range clientsCopy {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			log.Printf("Failed to set write deadline for broadcast: %v", err)
			continue
		}

		err := conn.WriteJSON(map[string]interface{}{
			"type":      "active_version_changed",
			"prompt_id": promptID,
		})

		if err != nil {
			log.Printf("Failed to broadcast to client: %v", err)
			promptClientsMu.Lock()
			if clients, exists := promptClients[promptID]; exists {
				delete(clients, conn)
				if len(clients) == 0 {
					delete(promptClients, promptID)
				}
			}
			promptClientsMu.Unlock()
			conn.Close()
		}
	}
}

// WatchPrompt upgrades the connection and streams active-version change
// events for one prompt. The caller must own the prompt.
func WatchPrompt(c *gin.Context) {
	userID, err := utils.GetCurrentUserID(c)

	if err != nil {
		c.JSON(http.StatusUnauthorized, types.APIResponse{
			Success: false,
			Error:   &types.APIError{Message: "User not authenticated"},
		})
		return
	}

	promptID, err := utils.GetIDParam(c, "prompt_id")

	if err != nil {
		c.JSON(http.StatusBadRequest, types.APIResponse{
			Success: false,
			Error:   &types.APIError{Message: "Invalid prompt ID"},
		})
		return
	}

	if _, err := services.GetPrompt(db.DB, userID, promptID); err != nil {
		utils.RespondError(c, err)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range types.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Failed to set initial read deadline: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline in pong handler: %v", err)
		}
		return nil
	})

	promptClientsMu.Lock()
	if promptClients[promptID] == nil {
		promptClients[promptID] = make(map[*websocket.Conn]bool)
	}
	promptClients[promptID][conn] = true
	promptClientsMu.Unlock()

	defer func() {
		promptClientsMu.Lock()

		if clients, exists := promptClients[promptID]; exists {
			delete(clients, conn)

			if len(clients) == 0 {
				delete(promptClients, promptID)
			}
		}

		promptClientsMu.Unlock()
		conn.Close()

		log.Printf("WebSocket connection closed for prompt %d", promptID)
	}()

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		log.Printf("Failed to set write deadline for welcome message: %v", err)
		return
	}

	err = conn.WriteJSON(map[string]interface{}{
		"type":      "connected",
		"prompt_id": promptID,
	})

	if err != nil {
		log.Printf("Failed to send welcome message: %v", err)
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	go func() {
		for range ticker.C {
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Printf("Failed to set write deadline for prompt %d: %v", promptID, err)
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("Ping failed for prompt %d: %v", promptID, err)
				return
			}
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline for prompt %d: %v", promptID, err)
			break
		}

		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for prompt %d: %v", promptID, err)
			}
			break
		}
	}
}
