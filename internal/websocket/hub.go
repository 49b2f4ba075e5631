package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"legal-qa-be/internal/dto"
	"legal-qa-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "cluster_events"

// Hub fans completed answers out to the websocket clients watching a
// workspace. Redis pub/sub carries the same payloads across instances so a
// client connected elsewhere still receives the result.
type Hub struct {
	// WorkspaceID -> connected clients (multi-tab, multi-user)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.WorkspaceID] = append(h.clients[client.WorkspaceID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"workspace_id": client.WorkspaceID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.WorkspaceID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.WorkspaceID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.WorkspaceID]) == 0 {
					delete(h.clients, client.WorkspaceID)
					h.logger.Info("Hub", "Workspace fully unregistered", map[string]interface{}{"workspace_id": client.WorkspaceID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// NotifyResult pushes a finished QA result to every client of the workspace,
// locally and through the cluster channel.
func (h *Hub) NotifyResult(workspaceID uuid.UUID, result dto.QAResult) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "qa_result",
		"data": result,
	})

	h.mu.RLock()
	clients, localFound := h.clients[workspaceID]
	h.mu.RUnlock()

	if localFound {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				h.logger.Warn("Hub", "Client send buffer full, dropping message", map[string]interface{}{"workspace_id": workspaceID})
				close(client.Send)
				h.unregister <- client
			}
		}
	}

	// Other instances may hold clients for this workspace
	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_workspace_id": workspaceID.String(),
			"message":             data,
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), clusterChannel, jsonPayload)
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			TargetWorkspaceID string          `json:"target_workspace_id"`
			Message           json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		wid, err := uuid.Parse(payload.TargetWorkspaceID)
		if err != nil {
			continue
		}

		h.mu.RLock()
		clients, ok := h.clients[wid]
		h.mu.RUnlock()

		if ok {
			for _, client := range clients {
				select {
				case client.Send <- payload.Message:
				default:
					close(client.Send)
					h.unregister <- client
				}
			}
		}
	}
}
