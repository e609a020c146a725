package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"ai-tutor-be/internal/pkg/logger"
	"ai-tutor-be/pkg/tutor/session"
	"ai-tutor-be/pkg/tutor/turn"

	"github.com/redis/go-redis/v9"
)

const (
	// RedisChannel carries session frames between instances
	RedisChannel = "tutor_events"

	FrameSessionUpdate = "session_update"
	FrameAudioCue      = "audio_cue"
)

// Frame is one message written to a websocket client
type Frame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type cueData struct {
	SessionID string      `json:"session_id"`
	Bucket    turn.Bucket `json:"bucket"`
}

type redisEnvelope struct {
	SessionID string          `json:"session_id"`
	Message   json.RawMessage `json:"message"`
}

// Hub fans session updates out to every websocket watching a session.
// With Redis configured, frames go through the channel so each instance
// delivers to its own clients; without it, frames are delivered locally.
type Hub struct {
	// SessionID -> connected clients (several tabs may watch one session)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex

	rdb    *redis.Client
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"session_id": client.SessionID})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

// OnUpdate implements session.Listener
func (h *Hub) OnUpdate(update session.Update) {
	h.Send(update.SessionID, Frame{Type: FrameSessionUpdate, Data: update})
}

// Play implements session.AudioCue by asking connected clients to play the cue
func (h *Hub) Play(ctx context.Context, sessionID string, bucket turn.Bucket) error {
	return h.SendContext(ctx, sessionID, Frame{Type: FrameAudioCue, Data: cueData{SessionID: sessionID, Bucket: bucket}})
}

// Send delivers a frame to all clients of a session
func (h *Hub) Send(sessionID string, frame Frame) {
	if err := h.SendContext(context.Background(), sessionID, frame); err != nil {
		h.logger.Warn("Hub", "Failed to send frame", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
	}
}

func (h *Hub) SendContext(ctx context.Context, sessionID string, frame Frame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	if h.rdb == nil {
		h.deliver(sessionID, data)
		return nil
	}

	payload, err := json.Marshal(redisEnvelope{SessionID: sessionID, Message: data})
	if err != nil {
		return err
	}
	return h.rdb.Publish(ctx, RedisChannel, payload).Err()
}

// Connected returns the number of local clients watching a session
func (h *Hub) Connected(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

// deliver holds the read lock while sending so remove cannot close a
// channel mid-send. Sends never block.
func (h *Hub) deliver(sessionID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[sessionID] {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client Send buffer full, dropping client", map[string]interface{}{"session_id": sessionID})
			go h.leave(client)
		}
	}
}

// join hands a client to the run loop; false once the hub has stopped
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// remove drops a client and closes its Send channel exactly once
func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[client.SessionID]
	for i, c := range clients {
		if c == client {
			h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.SessionID]) == 0 {
		delete(h.clients, client.SessionID)
		h.logger.Info("Hub", "Session has no clients left", map[string]interface{}{"session_id": client.SessionID})
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, clients := range h.clients {
		for _, c := range clients {
			close(c.Send)
		}
		delete(h.clients, id)
	}
}

// subscribeToRedis delivers frames published by any instance to local clients
func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, RedisChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env redisEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				h.logger.Warn("Hub", "Redis message parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			h.deliver(env.SessionID, env.Message)
		}
	}
}
