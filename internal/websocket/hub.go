package websocket

import "github.com/rs/zerolog/log"

type publication struct {
	topic   string
	message []byte
}

// Hub maintains the set of active clients and broadcasts messages to them.
// All maps are owned by the Run goroutine.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// A map of topics to the set of clients subscribed to it.
	subscriptions map[string]map[*Client]bool

	publish chan publication
	done    chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
		publish:       make(chan publication, 64),
		done:          make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for client := range h.clients {
				h.drop(client)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
			if h.subscriptions[client.Topic] == nil {
				h.subscriptions[client.Topic] = make(map[*Client]bool)
			}
			h.subscriptions[client.Topic][client] = true
			log.Info().Int("total_clients", len(h.clients)).Str("username", client.Username).Msg("Client connected")
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case pub := <-h.publish:
			for client := range h.subscriptions[pub.topic] {
				select {
				case client.Send <- pub.message:
				default:
					h.drop(client)
				}
			}
		}
	}
}

// Stop terminates Run and closes every client send channel.
func (h *Hub) Stop() {
	close(h.done)
}

// Register adds client to the hub. It reports false when the hub has been
// stopped, in which case the client is never tracked.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes client and closes its send channel. Unknown clients and
// a stopped hub are ignored.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// BroadcastTo queues a message for all clients subscribed to topic. It never
// blocks the caller; messages are dropped when the queue is full.
func (h *Hub) BroadcastTo(topic string, message []byte) {
	if message == nil {
		return
	}
	select {
	case h.publish <- publication{topic: topic, message: message}:
	default:
		log.Warn().Str("topic", topic).Msg("Websocket publish queue full, dropping message")
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.Send)
	if subs, ok := h.subscriptions[client.Topic]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.subscriptions, client.Topic)
		}
	}
}
