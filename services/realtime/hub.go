package realtime

import (
	"fmt"
	"sync"

	"github.com/WeSplit-io/WeSplit-Backend/services/monitoring/logging"
	"github.com/WeSplit-io/WeSplit-Backend/services/monitoring/metrics"
)

// Topics follow a "<kind>:<id>" convention. Every connection sits on its
// own user feed from registration; wallet feeds are joined on request once
// the authorizer approves membership.
const (
	walletTopicPrefix = "wallet:"
	userTopicPrefix   = "user:"
)

// WalletTopic names the feed that carries one shared wallet's events.
func WalletTopic(walletID string) string { return walletTopicPrefix + walletID }

// UserTopic names a user's private feed (notifications, guard outcomes).
func UserTopic(userID int64) string { return fmt.Sprintf("%s%d", userTopicPrefix, userID) }

// AuthorizeFunc decides whether a user may join a wallet feed. It runs on
// the connection's read goroutine, so it is allowed to hit the database.
type AuthorizeFunc func(userID int64, walletID string) bool

type envelope struct {
	topic   string
	payload []byte
}

type subscription struct {
	client *Client
	topic  string
	join   bool
}

// Hub fans wallet and user events out to connected websocket clients.
// All maps are owned by the Run goroutine; everything else talks to it
// through channels.
type Hub struct {
	logger    *logging.Logger
	authorize AuthorizeFunc

	clients map[*Client]bool
	topics  map[string]map[*Client]bool

	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	subscribe  chan subscription

	quit     chan struct{}
	stopOnce sync.Once
}

func NewHub(logger *logging.Logger, authorize AuthorizeFunc) *Hub {
	return &Hub{
		logger:     logger,
		authorize:  authorize,
		clients:    make(map[*Client]bool),
		topics:     make(map[string]map[*Client]bool),
		broadcast:  make(chan envelope, 256),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		subscribe:  make(chan subscription, 64),
		quit:       make(chan struct{}),
	}
}

// Run owns the client and topic maps. Call it once, on its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.join(client, UserTopic(client.userID))
			client.enqueueControl("connected", UserTopic(client.userID))
			metrics.ActiveWebsocketClients.Inc()
			h.logger.Info(fmt.Sprintf("Websocket client registered for user %d (%d connected)", client.userID, len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				for topic := range client.topics {
					h.leave(client, topic)
				}
				delete(h.clients, client)
				client.shutdown()
				metrics.ActiveWebsocketClients.Dec()
				h.logger.Info(fmt.Sprintf("Websocket client unregistered for user %d (%d connected)", client.userID, len(h.clients)))
			}

		case sub := <-h.subscribe:
			if _, ok := h.clients[sub.client]; !ok {
				continue
			}
			if sub.join {
				h.join(sub.client, sub.topic)
				sub.client.enqueueControl("subscribed", sub.topic)
			} else {
				h.leave(sub.client, sub.topic)
				sub.client.enqueueControl("unsubscribed", sub.topic)
			}

		case message := <-h.broadcast:
			members := h.topics[message.topic]
			if len(members) == 0 {
				continue
			}
			for client := range members {
				if err := client.enqueue(message.payload); err != nil {
					h.logger.Error(fmt.Sprintf("Dropping websocket message for user %d on %s: %v", client.userID, message.topic, err))
				}
			}

		case <-h.quit:
			for client := range h.clients {
				client.shutdown()
			}
			return
		}
	}
}

func (h *Hub) join(c *Client, topic string) {
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*Client]bool)
	}
	h.topics[topic][c] = true
	c.topics[topic] = true
}

func (h *Hub) leave(c *Client, topic string) {
	if members, ok := h.topics[topic]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.topics, topic)
		}
	}
	delete(c.topics, topic)
}

// BroadcastToWallet pushes a payload to every member watching the wallet
// feed. It never blocks the caller; when the hub is saturated the message
// is dropped and logged.
func (h *Hub) BroadcastToWallet(walletID string, payload []byte) {
	h.publish(WalletTopic(walletID), payload)
}

// BroadcastToUser pushes a payload to every connection on the user's feed.
func (h *Hub) BroadcastToUser(userID int64, payload []byte) {
	h.publish(UserTopic(userID), payload)
}

func (h *Hub) publish(topic string, payload []byte) {
	select {
	case h.broadcast <- envelope{topic: topic, payload: payload}:
	case <-h.quit:
	default:
		h.logger.Error(fmt.Sprintf("Websocket hub saturated, dropping broadcast on %s", topic))
	}
}

// Stop shuts the hub down and disconnects every client.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}
