package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/attitude_tracker/internal/config"
	"github.com/relabs-tech/attitude_tracker/internal/imu"
	"github.com/relabs-tech/attitude_tracker/internal/orientation"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsEvent is one push frame to dashboard clients.
type wsEvent struct {
	Type     string                `json:"type"` // "attitude" or "imu_raw"
	Attitude *orientation.Estimate `json:"attitude,omitempty"`
	IMURaw   *imu.RawSample        `json:"imu_raw,omitempty"`
}

// wsHub fans events out to all connected websocket clients.
type wsHub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

func newWSHub() *wsHub {
	return &wsHub{conns: make(map[*websocket.Conn]bool)}
}

func (h *wsHub) add(c *websocket.Conn) {
	h.mu.Lock()
	h.conns[c] = true
	h.mu.Unlock()
}

func (h *wsHub) remove(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
	c.Close()
}

// broadcast writes the event to every client, dropping the ones that fail.
func (h *wsHub) broadcast(ev wsEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.conns {
		if err := c.WriteJSON(ev); err != nil {
			delete(h.conns, c)
			c.Close()
		}
	}
}

func RunWeb() error {
	cfg := config.Get()

	var (
		mu      sync.RWMutex
		lastEst orientation.Estimate
		haveEst bool
		lastRaw imu.RawSample
		haveRaw bool
	)

	hub := newWSHub()

	client := mqtt.NewClient(mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb))
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	// Each topic feeds both the last-value cache and the live push.
	attToken := client.Subscribe(cfg.TopicAttitude, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var e orientation.Estimate
		if err := json.Unmarshal(msg.Payload(), &e); err != nil {
			log.Printf("web: attitude payload rejected: %v", err)
			return
		}
		mu.Lock()
		lastEst = e
		haveEst = true
		mu.Unlock()
		hub.broadcast(wsEvent{Type: "attitude", Attitude: &e})
	})
	attToken.Wait()
	if attToken.Error() != nil {
		return attToken.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicAttitude)

	rawToken := client.Subscribe(cfg.TopicIMURaw, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s imu.RawSample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("web: imu_raw payload rejected: %v", err)
			return
		}
		mu.Lock()
		lastRaw = s
		haveRaw = true
		mu.Unlock()
		hub.broadcast(wsEvent{Type: "imu_raw", IMURaw: &s})
	})
	rawToken.Wait()
	if rawToken.Error() != nil {
		return rawToken.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicIMURaw)

	// serveLatest renders whatever the cache holds, or 503 before the
	// first sample of that kind arrives.
	serveLatest := func(read func() (interface{}, bool)) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			v, ok := read()
			if !ok {
				http.Error(w, "no data yet", http.StatusServiceUnavailable)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(v); err != nil {
				log.Printf("web: json encode error: %v", err)
			}
		}
	}

	http.HandleFunc("/api/orientation", serveLatest(func() (interface{}, bool) {
		mu.RLock()
		defer mu.RUnlock()
		return lastEst, haveEst
	}))

	http.HandleFunc("/api/imu", serveLatest(func() (interface{}, bool) {
		mu.RLock()
		defer mu.RUnlock()
		return lastRaw, haveRaw
	}))

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("web: websocket upgrade error: %v", err)
			return
		}
		hub.add(conn)
		defer hub.remove(conn)

		// The stream is one-way; reading only surfaces the close.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	// Dashboard assets ship alongside the binary under ./web.
	http.Handle("/", http.FileServer(http.Dir("web")))

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}
