package in

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"lootledger/internal/modules/metrics/dto"
	metricsin "lootledger/internal/modules/metrics/port/in"
)

const writeWait = 5 * time.Second

// FeedMessage is one frame of the live feed. Exactly one of Metrics and
// Error is set.
type FeedMessage struct {
	Type    string       `json:"type"`
	Metrics *dto.Metrics `json:"metrics,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// WebsocketFeed pushes metrics of one session to display overlays at a
// fixed interval.
type WebsocketFeed struct {
	usecase  metricsin.Usecase
	interval time.Duration
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewWebsocketFeed(usecase metricsin.Usecase, interval time.Duration, logger *slog.Logger) *WebsocketFeed {
	if interval <= 0 {
		interval = time.Second
	}
	return &WebsocketFeed{
		usecase:  usecase,
		interval: interval,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     isLoopbackOrigin,
		},
	}
}

// Routes serves the feed on /feed and a one-shot JSON view on /metrics.
// Both take ?identity=Name-Realm or ?session=<id>.
func (f *WebsocketFeed) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/feed", f.handleFeed)
	mux.HandleFunc("/metrics", f.handleOnce)
	return mux
}

func (f *WebsocketFeed) handleOnce(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !isLoopbackRemote(r.RemoteAddr) {
		http.Error(rw, "forbidden", http.StatusForbidden)
		return
	}
	msg := f.frame(r.Context(), input(r))
	rw.Header().Set("Content-Type", "application/json")
	if msg.Error != "" {
		rw.WriteHeader(http.StatusNotFound)
	}
	_ = json.NewEncoder(rw).Encode(msg)
}

func (f *WebsocketFeed) handleFeed(rw http.ResponseWriter, r *http.Request) {
	if !isLoopbackRemote(r.RemoteAddr) {
		http.Error(rw, "forbidden", http.StatusForbidden)
		return
	}
	in := input(r)
	conn, err := f.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The reader only watches for the client going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	f.logger.Info("feed client connected", "remote", r.RemoteAddr, "identity", in.Identity, "session", in.SessionID)
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	for {
		payload, err := json.Marshal(f.frame(ctx, in))
		if err != nil {
			f.logger.Error("encode feed frame", "error", err)
			return
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			f.logger.Debug("feed client gone", "remote", r.RemoteAddr, "error", err)
			return
		}
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
			return
		case <-ticker.C:
		}
	}
}

func (f *WebsocketFeed) frame(ctx context.Context, in dto.MetricsInput) FeedMessage {
	metrics, err := f.usecase.GetMetrics(ctx, in)
	if err != nil {
		return FeedMessage{Type: "error", Error: err.Error()}
	}
	return FeedMessage{Type: "metrics", Metrics: &metrics}
}

func input(r *http.Request) dto.MetricsInput {
	q := r.URL.Query()
	return dto.MetricsInput{Identity: q.Get("identity"), SessionID: q.Get("session")}
}

func isLoopbackRemote(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// isLoopbackOrigin admits clients that send no Origin (overlay tools, curl)
// and pages served from this machine. Any other site is refused so a page
// open in a browser cannot read the feed.
func isLoopbackOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	host := u.Hostname()
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
