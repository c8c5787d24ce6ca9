package v1

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mygeone2/quotes-fake-api/internal/core/port"
	"github.com/mygeone2/quotes-fake-api/internal/utils"
)

const streamWriteTimeout = 5 * time.Second

type StreamHandler struct {
	quoteService    port.QuoteService
	defaultInterval time.Duration
	upgrader        websocket.Upgrader
}

func NewStreamHandler(quoteService port.QuoteService, defaultInterval time.Duration) *StreamHandler {
	return &StreamHandler{
		quoteService:    quoteService,
		defaultInterval: defaultInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// StreamQuotes handles GET /v1/quote/stream?interval={duration}
// It pushes one quote immediately and then one per interval.
func (h *StreamHandler) StreamQuotes(w http.ResponseWriter, r *http.Request) {
	interval := h.defaultInterval
	if raw := r.URL.Query().Get("interval"); raw != "" {
		d, err := utils.ParsePeriod(raw)
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		interval = d
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		slog.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Reader: the client never sends data, but a read error means it left
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	slog.Info("Quote stream opened", "remote", r.RemoteAddr, "interval", utils.FormatPeriod(interval))
	defer slog.Info("Quote stream closed", "remote", r.RemoteAddr)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := h.push(ctx, conn); err != nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (h *StreamHandler) push(ctx context.Context, conn *websocket.Conn) error {
	var payload interface{}
	quote, err := h.quoteService.GetLatestQuote(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		payload = ErrorResponse{Error: err.Error()}
	} else {
		payload = quote
	}

	conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	return conn.WriteJSON(payload)
}
