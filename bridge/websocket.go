package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"walletbridge/channel"
)

// WebConfig configures the websocket server.
type WebConfig struct {
	Addr string `mapstructure:"addr"`
	// Origins allowed to open a socket. Empty allows same-origin only.
	Origins []string `mapstructure:"origins"`
}

// WebServer serves the envelope over websockets at /ws, alongside
// /metrics and /healthz.
type WebServer struct {
	reg      *channel.Registry
	log      *zap.Logger
	upgrader websocket.Upgrader
	mux      *http.ServeMux
	srv      *http.Server

	ctx    context.Context
	cancel context.CancelFunc
}

// NewWebServer builds the HTTP handler. gatherer backs /metrics; nil
// leaves the endpoint out.
func NewWebServer(reg *channel.Registry, cfg WebConfig, gatherer prometheus.Gatherer, log *zap.Logger) *WebServer {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &WebServer{
		reg:    reg,
		log:    log,
		mux:    http.NewServeMux(),
		ctx:    ctx,
		cancel: cancel,
	}
	if len(cfg.Origins) > 0 {
		w.upgrader.CheckOrigin = func(r *http.Request) bool {
			return slices.Contains(cfg.Origins, r.Header.Get("Origin"))
		}
	}

	w.mux.HandleFunc("/ws", w.serveWS)
	w.mux.HandleFunc("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(map[string]any{"status": "ok", "channels": reg.Channels()})
	})
	if gatherer != nil {
		w.mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	w.srv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           w.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return w
}

// Handler returns the HTTP handler.
func (w *WebServer) Handler() http.Handler { return w.mux }

// ListenAndServe serves until Shutdown.
func (w *WebServer) ListenAndServe() error {
	w.log.Info("websocket listening", zap.String("addr", w.srv.Addr))
	if err := w.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return Error.Wrap(err)
	}
	return nil
}

// Shutdown stops accepting requests and closes open sockets.
func (w *WebServer) Shutdown(ctx context.Context) error {
	w.cancel()
	return Error.Wrap(w.srv.Shutdown(ctx))
}

func (w *WebServer) serveWS(rw http.ResponseWriter, r *http.Request) {
	conn, err := w.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		w.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	stop := context.AfterFunc(w.ctx, func() { _ = conn.Close() })
	defer stop()

	var writeMu sync.Mutex
	send := func(resp Response) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(resp); err != nil {
			w.log.Debug("websocket write failed", zap.String("id", resp.ID), zap.Error(err))
		}
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				w.log.Debug("websocket read ended", zap.Error(err))
			}
			return
		}
		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			send(errorResponse("", CodeParseError, "parse error: "+err.Error()))
			continue
		}
		serve(w.ctx, w.reg, req, send)
	}
}
