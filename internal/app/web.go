package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/tiltframe/internal/config"
	"github.com/relabs-tech/tiltframe/internal/motion"
	"github.com/relabs-tech/tiltframe/internal/orientation"
)

const wsWriteTimeout = 2 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// webServer serves the latest snapshots received over MQTT.
type webServer struct {
	orientation *snapshotBroadcaster

	mu         sync.RWMutex
	motion     motion.Snapshot
	haveMotion bool
}

func newWebServer() *webServer {
	return &webServer{orientation: newSnapshotBroadcaster()}
}

func (s *webServer) setOrientation(snap orientation.Snapshot) {
	s.orientation.Publish(snap)
}

func (s *webServer) setMotion(snap motion.Snapshot) {
	s.mu.Lock()
	s.motion = snap
	s.haveMotion = true
	s.mu.Unlock()
}

func (s *webServer) handler(staticDir string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/orientation", func(w http.ResponseWriter, r *http.Request) {
		snap, ok := s.orientation.Latest()
		writeSnapshot(w, snap, ok)
	})

	mux.HandleFunc("/api/motion", func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		snap, ok := s.motion, s.haveMotion
		s.mu.RUnlock()
		writeSnapshot(w, snap, ok)
	})

	mux.HandleFunc("/ws", s.handleWS)

	// Static files from staticDir as the root
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))

	return mux
}

func writeSnapshot(w http.ResponseWriter, v any, ok bool) {
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("json encode error")
	}
}

// handleWS streams orientation snapshots until the client goes away.
func (s *webServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade error")
		return
	}
	defer conn.Close()

	id, ch := s.orientation.Subscribe(4)
	defer s.orientation.Unsubscribe(id)

	// The read loop only exists to notice the client closing.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.WithError(err).Debug("websocket read error")
				}
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case snap, ok := <-ch:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(snap); err != nil {
				log.WithError(err).Debug("websocket write error")
				return
			}
		}
	}
}

// RunWeb subscribes to the snapshot topics and serves them over HTTP until
// ctx is done.
func RunWeb(ctx context.Context) error {
	cfg := config.Get()
	srv := newWebServer()

	client, err := connectMQTT(cfg.MQTT, "web")
	if err != nil {
		return err
	}
	defer client.Disconnect(cfg.MQTT.DisconnectQuiesce)

	if err := subscribeJSON(client, cfg.Topics.Orientation, srv.setOrientation); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.Topics.Motion, srv.setMotion); err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Web.Port),
		Handler: srv.handler(cfg.Web.StaticDir),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpSrv.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", httpSrv.Addr).Info("web server listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "web server")
	}
	return nil
}
