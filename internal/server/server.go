// Package server streams world state to observers over websockets. An
// observer reports its position; the server runs the streaming tick and
// pushes newly loaded chunks, evicted coordinates and the world clock back.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"runicworld/internal/config"
	"runicworld/internal/environment"
	"runicworld/internal/world"
)

type Server struct {
	cfg   *config.Config
	world *world.Manager
	env   *environment.Environment

	upgrader websocket.Upgrader
}

func New(cfg *config.Config, mgr *world.Manager, env *environment.Environment) *Server {
	return &Server{
		cfg:   cfg,
		world: mgr,
		env:   env,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// clientMessage is what an observer sends: its pixel position in the world.
type clientMessage struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type weatherPayload struct {
	Kind          string  `json:"kind"`
	Intensity     float64 `json:"intensity"`
	WindSpeed     float64 `json:"windSpeed"`
	WindDirection float64 `json:"windDirection"`
	Precipitation float64 `json:"precipitation"`
}

type lightingPayload struct {
	Ambient     float64 `json:"ambient"`
	SunAngle    float64 `json:"sunAngle"`
	FogDensity  float64 `json:"fogDensity"`
	WeatherTint float64 `json:"weatherTint"`
}

type clockPayload struct {
	Hours    int             `json:"hours"`
	Minutes  int             `json:"minutes"`
	Days     int             `json:"days"`
	Phase    string          `json:"phase"`
	Weather  weatherPayload  `json:"weather"`
	Lighting lightingPayload `json:"lighting"`
}

type welcomeMessage struct {
	Type  string       `json:"type"`
	Seed  int64        `json:"seed"`
	Spawn [2]int       `json:"spawn"`
	Clock clockPayload `json:"clock"`
}

type updateMessage struct {
	Type    string           `json:"type"`
	Loaded  []map[string]any `json:"loaded"`
	Evicted [][2]int         `json:"evicted"`
	Rects   int              `json:"collisionRects"`
	Clock   clockPayload     `json:"clock"`
}

type errorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// Routes builds the HTTP mux: the observer websocket plus health and seed
// endpoints.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleObserver)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/seed", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]int64{"seed": s.world.Seed()})
	})
	return mux
}

// Run serves until the context is cancelled. It also drives the environment
// clock at the configured tick rate.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.cfg.Server.ListenHTTP,
		Handler: s.Routes(),
	}

	go s.tickEnvironment(ctx)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("world server %s listening on %s", s.cfg.Server.ID, s.cfg.Server.ListenHTTP)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) tickEnvironment(ctx context.Context) {
	tickRate := s.cfg.Server.TickRate.Duration()
	if tickRate <= 0 {
		tickRate = 50 * time.Millisecond
	}
	ticker := time.NewTicker(tickRate)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.env.Step(now.Sub(last))
			last = now
		}
	}
}

func (s *Server) handleObserver(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	writeWait := s.cfg.Server.WriteWait.Duration()
	if writeWait <= 0 {
		writeWait = 5 * time.Second
	}
	var writeMu sync.Mutex
	send := func(v any) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(v)
	}

	ctx := r.Context()
	spawn, err := s.world.CenteredSpawn(ctx)
	if err != nil {
		log.Printf("spawn lookup: %v", err)
		_ = send(errorMessage{Type: "error", Error: "spawn unavailable"})
		return
	}

	if err := send(welcomeMessage{
		Type:  "welcome",
		Seed:  s.world.Seed(),
		Spawn: [2]int{spawn.X, spawn.Y},
		Clock: s.clockPayload(),
	}); err != nil {
		return
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Printf("discarding malformed observer message: %v", err)
			continue
		}
		if msg.Type != "position" {
			continue
		}

		loaded, evicted, err := s.world.UpdateChunks(ctx, msg.X, msg.Y)
		if err != nil {
			log.Printf("streaming tick at (%.0f,%.0f): %v", msg.X, msg.Y, err)
			_ = send(errorMessage{Type: "error", Error: err.Error()})
			continue
		}

		update := updateMessage{
			Type:    "update",
			Loaded:  make([]map[string]any, 0, len(loaded)),
			Evicted: make([][2]int, 0, len(evicted)),
			Rects:   len(s.world.CollisionRects()),
			Clock:   s.clockPayload(),
		}
		for _, ch := range loaded {
			update.Loaded = append(update.Loaded, ch.ToDict())
		}
		for _, coord := range evicted {
			update.Evicted = append(update.Evicted, [2]int{coord.X, coord.Y})
		}

		if err := send(update); err != nil {
			return
		}
	}
}

func (s *Server) clockPayload() clockPayload {
	state := s.env.CurrentState()
	return clockPayload{
		Hours:   state.Clock.Hours,
		Minutes: state.Clock.Minutes,
		Days:    state.Clock.Days,
		Phase:   string(state.Phase),
		Weather: weatherPayload{
			Kind:          string(state.Weather.Kind),
			Intensity:     state.Weather.Intensity,
			WindSpeed:     state.Weather.WindSpeed,
			WindDirection: state.Weather.WindDirection,
			Precipitation: state.Weather.Precipitation,
		},
		Lighting: lightingPayload{
			Ambient:     state.Lighting.Ambient,
			SunAngle:    state.Lighting.SunAngle,
			FogDensity:  state.Lighting.FogDensity,
			WeatherTint: state.Lighting.WeatherTint,
		},
	}
}
