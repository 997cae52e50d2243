package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"athanor/internal/engine"
	"athanor/internal/model"
	"athanor/internal/objective"
)

// Routes builds the handler mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/api/start", s.handleStart)
	mux.HandleFunc("/api/seed", s.handleSeed)
	mux.HandleFunc("/api/pause", s.handlePause)
	mux.HandleFunc("/api/resume", s.handleResume)
	mux.HandleFunc("/api/reset", s.handleReset)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/target", s.handleTarget)
	mux.HandleFunc("/api/objectives", s.handleObjectives)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// GET /api/state
// Returns the full engine snapshot: status, parameters, target,
// population, best individual, history and diagnostics.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := s.eng.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// POST /api/start
// Discards any current run and starts a fresh one from a random population.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.eng.Start()

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("run started"))
}

// POST /api/seed
// Body: molecule JSON. Starts a fresh run around the supplied template.
func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	var seed model.Molecule
	if err := json.NewDecoder(r.Body).Decode(&seed); err != nil {
		http.Error(w, "invalid molecule json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(seed.Atoms) == 0 {
		http.Error(w, "seed molecule needs at least one atom", http.StatusBadRequest)
		return
	}

	s.eng.StartFromSeed(seed)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("seeded run started"))
}

// POST /api/pause
func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.eng.Pause()

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("run paused"))
}

// POST /api/resume
func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.eng.Resume()

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("run resumed"))
}

// POST /api/reset
// Body (optional): {"config": {...}, "target": {...}}. Omitted fields
// keep the current values.
type resetRequest struct {
	Config *engine.Config `json:"config"`
	Target *engine.Target `json:"target"`
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Target != nil {
		if _, err := objective.Get(req.Target.Objective); err != nil {
			http.Error(w, "unknown objective: "+req.Target.Objective, http.StatusBadRequest)
			return
		}
	}

	s.eng.Reset(req.Config, req.Target)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("engine reset"))
}

// GET /api/config returns the current evolution parameters.
// POST /api/config
// Body: {"key": "populationSize", "value": 12}. Updates one parameter;
// the change takes effect on the next generation step.
type updateParamRequest struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(s.eng.Snapshot().Config); err != nil {
			http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
			return
		}

	case http.MethodPost:
		defer r.Body.Close()

		var req updateParamRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.eng.UpdateParam(req.Key, req.Value); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("parameter updated"))

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// GET /api/target returns the current objective and its parameters.
// POST /api/target
// Body: {"objective": "...", "params": {...}}. The objective name must
// be registered.
func (s *Server) handleTarget(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(s.eng.Snapshot().Target); err != nil {
			http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
			return
		}

	case http.MethodPost:
		defer r.Body.Close()

		var target engine.Target
		if err := json.NewDecoder(r.Body).Decode(&target); err != nil {
			http.Error(w, "invalid target json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.eng.UpdateTarget(target); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("target updated"))

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// GET /api/objectives
// Lists every registered objective with its description.
type objectiveInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleObjectives(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	names := objective.List()
	out := make([]objectiveInfo, 0, len(names))
	for _, name := range names {
		obj, err := objective.Get(name)
		if err != nil {
			continue
		}
		out = append(out, objectiveInfo{Name: obj.Name(), Description: obj.Description()})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// GET /ws
// Upgrades to a WebSocket and streams a snapshot event after every
// engine command and generation step.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := s.hub.GetUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorf("websocket upgrade failed: %v", err)
		return
	}

	// Write the current state before registering, so a new client sees
	// something immediately and the hub broadcaster never writes to the
	// connection concurrently with this greeting.
	if event, err := snapshotEvent(s.eng.Snapshot()); err == nil {
		if data, err := event.JSON(); err == nil {
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.logger.Warnf("websocket greeting failed: %v", err)
				conn.Close()
				return
			}
		}
	}

	s.hub.RegisterClient(conn)
	s.logger.Debugf("websocket client connected: remote=%s", conn.RemoteAddr())

	// Reads only serve to notice the peer going away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.hub.UnregisterClient(conn)
	s.logger.Debugf("websocket client disconnected: remote=%s", conn.RemoteAddr())
}
