package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/coreman2200/arcaluminis-orrery/internal/app"
	"github.com/coreman2200/arcaluminis-orrery/internal/config"
	diag "github.com/coreman2200/arcaluminis-orrery/internal/diagnostics"
	"github.com/coreman2200/arcaluminis-orrery/internal/metrics"
	"github.com/coreman2200/arcaluminis-orrery/internal/orbital"
	"github.com/coreman2200/arcaluminis-orrery/internal/snapshot"
)

// State serves a running Core over HTTP and websockets.
type State struct {
	Core    *app.Core
	Hub     *diag.Hub          // optional
	Metrics *metrics.Collector // optional

	// FrameHz caps frames per second sent to each /ws client.
	FrameHz       float64
	CurrentDriver string

	// ConfigPath, when set, receives Config after every control change.
	ConfigPath string
	Config     *config.Config

	mu        sync.Mutex // guards Config
	startTime time.Time
	upgrader  websocket.Upgrader
}

func NewState(core *app.Core, hub *diag.Hub, m *metrics.Collector) *State {
	return &State{
		Core:      core,
		Hub:       hub,
		Metrics:   m,
		FrameHz:   30,
		startTime: time.Now(),
		upgrader:  websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// Handler routes every endpoint behind the CORS wrapper.
func (s *State) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleFramesWS)
	mux.HandleFunc("/diag", s.HandleDiagWS)
	mux.HandleFunc("/control", s.HandleControlWS)
	mux.HandleFunc("/angles", s.HandleAngles)
	mux.HandleFunc("/snapshot.png", s.HandleSnapshot)
	mux.HandleFunc("/health", s.HandleHealth)
	if s.Metrics != nil {
		mux.Handle("/metrics", s.Metrics.Handler())
	}
	return withCORS(mux)
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// readUntilClosed drains client messages and cancels the returned context when the
// connection goes away.
func readUntilClosed(conn *websocket.Conn) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return ctx
}

type frameMsg struct {
	T       int64   `json:"t"`
	FrameID uint64  `json:"frame_id"`
	SimTime float64 `json:"sim_time"`
	RGB     []byte  `json:"rgb"`
}

// HandleFramesWS sends the topology, then every new LED frame at no more than FrameHz.
func (s *State) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	if s.Metrics != nil {
		s.Metrics.ClientConnected()
		defer s.Metrics.ClientDisconnected()
	}
	if err := s.sendTopology(conn); err != nil {
		return
	}

	ctx := readUntilClosed(conn)
	hz := s.FrameHz
	if hz <= 0 {
		hz = 30
	}
	lim := rate.NewLimiter(rate.Limit(hz), 1)
	var last uint64
	for {
		if err := lim.Wait(ctx); err != nil {
			return
		}
		rgb, id := s.Core.LastFrame()
		if id == last {
			continue
		}
		last = id
		_, simT := s.Core.Angles()
		b, _ := json.Marshal(frameMsg{T: time.Now().UnixNano(), FrameID: id, SimTime: simT, RGB: rgb})
		conn.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("write frame")
			return
		}
	}
}

// HandleDiagWS replays recent diagnostics, then streams new ones.
func (s *State) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	if s.Hub == nil {
		http.Error(w, "diagnostics disabled", http.StatusNotFound)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	ch, cancel := s.Hub.Subscribe(32)
	defer cancel()

	send := func(d diag.Diagnostic) error {
		b, _ := json.Marshal(d)
		conn.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		return conn.WriteMessage(websocket.TextMessage, b)
	}
	for _, d := range s.Hub.Recent() {
		if err := send(d); err != nil {
			return
		}
	}
	ctx := readUntilClosed(conn)
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-ch:
			if !ok {
				return
			}
			if err := send(d); err != nil {
				log.Debug().Err(err).Msg("write diagnostic")
				return
			}
		}
	}
}

// Camera moves the snapshot camera.
type Camera struct {
	Position [3]float64 `json:"position"`
	Target   [3]float64 `json:"target"`
}

// Control is one /control message; absent fields are left alone.
type Control struct {
	TimeScale  *float64 `json:"timeScale,omitempty"`
	Pause      *bool    `json:"pause,omitempty"`
	SunSpin    *bool    `json:"sunSpin,omitempty"`
	Renderer   string   `json:"renderer,omitempty"`
	Preset     string   `json:"preset,omitempty"`
	Tour       string   `json:"tour,omitempty"` // "start" | "stop"
	RunTest    string   `json:"runTest,omitempty"`
	Brightness *float64 `json:"brightness,omitempty"`
	Blackout   *bool    `json:"blackout,omitempty"`
	Camera     *Camera  `json:"camera,omitempty"`
}

type controlReply struct {
	Status app.Status `json:"status"`
	Error  string     `json:"error,omitempty"`
}

// HandleControlWS applies each message and answers with the resulting status.
func (s *State) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Control
		reply := controlReply{}
		if err := json.Unmarshal(data, &msg); err != nil {
			reply.Error = fmt.Sprintf("bad control message: %v", err)
		} else if err := s.Apply(msg); err != nil {
			reply.Error = err.Error()
		}
		reply.Status = s.Core.Status()
		b, _ := json.Marshal(reply)
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			return
		}
	}
}

// Apply runs every field of msg and persists the tunables that live in the config file.
func (s *State) Apply(msg Control) error {
	var errs []error
	c := s.Core
	if msg.TimeScale != nil {
		errs = append(errs, c.SetTimeScale(*msg.TimeScale))
	}
	if msg.Pause != nil {
		if *msg.Pause {
			c.Pause()
		} else {
			c.Resume()
		}
	}
	if msg.SunSpin != nil {
		c.SetSunSpin(*msg.SunSpin)
	}
	if msg.Brightness != nil {
		c.SetBrightness(*msg.Brightness)
	}
	if msg.Camera != nil {
		c.SetCamera(mgl64.Vec3(msg.Camera.Position), mgl64.Vec3(msg.Camera.Target))
	}
	if msg.Renderer != "" || msg.Preset != "" {
		name := msg.Renderer
		if name == "" {
			name = c.Status().Renderer
		}
		errs = append(errs, c.SetRenderer(name, msg.Preset))
	}
	if msg.Blackout != nil {
		errs = append(errs, c.Blackout(*msg.Blackout))
	}
	switch msg.Tour {
	case "":
	case "start":
		c.StartTour()
	case "stop":
		c.StopTour()
	default:
		errs = append(errs, fmt.Errorf("unknown tour command: %s", msg.Tour))
	}
	if msg.RunTest != "" {
		errs = append(errs, c.RunTest(msg.RunTest))
	}

	err := errors.Join(errs...)
	if err != nil && s.Hub != nil {
		s.Hub.Publish(diag.Diagnostic{Severity: diag.Warn, Code: "CONTROL.REJECTED", Summary: "Control message rejected", Detail: err.Error()})
	}
	s.saveConfig()
	return err
}

func (s *State) saveConfig() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ConfigPath == "" || s.Config == nil {
		return
	}
	st := s.Core.Status()
	s.Config.Brightness = st.Brightness
	s.Config.Sim.TimeScale = st.TimeScale
	s.Config.Sim.SunSpinEnabled = st.SunSpin
	if err := config.Save(s.ConfigPath, s.Config); err != nil {
		log.Warn().Err(err).Str("path", s.ConfigPath).Msg("config save failed")
	}
}

type bodyAngles struct {
	Name string `json:"name"`
	orbital.Angles
}

type anglesResp struct {
	SimTime float64      `json:"simTime"`
	Bodies  []bodyAngles `json:"bodies"`
}

// HandleAngles reports the angles of the last frame, or of ?t= seconds when given.
func (s *State) HandleAngles(w http.ResponseWriter, r *http.Request) {
	angles, simT := s.Core.Angles()
	if q := r.URL.Query().Get("t"); q != "" {
		t, err := strconv.ParseFloat(q, 64)
		if err != nil || math.IsNaN(t) || math.IsInf(t, 0) {
			http.Error(w, "t must be a finite number", http.StatusBadRequest)
			return
		}
		simT = t
		angles = orbital.ComputeBodyAngles(t, s.Core.Table(), orbital.Options{SunSpinEnabled: s.Core.Status().SunSpin})
	}
	resp := anglesResp{SimTime: simT, Bodies: []bodyAngles{}}
	for _, b := range s.Core.Table().Bodies() {
		if a, ok := angles[b.Name]; ok {
			resp.Bodies = append(resp.Bodies, bodyAngles{Name: b.Name, Angles: a})
		}
	}
	writeJSON(w, resp)
}

// writeJSON marshals before touching the response so a failure is still a 500.
func writeJSON(w http.ResponseWriter, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("encode response")
		http.Error(w, "cannot encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(append(b, '\n')); err != nil {
		log.Debug().Err(err).Msg("write response")
	}
}

// HandleSnapshot renders the current pose as a PNG; ?w=&h=&labels=0 tune it.
func (s *State) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := snapshot.Options{Labels: q.Get("labels") != "0"}
	opts.Width, _ = strconv.Atoi(q.Get("w"))
	opts.Height, _ = strconv.Atoi(q.Get("h"))
	if opts.Width > 4096 || opts.Height > 4096 {
		http.Error(w, "snapshot too large", http.StatusBadRequest)
		return
	}
	img := s.Core.Snapshot(opts)
	w.Header().Set("Content-Type", "image/png")
	if err := snapshot.WritePNG(w, img); err != nil {
		log.Debug().Err(err).Msg("write snapshot")
	}
}

func (s *State) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := struct {
		app.Status
		UptimeS float64 `json:"uptime_s"`
		Driver  string  `json:"driver"`
	}{s.Core.Status(), time.Since(s.startTime).Seconds(), s.CurrentDriver}
	writeJSON(w, resp)
}

func (s *State) sendTopology(conn *websocket.Conn) error {
	l := s.Core.Layout()
	top := map[string]any{
		"dim":        map[string]int{"x": l.Dim.X, "y": l.Dim.Y, "z": l.Dim.Z},
		"order":      map[string]bool{"xFlipEveryRow": l.Order.XFlipEveryRow, "yFlipEveryPanel": l.Order.YFlipEveryPanel},
		"panelGapMM": l.PanelGapMM,
		"pitchMM":    l.PitchMM,
		"driver":     s.CurrentDriver,
	}
	b, _ := json.Marshal(top)
	return conn.WriteMessage(websocket.TextMessage, b)
}
