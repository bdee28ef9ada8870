package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/coreman2200/arcaluminis-orrery/internal/app"
	"github.com/coreman2200/arcaluminis-orrery/internal/config"
	diag "github.com/coreman2200/arcaluminis-orrery/internal/diagnostics"
	"github.com/coreman2200/arcaluminis-orrery/internal/led"
	"github.com/coreman2200/arcaluminis-orrery/internal/metrics"
	"github.com/coreman2200/arcaluminis-orrery/internal/ws"
)

type serveOpts struct {
	addr       string
	driver     string
	fps        int
	brightness float64
	simOnly    bool
	tour       bool
	frameHz    float64
}

func newServeCmd(root *rootOpts) *cobra.Command {
	o := &serveOpts{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the render loop and the HTTP/websocket server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, root, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.addr, "addr", ":8080", "HTTP listen address")
	f.StringVar(&o.driver, "driver", "sim", "driver: spi | term | sim")
	f.IntVar(&o.fps, "fps", 60, "target frames per second")
	f.Float64Var(&o.brightness, "brightness", 0.8, "global brightness 0..1")
	f.BoolVar(&o.simOnly, "sim-only", false, "force simulation (no hardware output)")
	f.BoolVar(&o.tour, "tour", false, "start the tour immediately")
	f.Float64Var(&o.frameHz, "ws-hz", 30, "max frames per second sent to each /ws client")
	return cmd
}

// effective merges flags into cfg: a flag given on the command line wins, otherwise
// the config value is kept and flag defaults only fill empty fields.
func (o *serveOpts) effective(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("addr") || cfg.Addr == "" {
		cfg.Addr = o.addr
	}
	if f.Changed("driver") || cfg.Driver == "" {
		cfg.Driver = o.driver
	}
	if f.Changed("fps") || cfg.FPS <= 0 {
		cfg.FPS = o.fps
	}
	if f.Changed("brightness") || cfg.Brightness <= 0 {
		cfg.Brightness = o.brightness
	}
	if o.simOnly {
		cfg.Driver = "sim"
	}
}

func openDriver(cfg *config.Config, count int, hub *diag.Hub) (led.Driver, string) {
	switch cfg.Driver {
	case "sim":
		return led.NewSim(), "sim"
	case "spi":
		drv, err := led.OpenSPI(led.SPIConfig{
			Dev:        cfg.SPI.Dev,
			Count:      count,
			ColorOrder: cfg.ColorOrder,
			FreqHz:     cfg.SPI.FreqHz,
		})
		if err == nil {
			return drv, "spi"
		}
		log.Warn().Err(err).
			Str("driver", "spi").
			Str("dev", cfg.SPI.Dev).
			Int("freq_hz", cfg.SPI.FreqHz).
			Msg("SPI init failed; falling back to SIM")
		hub.Publish(diag.Diagnostic{
			Severity: diag.Warn, Code: "DRIVER.FALLBACK", Summary: "SPI unavailable, using simulator",
			Detail:         err.Error(),
			LikelyCauses:   []string{"SPI not enabled", "wrong spi.dev", "missing permissions on /dev/spidev*"},
			SuggestedFixes: []string{"enable SPI in raspi-config", "run as a member of the spi group"},
			Evidence:       map[string]any{"dev": cfg.SPI.Dev, "freq_hz": cfg.SPI.FreqHz},
		})
	case "term":
		drv, err := led.NewTerm(count)
		if err == nil {
			return drv, "term"
		}
		log.Warn().Err(err).Str("driver", "term").Msg("terminal preview failed; falling back to SIM")
	default:
		log.Warn().Str("driver", cfg.Driver).Msg("unknown driver; using SIM")
	}
	return led.NewSim(), "sim"
}

// startLoop runs the render loop in the background; the channel closes once
// the loop has returned.
func startLoop(ctx context.Context, core *app.Core, fps int) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		core.Run(ctx, fps)
	}()
	return done
}

func runServe(cmd *cobra.Command, root *rootOpts, o *serveOpts) error {
	cfg, err := loadConfig(root.configPath)
	if err != nil {
		return err
	}
	o.effective(cmd, cfg)
	if root.logLevel == "" && cfg.LogLevel != "" {
		if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
			zerolog.SetGlobalLevel(lvl)
		}
	}

	hub := diag.NewHub(64)
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	drv, driverName := openDriver(cfg, cfg.Dim.X*cfg.Dim.Y*cfg.Dim.Z, hub)
	hw, sim, err := app.FromConfig(cfg, drv)
	if err != nil {
		_ = drv.Close()
		return err
	}
	hw.Preview = driverName == "sim"
	core, err := app.InitCore(hw, sim, app.Observers{Metrics: m, Hub: hub})
	if err != nil {
		_ = drv.Close()
		return err
	}
	defer core.Close()
	if o.tour {
		core.StartTour()
	}

	state := ws.NewState(core, hub, m)
	state.CurrentDriver = driverName
	state.FrameHz = o.frameHz
	state.ConfigPath = root.configPath
	state.Config = cfg

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      state.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// the render loop must be gone before the deferred core.Close
	loopDone := startLoop(ctx, core, cfg.FPS)
	defer func() {
		stop()
		<-loopDone
	}()
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("driver", driverName).Int("fps", cfg.FPS).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server crashed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
