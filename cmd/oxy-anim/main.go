package main

import (
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/engine"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/config"
	"github.com/Carmen-Shannon/oxy-anim/engine/profiler"
	"github.com/Carmen-Shannon/oxy-anim/engine/script"
	"github.com/Carmen-Shannon/oxy-anim/engine/stream"
	"github.com/Carmen-Shannon/oxy-anim/engine/world"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config; the built-in demo runs when empty")
		serve      = flag.String("serve", "", "listen address for the websocket snapshot stream (overrides stream.addr)")
		duration   = flag.Float64("duration", -1, "seconds to run, 0 runs until interrupted (overrides duration)")
		logLevel   = flag.String("log-level", "", "log level (overrides log_level)")
		profile    = flag.Bool("profile", false, "log tick statistics every second")
		dump       = flag.String("dump-config", "", "write the effective config to this path and exit")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	if err := config.LoadDotEnv(); err != nil {
		log.Debug().Err(err).Msg("no .env file, using the process environment")
	}

	cfg := demoConfig()
	if *configPath != "" {
		c, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("config load failed")
		}
		cfg = c
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		log.Fatal().Err(err).Msg("invalid environment override")
	}
	if *serve != "" {
		cfg.Stream.Addr = *serve
	}
	if *duration >= 0 {
		cfg.Duration = *duration
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	cfg.Profiling = cfg.Profiling || *profile
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	if *dump != "" {
		if err := config.Save(*dump, cfg); err != nil {
			log.Fatal().Err(err).Str("path", *dump).Msg("config save failed")
		}
		log.Info().Str("path", *dump).Msg("config written")
		return
	}

	lvl, _ := cfg.Level()
	zerolog.SetGlobalLevel(lvl)
	logger := log.Logger

	worldOptions := []world.WorldBuilderOption{world.WithLogger(logger)}
	if cfg.Workers > 0 {
		worldOptions = append(worldOptions, world.WithWorkers(cfg.Workers))
	}
	w := world.NewWorld("main", worldOptions...)
	defer w.Close()

	for _, rc := range cfg.Rigs {
		arm, err := buildRig(rc.Template, rc.Name, logger)
		if err != nil {
			log.Fatal().Err(err).Str("rig", rc.Name).Msg("rig build failed")
		}
		if anim, ok := arm.Animation().(animation.Animation); ok {
			anim.SetTimeScale(cfg.TimeScale)
		}
		w.Add(arm)
	}

	player := script.NewPlayer(w, cfg.Cues,
		script.WithLogger(logger.With().Str("component", "script").Logger()),
		script.WithDefaultFadeTime(cfg.FadeInTime),
	)

	eng := engine.NewEngine(
		engine.WithTickRate(cfg.TickRate),
		engine.WithFixedStep(true),
		engine.WithWorld(0, w),
		engine.WithLogger(logger),
		engine.WithProfiling(cfg.Profiling),
		engine.WithProfiler(profiler.NewProfiler(profiler.WithLogger(logger.With().Str("component", "profiler").Logger()))),
	)
	eng.SetTickCallback(func(dt float32) {
		clock := eng.Elapsed() + float64(dt)
		player.Update(float32(clock))
		if cfg.Duration > 0 && clock >= cfg.Duration {
			eng.Quit()
		}
	})

	var srv *http.Server
	if cfg.Stream.Addr != "" {
		hub := stream.NewHub(stream.WithLogger(logger.With().Str("component", "stream").Logger()))
		defer hub.Close()
		srv = &http.Server{
			Addr:         cfg.Stream.Addr,
			Handler:      hub.Handler(cfg.Stream.Path),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		eng.SetSnapshotCallback(func(_ int, snap world.Snapshot) {
			if err := hub.Publish(snap); err != nil {
				logger.Warn().Err(err).Msg("snapshot publish failed")
			}
			logEvents(logger, snap)
		})
		go func() {
			log.Info().Str("addr", cfg.Stream.Addr).Str("path", cfg.Stream.Path).Msg("stream server starting")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("stream server failed")
				eng.Quit()
			}
		}()
	} else {
		eng.SetSnapshotCallback(func(_ int, snap world.Snapshot) {
			logEvents(logger, snap)
		})
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sig
		log.Info().Str("signal", s.String()).Msg("shutting down")
		eng.Quit()
	}()

	eng.Run()

	if srv != nil {
		_ = srv.Close()
	}
}

// logEvents writes every event recorded in the snapshot at debug level.
func logEvents(logger zerolog.Logger, snap world.Snapshot) {
	if zerolog.GlobalLevel() > zerolog.DebugLevel {
		return
	}
	for _, rig := range snap.Rigs {
		for _, e := range rig.Events {
			logger.Debug().
				Uint64("tick", snap.Tick).
				Str("rig", rig.Name).
				Str("type", e.Type).
				Str("name", e.Name).
				Str("bone", e.Bone).
				Str("slot", e.Slot).
				Msg("event")
		}
	}
}

// demoConfig is the configuration used when no file is given: a hero with a sword and a slime
// running a short script that layers, fades and seeks clips.
func demoConfig() *config.Config {
	cfg := config.Default()
	cfg.Duration = 6
	cfg.Rigs = []config.RigCfg{
		{Name: "hero", Template: "hero"},
		{Name: "slime", Template: "slime"},
	}
	one, two := 1, 2
	fast, slow := float32(0.1), float32(0.4)
	cfg.Cues = []config.Cue{
		{At: 0, Rig: "hero", Op: config.OpPlay, Clip: "walk"},
		{At: 0, Rig: "slime", Op: config.OpPlay, Clip: "bounce"},
		{At: 1.5, Rig: "hero", Op: config.OpFadeIn, Clip: "attack", FadeTime: &fast, PlayTimes: &one, Layer: 1, Group: "combat"},
		{At: 2.5, Rig: "hero", Op: config.OpFadeIn, Clip: "wave", PlayTimes: &two, Layer: 2, Additive: true},
		{At: 4, Rig: "hero", Op: config.OpFadeIn, Clip: "idle", FadeTime: &slow},
		{At: 5, Rig: "slime", Op: config.OpGotoAndStop, Clip: "squash", Time: 0.2},
	}
	return cfg
}
