package engine

import (
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/engine/profiler"
	"github.com/Carmen-Shannon/oxy-anim/engine/world"
	"github.com/rs/zerolog"
)

// engine implements the Engine interface.
// Coordinates the tick and quit goroutines.
type engine struct {
	mu *sync.RWMutex

	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate   time.Duration
	fixedStep        bool
	tickCallback     func(deltaTime float32)
	snapshotCallback func(key int, snap world.Snapshot)

	worlds  map[int]world.World
	elapsed float64
	ticks   uint64

	logger zerolog.Logger
}

// Engine is the main entry point for the engine.
// It runs a fixed-rate tick loop that advances every registered world in ascending key order.
type Engine interface {
	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each tick before worlds are advanced.
	// Use this for scripted playback and controller calls.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetSnapshotCallback registers the function receiving every world's snapshot after each tick.
	//
	// Parameters:
	//   - callback: function called once per world per tick with the world key and its snapshot
	SetSnapshotCallback(callback func(key int, snap world.Snapshot))

	// AddWorld registers a world at the given key.
	// Worlds are advanced in ascending key order.
	//
	// Parameters:
	//   - key: the ordering key
	//   - w: the World to register
	AddWorld(key int, w world.World)

	// RemoveWorld removes the world at the given key.
	//
	// Parameters:
	//   - key: the key of the world to remove
	RemoveWorld(key int)

	// World retrieves the world registered at the given key.
	// Returns nil if no world exists at that key.
	//
	// Parameters:
	//   - key: the key of the world to retrieve
	//
	// Returns:
	//   - world.World: the world at the key, or nil if not found
	World(key int) world.World

	// Worlds returns a copy of all registered worlds keyed by ordering key.
	//
	// Returns:
	//   - map[int]world.World: a copy of the worlds map
	Worlds() map[int]world.World

	// Step runs one tick synchronously with the given delta time.
	// Run calls Step from its tick goroutine; tests and tools can call it directly instead of Run.
	//
	// Parameters:
	//   - deltaTime: the elapsed time in seconds
	Step(deltaTime float32)

	// Elapsed returns the sum of all delta times passed to Step.
	//
	// Returns:
	//   - float64: the engine clock in seconds
	Elapsed() float64

	// Ticks returns the number of completed ticks.
	//
	// Returns:
	//   - uint64: the tick count
	Ticks() uint64

	// Run starts the engine loop and blocks until Quit is called.
	Run()

	// Quit signals all engine goroutines to stop and shuts down the engine.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Initializes channels and profiler with sensible defaults.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:               &sync.RWMutex{},
		tickRateChannel:  make(chan time.Duration, 1),
		quitChannel:      make(chan struct{}),
		worlds:           make(map[int]world.World),
		running:          false,
		wg:               sync.WaitGroup{},
		profilingEnabled: false,
		engineTickRate:   time.Second / 60,
		logger:           zerolog.Nop(),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}

	return e
}

func (e *engine) Run() {
	e.mu.Lock()
	e.running = true
	rate := e.engineTickRate
	e.mu.Unlock()

	e.logger.Info().Dur("tick", rate).Int("worlds", len(e.Worlds())).Msg("engine started")
	e.handle()
	e.wg.Wait()
	e.logger.Info().Uint64("ticks", e.Ticks()).Float64("elapsed", e.Elapsed()).Msg("engine stopped")
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
		close(e.quitChannel)
	})
}

// handle launches the tick and quit goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleQuit()
}

// handleEngine runs the fixed-rate tick loop in its own goroutine.
// Steps the engine at the configured tick rate and listens for dynamic rate changes
// via tickRateChannel. Exits when the quit channel is closed.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleEngine() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Interface("panic", r).Msg("engine goroutine recovered from panic")
			e.signalQuit()
		}
	}()

	e.mu.RLock()
	rate := e.engineTickRate
	e.mu.RUnlock()

	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now
			if e.fixedStep {
				dt = float32(rate.Seconds())
			}

			e.Step(dt)

			if e.profilingEnabled {
				e.profiler.Tick(time.Since(now))
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			rate = newRate
			e.mu.Lock()
			e.engineTickRate = newRate
			e.mu.Unlock()
		}
	}
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

func (e *engine) Step(deltaTime float32) {
	if e.tickCallback != nil {
		e.tickCallback(deltaTime)
	}

	e.mu.RLock()
	keys := make([]int, 0, len(e.worlds))
	for k := range e.worlds {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	worlds := make([]world.World, len(keys))
	for i, k := range keys {
		worlds[i] = e.worlds[k]
	}
	e.mu.RUnlock()

	for i, w := range worlds {
		snap := w.AdvanceTime(deltaTime)
		if e.snapshotCallback != nil {
			e.snapshotCallback(keys[i], snap)
		}
	}

	e.mu.Lock()
	e.elapsed += float64(deltaTime)
	e.ticks++
	e.mu.Unlock()
}

func (e *engine) Elapsed() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.elapsed
}

func (e *engine) Ticks() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ticks
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in ticks per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	e.mu.Lock()
	running := e.running
	if !running {
		e.engineTickRate = newRate
	}
	e.mu.Unlock()

	if running {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetSnapshotCallback(callback func(key int, snap world.Snapshot)) {
	e.snapshotCallback = callback
}

func (e *engine) AddWorld(key int, w world.World) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.worlds[key] = w
}

func (e *engine) RemoveWorld(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.worlds, key)
}

func (e *engine) World(key int) world.World {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.worlds[key]
}

func (e *engine) Worlds() map[int]world.World {
	e.mu.RLock()
	defer e.mu.RUnlock()
	cp := make(map[int]world.World, len(e.worlds))
	for k, v := range e.worlds {
		cp[k] = v
	}
	return cp
}
