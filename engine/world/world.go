package world

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/armature"
	"github.com/rs/zerolog"
)

// recordedEvents lists the event types a world copies into snapshots.
var recordedEvents = []string{
	armature.EventStart,
	armature.EventLoopComplete,
	armature.EventComplete,
	armature.EventFadeIn,
	armature.EventFadeInComplete,
	armature.EventFadeOut,
	armature.EventFadeOutComplete,
	armature.EventFrame,
	armature.EventSound,
}

// rig is a registered top-level armature and the events it delivered since the last drain.
type rig struct {
	id        uint64
	arm       armature.Armature
	listeners []armature.ListenerID

	mu     sync.Mutex
	events []EventRecord
}

func (r *rig) record(e *armature.EventObject) {
	rec := EventRecord{Type: e.Type, Name: e.Name}
	if e.State != nil {
		rec.State = e.State.Name()
	}
	if e.Bone != nil {
		rec.Bone = e.Bone.Name()
	}
	if e.Slot != nil {
		rec.Slot = e.Slot.Name()
	}
	r.mu.Lock()
	r.events = append(r.events, rec)
	r.mu.Unlock()
}

// detach removes the listeners Add registered on the armature and drops pending records.
func (r *rig) detach() {
	for i, id := range r.listeners {
		r.arm.Display().RemoveEventListener(recordedEvents[i], id)
	}
	r.listeners = nil
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

func (r *rig) takeEvents(drain bool) []EventRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return nil
	}
	out := make([]EventRecord, len(r.events))
	copy(out, r.events)
	if drain {
		r.events = r.events[:0]
	}
	return out
}

// world implements the World interface.
type world struct {
	mu *sync.RWMutex

	name   string
	logger zerolog.Logger

	registry map[uint64]*rig
	nextID   uint64
	initial  []armature.Armature

	tick    uint64
	elapsed float64

	recordEvents bool

	// pool advances rigs in parallel. Workers persist across ticks.
	pool    worker.DynamicWorkerPool
	workers int
}

// World owns a set of top-level rigs and advances all of them once per tick.
// Each rig is advanced by a single goroutine; separate rigs are advanced in parallel.
// Child rigs hosted in slots are advanced by their parent and must not be registered separately.
type World interface {
	// Name returns the name of the world.
	//
	// Returns:
	//   - string: the world name
	Name() string

	// Add registers a top-level rig and assigns it a unique id.
	//
	// Parameters:
	//   - arm: the armature to register (must not be nil)
	//
	// Returns:
	//   - uint64: the id assigned to the rig
	Add(arm armature.Armature) uint64

	// Get retrieves a rig by id. Returns nil if not found.
	//
	// Parameters:
	//   - id: the rig id
	//
	// Returns:
	//   - armature.Armature: the rig or nil
	Get(id uint64) armature.Armature

	// Find retrieves the first registered rig with the given name, in id order.
	//
	// Parameters:
	//   - name: the rig name
	//
	// Returns:
	//   - uint64: the rig id
	//   - armature.Armature: the rig
	//   - error: ErrNotFound if no rig has that name
	Find(name string) (uint64, armature.Armature, error)

	// Animation returns the animation controller of a rig by name.
	//
	// Parameters:
	//   - name: the rig name
	//
	// Returns:
	//   - animation.Animation: the controller
	//   - error: ErrNotFound if the rig does not exist or has no controller
	Animation(name string) (animation.Animation, error)

	// Remove unregisters a rig.
	//
	// Parameters:
	//   - id: the rig id
	//
	// Returns:
	//   - error: ErrNotFound if the id is not registered
	Remove(id uint64) error

	// Count returns the number of registered rigs.
	//
	// Returns:
	//   - int: the rig count
	Count() int

	// IDs returns the registered rig ids in ascending order.
	//
	// Returns:
	//   - []uint64: the sorted ids
	IDs() []uint64

	// AdvanceTime advances every registered rig by dt seconds and blocks until all are done.
	// The returned snapshot holds the events recorded since the previous AdvanceTime.
	//
	// Parameters:
	//   - dt: the elapsed time in seconds
	//
	// Returns:
	//   - Snapshot: the world state after the tick
	AdvanceTime(dt float32) Snapshot

	// Snapshot returns the current world state without consuming recorded events.
	//
	// Returns:
	//   - Snapshot: the world state
	Snapshot() Snapshot

	// Clear unregisters every rig.
	Clear()

	// Close stops the worker pool. The world must not be advanced afterwards.
	Close()
}

// Ensure world implements World interface.
var _ World = &world{}

// NewWorld creates a new World with a persistent worker pool.
//
// Parameters:
//   - name: the name of the world
//   - options: functional options to configure the world
//
// Returns:
//   - World: the newly created world
func NewWorld(name string, options ...WorldBuilderOption) World {
	w := &world{
		mu:           &sync.RWMutex{},
		name:         name,
		logger:       zerolog.Nop(),
		registry:     make(map[uint64]*rig),
		nextID:       1,
		recordEvents: true,
		workers:      max(runtime.NumCPU()-1, 1),
	}

	for _, option := range options {
		option(w)
	}

	// Queue size of 256 covers typical rig counts; SubmitTask blocks past that.
	w.pool = worker.NewDynamicWorkerPool(w.workers, 256, 1*time.Second)

	for _, arm := range w.initial {
		w.Add(arm)
	}
	w.initial = nil

	return w
}

func (w *world) Name() string {
	return w.name
}

func (w *world) Add(arm armature.Armature) uint64 {
	if arm == nil {
		panic("world: cannot Add a nil Armature")
	}

	r := &rig{id: atomic.AddUint64(&w.nextID, 1) - 1, arm: arm}
	if w.recordEvents {
		r.listeners = make([]armature.ListenerID, len(recordedEvents))
		for i, eventType := range recordedEvents {
			r.listeners[i] = arm.Display().AddEventListener(eventType, r.record)
		}
	}

	w.mu.Lock()
	w.registry[r.id] = r
	w.mu.Unlock()

	w.logger.Debug().Str("world", w.name).Uint64("id", r.id).Str("rig", arm.Name()).Msg("rig added")
	return r.id
}

func (w *world) Get(id uint64) armature.Armature {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if r, ok := w.registry[id]; ok {
		return r.arm
	}
	return nil
}

func (w *world) Find(name string) (uint64, armature.Armature, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, r := range w.sorted() {
		if r.arm.Name() == name {
			return r.id, r.arm, nil
		}
	}
	return 0, nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}

func (w *world) Animation(name string) (animation.Animation, error) {
	_, arm, err := w.Find(name)
	if err != nil {
		return nil, err
	}
	anim, ok := arm.Animation().(animation.Animation)
	if !ok {
		return nil, fmt.Errorf("%w: %q has no animation controller", ErrNotFound, name)
	}
	return anim, nil
}

func (w *world) Remove(id uint64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	r, ok := w.registry[id]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	delete(w.registry, id)
	r.detach()
	w.logger.Debug().Str("world", w.name).Uint64("id", id).Str("rig", r.arm.Name()).Msg("rig removed")
	return nil
}

func (w *world) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.registry)
}

func (w *world) IDs() []uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	ids := make([]uint64, 0, len(w.registry))
	for id := range w.registry {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (w *world) AdvanceTime(dt float32) Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	// A WaitGroup provides the per-tick barrier; pool.Wait() only returns once
	// the queue drains and is not meant for frame-rate workloads.
	var wg sync.WaitGroup
	for _, r := range w.registry {
		wg.Add(1)
		rCap := r
		w.pool.SubmitTask(worker.Task{
			ID: int(rCap.id),
			Do: func() (any, error) {
				defer wg.Done()
				defer func() {
					if p := recover(); p != nil {
						w.logger.Error().Str("world", w.name).Str("rig", rCap.arm.Name()).Interface("panic", p).Msg("rig advance recovered from panic")
					}
				}()
				rCap.arm.AdvanceTime(dt)
				return nil, nil
			},
		})
	}
	wg.Wait()

	w.tick++
	w.elapsed += float64(dt)
	return w.snapshot(true)
}

func (w *world) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.snapshot(false)
}

func (w *world) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, r := range w.registry {
		r.detach()
	}
	w.registry = make(map[uint64]*rig)
}

func (w *world) Close() {
	w.pool.Stop()
}

// sorted returns the registered rigs in id order. The caller must hold the lock.
func (w *world) sorted() []*rig {
	rigs := make([]*rig, 0, len(w.registry))
	for _, r := range w.registry {
		rigs = append(rigs, r)
	}
	sort.Slice(rigs, func(i, j int) bool { return rigs[i].id < rigs[j].id })
	return rigs
}

// snapshot builds the world state. The caller must hold the lock.
func (w *world) snapshot(drain bool) Snapshot {
	snap := Snapshot{World: w.name, Tick: w.tick, Time: w.elapsed}
	for _, r := range w.sorted() {
		rs := RigSnapshot{ID: r.id, Name: r.arm.Name(), States: []StateSnapshot{}, Events: r.takeEvents(drain)}
		if anim, ok := r.arm.Animation().(animation.Animation); ok {
			rs.Last = anim.LastAnimationName()
			for _, s := range anim.States() {
				rs.States = append(rs.States, StateSnapshot{
					Name:             s.Name(),
					Layer:            s.Layer(),
					Group:            s.Group(),
					Playing:          s.IsPlaying(),
					Completed:        s.IsCompleted(),
					Additive:         s.Additive(),
					Weight:           s.Weight(),
					WeightResult:     s.WeightResult(),
					FadeProgress:     s.FadeProgress(),
					CurrentTime:      s.CurrentTime(),
					PlayTimes:        s.PlayTimes(),
					CurrentPlayTimes: s.CurrentPlayTimes(),
				})
			}
		}
		snap.Rigs = append(snap.Rigs, rs)
	}
	return snap
}
