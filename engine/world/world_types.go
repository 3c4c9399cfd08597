package world

import "errors"

// ErrNotFound is returned when a rig id or name is not registered with the world.
var ErrNotFound = errors.New("world: rig not found")

// EventRecord is a copy of one event delivered by a rig during a tick.
// EventObjects are pooled and recycled after dispatch, so the world keeps only these plain values.
type EventRecord struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	State string `json:"state,omitempty"`
	Bone  string `json:"bone,omitempty"`
	Slot  string `json:"slot,omitempty"`
}

// StateSnapshot captures the observable values of one active animation state.
type StateSnapshot struct {
	Name             string  `json:"name"`
	Layer            int     `json:"layer"`
	Group            string  `json:"group,omitempty"`
	Playing          bool    `json:"playing"`
	Completed        bool    `json:"completed"`
	Additive         bool    `json:"additive,omitempty"`
	Weight           float32 `json:"weight"`
	WeightResult     float32 `json:"weightResult"`
	FadeProgress     float32 `json:"fadeProgress"`
	CurrentTime      float32 `json:"currentTime"`
	PlayTimes        int     `json:"playTimes"`
	CurrentPlayTimes int     `json:"currentPlayTimes"`
}

// RigSnapshot captures one registered rig after a tick.
type RigSnapshot struct {
	ID     uint64          `json:"id"`
	Name   string          `json:"name"`
	Last   string          `json:"last,omitempty"`
	States []StateSnapshot `json:"states"`
	Events []EventRecord   `json:"events,omitempty"`
}

// Snapshot is the world state after a tick. Rigs are ordered by id.
type Snapshot struct {
	World string        `json:"world"`
	Tick  uint64        `json:"tick"`
	Time  float64       `json:"time"`
	Rigs  []RigSnapshot `json:"rigs"`
}
