/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

// Package state keeps the per-(rule, node) trigger state machine. Each
// pair is Idle or Triggered; trigger and recovery firings move it between
// the two. The in-memory map is authoritative at runtime and is
// rehydrated from rule status records after a restart.
package state

import (
	"sort"
	"sync"
	"time"
)

// Phase is the lifecycle phase of one (rule, node) pair.
type Phase string

const (
	PhaseIdle      Phase = "Idle"
	PhaseTriggered Phase = "Triggered"
)

type pairKey struct {
	rule string
	node string
}

// NodeState is the tracked state of one (rule, node) pair.
type NodeState struct {
	Node            string
	Phase           Phase
	LastTriggeredAt time.Time
	LastRecoveredAt time.Time
}

// Store holds per-rule node state maps behind one mutex.
type Store struct {
	mu    sync.Mutex
	pairs map[pairKey]*NodeState
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{pairs: make(map[pairKey]*NodeState)}
}

// Phase returns the phase of one pair. Unknown pairs are Idle.
func (s *Store) Phase(rule, node string) Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.pairs[pairKey{rule: rule, node: node}]; ok {
		return st.Phase
	}
	return PhaseIdle
}

// SetTriggered marks a pair Triggered at the given time.
func (s *Store) SetTriggered(rule, node string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.ensure(rule, node)
	st.Phase = PhaseTriggered
	st.LastTriggeredAt = at
}

// SetRecovered marks a pair Idle again at the given time.
func (s *Store) SetRecovered(rule, node string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.ensure(rule, node)
	st.Phase = PhaseIdle
	st.LastRecoveredAt = at
}

// Restore seeds a pair from persisted status, overwriting any in-memory
// record for the pair.
func (s *Store) Restore(rule string, st NodeState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := st
	s.pairs[pairKey{rule: rule, node: st.Node}] = &copied
}

// TriggeredNodes lists the nodes a rule currently holds in Triggered,
// sorted by name.
func (s *Store) TriggeredNodes(rule string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var nodes []string
	for key, st := range s.pairs {
		if key.rule == rule && st.Phase == PhaseTriggered {
			nodes = append(nodes, key.node)
		}
	}
	sort.Strings(nodes)
	return nodes
}

// Snapshot returns copies of every tracked pair for a rule, sorted by
// node name. Used to publish status.
func (s *Store) Snapshot(rule string) []NodeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	var states []NodeState
	for key, st := range s.pairs {
		if key.rule == rule {
			states = append(states, *st)
		}
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Node < states[j].Node })
	return states
}

// DropRule removes every pair a rule holds. Called when a rule is removed
// or disabled.
func (s *Store) DropRule(rule string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.pairs {
		if key.rule == rule {
			delete(s.pairs, key)
		}
	}
}

// DropNode removes one pair. Called when a node leaves the rule's
// selection and is no longer tracked.
func (s *Store) DropNode(rule, node string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pairs, pairKey{rule: rule, node: node})
}

// ensure returns the pair record, creating an Idle one if absent.
// Callers hold s.mu.
func (s *Store) ensure(rule, node string) *NodeState {
	key := pairKey{rule: rule, node: node}
	st, ok := s.pairs[key]
	if !ok {
		st = &NodeState{Node: node, Phase: PhaseIdle}
		s.pairs[key] = st
	}
	return st
}
