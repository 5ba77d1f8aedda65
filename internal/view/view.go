// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package view holds the state of the interactive CPU time view: the uploaded data and the
// current process and instance selections.
package view

import (
	"log/slog"
	"sync"

	"cpuchart/internal/aggregate"
	"cpuchart/internal/chart"
)

// Event identifies a state transition
type Event string

const (
	EventUpload         Event = "upload"
	EventSelectProcess  Event = "select_process"
	EventSelectInstance Event = "select_instance"
)

// Listener is called after every transition with a snapshot of the new state
type Listener func(Event, Snapshot)

// Snapshot is a point-in-time copy of the view state
type Snapshot struct {
	Columns   []string             `json:"columns"`
	Rows      []aggregate.ChartRow `json:"rows"`
	Selection chart.Selection      `json:"selection"`
	Uploads   int                  `json:"uploads"`
}

// HasData reports whether an upload has produced any rows
func (s Snapshot) HasData() bool {
	return len(s.Rows) > 0
}

// Charts derives the chart set for the snapshot
func (s Snapshot) Charts() chart.Set {
	return chart.BuildAll(s.Rows, s.Selection)
}

// ProcessCount returns the number of distinct process names across all instances
func (s Snapshot) ProcessCount() int {
	return len(aggregate.ProcessNames(s.Rows))
}

// State is the single view's state. It is only changed through Upload, SelectProcess and
// SelectInstance and is safe for use by concurrent request handlers.
type State struct {
	mu        sync.Mutex
	columns   []string
	rows      []aggregate.ChartRow
	selection chart.Selection
	uploads   int
	listeners []Listener
}

// New returns an empty state
func New() *State {
	return &State{}
}

// OnChange registers a listener for state transitions
func (s *State) OnChange(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Upload replaces the held data with the aggregation of rows and clears the process
// selection. The instance selection is left as is, even if the new data has no such instance.
func (s *State) Upload(header []string, rows [][]string) Snapshot {
	chartRows := aggregate.AggregateRows(rows)
	s.mu.Lock()
	s.columns = append([]string(nil), header...)
	s.rows = chartRows
	s.selection.Process = nil
	s.uploads++
	snap := s.snapshotLocked()
	listeners := s.listeners
	s.mu.Unlock()
	instance, _ := snap.Selection.InstanceID()
	slog.Info("data uploaded", slog.Int("rows", len(rows)), slog.Int("instances", len(chartRows)), slog.String("selected instance", instance))
	notify(listeners, EventUpload, snap)
	return snap
}

// SelectProcess makes process the target of the per-process pie breakdown
func (s *State) SelectProcess(process string) Snapshot {
	slog.Debug("process selected", slog.String("process", process))
	s.mu.Lock()
	s.selection = s.selection.WithProcess(process)
	snap := s.snapshotLocked()
	listeners := s.listeners
	s.mu.Unlock()
	notify(listeners, EventSelectProcess, snap)
	return snap
}

// SelectInstance makes instance the target of the instance-focused charts
func (s *State) SelectInstance(instance string) Snapshot {
	slog.Debug("instance selected", slog.String("instance", instance))
	s.mu.Lock()
	s.selection = s.selection.WithInstance(instance)
	snap := s.snapshotLocked()
	listeners := s.listeners
	s.mu.Unlock()
	notify(listeners, EventSelectInstance, snap)
	return snap
}

// Snapshot returns a copy of the current state
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// rows are never mutated after an upload, so snapshots can share them
func (s *State) snapshotLocked() Snapshot {
	return Snapshot{
		Columns:   s.columns,
		Rows:      s.rows,
		Selection: s.selection,
		Uploads:   s.uploads,
	}
}

func notify(listeners []Listener, event Event, snap Snapshot) {
	for _, l := range listeners {
		l(event, snap)
	}
}
