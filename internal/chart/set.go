// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package chart

import "cpuchart/internal/aggregate"

// Selection is the transient interaction state the derived charts depend on. A nil member
// is not selected. An empty name is a valid selection, since the data can hold one.
type Selection struct {
	Process  *string `json:"process,omitempty"`
	Instance *string `json:"instance,omitempty"`
}

// WithProcess returns a copy of the selection with process selected
func (s Selection) WithProcess(process string) Selection {
	s.Process = &process
	return s
}

// WithInstance returns a copy of the selection with instance selected
func (s Selection) WithInstance(instance string) Selection {
	s.Instance = &instance
	return s
}

// ProcessName returns the selected process, false if there is none
func (s Selection) ProcessName() (string, bool) {
	if s.Process == nil {
		return "", false
	}
	return *s.Process, true
}

// InstanceID returns the selected instance, false if there is none
func (s Selection) InstanceID() (string, bool) {
	if s.Instance == nil {
		return "", false
	}
	return *s.Instance, true
}

// IsInstance reports whether instance is the selected instance
func (s Selection) IsInstance(instance string) bool {
	return s.Instance != nil && *s.Instance == instance
}

// Set is every chart the current data and selection call for. Nil/empty members are charts
// that are not shown.
type Set struct {
	Overall     *Descriptor  `json:"overall,omitempty"`
	ProcessPies []Descriptor `json:"processPies,omitempty"`
	InstanceBar *Descriptor  `json:"instanceBar,omitempty"`
	InstancePie *Descriptor  `json:"instancePie,omitempty"`
	Instances   []string     `json:"instances"`
	Selection   Selection    `json:"selection"`
}

// BuildAll derives the complete chart set
func BuildAll(rows []aggregate.ChartRow, sel Selection) Set {
	instances := make([]string, 0, len(rows))
	for _, row := range rows {
		instances = append(instances, row.InstanceID)
	}
	set := Set{
		Overall:   Overall(rows),
		Instances: instances,
		Selection: sel,
	}
	if process, ok := sel.ProcessName(); ok {
		set.ProcessPies = ProcessPies(process, rows)
	}
	if instance, ok := sel.InstanceID(); ok {
		set.InstanceBar = InstanceBar(instance, rows)
		set.InstancePie = InstancePie(instance, rows)
	}
	return set
}

// Descriptors flattens the set in display order
func (s Set) Descriptors() []Descriptor {
	var out []Descriptor
	if s.Overall != nil {
		out = append(out, *s.Overall)
	}
	out = append(out, s.ProcessPies...)
	if s.InstanceBar != nil {
		out = append(out, *s.InstanceBar)
	}
	if s.InstancePie != nil {
		out = append(out, *s.InstancePie)
	}
	return out
}

// Empty reports whether the set has no charts at all
func (s Set) Empty() bool {
	return len(s.Descriptors()) == 0
}
