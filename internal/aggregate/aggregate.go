// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package aggregate turns flat CPU time rows into a nested instance -> process -> core table
// and projects it into the list-shaped chart rows consumed by the chart builders.
package aggregate

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// field positions in a raw row
const (
	InstanceIdx = 0
	ProcessIdx  = 1
	CoreIdx     = 3
	TimeIdx     = 4
)

// MinFields is the number of fields a well-formed row carries
const MinFields = TimeIdx + 1

// CoreTime is the CPU time recorded for one core
type CoreTime struct {
	Core string  `json:"core"`
	Time float64 `json:"time"`
}

// ProcessTimes holds the per-core CPU times of one process on one instance
type ProcessTimes struct {
	Process string     `json:"process"`
	Cores   []CoreTime `json:"cores"`
}

// Total returns the sum of the per-core times
func (p ProcessTimes) Total() float64 {
	total := 0.0
	for _, c := range p.Cores {
		total += c.Time
	}
	return total
}

// ChartRow is one instance with all of its process -> core -> time data
type ChartRow struct {
	InstanceID string         `json:"instanceId"`
	Processes  []ProcessTimes `json:"processes"`
}

// Cores returns the per-core times of the named process, false if the instance has no data for it
func (r ChartRow) Cores(process string) ([]CoreTime, bool) {
	for _, p := range r.Processes {
		if p.Process == process {
			return p.Cores, true
		}
	}
	return nil, false
}

// Total returns the summed CPU time of the named process, 0 if the process is absent
func (r ChartRow) Total(process string) float64 {
	for _, p := range r.Processes {
		if p.Process == process {
			return p.Total()
		}
	}
	return 0
}

// ProcessNames returns the row's process names in table order
func (r ChartRow) ProcessNames() []string {
	names := make([]string, 0, len(r.Processes))
	for _, p := range r.Processes {
		names = append(names, p.Process)
	}
	return names
}

type processEntry struct {
	name  string
	cores []CoreTime
	index map[string]int
}

type instanceEntry struct {
	id        string
	processes []*processEntry
	index     map[string]*processEntry
}

// Table maps instance -> process -> core -> CPU time. Keys keep the order in which they were
// first set; setting an existing (instance, process, core) replaces the value in place.
type Table struct {
	instances []*instanceEntry
	index     map[string]*instanceEntry
}

// NewTable returns an empty table
func NewTable() *Table {
	return &Table{index: make(map[string]*instanceEntry)}
}

// Set records the CPU time for (instance, process, core)
func (t *Table) Set(instance, process, core string, cpuTime float64) {
	inst, ok := t.index[instance]
	if !ok {
		inst = &instanceEntry{id: instance, index: make(map[string]*processEntry)}
		t.index[instance] = inst
		t.instances = append(t.instances, inst)
	}
	proc, ok := inst.index[process]
	if !ok {
		proc = &processEntry{name: process, index: make(map[string]int)}
		inst.index[process] = proc
		inst.processes = append(inst.processes, proc)
	}
	if i, ok := proc.index[core]; ok {
		proc.cores[i].Time = cpuTime
		return
	}
	proc.index[core] = len(proc.cores)
	proc.cores = append(proc.cores, CoreTime{Core: core, Time: cpuTime})
}

// Get returns the CPU time for (instance, process, core)
func (t *Table) Get(instance, process, core string) (float64, bool) {
	inst, ok := t.index[instance]
	if !ok {
		return 0, false
	}
	proc, ok := inst.index[process]
	if !ok {
		return 0, false
	}
	i, ok := proc.index[core]
	if !ok {
		return 0, false
	}
	return proc.cores[i].Time, true
}

// Instances returns the instance ids in first-seen order
func (t *Table) Instances() []string {
	ids := make([]string, 0, len(t.instances))
	for _, inst := range t.instances {
		ids = append(ids, inst.id)
	}
	return ids
}

// Len returns the number of distinct instances
func (t *Table) Len() int {
	return len(t.instances)
}

// ChartRows projects the table into one ChartRow per instance. The returned rows do not share
// memory with the table.
func (t *Table) ChartRows() []ChartRow {
	rows := make([]ChartRow, 0, len(t.instances))
	for _, inst := range t.instances {
		row := ChartRow{InstanceID: inst.id, Processes: make([]ProcessTimes, 0, len(inst.processes))}
		for _, proc := range inst.processes {
			cores := make([]CoreTime, len(proc.cores))
			copy(cores, proc.cores)
			row.Processes = append(row.Processes, ProcessTimes{Process: proc.name, Cores: cores})
		}
		rows = append(rows, row)
	}
	return rows
}

// Aggregate builds the table from data rows (header excluded). Malformed rows are not rejected:
// missing fields read as "" and a time that doesn't parse is NaN.
func Aggregate(rows [][]string) *Table {
	table := NewTable()
	for _, row := range rows {
		table.Set(field(row, InstanceIdx), field(row, ProcessIdx), field(row, CoreIdx), ParseTime(field(row, TimeIdx)))
	}
	return table
}

// AggregateRows is Aggregate followed by ChartRows
func AggregateRows(rows [][]string) []ChartRow {
	return Aggregate(rows).ChartRows()
}

func field(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

var rxLeadingFloat = regexp.MustCompile(`^[+-]?(Infinity|[0-9]+\.?[0-9]*(?:[eE][+-]?[0-9]+)?|\.[0-9]+(?:[eE][+-]?[0-9]+)?)`)

// ParseTime parses the leading decimal number of s, ignoring leading white space and any
// trailing text. It returns NaN when s does not start with a number.
func ParseTime(s string) float64 {
	match := rxLeadingFloat.FindString(strings.TrimLeft(s, " \t\r\n\v\f"))
	if match == "" {
		return math.NaN()
	}
	switch match {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	val, err := strconv.ParseFloat(match, 64)
	if err != nil {
		// out of range values still carry a usable value, e.g. +Inf
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
			return val
		}
		return math.NaN()
	}
	return val
}

// ProcessNames returns every process name found across the rows, ordered by first
// appearance: rows in order, then each row's own process order.
func ProcessNames(rows []ChartRow) []string {
	seen := mapset.NewThreadUnsafeSet[string]()
	var names []string
	for _, row := range rows {
		for _, p := range row.Processes {
			if seen.Add(p.Process) {
				names = append(names, p.Process)
			}
		}
	}
	return names
}

// Find returns the chart row for the instance id
func Find(rows []ChartRow, instance string) (ChartRow, bool) {
	for _, row := range rows {
		if row.InstanceID == instance {
			return row, true
		}
	}
	return ChartRow{}, false
}
