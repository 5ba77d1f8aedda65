// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package filter selects raw CPU time rows with a boolean expression, e.g.,
// `process =~ '^Process_[AB]$' && time > 100`.
//
// Expressions may reference the variables instance, process and core (strings) and
// time (number), and call the functions contains(s, sub) and hasPrefix(s, prefix).
package filter

import (
	"fmt"
	"log/slog"
	"strings"

	"cpuchart/internal/aggregate"

	"github.com/casbin/govaluate"
)

// Filter is a compiled row filter. The zero value and a nil *Filter keep every row.
type Filter struct {
	expression string
	evaluable  *govaluate.EvaluableExpression
}

// New compiles expression. An empty expression yields a filter that keeps every row.
func New(expression string) (*Filter, error) {
	f := &Filter{expression: strings.TrimSpace(expression)}
	if f.expression == "" {
		return f, nil
	}
	var err error
	if f.evaluable, err = govaluate.NewEvaluableExpressionWithFunctions(f.expression, functions()); err != nil {
		return nil, fmt.Errorf("invalid filter expression %q: %w", f.expression, err)
	}
	return f, nil
}

// String returns the source expression
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.expression
}

// Keep reports whether row passes the filter. Rows the expression can't be evaluated for
// are dropped.
func (f *Filter) Keep(row []string) bool {
	if f == nil || f.evaluable == nil {
		return true
	}
	result, err := f.evaluable.Evaluate(variables(row))
	if err != nil {
		slog.Debug("failed to evaluate filter", slog.String("expression", f.expression), slog.String("error", err.Error()))
		return false
	}
	keep, ok := result.(bool)
	if !ok {
		slog.Debug("filter did not evaluate to a boolean", slog.String("expression", f.expression), slog.Any("result", result))
		return false
	}
	return keep
}

// Apply returns the rows that pass the filter, in their original order
func (f *Filter) Apply(rows [][]string) [][]string {
	if f == nil || f.evaluable == nil {
		return rows
	}
	kept := make([][]string, 0, len(rows))
	for _, row := range rows {
		if f.Keep(row) {
			kept = append(kept, row)
		}
	}
	slog.Debug("filtered rows", slog.String("expression", f.expression), slog.Int("in", len(rows)), slog.Int("out", len(kept)))
	return kept
}

func variables(row []string) map[string]any {
	get := func(idx int) string {
		if idx < len(row) {
			return row[idx]
		}
		return ""
	}
	return map[string]any{
		"instance": get(aggregate.InstanceIdx),
		"process":  get(aggregate.ProcessIdx),
		"core":     get(aggregate.CoreIdx),
		"time":     aggregate.ParseTime(get(aggregate.TimeIdx)),
	}
}

func functions() map[string]govaluate.ExpressionFunction {
	stringArgs := func(name string, args []any) (string, string, error) {
		if len(args) != 2 {
			return "", "", fmt.Errorf("%s expects 2 arguments, got %d", name, len(args))
		}
		s, ok1 := args[0].(string)
		sub, ok2 := args[1].(string)
		if !ok1 || !ok2 {
			return "", "", fmt.Errorf("%s expects string arguments", name)
		}
		return s, sub, nil
	}
	return map[string]govaluate.ExpressionFunction{
		"contains": func(args ...any) (any, error) {
			s, sub, err := stringArgs("contains", args)
			if err != nil {
				return nil, err
			}
			return strings.Contains(s, sub), nil
		},
		"hasPrefix": func(args ...any) (any, error) {
			s, prefix, err := stringArgs("hasPrefix", args)
			if err != nil {
				return nil, err
			}
			return strings.HasPrefix(s, prefix), nil
		},
	}
}
