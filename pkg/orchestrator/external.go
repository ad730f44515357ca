package orchestrator

import "context"

var _ Orchestrator = External{}

// External is an Orchestrator for a server that is already running. Up and
// Down do nothing; the controller only polls for health.
type External struct{}

func (External) Available(context.Context) bool { return true }

func (External) Up(context.Context) error { return nil }

func (External) Down(context.Context) error { return nil }
