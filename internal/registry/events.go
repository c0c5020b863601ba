// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.

// Package registry owns the mutable, cross-subdomain state of an analysis:
// the canonical service set and the discovered subdomain set. Every
// mutation is a commutative, idempotent merge so results arriving in
// arbitrary completion order converge on the same end state, and any
// in-progress snapshot is valid for progressive display.
package registry

import (
	"log/slog"
	"sync"
)

const (
	EventServiceAdded     = "serviceAdded"
	EventServiceUpdated   = "serviceUpdated"
	EventSubdomainAdded   = "subdomainAdded"
	EventSubdomainUpdated = "subdomainUpdated"
)

type Handler func(payload any)

// emitter is a synchronous in-process publish/subscribe hub. A panicking
// subscriber is isolated: it is recovered and logged, and neither the
// remaining subscribers nor the triggering mutation are affected.
type emitter struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func newEmitter() *emitter {
	return &emitter{handlers: make(map[string][]Handler)}
}

func (e *emitter) on(event string, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[event] = append(e.handlers[event], h)
}

func (e *emitter) emit(event string, payload any) {
	e.mu.RLock()
	handlers := append([]Handler(nil), e.handlers[event]...)
	e.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("Event subscriber panicked", "event", event, "panic", r)
				}
			}()
			h(payload)
		}()
	}
}
