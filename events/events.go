// Copyright (c) 2020-2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package events provides an in-process event manager. Listeners register a
// channel for an event type and receive the data of every emitted event of
// that type.
package events

import (
	"sync"
)

// Manager fans emitted events out to the channels registered for their type.
type Manager struct {
	sync.Mutex
	listeners map[string][]chan interface{}
}

// Register adds listener to the channels that receive events of the type.
func (e *Manager) Register(event string, listener chan interface{}) {
	e.Lock()
	defer e.Unlock()

	e.listeners[event] = append(e.listeners[event], listener)

	log.Debugf("Registered listener for %v", event)
}

// Unregister removes a previously registered listener. The channel is not
// closed.
func (e *Manager) Unregister(event string, listener chan interface{}) {
	e.Lock()
	defer e.Unlock()

	l := e.listeners[event]
	for i, ch := range l {
		if ch != listener {
			continue
		}
		l = append(l[:i:i], l[i+1:]...)
		break
	}
	if len(l) == 0 {
		delete(e.listeners, event)
		return
	}
	e.listeners[event] = l
}

// Listeners returns the number of listeners registered for the event type.
func (e *Manager) Listeners(event string) int {
	e.Lock()
	defer e.Unlock()

	return len(e.listeners[event])
}

// Emit sends data to every listener of the event type and returns once all of
// them received it. Sends happen outside the lock so listeners may register
// or unregister while handling an event.
func (e *Manager) Emit(event string, data interface{}) {
	e.Lock()
	listeners := append([]chan interface{}(nil), e.listeners[event]...)
	e.Unlock()

	log.Tracef("Emit %v to %v listeners", event, len(listeners))

	for _, ch := range listeners {
		ch <- data
	}
}

// NewManager returns a manager without listeners.
func NewManager() *Manager {
	return &Manager{
		listeners: make(map[string][]chan interface{}),
	}
}
