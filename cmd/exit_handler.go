/*
Copyright 2026, Cossack Labs Limited

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"errors"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Priority of execution of defer functions
type Priority int

// Priorities, function with Last priority runs after all others
const (
	Last Priority = iota
	Indifferent
)

// ErrLastPriorityDuplicated returned when second function with Last priority is added
var ErrLastPriorityDuplicated = errors.New("defer function with 'Last' priority has been already specified")

// DeferFunction is function with priority executed on exit
type DeferFunction interface {
	GetPriority() Priority
	Call()
}

// DeferFunc is an implementation of DeferFunction
type DeferFunc struct {
	deferFunc func()
	priority  Priority
}

// NewDeferFunction is a constructor for DeferFunction
func NewDeferFunction(deferFunc func(), priority Priority) DeferFunction {
	return &DeferFunc{deferFunc, priority}
}

// GetPriority returns priority of execution for this defer function
func (d *DeferFunc) GetPriority() Priority {
	return d.priority
}

// Call just executes defer function
func (d *DeferFunc) Call() {
	d.deferFunc()
}

// ExitHandler waits for exit signals, closes listeners and calls defer functions before exit
type ExitHandler struct {
	mu             sync.Mutex
	deferFunctions []DeferFunction
	listeners      []net.Listener
	signals        []os.Signal
	notification   chan os.Signal
	exit           func(code int)
}

// NewExitHandler returns ExitHandler for signals, SIGINT and SIGTERM if none passed
func NewExitHandler(signals ...os.Signal) *ExitHandler {
	if len(signals) == 0 {
		signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}
	return &ExitHandler{
		signals:      signals,
		notification: make(chan os.Signal, 1),
		exit:         os.Exit,
	}
}

// AddListener adds listener closed on exit
func (s *ExitHandler) AddListener(listener net.Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, listener)
	s.mu.Unlock()
}

// AddDeferFunc appends new defer function. Only one function may have Last priority.
func (s *ExitHandler) AddDeferFunc(input DeferFunction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if input.GetPriority() == Last {
		for _, deferFunc := range s.deferFunctions {
			if deferFunc.GetPriority() == Last {
				return ErrLastPriorityDuplicated
			}
		}
	}
	s.deferFunctions = append(s.deferFunctions, input)
	return nil
}

// Notify starts delivery of handled signals
func (s *ExitHandler) Notify() {
	signal.Notify(s.notification, s.signals...)
}

// WaitForExitSystemSignal blocks until signal, then exits with 0 code.
// It should be used in separate goroutine in main function of service
func (s *ExitHandler) WaitForExitSystemSignal() {
	s.Notify()
	<-s.notification
	s.ExitZero()
}

// ExitZero is a single point for exiting from the service with 0 code
func (s *ExitHandler) ExitZero() {
	s.gracefulExit()
	s.exit(0)
}

// ExitOne is a single point for exiting from the service with 1 code
func (s *ExitHandler) ExitOne() {
	s.gracefulExit()
	s.exit(1)
}

func (s *ExitHandler) gracefulExit() {
	signal.Stop(s.notification)
	s.mu.Lock()
	listeners := s.listeners
	deferFunctions := s.deferFunctions
	s.listeners, s.deferFunctions = nil, nil
	s.mu.Unlock()
	for _, listener := range listeners {
		listener.Close()
	}
	executeDeferFunctions(deferFunctions)
}

func executeDeferFunctions(deferFunctions []DeferFunction) {
	var lastDefer DeferFunction
	for _, deferFunction := range deferFunctions {
		if deferFunction.GetPriority() == Last {
			lastDefer = deferFunction
			continue
		}
		deferFunction.Call()
	}
	if lastDefer != nil {
		lastDefer.Call()
	}
}
