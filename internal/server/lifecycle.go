// Package server supervises Emberfall's long-running services. The
// simulation tick loop, the persistence loop, and the database pool all
// register here and share one signal-driven startup/shutdown sequence.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is one supervised component. Start blocks for the life of the
// service; Stop asks it to wind down and must be safe to call after
// Start has returned.
type Service interface {
	Start() error
	Stop()
}

// FuncService adapts a pair of closures into a Service.
type FuncService struct {
	StartFn func() error
	StopFn  func()
}

// Start calls StartFn.
func (f *FuncService) Start() error { return f.StartFn() }

// Stop calls StopFn.
func (f *FuncService) Stop() { f.StopFn() }

// Lifecycle starts services in registration order and stops them in
// reverse. Shutdown begins on SIGINT or SIGTERM, on context
// cancellation, or as soon as any service's Start returns an error.
type Lifecycle struct {
	log     *zap.Logger
	mu      sync.Mutex
	entries []entry
}

type entry struct {
	name string
	svc  Service
}

// NewLifecycle creates an empty Lifecycle.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{log: logger}
}

// Add registers a named service. Registration order is start order;
// stop order is its reverse, so dependencies registered first outlive
// their dependents.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry{name: name, svc: svc})
}

// Run starts every registered service and blocks until something asks
// for shutdown, then stops them all newest-first.
//
// Postcondition: every service's Stop has returned when Run returns.
func (l *Lifecycle) Run(ctx context.Context) error {
	booted := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	failures := make(chan error, len(l.entries))
	for _, e := range l.entries {
		e := e
		go func() {
			l.log.Info("service up", zap.String("service", e.name))
			if err := e.svc.Start(); err != nil {
				l.log.Error("service failed",
					zap.String("service", e.name),
					zap.Error(err),
				)
				failures <- fmt.Errorf("service %s: %w", e.name, err)
				cancel()
			}
		}()
	}
	l.log.Info("emberfall running", zap.Int("services", len(l.entries)))

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		l.log.Info("signal received, shutting down", zap.String("signal", sig.String()))
	case err := <-failures:
		l.log.Error("shutting down after service failure", zap.Error(err))
	case <-ctx.Done():
		l.log.Info("context cancelled, shutting down")
	}

	l.stopAll()
	l.log.Info("emberfall stopped", zap.Duration("uptime", time.Since(booted)))
	return nil
}

// stopAll winds services down in reverse registration order.
func (l *Lifecycle) stopAll() {
	for i := len(l.entries) - 1; i >= 0; i-- {
		e := l.entries[i]
		l.log.Info("stopping service", zap.String("service", e.name))
		e.svc.Stop()
		l.log.Info("service stopped", zap.String("service", e.name))
	}
}
