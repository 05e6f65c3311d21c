package startup

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
)

// Dependency is an external resource the service needs before it can serve.
type Dependency interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type Status int

const (
	StatusPending Status = iota
	StatusStarted
	StatusStopped
	StatusFailed
)

// Startup starts dependencies in registration order, retrying the whole set
// with Fibonacci back-off. Already started dependencies are not restarted.
type Startup struct {
	dependencies []Dependency
	statuses     map[string]Status
	logger       ectologger.Logger
	maxAttempts  int
	unit         time.Duration
}

func New(logger ectologger.Logger, maxAttempts int) *Startup {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Startup{
		statuses:    make(map[string]Status),
		logger:      logger,
		maxAttempts: maxAttempts,
		unit:        time.Second,
	}
}

func (s *Startup) Add(dependency Dependency) {
	s.dependencies = append(s.dependencies, dependency)
}

func (s *Startup) Status(name string) Status {
	return s.statuses[name]
}

func (s *Startup) Start(ctx context.Context) error {
	var lastErr error
	a, b := 1, 1

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		s.logger.WithField("attempt", attempt).Infof("Beginning startup attempt %d", attempt)

		lastErr = s.startAll(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == s.maxAttempts {
			break
		}

		wait := time.Duration(a) * s.unit
		s.logger.Infof("Retrying in %v (attempt %d/%d)", wait, attempt, s.maxAttempts)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		a, b = b, a+b
	}

	return fmt.Errorf("startup failed after %d attempts: %w", s.maxAttempts, lastErr)
}

func (s *Startup) startAll(ctx context.Context) error {
	for _, dependency := range s.dependencies {
		name := dependency.Name()
		if s.statuses[name] == StatusStarted {
			continue
		}

		log := s.logger.WithField("dependency", name)
		log.Infof("Starting dependency '%s'", name)
		if err := dependency.Start(ctx); err != nil {
			s.statuses[name] = StatusFailed
			log.WithError(err).Errorf("Failed to start dependency '%s'", name)
			return fmt.Errorf("%s: %w", name, err)
		}
		s.statuses[name] = StatusStarted
	}
	return nil
}

// Stop stops started dependencies in reverse order and returns the first error.
func (s *Startup) Stop(ctx context.Context) error {
	var firstErr error
	for i := len(s.dependencies) - 1; i >= 0; i-- {
		dependency := s.dependencies[i]
		name := dependency.Name()
		if s.statuses[name] != StatusStarted {
			continue
		}

		log := s.logger.WithField("dependency", name)
		if err := dependency.Stop(ctx); err != nil {
			log.WithError(err).Errorf("Failed to stop dependency '%s'", name)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		s.statuses[name] = StatusStopped
		log.Infof("Dependency '%s' stopped", name)
	}
	return firstErr
}

type funcDependency struct {
	name  string
	start func(ctx context.Context) error
	stop  func(ctx context.Context) error
}

// NewDependency adapts a pair of functions. stop may be nil.
func NewDependency(name string, start, stop func(ctx context.Context) error) Dependency {
	return &funcDependency{name: name, start: start, stop: stop}
}

func (d *funcDependency) Name() string { return d.name }

func (d *funcDependency) Start(ctx context.Context) error { return d.start(ctx) }

func (d *funcDependency) Stop(ctx context.Context) error {
	if d.stop == nil {
		return nil
	}
	return d.stop(ctx)
}
