// Package infra implements infrastructure concerns (clock, storage, app watching).
package infra

import (
	"time"

	"github.com/eliteGoblin/frictiond/internal/domain"
)

// SystemClock implements domain.Clock using the device wall clock.
type SystemClock struct{}

// NewSystemClock creates a system-backed clock.
func NewSystemClock() domain.Clock {
	return SystemClock{}
}

// Now returns the current local time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Ensure SystemClock implements domain.Clock.
var _ domain.Clock = SystemClock{}
