package domain

import (
	"fmt"
	"time"

	apperrors "lootledger/internal/platform/errors"
)

// DurationAt is the accumulated play time plus the open login segment, if
// any. Paused and stopped sessions have no open segment.
func (s *Session) DurationAt(now time.Time) time.Duration {
	total := s.Accumulated
	if s.LoginAt != nil {
		if elapsed := now.Sub(*s.LoginAt); elapsed > 0 {
			total += elapsed
		}
	}
	return total
}

// fold moves the open segment into the accumulator and clears the anchor.
func (s *Session) fold(now time.Time) {
	s.Accumulated = s.DurationAt(now)
	s.LoginAt = nil
}

// Connect opens a login segment. It is a no-op while paused or already
// connected.
func (s *Session) Connect(now time.Time) error {
	if err := s.Mutable(); err != nil {
		return err
	}
	if s.Paused() || s.LoginAt != nil {
		return nil
	}
	s.LoginAt = &now
	return nil
}

// Disconnect closes the open login segment, if any.
func (s *Session) Disconnect(now time.Time) error {
	if err := s.Mutable(); err != nil {
		return err
	}
	s.fold(now)
	return nil
}

func (s *Session) Pause(now time.Time) error {
	if err := s.Mutable(); err != nil {
		return err
	}
	if s.Paused() {
		return fmt.Errorf("%w: session %s is already paused", apperrors.ErrInvalidInput, s.ID)
	}
	s.fold(now)
	s.PausedAt = &now
	return nil
}

func (s *Session) Resume(now time.Time) error {
	if err := s.Mutable(); err != nil {
		return err
	}
	if !s.Paused() {
		return fmt.Errorf("%w: session %s is not paused", apperrors.ErrInvalidInput, s.ID)
	}
	s.PausedAt = nil
	s.LoginAt = &now
	return nil
}

// Stop freezes the session. Duration is fixed from here on.
func (s *Session) Stop(now time.Time) error {
	if err := s.Mutable(); err != nil {
		return err
	}
	s.fold(now)
	s.PausedAt = nil
	s.EndedAt = &now
	return nil
}
