package service

import (
	"accioncsat/internal/form"
	"context"
	"time"

	"go.uber.org/zap"
)

// Submitter delivers a completed form
type Submitter interface {
	Submit(ctx context.Context, snapshot form.Snapshot) error
}

// SimulatedSubmitter stands in for a real endpoint: it waits a fixed delay, then logs the payload
type SimulatedSubmitter struct {
	delay  time.Duration
	logger *zap.Logger
}

// NewSimulatedSubmitter creates a submitter with the given round-trip delay
func NewSimulatedSubmitter(delay time.Duration, logger *zap.Logger) *SimulatedSubmitter {
	return &SimulatedSubmitter{
		delay:  delay,
		logger: logger,
	}
}

func (s *SimulatedSubmitter) Submit(ctx context.Context, snapshot form.Snapshot) error {
	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.logger.Info("survey submitted",
		zap.String("session_id", snapshot.SessionID),
		zap.Any("survey_data", snapshot.Record),
		zap.Any("low_rating_examples", snapshot.Examples),
	)
	return nil
}
