package jointpub

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/okian/robocloud/internal/adapters/urdf"
	"github.com/okian/robocloud/pkg/logger"
)

// ErrNoJoints is returned when neither joint names nor a model were given.
var ErrNoJoints = errors.New("no joints to drive")

// Run resolves joints, connects a sender and streams messages until Count,
// Duration or ctx ends.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	names, err := ResolveJoints(config)
	if err != nil {
		return nil, err
	}

	sender, err := newSender(ctx, config)
	if err != nil {
		return nil, err
	}
	defer func() { _ = sender.Close() }()

	logger.Get().Info(ctx, "starting joint publisher",
		logger.String("target", target(config)),
		logger.String("topic", config.Topic),
		logger.Any("joints", names),
		logger.Float64("rate", config.Rate))

	gen := NewGenerator(config.Topic, names, config.Amplitude, config.Frequency)
	return Stream(ctx, config, gen, sender, time.Now)
}

// Stream sends one message per tick. now stamps messages.
func Stream(ctx context.Context, config *Config, gen *Generator, sender Sender, now func() time.Time) (*Stats, error) {
	if config.Rate <= 0 {
		return nil, fmt.Errorf("rate must be positive, got %v", config.Rate)
	}
	if config.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Duration)
		defer cancel()
	}

	stats := &Stats{StartTime: now()}
	ticker := time.NewTicker(time.Duration(float64(time.Second) / config.Rate))
	defer ticker.Stop()

	for config.Count == 0 || stats.Sent < config.Count {
		t := now()
		msg := gen.Message(t.Sub(stats.StartTime), t)
		res, err := sender.Send(ctx, msg)
		stats.Sent++
		switch res {
		case ResultAccepted:
			stats.Accepted++
		case ResultDuplicate:
			stats.Duplicate++
		default:
			stats.Failed++
			logger.Get().Warn(ctx, "send failed", logger.String("id", msg.ID), logger.Error(err))
		}
		if config.Verbose {
			logger.Get().Debug(ctx, "sent", logger.String("id", msg.ID), logger.Any("position", msg.Position))
		}

		if config.Count > 0 && stats.Sent >= config.Count {
			break
		}
		select {
		case <-ctx.Done():
			return finish(stats, now), nil
		case <-ticker.C:
		}
	}
	return finish(stats, now), nil
}

func finish(stats *Stats, now func() time.Time) *Stats {
	stats.EndTime = now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	return stats
}

// ResolveJoints returns config.Joints or the active joints of URDFFile.
func ResolveJoints(config *Config) ([]string, error) {
	if len(config.Joints) > 0 {
		return config.Joints, nil
	}
	if config.URDFFile == "" {
		return nil, ErrNoJoints
	}
	data, err := os.ReadFile(config.URDFFile)
	if err != nil {
		return nil, fmt.Errorf("read urdf: %w", err)
	}
	model, err := urdf.Parse(data)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, j := range model.ActiveJoints() {
		names = append(names, j.Name)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: %s has no active joints", ErrNoJoints, config.URDFFile)
	}
	return names, nil
}

func newSender(ctx context.Context, config *Config) (Sender, error) {
	if config.UDPAddr != "" {
		return NewUDPSender(ctx, config.UDPAddr)
	}
	s := NewHTTPSender(config.BaseURL, config.Topic, config.Timeout)
	if err := s.CheckHealth(ctx); err != nil {
		return nil, err
	}
	logger.Get().Info(ctx, "service is healthy")
	return s, nil
}

func target(config *Config) string {
	if config.UDPAddr != "" {
		return "udp://" + config.UDPAddr
	}
	return config.BaseURL
}

// LogStats prints the final statistics.
func LogStats(ctx context.Context, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.Sent) / stats.Duration.Seconds()
	}
	logger.Get().Info(ctx, "final statistics",
		logger.Int("sent", stats.Sent),
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("failed", stats.Failed),
		logger.Duration("duration", stats.Duration),
		logger.Float64("messagesPerSecond", perSecond))
}
