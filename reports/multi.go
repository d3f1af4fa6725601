package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cleverty/endpoint-provisioner/interfaces"
)

// Multi fans stores out to every available sink and fetches from the first
// sink holding the report.
type Multi struct {
	sinks []interfaces.ReportSink
	log   *slog.Logger
}

func NewMulti(sinks []interfaces.ReportSink, log *slog.Logger) *Multi {
	if log == nil {
		log = slog.Default()
	}
	return &Multi{sinks: sinks, log: log}
}

func (m *Multi) Fetch(ctx context.Context, id interfaces.ContentID) ([]byte, error) {
	var errs []error

	for _, sink := range m.sinks {
		if !sink.Available(ctx) {
			continue
		}

		data, err := sink.Fetch(ctx, id)
		if err == nil {
			return data, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
	}

	if len(errs) == 0 {
		return nil, interfaces.ErrContentNotFound
	}
	return nil, errors.Join(errs...)
}

// Store succeeds if at least one sink accepted the report.
func (m *Multi) Store(ctx context.Context, data []byte) (interfaces.ContentID, error) {
	start := time.Now()
	id := interfaces.ComputeID(data)
	stored := 0
	var errs []error

	for _, sink := range m.sinks {
		if !sink.Available(ctx) {
			m.log.Debug("Report sink unavailable", slog.String("sink", sink.Name()))
			continue
		}

		if _, err := sink.Store(ctx, data); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
			m.log.Warn("Failed to store report",
				slog.String("sink", sink.Name()),
				"err", err)
			continue
		}
		stored++
	}

	if stored == 0 {
		if len(errs) == 0 {
			return id, fmt.Errorf("no report sink available")
		}
		return id, fmt.Errorf("all report sinks failed: %w", errors.Join(errs...))
	}

	m.log.Info("Stored report",
		slog.String("contentID", id.String()),
		slog.Int("sinks", stored),
		slog.Duration("duration", time.Since(start)))

	return id, nil
}

func (m *Multi) Available(ctx context.Context) bool {
	for _, sink := range m.sinks {
		if sink.Available(ctx) {
			return true
		}
	}
	return false
}

func (m *Multi) Name() string {
	return "multi-sink"
}

func (m *Multi) LocationURI() string {
	locations := make([]string, 0, len(m.sinks))
	for _, sink := range m.sinks {
		locations = append(locations, sink.LocationURI())
	}
	return "multi:[" + strings.Join(locations, ",") + "]"
}
