package storage

import (
	"context"
	"errors"

	"liquiditySim/internal/model"
)

// Sink persists simulation reports.
type Sink interface {
	WriteReport(ctx context.Context, report model.Report) error
}

// MultiSink writes a report to every sink and joins their errors.
type MultiSink []Sink

func (m MultiSink) WriteReport(ctx context.Context, report model.Report) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.WriteReport(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
