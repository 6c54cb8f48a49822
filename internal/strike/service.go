package strike

import (
	"context"
	"errors"
	"fmt"

	"nfo-analytics/internal/model"
)

// ErrNoReferencePrice means no futures quote is available for the
// underlying, so an ATM band cannot be anchored.
var ErrNoReferencePrice = errors.New("no reference price available")

// Service is the in-process strike query API. It recomputes the strike
// ladder on demand from the instrument master; nothing here is persisted.
type Service struct {
	instruments model.InstrumentReader
}

// NewService creates a strike Service over an instrument reader.
func NewService(instruments model.InstrumentReader) *Service {
	return &Service{instruments: instruments}
}

// EstimateInterval infers strike spacing (rupees) for an underlying+expiry
// from the currently listed strikes.
func (s *Service) EstimateInterval(ctx context.Context, name, expiry string) (float64, error) {
	strikes, err := s.instruments.GetStrikes(ctx, name, expiry)
	if err != nil {
		return 0, fmt.Errorf("read strikes %s %s: %w", name, expiry, err)
	}
	interval, err := EstimateInterval(strikes)
	if err != nil {
		return 0, fmt.Errorf("estimate interval %s %s: %w", name, expiry, err)
	}
	return interval, nil
}

// SelectATM returns the 2*band+1 strikes around the underlying's latest
// futures last-traded price, using the inferred spacing for the expiry.
func (s *Service) SelectATM(ctx context.Context, name, expiry string, band int) ([]float64, error) {
	ltp, ok, err := s.instruments.GetReferencePrice(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("read reference price %s: %w", name, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNoReferencePrice)
	}

	interval, err := s.EstimateInterval(ctx, name, expiry)
	if err != nil {
		return nil, err
	}

	return SelectATMStrikes(float64(ltp)/100.0, interval, band)
}
