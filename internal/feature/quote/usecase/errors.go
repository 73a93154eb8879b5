// Package usecase implements price lookups across the US and KR data sources.
package usecase

import "errors"

var (
	// ErrEmptySeries is returned when the time-series provider returned no rows.
	ErrEmptySeries = errors.New("empty data")

	// ErrCodeRequired is returned when a price is requested without a code.
	ErrCodeRequired = errors.New("code is required")
)
