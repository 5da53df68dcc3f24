package domain

import "fmt"

// DataError means no usable source rows exist to build a series. The caller
// can fix this by ingesting more sales data.
type DataError struct {
	MedicineID  int64
	Granularity Granularity
}

func (e *DataError) Error() string {
	return fmt.Sprintf("no sales data found for medicine %d (%s)", e.MedicineID, e.Granularity)
}

// InsufficientDataError means the series exists but is shorter than the
// minimum required for model fitting.
type InsufficientDataError struct {
	Actual   int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data points: need at least %d, got %d", e.Required, e.Actual)
}

// ForecastError wraps a model-fit failure that survived the order-selection
// fallback. Nothing is persisted when it is returned.
type ForecastError struct {
	MedicineID int64
	Err        error
}

func (e *ForecastError) Error() string {
	return fmt.Sprintf("forecast failed for medicine %d: %v", e.MedicineID, e.Err)
}

func (e *ForecastError) Unwrap() error { return e.Err }

// InvalidParameterError reports a caller-supplied parameter outside its
// valid range.
type InvalidParameterError struct {
	Param  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Param, e.Reason)
}
