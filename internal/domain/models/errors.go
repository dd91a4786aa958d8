package models

import (
	"fmt"
	"strings"
)

// Error codes carried by the domain errors.
const (
	CodeTimeConversion      = "ERR_TIME_CONVERSION"
	CodeEphemeris           = "ERR_EPHEMERIS"
	CodeUnsupportedHouseSys = "ERR_UNSUPPORTED_HOUSE_SYSTEM"
	CodeChartCalculation    = "ERR_CHART_CALCULATION"
)

// TimeConversionError reports unusable civil date, time or timezone input.
// Not retryable; the caller must fix the input.
type TimeConversionError struct {
	Field string // "date", "time" or "timezone"
	Value string
	Err   error
}

func (e *TimeConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("time conversion: invalid %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("time conversion: invalid %s %q", e.Field, e.Value)
}

func (e *TimeConversionError) Unwrap() error { return e.Err }

// Code returns the machine-readable error code.
func (e *TimeConversionError) Code() string { return CodeTimeConversion }

// EphemerisComputationError reports a failure inside the ephemeris adapter.
type EphemerisComputationError struct {
	Op   string // "position" or "houses"
	Body string // empty for house computations
	Err  error
}

func (e *EphemerisComputationError) Error() string {
	var b strings.Builder
	b.WriteString("ephemeris ")
	b.WriteString(e.Op)
	if e.Body != "" {
		b.WriteString(" ")
		b.WriteString(e.Body)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *EphemerisComputationError) Unwrap() error { return e.Err }

func (e *EphemerisComputationError) Code() string { return CodeEphemeris }

// UnsupportedHouseSystemError is returned when house assignment is attempted
// for a system whose houses cannot be derived from sign offsets.
type UnsupportedHouseSystemError struct {
	System HouseSystem
	Op     string
}

func (e *UnsupportedHouseSystemError) Error() string {
	return fmt.Sprintf("%s: house system %s (%s) is not supported, only whole_sign (W) is",
		e.Op, e.System, e.System.Code())
}

func (e *UnsupportedHouseSystemError) Code() string { return CodeUnsupportedHouseSys }

// ChartCalculationError wraps any failure raised inside a chart calculator.
type ChartCalculationError struct {
	Kind  ChartKind
	Stage string
	Err   error
}

func (e *ChartCalculationError) Error() string {
	return fmt.Sprintf("%s chart: %s: %v", e.Kind, e.Stage, e.Err)
}

func (e *ChartCalculationError) Unwrap() error { return e.Err }

func (e *ChartCalculationError) Code() string { return CodeChartCalculation }
