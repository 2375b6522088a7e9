package kpi

import "errors"

var (
	ErrKPINotFound   = errors.New("kpi not found")
	ErrInvalidMetric = errors.New("invalid metric")
	ErrInvalidScope  = errors.New("invalid scope")
)
