package planning

import "errors"

var (
	ErrPlanningNotFound  = errors.New("planning not found")
	ErrTemplateDayExists = errors.New("a template already exists for this day of week")
)
