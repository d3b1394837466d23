package compensation

import "errors"

var (
	ErrRuleNotFound       = errors.New("compensation rule not found")
	ErrRuleCodeExists     = errors.New("compensation rule code already exists")
	ErrAssignmentNotFound = errors.New("rule assignment not found")
	ErrAssignmentExists   = errors.New("rule assignment already starts on this date")
	ErrAssignmentOverlap  = errors.New("rule assignment overlaps an existing active assignment")
)
