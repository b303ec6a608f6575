package core

import "errors"

var (
	ErrProjectNotFound   = errors.New("project not found")
	ErrMemberNotFound    = errors.New("member not found")
	ErrMilestoneNotFound = errors.New("milestone not found")
)
