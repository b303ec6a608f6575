package budget

import "errors"

var (
	ErrNoWageConfig       = errors.New("no wage configuration for member on project")
	ErrWageConfigNotFound = errors.New("wage configuration not found")
)
