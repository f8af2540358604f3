package domain

import "errors"

var (
	ErrQueryRequired   = errors.New("query is required")
	ErrProductNotFound = errors.New("product not found")
	ErrUnknownSource   = errors.New("unknown source")
	ErrStatsDisabled   = errors.New("search stats are disabled")
)
