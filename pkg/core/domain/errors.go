package domain

import "errors"

var (
	ErrLinkNotFound    = errors.New("link not found")
	ErrCodeExists      = errors.New("custom code already exists")
	ErrInvalidURL      = errors.New("original URL is required")
	ErrInvalidLookback = errors.New("lookback must be a positive number of seconds")
)
