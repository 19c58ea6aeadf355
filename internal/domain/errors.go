package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrNoMatch      = errors.New("no market found")
	ErrRateLimited  = errors.New("rate limited")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadResponse  = errors.New("malformed response")
)
