package store

import "errors"

var (
	errNilValue        = errors.New("nil value")
	errUnknownSnapshot = errors.New("history record references an unknown snapshot")
)
