package handler

import "errors"

// ErrNoStore - returns by New if store is nil.
var ErrNoStore = errors.New("handler.Handler: store is nil")
