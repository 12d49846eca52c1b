package tui

import "errors"

// ErrMissingFacade is returned when the visibility facade is not provided.
var ErrMissingFacade = errors.New("tui: visibility facade is required")
