package driver

import "errors"

// ErrNotRunning is returned when work is posted to a driver that has stopped.
var ErrNotRunning = errors.New("driver is not running")
