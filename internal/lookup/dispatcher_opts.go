package lookup

import "time"

type DispatcherOpt func(*Dispatcher)

func WithTimeout(timeout time.Duration) DispatcherOpt {
	return func(d *Dispatcher) {
		d.timeout = timeout
	}
}
