package driver

import "time"

type DriverOpt func(*Driver)

func WithTickLength(tickLength time.Duration) DriverOpt {
	return func(d *Driver) {
		d.tickLength = tickLength
	}
}

func WithQueueSize(size int) DriverOpt {
	return func(d *Driver) {
		d.tasks = make(chan Task, size)
	}
}

func WithStopHook(h StopHook) DriverOpt {
	return func(d *Driver) {
		d.stopHooks = append(d.stopHooks, h)
	}
}
