package workerpool

import "errors"

var (
	// ErrNoWorkers - returns by New when requested number of workers is not positive.
	// Pool without workers would accept jobs and never run them.
	ErrNoWorkers = errors.New("workerpool.Pool: number of workers must be greater than 0")

	// ErrClosed - returns by Submit after pool was closed.
	ErrClosed = errors.New("workerpool.Pool: pool is closed")

	// ErrNilJob - returns by Submit for nil job.
	ErrNilJob = errors.New("workerpool.Pool: job is nil")
)
