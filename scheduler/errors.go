package scheduler

import "errors"

var (
	// ErrJobExists is returned when a task name is already scheduled.
	ErrJobExists = errors.New("job already exists")

	// ErrJobNotFound is returned when cancelling a task that is not scheduled.
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidCronExpression is returned when a schedule cannot be parsed.
	ErrInvalidCronExpression = errors.New("invalid cron expression")

	// ErrTaskRequired is returned when scheduling a nil task.
	ErrTaskRequired = errors.New("task required")
)
