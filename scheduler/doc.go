// Package scheduler runs named tasks on cron schedules.
//
// Schedules use the standard five-field cron syntax and the usual
// descriptors (@hourly, @every 10m, ...). Each job is single-flight: a tick
// that fires while the previous run of the same job is still executing is
// skipped and logged. Task errors and panics are logged and never remove the
// job from the schedule.
//
//	s := scheduler.New(scheduler.WithLogger(logger))
//	err := s.ScheduleTask("fetch-news", "*/10 * * * *", func(ctx context.Context) error {
//	    return pipeline.ExecuteAll(ctx, feeds, nil).Err()
//	})
//	s.Start()
//	defer s.Stop(context.Background())
package scheduler
