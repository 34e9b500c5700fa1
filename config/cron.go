package config

// Map of job names to job functions
type CronJob struct {
	Schedule string
	Job      func(...string)
}

// CronJobs holds statically configured jobs. Packages can also register jobs
// at init time through cron.Register; both sets are merged by the scheduler.
var CronJobs = map[string]CronJob{
	// Add static jobs here
}
