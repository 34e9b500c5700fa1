package cron

import (
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"garment.GO/config"
)

// StartCron schedules everything from config.CronJobs plus all jobs added via
// Register, then starts the scheduler.
func StartCron() *cron.Cron {
	log := config.GetLogger()
	c := cron.New()
	for name, cronJob := range config.CronJobs {
		jobFunc := cronJob.Job
		if _, err := c.AddFunc(cronJob.Schedule, func() { jobFunc() }); err != nil {
			log.WithFields(logrus.Fields{"job": name, "error": err.Error()}).
				Fatal("failed to schedule cron job")
		}
	}
	for name, j := range Jobs() {
		run := j.Run
		if _, err := c.AddFunc(j.Schedule, func() { run() }); err != nil {
			log.WithFields(logrus.Fields{"job": name, "error": err.Error()}).
				Fatal("failed to schedule cron job")
		}
		log.WithFields(logrus.Fields{"job": name, "schedule": j.Schedule}).
			Info("cron job scheduled")
	}
	c.Start()
	return c
}
