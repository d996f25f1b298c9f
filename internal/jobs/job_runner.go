package jobs

import (
	"librental-backend/internal/config"
	"librental-backend/internal/logger"
	"librental-backend/internal/repository/postgres"
	"librental-backend/internal/service"
)

// JobRunner coordinates the maintenance jobs. There is no scheduler;
// jobs run one-shot from the maintenance binary or an operator action.
type JobRunner struct {
	store    *postgres.Store
	services *Services
	config   *config.Config
}

// Services holds the service dependencies needed by jobs
type Services struct {
	Email service.EmailService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(store *postgres.Store, services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		store:    store,
		services: services,
		config:   cfg,
	}
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllMaintenanceJobs runs every maintenance job once, in order.
func (jr *JobRunner) RunAllMaintenanceJobs() {
	jr.MarkOverdueRentals()
	jr.SendOverdueReminders()
	jr.SendDueSoonReminders()
}
