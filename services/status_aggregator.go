package services

import (
	"time"

	"social-tracker-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AggregateStatus maps the statuses of a run's jobs to the run status.
// Precedence: any processing wins, then any pending, then the uniform
// terminal states. A mixed terminal set (some completed, some
// failed/cancelled) aggregates to completed: partial success counts as
// success. That rule is surprising but matches the established behavior
// consumers rely on; change it deliberately, not in passing.
func AggregateStatus(statuses []string) string {
	if len(statuses) == 0 {
		return models.ScrapeStatusPending
	}

	counts := make(map[string]int, 5)
	for _, status := range statuses {
		counts[status]++
	}

	switch {
	case counts[models.ScrapeStatusProcessing] > 0:
		return models.ScrapeStatusProcessing
	case counts[models.ScrapeStatusPending] > 0:
		return models.ScrapeStatusPending
	case counts[models.ScrapeStatusCompleted] == len(statuses):
		return models.ScrapeStatusCompleted
	case counts[models.ScrapeStatusFailed] == len(statuses):
		return models.ScrapeStatusFailed
	case counts[models.ScrapeStatusCancelled] == len(statuses):
		return models.ScrapeStatusCancelled
	default:
		return models.ScrapeStatusCompleted
	}
}

// lockRun fetches the run row with an exclusive row lock so concurrent
// callbacks cannot compute aggregates from a stale snapshot. SQLite (used in
// tests) serializes writers on its own and rejects FOR UPDATE syntax.
func lockRun(tx *gorm.DB, runID uint) (*models.ScrapeRun, error) {
	var run models.ScrapeRun
	query := tx.Model(&models.ScrapeRun{})
	if tx.Dialector.Name() == "mysql" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.Where("id = ?", runID).First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// reaggregateRun recomputes the run's status and job counters from scratch
// off the current job rows. Must be called inside a transaction holding the
// run lock. Reports whether this call moved the run into a terminal state.
func reaggregateRun(tx *gorm.DB, run *models.ScrapeRun) (bool, error) {
	var jobs []models.ScrapeJob
	if err := tx.Select("status").Where("run_id = ?", run.ID).Find(&jobs).Error; err != nil {
		return false, err
	}

	statuses := make([]string, 0, len(jobs))
	completed, successful, failed := 0, 0, 0
	for _, job := range jobs {
		statuses = append(statuses, job.Status)
		if models.IsTerminalStatus(job.Status) {
			completed++
		}
		switch job.Status {
		case models.ScrapeStatusCompleted:
			successful++
		case models.ScrapeStatusFailed:
			failed++
		}
	}

	status := AggregateStatus(statuses)

	updates := map[string]interface{}{
		"status":          status,
		"completed_jobs":  completed,
		"successful_jobs": successful,
		"failed_jobs":     failed,
	}

	now := time.Now()
	if run.StartedAt == nil && status != models.ScrapeStatusPending {
		updates["started_at"] = now
		run.StartedAt = &now
	}

	becameTerminal := false
	if models.IsTerminalStatus(status) && run.CompletedAt == nil {
		// completed_at is written exactly once, on the first terminal
		// transition; a later retry reopens the status only.
		updates["completed_at"] = now
		run.CompletedAt = &now
		becameTerminal = true
	}

	if err := tx.Model(&models.ScrapeRun{}).Where("id = ?", run.ID).Updates(updates).Error; err != nil {
		return false, err
	}

	run.Status = status
	run.CompletedJobs = completed
	run.SuccessfulJobs = successful
	run.FailedJobs = failed
	return becameTerminal, nil
}
