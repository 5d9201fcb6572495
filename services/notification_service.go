package services

import (
	"fmt"
	"log"
	"os"
	"strings"

	"social-tracker-api/config"
	"social-tracker-api/models"
)

// NotificationService emails a run summary the first time a run reaches a
// terminal status. Disabled when SMTP or NOTIFY_EMAILS is not configured.
type NotificationService struct {
	recipients []string
}

func NewNotificationService() *NotificationService {
	var recipients []string
	for _, raw := range strings.Split(os.Getenv("NOTIFY_EMAILS"), ",") {
		if addr := strings.TrimSpace(raw); addr != "" {
			recipients = append(recipients, addr)
		}
	}
	return &NotificationService{recipients: recipients}
}

func (s *NotificationService) NotifyRunFinished(run *models.ScrapeRun) {
	if run == nil || len(s.recipients) == 0 || !config.MailConfigured() {
		return
	}

	subject := fmt.Sprintf("Scrape run #%d finished: %s", run.ID, run.Status)
	html := fmt.Sprintf(
		"<p>Scrape run <b>#%d</b> (project %d) finished with status <b>%s</b>.</p>"+
			"<p>Jobs: %d total, %d successful, %d failed.</p>",
		run.ID, run.ProjectID, run.Status,
		run.TotalJobs, run.SuccessfulJobs, run.FailedJobs,
	)

	if err := config.SendMail(s.recipients, subject, html); err != nil {
		log.Printf("failed to send run notification for run %d: %v", run.ID, err)
	}
}
