// Command scrape-run creates a scrape run for a project and dispatches its
// jobs from the command line.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"social-tracker-api/config"
	"social-tracker-api/models"
	"social-tracker-api/services"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config.InitDB()

	var (
		projectID    uint64
		sourceIDsRaw string
		postLimit    int
		pattern      string
		noFolders    bool
	)

	flag.Uint64Var(&projectID, "project", 0, "project ID to run for (required)")
	flag.StringVar(&sourceIDsRaw, "source-ids", "", "comma-separated list of source IDs (empty for all sources)")
	flag.IntVar(&postLimit, "limit", 0, "maximum posts per job (0 for provider default)")
	flag.StringVar(&pattern, "folder-pattern", "", "run folder naming pattern, e.g. '{scope} - {date}'")
	flag.BoolVar(&noFolders, "no-folders", false, "skip creating the output folder hierarchy")
	flag.Parse()

	if projectID == 0 {
		log.Fatal("project is required")
	}

	var sourceIDs []uint
	if strings.TrimSpace(sourceIDsRaw) != "" {
		for _, part := range strings.Split(sourceIDsRaw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id64, err := strconv.ParseUint(part, 10, 64)
			if err != nil || id64 == 0 {
				log.Fatalf("invalid source id '%s'", part)
			}
			sourceIDs = append(sourceIDs, uint(id64))
		}
	}

	svc := services.NewScrapeRunService(nil)
	run, err := svc.CreateRun(context.Background(), &services.CreateRunInput{
		ProjectID:         uint(projectID),
		SourceIDs:         sourceIDs,
		PostLimit:         postLimit,
		FolderPattern:     pattern,
		AutoCreateFolders: !noFolders,
	})
	if err != nil {
		if errors.Is(err, services.ErrNoEligibleSources) {
			log.Fatal("no eligible sources in the requested scope")
		}
		log.Fatalf("failed to create scrape run: %v", err)
	}

	fmt.Printf("Run #%d created with %d jobs (status: %s)\n", run.ID, run.TotalJobs, run.Status)
	for _, job := range run.Jobs {
		line := fmt.Sprintf("  job %d: %s/%s %s -> %s", job.ID, job.Platform, job.Service, job.TargetURL, job.Status)
		if job.ErrorMessage != nil {
			line += " (" + *job.ErrorMessage + ")"
		}
		fmt.Println(line)
	}

	if run.Status == models.ScrapeStatusFailed || run.FailedJobs > 0 {
		os.Exit(2)
	}
}
