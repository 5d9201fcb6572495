package config

import "os"

// ApifyToken returns the API token used for Apify actor runs.
func ApifyToken() string {
	return os.Getenv("APIFY_TOKEN")
}

// BrightDataToken returns the API token used for BrightData dataset triggers.
func BrightDataToken() string {
	return os.Getenv("BRIGHTDATA_TOKEN")
}

// WebhookBaseURL returns the externally reachable base URL providers call
// back on, e.g. "https://tracker.example.com".
func WebhookBaseURL() string {
	base := os.Getenv("WEBHOOK_BASE_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	return base
}
