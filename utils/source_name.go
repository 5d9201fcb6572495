package utils

import (
	"net/url"
	"strings"
)

// SourceDisplayName derives a human-readable name for a job's output folder
// from its target URL, e.g. https://www.instagram.com/nasa/ -> "nasa".
// When no username can be extracted it falls back to
// "<Platform> Profile - Unknown Source".
func SourceDisplayName(platform, rawURL string) string {
	if name := extractUsername(rawURL); name != "" {
		return name
	}
	return TitleCase(platform) + " Profile - Unknown Source"
}

func extractUsername(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Host == "" {
		return ""
	}

	for _, segment := range strings.Split(parsed.Path, "/") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		// YouTube-style path prefixes carry no account name themselves.
		switch strings.ToLower(segment) {
		case "channel", "c", "user", "profile":
			continue
		}
		return strings.TrimPrefix(segment, "@")
	}
	return ""
}

// TitleCase upper-cases the first letter of a single lowercase word.
func TitleCase(word string) string {
	if word == "" {
		return ""
	}
	return strings.ToUpper(word[:1]) + word[1:]
}
