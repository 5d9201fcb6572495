package services

import (
	"errors"
	"fmt"
)

var (
	ErrNoEligibleSources = errors.New("no eligible sources for run")
	ErrRunNotFound       = errors.New("scrape run not found")
	ErrJobNotFound       = errors.New("scrape job not found")
	ErrJobNotRetryable   = errors.New("scrape job is not in a retryable state")
	ErrRunNotCancellable = errors.New("scrape run is already in a terminal state")
	ErrNoProviderConfig  = errors.New("no active provider configuration")
	ErrUnmatchedCallback = errors.New("no job matches the callback request id")
)

// DispatchError indicates the provider rejected a dispatch request or the
// request never reached it. It is local to a single job.
type DispatchError struct {
	Provider   string
	StatusCode int
	Body       string
	Err        error
}

func (e *DispatchError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s dispatch error: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s dispatch error: status %d body %s", e.Provider, e.StatusCode, e.Body)
}

func (e *DispatchError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// FolderCreationError indicates the output folder hierarchy could not be
// built. It is fatal to run creation.
type FolderCreationError struct {
	RunID      uint
	FolderType string
	Err        error
}

func (e *FolderCreationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("failed to create %s folder for run %d: %v", e.FolderType, e.RunID, e.Err)
}

func (e *FolderCreationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
