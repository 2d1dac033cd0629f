package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"leet2git/internal/common"
	"leet2git/internal/common/clock"
	"leet2git/internal/domain/model"
	"leet2git/internal/domain/repository"
)

// Skip reasons reported for submissions that are intentionally not synced.
const (
	ReasonAutoSyncDisabled = "Auto-sync disabled"
	ReasonProblemExcluded  = "Problem excluded"
	ReasonNotConnected     = "GitHub not connected"
	ReasonNoRepository     = "No repository selected"
)

var ErrSubmissionNotFound = errors.New("submission not found")

// Syncer is the part of the remote client the coordinator drives.
type Syncer interface {
	SyncSubmission(ctx context.Context, sub model.Submission) model.SyncResult
}

// SyncCoordinator runs detected submissions through the sync gates and
// records every attempt.
type SyncCoordinator struct {
	store  repository.StorageRepository
	syncer Syncer
	clock  clock.Clock
}

func NewSyncCoordinator(store repository.StorageRepository, syncer Syncer, clk clock.Clock) *SyncCoordinator {
	if clk == nil {
		clk = clock.Real{}
	}
	return &SyncCoordinator{store: store, syncer: syncer, clock: clk}
}

// HandleSubmission persists the submission, then checks in order: auto-sync,
// exclusion, credential, selected repository. The first gate that fails
// stops the pipeline with a reason and no error.
func (c *SyncCoordinator) HandleSubmission(ctx context.Context, sub model.Submission) (model.SyncOutcome, error) {
	log.Printf("INFO: Processing submission %s (%s)", sub.ID, sub.Problem.Title)
	if err := c.store.AddSubmission(ctx, sub); err != nil {
		return model.SyncOutcome{}, common.Errorf("failed to save submission: %w", err)
	}

	settings := c.store.GetSettings(ctx)
	if reason := c.skipReason(ctx, settings, sub.ProblemID); reason != "" {
		log.Printf("INFO: Skipping sync of %s: %s", sub.ID, reason)
		return model.SyncOutcome{Synced: false, Reason: reason}, nil
	}

	result, err := c.syncAndRecord(ctx, sub)
	if err != nil {
		return model.SyncOutcome{}, err
	}
	return model.SyncOutcome{
		Synced:    result.Success,
		CommitURL: result.CommitURL,
		Error:     result.Error,
	}, nil
}

func (c *SyncCoordinator) skipReason(ctx context.Context, settings model.Settings, problemID int) string {
	switch {
	case !settings.AutoSync:
		return ReasonAutoSyncDisabled
	case settings.IsExcluded(problemID):
		return ReasonProblemExcluded
	case c.store.GetGitHubToken(ctx) == "":
		return ReasonNotConnected
	case c.store.GetSelectedRepo(ctx) == "":
		return ReasonNoRepository
	}
	return ""
}

// ManualSync re-syncs a stored submission, bypassing the settings gates. A
// failed attempt is recorded and returned as an error.
func (c *SyncCoordinator) ManualSync(ctx context.Context, submissionID string) (model.SyncResult, error) {
	sub, err := c.store.FindSubmission(ctx, submissionID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return model.SyncResult{}, ErrSubmissionNotFound
		}
		return model.SyncResult{}, err
	}
	log.Printf("INFO: Manual sync requested for %s", sub.Problem.Title)
	return c.syncOrFail(ctx, *sub)
}

// SyncNow syncs the given submission immediately without storing it or
// consulting settings.
func (c *SyncCoordinator) SyncNow(ctx context.Context, sub model.Submission) (model.SyncResult, error) {
	return c.syncOrFail(ctx, sub)
}

func (c *SyncCoordinator) syncOrFail(ctx context.Context, sub model.Submission) (model.SyncResult, error) {
	result, err := c.syncAndRecord(ctx, sub)
	if err != nil {
		return model.SyncResult{}, err
	}
	if !result.Success {
		return result, errors.New(result.Error)
	}
	return result, nil
}

func (c *SyncCoordinator) syncAndRecord(ctx context.Context, sub model.Submission) (model.SyncResult, error) {
	result := c.syncer.SyncSubmission(ctx, sub)

	record := model.SyncRecord{
		ID:           model.NewSyncRecordID(),
		SubmissionID: sub.ID,
		Timestamp:    c.clock.Now().UnixMilli(),
		Status:       model.SyncStatusSuccess,
		CommitURL:    result.CommitURL,
	}
	if !result.Success {
		record.Status = model.SyncStatusFailed
		record.Error = result.Error
		log.Printf("ERROR: Failed to sync %s to GitHub: %s", sub.ID, result.Error)
	} else {
		log.Printf("INFO: Synced %s to GitHub: %s", sub.ID, result.CommitURL)
	}
	if err := c.store.AddSyncRecord(ctx, record); err != nil {
		return result, fmt.Errorf("failed to save sync record: %w", err)
	}
	return result, nil
}
