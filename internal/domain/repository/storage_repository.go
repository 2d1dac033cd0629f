package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"leet2git/internal/common"
	"leet2git/internal/common/security"
	"leet2git/internal/domain/model"
)

// Keys and their tiers. Settings, credential and selected repository live in
// the small synced tier; the two histories live in the larger local tier.
const (
	KeySettings     = "settings"
	KeyGitHubToken  = "githubToken"
	KeySelectedRepo = "selectedRepo"
	KeySubmissions  = "submissions"
	KeySyncHistory  = "syncHistory"
	KeyKeepAlive    = "keepAlive"

	MaxSubmissions = 100
	MaxSyncRecords = 50

	SyncQuotaBytes        = 102400
	SyncQuotaBytesPerItem = 8192
	LocalQuotaBytes       = 10485760
)

type StorageRepository interface {
	GetSettings(ctx context.Context) model.Settings
	SaveSettings(ctx context.Context, settings model.Settings) error
	UpdateSettings(ctx context.Context, patch json.RawMessage) (model.Settings, error)

	GetGitHubToken(ctx context.Context) string
	SetGitHubToken(ctx context.Context, token string) error
	ClearGitHubToken(ctx context.Context) error

	GetSelectedRepo(ctx context.Context) string
	SetSelectedRepo(ctx context.Context, fullName string) error

	GetSubmissions(ctx context.Context) []model.Submission
	FindSubmission(ctx context.Context, id string) (*model.Submission, error)
	AddSubmission(ctx context.Context, sub model.Submission) error

	GetSyncHistory(ctx context.Context) []model.SyncRecord
	AddSyncRecord(ctx context.Context, record model.SyncRecord) error

	TouchKeepAlive(ctx context.Context, now time.Time) error
	StorageInfo(ctx context.Context) (model.StorageInfo, error)
	Clear(ctx context.Context) error
}

type kvStorageRepository struct {
	syncTier  KVTier
	localTier KVTier
	sealer    *security.Sealer
}

// NewStorageRepository wires the two tiers. The credential is sealed with
// sealer before it is written.
func NewStorageRepository(syncTier, localTier KVTier, sealer *security.Sealer) StorageRepository {
	return &kvStorageRepository{syncTier: syncTier, localTier: localTier, sealer: sealer}
}

// read resolves failures to "absent": a missing key and a broken backend look
// the same to callers, the latter is logged.
func (r *kvStorageRepository) read(ctx context.Context, tier KVTier, key string, v any) bool {
	raw, err := tier.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			log.Printf("ERROR: Failed to get %s from storage: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		log.Printf("ERROR: Failed to decode %s from storage: %v", key, err)
		return false
	}
	return true
}

func (r *kvStorageRepository) write(ctx context.Context, tier KVTier, key string, v any, perItemQuota int) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if perItemQuota > 0 && len(key)+len(raw) > perItemQuota {
		return fmt.Errorf("%s is %d bytes: %w", key, len(key)+len(raw), common.ErrQuotaExceeded)
	}
	if err := tier.Set(ctx, key, raw); err != nil {
		log.Printf("ERROR: Failed to set %s in storage: %v", key, err)
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}

func (r *kvStorageRepository) writeSync(ctx context.Context, key string, v any) error {
	return r.write(ctx, r.syncTier, key, v, SyncQuotaBytesPerItem)
}

func (r *kvStorageRepository) writeLocal(ctx context.Context, key string, v any) error {
	return r.write(ctx, r.localTier, key, v, 0)
}

func (r *kvStorageRepository) GetSettings(ctx context.Context) model.Settings {
	settings := model.DefaultSettings()
	var stored json.RawMessage
	if !r.read(ctx, r.syncTier, KeySettings, &stored) {
		return settings
	}
	// Merging over defaults fills any field an older record lacks.
	merged, err := settings.Merge(stored)
	if err != nil {
		log.Printf("ERROR: Stored settings are invalid, using defaults: %v", err)
		return model.DefaultSettings()
	}
	return merged
}

func (r *kvStorageRepository) SaveSettings(ctx context.Context, settings model.Settings) error {
	if settings.ExcludedProblems == nil {
		settings.ExcludedProblems = []int{}
	}
	return r.writeSync(ctx, KeySettings, settings)
}

func (r *kvStorageRepository) UpdateSettings(ctx context.Context, patch json.RawMessage) (model.Settings, error) {
	current := r.GetSettings(ctx)
	updated, err := current.Merge(patch)
	if err != nil {
		return current, fmt.Errorf("%v: %w", err, common.ErrValidation)
	}
	if err := updated.Validate(); err != nil {
		return current, fmt.Errorf("%v: %w", err, common.ErrValidation)
	}
	if err := r.SaveSettings(ctx, updated); err != nil {
		return current, err
	}
	return updated, nil
}

func (r *kvStorageRepository) GetGitHubToken(ctx context.Context) string {
	var sealed string
	if !r.read(ctx, r.syncTier, KeyGitHubToken, &sealed) || sealed == "" {
		return ""
	}
	token, err := r.sealer.Open(sealed)
	if err != nil {
		log.Printf("ERROR: Stored GitHub token could not be opened: %v", err)
		return ""
	}
	return token
}

func (r *kvStorageRepository) SetGitHubToken(ctx context.Context, token string) error {
	sealed, err := r.sealer.Seal(token)
	if err != nil {
		return fmt.Errorf("seal GitHub token: %w", err)
	}
	return r.writeSync(ctx, KeyGitHubToken, sealed)
}

func (r *kvStorageRepository) ClearGitHubToken(ctx context.Context) error {
	if err := r.syncTier.Delete(ctx, KeyGitHubToken); err != nil {
		return fmt.Errorf("clear GitHub token: %w", err)
	}
	return nil
}

func (r *kvStorageRepository) GetSelectedRepo(ctx context.Context) string {
	var repo string
	r.read(ctx, r.syncTier, KeySelectedRepo, &repo)
	return repo
}

func (r *kvStorageRepository) SetSelectedRepo(ctx context.Context, fullName string) error {
	return r.writeSync(ctx, KeySelectedRepo, fullName)
}

func (r *kvStorageRepository) GetSubmissions(ctx context.Context) []model.Submission {
	subs := []model.Submission{}
	r.read(ctx, r.localTier, KeySubmissions, &subs)
	return subs
}

func (r *kvStorageRepository) FindSubmission(ctx context.Context, id string) (*model.Submission, error) {
	for _, sub := range r.GetSubmissions(ctx) {
		if sub.ID == id {
			return &sub, nil
		}
	}
	return nil, common.ErrNotFound
}

// AddSubmission is a whole-collection read-modify-write. Concurrent appends
// can lose one another's entries.
func (r *kvStorageRepository) AddSubmission(ctx context.Context, sub model.Submission) error {
	subs := appendBounded(r.GetSubmissions(ctx), sub, MaxSubmissions)
	return r.writeLocal(ctx, KeySubmissions, subs)
}

func (r *kvStorageRepository) GetSyncHistory(ctx context.Context) []model.SyncRecord {
	history := []model.SyncRecord{}
	r.read(ctx, r.localTier, KeySyncHistory, &history)
	return history
}

func (r *kvStorageRepository) AddSyncRecord(ctx context.Context, record model.SyncRecord) error {
	history := appendBounded(r.GetSyncHistory(ctx), record, MaxSyncRecords)
	return r.writeLocal(ctx, KeySyncHistory, history)
}

func (r *kvStorageRepository) TouchKeepAlive(ctx context.Context, now time.Time) error {
	return r.writeLocal(ctx, KeyKeepAlive, now.UnixMilli())
}

func (r *kvStorageRepository) StorageInfo(ctx context.Context) (model.StorageInfo, error) {
	syncBytes, err := r.syncTier.BytesInUse(ctx)
	if err != nil {
		return model.StorageInfo{}, fmt.Errorf("sync tier usage: %w", err)
	}
	localBytes, err := r.localTier.BytesInUse(ctx)
	if err != nil {
		return model.StorageInfo{}, fmt.Errorf("local tier usage: %w", err)
	}
	return model.StorageInfo{
		Sync:  model.TierUsage{BytesInUse: syncBytes, Quota: SyncQuotaBytes},
		Local: model.TierUsage{BytesInUse: localBytes, Quota: LocalQuotaBytes},
	}, nil
}

func (r *kvStorageRepository) Clear(ctx context.Context) error {
	if err := r.syncTier.Clear(ctx); err != nil {
		log.Printf("ERROR: Failed to clear sync storage: %v", err)
		return err
	}
	if err := r.localTier.Clear(ctx); err != nil {
		log.Printf("ERROR: Failed to clear local storage: %v", err)
		return err
	}
	return nil
}

// appendBounded pushes v and drops the oldest entries beyond limit.
func appendBounded[T any](items []T, v T, limit int) []T {
	items = append(items, v)
	if over := len(items) - limit; over > 0 {
		items = items[over:]
	}
	return items
}
