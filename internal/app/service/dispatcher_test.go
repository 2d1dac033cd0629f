package service

import (
	"context"
	"encoding/json"
	"testing"

	"leet2git/internal/common"
	"leet2git/internal/common/clock"
	"leet2git/internal/domain/model"
	"leet2git/internal/domain/repository"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, repository.StorageRepository, *fakeGitHub) {
	t.Helper()
	fake, srv := newFakeGitHub(t)
	store := newTestStore(t)
	gh := newTestGitHubService(t, store, srv)
	coordinator := NewSyncCoordinator(store, gh, clock.Real{})
	return NewDispatcher(store, gh, coordinator), store, fake
}

func send(t *testing.T, d *Dispatcher, kind model.MessageKind, payload any) model.Response {
	t.Helper()
	msg, err := model.NewMessage(kind, payload)
	if err != nil {
		t.Fatalf("message: %v", err)
	}
	return d.Dispatch(context.Background(), msg)
}

func TestDispatchUnknownKind(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	resp := send(t, d, "NOPE", nil)
	if resp.Success || resp.Error != "Unknown message type: NOPE" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestDispatchSettings(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	resp := send(t, d, model.KindGetSettings, nil)
	var settings model.Settings
	if err := resp.DecodeData(&settings); err != nil || !resp.Success {
		t.Fatalf("unexpected response %+v, %v", resp, err)
	}
	if !settings.AutoSync || settings.FolderStructure != model.FolderByDifficulty {
		t.Fatalf("expected defaults, got %+v", settings)
	}

	resp = send(t, d, model.KindUpdateSettings, map[string]any{"autoSync": false, "theme": "dark"})
	if err := resp.DecodeData(&settings); err != nil || !resp.Success {
		t.Fatalf("unexpected response %+v, %v", resp, err)
	}
	if settings.AutoSync || settings.Theme != model.ThemeDark || !settings.IncludeDescription {
		t.Fatalf("expected shallow merge, got %+v", settings)
	}

	if resp := send(t, d, model.KindUpdateSettings, map[string]any{"excludedProblems": []int{0}}); resp.Success {
		t.Fatalf("expected invalid problem id to be rejected")
	}
	if resp := send(t, d, model.KindUpdateSettings, map[string]any{"folderStructure": "flat"}); resp.Success {
		t.Fatalf("expected unknown folder structure to be rejected")
	}
}

func TestDispatchTestConnectionFailureKeepsStatus(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	resp := send(t, d, model.KindTestConnection, nil)
	want := common.ErrorMessage(common.ErrNotAuthenticated)
	if resp.Success || resp.Error != want {
		t.Fatalf("unexpected response %+v", resp)
	}
	var status model.ConnectionStatus
	if err := resp.DecodeData(&status); err != nil {
		t.Fatalf("expected status data on failure: %v", err)
	}
	if status.Success || status.Error != want {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestDispatchAuth(t *testing.T) {
	d, store, _ := newTestDispatcher(t)
	ctx := context.Background()

	if resp := send(t, d, model.KindAuthGitHub, nil); resp.Error != "Token is required" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp := send(t, d, model.KindAuthGitHub, "short"); resp.Error != "Invalid token format" {
		t.Fatalf("unexpected response %+v", resp)
	}

	resp := send(t, d, model.KindAuthGitHub, "ghp_wrongwrongwrongwrong0000")
	if resp.Success {
		t.Fatalf("expected rejected token to fail")
	}
	if store.GetGitHubToken(ctx) != "" {
		t.Fatalf("rejected token must not stay stored")
	}

	resp = send(t, d, model.KindAuthGitHub, testToken)
	var auth model.AuthResult
	if err := resp.DecodeData(&auth); err != nil || !resp.Success {
		t.Fatalf("unexpected response %+v, %v", resp, err)
	}
	if !auth.Authenticated || auth.User != "octo" {
		t.Fatalf("unexpected auth result %+v", auth)
	}
	if store.GetGitHubToken(ctx) != testToken {
		t.Fatalf("expected token to be stored")
	}

	if resp := send(t, d, model.KindTestConnection, nil); !resp.Success {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestDispatchCreateRepoSelectsIt(t *testing.T) {
	d, store, _ := newTestDispatcher(t)
	ctx := context.Background()
	if err := store.SetGitHubToken(ctx, testToken); err != nil {
		t.Fatalf("set token: %v", err)
	}

	if resp := send(t, d, model.KindCreateRepo, model.CreateRepoRequest{Name: "bad name!"}); resp.Success {
		t.Fatalf("expected invalid name to be rejected")
	}

	resp := send(t, d, model.KindCreateRepo, model.CreateRepoRequest{Name: "leetcode"})
	if !resp.Success {
		t.Fatalf("unexpected response %+v", resp)
	}
	if got := store.GetSelectedRepo(ctx); got != "octo/leetcode" {
		t.Fatalf("expected new repo to be selected, got %q", got)
	}

	resp = send(t, d, model.KindGetRepos, nil)
	var repos []model.Repository
	if err := resp.DecodeData(&repos); err != nil || len(repos) != 2 {
		t.Fatalf("unexpected repos %+v, %v", repos, err)
	}
}

func TestDispatchSubmissionPipeline(t *testing.T) {
	d, store, fake := newTestDispatcher(t)
	connect(t, store)

	resp := send(t, d, model.KindSubmissionDetected, twoSum())
	var outcome model.SyncOutcome
	if err := resp.DecodeData(&outcome); err != nil || !resp.Success {
		t.Fatalf("unexpected response %+v, %v", resp, err)
	}
	if !outcome.Synced || outcome.CommitURL == "" {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if len(fake.putsFor(solutionPath)) != 1 {
		t.Fatalf("expected solution to be written")
	}

	var subs []model.Submission
	if err := send(t, d, model.KindGetSubmissions, nil).DecodeData(&subs); err != nil || len(subs) != 1 {
		t.Fatalf("unexpected submissions %+v, %v", subs, err)
	}
	var history []model.SyncRecord
	if err := send(t, d, model.KindGetSyncHistory, nil).DecodeData(&history); err != nil || len(history) != 1 {
		t.Fatalf("unexpected history %+v, %v", history, err)
	}

	resp = send(t, d, model.KindManualSync, twoSum().ID)
	if !resp.Success {
		t.Fatalf("unexpected manual sync response %+v", resp)
	}
	if resp := send(t, d, model.KindManualSync, "missing"); resp.Error != "Submission not found" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestDispatchRejectsMalformedPayload(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	resp := d.Dispatch(context.Background(), model.Message{Kind: model.KindSubmissionDetected, Payload: json.RawMessage(`"nope"`)})
	if resp.Success || resp.Error == "" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp := send(t, d, model.KindSyncToGitHub, nil); resp.Success {
		t.Fatalf("expected missing payload to fail")
	}
}
