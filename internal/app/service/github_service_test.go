package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"leet2git/internal/common"
	"leet2git/internal/domain/model"
)

const (
	solutionPath = "Easy/0001-two-sum/solution.py"
	readmePath   = "Easy/0001-two-sum/README.md"
)

func connectedStore(t *testing.T) (context.Context, *fakeGitHub, *GitHubService) {
	t.Helper()
	ctx := context.Background()
	fake, srv := newFakeGitHub(t)
	store := newTestStore(t)
	if err := store.SetGitHubToken(ctx, testToken); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if err := store.SetSelectedRepo(ctx, testRepo); err != nil {
		t.Fatalf("select repo: %v", err)
	}
	return ctx, fake, newTestGitHubService(t, store, srv)
}

func TestSyncSubmissionCreatesThenUpdates(t *testing.T) {
	ctx, fake, gh := connectedStore(t)
	sub := twoSum()

	first := gh.SyncSubmission(ctx, sub)
	if !first.Success || first.CommitURL == "" {
		t.Fatalf("expected successful sync, got %+v", first)
	}
	puts := fake.putsFor(solutionPath)
	if len(puts) != 1 {
		t.Fatalf("expected one solution write, got %d", len(puts))
	}
	if puts[0].SHA != "" {
		t.Fatalf("first write must be a create, got sha %q", puts[0].SHA)
	}
	if puts[0].Content != sub.Code {
		t.Fatalf("unexpected content %q", puts[0].Content)
	}
	if puts[0].Message != "Add 1. Two Sum" {
		t.Fatalf("unexpected commit message %q", puts[0].Message)
	}

	readme := fake.putsFor(readmePath)
	if len(readme) != 1 {
		t.Fatalf("expected README write, got %d", len(readme))
	}
	if readme[0].Message != "Add README for problem 1" {
		t.Fatalf("unexpected README message %q", readme[0].Message)
	}
	if !strings.Contains(readme[0].Content, "# 1. Two Sum") || !strings.Contains(readme[0].Content, "https://leetcode.com/problems/two-sum/") {
		t.Fatalf("unexpected README content %q", readme[0].Content)
	}

	second := gh.SyncSubmission(ctx, sub)
	if !second.Success {
		t.Fatalf("expected second sync to succeed, got %+v", second)
	}
	puts = fake.putsFor(solutionPath)
	if len(puts) != 2 || puts[1].SHA == "" {
		t.Fatalf("second write must be an update carrying the sha, got %+v", puts)
	}
}

func TestSyncSubmissionExistenceCheckFailureAborts(t *testing.T) {
	ctx, fake, gh := connectedStore(t)
	fake.failGet[solutionPath] = http.StatusInternalServerError

	result := gh.SyncSubmission(ctx, twoSum())
	if result.Success {
		t.Fatalf("expected failure")
	}
	if result.Error == "" {
		t.Fatalf("expected error message")
	}
	if len(fake.putsFor("")) != 0 {
		t.Fatalf("no write may follow a failed existence check")
	}
}

func TestSyncSubmissionReadmeFailureIsSwallowed(t *testing.T) {
	ctx, fake, gh := connectedStore(t)
	fake.failPut[readmePath] = http.StatusInternalServerError

	result := gh.SyncSubmission(ctx, twoSum())
	if !result.Success {
		t.Fatalf("README failure must not fail the sync, got %+v", result)
	}
}

func TestSyncSubmissionWriteFailure(t *testing.T) {
	ctx, fake, gh := connectedStore(t)
	fake.failPut[solutionPath] = http.StatusUnprocessableEntity

	result := gh.SyncSubmission(ctx, twoSum())
	if result.Success || result.Error == "" {
		t.Fatalf("expected failed result with message, got %+v", result)
	}
	if len(fake.putsFor(readmePath)) != 0 {
		t.Fatalf("README must not be written after a failed solution write")
	}
}

func TestSyncSubmissionHonoursSettings(t *testing.T) {
	ctx, fake, gh := connectedStore(t)
	patch := json.RawMessage(`{"includeDescription":false,"folderStructure":"category","commitMessageTemplate":"{{title}} in {{language}}"}`)
	if _, err := gh.store.UpdateSettings(ctx, patch); err != nil {
		t.Fatalf("update settings: %v", err)
	}

	if result := gh.SyncSubmission(ctx, twoSum()); !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	puts := fake.putsFor("")
	if len(puts) != 1 {
		t.Fatalf("expected only the solution write, got %+v", puts)
	}
	if puts[0].Path != "Array/0001-two-sum/solution.py" {
		t.Fatalf("unexpected path %q", puts[0].Path)
	}
	if puts[0].Message != "Two Sum in python3" {
		t.Fatalf("unexpected message %q", puts[0].Message)
	}
}

func TestSyncSubmissionRejectsBadRepoFormat(t *testing.T) {
	ctx, _, gh := connectedStore(t)
	if err := gh.store.SetSelectedRepo(ctx, "not-a-full-name"); err != nil {
		t.Fatalf("select repo: %v", err)
	}

	result := gh.SyncSubmission(ctx, twoSum())
	if result.Success || result.Error != "Invalid repository format" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestSyncSubmissionWithoutToken(t *testing.T) {
	_, srv := newFakeGitHub(t)
	gh := newTestGitHubService(t, newTestStore(t), srv)

	result := gh.SyncSubmission(context.Background(), twoSum())
	if result.Success || result.Error != common.ErrorMessage(common.ErrNotAuthenticated) {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestTestConnection(t *testing.T) {
	ctx, _, gh := connectedStore(t)

	status := gh.TestConnection(ctx)
	if !status.Success || status.User != "octo" {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestTestConnectionClearsRejectedToken(t *testing.T) {
	ctx, _, gh := connectedStore(t)
	if err := gh.SetToken(ctx, "ghp_revokedrevokedrevoked0000"); err != nil {
		t.Fatalf("set token: %v", err)
	}

	status := gh.TestConnection(ctx)
	if status.Success || status.Error == "" {
		t.Fatalf("expected failure, got %+v", status)
	}
	if tok := gh.store.GetGitHubToken(ctx); tok != "" {
		t.Fatalf("expected token to be cleared, got %q", tok)
	}
}

func TestListRepositories(t *testing.T) {
	ctx, fake, gh := connectedStore(t)

	repos, err := gh.ListRepositories(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(repos) != 2 || repos[0].FullName != testRepo || repos[0].Owner.Login != "octo" {
		t.Fatalf("unexpected repos %+v", repos)
	}
	q := fake.listArgs[0]
	if !strings.Contains(q, "sort=updated") || !strings.Contains(q, "per_page=100") {
		t.Fatalf("unexpected query %q", q)
	}
}

func TestCreateRepositoryDefaults(t *testing.T) {
	ctx, fake, gh := connectedStore(t)

	repo, err := gh.CreateRepository(ctx, model.CreateRepoRequest{Name: "leetcode", IsPrivate: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if repo.FullName != "octo/leetcode" {
		t.Fatalf("unexpected repo %+v", repo)
	}
	body := fake.created[0]
	if body["auto_init"] != true || body["private"] != true {
		t.Fatalf("expected private auto-initialised repo, got %v", body)
	}
	if body["description"] != DefaultRepoDescription {
		t.Fatalf("expected default description, got %v", body["description"])
	}
}

func TestGetRepository(t *testing.T) {
	ctx, _, gh := connectedStore(t)

	repo, err := gh.GetRepository(ctx, "octo", "solutions")
	if err != nil || repo.FullName != testRepo {
		t.Fatalf("unexpected result %+v, %v", repo, err)
	}
	if _, err := gh.GetRepository(ctx, "octo", "missing"); common.HTTPStatusFromError(err) != http.StatusNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
