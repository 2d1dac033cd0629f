package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"leet2git/internal/common"
	"leet2git/internal/common/format"
	"leet2git/internal/common/validate"
	"leet2git/internal/domain/model"
	"leet2git/internal/domain/repository"

	"github.com/google/go-github/v66/github"
)

const DefaultRepoDescription = "My LeetCode solutions synced with Leet2Git"

type GitHubOptions struct {
	// BaseURL overrides the REST API root, e.g. for a test server.
	BaseURL        string
	ProblemBaseURL string
	HTTPClient     *http.Client
}

// GitHubService talks to the hosting provider with the stored credential.
// One client is cached per token and rebuilt when the token changes.
type GitHubService struct {
	store          repository.StorageRepository
	httpClient     *http.Client
	baseURL        *url.URL
	problemBaseURL string

	mu          sync.Mutex
	client      *github.Client
	clientToken string
}

func NewGitHubService(store repository.StorageRepository, opts GitHubOptions) (*GitHubService, error) {
	s := &GitHubService{
		store:          store,
		httpClient:     opts.HTTPClient,
		problemBaseURL: opts.ProblemBaseURL,
	}
	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API url %q: %w", opts.BaseURL, err)
		}
		s.baseURL = u
	}
	return s, nil
}

func (s *GitHubService) clientFor(ctx context.Context) (*github.Client, error) {
	token := s.store.GetGitHubToken(ctx)
	if token == "" {
		return nil, common.ErrNotAuthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil && s.clientToken == token {
		return s.client, nil
	}
	c := github.NewClient(s.httpClient).WithAuthToken(token)
	if s.baseURL != nil {
		c.BaseURL = s.baseURL
	}
	s.client, s.clientToken = c, token
	return c, nil
}

func (s *GitHubService) resetClient() {
	s.mu.Lock()
	s.client, s.clientToken = nil, ""
	s.mu.Unlock()
}

// SetToken stores the credential; the next call builds a fresh client.
func (s *GitHubService) SetToken(ctx context.Context, token string) error {
	if err := s.store.SetGitHubToken(ctx, token); err != nil {
		return common.Errorf("failed to store GitHub token: %w", err)
	}
	s.resetClient()
	return nil
}

// TestConnection checks the stored credential. A credential that fails is
// removed so it is not retried silently.
func (s *GitHubService) TestConnection(ctx context.Context) model.ConnectionStatus {
	client, err := s.clientFor(ctx)
	if err == nil {
		var user *github.User
		user, _, err = client.Users.Get(ctx, "")
		if err == nil {
			log.Printf("INFO: Connected to GitHub as %s", user.GetLogin())
			return model.ConnectionStatus{Success: true, User: user.GetLogin()}
		}
	}

	log.Printf("ERROR: GitHub connection test failed: %v", err)
	if !errors.Is(err, common.ErrNotAuthenticated) {
		if clearErr := s.store.ClearGitHubToken(ctx); clearErr != nil {
			log.Printf("ERROR: Failed to clear GitHub token: %v", clearErr)
		}
		s.resetClient()
	}
	return model.ConnectionStatus{Success: false, Error: common.ErrorMessage(err)}
}

// ListRepositories returns up to 100 repositories, most recently updated first.
func (s *GitHubService) ListRepositories(ctx context.Context) ([]model.Repository, error) {
	client, err := s.clientFor(ctx)
	if err != nil {
		return nil, err
	}
	repos, _, err := client.Repositories.ListByAuthenticatedUser(ctx, &github.RepositoryListByAuthenticatedUserOptions{
		Type:        "all",
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: 100},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repositories: %w", err)
	}

	out := make([]model.Repository, 0, len(repos))
	for _, r := range repos {
		out = append(out, toRepository(r))
	}
	return out, nil
}

// CreateRepository creates an auto-initialised repository so it already has
// a default branch to commit into.
func (s *GitHubService) CreateRepository(ctx context.Context, req model.CreateRepoRequest) (*model.Repository, error) {
	client, err := s.clientFor(ctx)
	if err != nil {
		return nil, err
	}
	description := req.Description
	if description == "" {
		description = DefaultRepoDescription
	}
	created, _, err := client.Repositories.Create(ctx, "", &github.Repository{
		Name:        github.String(req.Name),
		Private:     github.Bool(req.IsPrivate),
		Description: github.String(description),
		AutoInit:    github.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create repository: %w", err)
	}
	repo := toRepository(created)
	return &repo, nil
}

func (s *GitHubService) GetRepository(ctx context.Context, owner, name string) (*model.Repository, error) {
	client, err := s.clientFor(ctx)
	if err != nil {
		return nil, err
	}
	r, resp, err := client.Repositories.Get(ctx, owner, name)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, common.Errorf("repository %s/%s: %w", owner, name, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get repository: %w", err)
	}
	repo := toRepository(r)
	return &repo, nil
}

// SyncSubmission writes the solution file, and the README when enabled, to
// the selected repository. Failures come back in the result, never as an
// error; a README failure does not fail the sync.
func (s *GitHubService) SyncSubmission(ctx context.Context, sub model.Submission) model.SyncResult {
	commitURL, err := s.syncSolution(ctx, &sub)
	if err != nil {
		log.Printf("ERROR: Failed to sync submission %s to GitHub: %v", sub.ID, err)
		return model.SyncResult{Success: false, Error: common.ErrorMessage(err)}
	}
	log.Printf("INFO: File synced successfully: %s", commitURL)
	return model.SyncResult{Success: true, CommitURL: commitURL}
}

func (s *GitHubService) syncSolution(ctx context.Context, sub *model.Submission) (string, error) {
	client, err := s.clientFor(ctx)
	if err != nil {
		return "", err
	}
	settings := s.store.GetSettings(ctx)
	selected := s.store.GetSelectedRepo(ctx)
	if selected == "" {
		return "", errors.New("no repository selected, please select a repository in settings")
	}
	if !validate.FullRepoName(selected) {
		return "", errors.New("invalid repository format")
	}
	owner, repo, _ := strings.Cut(selected, "/")

	folder := format.FolderPath(sub, settings.FolderStructure)
	filePath := format.SolutionPath(sub, settings.FolderStructure)
	message := format.CommitMessage(sub.Problem, sub.Language, settings.CommitMessageTemplate)
	log.Printf("INFO: Syncing to %s/%s - %s", owner, repo, filePath)

	commitURL, err := putFile(ctx, client, owner, repo, filePath, message, []byte(sub.Code))
	if err != nil {
		return "", err
	}

	if settings.IncludeDescription {
		readmePath := folder + "/" + format.ReadmeFileName
		readme := format.Readme(sub, s.problemBaseURL)
		if _, err := putFile(ctx, client, owner, repo, readmePath, format.ReadmeCommitMessage(sub.Problem.ID), []byte(readme)); err != nil {
			log.Printf("WARN: Failed to write README for problem %d: %v", sub.Problem.ID, err)
		}
	}
	return commitURL, nil
}

// putFile creates the file, or updates it when it already exists. Existence
// is decided by the content lookup: a 404 means create, any other failure
// aborts before writing.
func putFile(ctx context.Context, client *github.Client, owner, repo, path, message string, content []byte) (string, error) {
	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: content,
	}

	existing, _, resp, err := client.Repositories.GetContents(ctx, owner, repo, path, nil)
	switch {
	case err == nil && existing != nil:
		opts.SHA = github.String(existing.GetSHA())
	case err != nil && (resp == nil || resp.StatusCode != http.StatusNotFound):
		return "", fmt.Errorf("failed to check %s: %w", path, err)
	}

	var res *github.RepositoryContentResponse
	if opts.SHA != nil {
		res, _, err = client.Repositories.UpdateFile(ctx, owner, repo, path, opts)
	} else {
		res, _, err = client.Repositories.CreateFile(ctx, owner, repo, path, opts)
	}
	if err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return res.Commit.GetHTMLURL(), nil
}

func toRepository(r *github.Repository) model.Repository {
	return model.Repository{
		ID:          r.GetID(),
		Name:        r.GetName(),
		FullName:    r.GetFullName(),
		Private:     r.GetPrivate(),
		HTMLURL:     r.GetHTMLURL(),
		Description: r.GetDescription(),
		Owner:       model.RepositoryOwner{Login: r.GetOwner().GetLogin()},
	}
}
