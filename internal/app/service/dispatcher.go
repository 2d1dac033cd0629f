package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"leet2git/internal/common"
	"leet2git/internal/common/validate"
	"leet2git/internal/domain/model"
	"leet2git/internal/domain/repository"
)

// HandlerFunc serves one message kind. The returned value becomes the
// response data.
type HandlerFunc func(ctx context.Context, payload json.RawMessage) (any, error)

// failureData is a handler failure that still carries response data.
type failureData struct {
	err  error
	data any
}

func (f *failureData) Error() string { return f.err.Error() }
func (f *failureData) Unwrap() error { return f.err }

// Dispatcher is the single entry point for channel messages.
type Dispatcher struct {
	store       repository.StorageRepository
	github      *GitHubService
	coordinator *SyncCoordinator
	handlers    map[model.MessageKind]HandlerFunc
}

func NewDispatcher(store repository.StorageRepository, github *GitHubService, coordinator *SyncCoordinator) *Dispatcher {
	d := &Dispatcher{
		store:       store,
		github:      github,
		coordinator: coordinator,
	}
	d.handlers = map[model.MessageKind]HandlerFunc{
		model.KindSubmissionDetected: d.handleSubmission,
		model.KindSyncToGitHub:       d.handleSyncToGitHub,
		model.KindAuthGitHub:         d.handleAuth,
		model.KindTestConnection:     d.handleTestConnection,
		model.KindGetRepos:           d.handleGetRepos,
		model.KindCreateRepo:         d.handleCreateRepo,
		model.KindGetSettings:        d.handleGetSettings,
		model.KindUpdateSettings:     d.handleUpdateSettings,
		model.KindGetSubmissions:     d.handleGetSubmissions,
		model.KindGetSyncHistory:     d.handleGetSyncHistory,
		model.KindManualSync:         d.handleManualSync,
	}
	return d
}

// Dispatch always yields exactly one response. Handler errors are flattened
// into the error string; a failureData also keeps its data.
func (d *Dispatcher) Dispatch(ctx context.Context, msg model.Message) model.Response {
	log.Printf("INFO: Received message %s", msg.Kind)
	handler, ok := d.handlers[msg.Kind]
	if !ok {
		return model.Response{Success: false, Error: fmt.Sprintf("Unknown message type: %s", msg.Kind)}
	}

	data, err := handler(ctx, msg.Payload)
	if err != nil {
		log.Printf("ERROR: Handling %s failed: %v", msg.Kind, err)
		resp := model.Response{Success: false, Error: common.ErrorMessage(err)}
		var failure *failureData
		if errors.As(err, &failure) {
			if raw, mErr := json.Marshal(failure.data); mErr == nil {
				resp.Data = raw
			}
		}
		return resp
	}
	if data == nil {
		return model.Response{Success: true}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		log.Printf("ERROR: Encoding %s response failed: %v", msg.Kind, err)
		return model.Response{Success: false, Error: err.Error()}
	}
	return model.Response{Success: true, Data: raw}
}

func decodePayload(payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return common.Errorf("missing payload: %w", common.ErrBadRequest)
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return common.Errorf("invalid payload: %v: %w", err, common.ErrBadRequest)
	}
	return nil
}

func (d *Dispatcher) handleSubmission(ctx context.Context, payload json.RawMessage) (any, error) {
	var sub model.Submission
	if err := decodePayload(payload, &sub); err != nil {
		return nil, err
	}
	return d.coordinator.HandleSubmission(ctx, sub)
}

func (d *Dispatcher) handleSyncToGitHub(ctx context.Context, payload json.RawMessage) (any, error) {
	var sub model.Submission
	if err := decodePayload(payload, &sub); err != nil {
		return nil, err
	}
	return d.coordinator.SyncNow(ctx, sub)
}

func (d *Dispatcher) handleAuth(ctx context.Context, payload json.RawMessage) (any, error) {
	var token string
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &token); err != nil {
			return nil, common.Errorf("token must be a string: %w", common.ErrBadRequest)
		}
	}
	if token == "" {
		return nil, errors.New("token is required")
	}
	if !validate.Token(token) {
		return nil, errors.New("invalid token format")
	}

	if err := d.github.SetToken(ctx, token); err != nil {
		return nil, err
	}
	status := d.github.TestConnection(ctx)
	if !status.Success {
		if status.Error == "" {
			return nil, errors.New("authentication failed")
		}
		return nil, errors.New(status.Error)
	}
	log.Printf("INFO: GitHub authentication successful, user: %s", status.User)
	return model.AuthResult{Authenticated: true, User: status.User}, nil
}

func (d *Dispatcher) handleTestConnection(ctx context.Context, _ json.RawMessage) (any, error) {
	status := d.github.TestConnection(ctx)
	if !status.Success {
		return nil, &failureData{err: errors.New(status.Error), data: status}
	}
	return status, nil
}

func (d *Dispatcher) handleGetRepos(ctx context.Context, _ json.RawMessage) (any, error) {
	repos, err := d.github.ListRepositories(ctx)
	if err != nil {
		return nil, err
	}
	log.Printf("INFO: Found %d repositories", len(repos))
	return repos, nil
}

func (d *Dispatcher) handleCreateRepo(ctx context.Context, payload json.RawMessage) (any, error) {
	var req model.CreateRepoRequest
	if err := decodePayload(payload, &req); err != nil {
		return nil, err
	}
	if !validate.RepoName(req.Name) {
		return nil, common.Errorf("invalid repository name %q: %w", req.Name, common.ErrValidation)
	}
	repo, err := d.github.CreateRepository(ctx, req)
	if err != nil {
		return nil, err
	}
	log.Printf("INFO: Repository created: %s", repo.FullName)
	if err := d.store.SetSelectedRepo(ctx, repo.FullName); err != nil {
		return nil, common.Errorf("failed to select new repository: %w", err)
	}
	return repo, nil
}

func (d *Dispatcher) handleGetSettings(ctx context.Context, _ json.RawMessage) (any, error) {
	return d.store.GetSettings(ctx), nil
}

func (d *Dispatcher) handleUpdateSettings(ctx context.Context, payload json.RawMessage) (any, error) {
	var patch struct {
		ExcludedProblems []int `json:"excludedProblems"`
	}
	if err := decodePayload(payload, &patch); err != nil {
		return nil, err
	}
	for _, id := range patch.ExcludedProblems {
		if !validate.ProblemID(id) {
			return nil, common.Errorf("invalid problem id %d: %w", id, common.ErrValidation)
		}
	}
	settings, err := d.store.UpdateSettings(ctx, payload)
	if err != nil {
		return nil, err
	}
	log.Printf("INFO: Settings updated: %+v", settings)
	return settings, nil
}

func (d *Dispatcher) handleGetSubmissions(ctx context.Context, _ json.RawMessage) (any, error) {
	return d.store.GetSubmissions(ctx), nil
}

func (d *Dispatcher) handleGetSyncHistory(ctx context.Context, _ json.RawMessage) (any, error) {
	return d.store.GetSyncHistory(ctx), nil
}

func (d *Dispatcher) handleManualSync(ctx context.Context, payload json.RawMessage) (any, error) {
	var id string
	if err := decodePayload(payload, &id); err != nil {
		return nil, err
	}
	return d.coordinator.ManualSync(ctx, id)
}
