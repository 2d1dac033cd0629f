package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"leet2git/internal/common/security"
	"leet2git/internal/domain/model"
)

type stubDispatcher struct {
	got []model.Message
}

func (s *stubDispatcher) Dispatch(_ context.Context, msg model.Message) model.Response {
	s.got = append(s.got, msg)
	return model.Response{Success: true, Data: json.RawMessage(`{"kind":"` + string(msg.Kind) + `"}`)}
}

type stubStorage struct{}

func (stubStorage) StorageInfo(context.Context) (model.StorageInfo, error) {
	return model.StorageInfo{Sync: model.TierUsage{BytesInUse: 12, Quota: 102400}}, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *security.TokenIssuer, *stubDispatcher) {
	t.Helper()
	issuer := security.NewTokenIssuer([]byte("router-secret"), time.Hour)
	dispatcher := &stubDispatcher{}
	srv := httptest.NewServer(NewRouter(issuer, dispatcher, stubStorage{}))
	t.Cleanup(srv.Close)
	return srv, issuer, dispatcher
}

func post(t *testing.T, url, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url+"/api/v1/messages", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func mustToken(t *testing.T, issuer *security.TokenIssuer, role string) string {
	t.Helper()
	token, err := issuer.GenerateToken("test-client", role)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return token
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t)

	res, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	if res.StatusCode != http.StatusOK || string(body) != "OK" {
		t.Fatalf("unexpected health %d %q", res.StatusCode, body)
	}
}

func TestMessagesRequireToken(t *testing.T) {
	srv, _, dispatcher := newTestServer(t)

	if res := post(t, srv.URL, "", `{"kind":"GET_SETTINGS"}`); res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", res.StatusCode)
	}
	foreign, _ := security.NewTokenIssuer([]byte("other"), time.Hour).GenerateToken("x", model.RolePopup)
	if res := post(t, srv.URL, foreign, `{"kind":"GET_SETTINGS"}`); res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for foreign token, got %d", res.StatusCode)
	}
	if len(dispatcher.got) != 0 {
		t.Fatalf("unauthenticated messages must not be dispatched")
	}
}

func TestMessagesDispatchForPopup(t *testing.T) {
	srv, issuer, dispatcher := newTestServer(t)

	res := post(t, srv.URL, mustToken(t, issuer, model.RolePopup), `{"kind":"GET_SETTINGS"}`)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var resp model.Response
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || string(resp.Data) != `{"kind":"GET_SETTINGS"}` {
		t.Fatalf("unexpected response %+v", resp)
	}
	if len(dispatcher.got) != 1 || dispatcher.got[0].Kind != model.KindGetSettings {
		t.Fatalf("unexpected dispatch %+v", dispatcher.got)
	}
}

func TestWatcherRoleIsLimitedToSubmissions(t *testing.T) {
	srv, issuer, dispatcher := newTestServer(t)
	token := mustToken(t, issuer, model.RoleWatcher)

	if res := post(t, srv.URL, token, `{"kind":"AUTH_GITHUB","payload":"x"}`); res.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", res.StatusCode)
	}
	if res := post(t, srv.URL, token, `{"kind":"SUBMISSION_DETECTED","payload":{}}`); res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if len(dispatcher.got) != 1 {
		t.Fatalf("expected exactly one dispatch, got %d", len(dispatcher.got))
	}
}

func TestMessagesRejectMalformedBody(t *testing.T) {
	srv, issuer, _ := newTestServer(t)
	token := mustToken(t, issuer, model.RolePopup)

	if res := post(t, srv.URL, token, `not json`); res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
	if res := post(t, srv.URL, token, `{}`); res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing kind, got %d", res.StatusCode)
	}
}
