package model

import "encoding/json"

type MessageKind string

const (
	KindSubmissionDetected MessageKind = "SUBMISSION_DETECTED"
	KindSyncToGitHub       MessageKind = "SYNC_TO_GITHUB"
	KindAuthGitHub         MessageKind = "AUTH_GITHUB"
	KindGetRepos           MessageKind = "GET_REPOS"
	KindCreateRepo         MessageKind = "CREATE_REPO"
	KindGetSettings        MessageKind = "GET_SETTINGS"
	KindUpdateSettings     MessageKind = "UPDATE_SETTINGS"
	KindGetSubmissions     MessageKind = "GET_SUBMISSIONS"
	KindGetSyncHistory     MessageKind = "GET_SYNC_HISTORY"
	KindManualSync         MessageKind = "MANUAL_SYNC"
	KindTestConnection     MessageKind = "TEST_CONNECTION"
)

var MessageKinds = []MessageKind{
	KindSubmissionDetected,
	KindSyncToGitHub,
	KindAuthGitHub,
	KindGetRepos,
	KindCreateRepo,
	KindGetSettings,
	KindUpdateSettings,
	KindGetSubmissions,
	KindGetSyncHistory,
	KindManualSync,
	KindTestConnection,
}

type Message struct {
	Kind    MessageKind     `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// NewMessage marshals payload into a message. A nil payload is omitted.
func NewMessage(kind MessageKind, payload any) (Message, error) {
	msg := Message{Kind: kind}
	if payload == nil {
		return msg, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	msg.Payload = raw
	return msg, nil
}

// DecodeData unmarshals the response data into v.
func (r Response) DecodeData(v any) error {
	if len(r.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}

type CreateRepoRequest struct {
	Name        string `json:"name"`
	IsPrivate   bool   `json:"isPrivate"`
	Description string `json:"description,omitempty"`
}

type AuthResult struct {
	Authenticated bool   `json:"authenticated"`
	User          string `json:"user,omitempty"`
}

type ConnectionStatus struct {
	Success bool   `json:"success"`
	User    string `json:"user,omitempty"`
	Error   string `json:"error,omitempty"`
}
