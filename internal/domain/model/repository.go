package model

type RepositoryOwner struct {
	Login string `json:"login"`
}

// Repository is the subset of the hosting provider's repository we surface.
type Repository struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	FullName    string          `json:"full_name"`
	Private     bool            `json:"private"`
	HTMLURL     string          `json:"html_url"`
	Description string          `json:"description,omitempty"`
	Owner       RepositoryOwner `json:"owner"`
}

type TierUsage struct {
	BytesInUse int64 `json:"bytesInUse"`
	Quota      int64 `json:"quota"`
}

type StorageInfo struct {
	Sync  TierUsage `json:"sync"`
	Local TierUsage `json:"local"`
}
