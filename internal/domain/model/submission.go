package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SubmissionStatus string

const (
	StatusAccepted SubmissionStatus = "Accepted"
	StatusFailed   SubmissionStatus = "Failed"

	StatUnavailable = "N/A"
)

type Submission struct {
	ID        string           `json:"id"`
	ProblemID int              `json:"problemId"`
	Problem   Problem          `json:"problem"` // Snapshot taken at capture time
	Code      string           `json:"code"`
	Language  string           `json:"language"`
	Timestamp int64            `json:"timestamp"` // Epoch milliseconds
	Runtime   string           `json:"runtime"`
	Memory    string           `json:"memory"`
	Status    SubmissionStatus `json:"status"`
}

// NewSubmissionID returns "<epoch-ms>_<random suffix>".
func NewSubmissionID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d_%s", now.UnixMilli(), suffix)
}

// EffectiveProblemID prefers the submission's own id and falls back to the
// embedded problem's.
func (s *Submission) EffectiveProblemID() int {
	if s.ProblemID != 0 {
		return s.ProblemID
	}
	return s.Problem.ID
}
