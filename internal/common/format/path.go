package format

import (
	"fmt"
	"path"
	"strings"
	"time"

	"leet2git/internal/domain/model"
)

const (
	SolutionFileName = "solution"
	ReadmeFileName   = "README.md"
	uncategorized    = "Uncategorized"
)

// ProblemFolder is "<0001>-<slug>" for the submission's problem.
func ProblemFolder(sub *model.Submission) string {
	return ProblemID(sub.EffectiveProblemID()) + "-" + ProblemTitle(sub.Problem.Title)
}

// FolderPath resolves the directory a submission is written to under the
// given folder structure strategy.
func FolderPath(sub *model.Submission, structure model.FolderStructure) string {
	folder := ProblemFolder(sub)
	switch structure {
	case model.FolderByDifficulty:
		return path.Join(string(sub.Problem.Difficulty), folder)
	case model.FolderByCategory:
		category := uncategorized
		if len(sub.Problem.Tags) > 0 && strings.TrimSpace(sub.Problem.Tags[0]) != "" {
			category = sub.Problem.Tags[0]
		}
		return path.Join(category, folder)
	case model.FolderByDate:
		t := time.UnixMilli(sub.Timestamp)
		return path.Join(fmt.Sprintf("%d", t.Year()), fmt.Sprintf("%02d", int(t.Month())), folder)
	default:
		return folder
	}
}

// SolutionPath is FolderPath plus "solution.<ext>".
func SolutionPath(sub *model.Submission, structure model.FolderStructure) string {
	return path.Join(FolderPath(sub, structure), SolutionFileName+"."+FileExtension(sub.Language))
}
