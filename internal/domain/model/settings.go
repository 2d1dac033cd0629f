package model

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

type FolderStructure string
type Theme string

const (
	FolderByDifficulty FolderStructure = "difficulty"
	FolderByCategory   FolderStructure = "category"
	FolderByDate       FolderStructure = "date"

	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"

	DefaultCommitMessageTemplate = "Add {{problemId}}. {{title}}"
)

var TemplateVariables = []string{"{{problemId}}", "{{title}}", "{{difficulty}}", "{{language}}"}

type Settings struct {
	AutoSync              bool            `json:"autoSync"`
	FolderStructure       FolderStructure `json:"folderStructure"`
	IncludeDescription    bool            `json:"includeDescription"`
	CommitMessageTemplate string          `json:"commitMessageTemplate"`
	ExcludedProblems      []int           `json:"excludedProblems"`
	Theme                 Theme           `json:"theme"`
}

func DefaultSettings() Settings {
	return Settings{
		AutoSync:              true,
		FolderStructure:       FolderByDifficulty,
		IncludeDescription:    true,
		CommitMessageTemplate: DefaultCommitMessageTemplate,
		ExcludedProblems:      []int{},
		Theme:                 ThemeLight,
	}
}

// Merge applies a partial JSON object on top of s. Only the fields named in
// patch change; slices are replaced, not appended to.
func (s Settings) Merge(patch json.RawMessage) (Settings, error) {
	merged := s
	merged.ExcludedProblems = slices.Clone(s.ExcludedProblems)
	if len(patch) == 0 {
		return merged, nil
	}
	if err := json.Unmarshal(patch, &merged); err != nil {
		return s, fmt.Errorf("invalid settings update: %w", err)
	}
	if merged.ExcludedProblems == nil {
		merged.ExcludedProblems = []int{}
	}
	return merged, nil
}

func (s Settings) Validate() error {
	switch s.FolderStructure {
	case FolderByDifficulty, FolderByCategory, FolderByDate:
	default:
		return fmt.Errorf("unknown folder structure %q", s.FolderStructure)
	}
	switch s.Theme {
	case ThemeLight, ThemeDark:
	default:
		return fmt.Errorf("unknown theme %q", s.Theme)
	}
	if !slices.ContainsFunc(TemplateVariables, func(v string) bool {
		return strings.Contains(s.CommitMessageTemplate, v)
	}) {
		return fmt.Errorf("commit message template must contain one of %s", strings.Join(TemplateVariables, ", "))
	}
	return nil
}

func (s Settings) IsExcluded(problemID int) bool {
	return slices.Contains(s.ExcludedProblems, problemID)
}
