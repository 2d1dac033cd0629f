package model

import "strings"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

type Problem struct {
	ID              int        `json:"id"`
	Title           string     `json:"title"`
	TitleSlug       string     `json:"titleSlug"`
	Difficulty      Difficulty `json:"difficulty"`
	Tags            []string   `json:"tags"`
	Description     string     `json:"description"`
	DescriptionHTML string     `json:"descriptionHtml,omitempty"`
}

// ParseDifficulty matches free text against the three tiers. Anything
// unrecognised is treated as Medium.
func ParseDifficulty(text string) (Difficulty, bool) {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "easy"):
		return DifficultyEasy, true
	case strings.Contains(lower, "medium"):
		return DifficultyMedium, true
	case strings.Contains(lower, "hard"):
		return DifficultyHard, true
	}
	return DifficultyMedium, false
}

// AddTag appends tag unless it is empty or already present.
func (p *Problem) AddTag(tag string) {
	if tag == "" {
		return
	}
	for _, t := range p.Tags {
		if t == tag {
			return
		}
	}
	p.Tags = append(p.Tags, tag)
}
