package format

import (
	"fmt"
	"strings"

	"leet2git/internal/domain/model"
)

const DefaultProblemBaseURL = "https://leetcode.com/problems/"

// Readme renders the companion description file for a submission.
func Readme(sub *model.Submission, problemBaseURL string) string {
	if problemBaseURL == "" {
		problemBaseURL = DefaultProblemBaseURL
	}
	if !strings.HasSuffix(problemBaseURL, "/") {
		problemBaseURL += "/"
	}
	p := sub.Problem

	tags := strings.Join(p.Tags, ", ")
	if tags == "" {
		tags = "None"
	}
	description := p.Description
	if description == "" {
		description = "No description available."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %d. %s\n\n", p.ID, p.Title)
	fmt.Fprintf(&b, "**Difficulty:** %s\n\n", p.Difficulty)
	fmt.Fprintf(&b, "**Tags:** %s\n\n", tags)
	fmt.Fprintf(&b, "## Problem Description\n\n%s\n\n", description)
	b.WriteString("## Solution\n\n")
	fmt.Fprintf(&b, "**Language:** %s\n\n", sub.Language)
	fmt.Fprintf(&b, "**Runtime:** %s\n\n", sub.Runtime)
	fmt.Fprintf(&b, "**Memory:** %s\n\n", sub.Memory)
	fmt.Fprintf(&b, "**Submitted:** %s\n\n", Date(sub.Timestamp))
	fmt.Fprintf(&b, "## Link\n\n[View on LeetCode](%s%s/)\n", problemBaseURL, p.TitleSlug)
	return b.String()
}

// ReadmeCommitMessage is the fixed message used for companion file writes.
func ReadmeCommitMessage(problemID int) string {
	return fmt.Sprintf("Add README for problem %d", problemID)
}
