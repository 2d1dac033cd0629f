// Package validate holds loose shape checks for user-supplied values.
package validate

import (
	"regexp"
	"strings"
)

var (
	tokenChars = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	repoName   = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,100}$`)
)

// Token checks length and charset only; provider prefixes are not enforced.
func Token(token string) bool {
	return len(token) >= 20 && tokenChars.MatchString(token)
}

func RepoName(name string) bool {
	return repoName.MatchString(name)
}

// FullRepoName checks the "owner/repo" form.
func FullRepoName(fullName string) bool {
	parts := strings.Split(fullName, "/")
	if len(parts) != 2 {
		return false
	}
	return parts[0] != "" && parts[1] != ""
}

func ProblemID(id int) bool {
	return id > 0 && id < 10000
}
