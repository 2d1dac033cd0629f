// Package format builds the names, paths and messages written to the remote
// repository.
package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"leet2git/internal/domain/model"
)

const defaultCommitTemplate = "Add {{problemId}}. {{title}} ({{difficulty}})"

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace   = regexp.MustCompile(`\s+`)
	dashes       = regexp.MustCompile(`-+`)
)

var extensions = map[string]string{
	"javascript": "js",
	"typescript": "ts",
	"python":     "py",
	"python3":    "py",
	"java":       "java",
	"cpp":        "cpp",
	"c++":        "cpp",
	"c":          "c",
	"csharp":     "cs",
	"c#":         "cs",
	"ruby":       "rb",
	"go":         "go",
	"golang":     "go",
	"rust":       "rs",
	"kotlin":     "kt",
	"swift":      "swift",
	"php":        "php",
	"scala":      "scala",
	"perl":       "pl",
	"elixir":     "ex",
	"dart":       "dart",
	"racket":     "rkt",
	"erlang":     "erl",
	"mysql":      "sql",
	"mssql":      "sql",
	"oraclesql":  "sql",
}

// ProblemTitle turns a title into a folder-safe slug: "Two Sum!" -> "two-sum".
func ProblemTitle(title string) string {
	s := strings.ToLower(title)
	s = nonSlugChars.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = dashes.ReplaceAllString(s, "-")
	return strings.TrimSpace(s)
}

// ProblemID zero-pads to four digits without truncating longer ids.
func ProblemID(id int) string {
	return fmt.Sprintf("%04d", id)
}

// FileExtension maps a language label to a file extension, "txt" if unknown.
func FileExtension(language string) string {
	if ext, ok := extensions[strings.ToLower(strings.TrimSpace(language))]; ok {
		return ext
	}
	return "txt"
}

// CommitMessage fills {{problemId}}, {{title}}, {{difficulty}} and
// {{language}}. An empty template falls back to the default one.
func CommitMessage(problem model.Problem, language, template string) string {
	if template == "" {
		template = defaultCommitTemplate
	}
	r := strings.NewReplacer(
		"{{problemId}}", strconv.Itoa(problem.ID),
		"{{title}}", problem.Title,
		"{{difficulty}}", string(problem.Difficulty),
		"{{language}}", language,
	)
	return r.Replace(template)
}

// Date renders an epoch-millisecond timestamp the way it appears in READMEs.
func Date(timestamp int64) string {
	return time.UnixMilli(timestamp).Format("1/2/2006")
}

// DateTime renders an epoch-millisecond timestamp for listings.
func DateTime(timestamp int64) string {
	return time.UnixMilli(timestamp).Format("Jan 2, 2006, 03:04 PM")
}
