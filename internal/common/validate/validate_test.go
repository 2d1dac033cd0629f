package validate

import (
	"strings"
	"testing"
)

func TestToken(t *testing.T) {
	if !Token("ghp_" + strings.Repeat("a", 36)) {
		t.Fatalf("expected personal access token shape to pass")
	}
	if !Token(strings.Repeat("x", 20)) {
		t.Fatalf("expected 20 character token to pass")
	}
	if Token(strings.Repeat("x", 19)) {
		t.Fatalf("expected short token to fail")
	}
	if Token("ghp-" + strings.Repeat("a", 30)) {
		t.Fatalf("expected dash to be rejected")
	}
	if Token("") {
		t.Fatalf("expected empty token to fail")
	}
}

func TestRepoName(t *testing.T) {
	for _, ok := range []string{"leetcode", "leet.code_solutions-2024", "a"} {
		if !RepoName(ok) {
			t.Fatalf("expected %q to be valid", ok)
		}
	}
	for _, bad := range []string{"", "has space", "slash/name", strings.Repeat("a", 101)} {
		if RepoName(bad) {
			t.Fatalf("expected %q to be invalid", bad)
		}
	}
}

func TestFullRepoName(t *testing.T) {
	if !FullRepoName("octocat/leetcode") {
		t.Fatalf("expected owner/repo to pass")
	}
	for _, bad := range []string{"octocat", "octocat/", "/leetcode", "a/b/c", ""} {
		if FullRepoName(bad) {
			t.Fatalf("expected %q to fail", bad)
		}
	}
}

func TestProblemID(t *testing.T) {
	if !ProblemID(1) || !ProblemID(9999) {
		t.Fatalf("expected bounds to pass")
	}
	if ProblemID(0) || ProblemID(10000) || ProblemID(-3) {
		t.Fatalf("expected out-of-range ids to fail")
	}
}
