package page

const problemURL = "https://leetcode.com/problems/two-sum/description/"

const acceptedHTML = `<html><body>
<div data-cy="question-title">1. Two Sum</div>
<div diff="easy">Easy</div>
<a data-cy="topic-tag" href="/tag/array/">Array</a>
<a data-cy="topic-tag" href="/tag/hash-table/">Hash Table</a>
<a data-cy="topic-tag" href="/tag/array/">Array</a>
<div data-track-load="description_content">Given an array of integers nums and an integer target.</div>
<button data-cy="lang-select">Python3</button>
<span data-e2e-locator="submission-result">Accepted</span>
<div data-e2e-locator="runtime">52 ms</div>
</body></html>`

const solutionCode = "class Solution:\n    def twoSum(self, nums, target):\n        pass\n"

func acceptedCapture() Capture {
	return Capture{URL: problemURL, HTML: acceptedHTML, EditorModels: []string{solutionCode}}
}

func mustSnapshot(c Capture) *Snapshot {
	s, err := NewSnapshot(c)
	if err != nil {
		panic(err)
	}
	return s
}
