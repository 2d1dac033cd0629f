package page

import (
	"log"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"leet2git/internal/domain/model"

	"github.com/PuerkitoBio/goquery"
	"github.com/gosimple/slug"
)

const minCodeLength = 10

var (
	acceptedSelectors = []string{
		`[data-e2e-locator="submission-result"]`,
		`.success__3Ai7`,
		`.result-state`,
		`[class*="success"]`,
	}
	titleSelectors = []string{
		`[data-cy="question-title"]`,
		`.css-v3d350`,
		`div[class*="title"]`,
		`h1`,
	}
	difficultySelectors = []string{
		`[diff]`,
		`[class*="difficulty"]`,
		`.css-10o4wqw`,
	}
	tagSelectors = []string{
		`[data-cy="topic-tag"]`,
		`[class*="topic-tag"]`,
		`a[href*="/tag/"]`,
	}
	descriptionSelectors = []string{
		`[data-track-load="description_content"]`,
		`[class*="description"]`,
		`.question-content`,
		`[class*="content__"]`,
	}
	codeSelectors = []string{
		`textarea`,
		`[class*="CodeMirror"]`,
		`pre code`,
	}
	languageSelectors = []string{
		`[data-cy="lang-select"]`,
		`[id*="lang"]`,
		`button[class*="lang"]`,
	}
	runtimeSelectors = []string{
		`[data-e2e-locator="runtime"]`,
		`[class*="runtime"]`,
	}
	memorySelectors = []string{
		`[data-e2e-locator="memory"]`,
		`[class*="memory"]`,
	}

	problemIDPrefix = regexp.MustCompile(`^(\d+)\.`)
	numberPrefix    = regexp.MustCompile(`^\d+\.\s*`)
	problemPath     = regexp.MustCompile(`/problems/([^/]+)`)
)

// Extractor reads problem metadata and the submitted solution from a snapshot.
type Extractor struct {
	title       Chain
	difficulty  Chain
	description Chain
	language    Chain
	runtime     Chain
	memory      Chain
	code        Chain
}

func NewExtractor() *Extractor {
	return &Extractor{
		title:       Selectors(titleSelectors...),
		difficulty:  difficultyChain(),
		description: Selectors(descriptionSelectors...),
		language:    Selectors(languageSelectors...),
		runtime:     Selectors(runtimeSelectors...),
		memory:      Selectors(memorySelectors...),
		code:        Chain{editorModel, codeElement},
	}
}

// difficultyChain only accepts an element whose text names a tier, so a
// matching element with unrelated text falls through to the next selector.
func difficultyChain() Chain {
	chain := make(Chain, 0, len(difficultySelectors))
	for _, sel := range difficultySelectors {
		first := FirstText(sel)
		chain = append(chain, func(s *Snapshot) (string, bool) {
			text, ok := first(s)
			if !ok {
				return "", false
			}
			d, matched := model.ParseDifficulty(text)
			return string(d), matched
		})
	}
	return chain
}

func editorModel(s *Snapshot) (string, bool) {
	if len(s.EditorModels) > 0 && s.EditorModels[0] != "" {
		return s.EditorModels[0], true
	}
	return "", false
}

// codeElement accepts the first generic code-bearing element whose text is
// longer than minCodeLength characters.
func codeElement(s *Snapshot) (string, bool) {
	var code string
	s.Document.Find(strings.Join(codeSelectors, ", ")).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		text := el.Text()
		if utf8.RuneCountInString(text) > minCodeLength {
			code = text
			return false
		}
		return true
	})
	return code, code != ""
}

// IsProblemPage reports whether the snapshot URL points at a problem.
func (e *Extractor) IsProblemPage(s *Snapshot) bool {
	return strings.Contains(pathOf(s.URL), "/problems/")
}

// IsAccepted looks for the "accepted" result banner.
func (e *Extractor) IsAccepted(s *Snapshot) bool {
	return anyText(s.Document, acceptedSelectors, func(text string) bool {
		lower := strings.ToLower(text)
		return strings.Contains(lower, "accepted") || strings.Contains(lower, "success")
	})
}

// ExtractProblem returns nil when the title, the only mandatory field, cannot
// be found.
func (e *Extractor) ExtractProblem(s *Snapshot) *model.Problem {
	rawTitle, ok := e.title.Resolve(s)
	if !ok {
		log.Println("ERROR: Could not extract problem title")
		return nil
	}
	title := numberPrefix.ReplaceAllString(rawTitle, "")

	problem := &model.Problem{
		ID:    parseProblemID(rawTitle),
		Title: title,
		Tags:  e.extractTags(s),
	}
	problem.TitleSlug = titleSlug(s.URL)
	if problem.TitleSlug == "" {
		problem.TitleSlug = slug.Make(title)
	}
	if d, ok := e.difficulty.Resolve(s); ok {
		problem.Difficulty = model.Difficulty(d)
	} else {
		problem.Difficulty = model.DifficultyMedium
	}
	problem.Description, _ = e.description.Resolve(s)
	problem.DescriptionHTML = problem.Description
	return problem
}

// extractTags collects every tag from the first selector that yields any,
// suppressing duplicates.
func (e *Extractor) extractTags(s *Snapshot) []string {
	p := model.Problem{Tags: []string{}}
	for _, sel := range tagSelectors {
		s.Document.Find(sel).Each(func(_ int, el *goquery.Selection) {
			p.AddTag(strings.TrimSpace(el.Text()))
		})
		if len(p.Tags) > 0 {
			break
		}
	}
	return p.Tags
}

// ExtractCode returns the submitted source and its lowercased language label.
func (e *Extractor) ExtractCode(s *Snapshot) (code, language string, ok bool) {
	code, ok = e.code.Resolve(s)
	if !ok {
		log.Println("ERROR: Could not extract code from editor")
		return "", "", false
	}
	language, found := e.language.Resolve(s)
	if !found {
		language = "unknown"
	}
	return code, strings.ToLower(language), true
}

// ExtractStats returns runtime and memory, "N/A" when not rendered.
func (e *Extractor) ExtractStats(s *Snapshot) (runtime, memory string) {
	runtime, memory = model.StatUnavailable, model.StatUnavailable
	if v, ok := e.runtime.Resolve(s); ok {
		runtime = v
	}
	if v, ok := e.memory.Resolve(s); ok {
		memory = v
	}
	return runtime, memory
}

// NewSubmission assembles an accepted submission captured at now.
func (e *Extractor) NewSubmission(id string, problem *model.Problem, code, language, runtime, memory string, now time.Time) model.Submission {
	return model.Submission{
		ID:        id,
		ProblemID: problem.ID,
		Problem:   *problem,
		Code:      code,
		Language:  language,
		Timestamp: now.UnixMilli(),
		Runtime:   runtime,
		Memory:    memory,
		Status:    model.StatusAccepted,
	}
}

func parseProblemID(titleText string) int {
	m := problemIDPrefix.FindStringSubmatch(titleText)
	if m == nil {
		return 0
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return id
}

func titleSlug(rawURL string) string {
	m := problemPath.FindStringSubmatch(pathOf(rawURL))
	if m == nil {
		return ""
	}
	return m[1]
}

func pathOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Path
}
