// Package page extracts problem and submission data from captures of the
// problem page and watches those captures for accepted submissions.
package page

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Snapshot is one reading of the live page: its URL, rendered document and
// the buffers of any in-page editor models, first model first.
type Snapshot struct {
	URL          string
	Document     *goquery.Document
	EditorModels []string

	fingerprint string
}

// Capture is the JSON form a page capture is exchanged in.
type Capture struct {
	URL          string   `json:"url"`
	HTML         string   `json:"html"`
	EditorModels []string `json:"editorModels,omitempty"`
}

func NewSnapshot(c Capture) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(c.HTML))
	if err != nil {
		return nil, fmt.Errorf("parse page html: %w", err)
	}
	h := sha256.New()
	io.WriteString(h, c.URL)
	io.WriteString(h, c.HTML)
	for _, m := range c.EditorModels {
		io.WriteString(h, m)
	}
	return &Snapshot{
		URL:          c.URL,
		Document:     doc,
		EditorModels: c.EditorModels,
		fingerprint:  hex.EncodeToString(h.Sum(nil)),
	}, nil
}

// Fingerprint changes whenever the URL, markup or editor buffers change.
func (s *Snapshot) Fingerprint() string {
	return s.fingerprint
}

// ElementCount is the number of elements in the document.
func (s *Snapshot) ElementCount() int {
	return s.Document.Find("*").Length()
}

// SnapshotSource reads the current state of the page.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// FileSource reads a capture from disk. The file is either capture JSON or
// raw HTML, in which case URL supplies the page address.
type FileSource struct {
	Path string
	URL  string
}

func (s FileSource) Snapshot(_ context.Context) (*Snapshot, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read capture %s: %w", s.Path, err)
	}
	return decodeCapture(raw, s.URL)
}

// HTTPSource fetches a capture from an endpoint, e.g. a devtools bridge.
type HTTPSource struct {
	Endpoint string
	URL      string
	Client   *http.Client
}

func (s HTTPSource) Snapshot(ctx context.Context) (*Snapshot, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch capture: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch capture: unexpected status %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read capture: %w", err)
	}
	return decodeCapture(raw, s.URL)
}

func decodeCapture(raw []byte, fallbackURL string) (*Snapshot, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var c Capture
		if err := json.Unmarshal(trimmed, &c); err != nil {
			return nil, fmt.Errorf("decode capture: %w", err)
		}
		if c.URL == "" {
			c.URL = fallbackURL
		}
		return NewSnapshot(c)
	}
	return NewSnapshot(Capture{URL: fallbackURL, HTML: string(raw)})
}
