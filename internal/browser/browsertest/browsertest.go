// Package browsertest provides an in-memory browser.Session that serves
// canned HTML, for testing scrapers without a real browser.
package browsertest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"omnisearch/internal/browser"
	"omnisearch/internal/extractor"
)

// ErrTimeout is returned by WaitElement when the selector never matches.
var ErrTimeout = errors.New("context deadline exceeded")

// Session serves Routes: Navigate picks the longest URL prefix that matches.
// Setup, when set, runs on every page before it is returned.
type Session struct {
	Routes     map[string]string
	NewPageErr error
	CloseErr   error
	Setup      func(p *Page)

	mu     sync.Mutex
	pages  []*Page
	closed int
}

// NewSession returns a Session serving routes.
func NewSession(routes map[string]string) *Session {
	return &Session{Routes: routes}
}

func (s *Session) NewPage(_ context.Context) (browser.Page, error) {
	if s.NewPageErr != nil {
		return nil, s.NewPageErr
	}
	p := &Page{session: s}
	if s.Setup != nil {
		s.Setup(p)
	}
	s.mu.Lock()
	s.pages = append(s.pages, p)
	s.mu.Unlock()
	return p, nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	s.closed++
	s.mu.Unlock()
	return s.CloseErr
}

// Pages returns every page opened so far.
func (s *Session) Pages() []*Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Page, len(s.pages))
	copy(out, s.pages)
	return out
}

// Closed reports how many times Close was called.
func (s *Session) Closed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) lookup(url string) (string, bool) {
	best, html, found := -1, "", false
	for prefix, body := range s.Routes {
		if strings.HasPrefix(url, prefix) && len(prefix) > best {
			best, html, found = len(prefix), body, true
		}
	}
	return html, found
}

// Page is a fake tab. The exported error fields make the matching step fail;
// PanicOnEval makes Eval panic.
type Page struct {
	UserAgentErr error
	NavigateErr  error
	WaitErr      error
	EvalErr      error
	EvalResult   []byte
	PanicOnEval  bool

	session *Session

	mu          sync.Mutex
	userAgent   string
	url         string
	html        string
	closed      int
	screenshots int
}

func (p *Page) SetUserAgent(ua string) error {
	if p.UserAgentErr != nil {
		return p.UserAgentErr
	}
	p.mu.Lock()
	p.userAgent = ua
	p.mu.Unlock()
	return nil
}

func (p *Page) Navigate(url string) error {
	p.mu.Lock()
	p.url = url
	p.mu.Unlock()
	if p.NavigateErr != nil {
		return p.NavigateErr
	}
	html, ok := p.session.lookup(url)
	if !ok {
		return fmt.Errorf("navigate %s: net::ERR_NAME_NOT_RESOLVED", url)
	}
	p.mu.Lock()
	p.html = html
	p.mu.Unlock()
	return nil
}

func (p *Page) WaitElement(selector string) error {
	if p.WaitErr != nil {
		return p.WaitErr
	}
	if !extractor.Contains(extractor.Rule{Container: selector}, p.HTMLContent()) {
		return fmt.Errorf("wait for %q: %w", selector, ErrTimeout)
	}
	return nil
}

// Eval understands only the extraction script: it decodes the rule argument
// and applies it to the page HTML.
func (p *Page) Eval(js string, args ...any) ([]byte, error) {
	if p.PanicOnEval {
		panic("evaluation crashed")
	}
	if p.EvalErr != nil {
		return nil, p.EvalErr
	}
	if p.EvalResult != nil {
		return p.EvalResult, nil
	}
	if js != extractor.Script() || len(args) != 1 {
		return nil, fmt.Errorf("unexpected script")
	}
	raw, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("rule argument must be a JSON string, got %T", args[0])
	}
	var rule extractor.Rule
	if err := json.Unmarshal([]byte(raw), &rule); err != nil {
		return nil, err
	}
	records, err := extractor.ParseHTML(rule, p.HTMLContent())
	if err != nil {
		return nil, err
	}
	return json.Marshal(records)
}

func (p *Page) Screenshot() ([]byte, error) {
	p.mu.Lock()
	p.screenshots++
	p.mu.Unlock()
	return []byte("\x89PNG fake"), nil
}

func (p *Page) HTML() (string, error) {
	return p.HTMLContent(), nil
}

func (p *Page) Close() error {
	p.mu.Lock()
	p.closed++
	p.mu.Unlock()
	return nil
}

// HTMLContent returns the document loaded by the last Navigate.
func (p *Page) HTMLContent() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.html
}

// UserAgent returns the user agent set on the page, if any.
func (p *Page) UserAgent() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.userAgent
}

// URL returns the last URL passed to Navigate.
func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

// Closed reports how many times Close was called.
func (p *Page) Closed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Screenshots reports how many screenshots were taken.
func (p *Page) Screenshots() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.screenshots
}
