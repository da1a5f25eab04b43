package browser

import (
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// snapshotTimeout bounds screenshot and HTML capture. It does not use the
// request context so a snapshot can still be taken after a timeout.
const snapshotTimeout = 10 * time.Second

// Tab is a Page backed by a rod page.
type Tab struct {
	raw     *rod.Page
	page    *rod.Page
	timeout time.Duration
}

func (t *Tab) SetUserAgent(ua string) error {
	return t.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua})
}

func (t *Tab) Navigate(url string) error {
	p := t.page.Timeout(t.timeout)
	defer p.CancelTimeout()

	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate: %w", err)
	}

	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("failed to wait for page load: %w", err)
	}

	// Wait for network idle so JS-rendered results are populated.
	wait := p.WaitRequestIdle(
		500*time.Millisecond, nil, nil,
		[]proto.NetworkResourceType{proto.NetworkResourceTypeImage, proto.NetworkResourceTypeMedia},
	)
	wait()
	return nil
}

func (t *Tab) WaitElement(selector string) error {
	p := t.page.Timeout(t.timeout)
	defer p.CancelTimeout()

	if _, err := p.Element(selector); err != nil {
		return fmt.Errorf("failed to wait for element '%s': %w", selector, err)
	}
	return nil
}

func (t *Tab) Eval(js string, args ...any) ([]byte, error) {
	p := t.page.Timeout(t.timeout)
	defer p.CancelTimeout()

	val, err := p.Eval(js, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate: %w", err)
	}
	raw, err := val.Value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return raw, nil
}

func (t *Tab) Screenshot() ([]byte, error) {
	p := t.raw.Timeout(snapshotTimeout)
	defer p.CancelTimeout()
	return p.Screenshot(true, nil)
}

func (t *Tab) HTML() (string, error) {
	p := t.raw.Timeout(snapshotTimeout)
	defer p.CancelTimeout()
	return p.HTML()
}

func (t *Tab) Close() error {
	return t.raw.Close()
}
