package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultTimeout bounds each navigation, wait and evaluation step.
const DefaultTimeout = 60 * time.Second

// Session is one browser-automation context shared by the scrapers of a
// single request. Pages opened from it are independent of each other.
type Session interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Page is one tab of a Session.
type Page interface {
	SetUserAgent(ua string) error
	// Navigate loads url and waits for the network to go quiet.
	Navigate(url string) error
	// WaitElement blocks until selector matches an element.
	WaitElement(selector string) error
	// Eval runs a JS function in the page and returns its JSON result.
	Eval(js string, args ...any) ([]byte, error)
	Screenshot() ([]byte, error)
	HTML() (string, error)
	Close() error
}

// Config controls how the browser is launched.
type Config struct {
	Headless  bool
	BinPath   string
	ProxyURL  string
	NoSandbox bool
	Timeout   time.Duration
}

// conn is the part of rod.Browser a Browser uses.
type conn interface {
	Page(opts proto.TargetCreateTarget) (*rod.Page, error)
	Close() error
}

// process is the launched Chromium process and its temporary profile.
type process interface {
	Kill()
	Cleanup()
}

// Browser 封装 rod.Browser 实例
type Browser struct {
	browser conn
	proc    process
	timeout time.Duration
}

// New launches a Chromium instance and connects to it.
func New(cfg Config) (*Browser, error) {
	l := newLauncher(cfg)

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(url)
	if err := b.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect browser: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Browser{
		browser: b,
		proc:    l,
		timeout: timeout,
	}, nil
}

// NewPage 创建新的浏览器页面
func (b *Browser) NewPage(ctx context.Context) (Page, error) {
	page, err := b.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	_, _ = page.EvalOnNewDocument(`Object.defineProperty(navigator, 'webdriver', {get: () => undefined});`)
	return &Tab{raw: page, page: page.Context(ctx), timeout: b.timeout}, nil
}

func newLauncher(cfg Config) *launcher.Launcher {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox).
		Set("disable-setuid-sandbox").
		Set("disable-gpu").
		Set("disable-extensions").
		Set("disable-infobars").
		Set("window-size", "1280,800")

	if cfg.BinPath != "" {
		l = l.Bin(cfg.BinPath)
	}
	if cfg.ProxyURL != "" {
		l = l.Proxy(cfg.ProxyURL)
	}
	return l
}

// Close 关闭浏览器并清理资源. The process is killed and its profile
// directory removed even when closing the connection fails.
func (b *Browser) Close() error {
	var err error
	if b.browser != nil {
		if cerr := b.browser.Close(); cerr != nil {
			err = fmt.Errorf("failed to close browser: %w", cerr)
		}
	}
	if b.proc != nil {
		b.proc.Kill()
		b.proc.Cleanup()
	}
	return err
}
