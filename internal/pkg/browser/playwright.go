package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/playwright-community/playwright-go"
)

const (
	edgeUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0"
	viewportWidth  = 1280
	viewportHeight = 800
	locale         = "ja-JP"
	slowMo         = 100
)

// PlaywrightConfig configures the Playwright launcher.
type PlaywrightConfig struct {
	// ProfileDir persists cookies and storage between launches.
	ProfileDir string
	Channel    string
}

// PlaywrightLauncher launches a persistent Chromium-family context.
type PlaywrightLauncher struct {
	cfg PlaywrightConfig
}

func NewPlaywrightLauncher(cfg PlaywrightConfig) *PlaywrightLauncher {
	return &PlaywrightLauncher{cfg: cfg}
}

// Launch implements Launcher.
func (l *PlaywrightLauncher) Launch(ctx context.Context, opts LaunchOptions) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(l.cfg.ProfileDir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: create profile dir: %v", ErrLaunch, err)
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("%w: start driver: %v", ErrLaunch, err)
	}

	slog.Info("Launching browser", "channel", l.cfg.Channel, "profile_dir", l.cfg.ProfileDir, "headless", opts.Headless)
	bctx, err := pw.Chromium.LaunchPersistentContext(l.cfg.ProfileDir, playwright.BrowserTypeLaunchPersistentContextOptions{
		Channel:   playwright.String(l.cfg.Channel),
		Headless:  playwright.Bool(opts.Headless),
		Viewport:  &playwright.Size{Width: viewportWidth, Height: viewportHeight},
		UserAgent: playwright.String(edgeUserAgent),
		Locale:    playwright.String(locale),
		SlowMo:    playwright.Float(slowMo),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("%w: %v", ErrLaunch, err)
	}

	var page playwright.Page
	if pages := bctx.Pages(); len(pages) > 0 {
		page = pages[0]
	} else if page, err = bctx.NewPage(); err != nil {
		_ = bctx.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("%w: open page: %v", ErrLaunch, err)
	}

	p := &pwPage{pw: pw, ctx: bctx, page: page}
	page.OnDialog(p.handleDialog)
	return p, nil
}

type pwPage struct {
	pw     *playwright.Playwright
	ctx    playwright.BrowserContext
	page   playwright.Page
	accept atomic.Bool
	once   sync.Once
	err    error
}

func (p *pwPage) handleDialog(d playwright.Dialog) {
	if p.accept.Load() {
		slog.Debug("Accepting dialog", "message", d.Message())
		if err := d.Accept(); err != nil {
			slog.Warn("Dialog accept failed", "error", err)
		}
		return
	}
	if err := d.Dismiss(); err != nil {
		slog.Warn("Dialog dismiss failed", "error", err)
	}
}

func millis(d time.Duration) *float64 {
	return playwright.Float(float64(d / time.Millisecond))
}

func wrapTimeout(err error) error {
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

func (p *pwPage) Goto(url string) error {
	_, err := p.page.Goto(url)
	return wrapTimeout(err)
}

func (p *pwPage) WaitForLoad(state LoadState, timeout time.Duration) error {
	ls := playwright.LoadStateNetworkidle
	if state == LoadStateDOMContentLoaded {
		ls = playwright.LoadStateDomcontentloaded
	}
	return wrapTimeout(p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   ls,
		Timeout: millis(timeout),
	}))
}

func (p *pwPage) URL() string {
	return p.page.URL()
}

func (p *pwPage) IsVisible(selector string) (bool, error) {
	return p.page.IsVisible(selector)
}

func (p *pwPage) WaitVisible(selector string, timeout time.Duration) (Element, error) {
	h, err := p.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: millis(timeout),
	})
	if err != nil {
		return nil, wrapTimeout(err)
	}
	return &pwElement{h: h}, nil
}

func (p *pwPage) Fill(selector, value string) error {
	return wrapTimeout(p.page.Fill(selector, value))
}

func (p *pwPage) Click(selector string) error {
	return wrapTimeout(p.page.Click(selector))
}

func (p *pwPage) Query(selector string) (Element, error) {
	h, err := p.page.QuerySelector(selector)
	if err != nil || h == nil {
		return nil, err
	}
	return &pwElement{h: h}, nil
}

func (p *pwPage) QueryAll(selector string) ([]Element, error) {
	hs, err := p.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, err
	}
	out := make([]Element, 0, len(hs))
	for _, h := range hs {
		out = append(out, &pwElement{h: h})
	}
	return out, nil
}

func (p *pwPage) PressKey(key string) error {
	return p.page.Keyboard().Press(key)
}

func (p *pwPage) AcceptDialogs(accept bool) {
	p.accept.Store(accept)
}

func (p *pwPage) Wait(d time.Duration) {
	p.page.WaitForTimeout(float64(d / time.Millisecond))
}

func (p *pwPage) Close() error {
	p.once.Do(func() {
		if err := p.ctx.Close(); err != nil {
			p.err = fmt.Errorf("close browser context: %w", err)
		}
		if err := p.pw.Stop(); err != nil && p.err == nil {
			p.err = fmt.Errorf("stop playwright: %w", err)
		}
	})
	return p.err
}

type pwElement struct {
	h playwright.ElementHandle
}

func (e *pwElement) Text() (string, error) {
	return e.h.TextContent()
}

func (e *pwElement) Attribute(name string) (string, error) {
	return e.h.GetAttribute(name)
}

func (e *pwElement) IsVisible() (bool, error) {
	return e.h.IsVisible()
}

func (e *pwElement) Query(selector string) (Element, error) {
	h, err := e.h.QuerySelector(selector)
	if err != nil || h == nil {
		return nil, err
	}
	return &pwElement{h: h}, nil
}

func (e *pwElement) Click() error {
	return wrapTimeout(e.h.Click())
}

func (e *pwElement) Fill(value string) error {
	return wrapTimeout(e.h.Fill(value))
}

func (e *pwElement) RowText() (string, error) {
	v, err := e.h.Evaluate(`el => { const tr = el.closest('tr'); return tr ? tr.innerText : ''; }`)
	if err != nil {
		return "", err
	}
	s, _ := v.(string)
	return s, nil
}
