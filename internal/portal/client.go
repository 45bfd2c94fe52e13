// Package portal drives the OZO attendance portal through a browser page.
package portal

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/ozo-extended/ozo-agent/internal/domain/attendance"
	"github.com/ozo-extended/ozo-agent/internal/pkg/browser"
)

// URLs are the three portal entry points.
type URLs struct {
	Login   string
	ManHour string
	Monthly string
	host    string
}

// NewURLs derives the portal URLs from its base, e.g. https://manage.ozo-cloud.jp.
func NewURLs(baseURL string) (URLs, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Host == "" {
		return URLs{}, fmt.Errorf("invalid portal base url %q", baseURL)
	}
	login := u.String() + loginPath
	return URLs{
		Login:   login,
		ManHour: login + manHourArgs,
		Monthly: login + monthlyArgs,
		host:    u.Host,
	}, nil
}

type sessionState int

const (
	stateOpen sessionState = iota
	stateAuthenticated
	stateClosed
)

func (s sessionState) String() string {
	switch s {
	case stateOpen:
		return "open"
	case stateAuthenticated:
		return "authenticated"
	default:
		return "closed"
	}
}

// Client is one portal session. It owns its page until Close.
type Client struct {
	page  browser.Page
	creds attendance.Credentials
	urls  URLs
	state sessionState

	// offAttendance is set once the page left the attendance table for another screen.
	offAttendance bool
}

// NewClient wraps an already launched page.
func NewClient(page browser.Page, creds attendance.Credentials, urls URLs) *Client {
	return &Client{page: page, creds: creds, urls: urls, state: stateOpen}
}

// Opener launches a browser and returns a portal session.
type Opener struct {
	launcher browser.Launcher
	urls     URLs
}

func NewOpener(launcher browser.Launcher, urls URLs) *Opener {
	return &Opener{launcher: launcher, urls: urls}
}

// Open implements attendance.SessionOpener.
func (o *Opener) Open(ctx context.Context, opts attendance.OpenOptions) (attendance.Session, error) {
	page, err := o.launcher.Launch(ctx, browser.LaunchOptions{Headless: opts.Headless})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLaunch, err)
	}
	return NewClient(page, opts.Credentials, o.urls), nil
}

// Authenticate implements attendance.Session.
func (c *Client) Authenticate(ctx context.Context) error {
	if c.state != stateOpen {
		return fmt.Errorf("%w: authenticate in state %s", ErrSessionState, c.state)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	slog.Info("Opening portal login page")
	if err := c.page.Goto(c.urls.Login); err != nil {
		return fmt.Errorf("%w: open login page: %w", ErrAuth, err)
	}
	c.settle(browser.LoadStateNetworkIdle, loadTimeout)

	if c.isAuthenticated() {
		slog.Info("Portal session already authenticated")
		c.state = stateAuthenticated
		return nil
	}
	if !c.onHost(microsoftLoginHost) {
		slog.Warn("Unexpected sign-in page", "url", c.page.URL())
	}

	if _, err := c.page.WaitVisible(selAnyCredField, credentialTimeout); err != nil {
		return fmt.Errorf("%w: sign-in form did not appear: %w", ErrAuth, err)
	}

	if visible, _ := c.page.IsVisible(selUserID); visible {
		slog.Info("Submitting user id")
		if err := c.submit(selUserID, c.creds.UserID); err != nil {
			return err
		}
		if err := c.checkSignInError(); err != nil {
			return err
		}
		if c.isAuthenticated() {
			c.state = stateAuthenticated
			return nil
		}
	}

	if _, err := c.page.WaitVisible(selPassword, credentialTimeout); err != nil {
		return fmt.Errorf("%w: password field did not appear: %w", ErrAuth, err)
	}
	slog.Info("Submitting password")
	if err := c.submit(selPassword, c.creds.Password); err != nil {
		return err
	}
	if err := c.checkSignInError(); err != nil {
		return err
	}

	// "Stay signed in?" only appears for some accounts.
	if btn, err := c.page.WaitVisible(selSubmit, staySignedInTimeout); err == nil {
		slog.Info("Confirming stay signed in")
		if err := btn.Click(); err != nil {
			slog.Warn("Stay signed in click failed", "error", err)
		}
		c.settle(browser.LoadStateNetworkIdle, loadTimeout)
	}

	if c.onHost(microsoftLoginHost) {
		return fmt.Errorf("%w: still on sign-in page, additional verification may be required", ErrAuth)
	}

	slog.Info("Portal sign-in complete")
	c.state = stateAuthenticated
	return nil
}

func (c *Client) submit(field, value string) error {
	if err := c.page.Fill(field, value); err != nil {
		return fmt.Errorf("%w: fill %s: %w", ErrAuth, field, err)
	}
	if err := c.page.Click(selSubmit); err != nil {
		return fmt.Errorf("%w: submit %s: %w", ErrAuth, field, err)
	}
	c.settle(browser.LoadStateNetworkIdle, loadTimeout)
	return nil
}

func (c *Client) checkSignInError() error {
	for _, sel := range []string{selPasswordErr, selUserIDErr} {
		el, err := c.page.Query(sel)
		if err != nil || el == nil {
			continue
		}
		if visible, _ := el.IsVisible(); !visible {
			continue
		}
		msg, _ := el.Text()
		return fmt.Errorf("%w: %s", ErrAuth, strings.TrimSpace(msg))
	}
	return nil
}

// isAuthenticated needs both signals: the page is on the portal host and no user id field is visible.
func (c *Client) isAuthenticated() bool {
	if !c.onHost(c.urls.host) {
		return false
	}
	visible, err := c.page.IsVisible(selUserID)
	return err == nil && !visible
}

func (c *Client) onHost(host string) bool {
	u, err := url.Parse(c.page.URL())
	return err == nil && strings.EqualFold(u.Host, host)
}

// settle waits for a load state; expiry is logged and ignored.
func (c *Client) settle(state browser.LoadState, timeout time.Duration) {
	if err := c.page.WaitForLoad(state, timeout); err != nil {
		slog.Debug("Page did not settle, continuing", "state", state, "error", err)
	}
}

func (c *Client) requireAuthenticated(ctx context.Context) error {
	if c.state != stateAuthenticated {
		return fmt.Errorf("%w: operation requires authenticated session, state is %s", ErrSessionState, c.state)
	}
	return ctx.Err()
}

// gotoOther leaves the attendance table for url.
func (c *Client) gotoOther(url string) error {
	c.offAttendance = true
	return c.page.Goto(url)
}

// returnToAttendance reloads the attendance table after a visit to another screen.
func (c *Client) returnToAttendance() error {
	if !c.offAttendance {
		return nil
	}
	slog.Debug("Returning to attendance page")
	if err := c.page.Goto(c.urls.Login); err != nil {
		return fmt.Errorf("open attendance page: %w", err)
	}
	c.settle(browser.LoadStateNetworkIdle, loadTimeout)
	c.offAttendance = false
	return nil
}

// ClockInTime implements attendance.Session.
func (c *Client) ClockInTime(ctx context.Context) (*string, error) {
	if err := c.requireAuthenticated(ctx); err != nil {
		return nil, err
	}
	if err := c.returnToAttendance(); err != nil {
		return nil, err
	}
	return c.readCell(selClockInCell)
}

// ClockOutTime implements attendance.Session.
func (c *Client) ClockOutTime(ctx context.Context) (*string, error) {
	if err := c.requireAuthenticated(ctx); err != nil {
		return nil, err
	}
	if err := c.returnToAttendance(); err != nil {
		return nil, err
	}
	return c.readCell(selClockOutCell)
}

func (c *Client) readCell(selector string) (*string, error) {
	cell, err := c.page.Query(selector)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", selector, err)
	}
	if cell == nil {
		return nil, nil
	}
	text, err := cell.Text()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", selector, err)
	}
	return normalizeCell(text), nil
}

// normalizeCell strips all whitespace and maps placeholders to nil.
func normalizeCell(text string) *string {
	s := strings.Join(strings.Fields(text), "")
	switch s {
	case "", "-", "−", "&nbsp;":
		return nil
	}
	return &s
}

// ClockIn implements attendance.Session.
func (c *Client) ClockIn(ctx context.Context) (attendance.ClockResult, error) {
	existing, err := c.ClockInTime(ctx)
	if err != nil {
		return attendance.ClockResult{}, err
	}
	if existing != nil {
		slog.Info("Already clocked in", "clock_in", *existing)
		return attendance.ClockResult{Time: *existing}, attendance.ErrAlreadyClockedIn
	}

	slog.Info("Clicking clock-in")
	if err := c.page.Click(selClockInBtn); err != nil {
		slog.Warn("Clock-in click failed", "error", err)
	}
	c.settle(browser.LoadStateNetworkIdle, loadTimeout)
	c.page.Wait(clockInSettle)

	confirmed, err := c.readCell(selClockInCell)
	if err != nil {
		return attendance.ClockResult{}, err
	}
	if confirmed == nil {
		return attendance.ClockResult{}, attendance.ErrClockNotConfirmed
	}

	slog.Info("Clock-in complete", "clock_in", *confirmed)
	return attendance.ClockResult{Time: *confirmed}, nil
}

// ClockOut implements attendance.Session.
func (c *Client) ClockOut(ctx context.Context, opts attendance.ClockOutOptions) (attendance.ClockResult, error) {
	in, err := c.ClockInTime(ctx)
	if err != nil {
		return attendance.ClockResult{}, err
	}
	if in == nil {
		slog.Info("Clock-out skipped, not clocked in")
		return attendance.ClockResult{}, attendance.ErrNotClockedIn
	}

	out, err := c.readCell(selClockOutCell)
	if err != nil {
		return attendance.ClockResult{}, err
	}
	if out != nil {
		if !opts.Force {
			slog.Info("Already clocked out", "clock_out", *out)
			return attendance.ClockResult{Time: *out}, attendance.ErrAlreadyClockedOut
		}
		slog.Info("Already clocked out, clicking again", "clock_out", *out)
	}

	slog.Info("Clicking clock-out", "force", opts.Force, "auto_fill", opts.AutoFill)
	c.page.AcceptDialogs(true)
	if err := c.page.Click(selClockOutBtn); err != nil {
		slog.Warn("Clock-out click failed", "error", err)
	}
	c.page.Wait(clockOutSettle)
	c.page.AcceptDialogs(false)

	c.settle(browser.LoadStateDOMContentLoaded, clockOutLoadTimeout)
	c.settle(browser.LoadStateNetworkIdle, clockOutLoadTimeout)

	confirmed, err := c.readCell(selClockOutCell)
	if err != nil {
		return attendance.ClockResult{}, err
	}
	if confirmed == nil {
		return attendance.ClockResult{}, attendance.ErrClockNotConfirmed
	}
	slog.Info("Clock-out complete", "clock_out", *confirmed)

	res := attendance.ClockResult{Time: *confirmed}
	if !opts.AutoFill {
		return res, nil
	}

	freshIn, err := c.readCell(selClockInCell)
	switch {
	case err != nil:
		res.ManHourErr = err
	case freshIn == nil:
		res.ManHourErr = attendance.ErrNotClockedIn
	default:
		res.Allocations, res.ManHourErr = c.FillManHours(ctx, *freshIn, *confirmed)
	}
	if res.ManHourErr != nil {
		slog.Error("Man-hour entry failed", "error", res.ManHourErr)
	}
	if err := c.returnToAttendance(); err != nil {
		slog.Warn("Could not reload attendance page after man-hour entry", "error", err)
	}
	return res, nil
}

// MonthlyWorkHours implements attendance.Session.
func (c *Client) MonthlyWorkHours(ctx context.Context) (attendance.MonthlyWorkHours, error) {
	if err := c.requireAuthenticated(ctx); err != nil {
		return attendance.MonthlyWorkHours{}, err
	}

	if err := c.gotoOther(c.urls.Monthly); err != nil {
		return attendance.MonthlyWorkHours{}, fmt.Errorf("open monthly page: %w", err)
	}
	c.settle(browser.LoadStateNetworkIdle, loadTimeout)

	m := attendance.MonthlyWorkHours{
		WorkedTime:    c.readSummary(selWorked),
		RequiredTime:  c.readSummary(selRequired),
		DiffTime:      c.readSummary(selDiff),
		DailyDiffTime: c.readSummary(selDailyDiff),
	}
	slog.Info("Monthly work hours read",
		"worked", m.WorkedTime,
		"required", m.RequiredTime,
		"diff", m.DiffTime,
		"daily_diff", m.DailyDiffTime)
	return m, nil
}

func (c *Client) readSummary(selector string) string {
	el, err := c.page.Query(selector)
	if err != nil || el == nil {
		return monthlyUnknown
	}
	text, err := el.Text()
	if err != nil {
		return monthlyUnknown
	}
	return strings.TrimSpace(text)
}

// Close implements attendance.Session.
func (c *Client) Close() error {
	if c.state == stateClosed {
		return nil
	}
	c.state = stateClosed
	if err := c.page.Close(); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	return nil
}
