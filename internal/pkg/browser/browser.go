// Package browser is the narrow surface the portal client drives. The Playwright
// implementation lives in playwright.go; tests substitute their own Page.
package browser

import (
	"context"
	"errors"
	"time"
)

// LoadState is a page load milestone.
type LoadState string

const (
	LoadStateDOMContentLoaded LoadState = "domcontentloaded"
	LoadStateNetworkIdle      LoadState = "networkidle"
)

var (
	// ErrTimeout is returned when a bounded wait expires.
	ErrTimeout = errors.New("browser wait timed out")
	// ErrLaunch is returned when the browser engine cannot start.
	ErrLaunch = errors.New("browser could not be launched")
)

// Page is one browser tab.
type Page interface {
	Goto(url string) error
	WaitForLoad(state LoadState, timeout time.Duration) error
	URL() string
	IsVisible(selector string) (bool, error)
	// WaitVisible waits until selector is visible and returns it, or ErrTimeout.
	WaitVisible(selector string, timeout time.Duration) (Element, error)
	Fill(selector, value string) error
	Click(selector string) error
	// Query returns nil without error when nothing matches.
	Query(selector string) (Element, error)
	QueryAll(selector string) ([]Element, error)
	PressKey(key string) error
	// AcceptDialogs switches between accepting and dismissing JavaScript dialogs.
	AcceptDialogs(accept bool)
	Wait(d time.Duration)
	// Close releases the page and its browser. Safe to call more than once.
	Close() error
}

// Element is a handle to a DOM element.
type Element interface {
	Text() (string, error)
	Attribute(name string) (string, error)
	IsVisible() (bool, error)
	Query(selector string) (Element, error)
	Click() error
	Fill(value string) error
	// RowText returns the rendered text of the closest enclosing table row.
	RowText() (string, error)
}

// LaunchOptions configures a browser launch.
type LaunchOptions struct {
	Headless bool
}

// Launcher starts browsers.
type Launcher interface {
	Launch(ctx context.Context, opts LaunchOptions) (Page, error)
}
