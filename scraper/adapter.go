package scraper

import (
	"context"
	"time"
)

// Locator is a CSS selector understood by the automation backend.
type Locator string

// Element is a backend-specific handle to a located element.
type Element any

// Cookie is the subset of a browser cookie the engine inspects.
type Cookie struct {
	Name    string
	Value   string
	Expires time.Time // zero for session cookies
}

// Adapter is the contract the engine needs from a UI-automation backend.
// Every call blocks. Waits that exceed their timeout return an error
// wrapping ErrTimeout.
type Adapter interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, loc Locator, timeout time.Duration) (Element, error)
	WaitClickable(ctx context.Context, loc Locator, timeout time.Duration) (Element, error)
	Click(ctx context.Context, el Element) error
	ScrollIntoView(ctx context.Context, el Element) error
	ReadAllText(ctx context.Context, loc Locator) ([]string, error)
	// Cookie returns nil, nil when the cookie is not set.
	Cookie(ctx context.Context, name string) (*Cookie, error)
	Sleep(ctx context.Context, d time.Duration) error
	Close() error
}

// StatusProber reports the HTTP status a page URL responds with.
type StatusProber interface {
	Status(ctx context.Context, url string) (int, error)
}
