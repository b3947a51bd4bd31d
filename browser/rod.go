package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"catalog-aggregator/scraper"
	"catalog-aggregator/utils"
)

// Rod drives one stealth page of a go-rod launched browser.
type Rod struct {
	opts   Options
	logger *utils.Logger

	lnch    *launcher.Launcher
	browser *rod.Browser
	page    *rod.Page
}

var _ scraper.Adapter = (*Rod)(nil)

// NewRod launches a local browser and opens a page with stealth applied.
func NewRod(opts Options, logger *utils.Logger) (*Rod, error) {
	opts.defaults()

	l := launcher.New().
		Headless(opts.Headless).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-dev-shm-usage").
		Set("user-agent", opts.UserAgent)
	if opts.ExecPath != "" {
		l = l.Bin(opts.ExecPath)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("browser: launch: %w", err)
	}
	logger.Info("[browser] Launched rod browser at %s", u)

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}

	page, err := stealth.Page(b)
	if err != nil {
		_ = b.Close()
		l.Cleanup()
		return nil, fmt.Errorf("browser: create page: %w", err)
	}

	return &Rod{opts: opts, logger: logger, lnch: l, browser: b, page: page}, nil
}

func timeoutErr(err error, timeout time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %v", scraper.ErrTimeout, timeout)
	}
	return err
}

func (r *Rod) Navigate(ctx context.Context, url string) error {
	p := r.page.Context(ctx).Timeout(r.opts.NavigationTimeout)
	if err := p.Navigate(url); err != nil {
		return timeoutErr(err, r.opts.NavigationTimeout)
	}
	return timeoutErr(p.WaitLoad(), r.opts.NavigationTimeout)
}

func (r *Rod) WaitVisible(ctx context.Context, loc scraper.Locator, timeout time.Duration) (scraper.Element, error) {
	el, err := r.page.Context(ctx).Timeout(timeout).Element(string(loc))
	if err != nil {
		return nil, timeoutErr(err, timeout)
	}
	if err := el.WaitVisible(); err != nil {
		return nil, timeoutErr(err, timeout)
	}
	return el.CancelTimeout(), nil
}

func (r *Rod) WaitClickable(ctx context.Context, loc scraper.Locator, timeout time.Duration) (scraper.Element, error) {
	el, err := r.page.Context(ctx).Timeout(timeout).Element(string(loc))
	if err != nil {
		return nil, timeoutErr(err, timeout)
	}
	if err := el.WaitEnabled(); err != nil {
		return nil, timeoutErr(err, timeout)
	}
	return el.CancelTimeout(), nil
}

func element(el scraper.Element) (*rod.Element, error) {
	e, ok := el.(*rod.Element)
	if !ok || e == nil {
		return nil, fmt.Errorf("element %T is not a rod element", el)
	}
	return e, nil
}

func (r *Rod) Click(ctx context.Context, el scraper.Element) error {
	e, err := element(el)
	if err != nil {
		return err
	}
	return e.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}

func (r *Rod) ScrollIntoView(ctx context.Context, el scraper.Element) error {
	e, err := element(el)
	if err != nil {
		return err
	}
	return e.Context(ctx).ScrollIntoView()
}

func (r *Rod) ReadAllText(ctx context.Context, loc scraper.Locator) ([]string, error) {
	html, err := r.page.Context(ctx).HTML()
	if err != nil {
		return nil, err
	}
	return extractText(html, string(loc))
}

func (r *Rod) Cookie(ctx context.Context, name string) (*scraper.Cookie, error) {
	cookies, err := r.page.Context(ctx).Cookies(nil)
	if err != nil {
		return nil, err
	}
	for _, ck := range cookies {
		if ck.Name != name {
			continue
		}
		out := &scraper.Cookie{Name: ck.Name, Value: ck.Value}
		if !ck.Session && ck.Expires > 0 {
			out.Expires = time.Unix(int64(ck.Expires), 0)
		}
		return out, nil
	}
	return nil, nil
}

func (r *Rod) Sleep(ctx context.Context, d time.Duration) error {
	return sleep(ctx, d)
}

func (r *Rod) Close() error {
	err := r.browser.Close()
	r.lnch.Cleanup()
	return err
}
