// Package browser provides the automation backends the scraper drives:
// chromedp (default) and go-rod with stealth, plus an HTTP status prober.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"catalog-aggregator/scraper"
	"catalog-aggregator/utils"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Options configures a browser backend.
type Options struct {
	ExecPath          string // "" runs FindChrome
	Headless          bool
	UserAgent         string
	NavigationTimeout time.Duration
}

func (o *Options) defaults() {
	if o.ExecPath == "" {
		o.ExecPath = FindChrome()
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
	if o.NavigationTimeout <= 0 {
		o.NavigationTimeout = 60 * time.Second
	}
}

// Chrome drives one tab of a chromedp-launched browser.
type Chrome struct {
	opts   Options
	logger *utils.Logger

	tab         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

var _ scraper.Adapter = (*Chrome)(nil)

// NewChrome launches the browser and opens a blank tab.
func NewChrome(opts Options, logger *utils.Logger) (*Chrome, error) {
	opts.defaults()
	logger.Info("[browser] Using browser binary: %s", opts.ExecPath)

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(opts.UserAgent),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	// Suppress chromedp log noise
	tab, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...any) {}))

	if err := chromedp.Run(tab); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	return &Chrome{
		opts:        opts,
		logger:      logger,
		tab:         tab,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
	}, nil
}

// run executes actions on the tab, bounded by timeout and by ctx.
func (c *Chrome) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(c.tab, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %v", scraper.ErrTimeout, timeout)
	}
	return err
}

func (c *Chrome) Navigate(ctx context.Context, url string) error {
	return c.run(ctx, c.opts.NavigationTimeout, chromedp.Navigate(url))
}

func (c *Chrome) waitNode(ctx context.Context, loc scraper.Locator, timeout time.Duration, wait chromedp.QueryOption) (scraper.Element, error) {
	var nodes []*cdp.Node
	err := c.run(ctx, timeout, chromedp.Nodes(string(loc), &nodes, chromedp.ByQuery, wait))
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%s: no node", loc)
	}
	return nodes[0], nil
}

func (c *Chrome) WaitVisible(ctx context.Context, loc scraper.Locator, timeout time.Duration) (scraper.Element, error) {
	return c.waitNode(ctx, loc, timeout, chromedp.NodeVisible)
}

func (c *Chrome) WaitClickable(ctx context.Context, loc scraper.Locator, timeout time.Duration) (scraper.Element, error) {
	return c.waitNode(ctx, loc, timeout, chromedp.NodeEnabled)
}

func node(el scraper.Element) (*cdp.Node, error) {
	n, ok := el.(*cdp.Node)
	if !ok || n == nil {
		return nil, fmt.Errorf("element %T is not a chromedp node", el)
	}
	return n, nil
}

func (c *Chrome) Click(ctx context.Context, el scraper.Element) error {
	n, err := node(el)
	if err != nil {
		return err
	}
	return c.run(ctx, c.opts.NavigationTimeout, chromedp.MouseClickNode(n))
}

func (c *Chrome) ScrollIntoView(ctx context.Context, el scraper.Element) error {
	n, err := node(el)
	if err != nil {
		return err
	}
	return c.run(ctx, c.opts.NavigationTimeout, dom.ScrollIntoViewIfNeeded().WithBackendNodeID(n.BackendNodeID))
}

// ReadAllText snapshots the rendered document and reads the matches from
// it, so a list of any length costs one round trip.
func (c *Chrome) ReadAllText(ctx context.Context, loc scraper.Locator) ([]string, error) {
	var html string
	if err := c.run(ctx, c.opts.NavigationTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, err
	}
	return extractText(html, string(loc))
}

func (c *Chrome) Cookie(ctx context.Context, name string) (*scraper.Cookie, error) {
	var cookies []*network.Cookie
	err := c.run(ctx, c.opts.NavigationTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = network.GetCookies().Do(ctx)
		return err
	}))
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

func (c *Chrome) Sleep(ctx context.Context, d time.Duration) error {
	return sleep(ctx, d)
}

// Close shuts the tab and the browser process down.
func (c *Chrome) Close() error {
	c.cancelTab()
	c.cancelAlloc()
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
