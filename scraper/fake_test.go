package scraper

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"catalog-aggregator/models"
)

// fakeItem is one catalog entry of the simulated UI. A descriptor id
// missing from values renders no cell for that item.
type fakeItem struct {
	name   string
	values map[string]string
}

// fakeUI simulates the remote catalog list: a column-toggle panel that
// must be opened and applied, a slim-view cookie and paginated items.
type fakeUI struct {
	catalog models.CatalogType
	sel     Selectors
	pages   map[int][]fakeItem

	page      int
	panelOpen bool
	pending   map[string]bool
	visible   map[string]bool
	cookie    *Cookie

	// timeouts makes the next n waits on a locator expire.
	timeouts map[Locator]int
	// navErrs fails every navigation to a URL.
	navErrs map[string]error

	navigations []string
	commits     [][]string
	sleeps      int
	slimClicks  int
	closed      bool
}

var checkboxID = regexp.MustCompile(`id='([^']+)'`)

func newFakeUI(catalog models.CatalogType, pages map[int][]fakeItem) *fakeUI {
	return &fakeUI{
		catalog:  catalog,
		sel:      DefaultSelectors(),
		pages:    pages,
		visible:  map[string]bool{},
		timeouts: map[Locator]int{},
		navErrs:  map[string]error{},
		cookie:   &Cookie{Name: "list_type", Value: "slim"},
	}
}

func (f *fakeUI) Navigate(_ context.Context, url string) error {
	f.navigations = append(f.navigations, url)
	if err := f.navErrs[url]; err != nil {
		return err
	}
	f.page = 1
	if i := strings.Index(url, "?page="); i >= 0 {
		n, err := strconv.Atoi(url[i+len("?page="):])
		if err != nil {
			return err
		}
		f.page = n
	}
	f.panelOpen = false
	f.visible = map[string]bool{}
	for _, d := range f.catalog.DefaultVisible() {
		f.visible[d.ID] = true
	}
	return nil
}

func (f *fakeUI) locate(loc Locator) (Element, error) {
	if n := f.timeouts[loc]; n > 0 {
		f.timeouts[loc] = n - 1
		return nil, fmt.Errorf("%s: %w", loc, ErrTimeout)
	}
	if strings.HasPrefix(string(loc), "input[type='checkbox']") && !f.panelOpen {
		return nil, fmt.Errorf("%s: %w", loc, ErrTimeout)
	}
	return loc, nil
}

func (f *fakeUI) WaitVisible(_ context.Context, loc Locator, _ time.Duration) (Element, error) {
	return f.locate(loc)
}

func (f *fakeUI) WaitClickable(_ context.Context, loc Locator, _ time.Duration) (Element, error) {
	return f.locate(loc)
}

func (f *fakeUI) ScrollIntoView(context.Context, Element) error { return nil }

func (f *fakeUI) Click(_ context.Context, el Element) error {
	loc := el.(Locator)
	switch loc {
	case f.sel.EditColumns:
		f.panelOpen = true
		f.pending = map[string]bool{}
		for id := range f.visible {
			f.pending[id] = true
		}
	case f.sel.ApplyColumns:
		if !f.panelOpen {
			return errors.New("apply clicked with the panel closed")
		}
		f.visible = f.pending
		f.panelOpen = false
		f.commits = append(f.commits, f.visibleIDs())
	case f.sel.SlimView:
		f.slimClicks++
		f.cookie = &Cookie{Name: "list_type", Value: "slim"}
	default:
		m := checkboxID.FindStringSubmatch(string(loc))
		if m == nil {
			return fmt.Errorf("unexpected click on %s", loc)
		}
		f.pending[m[1]] = !f.pending[m[1]]
	}
	return nil
}

func (f *fakeUI) visibleIDs() []string {
	ids := make([]string, 0, len(f.visible))
	for id, on := range f.visible {
		if on {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// ReadAllText renders the value cells of every visible column, row by row,
// the way the slim list does.
func (f *fakeUI) ReadAllText(_ context.Context, loc Locator) ([]string, error) {
	items := f.pages[f.page]
	var out []string
	switch loc {
	case f.sel.Names:
		for _, it := range items {
			out = append(out, it.name)
		}
	case f.sel.Values, f.sel.ScoreValues:
		for _, it := range items {
			for _, d := range f.catalog.Descriptors {
				if !f.visible[d.ID] || (d.Values == "score") != (loc == f.sel.ScoreValues) {
					continue
				}
				if v, found := it.values[d.ID]; found {
					out = append(out, v)
				}
			}
		}
	default:
		return nil, fmt.Errorf("unexpected read of %s", loc)
	}
	return out, nil
}

func (f *fakeUI) Cookie(_ context.Context, name string) (*Cookie, error) {
	if f.cookie == nil || f.cookie.Name != name {
		return nil, nil
	}
	c := *f.cookie
	return &c, nil
}

func (f *fakeUI) Sleep(context.Context, time.Duration) error {
	f.sleeps++
	return nil
}

func (f *fakeUI) Close() error {
	f.closed = true
	return nil
}

type fakeProber map[int]int

func (p fakeProber) Status(_ context.Context, url string) (int, error) {
	i := strings.Index(url, "?page=")
	n, _ := strconv.Atoi(url[i+len("?page="):])
	if status, found := p[n]; found {
		return status, nil
	}
	return 200, nil
}

func testCatalog() models.CatalogType {
	return models.CatalogType{
		Name: "running-shoes",
		Path: "running-shoes",
		Descriptors: []models.ColumnDescriptor{
			{Key: "brand", ID: "fact-brand", Name: "Brand", Store: true},
			{Key: "weight", ID: "fact-weight", Name: "Weight", Unit: "oz", Store: true},
			{Key: "score", ID: "fact-score", Name: "Score", Store: true, Values: "score"},
			{Key: "msrp", ID: "fact-msrp", Name: "MSRP", Unit: "$", HiddenByDefault: true},
		},
	}
}

func item(name, brand, weight, score, msrp string) fakeItem {
	return fakeItem{name: name, values: map[string]string{
		"fact-brand":  brand,
		"fact-weight": weight,
		"fact-score":  score,
		"fact-msrp":   msrp,
	}}
}
