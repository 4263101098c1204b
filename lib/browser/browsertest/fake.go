package browsertest

import (
	"context"
	"fmt"
	"poloscraper/lib/browser"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Fake is a scripted browser.Session for tests: pages are fixture
// markup keyed by URL, and clicks run the transition registered for the
// element's locator. Every interaction is recorded.
type Fake struct {
	Pages     map[string]string
	OnClick   map[string]func(f *Fake) error
	OnRefresh func(f *Fake) error

	URL    string
	Values map[string]string
	Log    []string
	Closed bool

	markup string
}

func New() *Fake {
	return &Fake{
		Pages:   map[string]string{},
		OnClick: map[string]func(f *Fake) error{},
		Values:  map[string]string{},
	}
}

// Show swaps the current document without a navigation, the way a form
// submit leaves the URL untouched but replaces the page.
func (f *Fake) Show(markup string) {
	f.markup = markup
}

func (f *Fake) Navigate(ctx context.Context, url string) error {
	f.Log = append(f.Log, "navigate "+url)
	markup, ok := f.Pages[url]
	if !ok {
		// resolve relative paths against nothing; tests register the
		// exact strings the client navigates to
		for registered, m := range f.Pages {
			if strings.HasSuffix(url, registered) {
				f.URL = url
				f.Show(m)
				return nil
			}
		}
		return fmt.Errorf("no fixture page for %q", url)
	}
	f.URL = url
	f.Show(markup)
	return nil
}

func (f *Fake) Locate(ctx context.Context, loc browser.Locator, cond browser.Condition, timeout time.Duration) (browser.Element, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(f.markup))
	if err != nil {
		return nil, err
	}

	var sel *goquery.Selection
	switch loc.By {
	case browser.ByID:
		doc.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if s.AttrOr("id", "") == loc.Value {
				sel = s
				return false
			}
			return true
		})
	default:
		found := doc.Find(loc.Value)
		if found.Length() > 0 {
			sel = found.First()
		}
	}
	if sel == nil {
		return nil, fmt.Errorf("%w: %s", browser.ErrNotFound, loc)
	}
	return &fakeElement{fake: f, loc: loc, sel: sel}, nil
}

func (f *Fake) Refresh(ctx context.Context) error {
	f.Log = append(f.Log, "refresh")
	if f.OnRefresh != nil {
		return f.OnRefresh(f)
	}
	return nil
}

func (f *Fake) Markup(ctx context.Context) (string, error) {
	return f.markup, nil
}

func (f *Fake) CurrentURL() string { return f.URL }

func (f *Fake) Close() error {
	f.Closed = true
	return nil
}

type fakeElement struct {
	fake *Fake
	loc  browser.Locator
	sel  *goquery.Selection
}

func (e *fakeElement) SetValue(value string) error {
	name := e.sel.AttrOr("name", e.sel.AttrOr("id", ""))
	e.fake.Values[name] = value
	e.fake.Log = append(e.fake.Log, fmt.Sprintf("set %s=%s", name, value))
	return nil
}

func (e *fakeElement) Click(ctx context.Context) error {
	e.fake.Log = append(e.fake.Log, "click "+e.loc.String())
	if handler, ok := e.fake.OnClick[e.loc.String()]; ok {
		return handler(e.fake)
	}
	return nil
}

func (e *fakeElement) Attr(name string) string {
	return e.sel.AttrOr(name, "")
}

func (e *fakeElement) Text() string {
	return strings.TrimSpace(e.sel.Text())
}
