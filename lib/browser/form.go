package browser

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"poloscraper/lib/telemetry"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/browser")

// FormSession emulates a browser session over a cookie-jar HTTP client.
// The portal is plain server-rendered PHP, so navigation is a GET,
// filling a field stages a form value, and clicking a submit button
// replays the enclosing form. Pages resolve synchronously; Locate
// re-fetches the current URL until its deadline to honor bounded waits.
type FormSession struct {
	http    *resty.Client
	base    *url.URL
	current *url.URL
	body    []byte
	doc     *goquery.Document
	pending map[string]string
}

type FormSessionOptions struct {
	BaseUrl string
}

func NewFormSession(opts FormSessionOptions) (*FormSession, error) {
	base, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(base.Hostname()))
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "lib/browser/http")

	return &FormSession{
		http:    client,
		base:    base,
		pending: map[string]string{},
	}, nil
}

func (s *FormSession) resolve(ref string) (*url.URL, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, err
	}
	if s.current != nil {
		return s.current.ResolveReference(u), nil
	}
	return s.base.ResolveReference(u), nil
}

func (s *FormSession) load(ctx context.Context, res *resty.Response) error {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return err
	}
	s.body = res.Body()
	s.doc = doc
	s.pending = map[string]string{}
	if raw := res.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		s.current = raw.Request.URL
	}
	return nil
}

func (s *FormSession) Navigate(ctx context.Context, ref string) error {
	ctx, span := tracer.Start(ctx, "session:Navigate")
	defer span.End()

	target, err := s.resolve(ref)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to resolve url")
		return err
	}

	res, err := s.http.R().
		SetContext(ctx).
		Get(target.String())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return err
	}
	s.current = target
	return s.load(ctx, res)
}

func (s *FormSession) find(loc Locator) *goquery.Selection {
	if s.doc == nil {
		return nil
	}
	switch loc.By {
	case ByID:
		// ids on this portal contain '#' (btn_visualizar#0), which a
		// css selector would need escaping for, so match the raw attr.
		var found *goquery.Selection
		s.doc.Find("*").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			if sel.AttrOr("id", "") == loc.Value {
				found = sel
				return false
			}
			return true
		})
		return found
	default:
		sel := s.doc.Find(loc.Value)
		if sel.Length() == 0 {
			return nil
		}
		return sel.First()
	}
}

func (s *FormSession) Locate(ctx context.Context, loc Locator, cond Condition, timeout time.Duration) (Element, error) {
	deadline := time.Now().Add(timeout)
	for {
		if sel := s.find(loc); sel != nil {
			return &formElement{session: s, sel: sel}, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, loc)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(250 * time.Millisecond):
		}
		if s.current != nil {
			if err := s.Refresh(ctx); err != nil {
				return nil, err
			}
		}
	}
}

// Refresh re-fetches the current URL, replacing the held document.
func (s *FormSession) Refresh(ctx context.Context) error {
	if s.current == nil {
		return fmt.Errorf("no page loaded")
	}
	res, err := s.http.R().SetContext(ctx).Get(s.current.String())
	if err != nil {
		return err
	}
	return s.load(ctx, res)
}

func (s *FormSession) Markup(ctx context.Context) (string, error) {
	if s.doc == nil {
		return "", fmt.Errorf("no page loaded")
	}
	return string(s.body), nil
}

func (s *FormSession) CurrentURL() string {
	if s.current == nil {
		return ""
	}
	return s.current.String()
}

func (s *FormSession) Close() error {
	s.http.GetClient().CloseIdleConnections()
	s.doc = nil
	s.body = nil
	return nil
}

type formElement struct {
	session *FormSession
	sel     *goquery.Selection
}

func (e *formElement) name() string {
	if n := e.sel.AttrOr("name", ""); n != "" {
		return n
	}
	return e.sel.AttrOr("id", "")
}

func (e *formElement) SetValue(value string) error {
	n := e.name()
	if n == "" {
		return fmt.Errorf("element has neither name nor id")
	}
	e.session.pending[n] = value
	return nil
}

func (e *formElement) Attr(name string) string {
	return e.sel.AttrOr(name, "")
}

func (e *formElement) Text() string {
	return strings.TrimSpace(e.sel.Text())
}

var windowOpenPatterns = []string{"window.open('", `window.open("`}

// WindowOpenTarget pulls the first argument out of an inline
// window.open handler, accepting either quote style. The portal opens
// its report pages through these handlers instead of plain links.
func WindowOpenTarget(onclick string) string {
	for _, prefix := range windowOpenPatterns {
		start := strings.Index(onclick, prefix)
		if start < 0 {
			continue
		}
		quote := prefix[len(prefix)-1]
		rest := onclick[start+len(prefix):]
		end := strings.IndexByte(rest, quote)
		if end > 0 {
			return rest[:end]
		}
	}
	return ""
}

// Click emulates what the portal's markup wires the element to do:
// window.open handlers and anchors navigate, submit controls replay
// their enclosing form with the staged values.
func (e *formElement) Click(ctx context.Context) error {
	if target := WindowOpenTarget(e.Attr("onclick")); target != "" {
		return e.session.Navigate(ctx, target)
	}
	if goquery.NodeName(e.sel) == "a" {
		if href := e.Attr("href"); href != "" {
			return e.session.Navigate(ctx, href)
		}
	}

	form := e.sel.Closest("form")
	if form.Length() == 0 {
		return fmt.Errorf("element %q is not interactable", e.name())
	}
	return e.session.submit(ctx, form, e)
}

func (s *FormSession) submit(ctx context.Context, form *goquery.Selection, clicked *formElement) error {
	ctx, span := tracer.Start(ctx, "session:submit")
	defer span.End()

	values := url.Values{}
	form.Find("input, select, textarea").Each(func(_ int, input *goquery.Selection) {
		name := input.AttrOr("name", input.AttrOr("id", ""))
		if name == "" {
			return
		}
		kind := strings.ToLower(input.AttrOr("type", "text"))
		switch kind {
		case "submit", "button", "image", "reset":
			return
		case "checkbox", "radio":
			if _, checked := input.Attr("checked"); !checked {
				return
			}
		}
		values.Set(name, input.AttrOr("value", ""))
	})
	for name, v := range s.pending {
		values.Set(name, v)
	}
	if n := clicked.name(); n != "" {
		values.Set(n, clicked.Attr("value"))
	}

	action, err := s.resolve(form.AttrOr("action", ""))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to resolve form action")
		return err
	}

	method := strings.ToUpper(form.AttrOr("method", "GET"))
	req := s.http.R().SetContext(ctx)

	var res *resty.Response
	if method == "POST" {
		formData := map[string]string{}
		for name := range values {
			formData[name] = values.Get(name)
		}
		res, err = req.SetFormData(formData).Post(action.String())
	} else {
		action.RawQuery = values.Encode()
		res, err = req.Get(action.String())
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit form")
		return err
	}

	s.current = action
	return s.load(ctx, res)
}
