package polo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"poloscraper/lib/browser"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("scrapers/polo")

// ErrLoginFailed means the credentials were rejected or the login form
// never appeared. Nothing about the session is usable afterwards.
var ErrLoginFailed = errors.New("portal login failed")

const (
	homePath       = "/administracao/paginaInicial.php"
	fichaPath      = "/registro_controle_academico/fichaAcademica.php"
	historicoPath  = "/registro_controle_academico/consultaHistoricoOficial.php"
	financeiroPath = "/financeiro/fichaFinanceira.php"
)

// element ids drifted between portal revisions, so every lookup lists
// the current id first and the older ones after it
var (
	userLocators   = []browser.Locator{browser.ID("usu_login"), browser.ID("login")}
	passLocators   = []browser.Locator{browser.ID("usu_senha"), browser.ID("senha_ls")}
	submitLocators = []browser.Locator{browser.ID("btn_entrar"), browser.ID("btnLogin")}
)

type ClientOptions struct {
	BaseUrl string
	// Timeout bounds each element wait, not the whole page flow.
	// Defaults to 10s.
	Timeout time.Duration
	Session browser.Session
}

// Client drives the portal's pages over a browser session: it owns
// which URLs to visit, which elements to interact with, and in what
// order. Parsing the markup it fetches is the Parse* functions' job.
type Client struct {
	session browser.Session
	base    *url.URL
	timeout time.Duration
}

func NewClient(opts ClientOptions) (*Client, error) {
	base, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Second * 10
	}
	return &Client{
		session: opts.Session,
		base:    base,
		timeout: timeout,
	}, nil
}

func (c *Client) url(path string) string {
	u := *c.base
	u.Path = path
	return u.String()
}

func (c *Client) Close() error {
	return c.session.Close()
}

// Login authenticates the session. Any failure here maps to
// ErrLoginFailed because nothing else can work without it.
func (c *Client) Login(ctx context.Context, username, password string) error {
	ctx, span := tracer.Start(ctx, "polo:Login")
	defer span.End()

	fail := func(err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, "login failed")
		return fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}

	if err := c.session.Navigate(ctx, c.base.String()); err != nil {
		return fail(err)
	}

	user, err := browser.LocateAny(ctx, c.session, browser.CondVisible, c.timeout, userLocators...)
	if err != nil {
		return fail(err)
	}
	pass, err := browser.LocateAny(ctx, c.session, browser.CondVisible, c.timeout, passLocators...)
	if err != nil {
		return fail(err)
	}
	if err := user.SetValue(username); err != nil {
		return fail(err)
	}
	if err := pass.SetValue(password); err != nil {
		return fail(err)
	}

	submit, err := browser.LocateAny(ctx, c.session, browser.CondClickable, c.timeout, submitLocators...)
	if err != nil {
		return fail(err)
	}
	if err := submit.Click(ctx); err != nil {
		return fail(err)
	}

	// the home page only renders for an authenticated session
	if err := c.session.Navigate(ctx, c.url(homePath)); err != nil {
		return fail(err)
	}
	markup, err := c.session.Markup(ctx)
	if err != nil {
		return fail(err)
	}
	if strings.Contains(markup, "usu_login") || strings.Contains(markup, "senha_ls") {
		return fail(errors.New("still on the login form"))
	}
	return nil
}

// search fills the CPF filter of the page at path and opens the first
// result with the given button.
func (c *Client) search(ctx context.Context, path, cpf string, open browser.Locator) error {
	if err := c.session.Navigate(ctx, c.url(path)); err != nil {
		return err
	}

	filter, err := c.session.Locate(ctx, browser.ID("pess_cpf"), browser.CondVisible, c.timeout)
	if err != nil {
		return err
	}
	if err := filter.SetValue(cpf); err != nil {
		return err
	}

	apply, err := c.session.Locate(ctx, browser.ID("btn_filtrar"), browser.CondClickable, c.timeout)
	if err != nil {
		return err
	}
	if err := apply.Click(ctx); err != nil {
		return err
	}

	result, err := c.session.Locate(ctx, open, browser.CondClickable, c.timeout)
	if err != nil {
		return fmt.Errorf("no result for search: %w", err)
	}
	return result.Click(ctx)
}

// FichaAcademica opens the student's ficha acadêmica and returns its
// markup.
func (c *Client) FichaAcademica(ctx context.Context, cpf string) (string, error) {
	ctx, span := tracer.Start(ctx, "polo:FichaAcademica", trace.WithAttributes(attribute.String("cpf", cpf)))
	defer span.End()

	if err := c.search(ctx, fichaPath, cpf, browser.ID("btn_visualizar#0")); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open ficha")
		return "", err
	}
	if _, err := c.session.Locate(ctx, browser.CSS(".tabela_relatorio"), browser.CondPresent, c.timeout); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ficha never rendered")
		return "", err
	}
	return c.session.Markup(ctx)
}

// Historico reaches the histórico oficial from the ficha the session is
// currently on. When the shortcut button is missing it falls back to
// navigating the page directly and re-running the search.
func (c *Client) Historico(ctx context.Context, cpf string) (string, error) {
	ctx, span := tracer.Start(ctx, "polo:Historico", trace.WithAttributes(attribute.String("cpf", cpf)))
	defer span.End()

	fail := func(err error, message string) (string, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, message)
		return "", err
	}

	shortcut, err := c.session.Locate(ctx, browser.CSS("input[value='Histórico Acadêmico']"), browser.CondClickable, c.timeout)
	if err == nil {
		err = shortcut.Click(ctx)
	}
	if err != nil {
		if err := c.search(ctx, historicoPath, cpf, browser.ID("btn_visualizar#0")); err != nil {
			return fail(err, "failed to reach historico")
		}
	}

	if _, err := c.session.Locate(ctx, browser.CSS(".tabela_relatorio"), browser.CondPresent, c.timeout); err != nil {
		return fail(err, "historico never rendered")
	}
	return c.session.Markup(ctx)
}

// FichaFinanceira opens the student's ficha financeira. The page links
// back to an academic summary through a window.open button; the client
// follows that popup target in the same session.
func (c *Client) FichaFinanceira(ctx context.Context, cpf string) (string, error) {
	ctx, span := tracer.Start(ctx, "polo:FichaFinanceira", trace.WithAttributes(attribute.String("cpf", cpf)))
	defer span.End()

	fail := func(err error, message string) (string, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, message)
		return "", err
	}

	if err := c.search(ctx, financeiroPath, cpf, browser.ID("btn_editar#0")); err != nil {
		return fail(err, "failed to open ficha financeira")
	}

	popup, err := c.session.Locate(ctx, browser.CSS(`input.BUTTON[value="Ficha Acadêmica"]`), browser.CondPresent, c.timeout)
	if err != nil {
		return fail(err, "academic summary button missing")
	}
	target := browser.WindowOpenTarget(popup.Attr("onclick"))
	if target == "" {
		return fail(errors.New("no window.open target on summary button"), "academic summary button missing")
	}

	resolved, err := c.resolveAgainstCurrent(target)
	if err != nil {
		return fail(err, "bad popup target")
	}
	if err := c.session.Navigate(ctx, resolved); err != nil {
		return fail(err, "failed to open academic summary")
	}
	if _, err := c.session.Locate(ctx, browser.CSS(".tabela_relatorio"), browser.CondPresent, c.timeout); err != nil {
		return fail(err, "academic summary never rendered")
	}
	return c.session.Markup(ctx)
}

func (c *Client) resolveAgainstCurrent(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	if current, err := url.Parse(c.session.CurrentURL()); err == nil && current.Host != "" {
		return current.ResolveReference(u).String(), nil
	}
	return c.base.ResolveReference(u).String(), nil
}
