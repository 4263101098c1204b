package browser_test

import (
	"context"
	"poloscraper/lib/browser"
	"poloscraper/lib/browser/browsertest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLocateAnyPrefersFirstCandidate(t *testing.T) {
	fake := browsertest.New()
	fake.Show(`<html><body><input id="usu_login"><input id="login"></body></html>`)

	el, err := browser.LocateAny(context.Background(), fake, browser.CondVisible, time.Millisecond,
		browser.ID("usu_login"), browser.ID("login"))
	require.NoError(t, err)
	require.Equal(t, "usu_login", el.Attr("id"))
}

func TestLocateAnyFallsBack(t *testing.T) {
	fake := browsertest.New()
	fake.Show(`<html><body><input id="login"></body></html>`)

	el, err := browser.LocateAny(context.Background(), fake, browser.CondVisible, time.Millisecond,
		browser.ID("usu_login"), browser.ID("login"))
	require.NoError(t, err)
	require.Equal(t, "login", el.Attr("id"))
}

func TestLocateAnyNotFound(t *testing.T) {
	fake := browsertest.New()
	fake.Show(`<html><body></body></html>`)

	_, err := browser.LocateAny(context.Background(), fake, browser.CondVisible, time.Millisecond,
		browser.ID("usu_login"), browser.ID("login"))
	require.ErrorIs(t, err, browser.ErrNotFound)
}

func TestLocateAnyRefreshesBetweenRounds(t *testing.T) {
	fake := browsertest.New()
	fake.Show(`<html><body></body></html>`)
	fake.OnRefresh = func(f *browsertest.Fake) error {
		f.Show(`<html><body><input id="btn_entrar"></body></html>`)
		return nil
	}

	el, err := browser.LocateAny(context.Background(), fake, browser.CondPresent, time.Second,
		browser.ID("btn_entrar"))
	require.NoError(t, err)
	require.Equal(t, "btn_entrar", el.Attr("id"))
	require.Contains(t, fake.Log, "refresh")
}

func TestWindowOpenTarget(t *testing.T) {
	require.Equal(t, "a.php?x=1", browser.WindowOpenTarget("window.open('a.php?x=1','j')"))
	require.Equal(t, "b.php", browser.WindowOpenTarget(`window.open("b.php", "j")`))
	require.Equal(t, "", browser.WindowOpenTarget("submitForm()"))
	require.Equal(t, "", browser.WindowOpenTarget(""))
}

func TestLocateAnyNoCandidates(t *testing.T) {
	fake := browsertest.New()
	_, err := browser.LocateAny(context.Background(), fake, browser.CondVisible, time.Millisecond)
	require.ErrorIs(t, err, browser.ErrNotFound)
}
