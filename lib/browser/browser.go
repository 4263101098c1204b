package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Condition is the readiness requirement for a located element. A
// form-emulating session resolves documents synchronously so the
// distinction only matters for drivers with an actual renderer, but the
// contract mirrors what navigation code asks for.
type Condition int

const (
	CondPresent Condition = iota
	CondVisible
	CondClickable
)

type By int

const (
	ByID By = iota
	ByCSS
)

// Locator is one candidate way of finding an element. Navigation code
// passes ordered lists of them and takes the first that resolves.
type Locator struct {
	By    By
	Value string
}

func ID(value string) Locator  { return Locator{By: ByID, Value: value} }
func CSS(value string) Locator { return Locator{By: ByCSS, Value: value} }

func (l Locator) String() string {
	switch l.By {
	case ByID:
		return fmt.Sprintf("id=%s", l.Value)
	default:
		return fmt.Sprintf("css=%s", l.Value)
	}
}

var ErrNotFound = errors.New("element not found")

type Element interface {
	SetValue(value string) error
	Click(ctx context.Context) error
	// Attr returns the raw attribute value, or "" when absent.
	Attr(name string) string
	Text() string
}

// Session is the portal session contract. One session is opened per
// batch and is never shared between logical flows.
type Session interface {
	Navigate(ctx context.Context, url string) error
	Locate(ctx context.Context, loc Locator, cond Condition, timeout time.Duration) (Element, error)
	Markup(ctx context.Context) (string, error)
	CurrentURL() string
	Close() error
}

// Refresher is implemented by sessions that can re-fetch the current
// document in place. LocateAny refreshes between retry rounds so a
// bounded wait observes server-side changes instead of polling a stale
// document.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// LocateAny tries the candidate locators in order and returns the first
// element present; candidates are retried together until the timeout
// elapses. This replaces the repeated try/except chains the portal's
// shifting element ids would otherwise force on every caller.
func LocateAny(ctx context.Context, s Session, cond Condition, timeout time.Duration, candidates ...Locator) (Element, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no locators given", ErrNotFound)
	}

	deadline := time.Now().Add(timeout)
	for {
		for _, loc := range candidates {
			el, err := s.Locate(ctx, loc, cond, 0)
			if err == nil {
				return el, nil
			}
			if !errors.Is(err, ErrNotFound) {
				return nil, err
			}
		}

		if time.Now().After(deadline) {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(250 * time.Millisecond):
		}
		if refresher, ok := s.(Refresher); ok {
			if err := refresher.Refresh(ctx); err != nil {
				return nil, err
			}
		}
	}

	names := make([]string, len(candidates))
	for i, loc := range candidates {
		names[i] = loc.String()
	}
	return nil, fmt.Errorf("%w: none of [%s] matched", ErrNotFound, strings.Join(names, ", "))
}
