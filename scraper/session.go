package scraper

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/bilmo5352/nsequotes/config"
	"github.com/bilmo5352/nsequotes/models"
)

// State is the navigation session's position in the search flow.
type State int

const (
	StateInit State = iota
	StateLoading
	StateSearchReady
	StateTyped
	StateSuggestionsVisible
	StateNavigated
	StateSettled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateLoading:
		return "loading"
	case StateSearchReady:
		return "search_ready"
	case StateTyped:
		return "typed"
	case StateSuggestionsVisible:
		return "suggestions_visible"
	case StateNavigated:
		return "navigated"
	case StateSettled:
		return "settled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Session owns one browser/page pair for the lifetime of a single
// extraction request. It is exclusively owned by that request and torn
// down on every exit path; work inside a session is strictly sequential.
type Session struct {
	browser *rod.Browser
	lnchr   *launcher.Launcher
	page    *rod.Page
	cfg     config.NavConfig
	state   State
	diags   []string
	sleep   func(time.Duration)
}

// Close tears the session down: page, browser connection, then the
// browser process itself. Safe to call on every exit path.
func (s *Session) Close() {
	if s.page != nil {
		_ = s.page.Close()
	}
	if s.browser != nil {
		_ = s.browser.Close()
	}
	if s.lnchr != nil {
		s.lnchr.Kill()
		s.lnchr.Cleanup()
	}
	slog.Debug("session closed", "state", s.state.String())
}

// State returns the session's current flow state.
func (s *Session) State() State {
	return s.state
}

// Diagnostics returns the degraded-mode markers recorded so far.
func (s *Session) Diagnostics() []string {
	return append([]string{}, s.diags...)
}

func (s *Session) note(diag string) {
	s.diags = append(s.diags, diag)
}

func (s *Session) transition(next State) {
	slog.Debug("session transition", "from", s.state.String(), "to", next.String())
	s.state = next
}

func (s *Session) fail() {
	s.transition(StateFailed)
}

// humanDelay sleeps a randomized duration within [min, max]. Part of the
// anti-bot posture carried over from the search flow; the exact timing is
// never load-bearing.
func (s *Session) humanDelay(min, max time.Duration) {
	d := min
	if max > min {
		d += rand.N(max - min)
	}
	s.sleep(d)
}

// loadWithRetry makes up to attempts full-criterion load tries with a
// backoff between them; after the last failure a single minimal-wait try
// runs before giving up, trading load completeness for not hanging
// forever.
func loadWithRetry(attempts int, load func(minimalWait bool) error, backoff func(attempt int)) error {
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		lastErr = load(false)
		if lastErr == nil {
			return nil
		}
		slog.Warn("page load attempt failed", "attempt", attempt+1, "error", lastErr)
		if attempt < attempts-1 {
			backoff(attempt)
		}
	}
	return load(true)
}

// typeSequence commits the search term one character at a time with a
// pause after each keypress.
func typeSequence(term string, press func(r rune) error, pause func()) error {
	for _, r := range term {
		if err := press(r); err != nil {
			return err
		}
		pause()
	}
	return nil
}

// Navigate drives the session through the full search flow:
// load homepage → resolve search input → type symbol → select suggestion
// → settle the quote page. On success the session is Settled and the
// still-open page is ready for readiness polling and extraction.
func (s *Session) Navigate(ctx context.Context, symbol string) error {
	p := s.page.Context(ctx)

	// Loading
	s.transition(StateLoading)
	err := loadWithRetry(s.cfg.LoadAttempts, func(minimalWait bool) error {
		if minimalWait {
			// Commit-level navigation only; no load event wait.
			return p.Timeout(s.cfg.MinimalLoadTimeout).Navigate(s.cfg.HomepageURL)
		}
		pt := p.Timeout(s.cfg.LoadTimeout)
		if err := pt.Navigate(s.cfg.HomepageURL); err != nil {
			return err
		}
		return pt.WaitLoad()
	}, func(int) {
		s.humanDelay(s.cfg.RetryBackoffMin, s.cfg.RetryBackoffMax)
	})
	if err != nil {
		s.fail()
		return models.NewScrapeError(models.ErrCodeNavigation,
			"homepage load failed after retries and minimal-wait fallback", err)
	}
	s.humanDelay(2*time.Second, 4*time.Second)
	s.jiggleMouse(p)

	// SearchReady
	inputEl, err := s.resolveVisible(p, inputCandidates)
	if err != nil {
		s.fail()
		return models.NewScrapeError(models.ErrCodeElementNotFound,
			"search input not found on homepage", err)
	}
	s.transition(StateSearchReady)

	if err := inputEl.ScrollIntoView(); err == nil {
		s.humanDelay(time.Second, 2*time.Second)
	}
	if err := inputEl.Click(proto.InputMouseButtonLeft, 1); err != nil {
		s.fail()
		return models.NewScrapeError(models.ErrCodeSessionFault,
			"failed to focus search input", err)
	}
	_ = inputEl.SelectAllText()
	_ = inputEl.Type(input.Backspace)
	s.humanDelay(300*time.Millisecond, 700*time.Millisecond)

	// Typed
	err = typeSequence(symbol,
		func(r rune) error { return inputEl.Input(string(r)) },
		func() { s.humanDelay(s.cfg.TypeDelayMin, s.cfg.TypeDelayMax) },
	)
	if err != nil {
		s.fail()
		return models.NewScrapeError(models.ErrCodeSessionFault,
			"typing search term failed", err)
	}
	s.transition(StateTyped)
	s.humanDelay(3*time.Second, 5*time.Second)

	// SuggestionsVisible: click the first visible suggestion; when none
	// resolves, keyboard selection is a valid transition, not a failure.
	clicked := false
	if sugEl, serr := s.resolveVisible(p, suggestionCandidates); serr == nil {
		_ = sugEl.ScrollIntoView()
		s.humanDelay(300*time.Millisecond, 800*time.Millisecond)
		if cerr := sugEl.Click(proto.InputMouseButtonLeft, 1); cerr == nil {
			clicked = true
		} else {
			slog.Warn("suggestion click failed, falling back to keyboard", "error", cerr)
		}
	}
	if !clicked {
		s.note(models.DiagKeyboardFallback)
		_ = inputEl.Type(input.ArrowDown)
		s.humanDelay(300*time.Millisecond, 800*time.Millisecond)
		if err := inputEl.Type(input.Enter); err != nil {
			s.fail()
			return models.NewScrapeError(models.ErrCodeElementNotFound,
				"no suggestion resolved and keyboard selection failed", err)
		}
	}
	s.transition(StateSuggestionsVisible)
	s.transition(StateNavigated)
	s.humanDelay(s.cfg.SettleDelayMin, s.cfg.SettleDelayMax)

	// Settled: the main container is best-effort, then lazy-load nudges.
	if _, err := p.Timeout(s.cfg.ContentTimeout).Element("main#midBody"); err != nil {
		s.note(models.DiagMainContentTimeout)
	}
	s.humanDelay(s.cfg.SettleDelayMin, s.cfg.SettleDelayMax)
	s.scrollNudge(p)
	s.transition(StateSettled)
	return nil
}

// Snapshot serializes the settled document together with the live page
// handle. Called after the readiness gate so deferred content that
// rendered during polling is included.
func (s *Session) Snapshot() (*RenderedDocument, error) {
	html, err := s.page.HTML()
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeSessionFault,
			"failed to serialize settled document", err)
	}
	return &RenderedDocument{
		HTML: html,
		URL:  evalStringOrEmpty(s.page, `() => window.location.href`),
		page: s.page,
	}, nil
}

// resolveVisible walks the candidate list in priority order and returns
// the first visible match.
func (s *Session) resolveVisible(p *rod.Page, candidates []string) (*rod.Element, error) {
	var resolved *rod.Element
	idx, err := ResolveFirst(candidates, func(sel string) (bool, error) {
		el, perr := p.Timeout(s.cfg.ElementTimeout).Element(sel)
		if perr != nil {
			return false, perr
		}
		visible, verr := el.Visible()
		if verr != nil {
			return false, verr
		}
		if visible {
			resolved = el
		}
		return visible, nil
	})
	if err != nil {
		return nil, err
	}
	slog.Debug("locator candidate resolved", "selector", candidates[idx])
	return resolved, nil
}

// scrollNudge forces deferred content to render: bottom, then middle,
// then top, with pauses for lazy loaders to fire.
func (s *Session) scrollNudge(p *rod.Page) {
	for _, js := range []string{
		`() => window.scrollTo(0, document.body.scrollHeight)`,
		`() => window.scrollTo(0, document.body.scrollHeight / 2)`,
		`() => window.scrollTo(0, 0)`,
	} {
		if _, err := p.Eval(js); err != nil {
			slog.Debug("scroll nudge failed", "error", err)
			return
		}
		s.humanDelay(2*time.Second, 3*time.Second)
	}
	_ = p.Mouse.Scroll(0, float64(200+rand.IntN(400)), 0)
}

// jiggleMouse moves the pointer somewhere on the page, same anti-bot
// posture as the randomized delays.
func (s *Session) jiggleMouse(p *rod.Page) {
	x := float64(100 + rand.IntN(400))
	y := float64(100 + rand.IntN(400))
	if err := p.Mouse.MoveTo(proto.NewPoint(x, y)); err != nil {
		slog.Debug("mouse move failed", "error", err)
	}
	s.humanDelay(500*time.Millisecond, time.Second)
}

// evalStringOrEmpty evaluates a JS expression and returns the string
// result, swallowing any errors (useful for optional metadata).
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}
