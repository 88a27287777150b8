package scraper

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/bilmo5352/nsequotes/config"
	"github.com/bilmo5352/nsequotes/extract"
	"github.com/bilmo5352/nsequotes/models"
	"github.com/bilmo5352/nsequotes/storage"
)

// mainContentSelector scopes field extraction to the quote page body.
const mainContentSelector = "main#midBody"

// Result is the outcome of one quote extraction: the assembled data, the
// page it was read from and any artifacts persisted along the way. A
// Result is produced even when extraction degrades; only navigation- and
// session-level failures surface as errors.
type Result struct {
	Data      models.QuoteData
	URL       string
	Artifacts models.ArtifactPaths
	Timestamp string
}

// Scraper launches a dedicated browser session per request and runs the
// full navigate → await readiness → extract → assemble pipeline.
type Scraper struct {
	cfg    *config.Config
	writer *storage.Writer

	activeSessions atomic.Int32
	totalSessions  atomic.Int64
}

// NewScraper validates the locator catalog and prepares the default
// artifact writer. No browser is launched here; each request gets its
// own.
func NewScraper(cfg *config.Config) (*Scraper, error) {
	if err := ValidateSelectors(inputCandidates, suggestionCandidates); err != nil {
		return nil, err
	}
	writer, err := storage.NewWriter(cfg.Artifacts.OutputDir)
	if err != nil {
		return nil, err
	}
	return &Scraper{cfg: cfg, writer: writer}, nil
}

// Stats reports session counters for the health endpoint.
func (s *Scraper) Stats() models.SessionStats {
	return models.SessionStats{
		ActiveSessions: int(s.activeSessions.Load()),
		TotalSessions:  s.totalSessions.Load(),
	}
}

// newSession launches a fresh browser with the stealth posture applied
// before any navigation: anti-automation flags, stealth script, user
// agent override and browser-like request headers.
func (s *Scraper) newSession(headless bool) (*Session, error) {
	bc := s.cfg.Browser

	l := launcher.New().
		Headless(headless).
		NoSandbox(bc.NoSandbox)
	if bc.BrowserBin != "" {
		l = l.Bin(bc.BrowserBin)
	}
	if bc.Proxy != "" {
		l = l.Proxy(bc.Proxy)
	}
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-gpu"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("no-first-run"))
	l.Set(flags.Flag("window-size"), "1920,1080")

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeSessionFault,
			"failed to launch browser", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, models.NewScrapeError(models.ErrCodeSessionFault,
			"failed to connect to browser", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, models.NewScrapeError(models.ErrCodeSessionFault,
			"failed to create page", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             bc.ViewportWidth,
		Height:            bc.ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		slog.Warn("failed to set viewport", "error", err)
	}
	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		slog.Warn("failed to inject stealth script", "error", err)
	}
	if err := (proto.NetworkSetUserAgentOverride{
		UserAgent:      bc.UserAgent,
		AcceptLanguage: "en-US,en;q=0.9",
	}).Call(page); err != nil {
		slog.Warn("failed to override user agent", "error", err)
	}
	if err := (proto.NetworkSetExtraHTTPHeaders{
		Headers: toHeaders(map[string]string{
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
			"Referer":         "https://www.google.com/",
		}),
	}).Call(page); err != nil {
		slog.Warn("failed to set extra headers", "error", err)
	}

	return &Session{
		browser: browser,
		lnchr:   l,
		page:    page,
		cfg:     s.cfg.Nav,
		state:   StateInit,
		sleep:   time.Sleep,
	}, nil
}

func toHeaders(m map[string]string) map[string]gson.JSON {
	headers := make(map[string]gson.JSON, len(m))
	for k, v := range m {
		headers[k] = gson.New(v)
	}
	return headers
}

// Quote runs one full extraction for req.Symbol. The returned Result is
// always non-nil so callers can surface partial artifacts even when an
// error is also returned.
func (s *Scraper) Quote(ctx context.Context, req *models.QuoteRequest) (*Result, error) {
	headless := s.cfg.Browser.Headless
	if req.Headless != nil {
		headless = *req.Headless
	}
	takeScreenshot := s.cfg.Artifacts.Screenshot
	if req.TakeScreenshot != nil {
		takeScreenshot = *req.TakeScreenshot
	}
	writer := s.writer
	if req.OutputDir != "" {
		var err error
		if writer, err = storage.NewWriter(req.OutputDir); err != nil {
			return &Result{}, models.NewScrapeError(models.ErrCodeInvalidInput,
				"output directory is not writable", err)
		}
	}

	ts := time.Now()
	result := &Result{Timestamp: storage.Timestamp(ts)}

	s.activeSessions.Add(1)
	defer s.activeSessions.Add(-1)
	s.totalSessions.Add(1)

	sess, err := s.newSession(headless)
	if err != nil {
		return result, err
	}
	defer sess.Close()

	slog.Info("session started", "symbol", req.Symbol, "headless", headless)
	start := time.Now()

	if err := sess.Navigate(ctx, req.Symbol); err != nil {
		if ctx.Err() != nil {
			return result, models.NewScrapeError(models.ErrCodeTimeout,
				"extraction timed out during navigation", err)
		}
		return result, err
	}

	// Readiness gate: exhaustion degrades, never aborts.
	ready := AwaitReady(ctx, func() (bool, error) {
		res, err := sess.page.Eval(orderBookReadyJS)
		if err != nil {
			return false, err
		}
		return res.Value.Bool(), nil
	}, s.cfg.Readiness.MaxAttempts, s.cfg.Readiness.PollInterval)
	if !ready {
		sess.note(models.DiagReadinessTimeout)
		slog.Warn("order book readiness polling exhausted", "symbol", req.Symbol)
	}

	notes := []string{}

	if takeScreenshot {
		img, err := sess.page.Screenshot(true, nil)
		if err != nil {
			notes = append(notes, models.DiagScreenshotFailed)
			slog.Warn("screenshot capture failed", "error", err)
		} else if path, werr := writer.WriteBytes(s.cfg.Artifacts.Source, "quote", "png", ts, img); werr != nil {
			notes = append(notes, models.DiagArtifactWriteFailed)
			slog.Warn("screenshot artifact write failed", "error", werr)
		} else {
			result.Artifacts.Screenshot = path
		}
	}

	// Live fast path for the order book while the page is still open.
	live := sess.LiveOrderBook()

	doc, err := sess.Snapshot()
	if err != nil {
		return result, err
	}
	result.URL = doc.URL

	if path, werr := writer.WriteText(s.cfg.Artifacts.Source, "quote", "html", ts, doc.HTML); werr != nil {
		notes = append(notes, models.DiagArtifactWriteFailed)
		slog.Warn("html artifact write failed", "error", werr)
	} else {
		result.Artifacts.HTML = path
	}

	notes = append(sess.Diagnostics(), notes...)
	result.Data = s.extract(req.Symbol, doc.HTML, live, notes)

	if path, werr := writer.WriteJSON(s.cfg.Artifacts.Source, "quote", ts, result.Data); werr != nil {
		result.Data.Diagnostics = append(result.Data.Diagnostics, models.DiagArtifactWriteFailed)
		slog.Warn("json artifact write failed", "error", werr)
	} else {
		result.Artifacts.JSON = path
	}

	slog.Info("session finished",
		"symbol", req.Symbol,
		"strategy", result.Data.TableStrategy,
		"fields", len(result.Data.Fields),
		"order_book_rows", len(result.Data.OrderBook),
		"diagnostics", result.Data.Diagnostics,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return result, nil
}

// extract parses the snapshot and assembles the final quote data. Parse
// failures degrade into an empty-but-well-formed result.
func (s *Scraper) extract(symbol, rawHTML string, live []models.OrderRow, notes []string) models.QuoteData {
	fullDoc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		notes = append(notes, models.DiagSnapshotParseFailed)
		data := extract.Assemble(nil, nil, live, nil, "", notes)
		data.Symbol = symbol
		return data
	}

	// Header fields come from the whole document; the label catalog runs
	// against flattened main-content text.
	fields := extract.ExtractHeader(fullDoc)

	scoped, err := extract.ScopeHTML(rawHTML, mainContentSelector)
	if err != nil {
		notes = append(notes, models.DiagSnapshotParseFailed)
		scoped = rawHTML
	}
	flat := scoped
	if scopedDoc, err := goquery.NewDocumentFromReader(strings.NewReader(scoped)); err == nil {
		flat = extract.Flatten(scopedDoc.Selection)
	}
	for k, v := range extract.ExtractFields(flat) {
		if _, taken := fields[k]; !taken {
			fields[k] = v
		}
	}
	returns := extract.ExtractReturns(flat)

	snapshot, strategy := extract.ExtractTable(fullDoc, extract.OrderBookSchema())

	data := extract.Assemble(fields, returns, live, snapshot, strategy, notes)
	data.Symbol = symbol
	return data
}
