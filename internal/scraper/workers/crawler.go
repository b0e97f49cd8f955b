package workers

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"propscout/internal/callback"
	"propscout/internal/config"
	"propscout/internal/extractor"
	"propscout/internal/logging"
	"propscout/internal/metrics"
	"propscout/pkg/models"
	"propscout/pkg/utils"
)

// JobTracker is the slice of the job store the crawler needs: log lines,
// status transitions and the cooperative stop flag.
type JobTracker interface {
	AppendLog(ctx context.Context, jobID string, severity models.LogSeverity, message string)
	SetStatus(ctx context.Context, jobID string, status models.JobStatus, errMsg string) error
	StopRequested(ctx context.Context, jobID string) bool
}

// ProxyProvider resolves the shared upstream proxy record, nil when none is
// configured.
type ProxyProvider interface {
	GetProxyConfig(ctx context.Context) (*models.ProxyConfig, error)
}

// Crawler executes one crawl request: fetch the index page, walk every
// listing link with the configured delay window and hand each extracted
// property to the sink. All progress is reported through the job tracker.
type Crawler struct {
	config  *config.Config
	engine  *extractor.Engine
	fetcher *extractor.Fetcher
	tracker JobTracker
	proxies ProxyProvider
	sink    callback.Sink
	limiter *RateLimiter
	logger  logging.Logger
}

// NewCrawler creates a crawler. proxies and sink may be nil.
func NewCrawler(cfg *config.Config, engine *extractor.Engine, tracker JobTracker, proxies ProxyProvider, sink callback.Sink) *Crawler {
	return &Crawler{
		config:  cfg,
		engine:  engine,
		fetcher: extractor.NewFetcher(cfg),
		tracker: tracker,
		proxies: proxies,
		sink:    sink,
		logger:  logging.GetGlobalLogger().WithField("component", "crawler"),
	}
}

// Run processes one crawl request to a terminal job status. The returned
// error mirrors what was already written to the job store and only feeds
// pool statistics.
func (c *Crawler) Run(ctx context.Context, req models.CrawlRequest) error {
	started := time.Now()
	pageURL := BuildPageURL(req.CategoryURL, req.PageNum)
	c.tracker.AppendLog(ctx, req.JobID, models.LogInfo,
		fmt.Sprintf("Starting %s crawl of %s, page %d", req.Mode, req.Domain, req.PageNum))

	proxy := c.lookupProxy(ctx, req.JobID)

	if err := c.limiter.Wait(ctx, req.Domain); err != nil {
		return c.fail(ctx, req.JobID, fmt.Errorf("rate limiter wait aborted: %w", err))
	}

	html, err := c.fetcher.Fetch(ctx, pageURL, "", proxy)
	if err != nil {
		c.limiter.RecordFailure(req.Domain, err)
		return c.fail(ctx, req.JobID, fmt.Errorf("failed to fetch index page %s: %w", pageURL, err))
	}

	links, err := collectListingLinks(html, pageURL, req.LinkSelector)
	if err != nil {
		return c.fail(ctx, req.JobID, err)
	}

	if len(links) == 0 {
		c.tracker.AppendLog(ctx, req.JobID, models.LogWarn, "No listing links found on page")
		return c.tracker.SetStatus(ctx, req.JobID, models.StatusCompleted, "")
	}

	c.tracker.AppendLog(ctx, req.JobID, models.LogInfo,
		fmt.Sprintf("Found %d listings", len(links)))

	scraped, failed := 0, 0
	for _, link := range links {
		if c.tracker.StopRequested(ctx, req.JobID) {
			c.tracker.AppendLog(ctx, req.JobID, models.LogWarn, "Stop requested, ending crawl")
			return c.tracker.SetStatus(ctx, req.JobID, models.StatusStopped, "")
		}

		if err := c.politeDelay(ctx, req.DelayMin, req.DelayMax); err != nil {
			return c.fail(ctx, req.JobID, err)
		}
		if err := c.limiter.Wait(ctx, req.Domain); err != nil {
			return c.fail(ctx, req.JobID, fmt.Errorf("rate limiter wait aborted: %w", err))
		}

		prop, err := c.engine.Extract(ctx, extractor.ExtractInput{
			URL:       link,
			Selectors: req.ExtractSelectors,
			Proxy:     proxy,
		})
		if err != nil {
			failed++
			c.limiter.RecordFailure(req.Domain, err)
			c.tracker.AppendLog(ctx, req.JobID, models.LogError,
				fmt.Sprintf("Failed to scrape %s: %s", link, err.Error()))
			continue
		}
		c.limiter.RecordSuccess(req.Domain)
		metrics.ListingsScraped.Inc()
		scraped++

		if c.sink != nil {
			if err := c.sink.DeliverProperty(ctx, prop); err != nil {
				c.tracker.AppendLog(ctx, req.JobID, models.LogWarn,
					fmt.Sprintf("Delivery failed for %s: %s", link, err.Error()))
			}
		}

		c.tracker.AppendLog(ctx, req.JobID, models.LogSuccess,
			"Scraped "+utils.GetStringOrDefault(prop.Title, link))
	}

	c.tracker.AppendLog(ctx, req.JobID, models.LogSuccess,
		fmt.Sprintf("Page %d completed in %s: %d scraped, %d failed",
			req.PageNum, utils.FormatDuration(time.Since(started)), scraped, failed))
	return c.tracker.SetStatus(ctx, req.JobID, models.StatusCompleted, "")
}

// fail writes the error to the job log, moves the job to error state and
// returns the error for pool statistics.
func (c *Crawler) fail(ctx context.Context, jobID string, err error) error {
	// Status writes use a fresh context so a crawl cancelled by timeout
	// still lands in a terminal state.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	c.tracker.AppendLog(writeCtx, jobID, models.LogError, err.Error())
	if serr := c.tracker.SetStatus(writeCtx, jobID, models.StatusError, err.Error()); serr != nil {
		c.logger.Error("Failed to record job error", map[string]interface{}{
			"job_id": jobID,
			"error":  serr.Error(),
		})
	}
	return err
}

func (c *Crawler) lookupProxy(ctx context.Context, jobID string) *models.ProxyConfig {
	if c.proxies == nil {
		return nil
	}
	proxy, err := c.proxies.GetProxyConfig(ctx)
	if err != nil {
		c.tracker.AppendLog(ctx, jobID, models.LogWarn, "Proxy lookup failed, continuing without proxy")
		return nil
	}
	return proxy
}

// politeDelay sleeps a random duration inside the configured window.
func (c *Crawler) politeDelay(ctx context.Context, minSec, maxSec int) error {
	if maxSec <= 0 {
		return nil
	}
	if minSec < 0 {
		minSec = 0
	}
	delay := time.Duration(minSec) * time.Second
	if maxSec > minSec {
		delay += time.Duration(rand.Intn((maxSec-minSec)*1000)) * time.Millisecond
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

// BuildPageURL substitutes the {page} token when the category URL carries
// one, otherwise appends a page query parameter.
func BuildPageURL(categoryURL string, page int) string {
	if strings.Contains(categoryURL, "{page}") {
		return strings.ReplaceAll(categoryURL, "{page}", fmt.Sprintf("%d", page))
	}

	u, err := url.Parse(categoryURL)
	if err != nil {
		return categoryURL
	}
	query := u.Query()
	query.Set("page", fmt.Sprintf("%d", page))
	u.RawQuery = query.Encode()
	return u.String()
}

// collectListingLinks parses the index page and returns the absolute,
// deduplicated listing URLs matched by the link selector, in page order.
func collectListingLinks(html, pageURL, linkSelector string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse index page: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page url: %w", err)
	}

	var links []string
	seen := make(map[string]struct{})
	doc.Find(linkSelector).Each(func(_ int, node *goquery.Selection) {
		href, ok := node.Attr("href")
		if !ok {
			href, ok = node.Find("a[href]").First().Attr("href")
		}
		if !ok || href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return
		}

		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		abs.Fragment = ""

		key := abs.String()
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		links = append(links, key)
	})

	return links, nil
}
