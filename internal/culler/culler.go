// Package culler checks that uploaded images are still reachable at their
// recorded download URLs.
package culler

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/nikbrunner/imgpick/internal/storage"
)

// Status represents the health status of a URL.
type Status int

const (
	Healthy     Status = iota // 2xx or 3xx response, or the local file exists
	Dead                      // 404, 410 or a missing local file
	Unreachable               // timeout, DNS failure, connection refused, etc.
)

func (s Status) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Dead:
		return "dead"
	default:
		return "unreachable"
	}
}

// Result holds the check result for a single document.
type Result struct {
	Document   *storage.Document
	Status     Status
	StatusCode int    // HTTP status code (0 if connection failed or local)
	Error      string // Error message for unreachable URLs
}

// ProgressFunc is called after each URL is checked.
// completed is the number of URLs checked so far, total is the total count.
// It may be called from several goroutines at once.
type ProgressFunc func(completed, total int)

// Options tunes a check run.
type Options struct {
	Concurrency    int
	Timeout        time.Duration
	ExcludeDomains []string // 404s here count as "possibly private" instead of dead
	OnProgress     ProgressFunc
}

// CheckURLs checks all document URLs concurrently and returns results in
// document order.
func CheckURLs(ctx context.Context, docs []storage.Document, opts Options) []Result {
	if len(docs) == 0 {
		return nil
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 10
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	excludeMap := make(map[string]bool)
	for _, domain := range opts.ExcludeDomains {
		excludeMap[strings.ToLower(domain)] = true
	}

	client := &http.Client{
		Timeout: opts.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	results := make([]Result, len(docs))
	var completed atomic.Int32

	var g errgroup.Group
	g.SetLimit(opts.Concurrency)
	for i := range docs {
		g.Go(func() error {
			results[i] = checkURL(ctx, client, &docs[i], excludeMap)
			logrus.WithFields(logrus.Fields{
				"url":    docs[i].URL,
				"status": results[i].Status,
			}).Debug("checked upload")

			n := int(completed.Add(1))
			if opts.OnProgress != nil {
				opts.OnProgress(n, len(docs))
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// checkURL checks a single URL and returns the result.
func checkURL(ctx context.Context, client *http.Client, doc *storage.Document, excludeMap map[string]bool) Result {
	result := Result{Document: doc}

	if strings.HasPrefix(doc.URL, "file://") {
		return checkFile(result)
	}

	// HEAD first. Presigned URLs are signed for GET only and answer HEAD
	// with 403, so those fall through to GET as well.
	resp, err := do(ctx, client, http.MethodHead, doc.URL)
	if err != nil || resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusMethodNotAllowed {
		if resp != nil {
			resp.Body.Close()
		}
		resp, err = do(ctx, client, http.MethodGet, doc.URL)
		if err != nil {
			result.Status = Unreachable
			result.Error = normalizeError(err.Error())
			return result
		}
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.Status = Healthy
	case resp.StatusCode == 404 || resp.StatusCode == 410:
		if isExcludedDomain(doc.URL, excludeMap) {
			result.Status = Unreachable
			result.Error = "Possibly private (auth required)"
		} else {
			result.Status = Dead
		}
	default:
		// 500, 403 and friends may be temporary or need auth
		result.Status = Unreachable
		result.Error = http.StatusText(resp.StatusCode)
	}

	return result
}

func do(ctx context.Context, client *http.Client, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return client.Do(req)
}

// checkFile handles objects written by the local backend.
func checkFile(result Result) Result {
	u, err := url.Parse(result.Document.URL)
	if err != nil {
		result.Status = Unreachable
		result.Error = err.Error()
		return result
	}

	if _, err := os.Stat(u.Path); err != nil {
		if os.IsNotExist(err) {
			result.Status = Dead
		} else {
			result.Status = Unreachable
			result.Error = err.Error()
		}
		return result
	}

	result.Status = Healthy
	return result
}

// isExcludedDomain checks if the URL's domain is in the exclude list.
func isExcludedDomain(rawURL string, excludeMap map[string]bool) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	if excludeMap[host] {
		return true
	}
	// Subdomains match too: "cdn.example.com" matches "example.com"
	for domain := range excludeMap {
		if strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// normalizeError simplifies verbose error messages into readable categories.
func normalizeError(errStr string) string {
	lower := strings.ToLower(errStr)

	switch {
	case strings.Contains(lower, "no such host"):
		return "DNS failure"
	case strings.Contains(lower, "context deadline exceeded"),
		strings.Contains(lower, "timeout"):
		return "Timeout"
	case strings.Contains(lower, "connection refused"):
		return "Connection refused"
	case strings.Contains(lower, "certificate"):
		return "TLS/certificate error"
	case strings.Contains(lower, "network is unreachable"):
		return "Network unreachable"
	case strings.Contains(lower, "tls:"):
		return "TLS error"
	default:
		return errStr
	}
}
