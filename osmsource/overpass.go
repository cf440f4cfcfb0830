// Package osmsource loads raw OSM elements from an Overpass API
// endpoint or from local files, in either Overpass JSON or native OSM
// XML form (subways/overpass.py, subways/osm_element.py).
package osmsource

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/transit-tools/subway-validator/model"
	"github.com/transit-tools/subway-validator/utils"
)

// fetchCacheTTL is how long a raw Overpass response body stays cached
// after a successful fetch, so a retried batch (or a second run against
// the same bboxes within a short window) avoids hitting the API again.
const fetchCacheTTL = 10 * time.Minute

// sliceSize bounds how many bboxes are sent to Overpass per request;
// the public API rejects queries above a certain length.
const sliceSize = 10

// interRequestWait is the pause between successive slices, to stay
// within the public Overpass instance's rate limit.
const interRequestWait = 5 * time.Second

// ComposeQuery builds the Overpass QL query that pulls every route,
// route_master, stop_area, stop_area_group, and (for rapid transit)
// subway/train-station entrance inside the given bboxes
// (subways/overpass.py::compose_overpass_request).
func ComposeQuery(overground bool, modes []string, bboxes []model.BBox) string {
	sorted := append([]string(nil), modes...)
	sort.Strings(sorted)

	var b strings.Builder
	b.WriteString("[out:json][timeout:1000];(")
	for _, bbox := range bboxes {
		part := fmt.Sprintf("(%g,%g,%g,%g)", bbox.MinLat, bbox.MinLon, bbox.MaxLat, bbox.MaxLon)
		b.WriteString("(")
		for _, mode := range sorted {
			fmt.Fprintf(&b, `rel[route=%q]%s;`, mode, part)
		}
		b.WriteString(");")
		b.WriteString("rel(br)[type=route_master];")
		if !overground {
			fmt.Fprintf(&b, "node[railway=subway_entrance]%s;", part)
			fmt.Fprintf(&b, "node[railway=train_station_entrance]%s;", part)
		}
		fmt.Fprintf(&b, "rel[public_transport=stop_area]%s;", part)
		b.WriteString("rel(br)[type=public_transport][public_transport=stop_area_group];")
	}
	b.WriteString(");(._;>>;);out body center qt;")
	return b.String()
}

// Fetcher pulls raw Overpass JSON responses over HTTP, retrying
// transient failures with exponential backoff, the retry/backoff shape
// the teacher's net/http-based client used, reworked here on top of
// fasthttp and layered with a response cache.
type Fetcher struct {
	client     *fasthttp.Client
	api        string
	maxRetries int
	backoff    time.Duration
	cache      utils.ValidationCache
}

// NewFetcher creates a Fetcher against the given Overpass API base URL,
// with response caching enabled.
func NewFetcher(api string) *Fetcher {
	return &Fetcher{
		client: &fasthttp.Client{
			MaxConnsPerHost:     10,
			MaxIdleConnDuration: 90 * time.Second,
			ReadTimeout:         1000 * time.Second,
			WriteTimeout:        30 * time.Second,
		},
		api:        api,
		maxRetries: 3,
		backoff:    time.Second,
		cache:      utils.NewMemoryValidationCache(nil),
	}
}

// FetchAll queries Overpass for every bbox, splitting the request list
// into sliceSize-sized batches and pausing between them
// (subways/overpass.py::multi_overpass).
func (f *Fetcher) FetchAll(ctx context.Context, overground bool, modes []string, bboxes []model.BBox) ([]byte, error) {
	var combined []byte
	for i := 0; i < len(bboxes); i += sliceSize {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(interRequestWait):
			}
		}
		end := i + sliceSize
		if end > len(bboxes) {
			end = len(bboxes)
		}
		body, err := f.fetchOne(ctx, overground, modes, bboxes[i:end])
		if err != nil {
			return nil, fmt.Errorf("osmsource: fetching bboxes %d-%d: %w", i, end, err)
		}
		combined = mergeElements(combined, body)
	}
	return combined, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, overground bool, modes []string, bboxes []model.BBox) ([]byte, error) {
	query := ComposeQuery(overground, modes, bboxes)
	cacheKey := utils.CalculateFileHash([]byte(query))
	if f.cache != nil {
		if cached, ok := f.cache.Get(cacheKey); ok {
			if body, ok := cached.([]byte); ok {
				return body, nil
			}
		}
	}

	requestURL := f.api + "?data=" + url.QueryEscape(query)

	var lastErr error
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			wait := f.backoff * time.Duration(1<<uint(attempt-1))
			if wait > 30*time.Second {
				wait = 30 * time.Second
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		req.SetRequestURI(requestURL)
		req.Header.SetMethod(fasthttp.MethodGet)
		req.Header.Set("User-Agent", "subway-validator/1.0")

		err := f.client.DoDeadline(req, resp, deadline(ctx))
		status := resp.StatusCode()
		var body []byte
		if err == nil && status == fasthttp.StatusOK {
			body = append(body, resp.Body()...)
		}
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)

		if err == nil && status == fasthttp.StatusOK {
			if f.cache != nil {
				_ = f.cache.Set(cacheKey, body, fetchCacheTTL)
			}
			return body, nil
		}
		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("overpass returned HTTP %d", status)
			if !isRetryableStatus(status) {
				return nil, lastErr
			}
		}
	}
	return nil, fmt.Errorf("overpass request failed after %d attempts: %w", f.maxRetries+1, lastErr)
}

func deadline(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	return time.Now().Add(1000 * time.Second)
}

func isRetryableStatus(status int) bool {
	switch status {
	case fasthttp.StatusRequestTimeout, fasthttp.StatusTooManyRequests,
		fasthttp.StatusInternalServerError, fasthttp.StatusBadGateway,
		fasthttp.StatusServiceUnavailable, fasthttp.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// mergeElements concatenates raw Overpass JSON element arrays. Each
// slice's response is merged at the top level so ParseOverpassJSON only
// ever has to deserialize a single combined document.
func mergeElements(a, b []byte) []byte {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	aObj, aErr := ParseOverpassJSON(a)
	bObj, bErr := ParseOverpassJSON(b)
	if aErr != nil || bErr != nil {
		return a // best-effort; caller surfaces the real parse error
	}
	combined, _ := EncodeOverpassJSON(append(aObj, bObj...))
	return combined
}
