package eodhd

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"

	"github.com/etnz/curves/date"
)

// diskCache is an http.RoundTripper storing successful responses on disk.
//
// Entries are keyed by the current period, so the cache expires when the period changes.
type diskCache struct {
	base   http.RoundTripper
	period date.Period
	dir    string // os.TempDir() if empty
	today  func() date.Date
}

// RoundTrip implements the http.RoundTripper interface. It checks for a cached
// response on disk first. If a fresh cached response is not found, it proceeds
// with the actual HTTP request and caches the new response if it's successful.
func (c *diskCache) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	today := date.Today
	if c.today != nil {
		today = c.today
	}
	rangeID := date.NewRange(today(), c.period).Identifier()
	key := fmt.Sprintf("%s %s %s", rangeID, req.Method, req.URL.String())
	key = fmt.Sprintf("eodhd-%s-%x", c.period, sha1.Sum([]byte(key)))

	cachedResp, err := c.get(key, req)
	if err == nil { // Cache hit
		return cachedResp, nil
	}

	resp, err = c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Printf("%v %v%v %v", resp.Request.Method, resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	if resp.StatusCode >= 300 {
		return resp, nil
	}

	if err := c.put(key, resp); err != nil {
		log.Printf("cache write err (ignored): %v\n", err)
	}
	return resp, nil
}

func (c *diskCache) file(key string) string {
	dir := c.dir
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, key)
}

// get retrieves a cached response from disk
func (c *diskCache) get(key string, req *http.Request) (resp *http.Response, err error) {
	content, err := os.ReadFile(c.file(key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

// put stores a response to disk cache
func (c *diskCache) put(key string, resp *http.Response) (err error) {
	// DumpResponse reads the body and replaces it with an in memory copy.
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	return os.WriteFile(c.file(key), content, 0o644)
}

// NewCachingClient returns an http.Client that uses a disk cache in dir where entries expire
// at the end of period. An empty dir is the system temporary directory.
func NewCachingClient(dir string, period date.Period) *http.Client {
	client := new(http.Client)
	client.Transport = &diskCache{base: http.DefaultTransport, period: period, dir: dir}
	return client
}

// jwget performs an HTTP GET request to the given address and decodes the
// JSON response body into the provided data structure. Numbers are decoded as json.Number
// to keep their exact decimal value.
func jwget(ctx context.Context, client *http.Client, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	if _, err = io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	dec := json.NewDecoder(&buf)
	dec.UseNumber()
	return dec.Decode(data)
}
