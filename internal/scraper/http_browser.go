package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"sjsage522/pricepeek/helpers"

	"github.com/PuerkitoBio/goquery"
)

// HTTPBrowser fetches pages with plain HTTP requests instead of a real browser.
// Pages that render their product data client-side will fail their required-field waits.
type HTTPBrowser struct {
	client *http.Client
}

// NewHTTPBrowser creates an HTTP-backed browser using the shared helpers client
func NewHTTPBrowser() *HTTPBrowser {
	return &HTTPBrowser{}
}

// NewHTTPBrowserWithClient creates an HTTP-backed browser sending requests through client
func NewHTTPBrowserWithClient(client *http.Client) *HTTPBrowser {
	return &HTTPBrowser{client: client}
}

// NewSession returns a session bound to userAgent
func (b *HTTPBrowser) NewSession(_ context.Context, userAgent string) (Session, error) {
	return &httpSession{client: b.client, userAgent: userAgent}, nil
}

type httpSession struct {
	client    *http.Client
	userAgent string
	html      string
	doc       *goquery.Document
	closed    bool
}

func (s *httpSession) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if s.closed {
		return errors.New("session closed")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body []byte
	var err error
	if s.client != nil {
		body, err = helpers.FetchWithClient(ctx, s.client, url, s.userAgent)
	} else {
		body, err = helpers.FetchWithRandomHeaders(ctx, url, s.userAgent)
	}
	if err != nil {
		return err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return fmt.Errorf("parse document: %w", err)
	}

	s.html = string(body)
	s.doc = doc
	return nil
}

// WaitVisible does not wait: a static document either has the element or never will
func (s *httpSession) WaitVisible(_ context.Context, selectors []string, _ time.Duration) error {
	if s.doc == nil {
		return errors.New("no page loaded")
	}
	for _, selector := range selectors {
		if s.doc.Find(selector).Length() > 0 {
			return nil
		}
	}
	return fmt.Errorf("none of %q present", selectors)
}

func (s *httpSession) HTML(context.Context) (string, error) {
	if s.doc == nil {
		return "", errors.New("no page loaded")
	}
	return s.html, nil
}

func (s *httpSession) Close() error {
	s.closed = true
	s.doc = nil
	return nil
}
