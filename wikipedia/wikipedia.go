// Package wikipedia fetches the lead section of an English Wikipedia article
// as plain text.
package wikipedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/amonks/artistgraph/limiter"
	"github.com/amonks/artistgraph/readthrough"
	"github.com/amonks/artistgraph/request"
	"github.com/rs/zerolog/log"
)

const (
	DefaultAPIURL    = "https://en.wikipedia.org/w/api.php"
	DefaultUserAgent = "artistgraph/1.0 (https://github.com/amonks/artistgraph)"
)

type Config struct {
	APIURL     string
	UserAgent  string
	Cache      *readthrough.ReadThrough
	Limiter    *limiter.Limiter
	HTTPClient *http.Client
}

type Client struct {
	apiURL    string
	userAgent string
	cache     *readthrough.ReadThrough
	limiter   *limiter.Limiter
	http      *http.Client
}

func New(cfg Config) *Client {
	c := &Client{
		apiURL:    cfg.APIURL,
		userAgent: cfg.UserAgent,
		cache:     cfg.Cache,
		limiter:   cfg.Limiter,
		http:      cfg.HTTPClient,
	}
	if c.apiURL == "" {
		c.apiURL = DefaultAPIURL
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.limiter == nil {
		c.limiter = limiter.Every(0)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 10 * time.Second}
	}
	return c
}

type parseResponse struct {
	Parse *struct {
		Title string `json:"title"`
		Text  string `json:"text"`
	} `json:"parse"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// Extract returns the lead paragraphs of the article titled title,
// following redirects. Missing articles and disambiguation pages give "".
func (c *Client) Extract(ctx context.Context, title string) (string, error) {
	query := url.Values{
		"action":        {"parse"},
		"page":          {title},
		"prop":          {"text"},
		"section":       {"0"},
		"format":        {"json"},
		"formatversion": {"2"},
		"redirects":     {"1"},
	}
	body, err := c.get(ctx, c.apiURL+"?"+query.Encode())
	if err != nil {
		return "", fmt.Errorf("error fetching wikipedia article '%s': %w", title, err)
	}
	defer body.Close()

	var resp parseResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return "", fmt.Errorf("error decoding wikipedia article '%s': %w", title, err)
	}
	if resp.Error != nil {
		if resp.Error.Code == "missingtitle" || resp.Error.Code == "invalidtitle" {
			return "", nil
		}
		return "", fmt.Errorf("wikipedia error for '%s': %s: %s", title, resp.Error.Code, resp.Error.Info)
	}
	if resp.Parse == nil {
		return "", nil
	}

	return LeadText(resp.Parse.Text)
}

var (
	citation   = regexp.MustCompile(`\[\d+\]`)
	whitespace = regexp.MustCompile(`[ \t]+`)
)

// LeadText pulls the non-empty top-level paragraphs out of rendered article
// HTML, with references and pronunciation widgets stripped.
func LeadText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("error parsing article html: %w", err)
	}
	if doc.Find("#disambigbox, .dmbox-disambig").Length() > 0 {
		return "", nil
	}

	doc.Find("sup.reference, .mw-ref, .reference, .noprint, style, .IPA").Remove()

	var paras []string
	doc.Find(".mw-parser-output > p").Each(func(_ int, p *goquery.Selection) {
		if p.HasClass("mw-empty-elt") {
			return
		}
		text := citation.ReplaceAllString(p.Text(), "")
		text = whitespace.ReplaceAllString(strings.TrimSpace(text), " ")
		if text != "" {
			paras = append(paras, text)
		}
	})
	return strings.Join(paras, "\n\n"), nil
}

func (c *Client) get(ctx context.Context, u string) (io.ReadCloser, error) {
	if cached, _, err := c.cache.Get(u); err == nil {
		return cached, nil
	} else if !errors.Is(err, readthrough.ErrMiss) {
		log.Warn().Err(err).Msg("wikipedia cache")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("canceled: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if err := request.Error(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	body, _, err := c.cache.Set(u, resp.Body)
	if err != nil {
		return nil, err
	}
	return body, nil
}
