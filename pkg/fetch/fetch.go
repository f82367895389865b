// Package fetch downloads a published ratings/reviews page and flattens
// the selected container into the line-oriented plain text the extractors
// consume.
package fetch

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/html"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:82.0) Gecko/20100101 Firefox/82.0"

// Elements that force a line break around their content.
var blockElements = map[string]struct{}{
	"p": {}, "div": {}, "li": {}, "tr": {}, "h1": {}, "h2": {}, "h3": {},
	"h4": {}, "h5": {}, "h6": {}, "blockquote": {}, "pre": {}, "section": {},
	"article": {}, "table": {},
}

// Elements whose content never reaches the corpus.
var skipElements = map[string]struct{}{
	"script": {}, "style": {}, "noscript": {}, "iframe": {},
}

type Client struct {
	http *retryablehttp.Client
}

func NewClient(proxy string) (*Client, error) {
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = log.New(io.Discard, "", 0)
	retryClient.RetryMax = 5

	if proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %v", err)
		}
		retryClient.HTTPClient.Transport = &http.Transport{
			Proxy: http.ProxyURL(proxyURL),
		}
	}

	return &Client{http: retryClient}, nil
}

// Fetch downloads pageURL and returns the flattened text of the first node
// matching selector. An empty selector takes the whole body.
func (c *Client) Fetch(pageURL, selector string) (string, error) {
	req, err := retryablehttp.NewRequest("GET", pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}
	return Extract(doc, selector)
}

// Extract flattens the selected container of an already-parsed document.
func Extract(doc *goquery.Document, selector string) (string, error) {
	sel := doc.Selection
	if selector != "" {
		sel = doc.Find(selector)
		if sel.Length() == 0 {
			return "", fmt.Errorf("selector %q matched nothing", selector)
		}
		sel = sel.First()
	}

	var b strings.Builder
	for _, node := range sel.Nodes {
		renderText(&b, node)
	}
	return collapseBlankRuns(b.String()), nil
}

// renderText walks the node tree emitting text content, with newlines at
// block boundaries so headers and score lines keep their own lines.
func renderText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(strings.ReplaceAll(n.Data, "\u00a0", " "))
		return
	case html.ElementNode:
		if _, skip := skipElements[n.Data]; skip {
			return
		}
		if n.Data == "br" {
			b.WriteString("\n")
			return
		}
	}

	_, block := blockElements[n.Data]
	if block && n.Type == html.ElementNode {
		b.WriteString("\n")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderText(b, c)
	}
	if block && n.Type == html.ElementNode {
		b.WriteString("\n")
	}
}

// collapseBlankRuns trims trailing space per line and squeezes runs of
// blank lines down to one, preserving the paragraph breaks the extractors
// key on.
func collapseBlankRuns(text string) string {
	var out []string
	blank := true
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n") + "\n"
}
