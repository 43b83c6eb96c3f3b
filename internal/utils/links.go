package utils

import (
	"strings"

	"golang.org/x/net/html"
)

// ExtractLinks parses an HTML document and returns all anchor targets
// resolved against baseURL. Schemes that never point at pages
// (javascript:, mailto:, tel:) and bare fragments are skipped. Unresolvable
// hrefs are dropped; link extraction is best-effort by design.
func ExtractLinks(doc string, baseURL string) []string {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil
	}

	var links []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "a" || n.Data == "area") {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				href := strings.TrimSpace(attr.Val)
				if href == "" || strings.HasPrefix(href, "#") ||
					strings.HasPrefix(href, "javascript:") ||
					strings.HasPrefix(href, "mailto:") ||
					strings.HasPrefix(href, "tel:") {
					continue
				}
				resolved, err := Normalize(href, baseURL)
				if err != nil {
					continue
				}
				links = append(links, resolved)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return links
}
