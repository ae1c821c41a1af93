package applemusic

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

// ServerDataElementID is the id of the element that carries the page's
// embedded JSON payload.
const ServerDataElementID = "serialized-server-data"

// FetchServerData downloads an album page and decodes its embedded payload.
//
// The storefront embeds its rendering data in the page like this:
//
//	<script type="application/json" id="serialized-server-data">[{...}]</script>
//
// Returns an error if:
//   - The page cannot be fetched (*http.FetchError, returned unchanged)
//   - The element is absent, empty, or not valid JSON (ErrPayloadNotFound)
func (r *Resolver) FetchServerData(ctx context.Context, pageURL string) (*ServerData, error) {
	page, err := r.client.GetString(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	text, ok := findElementText(page, ServerDataElementID)
	if !ok {
		return nil, fmt.Errorf("%w: element #%s not present in HTML", ErrPayloadNotFound, ServerDataElementID)
	}

	data, err := ParseServerData(text)
	if err != nil {
		return nil, err
	}

	r.log.WithFields(logrus.Fields{"url": pageURL, "bytes": len(text)}).Debug("decoded server data")
	return data, nil
}

// findElementText returns the concatenated text content of the first
// element whose id attribute equals id.
func findElementText(page, id string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", false
	}

	node := findByID(doc, id)
	if node == nil {
		return "", false
	}

	var b strings.Builder
	collectText(node, &b)
	return b.String(), true
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, attr := range n.Attr {
			if attr.Key == "id" && attr.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}
