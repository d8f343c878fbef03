// Package htmltomarkdown renders filtered search results pages as Markdown.
package htmltomarkdown

import (
	"slices"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/serpblock"
	"github.com/fwojciec/serpblock/goquery"
	"golang.org/x/net/html"
)

// Ensure Converter implements serpblock.Converter at compile time.
var _ serpblock.Converter = (*Converter)(nil)

// Converter renders results pages as Markdown. Markup the blocklist adds to
// a page is left out: block and unblock controls, the removed-results
// notification and results hidden by the blocklist.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	conv.Register.RendererFor("div", converter.TagTypeBlock, skipBlocklistMarkup, converter.PriorityEarly)
	conv.Register.RendererFor("li", converter.TagTypeBlock, skipBlocklistMarkup, converter.PriorityEarly)
	conv.Register.RendererFor("a", converter.TagTypeInline, skipBlocklistMarkup, converter.PriorityEarly)
	return &Converter{conv: conv}
}

// Convert transforms HTML content into Markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", serpblock.Errorf(serpblock.EINVALID, "empty HTML input")
	}

	result, err := c.conv.ConvertString(html)
	if err != nil {
		return "", err
	}

	return result, nil
}

// skipBlocklistMarkup renders nothing for nodes added or hidden by the
// blocklist and defers every other node to the regular renderers.
func skipBlocklistMarkup(_ converter.Context, _ converter.Writer, n *html.Node) converter.RenderStatus {
	if isBlocklistMarkup(n) {
		return converter.RenderSuccess
	}
	return converter.RenderTryNext
}

func isBlocklistMarkup(n *html.Node) bool {
	classes := strings.Fields(attr(n, "class"))
	switch n.Data {
	case "div":
		if attr(n, "id") == goquery.NotificationID {
			return true
		}
		return slices.Contains(classes, goquery.ControlClasses[serpblock.ControlBlock]) ||
			slices.Contains(classes, goquery.ControlClasses[serpblock.ControlUnblock]) ||
			slices.Contains(classes, goquery.BlockedClass)
	case "li":
		return slices.Contains(classes, goquery.BlockedClass)
	case "a":
		return slices.Contains(classes, goquery.ShowBlockedClass)
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
