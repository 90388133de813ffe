package extractor

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// DefaultProfilePrefix is the URL prefix that marks a messaging-profile link.
const DefaultProfilePrefix = "https://t.me/"

// Links holds the hyperlinks found in one HTML document.
type Links struct {
	// Profiles are unique messaging-profile links.
	Profiles []string

	// Pages are unique non-profile hrefs in document order, exactly as written.
	Pages []string
}

// PageSignals combines everything extracted from a single page.
type PageSignals struct {
	Contacts
	Links
}

// HasContacts reports whether the page yielded any email, phone or profile.
// Page links alone do not count.
func (s PageSignals) HasContacts() bool {
	return !s.Contacts.IsEmpty() || len(s.Profiles) > 0
}

// Extractor classifies page content into contact signals and links.
type Extractor struct {
	// profilePrefix marks an href as a messaging-profile link.
	profilePrefix string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithProfilePrefix overrides the messaging-profile URL prefix.
// An empty prefix is ignored.
func WithProfilePrefix(prefix string) Option {
	return func(e *Extractor) {
		if prefix != "" {
			e.profilePrefix = prefix
		}
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{profilePrefix: DefaultProfilePrefix}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProfilePrefix returns the prefix used to recognize profile links.
func (e *Extractor) ProfilePrefix() string {
	return e.profilePrefix
}

// IsProfileLink reports whether href is a messaging-profile link.
func (e *Extractor) IsProfileLink(href string) bool {
	return strings.HasPrefix(href, e.profilePrefix)
}

// Extract runs both the contact and the link pass over a page body.
// A body that cannot be parsed as HTML still yields its contacts.
func (e *Extractor) Extract(body []byte) (PageSignals, error) {
	signals := PageSignals{Contacts: ExtractContacts(string(body))}

	links, err := e.ExtractLinks(bytes.NewReader(body))
	if err != nil {
		return signals, err
	}
	signals.Links = links
	return signals, nil
}

// ExtractLinks walks the document and classifies every <a href>.
func (e *Extractor) ExtractLinks(r io.Reader) (Links, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Links{}, err
	}

	links := Links{
		Profiles: make([]string, 0),
		Pages:    make([]string, 0),
	}
	seenProfiles := make(map[string]bool)
	seenPages := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href, ok := getAttr(n, "href"); ok {
				switch {
				case e.IsProfileLink(href):
					if !seenProfiles[href] {
						seenProfiles[href] = true
						links.Profiles = append(links.Profiles, href)
					}
				case !seenPages[href]:
					seenPages[href] = true
					links.Pages = append(links.Pages, href)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links, nil
}

// getAttr returns the value of an attribute and whether it was present.
// An anchor with href="" still counts as having an href.
func getAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}
