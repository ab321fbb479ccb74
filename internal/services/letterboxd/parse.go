package letterboxd

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"showdown/internal/catalog"
)

var (
	yearPattern       = regexp.MustCompile(`\((\d{4})\)$`)
	backgroundPattern = regexp.MustCompile(`(?i)https://[^"']+?-1200-1200-675-675-crop-fill\.jpg`)
)

// ParseIndex extracts showdown summaries from the index page. Each teaser
// section contributes one summary; duplicate slugs keep the first sighting.
func ParseIndex(data []byte, baseURL string) ([]catalog.Summary, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse index html: %w", err)
	}

	base := strings.TrimRight(baseURL, "/")
	var summaries []catalog.Summary
	seen := make(map[string]bool)

	for _, section := range findAll(doc, func(n *html.Node) bool {
		return elementIs(n, atom.Section) && hasClass(n, "content-teaser")
	}) {
		anchor := findFirst(section, func(n *html.Node) bool {
			return elementIs(n, atom.A) && hasClass(n, "image") && strings.HasPrefix(attrValue(n, "href"), "/showdown/")
		})
		if anchor == nil {
			continue
		}
		href := attrValue(anchor, "href")
		pieces := strings.Split(strings.Trim(href, "/"), "/")
		slug := pieces[len(pieces)-1]
		if slug == "" || seen[slug] {
			continue
		}

		title := ""
		if heading := findFirst(section, func(n *html.Node) bool { return elementIs(n, atom.H3) }); heading != nil {
			if titleAnchor := findFirst(heading, func(n *html.Node) bool { return elementIs(n, atom.A) }); titleAnchor != nil {
				title = textContent(titleAnchor)
			}
		}
		if title == "" {
			title = catalog.TitleFromSlug(slug)
		}

		logline := ""
		if h4 := findFirst(section, func(n *html.Node) bool { return elementIs(n, atom.H4) }); h4 != nil {
			logline = textContent(h4)
		}
		status := ""
		if badge := findFirst(section, func(n *html.Node) bool {
			return elementIs(n, atom.Span) && hasClass(n, "badge")
		}); badge != nil {
			status = textContent(badge)
		}

		summaries = append(summaries, catalog.Summary{
			Slug:        slug,
			Title:       title,
			Logline:     logline,
			Status:      status,
			ShowdownURL: base + href,
			CrewListURL: base + "/crew/list/showdown-" + slug + "/",
		})
		seen[slug] = true
	}
	return summaries, nil
}

// ParseCrewList extracts the publication date and the ranked films from a
// crew list page.
func ParseCrewList(data []byte, baseURL string) (string, []catalog.Entry, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", nil, fmt.Errorf("parse crew list html: %w", err)
	}

	base := strings.TrimRight(baseURL, "/")
	publishedAt := ""
	if dateTag := findFirst(doc, func(n *html.Node) bool {
		return elementIs(n, atom.P) && hasClass(n, "list-date")
	}); dateTag != nil {
		if published := findFirst(dateTag, func(n *html.Node) bool { return elementIs(n, atom.Time) }); published != nil {
			publishedAt = strings.TrimSpace(attrValue(published, "datetime"))
		}
	}

	var entries []catalog.Entry
	for _, item := range findAll(doc, func(n *html.Node) bool {
		return elementIs(n, atom.Li) && hasClass(n, "posteritem")
	}) {
		component := findFirst(item, func(n *html.Node) bool {
			return elementIs(n, atom.Div) && hasClass(n, "react-component")
		})
		if component == nil {
			continue
		}

		name := strings.TrimSpace(attrValue(component, "data-item-name"))
		slug := strings.TrimSpace(attrValue(component, "data-item-slug"))
		link := strings.TrimSpace(attrValue(component, "data-item-link"))

		filmURL := ""
		if link != "" {
			filmURL = base + link
		}
		if slug == "" && link != "" {
			linkPieces := strings.Split(strings.Trim(link, "/"), "/")
			slug = linkPieces[len(linkPieces)-1]
		}

		rank := len(entries) + 1
		if rankTag := findFirst(item, func(n *html.Node) bool {
			return elementIs(n, atom.P) && hasClass(n, "list-number")
		}); rankTag != nil {
			if parsed, err := strconv.Atoi(textContent(rankTag)); err == nil {
				rank = parsed
			}
		}

		year := 0
		if match := yearPattern.FindStringSubmatch(name); match != nil {
			if parsed, err := strconv.Atoi(match[1]); err == nil {
				year = parsed
			}
		}

		filmName := name
		if filmName == "" {
			filmName = slug
		}
		entries = append(entries, catalog.Entry{
			Rank:     rank,
			FilmName: filmName,
			FilmSlug: slug,
			FilmYear: year,
			FilmURL:  filmURL,
			TMDBID:   "",
		})
	}
	return publishedAt, entries, nil
}

// ParseFilmTMDBID pulls the TMDB id Letterboxd stamps on a film page body.
func ParseFilmTMDBID(data []byte) string {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	body := findFirst(doc, func(n *html.Node) bool { return elementIs(n, atom.Body) })
	if body == nil {
		return ""
	}
	return strings.TrimSpace(attrValue(body, "data-tmdb-id"))
}

// ParseDescription extracts the prose description from a showdown page,
// keeping paragraph breaks. Very short matches are treated as noise.
func ParseDescription(data []byte) string {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	prose := findFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && hasClass(n, "body-text") && hasClass(n, "-prose")
	})
	if prose == nil {
		return ""
	}

	text := ""
	if paragraphs := findAll(prose, func(n *html.Node) bool { return elementIs(n, atom.P) }); len(paragraphs) > 0 {
		parts := make([]string, 0, len(paragraphs))
		for _, p := range paragraphs {
			if t := textContent(p); t != "" {
				parts = append(parts, t)
			}
		}
		text = strings.Join(parts, "\n\n")
	} else {
		text = textContent(prose)
	}
	if len(text) <= 10 {
		return ""
	}
	return text
}

// ParseBackgroundImage extracts the hero artwork URL from a showdown page by
// its characteristic crop dimensions.
func ParseBackgroundImage(data []byte) string {
	return backgroundPattern.FindString(string(data))
}

func findAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var results []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			results = append(results, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return results
}

func findFirst(root *html.Node, match func(*html.Node) bool) *html.Node {
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if match(n) {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return found
}

func elementIs(n *html.Node, a atom.Atom) bool {
	return n.Type == html.ElementNode && n.DataAtom == a
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attrValue(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// textContent gathers the text nodes beneath n with whitespace runs
// collapsed, so inline markup does not jam words together.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
