// Package lawpage extracts link rows from a saved statute page of the
// national law information site.
package lawpage

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	articleSelector = "div.lawcon"
	headingSelector = "p.pty1_p4"
	linkSelector    = `a.link, a[class*="sfon"]`
)

var (
	headingPattern = regexp.MustCompile(`제(\d+(?:의\d+)?)조`)
	sfonPattern    = regexp.MustCompile(`sfon(\d+)`)
)

// Row is one link group found under an article.
type Row struct {
	Article string
	Label   string
}

// Extract reads a saved law page and returns its link rows in page order.
// Articles without a recognizable heading are skipped.
func Extract(r io.Reader) ([]Row, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing law page: %w", err)
	}

	var rows []Row
	doc.Find(articleSelector).Each(func(_ int, article *goquery.Selection) {
		heading := article.Find(headingSelector).First()
		match := headingPattern.FindStringSubmatch(heading.Text())
		if match == nil {
			return
		}
		number := match[1]

		article.Find("p").Each(func(_ int, p *goquery.Selection) {
			for _, group := range groupLinks(p.Find(linkSelector)) {
				rows = append(rows, Row{Article: number, Label: groupLabel(group)})
			}
		})
	})
	return rows, nil
}

// groupLinks splits consecutive links into the groups the site renders as
// one citation. A group ends when either link has no sfon number, when the
// number does not increase, or when a sfon6 link follows a non-sfon6 one.
func groupLinks(links *goquery.Selection) [][]*goquery.Selection {
	var (
		groups  [][]*goquery.Selection
		current []*goquery.Selection
	)
	links.Each(func(_ int, link *goquery.Selection) {
		if len(current) == 0 {
			current = append(current, link)
			return
		}

		previous := current[len(current)-1]
		previousNumber := sfonNumber(previous)
		currentNumber := sfonNumber(link)

		split := previousNumber == 0 || currentNumber == 0 || currentNumber <= previousNumber
		if !split && link.HasClass("sfon6") && !previous.HasClass("sfon6") {
			split = true
		}

		if split {
			groups = append(groups, current)
			current = []*goquery.Selection{link}
			return
		}
		current = append(current, link)
	})
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

func groupLabel(group []*goquery.Selection) string {
	texts := make([]string, 0, len(group))
	for _, link := range group {
		texts = append(texts, strings.TrimSpace(link.Text()))
	}
	return strings.Join(texts, " ")
}

// sfonNumber returns the N of a link's first sfonN class, or 0.
func sfonNumber(link *goquery.Selection) int {
	class, _ := link.Attr("class")
	match := sfonPattern.FindStringSubmatch(class)
	if match == nil {
		return 0
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return n
}
