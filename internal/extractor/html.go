package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"omnisearch/internal/catalog"
)

// ParseHTML applies rule to a rendered HTML document, e.g. a diagnostic
// snapshot. It is pure: the same input always yields the same records.
func ParseHTML(rule Rule, html string) ([]catalog.Record, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	rows := doc.Find(rule.Rows)
	if rule.Skip > 0 {
		if rule.Skip >= rows.Length() {
			return []catalog.Record{}, nil
		}
		rows = rows.Slice(rule.Skip, goquery.ToEnd)
	}

	records := make([]catalog.Record, 0, rows.Length())
	rows.Each(func(_ int, row *goquery.Selection) {
		records = append(records, catalog.Record{
			Title: pick(row, rule.Title),
			Year:  pick(row, rule.Year),
			Type:  pick(row, rule.Type),
			URL:   pick(row, rule.URL),
			Image: pick(row, rule.Image),
			Desc:  pick(row, rule.Desc),
		})
	})
	return records, nil
}

// Contains reports whether the rule's wait selector matches in html.
func Contains(rule Rule, html string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}
	return doc.Find(rule.WaitSelector()).Length() > 0
}

func pick(row *goquery.Selection, f Field) string {
	if f.Const != "" {
		return f.Const
	}

	var el *goquery.Selection
	switch {
	case f.Self:
		el = row
	case f.Selector != "":
		el = row.Find(f.Selector).Eq(f.Index)
	}
	if el != nil && f.Parent {
		el = el.Parent()
	}

	v := ""
	if el != nil && el.Length() > 0 {
		if len(f.Attrs) > 0 {
			for _, a := range f.Attrs {
				v, _ = el.Attr(a)
				if v != "" {
					break
				}
			}
		} else {
			v = strings.TrimSpace(el.Text())
		}
	}
	if v == "" {
		return f.Default
	}
	return v
}
