// Package extractor describes how result rows are read out of a search page.
//
// A Rule is evaluated either inside the live page (Script) or over a saved
// HTML snapshot (ParseHTML). Both paths apply the same field semantics so a
// snapshot replays exactly what the browser would have extracted.
package extractor

import (
	"encoding/json"
	"fmt"

	"omnisearch/internal/catalog"
)

// Field describes where one record field comes from, relative to a row.
//
// Const wins over everything. Otherwise the element is the row itself when
// Self is set, or the Index-th match of Selector inside the row. Parent moves
// to that element's parent. The value is the first non-empty attribute in
// Attrs, or the trimmed text content when Attrs is empty. An empty value or a
// missing element yields Default.
type Field struct {
	Selector string   `json:"selector,omitempty"`
	Self     bool     `json:"self,omitempty"`
	Index    int      `json:"index,omitempty"`
	Parent   bool     `json:"parent,omitempty"`
	Attrs    []string `json:"attrs,omitempty"`
	Const    string   `json:"const,omitempty"`
	Default  string   `json:"default,omitempty"`
}

// Text reads the trimmed text of the first match of selector.
func Text(selector string) Field { return Field{Selector: selector} }

// Attr reads the first non-empty attribute of the first match of selector.
func Attr(selector string, attrs ...string) Field {
	return Field{Selector: selector, Attrs: attrs}
}

// Const always yields v.
func Const(v string) Field { return Field{Const: v} }

// defined reports whether the field reads anything at all.
func (f Field) defined() bool {
	return f.Const != "" || f.Self || f.Selector != "" || f.Default != ""
}

// Rule is a source's extraction function.
type Rule struct {
	// Container must be present before extraction starts.
	Container string `json:"container"`
	// Rows selects one element per result.
	Rows string `json:"rows"`
	// Skip drops leading rows, e.g. a table header.
	Skip int `json:"skip,omitempty"`

	Title Field `json:"title"`
	Year  Field `json:"year"`
	Type  Field `json:"type"`
	URL   Field `json:"url"`
	Image Field `json:"image"`
	Desc  Field `json:"desc"`
}

// Validate checks that the rule can select rows.
func (r Rule) Validate() error {
	if r.Rows == "" {
		return fmt.Errorf("rule has no row selector")
	}
	if r.Skip < 0 {
		return fmt.Errorf("rule skip must not be negative: %d", r.Skip)
	}
	if !r.Title.defined() {
		return fmt.Errorf("rule has no title field")
	}
	return nil
}

// WaitSelector is what the page must show before extraction runs.
func (r Rule) WaitSelector() string {
	if r.Container != "" {
		return r.Container
	}
	return r.Rows
}

// JSON encodes the rule as the argument passed to Script.
func (r Rule) JSON() (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to encode rule: %w", err)
	}
	return string(b), nil
}

// Script returns the in-page extraction function. It takes the rule as a
// JSON string and returns an array of records with every field set.
func Script() string {
	return script
}

const script = `(raw) => {
	const rule = JSON.parse(raw);
	const pick = (row, f) => {
		if (!f) return '';
		if (f.const) return f.const;
		let el = null;
		if (f.self) {
			el = row;
		} else if (f.selector) {
			el = row.querySelectorAll(f.selector)[f.index || 0] || null;
		}
		if (el && f.parent) el = el.parentElement;
		let v = '';
		if (el) {
			if (f.attrs && f.attrs.length) {
				for (const a of f.attrs) {
					v = el.getAttribute(a) || '';
					if (v) break;
				}
			} else {
				v = (el.textContent || '').trim();
			}
		}
		return v || f.default || '';
	};
	return Array.from(document.querySelectorAll(rule.rows))
		.slice(rule.skip || 0)
		.map(row => ({
			title: pick(row, rule.title),
			year:  pick(row, rule.year),
			type:  pick(row, rule.type),
			url:   pick(row, rule.url),
			image: pick(row, rule.image),
			desc:  pick(row, rule.desc),
		}));
}`

// Decode parses the JSON returned by Script. A null result decodes to an
// empty list; absent or null fields decode to "".
func Decode(raw []byte) ([]catalog.Record, error) {
	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse results: %w", err)
	}
	records := make([]catalog.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, catalog.Record{
			Title: str(row["title"]),
			Year:  str(row["year"]),
			Type:  str(row["type"]),
			URL:   str(row["url"]),
			Image: str(row["image"]),
			Desc:  str(row["desc"]),
		})
	}
	return records, nil
}

func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
