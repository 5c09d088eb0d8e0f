package jimaku

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	entrySelector    = "div.entry"
	linkSelector     = "a.table-data.file-name"
	sizeSelector     = "span.table-data.file-size"
	modifiedSelector = "span.table-data.file-modified"
	extraAttr        = "data-extra"
)

// ParseEntries extracts catalog entries from a listing page.
// An element is kept only when both its data-extra JSON and its link id parse.
// Returns ErrNoEntries when nothing usable was found.
func ParseEntries(r io.Reader) ([]Entry, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	var entries []Entry
	doc.Find(entrySelector).Each(func(_ int, s *goquery.Selection) {
		var e Entry
		if err := decodeExtra(s, &e); err != nil {
			return
		}
		id, ok := linkID(s)
		if !ok {
			return
		}
		e.ID = id
		entries = append(entries, e)
	})

	if len(entries) == 0 {
		return nil, ErrNoEntries
	}
	return entries, nil
}

// ParseFiles extracts the file rows of an entry page.
// Rows carrying a data-extra attribute are decoded from JSON; other rows are
// scraped from their name, size and modified cells. Rows failing both are skipped.
func ParseFiles(r io.Reader) ([]File, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse files: %w", err)
	}

	var files []File
	doc.Find(entrySelector).Each(func(_ int, s *goquery.Selection) {
		var f File
		if _, ok := s.Attr(extraAttr); ok {
			if err := decodeExtra(s, &f); err == nil && f.Name != "" {
				files = append(files, f)
			}
			return
		}
		if f, ok := scrapeFileRow(s); ok {
			files = append(files, f)
		}
	})
	return files, nil
}

func scrapeFileRow(s *goquery.Selection) (File, bool) {
	name := strings.TrimSpace(s.Find(linkSelector).First().Text())
	if name == "" {
		return File{}, false
	}
	size, err := ParseSize(s.Find(sizeSelector).First().Text())
	if err != nil {
		return File{}, false
	}
	cell := s.Find(modifiedSelector).First()
	modified := strings.TrimSpace(cell.Text())
	if v, ok := cell.Find("time").First().Attr("datetime"); ok && strings.TrimSpace(v) != "" {
		modified = strings.TrimSpace(v)
	}
	if modified == "" {
		return File{}, false
	}
	return File{Name: name, Size: size, LastModified: modified}, true
}

// decodeExtra unmarshals the data-extra attribute into v. The attribute is
// entity-decoded once by the HTML parser; some pages escape it twice.
func decodeExtra(s *goquery.Selection, v any) error {
	raw, ok := s.Attr(extraAttr)
	if !ok {
		return fmt.Errorf("missing %s attribute", extraAttr)
	}
	raw = strings.TrimSpace(raw)
	if !json.Valid([]byte(raw)) {
		raw = html.UnescapeString(raw)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode %s: %w", extraAttr, err)
	}
	return nil
}

// linkID reads the numeric id from the last path segment of the entry link.
func linkID(s *goquery.Selection) (int, bool) {
	href, ok := s.Find(linkSelector).First().Attr("href")
	if !ok {
		return 0, false
	}
	return IDFromHref(href)
}

// IDFromHref returns the numeric last path segment of href.
func IDFromHref(href string) (int, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return 0, false
	}
	p := href
	if u, err := url.Parse(href); err == nil {
		p = u.Path
	}
	p = strings.TrimRight(p, "/")
	seg := p[strings.LastIndex(p, "/")+1:]
	id, err := strconv.Atoi(seg)
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

var sizeUnits = map[string]float64{
	"B":   1,
	"kB":  1 << 10,
	"KB":  1 << 10,
	"KiB": 1 << 10,
	"MB":  1 << 20,
	"MiB": 1 << 20,
	"GB":  1 << 30,
	"GiB": 1 << 30,
}

// ParseSize converts a size such as "12.5 kB" to bytes. Units are binary
// multiples, so "1 kB" is 1024 bytes. Fractional bytes are truncated.
func ParseSize(s string) (int64, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrBadSize, s)
	}
	mult, ok := sizeUnits[fields[1]]
	if !ok {
		return 0, fmt.Errorf("%w: unit %q", ErrBadSize, fields[1])
	}
	n, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || n < 0 || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, fmt.Errorf("%w: %q", ErrBadSize, s)
	}
	return int64(n * mult), nil
}
