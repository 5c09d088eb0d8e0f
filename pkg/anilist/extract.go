package anilist

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	ldJSONSelector  = `script[type="application/ld+json"]`
	dataSetSelector = "div.data-set"
)

var (
	// isoDurationRegex matches ISO-8601 durations such as PT24M or PT1H30M.
	isoDurationRegex = regexp.MustCompile(`^P(?:T(?:(\d+)H)?(?:(\d+)M)?(?:\d+S)?)$`)
	hoursRegex       = regexp.MustCompile(`(?i)(\d+)\s*(?:hours?|hrs?)\b`)
	minutesRegex     = regexp.MustCompile(`(?i)(\d+)\s*(?:minutes?|mins?)\b`)

	// airingRegex matches the body's airing countdown, e.g. "Ep 5: 2d 3h 10m".
	airingRegex = regexp.MustCompile(`(?i)\bep\s*(\d+)\b`)

	dateLayouts = []string{"2006-01-02", "2006-01", "2006"}
)

// Extract merges the head and body fragments of a rendered title page.
// A head without a parseable ld+json block is a *ParseError. Values outside
// a field's vocabulary are reported in Metadata.Rejected and left unset.
func Extract(head, body string) (Metadata, error) {
	var p pending
	if err := p.readHead(head); err != nil {
		return Metadata{}, err
	}
	if err := p.readBody(body); err != nil {
		return Metadata{}, err
	}
	return p.build(), nil
}

func (p *pending) readHead(head string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(head))
	if err != nil {
		return &ParseError{Fragment: "head", Err: err}
	}
	script := doc.Find(ldJSONSelector).First()
	if script.Length() == 0 {
		return &ParseError{Fragment: "head", Err: ErrNoStructuredData}
	}

	dec := json.NewDecoder(strings.NewReader(script.Text()))
	dec.UseNumber()
	var root map[string]any
	if err := dec.Decode(&root); err != nil {
		return &ParseError{Fragment: "head", Err: fmt.Errorf("%w: %w", ErrNoStructuredData, err)}
	}

	entity := root
	if m, ok := root["mainEntity"].(map[string]any); ok {
		entity = m
	}

	if t, ok := firstString(entity["@type"]); ok {
		if f, err := headFormat(t); err != nil {
			p.reject(err)
		} else {
			p.head.format = &f
		}
	}
	if s, ok := entity["creativeWorkStatus"].(string); ok {
		if st, err := ParseStatus(s); err != nil {
			p.reject(err)
		} else {
			p.head.status = &st
		}
	}
	if s, ok := entity["isBasedOn"].(string); ok {
		if src, err := ParseSource(s); err != nil {
			p.reject(err)
		} else {
			p.head.source = &src
		}
	}
	if n, ok := toInt(entity["numberOfEpisodes"]); ok {
		p.head.episodes = &n
	}
	if s, ok := entity["timeRequired"].(string); ok {
		p.duration = durationMinutes(s)
	}
	p.startDate = parseDate(entity["startDate"])
	p.endDate = parseDate(entity["endDate"])

	if rating, ok := entity["aggregateRating"].(map[string]any); ok {
		p.ratingValue, _ = toInt(rating["ratingValue"])
		p.ratingCount, _ = toInt(rating["ratingCount"])
	}

	for _, raw := range asSlice(entity["genre"]) {
		name, ok := raw.(string)
		if !ok {
			continue
		}
		g, err := ParseGenre(name)
		if err != nil {
			p.reject(err)
			continue
		}
		p.addGenre(g)
	}

	p.studio = firstRelationID(entity["productionCompany"])
	p.producer = firstRelationID(entity["producer"])
	return nil
}

func (p *pending) readBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return &ParseError{Fragment: "body", Err: err}
	}

	doc.Find(dataSetSelector).Each(func(_ int, s *goquery.Selection) {
		label := normalize(s.Find(".type").First().Text())
		value := strings.Join(strings.Fields(s.Find(".value").First().Text()), " ")
		if label == "" || value == "" {
			return
		}

		switch {
		case strings.Contains(label, "airing"):
			// Only the "Ep <n>" countdown is understood; anything else is ignored.
			if m := airingRegex.FindStringSubmatch(value); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil {
					p.airing = &n
				}
			}
		case strings.Contains(label, "format"):
			if f, err := ParseFormat(value); err != nil {
				p.reject(err)
			} else {
				p.body.format = &f
			}
		case strings.Contains(label, "status"):
			if st, err := ParseStatus(value); err != nil {
				p.reject(err)
			} else {
				p.body.status = &st
			}
		case strings.Contains(label, "source"):
			if src, err := ParseSource(value); err != nil {
				p.reject(err)
			} else {
				p.body.source = &src
			}
		case strings.Contains(label, "episodes"):
			if n, err := strconv.Atoi(value); err == nil {
				p.body.episodes = &n
			}
		}
	})
	return nil
}

// headFormat maps a schema.org @type to a Format.
func headFormat(t string) (Format, error) {
	switch t {
	case "TVSeries":
		return FormatTV, nil
	case "Movie":
		return FormatMovie, nil
	}
	return ParseFormat(t)
}

// durationMinutes reads "PT24M", "PT1H30M" or "24 mins" style durations.
// Unrecognized text yields 0.
func durationMinutes(s string) int {
	s = strings.TrimSpace(s)
	if m := isoDurationRegex.FindStringSubmatch(strings.ToUpper(s)); m != nil {
		h, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		return h*60 + mins
	}
	total := 0
	if m := hoursRegex.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		total += h * 60
	}
	if m := minutesRegex.FindStringSubmatch(s); m != nil {
		mins, _ := strconv.Atoi(m[1])
		total += mins
	}
	return total
}

func parseDate(v any) int64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Unix()
		}
	}
	return 0
}

// firstRelationID returns the id of the first element of a relation list.
// Elements are objects whose @id is a URL like https://anilist.co/studio/21/Name.
func firstRelationID(v any) int {
	items := asSlice(v)
	if len(items) == 0 {
		return 0
	}
	obj, ok := items[0].(map[string]any)
	if !ok {
		return 0
	}
	id, _ := obj["@id"].(string)
	n, _ := idFromURL(id)
	return n
}

// idFromURL returns the first path segment of u that is a non-negative integer.
func idFromURL(u string) (int, bool) {
	parsed, err := url.Parse(u)
	if err != nil {
		return 0, false
	}
	for _, seg := range strings.Split(parsed.Path, "/") {
		if n, err := strconv.Atoi(seg); err == nil && n >= 0 {
			return n, true
		}
	}
	return 0, false
}

func asSlice(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case nil:
		return nil
	default:
		return []any{t}
	}
}

func firstString(v any) (string, bool) {
	for _, item := range asSlice(v) {
		if s, ok := item.(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

// toInt accepts JSON numbers and numeric strings; fractions are truncated.
func toInt(v any) (int, bool) {
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(t)
	default:
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}
