// Package extract turns the rendered listing-page HTML into typed tender
// records. The page is rendered once by the browser session; extraction then
// runs over the static HTML so every heuristic is testable from string
// fixtures.
package extract

import (
	"errors"
	"log/slog"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"tenderwatch/pkg/models"
)

// Row classification tables. Same caveat as the details heuristics: the page
// documents none of this, the tables encode what the live markup does today.
var (
	// tableSelectors are tried in order; the first one that matches anything
	// wins. Absence of all of them is the valid "no listings" state.
	tableSelectors = []string{"table", "tbody", "[class*='table']", "[id*='table']"}

	// sentinelPhrases mark a "no results" row rather than data.
	sentinelPhrases = []string{"no record", "no data"}

	// headerKeywords identify the column-header row. A row containing one of
	// these but also a digit is data: header phrases can appear inside
	// legitimate cell values, digits cannot appear in the real header.
	headerKeywords = []string{"sr no", "tender no", "tender details", "downloads", "advertisement", "closing"}
)

// Column layout of the results table.
const (
	minCells       = 5
	colNumber      = 1
	colDetails     = 2
	colDownloads   = 3
	colStartDate   = 4
	colClosingDate = 5
)

var errTooFewCells = errors.New("row has fewer cells than expected")

// Extractor walks the rendered results table and builds tender records.
type Extractor struct{}

// New creates a table extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract parses the rendered page HTML and returns one tender per data row.
// A page without a results table yields an empty slice: no listings is a
// valid state, not an error. A malformed row is logged and skipped; one bad
// row never aborts the batch.
func (e *Extractor) Extract(pageHTML string) ([]models.Tender, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil, err
	}

	table := findTable(doc)
	if table == nil {
		slog.Debug("no results table found, treating as empty listing")
		return nil, nil
	}

	var tenders []models.Tender
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		switch classifyRow(row) {
		case rowData:
		case rowSentinel:
			slog.Debug("skipping no-records row", "row", i)
			return
		default:
			return
		}

		t, err := parseRow(row)
		if err != nil {
			slog.Debug("skipping unparseable row", "row", i, "error", err)
			return
		}
		tenders = append(tenders, t)
	})

	slog.Debug("extraction complete", "tenders", len(tenders))
	return tenders, nil
}

func findTable(doc *goquery.Document) *goquery.Selection {
	for _, sel := range tableSelectors {
		if s := doc.Find(sel); s.Length() > 0 {
			return s.First()
		}
	}
	return nil
}

type rowKind int

const (
	rowSkip rowKind = iota
	rowSentinel
	rowHeader
	rowData
)

func classifyRow(row *goquery.Selection) rowKind {
	text := strings.ToLower(strings.TrimSpace(row.Text()))
	if text == "" {
		return rowSkip
	}

	for _, phrase := range sentinelPhrases {
		if strings.Contains(text, phrase) {
			return rowSentinel
		}
	}

	for _, kw := range headerKeywords {
		if strings.Contains(text, kw) {
			if !containsDigit(text) {
				return rowHeader
			}
			// Header phrase inside a real value; fall through to data.
			break
		}
	}

	return rowData
}

func parseRow(row *goquery.Selection) (models.Tender, error) {
	cells := row.Find("td")
	if cells.Length() < minCells {
		return models.Tender{}, errTooFewCells
	}

	number := strings.TrimSpace(cells.Eq(colNumber).Text())
	detailsText := strings.TrimSpace(cells.Eq(colDetails).Text())
	details := ParseDetails(detailsText)

	// Hrefs in page order. Duplicate URLs are kept: record identity comes
	// from the tender number, never the links.
	var links []string
	cells.Eq(colDownloads).Find("a").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok && href != "" {
			links = append(links, href)
		}
	})

	t := models.Tender{
		Title:           details.Title,
		Category:        details.Category,
		DepartmentOwner: details.DepartmentOwner,
		StartDate:       strings.TrimSpace(cells.Eq(colStartDate).Text()),
		Number:          number,
		TSE:             models.ExtractTSE(number),
		DocumentLinks:   links,
	}
	if cells.Length() > colClosingDate {
		t.ClosingDate = strings.TrimSpace(cells.Eq(colClosingDate).Text())
	}

	return t, nil
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
