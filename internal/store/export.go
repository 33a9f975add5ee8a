package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"tenderwatch/pkg/models"
)

// csvHeader matches the JSON field names so exports line up with the store.
var csvHeader = []string{
	"tender_number",
	"tender_title",
	"category",
	"department_owner",
	"start_date",
	"closing_date",
	"tse",
	"pdf_links",
}

// ExportCSV writes tenders as CSV. Document links are joined with "; " into
// a single column.
func ExportCSV(w io.Writer, tenders []models.Tender) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, t := range tenders {
		record := []string{
			t.Number,
			t.Title,
			t.Category,
			t.DepartmentOwner,
			t.StartDate,
			t.ClosingDate,
			t.TSE,
			strings.Join(t.DocumentLinks, "; "),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
