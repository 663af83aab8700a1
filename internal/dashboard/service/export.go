package service

import (
	"encoding/csv"
	"io"
	"time"

	casesModels "casetrack/internal/cases/models"
)

// ExportHeader is the first CSV row of the subscribed-cases export.
var ExportHeader = []string{"OB Number", "Title", "Status", "Court Date", "Created At"}

// WriteCSV writes the header and one row per case. Court Date is empty
// when unset; times are RFC 3339.
func WriteCSV(w io.Writer, cases []casesModels.Case) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return err
	}
	for i := range cases {
		c := &cases[i]
		courtDate := ""
		if c.CourtDate != nil {
			courtDate = c.CourtDate.Format(time.RFC3339)
		}
		if err := cw.Write([]string{
			c.OBNumber,
			c.Title,
			c.StatusLabel(),
			courtDate,
			c.CreatedAt.Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
