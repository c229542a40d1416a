package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"storefront-gateway/internal/models"
)

var csvHeader = []string{"Order Number", "Customer", "Date", "Status", "Total", "Items"}

// WriteCSV writes the sales report for the given orders: a header row plus
// one row per order, totals formatted to two decimals. The underlying
// aggregates are untouched; rounding here is presentation only.
func WriteCSV(w io.Writer, orders []models.Order) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, o := range orders {
		row := []string{
			o.OrderNumber,
			o.CustomerName,
			o.CreatedAt.Format("2006-01-02"),
			o.Status,
			strconv.FormatFloat(o.Total, 'f', 2, 64),
			strconv.Itoa(len(o.Items)),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// CSVFilename names the export after the day it was generated.
func CSVFilename(now time.Time) string {
	return "sales-report-" + now.Format("2006-01-02") + ".csv"
}
