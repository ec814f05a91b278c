// Package export renders reports as XLSX workbooks and CSV detail files.
package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/domain"
)

// Sheet names of the workbook.
const (
	SummarySheet   = "Summary"
	BreakdownSheet = "Breakdowns"
	DetailSheet    = "Bookings"
)

// Content types of the rendered files.
const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv; charset=utf-8"
)

var summaryHeader = []string{"Entity ID", "Entity", "Gross", "Net", "Discount", "Tickets", "Bookings"}

var breakdownHeader = []string{"Entity ID", "Entity", "Dimension", "Key", "Label", "Gross", "Net", "Discount", "Tickets", "Bookings"}

// DetailHeader returns the detail column names for the report's components.
func DetailHeader(components []string) []string {
	header := []string{
		"booking_reference", "entity_id", "entity_name", "booked_at", "payment_method",
		"tickets", "gross", "net", "discount", "ticket_summary",
	}
	header = append(header, components...)
	return append(header, "commission_total")
}

// FileName builds a download name such as "events-report-2026-10-12.xlsx".
func FileName(r *domain.Report, ext string) string {
	name := sanitizeFileComponent(string(r.Kind))
	if name == "" {
		name = "report"
	}
	return fmt.Sprintf("%s-report-%s.%s", name, r.Filter.Range.Start.Format("2006-01-02"), ext)
}

// WriteXLSX renders a workbook with the summary, breakdown and detail sheets.
func WriteXLSX(w io.Writer, r *domain.Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}
	for _, name := range []string{BreakdownSheet, DetailSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	ids := entityIDs(r)

	sw := &sheetWriter{file: f, sheet: SummarySheet}
	sw.row(toCells(summaryHeader)...)
	for _, id := range ids {
		e := r.Summary[id]
		sw.row(append([]any{e.EntityID, e.EntityName}, amountCells(e.Amounts)...)...)
	}

	bw := &sheetWriter{file: f, sheet: BreakdownSheet}
	bw.row(toCells(breakdownHeader)...)
	for _, id := range ids {
		e := r.Summary[id]
		for _, dim := range domain.BreakdownDimensions {
			entries := e.Breakdown(dim)
			for _, key := range sortedKeys(entries) {
				entry := entries[key]
				bw.row(append([]any{e.EntityID, e.EntityName, string(dim), key, entry.Label}, amountCells(entry.Amounts)...)...)
			}
		}
		for _, component := range sortedComponentKeys(e.ByComponent) {
			bw.row(e.EntityID, e.EntityName, "component", component, component, e.ByComponent[component].InexactFloat64())
		}
	}

	dw := &sheetWriter{file: f, sheet: DetailSheet}
	dw.row(toCells(DetailHeader(r.Components))...)
	for _, row := range r.Rows {
		cells := []any{
			row.BookingReference, row.EntityID, row.EntityName, row.BookedAt.UTC().Format(time.RFC3339),
			row.PaymentMethod, row.Tickets, row.Gross.InexactFloat64(), row.Net.InexactFloat64(),
			row.Discount.InexactFloat64(), row.TicketSummary,
		}
		for _, c := range r.Components {
			cells = append(cells, row.Components[c].InexactFloat64())
		}
		cells = append(cells, row.CommissionTotal.InexactFloat64())
		dw.row(cells...)
	}

	for _, sw := range []*sheetWriter{sw, bw, dw} {
		if sw.err != nil {
			return sw.err
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

type sheetWriter struct {
	file  *excelize.File
	sheet string
	next  int
	err   error
}

func (s *sheetWriter) row(values ...any) {
	if s.err != nil {
		return
	}
	s.next++
	cell, err := excelize.CoordinatesToCellName(1, s.next)
	if err != nil {
		s.err = fmt.Errorf("%s row %d: %w", s.sheet, s.next, err)
		return
	}
	if err := s.file.SetSheetRow(s.sheet, cell, &values); err != nil {
		s.err = fmt.Errorf("%s row %d: %w", s.sheet, s.next, err)
	}
}

// WriteCSV streams the detail rows as CSV.
func WriteCSV(w io.Writer, r *domain.Report) error {
	buffered := bufio.NewWriterSize(w, 64<<10)
	counter := &countingWriter{writer: buffered}
	csvWriter := csv.NewWriter(counter)

	if err := csvWriter.Write(DetailHeader(r.Components)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, 0, len(r.Components)+11)
	for _, row := range r.Rows {
		record = record[:0]
		record = append(record,
			row.BookingReference,
			strconv.FormatInt(row.EntityID, 10),
			row.EntityName,
			formatValue(row.BookedAt),
			row.PaymentMethod,
			strconv.FormatInt(row.Tickets, 10),
			formatValue(row.Gross),
			formatValue(row.Net),
			formatValue(row.Discount),
			row.TicketSummary,
		)
		for _, c := range r.Components {
			record = append(record, formatValue(row.Components[c]))
		}
		record = append(record, formatValue(row.CommissionTotal))
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("write row %s: %w", row.BookingReference, err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := buffered.Flush(); err != nil {
		return fmt.Errorf("flush buffered csv: %w", err)
	}
	return nil
}

func entityIDs(r *domain.Report) []int64 {
	ids := make([]int64, 0, len(r.Summary))
	for id := range r.Summary {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedKeys(m map[string]domain.BreakdownEntry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedComponentKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func amountCells(a domain.Amounts) []any {
	return []any{a.Gross.InexactFloat64(), a.Net.InexactFloat64(), a.Discount.InexactFloat64(), a.Tickets, a.Bookings}
}

func toCells(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func sanitizeFileComponent(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	builder := strings.Builder{}
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-' || r == '_':
			builder.WriteRune(r)
		default:
			builder.WriteRune('-')
		}
	}
	return strings.Trim(builder.String(), "-")
}

type countingWriter struct {
	writer *bufio.Writer
	count  int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.writer.Write(p)
	c.count += int64(n)
	return n, err
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case decimal.Decimal:
		return v.StringFixed(2)
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
