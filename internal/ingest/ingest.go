// Package ingest loads a folder of event listings into records. Excel
// workbooks are read sheet by sheet with a header row mapping columns to
// record fields; CSV and TSV files work the same way; plain-text files are
// split into blank-line separated blocks of "Field: value" lines.
package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"avevents/internal/domain"
)

// LoadFolder reads every supported file directly under folder. Unsupported
// extensions are skipped; a file that fails to parse aborts the load.
func LoadFolder(folder string) ([]domain.EventRecord, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("read event folder: %w", err)
	}
	var records []domain.EventRecord
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), "~$") {
			continue
		}
		path := filepath.Join(folder, e.Name())
		var recs []domain.EventRecord
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".xlsx":
			recs, err = loadWorkbook(path)
		case ".csv":
			recs, err = loadDelimited(path, ',')
		case ".tsv":
			recs, err = loadDelimited(path, '\t')
		case ".txt":
			recs, err = loadText(path)
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", e.Name(), err)
		}
		records = append(records, recs...)
	}
	return records, nil
}

func loadWorkbook(path string) ([]domain.EventRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []domain.EventRecord
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", sheet, err)
		}
		records = append(records, recordsFromRows(rows)...)
	}
	return records, nil
}

func loadDelimited(path string, sep rune) ([]domain.EventRecord, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	r := csv.NewReader(fd)
	r.Comma = sep
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	return recordsFromRows(rows), nil
}

// recordsFromRows maps a header row plus data rows to records. Rows that are
// entirely empty are skipped.
func recordsFromRows(rows [][]string) []domain.EventRecord {
	if len(rows) < 2 {
		return nil
	}
	fields := make([]func(*domain.EventRecord, string), len(rows[0]))
	for i, h := range rows[0] {
		fields[i] = setterFor(h)
	}
	var records []domain.EventRecord
	for _, row := range rows[1:] {
		var rec domain.EventRecord
		empty := true
		for i, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" || i >= len(fields) {
				continue
			}
			empty = false
			if set := fields[i]; set != nil {
				set(&rec, cell)
			}
		}
		if !empty {
			records = append(records, rec)
		}
	}
	return records
}

// setterFor resolves a header label to a record field. Unknown columns fold
// into the description so nothing from the source is lost.
func setterFor(header string) func(*domain.EventRecord, string) {
	h := strings.ToLower(strings.TrimSpace(header))
	h = strings.NewReplacer(" ", "_", "-", "_").Replace(h)
	switch h {
	case "title", "event", "event_name", "name":
		return func(r *domain.EventRecord, v string) { r.Title = v }
	case "category", "type", "event_type":
		return func(r *domain.EventRecord, v string) { r.CategoryHint = v }
	case "day", "days", "weekday":
		return func(r *domain.EventRecord, v string) { r.Day = v }
	case "date", "dates":
		return func(r *domain.EventRecord, v string) { r.Date = v }
	case "time", "timing", "timings":
		return func(r *domain.EventRecord, v string) { r.Time = v }
	case "location", "venue", "where", "place":
		return func(r *domain.EventRecord, v string) { r.Location = v }
	case "contribution", "cost", "fee", "price":
		return func(r *domain.EventRecord, v string) { r.Contribution = v }
	case "contact", "contact_name", "contact_person":
		return func(r *domain.EventRecord, v string) { r.ContactName = v }
	case "phone", "phone_number", "whatsapp", "mobile":
		return func(r *domain.EventRecord, v string) { r.Phone = v }
	case "email", "mail":
		return func(r *domain.EventRecord, v string) { r.Email = v }
	case "description", "details", "about":
		return func(r *domain.EventRecord, v string) { r.Description = v }
	case "poster", "poster_url", "image":
		return func(r *domain.EventRecord, v string) { r.PosterURL = v }
	case "audience", "prerequisites", "who_for", "target_audience":
		return func(r *domain.EventRecord, v string) { r.Audience = v }
	}
	return func(r *domain.EventRecord, v string) {
		if r.Description != "" {
			r.Description += "\n"
		}
		r.Description += header + ": " + v
	}
}

// loadText reads blank-line separated blocks. Lines shaped like
// "Field: value" map to record fields; the first unlabeled line becomes the
// title and the rest the description.
func loadText(path string) ([]domain.EventRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []domain.EventRecord
	for _, block := range strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		var rec domain.EventRecord
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if name, value, ok := strings.Cut(line, ":"); ok && looksLikeLabel(name) {
				setterFor(name)(&rec, strings.TrimSpace(value))
				continue
			}
			if rec.Title == "" {
				rec.Title = line
			} else if rec.Description == "" {
				rec.Description = line
			} else {
				rec.Description += "\n" + line
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func looksLikeLabel(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 20 || strings.ContainsAny(name, ".!?") {
		return false
	}
	c := name[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
