// Package timeseries decodes trial time-series archives.
//
// The result manager returns selected time series as a zip archive holding a
// single CSV file with one row per (series, patient, arm, time) sample.
package timeseries

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Point is one sample of one time series.
type Point struct {
	SeriesID  string
	PatientID string
	Arm       string
	Time      float64
	Value     float64
}

// Table holds a decoded time-series archive.
type Table struct {
	// Filename is the name of the CSV file inside the archive.
	Filename string
	// Columns is the CSV header as received.
	Columns []string
	// Points holds all samples in file order.
	Points []Point
}

// Recognized header names. The server labels columns with spaces.
const (
	colSeries  = "Id"
	colPatient = "Patient Id"
	colArm     = "Arm"
	colTime    = "Time"
	colValue   = "Value"
)

// Parse decodes a zip archive into a Table. The archive must contain at
// least one file; only the first is read, matching the server contract of
// one CSV per summary request.
func Parse(zipData []byte) (*Table, error) {
	archive, err := zip.NewReader(bytes.NewReader(zipData), int64(len(zipData)))
	if err != nil {
		return nil, fmt.Errorf("open time series archive: %w", err)
	}
	if len(archive.File) == 0 {
		return nil, fmt.Errorf("time series archive is empty")
	}

	entry := archive.File[0]
	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", entry.Name, err)
	}
	defer func() { _ = rc.Close() }()

	table, err := parseCSV(rc)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", entry.Name, err)
	}
	table.Filename = entry.Name
	return table, nil
}

func parseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, required := range []string{colPatient, colTime, colValue} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	table := &Table{Columns: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		point := Point{
			PatientID: record[idx[colPatient]],
		}
		if i, ok := idx[colSeries]; ok {
			point.SeriesID = record[i]
		}
		if i, ok := idx[colArm]; ok {
			point.Arm = record[i]
		}
		if point.Time, err = strconv.ParseFloat(record[idx[colTime]], 64); err != nil {
			return nil, fmt.Errorf("parse time %q: %w", record[idx[colTime]], err)
		}
		if point.Value, err = strconv.ParseFloat(record[idx[colValue]], 64); err != nil {
			return nil, fmt.Errorf("parse value %q: %w", record[idx[colValue]], err)
		}
		table.Points = append(table.Points, point)
	}
	return table, nil
}

// PatientIDs returns the unique patient ids in first-seen order.
func (t *Table) PatientIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, p := range t.Points {
		if !seen[p.PatientID] {
			seen[p.PatientID] = true
			ids = append(ids, p.PatientID)
		}
	}
	return ids
}

// FilterPatient returns the samples belonging to one patient, in file order.
func (t *Table) FilterPatient(patientID string) []Point {
	var points []Point
	for _, p := range t.Points {
		if p.PatientID == patientID {
			points = append(points, p)
		}
	}
	return points
}

// WriteCSV writes the table back out as CSV with a normalized header.
func (t *Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{colSeries, colPatient, colArm, colTime, colValue}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, p := range t.Points {
		record := []string{
			p.SeriesID,
			p.PatientID,
			p.Arm,
			strconv.FormatFloat(p.Time, 'g', -1, 64),
			strconv.FormatFloat(p.Value, 'g', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
