// Package datatable converts CSV data tables into the base64-encoded SQLite
// form the Jinko data table endpoint expects.
//
// The produced database holds every CSV column as TEXT in a single `data`
// table, plus a `data_columns` table mapping sanitized column names to their
// originals. The SQLite file itself is a transient artifact of the upload.
package datatable

import (
	"database/sql"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Encode converts the CSV file into a SQLite database and returns it
// base64-encoded. The intermediate .sqlite file is removed afterwards.
func Encode(csvPath string) (string, error) {
	sqlitePath, err := EncodeToFile(csvPath)
	if err != nil {
		return "", err
	}
	defer func() { _ = os.Remove(sqlitePath) }()
	return encodeFile(sqlitePath)
}

// EncodeToFile converts the CSV file into a SQLite database written next to
// it (<base>.sqlite) and returns the database path. The caller owns the file.
func EncodeToFile(csvPath string) (string, error) {
	columns, rows, err := readCSV(csvPath)
	if err != nil {
		return "", err
	}

	sqlitePath := strings.TrimSuffix(csvPath, filepath.Ext(csvPath)) + ".sqlite"
	// Rebuild from scratch so a stale file from an earlier run cannot leak
	// rows into the upload.
	if err := os.Remove(sqlitePath); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("remove stale sqlite file: %w", err)
	}

	db, err := sql.Open("sqlite", sqlitePath)
	if err != nil {
		return "", fmt.Errorf("open sqlite: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := writeTables(db, columns, rows); err != nil {
		_ = os.Remove(sqlitePath)
		return "", err
	}
	if err := db.Close(); err != nil {
		return "", fmt.Errorf("close sqlite: %w", err)
	}
	return sqlitePath, nil
}

// readCSV loads the header and all records. Every file needs at least the
// header row.
func readCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open csv: %w", err)
	}
	defer func() { _ = f.Close() }()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("csv file %s has no header row", path)
	}
	return records[0], records[1:], nil
}

func writeTables(db *sql.DB, columns []string, rows [][]string) error {
	colDefs := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, col := range columns {
		colDefs[i] = quoteIdent(col) + " TEXT"
		placeholders[i] = "?"
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("CREATE TABLE data (" + strings.Join(colDefs, ", ") + ")"); err != nil {
		return fmt.Errorf("create data table: %w", err)
	}

	insert, err := tx.Prepare("INSERT INTO data VALUES (" + strings.Join(placeholders, ", ") + ")")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = insert.Close() }()
	for _, row := range rows {
		args := make([]any, len(row))
		for i, v := range row {
			args[i] = v
		}
		if _, err := insert.Exec(args...); err != nil {
			return fmt.Errorf("insert row: %w", err)
		}
	}

	if _, err := tx.Exec(`CREATE TABLE IF NOT EXISTS data_columns (
		name TEXT UNIQUE,
		realname TEXT UNIQUE
	)`); err != nil {
		return fmt.Errorf("create data_columns table: %w", err)
	}
	for _, col := range columns {
		if _, err := tx.Exec("INSERT OR IGNORE INTO data_columns (name, realname) VALUES (?, ?)", col, col); err != nil {
			return fmt.Errorf("insert column mapping: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func encodeFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read sqlite file: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// quoteIdent quotes a column name for use in DDL. Embedded quotes are
// doubled per SQL rules.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
