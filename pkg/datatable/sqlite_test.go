package datatable

import (
	"database/sql"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data_table.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestEncode_RoundTrip(t *testing.T) {
	csvPath := writeCSV(t, "Patient Id,Arm,Observation\np1,control,1.5\np2,treatment,2.5\np3,treatment,0.5\n")

	encoded, err := Encode(csvPath)
	require.NoError(t, err)

	// The transient sqlite file must be gone after encoding.
	_, statErr := os.Stat(filepath.Join(filepath.Dir(csvPath), "data_table.sqlite"))
	assert.True(t, os.IsNotExist(statErr), "transient sqlite file should be removed")

	// Decode back into a real database and verify the contents survived.
	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	dbPath := filepath.Join(t.TempDir(), "decoded.sqlite")
	require.NoError(t, os.WriteFile(dbPath, raw, 0o600))

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var rowCount int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM data").Scan(&rowCount))
	assert.Equal(t, 3, rowCount)

	rows, err := db.Query("SELECT name, realname FROM data_columns ORDER BY name")
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name, realname string
		require.NoError(t, rows.Scan(&name, &realname))
		assert.Equal(t, name, realname)
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"Arm", "Observation", "Patient Id"}, names)

	var value string
	require.NoError(t, db.QueryRow(`SELECT "Observation" FROM data WHERE "Patient Id" = ?`, "p2").Scan(&value))
	assert.Equal(t, "2.5", value)
}

func TestEncodeToFile_KeepsDatabase(t *testing.T) {
	csvPath := writeCSV(t, "a,b\n1,2\n")

	sqlitePath, err := EncodeToFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(csvPath), "data_table.sqlite"), sqlitePath)

	_, err = os.Stat(sqlitePath)
	assert.NoError(t, err, "EncodeToFile should leave the database on disk")
}

func TestEncodeToFile_ReplacesStaleDatabase(t *testing.T) {
	csvPath := writeCSV(t, "a\nfresh\n")
	stalePath := filepath.Join(filepath.Dir(csvPath), "data_table.sqlite")
	require.NoError(t, os.WriteFile(stalePath, []byte("stale bytes"), 0o600))

	sqlitePath, err := EncodeToFile(csvPath)
	require.NoError(t, err)

	db, err := sql.Open("sqlite", sqlitePath)
	require.NoError(t, err)
	defer db.Close()

	var value string
	require.NoError(t, db.QueryRow(`SELECT "a" FROM data`).Scan(&value))
	assert.Equal(t, "fresh", value)
}

func TestEncode_EmptyFile(t *testing.T) {
	csvPath := writeCSV(t, "")

	_, err := Encode(csvPath)
	assert.Error(t, err, "a csv without a header row should be rejected")
}

func TestEncode_HeaderOnly(t *testing.T) {
	csvPath := writeCSV(t, "a,b,c\n")

	encoded, err := Encode(csvPath)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	dbPath := filepath.Join(t.TempDir(), "decoded.sqlite")
	require.NoError(t, os.WriteFile(dbPath, raw, 0o600))

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var rowCount int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM data").Scan(&rowCount))
	assert.Equal(t, 0, rowCount)
}

func TestEncode_MissingFile(t *testing.T) {
	_, err := Encode(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
