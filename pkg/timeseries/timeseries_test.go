package timeseries

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zipArchive(t *testing.T, filename, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create(filename)
	require.NoError(t, err)
	_, err = f.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

const sampleCSV = `Id,Patient Id,Arm,Time,Value
tumorBurden,p1,control,0,1.8
tumorBurden,p1,control,86400,2.1
tumorBurden,p2,treatment,0,1.9
tumorBurden,p2,treatment,86400,1.2
tumorBurden,p1,treatment,0,1.8
`

func TestParse(t *testing.T) {
	t.Parallel()

	table, err := Parse(zipArchive(t, "timeseries.csv", sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, "timeseries.csv", table.Filename)
	assert.Equal(t, []string{"Id", "Patient Id", "Arm", "Time", "Value"}, table.Columns)
	require.Len(t, table.Points, 5)

	first := table.Points[0]
	assert.Equal(t, "tumorBurden", first.SeriesID)
	assert.Equal(t, "p1", first.PatientID)
	assert.Equal(t, "control", first.Arm)
	assert.Equal(t, 0.0, first.Time)
	assert.Equal(t, 1.8, first.Value)
}

func TestParse_WithoutOptionalColumns(t *testing.T) {
	t.Parallel()

	csv := "Patient Id,Time,Value\np1,0,1\np1,10,2\n"
	table, err := Parse(zipArchive(t, "t.csv", csv))
	require.NoError(t, err)
	require.Len(t, table.Points, 2)
	assert.Empty(t, table.Points[0].SeriesID)
	assert.Empty(t, table.Points[0].Arm)
}

func TestParse_MissingRequiredColumn(t *testing.T) {
	t.Parallel()

	_, err := Parse(zipArchive(t, "t.csv", "Patient Id,Time\np1,0\n"))
	assert.ErrorContains(t, err, "Value")
}

func TestParse_BadNumber(t *testing.T) {
	t.Parallel()

	_, err := Parse(zipArchive(t, "t.csv", "Patient Id,Time,Value\np1,zero,1\n"))
	assert.Error(t, err)
}

func TestParse_NotAZip(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("definitely not a zip"))
	assert.Error(t, err)
}

func TestParse_EmptyArchive(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, zip.NewWriter(&buf).Close())

	_, err := Parse(buf.Bytes())
	assert.ErrorContains(t, err, "empty")
}

func TestPatientIDs_FirstSeenOrder(t *testing.T) {
	t.Parallel()

	table, err := Parse(zipArchive(t, "t.csv", sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, table.PatientIDs())
}

func TestFilterPatient(t *testing.T) {
	t.Parallel()

	table, err := Parse(zipArchive(t, "t.csv", sampleCSV))
	require.NoError(t, err)

	points := table.FilterPatient("p1")
	require.Len(t, points, 3)
	for _, p := range points {
		assert.Equal(t, "p1", p.PatientID)
	}
	assert.Empty(t, table.FilterPatient("p99"))
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	t.Parallel()

	table, err := Parse(zipArchive(t, "t.csv", sampleCSV))
	require.NoError(t, err)

	var out strings.Builder
	require.NoError(t, table.WriteCSV(&out))

	reparsed, err := Parse(zipArchive(t, "t.csv", out.String()))
	require.NoError(t, err)
	assert.Equal(t, table.Points, reparsed.Points)
}
