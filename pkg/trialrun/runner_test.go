package trialrun

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novainsilico/jinkoctl/pkg/jinko"
)

// writeResources populates a temporary resources directory with the minimal
// file set the workflow reads.
func writeResources(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		ModelFile:          `{"model": {"compartments": []}}`,
		SolvingOptionsFile: `{"solver": "default"}`,
		VpopFile:           "patientIndex,initialTumorBurden\n1,2.5\n2,3.1\n",
		ProtocolFile:       `{"scenarioArms": [{"armName": "treatment"}]}`,
		DataTableFile:      "Patient Id,Arm,Observation\np1,treatment,1.2\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

func resultsArchive(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("timeseries.csv")
	require.NoError(t, err)
	_, err = f.Write([]byte("Id,Patient Id,Arm,Time,Value\ntumorBurden,p1,treatment,0,2.5\ntumorBurden,p1,treatment,1,2.1\ntumorBurden,p2,treatment,0,3.0\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// fakeJinko serves every endpoint the workflow touches and records the order
// in which they were hit.
type fakeJinko struct {
	t     *testing.T
	calls []string
	// bodies keyed by call label, for post-run assertions.
	bodies map[string][]byte
}

func (f *fakeJinko) record(label string, r *http.Request) {
	f.calls = append(f.calls, label)
	if r.Body != nil {
		data := new(bytes.Buffer)
		_, _ = data.ReadFrom(r.Body)
		f.bodies[label] = data.Bytes()
	}
}

func itemJSON(core string) string {
	return `{"coreItemId": "` + core + `", "snapshotId": "` + core + `-snap"}`
}

// handleMethod registers pattern "METHOD /path" on mux for Go toolchains whose
// ServeMux predates method patterns (added in Go 1.22), rejecting other
// methods with 405 like the 1.22 mux does.
func handleMethod(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	method, path, _ := strings.Cut(pattern, " ")
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	})
}

func (f *fakeJinko) handler() http.Handler {
	mux := http.NewServeMux()
	reply := func(label, body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			f.record(label, r)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		}
	}

	handleMethod(mux, "POST /core/v2/model_manager/jinko_model", reply("model", itemJSON("model-1")))
	handleMethod(mux, "GET /core/v2/model_manager/jinko_model/model-1/snapshots/model-1-snap/baseline_descriptors",
		reply("descriptors", `{"numericDescriptors": [
			{"id": "initialTumorBurden", "inputTag": ["PatientDescriptorKnown"],
			 "distribution": {"tag": "Uniform", "lowBound": 0, "highBound": 5}},
			{"id": "solverStep", "inputTag": ["ModelIntrinsic"],
			 "distribution": {"tag": "Uniform", "lowBound": 0, "highBound": 1}}
		]}`))
	handleMethod(mux, "POST /core/v2/vpop_manager/vpop_generator", reply("design", itemJSON("design-1")))
	handleMethod(mux, "POST /core/v2/vpop_manager/vpop_generator/design-1/snapshots/design-1-snap/vpop",
		reply("vpop", itemJSON("vpop-1")))
	handleMethod(mux, "POST /core/v2/vpop_manager/vpop", reply("vpop-csv", itemJSON("vpop-csv-1")))
	handleMethod(mux, "POST /core/v2/scenario_manager/protocol_design", reply("protocol", itemJSON("protocol-1")))
	handleMethod(mux, "POST /core/v2/data_table_manager/data_table", reply("data-table", itemJSON("table-1")))
	handleMethod(mux, "POST /core/v2/trial_manager/trial", reply("trial", itemJSON("trial-1")))
	handleMethod(mux, "POST /core/v2/trial_manager/trial/trial-1/snapshots/trial-1-snap/run", reply("run", `{}`))
	handleMethod(mux, "GET /core/v2/trial_manager/trial/trial-1/snapshots/trial-1-snap/status",
		reply("status", `{"isRunning": false, "perArmSummary": {
			"treatment": {"countPerStatus": 10, "duration": 4.2, "state": "completed"}
		}}`))
	handleMethod(mux, "GET /core/v2/trial_manager/trial/trial-1/snapshots/trial-1-snap/output_ids",
		reply("output-ids", `["tumorBurden", "drugConcentration"]`))
	handleMethod(mux, "POST /core/v2/result_manager/timeseries_summary", func(w http.ResponseWriter, r *http.Request) {
		f.record("timeseries", r)
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(resultsArchive(f.t))
	})
	return mux
}

func TestRunner_Run(t *testing.T) {
	fake := &fakeJinko{t: t, bodies: make(map[string][]byte)}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client, err := jinko.New("project-1", "key-1", jinko.WithBaseURL(server.URL))
	require.NoError(t, err)

	var out bytes.Buffer
	runner := &Runner{
		Client:    client,
		Resources: writeResources(t),
		FolderID:  "2e8b3c1a-9d47-4f6e-8a21-5c0d7b9e4f12",
		VpopSize:  25,
		Out:       &out,
	}

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	// Every step ran, in workflow order.
	assert.Equal(t, []string{
		"model", "descriptors", "design", "vpop", "vpop-csv",
		"protocol", "data-table", "trial", "run", "status",
		"output-ids", "timeseries",
	}, fake.calls)

	assert.Equal(t, "model-1", result.Model.CoreItemID)
	assert.Equal(t, "trial-1-snap", result.Trial.SnapshotID)
	require.NotNil(t, result.Status)
	assert.False(t, result.Status.IsRunning)
	require.NotNil(t, result.Series)
	assert.Equal(t, []string{"p1", "p2"}, result.Series.PatientIDs())

	// The design request carries only the patient descriptor, with the
	// default override applied.
	var design struct {
		Contents struct {
			ComputationalModelID  jinko.ItemID                 `json:"computationalModelId"`
			MarginalDistributions []jinko.MarginalDistribution `json:"marginalDistributions"`
		} `json:"contents"`
		Tag string `json:"tag"`
	}
	require.NoError(t, json.Unmarshal(fake.bodies["design"], &design))
	assert.Equal(t, "VpopGeneratorFromDesign", design.Tag)
	assert.Equal(t, "model-1", design.Contents.ComputationalModelID.CoreItemID)
	require.Len(t, design.Contents.MarginalDistributions, 1)
	assert.Equal(t, "initialTumorBurden", design.Contents.MarginalDistributions[0].ID)
	assert.Equal(t, "LogNormal", design.Contents.MarginalDistributions[0].Distribution.Tag)

	// The configured population size reaches the generator.
	var gen struct {
		Contents struct {
			Size int `json:"size"`
		} `json:"contents"`
	}
	require.NoError(t, json.Unmarshal(fake.bodies["vpop"], &gen))
	assert.Equal(t, 25, gen.Contents.Size)

	// The data table payload is a base64 SQLite database.
	var table struct {
		RawData string `json:"rawData"`
	}
	require.NoError(t, json.Unmarshal(fake.bodies["data-table"], &table))
	raw, err := base64.StdEncoding.DecodeString(table.RawData)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("SQLite format 3\x00")))

	// The trial wires the snapshot ids of the other items together.
	var trial jinko.Trial
	require.NoError(t, json.Unmarshal(fake.bodies["trial"], &trial))
	assert.Equal(t, "model-1-snap", trial.ComputationalModelID.SnapshotID)
	assert.Equal(t, "protocol-1", trial.ProtocolDesignID.CoreItemID)
	assert.Equal(t, "vpop-1", trial.VpopID.CoreItemID)
	require.Len(t, trial.DataTableDesigns, 1)
	assert.Equal(t, "table-1", trial.DataTableDesigns[0].DataTableID.CoreItemID)
	assert.True(t, trial.DataTableDesigns[0].Include)

	// Human-readable progress lands on Out.
	text := out.String()
	assert.Contains(t, text, "Trial run finished.")
	assert.Contains(t, text, "treatment")
	assert.Contains(t, text, "Patient p1: 2 samples")
}

func TestRunner_Run_StepErrorNamesStep(t *testing.T) {
	mux := http.NewServeMux()
	handleMethod(mux, "POST /core/v2/model_manager/jinko_model", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message": "model does not parse"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client, err := jinko.New("project-1", "key-1", jinko.WithBaseURL(server.URL))
	require.NoError(t, err)

	runner := &Runner{Client: client, Resources: writeResources(t), Out: &bytes.Buffer{}}
	_, err = runner.Run(context.Background())
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "upload model:"), err.Error())
}

func TestRunner_Run_MissingResource(t *testing.T) {
	client, err := jinko.New("project-1", "key-1", jinko.WithBaseURL("http://127.0.0.1:1"))
	require.NoError(t, err)

	runner := &Runner{Client: client, Resources: t.TempDir(), Out: &bytes.Buffer{}}
	_, err = runner.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
