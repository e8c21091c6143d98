package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/lead-cli/internal/model"
)

func sampleResults() []*model.EnrichmentResult {
	found := model.NewEnrichmentResult("https://firma.pl")
	found.FillEmail("biuro@firma.pl")
	found.FillPhone("+48 12 345 67 89")
	found.FillProjects([]string{"Hala A", "Biurowiec B"})
	found.FillContacts([]model.ContactPerson{
		{Name: "Jan Kowalski", Role: "Prezes", Email: "jan@firma.pl"},
		{Name: "Anna Nowak", Phone: "600 100 200"},
	})
	found.Status = model.StatusFoundAI

	return []*model.EnrichmentResult{
		found,
		model.SkippedResult("https://olx.pl/x"),
		nil,
	}
}

func TestResultsTable(t *testing.T) {
	tbl := ResultsTable(sampleResults())
	assert.Equal(t, resultColumns, tbl.Header)
	require.Len(t, tbl.Rows, 2)

	row := tbl.Rows[0]
	assert.Equal(t, "https://firma.pl", row[0])
	assert.Equal(t, "FOUND_AI", row[1])
	assert.Equal(t, "biuro@firma.pl", row[2])
	assert.Equal(t, "Hala A; Biurowiec B", row[6])
	assert.Equal(t, "Jan Kowalski (Prezes) <jan@firma.pl>; Anna Nowak 600 100 200", row[7])

	assert.Equal(t, []string{"https://olx.pl/x", "SKIPPED_PORTAL", "", "", "", "", "", ""}, tbl.Rows[1])
}

func TestLeadsTable(t *testing.T) {
	lead := model.NewLeadFromHit(model.SearchHit{Title: "Dachy", URL: "https://dachy.pl", Snippet: "Pokrycia"}, "Tarnów")
	tbl := LeadsTable([]model.Lead{lead})
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, []string{"Dachy", "https://dachy.pl", "Tarnów", "Google API", "RAW", "50", "Pokrycia"}, tbl.Rows[0])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, Table{
		Header: []string{"a", "b"},
		Rows:   [][]string{{"1", "x, y"}},
	}))
	assert.Equal(t, "a,b\n1,\"x, y\"\n", buf.String())
}

func TestSaveResults_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, SaveResults(path, sampleResults()))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet, ok := f.Sheet["Kontakty"]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "URL", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "biuro@firma.pl", sheet.Rows[1].Cells[2].String())
}

func TestSaveResults_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	results := sampleResults()[:2]
	require.NoError(t, SaveResults(path, results))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "biuro@firma.pl", decoded[0]["email"])
	assert.Nil(t, decoded[1]["email"])
	assert.Equal(t, []any{}, decoded[1]["projects"])
}

func TestSaveLeads_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.csv")
	lead := model.NewLeadFromHit(model.SearchHit{Title: "Posadzki", URL: "https://posadzki.pl"}, "Kraków")
	require.NoError(t, SaveLeads(path, []model.Lead{lead}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Name,URL,City")
	assert.Contains(t, string(data), "Posadzki,https://posadzki.pl,Kraków")
}

func TestSave_UnsupportedExtension(t *testing.T) {
	err := SaveLeads(filepath.Join(t.TempDir(), "leads.pdf"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestReadURLs_Text(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, os.WriteFile(path, []byte("# lista\nhttps://a.pl\n\nwww.b.pl/kontakt\nnot a url\nbiuro@c.pl\n"), 0o644))

	urls, err := ReadURLs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.pl", "www.b.pl/kontakt"}, urls)
}

func TestReadURLs_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.csv")
	require.NoError(t, os.WriteFile(path, []byte("Nazwa,Strona\nFirma A,https://a.pl\nFirma B,b.pl\n"), 0o644))

	urls, err := ReadURLs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.pl", "b.pl"}, urls)
}

func TestReadURLs_XLSXRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.xlsx")
	leads := []model.Lead{
		model.NewLeadFromHit(model.SearchHit{Title: "A", URL: "https://a.pl"}, "Kraków"),
		model.NewLeadFromHit(model.SearchHit{Title: "B", URL: "https://b.pl"}, "Kraków"),
	}
	require.NoError(t, SaveLeads(path, leads))

	urls, err := ReadURLs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.pl", "https://b.pl"}, urls)
}

func TestReadURLs_Missing(t *testing.T) {
	_, err := ReadURLs(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}
