package web

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hzeller/se2calc/internal/seed"
	"github.com/hzeller/se2calc/internal/store"
)

type apiResult struct {
	Link   string                   `json:"link"`
	Offset int                      `json:"offset"`
	Limit  int                      `json:"limit"`
	Total  int                      `json:"total"`
	Items  []map[string]interface{} `json:"items"`
}

func decodeApi(t *testing.T, rec *httptest.ResponseRecorder) apiResult {
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var result apiResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	return result
}

func TestApiList(t *testing.T) {
	ts := newTestServer(t)

	result := decodeApi(t, ts.get(t, "/api/ores?offset=1&limit=2"))
	assert.Equal(t, 1, result.Offset)
	assert.Equal(t, 2, result.Limit)
	assert.Equal(t, 4, result.Total)
	require.Len(t, result.Items, 2)
	// Sorted by name: Cobalt, Iron, Nickel, Silicon
	assert.Equal(t, "Iron Ore", result.Items[0]["name"])
	assert.Equal(t, "Nickel Ore", result.Items[1]["name"])

	result = decodeApi(t, ts.get(t, "/api/components?q=plate&limit=bogus"))
	assert.Equal(t, kApiListDefaultLimit, result.Limit)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, "/components?q=plate", result.Link)

	result = decodeApi(t, ts.get(t, "/api/blocks?limit=5000"))
	assert.Equal(t, kApiListMaxLimit, result.Limit)
	assert.Len(t, result.Items, 2)

	rec := ts.get(t, "/api/blocks?q=nothing-matches")
	assert.Contains(t, rec.Body.String(), `"items": []`)
}

func TestSitemap(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.get(t, "/sitemap.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 4+4+2)
	assert.Equal(t, "http://example.com/", lines[0])
	assert.Contains(t, lines, "http://example.com/blocks/detail?id="+seed.ID(store.Blocks, "Small Conveyor"))
}

func TestStaticFiles(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.get(t, "/robots.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "User-agent")

	rec = ts.get(t, "/static/se2calc.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/css", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), ".is-invalid")

	assert.Equal(t, http.StatusNotFound, ts.get(t, "/static/missing.css").Code)
	assert.Equal(t, http.StatusNotFound, ts.get(t, "/static/").Code)
}

func TestExportBillOfMaterials(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.get(t, "/blocks/export?id="+seed.ID(store.Blocks, "Small Conveyor"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="Small_Conveyor-bom.xlsx"`, rec.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Summary", "Components", "Ores"}, f.GetSheetList())

	ores, err := f.GetRows("Ores")
	require.NoError(t, err)
	require.Len(t, ores, 3, "header plus iron and nickel")
	assert.Equal(t, "Ore", ores[0][0])
	assert.Equal(t, "Iron Ore", ores[1][0])
	assert.Equal(t, "113", ores[1][1])
	assert.Equal(t, "Nickel Ore", ores[2][0])
	assert.Equal(t, "20", ores[2][1])

	total, err := f.GetCellValue("Summary", "B8")
	require.NoError(t, err)
	assert.Equal(t, "133", total)

	assert.Equal(t, http.StatusNotFound, ts.get(t, "/blocks/export?id=nope").Code)
}

func TestGzipRendering(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/ores", nil)
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	rec := httptest.NewRecorder()
	ts.mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(zr)
	require.NoError(t, err)
	assert.Equal(t, 4, doc.Find("tr.item").Length())
}

func TestTemplateRendererWithoutCache(t *testing.T) {
	renderer, err := NewTemplateRenderer(Templates(""), false)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	ok := renderer.Render(rec, "index.html", &IndexPage{
		pageHeader: pageHeader{PageTitle: "Start", Msg: "hello"},
		Ores:       7,
	})
	require.True(t, ok)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello", doc.Find(".msg").Text())
	assert.Contains(t, doc.Find("ul.overview").Text(), "Ores (7)")

	rec = httptest.NewRecorder()
	assert.False(t, renderer.Render(rec, "no-such-page.html", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestTemplateErrorIsCleanServerError(t *testing.T) {
	renderer, err := NewTemplateRenderer(Templates(""), true)
	require.NoError(t, err)

	// A page struct without the expected fields fails while executing.
	rec := httptest.NewRecorder()
	ok := renderer.RenderWithHttpCode(rec, nil, http.StatusOK, "ore-list.html", struct{}{})
	assert.False(t, ok)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.NotContains(t, string(body), "<html>", "nothing half rendered")
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.get(t, "/")
	rec := ts.get(t, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "se2calc_handler_duration_seconds")
}

func TestFmtQuantity(t *testing.T) {
	assert.Equal(t, "1", fmtQuantity(1))
	assert.Equal(t, "2.5", fmtQuantity(2.5))
	assert.Equal(t, "0.33", fmtQuantity(1.0/3))
	assert.Equal(t, "0", fmtQuantity(0))
	assert.Equal(t, "133 kg", fmtMass(133))
}
