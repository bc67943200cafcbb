package services

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf16"

	"sales-report-api/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// utf16be はUTF-8フォントでページに書き込まれるテキストのバイト列です。
func utf16be(s string) []byte {
	var out []byte
	for _, u := range utf16.Encode([]rune(s)) {
		out = append(out, byte(u>>8), byte(u))
	}
	return out
}

func assembleUncompressed(t *testing.T, records ...models.SalesRecord) []byte {
	t.Helper()
	chart, err := NewBarChart(DefaultChartConfig(), records)
	require.NoError(t, err)

	a := NewPDFAssembler("sales-report-api")
	a.compress = false
	body, err := a.Assemble(ReportContent{Title: "Sales Report", Description: "test", Chart: chart, Records: records})
	require.NoError(t, err)
	return body
}

func TestPDFAssemblerKeepsNonLatinNames(t *testing.T) {
	body := assembleUncompressed(t,
		record("ウィジェット", "9.99", 3),
		record("Gadget", "5", 1),
	)

	assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))
	assert.True(t, bytes.Contains(body, utf16be("ウィジェット")), "japanese label written as unicode")
	assert.True(t, bytes.Contains(body, utf16be("Gadget")))
}

func TestPDFAssemblerReplacesSupplementaryRunes(t *testing.T) {
	body := assembleUncompressed(t, record("Sushi 🍣", "12", 2))

	assert.True(t, bytes.Contains(body, utf16be("Sushi \uFFFD")))
}

func TestPDFText(t *testing.T) {
	assert.Equal(t, "ウィ\uFFFDx", pdfText("ウィ🍣x"))
	assert.Equal(t, "Widget", pdfText("Widget"))
}

func TestLoadPDFFont(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "regular.ttf")
	require.NoError(t, os.WriteFile(path, DefaultPDFFont().Regular, 0o644))

	font, err := LoadPDFFont(path, "")
	require.NoError(t, err)
	assert.Equal(t, font.Regular, font.Bold)

	chart, err := NewBarChart(DefaultChartConfig(), []models.SalesRecord{record("Widget", "9.99", 3)})
	require.NoError(t, err)
	body, err := NewPDFAssembler("", WithFont(font)).Assemble(ReportContent{Title: "Sales Report", Chart: chart})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))
}

func TestLoadPDFFontRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	notAFont := filepath.Join(dir, "notes.ttf")
	require.NoError(t, os.WriteFile(notAFont, []byte("this is not a font file"), 0o644))
	empty := filepath.Join(dir, "empty.ttf")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	_, err := LoadPDFFont(filepath.Join(dir, "missing.ttf"), "")
	assert.Error(t, err)

	_, err = LoadPDFFont(notAFont, "")
	assert.Error(t, err)

	_, err = LoadPDFFont(empty, "")
	assert.Error(t, err)
}
