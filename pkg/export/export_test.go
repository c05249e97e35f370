package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var history = Dataset{
	Headers: []string{"Date", "Class", "Amount"},
	Rows: []map[string]string{
		{"Date": "2026-10-01", "Class": "Spanish A1", "Amount": "50.00"},
		{"Date": "2026-09-12", "Class": "French B2", "Amount": "75.50"},
	},
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(history, "ignored")
	require.NoError(t, err)
	assert.Equal(t, "Date,Class,Amount\n2026-10-01,Spanish A1,50.00\n2026-09-12,French B2,75.50\n", string(out))
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(history, "Payment history")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestExportersRequireHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{}, "")
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{}, "x")
	assert.Error(t, err)
}
