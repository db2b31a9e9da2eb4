package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"health-rag/internal/models"
)

func TestChunkPages_NumbersPerPage(t *testing.T) {
	long := strings.Repeat("iron folate calcium protein ", 12)
	pages := []models.Page{
		{Index: 0, Content: long},
		{Index: 1, Content: "   \n  "},
		{Index: 2, Content: "Short closing page."},
	}

	s := NewSplitter(50, 10)
	chunks, err := s.ChunkPages(pages, "guide.pdf")
	require.NoError(t, err)
	require.Greater(t, len(chunks), 2)

	var first, third []models.Chunk
	for _, c := range chunks {
		assert.Equal(t, "guide.pdf", c.Source)
		assert.LessOrEqual(t, utf8.RuneCountInString(c.Text), 50)
		assert.NotEmpty(t, strings.TrimSpace(c.Text))
		switch c.Page {
		case 1:
			first = append(first, c)
		case 3:
			third = append(third, c)
		default:
			t.Fatalf("unexpected page %d", c.Page)
		}
	}

	require.Greater(t, len(first), 1)
	for i, c := range first {
		assert.Equal(t, i+1, c.ChunkID)
	}
	require.Len(t, third, 1)
	assert.Equal(t, 1, third[0].ChunkID)
	assert.Equal(t, "Short closing page.", third[0].Text)
}

func TestChunkPages_NoPages(t *testing.T) {
	chunks, err := NewSplitter(500, 100).ChunkPages(nil, "empty.pdf")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestNewSplitter_ClampsOverlap(t *testing.T) {
	s := NewSplitter(20, 40)
	chunks, err := s.ChunkPages([]models.Page{{Content: strings.Repeat("word ", 30)}}, "x.pdf")
	require.NoError(t, err)
	assert.NotEmpty(t, chunks)
}

func TestPDFLoader_Errors(t *testing.T) {
	loader := NewPDFLoader()

	_, err := loader.Load(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)

	notPDF := filepath.Join(t.TempDir(), "notes.pdf")
	require.NoError(t, os.WriteFile(notPDF, []byte("this is not a pdf"), 0o644))
	_, err = loader.Load(notPDF)
	assert.Error(t, err)
}
