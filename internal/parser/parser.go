package parser

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/textsplitter"

	"health-rag/internal/models"
)

// Loader extracts ordered page text from a document on disk.
type Loader interface {
	Load(filePath string) ([]models.Page, error)
}

// PDFLoader reads PDF pages with ledongthuc/pdf.
type PDFLoader struct{}

func NewPDFLoader() *PDFLoader { return &PDFLoader{} }

func (l *PDFLoader) Load(filePath string) ([]models.Page, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Get file size for reader initialization
	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", filePath, err)
	}

	numPages := reader.NumPage()
	pages := make([]models.Page, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			log.Debug().Int("page", i).Str("file", filePath).Msg("Skipping empty page object")
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("read page %d: %w", i, err)
		}
		pages = append(pages, models.Page{Index: i - 1, Content: pageText})
	}
	return pages, nil
}

const (
	defaultChunkSize    = 500
	defaultChunkOverlap = 100
)

// Splitter cuts page text into overlapping chunks with provenance.
type Splitter struct {
	splitter textsplitter.RecursiveCharacter
}

func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
		chunkOverlap = defaultChunkOverlap
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 2
	}
	return &Splitter{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
	}
}

// ChunkPages splits every page and numbers chunks from 1 within each page.
// Pages are reported 1-based.
func (s *Splitter) ChunkPages(pages []models.Page, source string) ([]models.Chunk, error) {
	var chunks []models.Chunk
	for _, page := range pages {
		pageChunks, err := s.getChunks(page.Content, page.Index+1, source)
		if err != nil {
			return nil, fmt.Errorf("split page %d: %w", page.Index+1, err)
		}
		chunks = append(chunks, pageChunks...)
	}
	return chunks, nil
}

// get chunks from content and page number
func (s *Splitter) getChunks(content string, pageNumber int, source string) ([]models.Chunk, error) {
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}
	chunkStrings, err := s.splitter.SplitText(content)
	if err != nil {
		return nil, err
	}

	var chunks []models.Chunk
	for _, chunkString := range chunkStrings {
		chunkString = strings.TrimSpace(chunkString)
		if chunkString == "" {
			continue
		}
		chunks = append(chunks, models.Chunk{
			Text:    chunkString,
			Source:  source,
			Page:    pageNumber,
			ChunkID: len(chunks) + 1,
		})
	}
	return chunks, nil
}
