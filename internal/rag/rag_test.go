package rag

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/fake"

	"health-rag/internal/chromemdb"
	"health-rag/internal/config"
	"health-rag/internal/llmservice"
	"health-rag/internal/models"
	"health-rag/internal/vectorstore"
)

type fakeStore struct {
	mu          sync.Mutex
	collections map[string]int
	created     []string
	upserts     map[string][]vectorstore.Point
	hits        []vectorstore.ScoredPoint
	searches    []int
	listErr     error
}

func newFakeStore(collections ...string) *fakeStore {
	s := &fakeStore{collections: map[string]int{}, upserts: map[string][]vectorstore.Point{}}
	for _, c := range collections {
		s.collections[c] = 384
	}
	return s
}

func (s *fakeStore) ListCollections(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	names := make([]string, 0, len(s.collections))
	for n := range s.collections {
		names = append(names, n)
	}
	return names, nil
}

func (s *fakeStore) CreateCollection(_ context.Context, name string, size int, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[name] = size
	s.created = append(s.created, name)
	return nil
}

func (s *fakeStore) Upsert(_ context.Context, collection string, points []vectorstore.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts[collection] = append(s.upserts[collection], points...)
	return nil
}

func (s *fakeStore) Search(_ context.Context, _ string, _ []float32, limit int) ([]vectorstore.ScoredPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searches = append(s.searches, limit)
	if limit < len(s.hits) {
		return s.hits[:limit], nil
	}
	return s.hits, nil
}

// fakeEncoder maps each text to a unit vector chosen by its first letter.
type fakeEncoder struct {
	calls int
	err   error
}

func (e *fakeEncoder) Encode(_ context.Context, texts []string, _ int) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, 3)
		if t != "" {
			v[int(strings.ToLower(t)[0])%3] = 1
		} else {
			v[0] = 1
		}
		out[i] = v
	}
	return out, nil
}

type fakeLoader struct {
	pages []models.Page
	err   error
	paths []string
}

func (l *fakeLoader) Load(path string) ([]models.Page, error) {
	l.paths = append(l.paths, path)
	return l.pages, l.err
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.VectorDB.Provider = config.ProviderChromem
	cfg.RAG.VectorSize = 3
	cfg.InferenceLLM.BaseURL = "https://infer.local/v1"
	cfg.InferenceLLM.Key = "key"
	return cfg
}

func fakeLLM(responses ...string) llmservice.Completer {
	cfg := testConfig()
	return llmservice.NewClient(cfg.InferenceLLM, cfg.Sampling, llmservice.WithModelFactory(func(config.LLMConfig) (llms.Model, error) {
		return fake.NewFakeLLM(responses), nil
	}))
}

func TestIngestFile_Success(t *testing.T) {
	store := newFakeStore()
	loader := &fakeLoader{pages: []models.Page{
		{Index: 0, Content: "Janani Suraksha Yojana\nState: Bihar\nBenefits: Cash assistance"},
		{Index: 1, Content: "Pradhan Mantri Matru Vandana Yojana\nBenefits: 5000 rupees"},
	}}
	r := NewRAG(testConfig(), store, &fakeEncoder{}, nil, loader)

	res, err := r.IngestFile(context.Background(), "/tmp/x.pdf", "schemes.pdf", "")
	require.NoError(t, err)
	assert.Equal(t, models.IngestResult{Status: models.StatusSuccess, Message: "Uploaded 2 chunks from schemes.pdf.", ChunksCount: 2}, res)

	assert.Equal(t, []string{"health_schemes"}, store.created)
	assert.Equal(t, 3, store.collections["health_schemes"])
	points := store.upserts["health_schemes"]
	require.Len(t, points, 2)
	assert.NotEqual(t, points[0].ID, points[1].ID)
	assert.Len(t, points[0].ID, 36)
	assert.Equal(t, "schemes.pdf", points[0].Payload[models.PayloadSourceKey])
	assert.Equal(t, 1, points[0].Payload[models.PayloadPageKey])
	assert.Equal(t, 2, points[1].Payload[models.PayloadPageKey])
	assert.Equal(t, 1, points[1].Payload[models.PayloadChunkKey])
	assert.Len(t, points[0].Vector, 3)
}

func TestIngestFile_ExistingCollectionNotRecreated(t *testing.T) {
	store := newFakeStore("custom")
	loader := &fakeLoader{pages: []models.Page{{Content: "some text"}}}
	r := NewRAG(testConfig(), store, &fakeEncoder{}, nil, loader)

	res, err := r.IngestFile(context.Background(), "p.pdf", "p.pdf", "custom")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, res.Status)
	assert.Empty(t, store.created)
	assert.Len(t, store.upserts["custom"], 1)
}

func TestIngestFile_NoPages(t *testing.T) {
	store := newFakeStore()
	encoder := &fakeEncoder{}
	r := NewRAG(testConfig(), store, encoder, nil, &fakeLoader{})

	res, err := r.IngestFile(context.Background(), "empty.pdf", "empty.pdf", "")
	require.NoError(t, err)
	assert.Equal(t, models.IngestResult{Status: models.StatusWarning, Message: "No content found in empty.pdf."}, res)
	assert.Empty(t, store.created)
	assert.Empty(t, store.upserts)
	assert.Equal(t, 0, encoder.calls)
}

func TestIngestFile_NoChunks(t *testing.T) {
	store := newFakeStore()
	r := NewRAG(testConfig(), store, &fakeEncoder{}, nil, &fakeLoader{pages: []models.Page{{Content: "  \n "}}})

	res, err := r.IngestFile(context.Background(), "blank.pdf", "blank.pdf", "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusWarning, res.Status)
	assert.Equal(t, "No text chunks extracted from blank.pdf.", res.Message)
	assert.Empty(t, store.upserts)
}

func TestIngestFile_Errors(t *testing.T) {
	boom := errors.New("broken xref table")
	r := NewRAG(testConfig(), newFakeStore(), &fakeEncoder{}, nil, &fakeLoader{err: boom})
	_, err := r.IngestFile(context.Background(), "bad.pdf", "bad.pdf", "")
	assert.ErrorIs(t, err, boom)

	store := newFakeStore()
	r = NewRAG(testConfig(), store, &fakeEncoder{err: boom}, nil, &fakeLoader{pages: []models.Page{{Content: "x"}}})
	_, err = r.IngestFile(context.Background(), "a.pdf", "a.pdf", "")
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, store.upserts)
}

func TestIngestFile_ConfigErrorBeforeAnyCall(t *testing.T) {
	cfg := testConfig()
	cfg.VectorDB.Provider = config.ProviderQdrant
	cfg.VectorDB.URL = ""
	loader := &fakeLoader{pages: []models.Page{{Content: "x"}}}
	r := NewRAG(cfg, newFakeStore(), &fakeEncoder{}, nil, loader)

	_, err := r.IngestFile(context.Background(), "a.pdf", "a.pdf", "")
	var cfgErr *config.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Empty(t, loader.paths)
}

func TestIngestUpload_RemovesTempFile(t *testing.T) {
	loader := &fakeLoader{pages: []models.Page{{Content: "Scheme\nState: Goa"}}}
	r := NewRAG(testConfig(), newFakeStore(), &fakeEncoder{}, nil, loader)

	res, err := r.IngestUpload(context.Background(), strings.NewReader("%PDF-1.4 fake"), "goa.pdf", "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, res.Status)

	require.Len(t, loader.paths, 1)
	_, statErr := os.Stat(loader.paths[0])
	assert.True(t, os.IsNotExist(statErr))
}

func TestIngestUpload_RemovesTempFileOnFailure(t *testing.T) {
	loader := &fakeLoader{err: errors.New("not a pdf")}
	r := NewRAG(testConfig(), newFakeStore(), &fakeEncoder{}, nil, loader)

	_, err := r.IngestUpload(context.Background(), strings.NewReader("junk"), "junk.pdf", "")
	require.Error(t, err)
	require.Len(t, loader.paths, 1)
	_, statErr := os.Stat(loader.paths[0])
	assert.True(t, os.IsNotExist(statErr))
}

func TestSearch_ParsesRecords(t *testing.T) {
	store := newFakeStore("health_schemes")
	store.hits = []vectorstore.ScoredPoint{
		{ID: "a", Score: 0.9, Payload: map[string]any{"text": "PM Matru Vandana\nState: Maharashtra\nBenefits: Cash incentive"}},
		{ID: "b", Score: 0.5, Payload: map[string]any{"text": "Free text about anaemia"}},
	}
	r := NewRAG(testConfig(), store, &fakeEncoder{}, nil, &fakeLoader{})

	resp, err := r.Search(context.Background(), "maternity benefit", "", 0)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, store.searches)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, models.SchemeRecord{
		SchemeName: "PM Matru Vandana",
		State:      "Maharashtra",
		Benefits:   "Cash incentive",
		ResultID:   1,
	}, resp.Results[0])
	assert.Equal(t, "Free text about anaemia", resp.Results[1].RawContent)
	assert.Equal(t, 2, resp.Results[1].ResultID)
}

func TestSearch_EmptyResultsAreNotNil(t *testing.T) {
	r := NewRAG(testConfig(), newFakeStore("health_schemes"), &fakeEncoder{}, nil, &fakeLoader{})
	resp, err := r.Search(context.Background(), "q", "health_schemes", 5)
	require.NoError(t, err)
	assert.NotNil(t, resp.Results)
	assert.Empty(t, resp.Results)
}

func TestSearch_MissingCollection(t *testing.T) {
	encoder := &fakeEncoder{}
	r := NewRAG(testConfig(), newFakeStore(), encoder, nil, &fakeLoader{})

	_, err := r.Search(context.Background(), "q", "nope", 3)
	assert.ErrorIs(t, err, ErrCollectionNotFound)
	assert.Contains(t, err.Error(), "nope")
	assert.Equal(t, 0, encoder.calls)
}

func TestSearch_ListError(t *testing.T) {
	boom := errors.New("qdrant down")
	store := newFakeStore()
	store.listErr = boom
	r := NewRAG(testConfig(), store, &fakeEncoder{}, nil, &fakeLoader{})

	_, err := r.Search(context.Background(), "q", "", 3)
	assert.ErrorIs(t, err, boom)
}

func TestNutritionRecommendation_JSONPlan(t *testing.T) {
	store := newFakeStore("nutrition_data")
	store.hits = []vectorstore.ScoredPoint{{Payload: map[string]any{"text": "Iron rich foods: ragi, jaggery"}}}
	llm := fakeLLM("```json\n{\"day1\":{\"breakfast\":\"Idli\"}}\n```")
	r := NewRAG(testConfig(), store, &fakeEncoder{}, llm, &fakeLoader{})

	resp, err := r.NutritionRecommendation(context.Background(), "I am 25 weeks pregnant from Kerala", 0)
	require.NoError(t, err)
	assert.Equal(t, "kerala", resp.Region)
	assert.Empty(t, resp.Note)
	assert.Equal(t, "Idli", resp.DietPlan.Day(1).Breakfast)
	assert.Equal(t, models.NotSpecified, resp.DietPlan.Day(7).Dinner)
}

func TestNutritionRecommendation_PromptCarriesContext(t *testing.T) {
	store := newFakeStore("nutrition_data")
	store.hits = []vectorstore.ScoredPoint{
		{Payload: map[string]any{"text": "snippet one"}},
		{Payload: map[string]any{"text": "snippet two"}},
	}
	rec := &promptRecorder{reply: "Day 1: Breakfast: Poha. Lunch: Dal rice."}
	r := NewRAG(testConfig(), store, &fakeEncoder{}, rec, &fakeLoader{})

	resp, err := r.NutritionRecommendation(context.Background(), "pregnant, lives in Assam", 2)
	require.NoError(t, err)
	assert.Equal(t, models.DegradedPlanNote, resp.Note)
	assert.Equal(t, "Poha", resp.DietPlan.Day(1).Breakfast)
	assert.Equal(t, "assam", resp.Region)

	assert.Contains(t, rec.prompt, "Woman's details: pregnant, lives in Assam")
	assert.Contains(t, rec.prompt, "snippet one\n\nsnippet two")
	assert.Contains(t, rec.prompt, "Geographic region: assam")
	assert.Equal(t, []int{2}, store.searches)
}

type promptRecorder struct {
	prompt string
	reply  string
	err    error
}

func (p *promptRecorder) Complete(_ context.Context, prompt string) (string, error) {
	p.prompt = prompt
	return p.reply, p.err
}

func TestNutritionRecommendation_Preconditions(t *testing.T) {
	cfg := testConfig()
	cfg.InferenceLLM.Key = ""
	encoder := &fakeEncoder{}
	r := NewRAG(cfg, newFakeStore("nutrition_data"), encoder, &promptRecorder{}, &fakeLoader{})
	_, err := r.NutritionRecommendation(context.Background(), "q", 3)
	var cfgErr *config.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{"LLAMA_API_KEY"}, cfgErr.Keys)
	assert.Equal(t, 0, encoder.calls)

	r = NewRAG(testConfig(), newFakeStore(), encoder, &promptRecorder{}, &fakeLoader{})
	_, err = r.NutritionRecommendation(context.Background(), "q", 3)
	assert.ErrorIs(t, err, ErrCollectionNotFound)
}

func TestNutritionRecommendation_LLMError(t *testing.T) {
	boom := errors.New("503 from inference endpoint")
	r := NewRAG(testConfig(), newFakeStore("nutrition_data"), &fakeEncoder{}, &promptRecorder{err: boom}, &fakeLoader{})
	_, err := r.NutritionRecommendation(context.Background(), "q", 3)
	assert.ErrorIs(t, err, boom)
}

func TestIngestThenSearch_Chromem(t *testing.T) {
	ctx := context.Background()
	store, err := chromemdb.NewStore(chromemdb.Options{InMemory: true})
	require.NoError(t, err)

	loader := &fakeLoader{pages: []models.Page{
		{Index: 0, Content: "Anemia Mukt Bharat\nDescription: Iron supplementation\nContact: 104"},
	}}
	r := NewRAG(testConfig(), store, &fakeEncoder{}, nil, loader)

	res, err := r.IngestFile(ctx, "a.pdf", "a.pdf", "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.ChunksCount)

	resp, err := r.Search(ctx, "anemia", "", 3)
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Anemia Mukt Bharat", resp.Results[0].SchemeName)
	assert.Equal(t, "Iron supplementation", resp.Results[0].Description)
	assert.Equal(t, "104", resp.Results[0].ContactInfo)
	assert.Equal(t, 1, resp.Results[0].ResultID)
}
