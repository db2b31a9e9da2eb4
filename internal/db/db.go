package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"health-rag/internal/vectorstore"
)

type Collection struct {
	bun.BaseModel `bun:"table:rag_collections,alias:c"`
	Name          string `bun:"name,pk"`
	VectorSize    int    `bun:"vector_size,notnull"`
	Distance      string `bun:"distance,notnull"`
}

type Point struct {
	bun.BaseModel `bun:"table:rag_points,alias:p"`
	ID            string          `bun:"id,pk,type:uuid"`
	Collection    string          `bun:"collection,notnull"`
	Embedding     pgvector.Vector `bun:"embedding,notnull,type:vector"`
	Payload       map[string]any  `bun:"payload,type:jsonb"`
}

type scoredRow struct {
	ID      string         `bun:"id"`
	Payload map[string]any `bun:"payload,type:jsonb"`
	Score   float64        `bun:"score"`
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

func ConnectDB(dsn, password string) *sql.DB {
	opts := []pgdriver.Option{pgdriver.WithDSN(withSSLMode(dsn))}
	if password != "" {
		opts = append(opts, pgdriver.WithPassword(password))
	}
	return sql.OpenDB(pgdriver.NewConnector(opts...))
}

// withSSLMode disables TLS unless the DSN already chooses a mode.
func withSSLMode(dsn string) string {
	if strings.Contains(dsn, "sslmode=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "sslmode=disable"
}

func InitDB(ctx context.Context, db *bun.DB) error {
	if _, err := db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}
	if _, err := db.NewCreateTable().Model((*Collection)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create collections table: %w", err)
	}
	if _, err := db.NewCreateTable().Model((*Point)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create points table: %w", err)
	}
	_, err := db.NewCreateIndex().Model((*Point)(nil)).Index("rag_points_collection_idx").IfNotExists().Column("collection").Exec(ctx)
	return err
}

// Store keeps collections and points in Postgres with the pgvector extension.
type Store struct {
	db *bun.DB

	mu     sync.Mutex
	inited bool
}

var _ vectorstore.Store = (*Store)(nil)

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

// ensureSchema creates tables on first use; a failure is retried next call.
func (s *Store) ensureSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inited {
		return nil
	}
	if err := InitDB(ctx, s.db); err != nil {
		log.Error().Err(err).Msg("Error initializing pgvector schema")
		return err
	}
	s.inited = true
	return nil
}

func (s *Store) ListCollections(ctx context.Context) ([]string, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	var names []string
	err := s.db.NewSelect().Model((*Collection)(nil)).Column("name").Order("name").Scan(ctx, &names)
	return names, err
}

func (s *Store) CreateCollection(ctx context.Context, name string, size int, distance string) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	if distance == "" {
		distance = vectorstore.DistanceCosine
	}
	if _, err := distanceOperator(distance); err != nil {
		return err
	}
	c := &Collection{Name: name, VectorSize: size, Distance: distance}
	_, err := s.db.NewInsert().Model(c).Exec(ctx)
	return err
}

func (s *Store) collection(ctx context.Context, name string) (*Collection, error) {
	c := new(Collection)
	err := s.db.NewSelect().Model(c).Where("name = ?", name).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("collection %s not found", name)
	}
	return c, err
}

func (s *Store) Upsert(ctx context.Context, collection string, points []vectorstore.Point) error {
	if len(points) == 0 {
		return nil
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	c, err := s.collection(ctx, collection)
	if err != nil {
		return err
	}

	rows := make([]Point, 0, len(points))
	for _, p := range points {
		if len(p.Vector) != c.VectorSize {
			return fmt.Errorf("point %s has dimension %d, collection %s expects %d", p.ID, len(p.Vector), collection, c.VectorSize)
		}
		rows = append(rows, Point{
			ID:         p.ID,
			Collection: collection,
			Embedding:  pgvector.NewVector(p.Vector),
			Payload:    p.Payload,
		})
	}
	_, err = upsertQuery(s.db, &rows).Exec(ctx)
	return err
}

func upsertQuery(db bun.IDB, rows *[]Point) *bun.InsertQuery {
	return db.NewInsert().
		Model(rows).
		On("CONFLICT (id) DO UPDATE").
		Set("collection = EXCLUDED.collection").
		Set("embedding = EXCLUDED.embedding").
		Set("payload = EXCLUDED.payload")
}

func (s *Store) Search(ctx context.Context, collection string, vector []float32, limit int) ([]vectorstore.ScoredPoint, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	c, err := s.collection(ctx, collection)
	if err != nil {
		return nil, err
	}
	q, err := searchQuery(s.db, c, vector, limit)
	if err != nil {
		return nil, err
	}

	var rows []scoredRow
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, err
	}
	hits := make([]vectorstore.ScoredPoint, 0, len(rows))
	for _, r := range rows {
		hits = append(hits, vectorstore.ScoredPoint{ID: r.ID, Score: float32(r.Score), Payload: r.Payload})
	}
	return hits, nil
}

func searchQuery(db bun.IDB, c *Collection, vector []float32, limit int) (*bun.SelectQuery, error) {
	op, err := distanceOperator(c.Distance)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	vec := pgvector.NewVector(vector)
	return db.NewSelect().
		Model((*Point)(nil)).
		Column("id", "payload").
		ColumnExpr(scoreExpr(c.Distance, op)+" AS score", vec).
		Where("collection = ?", c.Name).
		OrderExpr("embedding "+op+" ?", vec).
		Limit(limit), nil
}

func distanceOperator(distance string) (string, error) {
	switch strings.ToLower(distance) {
	case "cosine":
		return "<=>", nil
	case "euclid":
		return "<->", nil
	case "dot":
		return "<#>", nil
	default:
		return "", fmt.Errorf("unsupported distance %q", distance)
	}
}

// scoreExpr turns a pgvector distance into a higher-is-closer score.
func scoreExpr(distance, op string) string {
	switch strings.ToLower(distance) {
	case "cosine":
		return "1 - (embedding " + op + " ?)"
	default:
		// <#> is the negative inner product; negating both keeps the order
		return "-(embedding " + op + " ?)"
	}
}
