// Package sqlite persists a frozen vector index, its fitted term model and
// the corpus metadata in a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/domain"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/embedding/tfidf"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/vectorstore/memory"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/vectorstore/sqlite/migrations"
)

const formatVersion = "1"

// Store reads and writes one index artifact. Save writes a temporary file
// and renames it over the artifact, so readers observe either the previous
// index or the new one.
type Store struct {
	path       string
	migrations fs.FS
}

// NewStore returns a store for the artifact at path. Nothing is opened or
// created until Save or Load.
func NewStore(path string) *Store {
	return &Store{path: path, migrations: migrations.FS}
}

// Path returns the artifact file path.
func (s *Store) Path() string { return s.path }

// Save replaces the artifact with ix.
func (s *Store) Save(ctx context.Context, ix *memory.Index) error {
	if ix == nil || ix.Len() == 0 {
		return domain.ErrEmptyIndex
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.Remove(tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing stale temp artifact: %w", err)
	}

	db, err := open(tmp)
	if err != nil {
		return err
	}
	if err := migrate(db, s.migrations); err != nil {
		db.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("running migrations: %w", err)
	}
	if err := writeIndex(ctx, db, ix); err != nil {
		db.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("installing artifact: %w", err)
	}
	return nil
}

// Load restores the index exactly as it was saved. The term model is read
// from its stored parameters rather than re-fitted from the texts.
func (s *Store) Load(ctx context.Context) (*memory.Index, error) {
	db, err := s.openExisting()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	info, err := readInfo(ctx, db)
	if err != nil {
		return nil, err
	}
	docCount, err := info.int("doc_count")
	if err != nil {
		return nil, err
	}
	vocabSize, err := info.int("vocab_size")
	if err != nil {
		return nil, err
	}

	params, err := readTerms(ctx, db)
	if err != nil {
		return nil, err
	}
	if len(params.Terms) != vocabSize {
		return nil, fmt.Errorf("%w: %d terms but vocab_size %d", domain.ErrCorruptStore, len(params.Terms), vocabSize)
	}
	model, err := tfidf.FromParams(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptStore, err)
	}

	docs, err := readDocuments(ctx, db)
	if err != nil {
		return nil, err
	}
	if len(docs) != docCount {
		return nil, fmt.Errorf("%w: %d documents but doc_count %d", domain.ErrCorruptStore, len(docs), docCount)
	}

	vectors, err := readVectors(ctx, db, len(docs), vocabSize)
	if err != nil {
		return nil, err
	}
	return memory.New(model, docs, vectors)
}

// Records returns the metadata of every stored document in id order.
func (s *Store) Records(ctx context.Context) ([]domain.Metadata, error) {
	db, err := s.openExisting()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMetadataUnavailable, err)
	}
	defer db.Close()

	docs, err := readDocuments(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMetadataUnavailable, err)
	}
	out := make([]domain.Metadata, len(docs))
	for i := range docs {
		out[i] = docs[i].Metadata
	}
	return out, nil
}

// Info is the artifact header written by Save.
type Info struct {
	Path          string    `json:"path"`
	FormatVersion string    `json:"format_version"`
	Documents     int       `json:"documents"`
	Vocabulary    int       `json:"vocabulary"`
	SavedAt       time.Time `json:"saved_at"`
}

// Info reads the artifact header without loading documents or vectors.
func (s *Store) Info(ctx context.Context) (Info, error) {
	db, err := s.openExisting()
	if err != nil {
		return Info{}, err
	}
	defer db.Close()

	info, err := readInfo(ctx, db)
	if err != nil {
		return Info{}, err
	}
	out := Info{Path: s.path, FormatVersion: info["format_version"]}
	if out.Documents, err = info.int("doc_count"); err != nil {
		return Info{}, err
	}
	if out.Vocabulary, err = info.int("vocab_size"); err != nil {
		return Info{}, err
	}
	if raw, ok := info["saved_at"]; ok {
		if out.SavedAt, err = time.Parse(time.RFC3339Nano, raw); err != nil {
			return Info{}, fmt.Errorf("%w: invalid saved_at %q", domain.ErrCorruptStore, raw)
		}
	}
	return out, nil
}

func (s *Store) openExisting() (*sql.DB, error) {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrStoreNotFound, s.path)
		}
		return nil, fmt.Errorf("stat artifact: %w", err)
	}
	return open(s.path)
}

func open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// migrate applies every embedded schema file in name order.
func migrate(db *sql.DB, fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := db.Exec(string(data)); err != nil {
			return fmt.Errorf("exec migration %s: %w", name, err)
		}
	}
	return nil
}

func writeIndex(ctx context.Context, db *sql.DB, ix *memory.Index) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	params := ix.Model().Params()
	info := map[string]string{
		"format_version": formatVersion,
		"doc_count":      strconv.Itoa(ix.Len()),
		"vocab_size":     strconv.Itoa(len(params.Terms)),
		"saved_at":       time.Now().UTC().Format(time.RFC3339Nano),
	}
	for k, v := range info {
		if _, err := tx.ExecContext(ctx, `INSERT INTO index_info (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("insert index info: %w", err)
		}
	}

	termStmt, err := tx.PrepareContext(ctx, `INSERT INTO model_terms (idx, term, idf) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare terms: %w", err)
	}
	defer termStmt.Close()
	for i, term := range params.Terms {
		if _, err := termStmt.ExecContext(ctx, i, term, params.IDF[i]); err != nil {
			return fmt.Errorf("insert term %q: %w", term, err)
		}
	}

	docStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO documents (id, text, file_name, path, version, deprecated, doc_type, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare documents: %w", err)
	}
	defer docStmt.Close()
	vecStmt, err := tx.PrepareContext(ctx, `INSERT INTO vectors (doc_id, term_idx, weight) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare vectors: %w", err)
	}
	defer vecStmt.Close()

	for i := 0; i < ix.Len(); i++ {
		doc := ix.Document(i)
		m := doc.Metadata
		deprecated := 0
		if m.Deprecated {
			deprecated = 1
		}
		_, err := docStmt.ExecContext(ctx, doc.ID, doc.Text, m.FileName, m.Path, m.Version,
			deprecated, m.DocType, m.IngestedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("insert document %d: %w", doc.ID, err)
		}
		vec := ix.Vector(i)
		for j, idx := range vec.Indices {
			if _, err := vecStmt.ExecContext(ctx, doc.ID, idx, vec.Weights[j]); err != nil {
				return fmt.Errorf("insert vector %d: %w", doc.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit index: %w", err)
	}
	return nil
}

type indexInfo map[string]string

func (in indexInfo) int(key string) (int, error) {
	raw, ok := in[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing %s", domain.ErrCorruptStore, key)
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", domain.ErrCorruptStore, key, raw)
	}
	return n, nil
}

func readInfo(ctx context.Context, db *sql.DB) (indexInfo, error) {
	rows, err := db.QueryContext(ctx, `SELECT key, value FROM index_info`)
	if err != nil {
		return nil, fmt.Errorf("%w: read index info: %v", domain.ErrCorruptStore, err)
	}
	defer rows.Close()
	info := indexInfo{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("%w: scan index info: %v", domain.ErrCorruptStore, err)
		}
		info[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read index info: %v", domain.ErrCorruptStore, err)
	}
	if info["format_version"] != formatVersion {
		return nil, fmt.Errorf("%w: unsupported format version %q", domain.ErrCorruptStore, info["format_version"])
	}
	return info, nil
}

func readTerms(ctx context.Context, db *sql.DB) (tfidf.Params, error) {
	rows, err := db.QueryContext(ctx, `SELECT idx, term, idf FROM model_terms ORDER BY idx`)
	if err != nil {
		return tfidf.Params{}, fmt.Errorf("%w: read terms: %v", domain.ErrCorruptStore, err)
	}
	defer rows.Close()
	var p tfidf.Params
	for rows.Next() {
		var (
			idx  int
			term string
			idf  float64
		)
		if err := rows.Scan(&idx, &term, &idf); err != nil {
			return tfidf.Params{}, fmt.Errorf("%w: scan term: %v", domain.ErrCorruptStore, err)
		}
		if idx != len(p.Terms) {
			return tfidf.Params{}, fmt.Errorf("%w: term index gap at %d", domain.ErrCorruptStore, idx)
		}
		p.Terms = append(p.Terms, term)
		p.IDF = append(p.IDF, idf)
	}
	if err := rows.Err(); err != nil {
		return tfidf.Params{}, fmt.Errorf("%w: read terms: %v", domain.ErrCorruptStore, err)
	}
	return p, nil
}

func readDocuments(ctx context.Context, db *sql.DB) ([]domain.Document, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, text, file_name, path, version, deprecated, doc_type, ingested_at
		FROM documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: read documents: %v", domain.ErrCorruptStore, err)
	}
	defer rows.Close()
	var docs []domain.Document
	for rows.Next() {
		var (
			d          domain.Document
			deprecated int64
			ingestedAt string
		)
		if err := rows.Scan(&d.ID, &d.Text, &d.Metadata.FileName, &d.Metadata.Path, &d.Metadata.Version,
			&deprecated, &d.Metadata.DocType, &ingestedAt); err != nil {
			return nil, fmt.Errorf("%w: scan document: %v", domain.ErrCorruptStore, err)
		}
		d.Metadata.Deprecated = deprecated != 0
		t, err := time.Parse(time.RFC3339Nano, ingestedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: document %d ingested_at: %v", domain.ErrCorruptStore, d.ID, err)
		}
		d.Metadata.IngestedAt = t
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read documents: %v", domain.ErrCorruptStore, err)
	}
	return docs, nil
}

func readVectors(ctx context.Context, db *sql.DB, docCount, dim int) ([]tfidf.Vector, error) {
	vectors := make([]tfidf.Vector, docCount)
	for i := range vectors {
		vectors[i].Dim = dim
	}
	rows, err := db.QueryContext(ctx, `SELECT doc_id, term_idx, weight FROM vectors ORDER BY doc_id, term_idx`)
	if err != nil {
		return nil, fmt.Errorf("%w: read vectors: %v", domain.ErrCorruptStore, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			docID, idx int
			weight     float64
		)
		if err := rows.Scan(&docID, &idx, &weight); err != nil {
			return nil, fmt.Errorf("%w: scan vector: %v", domain.ErrCorruptStore, err)
		}
		if docID < 0 || docID >= docCount {
			return nil, fmt.Errorf("%w: vector references unknown document %d", domain.ErrCorruptStore, docID)
		}
		vectors[docID].Indices = append(vectors[docID].Indices, idx)
		vectors[docID].Weights = append(vectors[docID].Weights, weight)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read vectors: %v", domain.ErrCorruptStore, err)
	}
	return vectors, nil
}
