// Package store persists the prepared corpus in SQLite: pages, categories,
// annotated paragraphs with their links and tokens, and run bookkeeping.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/wikiwsd/core/annotate"
	"github.com/FocuswithJustin/wikiwsd/core/cas"
	"github.com/FocuswithJustin/wikiwsd/core/errors"
	"github.com/FocuswithJustin/wikiwsd/core/sqldump"
	"github.com/FocuswithJustin/wikiwsd/core/sqlite"
)

const schemaVersion = 1

var schema = []string{
	`CREATE TABLE IF NOT EXISTS meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS pages (
		id        INTEGER PRIMARY KEY,
		title     TEXT NOT NULL,
		namespace INTEGER NOT NULL DEFAULT 0,
		redirect  TEXT,
		is_redir  INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS pages_by_title ON pages (namespace, title)`,
	`CREATE TABLE IF NOT EXISTS categories (
		page_id  INTEGER NOT NULL,
		category TEXT NOT NULL,
		PRIMARY KEY (page_id, category)
	)`,
	`CREATE INDEX IF NOT EXISTS categories_by_name ON categories (category)`,
	`CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		started_at  TEXT NOT NULL,
		finished_at TEXT,
		engine      TEXT NOT NULL,
		status      TEXT NOT NULL,
		pages       INTEGER NOT NULL DEFAULT 0,
		paragraphs  INTEGER NOT NULL DEFAULT 0,
		links       INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS paragraphs (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		page_id     INTEGER NOT NULL,
		char_offset INTEGER NOT NULL,
		text        TEXT NOT NULL,
		fingerprint TEXT NOT NULL UNIQUE,
		split       TEXT NOT NULL,
		run_id      TEXT NOT NULL REFERENCES runs (id)
	)`,
	`CREATE INDEX IF NOT EXISTS paragraphs_by_split ON paragraphs (split, id)`,
	`CREATE TABLE IF NOT EXISTS links (
		paragraph_id INTEGER NOT NULL REFERENCES paragraphs (id) ON DELETE CASCADE,
		target       TEXT NOT NULL,
		target_id    INTEGER NOT NULL DEFAULT 0,
		phrase       TEXT NOT NULL,
		start_pos    INTEGER NOT NULL,
		end_pos      INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS links_by_paragraph ON links (paragraph_id)`,
	`CREATE INDEX IF NOT EXISTS links_by_target ON links (target)`,
	`CREATE TABLE IF NOT EXISTS phrases (
		phrase TEXT PRIMARY KEY,
		senses INTEGER NOT NULL,
		links  INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tokens (
		paragraph_id INTEGER NOT NULL REFERENCES paragraphs (id) ON DELETE CASCADE,
		sentence     INTEGER NOT NULL,
		idx          INTEGER NOT NULL,
		start_pos    INTEGER NOT NULL,
		end_pos      INTEGER NOT NULL,
		value        TEXT NOT NULL,
		pos          TEXT NOT NULL,
		lemma        TEXT NOT NULL,
		ws_before    TEXT NOT NULL,
		ws_after     TEXT NOT NULL,
		PRIMARY KEY (paragraph_id, sentence, idx)
	)`,
}

// Store is an open corpus database.
type Store struct {
	db       *sql.DB
	path     string
	readOnly bool
}

// Open opens or creates the database at path for writing and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sqlite.OpenWriter(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenReadOnly opens an existing database for reading.
func OpenReadOnly(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	db, err := sqlite.OpenReadOnly(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	db.SetMaxOpenConns(1)
	s := &Store{db: db, path: path, readOnly: true}

	var version string
	err = db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&version)
	if err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "read schema version of %s", path)
	}
	if version != fmt.Sprint(schemaVersion) {
		db.Close()
		return nil, errors.NewUnsupported("schema version "+version, fmt.Sprintf("expected %d", schemaVersion))
	}
	return s, nil
}

func (s *Store) migrate() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	_, err := s.db.Exec(`INSERT OR IGNORE INTO meta (key, value) VALUES ('schema_version', ?)`, fmt.Sprint(schemaVersion))
	return err
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database. A writer leaves WAL mode first so the file can
// be opened read-only afterwards.
func (s *Store) Close() error {
	if !s.readOnly {
		if _, err := s.db.Exec(`PRAGMA journal_mode = DELETE`); err != nil {
			s.db.Close()
			return fmt.Errorf("close %s: %w", s.path, err)
		}
	}
	return s.db.Close()
}

// withTx runs fn in a transaction, committing on success.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// InsertPages stores page table rows. Existing ids are replaced.
func (s *Store) InsertPages(ctx context.Context, pages []sqldump.Page) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO pages (id, title, namespace, is_redir) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, p := range pages {
			if _, err := stmt.ExecContext(ctx, p.ID, p.Title, p.Namespace, boolInt(p.Redirect)); err != nil {
				return fmt.Errorf("insert page %d: %w", p.ID, err)
			}
		}
		return nil
	})
}

// InsertCategories stores categorylinks rows. Duplicates are ignored.
func (s *Store) InsertCategories(ctx context.Context, links []sqldump.CategoryLink) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO categories (page_id, category) VALUES (?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, l := range links {
			if _, err := stmt.ExecContext(ctx, l.From, l.Category); err != nil {
				return fmt.Errorf("insert category of %d: %w", l.From, err)
			}
		}
		return nil
	})
}

// Redirect is a redirect page and its target title.
type Redirect struct {
	PageID int64
	Title  string
	Target string
}

// SetRedirects records redirect targets found in the XML dump. Pages missing
// from the page table are added.
func (s *Store) SetRedirects(ctx context.Context, redirects []Redirect) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO pages (id, title, namespace, redirect, is_redir) VALUES (?, ?, 0, ?, 1)
			ON CONFLICT (id) DO UPDATE SET redirect = excluded.redirect, is_redir = 1`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, r := range redirects {
			if _, err := stmt.ExecContext(ctx, r.PageID, r.Title, r.Target); err != nil {
				return fmt.Errorf("set redirect %q: %w", r.Title, err)
			}
		}
		return nil
	})
}

// LookupTitle finds a main-namespace page by title. redirect is empty for
// articles. It matches cache.Lookup.
func (s *Store) LookupTitle(title string) (id int64, redirect string, ok bool, err error) {
	var target sql.NullString
	var isRedirect int
	err = s.db.QueryRow(`SELECT id, redirect, is_redir FROM pages WHERE title = ? AND namespace = 0`, title).
		Scan(&id, &target, &isRedirect)
	if err == sql.ErrNoRows {
		return 0, "", false, nil
	}
	if err != nil {
		return 0, "", false, err
	}
	if isRedirect != 0 && !target.Valid {
		// Redirect flagged in the page table without a known target.
		return 0, "", false, nil
	}
	return id, target.String, true, nil
}

// Title returns the title of page id.
func (s *Store) Title(ctx context.Context, id int64) (string, error) {
	var title string
	err := s.db.QueryRowContext(ctx, `SELECT title FROM pages WHERE id = ?`, id).Scan(&title)
	if err == sql.ErrNoRows {
		return "", errors.NewNotFound("page", fmt.Sprint(id))
	}
	return title, err
}

// Categories returns the categories of a page in name order.
func (s *Store) Categories(ctx context.Context, pageID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category FROM categories WHERE page_id = ? ORDER BY category`, pageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// Run is one execution of the preparation pipeline.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Engine     string
	Status     string
	Pages      int64
	Paragraphs int64
	Links      int64
}

// Run statuses.
const (
	RunRunning  = "running"
	RunComplete = "complete"
	RunFailed   = "failed"
)

// BeginRun records the start of a run and returns it with a fresh id.
func (s *Store) BeginRun(ctx context.Context, engine string) (*Run, error) {
	run := &Run{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
		Engine:    engine,
		Status:    RunRunning,
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO runs (id, started_at, engine, status) VALUES (?, ?, ?, ?)`,
		run.ID, run.StartedAt.Format(time.RFC3339), run.Engine, run.Status)
	if err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}
	return run, nil
}

// FinishRun stores the final status and counters of run.
func (s *Store) FinishRun(ctx context.Context, run *Run, status string) error {
	run.Status = status
	run.FinishedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `UPDATE runs SET finished_at = ?, status = ?, pages = ?, paragraphs = ?, links = ? WHERE id = ?`,
		run.FinishedAt.Format(time.RFC3339), run.Status, run.Pages, run.Paragraphs, run.Links, run.ID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewNotFound("run", run.ID)
	}
	return nil
}

// GetRun loads a run by id.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	var (
		run      Run
		started  string
		finished sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, started_at, finished_at, engine, status, pages, paragraphs, links FROM runs WHERE id = ?`, id).
		Scan(&run.ID, &started, &finished, &run.Engine, &run.Status, &run.Pages, &run.Paragraphs, &run.Links)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("run", id)
	}
	if err != nil {
		return nil, err
	}
	run.StartedAt, _ = time.Parse(time.RFC3339, started)
	if finished.Valid {
		run.FinishedAt, _ = time.Parse(time.RFC3339, finished.String)
	}
	return &run, nil
}

// Link is a link inside a stored paragraph. Offsets are page offsets.
// Phrase is the normalised label text; TargetID is 0 for unresolved targets.
type Link struct {
	Target   string
	TargetID int64
	Phrase   string
	Start    int
	End      int
}

// Paragraph is an annotated paragraph with its links.
type Paragraph struct {
	ID          int64
	PageID      int64
	Offset      int
	Text        string
	Fingerprint cas.Fingerprint
	Split       cas.Split
	Links       []Link
	Annotation  annotate.Paragraph
}

// HasFingerprint reports whether a paragraph with fp is already stored.
func (s *Store) HasFingerprint(ctx context.Context, fp cas.Fingerprint) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM paragraphs WHERE fingerprint = ?`, fp.Hex()).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// SaveParagraphs stores paragraphs with their links and tokens in one
// transaction and sets their ids. Paragraphs whose fingerprint is already
// stored are skipped; the returned count is the number inserted.
func (s *Store) SaveParagraphs(ctx context.Context, runID string, paras []*Paragraph) (int, error) {
	inserted := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		insPara, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO paragraphs (page_id, char_offset, text, fingerprint, split, run_id) VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer insPara.Close()
		insLink, err := tx.PrepareContext(ctx, `INSERT INTO links (paragraph_id, target, target_id, phrase, start_pos, end_pos) VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer insLink.Close()
		insTok, err := tx.PrepareContext(ctx, `INSERT INTO tokens (paragraph_id, sentence, idx, start_pos, end_pos, value, pos, lemma, ws_before, ws_after) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer insTok.Close()

		for _, p := range paras {
			res, err := insPara.ExecContext(ctx, p.PageID, p.Offset, p.Text, p.Fingerprint.Hex(), string(p.Split), runID)
			if err != nil {
				return fmt.Errorf("insert paragraph of page %d: %w", p.PageID, err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				continue
			}
			if p.ID, err = res.LastInsertId(); err != nil {
				return err
			}
			inserted++
			for _, l := range p.Links {
				if _, err := insLink.ExecContext(ctx, p.ID, l.Target, l.TargetID, l.Phrase, l.Start, l.End); err != nil {
					return fmt.Errorf("insert link: %w", err)
				}
			}
			for si, sent := range p.Annotation {
				for ti, t := range sent {
					if _, err := insTok.ExecContext(ctx, p.ID, si, ti, t.Start, t.End, t.Value, t.POS, t.Lemma, t.Before, t.After); err != nil {
						return fmt.Errorf("insert token: %w", err)
					}
				}
			}
		}
		return nil
	})
	return inserted, err
}

// resolveChunk is the number of distinct link targets resolved per transaction.
const resolveChunk = 1000

// ResolveTargets sets target_id on every link by calling resolve once per
// distinct target title. Targets resolving to 0 are left unresolved. It
// returns the number of links updated. resolve may query the store.
func (s *Store) ResolveTargets(ctx context.Context, resolve func(title string) (int64, error)) (int64, error) {
	var (
		updated int64
		last    string
	)
	for {
		targets, err := s.targetChunk(ctx, last)
		if err != nil {
			return updated, err
		}
		if len(targets) == 0 {
			return updated, nil
		}
		last = targets[len(targets)-1]

		ids := make([]int64, len(targets))
		for i, t := range targets {
			if ids[i], err = resolve(t); err != nil {
				return updated, err
			}
		}

		err = s.withTx(ctx, func(tx *sql.Tx) error {
			stmt, err := tx.PrepareContext(ctx, `UPDATE links SET target_id = ? WHERE target = ?`)
			if err != nil {
				return err
			}
			defer stmt.Close()
			for i, t := range targets {
				if ids[i] == 0 {
					continue
				}
				res, err := stmt.ExecContext(ctx, ids[i], t)
				if err != nil {
					return fmt.Errorf("update links to %q: %w", t, err)
				}
				n, _ := res.RowsAffected()
				updated += n
			}
			return nil
		})
		if err != nil {
			return updated, err
		}
	}
}

func (s *Store) targetChunk(ctx context.Context, after string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT target FROM links WHERE target > ? ORDER BY target LIMIT ?`, after, resolveChunk)
	if err != nil {
		return nil, fmt.Errorf("query link targets: %w", err)
	}
	defer rows.Close()

	var targets []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// RebuildPhrases recomputes the phrases table: every link phrase with the
// number of distinct resolved targets it links to. It returns the number of
// ambiguous phrases, those with at least two senses.
func (s *Store) RebuildPhrases(ctx context.Context) (int64, error) {
	var ambiguous int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM phrases`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO phrases (phrase, senses, links)
			SELECT phrase, COUNT(DISTINCT target_id), COUNT(*) FROM links
			WHERE target_id != 0 AND phrase != ''
			GROUP BY phrase`)
		if err != nil {
			return fmt.Errorf("rebuild phrases: %w", err)
		}
		return tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM phrases WHERE senses >= 2`).Scan(&ambiguous)
	})
	return ambiguous, err
}

// AmbiguousPhrases returns phrases linking to at least minSenses distinct
// articles, with their sense counts.
func (s *Store) AmbiguousPhrases(ctx context.Context, minSenses int) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT phrase, senses FROM phrases WHERE senses >= ?`, minSenses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	phrases := make(map[string]int)
	for rows.Next() {
		var (
			phrase string
			senses int
		)
		if err := rows.Scan(&phrase, &senses); err != nil {
			return nil, err
		}
		phrases[phrase] = senses
	}
	return phrases, rows.Err()
}

// Counts summarises the stored corpus.
type Counts struct {
	Pages      int64
	Categories int64
	Paragraphs map[cas.Split]int64
	Links      int64
	Tokens     int64
}

// Count returns row counts per table and paragraphs per split.
func (s *Store) Count(ctx context.Context) (*Counts, error) {
	c := &Counts{Paragraphs: make(map[cas.Split]int64)}
	for _, q := range []struct {
		sql string
		dst *int64
	}{
		{`SELECT COUNT(*) FROM pages`, &c.Pages},
		{`SELECT COUNT(*) FROM categories`, &c.Categories},
		{`SELECT COUNT(*) FROM links`, &c.Links},
		{`SELECT COUNT(*) FROM tokens`, &c.Tokens},
	} {
		if err := s.db.QueryRowContext(ctx, q.sql).Scan(q.dst); err != nil {
			return nil, err
		}
	}

	rows, err := s.db.QueryContext(ctx, `SELECT split, COUNT(*) FROM paragraphs GROUP BY split`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var split string
		var n int64
		if err := rows.Scan(&split, &n); err != nil {
			return nil, err
		}
		c.Paragraphs[cas.Split(split)] = n
	}
	return c, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// eachChunk is the number of paragraphs loaded per query by EachParagraph.
const eachChunk = 500

// EachParagraph calls fn for every paragraph of split in id order, with links
// and tokens loaded. Paragraphs are read in chunks and no query is open while
// fn runs, so fn may use the store.
func (s *Store) EachParagraph(ctx context.Context, split cas.Split, fn func(*Paragraph) error) error {
	var after int64
	for {
		chunk, err := s.paragraphChunk(ctx, split, after)
		if err != nil {
			return err
		}
		if len(chunk) == 0 {
			return nil
		}
		if err := s.loadDetails(ctx, chunk); err != nil {
			return err
		}
		for _, p := range chunk {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(p); err != nil {
				return err
			}
		}
		after = chunk[len(chunk)-1].ID
	}
}

func (s *Store) paragraphChunk(ctx context.Context, split cas.Split, after int64) ([]*Paragraph, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, page_id, char_offset, text, fingerprint, split FROM paragraphs
		WHERE split = ? AND id > ? ORDER BY id LIMIT ?`, string(split), after, eachChunk)
	if err != nil {
		return nil, fmt.Errorf("query paragraphs: %w", err)
	}
	defer rows.Close()

	var chunk []*Paragraph
	for rows.Next() {
		var (
			p     Paragraph
			fp    string
			split string
		)
		if err := rows.Scan(&p.ID, &p.PageID, &p.Offset, &p.Text, &fp, &split); err != nil {
			return nil, err
		}
		if p.Fingerprint, err = cas.ParseFingerprint(fp); err != nil {
			return nil, fmt.Errorf("paragraph %d: %w", p.ID, err)
		}
		p.Split = cas.Split(split)
		chunk = append(chunk, &p)
	}
	return chunk, rows.Err()
}

// loadDetails fills links and tokens of a chunk sorted by id.
func (s *Store) loadDetails(ctx context.Context, chunk []*Paragraph) error {
	byID := make(map[int64]*Paragraph, len(chunk))
	for _, p := range chunk {
		byID[p.ID] = p
	}
	lo, hi := chunk[0].ID, chunk[len(chunk)-1].ID

	rows, err := s.db.QueryContext(ctx, `SELECT paragraph_id, target, target_id, phrase, start_pos, end_pos FROM links
		WHERE paragraph_id BETWEEN ? AND ? ORDER BY paragraph_id, start_pos`, lo, hi)
	if err != nil {
		return fmt.Errorf("query links: %w", err)
	}
	for rows.Next() {
		var (
			id int64
			l  Link
		)
		if err := rows.Scan(&id, &l.Target, &l.TargetID, &l.Phrase, &l.Start, &l.End); err != nil {
			rows.Close()
			return err
		}
		if p := byID[id]; p != nil {
			p.Links = append(p.Links, l)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.QueryContext(ctx, `SELECT paragraph_id, sentence, start_pos, end_pos, value, pos, lemma, ws_before, ws_after FROM tokens
		WHERE paragraph_id BETWEEN ? AND ? ORDER BY paragraph_id, sentence, idx`, lo, hi)
	if err != nil {
		return fmt.Errorf("query tokens: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id       int64
			sentence int
			t        annotate.Token
		)
		if err := rows.Scan(&id, &sentence, &t.Start, &t.End, &t.Value, &t.POS, &t.Lemma, &t.Before, &t.After); err != nil {
			return err
		}
		p := byID[id]
		if p == nil {
			continue
		}
		for len(p.Annotation) <= sentence {
			p.Annotation = append(p.Annotation, annotate.Sentence{})
		}
		p.Annotation[sentence] = append(p.Annotation[sentence], t)
	}
	return rows.Err()
}
