// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/blind-dram/models"
	"github.com/danielhkuo/blind-dram/tasting"
)

// Store is a SQL-backed tasting.Repository.
type Store struct {
	db     *sql.DB
	dbType string
	now    func() time.Time
}

var _ tasting.Repository = (*Store)(nil)

func NewStore(conn *sql.DB, dbType string) *Store {
	return &Store{db: conn, dbType: dbType, now: time.Now}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// q rewrites ? placeholders to $N for PostgreSQL.
func (s *Store) q(query string) string {
	if s.dbType != TypePostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *Store) Create(ctx context.Context, t models.Tasting) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO tasting (id, title, host, organizer_pin_hash, join_code, released, completed, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`), t.ID, t.Title, t.Host, t.OrganizerPinHash, nullString(t.JoinCode),
			boolToInt(t.Released), boolToInt(t.Completed), toMillis(t.CreatedAt), toMillis(t.UpdatedAt))
		if isUniqueViolation(err) {
			return tasting.ErrJoinCodeTaken
		}
		if err != nil {
			return fmt.Errorf("insert tasting: %w", err)
		}
		return s.insertDrams(ctx, tx, t.ID, t.Drams)
	})
}

func (s *Store) insertDrams(ctx context.Context, tx *sql.Tx, tastingID string, drams []models.Dram) error {
	for _, d := range drams {
		_, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO dram (tasting_id, dram_order, name, brought_by)
			VALUES (?, ?, ?, ?)
		`), tastingID, d.Order, d.Name, d.BroughtBy)
		if err != nil {
			return fmt.Errorf("insert dram %d: %w", d.Order, err)
		}
	}
	return nil
}

const tastingColumns = `id, title, host, organizer_pin_hash, join_code, released, completed, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTasting(row rowScanner) (models.Tasting, error) {
	var (
		t                    models.Tasting
		joinCode             sql.NullString
		createdAt, updatedAt int64
	)
	err := row.Scan(&t.ID, &t.Title, &t.Host, &t.OrganizerPinHash, &joinCode,
		&t.Released, &t.Completed, &createdAt, &updatedAt)
	if err != nil {
		return models.Tasting{}, err
	}
	t.JoinCode = joinCode.String
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updatedAt)
	return t, nil
}

func (s *Store) getWhere(ctx context.Context, where string, arg any) (models.Tasting, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+tastingColumns+` FROM tasting WHERE `+where), arg)
	t, err := scanTasting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Tasting{}, tasting.ErrNotFound
	}
	if err != nil {
		return models.Tasting{}, fmt.Errorf("query tasting: %w", err)
	}

	t.Drams, err = s.drams(ctx, t.ID)
	if err != nil {
		return models.Tasting{}, err
	}
	return t, nil
}

func (s *Store) drams(ctx context.Context, tastingID string) ([]models.Dram, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT dram_order, name, brought_by
		FROM dram
		WHERE tasting_id = ?
		ORDER BY dram_order
	`), tastingID)
	if err != nil {
		return nil, fmt.Errorf("query drams: %w", err)
	}
	defer rows.Close()

	drams := []models.Dram{}
	for rows.Next() {
		var d models.Dram
		if err := rows.Scan(&d.Order, &d.Name, &d.BroughtBy); err != nil {
			return nil, fmt.Errorf("scan dram: %w", err)
		}
		drams = append(drams, d)
	}
	return drams, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (models.Tasting, error) {
	return s.getWhere(ctx, "id = ?", id)
}

func (s *Store) GetByJoinCode(ctx context.Context, code string) (models.Tasting, error) {
	return s.getWhere(ctx, "join_code = ?", code)
}

func (s *Store) JoinCodeExists(ctx context.Context, code string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.q(`SELECT COUNT(*) FROM tasting WHERE join_code = ?`), code).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query join code: %w", err)
	}
	return n > 0, nil
}

func (s *Store) AssignJoinCode(ctx context.Context, id, code string) (string, error) {
	var assigned string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, s.q(`
			UPDATE tasting SET join_code = ?, updated_at = ?
			WHERE id = ? AND join_code IS NULL
		`), code, toMillis(s.now()), id)
		if isUniqueViolation(err) {
			return tasting.ErrJoinCodeTaken
		}
		if err != nil {
			return fmt.Errorf("assign join code: %w", err)
		}

		var current sql.NullString
		err = tx.QueryRowContext(ctx, s.q(`SELECT join_code FROM tasting WHERE id = ?`), id).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return tasting.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("query join code: %w", err)
		}
		assigned = current.String
		return nil
	})
	return assigned, err
}

// lockOpen bumps updated_at on a tasting that is not completed. The update
// takes the row lock that serializes rating merges against completion.
func (s *Store) lockOpen(ctx context.Context, q querier, id string) error {
	res, err := q.ExecContext(ctx, s.q(`
		UPDATE tasting SET updated_at = ? WHERE id = ? AND completed = 0
	`), toMillis(s.now()), id)
	if err != nil {
		return fmt.Errorf("lock tasting: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("lock tasting: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := s.completed(ctx, q, id); err != nil {
		return err
	}
	return tasting.ErrFrozen
}

func (s *Store) completed(ctx context.Context, q querier, id string) (bool, error) {
	var completed bool
	err := q.QueryRowContext(ctx, s.q(`SELECT completed FROM tasting WHERE id = ?`), id).Scan(&completed)
	if errors.Is(err, sql.ErrNoRows) {
		return false, tasting.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("query tasting: %w", err)
	}
	return completed, nil
}

func (s *Store) UpdateSetup(ctx context.Context, id string, change tasting.SetupChange) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.lockOpen(ctx, tx, id); err != nil {
			return err
		}

		var (
			sets []string
			args []any
		)
		if change.Title != nil {
			sets = append(sets, "title = ?")
			args = append(args, *change.Title)
		}
		if change.Host != nil {
			sets = append(sets, "host = ?")
			args = append(args, *change.Host)
		}
		if change.PINHash != nil {
			sets = append(sets, "organizer_pin_hash = ?")
			args = append(args, *change.PINHash)
		}
		if len(sets) > 0 {
			args = append(args, id)
			query := `UPDATE tasting SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
			if _, err := tx.ExecContext(ctx, s.q(query), args...); err != nil {
				return fmt.Errorf("update tasting: %w", err)
			}
		}

		if change.Drams != nil {
			if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM dram WHERE tasting_id = ?`), id); err != nil {
				return fmt.Errorf("delete drams: %w", err)
			}
			if err := s.insertDrams(ctx, tx, id, *change.Drams); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) setFlag(ctx context.Context, id, column string, value bool) error {
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE tasting SET `+column+` = ?, updated_at = ? WHERE id = ?
	`), boolToInt(value), toMillis(s.now()), id)
	if err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}
	if n == 0 {
		return tasting.ErrNotFound
	}
	return nil
}

func (s *Store) SetReleased(ctx context.Context, id string, released bool) error {
	return s.setFlag(ctx, id, "released", released)
}

func (s *Store) MarkCompleted(ctx context.Context, id string) error {
	return s.setFlag(ctx, id, "completed", true)
}

func (s *Store) MergeRatings(ctx context.Context, id, participant string, ratings models.ParticipantRatings) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.lockOpen(ctx, tx, id); err != nil {
			return err
		}

		now := toMillis(s.now())
		for order, r := range ratings {
			aromas := r.Aromas
			if aromas == nil {
				aromas = []string{}
			}
			encoded, err := json.Marshal(aromas)
			if err != nil {
				return fmt.Errorf("encode aromas: %w", err)
			}
			_, err = tx.ExecContext(ctx, s.q(`
				INSERT INTO rating (tasting_id, participant, dram_order, points, notes, aromas, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT (tasting_id, participant, dram_order)
				DO UPDATE SET points = excluded.points, notes = excluded.notes,
					aromas = excluded.aromas, updated_at = excluded.updated_at
			`), id, participant, order, r.Points, r.Notes, string(encoded), now)
			if err != nil {
				return fmt.Errorf("upsert rating: %w", err)
			}
		}
		return nil
	})
}

func scanRating(rows *sql.Rows, dest ...any) (models.Rating, int, error) {
	var (
		r      models.Rating
		order  int
		aromas string
	)
	args := append(dest, &order, &r.Points, &r.Notes, &aromas)
	if err := rows.Scan(args...); err != nil {
		return models.Rating{}, 0, fmt.Errorf("scan rating: %w", err)
	}
	if err := json.Unmarshal([]byte(aromas), &r.Aromas); err != nil {
		return models.Rating{}, 0, fmt.Errorf("decode aromas: %w", err)
	}
	return r, order, nil
}

func (s *Store) Ratings(ctx context.Context, id string) (models.RatingStore, error) {
	if _, err := s.completed(ctx, s.db, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT participant, dram_order, points, notes, aromas
		FROM rating
		WHERE tasting_id = ?
	`), id)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	store := make(models.RatingStore)
	for rows.Next() {
		var participant string
		r, order, err := scanRating(rows, &participant)
		if err != nil {
			return nil, err
		}
		if store[participant] == nil {
			store[participant] = make(models.ParticipantRatings)
		}
		store[participant][order] = r
	}
	return store, rows.Err()
}

func (s *Store) ParticipantRatings(ctx context.Context, id, participant string) (models.ParticipantRatings, error) {
	if _, err := s.completed(ctx, s.db, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT dram_order, points, notes, aromas
		FROM rating
		WHERE tasting_id = ? AND participant = ?
	`), id, participant)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	out := make(models.ParticipantRatings)
	for rows.Next() {
		r, order, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		out[order] = r
	}
	return out, rows.Err()
}

func (s *Store) List(ctx context.Context, completed bool) ([]models.Tasting, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT `+tastingColumns+`
		FROM tasting
		WHERE completed = ?
		ORDER BY created_at DESC, id
	`), boolToInt(completed))
	if err != nil {
		return nil, fmt.Errorf("query tastings: %w", err)
	}

	tastings := []models.Tasting{}
	for rows.Next() {
		t, err := scanTasting(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan tasting: %w", err)
		}
		tastings = append(tastings, t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// Drams are loaded after the listing cursor is closed; SQLite runs on a
	// single connection.
	for i := range tastings {
		if tastings[i].Drams, err = s.drams(ctx, tastings[i].ID); err != nil {
			return nil, err
		}
	}
	return tastings, nil
}
