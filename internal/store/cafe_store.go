package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vbonduro/cafeapi/internal/domain"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const cafeColumns = `id, name, map_url, img_url, location, seats,
	has_toilet, has_wifi, has_sockets, can_take_calls, coffee_price`

type CafeStore struct {
	db *sql.DB
}

func NewCafeStore(db *sql.DB) *CafeStore {
	return &CafeStore{db: db}
}

func (s *CafeStore) Create(ctx context.Context, c domain.NewCafe) (*domain.Cafe, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO cafe (name, map_url, img_url, location, seats,
			has_toilet, has_wifi, has_sockets, can_take_calls, coffee_price)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.Name, c.MapURL, c.ImgURL, c.Location, c.Seats,
		c.HasToilet, c.HasWifi, c.HasSockets, c.CanTakeCalls, nullString(c.CoffeePrice))
	if err != nil {
		return nil, fmt.Errorf("failed to create cafe: %w", constraintError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID returns the cafe with the given id, or nil if there is none.
func (s *CafeStore) GetByID(ctx context.Context, id int64) (*domain.Cafe, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+cafeColumns+` FROM cafe WHERE id = ?`, id)
	cafe, err := scanCafe(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cafe: %w", err)
	}
	return cafe, nil
}

func (s *CafeStore) List(ctx context.Context) ([]*domain.Cafe, error) {
	return s.query(ctx, `SELECT `+cafeColumns+` FROM cafe ORDER BY id ASC`)
}

// ListByLocation returns cafes whose location is byte-for-byte equal to
// location.
func (s *CafeStore) ListByLocation(ctx context.Context, location string) ([]*domain.Cafe, error) {
	return s.query(ctx, `
		SELECT `+cafeColumns+` FROM cafe
		WHERE location = ? COLLATE BINARY
		ORDER BY id ASC
	`, location)
}

// Random returns one cafe picked uniformly at random, or nil if the table is
// empty.
func (s *CafeStore) Random(ctx context.Context) (*domain.Cafe, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+cafeColumns+` FROM cafe ORDER BY RANDOM() LIMIT 1`)
	cafe, err := scanCafe(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pick random cafe: %w", err)
	}
	return cafe, nil
}

func (s *CafeStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cafe`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cafes: %w", err)
	}
	return n, nil
}

// UpdatePrice overwrites coffee_price. A nil price stores NULL.
func (s *CafeStore) UpdatePrice(ctx context.Context, id int64, price *string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE cafe SET coffee_price = ? WHERE id = ?
	`, nullString(price), id)
	if err != nil {
		return fmt.Errorf("failed to update cafe price: %w", err)
	}
	return requireAffected(result)
}

func (s *CafeStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM cafe WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete cafe: %w", err)
	}
	return requireAffected(result)
}

func (s *CafeStore) query(ctx context.Context, query string, args ...any) ([]*domain.Cafe, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cafes: %w", err)
	}
	defer rows.Close()

	cafes := []*domain.Cafe{}
	for rows.Next() {
		cafe, err := scanCafe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cafe: %w", err)
		}
		cafes = append(cafes, cafe)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cafes: %w", err)
	}

	return cafes, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCafe(row rowScanner) (*domain.Cafe, error) {
	c := &domain.Cafe{}
	var price sql.NullString
	err := row.Scan(&c.ID, &c.Name, &c.MapURL, &c.ImgURL, &c.Location, &c.Seats,
		&c.HasToilet, &c.HasWifi, &c.HasSockets, &c.CanTakeCalls, &price)
	if err != nil {
		return nil, err
	}
	if price.Valid {
		c.CoffeePrice = &price.String
	}
	return c, nil
}

func requireAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// constraintError maps SQLite constraint violations onto domain errors and
// returns any other error unchanged.
func constraintError(err error) error {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}
	code := sqliteErr.Code()
	if code&0xff != sqlite3.SQLITE_CONSTRAINT {
		return err
	}
	if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || strings.Contains(sqliteErr.Error(), "UNIQUE") {
		return domain.ErrDuplicateName
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalid, sqliteErr.Error())
}
