package books

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type Store struct {
	db *sql.DB
}

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

const bookColumns = `book_id, book_ulid, title, author, genre, isbn, description, copies, availability, created_at, updated_at`

func (s *Store) InsertBook(ctx context.Context, b *Book) error {
	const q = `
	INSERT INTO books
	(book_ulid, title, author, genre, isbn, description, copies, availability, created_at, updated_at)
	VALUES
	(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := s.db.ExecContext(ctx, q,
		b.BookULID, b.Title, b.Author, b.Genre, b.ISBN,
		b.Description, b.Copies, b.Availability, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	b.BookID = id
	return nil
}

func (s *Store) GetBookByULID(ctx context.Context, bookULID string) (*Book, error) {
	q := fmt.Sprintf(`SELECT %s FROM books WHERE book_ulid = ?`, bookColumns)
	var b Book
	err := s.db.QueryRowContext(ctx, q, bookULID).Scan(
		&b.BookID, &b.BookULID, &b.Title, &b.Author, &b.Genre, &b.ISBN,
		&b.Description, &b.Copies, &b.Availability, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) ListBooks(ctx context.Context, f ListQuery) ([]Book, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT ` + bookColumns + ` FROM books WHERE 1=1`)

	args := []any{}
	if f.Genre != "" {
		sb.WriteString(` AND genre = ?`)
		args = append(args, f.Genre)
	}

	// SortBy / Order は validate 側でホワイトリスト済み
	sb.WriteString(fmt.Sprintf(` ORDER BY %s %s`, f.SortBy, f.Order))

	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	sb.WriteString(` LIMIT ?`)
	args = append(args, f.Limit)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(
			&b.BookID, &b.BookULID, &b.Title, &b.Author, &b.Genre, &b.ISBN,
			&b.Description, &b.Copies, &b.Availability, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) UpdateBook(ctx context.Context, b *Book) error {
	const q = `
	UPDATE books
	SET title = ?, author = ?, genre = ?, isbn = ?, description = ?,
	    copies = ?, availability = ?, updated_at = ?
	WHERE book_id = ?`

	_, err := s.db.ExecContext(ctx, q,
		b.Title, b.Author, b.Genre, b.ISBN, b.Description,
		b.Copies, b.Availability, b.UpdatedAt, b.BookID,
	)
	return err
}

// DeleteBook は書誌行のみを削除する。
// 紐づく貸出記録の削除は borrows 側のストアが担当する。
func (s *Store) DeleteBook(ctx context.Context, b *Book) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE book_id = ?`, b.BookID)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}
