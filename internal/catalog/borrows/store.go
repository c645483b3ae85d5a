package borrows

import (
	"context"
	"database/sql"
	"errors"

	"LIBRA-backend/internal/platform/db"
)

type Store struct {
	db *sql.DB
}

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

// checkBorrowable は貸出可否の状態遷移ルール本体。
// 非公開フラグが立っていれば在庫数に関わらず貸出不可。
func checkBorrowable(copies int, availability bool, quantity int) error {
	if !availability {
		return NewBookNotAvailableError()
	}
	if copies < quantity {
		return NewInsufficientCopiesError()
	}
	return nil
}

// applyBorrow は減算後の在庫数と貸出可否を返す。0冊になったら貸出不可。
func applyBorrow(copies, quantity int) (remaining int, available bool) {
	remaining = copies - quantity
	return remaining, remaining > 0
}

// ExecCreateBorrow は貸出処理の全手順を1トランザクションで行う。
// 書誌行を FOR UPDATE でロックするため、同一書誌への同時貸出で
// 在庫の減算が失われることはない。
func (s *Store) ExecCreateBorrow(ctx context.Context, m *Borrow) error {
	return db.RunInTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx db.DBTX) error {
		// 1. 書誌行をロックして取得
		const lockQ = `SELECT book_id, copies, availability FROM books WHERE book_ulid = ? FOR UPDATE`
		var (
			bookID       int64
			copies       int
			availability bool
		)
		if err := tx.QueryRowContext(ctx, lockQ, m.BookULID).Scan(&bookID, &copies, &availability); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return NewBookNotFoundError()
			}
			return err
		}

		// 2. 貸出可否チェック
		if err := checkBorrowable(copies, availability, m.Quantity); err != nil {
			return err
		}

		// 3. 在庫減算
		remaining, available := applyBorrow(copies, m.Quantity)
		const updQ = `UPDATE books SET copies = ?, availability = ?, updated_at = ? WHERE book_id = ?`
		if _, err := tx.ExecContext(ctx, updQ, remaining, available, m.CreatedAt, bookID); err != nil {
			return err
		}

		// 4. 貸出記録の挿入
		const insQ = `
		INSERT INTO borrows (borrow_ulid, book_id, quantity, due_date, created_at)
		VALUES (?, ?, ?, ?, ?)`
		res, err := tx.ExecContext(ctx, insQ, m.BorrowULID, bookID, m.Quantity, m.DueDate, m.CreatedAt)
		if err != nil {
			return err
		}
		id, _ := res.LastInsertId()
		m.BorrowID = id
		m.BookID = bookID
		return nil
	})
}

// DeleteByBook は指定書誌に紐づく貸出記録を全件削除する。
// 書誌削除時のカスケード用で、削除した件数を返す。
func (s *Store) DeleteByBook(ctx context.Context, bookID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM borrows WHERE book_id = ?`, bookID)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Summarize は書誌ごとの貸出数合計を返す
func (s *Store) Summarize(ctx context.Context) ([]SummaryRow, error) {
	const q = `
	SELECT b.title, b.isbn, COALESCE(SUM(bo.quantity), 0) AS total_quantity
	FROM borrows bo
	JOIN books b ON b.book_id = bo.book_id
	GROUP BY bo.book_id, b.title, b.isbn
	ORDER BY b.title ASC`

	var out []SummaryRow
	err := db.ReadOnly(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		rows, err := tx.QueryContext(ctx, q)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var r SummaryRow
			if err := rows.Scan(&r.Title, &r.ISBN, &r.TotalQuantity); err != nil {
				return err
			}
			out = append(out, r)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
