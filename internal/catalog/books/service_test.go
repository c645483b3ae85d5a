package books

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	mysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storeMock struct {
	insertFn func(ctx context.Context, b *Book) error
	getFn    func(ctx context.Context, bookULID string) (*Book, error)
	listFn   func(ctx context.Context, q ListQuery) ([]Book, error)
	updateFn func(ctx context.Context, b *Book) error
	deleteFn func(ctx context.Context, b *Book) error
}

func (m *storeMock) InsertBook(ctx context.Context, b *Book) error { return m.insertFn(ctx, b) }
func (m *storeMock) GetBookByULID(ctx context.Context, bookULID string) (*Book, error) {
	return m.getFn(ctx, bookULID)
}
func (m *storeMock) ListBooks(ctx context.Context, q ListQuery) ([]Book, error) {
	return m.listFn(ctx, q)
}
func (m *storeMock) UpdateBook(ctx context.Context, b *Book) error { return m.updateFn(ctx, b) }
func (m *storeMock) DeleteBook(ctx context.Context, b *Book) error { return m.deleteFn(ctx, b) }

type cascadeMock struct {
	deleteByBookFn func(ctx context.Context, bookID int64) (int64, error)
}

func (m *cascadeMock) DeleteByBook(ctx context.Context, bookID int64) (int64, error) {
	if m.deleteByBookFn == nil {
		return 0, nil
	}
	return m.deleteByBookFn(ctx, bookID)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fixedID struct{ s string }

func (g fixedID) New() (string, error) { return g.s, nil }

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

const testULID = "01JWMD1Z3AKQJ5Y0V2NXW8B9CD"

func newTestService(m *storeMock) *Service {
	return newTestServiceWithCascade(m, &cascadeMock{})
}

func newTestServiceWithCascade(m *storeMock, c *cascadeMock) *Service {
	return &Service{store: m, cascade: c, clock: fixedClock{t: testNow}, id: fixedID{s: testULID}}
}

func storedBook() *Book {
	return &Book{
		BookID:       1,
		BookULID:     testULID,
		Title:        "Dune",
		Author:       "Herbert",
		Genre:        "SCIENCE",
		ISBN:         "111",
		Description:  defaultDescription,
		Copies:       2,
		Availability: true,
		CreatedAt:    testNow,
		UpdatedAt:    testNow,
	}
}

func TestCreateBookAppliesDefaults(t *testing.T) {
	var inserted *Book
	s := newTestService(&storeMock{
		insertFn: func(ctx context.Context, b *Book) error {
			inserted = b
			b.BookID = 7
			return nil
		},
	})

	res, err := s.CreateBook(context.Background(), validCreateReq())
	require.NoError(t, err)

	require.NotNil(t, inserted)
	assert.Equal(t, testULID, inserted.BookULID)
	assert.Equal(t, defaultDescription, inserted.Description)
	assert.True(t, inserted.Availability)
	assert.Equal(t, testNow, inserted.CreatedAt)

	assert.Equal(t, testULID, res.ID)
	assert.Equal(t, 2, res.Copies)
}

func TestCreateBookZeroCopiesForcedUnavailable(t *testing.T) {
	var inserted *Book
	s := newTestService(&storeMock{
		insertFn: func(ctx context.Context, b *Book) error { inserted = b; return nil },
	})

	req := validCreateReq()
	req.Copies = intPtr(0)
	req.Availability = boolPtr(true)

	res, err := s.CreateBook(context.Background(), req)
	require.NoError(t, err)

	assert.False(t, inserted.Availability)
	assert.False(t, res.Availability)
}

func TestCreateBookDuplicateKey(t *testing.T) {
	s := newTestService(&storeMock{
		insertFn: func(ctx context.Context, b *Book) error {
			return &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
		},
	})

	_, err := s.CreateBook(context.Background(), validCreateReq())
	require.Error(t, err)

	var api *APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, CodeConflict, api.Code)
}

func TestGetBookNotFound(t *testing.T) {
	s := newTestService(&storeMock{
		getFn: func(ctx context.Context, bookULID string) (*Book, error) {
			return nil, sql.ErrNoRows
		},
	})

	_, err := s.GetBook(context.Background(), "missing")
	var api *APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, CodeNotFound, api.Code)
}

func TestUpdateBookRejectsAvailableWithZeroCopies(t *testing.T) {
	updateCalled := false
	s := newTestService(&storeMock{
		getFn:    func(ctx context.Context, bookULID string) (*Book, error) { return storedBook(), nil },
		updateFn: func(ctx context.Context, b *Book) error { updateCalled = true; return nil },
	})

	_, err := s.UpdateBook(context.Background(), testULID, UpdateBookRequest{
		Copies:       intPtr(0),
		Availability: boolPtr(true),
	})

	var api *APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, CodeInvalidAvailability, api.Code)
	assert.Equal(t, "cannot set availability true when copies is 0", api.Message)
	assert.False(t, updateCalled, "stored state must remain untouched")
}

func TestUpdateBookForcesUnavailableWhenCopiesHitZero(t *testing.T) {
	var updated *Book
	s := newTestService(&storeMock{
		getFn:    func(ctx context.Context, bookULID string) (*Book, error) { return storedBook(), nil },
		updateFn: func(ctx context.Context, b *Book) error { updated = b; return nil },
	})

	res, err := s.UpdateBook(context.Background(), testULID, UpdateBookRequest{Copies: intPtr(0)})
	require.NoError(t, err)

	assert.Equal(t, 0, updated.Copies)
	assert.False(t, updated.Availability)
	assert.False(t, res.Availability)
}

func TestUpdateBookAllowsExplicitWithdrawal(t *testing.T) {
	// 在庫ありのまま貸出停止（取り下げ）は許容する
	var updated *Book
	s := newTestService(&storeMock{
		getFn:    func(ctx context.Context, bookULID string) (*Book, error) { return storedBook(), nil },
		updateFn: func(ctx context.Context, b *Book) error { updated = b; return nil },
	})

	res, err := s.UpdateBook(context.Background(), testULID, UpdateBookRequest{Availability: boolPtr(false)})
	require.NoError(t, err)

	assert.Equal(t, 2, updated.Copies)
	assert.False(t, updated.Availability)
	assert.False(t, res.Availability)
}

func TestUpdateBookNotFound(t *testing.T) {
	s := newTestService(&storeMock{
		getFn: func(ctx context.Context, bookULID string) (*Book, error) { return nil, sql.ErrNoRows },
	})

	_, err := s.UpdateBook(context.Background(), "missing", UpdateBookRequest{Copies: intPtr(1)})
	var api *APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, CodeNotFound, api.Code)
}

func TestDeleteBookNotFound(t *testing.T) {
	s := newTestService(&storeMock{
		getFn: func(ctx context.Context, bookULID string) (*Book, error) { return nil, sql.ErrNoRows },
	})

	err := s.DeleteBook(context.Background(), "missing")
	var api *APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, CodeNotFound, api.Code)
}

func TestDeleteBookCascadesBorrowRecords(t *testing.T) {
	var deleted *Book
	var cascadedBookID int64
	s := newTestServiceWithCascade(
		&storeMock{
			getFn:    func(ctx context.Context, bookULID string) (*Book, error) { return storedBook(), nil },
			deleteFn: func(ctx context.Context, b *Book) error { deleted = b; return nil },
		},
		&cascadeMock{
			deleteByBookFn: func(ctx context.Context, bookID int64) (int64, error) {
				cascadedBookID = bookID
				return 2, nil
			},
		},
	)

	require.NoError(t, s.DeleteBook(context.Background(), testULID))
	require.NotNil(t, deleted)
	assert.Equal(t, int64(1), deleted.BookID)
	assert.Equal(t, int64(1), cascadedBookID)
}

func TestDeleteBookCascadeFailureIsNonFatal(t *testing.T) {
	// 貸出記録側の削除が失敗しても書誌の削除は成功扱いのまま
	s := newTestServiceWithCascade(
		&storeMock{
			getFn:    func(ctx context.Context, bookULID string) (*Book, error) { return storedBook(), nil },
			deleteFn: func(ctx context.Context, b *Book) error { return nil },
		},
		&cascadeMock{
			deleteByBookFn: func(ctx context.Context, bookID int64) (int64, error) {
				return 0, errors.New("borrows unreachable")
			},
		},
	)

	require.NoError(t, s.DeleteBook(context.Background(), testULID))
}

func TestMergeBookKeepsUnsetFields(t *testing.T) {
	cur := *storedBook()
	merged, aerr := mergeBook(cur, UpdateBookRequest{Title: strPtr("Dune Messiah")})
	require.Nil(t, aerr)

	assert.Equal(t, "Dune Messiah", merged.Title)
	assert.Equal(t, cur.Author, merged.Author)
	assert.Equal(t, cur.Copies, merged.Copies)
	assert.True(t, merged.Availability)
}

func TestListBooksPassesQueryThrough(t *testing.T) {
	var got ListQuery
	s := newTestService(&storeMock{
		listFn: func(ctx context.Context, q ListQuery) ([]Book, error) {
			got = q
			return []Book{*storedBook()}, nil
		},
	})

	res, err := s.ListBooks(context.Background(), ListQuery{Genre: "FICTION", SortBy: "title", Order: "DESC", Limit: 5})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "FICTION", got.Genre)
	assert.Equal(t, 5, got.Limit)
}

func TestListBooksEmptyIsNotAnError(t *testing.T) {
	s := newTestService(&storeMock{
		listFn: func(ctx context.Context, q ListQuery) ([]Book, error) { return nil, nil },
	})

	res, err := s.ListBooks(context.Background(), ListQuery{SortBy: "created_at", Order: "ASC", Limit: 10})
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Len(t, res, 0)
}

func TestListBooksStoreError(t *testing.T) {
	s := newTestService(&storeMock{
		listFn: func(ctx context.Context, q ListQuery) ([]Book, error) { return nil, errors.New("boom") },
	})

	_, err := s.ListBooks(context.Background(), ListQuery{SortBy: "created_at", Order: "ASC", Limit: 10})
	require.Error(t, err)
}
