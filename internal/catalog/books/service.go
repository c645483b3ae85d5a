package books

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	mysql "github.com/go-sql-driver/mysql"
	"github.com/oklog/ulid/v2"

	"LIBRA-backend/internal/catalog/borrows"
)

// ===== Error model =====

type Code string

const (
	CodeInvalidArgument     Code = "INVALID_ARGUMENT"
	CodeNotFound            Code = "NOT_FOUND"
	CodeConflict            Code = "CONFLICT"
	CodeInvalidAvailability Code = "INVALID_AVAILABILITY"
	CodeInternal            Code = "INTERNAL"
)

type APIError struct {
	Code    Code
	Message string
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func ErrInvalidAvailability(msg string) *APIError {
	return &APIError{Code: CodeInvalidAvailability, Message: msg}
}

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument, CodeInvalidAvailability:
			return 400
		case CodeNotFound:
			return 404
		case CodeConflict:
			return 409
		default:
			return 500
		}
	}
	return 500
}

// ===== インターフェース群 =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

type IDGen interface {
	New() (string, error)
}

type ulidGen struct{}

func (ulidGen) New() (string, error) {
	t := time.Now().UTC()
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

type BookStore interface {
	InsertBook(ctx context.Context, b *Book) error
	GetBookByULID(ctx context.Context, bookULID string) (*Book, error)
	ListBooks(ctx context.Context, q ListQuery) ([]Book, error)
	UpdateBook(ctx context.Context, b *Book) error
	DeleteBook(ctx context.Context, b *Book) error
}

// BorrowCascade は書誌削除時に貸出記録を道連れ削除するための口。
// 貸出記録テーブルの操作は borrows パッケージのストアに任せる。
type BorrowCascade interface {
	DeleteByBook(ctx context.Context, bookID int64) (int64, error)
}

// ===== Service本体 =====

type Service struct {
	store   BookStore
	cascade BorrowCascade
	clock   Clock
	id      IDGen
}

func NewService(conn *sql.DB) *Service {
	return &Service{
		store:   NewStore(conn),
		cascade: borrows.NewStore(conn),
		clock:   realClock{},
		id:      ulidGen{},
	}
}

// 書誌登録
func (s *Service) CreateBook(ctx context.Context, req CreateBookRequest) (*BookResponse, error) {
	if aerr := validateCreate(&req); aerr != nil {
		return nil, aerr
	}

	copies := *req.Copies
	availability := true
	if req.Availability != nil {
		availability = *req.Availability
	}
	// 在庫0冊は貸出可にできない
	if copies == 0 {
		availability = false
	}

	idStr, err := s.id.New()
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()

	b := &Book{
		BookULID:     idStr,
		Title:        req.Title,
		Author:       req.Author,
		Genre:        req.Genre,
		ISBN:         req.ISBN,
		Description:  *req.Description,
		Copies:       copies,
		Availability: availability,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.InsertBook(ctx, b); err != nil {
		return nil, mapDuplicateKey(err)
	}

	resp := buildBookResponse(b)
	return &resp, nil
}

// 書誌一覧（ジャンルフィルタ・ソート・件数制限）
func (s *Service) ListBooks(ctx context.Context, q ListQuery) ([]BookResponse, error) {
	items, err := s.store.ListBooks(ctx, q)
	if err != nil {
		return nil, err
	}

	// 0件はエラーではなく空配列で返す
	result := make([]BookResponse, 0, len(items))
	for i := range items {
		result = append(result, buildBookResponse(&items[i]))
	}
	return result, nil
}

// 書誌単一取得
func (s *Service) GetBook(ctx context.Context, bookULID string) (*BookResponse, error) {
	b, err := s.store.GetBookByULID(ctx, bookULID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound("book not found")
		}
		return nil, err
	}
	resp := buildBookResponse(b)
	return &resp, nil
}

// 書誌更新（部分更新）
func (s *Service) UpdateBook(ctx context.Context, bookULID string, req UpdateBookRequest) (*BookResponse, error) {
	if aerr := validateUpdate(&req); aerr != nil {
		return nil, aerr
	}

	cur, err := s.store.GetBookByULID(ctx, bookULID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound("book not found")
		}
		return nil, err
	}

	merged, aerr := mergeBook(*cur, req)
	if aerr != nil {
		return nil, aerr
	}
	merged.UpdatedAt = s.clock.Now()

	if err := s.store.UpdateBook(ctx, &merged); err != nil {
		return nil, mapDuplicateKey(err)
	}

	resp := buildBookResponse(&merged)
	return &resp, nil
}

// 書誌削除。貸出記録のカスケード削除込み（ベストエフォート）
func (s *Service) DeleteBook(ctx context.Context, bookULID string) error {
	cur, err := s.store.GetBookByULID(ctx, bookULID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound("book not found")
		}
		return err
	}

	if err := s.store.DeleteBook(ctx, cur); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound("book not found")
		}
		return err
	}

	// カスケード側の失敗は警告ログのみで、書誌の削除は取り消さない
	n, err := s.cascade.DeleteByBook(ctx, cur.BookID)
	if err != nil {
		log.Printf("[WARN] cascade delete of borrows failed for book %s: %v", bookULID, err)
		return nil
	}
	if n > 0 {
		log.Printf("[INFO] cascaded deletion of %d borrow record(s) for book %s", n, bookULID)
	}
	return nil
}

// mergeBook は現在の行に部分更新を重ねた結果を算出し、
// copies/availability の整合性を強制する。
//   - 結果 copies==0 で availability:true を明示指定 → エラー
//   - 結果 copies==0 → availability は false に矯正
//   - copies>0 での明示的な availability:false（取り下げ）は許容
func mergeBook(cur Book, req UpdateBookRequest) (Book, *APIError) {
	out := cur

	if req.Title != nil {
		out.Title = *req.Title
	}
	if req.Author != nil {
		out.Author = *req.Author
	}
	if req.Genre != nil {
		out.Genre = *req.Genre
	}
	if req.ISBN != nil {
		out.ISBN = *req.ISBN
	}
	if req.Description != nil {
		out.Description = *req.Description
	}
	if req.Copies != nil {
		out.Copies = *req.Copies
	}
	if req.Availability != nil {
		out.Availability = *req.Availability
	}

	if out.Copies == 0 {
		if req.Availability != nil && *req.Availability {
			return Book{}, ErrInvalidAvailability("cannot set availability true when copies is 0")
		}
		out.Availability = false
	}

	return out, nil
}

func mapDuplicateKey(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		return ErrConflict("title or isbn already exists")
	}
	return err
}
