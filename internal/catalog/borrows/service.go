package borrows

import (
	"context"
	"crypto/rand"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"
)

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

type BorrowStore interface {
	ExecCreateBorrow(ctx context.Context, m *Borrow) error
	Summarize(ctx context.Context) ([]SummaryRow, error)
}

// ===== Service本体 =====

type Service struct {
	store BorrowStore
	clock Clock
	id    IDGen
}

func NewService(conn *sql.DB) *Service {
	return &Service{
		store: NewStore(conn),
		clock: realClock{},
		id:    ulidGen{},
	}
}

// 貸出登録。在庫の減算と貸出記録の作成はストア側の1トランザクションで行う
func (s *Service) CreateBorrow(ctx context.Context, req CreateBorrowRequest) (*BorrowResponse, error) {
	if req.Book == "" {
		return nil, NewInvalidArgumentError("Book id is required")
	}
	if req.Quantity < 1 {
		return nil, NewInvalidArgumentError("Quantity must be at least 1")
	}

	due, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, NewInvalidArgumentError("Due date must be a valid date")
	}
	if !due.After(s.clock.Now()) {
		return nil, NewInvalidArgumentError("Due date must be in the future")
	}

	idStr, err := s.id.New()
	if err != nil {
		return nil, err
	}

	m := &Borrow{
		BorrowULID: idStr,
		BookULID:   req.Book,
		Quantity:   req.Quantity,
		DueDate:    due,
		CreatedAt:  s.clock.Now(),
	}

	if err := s.store.ExecCreateBorrow(ctx, m); err != nil {
		return nil, err
	}

	return &BorrowResponse{
		ID:        m.BorrowULID,
		Book:      m.BookULID,
		Quantity:  m.Quantity,
		DueDate:   m.DueDate,
		CreatedAt: m.CreatedAt,
	}, nil
}

// 書誌ごとの貸出集計。0件は空スライスで返し、404への変換はハンドラ側で行う
func (s *Service) Summary(ctx context.Context) ([]SummaryResponse, error) {
	rows, err := s.store.Summarize(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]SummaryResponse, 0, len(rows))
	for _, r := range rows {
		result = append(result, SummaryResponse{
			Book:          SummaryBook{Title: r.Title, ISBN: r.ISBN},
			TotalQuantity: r.TotalQuantity,
		})
	}
	return result, nil
}

func parseDueDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}
