package books

import "time"

// ===== Requests =====

type CreateBookRequest struct {
	Title        string  `json:"title"`
	Author       string  `json:"author"`
	Genre        string  `json:"genre"`
	ISBN         string  `json:"isbn"`
	Description  *string `json:"description,omitempty"`
	Copies       *int    `json:"copies"`
	Availability *bool   `json:"availability,omitempty"`
}

type UpdateBookRequest struct {
	Title        *string `json:"title,omitempty"`
	Author       *string `json:"author,omitempty"`
	Genre        *string `json:"genre,omitempty"`
	ISBN         *string `json:"isbn,omitempty"`
	Description  *string `json:"description,omitempty"`
	Copies       *int    `json:"copies,omitempty"`
	Availability *bool   `json:"availability,omitempty"`
}

// ===== Responses =====

// フィールド名は既存クライアントとの互換のため camelCase 固定
type BookResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	Genre        string    `json:"genre"`
	ISBN         string    `json:"isbn"`
	Description  string    `json:"description"`
	Copies       int       `json:"copies"`
	Availability bool      `json:"availability"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func buildBookResponse(b *Book) BookResponse {
	return BookResponse{
		ID:           b.BookULID,
		Title:        b.Title,
		Author:       b.Author,
		Genre:        b.Genre,
		ISBN:         b.ISBN,
		Description:  b.Description,
		Copies:       b.Copies,
		Availability: b.Availability,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}
