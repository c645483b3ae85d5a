package books

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// ===== ルールテーブル =====

const (
	titleMinLen       = 1
	titleMaxLen       = 20
	authorMinLen      = 1
	authorMaxLen      = 20
	descriptionMinLen = 8
	descriptionMaxLen = 100

	defaultDescription = "No description provided"
	defaultLimit       = 10
)

var allowedGenres = map[string]struct{}{
	"FICTION":     {},
	"NON_FICTION": {},
	"SCIENCE":     {},
	"HISTORY":     {},
	"BIOGRAPHY":   {},
	"FANTASY":     {},
}

const genreListMsg = "Genre must be one of the following: FICTION, NON_FICTION, SCIENCE, HISTORY, BIOGRAPHY, FANTASY"

// JSONフィールド名 → カラム名。ソート指定はここに無い名前を拒否する。
var sortableFields = map[string]string{
	"title":        "title",
	"author":       "author",
	"genre":        "genre",
	"isbn":         "isbn",
	"description":  "description",
	"copies":       "copies",
	"availability": "availability",
	"createdAt":    "created_at",
	"updatedAt":    "updated_at",
}

// normalizeGenre は大文字に正規化して enum チェックする
func normalizeGenre(v string) (string, *APIError) {
	g := strings.ToUpper(strings.TrimSpace(v))
	if _, ok := allowedGenres[g]; !ok {
		return "", ErrInvalid(genreListMsg)
	}
	return g, nil
}

// validateCreate は必須チェック・正規化・デフォルト適用を行う。
// 最初に失敗したフィールドのメッセージを返す。
// 文字数制限はバイト数ではなく文字（rune）数で数える。
func validateCreate(req *CreateBookRequest) *APIError {
	if utf8.RuneCountInString(req.Title) < titleMinLen {
		return ErrInvalid("Title is required and minimum 1 char")
	}
	if utf8.RuneCountInString(req.Title) > titleMaxLen {
		return ErrInvalid("Title must not exceed 20 characters")
	}
	if utf8.RuneCountInString(req.Author) < authorMinLen {
		return ErrInvalid("Author is required and minimum 1 char")
	}
	if utf8.RuneCountInString(req.Author) > authorMaxLen {
		return ErrInvalid("Author must not exceed 20 characters")
	}

	g, aerr := normalizeGenre(req.Genre)
	if aerr != nil {
		return aerr
	}
	req.Genre = g

	if req.ISBN == "" {
		return ErrInvalid("ISBN is required and minimum 1 char")
	}

	if req.Description == nil {
		d := defaultDescription
		req.Description = &d
	}
	if utf8.RuneCountInString(*req.Description) < descriptionMinLen {
		return ErrInvalid("Description must be at least 8 characters long")
	}
	if utf8.RuneCountInString(*req.Description) > descriptionMaxLen {
		return ErrInvalid("Description must not exceed 100 characters")
	}

	if req.Copies == nil || *req.Copies < 0 {
		return ErrInvalid("Copies must be a non-negative number")
	}

	return nil
}

// validateUpdate は指定フィールドのみ検証する（全フィールド任意、1つは必須）
func validateUpdate(req *UpdateBookRequest) *APIError {
	if req.Title == nil && req.Author == nil && req.Genre == nil && req.ISBN == nil &&
		req.Description == nil && req.Copies == nil && req.Availability == nil {
		return ErrInvalid("At least one field must be provided for update")
	}

	if req.Title != nil {
		if utf8.RuneCountInString(*req.Title) < titleMinLen {
			return ErrInvalid("Title is required and minimum 1 char")
		}
		if utf8.RuneCountInString(*req.Title) > titleMaxLen {
			return ErrInvalid("Title must not exceed 20 characters")
		}
	}
	if req.Author != nil {
		if utf8.RuneCountInString(*req.Author) < authorMinLen {
			return ErrInvalid("Author is required and minimum 1 char")
		}
		if utf8.RuneCountInString(*req.Author) > authorMaxLen {
			return ErrInvalid("Author must not exceed 20 characters")
		}
	}
	if req.Genre != nil {
		g, aerr := normalizeGenre(*req.Genre)
		if aerr != nil {
			return aerr
		}
		req.Genre = &g
	}
	if req.ISBN != nil && *req.ISBN == "" {
		return ErrInvalid("ISBN is required and minimum 1 char")
	}
	if req.Description != nil {
		if utf8.RuneCountInString(*req.Description) < descriptionMinLen {
			return ErrInvalid("Description must be at least 8 characters long")
		}
		if utf8.RuneCountInString(*req.Description) > descriptionMaxLen {
			return ErrInvalid("Description must not exceed 100 characters")
		}
	}
	if req.Copies != nil && *req.Copies < 0 {
		return ErrInvalid("Copies must be a non-negative number")
	}

	return nil
}

// parseListQuery はクエリ文字列を ListQuery に変換する。
// filter はジャンル名（大小文字どちらでも可）、limit は数値以外ならデフォルトに倒す。
func parseListQuery(filter, sortBy, sortDir, limitStr string) (ListQuery, *APIError) {
	q := ListQuery{
		SortBy: sortableFields["createdAt"],
		Order:  "ASC",
		Limit:  defaultLimit,
	}

	if filter != "" {
		g, aerr := normalizeGenre(filter)
		if aerr != nil {
			return ListQuery{}, aerr
		}
		q.Genre = g
	}

	if sortBy != "" {
		col, ok := sortableFields[sortBy]
		if !ok {
			return ListQuery{}, ErrInvalid("sortBy must be one of the book field names")
		}
		q.SortBy = col
	}

	switch strings.ToLower(sortDir) {
	case "", "asc":
		// デフォルト昇順
	case "desc":
		q.Order = "DESC"
	default:
		return ListQuery{}, ErrInvalid("sort must be asc or desc")
	}

	if limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil && v > 0 {
			q.Limit = v
		}
	}

	return q, nil
}
