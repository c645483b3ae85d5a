package books

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

// RegisterRoutes は /books 配下を登録する。書き込み系のみ authMW を通す。
func RegisterRoutes(r gin.IRoutes, svc *Service, authMW gin.HandlerFunc) {
	h := &Handler{svc: svc}

	r.POST("/books", authMW, h.CreateBook)
	r.GET("/books", h.ListBooks)
	r.GET("/books/export", h.ExportBooks)
	r.GET("/books/:book_id", h.GetBook)
	r.PUT("/books/:book_id", authMW, h.UpdateBook)
	r.DELETE("/books/:book_id", authMW, h.DeleteBook)
}

// ---------- handlers ----------

// POST /books
func (h *Handler) CreateBook(c *gin.Context) {
	var req CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, failBody("invalid json"))
		return
	}

	res, err := h.svc.CreateBook(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), failFrom(err))
		return
	}

	c.Header("Location", "/books/"+res.ID)
	c.JSON(http.StatusCreated, okBody("Book created successfully", res))
}

// GET /books?filter=&sortBy=&sort=&limit=
func (h *Handler) ListBooks(c *gin.Context) {
	q, aerr := parseListQuery(
		c.Query("filter"),
		c.Query("sortBy"),
		c.Query("sort"),
		c.Query("limit"),
	)
	if aerr != nil {
		c.JSON(toHTTPStatus(aerr), failFrom(aerr))
		return
	}

	res, err := h.svc.ListBooks(c.Request.Context(), q)
	if err != nil {
		c.JSON(toHTTPStatus(err), failFrom(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Books retrieved successfully",
		"total":   len(res),
		"data":    res,
	})
}

// GET /books/:book_id
func (h *Handler) GetBook(c *gin.Context) {
	res, err := h.svc.GetBook(c.Request.Context(), c.Param("book_id"))
	if err != nil {
		c.JSON(toHTTPStatus(err), failFrom(err))
		return
	}
	c.JSON(http.StatusOK, okBody("Book retrieved successfully", res))
}

// PUT /books/:book_id （部分更新）
func (h *Handler) UpdateBook(c *gin.Context) {
	var req UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, failBody("invalid json"))
		return
	}

	res, err := h.svc.UpdateBook(c.Request.Context(), c.Param("book_id"), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), failFrom(err))
		return
	}
	c.JSON(http.StatusOK, okBody("Book updated successfully", res))
}

// DELETE /books/:book_id
func (h *Handler) DeleteBook(c *gin.Context) {
	if err := h.svc.DeleteBook(c.Request.Context(), c.Param("book_id")); err != nil {
		c.JSON(toHTTPStatus(err), failFrom(err))
		return
	}
	c.JSON(http.StatusOK, okBody("Book deleted successfully", nil))
}

// GET /books/export
func (h *Handler) ExportBooks(c *gin.Context) {
	data, err := h.svc.ExportCSV(c.Request.Context())
	if err != nil {
		c.JSON(toHTTPStatus(err), failFrom(err))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="books.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=Shift_JIS", data)
}

// ---------- helpers ----------

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func okBody(message string, data any) envelope {
	return envelope{Success: true, Message: message, Data: data}
}

func failBody(message string) envelope {
	return envelope{Success: false, Message: message}
}

func failFrom(err error) envelope {
	var api *APIError
	if errors.As(err, &api) {
		return failBody(api.Message)
	}
	return failBody(err.Error())
}
