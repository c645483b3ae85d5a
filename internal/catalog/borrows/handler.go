package borrows

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service, authMW gin.HandlerFunc) {
	h := &Handler{svc: svc}

	// POST /borrow （貸出登録）
	r.POST("/borrow", authMW, h.CreateBorrow)
	// GET /borrow （書誌ごとの集計）
	r.GET("/borrow", h.GetSummary)
}

// ---------- handlers ----------

func (h *Handler) CreateBorrow(c *gin.Context) {
	var req CreateBorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, failBody("invalid json"))
		return
	}

	res, err := h.svc.CreateBorrow(c.Request.Context(), req)
	if err != nil {
		c.JSON(ToHTTPStatus(err), failFrom(err))
		return
	}

	c.Header("Location", "/borrow/"+res.ID)
	c.JSON(http.StatusCreated, okBody("Book borrowed successfully", res))
}

func (h *Handler) GetSummary(c *gin.Context) {
	res, err := h.svc.Summary(c.Request.Context())
	if err != nil {
		c.JSON(ToHTTPStatus(err), failFrom(err))
		return
	}

	if len(res) == 0 {
		c.JSON(http.StatusNotFound, failBody("No borrow records found, summary is empty"))
		return
	}

	c.JSON(http.StatusOK, okBody("Borrow summary retrieved successfully", res))
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
	var de *DomainError
	if errors.As(err, &de) {
		return failBody(de.Message)
	}
	return failBody(err.Error())
}
