package timesheet

import (
	"net/http"

	"go-attendance/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Me(c *gin.Context) {
	h.month(c, c.GetString("employee_id"))
}

func (h *Handler) ByEmployee(c *gin.Context) {
	h.month(c, c.Param("employee_id"))
}

func (h *Handler) month(c *gin.Context, employeeID string) {
	var q MonthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.MonthFor(c.Request.Context(), employeeID, q.Month)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}
