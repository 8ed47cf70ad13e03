package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	statementapp "github.com/garment-erp/statement/internal/application/statement"
	"github.com/garment-erp/statement/internal/domain/shared"
	"github.com/garment-erp/statement/internal/interfaces/http/dto"
)

const queryDateLayout = "2006-01-02"

// StatementHandler handles factory statement API endpoints
type StatementHandler struct {
	BaseHandler
	service   *statementapp.StatementService
	sequences *statementapp.SequenceTracker
}

// NewStatementHandler creates a new StatementHandler
func NewStatementHandler(service *statementapp.StatementService) *StatementHandler {
	return &StatementHandler{
		service:   service,
		sequences: statementapp.NewSequenceTracker(),
	}
}

// RegisterRoutes registers statement routes on the API group
func (h *StatementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/statement", h.GetStatement)
}

// StatementRequest defines the query parameters of a statement fetch
type StatementRequest struct {
	FactoryID   int64  `form:"factory_id" binding:"required,gt=0"`
	FactoryName string `form:"factory_name" binding:"required"`
	StartDate   string `form:"start_date" binding:"required"`
	EndDate     string `form:"end_date" binding:"required"`
	ProductID   int64  `form:"product_id"`
}

// GetStatement reconciles and returns the statement for one factory and
// date range. An empty period returns a valid all-zero statement, not an
// error. Responses carry the request sequence issued for the factory scope;
// a response marked stale was superseded by a newer request for the same
// scope while it was in flight.
func (h *StatementHandler) GetStatement(c *gin.Context) {
	var req StatementRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, err.Error())
		return
	}

	startDate, err := time.Parse(queryDateLayout, req.StartDate)
	if err != nil {
		h.BadRequest(c, "start_date must be formatted as YYYY-MM-DD")
		return
	}
	endDate, err := time.Parse(queryDateLayout, req.EndDate)
	if err != nil {
		h.BadRequest(c, "end_date must be formatted as YYYY-MM-DD")
		return
	}
	if endDate.Before(startDate) {
		h.BadRequest(c, "end_date must not be before start_date")
		return
	}

	scope := strconv.FormatInt(req.FactoryID, 10)
	seq := h.sequences.Begin(scope)

	st, err := h.service.GetStatement(c.Request.Context(), statementapp.StatementQuery{
		FactoryID:   req.FactoryID,
		FactoryName: req.FactoryName,
		StartDate:   startDate,
		EndDate:     endDate,
		ProductID:   req.ProductID,
	})
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			code := dto.NormalizeErrorCode(domainErr.Code)
			h.ErrorWithCode(c, code, domainErr.Message)
			return
		}
		h.ErrorWithCode(c, dto.ErrCodeUpstreamUnavailable, "statement sources are unavailable")
		return
	}

	c.Header("X-Statement-Sequence", strconv.FormatUint(seq, 10))
	if !h.sequences.IsCurrent(scope, seq) {
		// A newer request for the same factory was issued while this one was
		// in flight; the client should apply that one instead.
		c.Header("X-Statement-Stale", "true")
	}
	h.Success(c, st)
}
