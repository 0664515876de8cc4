package handler

import (
	"net/http"
	"strconv"

	"chatbot/internal/repository"
	"chatbot/internal/service"

	"github.com/gin-gonic/gin"
)

// DashboardHandler serves conversation monitoring endpoints
type DashboardHandler struct {
	repo    *repository.PostgresRepository
	matcher *service.DomainMatcher
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(repo *repository.PostgresRepository, matcher *service.DomainMatcher) *DashboardHandler {
	return &DashboardHandler{repo: repo, matcher: matcher}
}

// Conversations handles GET /api/v1/conversations
func (h *DashboardHandler) Conversations(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	perPage, err := strconv.Atoi(c.DefaultQuery("per_page", "50"))
	if err != nil || perPage < 1 || perPage > 200 {
		perPage = 50
	}

	conversations, total, err := h.repo.ListConversations(c.Request.Context(), page, perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get conversations: " + err.Error()})
		return
	}

	pages := total / perPage
	if total%perPage > 0 {
		pages++
	}

	c.JSON(http.StatusOK, gin.H{
		"conversations": conversations,
		"total":         total,
		"pages":         pages,
		"current_page":  page,
	})
}

// Stats handles GET /api/v1/stats
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.repo.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get stats: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Report handles GET /api/v1/reports/:user_id with a required channel query
// parameter
func (h *DashboardHandler) Report(c *gin.Context) {
	userID := c.Param("user_id")
	channel := c.Query("channel")
	if channel == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing channel parameter"})
		return
	}

	report, err := h.repo.GetChatReport(c.Request.Context(), userID, channel)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get report: " + err.Error()})
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// Similar handles GET /api/v1/similar?q=... — past exchanges resembling a
// query, by vector distance over stored message vectors
func (h *DashboardHandler) Similar(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing q parameter"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 || limit > 50 {
		limit = 10
	}

	exchanges, err := h.repo.SimilarExchanges(c.Request.Context(), h.matcher.Vectorize(query), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": exchanges})
}
