package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"saku/internal/logger"
	"saku/internal/money"
	"saku/internal/reports"
	"saku/internal/services"
)

// TimelineHandler serves monthly timelines, balances, and timeline exports.
type TimelineHandler struct {
	timelineService services.TimelineServicer
	pocketService   services.PocketServicer
}

// NewTimelineHandler creates a new TimelineHandler.
func NewTimelineHandler(timelineService services.TimelineServicer, pocketService services.PocketServicer) *TimelineHandler {
	return &TimelineHandler{timelineService: timelineService, pocketService: pocketService}
}

// GetTimeline returns one pocket's entry timeline for a month.
// @Summary     Get a pocket's monthly timeline
// @Description Entries newest-first with running balances, opened by the prior month's carry-over
// @Tags        timeline
// @Produce     json
// @Security    BearerAuth
// @Param       id    path  string true  "Pocket ID"
// @Param       month query string false "Month (YYYY-MM, default current)"
// @Success     200 {object} ledger.Timeline "Monthly timeline"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Pocket not found"
// @Failure     503 {object} ErrorResponse "Timeline temporarily unavailable"
// @Router      /pockets/{id}/timeline [get]
func (h *TimelineHandler) GetTimeline(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	month, err := parseMonthParam(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	timeline, err := h.timelineService.GetTimeline(c.Request.Context(), userID, c.Param("id"), month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"timeline": timeline})
}

// GetBalances returns projected and realtime balances for every pocket.
// @Summary     Get pocket balances
// @Description Projected (full month) and realtime (up to today) balances per pocket
// @Tags        timeline
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Month (YYYY-MM, default current)"
// @Success     200 {array} services.BalanceView "Balances"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Balances temporarily unavailable"
// @Router      /balances [get]
func (h *TimelineHandler) GetBalances(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	month, err := parseMonthParam(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	balances, err := h.timelineService.GetBalances(c.Request.Context(), userID, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balances": balances})
}

// ExportTimeline streams a pocket's monthly timeline as an xlsx workbook.
// @Summary     Export a pocket's monthly timeline
// @Description Download the timeline as a spreadsheet, oldest entry first
// @Tags        timeline
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Param       id    path  string true  "Pocket ID"
// @Param       month query string false "Month (YYYY-MM, default current)"
// @Success     200 {file} file "Timeline workbook"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Pocket not found"
// @Failure     503 {object} ErrorResponse "Timeline temporarily unavailable"
// @Router      /pockets/{id}/timeline/export [get]
func (h *TimelineHandler) ExportTimeline(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	month, err := parseMonthParam(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	pocket, err := h.pocketService.GetPocketByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	timeline, err := h.timelineService.GetTimeline(c.Request.Context(), userID, pocket.ID, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	fileName := fmt.Sprintf("timeline_%s_%s.xlsx", pocket.Name, month)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))

	if err := reports.WriteTimelineXLSX(c.Writer, pocket.Name, money.Currency(pocket.Currency), *timeline); err != nil {
		// Headers are already out; log instead of writing a JSON error
		// into a half-sent spreadsheet.
		logger.Get().Errorw("failed to write timeline export", "pocket_id", pocket.ID, "error", err)
	}
}
