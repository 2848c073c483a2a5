package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"go-cosmetics/internal/models"
	"go-cosmetics/internal/services"
)

type StatsHandler struct {
	statsService *services.StatsService
}

func NewStatsHandler(statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// GET /api/statistics/revenue?period=day|month|year&from=&to=
func (h *StatsHandler) Revenue(c *gin.Context) {
	from, ok := queryDate(c, "from")
	if !ok {
		return
	}
	to, ok := queryDate(c, "to")
	if !ok {
		return
	}
	if !to.IsZero() {
		to = to.AddDate(0, 0, 1)
	}

	period := models.RevenuePeriod(c.DefaultQuery("period", string(models.PeriodDay)))
	points, err := h.statsService.Revenue(period, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": points})
}

// GET /api/statistics/best-sellers?limit=
func (h *StatsHandler) BestSellers(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	c.JSON(http.StatusOK, gin.H{"data": h.statsService.BestSellers(limit)})
}

func (h *StatsHandler) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.statsService.Dashboard()})
}

// GET /api/statistics/sales-chart?year=
func (h *StatsHandler) SalesChart(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 1 {
		year = time.Now().Year()
	}
	c.JSON(http.StatusOK, gin.H{"data": h.statsService.SalesChart(year)})
}

func (h *StatsHandler) CategoryChart(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.statsService.CategoryChart()})
}
