package app

import (
	"net/http"

	"assembly_crawler/internal/models"

	"github.com/gin-gonic/gin"
)

// router builds the manual-trigger surface. Triggers answer 202 immediately
// and run the crawl asynchronously; a failure of the async run is only
// visible in logs and /status, matching the fire-and-forget contract.
func (a *App) router() *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())

	g.POST("/crawl/bills", func(c *gin.Context) {
		a.triggered.Add(1)
		go func() {
			defer a.triggered.Done()
			a.RunBills(a.ctx)
		}()
		c.JSON(http.StatusAccepted, gin.H{"status": "accepted", "crawl": "bills"})
	})

	g.POST("/crawl/petitions", func(c *gin.Context) {
		a.triggered.Add(1)
		go func() {
			defer a.triggered.Done()
			a.RunPetitions(a.ctx)
		}()
		c.JSON(http.StatusAccepted, gin.H{"status": "accepted", "crawl": "petitions"})
	})

	g.GET("/status", a.handleStatus)

	g.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return g
}

func (a *App) handleStatus(c *gin.Context) {
	totalBills, err := a.db.CountBills("")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	inProgress, err := a.db.CountBills(models.BillInProgress)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	totalPetitions, err := a.db.CountPetitions()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	a.statsMu.Lock()
	lastBills, lastPetitions := a.lastBills, a.lastPetitions
	a.statsMu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"bills": gin.H{
			"total":       totalBills,
			"in_progress": inProgress,
			"last_run":    lastBills,
		},
		"petitions": gin.H{
			"total":    totalPetitions,
			"last_run": lastPetitions,
		},
	})
}
