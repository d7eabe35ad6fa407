package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Zachkp/devtier/adaptive"
	"github.com/Zachkp/devtier/capability"
)

type capabilityResponse struct {
	ID       string            `json:"id,omitempty"`
	Stored   bool              `json:"stored"`
	Message  string            `json:"message,omitempty"`
	Snapshot adaptive.Snapshot `json:"snapshot"`
}

func doNotTrack(c *gin.Context) bool {
	return c.GetHeader("DNT") == "1"
}

func (s *server) setupAPIRoutes(r *gin.Engine) {
	api := r.Group("/api")

	// The page posts what it probed; classification runs here.
	api.POST("/capabilities", func(c *gin.Context) {
		var report capability.ProbeReport
		if err := c.ShouldBindJSON(&report); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": MsgInvalidReport})
			return
		}

		snap := adaptive.NewSession().Detect(capability.NewReportEnvironment(report), s.cfg.Throttle)

		if doNotTrack(c) {
			c.JSON(http.StatusOK, capabilityResponse{Message: MsgNotStored, Snapshot: snap})
			return
		}

		rec := NewReport(uuid.NewString(), s.hashIP(c.ClientIP()), report.UserAgent, snap, s.store.timestamp())
		if err := s.store.Insert(c.Request.Context(), rec); err != nil {
			log.Printf("Error recording report: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": MsgStoreFailed})
			return
		}
		c.JSON(http.StatusCreated, capabilityResponse{ID: rec.ID, Stored: true, Snapshot: snap})
	})

	api.GET("/capabilities/:id", func(c *gin.Context) {
		rec, ok := s.loadReport(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, capabilityResponse{ID: rec.ID, Stored: true, Snapshot: rec.Snapshot})
	})

	// A lost WebGL context downgrades the stored session for good.
	api.POST("/capabilities/:id/context-lost", func(c *gin.Context) {
		rec, ok := s.loadReport(c)
		if !ok {
			return
		}
		snap, err := adaptive.Restore(rec.Snapshot).ContextLost()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if _, err := s.store.UpdateSnapshot(c.Request.Context(), rec.ID, snap); err != nil {
			log.Printf("Error updating report %s: %v", rec.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": MsgStoreFailed})
			return
		}
		c.JSON(http.StatusOK, capabilityResponse{ID: rec.ID, Stored: true, Snapshot: snap})
	})

	api.GET("/tiers/local", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.local())
	})
}

// loadReport resolves the :id parameter, writing the error response itself
// when it returns false.
func (s *server) loadReport(c *gin.Context) (Report, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": MsgInvalidID})
		return Report{}, false
	}
	rec, err := s.store.Get(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": MsgReportNotFound})
		return Report{}, false
	}
	if err != nil {
		log.Printf("Error loading report %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": MsgStoreFailed})
		return Report{}, false
	}
	return rec, true
}
