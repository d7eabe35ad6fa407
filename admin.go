// admin.go - privacy-conscious admin area for device tier statistics
package main

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const adminCookie = "admin_token"

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// hashIP is stable per address for the lifetime of the salt.
func (s *server) hashIP(ip string) string {
	hash := sha256.New()
	hash.Write([]byte(ip + s.salt))
	return hex.EncodeToString(hash.Sum(nil))[:16]
}

func (s *server) adminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": MsgUnauthorized})
			return
		}
		c.Next()
	}
}

// purgeOld removes reports past the retention window.
func (s *server) purgeOld(ctx context.Context) {
	n, err := s.store.Purge(ctx, s.cfg.Store.Retention())
	if err != nil {
		log.Printf("Error cleaning up old reports: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Privacy cleanup: removed %d reports older than %d days", n, s.cfg.Store.RetentionDays)
	}
}

// retentionLoop purges at start and then once a day until ctx is done.
func (s *server) retentionLoop(ctx context.Context) {
	s.purgeOld(ctx)
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.purgeOld(ctx)
		}
	}
}

func (s *server) setupAdminRoutes(r *gin.Engine) {
	r.POST("/admin/login", func(c *gin.Context) {
		username := c.PostForm("username")
		password := c.PostForm("password")

		userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.Admin.Username)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.Admin.Password)) == 1
		if !userOK || !passOK {
			log.Printf("Failed admin login attempt from %s", s.hashIP(c.ClientIP()))
			c.JSON(http.StatusUnauthorized, gin.H{"error": MsgInvalidCredentials})
			return
		}

		c.SetCookie(adminCookie, s.adminToken, 3600*24, "/admin", "", false, true)
		log.Printf("Admin login successful from %s", s.hashIP(c.ClientIP()))
		c.JSON(http.StatusOK, gin.H{"message": MsgLoginOK})
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", false, true)
		log.Printf("Admin logout from %s", s.hashIP(c.ClientIP()))
		c.JSON(http.StatusOK, gin.H{"message": MsgLoggedOut})
	})

	adminGroup := r.Group("/admin")
	adminGroup.Use(s.adminAuthMiddleware())

	adminGroup.GET("/api/stats", func(c *gin.Context) {
		stats, err := s.store.Stats(c.Request.Context())
		if err != nil {
			log.Printf("Error loading admin stats: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": MsgStatsFailed})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	adminGroup.GET("/reports", func(c *gin.Context) {
		reports, err := s.store.Recent(c.Request.Context(), 200)
		if err != nil {
			log.Printf("Error loading reports: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": MsgStatsFailed})
			return
		}
		c.JSON(http.StatusOK, reports)
	})

	adminGroup.DELETE("/reports/:id", func(c *gin.Context) {
		id := c.Param("id")

		err := s.store.Delete(c.Request.Context(), id)
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": MsgReportNotFound})
			return
		}
		if err != nil {
			log.Printf("Error deleting report %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete report"})
			return
		}

		log.Printf("Report %s deleted by admin from %s", id, s.hashIP(c.ClientIP()))
		c.JSON(http.StatusOK, gin.H{"message": MsgReportDeleted})
	})

	adminGroup.POST("/privacy/purge", func(c *gin.Context) {
		go s.purgeOld(context.WithoutCancel(c.Request.Context()))
		c.JSON(http.StatusAccepted, gin.H{"message": MsgPurgeStarted})
	})

	adminGroup.GET("/export/stats", func(c *gin.Context) {
		stats, err := s.store.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": MsgStatsFailed})
			return
		}

		c.Header("Content-Disposition", "attachment; filename=tier-stats.json")
		log.Printf("Admin stats exported by %s", s.hashIP(c.ClientIP()))
		c.JSON(http.StatusOK, stats)
	})
}
