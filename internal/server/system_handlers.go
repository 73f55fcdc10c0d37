package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// @Router /health [get]
// @Success 200 {object} map[string]interface{}
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   s.config.App.Name + "-api",
		"version":   s.version,
	})
}

// @Summary Public greeting
// @Tags demo
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/hello [get]
func (s *Server) hello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"message": "Hello from " + s.config.App.Name,
	})
}

// @Summary Always fails
// @Tags demo
// @Produce json
// @Failure 500 {object} map[string]interface{}
// @Router /api/boom [get]
func (s *Server) boom(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Something exploded"})
}
