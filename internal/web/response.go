// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ok sends a 200 response. Slices are wrapped in {"data": [...]} so an
// empty list is never a bare null.
func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func okList(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// accepted sends a 202 for work that is still in progress.
func accepted(c *gin.Context, message string) {
	c.JSON(http.StatusAccepted, gin.H{"status": "generating", "message": message})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message})
}

func notFound(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": message})
}

func internalError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
