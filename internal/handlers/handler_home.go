package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetHome godoc
// @Summary Service banner
// @Description Returns a plain banner so load balancers have something to probe
// @Tags meta
// @Produce plain
// @Success 200 {string} string "contaflow backoffice"
// @Router / [get]
func GetHome(c *gin.Context) {
	c.String(http.StatusOK, "contaflow backoffice")
}
