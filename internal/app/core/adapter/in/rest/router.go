package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter 建立 gin Engine 並註冊所有路由
// mode: gin.ReleaseMode / gin.DebugMode / gin.TestMode，空字串沿用 gin 預設
func NewRouter(h *Handler, mode string) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), RequestID())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/operations", h.CreateOperation)
		v1.GET("/operations", h.ListOperations)
		v1.GET("/accounts/:accountId", h.GetAccount)
	}
	return router
}
