package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yoockh/seopilot/internal/api/handlers"
)

type Deps struct {
	Jobs     *handlers.JobHandler
	Products *handlers.ProductHandler
	Configs  *handlers.ConfigHandler
	CallLogs *handlers.CallLogHandler
	Stores   *handlers.StoreHandler
	WS       *handlers.WSHandler // nil without redis
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/jobs", d.Jobs.Create)
	r.GET("/jobs/:job_id", d.Jobs.Get)
	r.GET("/jobs/:job_id/drafts", d.Jobs.Drafts)
	r.POST("/jobs/:job_id/export", d.Jobs.Export)
	r.GET("/jobs/:job_id/exports", d.Jobs.Exports)

	r.POST("/products/:product_id/preview", d.Products.Preview)

	r.GET("/llm-configurations/active", d.Configs.Active)
	r.GET("/llm-logs", d.CallLogs.List)

	r.POST("/stores", d.Stores.Register)
	r.GET("/stores/:store_id", d.Stores.Get)
	r.POST("/stores/:store_id/sync", d.Stores.Sync)

	if d.WS != nil {
		r.GET("/ws/jobs/:job_id", d.WS.JobProgress)
	}
}
