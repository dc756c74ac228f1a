package restapi

import (
	"net/http"
	"net/http/pprof"
	"slices"
	"time"

	"basebridge/internal/app/port"
	"basebridge/internal/app/service"
	"basebridge/internal/infrastructure/configloader"
	"basebridge/internal/infrastructure/web/static"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

const swaggerSpecPath = "/docs/swagger.yaml"

// RouterDeps holds everything SetupRouter wires together.
type RouterDeps struct {
	Config    *configloader.Config
	Manager   *service.SessionManager
	Store     sessions.Store
	ZapLogger *zap.Logger
	Logger    port.Logger
}

// SetupRouter configures and returns the Gin router.
func SetupRouter(d RouterDeps) *gin.Engine {
	cfg := d.Config

	router := gin.New()
	router.Use(ZapLoggerMiddleware(d.ZapLogger))
	router.Use(gin.Recovery())
	if len(cfg.CORS.AllowedOrigins) > 0 {
		router.Use(cors.New(corsConfig(cfg.CORS.AllowedOrigins)))
	}

	router.StaticFS("/static", http.FS(static.FS))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "activeSessions": d.Manager.ActiveSessions()})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	splashHandler := NewSplashHandler(time.Duration(cfg.Splash.DelayMillis)*time.Millisecond, cfg.Splash.Target, d.Logger)
	router.GET("/", splashHandler.Index)
	router.GET(splashNextPath, splashHandler.Next)

	binder := NewSessionBinder(d.Store, cfg.Session.CookieName, d.Manager, d.Logger)

	pages := NewPageHandler(cfg.Wallet.Network, cfg.Session.FiatCurrency, d.Logger)
	landing := router.Group(landingPath, binder.Middleware())
	{
		landing.GET("", pages.Landing)
		landing.POST("/signin", pages.SignIn)
		landing.POST("/logout", pages.LogOut)
		landing.POST("/wallet/connect", pages.ConnectWallet)
		landing.POST("/mode", pages.SetMode)
		landing.POST("/transfer", pages.Transfer)
		landing.POST("/convert", pages.Convert)
		landing.POST("/settings", pages.UpdateSettings)
		landing.POST("/dismiss", pages.Dismiss)
	}

	sessionAPI := NewSessionHandler()
	v1 := router.Group("/api/v1")
	{
		session := v1.Group("/session", binder.Middleware())
		session.GET("", sessionAPI.Get)
		session.POST("/signin", sessionAPI.SignIn)
		session.POST("/logout", sessionAPI.LogOut)
		session.POST("/wallet/connect", sessionAPI.ConnectWallet)
		session.PUT("/mode", sessionAPI.SetMode)
		session.POST("/transfer", sessionAPI.Transfer)
		session.POST("/convert", sessionAPI.Convert)
		session.PUT("/settings", sessionAPI.UpdateSettings)
	}

	if cfg.Swagger.Enabled {
		router.StaticFile(swaggerSpecPath, cfg.Swagger.SpecFile)
		router.GET(cfg.Swagger.Path+"/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL(swaggerSpecPath)))
		d.ZapLogger.Info("Swagger UI enabled", zap.String("path", cfg.Swagger.Path+"/index.html"))
	}

	if cfg.Server.EnablePprof {
		registerPprof(router)
		d.ZapLogger.Info("Pprof endpoints enabled under /debug/pprof")
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	if slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
		c.AllowCredentials = true
	}
	c.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	return c
}

func registerPprof(router *gin.Engine) {
	pprofRouter := router.Group("/debug/pprof")
	{
		pprofRouter.GET("/", gin.WrapF(pprof.Index))
		pprofRouter.GET("/cmdline", gin.WrapF(pprof.Cmdline))
		pprofRouter.GET("/profile", gin.WrapF(pprof.Profile))
		pprofRouter.POST("/symbol", gin.WrapF(pprof.Symbol))
		pprofRouter.GET("/symbol", gin.WrapF(pprof.Symbol))
		pprofRouter.GET("/trace", gin.WrapF(pprof.Trace))
		pprofRouter.GET("/allocs", gin.WrapH(pprof.Handler("allocs")))
		pprofRouter.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
		pprofRouter.GET("/heap", gin.WrapH(pprof.Handler("heap")))
	}
}
