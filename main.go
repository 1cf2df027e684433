// @title           FabTrack API
// @version         1.0
// @description     Production quantity ledger for steel fabrication - assembly parts, process logging, balances and dispatch reports.

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @schemes http https
package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"fabtrack/handlers"
	"fabtrack/ledger"
	"fabtrack/repository"
	"fabtrack/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var cronRunning int32

func CORSConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{
		"http://localhost:9000",
		"http://localhost:8080",
		"http://localhost:3000",
	}
	if extra := os.Getenv("CORS_ALLOWED_ORIGINS"); extra != "" {
		corsConfig.AllowOrigins = append(corsConfig.AllowOrigins, strings.Split(extra, ",")...)
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Content-Type", "Content-Length", "Accept-Encoding",
		"Accept", "Origin", "X-Requested-With", "Authorization", "User-Agent",
		"Cache-Control", "Referer",
		"Access-Control-Request-Method", "Access-Control-Request-Headers",
	}
	corsConfig.AllowMethods = []string{
		"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD", "PATCH",
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length", "Authorization", "Content-Type", "Content-Disposition",
	}
	corsConfig.MaxAge = 12 * time.Hour
	return corsConfig
}

// SessionAuthMiddleware requires a valid, unexpired session in the
// Authorization header.
func SessionAuthMiddleware(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := strings.TrimSpace(c.GetHeader("Authorization"))
		if sessionID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session ID required"})
			c.Abort()
			return
		}

		user, err := storage.GetUserBySessionID(db, sessionID)
		if err != nil || user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Next()
	}
}

func main() {
	db := storage.InitDB()
	gdb := storage.InitGormDB()

	svc := ledger.NewService(repository.NewLedgerRepository(gdb))

	// Daily maintenance at 00:30
	c := cron.New(
		cron.WithLogger(cron.VerbosePrintfLogger(log.New(os.Stdout, "cron: ", log.LstdFlags))),
	)
	_, err := c.AddFunc("30 0 * * *", func() {
		if !atomic.CompareAndSwapInt32(&cronRunning, 0, 1) {
			log.Println("Previous cron still running. Skipping this run.")
			return
		}
		defer atomic.StoreInt32(&cronRunning, 0)

		if err := storage.CleanupExpiredSessions(db); err != nil {
			log.Printf("Session cleanup failed: %v", err)
		}
		log.Println("Daily maintenance completed")
	})
	if err != nil {
		log.Fatalf("Failed to schedule daily maintenance cron job: %v", err)
	}
	c.Start()

	r := gin.Default()
	r.MaxMultipartMemory = 8 << 20

	r.Use(cors.New(CORSConfig()))

	// ==================== 1. AUTH & LOGIN ====================
	r.POST("/api/login", handlers.LoginHandler(db))
	r.POST("/api/refresh-token", handlers.RefreshTokenHandler(db))
	r.POST("/api/validate-session", handlers.ValidateSession(db))
	r.POST("/api/logout", handlers.LogoutHandler(db))
	r.GET("/api/active-devices", handlers.GetActiveDevicesHandler(db))
	r.DELETE("/api/devices/:session_id", handlers.LogoutDeviceHandler(db))

	// ==================== 2. USERS ====================
	r.POST("/api/users", handlers.CreateUser(db))
	r.GET("/api/users/me", handlers.GetCurrentUser(db))

	auth := r.Group("/api", SessionAuthMiddleware(db))

	// ==================== 3. PROJECTS & BUILDINGS ====================
	auth.POST("/projects", handlers.CreateProject(db, gdb))
	auth.GET("/projects", handlers.GetProjects(gdb))
	auth.GET("/projects/:id", handlers.GetProject(gdb))
	auth.POST("/projects/:id/buildings", handlers.CreateBuilding(db, gdb))
	auth.GET("/projects/:id/buildings", handlers.GetBuildings(gdb))

	// ==================== 4. ASSEMBLY PARTS ====================
	auth.POST("/parts", handlers.CreateAssemblyPart(db, gdb))
	auth.GET("/parts", handlers.GetAssemblyParts(gdb))
	auth.GET("/parts/:id", handlers.GetAssemblyPart(gdb))
	auth.GET("/parts/:id/qr", handlers.GeneratePartQRCode(gdb))
	auth.POST("/parts/import", handlers.ImportAssemblyParts(db, gdb))
	auth.GET("/parts/import/template", handlers.DownloadPartTemplate())

	// ==================== 5. PRODUCTION LEDGER ====================
	auth.POST("/production/log", handlers.CreateProductionLog(db, svc))
	auth.POST("/production/mass_log", handlers.MassLogProduction(db, svc))
	auth.GET("/production/logs", handlers.GetProductionLogs(gdb))
	auth.GET("/production/balance/:part_id", handlers.GetProcessBalance(svc))
	auth.POST("/production/report_number", handlers.GenerateReportNumber(svc))
	auth.GET("/production/process_types", handlers.GetSelectableProcessTypes(svc))
	auth.GET("/production/status", handlers.GetProductionStatus(gdb))
	auth.GET("/production/stats", handlers.GetProductionStats(gdb))

	// ==================== 6. DISPATCH & EXPORT ====================
	auth.GET("/dispatch/reports", handlers.GetDispatchReports(gdb))
	auth.GET("/dispatch/reports/pdf", handlers.GetDispatchReportPDF(gdb))
	auth.GET("/export/production_logs", handlers.ExportProductionLogs(gdb))

	// ==================== 7. ACTIVITY LOGS ====================
	auth.GET("/logs", handlers.GetActivityLogsHandler(db))

	// ==================== 8. SWAGGER ====================
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	port := os.Getenv("PORT")
	if port == "" {
		port = "9000"
	}
	portInt, err := strconv.Atoi(port)
	if err != nil {
		log.Fatalf("Invalid PORT environment variable: %s. Must be a number.", port)
	}
	if portInt < 0 || portInt > 65535 {
		log.Fatalf("Invalid PORT: %d. Must be between 0 and 65535.", portInt)
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exiting")
}
