package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"ecohub-backend/config"
	"ecohub-backend/controllers"
	"ecohub-backend/database"
	"ecohub-backend/log"
	"ecohub-backend/middleware"
	"ecohub-backend/rbac"
	"ecohub-backend/routes"
	"ecohub-backend/utils"
	"ecohub-backend/validation"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run migrations and serve the HTTP API",
	RunE:  runServe,
}

// NewServer builds the gin engine with every route and middleware wired.
func NewServer(cfg *config.Config, ctl *controllers.Controller) (*gin.Engine, error) {
	if err := validation.Register(); err != nil {
		return nil, err
	}
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.AuditLogger())
	r.Use(middleware.CORSMiddleware(cfg.ClientURL))
	r.MaxMultipartMemory = utils.MaxUploadSize * 2

	routes.SetupRoutes(r, ctl)
	return r, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	enforcer, err := rbac.NewEnforcer()
	if err != nil {
		return err
	}
	tokens := utils.NewTokenIssuer(cfg.AppSecret, cfg.TokenExpiresIn)
	google := &utils.IDTokenVerifier{ClientID: cfg.GoogleClientID}
	ctl := controllers.New(db, tokens, enforcer, google, cfg.UploadDir)

	r, err := NewServer(cfg, ctl)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.InfoLog("server running", "addr", srv.Addr, "driver", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.InfoLog("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	return nil
}
