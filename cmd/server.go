package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rolinkstone/new-talawang-sub001/internal/api"
	"github.com/rolinkstone/new-talawang-sub001/internal/config"
	"github.com/rolinkstone/new-talawang-sub001/internal/container"
	"github.com/rolinkstone/new-talawang-sub001/internal/repository"
	"github.com/rolinkstone/new-talawang-sub001/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Long: `Start the Talawang API server.
The server listens on the configured host and port and serves the
kegiatan lifecycle, search, user lookup, and PIN endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err := api.NewLoggerFromConfig(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		api.SetDefaultLogger(logger)

		if configPath != "" {
			watcher := config.NewConfigWatcher(cfg, configPath)
			watcher.OnConfigChange(func(next *config.Config) {
				level, err := logrus.ParseLevel(next.Log.Level)
				if err != nil {
					return
				}
				api.SetLoggerLevel(level)
			})
			if err := watcher.Start(); err != nil {
				return fmt.Errorf("failed to watch config file: %w", err)
			}
			defer watcher.Stop()
		}

		if cfg.Tracing.Enabled {
			if err := api.InitTracing("talawang-api", cfg.Tracing.JaegerEndpoint); err != nil {
				return fmt.Errorf("failed to init tracing: %w", err)
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = api.ShutdownTracing(ctx)
			}()
		}

		ctr, err := container.NewContainer(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize container: %w", err)
		}
		defer ctr.Close()

		auditLogSvc := service.NewAuditLogService(repository.NewAuditLogRepository(ctr.DB()))
		kegiatanSvc := service.NewKegiatanService(ctr.DB(), auditLogSvc, ctr.Hub())
		searchSvc := service.NewSearchService(ctr.DB())

		router := api.SetupRoutes(&api.RouterDeps{
			Config:          cfg,
			DB:              ctr.DB(),
			Hub:             ctr.Hub(),
			Validator:       ctr.KeycloakValidator(),
			KegiatanService: kegiatanSvc,
			SearchService:   searchSvc,
			PinStore:        ctr.PinStore(),
			KeycloakClient:  ctr.KeycloakClient(),
			UserCache:       ctr.UserCache(),
		})
		router.NoRoute(func(c *gin.Context) {
			api.Error(c, http.StatusNotFound, "route not found", "the requested route does not exist")
		})

		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		srv := &http.Server{
			Addr:    addr,
			Handler: router,
		}

		go func() {
			log.Printf("Server starting on %s", addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Failed to start server: %v", err)
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}

		log.Println("Server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().String("config", "", "Config file path (default: config.yaml)")
	serverCmd.Flags().String("host", "0.0.0.0", "Server host")
	serverCmd.Flags().Int("port", 8080, "Server port")
}

// LoadConfig loads the configuration (used by tests)
func LoadConfig(configPath string) (*config.Config, error) {
	return config.Load(configPath)
}
