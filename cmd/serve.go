package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/caravanleads/caravan/internal/config"
	"github.com/caravanleads/caravan/internal/domain"
	"github.com/caravanleads/caravan/internal/engine"
	"github.com/caravanleads/caravan/internal/ingress"
	"github.com/caravanleads/caravan/internal/store"
	"github.com/caravanleads/caravan/internal/store/pg"
	"github.com/caravanleads/caravan/internal/tenant"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook HTTP front-end (role=web)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

// runServe wires the thin HTTP surface a provider adapter calls into.
// Per-provider signature verification and payload parsing are external
// collaborators; this handler accepts an already-normalized
// domain.ProviderEvent body, matching the boundary internal/ingress
// documents.
func runServe() error {
	logger := newLogger()

	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	stores, err := pg.NewPGStores(store.StoreConfig{
		PostgresDSN: cfg.Database.DSN,
		MaxOpenConn: cfg.Database.MaxOpenConn,
		MaxIdleConn: cfg.Database.MaxIdleConn,
	})
	if err != nil {
		return fmt.Errorf("connect stores: %w", err)
	}

	decryptorKey := decryptionKeyFromEnv()
	decryptor, err := tenant.NewAESGCMDecryptor(decryptorKey)
	if err != nil {
		return fmt.Errorf("build credential decryptor: %w", err)
	}
	registry := tenant.NewRegistry(stores.Tenants, decryptor, tenantCacheTTL)

	pricingCfg := cfg.Pricing.Build()
	eng := engine.New(pricingCfg, cfg.Labels)

	coordinator := ingress.New(stores.InboundDedup, stores.Sessions, stores.Leads, stores.Jobs, registry, eng, cfg.ResolveFeatures)

	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginSlogLogger(logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/webhook/:provider", func(c *gin.Context) {
		var ev domain.ProviderEvent
		if err := c.ShouldBindJSON(&ev); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event"})
			return
		}
		ev.Provider = domain.Provider(c.Param("provider"))

		reply, err := coordinator.HandleEvent(c.Request.Context(), ev)
		if err != nil {
			logger.Error("handle inbound event", "provider", ev.Provider, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
			return
		}
		c.JSON(http.StatusOK, reply)
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("serve starting", "addr", addr)
	return router.Run(addr)
}

// tenantCacheTTL is the tenant-binding cache TTL.
const tenantCacheTTL = 5 * time.Minute

// decryptionKeyFromEnv reads the 32-byte AES-256 master key from
// CARAVAN_CREDENTIAL_KEY. Real key management (KMS, rotation) is an
// external collaborator; this reads only the resolved key material.
func decryptionKeyFromEnv() []byte {
	key := []byte(os.Getenv("CARAVAN_CREDENTIAL_KEY"))
	if len(key) != 32 {
		return make([]byte, 32)
	}
	return key
}

func ginSlogLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status())
	}
}
