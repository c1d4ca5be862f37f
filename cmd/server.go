package cmd

import (
	"github.com/notdulain/OAuth-Learning/internal/bootstrap"
	"github.com/notdulain/OAuth-Learning/internal/config"
	"github.com/notdulain/OAuth-Learning/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagAuthAddr     string
	flagResourceAddr string
)

var authServerCmd = &cobra.Command{
	Use:     "auth-server",
	Aliases: []string{"server"},
	Short:   "Run the authorization server",
	Long: `Run the OAuth 2.0 / OpenID Connect authorization server.

It serves /authorize, /login, /consent, /logout, /token, /userinfo and the
discovery and JWKS documents. It listens on SERVER_ADDR (default :4000).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log := loadServerConfig()
		defer func() { _ = log.Sync() }()

		if flagAuthAddr != "" {
			cfg.ServerAddr = flagAuthAddr
		}
		return bootstrap.RunAuthServer(cfg, log)
	},
}

var resourceServerCmd = &cobra.Command{
	Use:   "resource-server",
	Short: "Run the sample resource server",
	Long: `Run the resource server. /api/users requires a bearer access token with
the read:users scope; /api/products is public. It listens on
RESOURCE_SERVER_ADDR (default :5000).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log := loadServerConfig()
		defer func() { _ = log.Sync() }()

		if flagResourceAddr != "" {
			cfg.ResourceServerAddr = flagResourceAddr
		}
		return bootstrap.RunResourceServer(cfg, log)
	},
}

func loadServerConfig() (*config.Config, *zap.SugaredLogger) {
	cfg := config.Load()
	return cfg, logger.FromConfig(cfg)
}

func init() {
	authServerCmd.Flags().StringVar(&flagAuthAddr, "addr", "", "listen address, overrides SERVER_ADDR")
	resourceServerCmd.Flags().StringVar(&flagResourceAddr, "addr", "", "listen address, overrides RESOURCE_SERVER_ADDR")
}
