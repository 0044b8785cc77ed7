package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/okian/salesdash/internal/adapters/ecosagile"
	"github.com/okian/salesdash/internal/config"
	"github.com/okian/salesdash/pkg/logger"
)

// newCredentialsCmd saves HR API credentials after checking them against
// the token endpoint.
func newCredentialsCmd() *cobra.Command {
	var (
		creds  ecosagile.Credentials
		path   string
		noTest bool
	)
	cmd := &cobra.Command{
		Use:   "hr-credentials",
		Short: "Verify and store EcosAgile credentials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if path == "" {
				cfg, err := config.Load(ctx)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				path = cfg.HR.CredentialsFile
			}
			if path == "" {
				return fmt.Errorf("%w: no credentials file configured", config.ErrInvalidConfig)
			}
			if err := creds.Validate(); err != nil {
				return err
			}
			if !noTest {
				tokens, err := ecosagile.NewTokenSource(creds, ecosagile.WithHTTPClient(http.DefaultClient))
				if err != nil {
					return err
				}
				if err := tokens.TestConnection(ctx); err != nil {
					return fmt.Errorf("connection test: %w", err)
				}
			}
			if err := ecosagile.SaveCredentials(path, creds); err != nil {
				return err
			}
			logger.Get().Info(ctx, "hr credentials saved", logger.String("path", path))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&creds.Endpoint, "endpoint", "", "EcosAgile base URL")
	f.StringVar(&creds.InstanceCode, "instance", "", "instance code")
	f.StringVar(&creds.UserID, "user", "", "API user id")
	f.StringVar(&creds.Password, "password", "", "API password")
	f.StringVar(&creds.ClientID, "client-id", "", "client id")
	f.StringVar(&path, "file", "", "credentials file (defaults to hr.credentials_file)")
	f.BoolVar(&noTest, "no-test", false, "save without testing the connection")
	return cmd
}
