// Package commands собирает дерево команд CLI портала самодиспетчеризации.
// Каждый запуск — отдельная сессия: вход, одна операция, выход.
package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mmeshcher/selfdispatch-system/internal/config"
	"github.com/mmeshcher/selfdispatch-system/internal/session"
	"github.com/mmeshcher/selfdispatch-system/internal/vendorapi"
)

var (
	vendorName string
	username   string
	password   string

	logger *zap.Logger
	sess   *session.Session
)

func Execute() error {
	root := &cobra.Command{
		Use:           "selfdispatch",
		Short:         "Self-dispatch portal for Dell and Lenovo warranty claims",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			var err error
			logger, err = zap.NewProduction()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			cfg, err := config.FromEnv()
			if err != nil {
				return fmt.Errorf("read config: %w", err)
			}

			vendor, err := vendorapi.ParseVendor(vendorName)
			if err != nil {
				return err
			}

			client, err := vendorapi.New(vendor, cfg, logger)
			if err != nil {
				return err
			}

			if username == "" {
				username = os.Getenv("SD_USERNAME")
			}
			if password == "" {
				password = os.Getenv("SD_PASSWORD")
			}

			sess = session.New(client, logger)
			return sess.Login(cmd.Context(), username, password)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if sess != nil {
				sess.Logout()
			}
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&vendorName, "vendor", "dell", "vendor: dell or lenovo")
	root.PersistentFlags().StringVarP(&username, "username", "u", "", "technician username (or SD_USERNAME)")
	root.PersistentFlags().StringVarP(&password, "password", "p", "", "technician password (or SD_PASSWORD)")

	root.AddCommand(claimsCmd(), warrantyCmd())
	return root.Execute()
}
