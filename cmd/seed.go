package cmd

import (
	"github.com/spf13/cobra"

	"ecohub-backend/database"
	"ecohub-backend/log"
)

var (
	adminEmail    string
	adminPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert lookup data and an initial admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
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
		if err := database.Seed(db, adminEmail, adminPassword); err != nil {
			return err
		}
		log.InfoLog("init data done")
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&adminEmail, "admin-email", "", "email of the admin account to create")
	seedCmd.Flags().StringVar(&adminPassword, "admin-password", "", "password of the admin account to create")
}
