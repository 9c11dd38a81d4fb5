package main

import "github.com/spf13/cobra"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Storefront is a small e-commerce backend.",
	SilenceErrors: false,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/config.yml", "path to the configuration file")
	rootCmd.AddCommand(serveCmd, migrateCmd, usersCmd)
}
