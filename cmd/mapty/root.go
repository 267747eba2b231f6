package main

import (
	"net/url"

	"github.com/lildude/mapty/internal/client"
	"github.com/lildude/mapty/internal/config"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var server string

	root := &cobra.Command{
		Use:           "mapty",
		Short:         "Log running and cycling workouts on a map",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&server, "server", "", "Base URL of a running mapty server (overrides MAPTY_SERVER)")

	apiClient := func() (*client.Client, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		if server != "" {
			cfg.ServerURL = server
		}
		u, err := url.Parse(cfg.ServerURL)
		if err != nil {
			return nil, err
		}
		if u.Path == "" {
			u.Path = "/"
		}
		return client.NewClient(u, nil), nil
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newListCmd(apiClient))
	root.AddCommand(newAddCmd(apiClient))
	root.AddCommand(newEditCmd(apiClient))
	root.AddCommand(newDeleteCmd(apiClient))
	root.AddCommand(newPanCmd(apiClient))
	root.AddCommand(newResetCmd(apiClient))
	root.AddCommand(newSummaryCmd(apiClient))
	return root
}
