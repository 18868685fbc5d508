package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fusionfit/storefront/app/routes"
	"github.com/fusionfit/storefront/internal/server"
)

// fusionfit serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the storefront API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

// fusionfit route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "Print every registered route",
	RunE: func(cmd *cobra.Command, args []string) error {
		r := server.NewRouter(routes.Controllers{})
		for _, line := range r.Routes() {
			fmt.Println(line)
		}
		return nil
	},
}
