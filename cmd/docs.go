package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/gradsync/portal/internal/transport/rest"
)

var docsAddr string

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Serve the backend API reference locally",
	Long:  `Serve the OpenAPI document and a Swagger UI for the portal backend endpoints this client talks to.`,
	Run: func(cmd *cobra.Command, args []string) {
		application, err := initApp()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer application.Close()

		router := rest.NewRouter(application.Storage, application.Logger)

		fmt.Printf("API reference at http://%s/swagger/index.html\n", docsAddr)
		if err := http.ListenAndServe(docsAddr, router); err != nil {
			fmt.Fprintf(os.Stderr, "docs server failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	docsCmd.Flags().StringVarP(&docsAddr, "addr", "a", "localhost:8081", "address to serve the API reference on")
}
