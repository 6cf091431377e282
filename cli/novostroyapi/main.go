package main

import (
	"fmt"
	"os"

	apicmder "github.com/papercomputeco/novostroy/cmd/novostroy/serve/api"
)

func main() {
	cmd := apicmder.NewAPICmd()

	cmd.Use = "novostroyapi"
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .novostroy/ config directory")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing root command: %v\n", err)
		os.Exit(1)
	}
}
