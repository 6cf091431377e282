package main

import (
	"fmt"
	"os"

	proxycmder "github.com/papercomputeco/novostroy/cmd/novostroy/serve/proxy"
)

func main() {
	cmd := proxycmder.NewProxyCmd()

	cmd.Use = "novostroyproxy"
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .novostroy/ config directory")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing root command: %v\n", err)
		os.Exit(1)
	}
}
