package main

import (
	"fmt"
	"os"

	novostroycmder "github.com/papercomputeco/novostroy/cmd/novostroy"
	"github.com/papercomputeco/novostroy/pkg/cliui"
)

func main() {
	cmd := novostroycmder.NewNovostroyCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", cliui.FailMark, err)
		os.Exit(1)
	}
}
