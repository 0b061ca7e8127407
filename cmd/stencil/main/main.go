package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/stencil/cmd/stencil"
	"github.com/arthur-debert/stencil/pkg/ui"
)

func main() {
	rootCmd := stencil.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if !stencil.Reported(err) {
			errorStyle := ui.Style("Error")
			fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		}
		os.Exit(1)
	}
}
