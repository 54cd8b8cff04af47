// Package cli provides the command-line interface for the marketscan application.
package cli

import (
	"github.com/law-makers/marketscan/internal/app"
	"github.com/spf13/cobra"
)

// appHolder keeps the Application built in PersistentPreRunE for the running command
var appHolder struct {
	app *app.Application
}

// SetApp stores the Application for the command about to run
func SetApp(cmd *cobra.Command, a *app.Application) {
	if cmd == nil {
		return
	}
	appHolder.app = a
}

// GetAppFromCmd retrieves the Application stored by SetApp
func GetAppFromCmd(cmd *cobra.Command) *app.Application {
	if cmd == nil {
		return nil
	}
	return appHolder.app
}
