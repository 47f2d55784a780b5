// Package cli is the thin command surface over the client core. Rendering is
// deliberately dumb: every command wires the gateway, session store, and
// controllers, invokes one workflow, and prints the resulting snapshot.
package cli

import (
	"fmt"
	"os"

	"libretto/config"
	"libretto/gateway"
	"libretto/session"
	"libretto/utils"
)

var rootCmd = newRootCmd()

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, utils.UserMessage(err))
		os.Exit(1)
	}
}

// baseURL is settable per invocation (the demo command points it at the
// in-process server).
var baseURLOverride string

func apiBaseURL() string {
	if baseURLOverride != "" {
		return baseURLOverride
	}
	return config.AppConfig.APIBaseURL
}

func newGateway() gateway.Client {
	return gateway.NewHTTPClient(apiBaseURL())
}

func newSession() *session.Store {
	return session.NewStore(config.AppConfig.SessionFile)
}
