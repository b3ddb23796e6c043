// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Command cascade resolves values from a multi-environment config file
// the same way an application embedding package cascade would.
//
// Usage:
//
//	cascade --host localhost:9000 --environments config/environments.json get api.endpoint
//	cascade --source https://config.example.com --env staging dump --output yaml
//
// Every flag may also be set through an environment variable prefixed with
// CASCADE_, e.g. CASCADE_BASE_PATH=true.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	err := newRootCmd().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}
