// Package main is the entrypoint for the hub worker (binary name "worker").
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/doanngocthanh9x/deepapp-golang-grpc-hub/internal/worker"
)

const usage = `Usage: worker [command]
       worker serve          Connect to the hub and serve capability requests.
       worker capabilities   Print the built-in capability manifest as JSON.

Commands:
  serve         (default) Start the worker.
  capabilities  Print the capability descriptors the worker would register.

Environment: HUB_URL (default nats://127.0.0.1:4222), WORKER_ID, WORKER_TYPE,
MAX_RETRIES, RETRY_DELAY, HEARTBEAT_INTERVAL, REQUEST_TIMEOUT, HTTP_PORT,
LOG_LEVEL.
`

func main() {
	cmd := ""
	if len(os.Args) > 1 && os.Args[1] != "" {
		cmd = os.Args[1]
	}

	switch cmd {
	case "capabilities":
		descriptors := worker.BuiltinRegistry().Descriptors()
		data, err := json.MarshalIndent(descriptors, "", "  ")
		if err != nil {
			log.Fatalf("worker capabilities: %v", err)
		}
		fmt.Println(string(data))
		return
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	case "serve", "":
		// serve (explicit or default)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q.\n%s", cmd, usage)
		os.Exit(1)
	}

	if err := worker.Run(); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
