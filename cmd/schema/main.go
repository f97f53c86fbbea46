// Command schema regenerates the embedded JSON schema of the feedkeeper configuration.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/umputun/feedkeeper/pkg/config"
)

func main() {
	outputPath := "schema.json"
	if len(os.Args) > 1 {
		outputPath = os.Args[1]
	}

	data, err := json.MarshalIndent(config.GenerateSchema(), "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal schema: %v", err)
	}

	if err := os.WriteFile(outputPath, append(data, '\n'), 0o600); err != nil { //nolint:gosec // schema file is not sensitive
		log.Fatalf("failed to write schema %s: %v", outputPath, err)
	}
	fmt.Printf("config schema written to %s\n", outputPath)
}
