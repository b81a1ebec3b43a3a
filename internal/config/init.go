package config

import (
	"fmt"
	"os"
)

const starterConfig = `# docpipe configuration
title: "Project Documentation"

loaders:
  - name: go
    options:
      root: .
    modules:
      - "./internal/example+"
      - "$$index"

preprocessors:
  - name: crossref
  - name: smartfilter

renderer:
  name: markdown

output:
  directory: ./build/docs
  clean: true

# daemon:
#   watch: ["./internal"]
#   interval: 10m
#   metrics_addr: ":9105"
#   nats_url: "nats://localhost:4222"
#   event_store: "./build/events.db"
`

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}
	if err := os.WriteFile(configPath, []byte(starterConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return nil
}
