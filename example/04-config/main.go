// Package main demonstrates the config-driven setup: a YAML file turned
// into a fully wired engine by the builder. Requires LM Studio running
// locally; set BRAVE_API_KEY to enable web search.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	orchestra "github.com/felixgeelhaar/orchestra-go/interfaces/api"
)

const configYAML = `
log:
  level: info
  format: console

orchestrator:
  model: qwen2.5-7b-instruct
  max_turns: 8
  temperature: 0.2

brave_search:
  api_key: ${BRAVE_API_KEY:-}

cache:
  enabled: true
  backend: memory
  ttl: 600

preferences:
  budget: 0.5
  privacy: false
  quality: 0.5
`

func main() {
	path := writeConfig()
	defer os.Remove(path)

	cfg, err := orchestra.LoadConfig(path)
	if err != nil {
		log.Fatal(err)
	}

	assembly, err := orchestra.Build(cfg)
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()
	defer assembly.Close(ctx)

	fmt.Println("Registered capabilities:")
	for _, d := range assembly.Registry.Descriptors() {
		fmt.Printf("  %s\n", d.PromptLine())
	}

	result := assembly.Engine.Run(ctx, "What is the capital of France?")
	fmt.Println(result.Answer)
}

func writeConfig() string {
	f, err := os.CreateTemp("", "orchestra-*.yaml")
	if err != nil {
		log.Fatal(err)
	}
	if _, err := f.WriteString(configYAML); err != nil {
		log.Fatal(err)
	}
	if err := f.Close(); err != nil {
		log.Fatal(err)
	}
	return f.Name()
}
