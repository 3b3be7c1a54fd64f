// Package main runs a live loop against a local LM Studio server.
// Start LM Studio with any instruction-tuned model on localhost:1234,
// then: go run ./example/03-llm "your question"
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	orchestra "github.com/felixgeelhaar/orchestra-go/interfaces/api"
	"github.com/felixgeelhaar/orchestra-go/infrastructure/model"
	"github.com/felixgeelhaar/orchestra-go/pack/sandbox"
)

func main() {
	question := "What is 17 * 23?"
	if len(os.Args) > 1 {
		question = strings.Join(os.Args[1:], " ")
	}

	provider := orchestra.NewLMStudioProvider(model.ProviderConfig{
		BaseURL:     "http://localhost:1234/v1",
		APIKey:      "lm-studio",
		Temperature: 0.2,
	})

	registry := orchestra.NewRegistry()
	for _, c := range []orchestra.Capability{
		sandbox.New(sandbox.Config{}),
		orchestra.Finish(),
	} {
		if err := registry.Register(c); err != nil {
			log.Fatal(err)
		}
	}

	engine, err := orchestra.New(
		orchestra.WithProvider(provider),
		orchestra.WithRegistry(registry),
		orchestra.WithMaxTurns(6),
	)
	if err != nil {
		log.Fatal(err)
	}

	result := engine.Run(context.Background(), question)

	fmt.Println(result.Answer)
	fmt.Printf("(%d turns, $%.4f, %s)\n", result.Turns, result.Cost, result.Status)
}
