// Package main demonstrates the absolute minimum working loop: a
// scripted decision model that immediately calls finish.
package main

import (
	"context"
	"fmt"
	"log"

	orchestra "github.com/felixgeelhaar/orchestra-go/interfaces/api"
)

func main() {
	// 1. Register the built-in terminal capability
	registry := orchestra.NewRegistry()
	if err := registry.Register(orchestra.Finish()); err != nil {
		log.Fatal(err)
	}

	// 2. Script the decision model: one terminal action
	provider := orchestra.Scripted(
		`{"reasoning": "Simple arithmetic, no tools needed.", "tool": "finish", "parameters": {"answer": "4", "confidence": 1.0}, "confidence": 1.0}`,
	)

	// 3. Create and run the engine
	engine, err := orchestra.New(
		orchestra.WithProvider(provider),
		orchestra.WithRegistry(registry),
	)
	if err != nil {
		log.Fatal(err)
	}

	result := engine.Run(context.Background(), "What is 2+2?")

	fmt.Printf("Answer: %s\n", result.Answer)
	fmt.Printf("Status: %s, turns: %d, cost: $%.4f\n", result.Status, result.Turns, result.Cost)
}
