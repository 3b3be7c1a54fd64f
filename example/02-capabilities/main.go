// Package main demonstrates custom capabilities: an inline weather stub
// plus the built-in JavaScript sandbox, driven by a scripted model.
package main

import (
	"context"
	"fmt"
	"log"

	orchestra "github.com/felixgeelhaar/orchestra-go/interfaces/api"
	"github.com/felixgeelhaar/orchestra-go/pack/sandbox"
)

func main() {
	// An inline capability built with the fluent builder.
	weather := orchestra.NewCapability("weather").
		WithDescription("Returns the current weather for a city.").
		WithParameter("city", "string", "City name", true).
		Local().
		Idempotent().
		WithHandler(func(_ context.Context, params map[string]any) (orchestra.CapabilityResult, error) {
			city, _ := params["city"].(string)
			return orchestra.NewResult(map[string]any{
				"city":       city,
				"conditions": "sunny",
				"temp_c":     21,
			}), nil
		}).
		MustBuild()

	registry := orchestra.NewRegistry()
	for _, c := range []orchestra.Capability{
		weather,
		sandbox.New(sandbox.Config{}),
		orchestra.Finish(),
	} {
		if err := registry.Register(c); err != nil {
			log.Fatal(err)
		}
	}

	// Three turns: look up the weather, convert to Fahrenheit in the
	// sandbox, then finish.
	provider := orchestra.Scripted(
		`{"reasoning": "Need the current temperature first.", "tool": "weather", "parameters": {"city": "Berlin"}, "confidence": 0.9}`,
		`{"reasoning": "Convert 21C to Fahrenheit.", "tool": "sandbox", "parameters": {"code": "console.log(21 * 9 / 5 + 32)"}, "confidence": 0.95}`,
		`{"reasoning": "Have everything.", "tool": "finish", "parameters": {"answer": "Berlin is sunny at 21C (69.8F).", "sources": ["weather", "sandbox"]}, "confidence": 1.0}`,
	)

	engine, err := orchestra.New(
		orchestra.WithProvider(provider),
		orchestra.WithRegistry(registry),
		orchestra.WithMaxTurns(5),
	)
	if err != nil {
		log.Fatal(err)
	}

	result := engine.Run(context.Background(), "What's the weather in Berlin, in Fahrenheit?")

	fmt.Printf("Answer: %s\n", result.Answer)
	fmt.Printf("Sources: %v\n", result.Sources)
	for _, step := range result.Trajectory.Steps() {
		fmt.Printf("  [%s] %.60s\n", step.Type, step.Content)
	}
}
