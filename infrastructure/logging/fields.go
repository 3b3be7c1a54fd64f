package logging

import (
	"time"

	"github.com/felixgeelhaar/bolt/v3"
)

// Field is a function that applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

// Common field constructors for orchestration logging.

// QueryID adds a trajectory query ID field.
func QueryID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("query_id", id)
	}
}

// Turn adds the current loop turn field.
func Turn(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("turn", n)
	}
}

// Capability adds a capability name field.
func Capability(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("capability", name)
	}
}

// Model adds a model name field.
func Model(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("model", name)
	}
}

// Cost adds a dollar cost field.
func Cost(cost float64) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Float64("cost", cost)
	}
}

// Confidence adds the model's self-reported confidence field.
func Confidence(c float64) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Float64("confidence", c)
	}
}

// Duration adds a duration field in milliseconds.
func Duration(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("duration_ms", d.Milliseconds())
	}
}

// Tokens adds prompt and completion token count fields.
func Tokens(prompt, completion int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("prompt_tokens", prompt).Int("completion_tokens", completion)
	}
}

// Cached adds a cached field.
func Cached(cached bool) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Bool("cached", cached)
	}
}

// ErrorField adds an error field.
func ErrorField(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		if err == nil {
			return e
		}
		return e.Err(err)
	}
}

// ErrorMsg adds an error message string field.
func ErrorMsg(msg string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("error", msg)
	}
}

// Reason adds a reason field.
func Reason(reason string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("reason", reason)
	}
}

// State adds a loop state field.
func State(s string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("state", s)
	}
}

// Component adds a component field for categorization.
func Component(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("component", name)
	}
}

// Str adds a string field with custom key.
func Str(key, value string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str(key, value)
	}
}

// Int adds an integer field with custom key.
func Int(key string, value int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int(key, value)
	}
}
