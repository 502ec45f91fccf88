package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Field helpers for common PLC runtime attributes

func Component(name string) Field {
	return String("component", name)
}

func PLC(name string) Field {
	return String("plc", name)
}

func TagName(name string) Field {
	return String("tag", name)
}

func Iteration(n int64) Field {
	return Int64("iteration", n)
}

func Addr(addr string) Field {
	return String("addr", addr)
}

func Value(v float64) Field {
	return Float64("value", v)
}

func Retries(n int) Field {
	return Int("retries", n)
}
