package model

import (
	"fmt"
	"time"
)

// Duration wraps time.Duration with YAML (de)serialization from human
// strings ("1s", "500ms"), matching spec.md §6's "Durations are human
// strings" rule. The teacher's own Corefile parser (setup.go's "reload"
// directive) does the same conversion with time.ParseDuration; this is
// the YAML-field equivalent.
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}
