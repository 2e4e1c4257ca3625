/*
Package config loads flowstate engine settings from YAML or JSON.

# File Format

	frame_interval: 16ms   # string duration, or a number of milliseconds
	scheduler: frame       # frame | immediate | manual
	metrics: true
	tracing: false
	log_level: debug       # debug | info | warn | error

Missing keys keep their defaults (see Default). Values of the wrong type are
ignored the same way. Out-of-range values fail validation.

# Usage

	settings, err := config.FromFile("flowstate.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	g := flowstate.New(flowstate.WithSettings(settings))

Settings is a plain value and is safe to share between goroutines.
*/
package config
