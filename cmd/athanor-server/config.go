package main

import (
	"flag"
	"log"
	"os"
	"strconv"
)

// ServerConfig holds the observer server configuration.
type ServerConfig struct {
	Addr           string
	Objective      string
	Seed           int64
	StepIntervalMS int
	LogLevel       string
}

// configResolver defines how to resolve a single configuration value.
type configResolver struct {
	flagName    string
	envVarName  string
	defaultVal  string
	description string
	setter      func(*ServerConfig, string)
}

// loadServerConfig loads server configuration from CLI flags and environment
// variables. Flags win over environment variables, which win over defaults.
func loadServerConfig() ServerConfig {
	cfg := ServerConfig{}

	resolvers := []configResolver{
		{
			flagName:    "addr",
			envVarName:  "ATHANOR_ADDR",
			defaultVal:  ":8080",
			description: "HTTP listen address (e.g. :8080, 0.0.0.0:8080)",
			setter:      func(c *ServerConfig, v string) { c.Addr = v },
		},
		{
			flagName:    "objective",
			envVarName:  "ATHANOR_OBJECTIVE",
			defaultVal:  "stability",
			description: "fitness objective the engine starts with",
			setter:      func(c *ServerConfig, v string) { c.Objective = v },
		},
		{
			flagName:    "seed",
			envVarName:  "ATHANOR_SEED",
			defaultVal:  "",
			description: "RNG seed for the engine; empty or 0 keeps time-based seeding",
			setter: func(c *ServerConfig, v string) {
				if v == "" {
					return
				}
				if val, err := strconv.ParseInt(v, 10, 64); err == nil {
					c.Seed = val
				} else {
					log.Printf("Invalid value for seed: %s, keeping time-based seeding", v)
				}
			},
		},
		{
			flagName:    "step-interval-ms",
			envVarName:  "ATHANOR_STEP_INTERVAL_MS",
			defaultVal:  "50",
			description: "spacing between generation steps in milliseconds",
			setter: func(c *ServerConfig, v string) {
				if val, err := strconv.Atoi(v); err == nil && val > 0 {
					c.StepIntervalMS = val
				} else {
					log.Printf("Invalid value for step-interval-ms: %s, using default 50", v)
					c.StepIntervalMS = 50
				}
			},
		},
		{
			flagName:    "log-level",
			envVarName:  "ATHANOR_LOG_LEVEL",
			defaultVal:  "info",
			description: "Log level: debug, info, warn, error",
			setter:      func(c *ServerConfig, v string) { c.LogLevel = v },
		},
	}

	// Register string flags first
	flagVars := make(map[string]*string)
	for _, resolver := range resolvers {
		flagVars[resolver.flagName] = flag.String(resolver.flagName, "", resolver.description)
	}

	// Parse flags once
	flag.Parse()

	// Resolve values for each resolver
	for _, resolver := range resolvers {
		var value string
		if *flagVars[resolver.flagName] != "" {
			value = *flagVars[resolver.flagName]
		} else if envValue := os.Getenv(resolver.envVarName); envValue != "" {
			value = envValue
		} else {
			value = resolver.defaultVal
		}
		resolver.setter(&cfg, value)
	}

	return cfg
}
