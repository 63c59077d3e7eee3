// Package config loads typed configuration from environment variables.
//
// Structs declare their variables with caarlos0/env tags:
//
//	type Config struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
// Load reads an optional .env file once, parses the struct and caches the
// result per type, so every package can call Load for the same type cheaply.
// Parse skips both the cache and the .env file and is meant for tests.
package config
