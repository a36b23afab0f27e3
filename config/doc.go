// Package config provides configuration loading and validation for the
// consultation service.
//
// It uses Viper to load configuration from a config.yml file, layered with
// environment variables and an optional .env file (loaded via godotenv).
// Environment variables override file values using underscore-separated
// paths (e.g. SPEECH_API_KEY binds to speech.api_key).
//
// # Usage
//
//	var cfg config.AppConfig
//	err := config.LoadConfig("chiro-backend", &cfg)
package config
