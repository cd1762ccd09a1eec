// Package config loads runtime configuration for the ChemTutor CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected via -c or -config; ".json" is decoded
//     with encoding/json, ".yaml"/".yml" with yaml.v3.
//  3. CHEMTUTOR_* environment variables.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   API base URL (default http://localhost:8000/api/)
//	-t int      request timeout in seconds (default 60)
//	-d string   local database path
//	-s string   authorization scheme, "Bearer" or "Token"
//	-l string   log level
//
// Environment
//
//	CHEMTUTOR_BASE_URL, CHEMTUTOR_TIMEOUT (e.g. "30s"), CHEMTUTOR_AUTH_SCHEME,
//	CHEMTUTOR_DB_PATH, CHEMTUTOR_LOG_LEVEL
//
// # File schema
//
// Durations use timex.Duration, so "45s" and integer nanoseconds both work:
//
//	base_url: https://chem.example.org/api/
//	request_timeout: 45s
//	auth_scheme: Token
//	database_path: /tmp/chemtutor.db
//	log_level: debug
package config
