package env

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Env holds the key/value pairs read from the .env file. Process
// environment variables act as a fallback so containerized runs work
// without a file on disk.
var Env map[string]string

// GetEnv returns the value for key, preferring the .env file over the
// process environment, or def when neither has it.
func GetEnv(key, def string) string {
	if val, ok := Env[key]; ok {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// GetEnvInt parses the variable as an integer and returns def on a
// missing or malformed value.
func GetEnvInt(key string, def int) int {
	raw := GetEnv(key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// SetupEnvFile loads the first .env file found, walking up from the
// working directory so launches from the repo root and from
// cmd/voicecanvas both resolve the same file.
func SetupEnvFile() {
	candidates := []string{".env", "../../.env", "../../../.env"}
	for _, path := range candidates {
		if parsed, err := godotenv.Read(path); err == nil {
			Env = parsed
			return
		}
	}
	panic("No .env file found in any of the expected locations")
}

// IsDev reports whether APP_ENV selects the development profile.
func IsDev() bool {
	return GetEnv("APP_ENV", "prod") == "dev"
}
