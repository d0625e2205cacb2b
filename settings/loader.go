package settings

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/skillsenselab/voicekit/logger"
)

// LoadEnv loads the first .env file found among the candidate paths.
// Environment files hold machine-local values (sidecar URLs, API keys)
// that should not live in the shared settings file.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env", ".env.local"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return err
		}
		logger.Get("settings").Debug("env file loaded", map[string]interface{}{"path": path})
		return nil
	}
	return nil
}
