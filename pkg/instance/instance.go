package instance

import (
	"os"

	"github.com/damsoledevelopers/spireleap-console/pkg/env"
)

// GetID names this process in logs. Dyno and pod hostnames are used when no
// explicit id is set.
func GetID() string {
	for _, key := range []string{"SPIRELEAP_INSTANCE_ID", "DYNO"} {
		if id := env.Get(key, ""); id != "" {
			return id
		}
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
