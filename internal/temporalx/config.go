package temporalx

import (
	"os"
	"strings"

	"github.com/kotobalabs/kotoba-backend/internal/pkg/envutil"
)

type Config struct {
	Address   string
	Namespace string
	TaskQueue string
}

func LoadConfig() Config {
	return Config{
		Address:   strings.TrimSpace(os.Getenv("TEMPORAL_ADDRESS")),
		Namespace: envutil.Str("TEMPORAL_NAMESPACE", "kotoba"),
		TaskQueue: envutil.Str("TEMPORAL_TASK_QUEUE", "kotoba-tts"),
	}
}
