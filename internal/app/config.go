package app

import (
	"time"

	"github.com/kotobalabs/kotoba-backend/internal/pkg/envutil"
	"github.com/kotobalabs/kotoba-backend/internal/pkg/logger"
)

type Config struct {
	// SweepBatchSize bounds how many audio-less cards one reconciliation
	// page dispatches.
	SweepBatchSize int
	// VoiceMapPath optionally points at a YAML voice mapping; empty means
	// the built-in defaults.
	VoiceMapPath string
	// PresignTTL is the lifetime of issued presigned URLs.
	PresignTTL time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		SweepBatchSize: envutil.Int("SWEEP_BATCH_SIZE", 200),
		VoiceMapPath:   envutil.Str("VOICE_MAP_PATH", ""),
		PresignTTL:     envutil.Seconds("PRESIGN_TTL_SECONDS", 900),
	}
	if cfg.SweepBatchSize < 1 {
		log.Warn("SWEEP_BATCH_SIZE invalid; using default", "value", cfg.SweepBatchSize)
		cfg.SweepBatchSize = 200
	}
	return cfg
}
