package config

// Defaults returns the compiled default configuration tree.
//
// Sections: base (orchestrator-wide settings), one section per media
// type, providers (capability enable flags), and performance (monitor
// tuning). Durations are stored as strings and parsed on access.
func Defaults() map[string]any {
	return map[string]any{
		"base": map[string]any{
			"max_concurrent_jobs": 4,
			"max_input_bytes":     100 * 1024 * 1024,
			"cache_enabled":       true,
			"cache_ttl":           "1h",
			"cache_max_entries":   1000,
			"sweep_interval":      "1m",
			"stale_job_timeout":   "10m",
			"retry_max_attempts":  3,
			"retry_base_delay":    "250ms",
		},
		"video": map[string]any{
			"features": map[string]any{
				"transcription":    true,
				"object_detection": true,
				"scene_analysis":   false,
			},
			"max_duration_seconds": 3600,
		},
		"audio": map[string]any{
			"features": map[string]any{
				"transcription":      true,
				"language_detection": false,
			},
			"max_duration_seconds": 7200,
		},
		"image": map[string]any{
			"features": map[string]any{
				"object_detection": true,
				"ocr":              true,
				"description":      false,
			},
			"max_pixels": 20_000_000,
		},
		"providers": map[string]any{
			"vision": map[string]any{
				"enabled": true,
			},
			"speech": map[string]any{
				"enabled": true,
			},
			"language": map[string]any{
				"enabled": true,
			},
		},
		"performance": map[string]any{
			"sample_interval": "30s",
			"history_size":    120,
			"warmup_samples":  5,
			"thresholds": map[string]any{
				"memory_percent":     70.0,
				"cpu_percent":        80.0,
				"error_rate_percent": 5.0,
				"queue_depth":        50.0,
			},
		},
	}
}
