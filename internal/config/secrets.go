package config

// RedactedConfig returns a shallow copy of cfg with sensitive fields replaced
// by the redaction placeholder "***". Use this when logging or printing the
// active configuration so secrets are never accidentally exposed.
func RedactedConfig(cfg *Config) Config {
	out := *cfg

	redact(&out.Redis.Password)

	redact(&out.Postgres.DSN)
	redact(&out.Postgres.Password)

	redact(&out.S3.AccessKey)
	redact(&out.S3.SecretKey)

	redact(&out.Notify.TelegramToken)
	redact(&out.Notify.DiscordWebhookURL)
	redact(&out.Server.APIKey)

	// Copy maps and slices so mutations to the redacted copy do not affect
	// the original.
	out.Fees = copyMap(cfg.Fees)
	out.Exchanges.BaseURLs = copyMap(cfg.Exchanges.BaseURLs)
	if cfg.Assets != nil {
		out.Assets = make([]AssetConfig, len(cfg.Assets))
		for i, a := range cfg.Assets {
			out.Assets[i] = AssetConfig{Pair: a.Pair, Symbols: copyMap(a.Symbols)}
		}
	}
	if cfg.History.Tracked != nil {
		out.History.Tracked = append([]string(nil), cfg.History.Tracked...)
	}
	if cfg.Notify.Events != nil {
		out.Notify.Events = append([]string(nil), cfg.Notify.Events...)
	}
	if cfg.Server.CORSOrigins != nil {
		out.Server.CORSOrigins = append([]string(nil), cfg.Server.CORSOrigins...)
	}

	return out
}

const redacted = "***"

// redact replaces a non-empty string with the redacted placeholder.
func redact(s *string) {
	if *s != "" {
		*s = redacted
	}
}

func copyMap[V any](m map[string]V) map[string]V {
	if m == nil {
		return nil
	}
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
