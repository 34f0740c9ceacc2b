package handlers

import (
	"fmt"
	"time"
)

// formatDuration renders d for humans
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d.Nanoseconds())/1e6)
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}

// getCurrentTimestamp returns the current UTC time
func getCurrentTimestamp() time.Time {
	return time.Now().UTC()
}

// maskSecret keeps a short prefix and suffix of webhook URLs and tokens
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) > 20 {
		return s[:10] + "***" + s[len(s)-7:]
	}
	return "***"
}

// sanitizeConfig returns the parts of the configuration that are safe to show
func (h *HandlerService) sanitizeConfig() map[string]any {
	cfg := h.config
	if cfg == nil {
		return map[string]any{}
	}

	out := map[string]any{}
	if a := cfg.Analytics; a != nil {
		out["analytics"] = map[string]any{
			"driver":      a.Driver,
			"property_id": a.PropertyID,
		}
	}
	if a := cfg.Ads; a != nil {
		out["ads"] = map[string]any{
			"driver":          a.Driver,
			"customer_id":     a.CustomerID,
			"developer_token": maskSecret(a.DeveloperToken),
		}
	}
	if ch := cfg.ClickHouse; ch != nil && cfg.UsesClickHouse() {
		out["clickhouse"] = map[string]any{
			"hosts":    ch.Hosts,
			"database": ch.Database,
			"username": ch.Username,
		}
	}
	if r := cfg.Report; r != nil {
		out["report"] = map[string]any{
			"locale":           r.Locale,
			"currency":         r.Currency,
			"output_dir":       r.OutputDir,
			"target_countries": r.TargetCountries,
		}
	}
	if s := cfg.Scheduler; s != nil {
		out["scheduler"] = map[string]any{
			"enabled":  s.Enabled,
			"timezone": s.Timezone,
			"jobs":     len(s.Jobs),
		}
	}
	if w := cfg.WeChat; w != nil {
		out["wechat"] = map[string]any{
			"enabled":     w.Enabled,
			"webhook_url": maskSecret(w.WebhookURL),
		}
	}
	if t := cfg.Telegram; t != nil {
		out["telegram"] = map[string]any{
			"enabled": t.Enabled,
			"chat_id": t.ChatID,
		}
	}
	return out
}
