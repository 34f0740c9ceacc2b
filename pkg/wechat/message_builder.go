package wechat

import (
	"fmt"
	"strings"

	"adreport/pkg/notifier"
)

// maxFindings caps the findings listed in one message
const maxFindings = 5

// buildMarkdown renders the headline as markdown_v2 with a metrics table
func buildMarkdown(h *notifier.Headline) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## 📊 %s\n\n", h.Title)
	fmt.Fprintf(&b, "📅 **%s: %s**\n\n", h.Label("period"), h.Period)

	fmt.Fprintf(&b, "| %s | %s | %s |\n| :--- | ---: | ---: |", h.Label("summary"), h.Label("current"), h.Label("week_over_week"))
	for _, m := range h.Metrics {
		change := m.Change
		if change == "" {
			change = "-"
		}
		fmt.Fprintf(&b, "\n| %s | **%s** | %s |", m.Label, m.Value, change)
	}
	b.WriteString("\n\n")

	if h.Healthy {
		fmt.Fprintf(&b, "### ✅ %s\n", h.Label("no_anomalies"))
	} else {
		fmt.Fprintf(&b, "### ⚠️ %s (%d)\n", h.Label("anomalies"), len(h.Findings))
		for i, f := range h.Findings {
			if i == maxFindings {
				fmt.Fprintf(&b, "> ... +%d\n", len(h.Findings)-maxFindings)
				break
			}
			fmt.Fprintf(&b, "> %s\n", f)
		}
	}

	if len(h.Degraded) > 0 {
		fmt.Fprintf(&b, "\n*%s: %s*\n", h.Label("no_data"), strings.Join(h.Degraded, ", "))
	}
	if h.Link != "" {
		fmt.Fprintf(&b, "\n[%s](%s)", h.Title, h.Link)
	}
	return b.String()
}

// buildText renders the headline as plain text
func buildText(h *notifier.Headline) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n%s: %s\n\n", h.Title, h.Label("period"), h.Period)
	for _, m := range h.Metrics {
		fmt.Fprintf(&b, "%s: %s", m.Label, m.Value)
		if m.Change != "" {
			fmt.Fprintf(&b, " (%s)", m.Change)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if h.Healthy {
		b.WriteString(h.Label("no_anomalies"))
	} else {
		b.WriteString(h.Label("anomalies") + ":")
		for i, f := range h.Findings {
			if i == maxFindings {
				break
			}
			b.WriteString("\n- " + f)
		}
	}
	if h.Link != "" {
		b.WriteString("\n\n" + h.Link)
	}
	return b.String()
}
