package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cosyframework/cosy/application"
	"github.com/cosyframework/cosy/component"
	"github.com/cosyframework/cosy/version"
)

// Summary describes a started application for the startup banner.
type Summary struct {
	Service         string
	Version         string
	AppID           string
	Environment     string
	Port            int
	Layers          []string
	Providers       []string
	StartupDuration time.Duration
}

// Summary collects the startup summary. Fields that depend on the
// application are empty until Start has created it.
func (b *Bootstrap) Summary() *Summary {
	b.mu.Lock()
	app := b.app
	s := &Summary{
		Service:         b.serviceName(),
		Version:         version.Get().Short(),
		Layers:          b.store.Layers(),
		StartupDuration: b.duration,
	}
	b.mu.Unlock()

	if app != nil {
		s.AppID = app.ID()
		s.Environment = app.Environment()
		s.Port = app.Port()
		for _, p := range app.Providers() {
			s.Providers = append(s.Providers, application.ProviderName(p))
		}
	}
	return s
}

// Display writes the summary to w, including live health from registry
// when it is not nil.
func (s *Summary) Display(w io.Writer, registry *component.Registry) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "🚀 %s %s started in %.2fs\n", s.Service, s.Version, s.StartupDuration.Seconds())
	fmt.Fprintf(w, "   env=%s port=%d id=%s\n\n", s.Environment, s.Port, s.AppID)

	fmt.Fprintf(w, "🗂  Configuration\n")
	printTree(w, s.Layers, "No layers loaded")

	fmt.Fprintf(w, "\n🧩 Providers\n")
	printTree(w, s.Providers, "No providers registered")

	if registry != nil {
		results := registry.HealthAll(context.Background())
		if len(results) > 0 {
			fmt.Fprintf(w, "\n🏥 Health Check\n")
			for i, h := range results {
				msg := ""
				if h.Message != "" {
					msg = " (" + h.Message + ")"
				}
				fmt.Fprintf(w, "   %s %s %s: %s%s\n", treePrefix(i, len(results)), healthStatusIcon(h.Status),
					h.Name, strings.ToLower(string(h.Status)), msg)
			}

			healthy := 0
			for _, h := range results {
				if h.Status == component.StatusHealthy {
					healthy++
				}
			}
			if healthy == len(results) {
				fmt.Fprintf(w, "\n✅ All components healthy (%d/%d)\n", healthy, len(results))
			} else {
				fmt.Fprintf(w, "\n⚠️  Some components have issues (%d/%d healthy)\n", healthy, len(results))
			}
		}
	}
	fmt.Fprintf(w, "\n")
}

func printTree(w io.Writer, items []string, empty string) {
	if len(items) == 0 {
		fmt.Fprintf(w, "   └── %s\n", empty)
		return
	}
	for i, item := range items {
		fmt.Fprintf(w, "   %s %s\n", treePrefix(i, len(items)), item)
	}
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
