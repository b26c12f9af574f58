package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	json "github.com/goccy/go-json"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/spf13/cobra"

	"github.com/cosyframework/cosy/config"
	"github.com/cosyframework/cosy/util"
	"github.com/cosyframework/cosy/version"
)

// importantEnvVars are reported by `cosy env` when set.
var importantEnvVars = []string{
	config.DefaultEnvKey,
	"DEBUG",
	"PORT",
	"HOST",
	"DATABASE_URL",
	"LOG_LEVEL",
	"GOMAXPROCS",
	"GOMEMLIMIT",
}

// EnvInfo is the report printed by `cosy env`.
type EnvInfo struct {
	System      SystemInfo        `json:"system"`
	Runtime     RuntimeInfo       `json:"runtime"`
	Framework   FrameworkInfo     `json:"framework"`
	Environment map[string]string `json:"environment"`
	Memory      MemoryInfo        `json:"memory"`
}

type SystemInfo struct {
	Platform string `json:"platform"`
	Arch     string `json:"arch"`
	Release  string `json:"release"`
	CPUCores int    `json:"cpu_cores"`
	CPUModel string `json:"cpu_model"`
}

type RuntimeInfo struct {
	GoVersion  string `json:"go_version"`
	Compiler   string `json:"compiler"`
	GOMAXPROCS int    `json:"gomaxprocs"`
	Goroutines int    `json:"goroutines"`
	Executable string `json:"executable"`
}

type FrameworkInfo struct {
	Name             string    `json:"name"`
	Version          string    `json:"version"`
	Environment      string    `json:"environment"`
	WorkingDirectory string    `json:"working_directory"`
	StartTime        time.Time `json:"start_time"`
}

type MemoryInfo struct {
	System  SystemMemory  `json:"system"`
	Process ProcessMemory `json:"process"`
}

type SystemMemory struct {
	Total        uint64  `json:"total"`
	Free         uint64  `json:"free"`
	Used         uint64  `json:"used"`
	UsagePercent float64 `json:"usage_percent"`
}

type ProcessMemory struct {
	Sys       uint64 `json:"sys"`
	HeapAlloc uint64 `json:"heap_alloc"`
	HeapSys   uint64 `json:"heap_sys"`
	NumGC     uint32 `json:"num_gc"`
}

func newEnvCmd() *cobra.Command {
	var simple, asJSON bool

	cmd := &cobra.Command{
		Use:   "env",
		Short: "Display environment and system information",
		Long: `Display the environment the application would run in: operating system
and hardware, Go runtime, framework version, important environment
variables (credentials masked) and memory usage.`,
		Example: `  cosy env            full report
  cosy env --simple   one line per area
  cosy env --json     machine-readable report`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := collectEnvInfo(cmd.Context(), os.LookupEnv)
			out := cmd.OutOrStdout()
			switch {
			case asJSON:
				data, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			case simple:
				renderSimple(out, info)
			default:
				renderDetailed(out, info)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&simple, "simple", "s", false, "Show simplified output")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output as JSON")
	return cmd
}

// collectEnvInfo gathers the report. Host probes that fail leave their
// fields empty.
func collectEnvInfo(ctx context.Context, lookup func(string) (string, bool)) EnvInfo {
	if ctx == nil {
		ctx = context.Background()
	}
	info := EnvInfo{
		System: SystemInfo{
			Platform: runtime.GOOS,
			Arch:     runtime.GOARCH,
			CPUCores: runtime.NumCPU(),
		},
		Runtime: RuntimeInfo{
			GoVersion:  runtime.Version(),
			Compiler:   runtime.Compiler,
			GOMAXPROCS: runtime.GOMAXPROCS(0),
			Goroutines: runtime.NumGoroutine(),
		},
		Framework: FrameworkInfo{
			Name:        version.Framework,
			Version:     version.Get().Short(),
			Environment: appEnv(lookup),
			StartTime:   time.Now().UTC(),
		},
		Environment: importantEnv(lookup),
	}

	if release, err := host.KernelVersionWithContext(ctx); err == nil {
		info.System.Release = release
	}
	if cpus, err := cpu.InfoWithContext(ctx); err == nil && len(cpus) > 0 {
		info.System.CPUModel = cpus[0].ModelName
	}
	if exe, err := os.Executable(); err == nil {
		info.Runtime.Executable = exe
	}
	if wd, err := os.Getwd(); err == nil {
		info.Framework.WorkingDirectory = wd
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info.Memory.System = SystemMemory{
			Total:        vm.Total,
			Free:         vm.Available,
			Used:         vm.Used,
			UsagePercent: vm.UsedPercent,
		}
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	info.Memory.Process = ProcessMemory{
		Sys:       ms.Sys,
		HeapAlloc: ms.HeapAlloc,
		HeapSys:   ms.HeapSys,
		NumGC:     ms.NumGC,
	}
	return info
}

func appEnv(lookup func(string) (string, bool)) string {
	v, _ := lookup(config.DefaultEnvKey)
	return config.StaticEnvironment(v).Current()
}

// importantEnv returns the set variables from importantEnvVars with
// credentials masked.
func importantEnv(lookup func(string) (string, bool)) map[string]string {
	env := make(map[string]string)
	for _, key := range importantEnvVars {
		value, ok := lookup(key)
		if !ok {
			continue
		}
		env[key] = maskEnvValue(key, value)
	}
	return env
}

func maskEnvValue(key, value string) string {
	if util.IsSecretKey(key) {
		return util.MaskSecret(value, 4)
	}
	if strings.HasSuffix(strings.ToUpper(key), "_URL") {
		if u, err := url.Parse(value); err == nil && u.User != nil {
			return u.Redacted()
		}
	}
	return value
}

func renderDetailed(w io.Writer, info EnvInfo) {
	fmt.Fprintln(w)
	headerColor.Fprintln(w, "📊 Environment")
	fmt.Fprintln(w)

	section(w, "🖥️  System")
	field(w, "OS", info.System.Platform+" "+info.System.Arch)
	field(w, "Release", info.System.Release)
	field(w, "CPU cores", fmt.Sprintf("%d", info.System.CPUCores))
	field(w, "CPU model", info.System.CPUModel)
	fmt.Fprintln(w)

	section(w, "🐹 Go runtime")
	field(w, "Version", info.Runtime.GoVersion)
	field(w, "Compiler", info.Runtime.Compiler)
	field(w, "GOMAXPROCS", fmt.Sprintf("%d", info.Runtime.GOMAXPROCS))
	field(w, "Executable", info.Runtime.Executable)
	fmt.Fprintln(w)

	section(w, "🚀 Framework")
	field(w, "Version", info.Framework.Name+" "+info.Framework.Version)
	field(w, "Environment", info.Framework.Environment)
	field(w, "Working dir", info.Framework.WorkingDirectory)
	field(w, "Start time", info.Framework.StartTime.Format(time.RFC3339))
	fmt.Fprintln(w)

	section(w, "🔧 Environment variables")
	if len(info.Environment) == 0 {
		warningColor.Fprintln(w, "   (no important variables set)")
	}
	for _, key := range importantEnvVars {
		if v, ok := info.Environment[key]; ok {
			fmt.Fprintf(w, "   %-15s %s\n", key, v)
		}
	}
	fmt.Fprintln(w)

	section(w, "💾 Memory")
	sys := info.Memory.System
	field(w, "System total", humanize.IBytes(sys.Total))
	field(w, "System free", humanize.IBytes(sys.Free))
	field(w, "System used", fmt.Sprintf("%s (%.1f%%)", humanize.IBytes(sys.Used), sys.UsagePercent))
	field(w, "Process", humanize.IBytes(info.Memory.Process.Sys))
	field(w, "Heap", humanize.IBytes(info.Memory.Process.HeapAlloc)+" / "+humanize.IBytes(info.Memory.Process.HeapSys))
	fmt.Fprintln(w)
}

func renderSimple(w io.Writer, info EnvInfo) {
	fmt.Fprintln(w)
	headerColor.Fprintln(w, "📊 Environment overview")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "🖥️  System:      %s %s\n", info.System.Platform, info.System.Arch)
	fmt.Fprintf(w, "🐹 Go:          %s\n", info.Runtime.GoVersion)
	fmt.Fprintf(w, "🚀 Framework:   %s %s (%s)\n", info.Framework.Name, info.Framework.Version, info.Framework.Environment)
	fmt.Fprintf(w, "💾 Memory:      %.1f%% (%s/%s)\n", info.Memory.System.UsagePercent,
		humanize.IBytes(info.Memory.System.Used), humanize.IBytes(info.Memory.System.Total))
	fmt.Fprintf(w, "📁 Working dir: %s\n", info.Framework.WorkingDirectory)
	fmt.Fprintln(w)
}

func section(w io.Writer, title string) {
	headerColor.Fprintln(w, title)
}

func field(w io.Writer, label, value string) {
	if value == "" {
		value = "unknown"
	}
	labelColor.Fprintf(w, "   %-14s", label+":")
	fmt.Fprintf(w, " %s\n", value)
}
