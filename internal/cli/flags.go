package cli

import (
	"github.com/spf13/cobra"

	"github.com/fennwick/pageturner/internal/config"
)

// addConfigFlags registers the full capture-config surface on cmd. Values
// only override the loaded config when the flag was set explicitly.
func addConfigFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int("monitor", 1, "1-based monitor index to capture from")
	f.String("mode", string(config.ActiveWindow), "capture mode: active-window or full-monitor")
	f.String("direction", string(config.Right), "advance direction: left or right")
	f.Int("count", 100, "number of steps in fixed-count mode")
	f.Float64("delay", 0.5, "seconds to wait between steps in fixed wait mode")
	f.String("order", string(config.ShotFirst), "process order: shot-first or key-first")
	f.String("wait-mode", string(config.WaitFixed), "wait mode: fixed or wait-change")
	f.Float64("wait-timeout", 5.0, "change-detection timeout in seconds")
	f.Float64("min-overlap", 0.7, "minimum window/monitor overlap ratio in [0,1]")
	f.String("output-dir", "", "base output directory")
	f.String("format", string(config.PNG), "image format: png or jpg")
	f.Int("quality", 90, "jpeg quality (1-100)")
	f.String("session-mode", string(config.FixedCount), "termination policy: fixed-count, time-limit, or manual")
	f.Int("time-limit", 60, "session time limit in seconds (time-limit mode)")
	f.Bool("no-subdir", false, "write into the output directory directly instead of a timestamped subdirectory")
	f.String("prefix", "session", "session subdirectory name prefix")
}

// applyConfigFlags overlays explicitly set flags onto cfg.
func applyConfigFlags(cmd *cobra.Command, cfg *config.App) {
	f := cmd.Flags()
	if f.Changed("monitor") {
		cfg.Monitor, _ = f.GetInt("monitor")
	}
	if f.Changed("mode") {
		v, _ := f.GetString("mode")
		cfg.CaptureMode = config.CaptureMode(v)
	}
	if f.Changed("direction") {
		v, _ := f.GetString("direction")
		cfg.Direction = config.Direction(v)
	}
	if f.Changed("count") {
		cfg.Count, _ = f.GetInt("count")
	}
	if f.Changed("delay") {
		cfg.DelaySeconds, _ = f.GetFloat64("delay")
	}
	if f.Changed("order") {
		v, _ := f.GetString("order")
		cfg.ProcessOrder = config.ProcessOrder(v)
	}
	if f.Changed("wait-mode") {
		v, _ := f.GetString("wait-mode")
		cfg.WaitMode = config.WaitMode(v)
	}
	if f.Changed("wait-timeout") {
		cfg.WaitTimeout, _ = f.GetFloat64("wait-timeout")
	}
	if f.Changed("min-overlap") {
		cfg.MinOverlap, _ = f.GetFloat64("min-overlap")
	}
	if f.Changed("output-dir") {
		cfg.OutputDir, _ = f.GetString("output-dir")
	}
	if f.Changed("format") {
		v, _ := f.GetString("format")
		cfg.ImageFormat = config.ImageFormat(v)
	}
	if f.Changed("quality") {
		cfg.JPEGQuality, _ = f.GetInt("quality")
	}
	if f.Changed("session-mode") {
		v, _ := f.GetString("session-mode")
		cfg.SessionMode = config.SessionMode(v)
	}
	if f.Changed("time-limit") {
		cfg.TimeLimitSeconds, _ = f.GetInt("time-limit")
	}
	if f.Changed("no-subdir") {
		v, _ := f.GetBool("no-subdir")
		cfg.AutoSessionDir = !v
	}
	if f.Changed("prefix") {
		cfg.SessionPrefix, _ = f.GetString("prefix")
	}
}

// resolveConfig builds the effective config for a command: recent config from
// the repository (defaults when none), an optional named template, then
// explicit flag overrides.
func resolveConfig(cmd *cobra.Command, repo *config.Repository, template string) (config.App, error) {
	cfg, err := repo.LoadRecent()
	if err != nil {
		return config.App{}, err
	}
	if template != "" {
		templates, err := repo.ListTemplates()
		if err != nil {
			return config.App{}, err
		}
		tcfg, ok := templates[template]
		if !ok {
			return config.App{}, config.ErrUnknownTemplate(template)
		}
		cfg = tcfg
	}
	applyConfigFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return config.App{}, err
	}
	return cfg, nil
}
