package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fennwick/pageturner/internal/engine"
	"github.com/fennwick/pageturner/internal/event"
	"github.com/fennwick/pageturner/internal/session"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a capture session in the foreground",
	Long: `Run starts a capture session with the effective configuration (recent
config, optional template, then flag overrides) and steps it until the
termination policy fires or an interrupt arrives. An interrupt requests a
cooperative stop at the next step boundary; the step in flight completes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := repository()
		template, _ := cmd.Flags().GetString("template")
		cfg, err := resolveConfig(cmd, repo, template)
		if err != nil {
			return err
		}

		ctrl := engine.Build(cfg, runtime, printEvent)
		sessionName, _ := cmd.Flags().GetString("name")
		if err := ctrl.Start(sessionName); err != nil {
			return err
		}
		if err := repo.SaveRecent(cfg); err != nil {
			slog.Warn("saving recent config", "error", err)
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		go func() {
			<-sigCh
			slog.Info("interrupt received, stopping after current step")
			ctrl.RequestStop()
		}()

		if err := ctrl.Run(time.Duration(runtime.PollInterval * float64(time.Second))); err != nil {
			return err
		}
		status := ctrl.Status()
		fmt.Printf("Session %s: %d captures in %s\n",
			status.SessionID, status.CompletedSteps, status.SessionDir)
		return nil
	},
}

// printEvent renders the event stream for a terminal user.
func printEvent(ev event.Event) {
	switch ev.Kind {
	case event.KindProgress:
		fmt.Printf("[%s] %s -> %s\n", ev.Timestamp.Format("15:04:05"), ev.Message, ev.ImagePath)
	case event.KindWarning:
		fmt.Printf("[%s] warning: %s\n", ev.Timestamp.Format("15:04:05"), ev.Message)
	case event.KindError:
		fmt.Printf("[%s] error: %s\n", ev.Timestamp.Format("15:04:05"), ev.Message)
	case event.KindStateChange:
		if ev.State == string(session.StateStopped) || ev.State == string(session.StateError) {
			fmt.Printf("[%s] session %s\n", ev.Timestamp.Format("15:04:05"), ev.State)
		}
	}
}

func init() {
	addConfigFlags(runCmd)
	runCmd.Flags().String("template", "", "start from a saved template instead of the recent config")
	runCmd.Flags().String("name", "", "explicit session directory name")
	rootCmd.AddCommand(runCmd)
}
