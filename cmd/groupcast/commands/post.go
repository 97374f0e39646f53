package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"groupcast/internal/artifacts"
	"groupcast/internal/browser"
	"groupcast/internal/config"
	"groupcast/internal/keywords"
	"groupcast/internal/logger"
	"groupcast/internal/runner"
	"groupcast/internal/target"
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Post a message to every group in the links file",
	Long: `Post logs into Facebook once, then opens each group page from the
links file in turn, finds the composer, types the message, and submits it.

Discovery is heuristic: a scored scan over the page's interactive elements,
with per-target selector overrides and static fallback selectors for when
the scan comes up empty.

Examples:
  # The common case
  groupcast post --links-file links.txt --message-file message.txt

  # Preview targets without starting a browser
  groupcast post --dry-run

  # Report discovered elements without typing or posting
  groupcast post --inspect

  # Type the message but let the operator press Post themselves
  groupcast post --manual-post`,
	RunE: runPost,
}

func init() {
	rootCmd.AddCommand(postCmd)

	flags := postCmd.Flags()

	// Inputs
	flags.StringP("links-file", "l", "links.txt", "file of group URLs, one per line, with optional selector overrides")
	flags.StringP("message", "m", "", "message text to post")
	flags.String("message-file", "message.txt", "file containing the message text")
	flags.String("keywords-file", "", "YAML file replacing the built-in composer/submit keyword lists")

	// Credentials (or FACEBOOK_EMAIL / FACEBOOK_PASSWORD, or a .env file)
	flags.String("email", "", "Facebook account email")
	flags.String("password", "", "Facebook account password")

	// Modes
	flags.Bool("dry-run", false, "list the targets that would be posted to and exit")
	flags.Bool("inspect", false, "report discovered elements per target without posting")
	flags.Bool("manual-post", false, "type the message, then wait for the operator to submit")

	// Browser settings
	flags.Bool("headless", true, "run the browser without a window")
	flags.Bool("stealth", true, "hide common automation tells from the page")
	flags.String("lang", "en-US", "browser language")
	flags.String("user-agent", "", "override the browser user agent")
	flags.Duration("timeout", 25*time.Second, "per-operation page timeout")
	flags.Duration("login-wait", 30*time.Second, "wait after submitting credentials")

	// Pacing
	flags.Int("limit", 40, "maximum number of targets to process")
	flags.Duration("delay-min", 4*time.Second, "minimum pause between targets")
	flags.Duration("delay-max", 9*time.Second, "maximum pause between targets")
	flags.Duration("prepost-wait", 30*time.Second, "pause between typing and submitting")

	// Discovery overrides
	flags.String("composer-selector", "", "global composer selector override (CSS or XPath)")
	flags.String("post-button-selector", "", "global post button selector override (CSS or XPath)")

	// Artifacts
	flags.String("out-dir", "artifacts", "directory for failure screenshots and page captures")
	flags.Bool("artifacts", true, "save page captures when a target fails")

	_ = viper.BindPFlag("email", flags.Lookup("email"))
	_ = viper.BindPFlag("password", flags.Lookup("password"))
	_ = viper.BindPFlag("headless", flags.Lookup("headless"))
}

func runPost(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := postConfig(cmd)

	if err := cfg.ResolveMessage(); err != nil {
		logError("%v", err)
		return configError(err)
	}
	if err := cfg.Validate(); err != nil {
		logError("%v", err)
		return configError(err)
	}

	kw := keywords.Default()
	if cfg.KeywordsFile != "" {
		var err error
		if kw, err = keywords.Load(cfg.KeywordsFile); err != nil {
			logError("%v", err)
			return configError(err)
		}
	}

	targets, err := target.ReadFile(cfg.LinksFile, cfg.Limit)
	if err != nil {
		logError("%v", err)
		return configError(err)
	}
	if len(targets) == 0 {
		err := fmt.Errorf("no valid targets in %s", cfg.LinksFile)
		logError("%v", err)
		return runtimeError(err)
	}
	logger.Debug("targets loaded", "count", len(targets), "file", cfg.LinksFile)

	if cfg.DryRun {
		printPlan(os.Stdout, targets)
		return nil
	}

	saveArtifacts, _ := cmd.Flags().GetBool("artifacts")
	store := artifacts.New(cfg.OutDir, saveArtifacts)

	sess, err := browser.New(ctx, browser.Config{
		Email:     cfg.Email,
		Password:  cfg.Password,
		Headless:  cfg.Headless,
		Stealth:   cfg.Stealth,
		Lang:      cfg.Lang,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout,
		LoginWait: cfg.LoginWait,
	})
	if err != nil {
		logError("%v", err)
		return runtimeError(err)
	}
	defer sess.Close()

	r := runner.New(runner.Config{
		Message:          cfg.Message,
		Inspect:          cfg.Inspect,
		ManualPost:       cfg.ManualPost,
		DelayMin:         cfg.DelayMin,
		DelayMax:         cfg.DelayMax,
		PrepostWait:      cfg.PrepostWait,
		ComposerSelector: cfg.ComposerSelector,
		SubmitSelector:   cfg.SubmitSelector,
	}, kw, runner.WrapSession(sess), store, os.Stdin, os.Stdout)

	sum, err := r.Run(ctx, targets)
	if err != nil {
		if errors.Is(err, browser.ErrLoginFailed) {
			logError("%v", err)
			return runtimeError(err)
		}
		logError("run aborted: %v", err)
		return runtimeError(err)
	}

	if cfg.Inspect {
		logInfo("done: %d attempted, %d inspected, %d failed (no posts attempted)",
			sum.Attempted, sum.Inspected, sum.Failed)
		return nil
	}
	logInfo("done: %d attempted, %d posted, %d failed", sum.Attempted, sum.Posted, sum.Failed)
	return nil
}

// postConfig assembles the run configuration from flags, environment, and
// config file. Credentials come through viper so FACEBOOK_EMAIL and
// FACEBOOK_PASSWORD (including via .env) are picked up.
func postConfig(cmd *cobra.Command) *config.Config {
	flags := cmd.Flags()
	cfg := config.Default()

	cfg.Email = viper.GetString("email")
	cfg.Password = viper.GetString("password")
	cfg.Headless = viper.GetBool("headless")
	cfg.Debug = viper.GetBool("debug")

	cfg.LinksFile, _ = flags.GetString("links-file")
	cfg.Message, _ = flags.GetString("message")
	cfg.MessageFile, _ = flags.GetString("message-file")
	cfg.KeywordsFile, _ = flags.GetString("keywords-file")

	cfg.DryRun, _ = flags.GetBool("dry-run")
	cfg.Inspect, _ = flags.GetBool("inspect")
	cfg.ManualPost, _ = flags.GetBool("manual-post")

	cfg.Stealth, _ = flags.GetBool("stealth")
	cfg.Lang, _ = flags.GetString("lang")
	cfg.UserAgent, _ = flags.GetString("user-agent")
	cfg.Timeout, _ = flags.GetDuration("timeout")
	cfg.LoginWait, _ = flags.GetDuration("login-wait")

	cfg.Limit, _ = flags.GetInt("limit")
	cfg.DelayMin, _ = flags.GetDuration("delay-min")
	cfg.DelayMax, _ = flags.GetDuration("delay-max")
	cfg.PrepostWait, _ = flags.GetDuration("prepost-wait")

	cfg.ComposerSelector, _ = flags.GetString("composer-selector")
	cfg.SubmitSelector, _ = flags.GetString("post-button-selector")

	cfg.OutDir, _ = flags.GetString("out-dir")
	return &cfg
}

// printPlan lists the targets a run would process, one per line.
func printPlan(w io.Writer, targets []target.Target) {
	fmt.Fprintf(w, "dry run: %d target(s)\n", len(targets))
	for i, t := range targets {
		fmt.Fprintf(w, "%3d. %s", i+1, t.URL)
		if t.ComposerSelector != "" {
			fmt.Fprintf(w, "  composer=%s", t.ComposerSelector)
		}
		if t.SubmitSelector != "" {
			fmt.Fprintf(w, "  post-button=%s", t.SubmitSelector)
		}
		fmt.Fprintln(w)
	}
}
