package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"groupcast/internal/logger"
	"groupcast/internal/target"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect group links from a page into a links file",
	Long: `Collect fetches a seed page (for example a profile's groups listing)
and writes every facebook.com group link found on it to a links file, ready
for the post command.

Only canonical group page URLs are kept; permalinks to posts, members, or
media under a group are skipped.`,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)

	flags := collectCmd.Flags()
	flags.String("seed", "", "URL of the page to collect group links from (required)")
	flags.StringP("output", "o", "links.txt", "links file to write")
	flags.Int("limit", 0, "maximum number of links to collect (0=unlimited)")
	flags.Duration("timeout", 30*time.Second, "request timeout")
	flags.String("user-agent", "", "override the request user agent")

	_ = collectCmd.MarkFlagRequired("seed")
}

func runCollect(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	flags := cmd.Flags()
	seed, _ := flags.GetString("seed")
	output, _ := flags.GetString("output")
	limit, _ := flags.GetInt("limit")
	timeout, _ := flags.GetDuration("timeout")
	userAgent, _ := flags.GetString("user-agent")

	links, err := target.Collect(seed, target.CollectConfig{
		UserAgent: userAgent,
		Timeout:   timeout,
		Limit:     limit,
	})
	if err != nil {
		logError("%v", err)
		return runtimeError(err)
	}
	if len(links) == 0 {
		err := fmt.Errorf("no group links found at %s", seed)
		logError("%v", err)
		return runtimeError(err)
	}

	if err := target.WriteFile(output, links); err != nil {
		logError("%v", err)
		return runtimeError(err)
	}

	logInfo("wrote %d link(s) to %s", len(links), output)
	return nil
}
