// Package commands implements the CLI commands for groupcast.
package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"groupcast/internal/version"
)

// ExitError carries a specific process exit code up to main. Configuration
// errors exit with 2; runtime failures exit with 1.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

func configError(err error) error  { return &ExitError{Code: 2, Err: err} }
func runtimeError(err error) error { return &ExitError{Code: 1, Err: err} }

var rootCmd = &cobra.Command{
	Use:     "groupcast",
	Short:   "Post a message to a list of Facebook groups",
	Version: version.String(),
	Long: `Groupcast logs into Facebook once and posts the same message to every
group page listed in a links file, locating the composer and the post
button heuristically so layout and language changes don't break it.

Examples:
  # Post message.txt to every group in links.txt
  groupcast post --links-file links.txt --message-file message.txt

  # Preview which groups would be targeted, without a browser
  groupcast post --dry-run

  # Report which elements discovery finds on each page
  groupcast post --inspect

  # Collect group links from a profile's groups page
  groupcast collect --seed "https://www.facebook.com/profile/groups" -o links.txt`,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.groupcast.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func initConfig() {
	// A local .env is the documented place for credentials; absence is fine.
	_ = godotenv.Load()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".groupcast")
		viper.SetConfigType("yaml")
	}

	// Environment variables
	viper.SetEnvPrefix("GROUPCAST")
	viper.AutomaticEnv()

	// Credentials use the conventional unprefixed names.
	_ = viper.BindEnv("email", "FACEBOOK_EMAIL")
	_ = viper.BindEnv("password", "FACEBOOK_PASSWORD")
	_ = viper.BindEnv("headless", "HEADLESS")

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// logInfo prints an info message to stderr (unless quiet mode).
func logInfo(format string, args ...any) {
	if !viper.GetBool("quiet") {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
