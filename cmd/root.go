package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/espbox/internal/logging"
)

var (
	verbose     bool
	jsonOutput  bool
	projectFlag string
	workdirFlag string
	nameFlag    string
	imageFlag   string
	deviceFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "espbox",
	Short: "Containerized ESP32 Rust development environment",
	Long: `espbox builds, flashes and monitors ESP32 Rust firmware inside a
container that carries the Xtensa toolchain, so the host needs nothing but
docker or podman.

The project root is mounted at /project. The sandbox is created on first
use, bound to one serial device, and stamped with espbox's compatibility
version. After an espbox upgrade that changes the sandbox layout, commands
refuse to run until the sandbox is recreated with:

  espbox clean --container`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(verbose, jsonOutput, os.Stderr)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	flags.BoolVar(&jsonOutput, "json", false, "Output logs in JSON format")
	flags.StringVarP(&projectFlag, "project", "p", "", "Project root (default: nearest espbox.toml or Cargo.toml)")
	flags.StringVarP(&workdirFlag, "workdir", "w", "", "Working directory inside the project (default: current directory)")
	flags.StringVarP(&nameFlag, "name", "n", "", "Sandbox name (default: from espbox.toml, else espbox)")
	flags.StringVarP(&imageFlag, "image", "i", "", "Sandbox image (default: from espbox.toml, else the idf-rust image)")
	flags.StringVarP(&deviceFlag, "device", "d", "", "Serial device passed to the sandbox")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Helper aliases for user-facing output (delegates to logging package)
var (
	logInfo    = logging.UserInfo
	logSuccess = logging.UserSuccess
	logWarning = logging.UserWarning
)
