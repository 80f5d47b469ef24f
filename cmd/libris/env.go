package main

import (
	"fmt"
	"os"

	"github.com/hollowaylabs/libris/internal/config"
	"github.com/hollowaylabs/libris/internal/profile"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(envCmd)
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Show the resolved serving environment",
	Long: `Detect the runtime environment and print the resolved serving
configuration.

Tier detection prefers the memory_gb hint from the library config,
then the system memory reading. Without either, static hosting
resolves to the low tier and everything else to medium. Host and
model overrides apply in order: environment, library config, global
config.

Works outside a library; library overrides then do not apply.`,
	RunE: runEnv,
}

// EnvResult is the response for the env command.
type EnvResult struct {
	DeviceMemoryGB float64 `json:"device_memory_gb,omitempty"`
	*profile.EnvironmentConfig
}

func runEnv(cmd *cobra.Command, args []string) error {
	cfg := &config.Config{}
	if cwd, err := os.Getwd(); err == nil {
		if root, err := config.ResolveLibrary(cwd); err == nil {
			cfg = mustLoadConfig(root)
		}
	}

	host := effectiveHost(cfg)
	signals := buildSignals(cfg, host)
	env := resolveEnvironment(cfg)

	result := EnvResult{EnvironmentConfig: env}
	if mem, ok := signals.DeviceMemoryGB(); ok {
		result.DeviceMemoryGB = mem
	}

	if humanOutput {
		printEnvHuman(result)
	} else {
		outputJSON(result)
	}

	return nil
}

func printEnvHuman(result EnvResult) {
	env := result.EnvironmentConfig
	fmt.Printf("Tier:      %s\n", env.Performance.Tier)
	fmt.Printf("Hosting:   %s\n", env.Performance.Hosting)
	if result.DeviceMemoryGB > 0 {
		fmt.Printf("Memory:    %.1f GB\n", result.DeviceMemoryGB)
	}
	fmt.Printf("Endpoint:  %s\n", env.Serving.BaseURL)
	fmt.Printf("Model:     %s\n", env.Serving.Model)
	fmt.Printf("Tokens:    %d\n", env.Serving.MaxTokens)
	fmt.Printf("Retries:   %d (delay %s)\n", env.Serving.RetryCount, env.Serving.RetryDelay)
	fmt.Printf("History:   %d turns\n", env.Chat.MaxHistory)
	fmt.Printf("Timeout:   %s\n", env.Performance.RequestTimeout)
}
