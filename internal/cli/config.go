package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ppiankov/persona/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage persona configuration",
	Long: `Manage persona configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (PERSONA_*)
3. Config file (~/.persona/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after merging defaults, the config file and environment variables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if configFile := viper.ConfigFileUsed(); configFile != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "No configuration file found (using defaults)\n\n")
		}

		return writeConfigView(cmd.OutOrStdout(), cfg)
	},
}

// writeConfigView prints cfg as YAML framed by the precedence notes
func writeConfigView(w io.Writer, cfg *model.Config) error {
	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	fmt.Fprintln(w, "  Current Configuration")
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	fmt.Fprintln(w)
	fmt.Fprintln(w, string(yamlData))
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration hierarchy (highest to lowest priority):")
	fmt.Fprintln(w, "  1. CLI flags")
	fmt.Fprintln(w, "  2. Environment variables (PERSONA_*, OPENAI_API_KEY, ANTHROPIC_API_KEY, OLLAMA_BASE_URL)")
	fmt.Fprintln(w, "  3. Config file (~/.persona/config.yaml)")
	fmt.Fprintln(w, "  4. Defaults")
	fmt.Fprintln(w)
	return nil
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.persona/config.yaml with all available options.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("error finding home directory: %w", err)
		}

		configPath, err := writeDefaultConfig(configDir(home))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Created default configuration: %s\n", configPath)
		fmt.Fprintf(out, "\nTo view the configuration:\n")
		fmt.Fprintf(out, "  persona config show\n")
		fmt.Fprintf(out, "\nTo customize, edit the file with your preferred editor:\n")
		fmt.Fprintf(out, "  $EDITOR %s\n", configPath)
		fmt.Fprintf(out, "\n")
		return nil
	},
}

// writeDefaultConfig creates dir/config.yaml from the defaults.
// An existing file is never overwritten.
func writeDefaultConfig(dir string) (configPath string, err error) {
	configPath = filepath.Join(dir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s\nUse 'persona config show' to view it, or delete it first to recreate", configPath)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating config directory: %w", err)
	}

	yamlData, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("error marshaling config: %w", err)
	}

	f, err := os.Create(configPath)
	if err != nil {
		return "", fmt.Errorf("error creating config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close config file: %w", closeErr)
		}
	}()

	printf := func(format string, a ...any) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(f, format, a...)
	}

	printf("# Persona Configuration File\n")
	printf("#\n")
	printf("# Configuration hierarchy (highest to lowest priority):\n")
	printf("#   1. CLI flags\n")
	printf("#   2. Environment variables (PERSONA_*)\n")
	printf("#   3. This config file\n")
	printf("#   4. Built-in defaults\n\n")
	printf("%s", yamlData)
	printf("\n# API Keys (recommended to use environment variables instead):\n")
	printf("#   export OPENAI_API_KEY=sk-...\n")
	printf("#   export ANTHROPIC_API_KEY=sk-ant-...\n")
	printf("#   export OLLAMA_BASE_URL=http://localhost:11434\n")

	if err != nil {
		return "", fmt.Errorf("error writing config: %w", err)
	}
	return configPath, nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
