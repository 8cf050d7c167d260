package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/ppiankov/persona/internal/logger"
	"github.com/ppiankov/persona/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Version is the persona release reported by `persona version`
const Version = "0.1.0"

// envPrefix namespaces config overrides, e.g. PERSONA_LLM_PROVIDER
const envPrefix = "PERSONA"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "persona",
	Short: "Persona - build a cited user persona from a Reddit profile",
	Long: `Persona reads the recent posts and comments of a Reddit user and
asks a text generator to describe the author: demographics, interests,
personality traits, values, goals, pain points and communication style.

Every attribute is traced back to the items that mention it, so each
claim in the persona comes with the permalinks that support it.

When no generator is configured or its reply cannot be used, persona
still writes a complete profile built from neutral placeholder values.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of persona.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "persona v%s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.persona/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if err := loadEnvFiles(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading env file: %v\n", err)
	}

	if err := setDefaults(viper.GetViper(), model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading defaults: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(configDir(home))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// PERSONA_LLM_MODEL overrides llm.model, and so on
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadEnvFiles loads API keys and PERSONA_* overrides from dotenv files.
// ENV_FILE names a single file; otherwise .env.local then .env are read.
// Variables already set in the environment are never replaced.
func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

func configDir(home string) string {
	return filepath.Join(home, ".persona")
}

// setDefaults registers every field of cfg as a viper default so that
// AutomaticEnv can resolve nested keys during Unmarshal.
func setDefaults(v *viper.Viper, cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}

	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("unmarshal defaults: %w", err)
	}

	walkDefaults(v, "", tree)

	// Secrets and optional keys are omitted from YAML but still bindable
	for _, key := range []string{"llm.api_key", "llm.base_url", "http.http_proxy", "http.https_proxy", "http.no_proxy"} {
		if !v.IsSet(key) {
			v.SetDefault(key, "")
		}
	}
	return nil
}

func walkDefaults(v *viper.Viper, prefix string, tree map[string]any) {
	for key, val := range tree {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if child, ok := val.(map[string]any); ok {
			walkDefaults(v, full, child)
			continue
		}
		v.SetDefault(full, val)
	}
}

// loadConfig resolves defaults, config file and environment into a Config
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// applyProviderEnv fills generator credentials from the provider's conventional
// environment variables when the config does not carry them. Run it after
// flags so that --llm-provider picks the right key.
func applyProviderEnv(cfg *model.Config) {
	switch strings.ToLower(cfg.LLM.Provider) {
	case "openai":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	case "anthropic", "claude":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	case "ollama":
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = baseURL
		}
	case "none":
		cfg.LLM.Provider = ""
	}
}

// newLogger builds the structured logger described by cfg
func newLogger(cfg *model.Config) (logger.Logger, error) {
	level := cfg.Logging.Level
	if cfg.Output.Verbose {
		level = "debug"
	}
	return logger.New(logger.Config{
		Level:       level,
		Development: cfg.Logging.Development,
	})
}
