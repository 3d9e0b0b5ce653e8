package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"scenerender/internal/bootstrap"
	"scenerender/internal/domain"
	"scenerender/internal/http/handlers"
	"scenerender/internal/infra"
	"scenerender/internal/infra/credentials"
	"scenerender/internal/styles"
)

// NewCLI builds the scenectl command tree. Results go to stdout, logs to stderr.
func NewCLI(stdout, stderr io.Writer) *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "scenectl",
		Short: "Render furniture photos into styled interior scenes",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SilenceUsage = true
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log provider traffic to stderr")

	logger := func() zerolog.Logger {
		level := zerolog.WarnLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		return zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}).
			Level(level).
			With().
			Timestamp().
			Str("cmd", "scenectl").
			Logger()
	}

	stylesCmd := &cobra.Command{
		Use:   "styles",
		Args:  cobra.NoArgs,
		Short: "List the available scene styles",
		RunE: func(cmd *cobra.Command, args []string) error {
			type entry struct {
				Value  string             `json:"value"`
				Label  string             `json:"label"`
				Config domain.StylePreset `json:"config"`
			}
			var out []entry
			for _, p := range styles.List() {
				out = append(out, entry{Value: p.Key, Label: styles.Label(p.Key), Config: p})
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	var (
		renderStyle  string
		renderImage  string
		renderLocale string
	)
	renderCmd := &cobra.Command{
		Use:   "render",
		Args:  cobra.NoArgs,
		Short: "Render a local image and print the scene as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := infra.LoadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			rt, err := bootstrap.New(ctx, cfg, logger())
			if err != nil {
				return err
			}
			defer rt.Close()

			upload, err := rt.Ingestor.FromFile(ctx, renderImage, renderStyle)
			if err != nil {
				return err
			}
			defer upload.Release()

			locale := renderLocale
			if locale == "" {
				locale = cfg.DefaultLocale
			}
			res, err := rt.Service.Render(ctx, upload.Request(locale, "cli-"+time.Now().UTC().Format("20060102T150405")))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), handlers.NewGenerateResponse(res))
		},
	}
	renderCmd.Flags().StringVarP(&renderStyle, "style", "s", "", "Scene style key (see `scenectl styles`)")
	renderCmd.Flags().StringVarP(&renderImage, "image", "i", "", "Path to the furniture image")
	renderCmd.Flags().StringVar(&renderLocale, "locale", "", "Locale for the display timestamp")
	_ = renderCmd.MarkFlagRequired("style")
	_ = renderCmd.MarkFlagRequired("image")

	keyCmd := &cobra.Command{
		Use:   "key",
		Short: "Manage stored provider credentials",
	}

	var (
		keyProvider string
		keyValue    string
	)
	keySetCmd := &cobra.Command{
		Use:   "set",
		Args:  cobra.NoArgs,
		Short: "Store a provider API token in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := strings.ToLower(strings.TrimSpace(keyProvider))
			key := strings.TrimSpace(keyValue)
			if key == "" {
				key = envKeyFor(provider)
			}
			if key == "" {
				return fmt.Errorf("%s key is required via --key or environment", provider)
			}

			cfg, err := infra.LoadConfig()
			if err != nil {
				return err
			}
			if !cfg.HasDatabase() {
				return errors.New("DATABASE_URL is required")
			}

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			pool, err := infra.NewDBPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			sql := infra.NewSQLRunner(pool, logger().With().Str("provider", provider).Logger())
			if err := infra.EnsureSchema(ctx, sql); err != nil {
				return err
			}
			if err := credentials.NewStore(sql).Set(ctx, provider, key); err != nil {
				return fmt.Errorf("persist %s key: %w", provider, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s key stored successfully\n", strings.ToUpper(provider))
			return nil
		},
	}
	keySetCmd.Flags().StringVarP(&keyProvider, "provider", "p", credentials.ProviderOpenAI, "Provider to configure (openai or replicate)")
	keySetCmd.Flags().StringVarP(&keyValue, "key", "k", "", "Token value (falls back to OPENAI_API_KEY / REPLICATE_API_TOKEN)")
	keyCmd.AddCommand(keySetCmd)

	rootCmd.AddCommand(stylesCmd, renderCmd, keyCmd)
	return rootCmd
}

func envKeyFor(provider string) string {
	switch provider {
	case credentials.ProviderReplicate:
		return strings.TrimSpace(os.Getenv("REPLICATE_API_TOKEN"))
	case credentials.ProviderOpenAI:
		return strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	default:
		return ""
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
