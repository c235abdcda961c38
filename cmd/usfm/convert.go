// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/digitallegionke/USFM/internal/completion"
	"github.com/digitallegionke/USFM/internal/converter"
	"github.com/digitallegionke/USFM/internal/extractor"
	"github.com/digitallegionke/USFM/internal/history"
	"github.com/digitallegionke/USFM/internal/secrets"
	"github.com/digitallegionke/USFM/pkg/types"
)

const (
	defaultModel   = "anthropic/claude-sonnet-4"
	defaultReferer = "https://github.com/digitallegionke/USFM"
	defaultTitle   = "USFM Converter"
)

var convertCmd = &cobra.Command{
	Use:   "convert [file]",
	Short: "Convert study notes to USFM markup",
	Long: `Convert reads study notes from a file (or stdin when no file is given),
sends them to the completion model, validates the returned USFM structurally,
and writes the markup to stdout or --output.

Binary documents (docx, odt, ...) are supported with --from pandoc, which
pipes the file through a pandoc container before conversion.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("model", "", "completion model identifier")
	convertCmd.Flags().String("api-key", "", "API credential (overrides config and .secrets/)")
	convertCmd.Flags().StringP("output", "o", "", "write USFM to this file instead of stdout")
	convertCmd.Flags().String("from", "plaintext", "document extractor backend: plaintext or pandoc")
	convertCmd.Flags().Int("max-retries", 0, "retry attempts for transient completion failures (0 disables, unset means 3)")
	convertCmd.Flags().Bool("no-history", false, "do not record this attempt in the history database")
	convertCmd.Flags().String("history-dir", "", "history database directory (default: history)")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	doc, filename, err := readInput(args)
	if err != nil {
		return err
	}

	backend, _ := cmd.Flags().GetString("from")
	ex, err := extractor.ForBackend(types.ExtractorBackend(backend))
	if err != nil {
		return err
	}
	noteText, err := ex.Extract(doc, filename)
	if err != nil {
		return err
	}

	cfg := completionConfig(cmd)
	if cfg.APIKey == "" {
		return fmt.Errorf("missing API credential: pass --api-key, set USFM_API_KEY, or create .secrets/%s", secrets.KeyOpenRouter)
	}

	conv := converter.New(completion.New(cfg, nil), cfg.Model)
	start := time.Now()
	res, convErr := conv.Convert(cmd.Context(), noteText)
	elapsed := time.Since(start)

	if noHistory, _ := cmd.Flags().GetBool("no-history"); !noHistory {
		if err := recordAttempt(cmd, cfg.Model, noteText, res, convErr); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not record history: %v\n", err)
		}
	}

	if convErr != nil {
		return convErr
	}

	outPath, _ := cmd.Flags().GetString("output")
	if outPath != "" {
		if err := os.WriteFile(outPath, []byte(res.USFM), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", outPath, err)
		}
		fmt.Fprintf(os.Stderr, "converted %d chars to %s in %s (model %s)\n",
			len(noteText), outPath, elapsed.Round(time.Millisecond), res.Model)
		return nil
	}

	fmt.Fprintln(os.Stdout, res.USFM)
	fmt.Fprintf(os.Stderr, "converted %d chars in %s (model %s)\n",
		len(noteText), elapsed.Round(time.Millisecond), res.Model)
	return nil
}

// readInput returns the raw document from the named file or stdin, plus a
// filename hint for the extractor.
func readInput(args []string) ([]byte, string, error) {
	if len(args) == 1 {
		doc, err := os.ReadFile(args[0])
		if err != nil {
			return nil, "", fmt.Errorf("reading %s: %w", args[0], err)
		}
		return doc, args[0], nil
	}

	doc, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, "", fmt.Errorf("reading stdin: %w", err)
	}
	return doc, "", nil
}

// completionConfig assembles the completion settings with precedence
// flag > environment/config file > secret file > default.
func completionConfig(cmd *cobra.Command) types.CompletionConfig {
	cfg := types.CompletionConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("completion.timeout"),
			UserAgent: "usfm/" + version,
		},
		Model:      stringSetting(cmd, "model", "completion.model", defaultModel),
		MaxRetries: intSetting(cmd, "max-retries", "completion.max_retries", 3),
		MaxTokens:  viper.GetInt("completion.max_tokens"),
		Referer:    viperDefault("completion.referer", defaultReferer),
		AppTitle:   viperDefault("completion.app_title", defaultTitle),
	}

	explicit, _ := cmd.Flags().GetString("api-key")
	if explicit == "" {
		explicit = viper.GetString("api_key")
	}
	cfg.APIKey = secrets.Resolve(explicit, loadedSecrets, secrets.KeyOpenRouter)
	return cfg
}

func historyConfig(cmd *cobra.Command) types.HistoryConfig {
	return types.HistoryConfig{
		HistoryDir: stringSetting(cmd, "history-dir", "history.history_dir", "history"),
		MaxResults: viper.GetInt("history.max_results"),
	}
}

func recordAttempt(cmd *cobra.Command, model, noteText string, res converter.Result, convErr error) error {
	store, err := history.NewStore(historyConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	rec := types.ConversionRecord{
		ID:          history.StableID(noteText, model),
		Model:       model,
		Status:      types.ConversionDone,
		SourceChars: len(noteText),
		OutputChars: len(res.USFM),
		USFM:        res.USFM,
	}
	if convErr != nil {
		rec.Status = types.ConversionFailed
		rec.Error = convErr.Error()
		rec.OutputChars = 0
	}
	return store.Record(cmd.Context(), rec)
}

// stringSetting returns the flag value when set, then the viper key, then
// the default.
func stringSetting(cmd *cobra.Command, flag, key, def string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	if v := viper.GetString(key); v != "" {
		return v
	}
	return def
}

// intSetting resolves like stringSetting but detects an explicitly set flag
// via Changed, so a deliberate zero (e.g. --max-retries 0) is honored.
func intSetting(cmd *cobra.Command, flag, key string, def int) int {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetInt(flag)
		return v
	}
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	return def
}

func viperDefault(key, def string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	return def
}
