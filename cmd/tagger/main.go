package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/chriscorrea/tagger/internal/classify"
	"github.com/chriscorrea/tagger/internal/config"
	"github.com/chriscorrea/tagger/internal/corpus"
	"github.com/chriscorrea/tagger/internal/extract"
	"github.com/chriscorrea/tagger/internal/output"
	"github.com/chriscorrea/tagger/internal/pipeline"
	"github.com/chriscorrea/tagger/internal/progress"
	"github.com/chriscorrea/tagger/internal/semantic"
)

const defaultModelPath = "tagger-model.json"

// setupLogger configures the default slog logger based on debug mode
func setupLogger(debug bool) {
	level := slog.LevelError
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// loadConfig reads the config file and .env, then applies the flags the user set
func loadConfig(cmd *cobra.Command) (*config.AppConfig, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	setupLogger(debug)

	envFile, _ := cmd.Flags().GetString("env")
	if err := config.LoadEnv(envFile); err != nil {
		return nil, err
	}

	var cfg *config.AppConfig
	var err error
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		var used string
		cfg, used, err = config.LoadDefault()
		if used != "" {
			slog.Debug("Using config file", "path", used)
		}
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("language") {
		cfg.Language, _ = flags.GetString("language")
	}
	if flags.Changed("min-length") {
		cfg.Phrase.Min, _ = flags.GetInt("min-length")
	}
	if flags.Changed("max-length") {
		cfg.Phrase.Max, _ = flags.GetInt("max-length")
	}
	if flags.Changed("min-occur") {
		cfg.MinNumOccur, _ = flags.GetInt("min-occur")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("algorithm") {
		cfg.Model.Algorithm, _ = flags.GetString("algorithm")
	}
	if flags.Changed("semantic-url") {
		cfg.Semantic.URL, _ = flags.GetString("semantic-url")
		cfg.Features.Set.Semantic = cfg.Semantic.URL != ""
	}
	if flags.Changed("semantic-policy") {
		cfg.Semantic.Policy, _ = flags.GetString("semantic-policy")
	}
	if flags.Changed("top") {
		cfg.TopK, _ = flags.GetInt("top")
	}
	if flags.Changed("selector") {
		cfg.HTML.Selector, _ = flags.GetString("selector")
	}
	if flags.Changed("include-all") {
		cfg.HTML.IncludeAll, _ = flags.GetBool("include-all")
	}

	textFlag, _ := flags.GetBool("text")
	mdFlag, _ := flags.GetBool("md")
	jsonFlag, _ := flags.GetBool("json")
	switch {
	case textFlag:
		cfg.Output = "text"
	case mdFlag:
		cfg.Output = "md"
	case jsonFlag:
		cfg.Output = "json"
	}
	return cfg, nil
}

// pipelineOptions wires the knowledge service when one is configured
func pipelineOptions(cfg *config.AppConfig) ([]pipeline.Option, error) {
	var opts []pipeline.Option
	if cfg.Semantic.URL != "" {
		client, err := semantic.NewClient(semantic.Config{
			URL:     cfg.Semantic.URL,
			APIKey:  cfg.APIKey(),
			Timeout: cfg.Pipeline().Features.SemanticTimeout,
		})
		if err != nil {
			return nil, err
		}
		opts = append(opts, pipeline.WithSemantic(client))
	}
	return opts, nil
}

// newProgress returns a counter on stderr when it is a terminal, or nil
func newProgress(ctx context.Context, cmd *cobra.Command, label string) *progress.Counter {
	quiet, _ := cmd.Flags().GetBool("quiet")
	if quiet || !progress.IsTerminal(os.Stderr) {
		return nil
	}
	return progress.New(ctx, os.Stderr, label, 0)
}

// startProgress draws the counter for multi-document runs
func startProgress(counter *progress.Counter, total int) {
	if counter == nil || total < 2 {
		return
	}
	counter.SetTotal(total)
	counter.Start()
}

func loader(cfg *config.AppConfig, p *pipeline.Pipeline) corpus.Loader {
	l := corpus.Loader{
		HTML:        extract.Options{Selector: cfg.HTML.Selector, IncludeAll: cfg.HTML.IncludeAll},
		SectionSize: cfg.Features.SectionSize,
	}
	if cfg.HTML.FilterBoilerplate && !cfg.HTML.IncludeAll && cfg.HTML.Selector == "" {
		l.Boilerplate = classify.New(p.Language())
	}
	return l
}

func writer(cfg *config.AppConfig) (*output.Writer, error) {
	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return nil, err
	}
	return output.NewWriter(os.Stdout, format, format == output.Text && progress.IsTerminal(os.Stdout)), nil
}

var rootCmd = &cobra.Command{
	Use:   "tagger",
	Short: "Automatic keyphrase extraction and document tagging",
	Long: `Tagger learns which phrases make good keyphrases from documents with
human-assigned keyphrases, then ranks the candidate phrases of new documents.

Examples:
  tagger train data/train --model model.json
  tagger tag --model model.json article.txt https://example.com/post
  tagger tag --model model.json --dir data/test --json`,
	SilenceUsage: true,
}

var trainCmd = &cobra.Command{
	Use:   "train <corpus-dir>",
	Short: "Train a keyphrase model on a directory of documents and .key files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		modelPath, _ := cmd.Flags().GetString("model")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		opts, err := pipelineOptions(cfg)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		counter := newProgress(ctx, cmd, "training")
		if counter != nil {
			opts = append(opts, pipeline.WithReporter(counter))
			defer counter.Stop()
		}
		p, err := pipeline.New(cfg.Pipeline(), opts...)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		docs, err := loader(cfg, p).List(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to load corpus: %w", err)
		}

		startProgress(counter, len(docs))
		meta, err := p.Train(ctx, docs)
		if counter != nil {
			counter.Stop()
		}
		if err != nil {
			return fmt.Errorf("training failed: %w", err)
		}

		if err := p.Save(modelPath); err != nil {
			return fmt.Errorf("failed to save model: %w", err)
		}

		w, err := writer(cfg)
		if err != nil {
			return err
		}
		return w.Training(meta, p.Model().Algorithm(), modelPath)
	},
}

var tagCmd = &cobra.Command{
	Use:   "tag [sources...]",
	Short: "Extract keyphrases from files, URLs, standard input, or a directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		modelPath, _ := cmd.Flags().GetString("model")
		dir, _ := cmd.Flags().GetString("dir")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		opts, err := pipelineOptions(cfg)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		counter := newProgress(ctx, cmd, "tagging")
		if counter != nil {
			opts = append(opts, pipeline.WithReporter(counter))
			defer counter.Stop()
		}
		p, err := pipeline.Load(modelPath, cfg.Workers, opts...)
		if err != nil {
			return fmt.Errorf("failed to load model: %w", err)
		}
		l := loader(cfg, p)

		var docs []corpus.Document
		var failed []pipeline.Tagged
		if dir != "" {
			docs, err = l.List(ctx, dir)
			if err != nil {
				return fmt.Errorf("failed to load documents: %w", err)
			}
		} else {
			sources := args
			if len(sources) == 0 {
				sources = []string{"-"}
			}
			for _, source := range sources {
				doc, err := l.Load(ctx, source)
				if err != nil {
					slog.Warn("Failed to load document", "source", source, "error", err)
					failed = append(failed, pipeline.Tagged{Name: source, Err: err})
					continue
				}
				docs = append(docs, doc)
			}
		}

		startProgress(counter, len(docs))
		results, err := p.TagAll(ctx, docs, cfg.TopK)
		if counter != nil {
			counter.Stop()
		}
		if err != nil {
			return fmt.Errorf("tagging failed: %w", err)
		}

		w, err := writer(cfg)
		if err != nil {
			return err
		}
		return w.Results(append(results, failed...))
	},
}

var configCmd = &cobra.Command{
	Use:   "config [path]",
	Short: "Write the effective configuration as YAML (default: tagger.yaml)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		path := "tagger.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.Save(path, cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Configuration written to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (default: ./tagger.yaml or ~/.config/tagger/config.yaml)")
	rootCmd.PersistentFlags().String("env", ".env", "Path to .env file with the knowledge-service API key")
	rootCmd.PersistentFlags().StringP("model", "m", defaultModelPath, "Path of the model file")
	rootCmd.PersistentFlags().IntP("workers", "w", 0, "Documents processed in parallel (default: number of CPUs)")
	rootCmd.PersistentFlags().String("semantic-url", "", "Base URL of the knowledge service (enables semantic features)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolP("debug", "D", false, "Enable debug logging")
	_ = rootCmd.PersistentFlags().MarkHidden("debug")

	// output format flags are mutually exclusive
	rootCmd.PersistentFlags().Bool("text", false, "Output in plain text format (default)")
	rootCmd.PersistentFlags().Bool("md", false, "Output in Markdown format")
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	rootCmd.MarkFlagsMutuallyExclusive("text", "md", "json")

	// HTML extraction flags apply to both training and tagging documents
	rootCmd.PersistentFlags().StringP("selector", "s", "", "CSS selector for HTML content extraction")
	rootCmd.PersistentFlags().BoolP("include-all", "i", false, "Use the whole HTML page without readability or boilerplate filtering")

	trainCmd.Flags().StringP("language", "l", "", "Document language (english, french, spanish)")
	trainCmd.Flags().Int("min-length", 0, "Minimum phrase length in words")
	trainCmd.Flags().Int("max-length", 0, "Maximum phrase length in words")
	trainCmd.Flags().Int("min-occur", 0, "Minimum occurrences of a phrase in a document (use 1 for short documents)")
	trainCmd.Flags().String("algorithm", "", "Learning algorithm (logistic, naive_bayes)")
	trainCmd.Flags().String("semantic-policy", "", "When the knowledge service is unavailable: omit or fail")

	tagCmd.Flags().IntP("top", "k", 0, "Number of keyphrases per document (default: 10)")
	tagCmd.Flags().String("dir", "", "Tag every document in a directory")

	rootCmd.AddCommand(trainCmd, tagCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
