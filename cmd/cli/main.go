package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gocatalog/adapters/excel"
	"gocatalog/ai"
	"gocatalog/domain/sheet"
	"gocatalog/internal/config"
	"gocatalog/internal/container"
	"gocatalog/internal/logging"
	"gocatalog/internal/mapping"
	"gocatalog/internal/synthesis"
	"gocatalog/internal/testkit"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "gocatalog",
		Short:         "Map vendor inventory sheets onto marketplace templates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug|info|warn|error")

	logger := func() zerolog.Logger {
		return logging.New(logging.Config{Level: logLevel, Output: os.Stderr})
	}

	rootCmd.AddCommand(
		newMapCmd(logger),
		newFillCmd(logger),
		newEnrichCmd(logger),
		newAskCmd(logger),
		newSampleCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newMapCmd(logger func() zerolog.Logger) *cobra.Command {
	var preserveEmpty bool

	cmd := &cobra.Command{
		Use:   "map [template-file] [raw-file]",
		Short: "Auto-detect the column mapping and print how each header resolved",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			template, raw, err := decodePair(args[0], args[1])
			if err != nil {
				return err
			}
			mapper := mapping.NewColumnMapper(nil, mapping.MapperOptions{PreserveEmptyTokenMatch: preserveEmpty}, logger())
			_, trace := mapper.DetectWithTrace(template, raw)
			return printJSON(cmd, trace)
		},
	}
	cmd.Flags().BoolVar(&preserveEmpty, "preserve-empty-token", false, "Map headers that normalize to nothing onto the first raw column")
	return cmd
}

func newFillCmd(logger func() zerolog.Logger) *cobra.Command {
	var output string
	var overrides []string
	var preview bool
	var coverage bool

	cmd := &cobra.Command{
		Use:   "fill [template-file] [raw-file]",
		Short: "Fill the template from the raw sheet and write the catalog",
		Long: `Fill the template from the raw sheet and write the catalog.

Example: gocatalog fill amazon.xlsx vendor.csv -o catalog.xlsx --set "Title=Product Name"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			template, raw, err := decodePair(args[0], args[1])
			if err != nil {
				return err
			}

			log := logger()
			mp := mapping.NewColumnMapper(nil, mapping.MapperOptions{}, log).AutoDetect(template, raw)
			if err := applyOverrides(mp, template, raw, overrides); err != nil {
				return err
			}

			materializer := synthesis.NewRowMaterializer(synthesis.NewFieldSynthesizer(nil), log)
			if coverage {
				return printJSON(cmd, synthesis.ComputeCoverage(template, materializer.Export(template, raw, mp), mp))
			}

			rows := catalogRows(materializer, template, raw, mp, preview)

			var content []byte
			if output == "" || excel.FormatOf(output) == excel.FormatCSV {
				content, err = excel.EncodeCSV(template.Headers, rows)
			} else {
				content, err = excel.Encode(template.Headers, rows)
			}
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(content)
				return err
			}
			if err := os.WriteFile(output, content, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", len(rows), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (.xlsx or .csv); csv on stdout when empty")
	cmd.Flags().StringArrayVar(&overrides, "set", nil, "Override a mapping entry as \"Template Header=Raw Header\"")
	cmd.Flags().BoolVar(&preview, "preview", false, "Only the first rows")
	cmd.Flags().BoolVar(&coverage, "coverage", false, "Print the coverage report instead of the catalog")
	return cmd
}

func newEnrichCmd(logger func() zerolog.Logger) *cobra.Command {
	var marketplace string

	cmd := &cobra.Command{
		Use:   "enrich [raw-file]",
		Short: "Ask the model for catalog insights on the first rows of a sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := excel.DecodeFile(args[0])
			if err != nil {
				return err
			}
			c, err := newContainer(cmd.Context(), logger())
			if err != nil {
				return err
			}
			defer c.Close()

			for _, insight := range c.Enricher.Enrich(cmd.Context(), marketplace, raw.Head(ai.MaxSampleRows)) {
				fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", insight)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&marketplace, "marketplace", "Amazon", "Target marketplace")
	return cmd
}

func newAskCmd(logger func() zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [message...]",
		Short: "Ask the workspace assistant a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer(cmd.Context(), logger())
			if err != nil {
				return err
			}
			defer c.Close()

			fmt.Fprintln(cmd.OutOrStdout(), c.Router.Reply(cmd.Context(), strings.Join(args, " "), nil))
			return nil
		},
	}
}

func newSampleCmd() *cobra.Command {
	var marketplace string
	var dir string
	config := testkit.DefaultInventoryConfig()

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write a demo marketplace template and vendor inventory sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			template, err := testkit.Template(marketplace)
			if err != nil {
				return err
			}
			raw, err := testkit.NewInventoryGenerator(config).Generate()
			if err != nil {
				return err
			}

			templateContent, err := excel.Encode(template.Headers, nil)
			if err != nil {
				return err
			}
			rawContent, err := excel.EncodeCSV(raw.Headers, raw.Rows)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			templatePath := filepath.Join(dir, strings.ToLower(marketplace)+"_template.xlsx")
			rawPath := filepath.Join(dir, config.Dialect+"_inventory.csv")
			if err := os.WriteFile(templatePath, templateContent, 0o644); err != nil {
				return err
			}
			if err := os.WriteFile(rawPath, rawContent, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", templatePath, rawPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&marketplace, "marketplace", "amazon", "Template: amazon|flipkart|myntra")
	cmd.Flags().StringVar(&config.Dialect, "dialect", config.Dialect, "Inventory header dialect: "+strings.Join(testkit.DialectNames(), "|"))
	cmd.Flags().IntVar(&config.Rows, "rows", config.Rows, "Number of inventory rows")
	cmd.Flags().Int64Var(&config.Seed, "seed", config.Seed, "Random seed for deterministic output")
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Output directory")
	return cmd
}

// catalogRows materializes only the preview window when preview is set.
func catalogRows(m *synthesis.RowMaterializer, template, raw *sheet.Data, mp sheet.Mapping, preview bool) []sheet.Row {
	if preview {
		return m.Preview(template, raw, mp)
	}
	return m.Export(template, raw, mp)
}

func newContainer(ctx context.Context, logger zerolog.Logger) (*container.Container, error) {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return container.New(ctx, cfg, logger)
}

func decodePair(templatePath, rawPath string) (*sheet.Data, *sheet.Data, error) {
	template, err := excel.DecodeFile(templatePath)
	if err != nil {
		return nil, nil, fmt.Errorf("template %s: %w", filepath.Base(templatePath), err)
	}
	raw, err := excel.DecodeFile(rawPath)
	if err != nil {
		return nil, nil, fmt.Errorf("raw sheet %s: %w", filepath.Base(rawPath), err)
	}
	return template, raw, nil
}

// applyOverrides parses "Template=Raw" pairs. An empty right side unmaps.
func applyOverrides(mp sheet.Mapping, template, raw *sheet.Data, overrides []string) error {
	for _, o := range overrides {
		templateHeader, rawHeader, ok := strings.Cut(o, "=")
		if !ok {
			return fmt.Errorf("invalid --set %q, want \"Template Header=Raw Header\"", o)
		}
		templateHeader, rawHeader = strings.TrimSpace(templateHeader), strings.TrimSpace(rawHeader)
		if !template.HasHeader(templateHeader) {
			return fmt.Errorf("unknown template header %q", templateHeader)
		}
		if rawHeader != "" && !raw.HasHeader(rawHeader) {
			return fmt.Errorf("unknown raw header %q", rawHeader)
		}
		mp.Set(templateHeader, rawHeader)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
