package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/miradorstack/trigger-rca/internal/config"
	"github.com/miradorstack/trigger-rca/internal/models"
	"github.com/miradorstack/trigger-rca/internal/repo"
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Load a JSON occurrence export into the SQLite store",
	Long: `Load foods and symptoms from a JSON export into source.sqlite.path.

The file holds {"foods": [...], "symptoms": [...]}; "-" reads stdin.

Examples:
  trigger-rca import export.json
  cat export.json | trigger-rca import -`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

type occurrenceExport struct {
	Foods    []models.FoodOccurrence    `json:"foods"`
	Symptoms []models.SymptomOccurrence `json:"symptoms"`
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open export: %w", err)
		}
		defer f.Close()
		in = f
	}

	store, err := repo.OpenSQLiteStore(cfg.Source.SQLite.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	export, err := importOccurrences(cmd.Context(), store, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d foods and %d symptoms into %s\n",
		len(export.Foods), len(export.Symptoms), cfg.Source.SQLite.Path)
	return nil
}

func importOccurrences(ctx context.Context, store *repo.SQLiteStore, in io.Reader) (occurrenceExport, error) {
	var export occurrenceExport
	if err := json.NewDecoder(in).Decode(&export); err != nil {
		return occurrenceExport{}, fmt.Errorf("decode export: %w", err)
	}
	if err := store.SaveFoods(ctx, export.Foods); err != nil {
		return occurrenceExport{}, fmt.Errorf("save foods: %w", err)
	}
	if err := store.SaveSymptoms(ctx, export.Symptoms); err != nil {
		return occurrenceExport{}, fmt.Errorf("save symptoms: %w", err)
	}
	return export, nil
}
