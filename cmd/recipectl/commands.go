package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"recipe-browser/internal/core/catalog"
	"recipe-browser/internal/core/export"
	"recipe-browser/internal/core/recipe"
	"recipe-browser/internal/infrastructure/config"

	"github.com/spf13/cobra"
)

func newSearchCmd(app *cli) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search",
		Short: "List recipes matching the query and facets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.evaluate()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			if result.Empty() {
				fmt.Fprintln(out, recipe.NoResultsMessage)
				return nil
			}
			for _, r := range result.Recipes {
				fmt.Fprintf(out, "%d\t%s\t%d min\t%s\n", r.ID, r.Name, r.Time, r.Appliance)
			}
			return nil
		},
	}

	app.addSelectionFlags(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	return cmd
}

func newFacetsCmd(app *cli) *cobra.Command {
	var (
		kind   string
		search string
	)

	cmd := &cobra.Command{
		Use:   "facets",
		Short: "List the facet values available for the current filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.evaluate()
			if err != nil {
				return err
			}

			kinds := recipe.Kinds
			if kind != "" {
				k, err := recipe.ParseKind(kind)
				if err != nil {
					return err
				}
				kinds = []recipe.Kind{k}
			}

			out := cmd.OutOrStdout()
			for _, k := range kinds {
				fmt.Fprintf(out, "[%s]\n", k.Plural())
				for _, opt := range result.Options(k, search) {
					mark := " "
					if opt.Selected {
						mark = "*"
					}
					fmt.Fprintf(out, "%s %s\n", mark, opt.Value)
				}
			}
			return nil
		},
	}

	app.addSelectionFlags(cmd)
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "only this facet (ingredient, appliance, utensil)")
	cmd.Flags().StringVarP(&search, "search", "s", "", "filter facet values by substring")
	return cmd
}

func newExportCmd(app *cli) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the matching recipes to .xlsx or .csv",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.evaluate()
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			if err := export.Write(f, out, result.Recipes); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "exported %d recipes to %s\n", len(result.Recipes), out)
			return nil
		},
	}

	app.addSelectionFlags(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "recettes.xlsx", "output file (.xlsx or .csv)")
	return cmd
}

func newImportCmd(app *cli) *cobra.Command {
	var (
		dsn   string
		table string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Write the loaded catalog into a PostgreSQL table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(dsn) == "" {
				dsn = app.cfg.Catalog.DatabaseURL
			}
			if dsn == "" {
				return fmt.Errorf("--dsn or DATABASE_URL is required")
			}

			target, err := catalog.NewPostgresSource(config.CatalogConfig{DatabaseURL: dsn, Table: table})
			if err != nil {
				return err
			}
			defer target.Close()

			ctx := cmd.Context()
			if err := target.EnsureSchema(ctx); err != nil {
				return err
			}
			if err := target.Import(ctx, app.catalog); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d recipes into %s\n", app.catalog.Len(), table)
			return nil
		},
	}

	cmd.Flags().StringVar(&dsn, "dsn", "", "PostgreSQL connection string (defaults to DATABASE_URL)")
	cmd.Flags().StringVar(&table, "table", "recipes", "target table")
	return cmd
}
