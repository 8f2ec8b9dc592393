package main

import (
	"context"
	"fmt"
	"io"

	"recipe-browser/internal/core/catalog"
	"recipe-browser/internal/core/recipe"
	"recipe-browser/internal/infrastructure/config"
	"recipe-browser/internal/pkg/common"

	"github.com/spf13/cobra"
)

// cli 命令共用的狀態
type cli struct {
	cfg     *config.Config
	catalog *recipe.Catalog

	source  string
	path    string
	url     string
	verbose bool

	// 篩選條件
	query       string
	ingredients []string
	appliances  []string
	utensils    []string
}

func newRootCmd() *cobra.Command {
	app := &cli{}

	root := &cobra.Command{
		Use:           "recipectl",
		Short:         "Search and export the recipe catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&app.source, "source", "", "catalog source (embedded, file, http, postgres)")
	flags.StringVar(&app.path, "path", "", "catalog file for the file source")
	flags.StringVar(&app.url, "url", "", "catalog URL for the http source")
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newSearchCmd(app),
		newFacetsCmd(app),
		newExportCmd(app),
		newImportCmd(app),
	)
	return root
}

// setup 載入設定與目錄，命令列旗標優先於設定檔
func (app *cli) setup(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	app.cfg = cfg

	level := "warn"
	if app.verbose {
		level = "debug"
	}
	if err := common.InitLogger(common.LoggerOptions{Level: level, Service: "recipectl"}); err != nil {
		return err
	}

	if app.source != "" {
		cfg.Catalog.Source = app.source
	}
	if app.path != "" {
		cfg.Catalog.Path = app.path
		if app.source == "" {
			cfg.Catalog.Source = config.CatalogFile
		}
	}
	if app.url != "" {
		cfg.Catalog.URL = app.url
		if app.source == "" {
			cfg.Catalog.Source = config.CatalogHTTP
		}
	}

	src, err := catalog.NewSource(cfg.Catalog)
	if err != nil {
		return err
	}
	if closer, ok := src.(io.Closer); ok {
		defer closer.Close()
	}

	if ctx == nil {
		ctx = context.Background()
	}
	app.catalog, err = catalog.Load(ctx, src)
	return err
}

// addSelectionFlags 註冊篩選旗標
func (app *cli) addSelectionFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&app.query, "query", "q", "", "free-text query (at least 3 characters)")
	f.StringSliceVarP(&app.ingredients, "ingredient", "i", nil, "required ingredient (repeatable)")
	f.StringSliceVarP(&app.appliances, "appliance", "a", nil, "accepted appliance (repeatable)")
	f.StringSliceVarP(&app.utensils, "utensil", "u", nil, "required utensil (repeatable)")
}

// selection 由旗標建立篩選狀態
func (app *cli) selection() (*recipe.Selection, error) {
	sel := recipe.NewSelection()
	sel.SetQuery(app.query)

	for kind, values := range map[recipe.Kind][]string{
		recipe.KindIngredient: app.ingredients,
		recipe.KindAppliance:  app.appliances,
		recipe.KindUtensil:    app.utensils,
	} {
		for _, v := range values {
			if err := sel.Select(kind, v); err != nil {
				return nil, fmt.Errorf("invalid --%s value %q: %w", kind, v, err)
			}
		}
	}
	return sel, nil
}

func (app *cli) evaluate() (*recipe.Result, error) {
	sel, err := app.selection()
	if err != nil {
		return nil, err
	}
	return recipe.Evaluate(app.catalog, sel), nil
}
