package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hackerwear/storefront/app"
	"github.com/hackerwear/storefront/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Catalog administration",
}

var productsImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import product variants from a JSON array",
	Long: `Reads a JSON array of product variants and inserts them in a single
transaction. Nothing is written if any variant is invalid or its slug exists.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		products, err := readProducts(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		cfg, logger, err := loadRuntime(ctx, true)
		if err != nil {
			return err
		}

		deps, err := app.NewDependencies(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer deps.Close(ctx)

		count, err := deps.Catalog.Import(ctx, products)
		if err != nil {
			logger.Error("product import failed", zap.String("file", args[0]), zap.Error(err))
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "imported %d products\n", count)
		return nil
	},
}

func readProducts(path string) ([]*models.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read products file: %w", err)
	}

	var products []*models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to parse products file %s: %w", path, err)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("products file %s is empty", path)
	}
	return products, nil
}

func init() {
	productsCmd.AddCommand(productsImportCmd)
	rootCmd.AddCommand(productsCmd)
}
