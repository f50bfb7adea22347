package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/finanza/finanza/internal/cli"
	"github.com/finanza/finanza/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage categories",
		Long:  `List, add, update, and delete the categories transactions are filed under.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(updateCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			categories, err := store.ListCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}
			if len(categories) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No categories found. Use 'finanza categories add' to create one."))
				return nil
			}

			rows := make([][]string, 0, len(categories))
			for _, category := range categories {
				name := category.Name
				if category.IsSystem {
					name += cli.SubtleStyle.Render(" (system)")
				}
				rows = append(rows, []string{category.ID, name, string(category.Type), category.Icon})
			}

			fmt.Print(cli.RenderTable([]string{"ID", "Name", "Type", "Icon"}, rows))
			return nil
		},
	}
}

func addCategoryCmd() *cobra.Command {
	var (
		categoryType string
		icon         string
		color        string
		parentID     string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			category, err := model.NewCategory(args[0], model.CategoryType(strings.ToUpper(categoryType)), icon, color)
			if err != nil {
				return err
			}
			category.ParentID = parentID

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.CreateCategory(ctx, category); err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Created category %q (%s)", category.Name, category.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&categoryType, "type", "t", "EXPENSE", "category type (INCOME, EXPENSE)")
	cmd.Flags().StringVar(&icon, "icon", "", "display icon")
	cmd.Flags().StringVar(&color, "color", "", "display color (hex)")
	cmd.Flags().StringVar(&parentID, "parent", "", "parent category id")

	return cmd
}

func updateCategoryCmd() *cobra.Command {
	var (
		name  string
		icon  string
		color string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			category, err := store.GetCategory(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get category: %w", err)
			}

			if cmd.Flags().Changed("name") {
				category.Name = name
			}
			if cmd.Flags().Changed("icon") {
				category.Icon = icon
			}
			if cmd.Flags().Changed("color") {
				category.Color = color
			}

			if err := store.UpdateCategory(ctx, category); err != nil {
				return fmt.Errorf("failed to update category: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Updated category %q", category.Name)))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&icon, "icon", "", "new icon")
	cmd.Flags().StringVar(&color, "color", "", "new color (hex)")

	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Long: `Remove a category. Transactions filed under it are kept and fall back
to an "Uncategorized" label in reports. System categories cannot be deleted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteCategory(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to delete category: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render("✓ Category deleted"))
			return nil
		},
	}
}
