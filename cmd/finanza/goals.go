package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finanza/finanza/internal/cli"
	"github.com/finanza/finanza/internal/model"
)

func goalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Manage savings goals",
		Long:  `Track progress toward savings targets. Saved amounts are updated by hand, not derived from transactions.`,
	}

	cmd.AddCommand(addGoalCmd())
	cmd.AddCommand(listGoalsCmd())
	cmd.AddCommand(updateGoalCmd())
	cmd.AddCommand(deleteGoalCmd())

	return cmd
}

func addGoalCmd() *cobra.Command {
	var (
		deadline string
		color    string
	)

	cmd := &cobra.Command{
		Use:   "add <name> <target>",
		Short: "Add a savings goal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			target, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			var due *model.Date
			if deadline != "" {
				parsed, parseErr := model.ParseDate(deadline)
				if parseErr != nil {
					return fmt.Errorf("invalid --deadline date: %w", parseErr)
				}
				due = &parsed
			}

			goal, err := model.NewGoal(args[0], target, due, color)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.CreateGoal(ctx, goal); err != nil {
				return fmt.Errorf("failed to create goal: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Created goal %q (%s)", goal.Name, goal.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&deadline, "deadline", "d", "", "target date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&color, "color", "", "display color (hex)")

	return cmd
}

func listGoalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List goals with progress",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			goals, err := store.ListGoals(ctx)
			if err != nil {
				return fmt.Errorf("failed to list goals: %w", err)
			}
			if len(goals) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No goals found. Use 'finanza goals add' to create one."))
				return nil
			}

			rows := make([][]string, 0, len(goals))
			for _, goal := range goals {
				progress := 0.0
				if goal.TargetAmount > 0 {
					progress = goal.SavedAmount / goal.TargetAmount * 100
				}
				due := ""
				if goal.Deadline != nil {
					due = goal.Deadline.String()
				}
				rows = append(rows, []string{
					goal.ID,
					goal.Name,
					fmt.Sprintf("%.2f / %.2f", goal.SavedAmount, goal.TargetAmount),
					fmt.Sprintf("%.0f%%", progress),
					due,
				})
			}

			fmt.Print(cli.RenderTable([]string{"ID", "Name", "Saved / Target", "Progress", "Deadline"}, rows))
			return nil
		},
	}
}

func updateGoalCmd() *cobra.Command {
	var (
		saved  float64
		target float64
		name   string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a goal's saved amount, target, or name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			goal, err := store.GetGoal(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get goal: %w", err)
			}

			if cmd.Flags().Changed("saved") {
				goal.SavedAmount = saved
			}
			if cmd.Flags().Changed("target") {
				goal.TargetAmount = target
			}
			if cmd.Flags().Changed("name") {
				goal.Name = name
			}
			if err := goal.Validate(); err != nil {
				return err
			}

			if err := store.UpdateGoal(ctx, goal); err != nil {
				return fmt.Errorf("failed to update goal: %w", err)
			}

			if goal.SavedAmount >= goal.TargetAmount {
				fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("🎉 Goal %q reached!", goal.Name)))
				return nil
			}
			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Updated goal %q (%.2f / %.2f)", goal.Name, goal.SavedAmount, goal.TargetAmount)))
			return nil
		},
	}

	cmd.Flags().Float64VarP(&saved, "saved", "s", 0, "new saved amount")
	cmd.Flags().Float64VarP(&target, "target", "t", 0, "new target amount")
	cmd.Flags().StringVar(&name, "name", "", "new name")

	return cmd
}

func deleteGoalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteGoal(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to delete goal: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render("✓ Goal deleted"))
			return nil
		},
	}
}
