package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerparse/ledgerparse/internal/common"
	"github.com/ledgerparse/ledgerparse/internal/registry"
	"github.com/ledgerparse/ledgerparse/internal/storage"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and manage pattern rules",
	}
	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesResetCmd())
	return cmd
}

func rulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rules with their learned confidences",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, store, err := openRegistry(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			fmt.Println(titleStyle.Render("Pattern rules"))
			for _, rule := range reg.All() {
				issuer := rule.Issuer
				if issuer == "" {
					issuer = "(generic)"
				}
				fmt.Println(
					labelStyle.Render(fmt.Sprintf("  %-24s %-12s %-10s ", rule.ID, rule.Type, issuer)) +
						valueStyle.Render(fmt.Sprintf("confidence %.2f  hits %d  misses %d",
							rule.Confidence, rule.HitCount, rule.MissCount)))
			}
			return nil
		},
	}
}

func rulesResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard learned confidences, reverting rules to their priors",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dbPath, err := rulesDBPath()
			if err != nil {
				return err
			}
			store, err := storage.NewSQLiteStore(dbPath)
			if err != nil {
				return common.NewUserError("failed to open rule database", err)
			}
			defer func() { _ = store.Close() }()

			if err := store.Migrate(cmd.Context()); err != nil {
				return common.NewUserError("failed to migrate rule database", err)
			}
			if err := store.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Println(valueStyle.Render("learned rule state cleared"))
			return nil
		},
	}
}

func openRegistry(cmd *cobra.Command) (*registry.Registry, *storage.SQLiteStore, error) {
	dbPath, err := rulesDBPath()
	if err != nil {
		return nil, nil, err
	}
	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, nil, common.NewUserError("failed to open rule database", err)
	}

	if err := store.Migrate(cmd.Context()); err != nil {
		_ = store.Close()
		return nil, nil, common.NewUserError("failed to migrate rule database", err)
	}

	reg, err := registry.New(registry.DefaultRules())
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	if err := reg.Restore(store); err != nil {
		_ = store.Close()
		return nil, nil, common.NewUserError("failed to load learned rule state", err)
	}
	return reg, store, nil
}
