package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dumpcheck/internal/resultcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the verification result cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show cache location and record count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCacheStore(ctx, func(store *resultcache.Store) error {
				entries, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Printf("cache: %s\nrecords: %d\n", store.Path(), entries)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached verification result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCacheStore(ctx, func(store *resultcache.Store) error {
				if err := store.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Println("cache cleared")
				return nil
			})
		},
	})

	return cmd
}

func withCacheStore(ctx *commandContext, fn func(*resultcache.Store) error) error {
	cfg, _, err := ctx.ensureSetup()
	if err != nil {
		return err
	}
	store, err := resultcache.Open(cfg.CachePath())
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}
