package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/hyperborea/internal/config"
	"github.com/cory-johannsen/hyperborea/internal/game/ruleset"
	"github.com/cory-johannsen/hyperborea/internal/reference"
	"github.com/cory-johannsen/hyperborea/internal/storage/postgres"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Open and validate the configured dataset backend",
	Long: `Verify loads the dataset from the configured source, checks referential
integrity and the class allow-list, and prints a summary. For the postgres
source it also checks every spell's SQL-built level string against the
accessor's.`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "dataset source: %s\n", cfg.Dataset.Source)
	fmt.Fprintf(out, "classes:    %d\n", len(store.Classes()))
	fmt.Fprintf(out, "races:      %d\n", len(store.Races()))
	fmt.Fprintf(out, "genders:    %d\n", len(store.Genders()))
	fmt.Fprintf(out, "alignments: %d\n", len(store.Alignments()))
	fmt.Fprintf(out, "spells:     %d\n", len(store.SpellIDs()))
	for _, c := range store.Classes() {
		kind := "base"
		if c.IsSubclass() {
			kind = fmt.Sprintf("subclass of %d", c.BaseClassID)
		}
		fmt.Fprintf(out, "  %2d %-16s d%-2d %s\n", c.ID, c.Name, c.HitDie, kind)
	}
	if cfg.Dataset.Source != config.SourcePostgres {
		return nil
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()
	repo := postgres.NewReferenceRepository(pool.DB()).WithSpellIDs(store.SpellIDs())
	return checkSpellLevels(ctx, out, store, repo)
}

// spellGetter fetches one spell with its level string built by the backend.
type spellGetter interface {
	GetSpell(ctx context.Context, id int) (ruleset.Spell, error)
}

// checkSpellLevels compares each spell's level string from repo with the store's.
func checkSpellLevels(ctx context.Context, out io.Writer, store *reference.Store, repo spellGetter) error {
	mismatches := 0
	for _, id := range store.SpellIDs() {
		want, err := store.Spell(id)
		if err != nil {
			return err
		}
		got, err := repo.GetSpell(ctx, id)
		if err != nil {
			return err
		}
		if got.Level != want.Level {
			mismatches++
			fmt.Fprintf(out, "  spell %d %s: database %q, accessor %q\n", id, want.Name, got.Level, want.Level)
		}
	}
	fmt.Fprintf(out, "spell levels checked: %d, mismatches: %d\n", len(store.SpellIDs()), mismatches)
	if mismatches > 0 {
		return fmt.Errorf("%d spell level strings differ between database and accessor", mismatches)
	}
	return nil
}
