package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/hyperborea/internal/game/dice"
	"github.com/cory-johannsen/hyperborea/internal/game/ruleset"
)

var rollSeed uint64

var rollCmd = &cobra.Command{
	Use:   "roll <expr>...",
	Short: "Roll dice expressions",
	Long: `Roll evaluates dice expressions such as 3d6, 4d6kh3 or 9d10+3 and prints
each result with its kept and dropped dice.

  Example: refdata roll 4d6kh3 3d6`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRoll,
}

var modifiersCmd = &cobra.Command{
	Use:   "modifiers <ability> <score>",
	Short: "Show the modifier row for an ability score",
	Long: `Modifiers prints every derived modifier for one ability at one score.
The ability is its two-letter abbreviation (st, dx, cn, in, ws, ch).

  Example: refdata modifiers dx 16`,
	Args: cobra.ExactArgs(2),
	RunE: runModifiers,
}

func init() {
	rollCmd.Flags().Uint64Var(&rollSeed, "seed", 0, "seed for reproducible rolls (0 = crypto source)")
}

func runRoll(cmd *cobra.Command, args []string) error {
	src := dice.NewCryptoSource()
	if rollSeed != 0 {
		src = dice.NewSeededSource(rollSeed)
	}
	roller := dice.NewRoller(src, logger)
	for _, expr := range args {
		res, err := roller.RollExpr(expr)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.String())
	}
	return nil
}

func runModifiers(cmd *cobra.Command, args []string) error {
	ability, err := ruleset.ParseAbility(args[0])
	if err != nil {
		return err
	}
	score, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("%w: score %q is not a number", ruleset.ErrInvalidRange, args[1])
	}
	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	mods, err := store.AbilityModifiers(ability, score)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "# %s %d\n", ability.Name(), score)
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	defer enc.Close()
	return enc.Encode(mods)
}
