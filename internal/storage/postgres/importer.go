package postgres

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hyperborea/internal/game/ruleset"
)

// referenceTables lists every reference table, children after their parents.
var referenceTables = []string{
	"ability_modifiers",
	"alignments",
	"genders",
	"races",
	"race_adjustments",
	"armour",
	"shields",
	"classes",
	"class_minimums",
	"class_levels",
	"class_thief_skills",
	"spells",
	"spell_school_level",
}

// Importer replaces the reference tables with the contents of a Dataset.
type Importer struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewImporter creates an Importer backed by the given pool.
//
// Precondition: db and logger must be non-nil.
func NewImporter(db *pgxpool.Pool, logger *zap.Logger) *Importer {
	return &Importer{db: db, logger: logger}
}

// Import validates d and then rewrites every reference table in one transaction.
//
// Precondition: the schema must be migrated.
// Postcondition: On success the tables hold exactly d; on error nothing changes.
func (im *Importer) Import(ctx context.Context, d *ruleset.Dataset) error {
	if err := d.Validate(); err != nil {
		return err
	}
	err := pgx.BeginFunc(ctx, im.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "TRUNCATE "+joinIdentifiers(referenceTables)+" CASCADE"); err != nil {
			return fmt.Errorf("truncating reference tables: %w", err)
		}
		for _, t := range importPlan(d) {
			n, err := tx.CopyFrom(ctx, pgx.Identifier{t.table}, t.columns, pgx.CopyFromRows(t.rows))
			if err != nil {
				return fmt.Errorf("copying %s: %w", t.table, err)
			}
			im.logger.Debug("reference table imported", zap.String("table", t.table), zap.Int64("rows", n))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("importing reference dataset: %w", err)
	}
	im.logger.Info("reference dataset imported",
		zap.Int("classes", len(d.Classes)),
		zap.Int("spells", len(d.Spells)),
		zap.Int("races", len(d.Races)),
	)
	return nil
}

type tableRows struct {
	table   string
	columns []string
	rows    [][]any
}

// importPlan flattens d into COPY rows, ordered so parents precede children.
func importPlan(d *ruleset.Dataset) []tableRows {
	abilities := tableRows{table: "ability_modifiers", columns: []string{
		"ability", "score", "atk_mod", "dmg_adj", "def_adj", "hp_adj", "poison_adj", "trauma_survival",
		"lang_adj", "bonus_spells", "learn_spell", "will_adj", "reaction_adj", "max_henchmen",
		"morale_adj", "test", "feat", "skill_adj",
	}}
	for _, a := range ruleset.Abilities() {
		for _, m := range d.Abilities[a] {
			abilities.rows = append(abilities.rows, []any{
				string(a), m.Score, m.AtkMod, m.DmgAdj, m.DefAdj, m.HPAdj, m.PoisonAdj, m.TraumaSurvival,
				m.LangAdj, m.BonusSpells, m.LearnSpell, m.WillAdj, m.ReactionAdj, m.MaxHenchmen,
				m.MoraleAdj, m.Test, m.Feat, m.SkillAdj,
			})
		}
	}

	alignments := tableRows{table: "alignments", columns: []string{"id", "short_name", "name", "weight"}}
	for _, a := range d.Alignments {
		alignments.rows = append(alignments.rows, []any{a.ID, a.ShortName, a.Name, a.Weight})
	}

	genders := tableRows{table: "genders", columns: []string{"id", "name", "weight"}}
	for _, g := range d.Genders {
		genders.rows = append(genders.rows, []any{g.ID, g.Name, g.Weight})
	}

	races := tableRows{table: "races", columns: []string{"id", "name", "weight"}}
	adjustments := tableRows{table: "race_adjustments", columns: []string{"race_id", "ability", "adjustment"}}
	for _, r := range d.Races {
		races.rows = append(races.rows, []any{r.ID, r.Name, r.Weight})
		for _, a := range ruleset.Abilities() {
			if delta, ok := r.Adjustments[a]; ok {
				adjustments.rows = append(adjustments.rows, []any{r.ID, string(a), delta})
			}
		}
	}

	armour := tableRows{table: "armour", columns: []string{
		"id", "armour_type", "ac", "dr", "weight_class", "mv", "cost", "weight", "description",
	}}
	for _, a := range d.Armour {
		armour.rows = append(armour.rows, []any{a.ID, a.Type, a.AC, a.DR, a.WeightClass, a.MV, a.Cost, a.Weight, a.Description})
	}

	shields := tableRows{table: "shields", columns: []string{"id", "shield_type", "def_mod", "cost", "weight"}}
	for _, s := range d.Shields {
		shields.rows = append(shields.rows, []any{s.ID, s.Type, s.DefMod, s.Cost, s.Weight})
	}

	classes := tableRows{table: "classes", columns: []string{
		"id", "name", "base_class_id", "description", "prime_requisites", "alignments",
		"save_bonuses", "starting_armour_id", "starting_shield_id",
	}}
	minimums := tableRows{table: "class_minimums", columns: []string{"class_id", "ability", "score"}}
	levels := tableRows{table: "class_levels", columns: []string{"class_id", "level", "xp", "fa", "ca", "ta", "sv", "hit_dice"}}
	skills := tableRows{table: "class_thief_skills", columns: []string{"class_id", "skill", "level", "base"}}
	for _, c := range d.Classes {
		primes := make([]string, len(c.PrimeRequisites))
		for i, a := range c.PrimeRequisites {
			primes[i] = string(a)
		}
		saves := make([]string, len(c.SaveBonuses))
		for i, s := range c.SaveBonuses {
			saves[i] = string(s)
		}
		var shield *int
		if c.StartingShieldID != 0 {
			shield = &c.StartingShieldID
		}
		classes.rows = append(classes.rows, []any{
			c.ID, c.Name, c.BaseClassID, c.Description, primes, slices.Clone(c.Alignments),
			saves, c.StartingArmourID, shield,
		})
		for _, a := range ruleset.Abilities() {
			if threshold, ok := c.Minimums[a]; ok {
				minimums.rows = append(minimums.rows, []any{c.ID, string(a), threshold})
			}
		}
		for _, row := range c.Progression {
			levels.rows = append(levels.rows, []any{c.ID, row.Level, row.XP, row.FA, row.CA, row.TA, row.SV, row.HitDice})
		}
		for _, def := range ruleset.ThiefSkillDefs() {
			for i, base := range c.ThiefSkills[def.ID] {
				skills.rows = append(skills.rows, []any{c.ID, def.ID, i + 1, base})
			}
		}
	}

	spells := tableRows{table: "spells", columns: []string{"id", "name", "rng", "dur", "reversible", "pp", "description"}}
	schools := tableRows{table: "spell_school_level", columns: []string{"spell_id", "school", "level"}}
	for _, s := range d.Spells {
		spells.rows = append(spells.rows, []any{s.ID, s.Name, s.Range, s.Duration, s.Reversible, s.PP, s.Description})
		for _, sl := range s.Schools {
			schools.rows = append(schools.rows, []any{s.ID, sl.School, sl.Level})
		}
	}

	return []tableRows{
		abilities, alignments, genders, races, adjustments, armour, shields,
		classes, minimums, levels, skills, spells, schools,
	}
}

func joinIdentifiers(tables []string) string {
	quoted := make([]string, len(tables))
	for i, t := range tables {
		quoted[i] = pgx.Identifier{t}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
