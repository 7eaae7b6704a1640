package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/hyperborea/internal/game/ruleset"
)

// ErrSchemaNotMigrated is returned when the reference tables do not exist.
var ErrSchemaNotMigrated = errors.New("reference schema not migrated")

// ReferenceRepository reads the reference dataset from PostgreSQL.
// It satisfies reference.Loader.
type ReferenceRepository struct {
	db       *pgxpool.Pool
	spellIDs []int
}

// NewReferenceRepository creates a ReferenceRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewReferenceRepository(db *pgxpool.Pool) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// WithSpellIDs returns a copy of r whose GetSpell accepts only the given ids.
//
// Postcondition: the allow-list is sorted and independent of ids.
func (r *ReferenceRepository) WithSpellIDs(ids []int) *ReferenceRepository {
	allow := slices.Clone(ids)
	slices.Sort(allow)
	return &ReferenceRepository{db: r.db, spellIDs: allow}
}

// Load reads every reference table. Table groups are read concurrently, each
// in its own read-only transaction.
//
// Postcondition: Returns a Dataset with rows ordered by id (ability rows by
// score), or ErrSchemaNotMigrated when the tables are missing. The result is
// not validated.
func (r *ReferenceRepository) Load(ctx context.Context) (*ruleset.Dataset, error) {
	var d ruleset.Dataset
	g, gctx := errgroup.WithContext(ctx)
	run := func(name string, fn func(context.Context, pgx.Tx) error) {
		g.Go(func() error {
			err := readOnly(gctx, r.db, func(tx pgx.Tx) error { return fn(gctx, tx) })
			if err != nil {
				if isUndefinedTableError(err) {
					return fmt.Errorf("loading %s: %w", name, ErrSchemaNotMigrated)
				}
				return fmt.Errorf("loading %s: %w", name, err)
			}
			return nil
		})
	}

	run("ability modifiers", func(ctx context.Context, tx pgx.Tx) (err error) {
		d.Abilities, err = loadAbilities(ctx, tx)
		return err
	})
	run("classes", func(ctx context.Context, tx pgx.Tx) (err error) {
		d.Classes, err = loadClasses(ctx, tx)
		return err
	})
	run("races", func(ctx context.Context, tx pgx.Tx) (err error) {
		d.Races, err = loadRaces(ctx, tx)
		return err
	})
	run("genders", func(ctx context.Context, tx pgx.Tx) (err error) {
		d.Genders, err = loadGenders(ctx, tx)
		return err
	})
	run("alignments", func(ctx context.Context, tx pgx.Tx) (err error) {
		d.Alignments, err = loadAlignments(ctx, tx)
		return err
	})
	run("equipment", func(ctx context.Context, tx pgx.Tx) (err error) {
		if d.Armour, err = loadArmour(ctx, tx); err != nil {
			return err
		}
		d.Shields, err = loadShields(ctx, tx)
		return err
	})
	run("spells", func(ctx context.Context, tx pgx.Tx) (err error) {
		d.Spells, err = loadSpells(ctx, tx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetSpell retrieves one spell with its level string built in SQL.
//
// Precondition: the allow-list was set with WithSpellIDs.
// Postcondition: Returns ruleset.ErrInvalidID before touching the database when
// id is not allow-listed. Level excludes the rune school and is ordered by
// school name.
func (r *ReferenceRepository) GetSpell(ctx context.Context, id int) (ruleset.Spell, error) {
	if _, ok := slices.BinarySearch(r.spellIDs, id); !ok {
		return ruleset.Spell{}, fmt.Errorf("%w: spell %d", ruleset.ErrInvalidID, id)
	}
	var s ruleset.Spell
	err := r.db.QueryRow(ctx,
		`SELECT s.id, s.name, s.rng, s.dur, s.reversible, s.pp, s.description,
		        COALESCE(string_agg(l.school || ' ' || l.level, ', ' ORDER BY l.school)
		                 FILTER (WHERE l.school <> 'run'), '')
		 FROM spells s
		 LEFT JOIN spell_school_level l ON l.spell_id = s.id
		 WHERE s.id = $1
		 GROUP BY s.id`,
		id,
	).Scan(&s.ID, &s.Name, &s.Range, &s.Duration, &s.Reversible, &s.PP, &s.Description, &s.Level)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ruleset.Spell{}, fmt.Errorf("%w: allow-listed spell %d has no row", ruleset.ErrInvalidDataset, id)
		}
		return ruleset.Spell{}, fmt.Errorf("querying spell: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT school, level FROM spell_school_level WHERE spell_id = $1 ORDER BY school`, id)
	if err != nil {
		return ruleset.Spell{}, fmt.Errorf("querying spell schools: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sl ruleset.SchoolLevel
		if err := rows.Scan(&sl.School, &sl.Level); err != nil {
			return ruleset.Spell{}, fmt.Errorf("scanning spell school: %w", err)
		}
		s.Schools = append(s.Schools, sl)
	}
	if err := rows.Err(); err != nil {
		return ruleset.Spell{}, fmt.Errorf("iterating spell schools: %w", err)
	}
	return s, nil
}

func loadAbilities(ctx context.Context, tx pgx.Tx) (ruleset.AbilityTable, error) {
	rows, err := tx.Query(ctx,
		`SELECT ability, score, atk_mod, dmg_adj, def_adj, hp_adj, poison_adj, trauma_survival,
		        lang_adj, bonus_spells, learn_spell, will_adj, reaction_adj, max_henchmen,
		        morale_adj, test, feat, skill_adj
		 FROM ability_modifiers ORDER BY ability, score`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	table := make(ruleset.AbilityTable)
	for rows.Next() {
		var (
			a string
			m ruleset.AbilityModifiers
		)
		if err := rows.Scan(&a, &m.Score, &m.AtkMod, &m.DmgAdj, &m.DefAdj, &m.HPAdj, &m.PoisonAdj,
			&m.TraumaSurvival, &m.LangAdj, &m.BonusSpells, &m.LearnSpell, &m.WillAdj, &m.ReactionAdj,
			&m.MaxHenchmen, &m.MoraleAdj, &m.Test, &m.Feat, &m.SkillAdj); err != nil {
			return nil, fmt.Errorf("scanning ability modifier: %w", err)
		}
		table[ruleset.Ability(a)] = append(table[ruleset.Ability(a)], m)
	}
	return table, rows.Err()
}

func loadClasses(ctx context.Context, tx pgx.Tx) ([]*ruleset.Class, error) {
	rows, err := tx.Query(ctx,
		`SELECT id, name, base_class_id, description, prime_requisites, alignments,
		        save_bonuses, starting_armour_id, starting_shield_id
		 FROM classes ORDER BY id`)
	if err != nil {
		return nil, err
	}
	var classes []*ruleset.Class
	byID := make(map[int]*ruleset.Class)
	for rows.Next() {
		var (
			c              ruleset.Class
			primes, saves  []string
			startingShield *int
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.BaseClassID, &c.Description, &primes, &c.Alignments,
			&saves, &c.StartingArmourID, &startingShield); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning class: %w", err)
		}
		for _, p := range primes {
			c.PrimeRequisites = append(c.PrimeRequisites, ruleset.Ability(p))
		}
		for _, s := range saves {
			c.SaveBonuses = append(c.SaveBonuses, ruleset.SaveCategory(s))
		}
		if startingShield != nil {
			c.StartingShieldID = *startingShield
		}
		classes = append(classes, &c)
		byID[c.ID] = &c
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := loadClassMinimums(ctx, tx, byID); err != nil {
		return nil, err
	}
	if err := loadClassLevels(ctx, tx, byID); err != nil {
		return nil, err
	}
	if err := loadClassThiefSkills(ctx, tx, byID); err != nil {
		return nil, err
	}
	for _, c := range classes {
		if c.HitDie, c.HitPointBonus, err = ruleset.DeriveHitDie(c.Progression); err != nil {
			return nil, fmt.Errorf("class %d: %w", c.ID, err)
		}
	}
	return classes, nil
}

func loadClassMinimums(ctx context.Context, tx pgx.Tx, byID map[int]*ruleset.Class) error {
	rows, err := tx.Query(ctx, `SELECT class_id, ability, score FROM class_minimums`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			classID, score int
			a              string
		)
		if err := rows.Scan(&classID, &a, &score); err != nil {
			return fmt.Errorf("scanning class minimum: %w", err)
		}
		c, ok := byID[classID]
		if !ok {
			continue
		}
		if c.Minimums == nil {
			c.Minimums = make(map[ruleset.Ability]int)
		}
		c.Minimums[ruleset.Ability(a)] = score
	}
	return rows.Err()
}

func loadClassLevels(ctx context.Context, tx pgx.Tx, byID map[int]*ruleset.Class) error {
	rows, err := tx.Query(ctx,
		`SELECT class_id, level, xp, fa, ca, ta, sv, hit_dice
		 FROM class_levels ORDER BY class_id, level`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			classID int
			row     ruleset.LevelRow
		)
		if err := rows.Scan(&classID, &row.Level, &row.XP, &row.FA, &row.CA, &row.TA, &row.SV, &row.HitDice); err != nil {
			return fmt.Errorf("scanning class level: %w", err)
		}
		if c, ok := byID[classID]; ok {
			c.Progression = append(c.Progression, row)
		}
	}
	return rows.Err()
}

func loadClassThiefSkills(ctx context.Context, tx pgx.Tx, byID map[int]*ruleset.Class) error {
	rows, err := tx.Query(ctx,
		`SELECT class_id, skill, level, base
		 FROM class_thief_skills ORDER BY class_id, skill, level`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			classID, level int
			skill          string
			base           *int
		)
		if err := rows.Scan(&classID, &skill, &level, &base); err != nil {
			return fmt.Errorf("scanning thief skill: %w", err)
		}
		c, ok := byID[classID]
		if !ok {
			continue
		}
		if c.ThiefSkills == nil {
			c.ThiefSkills = make(map[string][]*int)
		}
		values := c.ThiefSkills[skill]
		for len(values) < level {
			values = append(values, nil)
		}
		values[level-1] = base
		c.ThiefSkills[skill] = values
	}
	return rows.Err()
}

func loadRaces(ctx context.Context, tx pgx.Tx) ([]*ruleset.Race, error) {
	rows, err := tx.Query(ctx, `SELECT id, name, weight FROM races ORDER BY id`)
	if err != nil {
		return nil, err
	}
	var races []*ruleset.Race
	byID := make(map[int]*ruleset.Race)
	for rows.Next() {
		var r ruleset.Race
		if err := rows.Scan(&r.ID, &r.Name, &r.Weight); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning race: %w", err)
		}
		races = append(races, &r)
		byID[r.ID] = &r
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	adj, err := tx.Query(ctx, `SELECT race_id, ability, adjustment FROM race_adjustments`)
	if err != nil {
		return nil, err
	}
	defer adj.Close()
	for adj.Next() {
		var (
			raceID, delta int
			a             string
		)
		if err := adj.Scan(&raceID, &a, &delta); err != nil {
			return nil, fmt.Errorf("scanning race adjustment: %w", err)
		}
		if r, ok := byID[raceID]; ok {
			if r.Adjustments == nil {
				r.Adjustments = make(map[ruleset.Ability]int)
			}
			r.Adjustments[ruleset.Ability(a)] = delta
		}
	}
	return races, adj.Err()
}

func loadGenders(ctx context.Context, tx pgx.Tx) ([]*ruleset.Gender, error) {
	rows, err := tx.Query(ctx, `SELECT id, name, weight FROM genders ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var genders []*ruleset.Gender
	for rows.Next() {
		var g ruleset.Gender
		if err := rows.Scan(&g.ID, &g.Name, &g.Weight); err != nil {
			return nil, fmt.Errorf("scanning gender: %w", err)
		}
		genders = append(genders, &g)
	}
	return genders, rows.Err()
}

func loadAlignments(ctx context.Context, tx pgx.Tx) ([]*ruleset.Alignment, error) {
	rows, err := tx.Query(ctx, `SELECT id, short_name, name, weight FROM alignments ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var alignments []*ruleset.Alignment
	for rows.Next() {
		var a ruleset.Alignment
		if err := rows.Scan(&a.ID, &a.ShortName, &a.Name, &a.Weight); err != nil {
			return nil, fmt.Errorf("scanning alignment: %w", err)
		}
		alignments = append(alignments, &a)
	}
	return alignments, rows.Err()
}

func loadArmour(ctx context.Context, tx pgx.Tx) ([]*ruleset.Armour, error) {
	rows, err := tx.Query(ctx,
		`SELECT id, armour_type, ac, dr, weight_class, mv, cost, weight, description
		 FROM armour ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var armour []*ruleset.Armour
	for rows.Next() {
		var a ruleset.Armour
		if err := rows.Scan(&a.ID, &a.Type, &a.AC, &a.DR, &a.WeightClass, &a.MV, &a.Cost, &a.Weight, &a.Description); err != nil {
			return nil, fmt.Errorf("scanning armour: %w", err)
		}
		armour = append(armour, &a)
	}
	return armour, rows.Err()
}

func loadShields(ctx context.Context, tx pgx.Tx) ([]*ruleset.Shield, error) {
	rows, err := tx.Query(ctx, `SELECT id, shield_type, def_mod, cost, weight FROM shields ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var shields []*ruleset.Shield
	for rows.Next() {
		var s ruleset.Shield
		if err := rows.Scan(&s.ID, &s.Type, &s.DefMod, &s.Cost, &s.Weight); err != nil {
			return nil, fmt.Errorf("scanning shield: %w", err)
		}
		shields = append(shields, &s)
	}
	return shields, rows.Err()
}

func loadSpells(ctx context.Context, tx pgx.Tx) ([]*ruleset.Spell, error) {
	rows, err := tx.Query(ctx,
		`SELECT id, name, rng, dur, reversible, pp, description FROM spells ORDER BY id`)
	if err != nil {
		return nil, err
	}
	var spells []*ruleset.Spell
	byID := make(map[int]*ruleset.Spell)
	for rows.Next() {
		var s ruleset.Spell
		if err := rows.Scan(&s.ID, &s.Name, &s.Range, &s.Duration, &s.Reversible, &s.PP, &s.Description); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning spell: %w", err)
		}
		spells = append(spells, &s)
		byID[s.ID] = &s
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	schools, err := tx.Query(ctx,
		`SELECT spell_id, school, level FROM spell_school_level ORDER BY spell_id, school`)
	if err != nil {
		return nil, err
	}
	defer schools.Close()
	for schools.Next() {
		var (
			spellID int
			sl      ruleset.SchoolLevel
		)
		if err := schools.Scan(&spellID, &sl.School, &sl.Level); err != nil {
			return nil, fmt.Errorf("scanning spell school: %w", err)
		}
		if s, ok := byID[spellID]; ok {
			s.Schools = append(s.Schools, sl)
		}
	}
	if err := schools.Err(); err != nil {
		return nil, err
	}
	for _, s := range spells {
		s.Level = ruleset.LevelString(s.Schools)
	}
	return spells, nil
}
