package ruleset

// ThiefSkillDef identifies one of the nine thief skills and the ability that modifies it.
type ThiefSkillDef struct {
	ID   string
	Name string
	Stat Ability
}

// thiefSkillDefs is the fixed display order of the thief skills.
var thiefSkillDefs = []ThiefSkillDef{
	{ID: "climb", Name: "Climb", Stat: Dexterity},
	{ID: "decipher_script", Name: "Decipher Script", Stat: Intelligence},
	{ID: "discern_noise", Name: "Discern Noise", Stat: Wisdom},
	{ID: "hide", Name: "Hide", Stat: Dexterity},
	{ID: "manipulate_traps", Name: "Manipulate Traps", Stat: Dexterity},
	{ID: "move_silently", Name: "Move Silently", Stat: Dexterity},
	{ID: "open_locks", Name: "Open Locks", Stat: Dexterity},
	{ID: "pick_pockets", Name: "Pick Pockets", Stat: Dexterity},
	{ID: "read_scrolls", Name: "Read Scrolls", Stat: Intelligence},
}

// ThiefSkillDefs returns the nine thief skills in fixed order.
//
// Postcondition: the returned slice is a fresh copy of length 9.
func ThiefSkillDefs() []ThiefSkillDef {
	out := make([]ThiefSkillDef, len(thiefSkillDefs))
	copy(out, thiefSkillDefs)
	return out
}

func isThiefSkill(id string) bool {
	for _, d := range thiefSkillDefs {
		if d.ID == id {
			return true
		}
	}
	return false
}
