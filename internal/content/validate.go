package content

import (
	"fmt"

	"github.com/roach88/battle/internal/battle"
)

// validate reports every problem in doc rather than stopping at the first.
func validate(doc *document) []error {
	var errs []error
	add := func(code, field, format string, args ...any) {
		errs = append(errs, &LoadError{Code: code, Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if len(doc.Players) == 0 {
		add(ErrCodeNoCombatants, "players", "at least one player is required")
	}
	if len(doc.Enemies) == 0 {
		add(ErrCodeNoCombatants, "enemies", "at least one enemy is required")
	}

	seen := make(map[string]string)
	check := func(side string, i int, c characterDoc, needAttacks bool) {
		field := fmt.Sprintf("%s[%d]", side, i)
		switch prev, dup := seen[c.Name]; {
		case c.Name == "":
			add(ErrCodeName, field, "name is required")
		case dup:
			add(ErrCodeName, field, "name %q already used by %s", c.Name, prev)
		default:
			seen[c.Name] = field
		}
		if c.Health <= 0 {
			add(ErrCodeHealth, field, "health must be positive, got %d", c.Health)
		}
		if needAttacks && len(c.Attacks) == 0 {
			add(ErrCodeAttack, field, "players need at least one attack")
		}
		for j, a := range c.Attacks {
			af := fmt.Sprintf("%s.attacks[%d]", field, j)
			if a.Name == "" {
				add(ErrCodeAttack, af, "name is required")
			}
			if a.Power <= 0 {
				add(ErrCodeAttack, af, "power must be positive, got %d", a.Power)
			}
			if a.ManaCost < 0 {
				add(ErrCodeAttack, af, "mana_cost must not be negative, got %d", a.ManaCost)
			}
		}
	}
	for i, c := range doc.Players {
		check("players", i, c, true)
	}
	for i, c := range doc.Enemies {
		check("enemies", i, c, false)
	}

	if doc.Mana < 0 {
		add(ErrCodeMana, "mana", "must not be negative, got %d", doc.Mana)
	}
	if doc.MaxMana < doc.Mana {
		add(ErrCodeMana, "max_mana", "must be at least mana (%d), got %d", doc.Mana, doc.MaxMana)
	}
	if doc.ManaRegen < 0 {
		add(ErrCodeMana, "mana_regen", "must not be negative, got %d", doc.ManaRegen)
	}
	if doc.First != battle.Players.String() && doc.First != battle.Enemies.String() {
		add(ErrCodeFirst, "first", "must be %q or %q, got %q", battle.Players, battle.Enemies, doc.First)
	}
	if doc.EnemyThink < 0 {
		add(ErrCodeThink, "enemy_think", "must not be negative, got %g", doc.EnemyThink)
	}
	return errs
}
