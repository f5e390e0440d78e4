package engine

import "github.com/ericogr/mtcg/internal/game"

// DrownDamage is dealt by a water spell to a knight. It beats any base damage.
const DrownDamage = 999

// advantage lists the attacker element that doubles damage against the defender element.
var advantage = map[game.Element]game.Element{
	game.ElementWater:  game.ElementFire,
	game.ElementFire:   game.ElementNormal,
	game.ElementNormal: game.ElementWater,
}

// ElementFactor returns 2.0 when the attacker element is advantaged, 0.5 for
// the reverse pairing and 1.0 otherwise.
func ElementFactor(attacker, defender game.Element) float64 {
	if advantage[attacker] == defender {
		return 2.0
	}
	if advantage[defender] == attacker {
		return 0.5
	}
	return 1.0
}

// ResolveDamage computes the damage attacker deals to defender. Special
// matchups are checked in order and the first match wins; otherwise the
// base damage is scaled by the element factor when either card is a spell.
func ResolveDamage(attacker, defender game.Card) int {
	switch {
	case attacker.IsMonsterWith(game.TraitGoblin) && defender.IsMonsterWith(game.TraitDragon):
		return 0
	case attacker.IsMonsterWith(game.TraitOrk) && defender.IsMonsterWith(game.TraitWizard):
		return 0
	case defender.IsMonsterWith(game.TraitKnight) && attacker.IsSpell() && attacker.Element == game.ElementWater:
		return DrownDamage
	case attacker.IsSpell() && defender.IsMonsterWith(game.TraitKraken):
		return 0
	case attacker.IsMonsterWith(game.TraitDragon) && defender.IsMonsterWith(game.TraitFireElf):
		return 0
	}

	damage := attacker.Damage
	if damage < 0 {
		damage = 0
	}
	if !attacker.IsSpell() && !defender.IsSpell() {
		return damage
	}
	return int(float64(damage) * ElementFactor(attacker.Element, defender.Element))
}
