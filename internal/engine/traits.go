package engine

import (
	"strings"

	"github.com/ericogr/mtcg/internal/game"
	"github.com/ericogr/mtcg/internal/keys"
)

// nameTokens maps slugified name fragments to the trait they imply.
// Spelling variants seen in card names are listed explicitly.
var nameTokens = []struct {
	token string
	trait game.Trait
}{
	{"goblin", game.TraitGoblin},
	{"dragon", game.TraitDragon},
	{"ork", game.TraitOrk},
	{"wizard", game.TraitWizard},
	{"wizzard", game.TraitWizard},
	{"knight", game.TraitKnight},
	{"kraken", game.TraitKraken},
	{"fire-elf", game.TraitFireElf},
	{"fireelf", game.TraitFireElf},
	{"fireelve", game.TraitFireElf},
}

// TraitsFromName derives creature traits from a display name. It only runs
// when a card is created without explicit traits; battles never look at names.
// Spells carry no traits.
func TraitsFromName(name string, kind game.Kind) game.Traits {
	if kind != game.KindMonster {
		return 0
	}
	s := keys.CardName(name)
	var out game.Traits
	for _, nt := range nameTokens {
		if strings.Contains(s, nt.token) {
			out |= game.NewTraits(nt.trait)
		}
	}
	return out
}
