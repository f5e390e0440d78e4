package game

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Kind distinguishes spells from monsters.
type Kind string

const (
	KindSpell   Kind = "spell"
	KindMonster Kind = "monster"
)

// ParseKind accepts a case-insensitive kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindSpell, KindMonster:
		return k, nil
	}
	return "", fmt.Errorf("unknown card kind %q", s)
}

// Element governs the advantage table used when a spell is involved.
type Element string

const (
	ElementFire   Element = "fire"
	ElementWater  Element = "water"
	ElementNormal Element = "normal"
)

// ParseElement accepts a case-insensitive element name.
func ParseElement(s string) (Element, error) {
	switch e := Element(strings.ToLower(strings.TrimSpace(s))); e {
	case ElementFire, ElementWater, ElementNormal:
		return e, nil
	}
	return "", fmt.Errorf("unknown element %q", s)
}

// Trait is a creature capability that switches on a special-case matchup.
type Trait uint16

const (
	TraitGoblin Trait = 1 << iota
	TraitDragon
	TraitOrk
	TraitWizard
	TraitKnight
	TraitKraken
	TraitFireElf
)

var traitNames = map[Trait]string{
	TraitGoblin:  "goblin",
	TraitDragon:  "dragon",
	TraitOrk:     "ork",
	TraitWizard:  "wizard",
	TraitKnight:  "knight",
	TraitKraken:  "kraken",
	TraitFireElf: "fire-elf",
}

// ParseTrait maps a configured trait name to its flag.
func ParseTrait(s string) (Trait, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	for t, name := range traitNames {
		if name == n {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown trait %q", s)
}

func (t Trait) String() string {
	if n, ok := traitNames[t]; ok {
		return n
	}
	return fmt.Sprintf("trait(%d)", uint16(t))
}

// Traits is the set of traits carried by a card. It is fixed when the card
// is created and persisted as an integer column.
type Traits uint16

func NewTraits(ts ...Trait) Traits {
	var out Traits
	for _, t := range ts {
		out |= Traits(t)
	}
	return out
}

func (s Traits) Has(t Trait) bool { return s&Traits(t) != 0 }

// Names returns the trait names in a stable order.
func (s Traits) Names() []string {
	out := make([]string, 0, len(traitNames))
	for t, name := range traitNames {
		if s.Has(t) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func (s Traits) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Names())
}

func (s *Traits) UnmarshalJSON(b []byte) error {
	var names []string
	if err := json.Unmarshal(b, &names); err != nil {
		return err
	}
	var out Traits
	for _, n := range names {
		t, err := ParseTrait(n)
		if err != nil {
			return err
		}
		out |= Traits(t)
	}
	*s = out
	return nil
}

// Card is an owned card instance. Only the owner column ever changes after
// creation; the battle engine never reads it.
type Card struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:64;not null"`
	Kind      Kind      `json:"kind" gorm:"size:16;not null"`
	Element   Element   `json:"element" gorm:"size:16;not null"`
	Damage    int       `json:"damage" gorm:"not null"`
	Traits    Traits    `json:"traits" gorm:"not null;default:0"`
	Owner     string    `json:"owner" gorm:"column:owner_username;size:64;index"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName keeps the table name aligned with the catalog wording.
func (Card) TableName() string { return "cards" }

func (c Card) IsSpell() bool   { return c.Kind == KindSpell }
func (c Card) IsMonster() bool { return c.Kind == KindMonster }

// IsMonsterWith reports whether c is a monster carrying trait t.
func (c Card) IsMonsterWith(t Trait) bool { return c.IsMonster() && c.Traits.Has(t) }

// CardTemplate describes a mintable card as configured in the catalog file.
type CardTemplate struct {
	Name    string
	Kind    Kind
	Element Element
	Damage  int
	Traits  Traits
}

// Mint creates an unsaved card owned by owner.
func (t CardTemplate) Mint(owner string) Card {
	return Card{
		Name:    t.Name,
		Kind:    t.Kind,
		Element: t.Element,
		Damage:  t.Damage,
		Traits:  t.Traits,
		Owner:   owner,
	}
}
