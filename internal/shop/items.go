// Package shop defines the item catalog: consumables that grant timed
// or use-bounded effects, the mystery box, and collectibles.
package shop

import "discord-companion-bot/internal/model"

// ItemID identifies a purchasable item.
type ItemID string

// Item identifiers.
const (
	ItemXPBoost     ItemID = "xp_boost"
	ItemLuckyCharm  ItemID = "lucky_charm"
	ItemDailyDouble ItemID = "daily_double"
	ItemEnergyDrink ItemID = "energy_drink"
	ItemMysteryBox  ItemID = "mystery_box"
	ItemTrophy      ItemID = "trophy"
	ItemGem         ItemID = "gem"
)

// ItemCategory groups items for display and use semantics.
type ItemCategory string

const (
	CategoryConsumable  ItemCategory = "consumable"  // usable, grants an effect
	CategoryMystery     ItemCategory = "mystery"     // usable, random reward
	CategoryCollectible ItemCategory = "collectible" // held, not usable
)

// ItemConfig holds the catalog entry for a shop item.
type ItemConfig struct {
	ID          ItemID
	Name        string
	Emoji       string
	Price       int64
	Description string
	Category    ItemCategory

	// EffectKind is the effect granted when a consumable is used.
	EffectKind string
	// DurationMinutes bounds the granted effect in time; 0 means
	// use-bounded instead.
	DurationMinutes int
	// Uses is the remaining-use counter for use-bounded effects.
	Uses int
}

// Items is the full catalog.
var Items = map[ItemID]ItemConfig{
	ItemXPBoost: {
		ID:              ItemXPBoost,
		Name:            "XP Boost",
		Emoji:           "📈",
		Price:           750,
		Description:     "Doubles text and voice XP for 1 hour",
		Category:        CategoryConsumable,
		EffectKind:      model.EffectExperienceBoost,
		DurationMinutes: 60,
	},
	ItemLuckyCharm: {
		ID:          ItemLuckyCharm,
		Name:        "Lucky Charm",
		Emoji:       "🍀",
		Price:       500,
		Description: "Shifts the odds of your next 3 games in your favor",
		Category:    CategoryConsumable,
		EffectKind:  model.EffectGamblingLuck,
		Uses:        3,
	},
	ItemDailyDouble: {
		ID:          ItemDailyDouble,
		Name:        "Daily Double",
		Emoji:       "✨",
		Price:       400,
		Description: "Doubles your next daily claim",
		Category:    CategoryConsumable,
		EffectKind:  model.EffectDailyDouble,
		Uses:        1,
	},
	ItemEnergyDrink: {
		ID:          ItemEnergyDrink,
		Name:        "Energy Drink",
		Emoji:       "⚡",
		Price:       300,
		Description: "Lets you work again right away",
		Category:    CategoryConsumable,
		EffectKind:  model.EffectWorkCooldownReset,
		Uses:        1,
	},
	ItemMysteryBox: {
		ID:          ItemMysteryBox,
		Name:        "Mystery Box",
		Emoji:       "🎁",
		Price:       1000,
		Description: "Contains coins or a random item, nobody knows",
		Category:    CategoryMystery,
	},
	ItemTrophy: {
		ID:          ItemTrophy,
		Name:        "Trophy",
		Emoji:       "🏆",
		Price:       5000,
		Description: "A shiny flex for your inventory",
		Category:    CategoryCollectible,
	},
	ItemGem: {
		ID:          ItemGem,
		Name:        "Gem",
		Emoji:       "💎",
		Price:       2500,
		Description: "Rare and useless, like all the best things",
		Category:    CategoryCollectible,
	},
}

// displayOrder fixes the catalog listing order.
var displayOrder = []ItemID{
	ItemXPBoost,
	ItemLuckyCharm,
	ItemDailyDouble,
	ItemEnergyDrink,
	ItemMysteryBox,
	ItemGem,
	ItemTrophy,
}

// All returns the catalog in display order.
func All() []ItemConfig {
	items := make([]ItemConfig, 0, len(displayOrder))
	for _, id := range displayOrder {
		if item, ok := Items[id]; ok {
			items = append(items, item)
		}
	}
	return items
}

// Get returns the catalog entry for an item id.
func Get(id ItemID) (ItemConfig, bool) {
	item, ok := Items[id]
	return item, ok
}

// Usable reports whether using the item has an action attached.
func (c ItemConfig) Usable() bool {
	return c.Category == CategoryConsumable || c.Category == CategoryMystery
}

// MysteryRewardItems are the items a mystery box can yield.
var MysteryRewardItems = []ItemID{
	ItemLuckyCharm,
	ItemDailyDouble,
	ItemEnergyDrink,
	ItemGem,
}

// MysteryCoinRange bounds the coin branch of a mystery box.
const (
	MysteryCoinMin = 200
	MysteryCoinMax = 2000
)
