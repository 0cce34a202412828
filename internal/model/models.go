// Package model defines the persisted entities for the companion bot.
package model

import "time"

// User is a guild member's economy account. Created lazily on first
// observed activity and never destroyed.
type User struct {
	UserID           string     `db:"user_id"`
	Username         string     `db:"username"`
	Balance          int64      `db:"balance"`
	TotalEarned      int64      `db:"total_earned"`
	DailyLastClaimed *time.Time `db:"daily_last_claimed"`
	WorkLastUsed     *time.Time `db:"work_last_used"`
	CreatedAt        time.Time  `db:"created_at"`
}

// Transaction is an append-only record of a single balance change.
type Transaction struct {
	ID          int64     `db:"id"`
	UserID      string    `db:"user_id"`
	Kind        string    `db:"kind"`
	Amount      int64     `db:"amount"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

// Transaction kinds. Game results use "<game>_win" / "<game>_loss".
const (
	TxKindDaily        = "daily"
	TxKindWork         = "work"
	TxKindShopPurchase = "shop_purchase"
	TxKindDrop         = "drop"
	TxKindGiveaway     = "giveaway"
	TxKindAdmin        = "admin"
	TxKindLevelReward  = "level_reward"
	TxKindMysteryBox   = "mystery_box"
)

// GameWinKind returns the transaction kind for a win in the named game.
func GameWinKind(game string) string { return game + "_win" }

// GameLossKind returns the transaction kind for a loss in the named game.
func GameLossKind(game string) string { return game + "_loss" }

// InventoryEntry is one stack of an item owned by a user.
// Rows are removed when quantity reaches zero.
type InventoryEntry struct {
	UserID     string    `db:"user_id"`
	ItemID     string    `db:"item_id"`
	Quantity   int       `db:"quantity"`
	AcquiredAt time.Time `db:"acquired_at"`
}

// ActiveEffect is a time- or use-bounded modifier on a user.
// At most one live effect per kind per user; newer replaces older.
type ActiveEffect struct {
	ID              int64      `db:"id"`
	UserID          string     `db:"user_id"`
	EffectType      string     `db:"effect_type"`
	DurationMinutes *int       `db:"duration_minutes"`
	UsesRemaining   *int       `db:"uses_remaining"`
	CreatedAt       time.Time  `db:"created_at"`
	ExpiresAt       *time.Time `db:"expires_at"`
}

// Live reports whether the effect is still usable at the given time.
func (e *ActiveEffect) Live(now time.Time) bool {
	if e.ExpiresAt != nil && !now.Before(*e.ExpiresAt) {
		return false
	}
	if e.UsesRemaining != nil {
		return *e.UsesRemaining > 0
	}
	return true
}

// Effect types.
const (
	EffectExperienceBoost   = "experience_boost"
	EffectGamblingLuck      = "gambling_luck"
	EffectDailyDouble       = "daily_double"
	EffectWorkCooldownReset = "work_cooldown_reset"
)

// Cooldown records the last use of an action by a user.
type Cooldown struct {
	UserID     string    `db:"user_id"`
	ActionType string    `db:"action_type"`
	LastUsed   time.Time `db:"last_used"`
}

// Action types that carry persisted cooldowns.
const (
	ActionDaily      = "daily"
	ActionWork       = "work"
	ActionCoinflip   = "coinflip"
	ActionDice       = "dice"
	ActionSlots      = "slots"
	ActionUseItem    = "use_item"
	ActionMysteryBox = "mystery_box"
)

// LevelState holds a user's XP totals. The level column is derived from
// xp and stored only for indexing and display.
type LevelState struct {
	UserID        string     `db:"user_id"`
	XP            int64      `db:"xp"`
	Level         int        `db:"level"`
	TotalMessages int64      `db:"total_messages"`
	LastXPGain    *time.Time `db:"last_xp_gain"`
	VoiceTime     int64      `db:"voice_time"` // seconds
}

// Giveaway statuses.
const (
	GiveawayActive    = "active"
	GiveawayCompleted = "completed"
	GiveawayCancelled = "cancelled"
)

// Giveaway is one time-bounded prize draw.
type Giveaway struct {
	ID                int64      `db:"id"`
	MessageID         string     `db:"message_id"`
	ChannelID         string     `db:"channel_id"`
	GuildID           string     `db:"guild_id"`
	HostID            string     `db:"host_id"`
	Title             string     `db:"title"`
	Description       string     `db:"description"`
	Prize             string     `db:"prize"`
	WinnersCount      int        `db:"winners_count"`
	EndTime           time.Time  `db:"end_time"`
	Status            string     `db:"status"`
	RequiredRoles     []string   `db:"required_roles"`
	ForbiddenRoles    []string   `db:"forbidden_roles"`
	BypassRoles       []string   `db:"bypass_roles"`
	WinnerRoleID      string     `db:"winner_role_id"`
	MinMessages       int64      `db:"min_messages"`
	MinAccountAgeDays int        `db:"min_account_age_days"`
	RerollCount       int        `db:"reroll_count"`
	CreatedAt         time.Time  `db:"created_at"`
	EndedAt           *time.Time `db:"ended_at"`
}

// GiveawayEntry is one user's weighted entry in a giveaway.
type GiveawayEntry struct {
	GiveawayID int64     `db:"giveaway_id"`
	UserID     string    `db:"user_id"`
	Entries    int       `db:"entries"`
	EntryTime  time.Time `db:"entry_time"`
}

// GiveawayWinner records one selected winner, original or reroll.
type GiveawayWinner struct {
	GiveawayID int64     `db:"giveaway_id"`
	UserID     string    `db:"user_id"`
	Position   int       `db:"winner_position"`
	IsReroll   bool      `db:"is_reroll"`
	SelectedAt time.Time `db:"selected_at"`
}

// DropChannel is a channel registered to receive coin drops.
type DropChannel struct {
	ID        int64     `db:"id"`
	GuildID   string    `db:"guild_id"`
	ChannelID string    `db:"channel_id"`
	CreatedBy string    `db:"created_by"`
	CreatedAt time.Time `db:"created_at"`
}

// SystemUserID marks drop records written when a drop is created rather
// than claimed.
const SystemUserID = "SYSTEM"

// DropRecord is one coin-drop event: either the creation of a drop
// (UserID == SystemUserID) or a single user's claim.
type DropRecord struct {
	ID             int64     `db:"id"`
	GuildID        string    `db:"guild_id"`
	UserID         string    `db:"user_id"`
	Amount         int64     `db:"amount"`
	Rarity         string    `db:"rarity"`
	CollectionType string    `db:"collection_type"`
	Timestamp      time.Time `db:"drop_timestamp"`
}

// UserDropStats aggregates a user's lifetime drop claims.
type UserDropStats struct {
	UserID         string     `db:"user_id"`
	TotalCollected int64      `db:"total_collected"`
	TotalDrops     int64      `db:"total_drops"`
	CommonDrops    int64      `db:"common_drops"`
	RareDrops      int64      `db:"rare_drops"`
	EpicDrops      int64      `db:"epic_drops"`
	LegendaryDrops int64      `db:"legendary_drops"`
	LastDrop       *time.Time `db:"last_drop"`
	BestDrop       int64      `db:"best_drop"`
}
