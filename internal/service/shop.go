package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"discord-companion-bot/internal/model"
	"discord-companion-bot/internal/pkg/lock"
	"discord-companion-bot/internal/repository"
	"discord-companion-bot/internal/shop"
)

// ShopService handles catalog listing, purchases, item use, and the
// mystery box.
type ShopService struct {
	economy   *EconomyService
	cooldown  *CooldownService
	effects   *EffectService
	inventory *repository.InventoryRepository
	locks     *lock.UserLock

	mu  sync.Mutex
	rng *rand.Rand
}

// NewShopService creates a new ShopService instance.
func NewShopService(
	economy *EconomyService,
	cooldown *CooldownService,
	effects *EffectService,
	inventory *repository.InventoryRepository,
	locks *lock.UserLock,
	rng *rand.Rand,
) *ShopService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &ShopService{
		economy:   economy,
		cooldown:  cooldown,
		effects:   effects,
		inventory: inventory,
		locks:     locks,
		rng:       rng,
	}
}

// Catalog returns the items in display order.
func (s *ShopService) Catalog() []shop.ItemConfig {
	return shop.All()
}

// Purchase debits the item price and adds it to the inventory.
func (s *ShopService) Purchase(ctx context.Context, userID, username string, itemID string, quantity int) (*shop.ItemConfig, error) {
	item, ok := shop.Get(shop.ItemID(itemID))
	if !ok {
		return nil, fmt.Errorf("%w: unknown item %q", ErrNotFound, itemID)
	}
	if quantity < 1 {
		quantity = 1
	}

	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	if _, err := s.economy.EnsureUser(ctx, userID, username); err != nil {
		return nil, err
	}

	total := item.Price * int64(quantity)
	desc := fmt.Sprintf("Bought %dx %s", quantity, item.Name)
	if _, err := s.economy.Debit(ctx, userID, total, model.TxKindShopPurchase, desc); err != nil {
		return nil, err
	}

	if err := s.inventory.AddItem(ctx, userID, string(item.ID), quantity); err != nil {
		return nil, fmt.Errorf("failed to stock inventory: %w", err)
	}
	return &item, nil
}

// UseResult reports what using an item produced.
type UseResult struct {
	Item   shop.ItemConfig
	Effect *model.ActiveEffect
	// Mystery box outcome; exactly one of Coins or WonItem is set.
	Coins   int64
	WonItem *shop.ItemConfig
}

// UseItem consumes one unit from the inventory and applies the item:
// consumables grant their effect, the mystery box rolls its reward.
// Collectibles cannot be used.
func (s *ShopService) UseItem(ctx context.Context, userID, username string, itemID string) (*UseResult, error) {
	item, ok := shop.Get(shop.ItemID(itemID))
	if !ok {
		return nil, fmt.Errorf("%w: unknown item %q", ErrNotFound, itemID)
	}
	if !item.Usable() {
		return nil, fmt.Errorf("%w: %s cannot be used", ErrBadInput, item.Name)
	}

	action := model.ActionUseItem
	if item.Category == shop.CategoryMystery {
		action = model.ActionMysteryBox
	}

	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	if _, err := s.economy.EnsureUser(ctx, userID, username); err != nil {
		return nil, err
	}
	if err := s.cooldown.Check(ctx, userID, action); err != nil {
		return nil, err
	}

	consumed, err := s.inventory.ConsumeItem(ctx, userID, string(item.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to consume item: %w", err)
	}
	if !consumed {
		return nil, fmt.Errorf("%w: no %s in inventory", ErrNotFound, item.Name)
	}

	result := &UseResult{Item: item}
	switch item.Category {
	case shop.CategoryMystery:
		if err := s.openMysteryBox(ctx, userID, result); err != nil {
			return nil, err
		}
	default:
		effect, err := s.grantItemEffect(ctx, userID, item)
		if err != nil {
			return nil, err
		}
		result.Effect = effect
	}

	if err := s.cooldown.Use(ctx, userID, action); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *ShopService) grantItemEffect(ctx context.Context, userID string, item shop.ItemConfig) (*model.ActiveEffect, error) {
	if item.DurationMinutes > 0 {
		return s.effects.GrantTimed(ctx, userID, item.EffectKind, item.DurationMinutes)
	}
	return s.effects.GrantUses(ctx, userID, item.EffectKind, item.Uses)
}

// openMysteryBox rolls the box: an even split between a coin payout and
// a random reward item. Both branches fill the result.
func (s *ShopService) openMysteryBox(ctx context.Context, userID string, result *UseResult) error {
	s.mu.Lock()
	coinBranch := s.rng.Float64() < 0.5
	coins := int64(shop.MysteryCoinMin + s.rng.Intn(shop.MysteryCoinMax-shop.MysteryCoinMin+1))
	wonID := shop.MysteryRewardItems[s.rng.Intn(len(shop.MysteryRewardItems))]
	s.mu.Unlock()

	if coinBranch {
		if _, err := s.economy.Credit(ctx, userID, coins, model.TxKindMysteryBox, "Mystery box coins"); err != nil {
			return err
		}
		result.Coins = coins
		return nil
	}

	won, _ := shop.Get(wonID)
	if err := s.inventory.AddItem(ctx, userID, string(won.ID), 1); err != nil {
		return fmt.Errorf("failed to award mystery item: %w", err)
	}
	result.WonItem = &won
	return nil
}

// Inventory returns a user's held items with their catalog entries.
type InventoryLine struct {
	Item     shop.ItemConfig
	Quantity int
}

// Inventory lists what the user holds, catalog order preserved for
// known items, unknown ids skipped.
func (s *ShopService) Inventory(ctx context.Context, userID string) ([]InventoryLine, error) {
	entries, err := s.inventory.GetAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}

	lines := make([]InventoryLine, 0, len(entries))
	for _, e := range entries {
		item, ok := shop.Get(shop.ItemID(e.ItemID))
		if !ok {
			continue
		}
		lines = append(lines, InventoryLine{Item: item, Quantity: e.Quantity})
	}
	return lines, nil
}
