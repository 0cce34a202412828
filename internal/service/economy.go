package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"discord-companion-bot/internal/config"
	"discord-companion-bot/internal/model"
	"discord-companion-bot/internal/pkg/lock"
	"discord-companion-bot/internal/repository"
)

// workFlavors are the random job labels attached to work payouts.
var workFlavors = []string{
	"You walked the neighbor's dog",
	"You fixed a stranger's printer",
	"You moderated a heated thread",
	"You flipped burgers at the food truck",
	"You debugged production at 3am",
	"You taught a goldfish to fetch",
	"You mowed three lawns",
	"You delivered suspiciously heavy pizzas",
}

// EconomyService owns the balance ledger: credits, debits, daily and
// work claims, admin adjustments, and history reads.
type EconomyService struct {
	users   *repository.UserRepository
	txs     *repository.TransactionRepository
	effects *EffectService
	locks   *lock.UserLock

	currency  config.CurrencyConfig
	cooldowns config.CooldownsConfig

	mu  sync.Mutex
	rng *rand.Rand
}

// NewEconomyService creates a new EconomyService instance.
func NewEconomyService(
	users *repository.UserRepository,
	txs *repository.TransactionRepository,
	effects *EffectService,
	locks *lock.UserLock,
	currency config.CurrencyConfig,
	cooldowns config.CooldownsConfig,
	rng *rand.Rand,
) *EconomyService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &EconomyService{
		users:     users,
		txs:       txs,
		effects:   effects,
		locks:     locks,
		currency:  currency,
		cooldowns: cooldowns,
		rng:       rng,
	}
}

// EnsureUser creates an account lazily on first observed activity and
// keeps the stored username current.
func (s *EconomyService) EnsureUser(ctx context.Context, userID, username string) (*model.User, error) {
	user, created, err := s.users.GetOrCreate(ctx, userID, username)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}
	if !created && username != "" && user.Username != username {
		if err := s.users.UpdateUsername(ctx, userID, username); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("failed to refresh username")
		} else {
			user.Username = username
		}
	}
	return user, nil
}

// GetUser returns the account, creating it if missing.
func (s *EconomyService) GetUser(ctx context.Context, userID, username string) (*model.User, error) {
	return s.EnsureUser(ctx, userID, username)
}

// Credit adds amount to a user's balance with a ledger record.
func (s *EconomyService) Credit(ctx context.Context, userID string, amount int64, kind, description string) (*model.User, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: credit amount must be positive", ErrBadInput)
	}
	user, err := s.users.ApplyDelta(ctx, userID, amount, kind, description)
	if err != nil {
		return nil, fmt.Errorf("failed to credit user: %w", err)
	}
	return user, nil
}

// Debit removes amount from a user's balance with a ledger record.
// Fails with ErrInsufficientFunds when the balance would go negative.
func (s *EconomyService) Debit(ctx context.Context, userID string, amount int64, kind, description string) (*model.User, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: debit amount must be positive", ErrBadInput)
	}
	user, err := s.users.ApplyDelta(ctx, userID, -amount, kind, description)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientFunds) {
			return nil, ErrInsufficientFunds
		}
		return nil, fmt.Errorf("failed to debit user: %w", err)
	}
	return user, nil
}

// Adjust applies a signed admin delta.
func (s *EconomyService) Adjust(ctx context.Context, userID string, amount int64, description string) (*model.User, error) {
	user, err := s.users.ApplyDelta(ctx, userID, amount, model.TxKindAdmin, description)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientFunds) {
			return nil, ErrInsufficientFunds
		}
		return nil, fmt.Errorf("failed to adjust balance: %w", err)
	}
	return user, nil
}

// SetBalance pins a user's balance to an exact value, recording the
// implied delta as an admin transaction.
func (s *EconomyService) SetBalance(ctx context.Context, userID string, balance int64, description string) (*model.User, error) {
	if balance < 0 {
		return nil, fmt.Errorf("%w: balance cannot be negative", ErrBadInput)
	}
	user, err := s.users.SetBalance(ctx, userID, balance, description)
	if err != nil {
		return nil, fmt.Errorf("failed to set balance: %w", err)
	}
	return user, nil
}

// DailyResult reports a completed daily claim.
type DailyResult struct {
	Amount  int64
	Doubled bool
	Balance int64
}

// ClaimDaily credits the configured daily amount, doubled when a live
// daily_double effect is held (consumed on use). A claim inside the
// window fails with CooldownError.
func (s *EconomyService) ClaimDaily(ctx context.Context, userID, username string) (*DailyResult, error) {
	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	user, err := s.EnsureUser(ctx, userID, username)
	if err != nil {
		return nil, err
	}

	window := time.Duration(s.cooldowns.Daily) * time.Minute
	now := time.Now()
	if user.DailyLastClaimed != nil && window > 0 {
		elapsed := now.Sub(*user.DailyLastClaimed)
		if elapsed < window {
			return nil, &CooldownError{Action: model.ActionDaily, TimeLeft: window - elapsed}
		}
	}

	amount := s.currency.DailyAmount
	doubled, err := s.effects.Consume(ctx, userID, model.EffectDailyDouble)
	if err != nil {
		return nil, err
	}
	if doubled {
		amount *= 2
	}

	updated, err := s.users.ApplyDelta(ctx, userID, amount, model.TxKindDaily, "Daily reward")
	if err != nil {
		return nil, fmt.Errorf("failed to credit daily reward: %w", err)
	}
	if err := s.users.UpdateDailyClaimed(ctx, userID, now); err != nil {
		return nil, err
	}

	return &DailyResult{Amount: amount, Doubled: doubled, Balance: updated.Balance}, nil
}

// WorkResult reports a completed work claim.
type WorkResult struct {
	Amount   int64
	Flavor   string
	Bypassed bool
	Balance  int64
}

// ClaimWork credits a random amount in [base-10, base+20] with a random
// flavor label. A live work_cooldown_reset effect bypasses the window
// check entirely and is consumed.
func (s *EconomyService) ClaimWork(ctx context.Context, userID, username string) (*WorkResult, error) {
	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	user, err := s.EnsureUser(ctx, userID, username)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	bypassed := false
	window := time.Duration(s.cooldowns.Work) * time.Minute
	if user.WorkLastUsed != nil && window > 0 {
		elapsed := now.Sub(*user.WorkLastUsed)
		if elapsed < window {
			// The reset effect is only spent when a cooldown is
			// actually in the way.
			bypassed, err = s.effects.Consume(ctx, userID, model.EffectWorkCooldownReset)
			if err != nil {
				return nil, err
			}
			if !bypassed {
				return nil, &CooldownError{Action: model.ActionWork, TimeLeft: window - elapsed}
			}
		}
	}

	s.mu.Lock()
	amount := s.currency.WorkAmount - 10 + s.rng.Int63n(31)
	flavor := workFlavors[s.rng.Intn(len(workFlavors))]
	s.mu.Unlock()
	if amount < 1 {
		amount = 1
	}

	updated, err := s.users.ApplyDelta(ctx, userID, amount, model.TxKindWork, flavor)
	if err != nil {
		return nil, fmt.Errorf("failed to credit work payout: %w", err)
	}
	if err := s.users.UpdateWorkUsed(ctx, userID, now); err != nil {
		return nil, err
	}

	return &WorkResult{Amount: amount, Flavor: flavor, Bypassed: bypassed, Balance: updated.Balance}, nil
}

// TopBalances returns the richest users.
func (s *EconomyService) TopBalances(ctx context.Context, limit int) ([]*model.User, error) {
	return s.users.GetTopUsers(ctx, limit)
}

// History returns a user's most recent ledger entries.
func (s *EconomyService) History(ctx context.Context, userID string, limit int) ([]*model.Transaction, error) {
	return s.txs.GetByUserID(ctx, userID, limit)
}
