package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/iudanet/identitykeeper/internal/client/storage"
	"github.com/iudanet/identitykeeper/internal/models"
)

// ChangeListener вызывается после каждой успешной мутации репозитория
type ChangeListener func(ctx context.Context) error

// Repository manages the persisted set of known accounts and the default-user pointer.
// Index is stored as a single JSON record under storage.KeyAccounts,
// default pointer as raw identifier under storage.KeyDefaultUser.
//
// Every read-modify-write runs under one mutex, so concurrent mutations never lose updates.
// Listeners are notified after the lock is released.
type Repository struct {
	store     storage.SecureStore
	listeners []ChangeListener
	mu        sync.Mutex
	lmu       sync.RWMutex
}

// NewRepository creates a repository on top of the given secure store
func NewRepository(store storage.SecureStore) *Repository {
	return &Repository{store: store}
}

// OnChange регистрирует слушателя изменений (используется StateHub)
func (r *Repository) OnChange(fn ChangeListener) {
	r.lmu.Lock()
	defer r.lmu.Unlock()
	r.listeners = append(r.listeners, fn)
}

func (r *Repository) notify(ctx context.Context) error {
	r.lmu.RLock()
	listeners := append([]ChangeListener(nil), r.listeners...)
	r.lmu.RUnlock()

	var errs []error
	for _, fn := range listeners {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to renew state: %w", errors.Join(errs...))
	}
	return nil
}

// errUnchanged мутация ничего не изменила, слушатели не уведомляются
var errUnchanged = errors.New("unchanged")

// mutate выполняет fn под блокировкой и уведомляет слушателей после разблокировки
func (r *Repository) mutate(ctx context.Context, fn func() error) error {
	r.mu.Lock()
	err := fn()
	r.mu.Unlock()
	if errors.Is(err, errUnchanged) {
		return nil
	}
	if err != nil {
		return err
	}
	return r.notify(ctx)
}

// HasAccount reports whether an account with the given identifier exists (case-insensitive, trimmed)
func (r *Repository) HasAccount(ctx context.Context, userSelectBy string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, err := r.loadIndex(ctx)
	if err != nil {
		return false, err
	}
	_, ok := idx[models.NormalizeKey(userSelectBy)]
	return ok, nil
}

// GetAccount returns a copy of the stored account or ErrNotFound
func (r *Repository) GetAccount(ctx context.Context, userSelectBy string) (*models.UserAccountInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, err := r.loadIndex(ctx)
	if err != nil {
		return nil, err
	}
	info, ok := idx[models.NormalizeKey(userSelectBy)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, userSelectBy)
	}
	return info.Clone(), nil
}

// GetAccountByTokens returns the account whose three token fields all equal the given triple
func (r *Repository) GetAccountByTokens(ctx context.Context, tokens models.TokenTriple) (*models.UserAccountInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, err := r.loadIndex(ctx)
	if err != nil {
		return nil, err
	}
	_, info := findByTokens(idx, tokens)
	if info == nil {
		return nil, fmt.Errorf("%w: no account matches tokens", ErrNotFound)
	}
	return info.Clone(), nil
}

// AddAccount inserts a new account. The first account ever added becomes default regardless of setAsDefault.
func (r *Repository) AddAccount(ctx context.Context, userSelectBy string, info *models.UserAccountInfo, setAsDefault bool) error {
	return r.mutate(ctx, func() error {
		return r.addAccount(ctx, userSelectBy, info, setAsDefault)
	})
}

// UpdateAccount replaces an existing account. Fails with ErrNotFound if absent.
func (r *Repository) UpdateAccount(ctx context.Context, userSelectBy string, info *models.UserAccountInfo, setAsDefault bool) error {
	return r.mutate(ctx, func() error {
		return r.updateAccount(ctx, userSelectBy, info, setAsDefault)
	})
}

// AddOrUpdateAccount upserts under a single lock
func (r *Repository) AddOrUpdateAccount(ctx context.Context, userSelectBy string, info *models.UserAccountInfo, setAsDefault bool) error {
	return r.mutate(ctx, func() error {
		idx, err := r.loadIndex(ctx)
		if err != nil {
			return err
		}
		if _, ok := idx[models.NormalizeKey(userSelectBy)]; ok {
			return r.updateAccount(ctx, userSelectBy, info, setAsDefault)
		}
		return r.addAccount(ctx, userSelectBy, info, setAsDefault)
	})
}

// UpdateUserTokens finds the account holding exactly oldTokens and replaces its tokens with newTokens.
// Identifier and profile are preserved.
func (r *Repository) UpdateUserTokens(ctx context.Context, oldTokens, newTokens models.TokenTriple) error {
	return r.mutate(ctx, func() error {
		idx, err := r.loadIndex(ctx)
		if err != nil {
			return err
		}
		key, info := findByTokens(idx, oldTokens)
		if info == nil {
			return fmt.Errorf("%w: no account matches old tokens", ErrNotFound)
		}

		updated := info.Clone()
		updated.SetTokens(newTokens)
		if err := ValidateAccountInfo(updated); err != nil {
			return err
		}
		idx[key] = updated
		return r.saveIndex(ctx, idx)
	})
}

// RemoveAccount deletes the account. If it was default, the first remaining account is promoted.
func (r *Repository) RemoveAccount(ctx context.Context, userSelectBy string) error {
	return r.mutate(ctx, func() error {
		return r.removeAccount(ctx, userSelectBy)
	})
}

// IsDefaultUser reports whether the identifier equals the default pointer
func (r *Repository) IsDefaultUser(ctx context.Context, userSelectBy string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	def, err := r.defaultIdentifier(ctx)
	if err != nil {
		return false, err
	}
	key := models.NormalizeKey(userSelectBy)
	return key != "" && models.NormalizeKey(def) == key, nil
}

// GetDefaultUserIdentifier returns the default pointer or "" when there is none.
// A pointer to a missing account is treated as absent.
func (r *Repository) GetDefaultUserIdentifier(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.defaultIdentifier(ctx)
}

// GetDefaultUser returns a copy of the default account or nil when there is none
func (r *Repository) GetDefaultUser(ctx context.Context) (*models.UserAccountInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, err := r.loadIndex(ctx)
	if err != nil {
		return nil, err
	}
	def, err := r.readDefault(ctx)
	if err != nil {
		return nil, err
	}
	info, ok := idx[models.NormalizeKey(def)]
	if !ok {
		return nil, nil
	}
	return info.Clone(), nil
}

// SetDefaultUser points the default user at an existing account
func (r *Repository) SetDefaultUser(ctx context.Context, userSelectBy string) error {
	return r.mutate(ctx, func() error {
		return r.setDefault(ctx, userSelectBy)
	})
}

// RemoveDefaultUser clears the default pointer, deletes the account itself when forceRemoveAccount is set,
// and then re-derives the default from the remaining accounts.
// Without a default it changes nothing, unless accounts exist with no valid pointer:
// then the first one is promoted.
func (r *Repository) RemoveDefaultUser(ctx context.Context, forceRemoveAccount bool) error {
	return r.mutate(ctx, func() error {
		def, err := r.defaultIdentifier(ctx)
		if err != nil {
			return err
		}
		idx, err := r.loadIndex(ctx)
		if err != nil {
			return err
		}
		if def == "" && len(idx) == 0 {
			raw, err := r.readDefault(ctx)
			if err != nil {
				return err
			}
			if raw == "" {
				return errUnchanged
			}
		}

		if err := r.store.Remove(ctx, storage.KeyDefaultUser); err != nil {
			return fmt.Errorf("failed to remove default user: %w", err)
		}
		if forceRemoveAccount && def != "" {
			delete(idx, models.NormalizeKey(def))
			if err := r.saveIndex(ctx, idx); err != nil {
				return err
			}
		}
		return r.promoteFirst(ctx, idx)
	})
}

// CountAccounts returns the number of stored accounts
func (r *Repository) CountAccounts(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, err := r.loadIndex(ctx)
	if err != nil {
		return 0, err
	}
	return len(idx), nil
}

// GetAccountsAsList returns copies of all stored accounts ordered by normalized identifier
func (r *Repository) GetAccountsAsList(ctx context.Context) ([]*models.UserAccountInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, err := r.loadIndex(ctx)
	if err != nil {
		return nil, err
	}
	keys := sortedKeys(idx)
	list := make([]*models.UserAccountInfo, 0, len(keys))
	for _, k := range keys {
		list = append(list, idx[k].Clone())
	}
	return list, nil
}

// ResetAll removes the whole index and the default pointer
func (r *Repository) ResetAll(ctx context.Context) error {
	return r.mutate(ctx, func() error {
		if err := r.store.Remove(ctx, storage.KeyAccounts); err != nil {
			return fmt.Errorf("failed to remove accounts: %w", err)
		}
		if err := r.store.Remove(ctx, storage.KeyDefaultUser); err != nil {
			return fmt.Errorf("failed to remove default user: %w", err)
		}
		return nil
	})
}

// ---- внутренние операции, вызываются под r.mu ----

func (r *Repository) addAccount(ctx context.Context, userSelectBy string, info *models.UserAccountInfo, setAsDefault bool) error {
	key, record, err := prepare(userSelectBy, info)
	if err != nil {
		return err
	}

	idx, err := r.loadIndex(ctx)
	if err != nil {
		return err
	}
	if _, ok := idx[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, userSelectBy)
	}

	// Первый аккаунт (или любой, пока default не выбран) становится default
	def, err := r.defaultIdentifier(ctx)
	if err != nil {
		return err
	}
	if len(idx) == 0 || def == "" {
		setAsDefault = true
	}

	idx[key] = record
	if err := r.saveIndex(ctx, idx); err != nil {
		return err
	}
	if setAsDefault {
		return r.writeDefault(ctx, record.UserSelectBy)
	}
	return nil
}

func (r *Repository) updateAccount(ctx context.Context, userSelectBy string, info *models.UserAccountInfo, setAsDefault bool) error {
	key, record, err := prepare(userSelectBy, info)
	if err != nil {
		return err
	}

	idx, err := r.loadIndex(ctx)
	if err != nil {
		return err
	}
	if _, ok := idx[key]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, userSelectBy)
	}

	idx[key] = record
	if err := r.saveIndex(ctx, idx); err != nil {
		return err
	}
	if setAsDefault {
		return r.writeDefault(ctx, record.UserSelectBy)
	}
	return nil
}

func (r *Repository) removeAccount(ctx context.Context, userSelectBy string) error {
	key := models.NormalizeKey(userSelectBy)

	idx, err := r.loadIndex(ctx)
	if err != nil {
		return err
	}
	if _, ok := idx[key]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, userSelectBy)
	}

	def, err := r.readDefault(ctx)
	if err != nil {
		return err
	}

	delete(idx, key)
	if err := r.saveIndex(ctx, idx); err != nil {
		return err
	}

	if models.NormalizeKey(def) == key {
		if err := r.store.Remove(ctx, storage.KeyDefaultUser); err != nil {
			return fmt.Errorf("failed to remove default user: %w", err)
		}
	}
	// чинит и висящий указатель на отсутствующий аккаунт
	return r.promoteFirst(ctx, idx)
}

func (r *Repository) setDefault(ctx context.Context, userSelectBy string) error {
	idx, err := r.loadIndex(ctx)
	if err != nil {
		return err
	}
	info, ok := idx[models.NormalizeKey(userSelectBy)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, userSelectBy)
	}
	return r.writeDefault(ctx, info.UserSelectBy)
}

// promoteFirst делает default первый оставшийся аккаунт, если default не задан
func (r *Repository) promoteFirst(ctx context.Context, idx models.AccountIndex) error {
	if len(idx) == 0 {
		return nil
	}
	def, err := r.readDefault(ctx)
	if err != nil {
		return err
	}
	if _, ok := idx[models.NormalizeKey(def)]; ok && def != "" {
		return nil
	}
	first := idx[sortedKeys(idx)[0]]
	return r.writeDefault(ctx, first.UserSelectBy)
}

func (r *Repository) defaultIdentifier(ctx context.Context) (string, error) {
	def, err := r.readDefault(ctx)
	if err != nil || def == "" {
		return "", err
	}
	idx, err := r.loadIndex(ctx)
	if err != nil {
		return "", err
	}
	if _, ok := idx[models.NormalizeKey(def)]; !ok {
		return "", nil
	}
	return def, nil
}

func (r *Repository) loadIndex(ctx context.Context) (models.AccountIndex, error) {
	raw, err := r.store.Read(ctx, storage.KeyAccounts)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return models.AccountIndex{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}
	if len(raw) == 0 {
		return models.AccountIndex{}, nil
	}

	var idx models.AccountIndex
	if err := json.Unmarshal(raw, &idx); err != nil {
		return nil, fmt.Errorf("failed to unmarshal accounts: %w", err)
	}
	if idx == nil {
		idx = models.AccountIndex{}
	}
	return idx, nil
}

func (r *Repository) saveIndex(ctx context.Context, idx models.AccountIndex) error {
	if len(idx) == 0 {
		if err := r.store.Remove(ctx, storage.KeyAccounts); err != nil {
			return fmt.Errorf("failed to remove accounts: %w", err)
		}
		return nil
	}
	raw, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("failed to marshal accounts: %w", err)
	}
	if err := r.store.Write(ctx, storage.KeyAccounts, raw); err != nil {
		return fmt.Errorf("failed to write accounts: %w", err)
	}
	return nil
}

func (r *Repository) readDefault(ctx context.Context) (string, error) {
	raw, err := r.store.Read(ctx, storage.KeyDefaultUser)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read default user: %w", err)
	}
	return string(raw), nil
}

func (r *Repository) writeDefault(ctx context.Context, userSelectBy string) error {
	if err := r.store.Write(ctx, storage.KeyDefaultUser, []byte(userSelectBy)); err != nil {
		return fmt.Errorf("failed to write default user: %w", err)
	}
	return nil
}

func findByTokens(idx models.AccountIndex, tokens models.TokenTriple) (string, *models.UserAccountInfo) {
	for _, k := range sortedKeys(idx) {
		if idx[k].Tokens().Matches(tokens) {
			return k, idx[k]
		}
	}
	return "", nil
}

func sortedKeys(idx models.AccountIndex) []string {
	keys := make([]string, 0, len(idx))
	for k := range idx {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
