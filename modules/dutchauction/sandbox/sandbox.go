// Package sandbox provides in-process stand-ins for the external mint
// registry and the payment rail. They back local deployments and tests; a
// production deployment swaps in real adapters through the injector.
package sandbox

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/mintfall/auction-engine/common/errs"
	"github.com/mintfall/auction-engine/modules/dutchauction/internal/entity"
)

// Config seeds the sandbox registry with per-project invocation caps.
type Config struct {
	// DefaultMaxInvocations is the cap for projects not listed in Projects.
	DefaultMaxInvocations uint64 `mapstructure:"default_max_invocations"`
	// Projects maps "registry/projectId" (or a bare project id on the default
	// registry) to that project's cap.
	Projects map[string]uint64 `mapstructure:"projects"`
}

type projectState struct {
	current uint64
	max     uint64
}

// Registry is an in-memory authoritative mint registry.
type Registry struct {
	mu       sync.Mutex
	defaults uint64
	projects map[entity.ProjectKey]*projectState
	caps     map[string]uint64
}

func NewRegistry(conf Config) *Registry {
	return &Registry{
		defaults: conf.DefaultMaxInvocations,
		projects: make(map[entity.ProjectKey]*projectState),
		caps:     conf.Projects,
	}
}

func (r *Registry) state(project entity.ProjectKey) *projectState {
	s, ok := r.projects[project]
	if !ok {
		max := r.defaults
		if v, ok := r.caps[project.String()]; ok {
			max = v
		} else if v, ok := r.caps[entity.NewProjectKey("", project.ProjectID).String()]; ok && project.Registry == entity.DefaultRegistry {
			max = v
		}
		s = &projectState{max: max}
		r.projects[project] = s
	}
	return s
}

func (r *Registry) Invocations(_ context.Context, project entity.ProjectKey) (uint64, uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.state(project)
	return s.current, s.max, nil
}

func (r *Registry) RecordMint(_ context.Context, project entity.ProjectKey, to string) (uint64, error) {
	if to == "" {
		return 0, errors.Wrap(errs.InvalidArgument, "recipient must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.state(project)
	if s.current >= s.max {
		return 0, errors.Wrapf(errs.InvalidArgument, "project %s is minted out", project)
	}
	s.current++
	// token ids follow the common convention of projectId * 1e6 + sequence
	return project.ProjectID*1_000_000 + s.current, nil
}

// SetMax overrides a project's cap. Test helper.
func (r *Registry) SetMax(project entity.ProjectKey, max uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state(project).max = max
}

// Bank is an in-memory payment rail with an explicit escrow pot. Collect
// debits the payer into escrow; Send pays out of escrow.
type Bank struct {
	mu       sync.Mutex
	balances map[string]uint128.Uint128
	escrow   uint128.Uint128
}

func NewBank() *Bank {
	return &Bank{balances: make(map[string]uint128.Uint128)}
}

// Deposit credits an address. Test helper.
func (b *Bank) Deposit(address string, amount uint128.Uint128) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[address] = b.balances[address].Add(amount)
}

func (b *Bank) BalanceOf(address string) uint128.Uint128 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[address]
}

// Escrow returns the pot of collected but undistributed value.
func (b *Bank) Escrow() uint128.Uint128 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.escrow
}

func (b *Bank) Collect(_ context.Context, from string, amount uint128.Uint128) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	balance := b.balances[from]
	if balance.Cmp(amount) < 0 {
		return errors.Wrapf(errs.InvalidArgument, "insufficient balance of %s: have %s, need %s", from, balance, amount)
	}
	b.balances[from] = balance.Sub(amount)
	b.escrow = b.escrow.Add(amount)
	return nil
}

func (b *Bank) Send(_ context.Context, to string, amount uint128.Uint128) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.escrow.Cmp(amount) < 0 {
		return errors.Wrapf(errs.InternalError, "escrow underflow: have %s, need %s", b.escrow, amount)
	}
	b.escrow = b.escrow.Sub(amount)
	b.balances[to] = b.balances[to].Add(amount)
	return nil
}

func (b *Bank) SendBatch(_ context.Context, payments []entity.Payment) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := uint128.Zero
	for _, payment := range payments {
		total = total.Add(payment.Amount)
	}
	if b.escrow.Cmp(total) < 0 {
		return errors.Wrapf(errs.InternalError, "escrow underflow: have %s, need %s", b.escrow, total)
	}
	b.escrow = b.escrow.Sub(total)
	for _, payment := range payments {
		b.balances[payment.To] = b.balances[payment.To].Add(payment.Amount)
	}
	return nil
}
