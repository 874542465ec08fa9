package splits

import (
	"context"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/mintfall/auction-engine/common/errs"
	"github.com/mintfall/auction-engine/modules/dutchauction/internal/entity"
	"github.com/shopspring/decimal"
)

// RecipientConfig is one payout target as it appears in the config file.
type RecipientConfig struct {
	Address    string `mapstructure:"address"`
	Percentage string `mapstructure:"percentage"`
}

// Config configures the StaticProvider. Projects override the default plan;
// keys are "<registry>/<projectId>" or a bare project id on the default
// registry.
type Config struct {
	Default  []RecipientConfig            `mapstructure:"default"`
	Projects map[string][]RecipientConfig `mapstructure:"projects"`
}

// StaticProvider serves split plans from static configuration.
type StaticProvider struct {
	defaultPlan Plan
	projects    map[string]Plan
}

var _ Provider = (*StaticProvider)(nil)

func NewStaticProvider(cfg Config) (*StaticProvider, error) {
	defaultPlan, err := planFromConfig(cfg.Default)
	if err != nil {
		return nil, errors.Wrap(err, "invalid default split plan")
	}

	projects := make(map[string]Plan, len(cfg.Projects))
	for key, recipients := range cfg.Projects {
		plan, err := planFromConfig(recipients)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid split plan for project %q", key)
		}
		projects[key] = plan
	}

	return &StaticProvider{defaultPlan: defaultPlan, projects: projects}, nil
}

func (p *StaticProvider) SplitsFor(_ context.Context, project entity.ProjectKey) (Plan, error) {
	if plan, ok := p.projects[project.String()]; ok {
		return plan, nil
	}
	if project.Registry == entity.DefaultRegistry {
		if plan, ok := p.projects[strconv.FormatUint(project.ProjectID, 10)]; ok {
			return plan, nil
		}
	}
	if len(p.defaultPlan.Recipients) == 0 {
		return Plan{}, errors.Wrapf(errs.NotFound, "no split plan for project %s", project)
	}
	return p.defaultPlan, nil
}

func planFromConfig(recipients []RecipientConfig) (Plan, error) {
	if len(recipients) == 0 {
		return Plan{Version: SupportedVersion}, nil
	}
	plan := Plan{Version: SupportedVersion, Recipients: make([]Recipient, 0, len(recipients))}
	for _, r := range recipients {
		percentage, err := decimal.NewFromString(r.Percentage)
		if err != nil {
			return Plan{}, errors.Wrapf(errs.InvalidArgument, "invalid percentage %q", r.Percentage)
		}
		plan.Recipients = append(plan.Recipients, Recipient{Address: r.Address, Percentage: percentage})
	}
	if err := plan.Validate(); err != nil {
		return Plan{}, err
	}
	return plan, nil
}
