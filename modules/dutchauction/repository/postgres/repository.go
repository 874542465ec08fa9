package postgres

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mintfall/auction-engine/common/errs"
	"github.com/mintfall/auction-engine/internal/postgres"
	"github.com/mintfall/auction-engine/modules/dutchauction/datagateway"
	"github.com/mintfall/auction-engine/modules/dutchauction/internal/entity"
)

type Repository struct {
	db postgres.DB
	tx pgx.Tx
}

var _ datagateway.DutchAuctionDataGateway = (*Repository)(nil)

func NewRepository(db postgres.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetAuctionParams(ctx context.Context, project entity.ProjectKey) (*entity.AuctionParams, error) {
	var (
		startTime       time.Time
		halfLifeSeconds int64
		startPrice      pgtype.Numeric
		basePrice       pgtype.Numeric
	)
	err := r.db.QueryRow(ctx, `
		SELECT start_time, half_life_seconds, start_price, base_price
		FROM dutch_auction_params
		WHERE registry = $1 AND project_id = $2
	`, project.Registry, int64(project.ProjectID)).Scan(&startTime, &halfLifeSeconds, &startPrice, &basePrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrapf(errs.NotFound, "no auction params for project %s", project)
		}
		return nil, errors.Wrap(err, "failed to query auction params")
	}
	start, err := uint128FromNumeric(startPrice)
	if err != nil {
		return nil, errors.Wrap(err, "invalid start price")
	}
	base, err := uint128FromNumeric(basePrice)
	if err != nil {
		return nil, errors.Wrap(err, "invalid base price")
	}
	return &entity.AuctionParams{
		Project:            project,
		StartTime:          startTime.UTC(),
		PriceDecayHalfLife: time.Duration(halfLifeSeconds) * time.Second,
		StartPrice:         start,
		BasePrice:          base,
	}, nil
}

func (r *Repository) SetAuctionParams(ctx context.Context, params *entity.AuctionParams) error {
	startPrice, err := numericFromUint128(params.StartPrice)
	if err != nil {
		return errors.Wrap(err, "invalid start price")
	}
	basePrice, err := numericFromUint128(params.BasePrice)
	if err != nil {
		return errors.Wrap(err, "invalid base price")
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO dutch_auction_params (registry, project_id, start_time, half_life_seconds, start_price, base_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (registry, project_id) DO UPDATE SET
			start_time = EXCLUDED.start_time,
			half_life_seconds = EXCLUDED.half_life_seconds,
			start_price = EXCLUDED.start_price,
			base_price = EXCLUDED.base_price
	`, params.Project.Registry, int64(params.Project.ProjectID), params.StartTime.UTC(), int64(params.PriceDecayHalfLife/time.Second), startPrice, basePrice)
	if err != nil {
		return errors.Wrap(err, "failed to upsert auction params")
	}
	return nil
}

func (r *Repository) DeleteAuctionParams(ctx context.Context, project entity.ProjectKey) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM dutch_auction_params WHERE registry = $1 AND project_id = $2
	`, project.Registry, int64(project.ProjectID))
	if err != nil {
		return errors.Wrap(err, "failed to delete auction params")
	}
	return nil
}

func (r *Repository) GetProjectSettlement(ctx context.Context, project entity.ProjectKey) (*entity.ProjectSettlement, error) {
	var (
		latestPrice   pgtype.Numeric
		numSettleable int64
		collected     bool
		clearingPrice pgtype.Numeric
	)
	err := r.db.QueryRow(ctx, `
		SELECT latest_purchase_price, num_settleable_invocations, revenues_collected, clearing_price
		FROM dutch_auction_settlements
		WHERE registry = $1 AND project_id = $2
	`, project.Registry, int64(project.ProjectID)).Scan(&latestPrice, &numSettleable, &collected, &clearingPrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrapf(errs.NotFound, "no settlement for project %s", project)
		}
		return nil, errors.Wrap(err, "failed to query project settlement")
	}
	latest, err := uint128FromNumeric(latestPrice)
	if err != nil {
		return nil, errors.Wrap(err, "invalid latest purchase price")
	}
	clearing, err := uint128FromNumeric(clearingPrice)
	if err != nil {
		return nil, errors.Wrap(err, "invalid clearing price")
	}
	return &entity.ProjectSettlement{
		Project:                  project,
		LatestPurchasePrice:      latest,
		NumSettleableInvocations: uint64(numSettleable),
		RevenuesCollected:        collected,
		ClearingPrice:            clearing,
	}, nil
}

func (r *Repository) SetProjectSettlement(ctx context.Context, settlement *entity.ProjectSettlement) error {
	latest, err := numericFromUint128(settlement.LatestPurchasePrice)
	if err != nil {
		return errors.Wrap(err, "invalid latest purchase price")
	}
	clearing, err := numericFromUint128(settlement.ClearingPrice)
	if err != nil {
		return errors.Wrap(err, "invalid clearing price")
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO dutch_auction_settlements (registry, project_id, latest_purchase_price, num_settleable_invocations, revenues_collected, clearing_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (registry, project_id) DO UPDATE SET
			latest_purchase_price = EXCLUDED.latest_purchase_price,
			num_settleable_invocations = EXCLUDED.num_settleable_invocations,
			revenues_collected = EXCLUDED.revenues_collected,
			clearing_price = EXCLUDED.clearing_price
	`, settlement.Project.Registry, int64(settlement.Project.ProjectID), latest, int64(settlement.NumSettleableInvocations), settlement.RevenuesCollected, clearing)
	if err != nil {
		return errors.Wrap(err, "failed to upsert project settlement")
	}
	return nil
}

func (r *Repository) GetPurchaseReceipt(ctx context.Context, project entity.ProjectKey, buyer string) (*entity.PurchaseReceipt, error) {
	var (
		totalPosted  pgtype.Numeric
		numPurchases int64
	)
	err := r.db.QueryRow(ctx, `
		SELECT total_posted, num_purchases
		FROM dutch_auction_receipts
		WHERE registry = $1 AND project_id = $2 AND buyer = $3
	`, project.Registry, int64(project.ProjectID), buyer).Scan(&totalPosted, &numPurchases)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrapf(errs.NotFound, "no receipt for buyer %s on project %s", buyer, project)
		}
		return nil, errors.Wrap(err, "failed to query purchase receipt")
	}
	total, err := uint128FromNumeric(totalPosted)
	if err != nil {
		return nil, errors.Wrap(err, "invalid total posted")
	}
	return &entity.PurchaseReceipt{
		Project:      project,
		Buyer:        buyer,
		TotalPosted:  total,
		NumPurchases: uint64(numPurchases),
	}, nil
}

func (r *Repository) SetPurchaseReceipt(ctx context.Context, receipt *entity.PurchaseReceipt) error {
	total, err := numericFromUint128(receipt.TotalPosted)
	if err != nil {
		return errors.Wrap(err, "invalid total posted")
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO dutch_auction_receipts (registry, project_id, buyer, total_posted, num_purchases)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (registry, project_id, buyer) DO UPDATE SET
			total_posted = EXCLUDED.total_posted,
			num_purchases = EXCLUDED.num_purchases
	`, receipt.Project.Registry, int64(receipt.Project.ProjectID), receipt.Buyer, total, int64(receipt.NumPurchases))
	if err != nil {
		return errors.Wrap(err, "failed to upsert purchase receipt")
	}
	return nil
}

func (r *Repository) GetInvocationCache(ctx context.Context, project entity.ProjectKey) (*entity.InvocationCache, error) {
	var (
		maxInvocations    int64
		hasMaxBeenInvoked bool
	)
	err := r.db.QueryRow(ctx, `
		SELECT max_invocations, has_max_been_invoked
		FROM dutch_auction_invocation_caches
		WHERE registry = $1 AND project_id = $2
	`, project.Registry, int64(project.ProjectID)).Scan(&maxInvocations, &hasMaxBeenInvoked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrapf(errs.NotFound, "no invocation cache for project %s", project)
		}
		return nil, errors.Wrap(err, "failed to query invocation cache")
	}
	return &entity.InvocationCache{
		Project:           project,
		MaxInvocations:    uint64(maxInvocations),
		HasMaxBeenInvoked: hasMaxBeenInvoked,
	}, nil
}

func (r *Repository) SetInvocationCache(ctx context.Context, cache *entity.InvocationCache) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO dutch_auction_invocation_caches (registry, project_id, max_invocations, has_max_been_invoked)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (registry, project_id) DO UPDATE SET
			max_invocations = EXCLUDED.max_invocations,
			has_max_been_invoked = EXCLUDED.has_max_been_invoked
	`, cache.Project.Registry, int64(cache.Project.ProjectID), int64(cache.MaxInvocations), cache.HasMaxBeenInvoked)
	if err != nil {
		return errors.Wrap(err, "failed to upsert invocation cache")
	}
	return nil
}

func (r *Repository) AddPurchaseEvent(ctx context.Context, event *entity.PurchaseEvent) error {
	pricePaid, err := numericFromUint128(event.PricePaid)
	if err != nil {
		return errors.Wrap(err, "invalid price paid")
	}
	amountPosted, err := numericFromUint128(event.AmountPosted)
	if err != nil {
		return errors.Wrap(err, "invalid amount posted")
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO dutch_auction_purchase_events (registry, project_id, buyer, recipient, token_id, price_paid, amount_posted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, event.Project.Registry, int64(event.Project.ProjectID), event.Buyer, event.Recipient, int64(event.TokenID), pricePaid, amountPosted, event.Timestamp.UTC())
	if err != nil {
		return errors.Wrap(err, "failed to insert purchase event")
	}
	return nil
}

func (r *Repository) GetPurchaseEvents(ctx context.Context, project entity.ProjectKey, limit int32, offset int32) ([]*entity.PurchaseEvent, error) {
	rows, err := r.db.Query(ctx, `
		SELECT buyer, recipient, token_id, price_paid, amount_posted, created_at
		FROM dutch_auction_purchase_events
		WHERE registry = $1 AND project_id = $2
		ORDER BY id DESC
		LIMIT $3 OFFSET $4
	`, project.Registry, int64(project.ProjectID), limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query purchase events")
	}
	defer rows.Close()

	var events []*entity.PurchaseEvent
	for rows.Next() {
		var (
			event        entity.PurchaseEvent
			tokenID      int64
			pricePaid    pgtype.Numeric
			amountPosted pgtype.Numeric
			createdAt    time.Time
		)
		if err := rows.Scan(&event.Buyer, &event.Recipient, &tokenID, &pricePaid, &amountPosted, &createdAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan purchase event")
		}
		event.Project = project
		event.TokenID = uint64(tokenID)
		event.Timestamp = createdAt.UTC()
		if event.PricePaid, err = uint128FromNumeric(pricePaid); err != nil {
			return nil, errors.Wrap(err, "invalid price paid")
		}
		if event.AmountPosted, err = uint128FromNumeric(amountPosted); err != nil {
			return nil, errors.Wrap(err, "invalid amount posted")
		}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate purchase events")
	}
	return events, nil
}

func (r *Repository) AddSettlementEvent(ctx context.Context, event *entity.SettlementEvent) error {
	amount, err := numericFromUint128(event.Amount)
	if err != nil {
		return errors.Wrap(err, "invalid amount")
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO dutch_auction_settlement_events (registry, project_id, kind, recipient, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, event.Project.Registry, int64(event.Project.ProjectID), string(event.Kind), event.Recipient, amount, event.Timestamp.UTC())
	if err != nil {
		return errors.Wrap(err, "failed to insert settlement event")
	}
	return nil
}

func (r *Repository) GetSettlementEvents(ctx context.Context, project entity.ProjectKey, limit int32, offset int32) ([]*entity.SettlementEvent, error) {
	rows, err := r.db.Query(ctx, `
		SELECT kind, recipient, amount, created_at
		FROM dutch_auction_settlement_events
		WHERE registry = $1 AND project_id = $2
		ORDER BY id DESC
		LIMIT $3 OFFSET $4
	`, project.Registry, int64(project.ProjectID), limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query settlement events")
	}
	defer rows.Close()

	var events []*entity.SettlementEvent
	for rows.Next() {
		var (
			event     entity.SettlementEvent
			kind      string
			amount    pgtype.Numeric
			createdAt time.Time
		)
		if err := rows.Scan(&kind, &event.Recipient, &amount, &createdAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan settlement event")
		}
		event.Project = project
		event.Kind = entity.SettlementEventKind(kind)
		event.Timestamp = createdAt.UTC()
		if event.Amount, err = uint128FromNumeric(amount); err != nil {
			return nil, errors.Wrap(err, "invalid amount")
		}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate settlement events")
	}
	return events, nil
}
