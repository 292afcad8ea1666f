package decisions

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/intake/pkg/pagination"
	"github.com/JaimeStill/intake/pkg/query"
	"github.com/JaimeStill/intake/pkg/repository"
)

type repo struct {
	db         *sql.DB
	evaluator  Evaluator
	logger     *slog.Logger
	pagination pagination.Config
	runTimeout time.Duration
}

// New creates a decision ledger implementing the System interface. A
// positive runTimeout bounds each evaluation.
func New(
	db *sql.DB,
	evaluator Evaluator,
	logger *slog.Logger,
	pagination pagination.Config,
	runTimeout time.Duration,
) System {
	return &repo{
		db:         db,
		evaluator:  evaluator,
		logger:     logger.With("system", "decisions"),
		pagination: pagination,
		runTimeout: runTimeout,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

// Evaluate runs the pipeline and records the resulting decision. Failed
// runs are not recorded.
func (r *repo) Evaluate(ctx context.Context, cmd EvaluateCommand) (*Decision, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	runCtx := ctx
	if r.runTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.runTimeout)
		defer cancel()
	}

	result, err := r.evaluator.Run(runCtx, cmd.DocumentKeys, cmd.ApplicationKey)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", cmd.ApplicationKey, err)
	}

	keys, err := json.Marshal(cmd.DocumentKeys)
	if err != nil {
		return nil, fmt.Errorf("encode document_keys: %w", err)
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}

	q := `
		INSERT INTO decisions(id, application_key, document_keys, status, degraded, result)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + projection.Names()

	args := []any{
		uuid.New(),
		cmd.ApplicationKey,
		string(keys),
		string(result.LoanApplicationStatus),
		len(result.Degraded) > 0,
		string(payload),
	}

	d, err := repository.WithTx(ctx, r.db, nil, func(tx *sql.Tx) (Decision, error) {
		return repository.QueryOne(ctx, tx, q, args, scanDecision)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info(
		"decision recorded",
		"id", d.ID,
		"application_key", d.ApplicationKey,
		"status", d.Status,
		"degraded", d.Degraded,
	)
	return &d, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Decision], error) {
	page.Normalize(r.pagination)

	b := filters.Apply(query.NewBuilder(projection, defaultSort))

	countSQL, countArgs := b.BuildCount()
	total, err := repository.Count(ctx, r.db, countSQL, countArgs...)
	if err != nil {
		return nil, fmt.Errorf("count decisions: %w", err)
	}

	q, args := b.BuildPage(page.Page, page.PageSize)

	items, err := repository.QueryMany(ctx, r.db, q, args, scanDecision)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Decision, error) {
	q, args := query.NewBuilder(projection).BuildSingle("id", id)

	d, err := repository.QueryOne(ctx, r.db, q, args, scanDecision)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &d, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, nil, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM decisions WHERE id = $1",
			id,
		)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("decision deleted", "id", id)
	return nil
}
