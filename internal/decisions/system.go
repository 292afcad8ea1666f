package decisions

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/intake/internal/loan"
	"github.com/JaimeStill/intake/pkg/pagination"
)

// System defines the public contract for decision ledger operations.
type System interface {
	Handler() *Handler

	Evaluate(ctx context.Context, cmd EvaluateCommand) (*Decision, error)

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Decision], error)

	Find(ctx context.Context, id uuid.UUID) (*Decision, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Evaluator runs the intake pipeline. *pipeline.Pipeline satisfies it.
type Evaluator interface {
	Run(ctx context.Context, documentKeys []string, applicationKey string) (*loan.FinalDecision, error)
}
