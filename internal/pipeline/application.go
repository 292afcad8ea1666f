package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/intake/internal/loan"
	"github.com/JaimeStill/intake/pkg/storage"
)

// applicationNode loads the application record. A load failure is
// recovered: the run continues with empty application data and a degraded
// marker. Cancellation is not recovered.
func (p *execution) applicationNode() state.StateNode {
	return p.timed("application", func(ctx context.Context, s state.State) (state.State, error) {
		key, err := get[string](s, KeyApplicationKey)
		if err != nil {
			return s, fmt.Errorf("application: %w", err)
		}

		app, err := p.loadApplication(ctx, key)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return s, fmt.Errorf("application: %w", ctxErr)
			}

			p.logger.ErrorContext(ctx, "continuing without application data", "key", key, "error", err)
			s = s.Set(KeyApplication, loan.ApplicationData{})
			return addDegraded(s, fmt.Sprintf("application: %v", err)), nil
		}

		s = s.Set(KeyApplication, app)
		return s, nil
	})
}

func (p *Pipeline) loadApplication(ctx context.Context, key string) (loan.ApplicationData, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: no application key", loan.ErrApplicationLoad)
	}

	data, _, err := storage.ReadAll(ctx, p.rt.Storage, key, p.opts.MaxDocumentSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", loan.ErrApplicationLoad, err)
	}

	var app loan.ApplicationData
	if err := json.Unmarshal(data, &app); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", loan.ErrApplicationLoad, key, err)
	}
	if app == nil {
		return nil, fmt.Errorf("%w: %s is not a JSON object", loan.ErrApplicationLoad, key)
	}
	return app, nil
}

// crossValidateNode runs after every document has completed.
func (p *execution) crossValidateNode() state.StateNode {
	return p.timed("cross_validate", func(ctx context.Context, s state.State) (state.State, error) {
		app, err := get[loan.ApplicationData](s, KeyApplication)
		if err != nil {
			return s, fmt.Errorf("cross_validate: %w", err)
		}
		docs, err := get[[]loan.DocumentRecord](s, KeyDocuments)
		if err != nil {
			return s, fmt.Errorf("cross_validate: %w", err)
		}

		result, err := p.rt.CrossValidator.CrossValidate(ctx, app, docs)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return s, err
			}
			return s, fmt.Errorf("%w: %w", ErrCrossValidationFailed, err)
		}

		return s.Set(KeyCrossValidation, result), nil
	})
}

func (p *execution) decideNode() state.StateNode {
	return p.timed("decide", func(ctx context.Context, s state.State) (state.State, error) {
		app, err := get[loan.ApplicationData](s, KeyApplication)
		if err != nil {
			return s, fmt.Errorf("decide: %w", err)
		}
		docs, err := get[[]loan.DocumentRecord](s, KeyDocuments)
		if err != nil {
			return s, fmt.Errorf("decide: %w", err)
		}
		vals, err := get[[]loan.ValidationRecord](s, KeyValidations)
		if err != nil {
			return s, fmt.Errorf("decide: %w", err)
		}
		cv, err := get[loan.CrossValidationResult](s, KeyCrossValidation)
		if err != nil {
			return s, fmt.Errorf("decide: %w", err)
		}
		degraded, _ := get[[]string](s, KeyDegraded)

		d := p.rt.Aggregator.Decide(app, docs, vals, cv, degraded)
		return s.Set(KeyDecision, d), nil
	})
}
