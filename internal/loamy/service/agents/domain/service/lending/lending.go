// Package lending implements the loan tools offered to the backend.
package lending

import (
	"context"
	"errors"
	"fmt"

	"github.com/kiosk404/loamy/internal/loamy/service/agents/domain/entity"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/domain/repo"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/pkg"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/pkg/errno"
	"github.com/kiosk404/loamy/internal/loamy/service/tools"
	"github.com/kiosk404/loamy/pkg/logger"
)

const (
	paramCustomerName = "customer_name"
	paramAmount       = "amount"
)

// DocumentWriter emits sanction letters and returns their public link.
type DocumentWriter interface {
	SanctionLetter(ctx context.Context, customer string, amount float64) (string, error)
}

// Tools implements verify_status, evaluate_eligibility and generate_document
// on top of a customer repository.
type Tools struct {
	customers repo.CustomerRepository
	documents DocumentWriter
}

// New creates the lending tools.
func New(customers repo.CustomerRepository, documents DocumentWriter) *Tools {
	return &Tools{customers: customers, documents: documents}
}

// Signatures returns the signatures of the lending tools in catalog order.
func Signatures() []entity.ToolSignature {
	customerName := entity.Parameter{
		Name:        paramCustomerName,
		Type:        entity.ParamString,
		Required:    true,
		Description: "The customer's first name.",
	}
	return []entity.ToolSignature{
		{
			Name:        entity.ToolVerifyStatus,
			Description: "Get the identity verification (KYC) status of a customer: verified, pending, failed or not_found. Call this first.",
			Parameters:  []entity.Parameter{customerName},
		},
		{
			Name:        entity.ToolEvaluateEligibility,
			Description: "Get a customer's credit score and maximum loan limit. Only call this after their status is 'verified'.",
			Parameters:  []entity.Parameter{customerName},
		},
		{
			Name:        entity.ToolGenerateDocument,
			Description: "Generate the loan sanction letter once the loan is approved and the user confirmed the final amount. Amounts above the customer's limit are capped at the limit.",
			Parameters: []entity.Parameter{
				customerName,
				{
					Name:        paramAmount,
					Type:        entity.ParamNumber,
					Required:    true,
					Description: "The final approved loan amount.",
				},
			},
		},
	}
}

// Register adds the lending tools to r.
func (t *Tools) Register(r *tools.Registry) error {
	handlers := map[entity.ToolID]tools.Handler{
		entity.ToolVerifyStatus:        t.VerifyStatus,
		entity.ToolEvaluateEligibility: t.EvaluateEligibility,
		entity.ToolGenerateDocument:    t.GenerateDocument,
	}
	for _, sig := range Signatures() {
		if err := r.Register(sig, handlers[sig.Name]); err != nil {
			return err
		}
	}
	return nil
}

// VerifyStatus reports the verification status; unknown customers are
// reported as not_found rather than as an error.
func (t *Tools) VerifyStatus(ctx context.Context, args tools.Arguments) (entity.ToolResult, error) {
	c, err := t.customers.Get(ctx, args.String(paramCustomerName))
	if errors.Is(err, errno.ErrCustomerNotFound) {
		return &entity.StatusResult{Status: entity.StatusNotFound}, nil
	}
	if err != nil {
		return nil, err
	}
	return &entity.StatusResult{Status: c.Status}, nil
}

// EvaluateEligibility reports credit score and loan limit.
func (t *Tools) EvaluateEligibility(ctx context.Context, args tools.Arguments) (entity.ToolResult, error) {
	c, err := t.customers.Get(ctx, args.String(paramCustomerName))
	if errors.Is(err, errno.ErrCustomerNotFound) {
		return &entity.EligibilityResult{NotFound: true}, nil
	}
	if err != nil {
		return nil, err
	}
	return &entity.EligibilityResult{Score: float64(c.CreditScore), Limit: c.LoanLimit}, nil
}

// GenerateDocument writes the sanction letter, capping the amount at the
// customer's loan limit.
func (t *Tools) GenerateDocument(ctx context.Context, args tools.Arguments) (entity.ToolResult, error) {
	name := args.String(paramCustomerName)
	amount := args.Number(paramAmount)
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %v", amount)
	}

	c, err := t.customers.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("customer %q: %w", name, err)
	}
	if c.Status != entity.StatusVerified {
		return nil, fmt.Errorf("customer %q is not verified (status %s)", c.Name, c.Status)
	}
	if amount > c.LoanLimit {
		logger.InfoX(pkg.ModuleName, "[Lending] capping %s from %.2f to limit %.2f", c.Name, amount, c.LoanLimit)
		amount = c.LoanLimit
	}

	link, err := t.documents.SanctionLetter(ctx, c.Name, amount)
	if err != nil {
		return nil, err
	}
	return &entity.DocumentResult{ArtifactLink: link, CustomerName: c.Name, Amount: amount}, nil
}
