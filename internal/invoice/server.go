package invoice

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/adminfin-dev/adminfin/internal/api"
	"github.com/adminfin-dev/adminfin/internal/model"
)

// ServerReview is the review flow where the backend resolves, registers and
// launches the invoice through its /api/validar, /api/cadastrar and
// /api/lancar handlers.
type ServerReview struct {
	Parties

	client  *api.Client
	logger  *logrus.Entry
	invoice model.ExtractedInvoice
}

// NewServerReview starts a server-side review of inv.
func NewServerReview(client *api.Client, inv model.ExtractedInvoice, logger *logrus.Logger) *ServerReview {
	return &ServerReview{
		Parties: newParties(),
		client:  client,
		logger:  logger.WithField("nota_fiscal", inv.Number),
		invoice: inv,
	}
}

// Validate resolves the three parties in one call.
func (r *ServerReview) Validate(ctx context.Context) error {
	v, err := r.client.Validate(ctx, r.invoice)
	r.Supplier.resolve(v.Supplier, err)
	r.Billed.resolve(v.Billed, err)
	r.Classification.resolve(v.Classification, err)
	if err != nil {
		r.logger.WithError(err).Warn("validating invoice")
		return fmt.Errorf("validating invoice: %w", err)
	}
	return nil
}

// RegisterMissing registers every party the server reported missing.
func (r *ServerReview) RegisterMissing(ctx context.Context) error {
	steps := []struct {
		check    *Check
		register func(context.Context, model.ExtractedInvoice) (int, error)
	}{
		{&r.Supplier, r.client.RegisterSupplier},
		{&r.Billed, r.client.RegisterBilled},
		{&r.Classification, r.client.RegisterClassification},
	}
	for _, step := range steps {
		if !step.check.CanRegister() {
			continue
		}
		id, err := step.register(ctx, r.invoice)
		if err != nil {
			return fmt.Errorf("registering %s: %w", step.check.Label, err)
		}
		step.check.registered(id)
		r.logger.WithField("id", id).Infof("%s registered", step.check.Label)
	}
	return nil
}

// Launch hands the invoice and the resolved ids to the server.
func (r *ServerReview) Launch(ctx context.Context) (api.Launched, error) {
	if !r.CanConfirm() {
		return api.Launched{}, ErrNotReady
	}
	res, err := r.client.Launch(ctx, api.LaunchRequest{
		Invoice:          r.invoice,
		SupplierID:       r.Supplier.ID,
		BilledID:         r.Billed.ID,
		ClassificationID: r.Classification.ID,
	})
	if err != nil {
		return api.Launched{}, fmt.Errorf("launching invoice: %w", err)
	}
	r.logger.WithField("movimento_id", res.MovementID).Info(res.Message)
	return res, nil
}
