package saleorapp

import (
	"context"
	"errors"
	"fmt"

	"CourseBridge/internal/external/saleor"
	"CourseBridge/pkg/logger"

	"github.com/google/go-querystring/query"
	"github.com/google/uuid"
)

// ErrVariantNotFound is returned when a requested SKU has no variant in the
// Saleor catalog.
var ErrVariantNotFound = errors.New("product variant not found")

// CheckoutAPI is the slice of the Saleor client the checkout flow uses.
type CheckoutAPI interface {
	GetUserByEmail(ctx context.Context, email string) (*saleor.User, error)
	AccountRegister(ctx context.Context, input saleor.AccountRegisterInput) (*saleor.User, error)
	GetProductVariant(ctx context.Context, sku string) (*saleor.ProductVariant, error)
	CreateCheckout(ctx context.Context, input saleor.CheckoutCreateInput) (*saleor.Checkout, error)
	AttachCheckoutCustomer(ctx context.Context, checkoutID, customerID string) (*saleor.Checkout, error)
}

// CheckoutService creates Saleor checkouts for learners and hands back the
// storefront URL to finish payment on.
type CheckoutService struct {
	api            CheckoutAPI
	storefrontHost string
	channel        string
	log            *logger.Logger
}

func NewCheckoutService(api CheckoutAPI, storefrontHost, channel string, l *logger.Logger) *CheckoutService {
	return &CheckoutService{
		api:            api,
		storefrontHost: storefrontHost,
		channel:        channel,
		log:            l,
	}
}

type checkoutParams struct {
	Checkout string `url:"checkout"`
}

// CheckoutURL ensures a Saleor account for the email, creates a checkout with
// one line per SKU and returns the storefront checkout URL.
func (s *CheckoutService) CheckoutURL(ctx context.Context, email string, skus []string) (string, error) {
	user, err := s.getOrCreateUser(ctx, email)
	if err != nil {
		return "", err
	}

	lines := make([]saleor.CheckoutLineInput, 0, len(skus))
	for _, sku := range skus {
		variant, err := s.api.GetProductVariant(ctx, sku)
		if err != nil {
			return "", fmt.Errorf("get product variant %s: %w", sku, err)
		}
		if variant == nil {
			return "", fmt.Errorf("%w: %s", ErrVariantNotFound, sku)
		}
		lines = append(lines, saleor.CheckoutLineInput{Quantity: 1, VariantID: variant.ID})
	}

	checkout, err := s.api.CreateCheckout(ctx, saleor.CheckoutCreateInput{
		Channel: s.channel,
		Email:   email,
		Lines:   lines,
	})
	if err != nil {
		return "", fmt.Errorf("create checkout: %w", err)
	}

	if _, err := s.api.AttachCheckoutCustomer(ctx, checkout.ID, user.ID); err != nil {
		return "", fmt.Errorf("attach checkout customer: %w", err)
	}

	params, err := query.Values(checkoutParams{Checkout: checkout.ID})
	if err != nil {
		return "", fmt.Errorf("encode checkout params: %w", err)
	}

	s.log.InfoCtx(ctx, "Checkout %s created for %s with %d line(s)", checkout.ID, email, len(lines))
	return s.storefrontHost + "/checkout?" + params.Encode(), nil
}

func (s *CheckoutService) getOrCreateUser(ctx context.Context, email string) (*saleor.User, error) {
	user, err := s.api.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get saleor user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	// The account is storefront-only; the learner resets the password there
	// if they ever need dashboard access.
	user, err = s.api.AccountRegister(ctx, saleor.AccountRegisterInput{
		Email:    email,
		Password: uuid.NewString(),
		Channel:  s.channel,
	})
	if err != nil {
		return nil, fmt.Errorf("register saleor user: %w", err)
	}
	return user, nil
}
