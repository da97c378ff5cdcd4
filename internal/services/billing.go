package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

var ErrBillingNotConfigured = errors.New("Stripe is not configured")

// CardInput is raw card data for creating a payment method.
type CardInput struct {
	Number   string `json:"number"`
	ExpMonth int64  `json:"exp_month"`
	ExpYear  int64  `json:"exp_year"`
	CVC      string `json:"cvc"`
	Token    string `json:"token"`
}

type CheckoutInput struct {
	Customer   string            `json:"customer"`
	PriceID    string            `json:"price_id"`
	SuccessURL string            `json:"success_url"`
	CancelURL  string            `json:"cancel_url"`
	Metadata   map[string]string `json:"metadata"`
}

// Billing is the Stripe side of the admin panel.
type Billing struct {
	api *client.API
}

// NewBilling returns nil when no secret key is configured.
func NewBilling(secretKey string, backends *stripe.Backends) *Billing {
	if secretKey == "" {
		return nil
	}
	sc := &client.API{}
	sc.Init(secretKey, backends)
	return &Billing{api: sc}
}

func (b *Billing) ready() error {
	if b == nil || b.api == nil {
		return ErrBillingNotConfigured
	}
	return nil
}

func isResourceMissing(err error) bool {
	var serr *stripe.Error
	return errors.As(err, &serr) && serr.Code == stripe.ErrorCodeResourceMissing
}

// --- Customers ---

func (b *Billing) CreateCustomer(ctx context.Context, email, name, phone string) (*stripe.Customer, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	params := &stripe.CustomerParams{Email: stripe.String(email), Name: stripe.String(name)}
	if phone != "" {
		params.Phone = stripe.String(phone)
	}
	params.AddMetadata("created_via", "admin_panel")
	params.Context = ctx

	c, err := b.api.Customers.New(params)
	if err != nil {
		return nil, fmt.Errorf("Failed to create customer: %w", err)
	}
	return c, nil
}

func (b *Billing) GetCustomer(ctx context.Context, id string) (*stripe.Customer, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	params := &stripe.CustomerParams{}
	params.Context = ctx
	c, err := b.api.Customers.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("Failed to retrieve customer: %w", err)
	}
	return c, nil
}

func (b *Billing) DeleteCustomer(ctx context.Context, id string) (*stripe.Customer, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	params := &stripe.CustomerParams{}
	params.Context = ctx
	c, err := b.api.Customers.Del(id, params)
	if err != nil {
		return nil, fmt.Errorf("Failed to delete customer: %w", err)
	}
	return c, nil
}

func (b *Billing) ListCustomers(ctx context.Context) ([]*stripe.Customer, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	params := &stripe.CustomerListParams{}
	params.Limit = stripe.Int64(100)
	params.Context = ctx

	out := []*stripe.Customer{}
	i := b.api.Customers.List(params)
	for i.Next() {
		out = append(out, i.Customer())
	}
	return out, i.Err()
}

// --- Payment methods ---

func (b *Billing) CreatePaymentMethod(ctx context.Context, typ string, card CardInput) (*stripe.PaymentMethod, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	cp := &stripe.PaymentMethodCardParams{}
	if card.Token != "" {
		cp.Token = stripe.String(card.Token)
	} else {
		cp.Number = stripe.String(card.Number)
		cp.ExpMonth = stripe.Int64(card.ExpMonth)
		cp.ExpYear = stripe.Int64(card.ExpYear)
		cp.CVC = stripe.String(card.CVC)
	}
	params := &stripe.PaymentMethodParams{Type: stripe.String(typ), Card: cp}
	params.Context = ctx

	pm, err := b.api.PaymentMethods.New(params)
	if err != nil {
		return nil, fmt.Errorf("Failed to create payment method: %w", err)
	}
	return pm, nil
}

func (b *Billing) AttachPaymentMethod(ctx context.Context, paymentMethodID, customerID string) (*stripe.PaymentMethod, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	params := &stripe.PaymentMethodAttachParams{Customer: stripe.String(customerID)}
	params.Context = ctx
	pm, err := b.api.PaymentMethods.Attach(paymentMethodID, params)
	if err != nil {
		return nil, fmt.Errorf("Failed to attach payment method: %w", err)
	}
	return pm, nil
}

// CustomerPaymentMethods lists card payment methods; an unknown customer yields an empty list.
func (b *Billing) CustomerPaymentMethods(ctx context.Context, customerID string) ([]*stripe.PaymentMethod, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	params := &stripe.PaymentMethodListParams{Customer: stripe.String(customerID), Type: stripe.String("card")}
	params.Context = ctx

	out := []*stripe.PaymentMethod{}
	i := b.api.PaymentMethods.List(params)
	for i.Next() {
		out = append(out, i.PaymentMethod())
	}
	if err := i.Err(); err != nil {
		if isResourceMissing(err) {
			return []*stripe.PaymentMethod{}, nil
		}
		return nil, fmt.Errorf("Failed to get payment methods: %w", err)
	}
	return out, nil
}

// --- Checkout ---

func (b *Billing) CreateCheckoutSession(ctx context.Context, in CheckoutInput) (*stripe.CheckoutSession, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	params := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(in.Customer),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(in.PriceID), Quantity: stripe.Int64(1)},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(in.SuccessURL),
		CancelURL:  stripe.String(in.CancelURL),
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	params.AddMetadata("created_via", "admin_panel")
	params.Context = ctx

	s, err := b.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("Failed to create checkout session: %w", err)
	}
	return s, nil
}

func (b *Billing) GetCheckoutSession(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := b.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("Failed to retrieve checkout session: %w", err)
	}
	return s, nil
}

func (b *Billing) CustomerCheckoutSessions(ctx context.Context, customerID string) ([]*stripe.CheckoutSession, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	params := &stripe.CheckoutSessionListParams{Customer: stripe.String(customerID)}
	params.Limit = stripe.Int64(100)
	params.Context = ctx

	out := []*stripe.CheckoutSession{}
	i := b.api.CheckoutSessions.List(params)
	for i.Next() {
		out = append(out, i.CheckoutSession())
	}
	if err := i.Err(); err != nil {
		if isResourceMissing(err) {
			return []*stripe.CheckoutSession{}, nil
		}
		return nil, fmt.Errorf("Failed to get customer checkout sessions: %w", err)
	}
	return out, nil
}

// --- Products and prices ---

func (b *Billing) Products(ctx context.Context) ([]*stripe.Product, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	params := &stripe.ProductListParams{Active: stripe.Bool(true)}
	params.Context = ctx

	out := []*stripe.Product{}
	i := b.api.Products.List(params)
	for i.Next() {
		out = append(out, i.Product())
	}
	if err := i.Err(); err != nil {
		return nil, fmt.Errorf("Failed to get products: %w", err)
	}
	return out, nil
}

func (b *Billing) CreateProduct(ctx context.Context, name, description string, metadata map[string]string) (*stripe.Product, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	params := &stripe.ProductParams{Name: stripe.String(name)}
	if description != "" {
		params.Description = stripe.String(description)
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	params.AddMetadata("created_via", "admin_panel")
	params.Context = ctx

	p, err := b.api.Products.New(params)
	if err != nil {
		return nil, fmt.Errorf("Failed to create product: %w", err)
	}
	return p, nil
}

func (b *Billing) ProductPrices(ctx context.Context, productID string) ([]*stripe.Price, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	params := &stripe.PriceListParams{Product: stripe.String(productID), Active: stripe.Bool(true)}
	params.Context = ctx

	out := []*stripe.Price{}
	i := b.api.Prices.List(params)
	for i.Next() {
		out = append(out, i.Price())
	}
	if err := i.Err(); err != nil {
		return nil, fmt.Errorf("Failed to get product prices: %w", err)
	}
	return out, nil
}

// --- Metered usage ---

// ReportUsage increments a subscription item's usage. A zero timestamp means now.
func (b *Billing) ReportUsage(ctx context.Context, subscriptionItemID string, quantity, timestamp int64) (*stripe.UsageRecord, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if timestamp == 0 {
		timestamp = time.Now().Unix()
	}
	params := &stripe.UsageRecordParams{
		SubscriptionItem: stripe.String(subscriptionItemID),
		Quantity:         stripe.Int64(quantity),
		Timestamp:        stripe.Int64(timestamp),
		Action:           stripe.String("increment"),
	}
	params.Context = ctx

	r, err := b.api.UsageRecords.New(params)
	if err != nil {
		return nil, fmt.Errorf("Failed to report usage: %w", err)
	}
	return r, nil
}

// UsageSummary lists usage summaries whose billing period lies within [start, end].
func (b *Billing) UsageSummary(ctx context.Context, subscriptionItemID string, start, end int64) ([]*stripe.UsageRecordSummary, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	params := &stripe.UsageRecordSummaryListParams{SubscriptionItem: stripe.String(subscriptionItemID)}
	params.Context = ctx

	out := []*stripe.UsageRecordSummary{}
	i := b.api.UsageRecordSummaries.List(params)
	for i.Next() {
		s := i.UsageRecordSummary()
		if s.Period != nil && (s.Period.Start < start || (s.Period.End != 0 && s.Period.End > end)) {
			continue
		}
		out = append(out, s)
	}
	if err := i.Err(); err != nil {
		return nil, fmt.Errorf("Failed to get usage summary: %w", err)
	}
	return out, nil
}
