package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/cart"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/checkout"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/entity"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/messaging"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/repository"
)

// CheckoutQuote is the priced cart plus the paybill steps for paying it.
type CheckoutQuote struct {
	checkout.Quote
	Payment checkout.PaymentInstructions `json:"payment"`
}

// PlaceOrderRequest carries one checkout submission.
type PlaceOrderRequest struct {
	// SubmissionKey identifies the submitting session for double-submit gating.
	SubmissionKey string
	Form          checkout.DeliveryForm
	Confirmation  string
	// Reference is the order code quoted in the payment instructions, if any.
	Reference string
}

// CheckoutService prices carts and turns them into orders.
type CheckoutService struct {
	orderRepo repository.OrderRepository
	publisher messaging.Publisher
	fees      checkout.FeePolicy
	merchant  checkout.Merchant
	newCode   func() string

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewCheckoutService(
	orderRepo repository.OrderRepository,
	publisher messaging.Publisher,
	fees checkout.FeePolicy,
	merchant checkout.Merchant,
) *CheckoutService {
	return &CheckoutService{
		orderRepo: orderRepo,
		publisher: publisher,
		fees:      fees,
		merchant:  merchant,
		newCode:   entity.NewOrderCode,
		inFlight:  make(map[string]struct{}),
	}
}

// Quote prices the cart for zone and proposes the payment reference the
// customer types into M-Pesa. An empty cart yields an empty quote.
func (s *CheckoutService) Quote(store *cart.Store, zone string) CheckoutQuote {
	q := checkout.NewQuote(store.Lines(), zone, s.fees)
	out := CheckoutQuote{Quote: q}
	if !q.Empty() {
		out.Payment = s.merchant.Instructions(s.newCode(), q.Total)
	}
	return out
}

// PlaceOrder validates the submission, stores the order and clears the cart.
// The write is attempted once; on failure the cart is left as it was.
func (s *CheckoutService) PlaceOrder(ctx context.Context, store *cart.Store, req PlaceOrderRequest) (*entity.Order, error) {
	if !s.begin(req.SubmissionKey) {
		return nil, ErrSubmissionInFlight
	}
	defer s.end(req.SubmissionKey)

	lines := store.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	form := req.Form.Normalize()
	errs := checkout.ValidationErrors{}
	if err := form.Validate(); err != nil {
		var verrs checkout.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		for field, msg := range verrs {
			errs[field] = msg
		}
	}
	if !s.fees.KnownZone(form.Zone) {
		errs[checkout.FieldZone] = "Choose one of the delivery zones"
	}
	confirmation := checkout.NormalizeConfirmation(req.Confirmation)
	if confirmation == "" {
		errs[checkout.FieldConfirmation] = "Paste the M-Pesa confirmation message"
	}
	if len(errs) > 0 {
		return nil, errs
	}

	q := checkout.NewQuote(lines, form.Zone, s.fees)
	draft := entity.OrderDraft{
		Lines:               q.Lines,
		Subtotal:            q.Subtotal,
		DeliveryFee:         q.DeliveryFee,
		Total:               q.Total,
		Customer:            form.Customer(),
		DeliveryZone:        checkout.NormalizeZone(form.Zone),
		PaymentMethod:       entity.PaymentMethodMpesa,
		PaymentConfirmation: confirmation,
	}

	slog.Info("Service: Placing order", "items", q.ItemCount, "total", q.Total.String())

	reference := entity.NormalizeOrderCode(req.Reference)
	if !entity.IsOrderCode(reference) {
		reference = ""
	}

	order, err := s.orderRepo.CreateOrder(ctx, draft, reference)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	store.ClearCart()

	if err := s.publisher.PublishEvent(ctx, messaging.TopicOrderPlaced, order.ID, repository.PlacedEvent(order)); err != nil {
		slog.Error("Failed to publish OrderPlaced", "order_id", order.ID, "err", err)
	}

	slog.Info("Order placed", "order_id", order.ID, "code", order.Code)
	return order, nil
}

func (s *CheckoutService) begin(key string) bool {
	if key == "" {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[key]; busy {
		return false
	}
	s.inFlight[key] = struct{}{}
	return true
}

func (s *CheckoutService) end(key string) {
	if key == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, key)
}
