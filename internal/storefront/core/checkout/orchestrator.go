// Package checkout sequences address collection, validation, order submission
// and the post-submission reset of a shopper session.
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/checkoutlog"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/cart"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/ports"
)

// DefaultCustomerID is used for every order; shoppers are not authenticated.
const DefaultCustomerID = "64c2fc801c2f8b4f68b2ef65"

const tracerName = "github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/checkout"

// Phase is the submission state machine: Idle -> Submitting -> Resolved, and
// back to Submitting on the next attempt.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseResolved
)

func (p Phase) String() string {
	switch p {
	case PhaseSubmitting:
		return "submitting"
	case PhaseResolved:
		return "resolved"
	default:
		return "idle"
	}
}

// Orchestrator owns the shipping address and submission status of one session
// and shares the session's cart ledger.
//
// Every field, and the ledger, is guarded by mu. The lock is never held across
// the call to the order service.
type Orchestrator struct {
	mu         sync.Locker
	ledger     *cart.Ledger
	orders     ports.OrderService
	journal    checkoutlog.Repository // nil-safe
	customerID string
	newKey     func() string
	tracer     trace.Tracer

	address entity.ShippingAddress
	status  entity.OrderStatus
	phase   Phase
}

type Option func(*Orchestrator)

// WithLocker shares an existing lock, typically the one guarding the ledger.
func WithLocker(l sync.Locker) Option {
	return func(o *Orchestrator) { o.mu = l }
}

func WithCustomerID(id string) Option {
	return func(o *Orchestrator) { o.customerID = id }
}

// WithJournal records every submission that reaches the network.
func WithJournal(r checkoutlog.Repository) Option {
	return func(o *Orchestrator) { o.journal = r }
}

// WithKeyGenerator replaces uuid.NewString for idempotency keys.
func WithKeyGenerator(fn func() string) Option {
	return func(o *Orchestrator) { o.newKey = fn }
}

func NewOrchestrator(ledger *cart.Ledger, orders ports.OrderService, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		mu:         &sync.Mutex{},
		ledger:     ledger,
		orders:     orders,
		customerID: DefaultCustomerID,
		newKey:     uuid.NewString,
		tracer:     otel.Tracer(tracerName),
		status:     entity.IdleStatus(),
		phase:      PhaseIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// UpdateAddressField overwrites one field. Content is not validated until
// submission.
func (o *Orchestrator) UpdateAddressField(field entity.AddressField, value string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.address.Set(field, value)
}

// SubmitOrder validates the session and sends one order.
//
// A returned error is either a *ValidationError (nothing was sent, status is
// unchanged) or ErrSubmissionInProgress. Transport failures are not returned:
// they resolve into a Failure status and leave the cart and address intact.
// On success the cart and address are reset.
func (o *Orchestrator) SubmitOrder(ctx context.Context) (entity.OrderStatus, error) {
	req, release, err := o.acquire()
	if err != nil {
		if IsValidation(err) {
			slog.DebugContext(ctx, "checkout rejected", "notice", err.Error())
		}
		return o.Status(), err
	}
	defer release()

	ctx, span := o.tracer.Start(ctx, "checkout.SubmitOrder", trace.WithAttributes(
		attribute.String("checkout.submission_id", req.IdempotencyKey),
		attribute.Int("checkout.line_items", len(req.Items)),
		attribute.Float64("checkout.total_amount", req.TotalAmount),
	))
	defer span.End()

	o.record(ctx, req, checkoutlog.StatusSubmitted, "", nil)

	receipt, err := o.orders.CreateOrder(ctx, req)
	if err == nil && (receipt == nil || receipt.ID == "") {
		err = errMissingOrderID
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create order failed")
		slog.ErrorContext(ctx, "error creating order",
			"submission_id", req.IdempotencyKey,
			"customer_id", req.CustomerID,
			"error", err,
		)
		o.record(ctx, req, checkoutlog.StatusFailed, "", err)
		failed := entity.FailureStatus(MsgOrderFailed)
		failed.SubmissionID = req.IdempotencyKey
		return o.resolve(failed, false), nil
	}

	span.SetAttributes(attribute.String("checkout.order_id", receipt.ID))
	slog.InfoContext(ctx, "order created",
		"order_id", receipt.ID,
		"submission_id", req.IdempotencyKey,
		"total_amount", req.TotalAmount,
	)
	o.record(ctx, req, checkoutlog.StatusSucceeded, receipt.ID, nil)
	succeeded := entity.SuccessStatus(SuccessMessage(receipt.ID))
	succeeded.SubmissionID = req.IdempotencyKey
	return o.resolve(succeeded, true), nil
}

// Validate runs the submission preconditions without submitting.
func (o *Orchestrator) Validate() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.validateLocked()
}

func (o *Orchestrator) Address() entity.ShippingAddress {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.address
}

func (o *Orchestrator) Status() entity.OrderStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

func (o *Orchestrator) IsSubmitting() bool {
	return o.Phase() == PhaseSubmitting
}

// Snapshot is a consistent read of the ledger and checkout state.
type Snapshot struct {
	Items      []entity.LineItem
	Total      float64
	Count      int
	Units      int
	Address    entity.ShippingAddress
	Status     entity.OrderStatus
	Phase      Phase
	Submitting bool
}

func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Snapshot{
		Items:      o.ledger.Items(),
		Total:      o.ledger.Total(),
		Count:      o.ledger.Count(),
		Units:      o.ledger.Units(),
		Address:    o.address,
		Status:     o.status,
		Phase:      o.phase,
		Submitting: o.phase == PhaseSubmitting,
	}
}

// acquire checks the preconditions, enters PhaseSubmitting and builds the
// request, all under one critical section. The returned release must be
// deferred; it leaves PhaseSubmitting on every exit path, panics included.
func (o *Orchestrator) acquire() (entity.OrderRequest, func(), error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.phase == PhaseSubmitting {
		return entity.OrderRequest{}, nil, ErrSubmissionInProgress
	}
	if err := o.validateLocked(); err != nil {
		return entity.OrderRequest{}, nil, err
	}

	o.phase = PhaseSubmitting
	req := o.buildRequestLocked()

	release := func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.phase == PhaseSubmitting {
			o.phase = PhaseResolved
		}
	}
	return req, release, nil
}

func (o *Orchestrator) validateLocked() error {
	if o.ledger.IsEmpty() {
		return &ValidationError{Reason: ReasonCartEmpty}
	}
	if field, missing := o.address.FirstMissing(); missing {
		return &ValidationError{Reason: ReasonMissingField, Field: field}
	}
	return nil
}

func (o *Orchestrator) buildRequestLocked() entity.OrderRequest {
	lines := o.ledger.Items()
	items := make([]entity.OrderItem, 0, len(lines))
	for _, it := range lines {
		items = append(items, entity.OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}

	return entity.OrderRequest{
		CustomerID:      o.customerID,
		Items:           items,
		TotalAmount:     o.ledger.Total(),
		ShippingAddress: o.address,
		IdempotencyKey:  o.newKey(),
	}
}

// resolve publishes the outcome and, on success, resets the cart and address.
func (o *Orchestrator) resolve(status entity.OrderStatus, reset bool) entity.OrderStatus {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.status = status
	if reset {
		o.ledger.Clear()
		o.address = entity.ShippingAddress{}
	}
	o.phase = PhaseResolved
	return o.status
}

// record appends to the journal. Journal failures are logged only.
func (o *Orchestrator) record(ctx context.Context, req entity.OrderRequest, status checkoutlog.Status, orderID string, cause error) {
	if o.journal == nil {
		return
	}

	entry := checkoutlog.NewEntry(ctx, req.IdempotencyKey, req.CustomerID, status)
	entry.OrderID = orderID
	if cause != nil {
		entry.Error = cause.Error()
	}
	if status == checkoutlog.StatusSubmitted {
		if b, err := json.Marshal(req); err == nil {
			entry.Payload = string(b)
		}
	}

	if err := o.journal.Save(ctx, entry); err != nil {
		slog.WarnContext(ctx, "failed to write checkout log",
			"submission_id", req.IdempotencyKey,
			"status", string(status),
			"error", fmt.Errorf("journal: %w", err),
		)
	}
}
