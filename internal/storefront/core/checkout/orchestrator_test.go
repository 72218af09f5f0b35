package checkout

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/checkoutlog"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/cart"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
)

var (
	productA = entity.Product{ID: "A", Name: "Product A", Price: 10.00}
	productB = entity.Product{ID: "B", Name: "Product B", Price: 5.00}
)

type stubOrderService struct {
	mu       sync.Mutex
	calls    int
	last     entity.OrderRequest
	receipt  *entity.OrderReceipt
	err      error
	started  chan struct{}
	proceed  chan struct{}
	panicMsg string
}

func (s *stubOrderService) CreateOrder(ctx context.Context, req entity.OrderRequest) (*entity.OrderReceipt, error) {
	s.mu.Lock()
	s.calls++
	s.last = req
	s.mu.Unlock()

	if s.started != nil {
		close(s.started)
	}
	if s.proceed != nil {
		<-s.proceed
	}
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return s.receipt, s.err
}

func (s *stubOrderService) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type memoryJournal struct {
	mu      sync.Mutex
	entries []*checkoutlog.Entry
	err     error
}

func (j *memoryJournal) Save(ctx context.Context, e *checkoutlog.Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return j.err
	}
	j.entries = append(j.entries, e)
	return nil
}

func fillAddress(t *testing.T, o *Orchestrator) {
	t.Helper()
	values := map[entity.AddressField]string{
		entity.FieldStreet:  "1 Main St",
		entity.FieldCity:    "Springfield",
		entity.FieldState:   "IL",
		entity.FieldZipCode: "62701",
		entity.FieldCountry: "US",
	}
	for f, v := range values {
		if err := o.UpdateAddressField(f, v); err != nil {
			t.Fatalf("UpdateAddressField(%s): %v", f, err)
		}
	}
}

func newTestOrchestrator(svc *stubOrderService, opts ...Option) (*Orchestrator, *cart.Ledger) {
	ledger := cart.NewLedger()
	opts = append([]Option{WithKeyGenerator(func() string { return "key-1" })}, opts...)
	return NewOrchestrator(ledger, svc, opts...), ledger
}

func TestSubmitOrder_EmptyCartNeverCallsService(t *testing.T) {
	svc := &stubOrderService{receipt: &entity.OrderReceipt{ID: "ORD1"}}
	o, _ := newTestOrchestrator(svc)
	fillAddress(t, o)

	status, err := o.SubmitOrder(context.Background())

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Reason != ReasonCartEmpty {
		t.Errorf("expected ReasonCartEmpty, got %v", verr.Reason)
	}
	if err.Error() != MsgCartEmpty {
		t.Errorf("expected notice %q, got %q", MsgCartEmpty, err.Error())
	}
	if svc.callCount() != 0 {
		t.Errorf("expected no network call, got %d", svc.callCount())
	}
	if !status.IsIdle() {
		t.Errorf("expected idle status, got %+v", status)
	}
	if o.Phase() != PhaseIdle {
		t.Errorf("expected phase idle, got %s", o.Phase())
	}
}

func TestSubmitOrder_MissingFieldReportsFirstInOrder(t *testing.T) {
	for _, skip := range entity.AddressFields() {
		t.Run(skip.String(), func(t *testing.T) {
			svc := &stubOrderService{receipt: &entity.OrderReceipt{ID: "ORD1"}}
			o, ledger := newTestOrchestrator(svc)
			ledger.AddItem(productA)

			// Leave skip and every later field empty.
			for _, f := range entity.AddressFields() {
				if f >= skip {
					break
				}
				_ = o.UpdateAddressField(f, "x")
			}

			_, err := o.SubmitOrder(context.Background())

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != skip {
				t.Errorf("expected field %s, got %s", skip, verr.Field)
			}
			want := "Please fill in the " + skip.String() + " field"
			if err.Error() != want {
				t.Errorf("expected notice %q, got %q", want, err.Error())
			}
			if svc.callCount() != 0 {
				t.Errorf("expected no network call, got %d", svc.callCount())
			}
			if o.IsSubmitting() {
				t.Error("expected not submitting")
			}
		})
	}
}

func TestSubmitOrder_SuccessResetsCartAndAddress(t *testing.T) {
	svc := &stubOrderService{receipt: &entity.OrderReceipt{ID: "ORD1"}}
	o, ledger := newTestOrchestrator(svc, WithCustomerID("cust-42"))

	ledger.AddItem(productA)
	ledger.AddItem(productA)
	ledger.AddItem(productB)
	fillAddress(t, o)

	status, err := o.SubmitOrder(context.Background())
	if err != nil {
		t.Fatalf("SubmitOrder: %v", err)
	}

	if status.Outcome != entity.OutcomeSuccess {
		t.Fatalf("expected success, got %+v", status)
	}
	if !strings.Contains(status.Message, "ORD1") {
		t.Errorf("expected message to contain ORD1, got %q", status.Message)
	}
	if status.SubmissionID != "key-1" {
		t.Errorf("expected submission id key-1, got %q", status.SubmissionID)
	}
	if !ledger.IsEmpty() {
		t.Error("expected cart to be empty after success")
	}
	if o.Address() != (entity.ShippingAddress{}) {
		t.Errorf("expected empty address, got %+v", o.Address())
	}
	if o.IsSubmitting() {
		t.Error("expected not submitting after success")
	}
	if o.Phase() != PhaseResolved {
		t.Errorf("expected phase resolved, got %s", o.Phase())
	}

	req := svc.last
	if req.CustomerID != "cust-42" {
		t.Errorf("expected customer cust-42, got %q", req.CustomerID)
	}
	if req.TotalAmount != 25.00 {
		t.Errorf("expected total 25.00, got %v", req.TotalAmount)
	}
	if req.IdempotencyKey != "key-1" {
		t.Errorf("expected idempotency key key-1, got %q", req.IdempotencyKey)
	}
	wantItems := []entity.OrderItem{
		{ProductID: "A", Quantity: 2, Price: 10.00},
		{ProductID: "B", Quantity: 1, Price: 5.00},
	}
	if !reflect.DeepEqual(req.Items, wantItems) {
		t.Errorf("expected items %+v, got %+v", wantItems, req.Items)
	}
	if req.ShippingAddress.ZipCode != "62701" {
		t.Errorf("expected zip 62701 in payload, got %q", req.ShippingAddress.ZipCode)
	}
}

func TestSubmitOrder_TransportFailurePreservesState(t *testing.T) {
	svc := &stubOrderService{err: errors.New("dial tcp: connection refused")}
	o, ledger := newTestOrchestrator(svc)

	ledger.AddItem(productA)
	ledger.AddItem(productB)
	fillAddress(t, o)

	itemsBefore := ledger.Items()
	addressBefore := o.Address()

	status, err := o.SubmitOrder(context.Background())
	if err != nil {
		t.Fatalf("transport failures must not escape, got %v", err)
	}
	if status.Outcome != entity.OutcomeFailure {
		t.Fatalf("expected failure, got %+v", status)
	}
	if status.Message != MsgOrderFailed {
		t.Errorf("expected generic message, got %q", status.Message)
	}
	if status.SubmissionID == "" {
		t.Error("expected failure status to name its submission")
	}
	if strings.Contains(status.Message, "connection refused") {
		t.Error("transport detail leaked into user message")
	}
	if !reflect.DeepEqual(ledger.Items(), itemsBefore) {
		t.Errorf("cart changed: before %+v, after %+v", itemsBefore, ledger.Items())
	}
	if o.Address() != addressBefore {
		t.Errorf("address changed: before %+v, after %+v", addressBefore, o.Address())
	}
	if o.IsSubmitting() {
		t.Error("expected not submitting after failure")
	}
}

func TestSubmitOrder_MissingOrderIDIsFailure(t *testing.T) {
	svc := &stubOrderService{receipt: &entity.OrderReceipt{}}
	o, ledger := newTestOrchestrator(svc)
	ledger.AddItem(productA)
	fillAddress(t, o)

	status, err := o.SubmitOrder(context.Background())
	if err != nil {
		t.Fatalf("SubmitOrder: %v", err)
	}
	if status.Outcome != entity.OutcomeFailure {
		t.Errorf("expected failure, got %+v", status)
	}
	if ledger.IsEmpty() {
		t.Error("expected cart preserved")
	}
}

func TestSubmitOrder_RetryAfterFailure(t *testing.T) {
	svc := &stubOrderService{err: errors.New("503")}
	o, ledger := newTestOrchestrator(svc)
	ledger.AddItem(productA)
	fillAddress(t, o)

	if status, _ := o.SubmitOrder(context.Background()); status.Outcome != entity.OutcomeFailure {
		t.Fatalf("expected failure, got %+v", status)
	}

	svc.err = nil
	svc.receipt = &entity.OrderReceipt{ID: "ORD2"}

	status, err := o.SubmitOrder(context.Background())
	if err != nil {
		t.Fatalf("SubmitOrder: %v", err)
	}
	if status.Outcome != entity.OutcomeSuccess || !strings.Contains(status.Message, "ORD2") {
		t.Errorf("expected success with ORD2, got %+v", status)
	}
	if svc.callCount() != 2 {
		t.Errorf("expected 2 calls, got %d", svc.callCount())
	}
}

func TestSubmitOrder_ValidationKeepsPreviousStatus(t *testing.T) {
	svc := &stubOrderService{receipt: &entity.OrderReceipt{ID: "ORD1"}}
	o, ledger := newTestOrchestrator(svc)
	ledger.AddItem(productA)
	fillAddress(t, o)

	first, err := o.SubmitOrder(context.Background())
	if err != nil {
		t.Fatalf("SubmitOrder: %v", err)
	}

	second, err := o.SubmitOrder(context.Background())
	if !IsValidation(err) {
		t.Fatalf("expected validation error on emptied cart, got %v", err)
	}
	if second != first {
		t.Errorf("expected status %+v to survive validation, got %+v", first, second)
	}
}

func TestSubmitOrder_RejectsReentryWhileInFlight(t *testing.T) {
	svc := &stubOrderService{
		receipt: &entity.OrderReceipt{ID: "ORD1"},
		started: make(chan struct{}),
		proceed: make(chan struct{}),
	}
	mu := &sync.Mutex{}
	o, ledger := newTestOrchestrator(svc, WithLocker(mu))
	ledger.AddItem(productA)
	fillAddress(t, o)

	done := make(chan entity.OrderStatus)
	go func() {
		status, _ := o.SubmitOrder(context.Background())
		done <- status
	}()
	<-svc.started

	if !o.IsSubmitting() {
		t.Error("expected submitting while the request is in flight")
	}
	if _, err := o.SubmitOrder(context.Background()); !errors.Is(err, ErrSubmissionInProgress) {
		t.Errorf("expected ErrSubmissionInProgress, got %v", err)
	}

	// Cart mutations stay available during flight.
	mu.Lock()
	ledger.AddItem(productB)
	mu.Unlock()

	close(svc.proceed)
	status := <-done

	if status.Outcome != entity.OutcomeSuccess {
		t.Errorf("expected success, got %+v", status)
	}
	if svc.callCount() != 1 {
		t.Errorf("expected exactly one network call, got %d", svc.callCount())
	}
	if o.IsSubmitting() {
		t.Error("expected not submitting after resolution")
	}
}

func TestSubmitOrder_ReleasesGuardOnPanic(t *testing.T) {
	svc := &stubOrderService{panicMsg: "boom"}
	o, ledger := newTestOrchestrator(svc)
	ledger.AddItem(productA)
	fillAddress(t, o)

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Error("expected panic to propagate")
			}
		}()
		_, _ = o.SubmitOrder(context.Background())
	}()

	if o.IsSubmitting() {
		t.Error("expected guard released after panic")
	}
}

func TestSubmitOrder_JournalsAttempts(t *testing.T) {
	journal := &memoryJournal{}
	svc := &stubOrderService{err: errors.New("unexpected status 500")}
	o, ledger := newTestOrchestrator(svc, WithJournal(journal), WithCustomerID("cust-1"))
	ledger.AddItem(productA)
	fillAddress(t, o)

	_, _ = o.SubmitOrder(context.Background())

	svc.err = nil
	svc.receipt = &entity.OrderReceipt{ID: "ORD9"}
	_, _ = o.SubmitOrder(context.Background())

	if len(journal.entries) != 4 {
		t.Fatalf("expected 4 journal entries, got %d", len(journal.entries))
	}

	wantStatus := []checkoutlog.Status{
		checkoutlog.StatusSubmitted,
		checkoutlog.StatusFailed,
		checkoutlog.StatusSubmitted,
		checkoutlog.StatusSucceeded,
	}
	for i, e := range journal.entries {
		if e.Status != wantStatus[i] {
			t.Errorf("entry %d: expected %s, got %s", i, wantStatus[i], e.Status)
		}
		if e.CustomerID != "cust-1" || e.SubmissionID != "key-1" {
			t.Errorf("entry %d: unexpected ids %q/%q", i, e.CustomerID, e.SubmissionID)
		}
	}
	if !strings.Contains(journal.entries[0].Payload, `"customerId":"cust-1"`) {
		t.Errorf("expected JSON payload on SUBMITTED entry, got %q", journal.entries[0].Payload)
	}
	if journal.entries[1].Error != "unexpected status 500" {
		t.Errorf("expected error detail on FAILED entry, got %q", journal.entries[1].Error)
	}
	if journal.entries[3].OrderID != "ORD9" {
		t.Errorf("expected order id on SUCCEEDED entry, got %q", journal.entries[3].OrderID)
	}
}

func TestSubmitOrder_JournalErrorsDoNotAffectOutcome(t *testing.T) {
	journal := &memoryJournal{err: errors.New("disk full")}
	svc := &stubOrderService{receipt: &entity.OrderReceipt{ID: "ORD1"}}
	o, ledger := newTestOrchestrator(svc, WithJournal(journal))
	ledger.AddItem(productA)
	fillAddress(t, o)

	status, err := o.SubmitOrder(context.Background())
	if err != nil {
		t.Fatalf("SubmitOrder: %v", err)
	}
	if status.Outcome != entity.OutcomeSuccess {
		t.Errorf("expected success, got %+v", status)
	}
}

func TestUpdateAddressField_RejectsUnknownField(t *testing.T) {
	o, _ := newTestOrchestrator(&stubOrderService{})

	err := o.UpdateAddressField(entity.AddressField(-1), "x")
	if !errors.Is(err, entity.ErrUnknownAddressField) {
		t.Errorf("expected ErrUnknownAddressField, got %v", err)
	}
}

func TestSnapshot_ReflectsLedgerAndCheckoutState(t *testing.T) {
	o, ledger := newTestOrchestrator(&stubOrderService{})
	ledger.AddItem(productA)
	ledger.AddItem(productA)
	ledger.AddItem(productB)
	_ = o.UpdateAddressField(entity.FieldCity, "Springfield")

	snap := o.Snapshot()
	if snap.Count != 2 || snap.Units != 3 || snap.Total != 25.00 {
		t.Errorf("unexpected totals: count=%d units=%d total=%v", snap.Count, snap.Units, snap.Total)
	}
	if snap.Address.City != "Springfield" {
		t.Errorf("expected city Springfield, got %q", snap.Address.City)
	}
	if snap.Submitting || snap.Phase != PhaseIdle {
		t.Errorf("expected idle, got phase %s", snap.Phase)
	}
}
