package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mini-eats/internal/cart"
	"mini-eats/internal/events"
	"mini-eats/internal/model"
	"mini-eats/internal/payment"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testOrderNumber = "CMD1700000000000ABCDE"

type checkoutFixture struct {
	store          cart.Store
	restaurantRepo *MockRestaurantRepository
	orderRepo      *MockOrderRepository
	profileRepo    *MockProfileRepository
	gateway        *MockGateway
	publisher      *MockPublisher
	tx             *MockTx
	restaurant     *model.Restaurant
	chicken        model.Product
	attieke        model.Product
	service        CheckoutService
}

func newCheckoutFixture(t *testing.T, config CheckoutConfig) *checkoutFixture {
	t.Helper()

	restaurant := &model.Restaurant{
		ID:           uuid.New(),
		Name:         "Chez Tantie",
		Address:      "Cocody, Abidjan",
		DeliveryFee:  1000,
		MinimumOrder: 2000,
		IsActive:     true,
	}

	f := &checkoutFixture{
		store:          cart.NewMemoryStore(time.Hour),
		restaurantRepo: new(MockRestaurantRepository),
		orderRepo:      new(MockOrderRepository),
		profileRepo:    new(MockProfileRepository),
		gateway:        new(MockGateway),
		publisher:      new(MockPublisher),
		tx:             new(MockTx),
		restaurant:     restaurant,
		chicken: model.Product{
			ID: uuid.New(), RestaurantID: restaurant.ID, Name: "Poulet Braisé", Price: 4500, IsAvailable: true,
		},
		attieke: model.Product{
			ID: uuid.New(), RestaurantID: restaurant.ID, Name: "Attiéké", Price: 1500, IsAvailable: true,
		},
	}

	f.service = NewCheckoutService(
		f.store, f.restaurantRepo, f.orderRepo, f.profileRepo,
		f.gateway, fixedOrderNumbers(testOrderNumber), f.publisher,
		config, zerolog.Nop(),
	)

	return f
}

// fillCart puts 2 x 4500 + 1 x 1500 into the session's cart.
func (f *checkoutFixture) fillCart(t *testing.T, sessionID string) {
	t.Helper()
	session := cart.NewSession(sessionID, f.store)
	ctx := context.Background()
	for _, p := range []model.Product{f.chicken, f.chicken, f.attieke} {
		_, err := session.AddItem(ctx, p)
		require.NoError(t, err)
	}
}

func (f *checkoutFixture) cartSubtotal(t *testing.T, sessionID string) int64 {
	t.Helper()
	subtotal, err := cart.NewSession(sessionID, f.store).Subtotal(context.Background())
	require.NoError(t, err)
	return subtotal
}

func (f *checkoutFixture) expectPersist() {
	f.orderRepo.On("BeginTx", mock.Anything).Return(f.tx, nil)
	f.orderRepo.On("CreateOrder", mock.Anything, f.tx, mock.AnythingOfType("*model.Order")).Return(nil)
	f.orderRepo.On("CreateOrderItems", mock.Anything, f.tx, mock.AnythingOfType("[]model.OrderItem")).Return(nil)
	f.tx.On("Commit", mock.Anything).Return(nil)
}

func validCheckoutRequest() *model.CheckoutRequest {
	return &model.CheckoutRequest{
		Customer: model.CustomerInfo{
			Name:    "Awa Koné",
			Phone:   "+225 07 00 00 00",
			Address: "Cocody, Abidjan",
		},
	}
}

func TestCheckoutService_Submit_Success(t *testing.T) {
	f := newCheckoutFixture(t, CheckoutConfig{})
	ctx := context.Background()
	f.fillCart(t, "s1")

	f.restaurantRepo.On("GetByID", ctx, f.restaurant.ID).Return(f.restaurant, nil)
	f.gateway.On("InitiatePayment", mock.Anything, mock.AnythingOfType("*model.Order")).
		Return(payment.Result{TransactionID: "txn_1_abcdefghi"}, nil)
	f.expectPersist()
	f.publisher.On("Publish", ctx, mock.MatchedBy(func(e events.OrderEvent) bool {
		return e.Type == events.TypeOrderCreated && e.OrderNumber == testOrderNumber
	})).Return(nil)

	order, err := f.service.Submit(ctx, "s1", nil, validCheckoutRequest())

	require.NoError(t, err)
	require.NotNil(t, order)
	assert.NotEqual(t, uuid.Nil, order.ID)
	assert.Equal(t, testOrderNumber, order.OrderNumber)
	assert.Equal(t, model.StatusPending, order.Status)
	assert.Equal(t, model.ServiceDelivery, order.ServiceType)
	assert.Equal(t, int64(10500), order.ItemsTotal)
	assert.Equal(t, int64(1000), order.DeliveryFee)
	assert.Equal(t, int64(11500), order.TotalAmount)
	assert.Equal(t, model.PaymentCash, order.PaymentMethod)
	assert.Equal(t, model.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, "txn_1_abcdefghi", order.TransactionID)
	assert.Nil(t, order.UserID)

	require.Len(t, order.Items, 2)
	var sum int64
	for _, item := range order.Items {
		assert.Equal(t, order.ID, item.OrderID)
		sum += item.LineTotal()
	}
	assert.Equal(t, order.ItemsTotal, sum)

	// Cart is destroyed once the order is stored.
	assert.Equal(t, int64(0), f.cartSubtotal(t, "s1"))

	f.restaurantRepo.AssertExpectations(t)
	f.gateway.AssertExpectations(t)
	f.orderRepo.AssertExpectations(t)
	f.tx.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
	f.tx.AssertNotCalled(t, "Rollback", mock.Anything)
}

func TestCheckoutService_Submit_PaymentStatusByMethod(t *testing.T) {
	tests := []struct {
		name           string
		method         model.PaymentMethod
		expectedStatus model.PaymentStatus
	}{
		{name: "Cash stays pending", method: model.PaymentCash, expectedStatus: model.PaymentStatusPending},
		{name: "Card is confirmed", method: model.PaymentCard, expectedStatus: model.PaymentStatusConfirmed},
		{name: "Mobile money is confirmed", method: model.PaymentMobileMoney, expectedStatus: model.PaymentStatusConfirmed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCheckoutFixture(t, CheckoutConfig{})
			ctx := context.Background()
			f.fillCart(t, "s1")

			f.restaurantRepo.On("GetByID", ctx, f.restaurant.ID).Return(f.restaurant, nil)
			f.gateway.On("InitiatePayment", mock.Anything, mock.Anything).
				Return(payment.Result{TransactionID: "txn_1_abcdefghi"}, nil)
			f.expectPersist()
			f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

			req := validCheckoutRequest()
			req.PaymentMethod = tt.method

			order, err := f.service.Submit(ctx, "s1", nil, req)

			require.NoError(t, err)
			assert.Equal(t, tt.method, order.PaymentMethod)
			assert.Equal(t, tt.expectedStatus, order.PaymentStatus)
			assert.Equal(t, model.StatusPending, order.Status)
		})
	}
}

func TestCheckoutService_Submit_EmptyCart(t *testing.T) {
	f := newCheckoutFixture(t, CheckoutConfig{})

	order, err := f.service.Submit(context.Background(), "s1", nil, validCheckoutRequest())

	assert.ErrorIs(t, err, model.ErrEmptyCart)
	assert.Nil(t, order)
	f.gateway.AssertNotCalled(t, "InitiatePayment", mock.Anything, mock.Anything)
	f.orderRepo.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestCheckoutService_Submit_ValidationErrors(t *testing.T) {
	tests := []struct {
		name          string
		modify        func(req *model.CheckoutRequest)
		expectedField string
		expectedErr   error
	}{
		{
			name:          "Blank name",
			modify:        func(req *model.CheckoutRequest) { req.Customer.Name = "   " },
			expectedField: "name",
		},
		{
			name:          "Missing phone",
			modify:        func(req *model.CheckoutRequest) { req.Customer.Phone = "" },
			expectedField: "phone",
		},
		{
			name:          "Blank address",
			modify:        func(req *model.CheckoutRequest) { req.Customer.Address = "\t" },
			expectedField: "address",
		},
		{
			name:        "Unknown payment method",
			modify:      func(req *model.CheckoutRequest) { req.PaymentMethod = "cheque" },
			expectedErr: model.ErrInvalidPaymentMethod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCheckoutFixture(t, CheckoutConfig{})
			f.fillCart(t, "s1")

			req := validCheckoutRequest()
			tt.modify(req)

			order, err := f.service.Submit(context.Background(), "s1", nil, req)

			require.Error(t, err)
			assert.Nil(t, order)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				var missing *model.MissingFieldError
				require.ErrorAs(t, err, &missing)
				assert.Equal(t, tt.expectedField, missing.Field)
			}

			assert.Equal(t, int64(10500), f.cartSubtotal(t, "s1"))
			f.gateway.AssertNotCalled(t, "InitiatePayment", mock.Anything, mock.Anything)
		})
	}
}

func TestCheckoutService_Submit_RestaurantChecks(t *testing.T) {
	tests := []struct {
		name        string
		restaurant  func(r model.Restaurant) *model.Restaurant
		expectedErr error
	}{
		{
			name:        "Restaurant deleted",
			restaurant:  func(model.Restaurant) *model.Restaurant { return nil },
			expectedErr: model.ErrRestaurantNotFound,
		},
		{
			name: "Restaurant closed",
			restaurant: func(r model.Restaurant) *model.Restaurant {
				r.IsActive = false
				return &r
			},
			expectedErr: model.ErrRestaurantUnavailable,
		},
		{
			name: "Below minimum order",
			restaurant: func(r model.Restaurant) *model.Restaurant {
				r.MinimumOrder = 20000
				return &r
			},
			expectedErr: model.ErrBelowMinimumOrder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCheckoutFixture(t, CheckoutConfig{})
			ctx := context.Background()
			f.fillCart(t, "s1")

			r := tt.restaurant(*f.restaurant)
			if r == nil {
				f.restaurantRepo.On("GetByID", ctx, f.restaurant.ID).Return(nil, nil)
			} else {
				f.restaurantRepo.On("GetByID", ctx, f.restaurant.ID).Return(r, nil)
			}

			order, err := f.service.Submit(ctx, "s1", nil, validCheckoutRequest())

			assert.ErrorIs(t, err, tt.expectedErr)
			assert.Nil(t, order)
			assert.Equal(t, int64(10500), f.cartSubtotal(t, "s1"))
			f.gateway.AssertNotCalled(t, "InitiatePayment", mock.Anything, mock.Anything)
		})
	}
}

func TestCheckoutService_Submit_PaymentFailure(t *testing.T) {
	f := newCheckoutFixture(t, CheckoutConfig{})
	ctx := context.Background()
	f.fillCart(t, "s1")

	gatewayErr := errors.New("provider unreachable")
	f.restaurantRepo.On("GetByID", ctx, f.restaurant.ID).Return(f.restaurant, nil)
	f.gateway.On("InitiatePayment", mock.Anything, mock.Anything).Return(payment.Result{}, gatewayErr)

	order, err := f.service.Submit(ctx, "s1", nil, validCheckoutRequest())

	assert.Nil(t, order)
	var payErr *model.PaymentInitiationError
	require.ErrorAs(t, err, &payErr)
	assert.ErrorIs(t, err, gatewayErr)

	// No order is created and the cart is untouched.
	f.orderRepo.AssertNotCalled(t, "BeginTx", mock.Anything)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	assert.Equal(t, int64(10500), f.cartSubtotal(t, "s1"))
}

// slowGateway blocks until its context is done.
type slowGateway struct{}

func (slowGateway) InitiatePayment(ctx context.Context, _ *model.Order) (payment.Result, error) {
	<-ctx.Done()
	return payment.Result{}, ctx.Err()
}

func (slowGateway) VerifyPayment(ctx context.Context, _ string) (payment.Result, error) {
	<-ctx.Done()
	return payment.Result{}, ctx.Err()
}

func TestCheckoutService_Submit_PaymentTimeout(t *testing.T) {
	f := newCheckoutFixture(t, CheckoutConfig{})
	ctx := context.Background()
	f.fillCart(t, "s1")
	f.restaurantRepo.On("GetByID", ctx, f.restaurant.ID).Return(f.restaurant, nil)

	svc := NewCheckoutService(
		f.store, f.restaurantRepo, f.orderRepo, f.profileRepo,
		slowGateway{}, fixedOrderNumbers(testOrderNumber), f.publisher,
		CheckoutConfig{PaymentTimeout: 20 * time.Millisecond}, zerolog.Nop(),
	)

	order, err := svc.Submit(ctx, "s1", nil, validCheckoutRequest())

	assert.Nil(t, order)
	var payErr *model.PaymentInitiationError
	require.ErrorAs(t, err, &payErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	f.orderRepo.AssertNotCalled(t, "BeginTx", mock.Anything)
	assert.Equal(t, int64(10500), f.cartSubtotal(t, "s1"))
}

func TestCheckoutService_Submit_PersistenceFailure(t *testing.T) {
	f := newCheckoutFixture(t, CheckoutConfig{PersistenceTimeout: time.Second})
	ctx := context.Background()
	f.fillCart(t, "s1")

	dbErr := errors.New("connection reset")
	f.restaurantRepo.On("GetByID", ctx, f.restaurant.ID).Return(f.restaurant, nil)
	f.gateway.On("InitiatePayment", mock.Anything, mock.Anything).
		Return(payment.Result{TransactionID: "txn_1_abcdefghi"}, nil)
	f.orderRepo.On("BeginTx", mock.Anything).Return(f.tx, nil)
	f.orderRepo.On("CreateOrder", mock.Anything, f.tx, mock.Anything).Return(nil)
	f.orderRepo.On("CreateOrderItems", mock.Anything, f.tx, mock.Anything).Return(dbErr)
	f.tx.On("Rollback", mock.Anything).Return(nil)

	order, err := f.service.Submit(ctx, "s1", nil, validCheckoutRequest())

	assert.Nil(t, order)
	var persistErr *model.PersistenceError
	require.ErrorAs(t, err, &persistErr)
	assert.Equal(t, "txn_1_abcdefghi", persistErr.TransactionID)
	assert.Equal(t, testOrderNumber, persistErr.OrderNumber)
	assert.ErrorIs(t, err, dbErr)

	f.tx.AssertCalled(t, "Rollback", mock.Anything)
	f.tx.AssertNotCalled(t, "Commit", mock.Anything)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	assert.Equal(t, int64(10500), f.cartSubtotal(t, "s1"))
}

func TestCheckoutService_Submit_BeginTxFailure(t *testing.T) {
	f := newCheckoutFixture(t, CheckoutConfig{})
	ctx := context.Background()
	f.fillCart(t, "s1")

	f.restaurantRepo.On("GetByID", ctx, f.restaurant.ID).Return(f.restaurant, nil)
	f.gateway.On("InitiatePayment", mock.Anything, mock.Anything).
		Return(payment.Result{TransactionID: "txn_1_abcdefghi"}, nil)
	f.orderRepo.On("BeginTx", mock.Anything).Return(nil, errors.New("pool exhausted"))

	_, err := f.service.Submit(ctx, "s1", nil, validCheckoutRequest())

	var persistErr *model.PersistenceError
	require.ErrorAs(t, err, &persistErr)
	assert.Equal(t, "txn_1_abcdefghi", persistErr.TransactionID)
}

func TestCheckoutService_Submit_OrderNumberConflict(t *testing.T) {
	f := newCheckoutFixture(t, CheckoutConfig{})
	ctx := context.Background()
	f.fillCart(t, "s1")

	f.restaurantRepo.On("GetByID", ctx, f.restaurant.ID).Return(f.restaurant, nil)
	f.gateway.On("InitiatePayment", mock.Anything, mock.Anything).
		Return(payment.Result{TransactionID: "txn_1_abcdefghi"}, nil)
	f.orderRepo.On("BeginTx", mock.Anything).Return(f.tx, nil)
	f.orderRepo.On("CreateOrder", mock.Anything, f.tx, mock.Anything).Return(model.ErrOrderNumberConflict)
	f.tx.On("Rollback", mock.Anything).Return(nil)

	req := validCheckoutRequest()
	req.PaymentMethod = model.PaymentCard

	order, err := f.service.Submit(ctx, "s1", nil, req)

	assert.Nil(t, order)
	assert.ErrorIs(t, err, model.ErrOrderNumberConflict)
	var persistErr *model.PersistenceError
	require.ErrorAs(t, err, &persistErr)
	assert.Equal(t, "txn_1_abcdefghi", persistErr.TransactionID)
	assert.Equal(t, testOrderNumber, persistErr.OrderNumber)
	f.orderRepo.AssertNumberOfCalls(t, "CreateOrder", 1)
	assert.Equal(t, int64(10500), f.cartSubtotal(t, "s1"))
}

// blockingGateway holds InitiatePayment until released.
type blockingGateway struct {
	entered chan struct{}
	release chan struct{}
}

func (g *blockingGateway) InitiatePayment(ctx context.Context, _ *model.Order) (payment.Result, error) {
	close(g.entered)
	select {
	case <-g.release:
		return payment.Result{TransactionID: "txn_1_abcdefghi"}, nil
	case <-ctx.Done():
		return payment.Result{}, ctx.Err()
	}
}

func (g *blockingGateway) VerifyPayment(context.Context, string) (payment.Result, error) {
	return payment.Result{}, nil
}

func TestCheckoutService_Submit_ConcurrentSubmissions(t *testing.T) {
	f := newCheckoutFixture(t, CheckoutConfig{})
	ctx := context.Background()
	f.fillCart(t, "s1")

	gateway := &blockingGateway{entered: make(chan struct{}), release: make(chan struct{})}
	svc := NewCheckoutService(
		f.store, f.restaurantRepo, f.orderRepo, f.profileRepo,
		gateway, fixedOrderNumbers(testOrderNumber), f.publisher,
		CheckoutConfig{}, zerolog.Nop(),
	)

	f.restaurantRepo.On("GetByID", ctx, f.restaurant.ID).Return(f.restaurant, nil)
	f.expectPersist()
	f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

	var (
		wg     sync.WaitGroup
		first  *model.Order
		errOne error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		first, errOne = svc.Submit(ctx, "s1", nil, validCheckoutRequest())
	}()

	<-gateway.entered

	// The first submission is in flight; the second must be refused.
	second, errTwo := svc.Submit(ctx, "s1", nil, validCheckoutRequest())
	assert.Nil(t, second)
	assert.ErrorIs(t, errTwo, model.ErrSubmissionInProgress)

	close(gateway.release)
	wg.Wait()

	require.NoError(t, errOne)
	require.NotNil(t, first)
	f.orderRepo.AssertNumberOfCalls(t, "CreateOrder", 1)

	// Once the guard is released a new submission sees the emptied cart.
	_, err := svc.Submit(ctx, "s1", nil, validCheckoutRequest())
	assert.ErrorIs(t, err, model.ErrEmptyCart)
}

func TestCheckoutService_Submit_PublishFailureKeepsOrder(t *testing.T) {
	f := newCheckoutFixture(t, CheckoutConfig{})
	ctx := context.Background()
	f.fillCart(t, "s1")

	f.restaurantRepo.On("GetByID", ctx, f.restaurant.ID).Return(f.restaurant, nil)
	f.gateway.On("InitiatePayment", mock.Anything, mock.Anything).
		Return(payment.Result{TransactionID: "txn_1_abcdefghi"}, nil)
	f.expectPersist()
	f.publisher.On("Publish", ctx, mock.Anything).Return(errors.New("broker down"))

	order, err := f.service.Submit(ctx, "s1", nil, validCheckoutRequest())

	require.NoError(t, err)
	assert.Equal(t, testOrderNumber, order.OrderNumber)
}

func TestCheckoutService_Submit_SignedInCustomer(t *testing.T) {
	f := newCheckoutFixture(t, CheckoutConfig{})
	ctx := context.Background()
	f.fillCart(t, "s1")
	userID := uuid.New()

	f.restaurantRepo.On("GetByID", ctx, f.restaurant.ID).Return(f.restaurant, nil)
	f.profileRepo.On("GetByID", ctx, userID).Return(&model.Profile{ID: userID, Email: "awa@example.com"}, nil)
	f.gateway.On("InitiatePayment", mock.Anything, mock.Anything).
		Return(payment.Result{TransactionID: "txn_1_abcdefghi"}, nil)
	f.expectPersist()
	f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

	order, err := f.service.Submit(ctx, "s1", &userID, validCheckoutRequest())

	require.NoError(t, err)
	require.NotNil(t, order.UserID)
	assert.Equal(t, userID, *order.UserID)
	assert.Equal(t, "awa@example.com", order.CustomerEmail)
	f.profileRepo.AssertExpectations(t)
}

func TestCheckoutService_Submit_SignedInCustomerWithoutProfile(t *testing.T) {
	f := newCheckoutFixture(t, CheckoutConfig{})
	ctx := context.Background()
	f.fillCart(t, "s1")
	userID := uuid.New()

	f.restaurantRepo.On("GetByID", ctx, f.restaurant.ID).Return(f.restaurant, nil)
	f.profileRepo.On("GetByID", ctx, userID).Return(nil, nil)

	req := validCheckoutRequest()
	req.Customer.Email = "awa@example.com"
	order, err := f.service.Submit(ctx, "s1", &userID, req)

	assert.Nil(t, order)
	assert.ErrorIs(t, err, model.ErrProfileNotFound)
	f.gateway.AssertNotCalled(t, "InitiatePayment", mock.Anything, mock.Anything)
	f.orderRepo.AssertNotCalled(t, "BeginTx", mock.Anything)
	assert.Equal(t, int64(10500), f.cartSubtotal(t, "s1"))
}
