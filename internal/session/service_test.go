package session

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cardhouse/storefront/internal/commerce"
	"github.com/cardhouse/storefront/internal/domain"
	"github.com/cardhouse/storefront/internal/identity"
)

// --- Mock Commerce ---

type mockCommerce struct {
	mock.Mock
}

func (m *mockCommerce) CreateCart(ctx context.Context) (*domain.CartStub, []domain.UserError, error) {
	args := m.Called(ctx)
	var stub *domain.CartStub
	if args.Get(0) != nil {
		stub = args.Get(0).(*domain.CartStub)
	}
	var userErrors []domain.UserError
	if args.Get(1) != nil {
		userErrors = args.Get(1).([]domain.UserError)
	}
	return stub, userErrors, args.Error(2)
}

func (m *mockCommerce) Cart(ctx context.Context, id string) (*domain.CartStub, bool, error) {
	args := m.Called(ctx, id)
	var stub *domain.CartStub
	if args.Get(0) != nil {
		stub = args.Get(0).(*domain.CartStub)
	}
	return stub, args.Bool(1), args.Error(2)
}

func (m *mockCommerce) FullCart(ctx context.Context, id string) (*domain.CartSnapshot, bool, error) {
	args := m.Called(ctx, id)
	var snap *domain.CartSnapshot
	if args.Get(0) != nil {
		snap = args.Get(0).(*domain.CartSnapshot)
	}
	return snap, args.Bool(1), args.Error(2)
}

func (m *mockCommerce) AddLines(ctx context.Context, cartID string, lines []commerce.LineInput) (*domain.CartStub, []domain.UserError, error) {
	args := m.Called(ctx, cartID, lines)
	var stub *domain.CartStub
	if args.Get(0) != nil {
		stub = args.Get(0).(*domain.CartStub)
	}
	var userErrors []domain.UserError
	if args.Get(1) != nil {
		userErrors = args.Get(1).([]domain.UserError)
	}
	return stub, userErrors, args.Error(2)
}

func (m *mockCommerce) UpdateLine(ctx context.Context, cartID, lineID string, quantity int) (*domain.CartStub, []domain.UserError, error) {
	args := m.Called(ctx, cartID, lineID, quantity)
	var stub *domain.CartStub
	if args.Get(0) != nil {
		stub = args.Get(0).(*domain.CartStub)
	}
	var userErrors []domain.UserError
	if args.Get(1) != nil {
		userErrors = args.Get(1).([]domain.UserError)
	}
	return stub, userErrors, args.Error(2)
}

func (m *mockCommerce) RemoveLine(ctx context.Context, cartID, lineID string) (*domain.CartStub, []domain.UserError, error) {
	args := m.Called(ctx, cartID, lineID)
	var stub *domain.CartStub
	if args.Get(0) != nil {
		stub = args.Get(0).(*domain.CartStub)
	}
	var userErrors []domain.UserError
	if args.Get(1) != nil {
		userErrors = args.Get(1).([]domain.UserError)
	}
	return stub, userErrors, args.Error(2)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestService(api *mockCommerce, store identity.Store) *Service {
	return NewService(api, store, newTestLogger())
}

func freshStub() *domain.CartStub {
	return &domain.CartStub{
		ID:          "gid://cart/abc",
		CheckoutURL: "https://shop.example/checkout/abc",
	}
}

// --- Tests ---

func TestEnsureCart_CreatesWhenNoIdentity(t *testing.T) {
	api := new(mockCommerce)
	store := identity.NewMemoryStore()
	svc := newTestService(api, store)
	ctx := context.Background()

	api.On("CreateCart", ctx).Return(freshStub(), nil, nil).Once()

	stub, err := svc.EnsureCart(ctx)

	require.NoError(t, err)
	assert.Equal(t, "gid://cart/abc", stub.ID)

	storedID, err := store.CartID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "gid://cart/abc", storedID)

	storedURL, err := store.CheckoutURL(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example/checkout/abc", storedURL)

	api.AssertExpectations(t)
}

func TestEnsureCart_ReusesStoredIdentity(t *testing.T) {
	api := new(mockCommerce)
	store := identity.NewMemoryStore()
	svc := newTestService(api, store)
	ctx := context.Background()

	require.NoError(t, store.SetCartID(ctx, "gid://cart/abc"))
	api.On("Cart", ctx, "gid://cart/abc").Return(freshStub(), true, nil)

	stub, err := svc.EnsureCart(ctx)

	require.NoError(t, err)
	assert.Equal(t, "gid://cart/abc", stub.ID)

	// Second ensure goes through the same verification; never a create.
	_, err = svc.EnsureCart(ctx)
	require.NoError(t, err)

	api.AssertNotCalled(t, "CreateCart", mock.Anything)
	api.AssertExpectations(t)
}

func TestEnsureCart_RecreatesWhenRemoteForgotCart(t *testing.T) {
	api := new(mockCommerce)
	store := identity.NewMemoryStore()
	svc := newTestService(api, store)
	ctx := context.Background()

	require.NoError(t, store.SetCartID(ctx, "gid://cart/expired"))
	api.On("Cart", ctx, "gid://cart/expired").Return(nil, false, nil).Once()
	api.On("CreateCart", ctx).Return(freshStub(), nil, nil).Once()

	stub, err := svc.EnsureCart(ctx)

	require.NoError(t, err)
	assert.Equal(t, "gid://cart/abc", stub.ID)

	storedID, err := store.CartID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "gid://cart/abc", storedID, "stored identity must be overwritten")

	api.AssertExpectations(t)
}

func TestEnsureCart_RecreatesWhenFetchFails(t *testing.T) {
	api := new(mockCommerce)
	store := identity.NewMemoryStore()
	svc := newTestService(api, store)
	ctx := context.Background()

	require.NoError(t, store.SetCartID(ctx, "not-a-cart-id"))
	api.On("Cart", ctx, "not-a-cart-id").Return(nil, false, errors.New("malformed id")).Once()
	api.On("CreateCart", ctx).Return(freshStub(), nil, nil).Once()

	stub, err := svc.EnsureCart(ctx)

	require.NoError(t, err)
	assert.Equal(t, "gid://cart/abc", stub.ID)

	api.AssertExpectations(t)
}

func TestEnsureCart_CreationRejected(t *testing.T) {
	api := new(mockCommerce)
	store := identity.NewMemoryStore()
	svc := newTestService(api, store)
	ctx := context.Background()

	userErrors := []domain.UserError{{Message: "shop is suspended"}}
	api.On("CreateCart", ctx).Return(nil, userErrors, nil).Once()

	stub, err := svc.EnsureCart(ctx)

	assert.Nil(t, stub)
	var unavailErr *CartUnavailableError
	require.ErrorAs(t, err, &unavailErr)
	assert.Contains(t, unavailErr.Error(), "shop is suspended")

	storedID, serr := store.CartID(ctx)
	require.NoError(t, serr)
	assert.Empty(t, storedID, "no identity stored when creation fails")

	api.AssertExpectations(t)
}

func TestAddLine_RejectsNonPositiveQuantity(t *testing.T) {
	api := new(mockCommerce)
	svc := newTestService(api, identity.NewMemoryStore())

	_, err := svc.AddLine(context.Background(), "gid://variant/1", 0)

	require.Error(t, err)
	api.AssertNotCalled(t, "AddLines", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddLine_EnsuresCartFirst(t *testing.T) {
	api := new(mockCommerce)
	store := identity.NewMemoryStore()
	svc := newTestService(api, store)
	ctx := context.Background()

	api.On("CreateCart", ctx).Return(freshStub(), nil, nil).Once()
	api.On("AddLines", ctx, "gid://cart/abc", []commerce.LineInput{
		{MerchandiseID: "gid://variant/1", Quantity: 2},
	}).Return(freshStub(), nil, nil).Once()

	stub, err := svc.AddLine(ctx, "gid://variant/1", 2)

	require.NoError(t, err)
	assert.Equal(t, "gid://cart/abc", stub.ID)
	api.AssertExpectations(t)
}

func TestAddLine_UserErrorsSurfaceAsLineMutationError(t *testing.T) {
	api := new(mockCommerce)
	store := identity.NewMemoryStore()
	svc := newTestService(api, store)
	ctx := context.Background()

	require.NoError(t, store.SetCartID(ctx, "gid://cart/abc"))
	api.On("Cart", ctx, "gid://cart/abc").Return(freshStub(), true, nil)
	api.On("AddLines", ctx, "gid://cart/abc", mock.Anything).Return(nil, []domain.UserError{
		{Message: "sold out"},
		{Message: "limit reached"},
	}, nil).Once()

	_, err := svc.AddLine(ctx, "gid://variant/1", 1)

	var mutErr *LineMutationError
	require.ErrorAs(t, err, &mutErr)
	assert.Equal(t, "sold out; limit reached", mutErr.Error())
	api.AssertExpectations(t)
}

func TestSetLineQuantity_RejectsBelowOne(t *testing.T) {
	api := new(mockCommerce)
	svc := newTestService(api, identity.NewMemoryStore())

	err := svc.SetLineQuantity(context.Background(), "gid://cart/abc", "line-1", 0)

	require.Error(t, err)
	api.AssertNotCalled(t, "UpdateLine", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRemoveLine_UserErrorsSurface(t *testing.T) {
	api := new(mockCommerce)
	svc := newTestService(api, identity.NewMemoryStore())
	ctx := context.Background()

	api.On("RemoveLine", ctx, "gid://cart/abc", "line-1").Return(nil, []domain.UserError{
		{Message: "cart locked"},
	}, nil).Once()

	err := svc.RemoveLine(ctx, "gid://cart/abc", "line-1")

	var mutErr *LineMutationError
	require.ErrorAs(t, err, &mutErr)
	api.AssertExpectations(t)
}

func TestResolveCheckoutURL_FreshFetchWins(t *testing.T) {
	api := new(mockCommerce)
	store := identity.NewMemoryStore()
	svc := newTestService(api, store)
	ctx := context.Background()

	require.NoError(t, store.SetCartID(ctx, "gid://cart/abc"))
	require.NoError(t, store.SetCheckoutURL(ctx, "https://shop.example/checkout/stale"))
	api.On("Cart", ctx, "gid://cart/abc").Return(freshStub(), true, nil).Once()

	url, err := svc.ResolveCheckoutURL(ctx)

	require.NoError(t, err)
	assert.Equal(t, "https://shop.example/checkout/abc", url)

	storedURL, serr := store.CheckoutURL(ctx)
	require.NoError(t, serr)
	assert.Equal(t, "https://shop.example/checkout/abc", storedURL, "fallback refreshed")

	api.AssertExpectations(t)
}

func TestResolveCheckoutURL_FallsBackWhenFetchFails(t *testing.T) {
	api := new(mockCommerce)
	store := identity.NewMemoryStore()
	svc := newTestService(api, store)
	ctx := context.Background()

	require.NoError(t, store.SetCartID(ctx, "gid://cart/abc"))
	require.NoError(t, store.SetCheckoutURL(ctx, "https://shop.example/checkout/stored"))
	api.On("Cart", ctx, "gid://cart/abc").Return(nil, false, errors.New("timeout")).Once()

	url, err := svc.ResolveCheckoutURL(ctx)

	require.NoError(t, err)
	assert.Equal(t, "https://shop.example/checkout/stored", url)
	api.AssertExpectations(t)
}

func TestResolveCheckoutURL_EmptyWhenNothingKnown(t *testing.T) {
	api := new(mockCommerce)
	svc := newTestService(api, identity.NewMemoryStore())

	url, err := svc.ResolveCheckoutURL(context.Background())

	require.NoError(t, err)
	assert.Empty(t, url)
	api.AssertNotCalled(t, "Cart", mock.Anything, mock.Anything)
}
