package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	cerrors "github.com/abgdnv/storecatalog/internal/errors"
	"github.com/abgdnv/storecatalog/internal/store"
	"github.com/abgdnv/storecatalog/pkg/messaging"
	"github.com/abgdnv/storecatalog/pkg/messaging/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProductStore is a mock implementation of the ProductStore interface
type mockProductStore struct {
	products  []store.Product
	product   store.Product
	exists    bool
	error     error
	saveError error
	page      store.Page
	saved     *store.Product
	deleted   string
}

func (m *mockProductStore) FindByCode(_ context.Context, _ string) (*store.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	p := m.product
	return &p, nil
}

func (m *mockProductStore) ExistsByCode(_ context.Context, _ string) (bool, error) {
	return m.exists, m.error
}

func (m *mockProductStore) FindAll(_ context.Context, page store.Page) ([]store.Product, error) {
	m.page = page
	return m.products, m.error
}

func (m *mockProductStore) Create(_ context.Context, product store.Product) (*store.Product, error) {
	if m.saveError != nil {
		return nil, m.saveError
	}
	product.ID = 1
	m.saved = &product
	return &product, nil
}

func (m *mockProductStore) Update(_ context.Context, product store.Product) (*store.Product, error) {
	if m.saveError != nil {
		return nil, m.saveError
	}
	m.saved = &product
	return &product, nil
}

func (m *mockProductStore) DeleteByCode(_ context.Context, code string) error {
	if m.saveError != nil {
		return m.saveError
	}
	m.deleted = code
	return nil
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	events []messaging.Event
	error  error
}

func (p *recordingPublisher) Publish(_ context.Context, event messaging.Event) error {
	p.events = append(p.events, event)
	return p.error
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func int32Ptr(v int32) *int32 { return &v }

func necklace() store.Product {
	return store.Product{
		ID:          1,
		ProductCode: "m1",
		Name:        "Necklace",
		Description: strPtr("Silver"),
		Price:       decimal.NewFromInt(3500),
		Msrp:        decimal.NewNullDecimal(decimal.NewFromInt(4000)),
		Stock:       int64Ptr(3),
	}
}

func Test_ProductService_FindByCode(t *testing.T) {
	testCases := []struct {
		name        string
		mockStore   *mockProductStore
		expected    *ProductDto
		expectError error
	}{
		{
			name:      "Success - product found",
			mockStore: &mockProductStore{product: necklace()},
			expected: &ProductDto{
				ID: 1, ProductCode: "m1", Name: "Necklace", Description: strPtr("Silver"),
				Price: decimal.NewFromInt(3500), Msrp: decimal.NewNullDecimal(decimal.NewFromInt(4000)), Stock: int64Ptr(3),
			},
		},
		{
			name:        "Error - product not found",
			mockStore:   &mockProductStore{error: cerrors.ErrProductNotFound},
			expectError: cerrors.ErrProductNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := NewService(tc.mockStore, &recordingPublisher{}, discardLogger())
			// when
			found, err := service.FindByCode(context.Background(), "m1")
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, found)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, found)
		})
	}
}

func Test_ProductService_FindAll(t *testing.T) {
	ErrStoreError := errors.New("store error")
	testCases := []struct {
		name         string
		mockStore    *mockProductStore
		offset       *int32
		limit        *int32
		expectedPage store.Page
		expectedLen  int
		expectError  error
	}{
		{
			name:         "Success - every product without paging",
			mockStore:    &mockProductStore{products: []store.Product{necklace(), necklace()}},
			expectedPage: store.Page{},
			expectedLen:  2,
		},
		{
			name:         "Success - paging forwarded",
			mockStore:    &mockProductStore{products: []store.Product{necklace()}},
			offset:       int32Ptr(5),
			limit:        int32Ptr(10),
			expectedPage: store.Page{Offset: 5, Limit: 10},
			expectedLen:  1,
		},
		{
			name:         "Success - no products",
			mockStore:    &mockProductStore{products: []store.Product{}},
			expectedPage: store.Page{},
		},
		{
			name:        "Error - store error",
			mockStore:   &mockProductStore{error: ErrStoreError},
			expectError: ErrStoreError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := NewService(tc.mockStore, &recordingPublisher{}, discardLogger())
			// when
			list, err := service.FindAll(context.Background(), tc.offset, tc.limit)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, list)
			assert.Len(t, list, tc.expectedLen)
			assert.Equal(t, tc.expectedPage, tc.mockStore.page)
		})
	}
}

func Test_ProductService_Create(t *testing.T) {
	ErrStoreError := errors.New("store error")
	toCreate := ProductCreateDto{ProductCode: "m1", Name: "Necklace", Price: decimal.NewFromInt(3500)}
	testCases := []struct {
		name          string
		mockStore     *mockProductStore
		expectError   error
		expectedEvent bool
	}{
		{
			name:          "Success - product created",
			mockStore:     &mockProductStore{},
			expectedEvent: true,
		},
		{
			name:        "Error - code already exists",
			mockStore:   &mockProductStore{exists: true},
			expectError: cerrors.ErrProductAlreadyExists,
		},
		{
			name:        "Error - concurrent insert caught by the store",
			mockStore:   &mockProductStore{saveError: cerrors.ErrProductAlreadyExists},
			expectError: cerrors.ErrProductAlreadyExists,
		},
		{
			name:        "Error - existence check fails",
			mockStore:   &mockProductStore{error: ErrStoreError},
			expectError: ErrStoreError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			publisher := &recordingPublisher{}
			service := NewService(tc.mockStore, publisher, discardLogger())
			// when
			created, err := service.Create(context.Background(), toCreate)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, created)
				assert.Empty(t, publisher.events)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(1), created.ID)
			assert.Equal(t, "m1", created.ProductCode)
			require.Len(t, publisher.events, 1)
			assert.Equal(t, messaging.ProductCreatedSubject, publisher.events[0].Subject())
		})
	}
}

func Test_ProductService_Create_PublishFailureIgnored(t *testing.T) {
	// given
	publisher := &recordingPublisher{error: errors.New("broker down")}
	service := NewService(&mockProductStore{}, publisher, discardLogger())

	// when
	created, err := service.Create(context.Background(),
		ProductCreateDto{ProductCode: "m1", Name: "Necklace", Price: decimal.NewFromInt(1)})

	// then
	require.NoError(t, err)
	assert.NotNil(t, created)
	assert.Len(t, publisher.events, 1)
}

func Test_ProductService_ChangePrice(t *testing.T) {
	testCases := []struct {
		name        string
		mockStore   *mockProductStore
		expectError error
	}{
		{name: "Success - price changed", mockStore: &mockProductStore{product: necklace()}},
		{name: "Error - product not found", mockStore: &mockProductStore{error: cerrors.ErrProductNotFound}, expectError: cerrors.ErrProductNotFound},
		{name: "Error - product deleted meanwhile", mockStore: &mockProductStore{product: necklace(), saveError: cerrors.ErrProductNotFound}, expectError: cerrors.ErrProductNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			publisher := &recordingPublisher{}
			service := NewService(tc.mockStore, publisher, discardLogger())
			// when
			updated, err := service.ChangePrice(context.Background(), "m1", decimal.NewFromInt(3000))
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.NewFromInt(3000).Equal(updated.Price))
			// other fields untouched
			assert.Equal(t, "Necklace", updated.Name)
			assert.True(t, updated.Msrp.Valid)
			require.Len(t, publisher.events, 1)
			event, ok := publisher.events[0].(events.ProductPriceChangedEvent)
			require.True(t, ok)
			assert.True(t, decimal.NewFromInt(3500).Equal(event.OldPrice))
		})
	}
}

func Test_ProductService_Update(t *testing.T) {
	testCases := []struct {
		name     string
		patch    ProductPatchDto
		expected store.Product
	}{
		{
			name:  "only name present clears msrp",
			patch: ProductPatchDto{Name: strPtr("Ring")},
			expected: store.Product{
				ID: 1, ProductCode: "m1", Name: "Ring", Description: strPtr("Silver"),
				Price: decimal.NewFromInt(3500), Stock: int64Ptr(3),
			},
		},
		{
			name: "every field present",
			patch: ProductPatchDto{
				Name:        strPtr("Ring"),
				Description: strPtr("Gold"),
				Price:       func() *decimal.Decimal { d := decimal.NewFromInt(10); return &d }(),
				Msrp:        decimal.NewNullDecimal(decimal.NewFromInt(12)),
				Stock:       int64Ptr(0),
			},
			expected: store.Product{
				ID: 1, ProductCode: "m1", Name: "Ring", Description: strPtr("Gold"),
				Price: decimal.NewFromInt(10), Msrp: decimal.NewNullDecimal(decimal.NewFromInt(12)), Stock: int64Ptr(0),
			},
		},
		{
			name:  "msrp replaced",
			patch: ProductPatchDto{Msrp: decimal.NewNullDecimal(decimal.NewFromInt(5000))},
			expected: store.Product{
				ID: 1, ProductCode: "m1", Name: "Necklace", Description: strPtr("Silver"),
				Price: decimal.NewFromInt(3500), Msrp: decimal.NewNullDecimal(decimal.NewFromInt(5000)), Stock: int64Ptr(3),
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mockStore := &mockProductStore{product: necklace()}
			publisher := &recordingPublisher{}
			service := NewService(mockStore, publisher, discardLogger())
			// when
			_, err := service.Update(context.Background(), "m1", tc.patch)
			// then
			require.NoError(t, err)
			require.NotNil(t, mockStore.saved)
			assert.Equal(t, tc.expected, *mockStore.saved)
			require.Len(t, publisher.events, 1)
			assert.Equal(t, messaging.ProductUpdatedSubject, publisher.events[0].Subject())
		})
	}
}

func Test_ProductService_Update_NotFound(t *testing.T) {
	service := NewService(&mockProductStore{error: cerrors.ErrProductNotFound}, &recordingPublisher{}, discardLogger())

	_, err := service.Update(context.Background(), "m9", ProductPatchDto{Name: strPtr("x")})

	assert.ErrorIs(t, err, cerrors.ErrProductNotFound)
}

func Test_ProductService_DeleteByCode(t *testing.T) {
	testCases := []struct {
		name        string
		mockStore   *mockProductStore
		expectError error
	}{
		{name: "Success - product deleted", mockStore: &mockProductStore{product: necklace()}},
		{name: "Error - product not found", mockStore: &mockProductStore{error: cerrors.ErrProductNotFound}, expectError: cerrors.ErrProductNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			publisher := &recordingPublisher{}
			service := NewService(tc.mockStore, publisher, discardLogger())
			// when
			err := service.DeleteByCode(context.Background(), "m1")
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Empty(t, publisher.events)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "m1", tc.mockStore.deleted)
			require.Len(t, publisher.events, 1)
			assert.Equal(t, messaging.ProductDeletedSubject, publisher.events[0].Subject())
		})
	}
}

func Test_ProductService_SeedProducts(t *testing.T) {
	// given
	ctx := context.Background()
	repo := store.NewInMemoryStore()
	service := NewService(repo, messaging.NoopPublisher{}, discardLogger())
	samples := []ProductCreateDto{
		{ProductCode: "p1", Name: "Phone", Price: decimal.NewFromInt(6699)},
		{ProductCode: "p2", Name: "Tablet", Price: decimal.NewFromInt(5028)},
	}

	// when
	first, err := service.SeedProducts(ctx, samples)
	require.NoError(t, err)
	second, err := service.SeedProducts(ctx, samples)
	require.NoError(t, err)

	// then
	assert.Equal(t, 2, first)
	assert.Equal(t, 0, second)
	all, err := service.FindAll(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
