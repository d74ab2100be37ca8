package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/cafeapi/internal/db"
	"github.com/vbonduro/cafeapi/internal/domain"
	"github.com/vbonduro/cafeapi/internal/store"
)

const testAPIKey = "TopSecretAPIKey"

func newTestService(t *testing.T) *CafeService {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	return NewCafeService(store.NewCafeStore(d), testAPIKey, slog.Default())
}

func strPtr(s string) *string { return &s }

func addCafe(t *testing.T, svc *CafeService, name, location string) *domain.Cafe {
	t.Helper()
	cafe, err := svc.AddCafe(context.Background(), domain.NewCafe{
		Name:        name,
		MapURL:      "https://maps.example/" + name,
		ImgURL:      "https://img.example/" + name,
		Location:    location,
		Seats:       "10-20",
		HasWifi:     true,
		CoffeePrice: strPtr("£2.50"),
	})
	require.NoError(t, err)
	return cafe
}

func TestCafeServiceRandomCafeEmpty(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.RandomCafe(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmpty)
}

func TestCafeServiceRandomCafe(t *testing.T) {
	svc := newTestService(t)
	added := addCafe(t, svc, "Only One", "Whitechapel")

	cafe, err := svc.RandomCafe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, added, cafe)
}

func TestCafeServiceListAndCount(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cafes, err := svc.ListCafes(ctx)
	require.NoError(t, err)
	assert.Empty(t, cafes)

	addCafe(t, svc, "One", "Soho")
	addCafe(t, svc, "Two", "Soho")

	cafes, err = svc.ListCafes(ctx)
	require.NoError(t, err)
	assert.Len(t, cafes, 2)

	n, err := svc.CountCafes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCafeServiceSearchByLocation(t *testing.T) {
	svc := newTestService(t)
	addCafe(t, svc, "Capitalised", "Paris")
	addCafe(t, svc, "Lowercase", "paris")

	found, err := svc.SearchByLocation(context.Background(), "Paris")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Capitalised", found[0].Name)

	found, err = svc.SearchByLocation(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestCafeServiceAddCafeDuplicate(t *testing.T) {
	svc := newTestService(t)
	addCafe(t, svc, "Twice", "Islington")

	_, err := svc.AddCafe(context.Background(), domain.NewCafe{Name: "Twice", Location: "Angel"})
	assert.ErrorIs(t, err, domain.ErrDuplicateName)
}

func TestCafeServiceUpdatePrice(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	cafe := addCafe(t, svc, "Priced", "Brixton")

	require.NoError(t, svc.UpdatePrice(ctx, cafe.ID, strPtr("£3.00")))

	cafes, err := svc.ListCafes(ctx)
	require.NoError(t, err)
	require.Len(t, cafes, 1)
	require.NotNil(t, cafes[0].CoffeePrice)
	assert.Equal(t, "£3.00", *cafes[0].CoffeePrice)
}

func TestCafeServiceUpdatePriceNotFound(t *testing.T) {
	svc := newTestService(t)

	err := svc.UpdatePrice(context.Background(), 9999, strPtr("£1.00"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCafeServiceDeleteCafe(t *testing.T) {
	tests := []struct {
		name      string
		id        func(cafe *domain.Cafe) int64
		apiKey    string
		wantErr   error
		wantCount int
	}{
		{
			name:      "correct key deletes",
			id:        func(c *domain.Cafe) int64 { return c.ID },
			apiKey:    testAPIKey,
			wantCount: 0,
		},
		{
			name:      "wrong key forbidden",
			id:        func(c *domain.Cafe) int64 { return c.ID },
			apiKey:    "guess",
			wantErr:   domain.ErrForbidden,
			wantCount: 1,
		},
		{
			name:      "empty key forbidden",
			id:        func(c *domain.Cafe) int64 { return c.ID },
			apiKey:    "",
			wantErr:   domain.ErrForbidden,
			wantCount: 1,
		},
		{
			name:      "unknown id not found before key check",
			id:        func(c *domain.Cafe) int64 { return c.ID + 100 },
			apiKey:    "guess",
			wantErr:   domain.ErrNotFound,
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t)
			ctx := context.Background()
			cafe := addCafe(t, svc, "Closing Down", "Dalston")

			err := svc.DeleteCafe(ctx, tt.id(cafe), tt.apiKey)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			n, err := svc.CountCafes(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, n)
		})
	}
}

func TestCafeServiceDeleteCafeTwice(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	cafe := addCafe(t, svc, "Gone", "Camden")

	require.NoError(t, svc.DeleteCafe(ctx, cafe.ID, testAPIKey))
	assert.ErrorIs(t, svc.DeleteCafe(ctx, cafe.ID, testAPIKey), domain.ErrNotFound)
	assert.ErrorIs(t, svc.UpdatePrice(ctx, cafe.ID, strPtr("£2.00")), domain.ErrNotFound)
}

func TestCafeServiceDeleteCafeNoConfiguredKey(t *testing.T) {
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	svc := NewCafeService(store.NewCafeStore(d), "", slog.Default())
	cafe := addCafe(t, svc, "Locked", "Mayfair")

	err = svc.DeleteCafe(context.Background(), cafe.ID, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// failingRepo returns err from every call.
type failingRepo struct {
	err error
}

func (f *failingRepo) Create(context.Context, domain.NewCafe) (*domain.Cafe, error) {
	return nil, f.err
}
func (f *failingRepo) GetByID(context.Context, int64) (*domain.Cafe, error) { return nil, f.err }
func (f *failingRepo) List(context.Context) ([]*domain.Cafe, error)          { return nil, f.err }
func (f *failingRepo) ListByLocation(context.Context, string) ([]*domain.Cafe, error) {
	return nil, f.err
}
func (f *failingRepo) Random(context.Context) (*domain.Cafe, error)      { return nil, f.err }
func (f *failingRepo) Count(context.Context) (int, error)                { return 0, f.err }
func (f *failingRepo) UpdatePrice(context.Context, int64, *string) error { return f.err }
func (f *failingRepo) Delete(context.Context, int64) error               { return f.err }

func TestCafeServicePropagatesStoreErrors(t *testing.T) {
	storeErr := errors.New("disk I/O error")
	svc := NewCafeService(&failingRepo{err: storeErr}, testAPIKey, slog.Default())
	ctx := context.Background()

	_, err := svc.RandomCafe(ctx)
	assert.ErrorIs(t, err, storeErr)
	_, err = svc.ListCafes(ctx)
	assert.ErrorIs(t, err, storeErr)
	_, err = svc.AddCafe(ctx, domain.NewCafe{Name: "x"})
	assert.ErrorIs(t, err, storeErr)
	assert.ErrorIs(t, svc.UpdatePrice(ctx, 1, nil), storeErr)

	err = svc.DeleteCafe(ctx, 1, testAPIKey)
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}
