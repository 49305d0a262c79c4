package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/Vijayapardhu/risbow-backend-sub001/internal/domain/enums"
	pgrepo "github.com/Vijayapardhu/risbow-backend-sub001/internal/repo/postgres"
)

// Adapter is the per-content-type capability the moderation pipeline mutates
// live content through. Remove and Hide carry the type's own semantics;
// a type with no hide behavior implements Hide as a no-op.
type Adapter interface {
	Exists(ctx context.Context, contentID int64) (bool, error)
	ResolveOwner(ctx context.Context, contentID int64) (*int64, error)
	Remove(ctx context.Context, contentID int64) error
	Hide(ctx context.Context, contentID int64) error
}

// Registry selects the adapter for a content type.
type Registry struct {
	adapters map[enums.ContentType]Adapter
}

func NewRegistry(
	products *pgrepo.ProductRepo,
	images *pgrepo.ProductImageRepo,
	reviews *pgrepo.ReviewRepo,
	vendors *pgrepo.VendorRepo,
	banners *pgrepo.BannerRepo,
) *Registry {
	return &Registry{
		adapters: map[enums.ContentType]Adapter{
			enums.ContentTypeProduct:       &productAdapter{repo: products},
			enums.ContentTypeProductImage:  &productImageAdapter{repo: images},
			enums.ContentTypeReview:        &reviewAdapter{repo: reviews},
			enums.ContentTypeVendorProfile: &vendorProfileAdapter{repo: vendors},
			enums.ContentTypeBanner:        &bannerAdapter{repo: banners},
		},
	}
}

func (r *Registry) AdapterFor(contentType enums.ContentType) (Adapter, bool) {
	if r == nil {
		return nil, false
	}
	adapter, ok := r.adapters[contentType]
	return adapter, ok
}

type productAdapter struct {
	repo *pgrepo.ProductRepo
}

func (a *productAdapter) Exists(ctx context.Context, id int64) (bool, error) {
	return a.repo.Exists(ctx, id)
}

func (a *productAdapter) ResolveOwner(ctx context.Context, id int64) (*int64, error) {
	vendorID, err := a.repo.OwnerID(ctx, id)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProductNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vendorID, nil
}

func (a *productAdapter) Remove(ctx context.Context, id int64) error {
	return a.repo.Deactivate(ctx, id)
}

func (a *productAdapter) Hide(ctx context.Context, id int64) error {
	return a.repo.Deactivate(ctx, id)
}

type productImageAdapter struct {
	repo *pgrepo.ProductImageRepo
}

func (a *productImageAdapter) Exists(ctx context.Context, id int64) (bool, error) {
	return a.repo.Exists(ctx, id)
}

func (a *productImageAdapter) ResolveOwner(ctx context.Context, id int64) (*int64, error) {
	vendorID, err := a.repo.OwnerID(ctx, id)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProductImageNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vendorID, nil
}

func (a *productImageAdapter) Remove(ctx context.Context, id int64) error {
	return a.repo.Deactivate(ctx, id)
}

func (a *productImageAdapter) Hide(ctx context.Context, id int64) error {
	// Hiding applies to products and vendor profiles only.
	return nil
}

type reviewAdapter struct {
	repo *pgrepo.ReviewRepo
}

func (a *reviewAdapter) Exists(ctx context.Context, id int64) (bool, error) {
	return a.repo.Exists(ctx, id)
}

func (a *reviewAdapter) ResolveOwner(ctx context.Context, id int64) (*int64, error) {
	vendorID, err := a.repo.OwnerID(ctx, id)
	if err != nil {
		if errors.Is(err, pgrepo.ErrReviewNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vendorID, nil
}

func (a *reviewAdapter) Remove(ctx context.Context, id int64) error {
	return a.repo.Delete(ctx, id)
}

func (a *reviewAdapter) Hide(ctx context.Context, id int64) error {
	return nil
}

type vendorProfileAdapter struct {
	repo *pgrepo.VendorRepo
}

func (a *vendorProfileAdapter) Exists(ctx context.Context, id int64) (bool, error) {
	return a.repo.Exists(ctx, id)
}

// ResolveOwner of a vendor profile is the vendor itself.
func (a *vendorProfileAdapter) ResolveOwner(_ context.Context, id int64) (*int64, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid vendor id")
	}
	return &id, nil
}

func (a *vendorProfileAdapter) Remove(ctx context.Context, id int64) error {
	return a.repo.SetActive(ctx, id, false)
}

func (a *vendorProfileAdapter) Hide(ctx context.Context, id int64) error {
	return a.repo.SetActive(ctx, id, false)
}

type bannerAdapter struct {
	repo *pgrepo.BannerRepo
}

func (a *bannerAdapter) Exists(ctx context.Context, id int64) (bool, error) {
	return a.repo.Exists(ctx, id)
}

func (a *bannerAdapter) ResolveOwner(ctx context.Context, id int64) (*int64, error) {
	vendorID, err := a.repo.OwnerID(ctx, id)
	if err != nil {
		if errors.Is(err, pgrepo.ErrBannerNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vendorID, nil
}

func (a *bannerAdapter) Remove(ctx context.Context, id int64) error {
	return a.repo.MarkRejected(ctx, id)
}

func (a *bannerAdapter) Hide(ctx context.Context, id int64) error {
	return nil
}
