package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"bazaar/internal/domain"
	"bazaar/internal/notify"
	"bazaar/internal/repos"
)

var ErrNotOwner = errors.New("product belongs to another seller")

// CatalogService covers seller-side product management and buyer-side
// browsing.
type CatalogService struct {
	Prods     *repos.ProductRepo
	Gate      *notify.Gate
	Threshold int
}

func NewCatalogService(prods *repos.ProductRepo, gate *notify.Gate, threshold int) *CatalogService {
	return &CatalogService{Prods: prods, Gate: gate, Threshold: threshold}
}

// Add creates a listing owned by the seller and returns it with its assigned
// id.
func (s *CatalogService) Add(seller *domain.User, p domain.Product) (domain.Product, error) {
	p.ProductID = uuid.NewString()
	p.SellerID = seller.ID
	p.SellerCompany = seller.CompanyName
	if err := s.Prods.Create(p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// Update rewrites the listing's editable fields. Only the owning seller may
// update; a post-update stock inside the low band alerts through the gate.
func (s *CatalogService) Update(ctx context.Context, actorID string, p domain.Product) error {
	existing, err := s.Prods.Get(p.ProductID)
	if err != nil {
		return err
	}
	if existing.SellerID != actorID {
		return ErrNotOwner
	}
	p.SellerID = existing.SellerID
	if err := s.Prods.Update(p); err != nil {
		return err
	}
	if p.Quantity > 0 && p.Quantity <= s.Threshold {
		s.Gate.Notify(ctx, p)
	}
	return nil
}

func (s *CatalogService) Delete(actorID, productID string) error {
	existing, err := s.Prods.Get(productID)
	if err != nil {
		return err
	}
	if existing.SellerID != actorID {
		return ErrNotOwner
	}
	return s.Prods.Delete(productID)
}

func (s *CatalogService) Get(productID string) (domain.Product, error) {
	return s.Prods.Get(productID)
}

func (s *CatalogService) ListAll() ([]domain.Product, error) {
	return s.Prods.ListAll()
}

// ListBySeller returns the seller's own listings and runs the low-stock batch
// scan over them, mirroring the alert-on-load behavior sellers expect.
func (s *CatalogService) ListBySeller(ctx context.Context, sellerID string) ([]domain.Product, error) {
	products, err := s.Prods.ListBySeller(sellerID)
	if err != nil {
		return nil, err
	}
	s.Gate.BatchCheck(ctx, sellerID, products)
	return products, nil
}
