package services

import (
	"errors"

	"bazaar/internal/domain"
	"bazaar/internal/repos"
)

var (
	ErrAlreadyReviewed = errors.New("product already reviewed by this user")
	ErrNotPurchased    = errors.New("only buyers of the product may review it")
)

type ReviewService struct {
	Reviews   *repos.ReviewRepo
	Purchases *repos.PurchaseRepo
}

func NewReviewService(reviews *repos.ReviewRepo, purchases *repos.PurchaseRepo) *ReviewService {
	return &ReviewService{Reviews: reviews, Purchases: purchases}
}

// Add inserts the user's review for a product they have purchased. The
// pre-check gives a friendly early answer; the unique index is what actually
// holds the one-review-per-user line under races.
func (s *ReviewService) Add(user *domain.User, productID string, rating float64, comment string) error {
	purchased, err := s.Purchases.HasPurchased(user.ID, productID)
	if err != nil {
		return err
	}
	if !purchased {
		return ErrNotPurchased
	}

	reviewed, err := s.Reviews.Exists(productID, user.ID)
	if err != nil {
		return err
	}
	if reviewed {
		return ErrAlreadyReviewed
	}

	if rating < 1 {
		rating = 1
	}
	if rating > 5 {
		rating = 5
	}

	rv := domain.Review{
		ProductID: productID,
		Username:  user.Name,
		Rating:    rating,
		Comment:   comment,
		Date:      currentDate(),
	}
	if err := s.Reviews.Insert(user.ID, rv); err != nil {
		if errors.Is(err, repos.ErrDuplicateReview) {
			return ErrAlreadyReviewed
		}
		return err
	}
	return nil
}

func (s *ReviewService) HasReviewed(userID, productID string) (bool, error) {
	return s.Reviews.Exists(productID, userID)
}

func (s *ReviewService) ListForProduct(productID string) ([]domain.Review, error) {
	return s.Reviews.ListByProduct(productID)
}
