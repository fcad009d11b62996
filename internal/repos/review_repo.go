package repos

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"bazaar/internal/domain"
)

// ErrDuplicateReview is returned when the unique (product_id, user_id) index
// rejects a second review from the same user.
var ErrDuplicateReview = errors.New("user already reviewed this product")

type ReviewRepo struct{ db *sqlx.DB }

func NewReviewRepo(db *sqlx.DB) *ReviewRepo { return &ReviewRepo{db: db} }

func (r *ReviewRepo) Insert(userID string, rv domain.Review) error {
	_, err := r.db.Exec(`
	  INSERT INTO reviews(id,product_id,user_id,username,rating,comment,date,created_at)
	  VALUES(?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, uuid.NewString(), rv.ProductID, userID, rv.Username, rv.Rating, rv.Comment, rv.Date)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint") {
		return ErrDuplicateReview
	}
	return err
}

func (r *ReviewRepo) Exists(productID, userID string) (bool, error) {
	var n int
	err := r.db.Get(&n, `
	  SELECT COUNT(*) FROM reviews WHERE product_id = ? AND user_id = ? LIMIT 1
	`, productID, userID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *ReviewRepo) ListByProduct(productID string) ([]domain.Review, error) {
	var out []domain.Review
	err := r.db.Select(&out, `
	  SELECT product_id, username, rating, COALESCE(comment,'') AS comment, date
	  FROM reviews
	  WHERE product_id = ?
	  ORDER BY date DESC, datetime(created_at) DESC
	`, productID)
	return out, err
}
