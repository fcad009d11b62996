package repos

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"bazaar/internal/domain"
)

type PurchaseRepo struct{ db *sqlx.DB }

func NewPurchaseRepo(db *sqlx.DB) *PurchaseRepo { return &PurchaseRepo{db: db} }

// Append writes one immutable purchase record for the user.
func (r *PurchaseRepo) Append(userID string, p domain.Purchase) error {
	_, err := r.db.Exec(`
	  INSERT INTO purchases(id,product_id,product_name,price,quantity,date,user_id,created_at)
	  VALUES(?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, uuid.NewString(), p.ProductID, p.ProductName, p.Price, p.Quantity, p.Date, userID)
	return err
}

// ListByUser returns the user's history, newest date first. Dates are
// YYYY-MM-DD so lexical order is chronological order.
func (r *PurchaseRepo) ListByUser(userID string) ([]domain.Purchase, error) {
	var out []domain.Purchase
	err := r.db.Select(&out, `
	  SELECT product_id, product_name, price, quantity, date
	  FROM purchases
	  WHERE user_id = ?
	  ORDER BY date DESC, datetime(created_at) DESC
	`, userID)
	return out, err
}

func (r *PurchaseRepo) HasPurchased(userID, productID string) (bool, error) {
	var n int
	err := r.db.Get(&n, `
	  SELECT COUNT(*) FROM purchases WHERE user_id = ? AND product_id = ? LIMIT 1
	`, userID, productID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
