package repos

import (
	"errors"

	"github.com/jmoiron/sqlx"

	"bazaar/internal/domain"
)

// ErrInsufficientStock is returned when a decrement would take the stock
// counter below zero. A missing product reports the same outcome, matching
// the workflow's view of "nothing left to sell".
var ErrInsufficientStock = errors.New("insufficient stock")

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Create(p domain.Product) error {
	_, err := r.db.Exec(`
	  INSERT INTO products(product_id,name,price,description,quantity,image_url,seller_id,seller_company,created_at)
	  VALUES(?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, p.ProductID, p.Name, p.Price, p.Description, p.Quantity, p.ImageURL, p.SellerID, p.SellerCompany)
	return err
}

// Update rewrites the seller-editable fields. Ownership is checked by the
// service layer before calling.
func (r *ProductRepo) Update(p domain.Product) error {
	_, err := r.db.Exec(`
	  UPDATE products
	  SET name=?, price=?, description=?, quantity=?, image_url=?, seller_company=?, updated_at=CURRENT_TIMESTAMP
	  WHERE product_id=?
	`, p.Name, p.Price, p.Description, p.Quantity, p.ImageURL, p.SellerCompany, p.ProductID)
	return err
}

func (r *ProductRepo) Delete(productID string) error {
	_, err := r.db.Exec(`DELETE FROM products WHERE product_id=?`, productID)
	return err
}

func (r *ProductRepo) Get(productID string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `
	  SELECT product_id, name, price, description, quantity, image_url,
	         seller_id, COALESCE(seller_company,'') AS seller_company,
	         created_at, COALESCE(updated_at,'') AS updated_at
	  FROM products
	  WHERE product_id = ?
	`, productID)
	return p, err
}

func (r *ProductRepo) ListAll() ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.Select(&out, `
	  SELECT product_id, name, price, description, quantity, image_url,
	         seller_id, COALESCE(seller_company,'') AS seller_company,
	         created_at, COALESCE(updated_at,'') AS updated_at
	  FROM products
	  ORDER BY created_at DESC
	`)
	return out, err
}

func (r *ProductRepo) ListBySeller(sellerID string) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.Select(&out, `
	  SELECT product_id, name, price, description, quantity, image_url,
	         seller_id, COALESCE(seller_company,'') AS seller_company,
	         created_at, COALESCE(updated_at,'') AS updated_at
	  FROM products
	  WHERE seller_id = ?
	  ORDER BY created_at DESC
	`, sellerID)
	return out, err
}

func (r *ProductRepo) Quantity(productID string) (int, error) {
	var qty int
	err := r.db.Get(&qty, `SELECT quantity FROM products WHERE product_id = ?`, productID)
	if err != nil {
		return 0, err
	}
	return qty, nil
}

// DecrementQuantity subtracts "by" units in a single guarded statement, so
// concurrent purchases cannot lose an update. Returns the quantity left after
// the decrement, or ErrInsufficientStock when the guard rejects it.
func (r *ProductRepo) DecrementQuantity(productID string, by int) (int, error) {
	res, err := r.db.Exec(`
	  UPDATE products
	  SET quantity = quantity - ?, updated_at = CURRENT_TIMESTAMP
	  WHERE product_id = ? AND quantity >= ?
	`, by, productID, by)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return 0, ErrInsufficientStock
	}
	return r.Quantity(productID)
}
