package domain

// Product is the authoritative listing document. Quantity is the live stock
// count; it is mutated by the owning seller and by the purchase workflow.
type Product struct {
	ProductID     string  `db:"product_id" json:"productId"`
	Name          string  `db:"name" json:"name"`
	Price         float64 `db:"price" json:"price"`
	Description   string  `db:"description" json:"description"`
	Quantity      int     `db:"quantity" json:"quantity"`
	ImageURL      string  `db:"image_url" json:"imageUrl"`
	SellerID      string  `db:"seller_id" json:"sellerId"`
	SellerCompany string  `db:"seller_company" json:"sellerCompany"`
	CreatedAt     string  `db:"created_at" json:"createdAt"`
	UpdatedAt     string  `db:"updated_at" json:"updatedAt,omitempty"`
}

// CartItem is a buyer-local projection of a product. MaxQuantity is the stock
// snapshot taken when the item was added or last increased; it may be stale.
type CartItem struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	ImageURL    string  `json:"imageUrl"`
	MaxQuantity int     `json:"maxQuantity"`
}

// Purchase is an immutable history record, one per successful checkout item.
type Purchase struct {
	ProductID   string  `db:"product_id" json:"productId"`
	ProductName string  `db:"product_name" json:"productName"`
	Price       float64 `db:"price" json:"price"`
	Quantity    int     `db:"quantity" json:"quantity"`
	Date        string  `db:"date" json:"date"` // YYYY-MM-DD
}

// Review holds a buyer's rating for a product. At most one per
// (product, user) pair, enforced by the storage layer.
type Review struct {
	ProductID string  `db:"product_id" json:"productId"`
	Username  string  `db:"username" json:"username"`
	Rating    float64 `db:"rating" json:"rating"`
	Comment   string  `db:"comment" json:"comment"`
	Date      string  `db:"date" json:"date"` // YYYY-MM-DD
}
