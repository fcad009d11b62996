package domain

const (
	UserTypeBuyer  = "buyer"
	UserTypeSeller = "seller"
)

type User struct {
	ID          string `db:"id" json:"id"`
	Email       string `db:"email" json:"email"`
	Name        string `db:"name" json:"name"`
	Hash        string `db:"password_hash" json:"-"`
	Age         int    `db:"age" json:"age"`
	UserType    string `db:"user_type" json:"userType"` // buyer | seller
	CompanyName string `db:"company_name" json:"companyName,omitempty"`
}

func (u *User) IsSeller() bool { return u.UserType == UserTypeSeller }
