package operator

type Role string

const (
	RoleManager Role = "manager"
	RoleCashier Role = "cashier"
)

type Operator struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}
