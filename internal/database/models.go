package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// String-backed column types. The columns are TEXT with CHECK constraints,
// so plain string kinds scan and encode directly through pgx.

type UserRole string

const (
	UserRoleCLIENT UserRole = "CLIENT"
	UserRoleBAKER  UserRole = "BAKER"
)

type OrderStatus string

const (
	OrderStatusPENDING   OrderStatus = "PENDING"
	OrderStatusPREPARING OrderStatus = "PREPARING"
	OrderStatusREADY     OrderStatus = "READY"
	OrderStatusDELIVERED OrderStatus = "DELIVERED"
	OrderStatusCANCELLED OrderStatus = "CANCELLED"
)

type PickupSlot string

const (
	PickupSlotMORNING PickupSlot = "MORNING"
	PickupSlotMIDDAY  PickupSlot = "MIDDAY"
	PickupSlotEVENING PickupSlot = "EVENING"
)

type ProductType string

const (
	ProductTypeBREAD       ProductType = "BREAD"
	ProductTypeSANDWICH    ProductType = "SANDWICH"
	ProductTypePASTRY      ProductType = "PASTRY"
	ProductTypePASTRYSWEET ProductType = "PASTRY_SWEET"
	ProductTypeDRINK       ProductType = "DRINK"
)

type BreadType string

const (
	BreadTypeWHITE     BreadType = "WHITE"
	BreadTypeWHOLEMEAL BreadType = "WHOLEMEAL"
	BreadTypeHALFWHITE BreadType = "HALF_WHITE"
	BreadTypeGRAY      BreadType = "GRAY"
)

type User struct {
	ID             uuid.UUID
	FullName       string
	Email          string
	Phone          pgtype.Text
	HashedPassword string
	Role           UserRole
	Balance        pgtype.Numeric
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Product struct {
	ID          uuid.UUID
	Name        string
	Price       pgtype.Numeric
	PromoPrice  pgtype.Numeric
	ProductType ProductType
	Available   bool
	ImageUrl    pgtype.Text
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Topping struct {
	ID        uuid.UUID
	Name      string
	Price     pgtype.Numeric
	Available bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Order struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	PickupDate  pgtype.Date
	PickupSlot  PickupSlot
	Status      OrderStatus
	Notes       pgtype.Text
	TotalAmount pgtype.Numeric
	ReadyAt     pgtype.Timestamptz
	DeliveredAt pgtype.Timestamptz
	CancelledAt pgtype.Timestamptz
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OrderLine captures product name and unit price at order time. The product
// reference is SET NULL on product deletion; the snapshots survive.
type OrderLine struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   pgtype.UUID
	ProductName string
	Quantity    int32
	UnitPrice   pgtype.Numeric
	BreadType   pgtype.Text
	LineTotal   pgtype.Numeric
}

type OrderLineTopping struct {
	ID          uuid.UUID
	OrderLineID uuid.UUID
	ToppingID   pgtype.UUID
	ToppingName string
	UnitPrice   pgtype.Numeric
}

type Favorite struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ProductID uuid.UUID
	CreatedAt time.Time
}

type ClosedDay struct {
	ID        uuid.UUID
	ClosedOn  pgtype.Date
	CreatedAt time.Time
}

type ContactMessage struct {
	ID        uuid.UUID
	UserID    pgtype.UUID
	Name      string
	Email     string
	Message   string
	CreatedAt time.Time
}

type Complaint struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	OrderID   pgtype.UUID
	Message   string
	Resolved  bool
	CreatedAt time.Time
}
