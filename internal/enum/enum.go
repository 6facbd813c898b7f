package enum

// ── Group A: State machines (CHECK constrained in DB) ──

const (
	OrderStatusPending   = "PENDING"
	OrderStatusPreparing = "PREPARING"
	OrderStatusReady     = "READY"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCancelled = "CANCELLED"
)

// ── Group B: Fixed vocabularies (CHECK constrained in DB) ──

const (
	UserRoleClient = "CLIENT"
	UserRoleBaker  = "BAKER"
)

const (
	PickupSlotMorning = "MORNING"
	PickupSlotMidday  = "MIDDAY"
	PickupSlotEvening = "EVENING"
)

const (
	BreadTypeWhite     = "WHITE"
	BreadTypeWholemeal = "WHOLEMEAL"
	BreadTypeHalfWhite = "HALF_WHITE"
	BreadTypeGray      = "GRAY"
)

const (
	ProductTypeBread       = "BREAD"
	ProductTypeSandwich    = "SANDWICH"
	ProductTypePastry      = "PASTRY"
	ProductTypePastrySweet = "PASTRY_SWEET"
	ProductTypeDrink       = "DRINK"
)
