package model

// Account roles stored in the users.role column and carried in the
// JWT "role" claim.  CUSTOMER accounts link to a client record;
// STAFF accounts operate the scanner and the menu back office.
const (
	RoleCustomer = "CUSTOMER"
	RoleStaff    = "STAFF"
)
