package model

import "time"

// Client is a restaurant customer.  A client record may be created
// either through registration or lazily at checkout for walk-in/guest
// orders, in which case it is matched by phone number.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – last name (required).
//  FirstName – first name (optional).
//  Email     – unique email address.
//  Phone     – phone number; used to match guest checkouts.
//  CreatedAt – creation timestamp.
type Client struct {
	ID        uint64    // clients.id
	Name      string    // clients.name
	FirstName *string   // clients.first_name (nullable)
	Email     string    // clients.email
	Phone     *string   // clients.phone (nullable)
	CreatedAt time.Time // clients.created_at
}
