package testutil

import (
	"time"

	"github.com/roach88/fieldquery/internal/schema"
)

// User is the typed fixture entity backed by us_user.
type User struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name,omitempty"`
	Surname   *string    `json:"surname,omitempty"`
	Age       *int64     `json:"age,omitempty"`
	Address   *string    `json:"address,omitempty"`
	Country   *string    `json:"country,omitempty"`
	Type      *string    `json:"type,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	Roles     []*Role    `json:"roles"`
	Tickets   []*Ticket  `json:"tickets"`
}

// Role is the typed fixture entity backed by us_role.
type Role struct {
	ID        int64      `json:"id"`
	Code      string     `json:"code,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	Users     []*User    `json:"users"`
}

// Ticket is the typed fixture entity backed by us_ticket.
type Ticket struct {
	ID     int64   `json:"id"`
	Title  string  `json:"title,omitempty"`
	Status *string `json:"status,omitempty"`
	User   *User   `json:"user"`
}

// UserBinding maps User attributes to struct fields.
func UserBinding() schema.Binding {
	return schema.Binding{
		New: func() any { return &User{} },
		Accessors: map[string]schema.Accessor{
			"id":        schema.Field(func(u *User) int64 { return u.ID }, func(u *User, v int64) { u.ID = v }),
			"name":      schema.Field(func(u *User) string { return u.Name }, func(u *User, v string) { u.Name = v }),
			"surname":   schema.Nullable(func(u *User) *string { return u.Surname }, func(u *User, v *string) { u.Surname = v }),
			"age":       schema.Nullable(func(u *User) *int64 { return u.Age }, func(u *User, v *int64) { u.Age = v }),
			"address":   schema.Nullable(func(u *User) *string { return u.Address }, func(u *User, v *string) { u.Address = v }),
			"country":   schema.Nullable(func(u *User) *string { return u.Country }, func(u *User, v *string) { u.Country = v }),
			"type":      schema.Nullable(func(u *User) *string { return u.Type }, func(u *User, v *string) { u.Type = v }),
			"createdAt": schema.Nullable(func(u *User) *time.Time { return u.CreatedAt }, func(u *User, v *time.Time) { u.CreatedAt = v }),
			"roles":     schema.ToMany(func(u *User) []*Role { return u.Roles }, func(u *User, v []*Role) { u.Roles = v }),
			"tickets":   schema.ToMany(func(u *User) []*Ticket { return u.Tickets }, func(u *User, v []*Ticket) { u.Tickets = v }),
		},
	}
}

// RoleBinding maps Role attributes to struct fields.
func RoleBinding() schema.Binding {
	return schema.Binding{
		New: func() any { return &Role{} },
		Accessors: map[string]schema.Accessor{
			"id":        schema.Field(func(r *Role) int64 { return r.ID }, func(r *Role, v int64) { r.ID = v }),
			"code":      schema.Field(func(r *Role) string { return r.Code }, func(r *Role, v string) { r.Code = v }),
			"createdAt": schema.Nullable(func(r *Role) *time.Time { return r.CreatedAt }, func(r *Role, v *time.Time) { r.CreatedAt = v }),
			"users":     schema.ToMany(func(r *Role) []*User { return r.Users }, func(r *Role, v []*User) { r.Users = v }),
		},
	}
}

// TicketBinding maps Ticket attributes to struct fields.
func TicketBinding() schema.Binding {
	return schema.Binding{
		New: func() any { return &Ticket{} },
		Accessors: map[string]schema.Accessor{
			"id":     schema.Field(func(t *Ticket) int64 { return t.ID }, func(t *Ticket, v int64) { t.ID = v }),
			"title":  schema.Field(func(t *Ticket) string { return t.Title }, func(t *Ticket, v string) { t.Title = v }),
			"status": schema.Nullable(func(t *Ticket) *string { return t.Status }, func(t *Ticket, v *string) { t.Status = v }),
			"user":   schema.ToOne(func(t *Ticket) *User { return t.User }, func(t *Ticket, v *User) { t.User = v }),
		},
	}
}

// Bindings returns the catalog options binding every fixture entity.
func Bindings() []schema.Option {
	return []schema.Option{
		schema.WithBinding("User", UserBinding()),
		schema.WithBinding("Role", RoleBinding()),
		schema.WithBinding("Ticket", TicketBinding()),
	}
}
