package domain

import "strings"

// TenantClass es la categoría de cuenta; cada una vive en su propio pool del IdP.
type TenantClass string

const (
	Customer TenantClass = "customer"
	Staff    TenantClass = "staff"
	Admin    TenantClass = "admin"
)

// TenantClasses en orden estable (customer, staff, admin).
func TenantClasses() []TenantClass {
	return []TenantClass{Customer, Staff, Admin}
}

// ParseTenantClass acepta los nombres canónicos y los alias heredados
// ("client" -> customer, "internal" -> staff).
func ParseTenantClass(s string) (TenantClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "customer", "client":
		return Customer, nil
	case "staff", "internal":
		return Staff, nil
	case "admin":
		return Admin, nil
	case "":
		return "", Validation("tenant class is required")
	default:
		return "", Validation("unknown tenant class %q", s)
	}
}

func (c TenantClass) Valid() bool {
	return c == Customer || c == Staff || c == Admin
}

// HasLinkedProfiles: solo customer tiene documentos de perfil en el store.
func (c TenantClass) HasLinkedProfiles() bool {
	return c == Customer
}

// LoginPath es la ruta del frontend donde inicia sesión cada clase.
func (c TenantClass) LoginPath() string {
	switch c {
	case Customer:
		return "/client"
	case Staff:
		return "/internal"
	case Admin:
		return "/admin"
	}
	return "/"
}

func (c TenantClass) String() string { return string(c) }
