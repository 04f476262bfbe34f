package config

// AccessLevel describes who may call a route.
type AccessLevel int

const (
	AccessPublic        AccessLevel = iota // No authentication
	AccessAuthenticated                    // Any approved user
	AccessStaff                            // Admin or warehouse
	AccessWarehouse                        // Warehouse (admin included)
	AccessAdmin                            // Admin only
)

// RouteAccess maps route names (as registered on the router) to the access
// level they require.
var RouteAccess = map[string]AccessLevel{
	// Auth - Public
	"auth.register": AccessPublic,
	"auth.login":    AccessPublic,
	"health":        AccessPublic,

	// Catalog - Public reads, admin writes
	"categories.list":   AccessPublic,
	"categories.create": AccessAdmin,
	"items.list":        AccessPublic,
	"items.get":         AccessPublic,
	"items.create":      AccessAdmin,
	"items.update":      AccessAdmin,
	"items.delete":      AccessAdmin,
	"items.stock":       AccessStaff,

	// Users
	"users.me":     AccessAuthenticated,
	"users.list":   AccessAdmin,
	"users.verify": AccessAdmin,

	// Transactions - members act on their own, staff on all
	"transactions.create":         AccessAuthenticated,
	"transactions.list":           AccessAuthenticated,
	"transactions.get":            AccessAuthenticated,
	"transactions.status":         AccessStaff,
	"transactions.payments":       AccessAuthenticated,
	"transactions.payments.list":  AccessAuthenticated,
	"transactions.return_request": AccessAuthenticated,
	"transactions.handover":       AccessWarehouse,
	"transactions.inspection":     AccessWarehouse,
	"transactions.cancel":         AccessAuthenticated,
	"transactions.delete":         AccessAdmin,

	// Promotions
	"promotions.validate": AccessPublic,
	"promotions.get":      AccessPublic,
	"promotions.list":     AccessAdmin,
	"promotions.create":   AccessAdmin,
	"promotions.update":   AccessAdmin,
}

// GetAccessLevel returns the access level for a route name.
func GetAccessLevel(route string) AccessLevel {
	if level, exists := RouteAccess[route]; exists {
		return level
	}
	// Unknown routes get the highest level
	return AccessAdmin
}
