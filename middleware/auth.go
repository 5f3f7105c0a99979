package middleware

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"Mason/Constants"
	"Mason/Models"
)

// Role is the closed set of access levels. The set is strictly ordered:
// admin covers foreman covers worker covers guest.
type Role string

const (
	RoleGuest   Role = "guest"
	RoleWorker  Role = "worker"
	RoleForeman Role = "foreman"
	RoleAdmin   Role = "admin"
)

var roleRank = map[Role]int{
	RoleGuest:   0,
	RoleWorker:  1,
	RoleForeman: 2,
	RoleAdmin:   3,
}

// ParseRole maps an arbitrary string to a known role, guest on anything
// unrecognized.
func ParseRole(s string) Role {
	r := Role(s)
	if _, ok := roleRank[r]; ok {
		return r
	}
	return RoleGuest
}

// Satisfies reports whether holding r grants access that requires the given
// role. All call sites go through this relation so the ordering cannot
// drift between endpoints.
func (r Role) Satisfies(required Role) bool {
	return roleRank[r] >= roleRank[required]
}

// ResolveRole picks the primary role from a user's assignment rows: the
// highest-ranked row that is active and unexpired. No qualifying rows
// resolves to guest.
func ResolveRole(rows []Models.RoleAssignment, now time.Time) Role {
	primary := RoleGuest
	for _, row := range rows {
		if !row.Qualifies(now) {
			continue
		}
		if r := ParseRole(row.Role); roleRank[r] > roleRank[primary] {
			primary = r
		}
	}
	return primary
}

// Capabilities is the read-only access summary handed to the dashboard.
type Capabilities struct {
	PrimaryRole      Role `json:"primary_role"`
	IsAdmin          bool `json:"is_admin"`
	IsForeman        bool `json:"is_foreman"`
	IsWorker         bool `json:"is_worker"`
	CanAccessAdmin   bool `json:"can_access_admin"`
	CanAccessForeman bool `json:"can_access_foreman"`
	CanAccessWorker  bool `json:"can_access_worker"`
}

// CapabilitiesFor derives the dashboard gating booleans from a resolved
// role set. The "is" flags reflect held roles; the "can access" flags apply
// the ordering, so an admin can access every area.
func CapabilitiesFor(rows []Models.RoleAssignment, now time.Time) Capabilities {
	primary := ResolveRole(rows, now)
	caps := Capabilities{PrimaryRole: primary}
	for _, row := range rows {
		if !row.Qualifies(now) {
			continue
		}
		switch ParseRole(row.Role) {
		case RoleAdmin:
			caps.IsAdmin = true
		case RoleForeman:
			caps.IsForeman = true
		case RoleWorker:
			caps.IsWorker = true
		}
	}
	caps.CanAccessAdmin = primary.Satisfies(RoleAdmin)
	caps.CanAccessForeman = primary.Satisfies(RoleForeman)
	caps.CanAccessWorker = primary.Satisfies(RoleWorker)
	return caps
}

// SecretKey returns the JWT signing key.
func SecretKey() []byte {
	if key := os.Getenv(Constants.EnvJWTSecret); key != "" {
		return []byte(key)
	}
	return []byte("secret")
}

// Verify gates a route on the required role. The authenticated user and
// their resolved role are stored in locals for handlers. Any failure along
// the way degrades to guest, which only passes when guest is sufficient.
func Verify(required Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cookie := c.Cookies("jwt")
		if cookie == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Not logged in",
			})
		}

		token, err := jwt.ParseWithClaims(cookie, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
			return SecretKey(), nil
		})
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		claims, ok := token.Claims.(*jwt.RegisteredClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid token claims",
			})
		}

		var user Models.User
		if err := Models.DB.Preload("Roles").Where("id = ?", claims.Issuer).First(&user).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "User not found",
			})
		}

		role := ResolveRole(user.Roles, time.Now())

		c.Locals("user", user)
		c.Locals("role", role)

		if !role.Satisfies(required) {
			log.Printf("Access denied: user %d role %s requires %s for %s", user.ID, role, required, c.Path())
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Insufficient permissions to access this resource",
			})
		}

		return c.Next()
	}
}

// CurrentUser returns the authenticated user stored by Verify.
func CurrentUser(c *fiber.Ctx) (Models.User, bool) {
	user, ok := c.Locals("user").(Models.User)
	return user, ok
}

// CurrentRole returns the resolved role stored by Verify, guest when
// missing.
func CurrentRole(c *fiber.Ctx) Role {
	if role, ok := c.Locals("role").(Role); ok {
		return role
	}
	return RoleGuest
}
