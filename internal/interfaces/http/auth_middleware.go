package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-sucursales/pkg/jwt"
)

// Locals keys para la identidad del token en Fiber.
const (
	LocalUserID   = "user_id"
	LocalBranchID = "branch_id"
	LocalRole     = "role"
)

// Roles operativos.
const (
	RoleAdmin     = "admin"
	RoleEncargado = "encargado"
	RoleVendedor  = "vendedor"
)

// AuthMiddleware valida el Bearer Token JWT y deja user_id, branch_id y role en c.Locals.
// user_id es quien queda como performed_by en cada movimiento.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fail(c, fiber.StatusUnauthorized, "MISSING_TOKEN", "Authorization header requerido", nil)
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fail(c, fiber.StatusUnauthorized, "INVALID_TOKEN", "formato: Bearer <token>", nil)
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return fail(c, fiber.StatusUnauthorized, "MISSING_TOKEN", "token vacío", nil)
		}
		id, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return fail(c, fiber.StatusUnauthorized, "INVALID_TOKEN", "token inválido o expirado", nil)
		}
		c.Locals(LocalUserID, id.UserID)
		c.Locals(LocalBranchID, id.BranchID)
		c.Locals(LocalRole, id.Role)
		return c.Next()
	}
}

// RequireRole autoriza sólo a los roles indicados. Debe usarse DESPUÉS de AuthMiddleware.
//   - 401 MISSING_ROLE si el token no trae rol.
//   - 403 FORBIDDEN si el rol no está permitido.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return fail(c, fiber.StatusUnauthorized, "MISSING_ROLE", "el token no incluye rol", nil)
		}
		for _, r := range roles {
			if strings.EqualFold(r, role) {
				return c.Next()
			}
		}
		return fail(c, fiber.StatusForbidden, CodeForbidden, "el rol "+role+" no tiene acceso a este recurso", nil)
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	return localString(c, LocalUserID)
}

// GetBranchID devuelve la sucursal asignada al usuario (vacía para casa central).
func GetBranchID(c *fiber.Ctx) string {
	return localString(c, LocalBranchID)
}

// GetRole devuelve el rol del usuario.
func GetRole(c *fiber.Ctx) string {
	return localString(c, LocalRole)
}

func localString(c *fiber.Ctx, key string) string {
	v := c.Locals(key)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
