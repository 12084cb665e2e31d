package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/inventario-sucursales/internal/domain"
)

// Códigos SQLSTATE relevantes.
const (
	sqlForeignKeyViolation  = "23503"
	sqlUniqueViolation      = "23505"
	sqlCheckViolation       = "23514"
	sqlSerializationFailure = "40001"
	sqlDeadlockDetected     = "40P01"
	sqlLockNotAvailable     = "55P03"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == sqlUniqueViolation
}

// wrapErr agrega contexto y traduce los fallos de concurrencia a domain.ErrConcurrencyConflict
// para que el caso de uso reintente con lectura fresca.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	switch pgCode(err) {
	case sqlSerializationFailure, sqlDeadlockDetected, sqlLockNotAvailable:
		return fmt.Errorf("%s: %w: %v", op, domain.ErrConcurrencyConflict, err)
	case sqlForeignKeyViolation:
		// Sucursal o producto inexistente que no se detectó antes de escribir.
		var pgErr *pgconn.PgError
		errors.As(err, &pgErr)
		return fmt.Errorf("%s: %w", op, &domain.NotFoundError{Resource: "referencia", ID: pgErr.ConstraintName})
	case sqlCheckViolation:
		// Respaldo del CHECK (quantity >= 0): la regla ya se valida antes de escribir.
		return fmt.Errorf("%s: %w: %v", op, domain.ErrInsufficientStock, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
