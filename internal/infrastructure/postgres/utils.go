package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Códigos SQLSTATE relevantes.
const (
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
	codeForeignKeyViolation  = "23503"
	codeNumericOutOfRange    = "22003"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
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
	return pgCode(err) == codeUniqueViolation
}

// isCheckViolation verifica si un error viola un CHECK (ej. quantity >= 0).
func isCheckViolation(err error) bool {
	return pgCode(err) == codeCheckViolation
}

// isForeignKeyViolation referencia a ítem o ubicación inexistente.
func isForeignKeyViolation(err error) bool {
	return pgCode(err) == codeForeignKeyViolation
}

// isOutOfRange cantidad fuera del rango de bigint.
func isOutOfRange(err error) bool {
	return pgCode(err) == codeNumericOutOfRange
}

// isRetryable conflicto de concurrencia detectado por PostgreSQL; la tx se revierte entera.
func isRetryable(err error) bool {
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected:
		return true
	}
	return false
}
