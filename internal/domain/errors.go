package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas). Usar con errors.Is.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrAlreadyInState    = errors.New("la transacción ya está en ese estado")
	ErrCommitFailure     = errors.New("no se pudo confirmar la operación")
)

// ValidationError detalla una entrada mal formada. Se rechaza antes de tocar estado.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("entrada inválida: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid construye un ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError indica el recurso (transaction, item, location) que no existe.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s no encontrado: %s", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound construye un NotFoundError.
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// Operaciones que pueden violar el invariante de no negatividad.
const (
	OpApply = "apply"
	OpUndo  = "undo"
	OpRedo  = "redo"
)

// InsufficientStockError detalla un faltante: ítem, ubicación, disponible y solicitado.
type InsufficientStockError struct {
	ItemID     string
	LocationID string
	Available  int64
	Requested  int64
	Operation  string // apply, undo, redo
	// Role indica el papel de la ubicación en la transacción: "source" o "destination".
	Role string
}

func (e *InsufficientStockError) Error() string {
	prefix := "stock insuficiente"
	switch e.Operation {
	case OpUndo:
		prefix = "stock insuficiente para deshacer"
	case OpRedo:
		prefix = "stock insuficiente para rehacer"
	}
	where := "en la ubicación"
	switch e.Role {
	case "source":
		where = "en la ubicación de origen"
	case "destination":
		where = "en la ubicación de destino"
	}
	return fmt.Sprintf("%s %s %s (ítem %s): disponible %d, solicitado %d",
		prefix, where, e.LocationID, e.ItemID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// AlreadyInStateError transición ilegal según el estado actual de la transacción.
type AlreadyInStateError struct {
	TransactionID string
	Current       string
	Requested     string
}

func (e *AlreadyInStateError) Error() string {
	return fmt.Sprintf("transacción %s en estado %s no admite pasar a %s",
		e.TransactionID, e.Current, e.Requested)
}

func (e *AlreadyInStateError) Unwrap() error { return ErrAlreadyInState }

// CommitFailure envuelve un error de la escritura atómica. Nunca deja efecto parcial.
func CommitFailure(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrCommitFailure, err)
}

// IsRetryable indica si el llamador puede reintentar (ningún efecto fue persistido).
func IsRetryable(err error) bool {
	return errors.Is(err, ErrCommitFailure)
}

// IsClientError indica errores causados por la entrada o el estado visto por el cliente.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrAlreadyInState) ||
		errors.Is(err, ErrNotFound)
}
