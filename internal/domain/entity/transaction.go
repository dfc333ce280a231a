package entity

import "time"

// TransactionKind tipo de mutación de stock.
type TransactionKind string

// Tipos de transacción.
const (
	KindAdd    TransactionKind = "ADD"    // entrada a una ubicación destino
	KindRemove TransactionKind = "REMOVE" // salida desde una ubicación origen
	KindMove   TransactionKind = "MOVE"   // traslado origen -> destino
)

// Valid indica si el tipo es conocido.
func (k TransactionKind) Valid() bool {
	switch k {
	case KindAdd, KindRemove, KindMove:
		return true
	}
	return false
}

// TransactionStatus estado del ciclo de vida de una transacción.
type TransactionStatus string

// Estados. No hay estado terminal.
const (
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusUndone    TransactionStatus = "UNDONE"
	StatusRedone    TransactionStatus = "REDONE"
)

// Valid indica si el estado es conocido.
func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusCompleted, StatusUndone, StatusRedone:
		return true
	}
	return false
}

// Applied indica si el efecto de la transacción está vigente en el stock.
func (s TransactionStatus) Applied() bool {
	return s == StatusCompleted || s == StatusRedone
}

// CanTransition reporta si el paso s -> to es legal:
// COMPLETED->UNDONE, REDONE->UNDONE y UNDONE->REDONE.
func (s TransactionStatus) CanTransition(to TransactionStatus) bool {
	switch to {
	case StatusUndone:
		return s.Applied()
	case StatusRedone:
		return s == StatusUndone
	}
	return false
}

// Transaction registro del log de mutaciones. Kind, Quantity, ItemID y las ubicaciones
// quedan fijos al crearse; solo cambian Status y los metadatos de undo/redo.
type Transaction struct {
	ID                    string
	Kind                  TransactionKind
	Quantity              int64
	ItemID                string
	SourceLocationID      *string // REMOVE y MOVE
	DestinationLocationID *string // ADD y MOVE
	Status                TransactionStatus
	CreatedAt             time.Time
	CreatedBy             string
	UndoneAt              *time.Time
	UndoneBy              *string
	RedoneAt              *time.Time
	RedoneBy              *string
}

// Source devuelve la ubicación origen o "" si no aplica.
func (t *Transaction) Source() string {
	if t.SourceLocationID == nil {
		return ""
	}
	return *t.SourceLocationID
}

// Destination devuelve la ubicación destino o "" si no aplica.
func (t *Transaction) Destination() string {
	if t.DestinationLocationID == nil {
		return ""
	}
	return *t.DestinationLocationID
}

// MarkUndone pasa a UNDONE registrando fecha y actor; limpia los metadatos de redo.
func (t *Transaction) MarkUndone(at time.Time, actor string) {
	t.Status = StatusUndone
	t.UndoneAt = &at
	t.UndoneBy = &actor
	t.RedoneAt = nil
	t.RedoneBy = nil
}

// MarkRedone pasa a REDONE registrando fecha y actor; limpia los metadatos de undo.
func (t *Transaction) MarkRedone(at time.Time, actor string) {
	t.Status = StatusRedone
	t.RedoneAt = &at
	t.RedoneBy = &actor
	t.UndoneAt = nil
	t.UndoneBy = nil
}

// Clone copia profunda (los punteros no se comparten).
func (t *Transaction) Clone() *Transaction {
	c := *t
	c.SourceLocationID = cloneString(t.SourceLocationID)
	c.DestinationLocationID = cloneString(t.DestinationLocationID)
	c.UndoneBy = cloneString(t.UndoneBy)
	c.RedoneBy = cloneString(t.RedoneBy)
	c.UndoneAt = cloneTime(t.UndoneAt)
	c.RedoneAt = cloneTime(t.RedoneAt)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
