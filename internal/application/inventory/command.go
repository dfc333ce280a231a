package inventory

import (
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Command mutación de stock. Cada variante lleva exactamente los campos que su tipo requiere.
type Command interface {
	Kind() entity.TransactionKind
	Item() string
	Validate() error
	isCommand()
}

// AddCommand entrada de Quantity unidades en DestinationID.
type AddCommand struct {
	ItemID        string
	DestinationID string
	Quantity      int64
}

// RemoveCommand salida de Quantity unidades desde SourceID.
type RemoveCommand struct {
	ItemID   string
	SourceID string
	Quantity int64
}

// MoveCommand traslado de Quantity unidades de SourceID a DestinationID.
type MoveCommand struct {
	ItemID        string
	SourceID      string
	DestinationID string
	Quantity      int64
}

func (AddCommand) Kind() entity.TransactionKind    { return entity.KindAdd }
func (RemoveCommand) Kind() entity.TransactionKind { return entity.KindRemove }
func (MoveCommand) Kind() entity.TransactionKind   { return entity.KindMove }

func (c AddCommand) Item() string    { return c.ItemID }
func (c RemoveCommand) Item() string { return c.ItemID }
func (c MoveCommand) Item() string   { return c.ItemID }

func (AddCommand) isCommand()    {}
func (RemoveCommand) isCommand() {}
func (MoveCommand) isCommand()   {}

func (c AddCommand) Validate() error {
	if c.ItemID == "" {
		return domain.Invalid("item_id", "requerido")
	}
	if c.DestinationID == "" {
		return domain.Invalid("destination_location_id", "requerido para ADD")
	}
	return validQuantity(c.Quantity)
}

func (c RemoveCommand) Validate() error {
	if c.ItemID == "" {
		return domain.Invalid("item_id", "requerido")
	}
	if c.SourceID == "" {
		return domain.Invalid("source_location_id", "requerido para REMOVE")
	}
	return validQuantity(c.Quantity)
}

func (c MoveCommand) Validate() error {
	if c.ItemID == "" {
		return domain.Invalid("item_id", "requerido")
	}
	if c.SourceID == "" {
		return domain.Invalid("source_location_id", "requerido para MOVE")
	}
	if c.DestinationID == "" {
		return domain.Invalid("destination_location_id", "requerido para MOVE")
	}
	if c.SourceID == c.DestinationID {
		return domain.Invalid("destination_location_id", "debe ser distinto del origen")
	}
	return validQuantity(c.Quantity)
}

func validQuantity(q int64) error {
	if q <= 0 {
		return domain.Invalid("quantity", "debe ser mayor que cero")
	}
	return nil
}

// Papel de una ubicación dentro de la transacción.
const (
	roleSource      = "source"
	roleDestination = "destination"
)

// stockDelta cambio sobre una clave de stock.
type stockDelta struct {
	key   entity.StockKey
	delta int64
	role  string
}

// forwardDeltas es el único despachador por tipo: traduce el comando a deltas de stock.
func forwardDeltas(cmd Command) ([]stockDelta, error) {
	switch c := cmd.(type) {
	case AddCommand:
		return []stockDelta{
			{key: entity.StockKey{ItemID: c.ItemID, LocationID: c.DestinationID}, delta: c.Quantity, role: roleDestination},
		}, nil
	case RemoveCommand:
		return []stockDelta{
			{key: entity.StockKey{ItemID: c.ItemID, LocationID: c.SourceID}, delta: -c.Quantity, role: roleSource},
		}, nil
	case MoveCommand:
		return []stockDelta{
			{key: entity.StockKey{ItemID: c.ItemID, LocationID: c.SourceID}, delta: -c.Quantity, role: roleSource},
			{key: entity.StockKey{ItemID: c.ItemID, LocationID: c.DestinationID}, delta: c.Quantity, role: roleDestination},
		}, nil
	}
	return nil, domain.Invalid("kind", fmt.Sprintf("tipo de comando desconocido %T", cmd))
}

// inverseDeltas niega cada delta, conservando el papel de la ubicación.
func inverseDeltas(deltas []stockDelta) []stockDelta {
	out := make([]stockDelta, len(deltas))
	for i, d := range deltas {
		out[i] = stockDelta{key: d.key, delta: -d.delta, role: d.role}
	}
	return out
}

// lockOrder claves únicas en el orden global de bloqueo.
func lockOrder(deltas []stockDelta) []entity.StockKey {
	seen := make(map[entity.StockKey]struct{}, len(deltas))
	keys := make([]entity.StockKey, 0, len(deltas))
	for _, d := range deltas {
		if _, ok := seen[d.key]; ok {
			continue
		}
		seen[d.key] = struct{}{}
		keys = append(keys, d.key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// commandFromTransaction reconstruye el comando original a partir del registro del log.
func commandFromTransaction(tx *entity.Transaction) (Command, error) {
	var cmd Command
	switch tx.Kind {
	case entity.KindAdd:
		cmd = AddCommand{ItemID: tx.ItemID, DestinationID: tx.Destination(), Quantity: tx.Quantity}
	case entity.KindRemove:
		cmd = RemoveCommand{ItemID: tx.ItemID, SourceID: tx.Source(), Quantity: tx.Quantity}
	case entity.KindMove:
		cmd = MoveCommand{ItemID: tx.ItemID, SourceID: tx.Source(), DestinationID: tx.Destination(), Quantity: tx.Quantity}
	default:
		return nil, fmt.Errorf("transacción %s con tipo desconocido %q", tx.ID, tx.Kind)
	}
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("transacción %s inconsistente: %w", tx.ID, err)
	}
	return cmd, nil
}

// newTransaction construye el registro COMPLETED del comando.
func newTransaction(id string, cmd Command, actor string, now time.Time) *entity.Transaction {
	tx := &entity.Transaction{
		ID:        id,
		Kind:      cmd.Kind(),
		ItemID:    cmd.Item(),
		Status:    entity.StatusCompleted,
		CreatedAt: now,
		CreatedBy: actor,
	}
	switch c := cmd.(type) {
	case AddCommand:
		tx.Quantity = c.Quantity
		tx.DestinationLocationID = ptr(c.DestinationID)
	case RemoveCommand:
		tx.Quantity = c.Quantity
		tx.SourceLocationID = ptr(c.SourceID)
	case MoveCommand:
		tx.Quantity = c.Quantity
		tx.SourceLocationID = ptr(c.SourceID)
		tx.DestinationLocationID = ptr(c.DestinationID)
	}
	return tx
}

// locationsOf ubicaciones referenciadas por el comando.
func locationsOf(cmd Command) []string {
	switch c := cmd.(type) {
	case AddCommand:
		return []string{c.DestinationID}
	case RemoveCommand:
		return []string{c.SourceID}
	case MoveCommand:
		return []string{c.SourceID, c.DestinationID}
	}
	return nil
}

func ptr(s string) *string { return &s }
