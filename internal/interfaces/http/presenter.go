package http

import (
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func toTransactionResponse(tx *entity.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:                    tx.ID,
		Kind:                  string(tx.Kind),
		Quantity:              tx.Quantity,
		ItemID:                tx.ItemID,
		SourceLocationID:      tx.SourceLocationID,
		DestinationLocationID: tx.DestinationLocationID,
		Status:                string(tx.Status),
		CreatedAt:             tx.CreatedAt,
		CreatedBy:             tx.CreatedBy,
		UndoneAt:              tx.UndoneAt,
		UndoneBy:              tx.UndoneBy,
		RedoneAt:              tx.RedoneAt,
		RedoneBy:              tx.RedoneBy,
	}
}

func toBatchResponse(txs []*entity.Transaction) dto.BatchResponse {
	out := dto.BatchResponse{Transactions: make([]dto.TransactionResponse, 0, len(txs))}
	for _, tx := range txs {
		out.Transactions = append(out.Transactions, toTransactionResponse(tx))
	}
	return out
}

func toHistoryEntry(e inventory.HistoryEntry) dto.HistoryEntryResponse {
	return dto.HistoryEntryResponse{
		TransactionResponse: toTransactionResponse(e.Transaction),
		ItemSKU:             e.ItemSKU,
		ItemName:            e.ItemName,
		SourceLabel:         e.SourceLabel,
		DestinationLabel:    e.DestinationLabel,
	}
}

// commandFromLine traduce una línea de lote al comando de su tipo.
func commandFromLine(l dto.BatchLine) inventory.Command {
	switch entity.TransactionKind(l.Kind) {
	case entity.KindAdd:
		return inventory.AddCommand{ItemID: l.ItemID, DestinationID: l.DestinationLocationID, Quantity: l.Quantity}
	case entity.KindRemove:
		return inventory.RemoveCommand{ItemID: l.ItemID, SourceID: l.SourceLocationID, Quantity: l.Quantity}
	case entity.KindMove:
		return inventory.MoveCommand{ItemID: l.ItemID, SourceID: l.SourceLocationID, DestinationID: l.DestinationLocationID, Quantity: l.Quantity}
	}
	return nil
}
