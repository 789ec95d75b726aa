package socket

import (
	"encoding/json"

	"lab-inventory-api-server/internal/models"
)

// InventoryNotifier pushes inventory events to connected admins. It plugs
// into the inventory service's Notifier hook.
type InventoryNotifier struct {
	Hub *Hub
}

func NewInventoryNotifier(hub *Hub) *InventoryNotifier {
	return &InventoryNotifier{Hub: hub}
}

func (n *InventoryNotifier) BorrowRequested(rec models.BorrowingRecord) {
	n.broadcast(map[string]interface{}{
		"event":  "borrow_request_created",
		"record": rec,
	})
}

func (n *InventoryNotifier) LowStock(comp models.Component) {
	n.broadcast(map[string]interface{}{
		"event":     "low_stock",
		"component": comp,
	})
}

func (n *InventoryNotifier) broadcast(payload map[string]interface{}) {
	message, err := json.Marshal(payload)
	if err != nil {
		return
	}
	n.Hub.Broadcast(models.RoleAdmin, message)
}
