package inventory

import "github.com/jhoicas/inventario-sucursales/internal/domain/entity"

// TransferAction acción del ciclo de vida de un traslado.
type TransferAction string

const (
	ActionApprove TransferAction = "approve"
	ActionReceive TransferAction = "receive"
	ActionCancel  TransferAction = "cancel"
)

// transitions sólo hacia adelante: PENDING→IN_TRANSIT→RECEIVED, PENDING|IN_TRANSIT→CANCELLED.
var transitions = map[entity.TransferStatus]map[TransferAction]entity.TransferStatus{
	entity.TransferPending: {
		ActionApprove: entity.TransferInTransit,
		ActionCancel:  entity.TransferCancelled,
	},
	entity.TransferInTransit: {
		ActionReceive: entity.TransferReceived,
		ActionCancel:  entity.TransferCancelled,
	},
}

// NextTransferStatus devuelve el estado destino, o false si la acción no está permitida.
func NextTransferStatus(current entity.TransferStatus, action TransferAction) (entity.TransferStatus, bool) {
	next, ok := transitions[current][action]
	return next, ok
}

// IsTerminal indica RECEIVED o CANCELLED.
func IsTerminal(s entity.TransferStatus) bool {
	return s == entity.TransferReceived || s == entity.TransferCancelled
}
