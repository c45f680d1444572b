package sequence

// timeFormat is the fixed wire format for history timestamps (UTC).
const timeFormat = "2006-01-02 15:04:05"

// Execution lifecycle states.
const (
	StatusPending   = "pendiente"
	StatusRunning   = "progreso"
	StatusCompleted = "completado"
	StatusCancelled = "cancelado"
	StatusFailed    = "fallido"
)

// validStatuses is the closed set of execution states.
var validStatuses = map[string]struct{}{
	StatusPending:   {},
	StatusRunning:   {},
	StatusCompleted: {},
	StatusCancelled: {},
	StatusFailed:    {},
}

// ValidStatus reports whether s is an accepted execution state.
func ValidStatus(s string) bool {
	_, ok := validStatuses[s]
	return ok
}

// Sequence is a named, ordered list of movement operations owned by a
// device. Moves holds operation codes in execution order.
type Sequence struct {
	ID         int64  `json:"id_secuencia"`
	DeviceID   int64  `json:"id_dispositivo"`
	Name       string `json:"nombre_secuencia"`
	Moves      []int  `json:"movimientos"`
	TotalMoves int    `json:"total_movimientos"`
	DeviceName string `json:"nombre_dispositivo,omitempty"`
	CreatedAt  string `json:"fecha_creacion,omitempty"`
}

// Execution is one run of a sequence. DeviceID is resolved through the
// owning sequence, never supplied by the caller.
type Execution struct {
	ID         int64  `json:"id_ejecucion"`
	SequenceID int64  `json:"id_secuencia"`
	DeviceID   int64  `json:"id_dispositivo"`
	Status     string `json:"estado"`
	Moves      []int  `json:"movimientos,omitempty"`
	ExecutedAt string `json:"fecha_ejecucion"`
}
