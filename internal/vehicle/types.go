package vehicle

// TimeFormat is the fixed wire format for history timestamps.
// Records always serialize timestamps as text in this layout (UTC),
// matching what the fleet's clients already parse.
const TimeFormat = "2006-01-02 15:04:05"

// Device is a registered rover.
type Device struct {
	ID          int64   `json:"id_dispositivo"`
	Client      *string `json:"cliente,omitempty"`
	Name        string  `json:"nombre_dispositivo"`
	Description *string `json:"descripcion,omitempty"`
	CreatedAt   string  `json:"created_at,omitempty"`
	UpdatedAt   string  `json:"updated_at,omitempty"`
}

// Operation is one entry of the fixed operations catalog
// (adelante, atras, izquierda, derecha, detener).
type Operation struct {
	Code int    `json:"status_operacion"`
	Text string `json:"status_texto"`
}

// Command is one movement command from the history, joined with its
// catalog text and owning device name on reads.
type Command struct {
	EventID       int64  `json:"id_evento"`
	DeviceID      int64  `json:"id_dispositivo"`
	Operation     int    `json:"status_operacion"`
	OperationText string `json:"status_texto,omitempty"`
	DeviceName    string `json:"nombre_dispositivo,omitempty"`
	Timestamp     string `json:"fecha_hora"`
}
