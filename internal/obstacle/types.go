package obstacle

// timeFormat is the fixed wire format for history timestamps (UTC).
const timeFormat = "2006-01-02 15:04:05"

// Sensor mount positions a report may carry.
const (
	LocationFront = "frontal"
	LocationRear  = "trasera"
	LocationLeft  = "izquierda"
	LocationRight = "derecha"
)

// validLocations is the closed set of accepted sensor positions.
var validLocations = map[string]struct{}{
	LocationFront: {},
	LocationRear:  {},
	LocationLeft:  {},
	LocationRight: {},
}

// ValidLocation reports whether s is an accepted sensor position.
func ValidLocation(s string) bool {
	_, ok := validLocations[s]
	return ok
}

// CatalogEntry is one obstacle classification from the fixed catalog
// (pared, objeto movil, desnivel, desconocido).
type CatalogEntry struct {
	Code int    `json:"status_obstaculo"`
	Text string `json:"status_texto"`
}

// Report is one detected obstacle from the history, joined with its
// catalog text and owning device name on reads.
type Report struct {
	EventID    int64    `json:"id_evento"`
	DeviceID   int64    `json:"id_dispositivo"`
	Code       int      `json:"status_obstaculo"`
	Text       string   `json:"status_texto,omitempty"`
	Distance   *float64 `json:"distancia,omitempty"`
	Location   *string  `json:"ubicacion,omitempty"`
	DeviceName string   `json:"nombre_dispositivo,omitempty"`
	Timestamp  string   `json:"fecha_hora"`
}

// ManualObstacle is an operator-placed obstacle marker. Unlike sensor
// reports these are mutable records with their own lifecycle.
type ManualObstacle struct {
	ID          int64   `json:"id_obstaculo"`
	DeviceID    int64   `json:"id_dispositivo"`
	Name        string  `json:"nombre"`
	Location    *string `json:"ubicacion,omitempty"`
	Description *string `json:"descripcion,omitempty"`
	CreatedAt   string  `json:"fecha_creacion"`
}
