package chat

// Commands carried from the transport layer into the chat service. The
// transport validates shape; the service enforces authorization and domain
// rules.

type SendMessageCommand struct {
	ClinicID        string
	ProfessionalSub string
	Content         string
	MessageType     MessageType
}

type GetHistoryCommand struct {
	ClinicID        string
	ProfessionalSub string
	Limit           int
	NextKey         *string
}

type MarkReadCommand struct {
	ClinicID        string
	ProfessionalSub string
}

type SearchMessagesCommand struct {
	ClinicID        string
	ProfessionalSub string
	Query           string
	Limit           int
}

// Pagination bounds for history queries.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

// ClampHistoryLimit applies the default and the hard cap.
func ClampHistoryLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return limit
	}
}
