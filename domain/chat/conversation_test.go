package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPreview(t *testing.T) {
	req := require.New(t)

	req.Equal("short", Preview("short"))

	long := strings.Repeat("é", PreviewLength+50)
	preview := Preview(long)
	req.Len([]rune(preview), PreviewLength)

	exact := strings.Repeat("a", PreviewLength)
	req.Equal(exact, Preview(exact))
}

func TestConversation_Counterpart(t *testing.T) {
	req := require.New(t)

	conversation := Conversation{
		ClinicKey:        ClinicKey("C1"),
		ProfessionalKey:  ProfessionalKey("P1"),
		ClinicName:       "Bright Smiles",
		ProfessionalName: "Dana",
		UnreadClinic:     2,
		UnreadPro:        5,
	}

	req.Equal(ProfessionalKey("P1"), conversation.Counterpart(ClinicKey("C1")))
	req.Equal(ClinicKey("C1"), conversation.Counterpart(ProfessionalKey("P1")))
	req.Equal("Dana", conversation.CounterpartName(ClinicKey("C1")))
	req.Equal("Bright Smiles", conversation.CounterpartName(ProfessionalKey("P1")))
	req.Equal(2, conversation.UnreadFor(ClinicKey("C1")))
	req.Equal(5, conversation.UnreadFor(ProfessionalKey("P1")))
}

func TestClampHistoryLimit(t *testing.T) {
	req := require.New(t)
	req.Equal(DefaultHistoryLimit, ClampHistoryLimit(0))
	req.Equal(DefaultHistoryLimit, ClampHistoryLimit(-3))
	req.Equal(25, ClampHistoryLimit(25))
	req.Equal(MaxHistoryLimit, ClampHistoryLimit(1000))
}
