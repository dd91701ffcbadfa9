package mapping

import (
	"strings"

	"github.com/ginjaninja78/presentielijst/internal/types"
)

// roleKind is the outcome of looking a role text up in the role table.
type roleKind int

const (
	roleUnknown roleKind = iota
	roleLeader
	roleAssistant
	roleTrainer
)

// roleTable maps lower-cased, trimmed role texts to a role kind.
// "trainer" is a legacy label for leaders; those rows are flagged for review.
var roleTable = map[string]roleKind{
	"leiding":      roleLeader,
	"hulpleiding":  roleAssistant,
	"assistent":    roleAssistant,
	"assistant":    roleAssistant,
	"hulpleidster": roleAssistant,
	"trainer":      roleTrainer,
}

// RoleDetection is the classification of one role text.
type RoleDetection struct {
	Category   types.RoleCategory
	WasTrainer bool

	// Known is false for non-empty role texts that are not in the table.
	Known bool
}

// DetectRole classifies a raw role text. Empty text is a member; unknown
// non-empty text is also a member but reported as not Known.
func DetectRole(raw string) RoleDetection {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return RoleDetection{Category: types.RoleLeden, Known: true}
	}

	switch roleTable[normalized] {
	case roleLeader:
		return RoleDetection{Category: types.RoleLeiding, Known: true}
	case roleAssistant:
		return RoleDetection{Category: types.RoleAssistent, Known: true}
	case roleTrainer:
		return RoleDetection{Category: types.RoleLeiding, WasTrainer: true, Known: true}
	default:
		return RoleDetection{Category: types.RoleLeden}
	}
}
