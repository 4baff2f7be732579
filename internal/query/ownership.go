package query

import (
	"github.com/google/uuid"

	"ongelEstate/internal/database"
)

// OwnedBy reports whether the acting user may touch a row assigned to
// assignedAgentID. Admins always may; agents only when the row is theirs.
// A nil assignment (unassigned lead) is not owned by any agent.
func OwnedBy(role database.Role, assignedAgentID *uuid.UUID, userID uuid.UUID) bool {
	if role == database.RoleAdmin {
		return true
	}
	return assignedAgentID != nil && *assignedAgentID == userID
}
