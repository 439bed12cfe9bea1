// Package party resolves which role an actor holds on a given task.
package party

import "github.com/NetPranav/Vyom/internal/domain/task"

// Role is the relationship between an actor and a task.
type Role string

const (
	RoleOwner     Role = "owner"
	RoleAssignee  Role = "assignee"
	RoleUnrelated Role = "unrelated"
)

// RoleOf returns the role actorID holds on t, derived purely from identity
// comparison. Every lifecycle transition authorizes through this.
func RoleOf(actorID string, t *task.Task) Role {
	switch {
	case actorID != "" && actorID == t.OwnerID:
		return RoleOwner
	case actorID != "" && actorID == t.AssigneeID:
		return RoleAssignee
	default:
		return RoleUnrelated
	}
}
