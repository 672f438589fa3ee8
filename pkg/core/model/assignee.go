package model

// AssigneeType tags who a resolved shift assignee is
type AssigneeType string

const (
	AssigneeTeamMember AssigneeType = "team_member"
	AssigneeWorker     AssigneeType = "worker_profile"
	AssigneeUnassigned AssigneeType = "unassigned"
)

// Display names used when an assignee cannot be resolved
const (
	UnknownUserName   = "Unknown User"
	UnknownWorkerName = "Unknown Worker"
	UnassignedName    = "Unassigned"
)

// Assignee is the reference a shift holds to the person working it.
// It is one of TeamMemberAssignee, WorkerAssignee or Unassigned.
type Assignee interface {
	assignee()
}

// TeamMemberAssignee references a provider user with login access
type TeamMemberAssignee struct {
	UserID string
}

// WorkerAssignee references a worker profile (no login)
type WorkerAssignee struct {
	WorkerProfileID string
}

// Unassigned marks a shift nobody has been given yet
type Unassigned struct{}

func (TeamMemberAssignee) assignee() {}
func (WorkerAssignee) assignee()     {}
func (Unassigned) assignee()         {}

// NewAssignee builds the assignee reference from the two nullable columns.
// The user reference wins if both are set; callers validate that separately.
func NewAssignee(userID, workerProfileID string) Assignee {
	switch {
	case userID != "":
		return TeamMemberAssignee{UserID: userID}
	case workerProfileID != "":
		return WorkerAssignee{WorkerProfileID: workerProfileID}
	default:
		return Unassigned{}
	}
}

// ResolvedAssignee is the display-ready view of a shift's assignee
type ResolvedAssignee struct {
	Name    string
	Contact *string // email for team members, phone for workers
	Avatar  *string
	Type    AssigneeType
}
