package workflow

// Participant is the actor a work item gets allocated to.
type Participant struct {
	Id    string   `json:"id"`
	Roles []string `json:"roles,omitempty"`
}

// SystemParticipant drives the work items of automated activities.
var SystemParticipant = Participant{Id: "system"}

func NewParticipant(id string, roles ...string) Participant {
	return Participant{Id: id, Roles: roles}
}

func (p Participant) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}
