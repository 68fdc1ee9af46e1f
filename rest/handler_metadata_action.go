package rest

import (
	"net/http"

	"github.com/mohitkumar/workflower/action"
)

type actionDefinition struct {
	Name string            `json:"name"`
	Type action.ActionType `json:"type"`
}

func (s *Server) HandleListActions(w http.ResponseWriter, r *http.Request) {
	actions := s.registry.List()
	defs := make([]actionDefinition, 0, len(actions))
	for _, a := range actions {
		defs = append(defs, actionDefinition{Name: a.GetName(), Type: a.GetType()})
	}
	respondWithJSON(w, http.StatusOK, defs)
}
