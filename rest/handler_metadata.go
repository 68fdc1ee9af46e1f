package rest

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	api "github.com/mohitkumar/workflower/api/v1"
	"github.com/mohitkumar/workflower/logger"
	"github.com/mohitkumar/workflower/model"
)

func (s *Server) HandleCreateFlow(w http.ResponseWriter, r *http.Request) {
	var fl model.Workflow
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&fl); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid workflow definition")
		return
	}
	err := s.metadataService.ValidateFlow(fl)
	if err != nil {
		logger.Error("error validating workflow", zap.Error(err))
		respondWithStatus(w, api.ValidationError{Message: err.Error()})
		return
	}
	err = s.metadataService.GetMetadataStorage().SaveWorkflowDefinition(fl)
	if err != nil {
		logger.Error("error creating workflow", zap.Error(err))
		respondWithStatus(w, err)
		return
	}
	respondOK(w, map[string]any{"created": true})
}

func (s *Server) HandleListFlows(w http.ResponseWriter, r *http.Request) {
	names, err := s.metadataService.GetMetadataStorage().ListWorkflowDefinitions()
	if err != nil {
		respondWithStatus(w, err)
		return
	}
	respondOK(w, map[string]any{"workflows": names})
}

func (s *Server) HandleGetFlow(w http.ResponseWriter, r *http.Request) {
	flowName := mux.Vars(r)["name"]
	wf, err := s.metadataService.GetWorkflow(flowName)
	if err != nil {
		logger.Info("workflow does not exist", zap.String("name", flowName))
		respondWithStatus(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, wf)
}
