package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mohitkumar/workflower/logger"
	"github.com/mohitkumar/workflower/model"
	"github.com/mohitkumar/workflower/workflow"
	"go.uber.org/zap"
)

func (s *Server) HandleStartProcess(w http.ResponseWriter, r *http.Request) {
	var req model.ProcessStartRequest
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid start request")
		return
	}
	snapshot, err := s.executorService.StartProcess(r.Context(), req)
	if err != nil {
		logger.Error("error starting process", zap.String("workflow", req.Workflow), zap.Error(err))
		respondWithStatus(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, snapshot)
}

func (s *Server) HandleGetProcess(w http.ResponseWriter, r *http.Request) {
	processId := mux.Vars(r)["id"]
	snapshot, err := s.executorService.GetProcess(r.Context(), processId)
	if err != nil {
		respondWithStatus(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, snapshot)
}

func (s *Server) HandleResumeProcess(w http.ResponseWriter, r *http.Request) {
	processId := mux.Vars(r)["id"]
	var req model.WorkItemRequest
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		respondWithError(w, http.StatusBadRequest, "invalid resume request")
		return
	}
	snapshot, err := s.executorService.ResumeProcess(r.Context(), processId, req)
	if err != nil {
		logger.Error("error resuming process", zap.String("processId", processId), zap.Error(err))
		respondWithStatus(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, snapshot)
}

type workItemOp func(ctx context.Context, processId string, activityId string, req model.WorkItemRequest) (*workflow.Snapshot, error)

func (s *Server) HandleWorkItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	processId, activityId := vars["id"], vars["activityId"]
	var req model.WorkItemRequest
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		respondWithError(w, http.StatusBadRequest, "invalid work item request")
		return
	}
	ops := map[string]workItemOp{
		"allocate": s.executorService.AllocateWorkItem,
		"start":    s.executorService.StartWorkItem,
		"complete": s.executorService.CompleteWorkItem,
		"execute":  s.executorService.ExecuteWorkItem,
	}
	snapshot, err := ops[vars["op"]](r.Context(), processId, activityId, req)
	if err != nil {
		logger.Error("error in work item operation", zap.String("op", vars["op"]), zap.String("processId", processId), zap.String("activity", activityId), zap.Error(err))
		respondWithStatus(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, snapshot)
}
