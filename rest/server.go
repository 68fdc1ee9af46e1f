package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/mohitkumar/workflower/action"
	api "github.com/mohitkumar/workflower/api/v1"
	"github.com/mohitkumar/workflower/logger"
	"github.com/mohitkumar/workflower/metadata"
	"github.com/mohitkumar/workflower/service"
	"go.uber.org/zap"
)

type Server struct {
	http.Server
	Port            int
	metadataService metadata.MetadataService
	executorService *service.WorkflowExecutionService
	registry        *action.Registry
}

func NewServer(httpPort int, metadataService metadata.MetadataService, executorService *service.WorkflowExecutionService, registry *action.Registry) (*Server, error) {

	s := &Server{
		Server: http.Server{
			Addr:        fmt.Sprintf(":%d", httpPort),
			IdleTimeout: 2 * time.Second,
		},
		metadataService: metadataService,
		executorService: executorService,
		registry:        registry,
		Port:            httpPort,
	}

	router := mux.NewRouter()
	router.HandleFunc("/metadata/workflow", s.HandleCreateFlow).Methods(http.MethodPost)
	router.HandleFunc("/metadata/workflow", s.HandleListFlows).Methods(http.MethodGet)
	router.HandleFunc("/metadata/workflow/{name}", s.HandleGetFlow).Methods(http.MethodGet)

	router.HandleFunc("/metadata/action", s.HandleListActions).Methods(http.MethodGet)

	router.HandleFunc("/process", s.HandleStartProcess).Methods(http.MethodPost)
	router.HandleFunc("/process/{id}", s.HandleGetProcess).Methods(http.MethodGet)
	router.HandleFunc("/process/{id}/resume", s.HandleResumeProcess).Methods(http.MethodPost)
	router.HandleFunc("/process/{id}/activity/{activityId}/{op:allocate|start|complete|execute}", s.HandleWorkItem).Methods(http.MethodPost)

	router.Use(loggingMiddleware)
	s.Handler = router
	return s, nil
}

func (s *Server) Start() error {
	logger.Info("starting http server on", zap.Int("port", s.Port))
	if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Stop() error {
	logger.Info("stopping http server")
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := s.Shutdown(ctx)
	if err != nil {
		logger.Error("error shutting down http server", zap.Error(err))
	}
	return err
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info(r.RequestURI, zap.String("method", r.Method))
		next.ServeHTTP(w, r)
	})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondOK(w http.ResponseWriter, message map[string]any) {
	respondWithJSON(w, http.StatusOK, message)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithStatus writes err with the http code of its status.
func respondWithStatus(w http.ResponseWriter, err error) {
	st := api.ToStatus(err)
	respondWithJSON(w, api.HTTPStatus(st), map[string]string{"error": st.Message(), "code": st.Code().String()})
}
