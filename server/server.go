package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/amapara27/silicon-edge-ai-compiler/client"
	"github.com/amapara27/silicon-edge-ai-compiler/external/compiler"
	"github.com/amapara27/silicon-edge-ai-compiler/logging"
	"github.com/amapara27/silicon-edge-ai-compiler/service"
)

// Server exposes the model hub over REST. The caller identity is injected by
// the fronting auth proxy in the X-User-Id header, the server itself never
// authenticates anyone. Owner scoping is enforced again at the storage layer,
// the checks here are a usability convenience.
type Server struct {
	listenAddr     string
	modelSvc       service.Model
	rehydrator     *client.Rehydrator
	compilerClient *compiler.Client
	httpServer     *http.Server
}

func NewServer(listenAddr string, modelSvc service.Model, rehydrator *client.Rehydrator, compilerClient *compiler.Client) *Server {
	return &Server{
		listenAddr:     listenAddr,
		modelSvc:       modelSvc,
		rehydrator:     rehydrator,
		compilerClient: compilerClient,
	}
}

func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	v1 := router.PathPrefix("/v1").Subrouter()

	v1.Path("/models").Methods(http.MethodGet).HandlerFunc(s.HandleListModels)
	v1.Path("/models").Methods(http.MethodPost).HandlerFunc(s.HandleSaveModel)
	v1.Path("/models/{id}").Methods(http.MethodGet).HandlerFunc(s.HandleLoadModel)
	v1.Path("/models/{id}").Methods(http.MethodDelete).HandlerFunc(s.HandleDeleteModel)
	v1.Path("/models/{id}/deploy").Methods(http.MethodPost).HandlerFunc(s.HandleDeployModel)
	v1.Path("/models/{id}/compile").Methods(http.MethodPost).HandlerFunc(s.HandleCompileModel)
	v1.Path("/models/{id}/profile").Methods(http.MethodPost).HandlerFunc(s.HandleProfileModel)
	v1.Path("/models/import").Methods(http.MethodPost).HandlerFunc(s.HandleImportModel)

	return router
}

func (s *Server) Start() {
	s.httpServer = &http.Server{
		Addr:              s.listenAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logging.Logger.Infof("model hub listening on %s", s.listenAddr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logging.Logger.Errorf("failed to listen and serve, err=%s", err.Error())
		panic(err)
	}
}
