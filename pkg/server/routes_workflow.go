package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/yesoreyeram/thaiyyal/backend/pkg/docloader"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/workflowregistry"
)

// SaveWorkflowRequest represents the request to save a workflow
type SaveWorkflowRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Version     string          `json:"version,omitempty"`
	Data        json.RawMessage `json:"data"`
}

// SaveWorkflowResponse represents the response from saving a workflow
type SaveWorkflowResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// LoadWorkflowResponse represents the response from loading a workflow
type LoadWorkflowResponse struct {
	Success  bool                          `json:"success"`
	Document *workflowregistry.Document    `json:"document,omitempty"`
	Error    string                        `json:"error,omitempty"`
}

// ListWorkflowsResponse represents the response from listing workflows
type ListWorkflowsResponse struct {
	Success   bool                              `json:"success"`
	Documents []workflowregistry.DocumentSummary `json:"documents"`
	Count     int                                `json:"count"`
}

// DeleteWorkflowResponse represents the response from deleting a workflow
type DeleteWorkflowResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// handleSaveWorkflow persists the raw document and, on successful parse,
// registers (or re-registers) it as a runnable entry in the workflow
// catalog, its DependsOn list derived from every Reference node it contains.
func (s *Server) handleSaveWorkflow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read request body", http.StatusBadRequest, err)
		return
	}

	var req SaveWorkflowRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeErrorResponse(w, "Failed to parse request", http.StatusBadRequest, err)
		return
	}

	id, err := s.documents.Save(req.Name, req.Description, req.Data)
	if err != nil {
		s.writeJSONResponse(w, http.StatusBadRequest, SaveWorkflowResponse{
			Success: false,
			Error:   "Failed to save workflow: " + err.Error(),
		})
		return
	}

	if err := s.registerParsed(id, req.Version, req.Description, req.Data); err != nil {
		s.logger.WithError(err).WithField("id", id).Warn("workflow saved but failed to register for execution")
	}

	s.logger.WithField("id", id).WithField("name", req.Name).Info("Workflow saved")

	s.writeJSONResponse(w, http.StatusCreated, SaveWorkflowResponse{
		Success: true,
		ID:      id,
		Message: "Workflow saved successfully",
	})
}

// registerParsed parses data and registers (or updates) it in the catalog
// under id's workflow.id. The catalog id is the parsed document's own
// workflow.id, which callers of Reference nodes address by.
func (s *Server) registerParsed(documentID, version, description string, data json.RawMessage) error {
	wf, _, err := docloader.Load(data)
	if err != nil {
		return err
	}
	dependsOn := docloader.ReferencedWorkflowIDs(wf)

	if _, getErr := s.workflowRegistry.Get(wf.Meta().ID); getErr == nil {
		return s.workflowRegistry.Update(wf, version, description, dependsOn)
	}
	return s.workflowRegistry.Register(wf, version, description, dependsOn)
}

// handleLoadWorkflow handles loading a workflow by ID
func (s *Server) handleLoadWorkflow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1/workflow/load/")
	id := strings.TrimSpace(path)

	if id == "" {
		s.writeJSONResponse(w, http.StatusBadRequest, LoadWorkflowResponse{
			Success: false,
			Error:   "Workflow ID is required",
		})
		return
	}

	doc, err := s.documents.Load(id)
	if err != nil {
		s.writeJSONResponse(w, http.StatusNotFound, LoadWorkflowResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	s.writeJSONResponse(w, http.StatusOK, LoadWorkflowResponse{
		Success:  true,
		Document: doc,
	})
}

// handleListWorkflows handles listing all workflows
func (s *Server) handleListWorkflows(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	docs := s.documents.List()

	s.writeJSONResponse(w, http.StatusOK, ListWorkflowsResponse{
		Success:   true,
		Documents: docs,
		Count:     len(docs),
	})
}

// handleDeleteWorkflow handles deleting a workflow by ID
func (s *Server) handleDeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1/workflow/delete/")
	id := strings.TrimSpace(path)

	if id == "" {
		s.writeJSONResponse(w, http.StatusBadRequest, DeleteWorkflowResponse{
			Success: false,
			Error:   "Workflow ID is required",
		})
		return
	}

	doc, err := s.documents.Load(id)
	if err == nil {
		if wf, _, parseErr := docloader.Load(doc.Data); parseErr == nil {
			_ = s.workflowRegistry.Unregister(wf.Meta().ID)
		}
	}

	if err := s.documents.Delete(id); err != nil {
		s.writeJSONResponse(w, http.StatusNotFound, DeleteWorkflowResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	s.logger.WithField("id", id).Info("Workflow deleted")

	s.writeJSONResponse(w, http.StatusOK, DeleteWorkflowResponse{
		Success: true,
		Message: "Workflow deleted successfully",
	})
}

// handleExecuteWorkflowByID handles executing a saved workflow by its
// document id.
func (s *Server) handleExecuteWorkflowByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1/workflow/execute/")
	id := strings.TrimSpace(path)

	if id == "" {
		s.writeErrorResponse(w, "Workflow ID is required", http.StatusBadRequest, nil)
		return
	}

	doc, err := s.documents.Load(id)
	if err != nil {
		s.writeErrorResponse(w, "Failed to load workflow", http.StatusNotFound, err)
		return
	}

	result, duration, err := s.executeDocument(r.Context(), doc.Data)
	if err != nil {
		s.writeErrorResponse(w, "Workflow execution failed", http.StatusInternalServerError, err)
		return
	}

	s.logger.WithField("id", id).WithField("name", doc.Name).Info("Workflow executed by ID")

	s.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"workflow_id":    id,
		"workflow_name":  doc.Name,
		"results":        result,
		"execution_time": duration.String(),
	})
}
