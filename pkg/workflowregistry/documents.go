package workflowregistry

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Document is a raw, not-yet-validated workflow definition as submitted
// through the API, before it is parsed and built into a Workflow and
// Register()'d into the catalog.
type Document struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Data        json.RawMessage `json:"data"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// DocumentSummary is a lightweight listing projection of a Document.
type DocumentSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DocumentStore persists raw workflow documents submitted over the API,
// ahead of the parse/build/Register pipeline that turns one into a live
// catalog Entry. It is the raw-document half of the catalog, held in memory
// only (nothing is written to disk): where
// Registry tracks built, runnable workflows, DocumentStore tracks the
// editable source a user is still drafting.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]*Document
}

// NewDocumentStore creates an empty document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{documents: make(map[string]*Document)}
}

// Save creates a new document and returns its generated id.
func (s *DocumentStore) Save(name, description string, data json.RawMessage) (string, error) {
	if name == "" {
		return "", fmt.Errorf("workflow name is required")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("workflow data is required")
	}
	var probe interface{}
	if err := json.Unmarshal(data, &probe); err != nil {
		return "", fmt.Errorf("invalid workflow data: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	now := time.Now()
	s.documents[id] = &Document{
		ID:          id,
		Name:        name,
		Description: description,
		Data:        data,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return id, nil
}

// Update overwrites an existing document's content in place.
func (s *DocumentStore) Update(id, name, description string, data json.RawMessage) error {
	if id == "" {
		return fmt.Errorf("document id is required")
	}
	if name == "" {
		return fmt.Errorf("workflow name is required")
	}
	if len(data) == 0 {
		return fmt.Errorf("workflow data is required")
	}
	var probe interface{}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("invalid workflow data: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, exists := s.documents[id]
	if !exists {
		return fmt.Errorf("document %q not found", id)
	}
	doc.Name = name
	doc.Description = description
	doc.Data = data
	doc.UpdatedAt = time.Now()
	return nil
}

// Load retrieves a document by id.
func (s *DocumentStore) Load(id string) (*Document, error) {
	if id == "" {
		return nil, fmt.Errorf("document id is required")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, exists := s.documents[id]
	if !exists {
		return nil, fmt.Errorf("document %q not found", id)
	}
	copied := *doc
	return &copied, nil
}

// Delete removes a document by id.
func (s *DocumentStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.documents[id]; !exists {
		return fmt.Errorf("document %q not found", id)
	}
	delete(s.documents, id)
	return nil
}

// List returns summaries of every stored document.
func (s *DocumentStore) List() []DocumentSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]DocumentSummary, 0, len(s.documents))
	for _, doc := range s.documents {
		out = append(out, DocumentSummary{
			ID:          doc.ID,
			Name:        doc.Name,
			Description: doc.Description,
			CreatedAt:   doc.CreatedAt,
			UpdatedAt:   doc.UpdatedAt,
		})
	}
	return out
}

// Exists reports whether a document with the given id is stored.
func (s *DocumentStore) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.documents[id]
	return exists
}
