// Package server exposes the upload / task-polling HTTP API around the
// analysis engine: clients POST a WAV file, then poll the task until
// the tempo and key report is ready.
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/tempokey/tempokey/analysis"
	"github.com/tempokey/tempokey/constants"
	"github.com/tempokey/tempokey/db"
	"github.com/tempokey/tempokey/internal/log"
	"github.com/tempokey/tempokey/model"
	"github.com/tempokey/tempokey/task"
)

type Server struct {
	store     *task.Store
	results   *db.Client
	uploadDir string
	opts      analysis.Options
}

// New wires the API around a task store. results may be nil, which
// disables persistence.
func New(store *task.Store, results *db.Client, uploadDir string) *Server {
	return &Server{
		store:     store,
		results:   results,
		uploadDir: uploadDir,
		opts:      analysis.DefaultOptions(),
	}
}

// Handler builds the router with permissive CORS, matching the clients
// the original service had (browser dashboards on arbitrary origins).
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/", s.handleRoot).Methods("GET")
	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.HandleFunc("/upload-audio", s.handleUpload).Methods("POST")
	router.HandleFunc("/analysis-status/{id}", s.handleStatus).Methods("GET")
	router.HandleFunc("/analysis-result/{id}", s.handleResult).Methods("GET")
	router.HandleFunc("/analysis-task/{id}", s.handleDelete).Methods("DELETE")
	router.HandleFunc("/active-tasks", s.handleActive).Methods("GET")
	return cors.AllowAll().Handler(router)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "tempokey analysis service",
		"endpoints": map[string]string{
			"upload_audio":    "/upload-audio",
			"analysis_status": "/analysis-status/{task_id}",
			"analysis_result": "/analysis-result/{task_id}",
			"active_tasks":    "/active-tasks",
			"health":          "/health",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read uploaded file: "+err.Error())
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".wav") {
		writeError(w, http.StatusBadRequest, "only WAV uploads are supported")
		return
	}

	t := s.store.Create(header.Filename)
	path := filepath.Join(s.uploadDir, t.ID+".wav")
	if err := os.MkdirAll(s.uploadDir, 0755); err != nil {
		writeError(w, http.StatusInternalServerError, "could not create upload dir")
		return
	}
	dst, err := os.Create(path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not store upload")
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(path)
		writeError(w, http.StatusBadRequest, "could not store upload: "+err.Error())
		return
	}
	dst.Close()

	go s.process(t.ID, path)

	log.Info("upload accepted", "task", t.ID, "filename", header.Filename)
	writeJSON(w, http.StatusOK, model.UploadResponse{
		TaskID:  t.ID,
		Status:  string(task.StatusPending),
		Message: "analysis scheduled",
	})
}

// process runs one background analysis and records its outcome. The
// uploaded file is removed once it has been consumed.
func (s *Server) process(id, path string) {
	defer os.Remove(path)

	s.store.SetProcessing(id)
	opts := s.opts
	opts.Progress = func(percent int) {
		s.store.SetProgress(id, percent)
	}

	result, err := analysis.File(path, opts)
	if err != nil {
		log.Warn("analysis failed", "task", id, "err", err)
		s.store.Fail(id, err)
		return
	}
	s.store.Complete(id, result)
	log.Info("analysis completed", "task", id, "bpm", result.Beat.BPM, "key", result.KeyName)

	if s.results != nil {
		if err := s.results.PutResult(id, result); err != nil {
			log.Warn("could not persist result", "task", id, "err", err)
		}
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	t, ok := s.store.Get(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, statusResponse(t))
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	t, ok := s.store.Get(id)
	if !ok {
		// fall back to persisted results for tasks from past runs
		if s.results != nil {
			if result, err := s.results.GetResult(id); err == nil && result != nil {
				writeJSON(w, http.StatusOK, result)
				return
			}
		}
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	switch t.Status {
	case task.StatusCompleted:
		writeJSON(w, http.StatusOK, t.Result)
	case task.StatusFailed:
		writeError(w, http.StatusUnprocessableEntity, t.Error)
	default:
		writeError(w, http.StatusAccepted, fmt.Sprintf("analysis %v (%v%%)", t.Status, t.Progress))
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.store.Delete(id) {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "task deleted", "task_id": id})
}

func (s *Server) handleActive(w http.ResponseWriter, r *http.Request) {
	tasks := s.store.All()
	resp := model.ActiveTasksResponse{Count: len(tasks)}
	for _, t := range tasks {
		resp.Tasks = append(resp.Tasks, statusResponse(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

func statusResponse(t task.Task) model.TaskStatusResponse {
	return model.TaskStatusResponse{
		TaskID:    t.ID,
		Status:    string(t.Status),
		Progress:  t.Progress,
		Result:    t.Result,
		Error:     t.Error,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, model.ErrorResponse{Error: msg})
}
