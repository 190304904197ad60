package web

import (
	"net/http"

	"github.com/emiliopalmerini/mkanban/internal/board"
	"github.com/emiliopalmerini/mkanban/internal/domain"
)

type boardResponse struct {
	ProjectID string          `json:"projectId"`
	Columns   []domain.Column `json:"columns"`
	Tasks     []*domain.Task  `json:"tasks"`
}

type saveBoardRequest struct {
	Tasks []*domain.Task `json:"tasks"`
}

type saveBoardResponse struct {
	boardResponse
	Result board.Result `json:"result"`
}

func newBoardResponse(projectID string, tasks []*domain.Task) boardResponse {
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return boardResponse{ProjectID: projectID, Columns: domain.Columns, Tasks: tasks}
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	tasks, err := s.boards.Board(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newBoardResponse(id, tasks))
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var task domain.Task
	if err := decodeJSON(w, r, &task); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.boards.AddTask(r.Context(), r.PathValue("id"), &task)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleSaveBoard makes the stored board match the posted list.
func (s *Server) handleSaveBoard(w http.ResponseWriter, r *http.Request) {
	var body saveBoardRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	for _, t := range body.Tasks {
		if t == nil {
			s.writeError(w, r, domain.ErrValidation)
			return
		}
	}

	ctx := r.Context()
	id := r.PathValue("id")
	res, err := s.boards.Save(ctx, id, body.Tasks)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tasks, err := s.boards.Board(ctx, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saveBoardResponse{boardResponse: newBoardResponse(id, tasks), Result: res})
}

func (s *Server) handleMoveTask(w http.ResponseWriter, r *http.Request) {
	var mv board.Move
	if err := decodeJSON(w, r, &mv); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := r.PathValue("id")
	tasks, res, err := s.boards.Move(r.Context(), id, mv)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saveBoardResponse{boardResponse: newBoardResponse(id, tasks), Result: res})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.boards.GetTask(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var task domain.Task
	if err := decodeJSON(w, r, &task); err != nil {
		s.writeError(w, r, err)
		return
	}
	task.ID = r.PathValue("id")
	updated, err := s.boards.UpdateTask(r.Context(), &task)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.boards.DeleteTask(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse{Deleted: id})
}
