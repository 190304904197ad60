package web

import (
	"crypto/subtle"
	"net/http"

	"github.com/emiliopalmerini/mkanban/internal/backup"
	"github.com/emiliopalmerini/mkanban/internal/domain"
)

type backupResponse struct {
	Success bool                   `json:"success"`
	Backup  *domain.BackupMetadata `json:"backup,omitempty"`
	Skipped bool                   `json:"skipped,omitempty"`
	Reason  string                 `json:"reason,omitempty"`
}

type backupListResponse struct {
	Backups []domain.BackupMetadata `json:"backups"`
	Count   int                     `json:"count"`
}

// authorized compares the token query parameter with the configured
// secret. With no secret configured nothing is authorized.
func (s *Server) authorized(r *http.Request) bool {
	if s.backupSecret == "" {
		return false
	}
	token := r.URL.Query().Get("token")
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.backupSecret)) == 1
}

// handleBackup creates a snapshot, or lists them with action=list.
func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	ctx := r.Context()
	if r.URL.Query().Get("action") == "list" {
		list, err := s.backups.List(ctx)
		if err != nil {
			s.writeBackupError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, backupListResponse{Backups: list, Count: len(list)})
		return
	}

	meta, err := s.backups.Create(ctx, backup.CreateOptions{SkipIfUnchanged: true})
	if err != nil {
		s.writeBackupError(w, r, err)
		return
	}
	if meta.Skipped {
		writeJSON(w, http.StatusOK, backupResponse{Success: true, Skipped: true, Reason: meta.Reason})
		return
	}
	writeJSON(w, http.StatusOK, backupResponse{Success: true, Backup: meta})
}

// Every backup failure is a server error, whatever its cause.
func (s *Server) writeBackupError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.WithError(err).WithField("path", r.URL.Path).Error("backup request failed")
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
}
