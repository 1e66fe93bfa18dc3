package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medemi-triage-server/internal/directory"
	"github.com/medemi-triage-server/internal/domain"
	"github.com/medemi-triage-server/internal/service"
)

// StartSessionRequest opens a dialogue from the patient's narrative.
type StartSessionRequest struct {
	Narrative string `json:"narrative"`
}

// StartSessionResponse carries the greeting with the first turn.
type StartSessionResponse struct {
	Greeting string `json:"greeting"`
	*service.TurnResult
}

// AnswerRequest answers the pending question.
type AnswerRequest struct {
	Answer string `json:"answer"`
}

// DoctorsResponse lists directory entries.
type DoctorsResponse struct {
	Doctors []domain.Doctor `json:"doctors"`
	Message string          `json:"message,omitempty"`
}

func (s *Server) handleStartSession(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}

	result, err := s.deps.Triage.StartSession(c.Request.Context(), req.Narrative)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.Header("Location", "/api/v1/sessions/"+result.SessionID)
	c.JSON(http.StatusCreated, StartSessionResponse{Greeting: service.Greeting, TurnResult: result})
}

func (s *Server) handleGetSession(c *gin.Context) {
	session, err := s.deps.Triage.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (s *Server) handleSubmitAnswer(c *gin.Context) {
	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}

	result, err := s.deps.Triage.SubmitAnswer(c.Request.Context(), c.Param("id"), req.Answer)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleGetAssessment(c *gin.Context) {
	assessment, err := s.deps.Triage.GetAssessment(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assessment)
}

func (s *Server) handleGetReport(c *gin.Context) {
	session, err := s.deps.Triage.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	pdf, err := s.deps.Reports.Render(session)
	if err != nil {
		s.respondError(c, err)
		return
	}

	filename := fmt.Sprintf("triage-assessment-%s.pdf", session.ID)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (s *Server) handleAbandonSession(c *gin.Context) {
	if err := s.deps.Triage.AbandonSession(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleListDoctors returns the directory, optionally filtered with
// ?specialty=.
func (s *Server) handleListDoctors(c *gin.Context) {
	doctors := s.deps.Directory.Doctors()
	if len(doctors) == 0 {
		c.JSON(http.StatusOK, DoctorsResponse{Doctors: []domain.Doctor{}, Message: domain.DirectoryUnavailableMessage})
		return
	}

	if specialty := strings.TrimSpace(c.Query("specialty")); specialty != "" {
		doctors = directory.BySpecialty(doctors, specialty)
	}
	if doctors == nil {
		doctors = []domain.Doctor{}
	}
	c.JSON(http.StatusOK, DoctorsResponse{Doctors: doctors})
}

func (s *Server) handleCreateBooking(c *gin.Context) {
	var req domain.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}

	booking, err := s.deps.Bookings.Book(c.Request.Context(), &req)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.Header("Location", "/api/v1/bookings/"+booking.BookingID)
	c.JSON(http.StatusCreated, booking)
}

func (s *Server) handleGetBooking(c *gin.Context) {
	booking, err := s.deps.Bookings.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// handleHealth reports overall status and each optional component.
func (s *Server) handleHealth(c *gin.Context) {
	ctx := c.Request.Context()
	status := http.StatusOK
	components := gin.H{}

	if s.deps.Sessions != nil {
		if count, err := s.deps.Sessions.Count(ctx); err != nil {
			status = http.StatusServiceUnavailable
			components["sessions"] = gin.H{"status": "unhealthy", "error": err.Error()}
		} else {
			components["sessions"] = gin.H{"status": "healthy", "active": count}
		}
	}

	if s.deps.Database != nil {
		if err := s.deps.Database.Health(ctx); err != nil {
			status = http.StatusServiceUnavailable
			components["database"] = gin.H{"status": "unhealthy", "error": err.Error()}
		} else {
			entry := gin.H{"status": "healthy"}
			if stats, ok := s.deps.Database.(StatsReporter); ok {
				entry["pool"] = stats.Stats()
			}
			components["database"] = entry
		}
	}

	// The shared cache is an optimisation; losing it does not fail the check.
	if s.deps.Cache != nil {
		if err := s.deps.Cache.Health(ctx); err != nil {
			components["cache"] = gin.H{"status": "degraded", "error": err.Error()}
		} else {
			components["cache"] = gin.H{"status": "healthy"}
		}
	}

	// An open breaker degrades extraction but the dialogue still works.
	if s.deps.Extractor != nil {
		components["extractor"] = gin.H{"circuit_breaker": s.deps.Extractor.BreakerState().String()}
	}

	if s.deps.Directory != nil {
		components["doctors"] = gin.H{"count": len(s.deps.Directory.Doctors())}
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}
	c.JSON(status, gin.H{
		"status":     overall,
		"timestamp":  time.Now().UTC(),
		"version":    s.version,
		"components": components,
	})
}
