package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medemi-triage-server/internal/directory"
	"github.com/medemi-triage-server/internal/domain"
	"github.com/medemi-triage-server/internal/report"
	"github.com/medemi-triage-server/internal/repository"
	"github.com/medemi-triage-server/internal/service"
	"github.com/medemi-triage-server/internal/sessionstore"
)

// stubExtractor returns the same extraction for every call.
type stubExtractor struct {
	result domain.ExtractionResult
}

func (s stubExtractor) Extract(ctx context.Context, narrative, transcript string) domain.ExtractionResult {
	return s.result
}

type stubBreaker struct{ state gobreaker.State }

func (s stubBreaker) BreakerState() gobreaker.State { return s.state }

type stubDatabase struct{ err error }

func (s stubDatabase) Health(ctx context.Context) error { return s.err }

func (s stubDatabase) Stats() map[string]any { return map[string]any{"total_conns": 3} }

var testDoctors = []domain.Doctor{
	{Name: "Dr. Anita Rao", Specialization: "Cardiology", Qualification: "MD, DM (Cardiology)", TimeSlots: []string{"09:00 AM", "10:00 AM"}},
	{Name: "Dr. Meera Iyer", Specialization: domain.GeneralMedicine, Qualification: "MBBS, MD", TimeSlots: []string{"02:00 PM"}},
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func newTestServer(t *testing.T, deps Dependencies) *Server {
	t.Helper()
	logger := quietLogger()

	if deps.Sessions == nil {
		deps.Sessions = sessionstore.NewMemoryStore(100, time.Hour)
	}
	if deps.Directory == nil {
		deps.Directory = directory.New(testDoctors)
	}
	if deps.Triage == nil {
		ext := stubExtractor{result: domain.ExtractionResult{
			Symptoms: []string{"chest pain"},
			Age:      "65",
			Gender:   "male",
		}}
		deps.Triage = service.NewTriageService(logger, deps.Sessions, ext, deps.Directory)
	}
	if deps.Bookings == nil {
		deps.Bookings = service.NewBookingService(logger, repository.NewMemoryBookingRepository(), deps.Directory, deps.Sessions)
	}
	if deps.Reports == nil {
		deps.Reports = report.NewGeneratorWithFonts([]string{"/nonexistent/font.ttf"}, logger)
	}

	s := NewServer(domain.ServerConfig{RequestTimeout: 5 * time.Second}, deps, logger)
	gin.SetMode(gin.TestMode)
	return s
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func answerFor(key domain.QuestionKey) string {
	switch key {
	case domain.KeyAge:
		return "65"
	case domain.KeyGender:
		return "male"
	case domain.KeyDuration:
		return "2 hours"
	case domain.KeyPainScale:
		return "8"
	case domain.KeyPastMedicalHistory:
		return "heart disease"
	case domain.KeyModifiers:
		return "severe"
	default:
		return "no"
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t, Dependencies{})

	w := doJSON(t, s, http.MethodPost, "/api/v1/sessions", StartSessionRequest{Narrative: "65 year old man with chest pain"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	start := decode[StartSessionResponse](t, w)
	require.NotNil(t, start.TurnResult)
	assert.Equal(t, service.Greeting, start.Greeting)
	require.NotNil(t, start.Question)
	assert.Equal(t, "/api/v1/sessions/"+start.SessionID, w.Header().Get("Location"))

	base := "/api/v1/sessions/" + start.SessionID

	// Assessment is not ready while questions remain.
	w = doJSON(t, s, http.MethodGet, base+"/assessment", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, domain.ErrSessionState, decode[ErrorResponse](t, w).Error.Code)

	turn := start.TurnResult
	for i := 0; turn.Question != nil; i++ {
		require.Less(t, i, 25, "dialogue did not terminate")
		w = doJSON(t, s, http.MethodPost, base+"/answers", AnswerRequest{Answer: answerFor(turn.Question.Key)})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		turn = decode[*service.TurnResult](t, w)
		require.True(t, turn.Accepted)
	}
	require.NotNil(t, turn.Assessment)
	assert.Equal(t, domain.STAGE_SHOW_ASSESSMENT, turn.Stage)

	w = doJSON(t, s, http.MethodGet, base+"/assessment", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assessment := decode[domain.Assessment](t, w)
	assert.Equal(t, turn.Assessment.Score, assessment.Score)
	assert.Equal(t, "Cardiology", assessment.Specialties[0].Name)

	w = doJSON(t, s, http.MethodPost, base+"/answers", AnswerRequest{Answer: "more"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, s, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, start.SessionID, decode[domain.SessionContext](t, w).ID)

	// The test generator has no font, so rendering is unavailable.
	w = doJSON(t, s, http.MethodGet, base+"/report.pdf", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, domain.ErrUnavailable, decode[ErrorResponse](t, w).Error.Code)

	w = doJSON(t, s, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, s, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStartSession_BadInput(t *testing.T) {
	s := newTestServer(t, Dependencies{})

	w := doJSON(t, s, http.MethodPost, "/api/v1/sessions", StartSessionRequest{Narrative: "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[ErrorResponse](t, w)
	assert.Equal(t, domain.ErrInvalidInput, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.RequestID)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitAnswer_Rejected(t *testing.T) {
	store := sessionstore.NewMemoryStore(10, time.Hour)
	ext := stubExtractor{result: domain.ExtractionResult{Symptoms: []string{"cough"}, Age: "30", Gender: "male"}}
	s := newTestServer(t, Dependencies{
		Sessions: store,
		Triage:   service.NewTriageService(quietLogger(), store, ext, directory.New(testDoctors)),
	})

	w := doJSON(t, s, http.MethodPost, "/api/v1/sessions", StartSessionRequest{Narrative: "dry cough"})
	require.Equal(t, http.StatusCreated, w.Code)
	start := decode[StartSessionResponse](t, w)
	require.Equal(t, domain.KeyDuration, start.Question.Key)

	w = doJSON(t, s, http.MethodPost, "/api/v1/sessions/"+start.SessionID+"/answers", AnswerRequest{Answer: "x"})
	require.Equal(t, http.StatusOK, w.Code)
	turn := decode[*service.TurnResult](t, w)
	assert.False(t, turn.Accepted)
	assert.NotEmpty(t, turn.ValidationMessage)
	assert.Equal(t, domain.KeyDuration, turn.Question.Key)

	w = doJSON(t, s, http.MethodPost, "/api/v1/sessions/unknown/answers", AnswerRequest{Answer: "2 days"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListDoctors(t *testing.T) {
	s := newTestServer(t, Dependencies{})

	w := doJSON(t, s, http.MethodGet, "/api/v1/doctors", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[DoctorsResponse](t, w).Doctors, 2)

	w = doJSON(t, s, http.MethodGet, "/api/v1/doctors?specialty=Cardiology", nil)
	resp := decode[DoctorsResponse](t, w)
	require.Len(t, resp.Doctors, 1)
	assert.Equal(t, "Dr. Anita Rao", resp.Doctors[0].Name)

	w = doJSON(t, s, http.MethodGet, "/api/v1/doctors?specialty=Dermatology", nil)
	assert.Empty(t, decode[DoctorsResponse](t, w).Doctors)

	empty := newTestServer(t, Dependencies{Directory: directory.New(nil)})
	w = doJSON(t, empty, http.MethodGet, "/api/v1/doctors", nil)
	assert.Equal(t, domain.DirectoryUnavailableMessage, decode[DoctorsResponse](t, w).Message)
}

func TestBookings(t *testing.T) {
	s := newTestServer(t, Dependencies{})

	req := domain.BookingRequest{
		DoctorName:      "Dr. Anita Rao",
		PatientName:     "Jane Doe",
		PatientAge:      67,
		PatientGender:   "Female",
		PatientPhone:    "9876543210",
		PreferredDate:   time.Now().UTC().AddDate(0, 0, 5).Format("2006-01-02"),
		PreferredTime:   "09:00 AM",
		AppointmentType: "First Visit",
		ReasonForVisit:  "Chest pain on exertion",
		Consent:         true,
	}

	w := doJSON(t, s, http.MethodPost, "/api/v1/bookings", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	booking := decode[domain.Booking](t, w)
	assert.True(t, strings.HasPrefix(booking.BookingID, "BK"))
	assert.Equal(t, "Cardiology", booking.Specialization)

	w = doJSON(t, s, http.MethodGet, "/api/v1/bookings/"+booking.BookingID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Jane Doe", decode[domain.Booking](t, w).PatientName)

	w = doJSON(t, s, http.MethodGet, "/api/v1/bookings/BK00000000000000", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req.PatientPhone = "12345"
	req.Consent = false
	w = doJSON(t, s, http.MethodPost, "/api/v1/bookings", req)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decode[ErrorResponse](t, w)
	assert.Equal(t, domain.ErrValidation, resp.Error.Code)
	fields := make([]string, 0, len(resp.Fields))
	for _, f := range resp.Fields {
		fields = append(fields, f.Field)
	}
	assert.Equal(t, []string{"patient_phone", "consent"}, fields)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Dependencies{
		Extractor: stubBreaker{state: gobreaker.StateOpen},
		Database:  stubDatabase{},
	})

	w := doJSON(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "healthy", body["status"])
	components := body["components"].(map[string]any)
	assert.Equal(t, "open", components["extractor"].(map[string]any)["circuit_breaker"])
	assert.Equal(t, float64(2), components["doctors"].(map[string]any)["count"])
	pool := components["database"].(map[string]any)["pool"].(map[string]any)
	assert.Equal(t, float64(3), pool["total_conns"])

	degraded := newTestServer(t, Dependencies{Cache: stubDatabase{err: errors.New("redis down")}})
	w = doJSON(t, degraded, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode[map[string]any](t, w)
	assert.Equal(t, "degraded", body["components"].(map[string]any)["cache"].(map[string]any)["status"])

	down := newTestServer(t, Dependencies{Database: stubDatabase{err: errors.New("connection refused")}})
	w = doJSON(t, down, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ValidationErrors{domain.NewValidationError("f", "m", nil)}, http.StatusUnprocessableEntity, domain.ErrValidation},
		{domain.ErrEmptyNarrative, http.StatusBadRequest, domain.ErrInvalidInput},
		{domain.ErrNotFound, http.StatusNotFound, domain.ErrNotFoundCode},
		{domain.ErrAlreadyExists, http.StatusConflict, domain.ErrStorage},
		{domain.ErrSessionComplete, http.StatusConflict, domain.ErrSessionState},
		{domain.ErrNoPendingQuestion, http.StatusConflict, domain.ErrSessionState},
		{report.ErrFontUnavailable, http.StatusServiceUnavailable, domain.ErrUnavailable},
		{context.DeadlineExceeded, http.StatusGatewayTimeout, domain.ErrUnavailable},
		{errors.New("boom"), http.StatusInternalServerError, domain.ErrInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, code, _ := classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestSessionSocket(t *testing.T) {
	s := newTestServer(t, Dependencies{})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	w := doJSON(t, s, http.MethodPost, "/api/v1/sessions", StartSessionRequest{Narrative: "chest pain"})
	require.Equal(t, http.StatusCreated, w.Code)
	start := decode[StartSessionResponse](t, w)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/sessions/" + start.SessionID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var event SocketEvent
	require.NoError(t, conn.ReadJSON(&event))
	require.Equal(t, SocketTurn, event.Type)
	require.NotNil(t, event.Turn.Question)
	assert.Equal(t, start.Question.Key, event.Turn.Question.Key)

	require.NoError(t, conn.WriteJSON(SocketRequest{Type: "ping"}))
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, SocketError, event.Type)
	assert.Equal(t, domain.ErrInvalidInput, event.Error.Code)

	turn := start.TurnResult
	for i := 0; turn.Question != nil; i++ {
		require.Less(t, i, 25, "dialogue did not terminate")
		require.NoError(t, conn.WriteJSON(SocketRequest{Type: SocketAnswer, Answer: answerFor(turn.Question.Key)}))
		event = SocketEvent{}
		require.NoError(t, conn.ReadJSON(&event))
		require.Equal(t, SocketTurn, event.Type)
		turn = event.Turn
	}
	require.NotNil(t, turn.Assessment)

	// The server closes the socket after the assessment.
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}

func TestSessionSocket_UnknownSession(t *testing.T) {
	s := newTestServer(t, Dependencies{})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/sessions/missing/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
