package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	casesModels "casetrack/internal/cases/models"
	"casetrack/internal/dashboard/handler/mocks"
	"casetrack/internal/dashboard/models"
	id "casetrack/pkg/domain"
	dErrors "casetrack/pkg/domain-errors"
	"casetrack/pkg/platform/middleware/auth"
	"casetrack/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type tokenTable map[string]*auth.JWTClaims

func (t tokenTable) ValidateToken(token string) (*auth.JWTClaims, error) {
	if c, ok := t[token]; ok {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

var citizenID = id.NewUserID()

var tokens = tokenTable{
	"citizen-token": {UserID: citizenID.String(), Email: "citizen@example.com", Role: "citizen"},
}

type DashboardHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestDashboardHandlerSuite(t *testing.T) {
	suite.Run(t, new(DashboardHandlerSuite))
}

func (s *DashboardHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)), tokens)
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *DashboardHandlerSuite) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return testutil.DoRequest(s.router, req)
}

func courtCase() casesModels.Case {
	court := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	return casesModels.Case{
		ID:        id.NewCaseID(),
		OBNumber:  "OB/2025/001",
		Title:     "Stolen bicycle",
		Status:    id.CaseStatusCourt,
		CourtDate: &court,
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *DashboardHandlerSuite) TestDashboard() {
	testutil.Given(s.T(), "an unauthenticated caller", func(t *testing.T) {
		rr := s.do(testutil.NewRequest(t, http.MethodGet, "/dashboard/"), "")
		testutil.Then(t, "the dashboard is refused", func(t *testing.T) {
			testutil.AssertStatus(t, rr, http.StatusUnauthorized)
		})
	})

	testutil.Given(s.T(), "a signed-in citizen", func(t *testing.T) {
		c := courtCase()
		generatedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		s.service.EXPECT().
			Aggregate(gomock.Any(), models.Requester{UserID: citizenID, Email: "citizen@example.com"}).
			Return(&models.Dashboard{
				Cases:              []casesModels.Case{c},
				Summary:            models.NewSummary([]casesModels.Case{c}),
				RecentNotes:        []models.NoteWithCase{{Note: casesModels.Note{ID: id.NewNoteID(), CaseID: c.ID, Note: "Hearing set"}, OBNumber: c.OBNumber}},
				UpcomingCourtDates: []casesModels.Case{c},
				GeneratedAt:        generatedAt,
			}, nil)

		rr := s.do(testutil.NewRequest(t, http.MethodGet, "/dashboard/"), "citizen-token")

		testutil.Then(t, "the aggregate is rendered", func(t *testing.T) {
			testutil.AssertStatus(t, rr, http.StatusOK)
			resp := testutil.UnmarshalResponse[models.DashboardResponse](t, rr)
			s.Equal(1, resp.Summary.Total)
			s.Equal(1, resp.Summary.Court)
			s.Equal(0, resp.Summary.Investigation)
			s.Require().Len(resp.RecentNotes, 1)
			s.Equal("OB/2025/001", resp.RecentNotes[0].OBNumber)
			s.Equal("Hearing set", resp.RecentNotes[0].Note)
			s.Require().Len(resp.UpcomingCourtDates, 1)
			s.True(resp.GeneratedAt.Equal(generatedAt))
		})
	})
}

func (s *DashboardHandlerSuite) TestDashboardLookup() {
	s.Run("hit redirects to the case", func() {
		c := courtCase()
		s.service.EXPECT().Lookup(gomock.Any(), "OB/2025/001", "citizen@example.com").Return(&c, nil)
		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/dashboard/",
			map[string]string{"ob_number": " OB/2025/001 "}), "citizen-token")
		testutil.AssertStatus(s.T(), rr, http.StatusSeeOther)
		s.Equal("/case/"+c.ID.String()+"/", rr.Header().Get("Location"))
	})

	s.Run("miss is not found", func() {
		s.service.EXPECT().Lookup(gomock.Any(), "OB/404", "citizen@example.com").
			Return(nil, dErrors.New(dErrors.CodeNotFound, "Case not found with that OB Number."))
		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/dashboard/",
			map[string]string{"ob_number": "OB/404"}), "citizen-token")
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})

	s.Run("blank OB number is rejected", func() {
		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/dashboard/",
			map[string]string{"ob_number": "  "}), "citizen-token")
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})
}

func (s *DashboardHandlerSuite) TestExport() {
	c := courtCase()
	s.service.EXPECT().ExportCases(gomock.Any(), "citizen@example.com").Return([]casesModels.Case{c}, nil)

	rr := s.do(testutil.NewRequest(s.T(), http.MethodGet, "/dashboard/export/"), "citizen-token")

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.Equal("text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	s.Contains(rr.Header().Get("Content-Disposition"), "my_cases.csv")
	s.Equal("OB Number,Title,Status,Court Date,Created At\n"+
		"OB/2025/001,Stolen bicycle,Court,2025-07-01T09:00:00Z,2025-01-01T00:00:00Z\n", rr.Body.String())
}
