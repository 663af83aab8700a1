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

	"casetrack/internal/reports/handler/mocks"
	"casetrack/internal/reports/models"
	id "casetrack/pkg/domain"
	dErrors "casetrack/pkg/domain-errors"
	"casetrack/pkg/platform/middleware/auth"
	"casetrack/pkg/platform/middleware/metadata"
	"casetrack/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

type tokenTable map[string]*auth.JWTClaims

func (t tokenTable) ValidateToken(token string) (*auth.JWTClaims, error) {
	if c, ok := t[token]; ok {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

var tokens = tokenTable{
	"citizen-token": {UserID: id.NewUserID().String(), Email: "citizen@example.com", Role: "citizen"},
	"officer-token": {UserID: id.NewUserID().String(), Email: "officer@police.go.ke", Role: "officer"},
}

type ReportsHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
	limited int
}

func TestReportsHandlerSuite(t *testing.T) {
	suite.Run(t, new(ReportsHandlerSuite))
}

func (s *ReportsHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.limited = 0
	counting := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.limited++
			next.ServeHTTP(w, r)
		})
	}
	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)), tokens, WithLimiter(counting))
	s.router = chi.NewRouter()
	s.router.Use(metadata.ClientMetadata)
	h.Register(s.router)
}

func (s *ReportsHandlerSuite) do(req *http.Request, token, userAgent string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("User-Agent", userAgent)
	return testutil.DoRequest(s.router, req)
}

func (s *ReportsHandlerSuite) TestFile() {
	testutil.Given(s.T(), "a browser submitting a tip", func(t *testing.T) {
		reportID := id.NewReportID()
		s.service.EXPECT().File(gomock.Any(), "stolen goods at the bus stage").
			Return(&models.Report{ID: reportID, Details: "stolen goods at the bus stage", CreatedAt: time.Now()}, nil)

		rr := s.do(testutil.NewJSONRequest(t, http.MethodPost, "/report/",
			map[string]string{"details": " stolen goods at the bus stage "}), "", browserUA)

		testutil.Then(t, "the report is accepted and rate limited", func(t *testing.T) {
			testutil.AssertStatus(t, rr, http.StatusCreated)
			resp := testutil.UnmarshalResponse[models.FiledResponse](t, rr)
			s.Equal(reportID.String(), resp.ID)
			s.Equal(1, s.limited)
		})
	})

	testutil.Given(s.T(), "a crawler", func(t *testing.T) {
		rr := s.do(testutil.NewJSONRequest(t, http.MethodPost, "/report/",
			map[string]string{"details": "spam"}), "", "Googlebot/2.1 (+http://www.google.com/bot.html)")

		testutil.Then(t, "the submission is refused", func(t *testing.T) {
			testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
		})
	})

	testutil.Given(s.T(), "empty details", func(t *testing.T) {
		rr := s.do(testutil.NewJSONRequest(t, http.MethodPost, "/report/",
			map[string]string{"details": "   "}), "", browserUA)

		testutil.Then(t, "a validation error is returned", func(t *testing.T) {
			testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
		})
	})

	testutil.Given(s.T(), "a store outage", func(t *testing.T) {
		s.service.EXPECT().File(gomock.Any(), "tip").
			Return(nil, dErrors.Wrap(errors.New("db down"), dErrors.CodeInternal, "failed to file report"))
		rr := s.do(testutil.NewJSONRequest(t, http.MethodPost, "/report/",
			map[string]string{"details": "tip"}), "", browserUA)

		testutil.Then(t, "an internal error hides the cause", func(t *testing.T) {
			testutil.AssertStatusAndError(t, rr, http.StatusInternalServerError, "internal_error")
			s.NotContains(rr.Body.String(), "db down")
		})
	})
}

func (s *ReportsHandlerSuite) TestList() {
	s.Run("citizens cannot read reports", func() {
		rr := s.do(testutil.NewRequest(s.T(), http.MethodGet, "/reports/"), "citizen-token", browserUA)
		testutil.AssertStatus(s.T(), rr, http.StatusForbidden)
	})

	s.Run("officers list reports", func() {
		s.service.EXPECT().List(gomock.Any()).Return([]models.Report{{ID: id.NewReportID(), Details: "tip"}}, nil)
		rr := s.do(testutil.NewRequest(s.T(), http.MethodGet, "/reports/"), "officer-token", browserUA)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[models.ListResponse](s.T(), rr)
		s.Require().Len(resp.Reports, 1)
		s.Equal("tip", resp.Reports[0].Details)
	})
}
