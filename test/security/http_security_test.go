//go:build security

// Package security exercises the public API with hostile input
package security

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/shiliao/dietplan/internal/application/planner"
	"github.com/shiliao/dietplan/internal/domain/diet"
	"github.com/shiliao/dietplan/internal/infrastructure/config"
	"github.com/shiliao/dietplan/internal/infrastructure/http/handlers"
	"github.com/shiliao/dietplan/internal/infrastructure/http/middleware"
	"github.com/shiliao/dietplan/internal/infrastructure/http/server"
	"github.com/shiliao/dietplan/internal/ports/inbound"
	"github.com/shiliao/dietplan/pkg/errors"
	"github.com/shiliao/dietplan/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type envelope struct {
	Success bool                `json:"success"`
	Error   errors.ErrorDetails `json:"error"`
}

// SecurityTestSuite runs the hardened middleware stack
type SecurityTestSuite struct {
	suite.Suite
	config *config.Config
	ts     *httptest.Server
}

func (s *SecurityTestSuite) SetupTest() {
	logger := zap.NewNop()
	s.config = testutils.TestConfig(s.T())
	s.config.App.Environment = "production"
	s.config.RateLimit = config.RateLimitConfig{Enable: true, RequestsPerMin: 60, BurstSize: 5}
	s.config.Server.MaxBodyBytes = 4 << 10

	provider := testutils.StaticCatalogProvider{FoodCatalog: testutils.DefaultCatalog(s.T())}
	service := planner.NewService(provider, diet.DefaultTables(), nil, planner.ServiceConfig{MaxAttempts: 10}, logger)
	srv := server.NewServer(s.config, logger, handlers.NewAPIHandlers(service, logger), middleware.New(s.config, logger), nil)
	s.ts = httptest.NewServer(srv.Handler())
}

func (s *SecurityTestSuite) TearDownTest() {
	s.ts.Close()
}

func (s *SecurityTestSuite) post(path string, body []byte) (*http.Response, envelope) {
	resp, err := s.ts.Client().Post(s.ts.URL+path, "application/json", bytes.NewReader(body))
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	var env envelope
	data, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)
	if resp.StatusCode >= 400 {
		require.NoError(s.T(), json.Unmarshal(data, &env), "body: %s", data)
	}
	return resp, env
}

func (s *SecurityTestSuite) TestHeaders_ShouldHardenResponses() {
	resp, err := s.ts.Client().Get(s.ts.URL + "/api/v1/constitutions")
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	assert.Equal(s.T(), "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(s.T(), "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Contains(s.T(), resp.Header.Get("Strict-Transport-Security"), "max-age=")
}

func (s *SecurityTestSuite) TestInjectionStrings_ShouldFallBackWithoutEcho() {
	// Unknown constitutions are absorbed by the selector fallbacks, so hostile
	// values still produce a plan; none of them may come back in the body.
	payloads := []string{
		"'; DROP TABLE foods; --",
		"<script>alert(1)</script>",
		"{{.Env}}",
		"../../etc/passwd",
	}

	for _, p := range payloads {
		cmd := testutils.ReferenceCommand()
		cmd.PrimaryType = p
		body, err := json.Marshal(inbound.GeneratePlanCommand{Profile: cmd})
		require.NoError(s.T(), err)

		resp, err := s.ts.Client().Post(s.ts.URL+"/api/v1/plans", "application/json", bytes.NewReader(body))
		require.NoError(s.T(), err)
		data, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		require.NoError(s.T(), err)

		require.Equal(s.T(), http.StatusOK, resp.StatusCode, "payload %q", p)
		assert.NotContains(s.T(), string(data), p)
		assert.NotContains(s.T(), string(data), "<script>")
		var plan struct {
			Data inbound.PlanDTO `json:"data"`
		}
		require.NoError(s.T(), json.Unmarshal(data, &plan))
		testutils.NewPlanAssertions(s.T()).CompleteWeek(plan.Data.Menu)
	}
}

func (s *SecurityTestSuite) TestOverlongProfileField_ShouldBeRejectedAsValidation() {
	cmd := testutils.ReferenceCommand()
	cmd.PrimaryType = strings.Repeat("气", 512)
	body, err := json.Marshal(inbound.GeneratePlanCommand{Profile: cmd})
	require.NoError(s.T(), err)

	resp, env := s.post("/api/v1/plans", body)

	assert.Equal(s.T(), http.StatusBadRequest, resp.StatusCode)
	assert.False(s.T(), env.Success)
	assert.Equal(s.T(), errors.CodeValidationFailed, env.Error.Code)
	assert.Contains(s.T(), env.Error.Details, "main_type must be at most 32 characters")
}

func (s *SecurityTestSuite) TestOversizedBody_ShouldReturnPayloadTooLarge() {
	body := []byte(`{"profile":{"main_type":"` + strings.Repeat("a", 8<<10) + `"}}`)

	resp, env := s.post("/api/v1/plans", body)

	assert.Equal(s.T(), http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(s.T(), errors.CodePayloadTooLarge, env.Error.Code)
}

func (s *SecurityTestSuite) TestRandomBodies_ShouldNeverCauseServerErrors() {
	faker := gofakeit.New(7)
	for i := 0; i < 50; i++ {
		var body []byte
		switch i % 3 {
		case 0:
			body = []byte(faker.Sentence(10))
		case 1:
			body, _ = json.Marshal(map[string]interface{}{
				"profile": map[string]interface{}{
					"main_type": faker.Word(),
					"gender":    faker.Gender(),
					"age":       faker.Float64Range(-50, 500),
					"height":    faker.Float64Range(-10, 400),
					"weight":    faker.Float64Range(-10, 900),
					"activity":  faker.Word(),
					"diseases":  []string{faker.Word(), faker.Word()},
				},
			})
		default:
			body = []byte(faker.LoremIpsumParagraph(1, 3, 8, " "))
		}

		resp, err := s.ts.Client().Post(s.ts.URL+"/api/v1/profile/assessment", "application/json", bytes.NewReader(body))
		require.NoError(s.T(), err)
		_ = resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			continue
		}
		assert.Less(s.T(), resp.StatusCode, 500, "body %q", body)
	}
}

func (s *SecurityTestSuite) TestRateLimit_ShouldThrottleBursts() {
	limited := 0
	for i := 0; i < 10; i++ {
		resp, err := s.ts.Client().Get(s.ts.URL + "/api/v1/constitutions")
		require.NoError(s.T(), err)
		_ = resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			limited++
			assert.Equal(s.T(), "60", resp.Header.Get("Retry-After"))
		}
	}
	// one token may refill while the loop runs
	assert.GreaterOrEqual(s.T(), limited, 4)
}

func (s *SecurityTestSuite) TestCompression_ShouldServeBrotliWhenAsked() {
	seed := int64(3)
	body, err := json.Marshal(inbound.GeneratePlanCommand{Profile: testutils.ReferenceCommand(), Seed: &seed})
	require.NoError(s.T(), err)
	req, err := http.NewRequest(http.MethodPost, s.ts.URL+"/api/v1/plans", bytes.NewReader(body))
	require.NoError(s.T(), err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Encoding", "br")

	resp, err := s.ts.Client().Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(s.T(), "br", resp.Header.Get("Content-Encoding"))
	var plan struct {
		Data inbound.PlanDTO `json:"data"`
	}
	require.NoError(s.T(), json.NewDecoder(brotli.NewReader(resp.Body)).Decode(&plan))
	testutils.NewPlanAssertions(s.T()).CompleteWeek(plan.Data.Menu)
}

func TestSecurityTestSuite(t *testing.T) {
	suite.Run(t, new(SecurityTestSuite))
}
