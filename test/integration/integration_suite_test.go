package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/paygo/internal/api"
	"github.com/rgehrsitz/paygo/internal/calculation"
	"github.com/rgehrsitz/paygo/internal/config"
	"github.com/rgehrsitz/paygo/internal/domain"
	"github.com/rgehrsitz/paygo/internal/output"
	"github.com/rgehrsitz/paygo/internal/rates"
)

const payrollFile = "../testdata/payroll_march.yaml"

// testEnv is the wiring the CLI and the server share, built from settings
type testEnv struct {
	settings *config.Settings
	engine   *calculation.Engine
	resolver rates.Resolver
}

// setupTestEnvironment points the settings at the test rate table through the
// environment, the same way a deployment would.
func setupTestEnvironment(t *testing.T) *testEnv {
	t.Helper()
	ratesPath, err := filepath.Abs("../testdata/rates.yaml")
	require.NoError(t, err)

	t.Setenv("PAYGO_RATES_SOURCE", config.SourceFile)
	t.Setenv("PAYGO_RATES_FILE", ratesPath)
	t.Setenv("PAYGO_LOGGING_LEVEL", "error")
	t.Setenv("PAYGO_BATCH_CONCURRENCY", "4")

	settings, err := config.LoadSettings("")
	require.NoError(t, err)

	resolver, closeFn, err := settings.Rates.OpenResolver(context.Background())
	require.NoError(t, err)
	t.Cleanup(closeFn)

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	engine := calculation.NewEngine()
	engine.SetLogger(logger.WithField("module", "calculation"))
	engine.Concurrency = settings.Batch.Concurrency
	return &testEnv{settings: settings, engine: engine, resolver: resolver}
}

func loadPayroll(t *testing.T) []domain.SimulationInput {
	t.Helper()
	inputs, err := config.NewInputParser().LoadFromFile(payrollFile)
	require.NoError(t, err)
	return inputs
}

// TestIntegrationSuite runs all integration tests
func TestIntegrationSuite(t *testing.T) {
	t.Run("Batch_From_Files", testBatchFromFiles)
	t.Run("Data_Consistency", testDataConsistency)
	t.Run("Output_Formats", testOutputFormats)
	t.Run("HTTP_API", testHTTPAPI)
}

func testBatchFromFiles(t *testing.T) {
	env := setupTestEnvironment(t)
	assert.Equal(t, 4, env.engine.Concurrency)

	batch, err := env.engine.SimulateBatch(context.Background(), loadPayroll(t), env.resolver)
	require.NoError(t, err)

	assert.Equal(t, 6, batch.Total)
	assert.Equal(t, 5, batch.Successful)
	assert.Equal(t, 1, batch.Failed)
	require.Len(t, batch.Errors, 1)
	assert.Equal(t, domain.EmployeeID("203"), batch.Errors[0].EmployeeID)
	assert.Equal(t, "invalid_input", batch.Errors[0].Kind)

	byEmployee := make(map[domain.EmployeeID]*domain.SimulationResult)
	for _, item := range batch.Results {
		byEmployee[item.EmployeeID] = item.Simulation
	}
	assert.Equal(t, "ma-2025", byEmployee["101"].Rates.ID)
	assert.Equal(t, "8106.76", byEmployee["101"].NetSalary.StringFixed(2))
	assert.Equal(t, "globex-2025", byEmployee["201"].Rates.ID)
	assert.Equal(t, "ma-2025", byEmployee["301"].Rates.ID, "unknown companies fall back to the shared rates")

	globex := byEmployee["201"]
	assert.True(t, globex.EmployeeContributions.CIMR.IsPositive())
	assert.True(t, globex.EmployeeContributions.ProfessionalTax.IsPositive())
	assert.Equal(t, "2916.67", globex.ProfessionalExpenses.StringFixed(2), "allowance is capped")
	assert.Equal(t, "250.00", globex.EmployeeContributions.Other.StringFixed(2))

	ot := byEmployee["202"]
	// 6000 / 173.33 * 10h * 2
	assert.Equal(t, "692.32", ot.OvertimeAmount.StringFixed(2))
}

func testDataConsistency(t *testing.T) {
	env := setupTestEnvironment(t)
	inputs := loadPayroll(t)

	batch, err := env.engine.SimulateBatch(context.Background(), inputs, env.resolver)
	require.NoError(t, err)

	for _, item := range batch.Results {
		r := item.Simulation
		ec, er := r.EmployeeContributions, r.EmployerContributions

		assert.True(t, r.NetSalary.Equal(r.GrossWithOvertime.Sub(ec.Total.Decimal)), "net identity for %s", item.EmployeeID)
		assert.True(t, r.TotalCost.Equal(r.GrossWithOvertime.Add(er.Total.Decimal)), "cost identity for %s", item.EmployeeID)
		assert.True(t, ec.CNSS.LessThanOrEqual(r.Rates.CNSSCeiling.Mul(r.Rates.CNSSEmployeePct.Decimal)), "CNSS cap for %s", item.EmployeeID)

		single, err := env.engine.Preview(context.Background(), inputs[item.Index], env.resolver)
		require.NoError(t, err)
		assert.Equal(t, single, r, "batch item %d equals an individual simulation", item.Index)

		first, _ := json.Marshal(single)
		second, _ := json.Marshal(r)
		assert.Equal(t, string(first), string(second))
	}
}

func testOutputFormats(t *testing.T) {
	env := setupTestEnvironment(t)
	batch, err := env.engine.SimulateBatch(context.Background(), loadPayroll(t), env.resolver)
	require.NoError(t, err)

	for _, name := range output.FormatNames() {
		t.Run(name, func(t *testing.T) {
			f, err := output.GetFormatter(name)
			require.NoError(t, err)

			start := time.Now()
			out, err := f.FormatBatch(batch)
			require.NoError(t, err)
			assert.NotEmpty(t, out)
			assert.Less(t, time.Since(start), 5*time.Second, "%s output should generate within 5 seconds", name)

			rs, err := env.resolver.Resolve(context.Background(), rates.NewKey("globex", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
			require.NoError(t, err)
			out, err = f.FormatRates(rs)
			require.NoError(t, err)
			assert.Contains(t, string(out), "globex-2025")
		})
	}
}

func testHTTPAPI(t *testing.T) {
	env := setupTestEnvironment(t)
	srv := api.NewServer(env.engine, env.resolver, nil, api.Options{
		CORSOrigins:    env.settings.Server.CORSOrigins,
		RequestTimeout: env.settings.Server.RequestTimeout,
		MaxBatchSize:   env.settings.Server.MaxBatchSize,
	})
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	inputs := loadPayroll(t)

	t.Run("preview", func(t *testing.T) {
		body, err := json.Marshal(inputs[2])
		require.NoError(t, err)

		resp, err := http.Post(ts.URL+"/simulation/preview", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var preview api.PreviewResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&preview))

		expected, err := env.engine.Preview(context.Background(), inputs[2], env.resolver)
		require.NoError(t, err)
		assert.Equal(t, expected.NetSalary.StringFixed(2), preview.Simulation.NetSalary.StringFixed(2))
		assert.Equal(t, "globex-2025", preview.Simulation.Rates.ID)
	})

	t.Run("batch", func(t *testing.T) {
		body, err := json.Marshal(api.BatchRequest{Employees: inputs})
		require.NoError(t, err)

		resp, err := http.Post(ts.URL+"/simulation/batch", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var batch domain.BatchResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&batch))
		assert.Equal(t, 6, batch.Total)
		assert.Equal(t, 5, batch.Successful)
	})

	t.Run("rates", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/rates/resolve?company_id=globex&date=2025-01-15")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var rs domain.RateSet
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&rs))
		assert.Equal(t, "ma-2025", rs.ID, "globex rates start in February")
	})
}

// TestIntegrationBenchmarks runs performance benchmarks
func TestIntegrationBenchmarks(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping benchmarks in short mode")
	}
	env := setupTestEnvironment(t)

	inputs := make([]domain.SimulationInput, 2000)
	for i := range inputs {
		company := ""
		if i%3 == 0 {
			company = "globex"
		}
		inputs[i] = domain.SimulationInput{
			EmployeeID:    domain.EmployeeID(fmt.Sprint(i + 1)),
			GrossSalary:   domain.AmountFromInt(int64(3000 + i*37)),
			OvertimeHours: domain.AmountFromInt(int64(i % 12)),
			CompanyID:     company,
			PayMonth:      3,
			PayYear:       2025,
		}
	}

	start := time.Now()
	batch, err := env.engine.SimulateBatch(context.Background(), inputs, env.resolver)
	duration := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, len(inputs), batch.Successful)
	assert.Less(t, duration, 10*time.Second, "Batch should complete within 10 seconds")
	t.Logf("Simulated %d employees in %v", batch.Total, duration)
}
