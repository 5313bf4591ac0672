package console

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/abgdnv/stockguard/internal/auth"
	"github.com/abgdnv/stockguard/internal/inventory/risk"
	"github.com/abgdnv/stockguard/internal/inventory/service"
	"github.com/abgdnv/stockguard/internal/inventory/store"
	"github.com/abgdnv/stockguard/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const login = "admin\nadmin123\n"

type session struct {
	store  *store.Store
	output string
	err    error
}

func newCredentials(t *testing.T) *auth.HashedStore {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)
	credentials, err := auth.NewHashedStore(map[string]string{"admin": string(hash)})
	require.NoError(t, err)
	return credentials
}

// run feeds script to a console over a store seeded with products.
func run(t *testing.T, script string, seed []store.Product, opts ...Option) session {
	t.Helper()
	backend := store.NewInMemoryBackend()
	if len(seed) > 0 {
		backend = store.NewInMemoryBackendWith(seed)
	}
	st := store.New(backend)
	require.NoError(t, st.Load())
	registry := report.NewRegistry(t.TempDir())
	registry.Register(report.CSVRenderer{})
	svc := service.NewService(st, risk.NewClassifier(risk.DefaultLowLimit), registry)

	var out bytes.Buffer
	c := New(svc, newCredentials(t), strings.NewReader(script), &out, opts...)
	err := c.Run(context.Background())
	return session{store: st, output: out.String(), err: err}
}

var widget = store.Product{ID: "P1", Name: "Widget", Stock: 3, DailyDemand: 5}

func TestConsole_LoginLockout(t *testing.T) {
	// when
	s := run(t, "admin\nwrong\nadmin\nadmin\nroot\nadmin123\n1\n", nil)
	// then
	assert.ErrorIs(t, s.err, ErrAuthenticationFailed)
	assert.Contains(t, s.output, "Invalid credentials. 2 attempt(s) remaining.")
	assert.Contains(t, s.output, "Invalid credentials. 1 attempt(s) remaining.")
	assert.Contains(t, s.output, "Login failed. Too many attempts.")
	assert.NotContains(t, s.output, "DASHBOARD")
}

func TestConsole_LoginSecondAttempt(t *testing.T) {
	// when
	s := run(t, "admin\nwrong\n"+login+"9\n", nil)
	// then
	require.NoError(t, s.err)
	assert.Contains(t, s.output, "Welcome, admin!")
	assert.Contains(t, s.output, "Logged in as: admin")
	assert.Contains(t, s.output, "Goodbye!")
}

func TestConsole_PasswordReader(t *testing.T) {
	// given
	var prompts []string
	reader := func(prompt string) (string, error) {
		prompts = append(prompts, prompt)
		return "admin123", nil
	}
	// when
	s := run(t, "admin\n9\n", nil, WithPasswordReader(reader))
	// then
	require.NoError(t, s.err)
	assert.Equal(t, []string{"Password: "}, prompts)
	assert.Contains(t, s.output, "Welcome, admin!")
}

func TestConsole_AddProduct(t *testing.T) {
	testCases := []struct {
		name           string
		input          string
		expectedOutput string
		expectedTable  []store.Product
	}{
		{
			name:           "Success",
			input:          "2\n P2 \nGadget\n20\n4\n",
			expectedOutput: "Product 'Gadget' added successfully!",
			expectedTable:  []store.Product{widget, {ID: "P2", Name: "Gadget", Stock: 20, DailyDemand: 4}},
		},
		{
			name:           "Error - not a number",
			input:          "2\nP2\nGadget\nten\n4\n",
			expectedOutput: "Stock and Demand must be numbers.",
			expectedTable:  []store.Product{widget},
		},
		{
			name:           "Error - duplicate ID",
			input:          "2\nP1\nGadget\n20\n4\n",
			expectedOutput: "Product ID 'P1' already exists!",
			expectedTable:  []store.Product{widget},
		},
		{
			name:           "Error - empty ID",
			input:          "2\n\nGadget\n20\n4\n",
			expectedOutput: "Product ID cannot be empty.",
			expectedTable:  []store.Product{widget},
		},
		{
			name:           "Error - negative demand",
			input:          "2\nP2\nGadget\n20\n-4\n",
			expectedOutput: "Daily Demand cannot be negative.",
			expectedTable:  []store.Product{widget},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			s := run(t, login+tc.input+"9\n", []store.Product{widget})
			// then
			require.NoError(t, s.err)
			assert.Contains(t, s.output, tc.expectedOutput)
			assert.Equal(t, tc.expectedTable, s.store.Snapshot())
		})
	}
}

func TestConsole_UpdateStock(t *testing.T) {
	testCases := []struct {
		name           string
		input          string
		expectedOutput string
		expectedStock  int
	}{
		{name: "Success", input: "3\n1\n50\n", expectedOutput: "Stock updated successfully!", expectedStock: 50},
		{name: "Out of range", input: "3\n2\n", expectedOutput: "Invalid selection.", expectedStock: 3},
		{name: "Not a number", input: "3\none\n", expectedOutput: "Invalid input.", expectedStock: 3},
		{name: "Bad stock", input: "3\n1\nlots\n", expectedOutput: "Invalid input.", expectedStock: 3},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			s := run(t, login+tc.input+"9\n", []store.Product{widget})
			// then
			require.NoError(t, s.err)
			assert.Contains(t, s.output, "1. Widget (ID: P1) - Current Stock: 3")
			assert.Contains(t, s.output, tc.expectedOutput)
			found, err := s.store.Find("P1")
			require.NoError(t, err)
			assert.Equal(t, tc.expectedStock, found.Stock)
		})
	}
}

func TestConsole_UpdateStock_EmptyTable(t *testing.T) {
	// when
	s := run(t, login+"3\n9\n", nil)
	// then
	require.NoError(t, s.err)
	assert.Contains(t, s.output, "No products in inventory. Please add a product first.")
}

func TestConsole_DeleteProduct(t *testing.T) {
	// when
	s := run(t, login+"4\nP9\n4\nP1\n9\n", []store.Product{widget})
	// then
	require.NoError(t, s.err)
	assert.Contains(t, s.output, "Product ID 'P9' not found.")
	assert.Contains(t, s.output, "Product 'P1' deleted successfully!")
	assert.Empty(t, s.store.Snapshot())
}

func TestConsole_Dashboard(t *testing.T) {
	// when
	s := run(t, login+"1\n9\n", []store.Product{widget, {ID: "P2", Name: "Gadget", Stock: 50, DailyDemand: 1}})
	// then
	require.NoError(t, s.err)
	assert.Contains(t, s.output, "Total Products: 2")
	assert.Contains(t, s.output, "Total Stock: 53 units")
	assert.Contains(t, s.output, "Low Stock Items: 1 (below 10)")
	assert.Contains(t, s.output, "Gadget")
}

func TestConsole_Dashboard_Empty(t *testing.T) {
	// when
	s := run(t, login+"1\n9\n", nil)
	// then
	assert.Contains(t, s.output, "No products in inventory. Add a product to get started!")
}

func TestConsole_Recommendations(t *testing.T) {
	// when
	s := run(t, login+"5\n9\n", []store.Product{widget})
	// then
	require.NoError(t, s.err)
	assert.Contains(t, s.output, "1. Widget")
	assert.Contains(t, s.output, "7-Day Forecast: 35 units")
	assert.Contains(t, s.output, "Priority Score: 7")
	assert.Contains(t, s.output, "Status: HIGH_RISK")
	assert.Contains(t, s.output, "Recommendation: Reorder immediately.")
}

func TestConsole_Export(t *testing.T) {
	// when
	s := run(t, login+"6\n7\n9\n", []store.Product{widget})
	// then
	require.NoError(t, s.err)
	assert.Contains(t, s.output, "PDF export is not available. Enable it with report.pdf.enabled.")
	require.Contains(t, s.output, "Data exported to: ")
	line := s.output[strings.Index(s.output, "Data exported to: ")+len("Data exported to: "):]
	path := strings.TrimSpace(strings.SplitN(line, "\n", 2)[0])
	assert.Contains(t, path, "inventory_export_")
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestConsole_Export_Empty(t *testing.T) {
	// when
	s := run(t, login+"7\n9\n", nil)
	// then
	assert.Contains(t, s.output, "No products to report. Add products first!")
}

func TestConsole_Logout(t *testing.T) {
	// when
	s := run(t, login+"8\n"+login+"9\n", nil)
	// then
	require.NoError(t, s.err)
	assert.Contains(t, s.output, "Logging out...")
	assert.Equal(t, 2, strings.Count(s.output, "Welcome, admin!"))
}

func TestConsole_Logout_FailedRelogin(t *testing.T) {
	// when
	s := run(t, login+"8\nx\nx\nx\nx\nx\nx\n", nil)
	// then
	assert.ErrorIs(t, s.err, ErrAuthenticationFailed)
}

func TestConsole_InvalidChoiceAndEOF(t *testing.T) {
	// when
	s := run(t, login+"42\n", nil)
	// then
	assert.NoError(t, s.err)
	assert.Contains(t, s.output, "Invalid choice. Please try again.")
}
