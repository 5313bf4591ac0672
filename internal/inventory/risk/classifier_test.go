package risk

import (
	"testing"

	"github.com/abgdnv/stockguard/internal/inventory/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Classify(t *testing.T) {
	testCases := []struct {
		name          string
		stock         int
		dailyDemand   int
		lowLimit      int
		expectedTier  Tier
		expectedScore int
	}{
		{
			name:          "High risk - stock below threshold dominates a non-positive score",
			stock:         5,
			dailyDemand:   1,
			lowLimit:      10,
			expectedTier:  HighRisk,
			expectedScore: -3,
		},
		{
			name:          "High risk - stock below threshold with positive score",
			stock:         3,
			dailyDemand:   5,
			lowLimit:      10,
			expectedTier:  HighRisk,
			expectedScore: 7,
		},
		{
			name:          "Safe - stock equal to threshold and zero score",
			stock:         10,
			dailyDemand:   5,
			lowLimit:      10,
			expectedTier:  Safe,
			expectedScore: 0,
		},
		{
			name:          "Medium risk - positive score above threshold",
			stock:         15,
			dailyDemand:   8,
			lowLimit:      10,
			expectedTier:  MediumRisk,
			expectedScore: 1,
		},
		{
			name:          "Safe - plenty of stock",
			stock:         50,
			dailyDemand:   5,
			lowLimit:      10,
			expectedTier:  Safe,
			expectedScore: -40,
		},
		{
			name:          "High risk - negative stock",
			stock:         -1,
			dailyDemand:   0,
			lowLimit:      10,
			expectedTier:  HighRisk,
			expectedScore: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			a, err := Classify(tc.stock, tc.dailyDemand, tc.lowLimit)
			// then
			require.NoError(t, err)
			assert.Equal(t, tc.expectedTier, a.Tier)
			assert.Equal(t, tc.expectedScore, a.PriorityScore)
			assert.Equal(t, 7*tc.dailyDemand, a.WeekForecast)
			assert.Equal(t, recommendations[tc.expectedTier], a.Recommendation)
		})
	}
}

func Test_Classify_IsDeterministic(t *testing.T) {
	for stock := -5; stock <= 30; stock++ {
		for demand := 0; demand <= 20; demand++ {
			first, err := Classify(stock, demand, 10)
			require.NoError(t, err)
			second, err := Classify(stock, demand, 10)
			require.NoError(t, err)
			assert.Equal(t, first, second)
		}
	}
}

func Test_Classify_RejectsNegativeDemand(t *testing.T) {
	// when
	a, err := Classify(20, -1, 10)
	// then
	assert.ErrorIs(t, err, ErrNegativeDemand)
	assert.Equal(t, Assessment{}, a)
}

func Test_Classifier(t *testing.T) {
	// given
	c := NewClassifier(0)
	// when
	a, err := c.Assess(store.Product{ID: "P1", Name: "Widget", Stock: 3, DailyDemand: 5})
	// then
	require.NoError(t, err)
	assert.Equal(t, DefaultLowLimit, c.LowLimit)
	assert.Equal(t, HighRisk, a.Tier)
	assert.True(t, c.IsLowStock(9))
	assert.False(t, c.IsLowStock(10))
}
