package rates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rgehrsitz/paygo/internal/domain"
)

// stubCollection answers FindOne from documents keyed by company_id
type stubCollection struct {
	docs    map[string]bson.M
	err     error
	filters []bson.M
}

func (c *stubCollection) FindOne(_ context.Context, filter interface{}, _ ...*options.FindOneOptions) *mongo.SingleResult {
	f := filter.(bson.M)
	c.filters = append(c.filters, f)
	if c.err != nil {
		return mongo.NewSingleResultFromDocument(bson.M{}, c.err, nil)
	}
	doc, ok := c.docs[f["company_id"].(string)]
	if !ok {
		return mongo.NewSingleResultFromDocument(bson.M{}, mongo.ErrNoDocuments, nil)
	}
	return mongo.NewSingleResultFromDocument(doc, nil, nil)
}

func rateDocument(id, company string) bson.M {
	return bson.M{
		"_id":                  id,
		"company_id":           company,
		"effective_from":       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		"cnss_employee_pct":    0.0448,
		"cnss_employer_pct":    0.0898,
		"cnss_ceiling":         6000,
		"amo_employee_pct":     0.0226,
		"amo_employer_pct":     0.0411,
		"professional_tax_pct": 0.0,
		"annual_income_tax":    true,
		"income_tax_brackets": bson.A{
			bson.M{"upper_bound": 40000.0, "rate": 0.0, "cumulative_deduction": 0.0},
			bson.M{"upper_bound": 60000.0, "rate": 0.1, "cumulative_deduction": 4000.0},
			bson.M{"upper_bound": nil, "rate": 0.37, "cumulative_deduction": 27400.0},
		},
	}
}

func TestMongoStore_Resolve(t *testing.T) {
	company := rateDocument("acme-2025", "acme")
	company["cimr_employee_pct"] = 0.06
	company["professional_expenses"] = bson.M{"rate": 0.25, "monthly_cap": 2916.67}

	coll := &stubCollection{docs: map[string]bson.M{
		"":     rateDocument("ma-2025", ""),
		"acme": company,
	}}
	store := NewMongoStore(coll)

	rs, err := store.Resolve(context.Background(), NewKey("acme", day(2025, 5, 1)))
	require.NoError(t, err)
	assert.Equal(t, "acme-2025", rs.ID)
	assert.Equal(t, "0.0448", rs.CNSSEmployeePct.String())
	assert.Equal(t, "6000", rs.CNSSCeiling.String())
	require.NotNil(t, rs.CIMREmployeePct)
	assert.Equal(t, "0.06", rs.CIMREmployeePct.String())
	assert.Nil(t, rs.CIMREmployerPct)
	require.NotNil(t, rs.ProfessionalExpenses)
	assert.Equal(t, "2916.67", rs.ProfessionalExpenses.MonthlyCap.String())
	require.Len(t, rs.IncomeTaxBrackets, 3)
	assert.Nil(t, rs.IncomeTaxBrackets[2].UpperBound)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), rs.EffectiveFrom)

	require.Len(t, coll.filters, 1)
	assert.Equal(t, bson.M{"$lte": day(2025, 5, 1)}, coll.filters[0]["effective_from"])
}

func TestMongoStore_FallsBackToDefault(t *testing.T) {
	coll := &stubCollection{docs: map[string]bson.M{"": rateDocument("ma-2025", "")}}
	rs, err := NewMongoStore(coll).Resolve(context.Background(), NewKey("globex", day(2025, 5, 1)))
	require.NoError(t, err)
	assert.Equal(t, "ma-2025", rs.ID)
	assert.Len(t, coll.filters, 2)
}

func TestMongoStore_Errors(t *testing.T) {
	t.Run("no documents", func(t *testing.T) {
		store := NewMongoStore(&stubCollection{docs: map[string]bson.M{}})
		_, err := store.Resolve(context.Background(), NewKey("acme", day(2025, 5, 1)))
		assert.True(t, domain.IsRateNotFound(err))
	})

	t.Run("server error", func(t *testing.T) {
		store := NewMongoStore(&stubCollection{err: errors.New("server selection timeout")})
		_, err := store.Resolve(context.Background(), NewKey("", day(2025, 5, 1)))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to query rate set")
	})

	t.Run("invalid document", func(t *testing.T) {
		doc := rateDocument("bad", "")
		doc["amo_employer_pct"] = 4.11
		store := NewMongoStore(&stubCollection{docs: map[string]bson.M{"": doc}})
		_, err := store.Resolve(context.Background(), NewKey("", day(2025, 5, 1)))
		assert.True(t, domain.IsConfiguration(err))
	})
}
