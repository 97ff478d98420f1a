package rates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rgehrsitz/paygo/internal/domain"
)

// mongoFinder is the subset of *mongo.Collection the store needs
type mongoFinder interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
}

// MongoStore resolves RateSets from a MongoDB collection, one document per set
type MongoStore struct {
	coll mongoFinder
}

// NewMongoStore wraps a collection
func NewMongoStore(coll mongoFinder) *MongoStore {
	return &MongoStore{coll: coll}
}

// OpenMongoStore connects to uri and returns a store over database.collection
func OpenMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, func(), error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to reach mongo: %w", err)
	}
	closeFn := func() { _ = client.Disconnect(context.Background()) }
	return NewMongoStore(client.Database(database).Collection(collection)), closeFn, nil
}

type mongoBracket struct {
	UpperBound          *float64 `bson:"upper_bound"`
	Rate                float64  `bson:"rate"`
	CumulativeDeduction float64  `bson:"cumulative_deduction"`
}

type mongoExpenseRule struct {
	Rate       float64 `bson:"rate"`
	MonthlyCap float64 `bson:"monthly_cap"`
}

type mongoRateSet struct {
	ID                   string            `bson:"_id"`
	Description          string            `bson:"description"`
	CompanyID            string            `bson:"company_id"`
	EffectiveFrom        time.Time         `bson:"effective_from"`
	CNSSEmployeePct      float64           `bson:"cnss_employee_pct"`
	CNSSEmployerPct      float64           `bson:"cnss_employer_pct"`
	CNSSCeiling          float64           `bson:"cnss_ceiling"`
	AMOEmployeePct       float64           `bson:"amo_employee_pct"`
	AMOEmployerPct       float64           `bson:"amo_employer_pct"`
	CIMREmployeePct      *float64          `bson:"cimr_employee_pct,omitempty"`
	CIMREmployerPct      *float64          `bson:"cimr_employer_pct,omitempty"`
	ProfessionalTaxPct   float64           `bson:"professional_tax_pct"`
	IncomeTaxBrackets    []mongoBracket    `bson:"income_tax_brackets"`
	AnnualIncomeTax      bool              `bson:"annual_income_tax"`
	ProfessionalExpenses *mongoExpenseRule `bson:"professional_expenses,omitempty"`
	DeductionsPreTax     bool              `bson:"deductions_pre_tax"`
	StandardMonthlyHours float64           `bson:"standard_monthly_hours"`
	DefaultOvertimeRate  float64           `bson:"default_overtime_rate"`
}

// Resolve returns the latest document in force for the key's company, falling
// back to documents with an empty company_id.
func (s *MongoStore) Resolve(ctx context.Context, key Key) (*domain.RateSet, error) {
	doc, err := s.findLatest(ctx, key.CompanyID, key.EffectiveDate)
	if errors.Is(err, mongo.ErrNoDocuments) && key.CompanyID != "" {
		doc, err = s.findLatest(ctx, "", key.EffectiveDate)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query rate set: %w", err)
	}

	rs := doc.toDomain()
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return rs, nil
}

func (s *MongoStore) findLatest(ctx context.Context, companyID string, date time.Time) (*mongoRateSet, error) {
	filter := bson.M{
		"company_id":     companyID,
		"effective_from": bson.M{"$lte": date},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "effective_from", Value: -1}})

	var doc mongoRateSet
	if err := s.coll.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *mongoRateSet) toDomain() *domain.RateSet {
	rs := &domain.RateSet{
		ID:                   d.ID,
		Description:          d.Description,
		CompanyID:            d.CompanyID,
		EffectiveFrom:        d.EffectiveFrom.UTC(),
		CNSSEmployeePct:      floatAmount(d.CNSSEmployeePct),
		CNSSEmployerPct:      floatAmount(d.CNSSEmployerPct),
		CNSSCeiling:          floatAmount(d.CNSSCeiling),
		AMOEmployeePct:       floatAmount(d.AMOEmployeePct),
		AMOEmployerPct:       floatAmount(d.AMOEmployerPct),
		CIMREmployeePct:      floatAmountPtr(d.CIMREmployeePct),
		CIMREmployerPct:      floatAmountPtr(d.CIMREmployerPct),
		ProfessionalTaxPct:   floatAmount(d.ProfessionalTaxPct),
		AnnualIncomeTax:      d.AnnualIncomeTax,
		DeductionsPreTax:     d.DeductionsPreTax,
		StandardMonthlyHours: floatAmount(d.StandardMonthlyHours),
		DefaultOvertimeRate:  floatAmount(d.DefaultOvertimeRate),
	}
	for _, b := range d.IncomeTaxBrackets {
		rs.IncomeTaxBrackets = append(rs.IncomeTaxBrackets, domain.TaxBracket{
			UpperBound:          floatAmountPtr(b.UpperBound),
			Rate:                floatAmount(b.Rate),
			CumulativeDeduction: floatAmount(b.CumulativeDeduction),
		})
	}
	if d.ProfessionalExpenses != nil {
		rs.ProfessionalExpenses = &domain.ProfessionalExpenseRule{
			Rate:       floatAmount(d.ProfessionalExpenses.Rate),
			MonthlyCap: floatAmount(d.ProfessionalExpenses.MonthlyCap),
		}
	}
	return rs
}

// Documents store doubles; NewFromFloat keeps the shortest representation so 0.0448
// comes back as exactly 0.0448.
func floatAmount(f float64) domain.Amount {
	return domain.NewAmount(decimal.NewFromFloat(f))
}

func floatAmountPtr(f *float64) *domain.Amount {
	if f == nil {
		return nil
	}
	a := floatAmount(*f)
	return &a
}
