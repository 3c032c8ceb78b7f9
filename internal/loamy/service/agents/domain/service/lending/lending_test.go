package lending

import (
	"context"
	"errors"
	"testing"

	"github.com/kiosk404/loamy/internal/loamy/service/agents/domain/entity"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/store/inmemory"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/store/seed"
	"github.com/kiosk404/loamy/internal/loamy/service/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type letter struct {
	customer string
	amount   float64
}

type fakeDocuments struct {
	letters []letter
	err     error
}

func (f *fakeDocuments) SanctionLetter(_ context.Context, customer string, amount float64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.letters = append(f.letters, letter{customer, amount})
	return "/static/sanction_" + customer + ".html", nil
}

type brokenRepo struct{}

func (brokenRepo) Get(context.Context, string) (*entity.Customer, error) {
	return nil, errors.New("database is locked")
}

func (brokenRepo) List(context.Context) ([]*entity.Customer, error) {
	return nil, errors.New("database is locked")
}

func (brokenRepo) Upsert(context.Context, *entity.Customer) error {
	return errors.New("database is locked")
}

func newTools(t *testing.T) (*Tools, *fakeDocuments) {
	t.Helper()
	store := inmemory.NewCustomerStore()
	require.NoError(t, seed.Load(context.Background(), store))
	docs := &fakeDocuments{}
	return New(store, docs), docs
}

func TestVerifyStatus(t *testing.T) {
	lt, _ := newTools(t)
	ctx := context.Background()

	res, err := lt.VerifyStatus(ctx, tools.Arguments{paramCustomerName: "alice"})
	require.NoError(t, err)
	assert.Equal(t, &entity.StatusResult{Status: entity.StatusVerified}, res)

	res, err = lt.VerifyStatus(ctx, tools.Arguments{paramCustomerName: "Bob"})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, res.(*entity.StatusResult).Status)

	res, err = lt.VerifyStatus(ctx, tools.Arguments{paramCustomerName: "zed"})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusNotFound, res.(*entity.StatusResult).Status)
}

func TestEvaluateEligibility(t *testing.T) {
	lt, _ := newTools(t)
	ctx := context.Background()

	res, err := lt.EvaluateEligibility(ctx, tools.Arguments{paramCustomerName: "charlie"})
	require.NoError(t, err)
	assert.Equal(t, &entity.EligibilityResult{Score: 550, Limit: 10000}, res)

	res, err = lt.EvaluateEligibility(ctx, tools.Arguments{paramCustomerName: "zed"})
	require.NoError(t, err)
	assert.True(t, res.(*entity.EligibilityResult).NotFound)
}

func TestGenerateDocument(t *testing.T) {
	lt, docs := newTools(t)
	ctx := context.Background()

	res, err := lt.GenerateDocument(ctx, tools.Arguments{paramCustomerName: "alice", paramAmount: 20000.0})
	require.NoError(t, err)
	doc := res.(*entity.DocumentResult)
	assert.Equal(t, "/static/sanction_Alice.html", doc.ArtifactLink)
	assert.Equal(t, 20000.0, doc.Amount)

	// Amounts above the limit are capped.
	res, err = lt.GenerateDocument(ctx, tools.Arguments{paramCustomerName: "david", paramAmount: 20000.0})
	require.NoError(t, err)
	assert.Equal(t, 15000.0, res.(*entity.DocumentResult).Amount)
	assert.Equal(t, []letter{{"Alice", 20000}, {"David", 15000}}, docs.letters)

	_, err = lt.GenerateDocument(ctx, tools.Arguments{paramCustomerName: "alice", paramAmount: 0.0})
	assert.Error(t, err)
	_, err = lt.GenerateDocument(ctx, tools.Arguments{paramCustomerName: "zed", paramAmount: 100.0})
	assert.Error(t, err)
	_, err = lt.GenerateDocument(ctx, tools.Arguments{paramCustomerName: "bob", paramAmount: 100.0})
	assert.Error(t, err)
	assert.Len(t, docs.letters, 2)

	docs.err = errors.New("disk full")
	_, err = lt.GenerateDocument(ctx, tools.Arguments{paramCustomerName: "alice", paramAmount: 100.0})
	assert.EqualError(t, err, "disk full")
}

func TestStoreFailureSurfaces(t *testing.T) {
	lt := New(brokenRepo{}, &fakeDocuments{})
	_, err := lt.VerifyStatus(context.Background(), tools.Arguments{paramCustomerName: "alice"})
	assert.EqualError(t, err, "database is locked")
}

func TestRegister(t *testing.T) {
	lt, _ := newTools(t)
	r := tools.NewRegistry()
	require.NoError(t, lt.Register(r))
	assert.Equal(t, 3, r.Len())

	catalog := r.DescribeAll()
	assert.Equal(t, entity.ToolVerifyStatus, catalog[0].Name)
	assert.Equal(t, entity.ToolGenerateDocument, catalog[2].Name)

	// Registering twice is rejected.
	assert.Error(t, lt.Register(r))
}
