package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/smallpress/folio/internal/catalog/domain"
	divisiondomain "github.com/smallpress/folio/internal/division/domain"
	platformdomain "github.com/smallpress/folio/internal/platform/domain"
	pricingdomain "github.com/smallpress/folio/internal/pricing/domain"
	royaltydomain "github.com/smallpress/folio/internal/royalty/domain"
	"github.com/stretchr/testify/assert"
)

type fakeRegistry struct {
	platforms []*platformdomain.Platform
}

func (f *fakeRegistry) List(ctx context.Context) ([]*platformdomain.Platform, error) {
	return f.platforms, nil
}

func (f *fakeRegistry) IsEbook(ctx context.Context, name string) (bool, error) {
	return false, platformdomain.ErrNotFound
}

func (f *fakeRegistry) ClassifyByID(ctx context.Context, ids []int64) (map[int64]bool, error) {
	return map[int64]bool{}, nil
}

type fakeCatalogService struct {
	createErr error
	getErr    error
	detail    catalogdomain.TitleDetail
}

func (f *fakeCatalogService) CreateTitle(ctx context.Context, req catalogdomain.CreateTitleRequest) (catalogdomain.TitleDetail, error) {
	if f.createErr != nil {
		return catalogdomain.TitleDetail{}, f.createErr
	}
	return f.detail, nil
}

func (f *fakeCatalogService) ListTitles(ctx context.Context, req catalogdomain.ListTitleRequest) (catalogdomain.ListTitleResponse, error) {
	return catalogdomain.ListTitleResponse{}, nil
}

func (f *fakeCatalogService) GetTitle(ctx context.Context, id string) (catalogdomain.TitleDetail, error) {
	if f.getErr != nil {
		return catalogdomain.TitleDetail{}, f.getErr
	}
	return f.detail, nil
}

type fakePricingService struct {
	upsertErr error
	lastReq   pricingdomain.UpsertPricingRequest
}

func (f *fakePricingService) EntriesForTitle(ctx context.Context, titleID int64) ([]pricingdomain.PricingEntry, error) {
	return nil, nil
}

func (f *fakePricingService) PrintingCostFor(ctx context.Context, titleID int64) (*pricingdomain.PrintingCost, error) {
	return nil, nil
}

func (f *fakePricingService) Upsert(ctx context.Context, req pricingdomain.UpsertPricingRequest) error {
	f.lastReq = req
	return f.upsertErr
}

type fakeRoyaltyService struct {
	setErr  error
	lastReq royaltydomain.SetAuthorShareRequest
	view    royaltydomain.AllocationView
}

func (f *fakeRoyaltyService) SetAuthorShare(ctx context.Context, req royaltydomain.SetAuthorShareRequest) (royaltydomain.AllocationView, error) {
	f.lastReq = req
	if f.setErr != nil {
		return royaltydomain.AllocationView{}, f.setErr
	}
	return f.view, nil
}

func (f *fakeRoyaltyService) View(ctx context.Context, titleID string) (royaltydomain.AllocationView, error) {
	return f.view, nil
}

func (f *fakeRoyaltyService) Amounts(ctx context.Context, titleID string) ([]royaltydomain.AmountLine, error) {
	return nil, nil
}

type fakeDivisionService struct {
	lastReq divisiondomain.Request
	resp    divisiondomain.Response
}

func (f *fakeDivisionService) Calculate(ctx context.Context, req divisiondomain.Request) (divisiondomain.Response, error) {
	f.lastReq = req
	return f.resp, nil
}

type serverFixture struct {
	engine   *gin.Engine
	royalty  *fakeRoyaltyService
	pricing  *fakePricingService
	catalog  *fakeCatalogService
	division *fakeDivisionService
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &serverFixture{
		engine:   gin.New(),
		royalty:  &fakeRoyaltyService{},
		pricing:  &fakePricingService{},
		catalog:  &fakeCatalogService{},
		division: &fakeDivisionService{},
	}
	f.engine.Use(ErrorHandlingMiddleware())

	s := &Server{
		engine:      f.engine,
		registry:    &fakeRegistry{},
		catalogSvc:  f.catalog,
		pricingSvc:  f.pricing,
		royaltySvc:  f.royalty,
		divisionSvc: f.division,
	}
	s.RegisterAPIRoutes()
	return f
}

func (f *serverFixture) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestSetAuthorShare_Handler(t *testing.T) {
	f := newServerFixture(t)
	f.royalty.view = royaltydomain.AllocationView{
		TitleID: 7,
		Totals:  map[string]int{"Amazon": 100},
	}

	w := f.do(http.MethodPut, "/api/v1/titles/7/royalties/authors/9", gin.H{"percentage": 60})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "7", f.royalty.lastReq.TitleID)
	assert.Equal(t, "9", f.royalty.lastReq.AuthorID)
	assert.Equal(t, 60.0, f.royalty.lastReq.Percentage)

	var resp struct {
		Data royaltydomain.AllocationView `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.Data.TitleID)
}

func TestSetAuthorShare_MissingPercentage(t *testing.T) {
	f := newServerFixture(t)

	w := f.do(http.MethodPut, "/api/v1/titles/7/royalties/authors/9", gin.H{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "missing_percentage")
}

func TestSetAuthorShare_DomainErrorsMapped(t *testing.T) {
	f := newServerFixture(t)

	f.royalty.setErr = royaltydomain.ErrInvalidPercentage
	w := f.do(http.MethodPut, "/api/v1/titles/7/royalties/authors/9", gin.H{"percentage": 150})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.royalty.setErr = royaltydomain.ErrTitleNotFound
	w = f.do(http.MethodPut, "/api/v1/titles/7/royalties/authors/9", gin.H{"percentage": 50})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateTitle_Handler(t *testing.T) {
	f := newServerFixture(t)

	w := f.do(http.MethodPost, "/api/v1/titles", gin.H{
		"name":      "A Field Guide",
		"publisher": "Small Press",
		"authors":   []string{"First Author"},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	f.catalog.createErr = catalogdomain.ErrNoAuthors
	w = f.do(http.MethodPost, "/api/v1/titles", gin.H{"name": "No Authors"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.catalog.createErr = catalogdomain.ErrDuplicateSlug
	w = f.do(http.MethodPost, "/api/v1/titles", gin.H{
		"name": "A Field Guide", "authors": []string{"First Author"},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetTitle_NotFound(t *testing.T) {
	f := newServerFixture(t)
	f.catalog.getErr = catalogdomain.ErrNotFound

	w := f.do(http.MethodGet, "/api/v1/titles/123", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not_found")
}

func TestUpsertPricing_Handler(t *testing.T) {
	f := newServerFixture(t)

	w := f.do(http.MethodPut, "/api/v1/titles/42/pricing", gin.H{
		"entries": []gin.H{
			{"platformName": " Amazon ", "salesPrice": 100.0},
		},
		"printCost": 40.0,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "42", f.pricing.lastReq.TitleID)
	assert.Len(t, f.pricing.lastReq.Entries, 1)
	assert.Equal(t, "Amazon", f.pricing.lastReq.Entries[0].PlatformName)
	assert.NotNil(t, f.pricing.lastReq.PrintCost)

	f.pricing.upsertErr = pricingdomain.ErrNegativePrice
	w = f.do(http.MethodPut, "/api/v1/titles/42/pricing", gin.H{
		"entries": []gin.H{{"platformName": "Amazon", "salesPrice": -1.0}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCalculateDivision_Handler(t *testing.T) {
	f := newServerFixture(t)
	f.division.resp = divisiondomain.Response{
		DivisionValue: []divisiondomain.ItemResult{
			{PlatformID: 1, DivisionValue: map[string]float64{"50": 30}},
		},
	}

	w := f.do(http.MethodPost, "/api/v1/royalty-calculator", gin.H{
		"printingPrice": 40,
		"items": []gin.H{
			{"platformId": 1, "price": 100, "division": []string{"50"}},
		},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 40.0, f.division.lastReq.PrintingPrice)

	var resp divisiondomain.Response
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.DivisionValue, 1)
	assert.Equal(t, 30.0, resp.DivisionValue[0].DivisionValue["50"])
}

func TestMalformedJSONRejected(t *testing.T) {
	f := newServerFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/titles", bytes.NewBufferString("{nope"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_request")
}
