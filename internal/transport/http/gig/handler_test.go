package gig_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skilllink/skilllink/internal/auth/token"
	"github.com/skilllink/skilllink/internal/config"
	"github.com/skilllink/skilllink/internal/entity"
	gigrepo "github.com/skilllink/skilllink/internal/repository/gig"
	service "github.com/skilllink/skilllink/internal/service/gig"
	"github.com/skilllink/skilllink/internal/storage"
	transport "github.com/skilllink/skilllink/internal/transport/http/gig"
	"github.com/skilllink/skilllink/internal/transport/http/middleware"
	"github.com/skilllink/skilllink/internal/validation"
)

type stubGigStore struct {
	gigs   map[int64]entity.Gig
	nextID int64
}

func newStubGigStore() *stubGigStore {
	return &stubGigStore{gigs: make(map[int64]entity.Gig), nextID: 1}
}

func (s *stubGigStore) Create(_ context.Context, gig *entity.Gig) error {
	gig.ID = s.nextID
	s.nextID++
	s.gigs[gig.ID] = *gig
	return nil
}

func (s *stubGigStore) GetByID(_ context.Context, id int64) (*entity.Gig, error) {
	gig, ok := s.gigs[id]
	if !ok {
		return nil, gigrepo.ErrNotFound
	}
	return &gig, nil
}

func (s *stubGigStore) List(_ context.Context, _ gigrepo.Filter) ([]*entity.Gig, error) {
	out := make([]*entity.Gig, 0)
	for id := int64(1); id < s.nextID; id++ {
		gig, ok := s.gigs[id]
		if !ok {
			continue
		}
		g := gig
		out = append(out, &g)
	}
	return out, nil
}

func (s *stubGigStore) Update(_ context.Context, gig *entity.Gig) error {
	if _, ok := s.gigs[gig.ID]; !ok {
		return gigrepo.ErrNotFound
	}
	s.gigs[gig.ID] = *gig
	return nil
}

func (s *stubGigStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.gigs[id]; !ok {
		return gigrepo.ErrNotFound
	}
	delete(s.gigs, id)
	return nil
}

type testEnv struct {
	echo        *echo.Echo
	gigs        *stubGigStore
	sellerToken string
	otherToken  string
	buyerToken  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tokens, err := token.NewManager(config.Config{
		Auth: config.Auth{JWTSecret: "test-secret", TokenTTL: time.Hour},
	})
	require.NoError(t, err)

	gigs := newStubGigStore()
	svc := service.NewService(service.Params{
		Gigs:      gigs,
		Cache:     nil,
		Artifacts: storage.NewMemoryStore(),
		Config:    config.Config{Cache: config.Cache{DefaultTTL: time.Minute}},
		Logger:    zap.NewNop(),
	})

	e := echo.New()
	v, err := validation.New()
	require.NoError(t, err)
	e.Validator = v

	transport.Register(e, transport.NewHandler(svc), middleware.NewAuthGate(tokens))

	sellerToken, err := tokens.Issue(1, "seller")
	require.NoError(t, err)
	otherToken, err := tokens.Issue(2, "seller")
	require.NoError(t, err)
	buyerToken, err := tokens.Issue(3, "buyer")
	require.NoError(t, err)

	return &testEnv{echo: e, gigs: gigs, sellerToken: sellerToken, otherToken: otherToken, buyerToken: buyerToken}
}

func (env *testEnv) doJSON(method, path, bearer string, payload any) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	if payload != nil {
		_ = json.NewEncoder(body).Encode(payload)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)
	return rec
}

var validGig = map[string]any{
	"title":       "I will design your logo",
	"description": "Vector logo with unlimited revisions and source files.",
	"price":       120,
	"category":    "design",
	"tags":        []string{"logo", "branding"},
}

func TestHandler_CreateAndGet(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodPost, "/gigs", env.sellerToken, validGig)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Data struct {
			ID       int64  `json:"id"`
			SellerID int64  `json:"sellerId"`
			Title    string `json:"title"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, int64(1), created.Data.SellerID)

	// Reads require no credentials.
	rec = env.doJSON(http.MethodGet, "/gigs/"+strconv.FormatInt(created.Data.ID, 10), "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(http.MethodGet, "/gigs", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_Create_BuyerRejected(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodPost, "/gigs", env.buyerToken, validGig)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandler_Create_Validation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodPost, "/gigs", env.sellerToken, map[string]any{
		"title":       "abc",
		"description": "too short",
		"price":       0,
		"category":    "design",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Create_WithImages(t *testing.T) {
	env := newTestEnv(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("title", "I will design your logo"))
	require.NoError(t, writer.WriteField("description", "Vector logo with unlimited revisions and source files."))
	require.NoError(t, writer.WriteField("price", "120"))
	require.NoError(t, writer.WriteField("category", "design"))
	part, err := writer.CreateFormFile("images", "cover.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/gigs", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+env.sellerToken)
	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Data struct {
			Images []string `json:"images"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Len(t, created.Data.Images, 1)
}

func TestHandler_Update_OwnerOnly(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodPost, "/gigs", env.sellerToken, validGig)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.doJSON(http.MethodPut, "/gigs/1", env.otherToken, map[string]any{"price": 999})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.doJSON(http.MethodPut, "/gigs/1", env.sellerToken, map[string]any{"price": 999})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(999), env.gigs.gigs[1].Price)
}

func TestHandler_Delete_OwnerOnly(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodPost, "/gigs", env.sellerToken, validGig)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.doJSON(http.MethodDelete, "/gigs/1", env.otherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.doJSON(http.MethodDelete, "/gigs/1", env.sellerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, env.gigs.gigs, int64(1))

	rec = env.doJSON(http.MethodGet, "/gigs/1", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
