package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/labinv/internal/config"
	"github.com/scienceol/labinv/pkg/common/code"
	"github.com/scienceol/labinv/pkg/middleware/db/dbtest"
	"github.com/scienceol/labinv/pkg/repo/migrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminEmail = "admin@lab.test"

type envelope struct {
	Code  code.ErrCode    `json:"code"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Msg string `json:"msg"`
	} `json:"error"`
}

type server struct {
	t *testing.T
	g *gin.Engine
}

func newServer(t *testing.T) *server {
	gin.SetMode(gin.TestMode)
	ds := dbtest.Open(t, migrate.Models()...)
	conf := *config.Global()
	conf.Auth.BootstrapAdminEmail = adminEmail
	svc, err := NewServices(context.Background(), ds, nil, &conf)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close(context.Background()) })

	g := gin.New()
	NewRouter(g, svc)
	return &server{t: t, g: g}
}

func (s *server) do(method, path, token string, body any) (*httptest.ResponseRecorder, *envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(s.t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.g.ServeHTTP(w, req)

	env := &envelope{}
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), env))
	}
	return w, env
}

// ok performs the call, requires success and decodes data into out.
func (s *server) ok(method, path, token string, body, out any) {
	s.t.Helper()
	w, env := s.do(method, path, token, body)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(s.t, code.Success, env.Code)
	if out != nil {
		require.NoError(s.t, json.Unmarshal(env.Data, out))
	}
}

type token struct {
	AccessToken string `json:"access_token"`
	User        struct {
		UUID string `json:"uuid"`
		Role string `json:"role"`
	} `json:"user"`
}

func (s *server) register(email, name string) *token {
	tk := &token{}
	s.ok(http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email": email, "password": "s3cret-pass", "full_name": name,
	}, tk)
	return tk
}

func (s *server) login(email string) *token {
	tk := &token{}
	s.ok(http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email": email, "password": "s3cret-pass",
	}, tk)
	return tk
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	w, _ := s.do(http.MethodGet, "/api/health/live", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLifecycleOverHTTP(t *testing.T) {
	s := newServer(t)

	admin := s.register(adminEmail, "Admin")
	assert.Equal(t, "admin", admin.User.Role)
	rao := s.register("rao@lab.test", "Dr. Rao")
	assert.Equal(t, "student", rao.User.Role)
	sam := s.register("sam@lab.test", "Sam")

	s.ok(http.MethodPut, "/api/v1/users/"+rao.User.UUID+"/role", admin.AccessToken,
		map[string]any{"role": "faculty"}, nil)
	rao = s.login("rao@lab.test")
	assert.Equal(t, "faculty", rao.User.Role)

	var faculty []map[string]any
	s.ok(http.MethodGet, "/api/v1/users/faculty", sam.AccessToken, nil, &faculty)
	assert.Len(t, faculty, 2)

	var item struct {
		Item struct {
			UUID            string  `json:"uuid"`
			AvailableWeight float64 `json:"available_weight"`
		} `json:"item"`
	}
	s.ok(http.MethodPost, "/api/v1/inventory/chemical", rao.AccessToken,
		`{"name":"Ethanol","unit":"ml","total_weight":100}`, &item)
	assert.Equal(t, 100.0, item.Item.AvailableWeight)

	var req struct {
		UUID   string `json:"uuid"`
		Status string `json:"status"`
	}
	s.ok(http.MethodPost, "/api/v1/requests", sam.AccessToken, map[string]any{
		"faculty_uuid": rao.User.UUID,
		"purpose":      "titration",
		"items": []map[string]any{
			{"item_type": "chemical", "item_uuid": item.Item.UUID, "total_weight_requested": 30},
		},
	}, &req)
	assert.Equal(t, "pending", req.Status)

	w, env := s.do(http.MethodPost, "/api/v1/requests/"+req.UUID+"/approve", sam.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, code.PermissionDenied, env.Code)

	s.ok(http.MethodPost, "/api/v1/requests/"+req.UUID+"/approve", rao.AccessToken,
		map[string]any{"note": "ok"}, &req)
	assert.Equal(t, "approved", req.Status)

	var issued struct {
		Items []struct {
			UUID string `json:"uuid"`
		} `json:"items"`
	}
	s.ok(http.MethodPost, "/api/v1/requests/"+req.UUID+"/issue", rao.AccessToken, nil, &issued)
	require.Len(t, issued.Items, 1)

	w, env = s.do(http.MethodPost, "/api/v1/requests/"+req.UUID+"/issue", rao.AccessToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, code.RequestAlreadyIssued, env.Code)

	s.ok(http.MethodGet, "/api/v1/inventory/chemical/"+item.Item.UUID, sam.AccessToken, nil, &item)
	assert.Equal(t, 70.0, item.Item.AvailableWeight)

	var mine struct {
		Total int64 `json:"total"`
		Data  []struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	s.ok(http.MethodGet, "/api/v1/issued", sam.AccessToken, nil, &mine)
	require.EqualValues(t, 1, mine.Total)
	assert.Equal(t, "issued", mine.Data[0].Status)

	var returned struct {
		Status string `json:"status"`
	}
	s.ok(http.MethodPost, "/api/v1/issued/"+issued.Items[0].UUID+"/return", rao.AccessToken, nil, &returned)
	assert.Equal(t, "returned", returned.Status)

	var logs struct {
		Total int64 `json:"total"`
	}
	s.ok(http.MethodGet, "/api/v1/activity", admin.AccessToken, nil, &logs)
	assert.GreaterOrEqual(t, logs.Total, int64(5))
}

func TestRoutingAndRejections(t *testing.T) {
	s := newServer(t)
	admin := s.register(adminEmail, "Admin")
	sam := s.register("sam@lab.test", "Sam")

	w, env := s.do(http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, code.UnLogin, env.Code)

	var me struct {
		Email string `json:"email"`
	}
	s.ok(http.MethodGet, "/api/v1/auth/me", sam.AccessToken, nil, &me)
	assert.Equal(t, "sam@lab.test", me.Email)

	w, env = s.do(http.MethodGet, "/api/v1/requests/not-a-uuid", sam.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, code.ParamErr, env.Code)

	w, env = s.do(http.MethodPost, "/api/v1/requests", sam.AccessToken, map[string]any{
		"faculty_uuid": admin.User.UUID,
		"items": []map[string]any{
			{"item_type": "reagent", "item_uuid": admin.User.UUID, "quantity": 1},
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, code.ParamErr, env.Code)

	w, env = s.do(http.MethodPost, "/api/v1/inventory/glassware", sam.AccessToken, `{"name":"beaker","total_quantity":2}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, code.PermissionDenied, env.Code)

	var glass struct {
		Item struct {
			UUID string `json:"uuid"`
		} `json:"item"`
	}
	s.ok(http.MethodPost, "/api/v1/inventory/glassware", admin.AccessToken, `{"name":"beaker","total_quantity":2}`, &glass)

	w, _ = s.do(http.MethodPatch, "/api/v1/inventory/glassware/"+glass.Item.UUID+"/adjust", sam.AccessToken,
		map[string]any{"available": 1})
	assert.Equal(t, http.StatusForbidden, w.Code)
	s.ok(http.MethodPatch, "/api/v1/inventory/glassware/"+glass.Item.UUID+"/adjust", admin.AccessToken,
		map[string]any{"available": 0, "reason": "broken"}, nil)

	var low []map[string]any
	s.ok(http.MethodGet, "/api/v1/inventory/low-stock", sam.AccessToken, nil, &low)
	assert.Len(t, low, 1)

	var list struct {
		Total int64 `json:"total"`
	}
	s.ok(http.MethodGet, "/api/v1/inventory/chemical", sam.AccessToken, nil, &list)
	assert.Zero(t, list.Total)

	w, env = s.do(http.MethodGet, "/api/v1/inventory/reagent", sam.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, code.InvalidItemType, env.Code)

	w, _ = s.do(http.MethodGet, "/api/v1/inventory/glassware/export", admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	w, _ = s.do(http.MethodDelete, "/api/v1/activity?older_than=720h", sam.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	s.ok(http.MethodDelete, "/api/v1/activity?older_than=720h", admin.AccessToken, nil, nil)
}
