package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task_backend/internal/feature/user/domain/entity"
	"task_backend/internal/feature/user/usecase"
)

// mockUserUsecase is a mock implementation of UserUsecase.
type mockUserUsecase struct {
	RegisterFunc func(ctx context.Context, email, password, name string) (*entity.User, error)
	ListFunc     func(ctx context.Context) ([]entity.User, error)
	GetByIDFunc  func(ctx context.Context, id uint) (*entity.User, error)
	UpdateFunc   func(ctx context.Context, id uint, patch usecase.UserPatch) (*entity.User, error)
	DeleteFunc   func(ctx context.Context, id uint) error
}

func (m *mockUserUsecase) Register(ctx context.Context, email, password, name string) (*entity.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, email, password, name)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserUsecase) List(ctx context.Context) ([]entity.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *mockUserUsecase) GetByID(ctx context.Context, id uint) (*entity.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, usecase.ErrUserNotFound
}

func (m *mockUserUsecase) Update(ctx context.Context, id uint, patch usecase.UserPatch) (*entity.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, patch)
	}
	return nil, usecase.ErrUserNotFound
}

func (m *mockUserUsecase) Delete(ctx context.Context, id uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return usecase.ErrUserNotFound
}

func newUserRouter(uc UserUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewUserHandler(uc)
	r := gin.New()
	r.POST("/users", h.Create)
	r.GET("/users", h.List)
	r.GET("/users/:id", h.Get)
	r.PUT("/users/:id", h.Update)
	r.DELETE("/users/:id", h.Delete)
	return r
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUserHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           gin.H
		register       func(ctx context.Context, email, password, name string) (*entity.User, error)
		expectedStatus int
		expectedError  string
	}{
		{
			name: "success: returns user without password",
			body: gin.H{"email": "a@x.com", "password": "pw", "name": "A"},
			register: func(ctx context.Context, email, password, name string) (*entity.User, error) {
				return &entity.User{ID: 1, Email: email, Name: name, Password: "hashed", Active: true}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "failure: missing name",
			body:           gin.H{"email": "a@x.com", "password": "pw"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid request",
		},
		{
			name: "failure: duplicate email",
			body: gin.H{"email": "a@x.com", "password": "pw", "name": "A"},
			register: func(ctx context.Context, email, password, name string) (*entity.User, error) {
				return nil, usecase.ErrEmailAlreadyExists
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "email already exists",
		},
		{
			name: "failure: internal error is not leaked",
			body: gin.H{"email": "a@x.com", "password": "pw", "name": "A"},
			register: func(ctx context.Context, email, password, name string) (*entity.User, error) {
				return nil, errors.New("pq: connection reset")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newUserRouter(&mockUserUsecase{RegisterFunc: tt.register})

			w := doJSON(r, http.MethodPost, "/users", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, body["error"])
				return
			}
			assert.Equal(t, float64(1), body["id"])
			assert.Equal(t, "a@x.com", body["email"])
			assert.Equal(t, true, body["active"])
			assert.NotContains(t, body, "password")
		})
	}
}

func TestUserHandler_List(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r := newUserRouter(&mockUserUsecase{
			ListFunc: func(ctx context.Context) ([]entity.User, error) {
				return []entity.User{{ID: 1, Email: "a@x.com"}, {ID: 2, Email: "b@x.com"}}, nil
			},
		})

		w := doJSON(r, http.MethodGet, "/users", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var body []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Len(t, body, 2)
	})

	t.Run("empty list is an empty array", func(t *testing.T) {
		r := newUserRouter(&mockUserUsecase{})

		w := doJSON(r, http.MethodGet, "/users", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})

	t.Run("failure", func(t *testing.T) {
		r := newUserRouter(&mockUserUsecase{
			ListFunc: func(ctx context.Context) ([]entity.User, error) { return nil, errors.New("db") },
		})

		w := doJSON(r, http.MethodGet, "/users", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestUserHandler_Get(t *testing.T) {
	r := newUserRouter(&mockUserUsecase{
		GetByIDFunc: func(ctx context.Context, id uint) (*entity.User, error) {
			if id == 1 {
				return &entity.User{ID: 1, Email: "a@x.com"}, nil
			}
			return nil, usecase.ErrUserNotFound
		},
	})

	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{"found", "/users/1", http.StatusOK},
		{"not found", "/users/2", http.StatusNotFound},
		{"invalid id", "/users/abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

// TestUserHandler_Update は未指定の項目がnilのままユースケースに渡されることを検証します。
func TestUserHandler_Update(t *testing.T) {
	t.Run("only supplied fields are passed", func(t *testing.T) {
		var got usecase.UserPatch
		r := newUserRouter(&mockUserUsecase{
			UpdateFunc: func(ctx context.Context, id uint, patch usecase.UserPatch) (*entity.User, error) {
				got = patch
				return &entity.User{ID: id, Name: *patch.Name}, nil
			},
		})

		w := doJSON(r, http.MethodPut, "/users/1", gin.H{"name": "B"})

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, got.Name)
		assert.Equal(t, "B", *got.Name)
		assert.Nil(t, got.Password)
	})

	t.Run("not found", func(t *testing.T) {
		r := newUserRouter(&mockUserUsecase{})

		w := doJSON(r, http.MethodPut, "/users/9", gin.H{"name": "B"})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("empty body is an empty patch", func(t *testing.T) {
		var got usecase.UserPatch
		called := false
		r := newUserRouter(&mockUserUsecase{
			UpdateFunc: func(ctx context.Context, id uint, patch usecase.UserPatch) (*entity.User, error) {
				called = true
				got = patch
				return &entity.User{ID: id, Email: "a@x.com", Name: "A"}, nil
			},
		})

		req := httptest.NewRequest(http.MethodPut, "/users/1", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, called)
		assert.Nil(t, got.Name)
		assert.Nil(t, got.Password)
		assert.Contains(t, w.Body.String(), `"name":"A"`)
	})

	t.Run("malformed body", func(t *testing.T) {
		r := newUserRouter(&mockUserUsecase{})

		req := httptest.NewRequest(http.MethodPut, "/users/1", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUserHandler_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r := newUserRouter(&mockUserUsecase{
			DeleteFunc: func(ctx context.Context, id uint) error { return nil },
		})

		w := doJSON(r, http.MethodDelete, "/users/1", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"user deleted successfully"}`, w.Body.String())
	})

	t.Run("not found", func(t *testing.T) {
		r := newUserRouter(&mockUserUsecase{})

		w := doJSON(r, http.MethodDelete, "/users/1", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"user not found"}`, w.Body.String())
	})
}
