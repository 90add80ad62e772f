package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ops-portal/internal/api/http/handlers"
	"github.com/spec-kit/ops-portal/internal/auth"
	"github.com/spec-kit/ops-portal/internal/config"
	"github.com/spec-kit/ops-portal/internal/domain"
	"github.com/spec-kit/ops-portal/internal/events"
	"github.com/spec-kit/ops-portal/internal/observability"
	"github.com/spec-kit/ops-portal/internal/persistence"
	"github.com/spec-kit/ops-portal/internal/repository/memory"
	"github.com/spec-kit/ops-portal/internal/service"
)

const testPassword = "kitchen-secret"

type testServer struct {
	app   *fiber.App
	store *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	store := memory.New()
	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 30, BcryptCost: 4}}
	dispatcher := events.NewInMemoryDispatcher(logger)
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(cfg, service.AuthDependencies{UserRepo: store.Users(), Logger: logger})
	importService := service.NewImportService(service.ImportDependencies{Store: store, Dispatcher: dispatcher, Logger: logger})
	notificationService := service.NewNotificationService(dispatcher, store.Notifications(), logger)
	notificationService.RegisterHandlers()

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health: handlers.NewHealthHandler("ops-portal", "test", &persistence.Postgres{}, nil, metrics),
		Auth:   handlers.NewAuthHandler(authService),
		Users: handlers.NewUsersHandler(service.NewDirectoryService(service.DirectoryDependencies{
			Store: store, BcryptCost: 4, Logger: logger,
		})),
		Tickets: handlers.NewTicketsHandler(service.NewTicketService(service.TicketDependencies{
			Store:      store,
			Resolver:   service.NewOwnerResolver(map[string]string{"Accommodation Issue": "E013"}),
			Dispatcher: dispatcher,
			Logger:     logger,
		})),
		Staff: handlers.NewStaffHandler(service.NewKitchenLogService(service.KitchenLogDependencies{
			Store: store, Dispatcher: dispatcher, Logger: logger,
		}), importService),
		Photos:         handlers.NewPhotosHandler(service.NewOrderPhotoService(service.OrderPhotoDependencies{Store: store, Logger: logger})),
		Imports:        handlers.NewImportsHandler(importService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), store),
	})
	return &testServer{app: app, store: store}
}

func (s *testServer) addUser(t *testing.T, employeeID string, role domain.Role, locationID *string) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(testPassword, 4)
	require.NoError(t, err)
	user := &domain.User{
		EmployeeID:   employeeID,
		Username:     employeeID,
		FullName:     employeeID + " User",
		Role:         role,
		LocationID:   locationID,
		PasswordHash: hash,
		Active:       true,
	}
	require.NoError(t, s.store.Users().Create(context.Background(), user))
	return user
}

func (s *testServer) do(t *testing.T, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp.StatusCode, decoded
}

func (s *testServer) login(t *testing.T, employeeID string) string {
	t.Helper()
	status, body := s.do(t, fiber.MethodPost, "/api/v1/auth/login", "",
		`{"employee_id":"`+employeeID+`","password":"`+testPassword+`"}`)
	require.Equal(t, fiber.StatusOK, status, body)
	return body["data"].(map[string]any)["token"].(string)
}

func errorCode(body map[string]any) string {
	errBody, _ := body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func TestRoutes_TicketFlow(t *testing.T) {
	s := newTestServer(t)
	location := &domain.Location{Code: "KA", Name: "Koramangala"}
	require.NoError(t, s.store.Locations().Create(context.Background(), location))
	s.addUser(t, "S100", domain.RoleKitchenStaff, &location.ID)
	s.addUser(t, "E013", domain.RoleOwner, nil)

	staffToken := s.login(t, "S100")
	status, body := s.do(t, fiber.MethodPost, "/api/v1/tickets", staffToken, `{"concern":"Accommodation Issue"}`)
	require.Equal(t, fiber.StatusCreated, status, body)
	ticket := body["data"].(map[string]any)
	assert.Equal(t, "TIK-00001", ticket["number"])
	assert.Equal(t, string(domain.TicketStatusAssigned), ticket["status"])
	ticketID := ticket["id"].(string)

	ownerToken := s.login(t, "E013")
	status, body = s.do(t, fiber.MethodPost, "/api/v1/tickets/"+ticketID+"/resolve", ownerToken, `{"remarks":"fixed"}`)
	require.Equal(t, fiber.StatusOK, status, body)

	status, body = s.do(t, fiber.MethodPost, "/api/v1/tickets/"+ticketID+"/confirm", staffToken, "")
	require.Equal(t, fiber.StatusOK, status, body)
	result := body["data"].(map[string]any)
	assert.Equal(t, false, result["already_done"])
	assert.Equal(t, string(domain.TicketStatusClosed), result["ticket"].(map[string]any)["status"])

	status, body = s.do(t, fiber.MethodGet, "/api/v1/notifications", ownerToken, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["data"], 2)
}

func TestRoutes_Errors(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "S100", domain.RoleKitchenStaff, nil)

	status, body := s.do(t, fiber.MethodGet, "/api/v1/tickets", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))

	status, body = s.do(t, fiber.MethodPost, "/api/v1/auth/login", "", `{"employee_id":"S100","password":"wrong-password"}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))

	status, body = s.do(t, fiber.MethodPost, "/api/v1/auth/login", "", `{"employee_id":"S100"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	token := s.login(t, "S100")
	status, body = s.do(t, fiber.MethodPost, "/api/v1/users", token, `{}`)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	status, body = s.do(t, fiber.MethodGet, "/api/v1/tickets/00000000-0000-0000-0000-000000000000", token, "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	for _, path := range []string{
		"/api/v1/tickets/not-a-uuid",
	} {
		status, body = s.do(t, fiber.MethodGet, path, token, "")
		assert.Equal(t, fiber.StatusNotFound, status, path)
		assert.Equal(t, "NOT_FOUND", errorCode(body), path)
	}
	for _, path := range []string{
		"/api/v1/tickets/not-a-uuid/close",
		"/api/v1/kitchen-logs/42/acknowledge",
		"/api/v1/notifications/abc/read",
	} {
		status, body = s.do(t, fiber.MethodPost, path, token, "")
		assert.Equal(t, fiber.StatusNotFound, status, path)
		assert.Equal(t, "NOT_FOUND", errorCode(body), path)
	}

	status, body = s.do(t, fiber.MethodGet, "/nowhere", "", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestRoutes_Health(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, fiber.MethodGet, "/health/live", "", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = s.do(t, fiber.MethodGet, "/health/ready", "", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, map[string]any{"postgres": "in-memory", "redis": "disabled"}, body["dependencies"])
}
