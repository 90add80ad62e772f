package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ops-portal/internal/api/dto"
	"github.com/spec-kit/ops-portal/internal/domain"
	"github.com/spec-kit/ops-portal/internal/service"
)

// UsersHandler exposes the directory: accounts, locations and territories.
type UsersHandler struct {
	directory *service.DirectoryService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(directory *service.DirectoryService) *UsersHandler {
	return &UsersHandler{directory: directory}
}

// CreateUser POST /users.
func (h *UsersHandler) CreateUser(c *fiber.Ctx) error {
	actor, err := subject(c)
	if err != nil {
		return err
	}
	var req dto.CreateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.directory.CreateUser(c.UserContext(), actor, service.CreateUserInput{
		EmployeeID: req.EmployeeID,
		Username:   req.Username,
		FullName:   req.FullName,
		Role:       req.Role,
		LocationID: req.LocationID,
		Password:   req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": userResponse(user)})
}

// ListUsers GET /users.
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	actor, err := subject(c)
	if err != nil {
		return err
	}
	filter := service.UserListFilter{
		LocationID: optionalQuery(c, "location_id"),
		Active:     parseBool(c.Query("active")),
	}
	if role := c.Query("role"); role != "" {
		r := domain.Role(role)
		filter.Role = &r
	}
	filter.Limit, filter.Offset = page(c)
	users, err := h.directory.ListUsers(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponses(users)})
}

// DeactivateUser POST /users/:id/deactivate.
func (h *UsersHandler) DeactivateUser(c *fiber.Ctx) error {
	actor, err := subject(c)
	if err != nil {
		return err
	}
	userID, err := pathID(c, "user")
	if err != nil {
		return err
	}
	user, err := h.directory.DeactivateUser(c.UserContext(), actor, userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// AssignTerritory PUT /users/:id/territory.
func (h *UsersHandler) AssignTerritory(c *fiber.Ctx) error {
	actor, err := subject(c)
	if err != nil {
		return err
	}
	userID, err := pathID(c, "user")
	if err != nil {
		return err
	}
	var req dto.AssignTerritoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	profile, err := h.directory.AssignTerritory(c.UserContext(), actor, userID, req.LocationIDs)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TerritoryResponse{
		UserID:      profile.UserID,
		LocationIDs: profile.LocationIDs,
		UpdatedAt:   profile.UpdatedAt,
	}})
}

// CreateLocation POST /locations.
func (h *UsersHandler) CreateLocation(c *fiber.Ctx) error {
	actor, err := subject(c)
	if err != nil {
		return err
	}
	var req dto.CreateLocationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	location, err := h.directory.CreateLocation(c.UserContext(), actor, req.Code, req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": locationResponse(location)})
}

// ListLocations GET /locations.
func (h *UsersHandler) ListLocations(c *fiber.Ctx) error {
	actor, err := subject(c)
	if err != nil {
		return err
	}
	locations, err := h.directory.ListLocations(c.UserContext(), actor)
	if err != nil {
		return err
	}
	items := make([]dto.LocationResponse, 0, len(locations))
	for i := range locations {
		items = append(items, locationResponse(&locations[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:         user.ID,
		EmployeeID: user.EmployeeID,
		Username:   user.Username,
		FullName:   user.FullName,
		Role:       user.Role,
		LocationID: user.LocationID,
		Active:     user.Active,
		CreatedAt:  user.CreatedAt,
	}
}

func userResponses(users []domain.User) []dto.UserResponse {
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return items
}

func locationResponse(location *domain.Location) dto.LocationResponse {
	return dto.LocationResponse{ID: location.ID, Code: location.Code, Name: location.Name}
}
