package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/vanshika/profilegraph/internal/connection"
	"github.com/vanshika/profilegraph/internal/domain"
	"github.com/vanshika/profilegraph/internal/repository"
	"github.com/vanshika/profilegraph/internal/service"
)

// ProfileService is the behaviour the HTTP layer needs from the service layer.
type ProfileService interface {
	CreateProfile(ctx context.Context, p domain.Profile) (domain.Profile, error)
	GetProfile(ctx context.Context, id domain.ProfileID) (domain.Profile, error)
	ListProfiles(ctx context.Context) ([]domain.Profile, error)
	UpdateProfile(ctx context.Context, p domain.Profile) (domain.Profile, error)
	DeleteProfile(ctx context.Context, id domain.ProfileID) (domain.Profile, error)
	Friends(ctx context.Context, id domain.ProfileID) ([]domain.Profile, error)
	AddFriend(ctx context.Context, profileID, friendID domain.ProfileID) error
	RemoveFriend(ctx context.Context, profileID, friendID domain.ProfileID) error
	ShortestConnection(ctx context.Context, source, target domain.ProfileID) (connection.Connection, error)
}

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger   *slog.Logger
	service  ProfileService
	validate *validator.Validate
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, svc ProfileService) *APIHandlers {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &APIHandlers{
		logger:   logger,
		service:  svc,
		validate: validate,
	}
}

// RegisterRoutes mounts the profile API on router.
func (h *APIHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/profiles", h.createProfile).Methods(http.MethodPost)
	router.HandleFunc("/profiles", h.listProfiles).Methods(http.MethodGet)
	router.HandleFunc("/profiles", h.updateProfile).Methods(http.MethodPut)
	router.HandleFunc("/profiles/{id}", h.getProfile).Methods(http.MethodGet)
	router.HandleFunc("/profiles/{id}", h.deleteProfile).Methods(http.MethodDelete)
	router.HandleFunc("/profiles/{id}/friends", h.listFriends).Methods(http.MethodGet)
	router.HandleFunc("/profiles/{id}/friends/{friend_id}", h.addFriend).Methods(http.MethodPost)
	router.HandleFunc("/profiles/{id}/friends/{friend_id}", h.removeFriend).Methods(http.MethodDelete)
	router.HandleFunc("/profiles/{id}/shorter/{friend_id}", h.shortestConnection).Methods(http.MethodGet)
}

// ProfileRequest is the JSON body accepted when creating or updating a profile.
type ProfileRequest struct {
	Img       string `json:"img" validate:"omitempty,url,max=2048"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"max=32"`
	Address   string `json:"address" validate:"max=255"`
	City      string `json:"city" validate:"max=100"`
	State     string `json:"state" validate:"max=100"`
	Zipcode   string `json:"zipcode" validate:"max=16"`
	Available *bool  `json:"available"`
}

type profileUpdateRequest struct {
	ID int64 `json:"id" validate:"required,gt=0"`
	ProfileRequest
}

func (p ProfileRequest) toDomain(id domain.ProfileID) domain.Profile {
	available := true
	if p.Available != nil {
		available = *p.Available
	}
	return domain.Profile{
		ID:        id,
		Img:       p.Img,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Phone:     p.Phone,
		Address:   p.Address,
		City:      p.City,
		State:     p.State,
		Zipcode:   p.Zipcode,
		Available: available,
	}
}

func (h *APIHandlers) createProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	created, err := h.service.CreateProfile(r.Context(), req.toDomain(0))
	if err != nil {
		h.writeServiceError(w, r, err, "create profile")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *APIHandlers) listProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.ListProfiles(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "list profiles")
		return
	}
	respondJSON(w, http.StatusOK, nonNil(profiles))
}

func (h *APIHandlers) getProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	profile, err := h.service.GetProfile(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err, "get profile")
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

func (h *APIHandlers) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), req.toDomain(domain.ProfileID(req.ID)))
	if err != nil {
		h.writeServiceError(w, r, err, "update profile")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *APIHandlers) deleteProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	deleted, err := h.service.DeleteProfile(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err, "delete profile")
		return
	}
	respondJSON(w, http.StatusOK, deleted)
}

func (h *APIHandlers) listFriends(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	friends, err := h.service.Friends(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err, "list friends")
		return
	}
	respondJSON(w, http.StatusOK, nonNil(friends))
}

func (h *APIHandlers) addFriend(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	friendID, ok := pathID(w, r, "friend_id")
	if !ok {
		return
	}
	if err := h.service.AddFriend(r.Context(), id, friendID); err != nil {
		h.writeServiceError(w, r, err, "add friend")
		return
	}
	respondJSON(w, http.StatusCreated, domain.Friendship{ProfileID: id, FriendID: friendID})
}

func (h *APIHandlers) removeFriend(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	friendID, ok := pathID(w, r, "friend_id")
	if !ok {
		return
	}
	if err := h.service.RemoveFriend(r.Context(), id, friendID); err != nil {
		h.writeServiceError(w, r, err, "remove friend")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandlers) shortestConnection(w http.ResponseWriter, r *http.Request) {
	source, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	target, ok := pathID(w, r, "friend_id")
	if !ok {
		return
	}
	path, err := h.service.ShortestConnection(r.Context(), source, target)
	if err != nil {
		h.writeServiceError(w, r, err, "shortest connection")
		return
	}
	respondJSON(w, http.StatusOK, path)
}

// writeServiceError maps service and resolver errors onto HTTP statuses.
func (h *APIHandlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, repository.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, "Profile not found")
	case errors.Is(err, repository.ErrFriendshipNotFound):
		writeError(w, http.StatusNotFound, "Friendship not found")
	case errors.Is(err, connection.ErrNoConnection):
		writeError(w, http.StatusNotFound, "No connection found")
	case errors.Is(err, repository.ErrInvalidFriendship), errors.Is(err, service.ErrInvalidProfileID):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, connection.ErrCanceled):
		h.logger.Warn(op+" did not finish", "request_id", RequestIDFromContext(r.Context()), "error", err)
		writeError(w, http.StatusGatewayTimeout, "connection search did not finish")
	case errors.Is(err, connection.ErrSourceUnavailable):
		h.logger.Error(op+" failed", "request_id", RequestIDFromContext(r.Context()), "error", err)
		writeError(w, http.StatusServiceUnavailable, "profile store unavailable")
	default:
		h.logger.Error(op+" failed", "request_id", RequestIDFromContext(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to "+op)
	}
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (domain.ProfileID, bool) {
	raw := mux.Vars(r)[name]
	id, err := domain.ParseProfileID(raw)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s %q", name, raw))
		return 0, false
	}
	return id, true
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fe.Field()+" is required")
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		case "gt":
			parts = append(parts, fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

func nonNil(profiles []domain.Profile) []domain.Profile {
	if profiles == nil {
		return []domain.Profile{}
	}
	return profiles
}
