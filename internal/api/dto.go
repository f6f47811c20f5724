package api

import (
	"time"

	"example.com/agenda/internal/domain"
)

// activityRequest accepts the wire shape as-is. Due date and contacts
// stay untyped here: callers send several historical shapes and the
// domain layer canonicalizes them.
type activityRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Priority    *int   `json:"priority"`
	DueAt       any    `json:"dueAt"`
	Status      string `json:"status"`
	Contacts    any    `json:"contacts"`
}

func (req activityRequest) toInput() domain.ActivityInput {
	return domain.ActivityInput{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Priority:    req.Priority,
		DueAt:       req.DueAt,
		Status:      req.Status,
		Contacts:    req.Contacts,
	}
}

type activityResponse struct {
	ID          string           `json:"id"`
	OwnerID     string           `json:"ownerId"`
	Name        string           `json:"name"`
	Category    string           `json:"category,omitempty"`
	Description string           `json:"description,omitempty"`
	Priority    *int             `json:"priority"`
	DueAt       *time.Time       `json:"dueAt,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	Status      string           `json:"status"`
	Contacts    []domain.Contact `json:"contacts"`
}

func toActivityResponse(act domain.Activity) activityResponse {
	resp := activityResponse{
		ID:          act.ID,
		OwnerID:     act.OwnerID,
		Name:        act.Name,
		Category:    act.Category,
		Description: act.Description,
		Priority:    act.Priority,
		CreatedAt:   act.CreatedAt,
		Status:      act.Status,
		Contacts:    act.Contacts,
	}
	if !act.DueAt.IsZero() {
		due := act.DueAt
		resp.DueAt = &due
	}
	if resp.Contacts == nil {
		resp.Contacts = []domain.Contact{}
	}
	return resp
}

func toActivityResponses(acts []domain.Activity) []activityResponse {
	out := make([]activityResponse, 0, len(acts))
	for _, act := range acts {
		out = append(out, toActivityResponse(act))
	}
	return out
}

type encryptionResponse struct {
	ActivityID           string `json:"activityId"`
	DescriptionEncrypted bool   `json:"descriptionEncrypted"`
	ContactsEncrypted    bool   `json:"contactsEncrypted"`
	EncryptedRoleValues  int    `json:"encryptedRoleValues"`
}

type userRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Active   *bool  `json:"active"`
	Password string `json:"password"`
}

type userUpdateRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Active   *bool   `json:"active"`
	Password *string `json:"password"`
}

// userResponse has no password field of any kind.
type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserResponse(user domain.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
}

type verifyResponse struct {
	Valid   bool   `json:"valid"`
	Subject string `json:"subject,omitempty"`
}
