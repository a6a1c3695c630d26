package handlers

import (
	"time"

	"github.com/flashoffers/api/internal/models"
	"github.com/flashoffers/api/internal/services"
)

// UserResponse is the public view of an account.
type UserResponse struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone,omitempty"`
	Username          string    `json:"username,omitempty"`
	FullName          string    `json:"full_name,omitempty"`
	IsActive          bool      `json:"is_active"`
	IsVerified        bool      `json:"is_verified"`
	EmailVerified     bool      `json:"email_verified"`
	PhoneVerified     bool      `json:"phone_verified"`
	IsAdmin           bool      `json:"is_admin"`
	NotifyEmail       bool      `json:"notify_email"`
	NotifySMS         bool      `json:"notify_sms"`
	NotifyWhatsApp    bool      `json:"notify_whatsapp"`
	NotifyTelegram    bool      `json:"notify_telegram"`
	NotifyPush        bool      `json:"notify_push"`
	TelegramConnected bool      `json:"telegram_connected"`
	CreatedAt         time.Time `json:"created_at"`
}

func NewUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:                user.ID,
		Email:             user.Email,
		Phone:             user.Phone,
		Username:          user.Username,
		FullName:          user.FullName,
		IsActive:          user.IsActive,
		IsVerified:        user.IsVerified,
		EmailVerified:     user.EmailVerified,
		PhoneVerified:     user.PhoneVerified,
		IsAdmin:           user.IsAdmin,
		NotifyEmail:       user.NotifyEmail,
		NotifySMS:         user.NotifySMS,
		NotifyWhatsApp:    user.NotifyWhatsApp,
		NotifyTelegram:    user.NotifyTelegram,
		NotifyPush:        user.NotifyPush,
		TelegramConnected: user.TelegramChatID != "",
		CreatedAt:         user.CreatedAt,
	}
}

func NewUserResponses(users []*models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

// OfferResponse is the wire form of an offer. Redemption fields (promo code,
// referral link, instructions) appear only in the detail view after a like.
type OfferResponse struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description,omitempty"`
	ImageURL           string    `json:"image_url,omitempty"`
	ProviderName       string    `json:"provider_name"`
	Category           string    `json:"category"`
	DiscountPercentage *float64  `json:"discount_percentage,omitempty"`
	DiscountAmount     *float64  `json:"discount_amount,omitempty"`
	OriginalPrice      *float64  `json:"original_price,omitempty"`
	DiscountedPrice    *float64  `json:"discounted_price,omitempty"`
	ReferralLink       string    `json:"referral_link,omitempty"`
	PromoCode          string    `json:"promo_code,omitempty"`
	TermsConditions    string    `json:"terms_conditions,omitempty"`
	Instructions       string    `json:"instructions,omitempty"`
	ExpiryDate         time.Time `json:"expiry_date"`
	TimeUntilExpiry    string    `json:"time_until_expiry"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
}

// NewOfferSummary renders the feed view: everything a user needs to decide,
// without the redemption details.
func NewOfferSummary(offer *models.Offer) OfferResponse {
	resp := newOfferResponse(offer)
	resp.ReferralLink = ""
	resp.PromoCode = ""
	resp.Instructions = ""
	return resp
}

// NewOfferDetail renders the full offer including redemption details.
func NewOfferDetail(offer *models.Offer) OfferResponse {
	return newOfferResponse(offer)
}

func newOfferResponse(offer *models.Offer) OfferResponse {
	return OfferResponse{
		ID:                 offer.ID,
		Title:              offer.Title,
		Description:        offer.Description,
		ImageURL:           offer.ImageURL,
		ProviderName:       offer.ProviderName,
		Category:           string(offer.Category),
		DiscountPercentage: offer.DiscountPercentage,
		DiscountAmount:     offer.DiscountAmount,
		OriginalPrice:      offer.OriginalPrice,
		DiscountedPrice:    offer.DiscountedPrice,
		ReferralLink:       offer.ReferralLink,
		PromoCode:          offer.PromoCode,
		TermsConditions:    offer.TermsConditions,
		Instructions:       offer.Instructions,
		ExpiryDate:         offer.ExpiryDate,
		TimeUntilExpiry:    services.TimeUntilExpiry(offer.ExpiryDate, time.Now()),
		IsActive:           offer.IsActive,
		CreatedAt:          offer.CreatedAt,
	}
}

func NewOfferSummaries(offers []*models.Offer) []OfferResponse {
	out := make([]OfferResponse, 0, len(offers))
	for _, o := range offers {
		out = append(out, NewOfferSummary(o))
	}
	return out
}

func NewOfferDetails(offers []*models.Offer) []OfferResponse {
	out := make([]OfferResponse, 0, len(offers))
	for _, o := range offers {
		out = append(out, NewOfferDetail(o))
	}
	return out
}

// NotificationResponse is a stored inbox entry.
type NotificationResponse struct {
	ID      string    `json:"id"`
	OfferID string    `json:"offer_id"`
	Type    string    `json:"type"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
	IsRead  bool      `json:"is_read"`
}

func NewNotificationResponses(notifications []*models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, NotificationResponse{
			ID:      n.ID,
			OfferID: n.OfferID,
			Type:    string(n.Type),
			Message: n.Message,
			SentAt:  n.SentAt,
			IsRead:  n.IsRead,
		})
	}
	return out
}

// AdminActionResponse is an audit trail entry.
type AdminActionResponse struct {
	ID           string               `json:"id"`
	AdminUserID  string               `json:"admin_user_id"`
	ActionType   string               `json:"action_type"`
	ResourceType string               `json:"resource_type"`
	ResourceID   string               `json:"resource_id"`
	Details      models.ActionDetails `json:"details,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}

func NewAdminActionResponses(actions []*models.AdminAction) []AdminActionResponse {
	out := make([]AdminActionResponse, 0, len(actions))
	for _, a := range actions {
		out = append(out, AdminActionResponse{
			ID:           a.ID,
			AdminUserID:  a.AdminUserID,
			ActionType:   a.ActionType,
			ResourceType: a.ResourceType,
			ResourceID:   a.ResourceID,
			Details:      a.Details,
			CreatedAt:    a.CreatedAt,
		})
	}
	return out
}

// MessageResponse is a plain confirmation payload.
type MessageResponse struct {
	Message string `json:"message"`
}
