package backend

import "time"

// UserSummary is the identity block of the login response.
type UserSummary struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role"`
}

// LoginResponse is the success body of POST /auth/login.
type LoginResponse struct {
	User         UserSummary `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken,omitempty"`
}

// User is a marketplace customer account.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username,omitempty"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Photographer is a service provider profile on the marketplace.
type Photographer struct {
	ID          string  `json:"id"`
	UserID      string  `json:"userId"`
	DisplayName string  `json:"displayName"`
	City        string  `json:"city,omitempty"`
	Rating      float64 `json:"rating"`
	Verified    bool    `json:"verified"`
}

// Booking is a photo-shoot reservation between a user and a photographer.
type Booking struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	PhotographerID string    `json:"photographerId"`
	Status         string    `json:"status"`
	ScheduledAt    time.Time `json:"scheduledAt"`
	AmountCents    int64     `json:"amountCents"`
	Currency       string    `json:"currency"`
}

// Photo is a delivered image attached to a booking.
type Photo struct {
	ID         string    `json:"id"`
	BookingID  string    `json:"bookingId"`
	URL        string    `json:"url"`
	Status     string    `json:"status"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// FinanceSummary is the aggregated finance view for the dashboard.
type FinanceSummary struct {
	TotalRevenueCents  int64  `json:"totalRevenueCents"`
	TotalPayoutsCents  int64  `json:"totalPayoutsCents"`
	PendingPayoutCents int64  `json:"pendingPayoutCents"`
	Currency           string `json:"currency"`
	BookingsCount      int    `json:"bookingsCount"`
}

// List envelopes. The backend wraps every collection in a data/total pair;
// decoding into these explicit shapes means a malformed response fails
// loudly instead of silently degrading to an empty collection.

type UsersPage struct {
	Data  []User `json:"data"`
	Total int    `json:"total"`
}

type PhotographersPage struct {
	Data  []Photographer `json:"data"`
	Total int            `json:"total"`
}

type BookingsPage struct {
	Data  []Booking `json:"data"`
	Total int       `json:"total"`
}

type PhotosPage struct {
	Data  []Photo `json:"data"`
	Total int     `json:"total"`
}
