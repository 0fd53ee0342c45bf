package sithub

import (
	"fmt"
	"net/http"
)

// MediaType is the JSON:API media type used for requests and responses
const MediaType = "application/vnd.api+json"

// Resource is a JSON:API resource object
type Resource[T any] struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Attributes T      `json:"attributes"`
}

// SingleResponse is a JSON:API document with one primary resource
type SingleResponse[T any] struct {
	Data Resource[T] `json:"data"`
}

// CollectionResponse is a JSON:API document with a resource list
type CollectionResponse[T any] struct {
	Data []Resource[T] `json:"data"`
}

// ErrorObject is one entry of a JSON:API error document
type ErrorObject struct {
	Status string `json:"status,omitempty"`
	Title  string `json:"title,omitempty"`
	Detail string `json:"detail,omitempty"`
	Code   string `json:"code,omitempty"`
}

// ErrorResponse is a JSON:API error document
type ErrorResponse struct {
	Errors []ErrorObject `json:"errors"`
}

// APIError is returned for non-2xx responses
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("request failed: %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("request failed: %d", e.Status)
}

// IsNotFound reports a 404 response
func (e *APIError) IsNotFound() bool { return e.Status == http.StatusNotFound }

// IsUnauthorized reports a 401 response
func (e *APIError) IsUnauthorized() bool { return e.Status == http.StatusUnauthorized }

// IsConflict reports a 409 response (item already booked)
func (e *APIError) IsConflict() bool { return e.Status == http.StatusConflict }

// User holds /me attributes
type User struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	IsAdmin     bool   `json:"is_admin"`
	AuthSource  string `json:"auth_source"`
	Role        string `json:"role"`
}

// Area is a bookable office area
type Area struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	FloorPlan   string `json:"floor_plan,omitempty"`
}

// ItemGroup is a room or other group of bookable items
type ItemGroup struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	FloorPlan   string `json:"floor_plan,omitempty"`
}

// Item availability values
const (
	AvailabilityAvailable = "available"
	AvailabilityOccupied  = "occupied"
)

// Item is a bookable desk or other resource on a given date
type Item struct {
	Name         string   `json:"name"`
	Equipment    []string `json:"equipment"`
	Availability string   `json:"availability"`
	Warning      string   `json:"warning,omitempty"`
	// Admin-only, present when the item is occupied
	BookingID  string `json:"booking_id,omitempty"`
	BookerName string `json:"booker_name,omitempty"`
}

// ItemGroupBooking is a booking listed for an item group and date
type ItemGroupBooking struct {
	ItemID      string `json:"item_id"`
	ItemName    string `json:"item_name"`
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name"`
	BookingDate string `json:"booking_date"`
	IsGuest     bool   `json:"is_guest,omitempty"`
	Note        string `json:"note"`
}

// DayAvailability is the free/total count of one item group on one day
type DayAvailability struct {
	Date      string `json:"date"`
	Weekday   string `json:"weekday"`
	Total     int    `json:"total"`
	Available int    `json:"available"`
}

// ItemGroupAvailability is the weekly availability of one item group
type ItemGroupAvailability struct {
	ItemGroupID   string            `json:"item_group_id"`
	ItemGroupName string            `json:"item_group_name"`
	Days          []DayAvailability `json:"days"`
}

// Presence is one person booked into an area on a date
type Presence struct {
	UserID        string `json:"user_id"`
	UserName      string `json:"user_name"`
	ItemID        string `json:"item_id"`
	ItemName      string `json:"item_name"`
	ItemGroupID   string `json:"item_group_id"`
	ItemGroupName string `json:"item_group_name"`
	Note          string `json:"note"`
}

// Booking is the resource returned when creating or updating a booking
type Booking struct {
	ItemID         string `json:"item_id"`
	UserID         string `json:"user_id"`
	BookingDate    string `json:"booking_date"`
	CreatedAt      string `json:"created_at"`
	BookedByUserID string `json:"booked_by_user_id,omitempty"`
	IsGuest        bool   `json:"is_guest,omitempty"`
	GuestEmail     string `json:"guest_email,omitempty"`
	Note           string `json:"note"`
}

// MyBooking is a booking of the current user with its location
type MyBooking struct {
	ItemID           string `json:"item_id"`
	ItemName         string `json:"item_name"`
	ItemGroupID      string `json:"item_group_id"`
	ItemGroupName    string `json:"item_group_name"`
	AreaID           string `json:"area_id"`
	AreaName         string `json:"area_name"`
	BookingDate      string `json:"booking_date"`
	CreatedAt        string `json:"created_at"`
	BookedByUserID   string `json:"booked_by_user_id,omitempty"`
	BookedByUserName string `json:"booked_by_user_name,omitempty"`
	BookedForMe      bool   `json:"booked_for_me,omitempty"`
	IsGuest          bool   `json:"is_guest,omitempty"`
	Note             string `json:"note"`
}

// BookingRequest holds the parameters of a new booking
type BookingRequest struct {
	ItemID      string
	Date        string
	Note        string
	ForUserID   string
	ForUserName string
}

type createBookingAttributes struct {
	ItemID      string `json:"item_id"`
	BookingDate string `json:"booking_date"`
	Note        string `json:"note,omitempty"`
	ForUserID   string `json:"for_user_id,omitempty"`
	ForUserName string `json:"for_user_name,omitempty"`
}

type createBookingPayload struct {
	Data struct {
		Type       string                  `json:"type"`
		Attributes createBookingAttributes `json:"attributes"`
	} `json:"data"`
}

type updateNotePayload struct {
	Data struct {
		Type       string `json:"type"`
		ID         string `json:"id"`
		Attributes struct {
			Note string `json:"note"`
		} `json:"attributes"`
	} `json:"data"`
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
