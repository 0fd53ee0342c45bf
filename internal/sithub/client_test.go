package sithub

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/", 5*time.Second, zap.NewNop(), WithRetries(3, time.Millisecond))
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", MediaType)
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestLoginKeepsSessionCookie(t *testing.T) {
	var meCalls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, MediaType, r.Header.Get("Content-Type"))

			var body loginPayload
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "ada@example.com", body.Email)
			assert.Equal(t, "secret", body.Password)

			http.SetCookie(w, &http.Cookie{Name: "sithub_session", Value: "abc", Path: "/"})
			writeJSON(w, http.StatusOK, `{"data":{"id":"u1","type":"users","attributes":{"display_name":"Ada","email":"ada@example.com"}}}`)
		case "/api/v1/me":
			meCalls.Add(1)
			cookie, err := r.Cookie("sithub_session")
			if err != nil || cookie.Value != "abc" {
				writeJSON(w, http.StatusUnauthorized, `{"errors":[{"status":"401","title":"Unauthorized","detail":"no session"}]}`)
				return
			}
			writeJSON(w, http.StatusOK, `{"data":{"id":"u1","type":"users","attributes":{"display_name":"Ada"}}}`)
		case "/api/v1/auth/logout":
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	user, err := c.Login(ctx, "ada@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "Ada", user.Attributes.DisplayName)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ada", me.DisplayName)
	assert.Zero(t, meCalls.Load(), "login result is cached")

	c.Logout(ctx)

	me, err = c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ada", me.DisplayName)
	assert.EqualValues(t, 1, meCalls.Load())
}

func TestWeeklyAvailabilityQuery(t *testing.T) {
	tests := []struct {
		name      string
		week      string
		weekends  bool
		wantQuery string
	}{
		{"weekdays", "2026-W05", false, "week=2026-W05"},
		{"with weekends", "2026-W05", true, "days=7&week=2026-W05"},
		{"current week", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v1/areas/a%201/item-groups/availability", r.URL.EscapedPath())
				assert.Equal(t, tt.wantQuery, r.URL.RawQuery)
				assert.Equal(t, MediaType, r.Header.Get("Accept"))
				assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
				writeJSON(w, http.StatusOK, `{"data":[{"id":"g1","type":"item-group-availability","attributes":{
					"item_group_id":"g1","item_group_name":"Room 1",
					"days":[{"date":"2026-01-26","weekday":"Mon","total":4,"available":3}]}}]}`)
			})

			groups, err := c.WeeklyAvailability(context.Background(), "a 1", tt.week, tt.weekends)
			require.NoError(t, err)
			require.Len(t, groups, 1)
			assert.Equal(t, "Room 1", groups[0].Attributes.ItemGroupName)
			require.Len(t, groups[0].Attributes.Days, 1)
			assert.Equal(t, 3, groups[0].Attributes.Days[0].Available)
		})
	}
}

func TestListEndpoints(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/areas":
			writeJSON(w, http.StatusOK, `{"data":[{"id":"a1","type":"areas","attributes":{"name":"HQ"}}]}`)
		case "/api/v1/areas/a1/item-groups":
			writeJSON(w, http.StatusOK, `{"data":[{"id":"g1","type":"item-groups","attributes":{"name":"Room 1"}}]}`)
		case "/api/v1/item-groups/g1/items":
			assert.Equal(t, "2026-01-27", r.URL.Query().Get("date"))
			writeJSON(w, http.StatusOK, `{"data":[{"id":"i1","type":"items","attributes":{"name":"Desk 1","equipment":["Monitor"],"availability":"occupied"}}]}`)
		case "/api/v1/item-groups/g1/bookings":
			writeJSON(w, http.StatusOK, `{"data":[{"id":"b1","type":"bookings","attributes":{"item_id":"i1","user_name":"Ada","booking_date":"2026-01-27"}}]}`)
		case "/api/v1/areas/a1/presence":
			writeJSON(w, http.StatusOK, `{"data":[{"id":"b1","type":"presence","attributes":{"user_name":"Ada","item_name":"Desk 1"}}]}`)
		case "/api/v1/bookings":
			writeJSON(w, http.StatusOK, `{"data":[{"id":"b1","type":"bookings","attributes":{"area_name":"HQ","booking_date":"2026-01-27"}}]}`)
		case "/api/v1/bookings/history":
			assert.Equal(t, "from=2026-01-01&to=2026-01-31", r.URL.RawQuery)
			writeJSON(w, http.StatusOK, `{"data":[]}`)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	areas, err := c.Areas(ctx)
	require.NoError(t, err)
	require.Len(t, areas, 1)
	assert.Equal(t, "HQ", areas[0].Attributes.Name)

	groups, err := c.ItemGroups(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "g1", groups[0].ID)

	items, err := c.Items(ctx, "g1", "2026-01-27")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, AvailabilityOccupied, items[0].Attributes.Availability)
	assert.Equal(t, []string{"Monitor"}, items[0].Attributes.Equipment)

	bookings, err := c.ItemGroupBookings(ctx, "g1", "2026-01-27")
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "Ada", bookings[0].Attributes.UserName)

	presence, err := c.AreaPresence(ctx, "a1", "2026-01-27")
	require.NoError(t, err)
	require.Len(t, presence, 1)
	assert.Equal(t, "Desk 1", presence[0].Attributes.ItemName)

	mine, err := c.MyBookings(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "HQ", mine[0].Attributes.AreaName)

	history, err := c.BookingHistory(ctx, "2026-01-01", "2026-01-31")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestCreateBooking(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/bookings", r.URL.Path)

		var body map[string]map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "bookings", body["data"]["type"])
		attrs := body["data"]["attributes"].(map[string]interface{})
		assert.Equal(t, "i1", attrs["item_id"])
		assert.Equal(t, "2026-01-27", attrs["booking_date"])
		assert.Equal(t, "window seat", attrs["note"])
		assert.NotContains(t, attrs, "for_user_id")

		writeJSON(w, http.StatusCreated, `{"data":{"id":"b9","type":"bookings","attributes":{"item_id":"i1","booking_date":"2026-01-27","note":"window seat"}}}`)
	})

	booking, err := c.CreateBooking(context.Background(), BookingRequest{
		ItemID: "i1",
		Date:   "2026-01-27",
		Note:   "window seat",
	})
	require.NoError(t, err)
	assert.Equal(t, "b9", booking.ID)
	assert.Equal(t, "window seat", booking.Attributes.Note)
}

func TestCreateBookingConflictIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusConflict, `{"errors":[{"status":"409","title":"Conflict","detail":"Item is already booked for this date","code":"conflict"}]}`)
	})

	_, err := c.CreateBooking(context.Background(), BookingRequest{ItemID: "i1", Date: "2026-01-27"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsConflict())
	assert.Equal(t, "Item is already booked for this date", apiErr.Detail)
	assert.EqualValues(t, 1, calls.Load())
}

func TestUpdateBookingNoteAndCancel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/bookings/b1", r.URL.Path)
		switch r.Method {
		case http.MethodPatch:
			var body updateNotePayload
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "b1", body.Data.ID)
			assert.Equal(t, "late arrival", body.Data.Attributes.Note)
			writeJSON(w, http.StatusOK, `{"data":{"id":"b1","type":"bookings","attributes":{"note":"late arrival"}}}`)
		case http.MethodDelete:
			assert.Empty(t, r.Header.Get("Content-Type"))
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	})
	ctx := context.Background()

	booking, err := c.UpdateBookingNote(ctx, "b1", "late arrival")
	require.NoError(t, err)
	assert.Equal(t, "late arrival", booking.Attributes.Note)

	require.NoError(t, c.CancelBooking(ctx, "b1"))
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			writeJSON(w, http.StatusBadGateway, `{"errors":[{"status":"502","title":"Bad Gateway"}]}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"data":[]}`)
	})

	areas, err := c.Areas(context.Background())
	require.NoError(t, err)
	assert.Empty(t, areas)
	assert.EqualValues(t, 3, calls.Load())
}

func TestGetGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusServiceUnavailable, `{"errors":[{"status":"503","title":"Unavailable"}]}`)
	})

	_, err := c.Areas(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	assert.Equal(t, "Unavailable", apiErr.Detail)
	assert.EqualValues(t, 3, calls.Load())
}

func TestPostIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.CreateBooking(context.Background(), BookingRequest{ItemID: "i1", Date: "2026-01-27"})
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func TestNotFoundAndUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/me" {
			writeJSON(w, http.StatusUnauthorized, `{"errors":[{"status":"401","title":"Unauthorized"}]}`)
			return
		}
		writeJSON(w, http.StatusNotFound, `{"errors":[{"status":"404","title":"Not Found","detail":"Area not found"}]}`)
	})
	ctx := context.Background()

	_, err := c.Me(ctx)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsUnauthorized())

	_, err = c.ItemGroups(ctx, "missing")
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
	assert.Contains(t, err.Error(), "Area not found")
}

func TestRequestHonoursContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	c.retryDelay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.Areas(ctx)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
