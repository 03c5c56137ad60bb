package handlers

import (
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/randoapp/rando-service/internal/model"
)

func testHandler() *Handler {
	return NewHandler(nil, nil, zap.NewNop().Sugar(), 10)
}

func TestValidateUpload(t *testing.T) {
	h := testHandler()
	header := func(ct string) textproto.MIMEHeader {
		m := textproto.MIMEHeader{}
		if ct != "" {
			m.Set("Content-Type", ct)
		}
		return m
	}
	tests := []struct {
		name    string
		size    int64
		ct      string
		wantErr string
	}{
		{"ok jpeg", 1024, "image/jpeg", ""},
		{"ok png", 1024, "image/png", ""},
		{"ok without declared type", 1024, "", ""},
		{"empty file", 0, "image/jpeg", "file size not allowed"},
		{"too large", 11 * 1024 * 1024, "image/jpeg", "file size not allowed"},
		{"wrong type", 1024, "video/mp4", "invalid content type"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fh := &multipart.FileHeader{Filename: "u1", Size: tc.size, Header: header(tc.ct)}
			err := h.validateUpload(fh)
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tc.wantErr)
			}
		})
	}
}

func TestParseLocation(t *testing.T) {
	h := testHandler()
	tests := []struct {
		name string
		form url.Values
		want *model.Location
	}{
		{"both present", url.Values{"latitude": {"53.9"}, "longitude": {"27.5"}}, &model.Location{Latitude: 53.9, Longitude: 27.5}},
		{"missing latitude", url.Values{"longitude": {"27.5"}}, nil},
		{"missing longitude", url.Values{"latitude": {"53.9"}}, nil},
		{"empty form", url.Values{}, nil},
		{"garbage values", url.Values{"latitude": {"north"}, "longitude": {"west"}}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			var got *model.Location
			app.Post("/", func(c *fiber.Ctx) error {
				got = h.parseLocation(c)
				return c.SendStatus(fiber.StatusOK)
			})
			req, err := http.NewRequest(http.MethodPost, "/", strings.NewReader(tc.form.Encode()))
			require.NoError(t, err)
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			resp, err := app.Test(req)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPostImageRequiresOwner(t *testing.T) {
	h := testHandler()
	app := fiber.New()
	app.Post("/image", h.PostImage)

	req, err := http.NewRequest(http.MethodPost, "/image", nil)
	require.NoError(t, err)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
