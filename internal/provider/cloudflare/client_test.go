package cloudflare_test

import (
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/kofuk/dnssync/internal/provider/cloudflare"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelope(result any) map[string]any {
	return map[string]any{
		"success": true,
		"errors":  []any{},
		"result":  result,
	}
}

func TestNewClientValidatesAuth(t *testing.T) {
	t.Parallel()

	_, err := cloudflare.NewClient(cloudflare.AuthToken("token"))
	assert.NoError(t, err)

	_, err = cloudflare.NewClient(cloudflare.AuthKey("user@example.com", "key"))
	assert.NoError(t, err)

	_, err = cloudflare.NewClient(cloudflare.Auth{})
	assert.ErrorIs(t, err, cloudflare.ErrNoAuth)

	_, err = cloudflare.NewClient(cloudflare.Auth{Token: "token", Email: "user@example.com", Key: "key"})
	assert.ErrorIs(t, err, cloudflare.ErrAmbiguousAuth)

	_, err = cloudflare.NewClient(cloudflare.Auth{Email: "user@example.com"})
	assert.ErrorIs(t, err, cloudflare.ErrNoAuth)
}

func TestClientSendsTokenAuth(t *testing.T) {
	httpmock.Activate(t)

	var authorization string
	httpmock.RegisterResponder(http.MethodGet, "http://cf/client/v4/zones?name=example.com",
		func(req *http.Request) (*http.Response, error) {
			authorization = req.Header.Get("Authorization")
			return httpmock.NewJsonResponse(http.StatusOK, envelope([]any{}))
		})

	client, err := cloudflare.NewClient(cloudflare.AuthToken("test-token"), cloudflare.WithBaseURL("http://cf/client/v4"))
	require.NoError(t, err)

	_, err = client.ListZones(t.Context(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", authorization)
}

func TestClientSendsKeyAuth(t *testing.T) {
	httpmock.Activate(t)

	var email, key, authorization string
	httpmock.RegisterResponder(http.MethodGet, "http://cf/client/v4/zones?name=example.com",
		func(req *http.Request) (*http.Response, error) {
			email = req.Header.Get("X-Auth-Email")
			key = req.Header.Get("X-Auth-Key")
			authorization = req.Header.Get("Authorization")
			return httpmock.NewJsonResponse(http.StatusOK, envelope([]any{}))
		})

	client, err := cloudflare.NewClient(cloudflare.AuthKey("user@example.com", "secret"), cloudflare.WithBaseURL("http://cf/client/v4"))
	require.NoError(t, err)

	_, err = client.ListZones(t.Context(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", email)
	assert.Equal(t, "secret", key)
	assert.Empty(t, authorization)
}

func TestListZones(t *testing.T) {
	httpmock.Activate(t)

	httpmock.RegisterResponder(http.MethodGet, "http://cf/client/v4/zones?name=example.com",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, envelope([]any{
			map[string]any{"id": "zone1", "name": "example.com"},
		})))

	client, err := cloudflare.NewClient(cloudflare.AuthToken("token"), cloudflare.WithBaseURL("http://cf/client/v4"))
	require.NoError(t, err)

	zones, err := client.ListZones(t.Context(), "example.com")
	require.NoError(t, err)
	require.Len(t, zones, 1)
	assert.Equal(t, cloudflare.Zone{ID: "zone1", Name: "example.com"}, zones[0])
}

func TestListRecordsByName(t *testing.T) {
	httpmock.Activate(t)

	httpmock.RegisterResponder(http.MethodGet, "http://cf/client/v4/zones/zone1/dns_records?name=home.example.com",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, envelope([]any{
			map[string]any{
				"id":      "rec1",
				"type":    "A",
				"name":    "home.example.com",
				"content": "192.0.2.1",
				"ttl":     1,
				"proxied": true,
				"comment": "old",
			},
			map[string]any{
				"id":      "rec2",
				"type":    "AAAA",
				"name":    "home.example.com",
				"content": "2001:db8::1",
				"ttl":     300,
				"proxied": false,
			},
		})))

	client, err := cloudflare.NewClient(cloudflare.AuthToken("token"), cloudflare.WithBaseURL("http://cf/client/v4"))
	require.NoError(t, err)

	records, err := client.ListRecordsByName(t.Context(), "zone1", "home.example.com")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "rec1", records[0].ID)
	assert.Equal(t, "A", records[0].Type)
	assert.Equal(t, uint32(1), records[0].TTL)
	assert.Equal(t, "rec2", records[1].ID)
}

func TestUnsuccessfulResponseIsAnError(t *testing.T) {
	httpmock.Activate(t)

	httpmock.RegisterResponder(http.MethodGet, "http://cf/client/v4/zones?name=example.com",
		httpmock.NewJsonResponderOrPanic(http.StatusForbidden, map[string]any{
			"success": false,
			"errors":  []any{map[string]any{"message": "Invalid access token"}},
			"result":  nil,
		}))

	client, err := cloudflare.NewClient(cloudflare.AuthToken("token"), cloudflare.WithBaseURL("http://cf/client/v4"))
	require.NoError(t, err)

	_, err = client.ListZones(t.Context(), "example.com")
	require.Error(t, err)

	var apiErr *cloudflare.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Error(), "Invalid access token")
}
