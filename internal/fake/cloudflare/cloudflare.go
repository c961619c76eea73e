package cloudflare

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Zone is a hosted zone known to the fake API.
type Zone struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Record is a DNS record as the API represents it.
type Record struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	TTL     uint32 `json:"ttl"`
	Proxied bool   `json:"proxied"`
	Comment string `json:"comment,omitempty"`
}

// Cloudflare is an in-memory double of the Cloudflare DNS API, close
// enough for exercising the real client against it.
type Cloudflare struct {
	r       *echo.Echo
	m       sync.Mutex
	token   string
	email   string
	key     string
	zones   []Zone
	records map[string][]Record
}

type CloudflareOption func(cf *Cloudflare)

func Token(token string) CloudflareOption {
	return func(cf *Cloudflare) {
		cf.token = token
	}
}

func KeyCredentials(email, key string) CloudflareOption {
	return func(cf *Cloudflare) {
		cf.email = email
		cf.key = key
	}
}

func NewCloudflare(options ...CloudflareOption) *Cloudflare {
	engine := echo.New()
	engine.HideBanner = true
	engine.HidePort = true

	cf := &Cloudflare{
		r:       engine,
		records: make(map[string][]Record),
	}
	cf.setupRoutes()

	for _, opt := range options {
		opt(cf)
	}
	return cf
}

// AddZone registers a hosted zone and returns its ID. Adding the same
// name twice is allowed; the live API does that across accounts.
func (cf *Cloudflare) AddZone(name string) string {
	cf.m.Lock()
	defer cf.m.Unlock()

	zone := Zone{ID: uuid.NewString(), Name: name}
	cf.zones = append(cf.zones, zone)
	cf.records[zone.ID] = nil
	return zone.ID
}

// AddRecord seeds a record into a zone and returns its ID.
func (cf *Cloudflare) AddRecord(zoneID string, record Record) string {
	cf.m.Lock()
	defer cf.m.Unlock()

	record.ID = uuid.NewString()
	cf.records[zoneID] = append(cf.records[zoneID], record)
	return record.ID
}

// ZoneRecords returns a copy of a zone's records.
func (cf *Cloudflare) ZoneRecords(zoneID string) []Record {
	cf.m.Lock()
	defer cf.m.Unlock()

	records := make([]Record, len(cf.records[zoneID]))
	copy(records, cf.records[zoneID])
	return records
}

func envelope(result any) map[string]any {
	return map[string]any{
		"success": true,
		"errors":  []any{},
		"result":  result,
	}
}

func errorEnvelope(message string) map[string]any {
	return map[string]any{
		"success": false,
		"errors":  []map[string]any{{"message": message}},
		"result":  nil,
	}
}

func (cf *Cloudflare) authorized(c echo.Context) bool {
	if cf.token != "" {
		bearer := strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(bearer), []byte(cf.token)) == 1 {
			return true
		}
	}
	if cf.email != "" {
		emailOK := subtle.ConstantTimeCompare([]byte(c.Request().Header.Get("X-Auth-Email")), []byte(cf.email)) == 1
		keyOK := subtle.ConstantTimeCompare([]byte(c.Request().Header.Get("X-Auth-Key")), []byte(cf.key)) == 1
		if emailOK && keyOK {
			return true
		}
	}
	return false
}

func (cf *Cloudflare) setupRoutes() {
	api := cf.r.Group("/client/v4", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cf.authorized(c) {
				return c.JSON(http.StatusForbidden, errorEnvelope("Invalid credentials"))
			}
			return next(c)
		}
	})

	api.GET("/zones", cf.ServeListZones)
	api.GET("/zones/:zone/dns_records", cf.ServeListRecords)
	api.POST("/zones/:zone/dns_records/batch", cf.ServeBatchRecords)
}

func (cf *Cloudflare) ServeListZones(c echo.Context) error {
	cf.m.Lock()
	defer cf.m.Unlock()

	name := c.QueryParam("name")
	result := []Zone{}
	for _, zone := range cf.zones {
		if name == "" || zone.Name == name {
			result = append(result, zone)
		}
	}
	return c.JSON(http.StatusOK, envelope(result))
}

func (cf *Cloudflare) ServeListRecords(c echo.Context) error {
	cf.m.Lock()
	defer cf.m.Unlock()

	records, ok := cf.records[c.Param("zone")]
	if !ok {
		return c.JSON(http.StatusNotFound, errorEnvelope("Unknown zone"))
	}

	name := c.QueryParam("name")
	result := []Record{}
	for _, record := range records {
		if name == "" || record.Name == name {
			result = append(result, record)
		}
	}
	return c.JSON(http.StatusOK, envelope(result))
}

type batchRequest struct {
	Deletes []struct {
		ID string `json:"id"`
	} `json:"deletes"`
	Posts []Record `json:"posts"`
}

func (cf *Cloudflare) ServeBatchRecords(c echo.Context) error {
	cf.m.Lock()
	defer cf.m.Unlock()

	zoneID := c.Param("zone")
	records, ok := cf.records[zoneID]
	if !ok {
		return c.JSON(http.StatusNotFound, errorEnvelope("Unknown zone"))
	}

	var req batchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorEnvelope("Malformed batch request"))
	}

	deleted := []Record{}
	for _, del := range req.Deletes {
		index := -1
		for i, record := range records {
			if record.ID == del.ID {
				index = i
				break
			}
		}
		if index < 0 {
			return c.JSON(http.StatusBadRequest, errorEnvelope("Record not found: "+del.ID))
		}
		deleted = append(deleted, records[index])
		records = append(records[:index], records[index+1:]...)
	}

	posted := []Record{}
	for _, record := range req.Posts {
		record.ID = uuid.NewString()
		records = append(records, record)
		posted = append(posted, record)
	}

	cf.records[zoneID] = records

	return c.JSON(http.StatusOK, envelope(map[string]any{
		"deletes": deleted,
		"posts":   posted,
	}))
}

// Handler exposes the fake API for httptest servers.
func (cf *Cloudflare) Handler() http.Handler {
	return cf.r
}

func (cf *Cloudflare) Start(addr string) error {
	return cf.r.Start(addr)
}
