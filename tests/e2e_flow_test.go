package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/disintegration/imaging"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tastegent/tastegent/internal/config"
	"github.com/tastegent/tastegent/internal/server"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.MaxUploadSizeMB = 10
	cfg.Server.AllowedOrigins = "*"
	cfg.JWT.Secret = "test-secret-key-123"
	cfg.JWT.AccessTokenExpiry = 30 * time.Minute
	cfg.JWT.RefreshTokenExpiry = 24 * time.Hour
	cfg.Admin.Username = "admin"
	cfg.Admin.Password = "test-password"
	return cfg
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := imaging.New(w, h, color.NRGBA{R: 220, G: 120, B: 40, A: 255})
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG))
	return buf.Bytes()
}

func TestGoldenPath(t *testing.T) {
	// 1. Setup Infrastructure
	db, mongoClient, cleanupDB := SetupTestDB(t)
	defer cleanupDB()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	fileRepo := NewMemFileRepository()

	// 2. Initialize App
	app := server.NewApp(server.AppDependencies{
		Config:      testConfig(),
		MongoDB:     db,
		RedisClient: redisClient,
		MongoClient: mongoClient,
		FileRepo:    fileRepo,
		ChatService: &FakeChatService{CannedReply: "The branzino is great today."},
	})

	// Helper for JSON requests
	request := func(method, path, token string, body interface{}) *http.Response {
		var bodyReader io.Reader
		if body != nil {
			jsonBytes, _ := json.Marshal(body)
			bodyReader = bytes.NewReader(jsonBytes)
		}
		req, _ := http.NewRequest(method, path, bodyReader)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	decode := func(resp *http.Response, out interface{}) {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
		resp.Body.Close()
	}

	// ==========================================
	// STEP 1: Liveness & health
	// ==========================================
	resp := request("GET", "/", "", nil)
	assert.Equal(t, 200, resp.StatusCode)

	resp = request("GET", "/health", "", nil)
	assert.Equal(t, 200, resp.StatusCode)

	// ==========================================
	// STEP 2: Admin login
	// ==========================================
	login := func(username, password string) *http.Response {
		form := url.Values{}
		form.Set("username", username)
		form.Set("password", password)
		req, _ := http.NewRequest("POST", "/token", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	resp = login("admin", "wrong-password")
	assert.Equal(t, 401, resp.StatusCode)

	resp = login("admin", "test-password")
	require.Equal(t, 200, resp.StatusCode)

	var tokenData map[string]interface{}
	decode(resp, &tokenData)
	adminToken := tokenData["access_token"].(string)
	refreshToken := tokenData["refresh_token"].(string)
	require.NotEmpty(t, adminToken)
	require.NotEmpty(t, refreshToken)

	fmt.Println("✓ Admin Logged In")

	// ==========================================
	// STEP 3: Catalog is guarded
	// ==========================================
	resp = request("POST", "/admin/menu", "", map[string]interface{}{"name": "Sneaky", "price": 1})
	assert.Equal(t, 401, resp.StatusCode)

	// ==========================================
	// STEP 4: Create menu item
	// ==========================================
	resp = request("POST", "/admin/menu", adminToken, map[string]interface{}{
		"name":        "Margherita Pizza",
		"description": "Tomato, mozzarella, basil",
		"price":       12.5,
		"tags":        []string{"pizza", "vegetarian"},
	})
	require.Equal(t, 201, resp.StatusCode)

	var itemData map[string]interface{}
	decode(resp, &itemData)
	itemID := itemData["id"].(string)
	require.NotEmpty(t, itemID)
	assert.Equal(t, 12.5, itemData["price"])

	fmt.Println("✓ Menu Item Created:", itemID)

	// Public list sees it, without an image yet
	resp = request("GET", "/menu", "", nil)
	require.Equal(t, 200, resp.StatusCode)

	var listData []map[string]interface{}
	decode(resp, &listData)
	require.Len(t, listData, 1)
	assert.Equal(t, "Margherita Pizza", listData[0]["name"])
	assert.Nil(t, listData[0]["imageUrl"])

	// ==========================================
	// STEP 5: Upload image
	// ==========================================
	upload := func(token string, filename string, payload []byte) *http.Response {
		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(payload)
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		req, _ := http.NewRequest("POST", "/upload", &body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	// Uploads are admin-only
	resp = upload("", "dish.jpg", jpegBytes(t, 320, 240))
	assert.Equal(t, 401, resp.StatusCode)

	// Non-image payloads are rejected
	resp = upload(adminToken, "notes.txt", []byte("just some text"))
	assert.Equal(t, 415, resp.StatusCode)

	resp = upload(adminToken, "dish.jpg", jpegBytes(t, 320, 240))
	require.Equal(t, 200, resp.StatusCode)

	var uploadData map[string]interface{}
	decode(resp, &uploadData)
	imageURL := uploadData["url"].(string)
	storedFilename := uploadData["stored_filename"].(string)
	assert.Equal(t, "dish.jpg", uploadData["original_filename"])
	assert.True(t, strings.HasPrefix(imageURL, "/uploads/"))
	assert.True(t, strings.HasSuffix(storedFilename, ".jpg"))
	assert.Equal(t, 1, fileRepo.Count())

	fmt.Println("✓ Image Uploaded:", imageURL)

	// Stored file is served back
	resp = request("GET", imageURL, "", nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	resp.Body.Close()

	// ==========================================
	// STEP 6: Associate image with menu item
	// ==========================================
	resp = request("PUT", "/admin/menu/"+itemID+"/image", adminToken, map[string]string{
		"imageUrl": imageURL,
	})
	require.Equal(t, 200, resp.StatusCode)

	var associated map[string]interface{}
	decode(resp, &associated)
	assert.Equal(t, imageURL, associated["imageUrl"])
	// Narrow mutation: everything else untouched
	assert.Equal(t, "Margherita Pizza", associated["name"])
	assert.Equal(t, 12.5, associated["price"])

	fmt.Println("✓ Image Associated")

	// Association against a missing item fails and changes nothing
	resp = request("PUT", "/admin/menu/ffffffffffffffffffffffff/image", adminToken, map[string]string{
		"imageUrl": "/uploads/ghost.jpg",
	})
	assert.Equal(t, 404, resp.StatusCode)

	resp = request("GET", "/menu", "", nil)
	decode(resp, &listData)
	require.Len(t, listData, 1)
	assert.Equal(t, imageURL, listData[0]["imageUrl"])

	// ==========================================
	// STEP 7: General update round-trips the image URL
	// ==========================================
	resp = request("PUT", "/admin/menu/"+itemID, adminToken, map[string]interface{}{
		"name":        "Margherita Pizza",
		"description": "Wood-fired, tomato, mozzarella, basil",
		"price":       13.0,
		"tags":        []string{"pizza", "vegetarian"},
		"imageUrl":    imageURL,
	})
	require.Equal(t, 200, resp.StatusCode)

	var updated map[string]interface{}
	decode(resp, &updated)
	assert.Equal(t, 13.0, updated["price"])
	assert.Equal(t, imageURL, updated["imageUrl"])

	// ==========================================
	// STEP 8: Token refresh rotation
	// ==========================================
	resp = request("POST", "/token/refresh", "", map[string]string{"refresh_token": refreshToken})
	require.Equal(t, 200, resp.StatusCode)

	var rotated map[string]interface{}
	decode(resp, &rotated)
	newRefresh := rotated["refresh_token"].(string)
	require.NotEmpty(t, newRefresh)
	assert.NotEqual(t, refreshToken, newRefresh)

	// Spent token is rejected
	resp = request("POST", "/token/refresh", "", map[string]string{"refresh_token": refreshToken})
	assert.Equal(t, 401, resp.StatusCode)

	fmt.Println("✓ Refresh Token Rotated")

	// ==========================================
	// STEP 9: Chat relay
	// ==========================================
	resp = request("POST", "/chat", "", map[string]interface{}{
		"message": "What do you recommend?",
	})
	require.Equal(t, 200, resp.StatusCode)

	var chatData map[string]interface{}
	decode(resp, &chatData)
	assert.Equal(t, "The branzino is great today.", chatData["reply"])

	// Blank messages are rejected before reaching the provider
	resp = request("POST", "/chat", "", map[string]interface{}{"message": "  "})
	assert.Equal(t, 400, resp.StatusCode)

	// ==========================================
	// STEP 10: Delete
	// ==========================================
	resp = request("DELETE", "/admin/menu/"+itemID, adminToken, nil)
	assert.Equal(t, 200, resp.StatusCode)

	resp = request("GET", "/menu", "", nil)
	decode(resp, &listData)
	assert.Len(t, listData, 0)

	fmt.Println("✓ Golden Path Complete")
}

func TestIdempotentCreateReplay(t *testing.T) {
	db, mongoClient, cleanupDB := SetupTestDB(t)
	defer cleanupDB()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	app := server.NewApp(server.AppDependencies{
		Config:      testConfig(),
		MongoDB:     db,
		RedisClient: redisClient,
		MongoClient: mongoClient,
		FileRepo:    NewMemFileRepository(),
		ChatService: &FakeChatService{},
	})

	// Login
	form := url.Values{}
	form.Set("username", "admin")
	form.Set("password", "test-password")
	req, _ := http.NewRequest("POST", "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var tokenData map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tokenData))
	adminToken := tokenData["access_token"].(string)

	create := func(correlationID string) *http.Response {
		body, _ := json.Marshal(map[string]interface{}{
			"name":  "Panna Cotta",
			"price": 7.5,
		})
		req, _ := http.NewRequest("POST", "/admin/menu", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+adminToken)
		req.Header.Set("X-Correlation-ID", correlationID)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	first := create("corr-123")
	require.Equal(t, 201, first.StatusCode)
	var firstData map[string]interface{}
	require.NoError(t, json.NewDecoder(first.Body).Decode(&firstData))

	// The idempotency cache write is async; give it a moment.
	require.Eventually(t, func() bool {
		return mr.Exists("idempotency:corr-123")
	}, 2*time.Second, 10*time.Millisecond)

	replay := create("corr-123")
	assert.Equal(t, "true", replay.Header.Get("X-Idempotent-Replay"))
	var replayData map[string]interface{}
	require.NoError(t, json.NewDecoder(replay.Body).Decode(&replayData))
	assert.Equal(t, firstData["id"], replayData["id"])

	// Only one item actually exists
	req, _ = http.NewRequest("GET", "/menu", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	var items []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	assert.Len(t, items, 1)
}
