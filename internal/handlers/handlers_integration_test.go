package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"catalog/internal/database"
	"catalog/internal/dto"
	"catalog/internal/handlers"
	"catalog/internal/middleware"
	"catalog/internal/repositories"
	"catalog/internal/services"
)

// errorEnvelope mirrors the JSON error body produced by the handlers.
type errorEnvelope struct {
	Code        string            `json:"code"`
	Message     string            `json:"message"`
	FieldErrors map[string]string `json:"fieldErrors"`
}

// setupApp wires a Fiber app against a fresh in-memory SQLite database,
// mirroring the route layout of main.go. Event publishing is disabled.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := database.Connect("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	productRepo := repositories.NewGORMProductRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	productService := services.NewProductService(productRepo, categoryRepo, nil)
	categoryService := services.NewCategoryService(categoryRepo, nil)
	authService := services.NewAuthService(userRepo, "test_jwt_secret")

	productHandler := handlers.NewProductHandler(productService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	legacyHandler := handlers.NewLegacyProductHandler(productService)
	authHandler := handlers.NewAuthHandler(authService)

	app := fiber.New()
	auth := middleware.AuthRequired(authService)

	api := app.Group("/api")
	legacyHandler.RegisterRoutes(api, auth)

	apiV1 := api.Group("/v1")
	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1, auth)
	categoryHandler.RegisterRoutes(apiV1, auth)

	return app
}

// request performs one HTTP round trip against the test app.
func request(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return v
}

// adminToken registers an admin account and returns a bearer token for it.
func adminToken(t *testing.T, app *fiber.App) string {
	t.Helper()

	resp := request(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "admin",
		"email":    "admin@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "admin",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	token := decode[dto.TokenResponse](t, resp).Token
	assert.NotEmpty(t, token)
	return token
}

func productBody(name, sku string, price float64, quantity int) map[string]any {
	return map[string]any{
		"name":     name,
		"sku":      sku,
		"price":    price,
		"quantity": quantity,
	}
}

func createProduct(t *testing.T, app *fiber.App, token string, body map[string]any) dto.ProductResponse {
	t.Helper()

	resp := request(t, app, http.MethodPost, "/api/v1/products", token, body)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[dto.ProductResponse](t, resp)
}

// TestMain suppresses logging during tests for cleaner output.
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app := setupApp(t)

	register := map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	}
	resp := request(t, app, http.MethodPost, "/api/v1/auth/register", "", register)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Registering the same username again is rejected.
	resp = request(t, app, http.MethodPost, "/api/v1/auth/register", "", register)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	envelope := decode[errorEnvelope](t, resp)
	assert.Equal(t, "DUPLICATE_RESOURCE", envelope.Code)

	resp = request(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	token := decode[dto.TokenResponse](t, resp)
	assert.NotEmpty(t, token.Token)

	resp = request(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	envelope = decode[errorEnvelope](t, resp)
	assert.Equal(t, "UNAUTHORIZED", envelope.Code)
}

func TestMutationRequiresToken(t *testing.T) {
	app := setupApp(t)

	resp := request(t, app, http.MethodPost, "/api/v1/products", "", productBody("Laptop", "LAP-001", 999.99, 5))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	envelope := decode[errorEnvelope](t, resp)
	assert.Equal(t, "UNAUTHORIZED", envelope.Code)

	resp = request(t, app, http.MethodDelete, "/api/v1/products/1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Reads stay public.
	resp = request(t, app, http.MethodGet, "/api/v1/products", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestProductLifecycle(t *testing.T) {
	app := setupApp(t)
	token := adminToken(t, app)

	created := createProduct(t, app, token, productBody("Laptop", "LAP-001", 999.99, 5))
	assert.NotZero(t, created.ID)
	assert.True(t, created.Active)
	assert.Equal(t, "Laptop", created.Name)

	path := fmt.Sprintf("/api/v1/products/%d", created.ID)

	resp := request(t, app, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	fetched := decode[dto.ProductResponse](t, resp)
	assert.Equal(t, created.ID, fetched.ID)

	resp = request(t, app, http.MethodGet, "/api/v1/products/sku/LAP-001", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	bySKU := decode[dto.ProductResponse](t, resp)
	assert.Equal(t, created.ID, bySKU.ID)

	resp = request(t, app, http.MethodPut, path, token, productBody("Laptop Pro", "LAP-001", 1299.99, 3))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[dto.ProductResponse](t, resp)
	assert.Equal(t, "Laptop Pro", updated.Name)
	assert.Equal(t, 1299.99, updated.Price)

	resp = request(t, app, http.MethodPatch, path+"/stock?quantity=7", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	restocked := decode[dto.ProductResponse](t, resp)
	assert.Equal(t, 7, restocked.Quantity)

	resp = request(t, app, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	// The row survives the delete and stays retrievable by id, just marked
	// inactive.
	resp = request(t, app, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	deleted := decode[dto.ProductResponse](t, resp)
	assert.False(t, deleted.Active)

	// It no longer shows up in the default listing.
	resp = request(t, app, http.MethodGet, "/api/v1/products", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[dto.Page[dto.ProductResponse]](t, resp)
	assert.Equal(t, int64(0), page.TotalElements)
	assert.Empty(t, page.Content)

	// Deleting an already inactive product is a no-op.
	resp = request(t, app, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
}

func TestProductDuplicateSKU(t *testing.T) {
	app := setupApp(t)
	token := adminToken(t, app)

	createProduct(t, app, token, productBody("Laptop", "LAP-001", 999.99, 5))

	resp := request(t, app, http.MethodPost, "/api/v1/products", token, productBody("Other Laptop", "LAP-001", 899.99, 2))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	envelope := decode[errorEnvelope](t, resp)
	assert.Equal(t, "DUPLICATE_RESOURCE", envelope.Code)
	assert.Contains(t, envelope.Message, "LAP-001")
}

func TestProductValidation(t *testing.T) {
	app := setupApp(t)
	token := adminToken(t, app)

	resp := request(t, app, http.MethodPost, "/api/v1/products", token, map[string]any{
		"name":     "x",
		"sku":      "bad sku!",
		"price":    0,
		"quantity": 1,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	envelope := decode[errorEnvelope](t, resp)
	assert.Equal(t, "VALIDATION_FAILED", envelope.Code)
	assert.Contains(t, envelope.FieldErrors, "name")
	assert.Contains(t, envelope.FieldErrors, "sku")
	assert.Contains(t, envelope.FieldErrors, "price")
}

func TestLowStockBoundaries(t *testing.T) {
	app := setupApp(t)
	token := adminToken(t, app)

	for i, quantity := range []int{0, 5, 10, 11} {
		createProduct(t, app, token, productBody(
			fmt.Sprintf("Widget %d", i), fmt.Sprintf("WID-%03d", i), 9.99, quantity))
	}

	// The default threshold is 10: zero stock is out of stock, not low,
	// and 11 sits above the cutoff.
	resp := request(t, app, http.MethodGet, "/api/v1/products/low-stock", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	low := decode[[]dto.ProductResponse](t, resp)
	quantities := make([]int, 0, len(low))
	for _, p := range low {
		quantities = append(quantities, p.Quantity)
	}
	assert.ElementsMatch(t, []int{5, 10}, quantities)

	resp = request(t, app, http.MethodGet, "/api/v1/products/out-of-stock", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[[]dto.ProductResponse](t, resp)
	assert.Len(t, out, 1)
	assert.Equal(t, 0, out[0].Quantity)
}

func TestPriceRangeFilter(t *testing.T) {
	app := setupApp(t)
	token := adminToken(t, app)

	createProduct(t, app, token, productBody("Phone", "PHN-001", 699.99, 10))
	createProduct(t, app, token, productBody("Laptop", "LAP-001", 999.99, 5))

	resp := request(t, app, http.MethodGet, "/api/v1/products/price-range?minPrice=600&maxPrice=800", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[dto.Page[dto.ProductResponse]](t, resp)
	assert.Equal(t, int64(1), page.TotalElements)
	assert.Equal(t, "Phone", page.Content[0].Name)

	resp = request(t, app, http.MethodGet, "/api/v1/products/price-range?minPrice=800&maxPrice=600", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	envelope := decode[errorEnvelope](t, resp)
	assert.Equal(t, "INVALID_ARGUMENT", envelope.Code)
}

func TestProductSearch(t *testing.T) {
	app := setupApp(t)
	token := adminToken(t, app)

	createProduct(t, app, token, productBody("Gaming Laptop", "LAP-001", 1499.99, 3))
	createProduct(t, app, token, productBody("Office Chair", "CHR-001", 199.99, 12))

	resp := request(t, app, http.MethodGet, "/api/v1/products/search?q=laptop", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[dto.Page[dto.ProductResponse]](t, resp)
	assert.Equal(t, int64(1), page.TotalElements)
	assert.Equal(t, "Gaming Laptop", page.Content[0].Name)

	resp = request(t, app, http.MethodGet, "/api/v1/products/search", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestPaginationEnvelope(t *testing.T) {
	app := setupApp(t)
	token := adminToken(t, app)

	for i := 0; i < 3; i++ {
		createProduct(t, app, token, productBody(
			fmt.Sprintf("Item %d", i), fmt.Sprintf("ITM-%03d", i), 10.0+float64(i), 1))
	}

	resp := request(t, app, http.MethodGet, "/api/v1/products?page=0&size=2&sort=price,desc", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[dto.Page[dto.ProductResponse]](t, resp)
	assert.Equal(t, 0, page.Page)
	assert.Equal(t, 2, page.Size)
	assert.Equal(t, int64(3), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Content, 2)
	assert.Equal(t, "Item 2", page.Content[0].Name)

	resp = request(t, app, http.MethodGet, "/api/v1/products?sort=nonsense", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	envelope := decode[errorEnvelope](t, resp)
	assert.Equal(t, "INVALID_ARGUMENT", envelope.Code)
}

func TestCategoryDeleteGuard(t *testing.T) {
	app := setupApp(t)
	token := adminToken(t, app)

	resp := request(t, app, http.MethodPost, "/api/v1/categories", token, map[string]string{
		"name": "Electronics",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	category := decode[dto.CategoryResponse](t, resp)

	body := productBody("Laptop", "LAP-001", 999.99, 5)
	body["categoryId"] = category.ID
	product := createProduct(t, app, token, body)
	assert.Equal(t, "Electronics", product.CategoryName)

	// Soft delete the only product; the guard still counts it, so the
	// category cannot be deleted.
	resp = request(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/products/%d", product.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	categoryPath := fmt.Sprintf("/api/v1/categories/%d", category.ID)
	resp = request(t, app, http.MethodDelete, categoryPath, token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	envelope := decode[errorEnvelope](t, resp)
	assert.Equal(t, "INVALID_STATE", envelope.Code)

	// A category without products deletes cleanly and stays readable.
	resp = request(t, app, http.MethodPost, "/api/v1/categories", token, map[string]string{
		"name": "Furniture",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	empty := decode[dto.CategoryResponse](t, resp)

	resp = request(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/categories/%d", empty.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, app, http.MethodGet, fmt.Sprintf("/api/v1/categories/%d", empty.ID), "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	deleted := decode[dto.CategoryResponse](t, resp)
	assert.False(t, deleted.Active)
}

func TestCategoryDuplicateName(t *testing.T) {
	app := setupApp(t)
	token := adminToken(t, app)

	resp := request(t, app, http.MethodPost, "/api/v1/categories", token, map[string]string{"name": "Books"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, app, http.MethodPost, "/api/v1/categories", token, map[string]string{"name": "Books"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	envelope := decode[errorEnvelope](t, resp)
	assert.Equal(t, "DUPLICATE_RESOURCE", envelope.Code)
}

func TestCategoryGetByName(t *testing.T) {
	app := setupApp(t)
	token := adminToken(t, app)

	resp := request(t, app, http.MethodPost, "/api/v1/categories", token, map[string]string{
		"name": "Home Office",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, app, http.MethodGet, "/api/v1/categories/name/Home%20Office", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	category := decode[dto.CategoryResponse](t, resp)
	assert.Equal(t, "Home Office", category.Name)

	resp = request(t, app, http.MethodGet, "/api/v1/categories/name/Missing", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	envelope := decode[errorEnvelope](t, resp)
	assert.Equal(t, "ENTITY_NOT_FOUND", envelope.Code)
}

func TestLegacyProductSurface(t *testing.T) {
	app := setupApp(t)
	token := adminToken(t, app)

	// The legacy create answers 200, not 201.
	resp := request(t, app, http.MethodPost, "/api/products", token, productBody("Laptop", "LAP-001", 100.0, 2))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	first := decode[dto.ProductResponse](t, resp)

	resp = request(t, app, http.MethodPost, "/api/products", token, productBody("Mouse", "MOU-001", 50.0, 4))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// The legacy delete is a soft delete behind a 200.
	resp = request(t, app, http.MethodDelete, fmt.Sprintf("/api/products/%d", first.ID), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// The flat legacy listing has no status filter, so both rows appear.
	resp = request(t, app, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	all := decode[[]dto.ProductResponse](t, resp)
	assert.Len(t, all, 2)

	// Stats aggregate over every row, the soft-deleted one included:
	// 100 x 2 + 50 x 4 = 400.
	resp = request(t, app, http.MethodGet, "/api/products/stats", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[dto.ProductStats](t, resp)
	assert.Equal(t, int64(2), stats.ProductCount)
	assert.Equal(t, 400.0, stats.TotalValue)

	// Legacy low stock shares the v1 semantics: active rows only, so the
	// soft-deleted laptop is excluded even though its quantity is low.
	resp = request(t, app, http.MethodGet, "/api/products/low-stock", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	low := decode[[]dto.ProductResponse](t, resp)
	assert.Len(t, low, 1)
	assert.Equal(t, "Mouse", low[0].Name)

	resp = request(t, app, http.MethodGet, "/api/products/search?name=mouse", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	found := decode[[]dto.ProductResponse](t, resp)
	assert.Len(t, found, 1)
	assert.Equal(t, "Mouse", found[0].Name)
}

func TestUpdateReplacesOmittedFields(t *testing.T) {
	app := setupApp(t)
	token := adminToken(t, app)

	body := productBody("Laptop", "LAP-001", 999.99, 5)
	body["weight"] = 2.5
	product := createProduct(t, app, token, body)
	assert.Equal(t, 5, product.Quantity)
	assert.Equal(t, 2.5, product.Weight)

	// A PUT without quantity or weight replaces them with zero; old
	// values do not survive a full replace.
	resp := request(t, app, http.MethodPut, fmt.Sprintf("/api/v1/products/%d", product.ID), token, map[string]any{
		"name":  "Laptop",
		"sku":   "LAP-001",
		"price": 999.99,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[dto.ProductResponse](t, resp)
	assert.Equal(t, 0, updated.Quantity)
	assert.Equal(t, 0.0, updated.Weight)
}

func TestUpdateCannotReactivate(t *testing.T) {
	app := setupApp(t)
	token := adminToken(t, app)

	product := createProduct(t, app, token, productBody("Laptop", "LAP-001", 999.99, 5))
	path := fmt.Sprintf("/api/v1/products/%d", product.ID)

	resp := request(t, app, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	body := productBody("Laptop", "LAP-001", 999.99, 5)
	body["active"] = true
	resp = request(t, app, http.MethodPut, path, token, body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	envelope := decode[errorEnvelope](t, resp)
	assert.Equal(t, "INVALID_STATE", envelope.Code)
}
