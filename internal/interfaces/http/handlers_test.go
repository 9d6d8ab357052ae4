package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/price-catalog/internal/application/cart"
	"github.com/jhoicas/price-catalog/internal/application/dto"
	"github.com/jhoicas/price-catalog/internal/application/pricelist"
	"github.com/jhoicas/price-catalog/internal/application/usecase"
	"github.com/jhoicas/price-catalog/internal/domain/entity"
	"github.com/jhoicas/price-catalog/internal/domain/repository"
	"github.com/jhoicas/price-catalog/internal/infrastructure/excel"
	"github.com/jhoicas/price-catalog/internal/infrastructure/memory"
	"github.com/jhoicas/price-catalog/internal/infrastructure/xmlfeed"
	apphttp "github.com/jhoicas/price-catalog/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/price-catalog/pkg/jwt"
)

const clientID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"

// memRepo catálogo en memoria que cumple repository.ProductRepository.
type memRepo struct {
	mu       sync.Mutex
	products []*entity.Product
}

func (r *memRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Product
	for _, p := range r.products {
		if f.Search != "" {
			s := strings.ToLower(f.Search)
			if !strings.Contains(p.Article, s) && !strings.Contains(strings.ToLower(p.Name), s) {
				continue
			}
		} else if len(f.Manufacturers) > 0 && !containsFold(f.Manufacturers, p.Manufacturer) {
			continue
		}
		out = append(out, p)
	}
	total := len(out)
	if f.Offset < len(out) {
		out = out[f.Offset:]
	} else {
		out = nil
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, total, nil
}

func (r *memRepo) GetByArticle(_ context.Context, article string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Article == entity.NormalizeArticle(article) {
			return p, nil
		}
	}
	return nil, nil
}

func (r *memRepo) Count(ctx context.Context, manufacturers []string) (int, error) {
	_, n, err := r.List(ctx, repository.ProductFilter{Manufacturers: manufacturers})
	return n, err
}

func (r *memRepo) Manufacturers(context.Context) ([]entity.ManufacturerCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.ManufacturerCount
	for _, p := range r.products {
		if n := len(out); n > 0 && out[n-1].Name == p.Manufacturer {
			out[n-1].Count++
			continue
		}
		out = append(out, entity.ManufacturerCount{Name: p.Manufacturer, Count: 1})
	}
	return out, nil
}

func (r *memRepo) ListAll(context.Context) ([]*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products, nil
}

func (r *memRepo) ReplaceAll(_ context.Context, products []*entity.Product) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = products
	return int64(len(products)), nil
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func newRepo() *memRepo {
	return &memRepo{products: []*entity.Product{
		{ID: 1, Manufacturer: "Jung", Article: "ls1520", Name: "Рамка", PriceRub: 1920, AstanaQty: 14, AlmatyQty: 2},
		{ID: 2, Manufacturer: "Legrand", Article: "cd581", Name: "Розетка", PriceRub: 3450, AlmatyQty: 3},
		{ID: 3, Manufacturer: "Wago", Article: "221-412", Name: "Клемма", PriceRub: 45, LeadTimeDefault: "10-14 дней"},
	}}
}

func buildApp(repo *memRepo) *fiber.App {
	productUC := usecase.NewProductUseCase(repo, nil, nil, usecase.Paging{PageSize: 500, MaxPageSize: 2000, SearchLimit: 100})
	sessions := cart.NewSessions(memory.NewStorage(), nil, zerolog.Nop())
	cartSvc := cart.NewService(sessions, repo, cart.QuantityLimits{Min: 0, Max: 9999})
	settings := pricelist.Settings{Kurs: decimal.NewFromInt(5), GlobalMargin: decimal.RequireFromString("0.6")}

	app := fiber.New(fiber.Config{UnescapePath: true})
	apphttp.Router(app, apphttp.RouterDeps{
		ProductUC: productUC,
		FeedUC:    usecase.NewFeedUseCase(repo, xmlfeed.NewYMLFeed(xmlfeed.Shop{Name: "Прайс-каталог"})),
		CartSvc:   cartSvc,
		Exporter:  cart.NewExporter(sessions, excel.NewOrderWriter(), nil),
		ImportUC:  pricelist.NewImportUseCase(repo, excel.NewPriceListReader(), productUC, nil, settings, zerolog.Nop()),
		JWTSecret: testJWTSecret,
		Log:       zerolog.Nop(),
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apphttp.UserIDHeader, clientID)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestProducts_List(t *testing.T) {
	app := buildApp(newRepo())

	resp := call(t, app, http.MethodGet, "/api/products?manufacturer=jung", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.ProductListResponse](t, resp)
	assert.Equal(t, 1, out.Total)
	assert.False(t, out.HasMore)
	assert.Equal(t, 500, out.Limit)
	require.Len(t, out.Products, 1)
	assert.Equal(t, "fast", string(out.Products[0].LeadTime.Type))
	assert.Nil(t, out.Products[0].LeadTimeDefault)

	resp = call(t, app, http.MethodGet, "/api/products?limit=1", nil)
	out = decode[dto.ProductListResponse](t, resp)
	assert.Equal(t, 3, out.Total)
	assert.True(t, out.HasMore)

	resp = call(t, app, http.MethodGet, "/api/products?search=cd5&manufacturer=Jung", nil)
	out = decode[dto.ProductListResponse](t, resp)
	require.Len(t, out.Products, 1)
	assert.Equal(t, "cd581", out.Products[0].Article)
}

func TestProducts_GetStockYPlazo(t *testing.T) {
	app := buildApp(newRepo())

	resp := call(t, app, http.MethodGet, "/api/products/LS1520", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(1920), decode[dto.ProductResponse](t, resp).PriceRub)

	resp = call(t, app, http.MethodGet, "/api/products/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	for _, path := range []string{"/api/products/stock/cd581", "/api/stock/CD581"} {
		resp = call(t, app, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		stock := decode[dto.StockResponse](t, resp)
		assert.Equal(t, dto.StockResponse{Article: "cd581", Astana: 0, Almaty: 3}, stock)
	}

	resp = call(t, app, http.MethodGet, "/api/products/ls1520/lead-time?qty=15", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	lt := decode[dto.LeadTimeResponse](t, resp)
	assert.Equal(t, "10-14 дней", lt.Text)
	assert.Equal(t, "cell-lead-time medium", lt.Class)

	resp = call(t, app, http.MethodGet, "/api/products/count", nil)
	assert.Equal(t, 3, decode[dto.CountResponse](t, resp).Count)

	for _, path := range []string{"/api/manufacturers", "/api/products/meta/manufacturers"} {
		resp = call(t, app, http.MethodGet, path, nil)
		assert.Len(t, decode[dto.ManufacturersResponse](t, resp).Manufacturers, 3, path)
	}
}

func TestProducts_FeedYHealth(t *testing.T) {
	app := buildApp(newRepo())

	resp := call(t, app, http.MethodGet, "/api/products/feed.xml", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, xmlfeed.ContentType, resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `<offer id="ls1520" available="true">`)

	for _, path := range []string{"/health", "/api/health"} {
		resp = call(t, app, http.MethodGet, path, nil)
		assert.Equal(t, "ok", decode[dto.HealthResponse](t, resp).Status)
	}
}

func TestCart_Flujo(t *testing.T) {
	app := buildApp(newRepo())

	resp := call(t, app, http.MethodPost, "/api/cart/items", dto.AddCartItemRequest{Article: "LS1520", Quantity: 5})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cartOut := decode[dto.CartResponse](t, resp)
	require.Len(t, cartOut.Items, 1)
	assert.Equal(t, "6-10 дней", cartOut.Items[0].LeadTime)

	resp = call(t, app, http.MethodPost, "/api/cart/items", dto.AddCartItemRequest{Article: "cd581", Quantity: 2})
	cartOut = decode[dto.CartResponse](t, resp)
	assert.Equal(t, int64(16500), cartOut.Total)
	assert.Equal(t, 2, cartOut.ItemsCount)
	assert.Equal(t, 7, cartOut.TotalQuantity)

	resp = call(t, app, http.MethodPut, "/api/cart/items/ls1520", dto.UpdateCartItemRequest{Quantity: 15})
	cartOut = decode[dto.CartResponse](t, resp)
	assert.Equal(t, "ls1520", cartOut.Items[0].Article)
	assert.Equal(t, "10-14 дней", cartOut.Items[0].LeadTime)

	resp = call(t, app, http.MethodGet, "/api/cart", nil)
	assert.Equal(t, 17, decode[dto.CartResponse](t, resp).TotalQuantity)

	resp = call(t, app, http.MethodDelete, "/api/cart/items/cd581", nil)
	assert.Equal(t, 1, decode[dto.CartResponse](t, resp).ItemsCount)

	resp = call(t, app, http.MethodDelete, "/api/cart", nil)
	assert.Zero(t, decode[dto.CartResponse](t, resp).ItemsCount)
}

func TestCart_Errores(t *testing.T) {
	app := buildApp(newRepo())

	resp := call(t, app, http.MethodPost, "/api/cart/items", dto.AddCartItemRequest{Article: "nope", Quantity: 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = call(t, app, http.MethodPost, "/api/cart/items", dto.AddCartItemRequest{Quantity: 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCart_CookieDeCliente(t *testing.T) {
	app := buildApp(newRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == apphttp.UserIDCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Len(t, cookie.Value, 36)

	// Con la cookie ya puesta no se genera otra.
	req = httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	for _, c := range resp.Cookies() {
		assert.NotEqual(t, apphttp.UserIDCookie, c.Name)
	}
}

func TestExport(t *testing.T) {
	app := buildApp(newRepo())

	resp := call(t, app, http.MethodGet, "/api/cart/export.xlsx", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errOut := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "EMPTY_CART", errOut.Code)
	assert.Equal(t, "Корзина пуста. Нечего выгружать.", errOut.Message)

	call(t, app, http.MethodPost, "/api/cart/items", dto.AddCartItemRequest{Article: "ls1520", Quantity: 2})
	resp = call(t, app, http.MethodGet, "/api/cart/export.xlsx", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, cart.ContentTypeXLSX, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")

	body, _ := io.ReadAll(resp.Body)
	f, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(excel.OrderSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "3840", rows[2][5])
}

func priceListWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	require.NoError(t, f.SetSheetName("Sheet1", excel.SheetProducts))
	rows := [][]interface{}{
		{"manufacturer", "article", "name", "dealer_price_kzt"},
		{"Jung", "AS500", "Клавиша", "500"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(excel.SheetProducts, cell, &r))
	}
	buf := &bytes.Buffer{}
	require.NoError(t, f.Write(buf))
	return buf.Bytes()
}

func importRequest(t *testing.T, token string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", "price.xlsx")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/import", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestAdminImport(t *testing.T) {
	repo := newRepo()
	app := buildApp(repo)
	content := priceListWorkbook(t)

	resp, err := app.Test(importRequest(t, "", content), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	tok, err := pkgjwt.Generate(testJWTSecret, testSubject, "lector", testIssuer, testExpMin)
	require.NoError(t, err)
	resp, err = app.Test(importRequest(t, tok, content), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	tok, err = pkgjwt.Generate(testJWTSecret, testSubject, pkgjwt.RoleAdmin, testIssuer, testExpMin)
	require.NoError(t, err)
	resp, err = app.Test(importRequest(t, tok, content), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decode[pricelist.Result](t, resp)
	assert.Equal(t, int64(1), res.Loaded)

	require.Len(t, repo.products, 1)
	assert.Equal(t, "as500", repo.products[0].Article)
	assert.Equal(t, int64(160), repo.products[0].PriceRub)

	resp, err = app.Test(importRequest(t, tok, []byte("no es xlsx")), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestCart_StockParcial(t *testing.T) {
	app := buildApp(newRepo())
	call(t, app, http.MethodPost, "/api/cart/items", dto.AddCartItemRequest{Article: "ls1520", Quantity: 1})

	// Solo llega Astaná: Almaty se conserva (2), 0 + 2 >= 2 → medium.
	zero := 0
	resp := call(t, app, http.MethodPut, "/api/cart/items/ls1520", dto.UpdateCartItemRequest{Quantity: 2, AstanaQty: &zero})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.CartResponse](t, resp)
	require.Len(t, out.Items, 1)
	assert.Equal(t, 0, out.Items[0].AstanaQty)
	assert.Equal(t, 2, out.Items[0].AlmatyQty)
	assert.Equal(t, "10-14 дней", out.Items[0].LeadTime)
}
