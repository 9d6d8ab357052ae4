package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/price-catalog/internal/application/dto"
	apphttp "github.com/jhoicas/price-catalog/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/price-catalog/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testSubject   = "operador-precios"
	testIssuer    = "price-catalog-test"
	testExpMin    = 60
)

func signed(t *testing.T, secret, role string, expMin int) string {
	t.Helper()
	tok, err := pkgjwt.Generate(secret, testSubject, role, testIssuer, expMin)
	require.NoError(t, err)
	return tok
}

// La importación es la única ruta protegida. Un cuerpo que no es xlsx deja pasar
// la autorización y falla en el handler con 422.
func TestAdminImport_Autorizacion(t *testing.T) {
	app := buildApp(newRepo())
	garbage := []byte("no es xlsx")

	cases := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"sin header", "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"esquema distinto", "Token abc", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"malformado", "Bearer token.invalido.aqui", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"otro secreto", "Bearer " + signed(t, "otro-secreto", pkgjwt.RoleAdmin, testExpMin), http.StatusUnauthorized, "INVALID_TOKEN"},
		{"expirado", "Bearer " + signed(t, testJWTSecret, pkgjwt.RoleAdmin, -1), http.StatusUnauthorized, "INVALID_TOKEN"},
		{"sin rol", "Bearer " + signed(t, testJWTSecret, "", testExpMin), http.StatusUnauthorized, "MISSING_ROLE"},
		{"rol desconocido", "Bearer " + signed(t, testJWTSecret, "lector", testExpMin), http.StatusForbidden, "FORBIDDEN"},
		{"admin", "Bearer " + signed(t, testJWTSecret, pkgjwt.RoleAdmin, testExpMin), http.StatusUnprocessableEntity, "INVALID_PRICE_LIST"},
		{"admin en mayúsculas", "Bearer " + signed(t, testJWTSecret, "ADMIN", testExpMin), http.StatusUnprocessableEntity, "INVALID_PRICE_LIST"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := importRequest(t, "", garbage)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, decode[dto.ErrorResponse](t, resp).Code)
		})
	}
}

func TestAuth_RutasPublicasIgnoranElToken(t *testing.T) {
	app := buildApp(newRepo())
	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set(apphttp.UserIDHeader, clientID)
	req.Header.Set("Authorization", "Bearer basura")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthMiddleware_CargaSubjectYRol(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"subject": apphttp.GetSubject(c), "role": apphttp.GetRole(c)})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, testJWTSecret, pkgjwt.RoleAdmin, testExpMin))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]string](t, resp)
	assert.Equal(t, testSubject, body["subject"])
	assert.Equal(t, pkgjwt.RoleAdmin, body["role"])
}
