package handlers_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/example/tribuna/internal/apperr"
	"github.com/example/tribuna/internal/models"
	"github.com/example/tribuna/internal/services"
)

func TestCompanyAdminAndLookup(t *testing.T) {
	app, db, cfg := testApp(t)

	staff := &models.User{Username: "admin", IsActive: true, IsStaff: true, KeyVersion: 1}
	require.NoError(t, db.Create(staff).Error)
	staffToken, err := services.NewTokenService(db, cfg).Issue(staff)
	require.NoError(t, err)

	// Create a company and two discounts, one of them zero-value.
	status, body := doJSON(t, app, http.MethodPost, "/api/companies",
		fiber.Map{"name": "Arena Cafe", "address": "Main St 1"}, staffToken)
	require.Equal(t, http.StatusCreated, status)
	companyID := body["data"].(map[string]interface{})["id"].(string)

	status, body = doJSON(t, app, http.MethodPost, "/api/companies/"+companyID+"/discounts",
		fiber.Map{"percent": 15, "description": "matchday"}, staffToken)
	require.Equal(t, http.StatusCreated, status)
	discountID := body["data"].(map[string]interface{})["id"].(string)

	status, body = doJSON(t, app, http.MethodPost, "/api/companies/"+companyID+"/discounts",
		fiber.Map{"description": "placeholder"}, staffToken)
	require.Equal(t, http.StatusCreated, status)
	zeroDiscountID := body["data"].(map[string]interface{})["id"].(string)

	// Register an employee through the OTP flow and link them.
	_, body = doJSON(t, app, http.MethodPost, "/api/activations", fiber.Map{"phone": testPhone}, "")
	activationID := body["activation"].(map[string]interface{})["id"].(string)
	_, body = doJSON(t, app, http.MethodPost, "/api/activations/"+activationID+"/activate",
		fiber.Map{"code": "1111"}, "")
	userToken := body["token"].(string)
	userID := body["user"].(map[string]interface{})["id"].(string)

	status, _ = doJSON(t, app, http.MethodPost, "/api/companies/"+companyID+"/employees",
		fiber.Map{
			"user_id":      userID,
			"position":     "barista",
			"is_employer":  true,
			"discount_ids": []string{discountID, zeroDiscountID},
		}, staffToken)
	require.Equal(t, http.StatusCreated, status)

	// The linked user resolves employee discounts through their QR code.
	status, body = doJSON(t, app, http.MethodGet, "/api/profile/qr", nil, userToken)
	require.Equal(t, http.StatusOK, status)
	qrURL := body["qr"].(string)
	lookupPath := qrURL[len(cfg.PublicBaseURL):]

	status, body = doJSON(t, app, http.MethodGet, lookupPath, nil, "")
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]interface{})
	require.Equal(t, "Arena Cafe", data["company_name"])
	require.Equal(t, "barista", data["company_position"])

	companies := data["company_discounts"].([]interface{})
	require.Len(t, companies, 1)
	discounts := companies[0].(map[string]interface{})["discounts"].([]interface{})
	require.Len(t, discounts, 1, "zero-value discount entries are skipped")
}

func TestCompanyRoutesRequireStaff(t *testing.T) {
	app, db, cfg := testApp(t)

	user := &models.User{Username: "+77019998877", IsActive: true, KeyVersion: 1}
	require.NoError(t, db.Create(user).Error)
	token, err := services.NewTokenService(db, cfg).Issue(user)
	require.NoError(t, err)

	status, body := doJSON(t, app, http.MethodPost, "/api/companies",
		fiber.Map{"name": "Arena Cafe"}, token)
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, string(apperr.KindForbidden), body["code"])
}

func TestUploadLogoRejectsNonImage(t *testing.T) {
	app, db, cfg := testApp(t)

	staff := &models.User{Username: "admin", IsActive: true, IsStaff: true, KeyVersion: 1}
	require.NoError(t, db.Create(staff).Error)
	staffToken, err := services.NewTokenService(db, cfg).Issue(staff)
	require.NoError(t, err)

	status, body := doJSON(t, app, http.MethodPost, "/api/companies",
		fiber.Map{"name": "Arena Cafe"}, staffToken)
	require.Equal(t, http.StatusCreated, status)
	companyID := body["data"].(map[string]interface{})["id"].(string)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("logo", "logo.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("definitely not a png"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/companies/"+companyID+"/logo", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+staffToken)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	entries, err := os.ReadDir(cfg.UploadDir)
	require.NoError(t, err)
	require.Empty(t, entries, "rejected upload must not leave a file behind")
}

func TestFanDiscountPool(t *testing.T) {
	app, db, cfg := testApp(t)

	staff := &models.User{Username: "admin", IsActive: true, IsStaff: true, KeyVersion: 1}
	require.NoError(t, db.Create(staff).Error)
	staffToken, err := services.NewTokenService(db, cfg).Issue(staff)
	require.NoError(t, err)

	status, body := doJSON(t, app, http.MethodPost, "/api/companies",
		fiber.Map{"name": "Stadium Shop"}, staffToken)
	require.Equal(t, http.StatusCreated, status)
	companyID := body["data"].(map[string]interface{})["id"].(string)

	status, body = doJSON(t, app, http.MethodPost, "/api/companies/"+companyID+"/discounts",
		fiber.Map{"amount": 500, "description": "fan special"}, staffToken)
	require.Equal(t, http.StatusCreated, status)
	discountID := body["data"].(map[string]interface{})["id"].(string)

	status, _ = doJSON(t, app, http.MethodPost, "/api/fan-discounts",
		fiber.Map{"discount_ids": []string{discountID}}, staffToken)
	require.Equal(t, http.StatusCreated, status)

	// A fan user sees the pool through lookup.
	_, body = doJSON(t, app, http.MethodPost, "/api/activations", fiber.Map{"phone": testPhone}, "")
	activationID := body["activation"].(map[string]interface{})["id"].(string)
	_, body = doJSON(t, app, http.MethodPost, "/api/activations/"+activationID+"/activate",
		fiber.Map{"code": "1111"}, "")
	userToken := body["token"].(string)

	_, body = doJSON(t, app, http.MethodGet, "/api/profile/qr", nil, userToken)
	lookupPath := body["qr"].(string)[len(cfg.PublicBaseURL):]

	status, body = doJSON(t, app, http.MethodGet, lookupPath, nil, "")
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]interface{})
	companies := data["company_discounts"].([]interface{})
	require.Len(t, companies, 1)
	require.Equal(t, "Stadium Shop", companies[0].(map[string]interface{})["company"])
}
