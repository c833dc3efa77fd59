package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/signworks/orderflow-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *controllerEnv) createLead(name, status string) *models.Lead {
	e.t.Helper()
	r := e.router(e.admin, http.MethodPost, "/admin/createLead", CreateLead)
	body := map[string]string{"name": name, "email": "Hello@" + strings.ReplaceAll(name, " ", "") + ".test", "company": name + " Hospitality"}
	if status != "" {
		body["status"] = status
	}
	w := e.do(r, http.MethodPost, "/admin/createLead", body)
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	var lead models.Lead
	decode(e.t, w, &lead)
	return &lead
}

func TestCreateLead(t *testing.T) {
	env := newControllerEnv(t)
	lead := env.createLead("Brewhouse", "")
	assert.Equal(t, models.LeadNew, lead.Status)
	assert.Equal(t, env.admin.ID, lead.CreatedByID)

	r := env.router(env.admin, http.MethodPost, "/admin/createLead", CreateLead)
	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing name", map[string]string{"email": "a@b.test"}},
		{"bad email", map[string]string{"name": "A", "email": "not-an-email"}},
		{"unknown status", map[string]string{"name": "A", "status": "Warm"}},
		{"converted is not settable", map[string]string{"name": "A", "status": "Converted"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(r, http.MethodPost, "/admin/createLead", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestGetAllLeads_Filters(t *testing.T) {
	env := newControllerEnv(t)
	env.createLead("Brewhouse", "")
	env.createLead("Cafe Nova", "Qualified")
	env.createLead("Grand Hotel", "Lost")

	r := env.router(env.admin, http.MethodGet, "/admin/getAllLeads", GetAllLeads)

	var leads []models.Lead
	w := env.do(r, http.MethodGet, "/admin/getAllLeads", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &leads)
	assert.Len(t, leads, 3)

	w = env.do(r, http.MethodGet, "/admin/getAllLeads?status=Qualified", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &leads)
	require.Len(t, leads, 1)
	assert.Equal(t, "Cafe Nova", leads[0].Name)

	w = env.do(r, http.MethodGet, "/admin/getAllLeads?search=hotel", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &leads)
	require.Len(t, leads, 1)
	assert.Equal(t, "Grand Hotel", leads[0].Name)

	w = env.do(r, http.MethodGet, "/admin/getAllLeads?status=Warm", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConvertToCustomer(t *testing.T) {
	env := newControllerEnv(t)
	lead := env.createLead("Brewhouse", "Qualified")

	r := env.router(env.admin, http.MethodPost, "/admin/convertToCustomer/:id", ConvertToCustomer)
	path := fmt.Sprintf("/admin/convertToCustomer/%d", lead.ID)

	w := env.do(r, http.MethodPost, path, map[string]string{"address": "4 Lake View", "gstin": "29ABCDE1234F1Z5"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var result struct {
		Customer models.Customer `json:"customer"`
		Lead     models.Lead     `json:"lead"`
	}
	decode(t, w, &result)
	assert.Equal(t, "Brewhouse", result.Customer.Name)
	assert.Equal(t, "hello@brewhouse.test", result.Customer.Email)
	assert.Equal(t, "4 Lake View", result.Customer.Address)
	require.NotNil(t, result.Customer.LeadID)
	assert.Equal(t, lead.ID, *result.Customer.LeadID)
	assert.Equal(t, models.LeadConverted, result.Lead.Status)
	require.NotNil(t, result.Lead.CustomerID)
	assert.Equal(t, result.Customer.ID, *result.Lead.CustomerID)
	assert.NotNil(t, result.Lead.ConvertedAt)

	t.Run("second conversion conflicts", func(t *testing.T) {
		w := env.do(r, http.MethodPost, path, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "ALREADY_CONVERTED", errorCode(t, w))

		var count int64
		env.db.Model(&models.Customer{}).Where("lead_id = ?", lead.ID).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("converted leads are read-only", func(t *testing.T) {
		update := env.router(env.admin, http.MethodPut, "/admin/updateLead/:id", UpdateLead)
		w := env.do(update, http.MethodPut, fmt.Sprintf("/admin/updateLead/%d", lead.ID), map[string]string{"notes": "late edit"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("lost leads cannot convert", func(t *testing.T) {
		lost := env.createLead("Grand Hotel", "Lost")
		w := env.do(r, http.MethodPost, fmt.Sprintf("/admin/convertToCustomer/%d", lost.ID), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown lead", func(t *testing.T) {
		w := env.do(r, http.MethodPost, "/admin/convertToCustomer/9999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUpdateAndDeleteLead(t *testing.T) {
	env := newControllerEnv(t)
	lead := env.createLead("Brewhouse", "")

	update := env.router(env.admin, http.MethodPut, "/admin/updateLead/:id", UpdateLead)
	w := env.do(update, http.MethodPut, fmt.Sprintf("/admin/updateLead/%d", lead.ID), map[string]string{
		"status": "Contacted",
		"notes":  "Called on Monday",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.Lead
	decode(t, w, &updated)
	assert.Equal(t, models.LeadContacted, updated.Status)
	assert.Equal(t, "Called on Monday", updated.Notes)
	assert.Equal(t, "Brewhouse", updated.Name, "omitted fields are left alone")

	del := env.router(env.admin, http.MethodDelete, "/admin/deleteLead/:id", DeleteLead)
	w = env.do(del, http.MethodDelete, fmt.Sprintf("/admin/deleteLead/%d", lead.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	get := env.router(env.admin, http.MethodGet, "/admin/getLead/:id", GetLead)
	w = env.do(get, http.MethodGet, fmt.Sprintf("/admin/getLead/%d", lead.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(del, http.MethodDelete, fmt.Sprintf("/admin/deleteLead/%d", lead.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
