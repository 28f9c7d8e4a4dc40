package api

import (
	"net/http"
	"testing"

	"landestate/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaintenanceLifecycle(t *testing.T) {
	env := newEnv(t, nil)
	lena := env.createUser("Lena Landlord", "lena@example.com")
	first := env.createProperty(lena, nil)
	second := env.createProperty(lena, nil)
	p := lena.Participant()

	w := env.do(http.MethodPost, "/api/properties/"+id(second.ID)+"/rooms", gin.H{"roomNumber": "2B"}, &p)
	require.Equal(t, http.StatusCreated, w.Code)
	var otherRoom domain.Room
	decode(t, w, &otherRoom)

	base := "/api/properties/" + id(first.ID) + "/maintenance"
	w = env.do(http.MethodPost, base, gin.H{"title": "Leak", "roomId": otherRoom.ID}, &p)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Room does not belong to this property", errorOf(t, w))

	w = env.do(http.MethodPost, base, gin.H{"title": "Leak", "priority": "critical"}, &p)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, base, gin.H{"title": "Leak under sink", "priority": "high", "cost": 150}, &p)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var record domain.MaintenanceRecord
	decode(t, w, &record)
	assert.Equal(t, domain.MaintenancePending, record.Status)
	assert.Equal(t, "high", record.Priority)
	assert.Nil(t, record.CompletedDate)

	recordPath := "/api/maintenance/" + id(record.ID)
	w = env.do(http.MethodPut, recordPath, gin.H{"status": "completed"}, &p)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &record)
	assert.NotNil(t, record.CompletedDate)

	w = env.do(http.MethodPost, base, gin.H{"title": "Replace bulbs"}, &p)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(http.MethodGet, base+"?status=completed", nil, &p)
	require.Equal(t, http.StatusOK, w.Code)
	var completed []domain.MaintenanceRecord
	decode(t, w, &completed)
	require.Len(t, completed, 1)
	assert.Equal(t, "Leak under sink", completed[0].Title)

	w = env.do(http.MethodGet, base, nil, &p)
	require.Equal(t, http.StatusOK, w.Code)
	var all []domain.MaintenanceRecord
	decode(t, w, &all)
	assert.Len(t, all, 2)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, base+"?status=bogus", nil, &p).Code)

	// reopening clears the completion date
	w = env.do(http.MethodPut, recordPath, gin.H{"status": "in-progress"}, &p)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &record)
	assert.Nil(t, record.CompletedDate)

	assert.Equal(t, http.StatusOK, env.do(http.MethodDelete, recordPath, nil, &p).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodDelete, recordPath, nil, &p).Code)
}

func TestMaintenanceAccess(t *testing.T) {
	env := newEnv(t, nil)
	lena := env.createUser("Lena Landlord", "lena@example.com")
	otto := env.createUser("Otto Owner", "otto@example.com")
	alice := env.createEmployee(lena.ID, "Alice", "alice@example.com")
	property := env.createProperty(lena, &alice.ID)
	asAlice, asOtto := alice.Participant(), otto.Participant()

	base := "/api/properties/" + id(property.ID) + "/maintenance"
	w := env.do(http.MethodPost, base, gin.H{"title": "Check smoke alarms"}, &asAlice)
	require.Equal(t, http.StatusCreated, w.Code)
	var record domain.MaintenanceRecord
	decode(t, w, &record)

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, base, nil, &asOtto).Code)
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodPut, "/api/maintenance/"+id(record.ID), gin.H{"cost": 5}, &asOtto).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodPut, "/api/maintenance/"+id(record.ID), gin.H{"cost": 5}, &asAlice).Code)
}
