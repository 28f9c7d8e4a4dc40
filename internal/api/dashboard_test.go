package api

import (
	"net/http"
	"testing"

	"landestate/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStatsAndCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	env := newEnv(t, rdb)
	lena := env.createUser("Lena Landlord", "lena@example.com")
	alice := env.createEmployee(lena.ID, "Alice", "alice@example.com")
	property := env.createProperty(lena, &alice.ID)
	asLena, asAlice := lena.Participant(), alice.Participant()
	rooms := "/api/properties/" + id(property.ID) + "/rooms"

	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, rooms, gin.H{"roomNumber": "1", "rent": 1000, "status": "occupied", "tenant": "Tom"}, &asLena).Code)
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, rooms, gin.H{"roomNumber": "2", "rent": 800}, &asLena).Code)
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/properties/"+id(property.ID)+"/maintenance",
		gin.H{"title": "Roof", "cost": 200}, &asLena).Code)
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/properties/"+id(property.ID)+"/maintenance",
		gin.H{"title": "Gutter", "cost": 50, "status": "completed"}, &asLena).Code)

	path := "/api/users/" + id(lena.ID) + "/dashboard"
	w := env.do(http.MethodGet, path, nil, &asLena)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stats DashboardStats
	decode(t, w, &stats)
	assert.EqualValues(t, 1, stats.Properties)
	assert.EqualValues(t, 2, stats.Rooms)
	assert.EqualValues(t, 1, stats.RoomsByStatus["occupied"])
	assert.EqualValues(t, 1, stats.RoomsByStatus["vacant"])
	assert.EqualValues(t, 0, stats.RoomsByStatus["maintenance"])
	assert.InDelta(t, 50.0, stats.OccupancyRate, 0.001)
	assert.InDelta(t, 1000.0, stats.MonthlyRent, 0.001)
	assert.EqualValues(t, 1, stats.MaintenanceByStatus["pending"])
	assert.EqualValues(t, 1, stats.MaintenanceByStatus["completed"])
	assert.InDelta(t, 200.0, stats.OpenMaintenanceCost, 0.001)
	assert.EqualValues(t, 1, stats.Employees)
	assert.Zero(t, stats.UnreadMessages)
	assert.True(t, mr.Exists(utils.DashboardCacheKey(lena.ID)))

	// unread counts are live even while the stats are cached
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/messages",
		gin.H{"receiverType": "user", "receiverId": lena.ID, "content": "Roof inspected"}, &asAlice).Code)
	w = env.do(http.MethodGet, path, nil, &asLena)
	decode(t, w, &stats)
	assert.EqualValues(t, 1, stats.UnreadMessages)
	assert.EqualValues(t, 2, stats.Rooms)

	// writes drop the cached stats
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, rooms, gin.H{"roomNumber": "3"}, &asAlice).Code)
	assert.False(t, mr.Exists(utils.DashboardCacheKey(lena.ID)))
	w = env.do(http.MethodGet, path, nil, &asLena)
	decode(t, w, &stats)
	assert.EqualValues(t, 3, stats.Rooms)
}

func TestPropertyListCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	env := newEnv(t, rdb)
	lena := env.createUser("Lena Landlord", "lena@example.com")
	asLena := lena.Participant()
	path := "/api/users/" + id(lena.ID) + "/properties"

	w := env.do(http.MethodGet, path, nil, &asLena)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
	assert.True(t, mr.Exists(utils.PropertiesCacheKey(lena.ID)))

	env.createProperty(lena, nil)
	assert.False(t, mr.Exists(utils.PropertiesCacheKey(lena.ID)))

	w = env.do(http.MethodGet, path, nil, &asLena)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Maple Court")
}

func TestEmployeeWritesDropOwnerCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	env := newEnv(t, rdb)
	lena := env.createUser("Lena Landlord", "lena@example.com")
	alice := env.createEmployee(lena.ID, "Alice", "alice@example.com")
	env.createProperty(lena, &alice.ID)
	asLena, asAlice := lena.Participant(), alice.Participant()
	dashboard := "/api/users/" + id(lena.ID) + "/dashboard"
	properties := "/api/users/" + id(lena.ID) + "/properties"

	var stats DashboardStats
	decode(t, env.do(http.MethodGet, dashboard, nil, &asLena), &stats)
	assert.EqualValues(t, 1, stats.Employees)

	w := env.do(http.MethodPost, "/api/users/"+id(lena.ID)+"/employees", gin.H{
		"name": "Bob Builder", "email": "bob@example.com", "password": "password1",
	}, &asLena)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.False(t, mr.Exists(utils.DashboardCacheKey(lena.ID)))
	decode(t, env.do(http.MethodGet, dashboard, nil, &asLena), &stats)
	assert.EqualValues(t, 2, stats.Employees)

	require.Equal(t, http.StatusOK, env.do(http.MethodGet, properties, nil, &asLena).Code)
	require.True(t, mr.Exists(utils.PropertiesCacheKey(lena.ID)))
	w = env.do(http.MethodPut, "/api/users/"+id(lena.ID)+"/employees/"+id(alice.ID), gin.H{"name": "Alicia Renamed"}, &asLena)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = env.do(http.MethodGet, properties, nil, &asLena)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Alicia Renamed")

	// an employee editing its own profile drops its manager's keys
	require.True(t, mr.Exists(utils.PropertiesCacheKey(lena.ID)))
	w = env.do(http.MethodPut, "/api/employees/"+id(alice.ID), gin.H{"name": "Alice Again"}, &asAlice)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.False(t, mr.Exists(utils.PropertiesCacheKey(lena.ID)))
	assert.Contains(t, env.do(http.MethodGet, properties, nil, &asLena).Body.String(), "Alice Again")
}
