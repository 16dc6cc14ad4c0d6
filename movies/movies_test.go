package movies

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"filmkiste/database"
	"filmkiste/models"
	"filmkiste/store"
)

func setupTestStore(t *testing.T) *store.Store {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal("failed to connect database:", err)
	}
	if err := database.RunMigrations(db); err != nil {
		t.Fatal("failed to migrate:", err)
	}
	return store.New(db)
}

func setupTestRouter(m *MoviesModule) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	cookieStore := cookie.NewStore([]byte("secret"))
	router.Use(sessions.Sessions("test-session", cookieStore))
	router.LoadHTMLGlob("views/*.html")
	m.RegisterRoutes(router)

	// test-only login shortcut
	router.GET("/test-login/:id/:role", func(c *gin.Context) {
		session := sessions.Default(c)
		var id int
		fmt.Sscanf(c.Param("id"), "%d", &id)
		session.Set("user_id", id)
		session.Set("user_role", c.Param("role"))
		session.Save()
		c.Status(http.StatusOK)
	})

	return router
}

func loginAs(t *testing.T, router *gin.Engine, userID int, role string) []*http.Cookie {
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/test-login/%d/%s", userID, role), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	return w.Result().Cookies()
}

func doRequest(router *gin.Engine, method, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func seedMovie(t *testing.T, st *store.Store) (ownerID, contentID int, slug string) {
	ownerID, err := st.CreateUser("Bernd", "bernd@example.com", "hash", models.RoleUser)
	assert.NoError(t, err)
	contentID, err = st.CreateContent("Die Zeitmaschine", "Ein **Klassiker**.", "sifi", "/img.jpg", ownerID)
	assert.NoError(t, err)
	row, err := st.FindContentByID(contentID)
	assert.NoError(t, err)
	return ownerID, contentID, row.Slug
}

func TestIndex_RendersFeed(t *testing.T) {
	st := setupTestStore(t)
	router := setupTestRouter(NewMoviesModule(st))
	seedMovie(t, st)

	w := doRequest(router, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Die Zeitmaschine")
	assert.Contains(t, w.Body.String(), "Bernd")
}

func TestIndex_CategoryFilter(t *testing.T) {
	st := setupTestStore(t)
	router := setupTestRouter(NewMoviesModule(st))

	ownerID, _, _ := seedMovie(t, st)
	_, err := st.CreateContent("Nachtschicht", "", "horror", "/n.jpg", ownerID)
	assert.NoError(t, err)

	w := doRequest(router, http.MethodGet, "/?kategorie=horror", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Nachtschicht")
	assert.NotContains(t, w.Body.String(), "Die Zeitmaschine")
}

func TestShow_RendersMarkdownDescription(t *testing.T) {
	st := setupTestStore(t)
	router := setupTestRouter(NewMoviesModule(st))
	_, _, slug := seedMovie(t, st)

	w := doRequest(router, http.MethodGet, "/film/"+slug, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<strong>Klassiker</strong>")
}

func TestShow_UnknownSlug(t *testing.T) {
	st := setupTestStore(t)
	router := setupTestRouter(NewMoviesModule(st))

	w := doRequest(router, http.MethodGet, "/film/gibt-es-nicht", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestToggleLike_RequiresLogin(t *testing.T) {
	st := setupTestStore(t)
	router := setupTestRouter(NewMoviesModule(st))
	_, contentID, _ := seedMovie(t, st)

	w := doRequest(router, http.MethodPost, fmt.Sprintf("/like/%d", contentID), nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestToggleLike_FlipsAndReports(t *testing.T) {
	st := setupTestStore(t)
	router := setupTestRouter(NewMoviesModule(st))
	_, contentID, _ := seedMovie(t, st)

	fanID, err := st.CreateUser("Clara", "clara@example.com", "hash", models.RoleUser)
	assert.NoError(t, err)
	cookies := loginAs(t, router, fanID, models.RoleUser)

	w := doRequest(router, http.MethodPost, fmt.Sprintf("/like/%d", contentID), cookies)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Liked bool  `json:"liked"`
		Count int64 `json:"count"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Liked)
	assert.Equal(t, int64(1), resp.Count)

	w = doRequest(router, http.MethodPost, fmt.Sprintf("/like/%d", contentID), cookies)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Liked)
	assert.Equal(t, int64(0), resp.Count)
}

func TestDeleteMovie_OwnerOnly(t *testing.T) {
	st := setupTestStore(t)
	router := setupTestRouter(NewMoviesModule(st))
	_, _, slug := seedMovie(t, st)

	otherID, err := st.CreateUser("Clara", "clara@example.com", "hash", models.RoleUser)
	assert.NoError(t, err)
	cookies := loginAs(t, router, otherID, models.RoleUser)

	w := doRequest(router, http.MethodPost, "/film/"+slug+"/loeschen", cookies)
	assert.Equal(t, http.StatusForbidden, w.Code)

	row, err := st.FindContentBySlug(slug)
	assert.NoError(t, err)
	assert.NotNil(t, row)
}

func TestDeleteMovie_AdminMay(t *testing.T) {
	st := setupTestStore(t)
	router := setupTestRouter(NewMoviesModule(st))
	_, _, slug := seedMovie(t, st)

	adminID, err := st.CreateUser("Anna", "anna@example.com", "hash", models.RoleAdmin)
	assert.NoError(t, err)
	cookies := loginAs(t, router, adminID, models.RoleAdmin)

	w := doRequest(router, http.MethodPost, "/film/"+slug+"/loeschen", cookies)
	assert.Equal(t, http.StatusOK, w.Code)

	row, err := st.FindContentBySlug(slug)
	assert.NoError(t, err)
	assert.Nil(t, row)
}

func TestFavoritesPage(t *testing.T) {
	st := setupTestStore(t)
	router := setupTestRouter(NewMoviesModule(st))
	_, contentID, _ := seedMovie(t, st)

	fanID, err := st.CreateUser("Clara", "clara@example.com", "hash", models.RoleUser)
	assert.NoError(t, err)
	_, err = st.ToggleFavorite(fanID, contentID)
	assert.NoError(t, err)

	cookies := loginAs(t, router, fanID, models.RoleUser)
	w := doRequest(router, http.MethodGet, "/merkliste", cookies)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Die Zeitmaschine")
}

func TestCanEdit(t *testing.T) {
	row := &store.ContentRow{UserID: 7}

	assert.True(t, canEdit(7, models.RoleUser, row))
	assert.True(t, canEdit(9, models.RoleAdmin, row))
	assert.False(t, canEdit(9, models.RoleUser, row))
	assert.False(t, canEdit(9, models.RoleEditor, row))
}
