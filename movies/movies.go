package movies

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"

	"filmkiste/models"
	"filmkiste/store"
)

const uploadsDir = "public/uploads"

type MoviesModule struct {
	store *store.Store
}

// markdown renderer for movie descriptions, configured like the detail pages
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Linkify,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithUnsafe(),
	),
)

func NewMoviesModule(st *store.Store) *MoviesModule {
	return &MoviesModule{store: st}
}

func (m *MoviesModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/", m.index)
	router.GET("/film/neu", m.requireAuth, m.newMovie)
	router.POST("/film/neu", m.requireAuth, m.createMovie)
	router.GET("/film/:slug", m.show)
	router.GET("/film/:slug/bearbeiten", m.requireAuth, m.editMovie)
	router.POST("/film/:slug", m.requireAuth, m.updateMovie)
	router.POST("/film/:slug/loeschen", m.requireAuth, m.deleteMovie)
	router.POST("/like/:id", m.requireAuth, m.toggleLike)
	router.POST("/merken/:id", m.requireAuth, m.toggleFavorite)
	router.GET("/merkliste", m.requireAuth, m.favorites)
}

func (m *MoviesModule) requireAuth(c *gin.Context) {
	session := sessions.Default(c)
	userID := session.Get("user_id")

	if userID == nil {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}

	c.Set("user_id", userID)
	role, _ := session.Get("user_role").(string)
	c.Set("user_role", role)
	c.Next()
}

// sessionUser returns the logged-in user's id and role, or 0 for guests.
func sessionUser(c *gin.Context) (int, string) {
	session := sessions.Default(c)
	userID, _ := session.Get("user_id").(int)
	role, _ := session.Get("user_role").(string)
	return userID, role
}

// canEdit implements the ownership rule: owner or admin.
func canEdit(userID int, role string, row *store.ContentRow) bool {
	return userID == row.UserID || role == models.RoleAdmin
}

func (m *MoviesModule) index(c *gin.Context) {
	category := c.Query("kategorie")
	sort := c.Query("sortierung")

	authorID := 0
	if autor := c.Query("autor"); autor != "" {
		authorID, _ = strconv.Atoi(autor)
	}

	rows, err := m.store.ListContentsFiltered(category, authorID, sort)
	if err != nil {
		log.Printf("Error loading feed: %v", err)
		c.HTML(http.StatusInternalServerError, "movies_error.html", gin.H{
			"error": "Filme konnten nicht geladen werden",
		})
		return
	}

	authors, err := m.store.ListAuthors()
	if err != nil {
		log.Printf("Error loading authors: %v", err)
		authors = nil
	}

	userID, _ := sessionUser(c)
	c.HTML(http.StatusOK, "movies_index.html", gin.H{
		"movies":     rows,
		"authors":    authors,
		"categories": models.Categories,
		"category":   category,
		"authorID":   authorID,
		"sort":       sort,
		"userID":     userID,
	})
}

func (m *MoviesModule) show(c *gin.Context) {
	slug := c.Param("slug")

	row, err := m.store.FindContentBySlug(slug)
	if err != nil {
		log.Printf("Error loading movie %s: %v", slug, err)
		c.HTML(http.StatusInternalServerError, "movies_error.html", gin.H{
			"error": "Film konnte nicht geladen werden",
		})
		return
	}
	if row == nil {
		c.HTML(http.StatusNotFound, "movies_error.html", gin.H{
			"error": "Film nicht gefunden",
		})
		return
	}

	userID, role := sessionUser(c)
	liked := false
	favorite := false
	if userID != 0 {
		liked, _ = m.store.HasUserLiked(userID, row.ID)
		favorite, _ = m.store.IsFavorite(userID, row.ID)
	}

	c.HTML(http.StatusOK, "movies_show.html", gin.H{
		"movie":           row,
		"descriptionHTML": template.HTML(renderMarkdown(row.Description)),
		"liked":           liked,
		"favorite":        favorite,
		"canEdit":         userID != 0 && canEdit(userID, role, row),
		"userID":          userID,
	})
}

func (m *MoviesModule) newMovie(c *gin.Context) {
	c.HTML(http.StatusOK, "movies_new.html", gin.H{
		"categories": models.Categories,
	})
}

func (m *MoviesModule) createMovie(c *gin.Context) {
	userID := c.GetInt("user_id")

	title := c.PostForm("title")
	description := c.PostForm("description")
	category := c.PostForm("kategorie")

	formData := gin.H{
		"categories":  models.Categories,
		"title":       title,
		"description": description,
		"category":    category,
	}

	if title == "" || !models.IsValidCategory(category) {
		formData["error"] = "Titel und eine gültige Kategorie sind Pflicht"
		c.HTML(http.StatusBadRequest, "movies_new.html", formData)
		return
	}

	file, err := c.FormFile("poster")
	if err != nil {
		formData["error"] = "Ein Poster-Bild ist Pflicht"
		c.HTML(http.StatusBadRequest, "movies_new.html", formData)
		return
	}

	image, err := m.savePoster(c, file)
	if err != nil {
		log.Printf("Error saving poster: %v", err)
		formData["error"] = "Poster konnte nicht gespeichert werden"
		c.HTML(http.StatusInternalServerError, "movies_new.html", formData)
		return
	}

	id, err := m.store.CreateContent(title, description, category, image, userID)
	if err != nil {
		log.Printf("Error creating movie: %v", err)
		if store.IsUniqueViolation(err) {
			formData["error"] = "Ein Film mit diesem Titel wurde gerade angelegt, bitte erneut versuchen"
		} else {
			formData["error"] = "Film konnte nicht angelegt werden"
		}
		c.HTML(http.StatusInternalServerError, "movies_new.html", formData)
		return
	}

	row, err := m.store.FindContentByID(id)
	if err != nil || row == nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.Redirect(http.StatusFound, "/film/"+row.Slug)
}

func (m *MoviesModule) editMovie(c *gin.Context) {
	slug := c.Param("slug")

	row, err := m.store.FindContentBySlug(slug)
	if err != nil || row == nil {
		c.HTML(http.StatusNotFound, "movies_error.html", gin.H{
			"error": "Film nicht gefunden",
		})
		return
	}

	userID, role := sessionUser(c)
	if !canEdit(userID, role, row) {
		c.HTML(http.StatusForbidden, "movies_error.html", gin.H{
			"error": "Nur der Besitzer oder ein Admin darf bearbeiten",
		})
		return
	}

	c.HTML(http.StatusOK, "movies_edit.html", gin.H{
		"movie":      row,
		"categories": models.Categories,
	})
}

func (m *MoviesModule) updateMovie(c *gin.Context) {
	slug := c.Param("slug")

	row, err := m.store.FindContentBySlug(slug)
	if err != nil || row == nil {
		c.HTML(http.StatusNotFound, "movies_error.html", gin.H{
			"error": "Film nicht gefunden",
		})
		return
	}

	userID, role := sessionUser(c)
	if !canEdit(userID, role, row) {
		c.HTML(http.StatusForbidden, "movies_error.html", gin.H{
			"error": "Nur der Besitzer oder ein Admin darf bearbeiten",
		})
		return
	}

	title := c.PostForm("title")
	description := c.PostForm("description")
	category := c.PostForm("kategorie")

	if title == "" || !models.IsValidCategory(category) {
		c.HTML(http.StatusBadRequest, "movies_edit.html", gin.H{
			"movie":      row,
			"categories": models.Categories,
			"error":      "Titel und eine gültige Kategorie sind Pflicht",
		})
		return
	}

	// only replace the poster when a new file was uploaded
	var image *string
	if file, err := c.FormFile("poster"); err == nil && file != nil {
		saved, err := m.savePoster(c, file)
		if err != nil {
			log.Printf("Error saving poster: %v", err)
			c.HTML(http.StatusInternalServerError, "movies_edit.html", gin.H{
				"movie":      row,
				"categories": models.Categories,
				"error":      "Poster konnte nicht gespeichert werden",
			})
			return
		}
		image = &saved
	}

	if _, err := m.store.UpdateContent(row.ID, title, description, category, image); err != nil {
		log.Printf("Error updating movie %d: %v", row.ID, err)
		c.HTML(http.StatusInternalServerError, "movies_edit.html", gin.H{
			"movie":      row,
			"categories": models.Categories,
			"error":      "Film konnte nicht gespeichert werden",
		})
		return
	}

	c.Redirect(http.StatusFound, "/film/"+row.Slug)
}

func (m *MoviesModule) deleteMovie(c *gin.Context) {
	slug := c.Param("slug")

	row, err := m.store.FindContentBySlug(slug)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Film konnte nicht geladen werden"})
		return
	}
	if row == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Film nicht gefunden"})
		return
	}

	userID, role := sessionUser(c)
	if !canEdit(userID, role, row) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Nur der Besitzer oder ein Admin darf löschen"})
		return
	}

	affected, err := m.store.DeleteContentByID(row.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Film konnte nicht gelöscht werden"})
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Film nicht gefunden"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Film gelöscht"})
}

func (m *MoviesModule) toggleLike(c *gin.Context) {
	userID := c.GetInt("user_id")
	contentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ungültige ID"})
		return
	}

	liked, count, err := m.store.ToggleLike(userID, contentID)
	if err != nil {
		log.Printf("Error toggling like: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Like fehlgeschlagen"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked, "count": count})
}

func (m *MoviesModule) toggleFavorite(c *gin.Context) {
	userID := c.GetInt("user_id")
	contentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ungültige ID"})
		return
	}

	favorite, err := m.store.ToggleFavorite(userID, contentID)
	if err != nil {
		log.Printf("Error toggling favorite: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Merken fehlgeschlagen"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorite": favorite})
}

func (m *MoviesModule) favorites(c *gin.Context) {
	userID := c.GetInt("user_id")

	rows, err := m.store.ListFavoritesOfUser(userID)
	if err != nil {
		log.Printf("Error loading favorites: %v", err)
		c.HTML(http.StatusInternalServerError, "movies_error.html", gin.H{
			"error": "Merkliste konnte nicht geladen werden",
		})
		return
	}

	c.HTML(http.StatusOK, "movies_favorites.html", gin.H{
		"movies": rows,
		"userID": userID,
	})
}

// savePoster stores an uploaded poster under public/uploads, named by the
// xxhash of its content so re-uploads of the same file dedupe.
func (m *MoviesModule) savePoster(c *gin.Context, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, src); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	name := fmt.Sprintf("%016x%s", hasher.Sum64(), ext)

	if err := os.MkdirAll(uploadsDir, 0755); err != nil {
		return "", err
	}
	if err := c.SaveUploadedFile(file, filepath.Join(uploadsDir, name)); err != nil {
		return "", err
	}

	return "/public/uploads/" + name, nil
}

func renderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		// keep the page rendering even when the markdown is broken
		return content
	}
	return buf.String()
}
